package wbsc

import "time"

const (
	defaultBaseURL     = "https://game.wbsc.org/gamedata"
	defaultHTTPTimeout = 10 * time.Second
	// The feed rejects requests without a browser user agent.
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_4) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/83.0.4103.97 Safari/537.36"
	maxPayloadBytes  = 8 << 20
	maxErrorBody     = 512
)
