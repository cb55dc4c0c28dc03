package config

import "time"

const (
	ProviderWBSC    = "wbsc"
	ProviderFixture = "fixture"

	defaultWidth  = 2560
	defaultHeight = 1440
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Feed: FeedConfig{
			Provider:      ProviderWBSC,
			BaseURL:       "https://game.wbsc.org/gamedata",
			Timeout:       30 * time.Second,
			RetryAttempts: 3,
			RetryBackoff:  500 * time.Millisecond,
		},
		Site: SiteConfig{
			Timeout:      30 * time.Second,
			PollInterval: 15 * time.Second,
			WaitInterval: time.Minute,
			Misses:       3,
		},
		Playback: PlaybackConfig{
			Mode:              "live",
			ReplayMode:        "realtime",
			FirstReplayPlay:   1,
			StartDelay:        10 * time.Second,
			LiveIdle:          time.Second,
			LiveApply:         3 * time.Second,
			RealtimeTick:      500 * time.Millisecond,
			SequenceInterval:  2 * time.Second,
			NotStartedBackoff: 30 * time.Second,
			FinalGrace:        120 * time.Second,
		},
		Render: RenderConfig{
			Width:          defaultWidth,
			Height:         defaultHeight,
			WorkingDir:     ".",
			OverlayFile:    "overlay.png",
			PhotoWidth:     470,
			PlaceholderURL: "https://static.wbsc.org/assets/images/default-player.jpg",
			AssetTimeout:   30 * time.Second,
		},
		Face: FaceConfig{
			Timeout: 20 * time.Second,
		},
		Encoder: EncoderConfig{
			Binary:        "ffmpeg",
			Camera1Tune:   "rotate=0.06,crop=2320:1080:150:100,",
			FrameRate:     3,
			WatchInterval: time.Second,
		},
		Archive: ArchiveConfig{
			Dir:           "data/archive",
			RetentionDays: 14,
		},
		HTTP: HTTPConfig{
			Port: "4000",
		},
		Metrics: MetricsConfig{
			Enabled:      true,
			Port:         "9090",
			ServiceName:  "scorebug",
			OtlpInsecure: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
