package server

import "time"

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
)

// Vars so tests can shorten them.
var (
	shutdownTimeout = 10 * time.Second
	// gameRetryDelay is waited after a game ends or fails to start before looking for the next one.
	gameRetryDelay = time.Minute
)
