package config

import (
	"image"
	"path/filepath"
	"time"
)

// FeedConfig controls how plays are fetched.
type FeedConfig struct {
	// Provider is "wbsc" for the live HTTP feed or "fixture" to replay an archive.
	Provider      string        `yaml:"provider" envconfig:"PROVIDER"`
	BaseURL       string        `yaml:"base_url" envconfig:"BASE_URL"`
	UserAgent     string        `yaml:"user_agent" envconfig:"USER_AGENT"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	RetryAttempts int           `yaml:"retry_attempts" envconfig:"RETRY_ATTEMPTS"`
	RetryBackoff  time.Duration `yaml:"retry_backoff" envconfig:"RETRY_BACKOFF"`
}

// SiteConfig points at the website that announces the current game.
type SiteConfig struct {
	BaseURL      string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"POLL_INTERVAL"`
	WaitInterval time.Duration `yaml:"wait_interval" envconfig:"WAIT_INTERVAL"`
	Misses       int           `yaml:"misses" envconfig:"MISSES"`
}

// PlaybackConfig selects the playback mode and its cadences. A non-empty GameID skips
// the website and streams that game directly.
type PlaybackConfig struct {
	Mode              string        `yaml:"mode" envconfig:"MODE"`
	ReplayMode        string        `yaml:"replay_mode" envconfig:"REPLAY_MODE"`
	GameID            string        `yaml:"game_id" envconfig:"GAME_ID"`
	FirstReplayPlay   int           `yaml:"first_replay_play" envconfig:"FIRST_REPLAY_PLAY"`
	StartDelay        time.Duration `yaml:"start_delay" envconfig:"START_DELAY"`
	LiveIdle          time.Duration `yaml:"live_idle" envconfig:"LIVE_IDLE"`
	LiveApply         time.Duration `yaml:"live_apply" envconfig:"LIVE_APPLY"`
	RealtimeTick      time.Duration `yaml:"realtime_tick" envconfig:"REALTIME_TICK"`
	SequenceInterval  time.Duration `yaml:"sequence_interval" envconfig:"SEQUENCE_INTERVAL"`
	NotStartedBackoff time.Duration `yaml:"not_started_backoff" envconfig:"NOT_STARTED_BACKOFF"`
	FinalGrace        time.Duration `yaml:"final_grace" envconfig:"FINAL_GRACE"`
}

// RenderConfig controls overlay output.
type RenderConfig struct {
	Width          int           `yaml:"width" envconfig:"WIDTH"`
	Height         int           `yaml:"height" envconfig:"HEIGHT"`
	WorkingDir     string        `yaml:"working_dir" envconfig:"WORKING_DIR"`
	OverlayFile    string        `yaml:"overlay_file" envconfig:"OVERLAY_FILE"`
	FontFile       string        `yaml:"font_file" envconfig:"FONT_FILE"`
	PhotoWidth     int           `yaml:"photo_width" envconfig:"PHOTO_WIDTH"`
	PlaceholderURL string        `yaml:"placeholder_url" envconfig:"PLACEHOLDER_URL"`
	AssetTimeout   time.Duration `yaml:"asset_timeout" envconfig:"ASSET_TIMEOUT"`
}

// Resolution is the overlay canvas size.
func (r RenderConfig) Resolution() image.Point {
	return image.Pt(r.Width, r.Height)
}

// OverlayPath is where the encoder reads the published frame.
func (r RenderConfig) OverlayPath() string {
	return filepath.Join(r.WorkingDir, r.OverlayFile)
}

// FaceConfig configures the optional face detector. An empty command disables it.
type FaceConfig struct {
	Command string        `yaml:"command" envconfig:"COMMAND"`
	Args    []string      `yaml:"args" envconfig:"ARGS"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// EncoderConfig describes the ffmpeg processes.
type EncoderConfig struct {
	Enabled       bool          `yaml:"enabled" envconfig:"ENABLED"`
	Binary        string        `yaml:"binary" envconfig:"BINARY"`
	Camera1Input  string        `yaml:"camera1_input" envconfig:"CAMERA1_INPUT"`
	Camera1Tune   string        `yaml:"camera1_fine_tune" envconfig:"CAMERA1_FINE_TUNE"`
	Camera2Input  string        `yaml:"camera2_input" envconfig:"CAMERA2_INPUT"`
	Camera2Tune   string        `yaml:"camera2_fine_tune" envconfig:"CAMERA2_FINE_TUNE"`
	MainOutput    string        `yaml:"main_output" envconfig:"MAIN_OUTPUT"`
	BackupOutput  string        `yaml:"backup_output" envconfig:"BACKUP_OUTPUT"`
	IntroFile     string        `yaml:"intro_file" envconfig:"INTRO_FILE"`
	EndFile       string        `yaml:"end_file" envconfig:"END_FILE"`
	FrameRate     int           `yaml:"frame_rate" envconfig:"FRAME_RATE"`
	WatchInterval time.Duration `yaml:"watch_interval" envconfig:"WATCH_INTERVAL"`
	LogFile       string        `yaml:"log_file" envconfig:"LOG_FILE"`
}

// Camera returns the input stream and filter prefix for the camera the website names.
// "camera1" selects the first camera; anything else the second.
func (e EncoderConfig) Camera(name string) (input, fineTune string) {
	if name == "camera1" {
		return e.Camera1Input, e.Camera1Tune
	}
	return e.Camera2Input, e.Camera2Tune
}

// ArchiveConfig controls the on-disk play archive used for offline replays.
type ArchiveConfig struct {
	Enabled       bool   `yaml:"enabled" envconfig:"ENABLED"`
	Dir           string `yaml:"dir" envconfig:"DIR"`
	RetentionDays int    `yaml:"retention_days" envconfig:"RETENTION_DAYS"`
}

// HTTPConfig controls the status server.
type HTTPConfig struct {
	Port string `yaml:"port" envconfig:"PORT"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}
