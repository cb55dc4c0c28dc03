package config

import (
	"errors"
	"fmt"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
)

// Validate rejects configurations the streamer cannot run with.
func (c Config) Validate() error {
	var errs []error

	switch games.Mode(c.Playback.Mode) {
	case games.ModeLive, games.ModeReplay:
	default:
		errs = append(errs, fmt.Errorf("playback.mode must be live or replay, got %q", c.Playback.Mode))
	}
	if games.Mode(c.Playback.Mode) == games.ModeReplay {
		switch games.ReplayMode(c.Playback.ReplayMode) {
		case games.ReplayRealtime, games.ReplaySequence:
		default:
			errs = append(errs, fmt.Errorf("playback.replay_mode must be realtime or sequence, got %q", c.Playback.ReplayMode))
		}
	}
	switch c.Feed.Provider {
	case ProviderWBSC, ProviderFixture:
	default:
		errs = append(errs, fmt.Errorf("feed.provider must be %s or %s, got %q", ProviderWBSC, ProviderFixture, c.Feed.Provider))
	}
	if c.Feed.Provider == ProviderFixture && c.Archive.Dir == "" {
		errs = append(errs, errors.New("archive.dir is required by the fixture provider"))
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render resolution must be positive, got %dx%d", c.Render.Width, c.Render.Height))
	}
	if c.Render.OverlayFile == "" {
		errs = append(errs, errors.New("render.overlay_file is required"))
	}
	if c.Playback.GameID == "" && c.Site.BaseURL == "" {
		errs = append(errs, errors.New("site.base_url is required unless playback.game_id is set"))
	}
	if c.Encoder.Enabled && c.Encoder.MainOutput == "" {
		errs = append(errs, errors.New("encoder.main_output is required when the encoder is enabled"))
	}
	return errors.Join(errs...)
}
