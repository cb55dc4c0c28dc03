package server

import (
	"log/slog"

	"github.com/preston-bernstein/scorebug/internal/config"
	"github.com/preston-bernstein/scorebug/internal/feed"
	"github.com/preston-bernstein/scorebug/internal/feed/fixture"
	"github.com/preston-bernstein/scorebug/internal/feed/wbsc"
	"github.com/preston-bernstein/scorebug/internal/logging"
	"github.com/preston-bernstein/scorebug/internal/metrics"
	"github.com/preston-bernstein/scorebug/internal/snapshots"
)

// feedFactory assembles the play feed with the shared retry wrapper.
type feedFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newFeedFactory(logger *slog.Logger, metrics *metrics.Recorder) feedFactory {
	return feedFactory{logger: logger, metrics: metrics}
}

// build returns the configured feed. archive may be nil; it is ignored by the fixture feed,
// which reads the archive instead of writing it.
func (f feedFactory) build(cfg config.Config, archive *snapshots.Writer) feed.Feed {
	switch cfg.Feed.Provider {
	case config.ProviderFixture:
		logging.Info(f.logger, "replaying archived plays", "dir", cfg.Archive.Dir)
		return fixture.NewFromDir(cfg.Archive.Dir)
	default:
		wcfg := wbsc.Config{
			BaseURL:   cfg.Feed.BaseURL,
			UserAgent: cfg.Feed.UserAgent,
			Timeout:   cfg.Feed.Timeout,
			Logger:    f.logger,
		}
		if archive != nil {
			wcfg.Archive = archive
		}
		return feed.NewRetryingFeed(wbsc.NewClient(wcfg), f.logger, f.metrics, cfg.Feed.RetryAttempts, cfg.Feed.RetryBackoff)
	}
}

// buildArchive returns the archive writer, or nil when archiving is off.
func buildArchive(cfg config.Config) *snapshots.Writer {
	if !cfg.Archive.Enabled || cfg.Archive.Dir == "" {
		return nil
	}
	return snapshots.NewWriter(cfg.Archive.Dir, cfg.Archive.RetentionDays)
}
