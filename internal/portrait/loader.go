package portrait

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/scorebug/internal/assets"
	"github.com/preston-bernstein/scorebug/internal/domain/players"
	"github.com/preston-bernstein/scorebug/internal/logging"
)

// DefaultPlaceholderURL is the image the feed uses for players without a photo.
const DefaultPlaceholderURL = "https://static.wbsc.org/assets/images/default-player.jpg"

// Loader attaches processed portraits to players.
type Loader struct {
	fetcher     assets.Fetcher
	cropper     *Cropper
	placeholder string
	logger      *slog.Logger
}

// NewLoader wires a fetcher and cropper. An empty placeholder uses DefaultPlaceholderURL.
func NewLoader(fetcher assets.Fetcher, cropper *Cropper, placeholder string, logger *slog.Logger) *Loader {
	if placeholder == "" {
		placeholder = DefaultPlaceholderURL
	}
	return &Loader{fetcher: fetcher, cropper: cropper, placeholder: placeholder, logger: logger}
}

// Load sets p.Portrait. Players with no photo or the placeholder photo keep a nil
// portrait; a failed download is logged and also leaves it nil.
func (l *Loader) Load(ctx context.Context, p *players.Player) {
	if p == nil || p.PhotoURL == "" || p.PhotoURL == l.placeholder {
		return
	}
	img, err := l.fetcher.Fetch(ctx, p.PhotoURL)
	if err != nil {
		logging.Warn(logging.FromContext(ctx, l.logger), "portrait fetch failed",
			logging.FieldPlayer, p.ID,
			logging.FieldURL, p.PhotoURL,
			logging.FieldError, err,
		)
		return
	}
	p.Portrait = l.cropper.Crop(ctx, img)
}

// LoadAll loads portraits for each player in order.
func (l *Loader) LoadAll(ctx context.Context, ps []*players.Player) {
	for _, p := range ps {
		if ctx.Err() != nil {
			return
		}
		l.Load(ctx, p)
	}
}
