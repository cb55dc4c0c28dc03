// Package overlay composes the rendered panels into the full-resolution frame and
// publishes it for the encoder.
package overlay

import (
	"image"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/raster"
	"github.com/preston-bernstein/scorebug/internal/render"
)

// Layout margins in pixels of the output frame.
const (
	scorebugMargin = 20
	batterMargin   = 30
	lineupTop      = 100
	lineupGap      = 100
)

// Screen names which layout a frame uses.
type Screen string

const (
	ScreenLogos   Screen = "logos"
	ScreenLineups Screen = "lineups"
	ScreenLive    Screen = "live"
)

// ScreenFor picks the layout for the current game state: logos before the first
// snapshot, lineups until play 2, then the live scorebug.
func ScreenFor(g *games.Game) Screen {
	switch {
	case !g.Started():
		return ScreenLogos
	case g.CurrentPlay > 1:
		return ScreenLive
	default:
		return ScreenLineups
	}
}

// Compositor lays rendered panels out on a transparent canvas of the game's resolution.
type Compositor struct {
	renderer *render.Renderer
}

// NewCompositor returns a compositor drawing with r.
func NewCompositor(r *render.Renderer) *Compositor {
	return &Compositor{renderer: r}
}

// Compose builds the frame for the game's current state.
func (c *Compositor) Compose(g *games.Game) *image.RGBA {
	dst := raster.NewCanvas(g.Resolution.X, g.Resolution.Y)
	switch ScreenFor(g) {
	case ScreenLogos:
		c.composeLogos(dst, g)
	case ScreenLive:
		c.composeLive(dst, g)
	default:
		c.composeLineups(dst, g)
	}
	return dst
}

func (c *Compositor) composeLogos(dst *image.RGBA, g *games.Game) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	home, away := g.Identities()
	if away.Logo != nil {
		raster.Paste(dst, raster.ScaleToWidth(away.Logo, w/5), image.Pt(3*w/5, h/3))
	}
	if home.Logo != nil {
		raster.Paste(dst, raster.ScaleToWidth(home.Logo, w/5), image.Pt(w/5, h/3))
	}
}

func (c *Compositor) composeLive(dst *image.RGBA, g *games.Game) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()

	bug := raster.ScaleToWidth(c.renderer.Scorebug(render.NewScorebugView(g)), w/6)
	raster.Paste(dst, bug, image.Pt(scorebugMargin, h-bug.Bounds().Dy()-scorebugMargin))

	if g.Batter == nil {
		return
	}
	panel := c.renderer.BatterPanel(render.NewBatterView(g.Batter, g.RosterOf(g.Batter)))
	panel = raster.ScaleToWidth(panel, w/2)
	b := panel.Bounds()
	raster.Paste(dst, panel, image.Pt(w-b.Dx()-batterMargin, h-b.Dy()-batterMargin))
}

func (c *Compositor) composeLineups(dst *image.RGBA, g *games.Game) {
	w := dst.Bounds().Dx()
	width := int(float64(w) / 2.8)

	home := raster.ScaleToWidth(c.renderer.LineupPanel(render.NewLineupView(g.Home, "")), width)
	raster.Paste(dst, home, image.Pt(w/2+lineupGap, lineupTop))

	away := raster.ScaleToWidth(c.renderer.LineupPanel(render.NewLineupView(g.Away, "")), width)
	raster.Paste(dst, away, image.Pt(w/2-lineupGap-away.Bounds().Dx(), lineupTop))
}
