package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/preston-bernstein/scorebug/internal/domain/players"
	"github.com/preston-bernstein/scorebug/internal/domain/teams"
	"github.com/preston-bernstein/scorebug/internal/raster"
)

// Batter panel canvas size.
const (
	BatterWidth  = 2500
	BatterHeight = 500
)

// BatterView is the content of the current-batter panel.
type BatterView struct {
	Title     string
	StatLine  string
	Primary   color.NRGBA
	Secondary color.NRGBA
	Portrait  image.Image
}

// NewBatterView builds the panel content for a batter and the team they bat for.
func NewBatterView(p *players.Player, team *teams.Roster) BatterView {
	v := BatterView{
		Title:    fmt.Sprintf("%d. %s - %s", p.Slot, p.Name, p.Position),
		StatLine: p.StatLine(),
		Portrait: p.Portrait,
	}
	if team != nil {
		v.Primary = team.Identity.Primary
		v.Secondary = team.Identity.Secondary
	}
	return v
}

// BatterPanel draws the name banner, the stat line and the portrait when there is one.
func (r *Renderer) BatterPanel(v BatterView) *image.RGBA {
	img := raster.NewCanvas(BatterWidth, BatterHeight)

	raster.FillPolygon(img, v.Primary, raster.P(250, 100), raster.P(2500, 100), raster.P(2400, 250), raster.P(250, 250))
	raster.FillPolygon(img, White, raster.P(250, 250), raster.P(2400, 250), raster.P(2300, 400), raster.P(250, 400))
	if v.Portrait != nil {
		raster.FillEllipse(img, v.Secondary, image.Rect(0, 0, 500, 500))
	}

	titleSize := r.fonts.Fit(v.Title, 80, 1800, false)
	r.fonts.Draw(img, v.Title, 550, 120, titleSize, false, TextColor(v.Primary))
	statSize := r.fonts.Fit(v.StatLine, 60, 1700, false)
	r.fonts.Draw(img, v.StatLine, 550, 270, statSize, false, Black)

	if v.Portrait != nil {
		raster.Paste(img, v.Portrait, image.Pt(15, 15))
	}
	return img
}
