package render

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/preston-bernstein/scorebug/internal/domain/players"
	"github.com/preston-bernstein/scorebug/internal/domain/teams"
	"github.com/preston-bernstein/scorebug/internal/raster"
)

// Lineup panel geometry.
const (
	LineupWidth   = 500
	lineupHeader  = 100
	lineupRow     = 50
	lineupSpacing = 10
	lineupMinRows = 10
	lineupAlpha   = 220
	lineupLogoH   = lineupHeader - 3*lineupSpacing
)

// LineupRow is one player line.
type LineupRow struct {
	Slot     string
	Name     string
	Position string
	Pitcher  bool
}

// LineupView is the content of a team lineup card.
type LineupView struct {
	Label     string
	Primary   color.NRGBA
	Secondary color.NRGBA
	Logo      image.Image
	Rows      []LineupRow
}

// NewLineupView lists the roster's lineup; label defaults to the team code.
func NewLineupView(team *teams.Roster, label string) LineupView {
	if label == "" {
		label = team.Code
	}
	v := LineupView{
		Label:     strings.ToUpper(label),
		Primary:   team.Identity.Primary,
		Secondary: team.Identity.Secondary,
		Logo:      team.Identity.Logo,
	}
	for _, p := range team.Lineup() {
		row := LineupRow{Name: p.ShortName(), Position: p.Position, Pitcher: p.Slot == players.PitcherSlot}
		if !row.Pitcher {
			row.Slot = strconv.Itoa(p.Slot)
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// LineupHeight is the panel height for n rows.
func LineupHeight(n int) int {
	if n < lineupMinRows {
		n = lineupMinRows
	}
	return lineupHeader + (lineupRow+lineupSpacing)*n
}

// LineupPanel draws the header with label and logo and one row per player.
// Pitcher rows use the secondary color and carry no slot number.
func (r *Renderer) LineupPanel(v LineupView) *image.RGBA {
	img := raster.NewCanvas(LineupWidth, LineupHeight(len(v.Rows)))

	bg := WithAlpha(v.Primary, lineupAlpha)
	pitcherBg := WithAlpha(v.Secondary, lineupAlpha)
	text := TextColor(bg)
	pitcherText := TextColor(pitcherBg)

	const s = lineupSpacing
	raster.FillPolygon(img, bg, raster.P(s, s), raster.P(LineupWidth-s, s), raster.P(LineupWidth-s, lineupHeader-s), raster.P(s, lineupHeader-s))
	r.fonts.Draw(img, v.Label, 150, 10, 60, true, text)

	y := float32(lineupHeader)
	for _, row := range v.Rows {
		fill, fg := bg, text
		if row.Pitcher {
			fill, fg = pitcherBg, pitcherText
		}
		raster.FillPolygon(img, fill,
			raster.P(0, y), raster.P(LineupWidth, y),
			raster.P(LineupWidth-50, y+lineupRow), raster.P(0, y+lineupRow))
		if row.Slot != "" {
			r.fonts.Draw(img, row.Slot, 10, float64(y), 30, false, fg)
		}
		r.fonts.Draw(img, row.Name, 50, float64(y), r.fonts.Fit(row.Name, 29, 350, false), false, fg)
		r.fonts.Draw(img, row.Position, 400, float64(y), 30, false, fg)
		y += lineupRow + lineupSpacing
	}

	if v.Logo != nil {
		logo := raster.ScaleToHeight(v.Logo, lineupLogoH)
		raster.Paste(img, logo, image.Pt(s*3/2, s*3/2))
	}
	return img
}
