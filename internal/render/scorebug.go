package render

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/raster"
)

// Scorebug canvas size; the compositor rescales it.
const (
	ScorebugWidth  = 1000
	ScorebugHeight = 750
)

// Base diamond geometry: the glyph spans baseSpan*2 horizontally from basesX.
const (
	baseSpan        = 156
	baseHalf        = 71
	basesX          = 650
	basesY          = 320
	baseBorderWidth = 10
)

var (
	// RunnerColor fills the diamond of an occupied base.
	RunnerColor = color.RGBA{R: 255, G: 255, B: 128, A: 255}
	// PanelBackground is the translucent backdrop of the scorebug.
	PanelBackground = color.RGBA{A: 180}

	scorebugText = color.NRGBA{R: 255, G: 255, B: 255, A: 200}
	baseBorder   = color.NRGBA{R: 255, G: 255, B: 255, A: 170}
)

// ScorebugView is everything the scorebug shows.
type ScorebugView struct {
	AwayCode  string
	HomeCode  string
	AwayScore string
	HomeScore string
	AwayColor color.NRGBA
	HomeColor color.NRGBA

	PitcherName string
	PitchCount  string

	Inning    string
	InningTop bool
	Outs      string
	Count     string
	Bases     [3]bool
}

// NewScorebugView extracts the scorebug fields from a game.
func NewScorebugView(g *games.Game) ScorebugView {
	v := ScorebugView{
		AwayScore: strconv.Itoa(g.AwayScore),
		HomeScore: strconv.Itoa(g.HomeScore),
		Inning:    g.Inning,
		InningTop: g.InningTop,
		Outs:      strconv.Itoa(g.Outs),
		Count:     g.Count(),
		Bases:     g.Bases,
	}
	if g.Away != nil {
		v.AwayCode = teamCode(g.Away.Code)
		v.AwayColor = g.Away.Identity.Primary
	}
	if g.Home != nil {
		v.HomeCode = teamCode(g.Home.Code)
		v.HomeColor = g.Home.Identity.Primary
	}
	if g.Pitcher != nil {
		v.PitcherName = g.Pitcher.Name
		v.PitchCount = "P: " + strconv.Itoa(g.Pitcher.Stats.Pitches)
	}
	return v
}

// teamCode is the upper-cased first three characters of a team code.
func teamCode(code string) string {
	r := []rune(strings.ToUpper(code))
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

// BasePolygon returns the diamond for base 0 (first), 1 (second) or 2 (third).
func BasePolygon(base int) []raster.Pt {
	c := BaseCenter(base)
	x, y, h := float32(c.X), float32(c.Y), float32(baseHalf)
	return []raster.Pt{raster.P(x, y-h), raster.P(x+h, y), raster.P(x, y+h), raster.P(x-h, y)}
}

// BaseCenter returns the center of a base diamond on the scorebug canvas.
func BaseCenter(base int) image.Point {
	switch base {
	case 0:
		return image.Pt(basesX+2*baseSpan-baseHalf, basesY+baseSpan)
	case 1:
		return image.Pt(basesX+baseSpan, basesY+baseHalf)
	default:
		return image.Pt(basesX+baseHalf, basesY+baseSpan)
	}
}

// Scorebug draws the score, count, outs, inning, pitcher and baserunners.
func (r *Renderer) Scorebug(v ScorebugView) *image.RGBA {
	img := raster.NewCanvas(ScorebugWidth, ScorebugHeight)

	raster.FillRoundedRect(img, PanelBackground, image.Rect(0, 140, 1000, 260), 30)
	raster.FillRoundedRect(img, PanelBackground, image.Rect(0, 300, 1000, 750), 30)
	raster.FillRect(img, v.AwayColor, image.Rect(0, 300, 600, 450))
	raster.FillRect(img, v.HomeColor, image.Rect(0, 450, 600, 600))

	for base, occupied := range v.Bases {
		pts := BasePolygon(base)
		if occupied {
			raster.FillPolygon(img, RunnerColor, pts...)
		}
		raster.StrokePolygon(img, baseBorder, baseBorderWidth, pts...)
	}

	r.drawTeamLine(img, v.AwayCode, v.AwayScore, v.AwayColor, 300)
	r.drawTeamLine(img, v.HomeCode, v.HomeScore, v.HomeColor, 450)

	if v.PitcherName != "" {
		size := r.fonts.Fit(v.PitcherName, 59, 700, false)
		r.fonts.Draw(img, v.PitcherName, 20, 147, size, false, scorebugText)
		r.fonts.Draw(img, v.PitchCount, 800, 147, 60, false, scorebugText)
	}

	raster.FillPolygon(img, baseBorder, inningArrow(v.InningTop)...)
	r.fonts.Draw(img, v.Inning, 125, 600, 120, true, scorebugText)
	r.fonts.Draw(img, v.Outs, 330, 600, 120, true, scorebugText)
	r.fonts.Draw(img, "out", 410, 600, 100, false, scorebugText)

	countWidth := r.fonts.Measure(v.Count, 120, true)
	r.fonts.Draw(img, v.Count, float64(BaseCenter(1).X)-countWidth/2, 600, 120, true, scorebugText)
	return img
}

// drawTeamLine writes the team code left-aligned and the score right-aligned at x=500.
func (r *Renderer) drawTeamLine(img *image.RGBA, code, score string, bg color.NRGBA, y float64) {
	fg := TextColor(bg)
	r.fonts.Draw(img, code, 20, y, 120, true, fg)
	width := r.fonts.Measure(score, 120, true)
	r.fonts.Draw(img, score, 500-width, y, 120, true, fg)
}

// inningArrow points up in the top half of an inning and down in the bottom half.
func inningArrow(top bool) []raster.Pt {
	tip := float32(675 + 40)
	if top {
		tip = 675 - 40
	}
	return []raster.Pt{raster.P(70, 675), raster.P(110, 675), raster.P(90, tip)}
}
