package players

import (
	"fmt"
	"strconv"
	"strings"
)

// Season stat codes used for pre-game display.
const (
	StatAtBats   = "AB"
	StatHits     = "H"
	StatDoubles  = "DOUBLE"
	StatTriples  = "TRIPLE"
	StatHomeRuns = "HR"
	StatWalks    = "BB"
)

// SeasonStats maps a feed stat code to its raw season value.
type SeasonStats map[string]string

// Int returns the numeric value of a stat code, zero when absent or not numeric.
func (s SeasonStats) Int(code string) int {
	raw := strings.TrimSpace(s[code])
	if raw == "" {
		return 0
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}

func (s SeasonStats) clone() SeasonStats {
	if s == nil {
		return SeasonStats{}
	}
	out := make(SeasonStats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// FormatAverage renders a batting average the broadcast way: three decimals with the
// leading zero stripped (".321"). Zero at-bats yields "0".
func FormatAverage(hits, atBats int) string {
	if atBats <= 0 {
		return "0"
	}
	avg := fmt.Sprintf("%.3f", float64(hits)/float64(atBats))
	return strings.TrimPrefix(avg, "0")
}

// SeasonAverage is the season batting average string.
func (p *Player) SeasonAverage() string {
	return FormatAverage(p.Season.Int(StatHits), p.Season.Int(StatAtBats))
}

var seasonLineStats = []struct {
	code  string
	label string
}{
	{StatHits, "H"},
	{StatDoubles, "2B"},
	{StatTriples, "3B"},
	{StatHomeRuns, "HR"},
	{StatWalks, "BB"},
}

// StatLine is the one-line summary shown under the batter's name. Once the player
// has batted it reports this game; before that it falls back to season totals.
func (p *Player) StatLine() string {
	if p.HasPlateAppearance() {
		return p.gameLine()
	}
	return p.seasonLine()
}

func (p *Player) gameLine() string {
	line := fmt.Sprintf("This game: %d for %d", p.Stats.Hits, p.Stats.AtBats)
	switch {
	case p.Stats.HomeRuns > 0:
		line += fmt.Sprintf(", %d HR", p.Stats.HomeRuns)
	case p.Stats.Triples > 0:
		line += fmt.Sprintf(", %d triple", p.Stats.Triples)
	case p.Stats.Doubles > 0:
		line += fmt.Sprintf(", %d double", p.Stats.Doubles)
	case p.Stats.Walks > 0:
		line += fmt.Sprintf(", %d BB", p.Stats.Walks)
	}
	return line
}

func (p *Player) seasonLine() string {
	line := "This season: " + p.SeasonAverage() + " avg"
	for _, s := range seasonLineStats {
		if v := p.Season.Int(s.code); v != 0 {
			line += fmt.Sprintf(", %d %s", v, s.label)
		}
	}
	return line
}
