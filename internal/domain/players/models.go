package players

import (
	"image"
	"strings"
)

// PitcherSlot is the lineup slot the feed uses for pitchers who are not batting.
const PitcherSlot = 0

// PositionPitcher is the position code for pitchers.
const PositionPitcher = "P"

// GameStats is the authoritative per-game line for a player as reported by the feed.
// It is always replaced as a whole; values are never accumulated across snapshots.
type GameStats struct {
	PlateAppearances int `json:"pa"`
	AtBats           int `json:"ab"`
	Runs             int `json:"r"`
	Hits             int `json:"h"`
	RBI              int `json:"rbi"`
	Walks            int `json:"bb"`
	Strikeouts       int `json:"so"`
	Doubles          int `json:"double"`
	Triples          int `json:"triple"`
	HomeRuns         int `json:"hr"`
	SacFlies         int `json:"sf"`
	HitByPitch       int `json:"hbp"`
	StolenBases      int `json:"sb"`
	CaughtStealing   int `json:"cs"`
	Pitches          int `json:"pitches"`
	Strikes          int `json:"strikes"`
	Balls            int `json:"balls"`
}

// Entry is one boxscore line of a snapshot, already converted from the wire schema.
type Entry struct {
	LineupCode     string
	Slot           int
	ID             string
	TeamID         string
	Name           string
	FirstName      string
	LastName       string
	PhotoURL       string
	Position       string
	InningsPitched bool
	Stats          GameStats
	Season         SeasonStats
}

// IsPitcher reports whether the entry describes a pitcher, either by explicit
// position or by the presence of an innings-pitched line.
func (e Entry) IsPitcher() bool {
	return e.Position == PositionPitcher || e.InningsPitched
}

// Player is one athlete tracked by a roster. Identity fields never change after New.
type Player struct {
	ID        string
	TeamID    string
	Name      string
	FirstName string
	LastName  string
	PhotoURL  string

	Slot     int
	Position string
	Stats    GameStats
	Season   SeasonStats

	// Portrait is the processed, face-cropped photo; nil when the feed has none.
	Portrait image.Image
}

// New builds a player from its first boxscore appearance.
func New(e Entry) *Player {
	p := &Player{
		ID:        e.ID,
		TeamID:    e.TeamID,
		Name:      e.Name,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		PhotoURL:  e.PhotoURL,
		Season:    e.Season.clone(),
	}
	p.Update(e)
	return p
}

// Update replaces the lineup attributes and the per-game line with the entry's values.
func (p *Player) Update(e Entry) {
	p.Slot = e.Slot
	p.Position = derivePosition(e)
	p.Stats = e.Stats
}

// HasPlateAppearance reports whether the player already batted in this game.
func (p *Player) HasPlateAppearance() bool {
	return p.Stats.PlateAppearances > 0
}

// IsPitcherSlot reports whether the player holds the non-batting pitcher slot.
func (p *Player) IsPitcherSlot() bool {
	return p.Slot == PitcherSlot
}

// ShortName renders "LASTNAME F." for compact lineup rows.
func (p *Player) ShortName() string {
	last := strings.ToUpper(strings.TrimSpace(p.LastName))
	first := []rune(strings.TrimSpace(p.FirstName))
	if last == "" {
		return p.Name
	}
	if len(first) == 0 {
		return last
	}
	return last + " " + string(first[0]) + "."
}

func derivePosition(e Entry) string {
	if e.Position != "" {
		return e.Position
	}
	if e.InningsPitched {
		return PositionPitcher
	}
	return ""
}
