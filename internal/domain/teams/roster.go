package teams

import (
	"image"
	"image/color"
	"sort"

	"github.com/preston-bernstein/scorebug/internal/domain/players"
)

// Identity is the visual branding of a team, supplied by configuration rather than the feed.
type Identity struct {
	Primary   color.NRGBA
	Secondary color.NRGBA
	Logo      image.Image
}

// Roster tracks one team's batters and its current pitcher across snapshots.
// Batters are never removed; the pitcher reference is replaced when a new pitcher appears.
type Roster struct {
	ID       string
	Code     string
	Identity Identity

	lineup  map[string]*players.Player
	pitcher *players.Player
}

// New returns an empty roster for the given team.
func New(id, code string, identity Identity) *Roster {
	return &Roster{
		ID:       id,
		Code:     code,
		Identity: identity,
		lineup:   make(map[string]*players.Player),
	}
}

// Update pushes a snapshot's boxscore into the roster. Entries belonging to other teams
// are ignored. currentPitcherID is the situation's pitcher and breaks ties when several
// pitcher-slot entries are present. Players constructed by this call are returned so the
// caller can load their portraits.
func (r *Roster) Update(entries []players.Entry, currentPitcherID string) []*players.Player {
	var created []*players.Player
	var candidates []players.Entry

	for _, e := range sortedEntries(entries) {
		if e.TeamID != r.ID || e.ID == "" {
			continue
		}
		if e.Slot != players.PitcherSlot {
			if p, ok := r.lineup[e.ID]; ok {
				p.Update(e)
				continue
			}
			p := players.New(e)
			r.lineup[e.ID] = p
			created = append(created, p)
			continue
		}
		if e.IsPitcher() {
			candidates = append(candidates, e)
		}
	}

	if next, ok := r.choosePitcher(candidates, currentPitcherID); ok {
		if r.pitcher != nil && r.pitcher.ID == next.ID {
			r.pitcher.Update(next)
		} else {
			r.pitcher = players.New(next)
			created = append(created, r.pitcher)
		}
	} else if r.pitcher == nil {
		// Pitchers who also bat (no designated hitter) only appear in a batting slot.
		r.pitcher = r.battingPitcher(currentPitcherID)
	}
	return created
}

func (r *Roster) choosePitcher(candidates []players.Entry, currentPitcherID string) (players.Entry, bool) {
	if len(candidates) == 0 {
		return players.Entry{}, false
	}
	for _, c := range candidates {
		if c.ID == currentPitcherID {
			return c, true
		}
	}
	if r.pitcher != nil {
		for _, c := range candidates {
			if c.ID == r.pitcher.ID {
				return c, true
			}
		}
	}
	return candidates[len(candidates)-1], true
}

func (r *Roster) battingPitcher(currentPitcherID string) *players.Player {
	if p, ok := r.lineup[currentPitcherID]; ok {
		return p
	}
	for _, p := range r.Lineup() {
		if p.Position == players.PositionPitcher {
			return p
		}
	}
	return nil
}

// Lineup returns the batters ordered by slot with the current pitcher appended when it is
// not already one of them.
func (r *Roster) Lineup() []*players.Player {
	out := make([]*players.Player, 0, len(r.lineup)+1)
	for _, p := range r.lineup {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Slot != out[j].Slot {
			return out[i].Slot < out[j].Slot
		}
		return out[i].ID < out[j].ID
	})
	if r.pitcher != nil {
		if _, ok := r.lineup[r.pitcher.ID]; !ok {
			out = append(out, r.pitcher)
		}
	}
	return out
}

// Pitcher is the team's current pitcher, nil until the feed names one.
func (r *Roster) Pitcher() *players.Player {
	return r.pitcher
}

// Batter looks a player up in the batting lineup.
func (r *Roster) Batter(id string) (*players.Player, bool) {
	p, ok := r.lineup[id]
	return p, ok
}

func sortedEntries(entries []players.Entry) []players.Entry {
	out := make([]players.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LineupCode < out[j].LineupCode
	})
	return out
}
