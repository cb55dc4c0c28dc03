package wbsc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/domain/players"
	"github.com/preston-bernstein/scorebug/internal/feed"
)

// DecodePlay parses a play payload into a snapshot. Any failure is reported as
// feed.ErrMalformed.
func DecodePlay(r io.Reader, play int) (games.Snapshot, error) {
	var payload playPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return games.Snapshot{}, feed.Malformed(fmt.Errorf("decode play %d: %w", play, err))
	}
	if err := payload.validate(); err != nil {
		return games.Snapshot{}, feed.Malformed(fmt.Errorf("play %d: %w", play, err))
	}
	return mapSnapshot(payload, play), nil
}

// DecodeLatest parses the latest-play index document.
func DecodeLatest(r io.Reader) (int, error) {
	var n flexInt
	if err := json.NewDecoder(r).Decode(&n); err != nil {
		return 0, feed.Malformed(fmt.Errorf("decode latest: %w", err))
	}
	if n < 0 {
		return 0, feed.Malformed(fmt.Errorf("negative latest play %d", n))
	}
	return int(n), nil
}

func (p playPayload) validate() error {
	switch {
	case p.Situation == nil:
		return errors.New("missing situation")
	case len(p.PlayData) == 0:
		return errors.New("empty playdata")
	case p.EventHomeID == "" || p.EventAwayID == "":
		return errors.New("missing team ids")
	}
	return nil
}

func mapSnapshot(p playPayload, play int) games.Snapshot {
	return games.Snapshot{
		Play:     play,
		HomeID:   string(p.EventHomeID),
		AwayID:   string(p.EventAwayID),
		HomeCode: p.EventHome,
		AwayCode: p.EventAway,
		Boxscore: mapBoxscore(p.Boxscore),
		Situation: games.Situation{
			BatterID:  string(p.Situation.BatterID),
			PitcherID: string(p.Situation.PitcherID),
			Inning:    p.Situation.CurrentInning,
			Outs:      int(p.Situation.Outs),
			Balls:     int(p.Situation.Balls),
			Strikes:   int(p.Situation.Strikes),
			Runner1:   truthy(p.Situation.Runner1),
			Runner2:   truthy(p.Situation.Runner2),
			Runner3:   truthy(p.Situation.Runner3),
		},
		HomeRuns:  int(p.Linescore.HomeTotals.R),
		AwayRuns:  int(p.Linescore.AwayTotals.R),
		Timestamp: int64(p.PlayData[0].T),
	}
}

func mapBoxscore(b boxscore) []players.Entry {
	codes := make([]string, 0, len(b))
	for code := range b {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	entries := make([]players.Entry, 0, len(codes))
	for _, code := range codes {
		slot, ok := slotFromCode(code)
		if !ok {
			continue
		}
		entries = append(entries, mapEntry(code, slot, b[code]))
	}
	return entries
}

// slotFromCode extracts the batting slot, the third character of the lineup code.
func slotFromCode(code string) (int, bool) {
	if len(code) < 3 || code[2] < '0' || code[2] > '9' {
		return 0, false
	}
	return int(code[2] - '0'), true
}

func mapEntry(code string, slot int, e boxscoreEntry) players.Entry {
	return players.Entry{
		LineupCode:     code,
		Slot:           slot,
		ID:             string(e.PlayerID),
		TeamID:         string(e.TeamID),
		Name:           e.Name,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		PhotoURL:       e.Image,
		Position:       strings.TrimSpace(e.Pos),
		InningsPitched: present(e.PitchIP),
		Stats: players.GameStats{
			PlateAppearances: int(e.PA),
			AtBats:           int(e.AB),
			Runs:             int(e.R),
			Hits:             int(e.H),
			RBI:              int(e.RBI),
			Walks:            int(e.BB),
			Strikeouts:       int(e.SO),
			Doubles:          int(e.Double),
			Triples:          int(e.Triple),
			HomeRuns:         int(e.HR),
			SacFlies:         int(e.SF),
			HitByPitch:       int(e.HBP),
			StolenBases:      int(e.SB),
			CaughtStealing:   int(e.CS),
			Pitches:          int(e.Pitches),
			Strikes:          int(e.Strikes),
			Balls:            int(e.Balls),
		},
		Season: mapSeason(e.Season),
	}
}

func mapSeason(s seasonStats) players.SeasonStats {
	out := make(players.SeasonStats, len(s))
	for k, v := range s {
		out[k] = string(v)
	}
	return out
}
