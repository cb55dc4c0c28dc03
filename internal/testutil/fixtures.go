package testutil

import (
	"github.com/preston-bernstein/scorebug/internal/domain/games"
	"github.com/preston-bernstein/scorebug/internal/domain/players"
)

// Team ids and codes used by the sample snapshots.
const (
	HomeID   = "1203"
	AwayID   = "1188"
	HomeCode = "NED"
	AwayCode = "CUB"
	GameID   = "84123"
)

// SampleBoxscore returns two short lineups with a pitcher on each side.
func SampleBoxscore() []players.Entry {
	return []players.Entry{
		{LineupCode: "1203011", Slot: 1, ID: "h1", TeamID: HomeID, Name: "Dwayne Kemp", FirstName: "Dwayne", LastName: "Kemp", Position: "CF"},
		{LineupCode: "1203021", Slot: 2, ID: "h2", TeamID: HomeID, Name: "Ray-Patrick Didder", FirstName: "Ray-Patrick", LastName: "Didder", Position: "SS"},
		{LineupCode: "1203001", Slot: 0, ID: "hp", TeamID: HomeID, Name: "Lars Huijer", FirstName: "Lars", LastName: "Huijer", InningsPitched: true, Stats: players.GameStats{Pitches: 61}},
		{LineupCode: "1188011", Slot: 1, ID: "a1", TeamID: AwayID, Name: "Yoelkis Guibert", FirstName: "Yoelkis", LastName: "Guibert", Position: "LF"},
		{LineupCode: "1188021", Slot: 2, ID: "a2", TeamID: AwayID, Name: "Ariel Martinez", FirstName: "Ariel", LastName: "Martinez", Position: "C"},
		{LineupCode: "1188001", Slot: 0, ID: "ap", TeamID: AwayID, Name: "Livan Moinelo", FirstName: "Livan", LastName: "Moinelo", Position: "P"},
	}
}

// SampleSnapshot builds a snapshot for play with the given feed timestamp (ms).
func SampleSnapshot(play int, timestamp int64) games.Snapshot {
	return games.Snapshot{
		Play:     play,
		HomeID:   HomeID,
		AwayID:   AwayID,
		HomeCode: HomeCode,
		AwayCode: AwayCode,
		Boxscore: SampleBoxscore(),
		Situation: games.Situation{
			BatterID:  "a1",
			PitcherID: "hp",
			Inning:    "TOP 1",
		},
		Timestamp: timestamp,
	}
}

// FinalSnapshot is SampleSnapshot with the final inning marker.
func FinalSnapshot(play int, timestamp int64) games.Snapshot {
	s := SampleSnapshot(play, timestamp)
	s.Situation.Inning = games.FinalToken
	return s
}
