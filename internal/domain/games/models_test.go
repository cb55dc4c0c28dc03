package games

import (
	"encoding/json"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/scorebug/internal/domain/players"
)

func newGame(t *testing.T) *Game {
	t.Helper()
	g, err := New(Options{ID: "84123", Mode: ModeLive, Resolution: image.Pt(2560, 1440)})
	require.NoError(t, err)
	return g
}

func snapshot(play int) Snapshot {
	return Snapshot{
		Play:     play,
		HomeID:   "10",
		AwayID:   "20",
		HomeCode: "NED",
		AwayCode: "CUB",
		Boxscore: []players.Entry{
			{LineupCode: "1011", Slot: 1, ID: "h1", TeamID: "10", Name: "Home One", Position: "SS"},
			{LineupCode: "1021", Slot: 2, ID: "h2", TeamID: "10", Name: "Home Two", Position: "CF"},
			{LineupCode: "1001", Slot: 0, ID: "hp", TeamID: "10", Name: "Home Pitcher", InningsPitched: true},
			{LineupCode: "2011", Slot: 1, ID: "a1", TeamID: "20", Name: "Away One", Position: "2B"},
			{LineupCode: "2001", Slot: 0, ID: "ap", TeamID: "20", Name: "Away Pitcher", Position: "P"},
		},
		Situation: Situation{
			BatterID:  "a1",
			PitcherID: "hp",
			Inning:    "TOP 5",
			Outs:      2,
			Balls:     3,
			Strikes:   2,
			Runner1:   true,
			Runner3:   true,
		},
		HomeRuns:  4,
		AwayRuns:  1,
		Timestamp: 1720000000000,
	}
}

func TestOptionsValidate(t *testing.T) {
	valid := Options{ID: "1", Mode: ModeReplay, ReplayMode: ReplaySequence, Resolution: image.Pt(10, 10)}
	require.NoError(t, valid.Validate())

	cases := map[string]func(*Options){
		"missing id":         func(o *Options) { o.ID = "" },
		"unknown mode":       func(o *Options) { o.Mode = "tape" },
		"unknown replay":     func(o *Options) { o.ReplayMode = "fast" },
		"zero resolution":    func(o *Options) { o.Resolution = image.Point{} },
		"negative dimension": func(o *Options) { o.Resolution = image.Pt(10, -1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			o := valid
			mutate(&o)
			assert.Error(t, o.Validate())
		})
	}
}

func TestUpdateAppliesSituation(t *testing.T) {
	g := newGame(t)
	require.False(t, g.Started())

	created := g.Update(snapshot(7))

	assert.Len(t, created, 5)
	assert.True(t, g.Started())
	assert.Equal(t, "5", g.Inning)
	assert.True(t, g.InningTop)
	assert.Equal(t, 2, g.Outs)
	assert.Equal(t, "3-2", g.Count())
	assert.Equal(t, [3]bool{true, false, true}, g.Bases)
	assert.Equal(t, 4, g.HomeScore)
	assert.Equal(t, 1, g.AwayScore)
	assert.Equal(t, 7, g.CurrentPlay)
	assert.Equal(t, int64(1720000000000), g.PlayTime)

	require.NotNil(t, g.Batter)
	assert.Equal(t, "a1", g.Batter.ID)
	assert.Same(t, g.Away, g.RosterOf(g.Batter))
	require.NotNil(t, g.Pitcher)
	assert.Equal(t, "hp", g.Pitcher.ID)
	assert.Same(t, g.Home, g.RosterOf(g.Pitcher))
}

func TestUpdateIsIdempotent(t *testing.T) {
	g := newGame(t)
	s := snapshot(3)
	g.Update(s)
	before := g.View()
	batter := g.Batter

	created := g.Update(s)

	assert.Empty(t, created)
	assert.Equal(t, before, g.View())
	assert.Same(t, batter, g.Batter)
}

func TestUnknownBatterLeavesReferenceUnset(t *testing.T) {
	g := newGame(t)
	s := snapshot(1)
	s.Situation.BatterID = "ghost"
	s.Situation.PitcherID = "nobody"
	g.Update(s)

	assert.Nil(t, g.Batter)
	assert.Nil(t, g.Pitcher)
	assert.Nil(t, g.View().Batter)
}

func TestFinalInningNormalized(t *testing.T) {
	g := newGame(t)
	s := snapshot(90)
	s.Situation.Inning = "FINAL"
	g.Update(s)

	assert.Equal(t, FinalMarker, g.Inning)
	assert.True(t, g.IsFinal())
	assert.False(t, g.InningTop)
}

func TestParseInning(t *testing.T) {
	cases := []struct {
		raw    string
		inning string
		top    bool
	}{
		{"TOP 5", "5", true},
		{"BOT 9", "9", false},
		{"top 1", "1", true},
		{"FINAL", "F", false},
		{"", "", false},
	}
	for _, tc := range cases {
		inning, top := ParseInning(tc.raw)
		assert.Equal(t, tc.inning, inning, tc.raw)
		assert.Equal(t, tc.top, top, tc.raw)
	}
}

func TestForceEndIsMonotonic(t *testing.T) {
	g := newGame(t)
	assert.False(t, g.Ended())
	g.ForceEnd()
	g.ForceEnd()
	assert.True(t, g.Ended())
	g.Update(snapshot(2))
	assert.True(t, g.Ended())
}

func TestMarshalJSONUsesView(t *testing.T) {
	g := newGame(t)
	g.Update(snapshot(4))

	raw, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded View
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "84123", decoded.ID)
	assert.Equal(t, "3-2", decoded.Count)
	require.NotNil(t, decoded.Home)
	assert.Equal(t, "NED", decoded.Home.Code)
	assert.Len(t, decoded.Home.Lineup, 3)
	assert.Empty(t, decoded.ReplayMode)
	assert.Equal(t, int64(1720000000000), decoded.PlayTime)
	assert.Equal(t, "2024-07-03T09:46:40Z", decoded.PlayedAt)
}
