package games

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/preston-bernstein/scorebug/internal/domain/players"
	"github.com/preston-bernstein/scorebug/internal/domain/teams"
	"github.com/preston-bernstein/scorebug/internal/timeutil"
)

// Mode selects between following a game as it happens and replaying a recorded one.
type Mode string

const (
	ModeLive   Mode = "live"
	ModeReplay Mode = "replay"
)

// ReplayMode selects the pacing used when Mode is ModeReplay.
type ReplayMode string

const (
	ReplayRealtime ReplayMode = "realtime"
	ReplaySequence ReplayMode = "sequence"
)

// DefaultResolution is the camera input size the overlay is composed for.
var DefaultResolution = image.Pt(2560, 1440)

// Options identify one game instance.
type Options struct {
	ID         string
	Mode       Mode
	ReplayMode ReplayMode
	Resolution image.Point
	Home       teams.Identity
	Away       teams.Identity
}

// Validate rejects option combinations the playback loop cannot run.
func (o Options) Validate() error {
	if o.ID == "" {
		return errors.New("game id is required")
	}
	switch o.Mode {
	case ModeLive, ModeReplay:
	default:
		return fmt.Errorf("unknown mode %q", o.Mode)
	}
	if o.Mode == ModeReplay {
		switch o.ReplayMode {
		case ReplayRealtime, ReplaySequence:
		default:
			return fmt.Errorf("unknown replay mode %q", o.ReplayMode)
		}
	}
	if o.Resolution.X <= 0 || o.Resolution.Y <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", o.Resolution.X, o.Resolution.Y)
	}
	return nil
}

// Game is the reconciled state of one running game. Update is its only mutator and
// must be called from a single goroutine; ForceEnd is safe from any goroutine.
type Game struct {
	ID         string
	Mode       Mode
	ReplayMode ReplayMode
	Resolution image.Point

	Home *teams.Roster
	Away *teams.Roster

	HomeScore int
	AwayScore int
	Inning    string
	InningTop bool
	Outs      int
	Balls     int
	Strikes   int
	Bases     [3]bool

	Batter  *players.Player
	Pitcher *players.Player

	CurrentPlay int
	PlayTime    int64

	homeIdentity teams.Identity
	awayIdentity teams.Identity
	started      bool
	forceEnd     atomic.Bool
}

// New creates an un-started game. Rosters are created on the first Update.
func New(opts Options) (*Game, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Game{
		ID:           opts.ID,
		Mode:         opts.Mode,
		ReplayMode:   opts.ReplayMode,
		Resolution:   opts.Resolution,
		homeIdentity: opts.Home,
		awayIdentity: opts.Away,
	}, nil
}

// Update applies a snapshot: every situational field is replaced and both rosters
// receive the boxscore. Players created by this update are returned.
func (g *Game) Update(s Snapshot) []*players.Player {
	if g.Home == nil {
		g.Home = teams.New(s.HomeID, s.HomeCode, g.homeIdentity)
		g.Away = teams.New(s.AwayID, s.AwayCode, g.awayIdentity)
	}

	created := g.Home.Update(s.Boxscore, s.Situation.PitcherID)
	created = append(created, g.Away.Update(s.Boxscore, s.Situation.PitcherID)...)

	g.Batter = resolveBatter(s.Situation.BatterID, g.Home, g.Away)
	g.Pitcher = resolvePitcher(s.Situation.PitcherID, g.Home, g.Away)

	g.HomeScore = s.HomeRuns
	g.AwayScore = s.AwayRuns
	g.Inning, g.InningTop = ParseInning(s.Situation.Inning)
	g.Outs = s.Situation.Outs
	g.Balls = s.Situation.Balls
	g.Strikes = s.Situation.Strikes
	g.Bases = [3]bool{s.Situation.Runner1, s.Situation.Runner2, s.Situation.Runner3}
	g.CurrentPlay = s.Play
	g.PlayTime = s.Timestamp
	g.started = true
	return created
}

func resolveBatter(id string, rosters ...*teams.Roster) *players.Player {
	if id == "" {
		return nil
	}
	for _, r := range rosters {
		if p, ok := r.Batter(id); ok {
			return p
		}
	}
	return nil
}

func resolvePitcher(id string, rosters ...*teams.Roster) *players.Player {
	if id == "" {
		return nil
	}
	for _, r := range rosters {
		if p := r.Pitcher(); p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// Started reports whether at least one snapshot has been applied.
func (g *Game) Started() bool {
	return g.started
}

// Identities returns the configured branding for the home and away teams. It is
// available before the first Update.
func (g *Game) Identities() (home, away teams.Identity) {
	return g.homeIdentity, g.awayIdentity
}

// IsFinal reports whether the last applied play carried the final inning marker.
func (g *Game) IsFinal() bool {
	return g.Inning == FinalMarker
}

// ForceEnd raises the termination flag. It cannot be cleared.
func (g *Game) ForceEnd() {
	g.forceEnd.Store(true)
}

// Ended reports whether ForceEnd has been called.
func (g *Game) Ended() bool {
	return g.forceEnd.Load()
}

// Count renders the ball-strike count as "B-S".
func (g *Game) Count() string {
	return fmt.Sprintf("%d-%d", g.Balls, g.Strikes)
}

// RosterOf returns the roster that owns the player.
func (g *Game) RosterOf(p *players.Player) *teams.Roster {
	if p == nil || g.Home == nil {
		return nil
	}
	switch p.TeamID {
	case g.Home.ID:
		return g.Home
	case g.Away.ID:
		return g.Away
	}
	return nil
}

// PlayerView is the JSON shape of a player in a View.
type PlayerView struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Slot     int               `json:"slot"`
	Position string            `json:"position,omitempty"`
	Stats    players.GameStats `json:"stats"`
	StatLine string            `json:"statLine"`
}

// TeamView is the JSON shape of a roster in a View.
type TeamView struct {
	ID      string       `json:"id"`
	Code    string       `json:"code"`
	Score   int          `json:"score"`
	Lineup  []PlayerView `json:"lineup"`
	Pitcher *PlayerView  `json:"pitcher,omitempty"`
}

// View is a read-only summary of the game suitable for the status API.
type View struct {
	ID          string      `json:"id"`
	Mode        Mode        `json:"mode"`
	ReplayMode  ReplayMode  `json:"replayMode,omitempty"`
	Started     bool        `json:"started"`
	Final       bool        `json:"final"`
	Ended       bool        `json:"ended"`
	CurrentPlay int         `json:"currentPlay"`
	PlayTime    int64       `json:"playTime"`
	PlayedAt    string      `json:"playedAt,omitempty"`
	Inning      string      `json:"inning"`
	InningTop   bool        `json:"inningTop"`
	Outs        int         `json:"outs"`
	Count       string      `json:"count"`
	Bases       [3]bool     `json:"bases"`
	Home        *TeamView   `json:"home,omitempty"`
	Away        *TeamView   `json:"away,omitempty"`
	Batter      *PlayerView `json:"batter,omitempty"`
	Pitcher     *PlayerView `json:"pitcher,omitempty"`
}

// View copies the current state. Call it from the goroutine that runs Update.
func (g *Game) View() View {
	v := View{
		ID:          g.ID,
		Mode:        g.Mode,
		Started:     g.started,
		Final:       g.IsFinal(),
		Ended:       g.Ended(),
		CurrentPlay: g.CurrentPlay,
		PlayTime:    g.PlayTime,
		PlayedAt:    timeutil.FormatMillis(g.PlayTime),
		Inning:      g.Inning,
		InningTop:   g.InningTop,
		Outs:        g.Outs,
		Count:       g.Count(),
		Bases:       g.Bases,
		Batter:      playerView(g.Batter),
		Pitcher:     playerView(g.Pitcher),
	}
	if g.Mode == ModeReplay {
		v.ReplayMode = g.ReplayMode
	}
	if g.Home != nil {
		v.Home = teamView(g.Home, g.HomeScore)
		v.Away = teamView(g.Away, g.AwayScore)
	}
	return v
}

// MarshalJSON encodes the game through its View.
func (g *Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.View())
}

func teamView(r *teams.Roster, score int) *TeamView {
	tv := &TeamView{ID: r.ID, Code: r.Code, Score: score, Pitcher: playerView(r.Pitcher())}
	for _, p := range r.Lineup() {
		tv.Lineup = append(tv.Lineup, *playerView(p))
	}
	return tv
}

func playerView(p *players.Player) *PlayerView {
	if p == nil {
		return nil
	}
	return &PlayerView{
		ID:       p.ID,
		Name:     p.Name,
		Slot:     p.Slot,
		Position: p.Position,
		Stats:    p.Stats,
		StatLine: p.StatLine(),
	}
}
