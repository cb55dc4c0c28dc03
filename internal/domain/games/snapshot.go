package games

import (
	"strings"

	"github.com/preston-bernstein/scorebug/internal/domain/players"
)

// FinalToken is the feed's inning label once the game is over.
const FinalToken = "FINAL"

// FinalMarker is the normalized inning value shown after FinalToken is observed.
const FinalMarker = "F"

// Situation is the on-field state carried by a snapshot.
type Situation struct {
	BatterID  string
	PitcherID string
	// Inning is the raw label, e.g. "TOP 5", "BOT 9" or "FINAL".
	Inning  string
	Outs    int
	Balls   int
	Strikes int
	Runner1 bool
	Runner2 bool
	Runner3 bool
}

// Snapshot is the full game state for one play index, as delivered by a feed.
type Snapshot struct {
	Play      int
	HomeID    string
	AwayID    string
	HomeCode  string
	AwayCode  string
	Boxscore  []players.Entry
	Situation Situation
	HomeRuns  int
	AwayRuns  int
	// Timestamp is the epoch milliseconds of the play's first play-data entry.
	Timestamp int64
}

// ParseInning splits a raw inning label into its display value and half.
// The last word is the inning; the label is top-of-inning when its first word is "TOP".
func ParseInning(raw string) (inning string, top bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", false
	}
	inning = fields[len(fields)-1]
	if inning == FinalToken {
		inning = FinalMarker
	}
	return inning, strings.EqualFold(fields[0], "TOP")
}
