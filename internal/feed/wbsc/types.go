package wbsc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// playPayload is the wire schema of <base>/<game>/play<N>.json. Only the fields the
// overlay needs are declared.
type playPayload struct {
	EventHomeID flexString `json:"eventhomeid"`
	EventAwayID flexString `json:"eventawayid"`
	EventHome   string     `json:"eventhome"`
	EventAway   string     `json:"eventaway"`
	Boxscore    boxscore   `json:"boxscore"`
	Situation   *situation `json:"situation"`
	Linescore   linescore  `json:"linescore"`
	PlayData    []playData `json:"playdata"`
}

// boxscore is keyed by lineup code: team digit, a separator, batting slot, then a sequence.
type boxscore map[string]boxscoreEntry

type boxscoreEntry struct {
	PlayerID  flexString      `json:"playerid"`
	TeamID    flexString      `json:"teamid"`
	Name      string          `json:"name"`
	FirstName string          `json:"firstname"`
	LastName  string          `json:"lastname"`
	Image     string          `json:"image"`
	Pos       string          `json:"POS"`
	PitchIP   json.RawMessage `json:"PITCHIP"`
	Season    seasonStats     `json:"SEASON"`

	PA      flexInt `json:"PA"`
	AB      flexInt `json:"AB"`
	R       flexInt `json:"R"`
	H       flexInt `json:"H"`
	RBI     flexInt `json:"RBI"`
	BB      flexInt `json:"BB"`
	SO      flexInt `json:"SO"`
	Double  flexInt `json:"DOUBLE"`
	Triple  flexInt `json:"TRIPLE"`
	HR      flexInt `json:"HR"`
	SF      flexInt `json:"SF"`
	HBP     flexInt `json:"HBP"`
	SB      flexInt `json:"SB"`
	CS      flexInt `json:"CS"`
	Pitches flexInt `json:"PITCHES"`
	Strikes flexInt `json:"STRIKES"`
	Balls   flexInt `json:"BALLS"`
}

type seasonStats map[string]flexString

type situation struct {
	BatterID      flexString      `json:"batterid"`
	PitcherID     flexString      `json:"pitcherid"`
	CurrentInning string          `json:"currentinning"`
	Outs          flexInt         `json:"outs"`
	Balls         flexInt         `json:"balls"`
	Strikes       flexInt         `json:"strikes"`
	Runner1       json.RawMessage `json:"runner1"`
	Runner2       json.RawMessage `json:"runner2"`
	Runner3       json.RawMessage `json:"runner3"`
}

type linescore struct {
	HomeTotals totals `json:"hometotals"`
	AwayTotals totals `json:"awaytotals"`
}

type totals struct {
	R flexInt `json:"R"`
}

type playData struct {
	T flexInt64 `json:"t"`
}

// The feed serializes empty objects as [] and mixes numbers with numeric strings,
// so the scalar and map types below accept either form.

func isEmptyArray(data []byte) bool {
	return bytes.Equal(bytes.Join(bytes.Fields(data), nil), []byte("[]"))
}

func (b *boxscore) UnmarshalJSON(data []byte) error {
	if isEmptyArray(data) || string(data) == "null" {
		*b = nil
		return nil
	}
	var m map[string]boxscoreEntry
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*b = m
	return nil
}

func (s *seasonStats) UnmarshalJSON(data []byte) error {
	if isEmptyArray(data) || string(data) == "null" {
		*s = nil
		return nil
	}
	var m map[string]flexString
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*s = m
	return nil
}

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	n, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	n, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	*f = flexInt64(n)
	return nil
}

func parseFlexNumber(data []byte) (int64, error) {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return 0, err
	}
	raw := strings.TrimSpace(string(s))
	if raw == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("expected number, got %q", raw)
	}
	return int64(f), nil
}

// truthy reports whether a loosely typed field is set: present, not null, not an empty
// string, not false and not numeric zero.
func truthy(raw json.RawMessage) bool {
	data := bytes.TrimSpace(raw)
	switch string(data) {
	case "", "null", "false", `""`, "[]", "{}":
		return false
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		f, err := n.Float64()
		return err != nil || f != 0
	}
	return true
}

// present reports whether a field was sent with any value other than null or "".
func present(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", `""`:
		return false
	}
	return true
}
