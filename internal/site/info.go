// Package site talks to the club website that announces which game is being streamed.
package site

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"log/slog"
	"strconv"

	"github.com/preston-bernstein/scorebug/internal/assets"
	"github.com/preston-bernstein/scorebug/internal/domain/teams"
	"github.com/preston-bernstein/scorebug/internal/logging"
	"github.com/preston-bernstein/scorebug/internal/render"
)

// GameInfo is the website's description of the game currently on air.
type GameInfo struct {
	Game          presence `json:"game"`
	LiveScoreID   flexID   `json:"live_score_id"`
	VideoID       string   `json:"youtube_video_id"`
	Camera        string   `json:"camera"`
	HomeLogo      string   `json:"home_logo"`
	AwayLogo      string   `json:"away_logo"`
	HomePrimary   string   `json:"home_primary_color"`
	HomeSecondary string   `json:"home_secondary_color"`
	AwayPrimary   string   `json:"away_primary_color"`
	AwaySecondary string   `json:"away_secondary_color"`
}

// HasGame reports whether the website lists a game at all.
func (i GameInfo) HasGame() bool {
	return bool(i.Game)
}

// GameID is the feed id of the game.
func (i GameInfo) GameID() string {
	return string(i.LiveScoreID)
}

// Streamable reports whether the game can be streamed: it needs a feed id and a video id.
func (i GameInfo) Streamable() bool {
	return i.HasGame() && i.LiveScoreID != "" && i.VideoID != ""
}

// Identities builds both teams' branding. Bad colors fall back to black and failed logo
// downloads leave the logo empty; both are logged.
func (i GameInfo) Identities(ctx context.Context, fetcher assets.Fetcher, logger *slog.Logger) (home, away teams.Identity) {
	home = identity(ctx, fetcher, logger, i.HomeLogo, i.HomePrimary, i.HomeSecondary)
	away = identity(ctx, fetcher, logger, i.AwayLogo, i.AwayPrimary, i.AwaySecondary)
	return home, away
}

func identity(ctx context.Context, fetcher assets.Fetcher, logger *slog.Logger, logo, primary, secondary string) teams.Identity {
	var id teams.Identity
	id.Primary = parseColor(logger, primary)
	id.Secondary = parseColor(logger, secondary)
	if logo == "" || fetcher == nil {
		return id
	}
	img, err := fetcher.Fetch(ctx, logo)
	if err != nil {
		logging.Warn(logger, "team logo fetch failed", logging.FieldURL, logo, logging.FieldError, err)
		return id
	}
	id.Logo = img
	return id
}

func parseColor(logger *slog.Logger, raw string) color.NRGBA {
	if raw == "" {
		return render.Black
	}
	c, err := render.ParseHex(raw)
	if err != nil {
		logging.Warn(logger, "invalid team color", logging.FieldError, err)
		return render.Black
	}
	return c
}

// presence follows the website's loose truthiness: null, false, 0, "0", "" and empty
// objects or arrays all mean no game.
type presence bool

func (p *presence) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "", "null", "false", `""`, "{}", "[]":
		*p = false
		return nil
	}
	// json.Number accepts numeric strings too, so "0" counts as zero.
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		f, err := n.Float64()
		*p = err != nil || f != 0
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case map[string]any:
		*p = len(val) > 0
	case []any:
		*p = len(val) > 0
	default:
		*p = true
	}
	return nil
}

// flexID accepts ids written as strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = flexID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexID(n.String())
	return nil
}
