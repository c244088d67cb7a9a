package nbastats

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/game-features/internal/domain/gamelog"
)

// gameIDWidth is the provider's zero-padded game id length (0022300001).
const gameIDWidth = 10

var requiredColumns = [][]string{
	{"game_id"},
	{"game_date"},
	{"team_id"},
	{"pts", "points"},
	{"wl"},
	{"matchup"},
}

var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"Jan 02, 2006",
	"01/02/2006",
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func normalizeKeys(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[normalizeKey(key)] = value
	}
	return out
}

// rowFromFields never fails: an unreadable date is left zero and unreadable
// points become -1, so row validation rejects the game by id.
func rowFromFields(fields map[string]any) gamelog.Row {
	points, ok := getInt(fields, "pts", "points")
	if !ok {
		points = -1
	}
	return gamelog.Row{
		GameID:           padGameID(getString(fields, "game_id")),
		SeasonID:         getString(fields, "season_id"),
		GameDate:         getDate(fields, "game_date"),
		TeamID:           getString(fields, "team_id"),
		TeamAbbreviation: strings.ToUpper(getString(fields, "team_abbreviation")),
		Points:           points,
		WL:               strings.ToUpper(getString(fields, "wl")),
		Matchup:          getString(fields, "matchup"),
	}
}

func getString(src map[string]any, keys ...string) string {
	for _, key := range keys {
		raw, ok := src[key]
		if !ok || raw == nil {
			continue
		}
		switch typed := raw.(type) {
		case string:
			return strings.TrimSpace(typed)
		case float64:
			return strconv.FormatFloat(typed, 'f', -1, 64)
		case int:
			return strconv.Itoa(typed)
		case int64:
			return strconv.FormatInt(typed, 10)
		}
	}
	return ""
}

// padGameID restores the leading zeros a numeric JSON or spreadsheet export
// drops, so every format upserts onto the same key.
func padGameID(id string) string {
	if id == "" || len(id) >= gameIDWidth {
		return id
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return id
		}
	}
	return strings.Repeat("0", gameIDWidth-len(id)) + id
}

func getInt(src map[string]any, keys ...string) (int, bool) {
	for _, key := range keys {
		raw, ok := src[key]
		if !ok || raw == nil {
			continue
		}
		switch typed := raw.(type) {
		case float64:
			if typed != math.Trunc(typed) {
				return 0, false
			}
			return int(typed), true
		case int:
			return typed, true
		case int64:
			return int(typed), true
		case string:
			value := strings.TrimSpace(typed)
			if n, err := strconv.Atoi(value); err == nil {
				return n, true
			}
			if f, err := strconv.ParseFloat(value, 64); err == nil && f == math.Trunc(f) {
				return int(f), true
			}
			return 0, false
		}
	}
	return 0, false
}

func getDate(src map[string]any, key string) time.Time {
	value := getString(src, key)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return gamelog.CivilDate(t)
		}
	}
	return time.Time{}
}
