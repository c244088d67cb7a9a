package gamelog

import (
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrUnknownMatchup = crerr.New("unknown matchup descriptor")
	ErrUnknownOutcome = crerr.New("unknown outcome")
)

// Side tells which side of a game a raw row was reported from.
type Side string

const (
	SideHome Side = "HOME"
	SideAway Side = "AWAY"
)

// Outcome is a binary win/loss result. Draws are not representable.
type Outcome string

const (
	OutcomeWin  Outcome = "W"
	OutcomeLoss Outcome = "L"
)

// Opposite returns the result the other team recorded in the same game.
func (o Outcome) Opposite() Outcome {
	if o == OutcomeWin {
		return OutcomeLoss
	}
	return OutcomeWin
}

// Row is one team's line for one game as delivered by the log source.
type Row struct {
	GameID           string    `json:"game_id" validate:"required"`
	SeasonID         string    `json:"season_id"`
	GameDate         time.Time `json:"game_date" validate:"required"`
	TeamID           string    `json:"team_id" validate:"required"`
	TeamAbbreviation string    `json:"team_abbreviation" validate:"omitempty,max=8"`
	Points           int       `json:"points" validate:"gte=0"`
	WL               string    `json:"wl" validate:"required,oneof=W L"`
	Matchup          string    `json:"matchup" validate:"required"`
}

// Equal reports whether two rows carry identical content.
func (r Row) Equal(other Row) bool {
	return r.GameID == other.GameID &&
		r.SeasonID == other.SeasonID &&
		r.GameDate.Equal(other.GameDate) &&
		r.TeamID == other.TeamID &&
		r.TeamAbbreviation == other.TeamAbbreviation &&
		r.Points == other.Points &&
		r.WL == other.WL &&
		r.Matchup == other.Matchup
}

// ClassifyMatchup resolves the side of a matchup descriptor and the opponent
// abbreviation it names. "LAL vs. BOS" is a home row, "BOS @ LAL" an away row.
func ClassifyMatchup(descriptor string) (Side, string, error) {
	value := strings.Join(strings.Fields(descriptor), " ")
	if value == "" {
		return "", "", crerr.Wrap(ErrUnknownMatchup, "empty descriptor")
	}

	hasHome := strings.Contains(value, " vs. ") || strings.Contains(value, " vs ")
	hasAway := strings.Contains(value, " @ ")
	switch {
	case hasHome && !hasAway:
		return SideHome, opponentAfter(value, " vs. ", " vs "), nil
	case hasAway && !hasHome:
		return SideAway, opponentAfter(value, " @ "), nil
	default:
		return "", "", crerr.Wrapf(ErrUnknownMatchup, "descriptor %q", descriptor)
	}
}

func opponentAfter(value string, separators ...string) string {
	for _, sep := range separators {
		if idx := strings.Index(value, sep); idx >= 0 {
			return strings.TrimSpace(value[idx+len(sep):])
		}
	}
	return ""
}

// ParseOutcome normalizes a W/L indicator.
func ParseOutcome(value string) (Outcome, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(OutcomeWin):
		return OutcomeWin, nil
	case string(OutcomeLoss):
		return OutcomeLoss, nil
	default:
		return "", crerr.Wrapf(ErrUnknownOutcome, "value %q", value)
	}
}

// CivilDate drops the clock part so day arithmetic is calendar based.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
