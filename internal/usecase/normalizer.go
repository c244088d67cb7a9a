package usecase

import (
	"sort"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/game-features/internal/domain/game"
	"github.com/riskibarqy/game-features/internal/domain/gamelog"
)

var rowValidator = validator.New()

// sideRow keeps the row as received next to its cleaned form; duplicates
// collapse only when the received rows are identical.
type sideRow struct {
	raw   gamelog.Row
	clean gamelog.Row
}

type gameSides struct {
	home []sideRow
	away []sideRow
	// opponent abbreviations read from the matchup descriptor, per side
	homeOpponent string
	awayOpponent string
}

// NormalizeGameLogs merges the two per-team rows of every game into one
// canonical record. Every game id that cannot be merged cleanly is reported in
// a *game.MalformedGameLogError; nothing is repaired or guessed. Identical
// duplicate rows collapse into one, conflicting duplicates are rejected.
// Output is ordered by date, then game id.
func NormalizeGameLogs(rows []gamelog.Row) ([]game.Record, error) {
	malformed := &game.MalformedGameLogError{}
	rejected := make(map[string]struct{})
	byGame := make(map[string]*gameSides, len(rows)/2+1)

	for _, raw := range rows {
		row := raw
		row.GameID = strings.TrimSpace(row.GameID)
		row.TeamID = strings.TrimSpace(row.TeamID)
		gameID := row.GameID
		if gameID == "" {
			gameID = "<empty>"
		}

		if err := rowValidator.Struct(row); err != nil {
			malformed.Add(gameID, "invalid row for team "+row.TeamID+": "+validationSummary(err))
			rejected[gameID] = struct{}{}
			continue
		}

		side, opponent, err := gamelog.ClassifyMatchup(row.Matchup)
		if err != nil {
			malformed.Add(gameID, "team "+row.TeamID+": "+err.Error())
			rejected[gameID] = struct{}{}
			continue
		}

		sides, ok := byGame[gameID]
		if !ok {
			sides = &gameSides{}
			byGame[gameID] = sides
		}
		row.GameDate = gamelog.CivilDate(row.GameDate)
		switch side {
		case gamelog.SideHome:
			sides.home = appendDistinct(sides.home, sideRow{raw: raw, clean: row})
			sides.homeOpponent = opponent
		case gamelog.SideAway:
			sides.away = appendDistinct(sides.away, sideRow{raw: raw, clean: row})
			sides.awayOpponent = opponent
		}
	}

	gameIDs := make([]string, 0, len(byGame))
	for id := range byGame {
		gameIDs = append(gameIDs, id)
	}
	sort.Strings(gameIDs)

	records := make([]game.Record, 0, len(gameIDs))
	for _, id := range gameIDs {
		if _, bad := rejected[id]; bad {
			continue
		}
		record, reason := mergeSides(id, byGame[id])
		if reason != "" {
			malformed.Add(id, reason)
			continue
		}
		records = append(records, record)
	}

	if !malformed.Empty() {
		malformed.Sort()
		return nil, crerr.WithDetailf(malformed, "%d game ids rejected", len(malformed.GameIDs()))
	}

	sort.Slice(records, func(i, j int) bool {
		return game.Before(records[i], records[j])
	})
	return records, nil
}

func appendDistinct(items []sideRow, row sideRow) []sideRow {
	for _, existing := range items {
		if existing.raw.Equal(row.raw) {
			return items
		}
	}
	return append(items, row)
}

func mergeSides(gameID string, sides *gameSides) (game.Record, string) {
	switch {
	case len(sides.home) == 0:
		return game.Record{}, "missing home row"
	case len(sides.away) == 0:
		return game.Record{}, "missing away row"
	case len(sides.home) > 1:
		return game.Record{}, "conflicting duplicate home rows"
	case len(sides.away) > 1:
		return game.Record{}, "conflicting duplicate away rows"
	}

	home, away := sides.home[0].clean, sides.away[0].clean
	if home.TeamID == away.TeamID {
		return game.Record{}, "home and away team are both " + home.TeamID
	}

	homeResult, err := gamelog.ParseOutcome(home.WL)
	if err != nil {
		return game.Record{}, err.Error()
	}
	awayResult, err := gamelog.ParseOutcome(away.WL)
	if err != nil {
		return game.Record{}, err.Error()
	}
	if awayResult != homeResult.Opposite() {
		return game.Record{}, "home result " + string(homeResult) + " does not pair with away result " + string(awayResult)
	}

	if reason := crossCheckAbbreviations(home, away, sides); reason != "" {
		return game.Record{}, reason
	}

	return game.Record{
		GameID:     gameID,
		SeasonID:   home.SeasonID,
		GameDate:   home.GameDate,
		HomeTeamID: home.TeamID,
		AwayTeamID: away.TeamID,
		HomePoints: home.Points,
		AwayPoints: away.Points,
		HomeResult: homeResult,
	}, ""
}

// crossCheckAbbreviations only fires when both the team abbreviation and the
// opponent named by the other side's descriptor are known.
func crossCheckAbbreviations(home, away gamelog.Row, sides *gameSides) string {
	homeAbbr := strings.TrimSpace(home.TeamAbbreviation)
	awayAbbr := strings.TrimSpace(away.TeamAbbreviation)
	if homeAbbr != "" && sides.awayOpponent != "" && !strings.EqualFold(homeAbbr, sides.awayOpponent) {
		return "away matchup names " + sides.awayOpponent + " but home team is " + homeAbbr
	}
	if awayAbbr != "" && sides.homeOpponent != "" && !strings.EqualFold(awayAbbr, sides.homeOpponent) {
		return "home matchup names " + sides.homeOpponent + " but away team is " + awayAbbr
	}
	return ""
}

func validationSummary(err error) string {
	var fieldErrs validator.ValidationErrors
	if !crerr.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
