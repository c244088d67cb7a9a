package usecase

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/riskibarqy/game-features/internal/domain/game"
	"github.com/riskibarqy/game-features/internal/domain/gamelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeGameLogs_MergesBothSides(t *testing.T) {
	t.Parallel()

	rows := append(
		gameRows("G2", day(2024, 1, 3), "LAL", "BOS", 99, 104),
		gameRows("G1", day(2024, 1, 1), "BOS", "NYK", 110, 101)...,
	)

	records, err := NormalizeGameLogs(rows)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, record("G1", day(2024, 1, 1), "BOS", "NYK", 110, 101), records[0])
	assert.Equal(t, record("G2", day(2024, 1, 3), "LAL", "BOS", 99, 104), records[1])
	assert.False(t, records[1].HomeWon())
}

func TestNormalizeGameLogs_DropsClockPart(t *testing.T) {
	t.Parallel()

	rows := gameRows("G1", time.Date(2024, 1, 1, 19, 30, 0, 0, time.UTC), "BOS", "NYK", 110, 101)

	records, err := NormalizeGameLogs(rows)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, day(2024, 1, 1), records[0].GameDate)
}

func TestNormalizeGameLogs_MissingAwayRow(t *testing.T) {
	t.Parallel()

	rows := gameRows("G1", day(2024, 1, 1), "BOS", "NYK", 110, 101)[:1]
	rows = append(rows, gameRows("G2", day(2024, 1, 2), "LAL", "MIA", 100, 98)...)

	records, err := NormalizeGameLogs(rows)
	require.Error(t, err)
	assert.Nil(t, records)
	assert.ErrorIs(t, err, game.ErrMalformedGameLog)

	var malformed *game.MalformedGameLogError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, []string{"G1"}, malformed.GameIDs())
	assert.Contains(t, err.Error(), "G1 (missing away row)")
}

func TestNormalizeGameLogs_IdenticalDuplicatesCollapse(t *testing.T) {
	t.Parallel()

	rows := gameRows("G1", day(2024, 1, 1), "BOS", "NYK", 110, 101)
	rows = append(rows, rows[0], rows[1])

	records, err := NormalizeGameLogs(rows)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 110, records[0].HomePoints)
}

func TestNormalizeGameLogs_NearDuplicatesConflict(t *testing.T) {
	t.Parallel()

	rows := gameRows("G1", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), "BOS", "NYK", 110, 101)
	near := rows[0]
	near.GameID = " G1 "
	near.GameDate = time.Date(2024, 1, 1, 22, 30, 0, 0, time.UTC)
	rows = append(rows, near)

	records, err := NormalizeGameLogs(rows)
	require.ErrorIs(t, err, game.ErrMalformedGameLog)
	assert.Nil(t, records)
	assert.Contains(t, err.Error(), "G1 (conflicting duplicate home rows)")
}

func TestNormalizeGameLogs_Idempotent(t *testing.T) {
	t.Parallel()

	rows := roundRobinLogs([]string{"ATL", "BOS", "CHI", "DEN"}, 3)

	first, err := NormalizeGameLogs(rows)
	require.NoError(t, err)
	second, err := NormalizeGameLogs(rows)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	shuffled := append([]gamelog.Row(nil), rows...)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	third, err := NormalizeGameLogs(shuffled)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestNormalizeGameLogs_RejectsMalformedGames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func([]gamelog.Row) []gamelog.Row
		reason string
	}{
		{
			name: "conflicting duplicate home rows",
			mutate: func(rows []gamelog.Row) []gamelog.Row {
				dup := rows[0]
				dup.Points = 111
				return append(rows, dup)
			},
			reason: "conflicting duplicate home rows",
		},
		{
			name: "both sides won",
			mutate: func(rows []gamelog.Row) []gamelog.Row {
				rows[1].WL = "W"
				return rows
			},
			reason: "does not pair with away result",
		},
		{
			name: "unknown matchup",
			mutate: func(rows []gamelog.Row) []gamelog.Row {
				rows[0].Matchup = "BOS - NYK"
				return rows
			},
			reason: "unknown matchup descriptor",
		},
		{
			name: "missing home row",
			mutate: func(rows []gamelog.Row) []gamelog.Row {
				return rows[1:]
			},
			reason: "missing home row",
		},
		{
			name: "same team on both sides",
			mutate: func(rows []gamelog.Row) []gamelog.Row {
				rows[1].TeamID = "BOS"
				rows[1].TeamAbbreviation = ""
				return rows
			},
			reason: "home and away team are both BOS",
		},
		{
			name: "negative points",
			mutate: func(rows []gamelog.Row) []gamelog.Row {
				rows[0].Points = -1
				return rows
			},
			reason: "Points failed gte",
		},
		{
			name: "matchup names another opponent",
			mutate: func(rows []gamelog.Row) []gamelog.Row {
				rows[1].Matchup = "NYK @ LAL"
				return rows
			},
			reason: "away matchup names LAL but home team is BOS",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rows := tc.mutate(gameRows("G1", day(2024, 1, 1), "BOS", "NYK", 110, 101))
			rows = append(rows, gameRows("G2", day(2024, 1, 2), "LAL", "MIA", 100, 98)...)

			_, err := NormalizeGameLogs(rows)
			require.ErrorIs(t, err, game.ErrMalformedGameLog)

			var malformed *game.MalformedGameLogError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, []string{"G1"}, malformed.GameIDs())
			assert.Contains(t, err.Error(), tc.reason)
		})
	}
}

func TestNormalizeGameLogs_ReportsEveryOffendingGame(t *testing.T) {
	t.Parallel()

	rows := gameRows("G3", day(2024, 1, 3), "BOS", "NYK", 110, 101)[:1]
	rows = append(rows, gameRows("G1", day(2024, 1, 1), "LAL", "MIA", 100, 98)[1:]...)
	rows = append(rows, gameRows("G2", day(2024, 1, 2), "PHX", "DEN", 120, 118)...)

	_, err := NormalizeGameLogs(rows)

	var malformed *game.MalformedGameLogError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, []string{"G1", "G3"}, malformed.GameIDs())
}

func TestNormalizeGameLogs_Empty(t *testing.T) {
	t.Parallel()

	records, err := NormalizeGameLogs(nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}
