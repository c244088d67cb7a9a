package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRowRecordFollowsColumns(t *testing.T) {
	t.Parallel()

	row := GameRow{
		GameID:     "G9",
		GameDate:   time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
		SeasonID:   "22023",
		HomeTeamID: "A",
		AwayTeamID: "B",
		Home:       SideFeatures{RollingPointsFor: 105, RollingPointsAgainst: 99.5, RollingWinPct: 0.5, RestDays: 2},
		Away:       SideFeatures{RollingPointsFor: 100.25, RollingPointsAgainst: 101, RollingWinPct: 0.3, RestDays: 1},
		Label:      1,
	}

	record := row.Record()
	require.Len(t, record, len(Columns()))
	assert.Equal(t, []string{
		"G9", "2024-02-03", "22023", "A", "B",
		"105", "99.5", "0.5", "2",
		"100.25", "101", "0.3", "1",
		"1",
	}, record)
}

func TestParseHistoryPolicy(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]HistoryPolicy{
		"":          HistoryDrop,
		"DROP":      HistoryDrop,
		"partial":   HistoryPartial,
		"zero_fill": HistoryZeroFill,
		"zero-fill": HistoryZeroFill,
	} {
		got, err := ParseHistoryPolicy(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseHistoryPolicy("impute")
	require.ErrorIs(t, err, ErrUnknownHistoryPolicy)
}

func TestParseWindowStrategy(t *testing.T) {
	t.Parallel()

	got, err := ParseWindowStrategy("Recompute")
	require.NoError(t, err)
	assert.Equal(t, WindowRecompute, got)

	_, err = ParseWindowStrategy("ewma")
	require.ErrorIs(t, err, ErrUnknownWindowStrategy)
}
