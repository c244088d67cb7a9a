package gamelog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassifyMatchup(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		side     Side
		opponent string
		wantErr  bool
	}{
		{name: "home with dot", input: "LAL vs. BOS", side: SideHome, opponent: "BOS"},
		{name: "home without dot", input: "LAL vs BOS", side: SideHome, opponent: "BOS"},
		{name: "away", input: "BOS @ LAL", side: SideAway, opponent: "LAL"},
		{name: "extra whitespace", input: "  BOS   @  LAL ", side: SideAway, opponent: "LAL"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "no separator", input: "BOS LAL", wantErr: true},
		{name: "both separators", input: "BOS vs. LAL @ NYK", wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			side, opponent, err := ClassifyMatchup(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrUnknownMatchup))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.side, side)
			require.Equal(t, tc.opponent, opponent)
		})
	}
}

func TestParseOutcome(t *testing.T) {
	t.Parallel()

	got, err := ParseOutcome(" w ")
	require.NoError(t, err)
	require.Equal(t, OutcomeWin, got)
	require.Equal(t, OutcomeLoss, got.Opposite())

	_, err = ParseOutcome("T")
	require.ErrorIs(t, err, ErrUnknownOutcome)
}

func TestRowEqual(t *testing.T) {
	t.Parallel()

	base := Row{
		GameID:   "0022300001",
		GameDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TeamID:   "1610612747",
		Points:   110,
		WL:       "W",
		Matchup:  "LAL vs. BOS",
	}
	same := base
	same.GameDate = base.GameDate.In(time.FixedZone("X", 0))
	require.True(t, base.Equal(same))

	changed := base
	changed.Points = 111
	require.False(t, base.Equal(changed))
}

func TestCivilDate(t *testing.T) {
	t.Parallel()

	in := time.Date(2024, 1, 4, 23, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), CivilDate(in))
}
