package usecase

import (
	"math"
	"sort"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/game-features/internal/domain/feature"
)

const DefaultSplitFraction = 0.8

// SplitChronological sorts rows by (date, game id) and cuts them at
// floor(n*fraction). Rows sharing the boundary date may land on both sides;
// Split.BoundaryStraddles reports when that happens.
func SplitChronological(rows []feature.GameRow, fraction float64) (feature.Split, error) {
	if math.IsNaN(fraction) || fraction <= 0 || fraction >= 1 {
		return feature.Split{}, crerr.Wrapf(feature.ErrInvalidSplitFraction, "fraction must be within (0, 1), got %v", fraction)
	}

	ordered := make([]feature.GameRow, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return feature.Before(ordered[i], ordered[j])
	})

	k := int(math.Floor(float64(len(ordered)) * fraction))
	split := feature.Split{
		Train: ordered[:k:k],
		Test:  ordered[k:],
	}
	if len(split.Test) > 0 {
		split.BoundaryDate = split.Test[0].GameDate
		split.BoundaryStraddles = k > 0 && split.Train[k-1].GameDate.Equal(split.BoundaryDate)
	}
	return split, nil
}
