package feature

import crerr "github.com/cockroachdb/errors"

var (
	ErrNonMonotonicSchedule   = crerr.New("non-monotonic team schedule")
	ErrJoinDropRateExceeded   = crerr.New("join drop rate exceeded")
	ErrInvalidWindow          = crerr.New("invalid rolling window")
	ErrInvalidSplitFraction   = crerr.New("invalid split fraction")
	ErrUnknownHistoryPolicy   = crerr.New("unknown history policy")
	ErrUnknownWindowStrategy  = crerr.New("unknown window strategy")
	ErrDuplicateFeatureStream = crerr.New("duplicate rolling feature row")
)
