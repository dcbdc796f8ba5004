package dataset

import (
	"context"
	"errors"

	"github.com/airsante/airwatch/internal/table"
)

// ErrNotFound is returned when a named dataset does not exist yet. Pipeline
// stages treat it as "start from an empty history", never as fatal.
var ErrNotFound = errors.New("dataset not found")

// Known dataset names.
const (
	Stations     = "geodair_station"
	Daily        = "geodair_max_daily"
	Weekly       = "geodair_max_weekly"
	IQADaily     = "geodair_iqa_daily"
	AsthmeWeekly = "asthme_weekly"
)

// Store resolves named dataset handles. Implementations read the full
// dataset into memory and write it back whole; a Write either persists the
// complete new state or leaves the prior state untouched.
type Store interface {
	Read(ctx context.Context, name string) (*table.Table, error)
	Write(ctx context.Context, name string, t *table.Table) error
	Exists(ctx context.Context, name string) (bool, error)
}
