package airquality

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn indicates malformed input: a stage requires a column the
// batch does not carry. The run should be aborted, not partially written.
var ErrMissingColumn = errors.New("missing required column")

// ErrEmptyGroup indicates a grouping key yielded no usable numeric values.
// Callers skip such groups rather than failing the run.
var ErrEmptyGroup = errors.New("no valid values in group")

func missingColumns(names ...string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(names, ", "))
}
