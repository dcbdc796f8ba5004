package history

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/airsante/airwatch/internal/table"
)

// ErrNoChange reports a merge no-op: the incoming row matches the most recent
// historical row across every data column. Not an error condition; callers
// use it to skip the write and any dependent jobs.
var ErrNoChange = errors.New("historical dataset unchanged")

// TemporalColumns lead every wide historical table and identify the period a
// row belongs to. They are excluded from change detection.
var TemporalColumns = []string{"Semaine", "Annee", "Mois"}

// Merge appends a period row to a wide historical table and returns the
// merged result. Contract:
//   - A missing or empty history gets a schema inferred from the row:
//     temporal columns first, then the row's data columns sorted.
//   - When the incoming row equals the last historical row on every data
//     column (missing cells compare as zero), ErrNoChange is returned and
//     the history is passed back untouched.
//   - Otherwise the row is appended in the historical column order; data
//     columns absent from the row are filled with zero, and data columns new
//     to the history are absorbed at the end without backfilling prior rows.
func Merge(hist *table.Table, row table.Row) (*table.Table, error) {
	if hist == nil || len(hist.Headers) == 0 {
		hist = table.New(TemporalColumns...)
		for _, col := range sortedDataColumns(row) {
			hist.AddColumn(col)
		}
	}

	out := hist.Clone()
	for _, col := range sortedDataColumns(row) {
		out.AddColumn(col)
	}
	dataCols := dataColumns(out.Headers)

	if len(out.Rows) > 0 {
		last := out.Rows[len(out.Rows)-1]
		changed := false
		for _, col := range dataCols {
			if numeric(last[col]) != numeric(row[col]) {
				changed = true
				break
			}
		}
		if !changed {
			return hist, ErrNoChange
		}
	}

	appended := make(table.Row, len(out.Headers))
	for _, col := range TemporalColumns {
		appended[col] = row[col]
	}
	for _, col := range dataCols {
		if v, ok := row[col]; ok && strings.TrimSpace(v) != "" {
			appended[col] = v
		} else {
			appended[col] = "0"
		}
	}
	out.Append(appended)
	return out, nil
}

// Long projects a wide historical table into long format: one row per
// (semaine, departement, valeur), preserving row then column order.
func Long(hist *table.Table) *table.Table {
	out := table.New("semaine", "departement", "valeur")
	if hist == nil {
		return out
	}
	dataCols := dataColumns(hist.Headers)
	for _, row := range hist.Rows {
		for _, col := range dataCols {
			out.Append(table.Row{
				"semaine":     row["Semaine"],
				"departement": col,
				"valeur":      row[col],
			})
		}
	}
	return out
}

func dataColumns(headers []string) []string {
	temporal := make(map[string]struct{}, len(TemporalColumns))
	for _, col := range TemporalColumns {
		temporal[col] = struct{}{}
	}
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		if _, ok := temporal[h]; ok {
			continue
		}
		out = append(out, h)
	}
	return out
}

func sortedDataColumns(row table.Row) []string {
	temporal := make(map[string]struct{}, len(TemporalColumns))
	for _, col := range TemporalColumns {
		temporal[col] = struct{}{}
	}
	cols := make([]string, 0, len(row))
	for col := range row {
		if _, ok := temporal[col]; ok {
			continue
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// numeric reads a cell for change detection; empty or unparseable cells
// compare as zero.
func numeric(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
