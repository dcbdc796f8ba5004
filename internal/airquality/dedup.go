package airquality

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/airsante/airwatch/internal/table"
)

// rowSep joins key parts; it cannot appear in cell values.
const rowSep = "\x1f"

// Deduplicate removes redundant measurement rows. Priority among rows
// sharing the same (date_de_debut, code_site, polluant) key:
//  1. validite = 1 over invalid rows
//  2. the most recent date_de_fin
//  3. one arbitrary copy when rows are fully identical
//
// Returns ErrMissingColumn when validite or date_de_fin is absent.
func Deduplicate(t *table.Table) (*table.Table, error) {
	var missing []string
	for _, col := range []string{ColValidity, ColDateEnd} {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, missingColumns(missing...)
	}

	rows := append([]table.Row(nil), t.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := parseValidity(rows[i][ColValidity]), parseValidity(rows[j][ColValidity])
		if vi != vj {
			return vi > vj
		}
		ti, tj := parseTime(rows[i][ColDateEnd]), parseTime(rows[j][ColDateEnd])
		return ti.After(tj)
	})

	out := table.New(t.Headers...)
	seenKey := make(map[string]struct{}, len(rows))
	seenRow := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := row[ColDateStart] + rowSep + row[ColSiteCode] + rowSep + row[ColPollutant]
		if _, dup := seenKey[key]; dup {
			continue
		}
		seenKey[key] = struct{}{}

		fp := fingerprint(t.Headers, row)
		if _, dup := seenRow[fp]; dup {
			continue
		}
		seenRow[fp] = struct{}{}
		out.Append(row)
	}
	return out, nil
}

func fingerprint(headers []string, row table.Row) string {
	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = row[h]
	}
	return strings.Join(parts, rowSep)
}

// parseValidity reads a validity flag leniently; unparseable values rank
// below valid ones.
func parseValidity(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseTime reads a persisted timestamp; unparseable values sort last, the
// same way coerced NaT dates do upstream.
func parseTime(s string) time.Time {
	ts, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return ts
}
