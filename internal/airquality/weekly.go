package airquality

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/airsante/airwatch/internal/logging"
	"github.com/airsante/airwatch/internal/table"
)

// WeekLabel formats a timestamp's ISO week as e.g. "2024-S09".
func WeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-S%02d", year, week)
}

// weeklyKeyColumns identify a weekly record for merge purposes.
var weeklyKeyColumns = []string{ColWeek, ColSiteCode, ColSiteName, ColPollutant}

// AggregateWeekly rolls daily peak rows into one max_week value per ISO week
// and context group. The group key is the week label plus every column except
// valeur and the two date columns; the first row of each group supplies the
// context values. Groups without a single numeric valeur are skipped.
func AggregateWeekly(t *table.Table) (*table.Table, error) {
	var missing []string
	for _, col := range []string{ColDateStart, ColValue} {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, missingColumns(missing...)
	}

	contextCols := make([]string, 0, len(t.Headers))
	for _, h := range t.Headers {
		if h == ColValue || h == ColDateStart || h == ColDateEnd {
			continue
		}
		contextCols = append(contextCols, h)
	}

	out := table.New(ColWeek)
	for _, col := range contextCols {
		out.AddColumn(col)
	}
	out.AddColumn(ColMaxWeek)

	type group struct {
		row table.Row
		max float64
		ok  bool
	}
	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, row := range t.Rows {
		start, err := time.Parse(TimeLayout, strings.TrimSpace(row[ColDateStart]))
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", ColDateStart, row[ColDateStart], err)
		}
		week := WeekLabel(start)

		keyParts := make([]string, 0, len(contextCols)+1)
		keyParts = append(keyParts, week)
		for _, col := range contextCols {
			keyParts = append(keyParts, row[col])
		}
		key := strings.Join(keyParts, rowSep)

		g, seen := groups[key]
		if !seen {
			ctx := make(table.Row, len(contextCols)+2)
			ctx[ColWeek] = week
			for _, col := range contextCols {
				ctx[col] = row[col]
			}
			g = &group{row: ctx}
			groups[key] = g
			order = append(order, key)
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(row[ColValue]), 64)
		if err != nil {
			continue
		}
		if !g.ok || v > g.max {
			g.max = v
			g.ok = true
		}
	}

	for _, key := range order {
		g := groups[key]
		if !g.ok {
			continue
		}
		g.row[ColMaxWeek] = strconv.FormatFloat(g.max, 'f', -1, 64)
		out.Append(g.row)
	}
	return out, nil
}

// MergeWeekly concatenates freshly aggregated weekly rows into the historical
// weekly dataset, keeping the last occurrence per (semaine, code_site,
// nom_site, polluant) so a rerun with corrected data supersedes the old
// value. Superseded rows are logged.
func MergeWeekly(hist, batch *table.Table, logger *logging.Logger) *table.Table {
	combined := table.Concat(hist, batch)

	last := make(map[string]int, len(combined.Rows))
	for i, row := range combined.Rows {
		last[weeklyKey(row)] = i
	}

	out := table.New(combined.Headers...)
	for i, row := range combined.Rows {
		key := weeklyKey(row)
		if last[key] != i {
			if logger != nil && combined.Rows[last[key]][ColMaxWeek] != row[ColMaxWeek] {
				logger.Warn("weekly merge: superseding %s %s %s (max_week %s -> %s)",
					row[ColWeek], row[ColSiteCode], row[ColPollutant],
					row[ColMaxWeek], combined.Rows[last[key]][ColMaxWeek])
			}
			continue
		}
		out.Append(row)
	}
	return out
}

func weeklyKey(row table.Row) string {
	parts := make([]string, len(weeklyKeyColumns))
	for i, col := range weeklyKeyColumns {
		parts[i] = row[col]
	}
	return strings.Join(parts, rowSep)
}
