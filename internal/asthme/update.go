package asthme

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/airsante/airwatch/internal/airquality"
	"github.com/airsante/airwatch/internal/history"
	"github.com/airsante/airwatch/internal/table"
)

// Scraped CSV columns after header normalization.
const (
	colDepartment = "departement"
	colRate       = "chiffre"
)

// ParseVisits reads the scraped emergency-visit CSV (one row per department)
// into a department -> rate map. Rates use a comma decimal separator and may
// carry narrow no-break spaces as thousands separators; "N/A" counts as zero.
func ParseVisits(t *table.Table) (map[string]float64, error) {
	normalized := airquality.NormalizeHeaders(t)
	for _, col := range []string{colDepartment, colRate} {
		if !normalized.HasColumn(col) {
			return nil, fmt.Errorf("visit batch: missing required column %q", col)
		}
	}

	visits := make(map[string]float64, len(normalized.Rows))
	for _, row := range normalized.Rows {
		dept := strings.TrimSpace(row[colDepartment])
		if dept == "" {
			continue
		}
		visits[dept] = parseRate(row[colRate])
	}
	return visits, nil
}

func parseRate(raw string) float64 {
	if strings.Contains(raw, "N/A") {
		return 0
	}
	cleaned := strings.ReplaceAll(raw, "\u202f", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = strings.TrimSpace(cleaned)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// BuildRow assembles the wide-format week row for the given date: the ISO
// week label, year and abbreviated month, then one column per department.
func BuildRow(now time.Time, visits map[string]float64) table.Row {
	row := table.Row{
		"Semaine": airquality.WeekLabel(now),
		"Annee":   strconv.Itoa(now.Year()),
		"Mois":    now.Format("Jan"),
	}
	for dept, rate := range visits {
		row[dept] = strconv.FormatFloat(rate, 'f', -1, 64)
	}
	return row
}

// Update merges the scraped visit batch into the weekly history through the
// incremental merge engine. history.ErrNoChange passes through when the
// department rates match the last recorded week.
func Update(hist *table.Table, scraped *table.Table, now time.Time) (*table.Table, error) {
	visits, err := ParseVisits(scraped)
	if err != nil {
		return nil, err
	}
	if len(visits) == 0 {
		return nil, fmt.Errorf("visit batch: no department rows")
	}
	return history.Merge(hist, BuildRow(now, visits))
}
