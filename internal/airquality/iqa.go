package airquality

import (
	"strconv"
	"strings"

	"github.com/airsante/airwatch/internal/table"
)

// iqaThresholds holds the 7-point breakpoint table per pollutant, in µg/m³.
// A concentration at or below thresholds[i+1] scores a sub-index of i*50.
var iqaThresholds = map[string][]float64{
	"PM10":  {0, 20, 40, 50, 100, 150, 200},
	"PM2.5": {0, 10, 20, 25, 50, 75, 100},
	"NO2":   {0, 40, 90, 120, 230, 340, 400},
	"O3":    {0, 50, 100, 130, 240, 380, 500},
	"SO2":   {0, 50, 100, 150, 200, 300, 400},
}

// defaultThresholds applies to pollutants without a dedicated table.
var defaultThresholds = []float64{0, 50, 100, 150, 200, 300, 400}

// iqaDroppedColumns are replaced by the computed index in IQA output.
var iqaDroppedColumns = []string{ColPollutant, ColValue, ColUnit}

// SubIndex maps a concentration through a breakpoint table to its sub-index
// in {0, 50, ..., 300}. Values beyond the last breakpoint cap at 300;
// negative sensor readings clamp to zero.
func SubIndex(value float64, thresholds []float64) int {
	if value < 0 {
		value = 0
	}
	for i := 0; i+1 < len(thresholds); i++ {
		if value <= thresholds[i+1] {
			return i * 50
		}
	}
	return 300
}

// Thresholds returns the breakpoint table for a pollutant name, falling back
// to the default table. Lookup is case-insensitive.
func Thresholds(pollutant string) []float64 {
	if t, ok := iqaThresholds[strings.ToUpper(pollutant)]; ok {
		return t
	}
	return defaultThresholds
}

// RiskLabel derives the risk category from a composite IQA value.
func RiskLabel(iqa int) string {
	switch {
	case iqa <= 50:
		return "Bon"
	case iqa <= 100:
		return "Modéré"
	case iqa <= 150:
		return "Mauvais"
	case iqa <= 200:
		return "Très mauvais"
	case iqa <= 300:
		return "Dangereux"
	default:
		return "Très dangereux"
	}
}

// ComputeIQA computes one composite air-quality index per (date_de_fin,
// code_departement) group: the worst sub-index across every pollutant present
// in the group. One representative value of each context column is carried
// from the group's first row. Groups with no numeric valeur are dropped.
func ComputeIQA(t *table.Table) (*table.Table, error) {
	var missing []string
	for _, col := range []string{ColDateEnd, ColDeptCode, ColPollutant, ColValue} {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, missingColumns(missing...)
	}

	dropped := make(map[string]struct{}, len(iqaDroppedColumns))
	for _, col := range iqaDroppedColumns {
		dropped[col] = struct{}{}
	}
	contextCols := make([]string, 0, len(t.Headers))
	for _, h := range t.Headers {
		if _, ok := dropped[h]; ok {
			continue
		}
		contextCols = append(contextCols, h)
	}

	out := table.New(contextCols...)
	out.AddColumn(ColIndexKind)
	out.AddColumn(ColValue)
	out.AddColumn(ColRisk)

	type group struct {
		row   table.Row
		worst int
		ok    bool
	}
	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, row := range t.Rows {
		key := row[ColDateEnd] + rowSep + row[ColDeptCode]
		g, seen := groups[key]
		if !seen {
			ctx := make(table.Row, len(contextCols)+3)
			for _, col := range contextCols {
				ctx[col] = row[col]
			}
			ctx[ColIndexKind] = "IQA"
			g = &group{row: ctx}
			groups[key] = g
			order = append(order, key)
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(row[ColValue]), 64)
		if err != nil {
			continue
		}
		sub := SubIndex(v, Thresholds(row[ColPollutant]))
		if !g.ok || sub > g.worst {
			g.worst = sub
			g.ok = true
		}
	}

	for _, key := range order {
		g := groups[key]
		if !g.ok {
			continue
		}
		g.row[ColValue] = strconv.Itoa(g.worst)
		g.row[ColRisk] = RiskLabel(g.worst)
		out.Append(g.row)
	}
	return out, nil
}
