package airquality

import (
	"sort"

	"github.com/airsante/airwatch/internal/table"
)

// reorderColumns is the canonical sort order of persisted pollutant datasets:
// chronological, then alphabetical on the descriptive columns.
var reorderColumns = []string{
	ColDateStart, ColOrganisme, ColZasCode, ColZas, ColSiteCode, ColSiteName, ColPollutant,
}

// Reorder sorts a batch by date_de_debut and then by the descriptive columns
// ascending. Returns ErrMissingColumn listing every absent sort column.
func Reorder(t *table.Table) (*table.Table, error) {
	var missing []string
	for _, col := range reorderColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, missingColumns(missing...)
	}

	out := table.New(t.Headers...)
	out.Rows = append([]table.Row(nil), t.Rows...)
	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, b := out.Rows[i], out.Rows[j]
		ta, tb := parseTime(a[ColDateStart]), parseTime(b[ColDateStart])
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		for _, col := range reorderColumns[1:] {
			if a[col] != b[col] {
				return a[col] < b[col]
			}
		}
		return false
	})
	return out, nil
}
