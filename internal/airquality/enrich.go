package airquality

import (
	"github.com/airsante/airwatch/internal/station"
	"github.com/airsante/airwatch/internal/table"
)

// geoColumns are the geography columns attached by enrichment.
var geoColumns = []string{
	ColCommuneCode, ColCommune, ColLongitude, ColLatitude, ColDeptCode, ColDept,
}

// Enrich attaches station geography to a measurement batch via a left join on
// code_site. Cells already holding a value win over the join; only empty
// cells are filled. Sites missing from the registry keep empty geography and
// are never dropped.
func Enrich(t *table.Table, reg *station.Registry) *table.Table {
	out := t.Clone()
	for _, col := range geoColumns {
		out.AddColumn(col)
	}

	for _, row := range out.Rows {
		geo, ok := reg.Lookup(row[ColSiteCode])
		if !ok {
			continue
		}
		fill(row, ColCommuneCode, geo.CommuneCode)
		fill(row, ColCommune, geo.Commune)
		fill(row, ColLongitude, geo.Longitude)
		fill(row, ColLatitude, geo.Latitude)
		fill(row, ColDeptCode, geo.DepartmentCode)
		fill(row, ColDept, geo.Department)
	}
	return out
}

func fill(row table.Row, col, value string) {
	if row[col] == "" {
		row[col] = value
	}
}
