package airquality

import (
	"testing"

	"github.com/airsante/airwatch/internal/station"
	"github.com/airsante/airwatch/internal/table"
)

func testRegistry(t *testing.T) *station.Registry {
	t.Helper()
	snap := table.New("code", "code_commune", "commune", "longitude", "latitude")
	snap.Append(table.Row{
		"code": "FR001", "code_commune": "75056", "commune": "Paris",
		"longitude": "2.35", "latitude": "48.85",
	})
	reg, err := station.FromTable(snap)
	if err != nil {
		t.Fatalf("FromTable: %v", err)
	}
	return reg
}

func TestEnrichFillsGeography(t *testing.T) {
	in := table.New(ColSiteCode, ColValue)
	in.Append(table.Row{ColSiteCode: "FR001", ColValue: "12"})

	out := Enrich(in, testRegistry(t))
	row := out.Rows[0]
	if row[ColDeptCode] != "75" || row[ColDept] != "Paris" {
		t.Errorf("department = %q/%q", row[ColDeptCode], row[ColDept])
	}
	if row[ColCommune] != "Paris" || row[ColLongitude] != "2.35" {
		t.Errorf("geo cells = %+v", row)
	}
}

func TestEnrichKeepsExistingValues(t *testing.T) {
	in := table.New(ColSiteCode, ColDept)
	in.Append(table.Row{ColSiteCode: "FR001", ColDept: "Seine"})

	out := Enrich(in, testRegistry(t))
	if out.Rows[0][ColDept] != "Seine" {
		t.Errorf("existing cell overwritten: %q", out.Rows[0][ColDept])
	}
}

func TestEnrichKeepsUnmatchedRows(t *testing.T) {
	in := table.New(ColSiteCode, ColValue)
	in.Append(table.Row{ColSiteCode: "FR999", ColValue: "9"})

	out := Enrich(in, testRegistry(t))
	if len(out.Rows) != 1 {
		t.Fatalf("rows = %d, want unmatched row retained", len(out.Rows))
	}
	if out.Rows[0][ColDeptCode] != "" {
		t.Errorf("unmatched row should keep empty geography, got %q", out.Rows[0][ColDeptCode])
	}
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	in := table.New(ColSiteCode)
	in.Append(table.Row{ColSiteCode: "FR001"})
	Enrich(in, testRegistry(t))
	if in.HasColumn(ColDept) {
		t.Error("input table gained geography columns")
	}
}
