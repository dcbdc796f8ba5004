package airquality

import (
	"errors"
	"testing"

	"github.com/airsante/airwatch/internal/table"
)

func reorderInput() *table.Table {
	return table.New(ColDateStart, ColOrganisme, ColZasCode, ColZas, ColSiteCode, ColSiteName, ColPollutant)
}

func TestReorderChronologicalFirst(t *testing.T) {
	in := reorderInput()
	in.Append(table.Row{ColDateStart: "2024/03/05 00:00:00", ColSiteCode: "FR001", ColPollutant: "PM10"})
	in.Append(table.Row{ColDateStart: "2024/02/27 00:00:00", ColSiteCode: "FR002", ColPollutant: "PM10"})

	out, err := Reorder(in)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if out.Rows[0][ColSiteCode] != "FR002" {
		t.Errorf("first row = %v, want the earlier date first", out.Rows[0])
	}
}

func TestReorderAlphabeticalWithinDate(t *testing.T) {
	in := reorderInput()
	in.Append(table.Row{ColDateStart: "2024/02/27 00:00:00", ColSiteCode: "FR002", ColPollutant: "PM10"})
	in.Append(table.Row{ColDateStart: "2024/02/27 00:00:00", ColSiteCode: "FR001", ColPollutant: "PM10"})

	out, err := Reorder(in)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if out.Rows[0][ColSiteCode] != "FR001" {
		t.Errorf("first row = %v, want FR001 first", out.Rows[0])
	}
}

func TestReorderMissingColumns(t *testing.T) {
	in := table.New(ColDateStart)
	_, err := Reorder(in)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}

func TestReorderDoesNotMutateInput(t *testing.T) {
	in := reorderInput()
	in.Append(table.Row{ColDateStart: "2024/03/05 00:00:00", ColSiteCode: "FR001", ColPollutant: "PM10"})
	in.Append(table.Row{ColDateStart: "2024/02/27 00:00:00", ColSiteCode: "FR002", ColPollutant: "PM10"})

	if _, err := Reorder(in); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if in.Rows[0][ColSiteCode] != "FR001" {
		t.Error("input row order changed")
	}
}
