package asthme

import (
	"errors"
	"testing"
	"time"

	"github.com/airsante/airwatch/internal/history"
	"github.com/airsante/airwatch/internal/table"
)

func scrapedBatch(rates map[string]string) *table.Table {
	t := table.New("Departement", "Chiffre")
	for dept, rate := range rates {
		t.Append(table.Row{"Departement": dept, "Chiffre": rate})
	}
	return t
}

func TestParseVisits(t *testing.T) {
	in := scrapedBatch(map[string]string{
		"75": "1,8",
		"13": "N/A",
		"69": "2 500",
	})
	visits, err := ParseVisits(in)
	if err != nil {
		t.Fatalf("ParseVisits: %v", err)
	}
	if visits["75"] != 1.8 {
		t.Errorf("75 = %v, want comma decimal read as 1.8", visits["75"])
	}
	if visits["13"] != 0 {
		t.Errorf("13 = %v, want N/A as 0", visits["13"])
	}
	if visits["69"] != 2500 {
		t.Errorf("69 = %v, want thousands separator stripped", visits["69"])
	}
}

func TestParseVisitsMissingColumn(t *testing.T) {
	in := table.New("Departement")
	if _, err := ParseVisits(in); err == nil {
		t.Fatal("want error for batch without rate column")
	}
}

func TestBuildRow(t *testing.T) {
	now := time.Date(2024, time.February, 27, 10, 0, 0, 0, time.UTC)
	row := BuildRow(now, map[string]float64{"75": 1.8})
	if row["Semaine"] != "2024-S09" {
		t.Errorf("Semaine = %q", row["Semaine"])
	}
	if row["Annee"] != "2024" || row["Mois"] != "Feb" {
		t.Errorf("Annee/Mois = %q/%q", row["Annee"], row["Mois"])
	}
	if row["75"] != "1.8" {
		t.Errorf("75 = %q", row["75"])
	}
}

func TestUpdateAppends(t *testing.T) {
	now := time.Date(2024, time.February, 27, 10, 0, 0, 0, time.UTC)
	out, err := Update(nil, scrapedBatch(map[string]string{"75": "1,8"}), now)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(out.Rows))
	}
	if out.Rows[0]["75"] != "1.8" {
		t.Errorf("75 = %q", out.Rows[0]["75"])
	}
}

func TestUpdateNoChange(t *testing.T) {
	now := time.Date(2024, time.February, 27, 10, 0, 0, 0, time.UTC)
	hist := table.New("Semaine", "Annee", "Mois", "75")
	hist.Append(table.Row{"Semaine": "2024-S08", "Annee": "2024", "Mois": "Feb", "75": "1.8"})

	_, err := Update(hist, scrapedBatch(map[string]string{"75": "1,8"}), now)
	if !errors.Is(err, history.ErrNoChange) {
		t.Fatalf("err = %v, want ErrNoChange", err)
	}
}

func TestUpdateEmptyBatch(t *testing.T) {
	in := table.New("Departement", "Chiffre")
	if _, err := Update(nil, in, time.Now()); err == nil {
		t.Fatal("want error for batch with no department rows")
	}
}
