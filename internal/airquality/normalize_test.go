package airquality

import (
	"testing"

	"github.com/airsante/airwatch/internal/table"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Date de début", "date_de_debut"},
		{"Date de fin", "date_de_fin"},
		{"unité de mesure", "unite_de_mesure"},
		{"code-site", "code_site"},
		{"Polluant", "polluant"},
		{"valeur", "valeur"},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	once := NormalizeName("Date de début")
	if twice := NormalizeName(once); twice != once {
		t.Errorf("second pass changed %q to %q", once, twice)
	}
}

func TestNormalizeHeaders(t *testing.T) {
	in := table.New("Date de début", "Polluant", "valeur")
	in.Append(table.Row{"Date de début": "2024/02/27 00:00:00", "Polluant": "PM10", "valeur": "12"})

	out := NormalizeHeaders(in)
	if !out.HasColumn(ColDateStart) || !out.HasColumn(ColPollutant) {
		t.Fatalf("headers = %v", out.Headers)
	}
	if out.Rows[0][ColDateStart] != "2024/02/27 00:00:00" {
		t.Errorf("row value lost in rename: %v", out.Rows[0])
	}
	if _, ok := out.Rows[0]["Date de début"]; ok {
		t.Error("old key survived rename")
	}
}
