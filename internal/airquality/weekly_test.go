package airquality

import (
	"errors"
	"testing"
	"time"

	"github.com/airsante/airwatch/internal/logging"
	"github.com/airsante/airwatch/internal/table"
)

func TestWeekLabel(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2024/02/27 00:00:00", "2024-S09"},
		{"2024/01/01 00:00:00", "2024-S01"},
		{"2023/01/01 00:00:00", "2022-S52"},
		{"2024/12/30 00:00:00", "2025-S01"},
	}
	for _, c := range cases {
		ts, err := time.Parse(TimeLayout, c.date)
		if err != nil {
			t.Fatalf("parse %q: %v", c.date, err)
		}
		if got := WeekLabel(ts); got != c.want {
			t.Errorf("WeekLabel(%s) = %q, want %q", c.date, got, c.want)
		}
	}
}

func TestAggregateWeeklyMax(t *testing.T) {
	in := table.New(ColDateStart, ColDateEnd, ColSiteCode, ColSiteName, ColPollutant, ColValue)
	for _, v := range []string{"12", "45", "7"} {
		in.Append(table.Row{
			ColDateStart: "2024/02/27 00:00:00", ColDateEnd: "2024/02/27 23:00:00",
			ColSiteCode: "FR001", ColSiteName: "Centre", ColPollutant: "PM10", ColValue: v,
		})
	}

	out, err := AggregateWeekly(in)
	if err != nil {
		t.Fatalf("AggregateWeekly: %v", err)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(out.Rows))
	}
	row := out.Rows[0]
	if row[ColWeek] != "2024-S09" {
		t.Errorf("semaine = %q", row[ColWeek])
	}
	if row[ColMaxWeek] != "45" {
		t.Errorf("max_week = %q, want 45", row[ColMaxWeek])
	}
	if out.HasColumn(ColValue) || out.HasColumn(ColDateStart) {
		t.Errorf("value/date columns leaked into weekly headers: %v", out.Headers)
	}
}

func TestAggregateWeeklySeparatesGroups(t *testing.T) {
	in := table.New(ColDateStart, ColSiteCode, ColPollutant, ColValue)
	in.Append(table.Row{ColDateStart: "2024/02/27 00:00:00", ColSiteCode: "FR001", ColPollutant: "PM10", ColValue: "10"})
	in.Append(table.Row{ColDateStart: "2024/02/27 00:00:00", ColSiteCode: "FR001", ColPollutant: "NO2", ColValue: "20"})
	in.Append(table.Row{ColDateStart: "2024/03/05 00:00:00", ColSiteCode: "FR001", ColPollutant: "PM10", ColValue: "30"})

	out, err := AggregateWeekly(in)
	if err != nil {
		t.Fatalf("AggregateWeekly: %v", err)
	}
	if len(out.Rows) != 3 {
		t.Errorf("rows = %d, want 3 distinct (week, pollutant) groups", len(out.Rows))
	}
}

func TestAggregateWeeklySkipsNonNumericGroups(t *testing.T) {
	in := table.New(ColDateStart, ColSiteCode, ColPollutant, ColValue)
	in.Append(table.Row{ColDateStart: "2024/02/27 00:00:00", ColSiteCode: "FR001", ColPollutant: "PM10", ColValue: "n/a"})

	out, err := AggregateWeekly(in)
	if err != nil {
		t.Fatalf("AggregateWeekly: %v", err)
	}
	if len(out.Rows) != 0 {
		t.Errorf("rows = %d, want group without numeric values dropped", len(out.Rows))
	}
}

func TestAggregateWeeklyBadDate(t *testing.T) {
	in := table.New(ColDateStart, ColValue)
	in.Append(table.Row{ColDateStart: "not-a-date", ColValue: "1"})
	if _, err := AggregateWeekly(in); err == nil {
		t.Fatal("want error for unparseable date_de_debut")
	}
}

func TestAggregateWeeklyMissingColumns(t *testing.T) {
	in := table.New(ColSiteCode)
	_, err := AggregateWeekly(in)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}

func TestMergeWeeklyKeepLast(t *testing.T) {
	hist := table.New(ColWeek, ColSiteCode, ColSiteName, ColPollutant, ColMaxWeek)
	hist.Append(table.Row{
		ColWeek: "2024-S09", ColSiteCode: "FR001", ColSiteName: "Centre",
		ColPollutant: "PM10", ColMaxWeek: "40",
	})
	batch := table.New(ColWeek, ColSiteCode, ColSiteName, ColPollutant, ColMaxWeek)
	batch.Append(table.Row{
		ColWeek: "2024-S09", ColSiteCode: "FR001", ColSiteName: "Centre",
		ColPollutant: "PM10", ColMaxWeek: "45",
	})
	batch.Append(table.Row{
		ColWeek: "2024-S10", ColSiteCode: "FR001", ColSiteName: "Centre",
		ColPollutant: "PM10", ColMaxWeek: "12",
	})

	out := MergeWeekly(hist, batch, logging.New(false))
	if len(out.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(out.Rows))
	}
	for _, row := range out.Rows {
		if row[ColWeek] == "2024-S09" && row[ColMaxWeek] != "45" {
			t.Errorf("S09 max_week = %q, want the batch value 45", row[ColMaxWeek])
		}
	}
}

func TestMergeWeeklyEmptyHistory(t *testing.T) {
	batch := table.New(ColWeek, ColSiteCode, ColSiteName, ColPollutant, ColMaxWeek)
	batch.Append(table.Row{
		ColWeek: "2024-S09", ColSiteCode: "FR001", ColSiteName: "Centre",
		ColPollutant: "PM10", ColMaxWeek: "45",
	})
	out := MergeWeekly(nil, batch, nil)
	if len(out.Rows) != 1 {
		t.Errorf("rows = %d, want 1", len(out.Rows))
	}
}
