package geodair

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.Client(), srv.URL, "test-key", 10*time.Millisecond, 5)
	c.initialDelay = time.Millisecond
	return c, srv
}

func TestFetchStations(t *testing.T) {
	var gotKey, gotDate string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/station/export" {
			http.NotFound(w, r)
			return
		}
		gotKey = r.Header.Get("apikey")
		gotDate = r.URL.Query().Get("date")
		w.Write([]byte("code;commune\nFR001;Paris\n"))
	}))

	date := time.Date(2024, time.February, 27, 0, 0, 0, 0, time.UTC)
	out, err := client.FetchStations(context.Background(), date)
	if err != nil {
		t.Fatalf("FetchStations: %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("apikey header = %q", gotKey)
	}
	if gotDate != "2024-02-27" {
		t.Errorf("date param = %q", gotDate)
	}
	if len(out.Rows) != 1 || out.Rows[0]["code"] != "FR001" {
		t.Errorf("rows = %v", out.Rows)
	}
}

func TestFetchDailyMaxPollsUntilReady(t *testing.T) {
	var downloads int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/MaxJH/export":
			if r.URL.Query().Get("polluant") != "24" {
				t.Errorf("polluant = %q", r.URL.Query().Get("polluant"))
			}
			w.Write([]byte("file-123"))
		case "/download":
			if r.URL.Query().Get("id") != "file-123" {
				http.NotFound(w, r)
				return
			}
			if atomic.AddInt32(&downloads, 1) < 3 {
				w.WriteHeader(http.StatusAccepted)
				return
			}
			w.Write([]byte("Date de début;valeur\n2024/02/27 00:00:00;12\n"))
		default:
			http.NotFound(w, r)
		}
	}))

	date := time.Date(2024, time.February, 27, 0, 0, 0, 0, time.UTC)
	out, err := client.FetchDailyMax(context.Background(), date, "24")
	if err != nil {
		t.Fatalf("FetchDailyMax: %v", err)
	}
	if atomic.LoadInt32(&downloads) != 3 {
		t.Errorf("downloads = %d, want 3 (two 202s then 200)", downloads)
	}
	if len(out.Rows) != 1 || out.Rows[0]["valeur"] != "12" {
		t.Errorf("rows = %v", out.Rows)
	}
}

func TestFetchDailyMaxGivesUpAfterMaxPolls(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/MaxJH/export":
			w.Write([]byte("file-123"))
		case "/download":
			w.WriteHeader(http.StatusAccepted)
		default:
			http.NotFound(w, r)
		}
	}))

	_, err := client.FetchDailyMax(context.Background(), time.Now(), "24")
	if err == nil {
		t.Fatal("want error when export never becomes ready")
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("code;commune\nFR001;Paris\n"))
	}))

	_, err := client.FetchStations(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("FetchStations: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestFetchExportEmptyFileID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  "))
	}))
	if _, err := client.FetchDailyMax(context.Background(), time.Now(), "24"); err == nil {
		t.Fatal("want error for empty file id")
	}
}
