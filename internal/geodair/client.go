package geodair

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/airsante/airwatch/internal/table"
)

// Pollutant pairs a Geodair export code with its display name.
type Pollutant struct {
	Code string
	Name string
}

// Pollutants are the tracked pollutants, in the order they are fetched.
var Pollutants = []Pollutant{
	{Code: "01", Name: "SO2"},
	{Code: "03", Name: "NO2"},
	{Code: "08", Name: "O3"},
	{Code: "24", Name: "PM10"},
	{Code: "39", Name: "PM2.5"},
}

var (
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")

	// ErrNotReady signals a 202 from the download endpoint: the export is
	// still being generated server-side.
	ErrNotReady = errors.New("export not ready")
)

// Client talks to the Geodair export API. Measurement exports are a two-step
// protocol: the export endpoint returns a file id, and the download endpoint
// is polled until the file is generated.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	circuit      *gobreaker.CircuitBreaker
	maxRetries   int
	initialDelay time.Duration
	pollInterval time.Duration
	maxPolls     int
}

// NewClient builds a client with retry, backoff and a circuit breaker around
// every outbound call.
func NewClient(httpClient *http.Client, baseURL, apiKey string, pollInterval time.Duration, maxPolls int) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "geodair",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   httpClient,
		circuit:      cb,
		maxRetries:   3,
		initialDelay: 500 * time.Millisecond,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}
}

// FetchStations downloads the station export snapshot for the given date.
// The returned table carries the raw (non-normalized) upstream headers.
func (c *Client) FetchStations(ctx context.Context, date time.Time) (*table.Table, error) {
	endpoint := fmt.Sprintf("%s/station/export?date=%s", c.baseURL, date.Format("2006-01-02"))
	body, _, err := c.get(ctx, endpoint, "text/csv")
	if err != nil {
		return nil, fmt.Errorf("fetch stations: %w", err)
	}
	t, err := table.Read(strings.NewReader(body), ';')
	if err != nil {
		return nil, fmt.Errorf("parse station export: %w", err)
	}
	return t, nil
}

// FetchDailyMax downloads the daily hourly-peak export for one pollutant and
// date, polling the download endpoint until the export is generated.
func (c *Client) FetchDailyMax(ctx context.Context, date time.Time, pollutantCode string) (*table.Table, error) {
	return c.fetchExport(ctx, "MaxJH/export", date, pollutantCode)
}

// FetchHourly downloads the hourly-mean export for one pollutant and date.
func (c *Client) FetchHourly(ctx context.Context, date time.Time, pollutantCode string) (*table.Table, error) {
	return c.fetchExport(ctx, "MoyH/export", date, pollutantCode)
}

func (c *Client) fetchExport(ctx context.Context, path string, date time.Time, pollutantCode string) (*table.Table, error) {
	values := url.Values{}
	values.Set("date", date.Format("2006-01-02"))
	values.Set("polluant", pollutantCode)
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, path, values.Encode())

	body, _, err := c.get(ctx, endpoint, "")
	if err != nil {
		return nil, fmt.Errorf("request export id: %w", err)
	}
	fileID := strings.TrimSpace(body)
	if fileID == "" {
		return nil, errors.New("export endpoint returned empty file id")
	}

	csvBody, err := c.pollDownload(ctx, fileID)
	if err != nil {
		return nil, err
	}
	t, err := table.Read(strings.NewReader(csvBody), ';')
	if err != nil {
		return nil, fmt.Errorf("parse export %s: %w", fileID, err)
	}
	return t, nil
}

// pollDownload retries the download endpoint while the export is still being
// generated (202), waiting pollInterval between attempts.
func (c *Client) pollDownload(ctx context.Context, fileID string) (string, error) {
	endpoint := fmt.Sprintf("%s/download?id=%s", c.baseURL, url.QueryEscape(fileID))
	for attempt := 0; attempt < c.maxPolls; attempt++ {
		body, status, err := c.get(ctx, endpoint, "")
		if err == nil && status == http.StatusOK {
			return body, nil
		}
		if err != nil && !errors.Is(err, ErrNotReady) {
			return "", fmt.Errorf("download %s: %w", fileID, err)
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return "", fmt.Errorf("download %s: %w after %d attempts", fileID, ErrNotReady, c.maxPolls)
}

// get executes a GET with retries, exponential backoff and the circuit
// breaker, returning the response body.
func (c *Client) get(ctx context.Context, endpoint, accept string) (string, int, error) {
	var attempt int
	for {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("apikey", c.apiKey)
			if accept != "" {
				req.Header.Set("Accept", accept)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, err
			}
			switch {
			case resp.StatusCode == http.StatusAccepted:
				// Part of the protocol: the export is still being
				// generated. Must not count as a breaker failure.
				return payload{status: resp.StatusCode}, nil
			case resp.StatusCode >= 500:
				return nil, fmt.Errorf("%w: %s", errServerError, resp.Status)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				return nil, fmt.Errorf("%w: %s", errUnexpected, resp.Status)
			}
			return payload{body: string(body), status: resp.StatusCode}, nil
		})
		if err == nil {
			p := result.(payload)
			if p.status == http.StatusAccepted {
				return "", p.status, ErrNotReady
			}
			return p.body, p.status, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", 0, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if attempt >= c.maxRetries {
			return "", 0, err
		}

		delay := c.initialDelay * time.Duration(math.Pow(2, float64(attempt)))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", 0, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}

type payload struct {
	body   string
	status int
}
