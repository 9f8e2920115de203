package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/paulmach/orb"
)

const tolerance = 1e-6

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

// testNow keeps the current-hour lookup deterministic.
var testNow = time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC)

func newTestClient(baseURL string) *Client {
	c := New(baseURL, 2*time.Second, 8)
	c.now = func() time.Time { return testNow }
	return c
}

// newSpeedServer answers every request with a single-hour payload.
// speedFor returns (speed, false) to simulate an upstream failure.
func newSpeedServer(speedFor func(lat, lon float64) (float64, bool)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lat, _ := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
		lon, _ := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
		speed, ok := speedFor(lat, lon)
		if !ok {
			http.Error(w, "upstream unavailable", http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"hourly":{"time":["2026-01-05T14:00"],"wind_speed_100m":[%g]}}`, speed)
	}))
}

func testBounds() orb.Bound {
	return orb.Bound{Min: orb.Point{7.0, 48.0}, Max: orb.Point{7.3, 48.3}}
}

// --- clampGrid tests ---

func TestClampGrid(t *testing.T) {
	cases := []struct {
		name               string
		rows, cols         int
		wantRows, wantCols int
	}{
		{"defaults shrink to budget", 0, 0, 9, 9},
		{"explicit default request", 18, 18, 9, 9},
		{"oversized clamps then shrinks", 30, 30, 9, 9},
		{"undersized raised to minimum", 2, 2, 4, 4},
		{"wide grid trims columns only", 4, 24, 4, 20},
		{"small grid untouched", 5, 6, 5, 6},
	}
	for _, tc := range cases {
		rows, cols := clampGrid(tc.rows, tc.cols)
		if rows != tc.wantRows || cols != tc.wantCols {
			t.Errorf("%s: clampGrid(%d, %d) = (%d, %d), want (%d, %d)",
				tc.name, tc.rows, tc.cols, rows, cols, tc.wantRows, tc.wantCols)
		}
	}
}

// --- FetchGrid tests ---

func TestFetchGridAssemblesSurface(t *testing.T) {
	srv := newSpeedServer(func(lat, _ float64) (float64, bool) {
		return lat, true
	})
	defer srv.Close()

	client := newTestClient(srv.URL)
	surface, stats, err := client.FetchGrid(context.Background(), GridRequest{
		Bounds: testBounds(),
		Rows:   4,
		Cols:   4,
	})
	if err != nil {
		t.Fatalf("FetchGrid() error = %v", err)
	}

	if surface.Rows != 4 || surface.Cols != 4 {
		t.Fatalf("grid dimensions = %dx%d, want 4x4", surface.Rows, surface.Cols)
	}
	if surface.Source != "open-meteo" {
		t.Errorf("Source = %q, want open-meteo", surface.Source)
	}
	if !surface.FetchedAt.Equal(testNow.UTC()) {
		t.Errorf("FetchedAt = %v, want %v", surface.FetchedAt, testNow.UTC())
	}

	// Row 0 lies on the southern edge, so its speed is the minimum
	// latitude; the last row carries the maximum.
	if !approxEqual(surface.Values[0][0], 48.0) {
		t.Errorf("Values[0][0] = %v, want 48.0", surface.Values[0][0])
	}
	if !approxEqual(surface.Values[3][0], 48.3) {
		t.Errorf("Values[3][0] = %v, want 48.3", surface.Values[3][0])
	}

	if stats.SampleCount != 16 {
		t.Errorf("SampleCount = %d, want 16", stats.SampleCount)
	}
	if !approxEqual(stats.Min, 48.0) || !approxEqual(stats.Max, 48.3) {
		t.Errorf("stats min/max = %v/%v, want 48.0/48.3", stats.Min, stats.Max)
	}
}

func TestFetchGridSendsForecastParams(t *testing.T) {
	var gotHourly, gotDays, gotTZ string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHourly = r.URL.Query().Get("hourly")
		gotDays = r.URL.Query().Get("forecast_days")
		gotTZ = r.URL.Query().Get("timezone")
		fmt.Fprint(w, `{"hourly":{"time":["2026-01-05T14:00"],"wind_speed_100m":[8.0]}}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	if _, _, err := client.FetchGrid(context.Background(), GridRequest{Bounds: testBounds(), Rows: 4, Cols: 4}); err != nil {
		t.Fatalf("FetchGrid() error = %v", err)
	}

	if gotHourly != "wind_speed_100m" {
		t.Errorf("hourly param = %q, want wind_speed_100m", gotHourly)
	}
	if gotDays != "1" {
		t.Errorf("forecast_days param = %q, want 1", gotDays)
	}
	if gotTZ != "UTC" {
		t.Errorf("timezone param = %q, want UTC", gotTZ)
	}
}

func TestFetchGridPicksCurrentHourSample(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hourly":{
			"time":["2026-01-05T12:00","2026-01-05T13:00","2026-01-05T14:00","2026-01-05T15:00"],
			"wind_speed_100m":[1.0,2.0,7.5,4.0]}}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	surface, _, err := client.FetchGrid(context.Background(), GridRequest{Bounds: testBounds(), Rows: 4, Cols: 4})
	if err != nil {
		t.Fatalf("FetchGrid() error = %v", err)
	}
	for i := range surface.Values {
		for j, v := range surface.Values[i] {
			if !approxEqual(v, 7.5) {
				t.Fatalf("Values[%d][%d] = %v, want the 14:00 sample 7.5", i, j, v)
			}
		}
	}
}

func TestFetchGridBackfillsFailedCells(t *testing.T) {
	srv := newSpeedServer(func(_, lon float64) (float64, bool) {
		switch {
		case approxEqual(lon, 7.0):
			return 0, false
		case approxEqual(lon, 7.1):
			return 4, true
		case approxEqual(lon, 7.2):
			return 8, true
		default:
			return 12, true
		}
	})
	defer srv.Close()

	client := newTestClient(srv.URL)
	surface, stats, err := client.FetchGrid(context.Background(), GridRequest{Bounds: testBounds(), Rows: 4, Cols: 4})
	if err != nil {
		t.Fatalf("FetchGrid() error = %v", err)
	}

	if stats.SampleCount != 12 {
		t.Errorf("SampleCount = %d, want 12 successful fetches", stats.SampleCount)
	}
	if !approxEqual(stats.Avg, 8.0) {
		t.Errorf("Avg = %v, want 8.0", stats.Avg)
	}
	for row := 0; row < surface.Rows; row++ {
		if !approxEqual(surface.Values[row][0], 8.0) {
			t.Errorf("Values[%d][0] = %v, want backfilled mean 8.0", row, surface.Values[row][0])
		}
	}
}

func TestFetchGridAllSamplesFailed(t *testing.T) {
	srv := newSpeedServer(func(_, _ float64) (float64, bool) {
		return 0, false
	})
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, _, err := client.FetchGrid(context.Background(), GridRequest{Bounds: testBounds(), Rows: 4, Cols: 4})
	if !errors.Is(err, ErrAllSamplesFailed) {
		t.Fatalf("FetchGrid() error = %v, want ErrAllSamplesFailed", err)
	}
}

func TestFetchGridRejectsInvertedBounds(t *testing.T) {
	client := newTestClient("http://invalid.test")
	_, _, err := client.FetchGrid(context.Background(), GridRequest{
		Bounds: orb.Bound{Min: orb.Point{7.3, 48.3}, Max: orb.Point{7.0, 48.0}},
	})
	if !errors.Is(err, ErrInvalidBounds) {
		t.Fatalf("FetchGrid() error = %v, want ErrInvalidBounds", err)
	}
}

func TestFetchGridFloorsNegativeSpeeds(t *testing.T) {
	srv := newSpeedServer(func(_, _ float64) (float64, bool) {
		return -3.5, true
	})
	defer srv.Close()

	client := newTestClient(srv.URL)
	surface, stats, err := client.FetchGrid(context.Background(), GridRequest{Bounds: testBounds(), Rows: 4, Cols: 4})
	if err != nil {
		t.Fatalf("FetchGrid() error = %v", err)
	}
	if surface.Values[0][0] != 0 {
		t.Errorf("Values[0][0] = %v, want floor of 0", surface.Values[0][0])
	}
	if stats.Min != 0 || stats.Max != 0 {
		t.Errorf("stats = %+v, want all-zero speeds", stats)
	}
}
