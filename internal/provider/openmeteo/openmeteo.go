// Package openmeteo fetches gridded wind speed data from the
// Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Karthikk1803/WindSiteAI/pkg/windfield"
)

const (
	defaultGridDimension = 18
	minGridDimension     = 4
	maxGridDimension     = 24
	maxSamplePoints      = 81

	defaultTimeout       = 10 * time.Second
	defaultMaxConcurrent = 16

	// hourFormat matches the timestamps in Open-Meteo hourly payloads.
	hourFormat = "2006-01-02T15:04"
)

var (
	// ErrInvalidBounds reports a bounding box without positive extent.
	ErrInvalidBounds = errors.New("openmeteo: bounding box must have positive extent")

	// ErrAllSamplesFailed reports that no grid point could be fetched.
	ErrAllSamplesFailed = errors.New("openmeteo: no wind samples could be retrieved")
)

// Client fetches wind speed grids from the Open-Meteo API.
type Client struct {
	baseURL       string
	http          *http.Client
	maxConcurrent int
	now           func() time.Time
}

// New returns a client for the given API base URL. Non-positive
// timeout or concurrency fall back to the defaults.
func New(baseURL string, timeout time.Duration, maxConcurrent int) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxConcurrent < 1 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Client{
		baseURL:       baseURL,
		http:          &http.Client{Timeout: timeout},
		maxConcurrent: maxConcurrent,
		now:           time.Now,
	}
}

// GridRequest selects the bounding box and grid resolution to sample.
// Zero Rows or Cols request the default 18x18 grid.
type GridRequest struct {
	Bounds orb.Bound
	Rows   int
	Cols   int
}

// FetchGrid samples wind_speed_100m at evenly spaced points across the
// bounding box, one API call per point. Failed points are backfilled
// with the mean of the successful samples; the returned stats cover
// only the successful ones.
func (c *Client) FetchGrid(ctx context.Context, req GridRequest) (*windfield.Surface, windfield.Stats, error) {
	b := req.Bounds
	if b.Max[1] <= b.Min[1] || b.Max[0] <= b.Min[0] {
		return nil, windfield.Stats{}, ErrInvalidBounds
	}

	rows, cols := clampGrid(req.Rows, req.Cols)

	latStep, lonStep := 0.0, 0.0
	if rows > 1 {
		latStep = (b.Max[1] - b.Min[1]) / float64(rows-1)
	}
	if cols > 1 {
		lonStep = (b.Max[0] - b.Min[0]) / float64(cols-1)
	}

	type samplePoint struct {
		row, col int
		lat, lon float64
	}
	points := make([]samplePoint, 0, rows*cols)
	for i := 0; i < rows; i++ {
		lat := roundCoord(b.Min[1] + latStep*float64(i))
		for j := 0; j < cols; j++ {
			lon := roundCoord(b.Min[0] + lonStep*float64(j))
			points = append(points, samplePoint{row: i, col: j, lat: lat, lon: lon})
		}
	}

	speeds := make([]float64, len(points))
	fetched := make([]bool, len(points))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)
	for idx, pt := range points {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			speed, err := c.fetchSpeed(gctx, pt.lat, pt.lon)
			if err != nil {
				// Failed cells are backfilled after the sweep.
				return nil
			}
			speeds[idx] = speed
			fetched[idx] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, windfield.Stats{}, err
	}

	collected := make([]float64, 0, len(points))
	for idx := range points {
		if fetched[idx] {
			collected = append(collected, speeds[idx])
		}
	}
	if len(collected) == 0 {
		return nil, windfield.Stats{}, ErrAllSamplesFailed
	}

	stats := windfield.Stats{
		Min:         floats.Min(collected),
		Max:         floats.Max(collected),
		Avg:         stat.Mean(collected, nil),
		SampleCount: len(collected),
	}

	surface := windfield.New(b, rows, cols)
	surface.Source = "open-meteo"
	surface.FetchedAt = c.now().UTC()
	for idx, pt := range points {
		if fetched[idx] {
			surface.Values[pt.row][pt.col] = speeds[idx]
		} else {
			surface.Values[pt.row][pt.col] = stats.Avg
		}
	}
	return surface, stats, nil
}

// fetchSpeed retrieves the wind speed for the current UTC hour at one
// coordinate, falling back to the first forecast hour when the current
// one is not in the payload.
func (c *Client) fetchSpeed(ctx context.Context, lat, lon float64) (float64, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("hourly", "wind_speed_100m")
	params.Set("forecast_days", "1")
	params.Set("timezone", "UTC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.baseURL)
	}

	var payload struct {
		Hourly struct {
			Time      []string  `json:"time"`
			WindSpeed []float64 `json:"wind_speed_100m"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}
	if len(payload.Hourly.WindSpeed) == 0 {
		return 0, errors.New("no wind speed data in response")
	}

	index := 0
	currentHour := c.now().UTC().Truncate(time.Hour).Format(hourFormat)
	for i, ts := range payload.Hourly.Time {
		if ts == currentHour {
			index = i
			break
		}
	}
	if index >= len(payload.Hourly.WindSpeed) {
		index = 0
	}
	return math.Max(0, payload.Hourly.WindSpeed[index]), nil
}

// clampGrid bounds the requested dimensions and shrinks them until the
// sample count fits the per-request API budget.
func clampGrid(rows, cols int) (int, int) {
	if rows < 1 {
		rows = defaultGridDimension
	}
	if cols < 1 {
		cols = defaultGridDimension
	}
	rows = max(minGridDimension, min(rows, maxGridDimension))
	cols = max(minGridDimension, min(cols, maxGridDimension))

	for rows*cols > maxSamplePoints {
		switch {
		case rows >= cols && rows > minGridDimension:
			rows--
		case cols > minGridDimension:
			cols--
		default:
			return rows, cols
		}
	}
	return rows, cols
}

func roundCoord(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
