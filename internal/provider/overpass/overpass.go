// Package overpass fetches obstacle geometries from the Overpass
// OpenStreetMap API.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/Karthikk1803/WindSiteAI/pkg/geo"
	"github.com/Karthikk1803/WindSiteAI/pkg/siting"
)

const (
	defaultTimeout = 20 * time.Second

	// queryTemplate selects building footprints and major roads inside
	// a (south, west, north, east) bounding box, with node coordinates
	// inlined per way.
	queryTemplate = `[out:json][timeout:%d];
(
  way["building"](%f,%f,%f,%f);
  way["highway"~"^(motorway|trunk|primary|secondary|tertiary)$"](%f,%f,%f,%f);
);
out geom;`
)

// Client fetches obstacle geometries from an Overpass endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the given Overpass interpreter URL.
// Non-positive timeout falls back to the default.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchObstacles returns buildings and major roads inside the bounding
// box. Closed building ways become polygons, roads become line
// strings; ways without enough geometry are dropped.
func (c *Client) FetchObstacles(ctx context.Context, bounds orb.Bound) ([]siting.Obstacle, error) {
	south, west := bounds.Min[1], bounds.Min[0]
	north, east := bounds.Max[1], bounds.Max[0]
	timeoutSec := int(c.http.Timeout / time.Second)
	query := fmt.Sprintf(queryTemplate,
		timeoutSec,
		south, west, north, east,
		south, west, north, east)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.baseURL)
	}

	var payload struct {
		Elements []struct {
			Type     string            `json:"type"`
			ID       int64             `json:"id"`
			Tags     map[string]string `json:"tags"`
			Geometry []struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"geometry"`
		} `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	obstacles := make([]siting.Obstacle, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		if el.Type != "way" || len(el.Geometry) < 2 {
			continue
		}
		points := make([]orb.Point, len(el.Geometry))
		for i, node := range el.Geometry {
			points[i] = orb.Point{node.Lon, node.Lat}
		}

		if _, isBuilding := el.Tags["building"]; isBuilding {
			ring := geo.CloseRing(orb.Ring(points))
			if len(ring) < 4 {
				continue
			}
			obstacles = append(obstacles, siting.Obstacle{
				ID:       fmt.Sprintf("way/%d", el.ID),
				Kind:     "building",
				Geometry: orb.Polygon{ring},
			})
			continue
		}
		obstacles = append(obstacles, siting.Obstacle{
			ID:       fmt.Sprintf("way/%d", el.ID),
			Kind:     "road",
			Geometry: orb.LineString(points),
		})
	}
	return obstacles, nil
}
