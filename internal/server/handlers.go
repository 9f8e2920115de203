package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/Karthikk1803/WindSiteAI/internal/metrics"
	"github.com/Karthikk1803/WindSiteAI/internal/provider/openmeteo"
	"github.com/Karthikk1803/WindSiteAI/pkg/assess"
	"github.com/Karthikk1803/WindSiteAI/pkg/geo"
	"github.com/Karthikk1803/WindSiteAI/pkg/siting"
	"github.com/Karthikk1803/WindSiteAI/pkg/turbine"
	"github.com/Karthikk1803/WindSiteAI/pkg/windfield"
)

// OptimizeRequest is the /api/optimize request body. Boundary vertices
// are [lon, lat] pairs; the ring does not need to repeat its first
// vertex.
type OptimizeRequest struct {
	Boundary      [][2]float64   `json:"boundary"`
	TargetCount   int            `json:"target_count"`
	Options       siting.Options `json:"options"`
	SkipWind      bool           `json:"skip_wind,omitempty"`
	SkipObstacles bool           `json:"skip_obstacles,omitempty"`
}

// FetchDiagnostics reports what the upstream collaborators delivered
// before the engine ran.
type FetchDiagnostics struct {
	WindFetched      bool   `json:"wind_fetched"`
	WindError        string `json:"wind_error,omitempty"`
	ObstaclesFetched bool   `json:"obstacles_fetched"`
	ObstacleCount    int    `json:"obstacle_count"`
	ObstacleError    string `json:"obstacle_error,omitempty"`
	ObstacleSkip     string `json:"obstacle_skip,omitempty"`
}

// OptimizeResponse carries the engine result plus a GeoJSON rendering
// of the placed sites.
type OptimizeResponse struct {
	Result  *siting.Result             `json:"result"`
	GeoJSON *geojson.FeatureCollection `json:"geojson"`
	Fetch   FetchDiagnostics           `json:"fetch"`
}

// OptimizeHandler fetches wind and obstacle data as requested, runs
// the siting pipeline and returns the ranked placement.
func OptimizeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req OptimizeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "malformed request body: "+err.Error())
		}
		if len(req.Boundary) < 3 {
			return errBadRequest(c, "boundary needs at least 3 [lon, lat] vertices")
		}

		ring := make(orb.Ring, len(req.Boundary))
		for i, v := range req.Boundary {
			ring[i] = orb.Point{v[0], v[1]}
		}
		bounds := ring.Bound()

		sitingReq := siting.Request{
			Boundary:    ring,
			TargetCount: req.TargetCount,
			Options:     req.Options,
		}

		var fetch FetchDiagnostics
		if !req.SkipWind && deps.Wind != nil {
			windStart := time.Now()
			surface, _, err := deps.Wind.FetchGrid(c.Context(), openmeteo.GridRequest{Bounds: bounds})
			metrics.ProviderDuration.WithLabelValues("open_meteo").Observe(time.Since(windStart).Seconds())
			if err != nil {
				metrics.ProviderRequests.WithLabelValues("open_meteo", "failed").Inc()
				fetch.WindError = err.Error()
				deps.Logger.Warn("wind fetch failed; optimizing without wind data", zap.Error(err))
			} else {
				metrics.ProviderRequests.WithLabelValues("open_meteo", "ok").Inc()
				sitingReq.Wind = surface
				fetch.WindFetched = true
			}
		}

		if !req.SkipObstacles && deps.Obstacles != nil {
			frame := geo.NewFrame(bounds)
			area := frame.AreaKm2(geo.CloseRing(ring))
			if deps.MaxObstacleAreaKm2 > 0 && area >= deps.MaxObstacleAreaKm2 {
				fetch.ObstacleSkip = fmt.Sprintf("boundary area %.1f km2 at or above the %.0f km2 obstacle threshold", area, deps.MaxObstacleAreaKm2)
			} else {
				obsStart := time.Now()
				obstacles, err := deps.Obstacles.FetchObstacles(c.Context(), bounds)
				metrics.ProviderDuration.WithLabelValues("overpass").Observe(time.Since(obsStart).Seconds())
				if err != nil {
					metrics.ProviderRequests.WithLabelValues("overpass", "failed").Inc()
					fetch.ObstacleError = err.Error()
					deps.Logger.Warn("obstacle fetch failed; optimizing unfiltered", zap.Error(err))
				} else {
					metrics.ProviderRequests.WithLabelValues("overpass", "ok").Inc()
					sitingReq.Obstacles = obstacles
					fetch.ObstaclesFetched = true
					fetch.ObstacleCount = len(obstacles)
				}
			}
		}

		start := time.Now()
		result, err := siting.Optimize(c.Context(), sitingReq)
		metrics.OptimizeDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.OptimizeRuns.WithLabelValues("failed").Inc()
			var noSafe *siting.NoSafeCandidatesError
			switch {
			case errors.Is(err, siting.ErrInvalidBoundary),
				errors.Is(err, siting.ErrInvalidTargetCount):
				return errBadRequest(c, err.Error())
			case errors.Is(err, siting.ErrNoCandidates):
				return errUnprocessable(c, "no_candidates", err.Error())
			case errors.As(err, &noSafe):
				return errUnprocessable(c, "no_safe_candidates", err.Error())
			}
			return errInternal(c, err.Error())
		}

		status := "ok"
		if !result.Fulfilled {
			status = "partial"
		}
		metrics.OptimizeRuns.WithLabelValues(status).Inc()
		metrics.SitesPlaced.Add(float64(len(result.Sites)))

		deps.Logger.Info("optimize run complete",
			zap.String("run_id", result.RunID),
			zap.Int("sites", len(result.Sites)),
			zap.Int("requested", result.Requested),
			zap.Bool("refined", result.Refined),
			zap.Float64("elapsed_ms", result.ElapsedMS))

		return c.JSON(OptimizeResponse{
			Result:  result,
			GeoJSON: sitesToGeoJSON(result.Sites),
			Fetch:   fetch,
		})
	}
}

// sitesToGeoJSON renders placed sites as a point FeatureCollection for
// map frontends.
func sitesToGeoJSON(sites []siting.Site) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, site := range sites {
		f := geojson.NewFeature(orb.Point{site.Lon, site.Lat})
		f.Properties["id"] = site.ID
		f.Properties["rank"] = site.Rank
		f.Properties["wind_speed_ms"] = site.WindSpeed
		f.Properties["capacity_factor"] = site.CapacityFactor
		f.Properties["power_mw"] = site.Power
		f.Properties["composite_score"] = site.Composite
		f.Properties["refined"] = site.Refined
		f.Properties["displacement_km"] = site.DisplacementKm
		fc.Append(f)
	}
	return fc
}

// WindGridRequest is the /api/wind-grid request body.
type WindGridRequest struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
	Rows   int     `json:"rows"`
	Cols   int     `json:"cols"`
}

// WindGridMeta describes the returned grid.
type WindGridMeta struct {
	MinLat    float64   `json:"min_lat"`
	MaxLat    float64   `json:"max_lat"`
	MinLon    float64   `json:"min_lon"`
	MaxLon    float64   `json:"max_lon"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// WindGridResponse is the /api/wind-grid response body. Grid row 0
// lies on the southern edge.
type WindGridResponse struct {
	Meta  WindGridMeta    `json:"meta"`
	Grid  [][]float64     `json:"grid"`
	Stats windfield.Stats `json:"stats"`
}

// WindGridHandler returns a wind speed matrix for a bounding box.
func WindGridHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req WindGridRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "malformed request body: "+err.Error())
		}
		if deps.Wind == nil {
			return errInternal(c, "wind provider not configured")
		}

		start := time.Now()
		surface, stats, err := deps.Wind.FetchGrid(c.Context(), openmeteo.GridRequest{
			Bounds: orb.Bound{
				Min: orb.Point{req.MinLon, req.MinLat},
				Max: orb.Point{req.MaxLon, req.MaxLat},
			},
			Rows: req.Rows,
			Cols: req.Cols,
		})
		metrics.ProviderDuration.WithLabelValues("open_meteo").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ProviderRequests.WithLabelValues("open_meteo", "failed").Inc()
			if errors.Is(err, openmeteo.ErrInvalidBounds) {
				return errBadRequest(c, "invalid bounding box provided")
			}
			if errors.Is(err, openmeteo.ErrAllSamplesFailed) {
				return errBadGateway(c, "unable to retrieve wind data from provider")
			}
			return errInternal(c, err.Error())
		}
		metrics.ProviderRequests.WithLabelValues("open_meteo", "ok").Inc()

		return c.JSON(WindGridResponse{
			Meta: WindGridMeta{
				MinLat:    req.MinLat,
				MaxLat:    req.MaxLat,
				MinLon:    req.MinLon,
				MaxLon:    req.MaxLon,
				Rows:      surface.Rows,
				Cols:      surface.Cols,
				Source:    surface.Source,
				FetchedAt: surface.FetchedAt,
			},
			Grid:  surface.Values,
			Stats: stats,
		})
	}
}

// AnalyzeHandler returns a feasibility study for a coordinate. An
// optional seed query parameter makes the study reproducible.
func AnalyzeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon query parameters are required")
		}
		lat := c.QueryFloat("lat")
		lon := c.QueryFloat("lon")
		if lat < -90 || lat > 90 {
			return errBadRequest(c, "lat must be between -90 and 90")
		}
		if lon < -180 || lon > 180 {
			return errBadRequest(c, "lon must be between -180 and 180")
		}

		seed := int64(c.QueryInt("seed"))
		if c.Query("seed") == "" {
			seed = time.Now().UnixNano()
		}

		return c.JSON(assess.New(seed).Assess(lat, lon))
	}
}

// TurbinesHandler lists the reference turbine catalogue.
func TurbinesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"turbines": turbine.Catalogue()})
	}
}

// HealthHandler returns a basic liveness check.
func HealthHandler() fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"uptime": time.Since(startedAt).String(),
		})
	}
}
