package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Karthikk1803/WindSiteAI/internal/config"
	"github.com/Karthikk1803/WindSiteAI/internal/logging"
	"github.com/Karthikk1803/WindSiteAI/internal/provider/openmeteo"
	"github.com/Karthikk1803/WindSiteAI/internal/provider/overpass"
	"github.com/Karthikk1803/WindSiteAI/internal/server"
	"github.com/Karthikk1803/WindSiteAI/pkg/assess"
	"github.com/Karthikk1803/WindSiteAI/pkg/geo"
	"github.com/Karthikk1803/WindSiteAI/pkg/scenario"
	"github.com/Karthikk1803/WindSiteAI/pkg/siting"
	"github.com/Karthikk1803/WindSiteAI/pkg/validation"
)

// loadAndValidate loads the scenario and runs input validation. The
// path may name a YAML file directly or a project directory holding
// scenario.yaml.
func loadAndValidate(path string) (*scenario.Scenario, *validation.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading scenario path: %w", err)
	}

	var sc *scenario.Scenario
	if info.IsDir() {
		sc, err = scenario.LoadProject(path)
	} else {
		sc, err = scenario.Load(path)
	}
	if err != nil {
		return nil, nil, err
	}
	return sc, sc.Validate(), nil
}

func runValidate(path string) error {
	_, report, err := loadAndValidate(path)
	if err != nil {
		return err
	}

	printValidationReport(report)

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

func runOptimize(path string, asJSON, offline bool) error {
	sc, report, err := loadAndValidate(path)
	if err != nil {
		return err
	}
	if !report.Valid {
		printValidationReport(report)
		return fmt.Errorf("scenario has validation errors")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	req := sc.Request()
	if !offline && !sc.Offline {
		attachLiveData(&req, cfg)
	}

	result, err := siting.Optimize(context.Background(), req)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"scenario": sc.Name,
			"result":   result,
		})
	}

	printSiteTable(sc, result)
	if result.Report != nil && (len(result.Report.Warnings) > 0 || len(result.Report.Info) > 0) {
		fmt.Println()
		printValidationReport(result.Report)
	}
	return nil
}

// attachLiveData fetches the wind surface and nearby obstacles for the
// request boundary. Either fetch may fail or be skipped; the optimizer
// then runs on fallback scoring, so failures are reported on stderr
// rather than aborting the run.
func attachLiveData(req *siting.Request, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	ring := geo.CloseRing(req.Boundary)
	bounds := ring.Bound()

	om := cfg.Providers.OpenMeteo
	wind := openmeteo.New(om.BaseURL, time.Duration(om.TimeoutSec)*time.Second, om.MaxConcurrent)
	surface, _, err := wind.FetchGrid(ctx, openmeteo.GridRequest{Bounds: bounds})
	if err != nil {
		fmt.Fprintf(os.Stderr, "wind fetch failed, falling back to default scoring: %v\n", err)
	} else {
		req.Wind = surface
	}

	op := cfg.Providers.Overpass
	area := geo.NewFrame(bounds).AreaKm2(ring)
	if op.MaxAreaKm2 > 0 && area >= op.MaxAreaKm2 {
		fmt.Fprintf(os.Stderr, "boundary covers %.1f km2, skipping the obstacle fetch above %.0f km2\n", area, op.MaxAreaKm2)
		return
	}

	obstacles := overpass.New(op.BaseURL, time.Duration(op.TimeoutSec)*time.Second)
	found, err := obstacles.FetchObstacles(ctx, bounds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "obstacle fetch failed, keeping only inline obstacles: %v\n", err)
		return
	}
	req.Obstacles = append(req.Obstacles, found...)
}

func runWindGrid(path string, rows, cols int, asJSON bool) error {
	sc, report, err := loadAndValidate(path)
	if err != nil {
		return err
	}
	if !report.Valid {
		printValidationReport(report)
		return fmt.Errorf("scenario has validation errors")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	om := cfg.Providers.OpenMeteo
	client := openmeteo.New(om.BaseURL, time.Duration(om.TimeoutSec)*time.Second, om.MaxConcurrent)
	surface, stats, err := client.FetchGrid(ctx, openmeteo.GridRequest{
		Bounds: geo.CloseRing(sc.Ring()).Bound(),
		Rows:   rows,
		Cols:   cols,
	})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"scenario": sc.Name,
			"surface":  surface,
			"stats":    stats,
		})
	}

	printWindGrid(surface, stats)
	return nil
}

func runAnalyze(lat, lon float64, seed int64, asJSON bool) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range, expected -90 to 90", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range, expected -180 to 180", lon)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	result := assess.New(seed).Assess(lat, lon)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printAssessment(lat, lon, result)
	return nil
}

func runServe(port int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	om := cfg.Providers.OpenMeteo
	op := cfg.Providers.Overpass
	deps := &server.Dependencies{
		Wind:               openmeteo.New(om.BaseURL, time.Duration(om.TimeoutSec)*time.Second, om.MaxConcurrent),
		Obstacles:          overpass.New(op.BaseURL, time.Duration(op.TimeoutSec)*time.Second),
		MaxObstacleAreaKm2: op.MaxAreaKm2,
		Logger:             logger,
	}

	srv := server.New(cfg, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
