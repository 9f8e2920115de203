// Package scenario loads and validates siting jobs described in YAML.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/Karthikk1803/WindSiteAI/pkg/geo"
	"github.com/Karthikk1803/WindSiteAI/pkg/siting"
	"github.com/Karthikk1803/WindSiteAI/pkg/validation"
)

// Scenario is one siting job: the boundary polygon, the number of
// sites wanted and optional optimizer overrides. Boundary vertices are
// [lon, lat] pairs; the ring does not need to repeat its first vertex.
type Scenario struct {
	Name           string        `yaml:"name" json:"name"`
	Description    string        `yaml:"description,omitempty" json:"description,omitempty"`
	Boundary       [][2]float64  `yaml:"boundary" json:"boundary"`
	Obstacles      []ObstacleDef `yaml:"obstacles,omitempty" json:"obstacles,omitempty"`
	TargetCount    int           `yaml:"target_count" json:"target_count"`
	MinSpacingKm   float64       `yaml:"min_spacing_km,omitempty" json:"min_spacing_km,omitempty"`
	UnitsPerSite   int           `yaml:"units_per_site,omitempty" json:"units_per_site,omitempty"`
	SkipRefinement bool          `yaml:"skip_refinement,omitempty" json:"skip_refinement,omitempty"`

	// Offline skips the live wind and obstacle fetches, running the
	// optimizer on fallback scoring alone.
	Offline bool `yaml:"offline,omitempty" json:"offline,omitempty"`
}

// ObstacleDef declares a blocking geometry inline in the scenario.
// Exactly one of Polygon or Line must be set; vertices are [lon, lat]
// pairs.
type ObstacleDef struct {
	ID      string       `yaml:"id,omitempty" json:"id,omitempty"`
	Kind    string       `yaml:"kind,omitempty" json:"kind,omitempty"`
	Polygon [][2]float64 `yaml:"polygon,omitempty" json:"polygon,omitempty"`
	Line    [][2]float64 `yaml:"line,omitempty" json:"line,omitempty"`
}

// Load reads a scenario from a YAML file. Unknown fields are rejected
// so typos in scenario files fail loudly instead of silently using a
// default.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}

	return &sc, nil
}

// LoadProject loads a scenario from a project directory. It looks for
// scenario.yaml in the given directory.
func LoadProject(projectDir string) (*Scenario, error) {
	return Load(filepath.Join(projectDir, "scenario.yaml"))
}

// Ring returns the boundary as a geographic ring in (lon, lat) order.
func (s *Scenario) Ring() orb.Ring {
	ring := make(orb.Ring, len(s.Boundary))
	for i, v := range s.Boundary {
		ring[i] = orb.Point{v[0], v[1]}
	}
	return ring
}

// Request assembles a siting request from the scenario. Inline
// obstacles are attached here; wind data and fetched obstacles are
// appended by the caller.
func (s *Scenario) Request() siting.Request {
	return siting.Request{
		Boundary:    s.Ring(),
		Obstacles:   s.obstacleGeometries(),
		TargetCount: s.TargetCount,
		Options: siting.Options{
			MinSpacingKm:   s.MinSpacingKm,
			UnitsPerSite:   s.UnitsPerSite,
			SkipRefinement: s.SkipRefinement,
		},
	}
}

// obstacleGeometries converts inline obstacle definitions into engine
// geometries. Definitions without a usable geometry are dropped here;
// Validate reports them before a run.
func (s *Scenario) obstacleGeometries() []siting.Obstacle {
	if len(s.Obstacles) == 0 {
		return nil
	}

	out := make([]siting.Obstacle, 0, len(s.Obstacles))
	for i, def := range s.Obstacles {
		id := def.ID
		if id == "" {
			id = fmt.Sprintf("obstacle_%d", i)
		}
		switch {
		case len(def.Polygon) >= 3:
			ring := make(orb.Ring, len(def.Polygon))
			for j, v := range def.Polygon {
				ring[j] = orb.Point{v[0], v[1]}
			}
			out = append(out, siting.Obstacle{
				ID:       id,
				Kind:     def.Kind,
				Geometry: orb.Polygon{geo.CloseRing(ring)},
			})
		case len(def.Line) >= 2:
			line := make(orb.LineString, len(def.Line))
			for j, v := range def.Line {
				line[j] = orb.Point{v[0], v[1]}
			}
			out = append(out, siting.Obstacle{ID: id, Kind: def.Kind, Geometry: line})
		}
	}
	return out
}

// Validate checks the scenario before it reaches the optimizer.
// Errors block a run; warnings describe choices that will degrade the
// result but still produce one.
func (s *Scenario) Validate() *validation.Report {
	report := validation.NewReport()

	if s.Name == "" {
		report.AddWarning(validation.Result{
			Level:       validation.LevelInput,
			Field:       "name",
			Message:     "scenario has no name",
			Suggestions: []string{"name scenarios so runs stay traceable"},
		})
	}

	if len(s.Boundary) < 3 {
		report.AddError(validation.Result{
			Level:       validation.LevelInput,
			Field:       "boundary",
			Message:     "boundary needs at least 3 vertices",
			ActualValue: fmt.Sprintf("%d vertices", len(s.Boundary)),
			Expected:    "3 or more [lon, lat] pairs",
		})
	}
	for i, v := range s.Boundary {
		if v[0] < -180 || v[0] > 180 {
			report.AddError(validation.Result{
				Level:       validation.LevelInput,
				Field:       fmt.Sprintf("boundary[%d]", i),
				Message:     "longitude out of range",
				ActualValue: fmt.Sprintf("%v", v[0]),
				Expected:    "-180 to 180",
			})
		}
		if v[1] < -90 || v[1] > 90 {
			report.AddError(validation.Result{
				Level:       validation.LevelInput,
				Field:       fmt.Sprintf("boundary[%d]", i),
				Message:     "latitude out of range",
				ActualValue: fmt.Sprintf("%v", v[1]),
				Expected:    "-90 to 90",
			})
		}
	}

	for i, o := range s.Obstacles {
		field := fmt.Sprintf("obstacles[%d]", i)
		hasPolygon := len(o.Polygon) > 0
		hasLine := len(o.Line) > 0
		switch {
		case hasPolygon && hasLine:
			report.AddError(validation.Result{
				Level:    validation.LevelInput,
				Field:    field,
				Message:  "obstacle declares both a polygon and a line",
				Expected: "exactly one geometry per obstacle",
			})
		case !hasPolygon && !hasLine:
			report.AddError(validation.Result{
				Level:    validation.LevelInput,
				Field:    field,
				Message:  "obstacle has no geometry",
				Expected: "a polygon or a line",
			})
		case hasPolygon && len(o.Polygon) < 3:
			report.AddError(validation.Result{
				Level:       validation.LevelInput,
				Field:       field,
				Message:     "obstacle polygon needs at least 3 vertices",
				ActualValue: fmt.Sprintf("%d vertices", len(o.Polygon)),
				Expected:    "3 or more [lon, lat] pairs",
			})
		case hasLine && len(o.Line) < 2:
			report.AddError(validation.Result{
				Level:       validation.LevelInput,
				Field:       field,
				Message:     "obstacle line needs at least 2 vertices",
				ActualValue: fmt.Sprintf("%d vertices", len(o.Line)),
				Expected:    "2 or more [lon, lat] pairs",
			})
		}
	}

	if s.TargetCount < 1 {
		report.AddError(validation.Result{
			Level:       validation.LevelInput,
			Field:       "target_count",
			Message:     "target count must be at least 1",
			ActualValue: fmt.Sprintf("%d", s.TargetCount),
			Expected:    "1 or more",
		})
	} else if s.TargetCount > 200 {
		report.AddWarning(validation.Result{
			Level:       validation.LevelInput,
			Field:       "target_count",
			Message:     "very large target counts make refinement slow",
			ActualValue: fmt.Sprintf("%d", s.TargetCount),
			Suggestions: []string{"split the boundary into separate scenarios"},
		})
	}

	if s.MinSpacingKm < 0 {
		report.AddError(validation.Result{
			Level:       validation.LevelInput,
			Field:       "min_spacing_km",
			Message:     "minimum spacing cannot be negative",
			ActualValue: fmt.Sprintf("%v", s.MinSpacingKm),
			Expected:    "0 for the default, or a positive distance",
		})
	} else if s.MinSpacingKm > 0 && s.MinSpacingKm < siting.DefaultMinSpacingKm {
		report.AddWarning(validation.Result{
			Level:       validation.LevelInput,
			Field:       "min_spacing_km",
			Message:     fmt.Sprintf("spacing below the %.1f km default risks heavy wake losses", siting.DefaultMinSpacingKm),
			ActualValue: fmt.Sprintf("%v", s.MinSpacingKm),
		})
	}

	if s.UnitsPerSite < 0 {
		report.AddError(validation.Result{
			Level:       validation.LevelInput,
			Field:       "units_per_site",
			Message:     "units per site cannot be negative",
			ActualValue: fmt.Sprintf("%d", s.UnitsPerSite),
			Expected:    "0 for the default, or a positive count",
		})
	}

	return report
}
