// Package siting implements the turbine placement pipeline: candidate
// generation over a boundary polygon, greedy multi-criteria selection
// and gradient-based position refinement.
package siting

import (
	"github.com/paulmach/orb"

	"github.com/Karthikk1803/WindSiteAI/pkg/validation"
	"github.com/Karthikk1803/WindSiteAI/pkg/windfield"
)

// Obstacle is a blocking geometry in geographic coordinates. Supported
// geometry types are orb.LineString, orb.Ring and orb.Polygon; other
// types are skipped during filtering.
type Obstacle struct {
	ID       string       `json:"id,omitempty"`
	Kind     string       `json:"kind,omitempty"`
	Geometry orb.Geometry `json:"-"`
}

// Options tune the optimizer. Zero values fall back to defaults.
type Options struct {
	MinSpacingKm   float64 `json:"min_spacing_km,omitempty"`
	UnitsPerSite   int     `json:"units_per_site,omitempty"`
	SkipRefinement bool    `json:"skip_refinement,omitempty"`
}

// Request describes one siting run. Boundary vertices are geographic
// (lon, lat); the ring may be open, it is closed on entry. Wind and
// Obstacles are optional: a nil wind surface degrades capacity factor
// scoring and disables refinement, missing obstacles skip the
// proximity filter.
type Request struct {
	Boundary    orb.Ring
	Wind        *windfield.Surface
	Obstacles   []Obstacle
	TargetCount int
	Options     Options
}

// Scores holds the per-criterion selection scores of a site, each
// normalized to [0, 1].
type Scores struct {
	CapacityFactor float64 `json:"capacity_factor"`
	Wind           float64 `json:"wind"`
	Spacing        float64 `json:"spacing"`
	Edge           float64 `json:"edge"`
	Centrality     float64 `json:"centrality"`
}

// Site is one placed turbine position, ordered by rank.
type Site struct {
	ID             string  `json:"id"`
	Rank           int     `json:"rank"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	WindSpeed      float64 `json:"wind_speed_ms"`
	CapacityFactor float64 `json:"capacity_factor"`
	Power          float64 `json:"power"`
	Scores         Scores  `json:"scores"`
	Composite      float64 `json:"composite_score"`
	Refined        bool    `json:"refined"`
	DisplacementKm float64 `json:"displacement_km"`
}

// CandidateCounts reports lattice sizes at each filtering stage.
type CandidateCounts struct {
	Lattice int `json:"lattice"`
	Safe    int `json:"safe"`
	Scored  int `json:"scored"`
}

// Result is the outcome of a siting run. Sites are sorted by rank;
// the report carries degradation annotations such as missing wind
// data, skipped obstacle filtering or partial fulfillment.
type Result struct {
	RunID      string             `json:"run_id"`
	Sites      []Site             `json:"sites"`
	Requested  int                `json:"requested"`
	Fulfilled  bool               `json:"fulfilled"`
	Refined    bool               `json:"refined"`
	AreaKm2    float64            `json:"area_km2"`
	LatticeKm  float64            `json:"lattice_spacing_km"`
	Candidates CandidateCounts    `json:"candidates"`
	Report     *validation.Report `json:"report"`
	ElapsedMS  float64            `json:"elapsed_ms"`
}
