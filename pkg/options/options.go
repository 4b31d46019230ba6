// Package options holds the knobs that control cap and surface meshing:
// target edge lengths, cap toggles, the pairing quality threshold and the
// optional refinement bands near holes and constraint segments.
package options

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidOptions is wrapped by every Validate failure.
var ErrInvalidOptions = errors.New("options: invalid")

// Bounds enforced by Validate.
const (
	MaxEdgeLength      = 1e6
	MaxIndexResolution = 4096
)

// Options configures one meshing call. The zero value is not usable; start
// from Default or a preset.
type Options struct {
	TargetEdgeLengthXY float64 `yaml:"target_edge_length_xy" json:"targetEdgeLengthXY"` // base cap grid spacing
	TargetEdgeLengthZ  float64 `yaml:"target_edge_length_z" json:"targetEdgeLengthZ"`   // vertical level spacing

	GenerateBottomCap bool `yaml:"generate_bottom_cap" json:"generateBottomCap"`
	GenerateTopCap    bool `yaml:"generate_top_cap" json:"generateTopCap"`

	// MinCapQuadQuality is the lowest ScoreQuad accepted when pairing
	// triangles, and the bar a degenerate quad must clear to be kept.
	MinCapQuadQuality float64 `yaml:"min_cap_quad_quality" json:"minCapQuadQuality"`
	// OutputRejectedCapTriangles emits unpaired triangles as triangles
	// instead of degenerate quads.
	OutputRejectedCapTriangles bool `yaml:"output_rejected_cap_triangles" json:"outputRejectedCapTriangles"`

	TargetEdgeLengthXYNearHoles    float64 `yaml:"target_edge_length_xy_near_holes" json:"targetEdgeLengthXYNearHoles"`
	HoleRefineBand                 float64 `yaml:"hole_refine_band" json:"holeRefineBand"`
	TargetEdgeLengthXYNearSegments float64 `yaml:"target_edge_length_xy_near_segments" json:"targetEdgeLengthXYNearSegments"`
	SegmentRefineBand              float64 `yaml:"segment_refine_band" json:"segmentRefineBand"`

	Epsilon         float64 `yaml:"epsilon" json:"epsilon"`                  // dedup and comparison tolerance
	IndexResolution int     `yaml:"index_resolution" json:"indexResolution"` // SpatialIndex cells per axis
}

// Default returns the baseline configuration: unit edge lengths, both caps,
// quality threshold 0.3, no refinement.
func Default() Options {
	return Options{
		TargetEdgeLengthXY: 1.0,
		TargetEdgeLengthZ:  1.0,
		GenerateBottomCap:  true,
		GenerateTopCap:     true,
		MinCapQuadQuality:  0.3,
		Epsilon:            1e-9,
		IndexResolution:    32,
	}
}

// HoleRefinementEnabled reports whether cells near holes get a finer grid:
// the band is positive and the near-hole length is finer than the base.
func (o Options) HoleRefinementEnabled() bool {
	return o.HoleRefineBand > 0 &&
		o.TargetEdgeLengthXYNearHoles > 0 &&
		o.TargetEdgeLengthXYNearHoles < o.TargetEdgeLengthXY
}

// SegmentRefinementEnabled is the constraint-segment counterpart of
// HoleRefinementEnabled.
func (o Options) SegmentRefinementEnabled() bool {
	return o.SegmentRefineBand > 0 &&
		o.TargetEdgeLengthXYNearSegments > 0 &&
		o.TargetEdgeLengthXYNearSegments < o.TargetEdgeLengthXY
}

// Validate checks every field against its bounds and reports all
// violations at once.
func (o Options) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(o.TargetEdgeLengthXY > 0 && o.TargetEdgeLengthXY <= MaxEdgeLength,
		"target_edge_length_xy %g not in (0, %g]", o.TargetEdgeLengthXY, MaxEdgeLength)
	check(o.TargetEdgeLengthZ > 0 && o.TargetEdgeLengthZ <= MaxEdgeLength,
		"target_edge_length_z %g not in (0, %g]", o.TargetEdgeLengthZ, MaxEdgeLength)
	check(o.MinCapQuadQuality >= 0 && o.MinCapQuadQuality <= 1,
		"min_cap_quad_quality %g not in [0, 1]", o.MinCapQuadQuality)
	check(o.TargetEdgeLengthXYNearHoles >= 0 && o.TargetEdgeLengthXYNearHoles <= MaxEdgeLength,
		"target_edge_length_xy_near_holes %g not in [0, %g]", o.TargetEdgeLengthXYNearHoles, MaxEdgeLength)
	check(o.HoleRefineBand >= 0, "hole_refine_band %g is negative", o.HoleRefineBand)
	check(o.TargetEdgeLengthXYNearSegments >= 0 && o.TargetEdgeLengthXYNearSegments <= MaxEdgeLength,
		"target_edge_length_xy_near_segments %g not in [0, %g]", o.TargetEdgeLengthXYNearSegments, MaxEdgeLength)
	check(o.SegmentRefineBand >= 0, "segment_refine_band %g is negative", o.SegmentRefineBand)
	check(o.Epsilon > 0 && o.Epsilon < 1, "epsilon %g not in (0, 1)", o.Epsilon)
	check(o.IndexResolution >= 1 && o.IndexResolution <= MaxIndexResolution,
		"index_resolution %d not in [1, %d]", o.IndexResolution, MaxIndexResolution)

	if len(problems) == 0 {
		return nil
	}
	return errors.Wrap(ErrInvalidOptions, strings.Join(problems, "; "))
}

// presets maps a preset name to a function that adjusts Default.
var presets = map[string]func(*Options){
	"default": func(*Options) {},
	"coarse": func(o *Options) {
		o.TargetEdgeLengthXY = 5
		o.TargetEdgeLengthZ = 5
		o.MinCapQuadQuality = 0.2
	},
	"fine": func(o *Options) {
		o.TargetEdgeLengthXY = 0.25
		o.TargetEdgeLengthZ = 0.25
		o.MinCapQuadQuality = 0.4
		o.IndexResolution = 64
	},
}

// Preset returns the named configuration.
func Preset(name string) (Options, error) {
	adjust, ok := presets[name]
	if !ok {
		return Options{}, errors.Errorf("options: unknown preset %q (have %s)", name, strings.Join(PresetNames(), ", "))
	}
	o := Default()
	adjust(&o)
	return o, nil
}

// PresetNames lists the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Parse decodes YAML on top of base: fields absent from data keep their
// base value. Unknown keys are rejected, an empty document yields base.
// The result is validated.
func Parse(data []byte, base Options) (Options, error) {
	o := base
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, errors.Wrap(err, "options: decode yaml")
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Load reads a YAML file and applies it on top of Default.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, errors.Wrapf(err, "options: read %s", path)
	}
	return Parse(data, Default())
}
