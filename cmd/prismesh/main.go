// Command prismesh meshes extruded prisms into quad-dominant surface
// meshes and writes them as STL.
//
//	prismesh -script design.prism -stl out.stl
//	prismesh -geojson lot.geojson -base 0 -top 12 -preset fine -stl lot.stl
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chazu/prismesh/pkg/app"
	"github.com/chazu/prismesh/pkg/options"
	"github.com/chazu/prismesh/pkg/script"
	"github.com/chazu/prismesh/pkg/structure"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type config struct {
	script  string
	geojson string
	base    float64
	top     float64
	options string
	preset  string
	stl     string
	split   bool
	jobs    int
	verbose bool
}

func parseFlags(args []string) (config, error) {
	var c config
	fs := flag.NewFlagSet("prismesh", flag.ContinueOnError)
	fs.StringVar(&c.script, "script", "", "prism DSL source file")
	fs.StringVar(&c.geojson, "geojson", "", "GeoJSON file whose first polygon is the footprint")
	fs.Float64Var(&c.base, "base", 0, "base elevation for -geojson")
	fs.Float64Var(&c.top, "top", 1, "top elevation for -geojson")
	fs.StringVar(&c.options, "options", "", "YAML meshing options")
	fs.StringVar(&c.preset, "preset", "", "named options preset ("+strings.Join(options.PresetNames(), ", ")+")")
	fs.StringVar(&c.stl, "stl", "", "STL output path")
	fs.BoolVar(&c.split, "split", false, "write one STL per prism next to -stl")
	fs.IntVar(&c.jobs, "j", 0, "prisms meshed concurrently (0 = GOMAXPROCS)")
	fs.BoolVar(&c.verbose, "v", false, "development logging")
	if err := fs.Parse(args); err != nil {
		return c, err
	}
	if (c.script == "") == (c.geojson == "") {
		return c, errors.New("exactly one of -script or -geojson is required")
	}
	if c.options != "" && c.preset != "" {
		return c, errors.New("-options and -preset are mutually exclusive")
	}
	return c, nil
}

func loadOptions(c config) (options.Options, error) {
	switch {
	case c.options != "":
		return options.Load(c.options)
	case c.preset != "":
		return options.Preset(c.preset)
	}
	return options.Default(), nil
}

// loadDesign reads the input into a script.Design so both input kinds
// share one meshing path.
func loadDesign(c config) (*script.Design, []script.EvalError, error) {
	if c.geojson != "" {
		data, err := os.ReadFile(c.geojson)
		if err != nil {
			return nil, nil, errors.Wrap(err, "read geojson")
		}
		p, err := structure.FromGeoJSON(data, c.base, c.top)
		if err != nil {
			return nil, nil, err
		}
		name := strings.TrimSuffix(filepath.Base(c.geojson), filepath.Ext(c.geojson))
		return &script.Design{Prisms: []script.NamedPrism{{Name: name, Prism: p}}}, nil, nil
	}
	src, err := os.ReadFile(c.script)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read script")
	}
	return script.NewEngine().Evaluate(string(src))
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, c config, log *zap.Logger) error {
	opts, err := loadOptions(c)
	if err != nil {
		return err
	}
	d, evalErrs, err := loadDesign(c)
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.Error("script error", zap.Int("line", e.Line), zap.String("message", e.Message))
		}
		return errors.Errorf("%s: %d script errors", c.script, len(evalErrs))
	}
	if len(d.Prisms) == 0 {
		return errors.New("no prisms defined")
	}

	a := app.New(app.WithLogger(log), app.WithOptions(opts), app.WithConcurrency(c.jobs))
	res := a.MeshDesign(ctx, d, app.EvalResult{})
	if !res.OK() {
		return errors.New(res.Errors[0].Message)
	}
	for _, w := range res.Warnings {
		log.Warn(w.Message)
	}

	for _, pr := range res.Prisms {
		st := pr.Result.Stats
		q := pr.Result.Mesh.QualityStats(opts.MinCapQuadQuality)
		log.Info("meshed prism",
			zap.String("name", pr.Name),
			zap.String("cap_path", string(st.CapPath)),
			zap.Int("z_levels", len(pr.Result.ZLevels)),
			zap.Int("quads", q.Quads),
			zap.Int("triangles", q.Triangles),
			zap.Int("vertices", len(pr.Result.Indexed.Vertices)),
			zap.Float64("quality_min", q.Min),
			zap.Float64("quality_mean", q.Mean),
			zap.Int("below_threshold", q.Below),
		)
	}

	if c.stl == "" {
		return nil
	}
	if !c.split {
		if err := res.Merged().WriteSTL(c.stl); err != nil {
			return err
		}
		log.Info("wrote stl", zap.String("path", c.stl))
		return nil
	}
	ext := filepath.Ext(c.stl)
	stem := strings.TrimSuffix(c.stl, ext)
	for _, pr := range res.Prisms {
		path := fmt.Sprintf("%s-%s%s", stem, pr.Name, ext)
		if err := pr.Result.Mesh.WriteSTL(path); err != nil {
			return errors.Wrapf(err, "prism %q", pr.Name)
		}
		log.Info("wrote stl", zap.String("path", path))
	}
	return nil
}

func main() {
	c, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "prismesh:", err)
		os.Exit(2)
	}
	log, err := newLogger(c.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "prismesh: logger:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, c, log); err != nil {
		log.Error("prismesh failed", zap.Error(err))
		os.Exit(1)
	}
}
