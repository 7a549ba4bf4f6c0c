// Command arcroad fits roads of straight segments and circular arcs to
// polylines and writes them as meshes, drawings and geographic data.
//
// Input is an XML road, an OpenStreetMap PBF extract, or an encoded
// polyline. Every output flag names a file to write.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"honnef.co/go/arcroad"
	"honnef.co/go/arcroad/geoexport"
	"honnef.co/go/arcroad/internal/config"
	"honnef.co/go/arcroad/osmimport"
	"honnef.co/go/arcroad/roadxml"
)

type outputs struct {
	xml, poly, obj, smf, svg, geojson, kml, png string
}

func main() {
	configFile := flag.String("config", "", "YAML configuration file")
	in := flag.String("in", "", "input road (.xml) or OpenStreetMap extract (.pbf)")
	encoded := flag.String("polyline", "", "encoded polyline to fit instead of -in")
	resolution := flag.Float64("resolution", 0, "override mesh.resolution")
	dev := flag.Bool("dev", false, "development logging")

	var out outputs
	flag.StringVar(&out.xml, "xml", "", "write the road as XML points")
	flag.StringVar(&out.poly, "poly", "", "write the road as XML points with radii")
	flag.StringVar(&out.obj, "obj", "", "write the ribbon mesh as OBJ")
	flag.StringVar(&out.smf, "smf", "", "write the ribbon mesh as SMF")
	flag.StringVar(&out.svg, "svg", "", "write a top view as SVG")
	flag.StringVar(&out.geojson, "geojson", "", "write GeoJSON")
	flag.StringVar(&out.kml, "kml", "", "write KML")
	flag.StringVar(&out.png, "png", "", "write a PNG preview")
	flag.Parse()

	overrides := map[string]interface{}{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "resolution":
			overrides["mesh.resolution"] = *resolution
		case "dev":
			overrides["log.development"] = *dev
		}
	})
	cfg, err := config.Load(*configFile, overrides)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(cfg, *in, *encoded, out); err != nil {
		fmt.Fprintln(os.Stderr, "arcroad:", err)
		os.Exit(1)
	}
}

// run does the work of main. It returns instead of exiting so that its
// deferred calls flush the log and release the signal handler.
func run(cfg *config.Config, in, encoded string, out outputs) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	roads, err := load(ctx, cfg, in, encoded, log)
	if err != nil {
		log.Error("loading roads", zap.Error(err))
		return fmt.Errorf("loading roads: %w", err)
	}
	if err := write(cfg, roads, out, log); err != nil {
		log.Error("writing output", zap.Error(err))
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func origin(cfg *config.Config) geoexport.Projection {
	return geoexport.Projection{Origin: orb.Point{cfg.Output.Origin[0], cfg.Output.Origin[1]}}
}

func load(ctx context.Context, cfg *config.Config, in, encoded string, log *zap.Logger) ([]geoexport.Road, error) {
	switch {
	case encoded != "":
		pts, err := geoexport.DecodePolyline(encoded, 0, origin(cfg))
		if err != nil {
			return nil, err
		}
		r, err := arcroad.Fit(pts, cfg.FitOptions())
		if err != nil {
			return nil, err
		}
		log.Info("fitted polyline", zap.Int("points", len(pts)), zap.Float64("length", r.Length(0)))
		return []geoexport.Road{{Name: cfg.Output.Name, Road: r}}, nil
	case in == "":
		return nil, errors.New("no input; use -in or -polyline")
	}

	f, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(in)) {
	case ".pbf":
		opts := osmimport.DefaultOptions()
		opts.Fit = cfg.FitOptions()
		opts.Logger = log
		if o := cfg.Output.Origin; o[0] != 0 || o[1] != 0 {
			p := origin(cfg).Origin
			opts.Origin = &p
		}
		res, err := osmimport.Import(ctx, f, opts)
		if err != nil {
			return nil, err
		}
		if len(res.Ways) == 0 {
			return nil, fmt.Errorf("%s: no highways could be fitted", in)
		}
		// Geographic output must use the origin the import chose.
		cfg.Output.Origin = []float64{res.Projection.Origin.Lon(), res.Projection.Origin.Lat()}
		return res.Roads(), nil
	default:
		opts := roadxml.DefaultReadOptions()
		opts.Fit = cfg.FitOptions()
		r, err := roadxml.Read(f, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in, err)
		}
		log.Info("read road",
			zap.String("file", in),
			zap.Int("arcs", r.NumArcs()),
			zap.Float64("length", r.Length(0)),
			zap.Float64("min_radius", r.MinRadius()))
		return []geoexport.Road{{Name: cfg.Output.Name, Road: r}}, nil
	}
}
