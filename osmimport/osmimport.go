// Package osmimport reads highways from OpenStreetMap PBF extracts and fits
// a road to each of them.
package osmimport

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/qedus/osmpbf"
	"go.uber.org/zap"

	"honnef.co/go/arcroad"
	"honnef.co/go/arcroad/geoexport"
)

// DefaultHighways are the values of the highway tag imported when
// Options.Highways is empty.
var DefaultHighways = []string{
	"motorway", "motorway_link",
	"trunk", "trunk_link",
	"primary", "primary_link",
	"secondary", "secondary_link",
	"tertiary", "tertiary_link",
	"unclassified", "residential",
}

// Options controls an import.
type Options struct {
	// Highways lists the accepted values of the highway tag.
	Highways []string
	// Origin is the origin of the local coordinate system, in degrees. If
	// nil, the center of the imported nodes' bounding box is used.
	Origin *orb.Point
	Fit    arcroad.FitOptions
	// Procs is the number of decoding goroutines. Zero means GOMAXPROCS.
	Procs  int
	Logger *zap.Logger
}

// DefaultOptions returns options that import the common road classes with
// default fitting.
func DefaultOptions() Options {
	return Options{Fit: arcroad.DefaultFitOptions()}
}

// Way is an imported highway.
type Way struct {
	ID    osm.WayID
	Name  string
	Tags  osm.Tags
	Nodes []osm.NodeID
	// Points are the node positions in local coordinates, with the node's
	// ele tag as altitude where present.
	Points []mgl64.Vec3
	Road   *arcroad.Road
}

// Result holds the fitted ways of an import.
type Result struct {
	Projection geoexport.Projection
	Ways       []Way
	// Skipped counts highways that could not be fitted, for example because
	// they reference missing nodes or double back on themselves.
	Skipped int
}

// Roads returns the ways as named roads for export. Unnamed ways are named
// after their ID.
func (res *Result) Roads() []geoexport.Road {
	out := make([]geoexport.Road, len(res.Ways))
	for i, w := range res.Ways {
		name := w.Name
		if name == "" {
			name = fmt.Sprintf("way/%d", w.ID)
		}
		out[i] = geoexport.Road{Name: name, Road: w.Road}
	}
	return out
}

// source yields decoded OSM entities until io.EOF.
type source interface {
	Decode() (interface{}, error)
}

type node struct {
	ll  orb.Point
	ele float64
}

type collector struct {
	accept map[string]bool
	nodes  map[osm.NodeID]node
	ways   []Way
}

func newCollector(highways []string) *collector {
	if len(highways) == 0 {
		highways = DefaultHighways
	}
	c := &collector{
		accept: make(map[string]bool, len(highways)),
		nodes:  make(map[osm.NodeID]node),
	}
	for _, h := range highways {
		c.accept[h] = true
	}
	return c
}

func tagsOf(m map[string]string) osm.Tags {
	tags := make(osm.Tags, 0, len(m))
	for k, v := range m {
		tags = append(tags, osm.Tag{Key: k, Value: v})
	}
	tags.SortByKeyValue()
	return tags
}

// read consumes src. Nodes are kept regardless of whether a highway uses
// them, because ways may precede their nodes in unsorted extracts.
func (c *collector) read(ctx context.Context, src source) error {
	for i := 0; ; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		v, err := src.Decode()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch v := v.(type) {
		case *osmpbf.Node:
			n := node{ll: orb.Point{v.Lon, v.Lat}}
			if ele, err := strconv.ParseFloat(v.Tags["ele"], 64); err == nil {
				n.ele = ele
			}
			c.nodes[osm.NodeID(v.ID)] = n
		case *osmpbf.Way:
			if !c.accept[v.Tags["highway"]] {
				continue
			}
			tags := tagsOf(v.Tags)
			w := Way{
				ID:    osm.WayID(v.ID),
				Name:  tags.Find("name"),
				Tags:  tags,
				Nodes: make([]osm.NodeID, len(v.NodeIDs)),
			}
			for j, id := range v.NodeIDs {
				w.Nodes[j] = osm.NodeID(id)
			}
			c.ways = append(c.ways, w)
		}
	}
}

// bound returns the bounding box of the nodes referenced by highways.
func (c *collector) bound() (orb.Bound, bool) {
	var mp orb.MultiPoint
	for _, w := range c.ways {
		for _, id := range w.Nodes {
			if n, ok := c.nodes[id]; ok {
				mp = append(mp, n.ll)
			}
		}
	}
	if len(mp) == 0 {
		return orb.Bound{}, false
	}
	return mp.Bound(), true
}

func (c *collector) fit(proj geoexport.Projection, opts Options, log *zap.Logger) *Result {
	res := &Result{Projection: proj}
	for _, w := range c.ways {
		w.Points = make([]mgl64.Vec3, 0, len(w.Nodes))
		missing := false
		for _, id := range w.Nodes {
			n, ok := c.nodes[id]
			if !ok {
				missing = true
				break
			}
			w.Points = append(w.Points, proj.ToLocal(n.ll, n.ele))
		}
		if missing {
			log.Debug("skipping way with missing nodes", zap.Int64("way", int64(w.ID)))
			res.Skipped++
			continue
		}
		r, err := arcroad.Fit(w.Points, opts.Fit)
		if err != nil {
			log.Debug("skipping way", zap.Int64("way", int64(w.ID)), zap.String("name", w.Name), zap.Error(err))
			res.Skipped++
			continue
		}
		w.Road = r
		res.Ways = append(res.Ways, w)
	}
	slices.SortFunc(res.Ways, func(a, b Way) int { return cmp.Compare(a.ID, b.ID) })
	return res
}

func (opts Options) logger() *zap.Logger {
	if opts.Logger == nil {
		return zap.NewNop()
	}
	return opts.Logger
}

func importFrom(ctx context.Context, src source, opts Options) (*Result, error) {
	log := opts.logger()
	c := newCollector(opts.Highways)
	if err := c.read(ctx, src); err != nil {
		return nil, fmt.Errorf("osmimport: %w", err)
	}
	log.Info("decoded extract", zap.Int("nodes", len(c.nodes)), zap.Int("highways", len(c.ways)))

	var proj geoexport.Projection
	switch {
	case opts.Origin != nil:
		proj.Origin = *opts.Origin
	default:
		if b, ok := c.bound(); ok {
			proj.Origin = b.Center()
		}
	}
	res := c.fit(proj, opts, log)
	log.Info("fitted highways",
		zap.Int("roads", len(res.Ways)),
		zap.Int("skipped", res.Skipped),
		zap.Float64("origin_lon", proj.Origin.Lon()),
		zap.Float64("origin_lat", proj.Origin.Lat()))
	return res, nil
}

// Import decodes a PBF extract from r and fits a road to every accepted
// highway. Ways that cannot be fitted are counted in Result.Skipped and
// logged at debug level.
func Import(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	dec := osmpbf.NewDecoder(r)
	dec.SetBufferSize(osmpbf.MaxBlobSize)
	procs := opts.Procs
	if procs <= 0 {
		procs = runtime.GOMAXPROCS(-1)
	}
	if err := dec.Start(procs); err != nil {
		return nil, fmt.Errorf("osmimport: %w", err)
	}
	return importFrom(ctx, dec, opts)
}
