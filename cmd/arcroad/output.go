package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"honnef.co/go/arcroad"
	"honnef.co/go/arcroad/geoexport"
	"honnef.co/go/arcroad/internal/config"
	"honnef.co/go/arcroad/meshio"
	"honnef.co/go/arcroad/preview"
	"honnef.co/go/arcroad/roadxml"
)

// createFile calls fn with a buffered writer for path and reports the first
// error of writing, flushing or closing.
func createFile(path string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return bw.Flush()
}

type built struct {
	geoexport.Road
	mesh *arcroad.Mesh
}

// build meshes every road whose arcs are wide enough for the configured
// ribbon. Other roads are logged and left out of all output.
func build(cfg *config.Config, roads []geoexport.Road, log *zap.Logger) ([]built, error) {
	var out []built
	for _, rd := range roads {
		m, err := rd.Road.MakeMesh(arcroad.Unit, cfg.MeshOffsets(), cfg.Mesh.Resolution, cfg.Mesh.ReverseTexture)
		if errors.Is(err, arcroad.ErrOffset) {
			log.Warn("road too tight for ribbon",
				zap.String("road", rd.Name),
				zap.Float64("min_radius", rd.Road.MinRadius()))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("road %q: %w", rd.Name, err)
		}
		out = append(out, built{rd, m})
	}
	if len(out) == 0 {
		return nil, errors.New("no road can carry the configured ribbon")
	}
	return out, nil
}

func objectName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '/', '#':
			return '_'
		}
		return r
	}, s)
}

// merge combines meshes into one vertex and face list.
func merge(bs []built) ([]arcroad.Vertex, [][3]uint32) {
	var verts []arcroad.Vertex
	var faces [][3]uint32
	for _, b := range bs {
		base := uint32(len(verts))
		verts = append(verts, b.mesh.Vertices...)
		for _, f := range b.mesh.Faces {
			faces = append(faces, [3]uint32{f[0] + base, f[1] + base, f[2] + base})
		}
	}
	return verts, faces
}

func writeSVG(w io.Writer, cfg *config.Config, bs []built) error {
	opts := arcroad.SVGOptions{MaxPrecision: cfg.Output.SVGPrecision}
	offsets := cfg.MeshOffsets()
	var box arcroad.Rect
	for i, b := range bs {
		r := b.Road.Road.PlanarBoundingBox(offsets[0], arcroad.Unit).
			Union(b.Road.Road.PlanarBoundingBox(offsets[1], arcroad.Unit))
		if i == 0 {
			box = r
		} else {
			box = box.Union(r)
		}
	}
	box = box.Inflate(1, 1)
	if _, err := fmt.Fprintf(w,
		"<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"%s %s %s %s\">\n<g transform=\"scale(1,-1)\" fill=\"none\" stroke=\"black\" stroke-width=\"0.1\">\n",
		opts.Format(box.X0), opts.Format(-box.Y1), opts.Format(box.Width()), opts.Format(box.Height())); err != nil {
		return err
	}
	for _, b := range bs {
		r := b.Road.Road
		for _, o := range []float64{offsets[0], 0, offsets[1]} {
			if _, err := io.WriteString(w, "<path d=\""); err != nil {
				return err
			}
			if err := r.SVGArcPath(arcroad.Unit, o, 1e-3).WriteSVG(w, opts); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\"/>\n"); err != nil {
				return err
			}
		}
		if err := r.WriteSVGArcCircles(w, objectName(b.Name)+"_circles", opts); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</g>\n</svg>\n")
	return err
}

func write(cfg *config.Config, roads []geoexport.Road, out outputs, log *zap.Logger) error {
	bs, err := build(cfg, roads, log)
	if err != nil {
		return err
	}
	usable := make([]geoexport.Road, len(bs))
	for i, b := range bs {
		usable[i] = b.Road
	}
	written := func(path string) {
		log.Info("wrote", zap.String("file", path))
	}

	if out.xml != "" || out.poly != "" {
		if len(bs) != 1 {
			return fmt.Errorf("XML output holds a single road, have %d", len(bs))
		}
	}
	if out.xml != "" {
		if err := createFile(out.xml, func(w io.Writer) error { return roadxml.Write(w, bs[0].Road.Road) }); err != nil {
			return err
		}
		written(out.xml)
	}
	if out.poly != "" {
		if err := createFile(out.poly, func(w io.Writer) error { return roadxml.WritePoly(w, bs[0].Road.Road) }); err != nil {
			return err
		}
		written(out.poly)
	}
	if out.obj != "" {
		err := createFile(out.obj, func(w io.Writer) error {
			for _, b := range bs {
				if err := meshio.WriteMeshOBJ(w, objectName(b.Name), cfg.Mesh.Material, b.mesh); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		written(out.obj)
	}
	if out.smf != "" {
		verts, faces := merge(bs)
		if err := createFile(out.smf, func(w io.Writer) error { return meshio.WriteSMF(w, verts, faces) }); err != nil {
			return err
		}
		written(out.smf)
	}
	if out.svg != "" {
		if err := createFile(out.svg, func(w io.Writer) error { return writeSVG(w, cfg, bs) }); err != nil {
			return err
		}
		written(out.svg)
	}

	geo := geoexport.DefaultOptions(origin(cfg).Origin)
	geo.Resolution = cfg.Mesh.Resolution
	geo.Edges = cfg.Output.Edges
	geo.Ribbon = cfg.MeshOffsets()
	if out.geojson != "" {
		fc, err := geoexport.FeatureCollection(usable, geo)
		if err != nil {
			return err
		}
		fc.BBox = geojson.NewBBox(geoexport.Bound(fc))
		data, err := fc.MarshalJSON()
		if err != nil {
			return err
		}
		if err := createFile(out.geojson, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}); err != nil {
			return err
		}
		written(out.geojson)
	}
	if out.kml != "" {
		if err := createFile(out.kml, func(w io.Writer) error { return geoexport.WriteKML(w, cfg.Output.Name, usable, geo) }); err != nil {
			return err
		}
		written(out.kml)
	}
	if out.png != "" {
		opts := preview.DefaultPNGOptions()
		opts.Width = cfg.Output.PNGWidth
		opts.Height = cfg.Output.PNGHeight
		opts.Title = cfg.Output.Name
		var scene preview.Scene
		for _, b := range bs {
			scene.Meshes = append(scene.Meshes, b.mesh)
			line, err := b.Road.Road.ExtractLine(arcroad.Unit, 0, cfg.Mesh.Resolution, arcroad.Up(), 0)
			if err != nil {
				return err
			}
			scene.Lines = append(scene.Lines, line)
		}
		if err := createFile(out.png, func(w io.Writer) error { return preview.RenderPNG(w, scene, opts) }); err != nil {
			return err
		}
		written(out.png)
	}
	return nil
}
