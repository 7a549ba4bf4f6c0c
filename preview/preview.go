// Package preview rasterizes road meshes and lines into PNG images, seen
// from above.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"honnef.co/go/arcroad"
)

// ErrEmpty is returned when asked to render a scene without vertices.
var ErrEmpty = errors.New("preview: nothing to render")

// PNGOptions configures rendering.
type PNGOptions struct {
	Width   int
	Height  int
	Padding int
	// Supersample renders at this multiple of the target size before
	// downsampling.
	Supersample int
	// LineWidth is the width of lines in pixels of the final image.
	LineWidth  float64
	FontSize   float64
	Background color.RGBA
	Surface    color.RGBA
	Line       color.RGBA
	Text       color.RGBA
	Title      string
}

// DefaultPNGOptions returns sensible defaults for rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Width:       800,
		Height:      600,
		Padding:     20,
		Supersample: 4,
		LineWidth:   1.5,
		FontSize:    14,
		Background:  color.RGBA{255, 255, 255, 255},
		Surface:     color.RGBA{96, 96, 96, 255},  // #606060
		Line:        color.RGBA{255, 204, 0, 255}, // #ffcc00
		Text:        color.RGBA{51, 51, 51, 255},  // #333
	}
}

// Scene is what gets rendered: ribbon meshes, drawn first, and lines on top
// of them.
type Scene struct {
	Meshes []*arcroad.Mesh
	Lines  [][]arcroad.Vertex
}

func (s Scene) bounds() (arcroad.Rect, bool) {
	var box arcroad.Rect
	first := true
	add := func(v arcroad.Vertex) {
		p := arcroad.Pt(v.Position[0], v.Position[1])
		if first {
			box = arcroad.NewRectFromPoints(p, p)
			first = false
		} else {
			box = box.UnionPoint(p)
		}
	}
	for _, m := range s.Meshes {
		for _, v := range m.Vertices {
			add(v)
		}
	}
	for _, l := range s.Lines {
		for _, v := range l {
			add(v)
		}
	}
	return box, !first
}

// viewport maps world xy coordinates to image pixels, with y pointing down.
type viewport struct {
	box     arcroad.Rect
	scale   float64
	originX float64
	originY float64
}

func newViewport(box arcroad.Rect, width, height, padding int) viewport {
	w, h := float64(width-2*padding), float64(height-2*padding)
	scale := math.Inf(1)
	if box.Width() > 0 {
		scale = w / box.Width()
	}
	if box.Height() > 0 {
		scale = min(scale, h/box.Height())
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}
	return viewport{
		box:     box,
		scale:   scale,
		originX: (float64(width) - box.Width()*scale) / 2,
		originY: (float64(height) + box.Height()*scale) / 2,
	}
}

func (vp viewport) project(v arcroad.Vertex) (float32, float32) {
	x := vp.originX + (v.Position[0]-vp.box.X0)*vp.scale
	y := vp.originY - (v.Position[1]-vp.box.Y0)*vp.scale
	return float32(x), float32(y)
}

type renderContext struct {
	img  *image.RGBA
	vp   viewport
	opts PNGOptions
}

func (ctx *renderContext) fill(z *vector.Rasterizer, c color.RGBA) {
	z.Draw(ctx.img, ctx.img.Bounds(), image.NewUniform(c), image.Point{})
}

func (ctx *renderContext) drawMesh(m *arcroad.Mesh) error {
	b := ctx.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for _, f := range m.Faces {
		for j, idx := range f {
			if int(idx) >= len(m.Vertices) {
				return fmt.Errorf("preview: face references vertex %d of %d", idx, len(m.Vertices))
			}
			x, y := ctx.vp.project(m.Vertices[idx])
			if j == 0 {
				z.MoveTo(x, y)
			} else {
				z.LineTo(x, y)
			}
		}
		z.ClosePath()
	}
	ctx.fill(z, ctx.opts.Surface)
	return nil
}

// drawLine strokes a polyline by filling a quad around every chord.
func (ctx *renderContext) drawLine(line []arcroad.Vertex, width float64) {
	b := ctx.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	half := float32(width / 2)
	for j := 1; j < len(line); j++ {
		x0, y0 := ctx.vp.project(line[j-1])
		x1, y1 := ctx.vp.project(line[j])
		dx, dy := x1-x0, y1-y0
		d := float32(math.Hypot(float64(dx), float64(dy)))
		if d == 0 {
			continue
		}
		px, py := -dy/d*half, dx/d*half
		z.MoveTo(x0+px, y0+py)
		z.LineTo(x1+px, y1+py)
		z.LineTo(x1-px, y1-py)
		z.LineTo(x0-px, y0-py)
		z.ClosePath()
	}
	ctx.fill(z, ctx.opts.Line)
}

func (ctx *renderContext) drawTitle(size float64) error {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return err
	}
	defer face.Close()
	pad := ctx.opts.Padding * ctx.opts.Supersample
	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(ctx.opts.Text),
		Face: face,
		Dot:  fixed.P(pad, pad+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(ctx.opts.Title)
	return nil
}

// Render draws s into a new image of the configured size.
func Render(s Scene, opts PNGOptions) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("preview: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	box, ok := s.bounds()
	if !ok {
		return nil, ErrEmpty
	}

	ss := opts.Supersample
	large := image.NewRGBA(image.Rect(0, 0, opts.Width*ss, opts.Height*ss))
	draw.Draw(large, large.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	ctx := &renderContext{
		img:  large,
		vp:   newViewport(box, opts.Width*ss, opts.Height*ss, opts.Padding*ss),
		opts: opts,
	}
	for _, m := range s.Meshes {
		if err := ctx.drawMesh(m); err != nil {
			return nil, err
		}
	}
	for _, l := range s.Lines {
		ctx.drawLine(l, opts.LineWidth*float64(ss))
	}
	if opts.Title != "" {
		if err := ctx.drawTitle(opts.FontSize * float64(ss)); err != nil {
			return nil, err
		}
	}

	if ss == 1 {
		return large, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), large, large.Bounds(), draw.Over, nil)
	return out, nil
}

// RenderPNG renders s and encodes it to w as PNG.
func RenderPNG(w io.Writer, s Scene, opts PNGOptions) error {
	img, err := Render(s, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
