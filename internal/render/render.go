/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"tripcanvas/internal/element"
	applog "tripcanvas/internal/log"
	"tripcanvas/internal/textlayout"
	"tripcanvas/internal/vector"
)

// Placeholder and fallback colours.
var (
	DefaultShapeFill  = vector.Color{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	PlaceholderFill   = vector.Color{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
	PlaceholderStroke = vector.Color{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	ErrorStroke       = vector.Color{R: 0xff, A: 0xff}
)

// Dash patterns of line styles.
var (
	DashDashed = []float64{10, 5}
	DashDotted = []float64{2, 4}
)

// unknownIconOpacity fades the stand-in of a missing icon.
const unknownIconOpacity = 0.3

// Options controls one render pass.
type Options struct {
	// Editable marks unlocked primitives selectable.
	Editable bool
	// CanvasWidth and CanvasHeight are the logical page size used by
	// alignment overrides; zero falls back to the page size.
	CanvasWidth  float64
	CanvasHeight float64
}

// Renderer maps pages onto surfaces. One renderer serves one surface at a
// time; after Dispose every pending or later Render leaves surfaces alone.
type Renderer struct {
	Loader Loader
	Layout textlayout.Layouter

	disposed atomic.Bool
	mu       sync.Mutex
	last     Surface
	log      *slog.Logger
}

// New returns a renderer loading images with loader. A nil loader reads
// files relative to the working directory.
func New(loader Loader) *Renderer {
	if loader == nil {
		loader = FileLoader{}
	}
	return &Renderer{
		Loader: loader,
		Layout: textlayout.NewWordWrap(textlayout.DefaultProvider()),
		log:    applog.WithComponent("render"),
	}
}

// Dispose stops the renderer. A Render still waiting on image loads
// returns without touching its surface, and the last surface is released
// when it supports it.
func (r *Renderer) Dispose() {
	if r.disposed.Swap(true) {
		return
	}
	r.mu.Lock()
	s := r.last
	r.last = nil
	r.mu.Unlock()
	if rel, ok := s.(interface{ Release() }); ok {
		rel.Release()
	}
}

// Disposed reports whether Dispose was called.
func (r *Renderer) Disposed() bool { return r.disposed.Load() }

// imageJob is an image element whose primitive is produced asynchronously.
type imageJob struct {
	slot int
	el   *element.Image
	ctx  drawCtx
}

// drawCtx carries inherited state while walking groups.
type drawCtx struct {
	frames     []Frame
	offset     vector.Pt
	opacity    float64
	visible    bool
	selectable bool
}

type pass struct {
	r     *Renderer
	opts  Options
	page  *element.Page
	slots [][]Primitive
	jobs  []imageJob
}

// Render replaces the content of s with page. Image loads run concurrently;
// nothing reaches the surface until every load has settled. A failed load
// becomes a placeholder and is logged, it never fails the render. The only
// errors are context cancellation and rendering after Dispose.
func (r *Renderer) Render(ctx context.Context, s Surface, page element.Page, opts Options) error {
	if r.Disposed() {
		return ErrDisposed
	}
	if opts.CanvasWidth <= 0 {
		opts.CanvasWidth = page.Width
	}
	if opts.CanvasHeight <= 0 {
		opts.CanvasHeight = page.Height
	}
	if r.log == nil {
		r.log = applog.WithComponent("render")
	}
	if r.Layout == nil {
		r.Layout = textlayout.NewWordWrap(textlayout.DefaultProvider())
	}
	ctx = applog.WithPage(ctx, page.ID)

	p := &pass{r: r, opts: opts, page: &page}
	root := drawCtx{opacity: 1, visible: true, selectable: opts.Editable}
	for _, e := range element.SortByZ(page.Elements) {
		p.element(e, root, true)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, j := range p.jobs {
		g.Go(func() error {
			prims, err := p.loadImage(gctx, j)
			if err != nil {
				return err
			}
			p.slots[j.slot] = prims
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if r.Disposed() {
		return nil
	}

	r.mu.Lock()
	r.last = s
	r.mu.Unlock()
	bg := Background{Color: vector.MustColor(page.BackgroundColor, vector.White), Width: opts.CanvasWidth, Height: opts.CanvasHeight}
	s.Clear(bg)
	for _, prims := range p.slots {
		if len(prims) > 0 {
			s.Add(prims...)
		}
	}
	s.Flush()
	return nil
}

// ErrDisposed is returned by Render after Dispose.
var ErrDisposed = errors.New("renderer disposed")

func (p *pass) emit(prims ...Primitive) {
	p.slots = append(p.slots, prims)
}

func (p *pass) element(e element.Element, dc drawCtx, topLevel bool) {
	b := e.Common()
	switch el := e.(type) {
	case *element.Shape:
		p.emit(p.shape(el, dc, topLevel))
	case *element.Text:
		p.emit(p.text(el, dc))
	case *element.Image:
		p.jobs = append(p.jobs, imageJob{slot: len(p.slots), el: el, ctx: dc})
		p.emit()
	case *element.Icon:
		p.emit(p.icon(el, dc))
	case *element.Line:
		p.emit(p.line(el, dc)...)
	case *element.Sticker:
		p.emit(p.sticker(el, dc))
	case *element.Group:
		box := vector.Box{Rect: b.Rect().Offset(dc.offset.X, dc.offset.Y), Rotation: b.Rotation, FlipX: b.FlipX, FlipY: b.FlipY}
		child := drawCtx{
			frames:     append(append([]Frame(nil), dc.frames...), Frame{ID: b.ID, Box: box}),
			offset:     box.Rect.Center(), // children are stored relative to the group centre
			opacity:    dc.opacity * b.Opacity,
			visible:    dc.visible && b.Visible,
			selectable: dc.selectable && !b.Locked,
		}
		for _, c := range el.Children {
			p.element(c, child, false)
		}
	default:
		p.r.log.Warn("unknown element type", slog.String("element", b.ID), slog.String("type", string(b.Type)))
	}
}

// common fills the properties shared by every primitive of an element.
func (p *pass) common(b *element.Base, dc drawCtx, kind Kind) Primitive {
	r := b.Rect().Offset(dc.offset.X, dc.offset.Y)
	return Primitive{
		ElementID:  b.ID,
		Type:       b.Type,
		Kind:       kind,
		Box:        vector.Box{Rect: r, Rotation: b.Rotation, FlipX: b.FlipX, FlipY: b.FlipY},
		Frames:     dc.frames,
		Opacity:    dc.opacity * b.Opacity,
		Visible:    dc.visible && b.Visible,
		Selectable: dc.selectable && !b.Locked,
	}
}

func (p *pass) shape(el *element.Shape, dc drawCtx, topLevel bool) Primitive {
	b := el.Base
	if topLevel && el.Align != nil {
		switch el.Align.Horizontal {
		case "left":
			b.X = 0
		case "center":
			b.X = (p.opts.CanvasWidth - b.Width) / 2
		case "right":
			b.X = p.opts.CanvasWidth - b.Width
		}
		switch el.Align.Vertical {
		case "top":
			b.Y = 0
		case "center":
			b.Y = (p.opts.CanvasHeight - b.Height) / 2
		case "bottom":
			b.Y = p.opts.CanvasHeight - b.Height
		}
	}
	prim := p.common(&b, dc, KindRect)
	r := prim.Box.Rect

	switch el.Variant {
	case element.Rectangle, "":
		if el.BorderRadius.Any() {
			c := el.BorderRadius
			prim.Kind = KindPath
			prim.Path = vector.RoundedRect(r, c.TopLeft, c.TopRight, c.BottomRight, c.BottomLeft)
		} else if el.CornerRadius > 0 {
			cr := el.CornerRadius
			prim.Path = vector.RoundedRect(r, cr, cr, cr, cr)
		} else {
			prim.Path = rectPath(r)
		}
	case element.Circle:
		c := r.Center()
		rad := math.Min(r.W, r.H) / 2
		prim.Kind = KindEllipse
		prim.Path = vector.Ellipse(c.X, c.Y, rad, rad)
	case element.Ellipse:
		c := r.Center()
		prim.Kind = KindEllipse
		prim.Path = vector.Ellipse(c.X, c.Y, r.W/2, r.H/2)
	default:
		p.r.log.Warn("unknown shape variant", slog.String("element", el.ID), slog.String("variant", string(el.Variant)))
		prim.Path = rectPath(r)
		prim.Fill = vector.Solid(ErrorStroke)
		return prim
	}

	if el.Gradient != nil && len(el.Gradient.ColorStops) > 0 {
		prim.Fill = vector.Paint{Gradient: gradient(el.Gradient, r)}
	} else {
		prim.Fill = vector.Solid(vector.MustColor(el.Fill, DefaultShapeFill))
	}
	if el.Stroke != "" && el.StrokeWidth > 0 {
		prim.Stroke = vector.Stroke{
			Color: vector.MustColor(el.Stroke, vector.Black),
			Width: el.StrokeWidth,
			Dash:  append([]float64(nil), el.StrokeDashArray...),
		}
	}
	return prim
}

func gradient(g *element.Gradient, r vector.Rect) *vector.Gradient {
	out := &vector.Gradient{Kind: vector.LinearGradient, Start: r.Min()}
	switch {
	case g.Type == "radial":
		out.Kind = vector.RadialGradient
		out.Start = r.Center()
		out.Radius = math.Max(r.W, r.H) / 2
	case g.Direction == "vertical":
		out.End = vector.Pt{X: r.X, Y: r.Bottom()}
	default:
		out.End = vector.Pt{X: r.Right(), Y: r.Y}
	}
	for _, s := range g.ColorStops {
		out.Stops = append(out.Stops, vector.ColorStop{Offset: s.Offset, Color: vector.MustColor(s.Color, vector.Black)})
	}
	return out
}

// FontSpecOf maps a text style onto a layout font request.
func FontSpecOf(st element.TextStyle) textlayout.FontSpec {
	w := 400
	if n, err := strconv.Atoi(string(st.FontWeight)); err == nil {
		w = n
	} else if st.FontWeight.Bold() {
		w = 700
	}
	return textlayout.FontSpec{
		Family: st.FontFamily,
		Size:   st.FontSize,
		Weight: w,
		Italic: strings.EqualFold(st.FontStyle, "italic") || strings.EqualFold(st.FontStyle, "oblique"),
	}
}

func (p *pass) text(el *element.Text, dc drawCtx) Primitive {
	prim := p.common(&el.Base, dc, KindText)
	st := el.Style
	spec := FontSpecOf(st)
	lo := textlayout.Options{
		MaxWidth:    el.Width,
		LineHeight:  st.LineHeight,
		CharSpacing: st.LetterSpacing * 10,
		Align:       st.TextAlign,
	}
	prim.Text = &TextRun{
		Content:     el.Content,
		Font:        spec,
		Color:       vector.MustColor(st.Color, vector.Black),
		Align:       st.TextAlign,
		LineHeight:  st.LineHeight,
		CharSpacing: lo.CharSpacing,
		Decoration:  st.TextDecoration,
		Layout:      p.r.Layout.Layout(el.Content, spec, lo),
	}
	return prim
}

func (p *pass) icon(el *element.Icon, dc drawCtx) Primitive {
	prim := p.common(&el.Base, dc, KindPath)
	r := prim.Box.Rect
	size := el.GlyphSize()
	color := vector.MustColor(el.Color, vector.Black)
	glyph, ok := IconPath(el.Icon)
	if !ok {
		p.r.log.Warn("icon not found, using placeholder", slog.String("element", el.ID), slog.String("icon", el.Icon))
		prim.Kind = KindPlaceholder
		prim.Path = rectPath(vector.R(r.X, r.Y, size, size))
		prim.Fill = vector.Solid(color)
		prim.Opacity *= unknownIconOpacity
		return prim
	}
	s := size / IconViewBox
	prim.Path = glyph.Transform(vector.Translate(r.X, r.Y).Mul(vector.Scale(s, s)))
	prim.FillRule = vector.EvenOdd
	prim.Fill = vector.Solid(color)
	return prim
}

func (p *pass) line(el *element.Line, dc drawCtx) []Primitive {
	body := p.common(&el.Base, dc, KindLine)
	o := body.Box.Rect.Min()
	a := vector.Pt{X: o.X + el.X1, Y: o.Y + el.Y1}
	z := vector.Pt{X: o.X + el.X2, Y: o.Y + el.Y2}
	color := vector.MustColor(el.Stroke, vector.Black)
	width := el.StrokeWidth
	if width <= 0 {
		width = 1
	}
	body.Path.MoveTo(a.X, a.Y)
	body.Path.LineTo(z.X, z.Y)
	body.Stroke = vector.Stroke{Color: color, Width: width}
	switch el.LineStyle {
	case "dashed":
		body.Stroke.Dash = append([]float64(nil), DashDashed...)
	case "dotted":
		body.Stroke.Dash = append([]float64(nil), DashDotted...)
		body.Stroke.Cap = vector.CapRound
	}
	out := []Primitive{body}

	angle := math.Atan2(z.Y-a.Y, z.X-a.X)
	addCap := func(kind string, at vector.Pt, dir float64, role Role) {
		path, ok := terminator(kind, at, dir, width*3)
		if !ok {
			return
		}
		t := body
		t.Kind = KindPath
		t.Role = role
		t.Path = path
		t.Stroke = vector.Stroke{}
		t.Fill = vector.Solid(color)
		t.Selectable = false
		out = append(out, t)
	}
	addCap(el.StartEndpoint, a, angle+math.Pi, RoleStartCap)
	addCap(el.EndEndpoint, z, angle, RoleEndCap)
	return out
}

// terminator builds a line end decoration of edge size centred on at and
// pointing along dir (radians).
func terminator(kind string, at vector.Pt, dir, size float64) (vector.Path, bool) {
	u := vector.Pt{X: math.Cos(dir), Y: math.Sin(dir)}
	n := vector.Pt{X: -u.Y, Y: u.X}
	h := size / 2
	switch kind {
	case "arrow":
		return vector.Polygon(
			vector.Pt{X: at.X + u.X*h, Y: at.Y + u.Y*h},
			vector.Pt{X: at.X - u.X*h + n.X*h, Y: at.Y - u.Y*h + n.Y*h},
			vector.Pt{X: at.X - u.X*h - n.X*h, Y: at.Y - u.Y*h - n.Y*h},
		), true
	case "circle":
		return vector.Ellipse(at.X, at.Y, h, h), true
	case "diamond":
		d := size / math.Sqrt2
		return vector.Polygon(
			vector.Pt{X: at.X, Y: at.Y - d},
			vector.Pt{X: at.X + d, Y: at.Y},
			vector.Pt{X: at.X, Y: at.Y + d},
			vector.Pt{X: at.X - d, Y: at.Y},
		), true
	}
	return vector.Path{}, false
}

func (p *pass) sticker(el *element.Sticker, dc drawCtx) Primitive {
	prim := p.common(&el.Base, dc, KindPath)
	r := prim.Box.Rect
	def, path, ok := Sticker(el.StickerID)
	if !ok {
		p.r.log.Warn("sticker not found, using placeholder", slog.String("element", el.ID), slog.String("sticker", el.StickerID))
		prim.Kind = KindPlaceholder
		prim.Path = rectPath(r)
		prim.Fill = vector.Solid(PlaceholderFill)
		prim.Stroke = vector.Stroke{Color: PlaceholderStroke, Width: 1, Dash: []float64{5, 5}}
		return prim
	}
	s := math.Min(r.W/def.ViewBox.W, r.H/def.ViewBox.H)
	color := vector.MustColor(StickerColor(def, el.PrimaryColor, el.SecondaryColor), vector.MustColor(StickerPrimaryKey, vector.Black))
	prim.Path = path.Transform(vector.Translate(r.X, r.Y).Mul(vector.Scale(s, s)))
	prim.FillRule = vector.EvenOdd
	prim.Fill = vector.Solid(color)
	// open strokes such as dividers would vanish with a fill alone
	prim.Stroke = vector.Stroke{Color: color, Width: math.Max(1, s), Cap: vector.CapRound}
	return prim
}

// loadImage resolves one image job. Only context errors are returned.
func (p *pass) loadImage(ctx context.Context, j imageJob) ([]Primitive, error) {
	el := j.el
	prim := p.common(&el.Base, j.ctx, KindImage)
	r := prim.Box.Rect
	clip := rectPath(r)
	if el.BorderRadius.Any() {
		c := el.BorderRadius
		clip = vector.RoundedRect(r, c.TopLeft, c.TopRight, c.BottomRight, c.BottomLeft)
	}
	placeholder := func(stroke vector.Stroke) []Primitive {
		prim.Kind = KindPlaceholder
		prim.Path = clip
		prim.Fill = vector.Solid(PlaceholderFill)
		prim.Stroke = stroke
		return []Primitive{prim}
	}

	if strings.TrimSpace(el.Src) == "" {
		return placeholder(vector.Stroke{Color: PlaceholderStroke, Width: 1, Dash: []float64{6, 4}}), nil
	}
	bm, err := p.r.Loader.Load(ctx, el.Src)
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		p.r.log.WarnContext(applog.WithElement(ctx, el.ID), "image load failed, using placeholder",
			slog.String("src", el.Src), slog.Any("err", err))
		return placeholder(vector.Stroke{Color: ErrorStroke, Width: 2}), nil
	}

	prim.Path = clip
	prim.Image = &ImageRun{Src: el.Src, Bitmap: bm, Dest: FitImage(el, r, bm.Bounds().Dx(), bm.Bounds().Dy()), Clip: clip}
	return []Primitive{prim}, nil
}

// FitImage places a bitmap of iw x ih pixels into target per the image's
// objectFit and position override.
func FitImage(el *element.Image, target vector.Rect, iw, ih int) vector.Rect {
	w, h := float64(max(iw, 1)), float64(max(ih, 1))
	sx, sy := target.W/w, target.H/h
	switch el.ObjectFit {
	case "contain":
		s := math.Min(sx, sy)
		sx, sy = s, s
	case "fill":
	default: // cover
		s := math.Max(sx, sy)
		sx, sy = s, s
	}
	px, py := 50.0, 50.0
	if pos := el.Position; pos != nil {
		if pos.Scale > 0 {
			sx *= pos.Scale
			sy *= pos.Scale
		}
		px, py = pos.X, pos.Y
	}
	dw, dh := w*sx, h*sy
	return vector.R(target.X+(target.W-dw)*px/100, target.Y+(target.H-dh)*py/100, dw, dh)
}
