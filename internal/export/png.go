/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"tripcanvas/internal/element"
	"tripcanvas/internal/generator"
	"tripcanvas/internal/render"
	"tripcanvas/internal/textlayout"
	"tripcanvas/internal/vector"
)

// PNGOptions controls raster export.
//   - Scale is pixels per design unit, 1 when zero.
//   - FontFile names a TrueType font used for every text run; empty draws
//     with the faces the layout was measured with.
//   - IncludeGuides strokes the bleed box.
type PNGOptions struct {
	Scale         float64
	FontFile      string
	IncludeGuides bool
	Pages         []int
	Loader        render.Loader
}

func (o PNGOptions) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// PNG encodes one rendered page.
func PNG(list *render.DisplayList, w io.Writer, opt PNGOptions) error {
	img, err := Rasterize(list, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Rasterize draws a display list into an RGBA image.
func Rasterize(list *render.DisplayList, opt PNGOptions) (image.Image, error) {
	bg := list.Background()
	if bg.Width <= 0 || bg.Height <= 0 {
		return nil, fmt.Errorf("rasterize: empty canvas %gx%g", bg.Width, bg.Height)
	}
	rz, err := newRasterizer(opt)
	if err != nil {
		return nil, err
	}
	s := rz.scale
	dc := gg.NewContext(int(math.Ceil(bg.Width*s)), int(math.Ceil(bg.Height*s)))
	dc.SetColor(bg.Color)
	dc.Clear()
	for _, p := range list.Primitives() {
		if !visible(&p) {
			continue
		}
		switch {
		case p.Kind == render.KindText && p.Text != nil:
			rz.text(dc, &p)
		case p.Kind == render.KindImage && p.Image != nil && p.Image.Bitmap != nil:
			rz.image(dc, &p)
		default:
			rz.path(dc, &p)
		}
	}
	if opt.IncludeGuides {
		g := bleedGuide(bg.Width, bg.Height, generator.Bleed)
		dc.SetColor(GuideColor)
		dc.SetLineWidth(1)
		dc.SetDash()
		dc.DrawRectangle(g.X*s, g.Y*s, g.W*s, g.H*s)
		dc.Stroke()
	}
	return dc.Image(), nil
}

// ExportPNGPages renders and writes every selected page of doc as
// page-<n>.png under outDir. It returns the written paths.
func ExportPNGPages(ctx context.Context, doc element.Document, outDir string, opt PNGOptions) ([]string, error) {
	lists, err := RenderPages(ctx, doc, opt.Pages, opt.Loader)
	if err != nil {
		return nil, err
	}
	return writePNGPages(lists, outDir, opt)
}

func writePNGPages(lists []*render.DisplayList, outDir string, opt PNGOptions) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var out []string
	for i, dl := range lists {
		name := filepath.Join(outDir, fmt.Sprintf("page-%d.png", i+1))
		f, err := os.Create(name)
		if err != nil {
			return out, fmt.Errorf("create png: %w", err)
		}
		if err := PNG(dl, f, opt); err != nil {
			_ = f.Close()
			return out, err
		}
		if err := f.Close(); err != nil {
			return out, fmt.Errorf("close png: %w", err)
		}
		out = append(out, name)
	}
	return out, nil
}

type faceKey struct {
	spec  textlayout.FontSpec
	scale float64
}

type rasterizer struct {
	scale    float64
	ttf      *truetype.Font
	provider textlayout.Provider
	faces    map[faceKey]font.Face
}

func newRasterizer(opt PNGOptions) (*rasterizer, error) {
	rz := &rasterizer{scale: opt.scale(), faces: make(map[faceKey]font.Face)}
	if opt.FontFile != "" {
		data, err := os.ReadFile(opt.FontFile)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", opt.FontFile, err)
		}
		rz.ttf = f
	} else {
		rz.provider = textlayout.DefaultProvider()
	}
	return rz, nil
}

// face returns spec at the output pixel size.
func (rz *rasterizer) face(spec textlayout.FontSpec) font.Face {
	k := faceKey{spec: spec, scale: rz.scale}
	if f, ok := rz.faces[k]; ok {
		return f
	}
	size := spec.Size * rz.scale
	var f font.Face
	if rz.ttf != nil {
		f = truetype.NewFace(rz.ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	} else {
		spec.Size = size
		f, _ = rz.provider.Resolve(spec)
	}
	rz.faces[k] = f
	return f
}

// path fills and strokes a primitive's outline, transformed into device
// space up front.
func (rz *rasterizer) path(dc *gg.Context, p *render.Primitive) {
	m := vector.Scale(rz.scale, rz.scale).Mul(p.Transform())
	outline := p.Path
	if outline.Empty() {
		outline = vector.RoundedRect(p.Box.Rect, 0, 0, 0, 0)
	}
	tracePath(dc, outline.Transform(m))
	if p.Fill.Visible() && p.Kind != render.KindLine {
		if p.FillRule == vector.EvenOdd {
			dc.SetFillRuleEvenOdd()
		} else {
			dc.SetFillRuleWinding()
		}
		if g := p.Fill.Gradient; g != nil {
			dc.SetFillStyle(ggGradient(g, m, p.Opacity, rz.scale))
		} else {
			dc.SetColor(p.Fill.Color.WithAlpha(p.Opacity))
		}
		dc.FillPreserve()
	}
	if st := p.Stroke; st.Enabled() {
		dc.SetColor(st.Color.WithAlpha(p.Opacity))
		dc.SetLineWidth(st.Width * rz.scale)
		dash := make([]float64, len(st.Dash))
		for i, d := range st.Dash {
			dash[i] = d * rz.scale
		}
		dc.SetDash(dash...)
		switch st.Cap {
		case vector.CapRound:
			dc.SetLineCapRound()
		case vector.CapSquare:
			dc.SetLineCapSquare()
		default:
			dc.SetLineCapButt()
		}
		dc.StrokePreserve()
	}
	dc.ClearPath()
}

func tracePath(dc *gg.Context, p vector.Path) {
	dc.ClearPath()
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			dc.MoveTo(d[0], d[1])
		case vector.LineTo:
			dc.LineTo(d[0], d[1])
		case vector.QuadTo:
			dc.QuadraticTo(d[0], d[1], d[2], d[3])
		case vector.CubicTo:
			dc.CubicTo(d[0], d[1], d[2], d[3], d[4], d[5])
		case vector.Close:
			dc.ClosePath()
		}
	}
}

func ggGradient(g *vector.Gradient, m vector.Affine2D, opacity, scale float64) gg.Gradient {
	var out gg.Gradient
	a := m.Apply(g.Start)
	if g.Kind == vector.RadialGradient {
		out = gg.NewRadialGradient(a.X, a.Y, 0, a.X, a.Y, g.Radius*scale)
	} else {
		b := m.Apply(g.End)
		out = gg.NewLinearGradient(a.X, a.Y, b.X, b.Y)
	}
	for _, s := range g.Stops {
		out.AddColorStop(s.Offset, s.Color.WithAlpha(opacity))
	}
	return out
}

// enter pushes the primitive's frames and box onto the gg matrix in design
// units. gg composes like cairo: the last call applies to points first.
func (rz *rasterizer) enter(dc *gg.Context, p *render.Primitive) {
	dc.Push()
	dc.Scale(rz.scale, rz.scale)
	for _, f := range p.Frames {
		applyBox(dc, f.Box)
	}
	applyBox(dc, p.Box)
}

func applyBox(dc *gg.Context, b vector.Box) {
	if b.Rotation == 0 && !b.FlipX && !b.FlipY {
		return
	}
	c := b.Rect.Center()
	dc.Translate(c.X, c.Y)
	if b.Rotation != 0 {
		dc.Rotate(gg.Radians(b.Rotation))
	}
	sx, sy := 1.0, 1.0
	if b.FlipX {
		sx = -1
	}
	if b.FlipY {
		sy = -1
	}
	dc.Scale(sx, sy)
	dc.Translate(-c.X, -c.Y)
}

// text draws each laid out line at its baseline. Glyphs are rasterized at
// the output size and placed in device units so scaled exports stay sharp.
func (rz *rasterizer) text(dc *gg.Context, p *render.Primitive) {
	run := p.Text
	s := rz.scale
	rz.enter(dc, p)
	defer dc.Pop()
	dc.Scale(1/s, 1/s)
	dc.SetFontFace(rz.face(run.Font))
	col := run.Color.WithAlpha(p.Opacity)
	dc.SetColor(col)
	box := p.Box.Rect
	spacing := run.CharSpacing / 1000 * run.Font.Size
	for i, ln := range run.Layout.Lines {
		x := box.X + ln.X
		y := box.Y + run.Layout.Baseline(i)
		if spacing == 0 {
			dc.DrawString(ln.Text, x*s, y*s)
		} else {
			cx := x * s
			for _, r := range ln.Text {
				ch := string(r)
				dc.DrawString(ch, cx, y*s)
				w, _ := dc.MeasureString(ch)
				cx += w + spacing*s
			}
		}
		var dy float64
		switch run.Decoration {
		case "underline":
			dy = run.Font.Size * 0.12
		case "line-through":
			dy = -run.Layout.Metrics.Ascent * 0.35
		default:
			continue
		}
		dc.SetLineWidth(math.Max(1, run.Font.Size/16*s))
		dc.SetDash()
		dc.DrawLine(x*s, (y+dy)*s, (x+ln.Width)*s, (y+dy)*s)
		dc.Stroke()
	}
}

// image draws the bitmap into its destination rect, clipped to the frame.
func (rz *rasterizer) image(dc *gg.Context, p *render.Primitive) {
	run := p.Image
	bm := run.Bitmap
	if p.Opacity < 1 {
		bm = fade(bm, p.Opacity)
	}
	b := bm.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	rz.enter(dc, p)
	defer dc.Pop()
	if !run.Clip.Empty() {
		tracePath(dc, run.Clip)
		dc.Clip()
		defer dc.ResetClip()
	}
	dc.Translate(run.Dest.X, run.Dest.Y)
	dc.Scale(run.Dest.W/float64(b.Dx()), run.Dest.H/float64(b.Dy()))
	dc.DrawImage(bm, -b.Min.X, -b.Min.Y)
}

// fade returns a copy of img with its alpha scaled by f.
func fade(img image.Image, f float64) image.Image {
	out := image.NewNRGBA(img.Bounds())
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(f * 255))})
	xdraw.DrawMask(out, out.Bounds(), img, img.Bounds().Min, mask, image.Point{}, xdraw.Src)
	return out
}
