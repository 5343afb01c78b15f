/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"tripcanvas/internal/element"
	"tripcanvas/internal/generator"
	"tripcanvas/internal/render"
	"tripcanvas/internal/vector"
	"tripcanvas/internal/version"
)

// PointsPerUnit converts design units (CSS pixels at 96 dpi) to PDF points.
const PointsPerUnit = 0.75

const pdfFontFamily = "tripcanvas"

// PDFOptions controls PDF export.
//
// Geometry is written as vector paths. Text uses FontFile (a TrueType
// font embedded as UTF-8) when set and the core Helvetica face otherwise;
// Helvetica only covers Latin-1, so documents with CJK text need a font
// file. Letter spacing is not reproduced.
type PDFOptions struct {
	Title         string
	FontFile      string
	IncludeGuides bool
	Pages         []int
	Loader        render.Loader
}

// PDF renders the selected pages of doc and writes them to path as one
// document, one PDF page per page.
func PDF(ctx context.Context, doc element.Document, path string, opt PDFOptions) error {
	lists, err := RenderPages(ctx, doc, opt.Pages, opt.Loader)
	if err != nil {
		return err
	}
	if opt.Title == "" {
		opt.Title = doc.Name
	}
	return writePDFFile(lists, path, opt)
}

// WritePDF writes already rendered pages to w.
func WritePDF(lists []*render.DisplayList, w io.Writer, opt PDFOptions) error {
	if len(lists) == 0 {
		return ErrNoPages
	}
	first := lists[0].Background()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: first.Width * PointsPerUnit, Ht: first.Height * PointsPerUnit},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(opt.Title, true)
	pdf.SetCreator("tripcanvas "+version.String(), true)
	pdf.SetCreationDate(time.Now())

	pw := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	if opt.FontFile != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", opt.FontFile)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("load pdf font %s: %w", opt.FontFile, err)
		}
		pw.utf8 = true
	}
	for _, dl := range lists {
		bg := dl.Background()
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: bg.Width * PointsPerUnit, Ht: bg.Height * PointsPerUnit})
		pw.background(bg)
		for _, p := range dl.Primitives() {
			if !visible(&p) {
				continue
			}
			switch {
			case p.Kind == render.KindText && p.Text != nil:
				pw.text(&p)
			case p.Kind == render.KindImage && p.Image != nil && p.Image.Bitmap != nil:
				pw.image(&p)
			default:
				pw.path(&p)
			}
		}
		if opt.IncludeGuides {
			g := bleedGuide(bg.Width, bg.Height, generator.Bleed)
			pw.drawColor(GuideColor)
			pdf.SetAlpha(1, "Normal")
			pdf.SetDashPattern(nil, 0)
			pdf.SetLineWidth(0.2)
			pdf.Rect(g.X*PointsPerUnit, g.Y*PointsPerUnit, g.W*PointsPerUnit, g.H*PointsPerUnit, "D")
		}
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("build pdf: %w", err)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type pdfWriter struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	utf8   bool
	images int
}

func (w *pdfWriter) drawColor(c vector.Color) { w.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B)) }
func (w *pdfWriter) fillColor(c vector.Color) { w.pdf.SetFillColor(int(c.R), int(c.G), int(c.B)) }

func (w *pdfWriter) background(bg render.Background) {
	w.fillColor(bg.Color)
	w.pdf.SetAlpha(float64(bg.Color.A)/255, "Normal")
	w.pdf.Rect(0, 0, bg.Width*PointsPerUnit, bg.Height*PointsPerUnit, "F")
}

// path writes the outline transformed into point space, so no PDF matrix
// is needed for geometry.
func (w *pdfWriter) path(p *render.Primitive) {
	m := vector.Scale(PointsPerUnit, PointsPerUnit).Mul(p.Transform())
	outline := p.Path
	if outline.Empty() {
		outline = vector.RoundedRect(p.Box.Rect, 0, 0, 0, 0)
	}
	outline = outline.Transform(m)
	pdf := w.pdf

	fill := p.Fill.Visible() && p.Kind != render.KindLine
	if g := p.Fill.Gradient; fill && g != nil {
		w.gradient(outline, g, m, p.Opacity)
		fill = false
	}
	st := p.Stroke
	stroke := st.Enabled()
	if !fill && !stroke {
		return
	}
	style := ""
	if fill {
		w.fillColor(p.Fill.Color)
		style = "F"
	}
	alpha := p.Opacity
	if fill {
		alpha *= float64(p.Fill.Color.A) / 255
	} else {
		alpha *= float64(st.Color.A) / 255
	}
	pdf.SetAlpha(alpha, "Normal")
	if stroke {
		w.drawColor(st.Color)
		pdf.SetLineWidth(st.Width * PointsPerUnit)
		dash := make([]float64, len(st.Dash))
		for i, d := range st.Dash {
			dash[i] = d * PointsPerUnit
		}
		pdf.SetDashPattern(dash, 0)
		switch st.Cap {
		case vector.CapRound:
			pdf.SetLineCapStyle("round")
		case vector.CapSquare:
			pdf.SetLineCapStyle("square")
		default:
			pdf.SetLineCapStyle("butt")
		}
		style += "D"
	}
	if fill && p.FillRule == vector.EvenOdd {
		style += "*"
	}
	tracePDF(pdf, outline)
	pdf.DrawPath(style)
}

func tracePDF(pdf *gofpdf.Fpdf, p vector.Path) {
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			pdf.MoveTo(d[0], d[1])
		case vector.LineTo:
			pdf.LineTo(d[0], d[1])
		case vector.QuadTo:
			pdf.CurveTo(d[0], d[1], d[2], d[3])
		case vector.CubicTo:
			pdf.CurveBezierCubicTo(d[0], d[1], d[2], d[3], d[4], d[5])
		case vector.Close:
			pdf.ClosePath()
		}
	}
}

// gradient paints a two colour gradient clipped to outline. gofpdf blends
// only between two colours, so the first and last stops are used.
func (w *pdfWriter) gradient(outline vector.Path, g *vector.Gradient, m vector.Affine2D, opacity float64) {
	if len(g.Stops) == 0 {
		return
	}
	pdf := w.pdf
	b := outline.Bounds()
	if b.W <= 0 || b.H <= 0 {
		return
	}
	c1, c2 := g.Stops[0].Color, g.Stops[len(g.Stops)-1].Color
	// gradient space is the unit square of the clip box with y up
	rel := func(p vector.Pt) (float64, float64) {
		q := m.Apply(p)
		return (q.X - b.X) / b.W, 1 - (q.Y-b.Y)/b.H
	}
	pdf.SetAlpha(opacity, "Normal")
	pdf.ClipPolygon(flatten(outline), false)
	x1, y1 := rel(g.Start)
	if g.Kind == vector.RadialGradient {
		r := g.Radius * PointsPerUnit / max(b.W, b.H)
		pdf.RadialGradient(b.X, b.Y, b.W, b.H, int(c1.R), int(c1.G), int(c1.B), int(c2.R), int(c2.G), int(c2.B),
			x1, y1, x1, y1, r)
	} else {
		x2, y2 := rel(g.End)
		pdf.LinearGradient(b.X, b.Y, b.W, b.H, int(c1.R), int(c1.G), int(c1.B), int(c2.R), int(c2.G), int(c2.B),
			x1, y1, x2, y2)
	}
	pdf.ClipEnd()
}

// flatten approximates curves with line segments for clipping.
func flatten(p vector.Path) []gofpdf.PointType {
	const steps = 8
	var out []gofpdf.PointType
	var cur vector.Pt
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo, vector.LineTo:
			cur = vector.Pt{X: d[0], Y: d[1]}
			out = append(out, gofpdf.PointType{X: cur.X, Y: cur.Y})
		case vector.QuadTo:
			for i := 1; i <= steps; i++ {
				t := float64(i) / steps
				u := 1 - t
				out = append(out, gofpdf.PointType{
					X: u*u*cur.X + 2*u*t*d[0] + t*t*d[2],
					Y: u*u*cur.Y + 2*u*t*d[1] + t*t*d[3],
				})
			}
			cur = vector.Pt{X: d[2], Y: d[3]}
		case vector.CubicTo:
			for i := 1; i <= steps; i++ {
				t := float64(i) / steps
				u := 1 - t
				out = append(out, gofpdf.PointType{
					X: u*u*u*cur.X + 3*u*u*t*d[0] + 3*u*t*t*d[2] + t*t*t*d[4],
					Y: u*u*u*cur.Y + 3*u*u*t*d[1] + 3*u*t*t*d[3] + t*t*t*d[5],
				})
			}
			cur = vector.Pt{X: d[4], Y: d[5]}
		}
	}
	return out
}

// enter starts a PDF transform reproducing the primitive's frames and box.
func (w *pdfWriter) enter(p *render.Primitive) {
	w.pdf.TransformBegin()
	for _, f := range p.Frames {
		w.applyBox(f.Box)
	}
	w.applyBox(p.Box)
}

// applyBox rotates and mirrors about the box centre. gofpdf angles run
// counter-clockwise, element rotations clockwise.
func (w *pdfWriter) applyBox(b vector.Box) {
	c := b.Rect.Center()
	x, y := c.X*PointsPerUnit, c.Y*PointsPerUnit
	if b.Rotation != 0 {
		w.pdf.TransformRotate(-b.Rotation, x, y)
	}
	if b.FlipX {
		w.pdf.TransformMirrorHorizontal(x)
	}
	if b.FlipY {
		w.pdf.TransformMirrorVertical(y)
	}
}

func (w *pdfWriter) text(p *render.Primitive) {
	run := p.Text
	pdf := w.pdf
	w.enter(p)
	defer pdf.TransformEnd()

	family, style := "Helvetica", ""
	if w.utf8 {
		family = pdfFontFamily
	} else {
		if run.Font.Weight >= 600 {
			style += "B"
		}
		if run.Font.Italic {
			style += "I"
		}
	}
	if run.Decoration == "underline" {
		style += "U"
	}
	pdf.SetFont(family, style, run.Font.Size*PointsPerUnit)
	pdf.SetTextColor(int(run.Color.R), int(run.Color.G), int(run.Color.B))
	pdf.SetAlpha(p.Opacity*float64(run.Color.A)/255, "Normal")
	box := p.Box.Rect
	for i, ln := range run.Layout.Lines {
		s := ln.Text
		if !w.utf8 {
			s = w.tr(s)
		}
		x := (box.X + ln.X) * PointsPerUnit
		y := (box.Y + run.Layout.Baseline(i)) * PointsPerUnit
		pdf.Text(x, y, s)
		if run.Decoration == "line-through" {
			dy := run.Layout.Metrics.Ascent * 0.35 * PointsPerUnit
			w.drawColor(run.Color)
			pdf.SetDashPattern(nil, 0)
			pdf.SetLineWidth(max(0.5, run.Font.Size/16*PointsPerUnit))
			pdf.Line(x, y-dy, x+ln.Width*PointsPerUnit, y-dy)
		}
	}
}

func (w *pdfWriter) image(p *render.Primitive) {
	run := p.Image
	var buf bytes.Buffer
	if err := png.Encode(&buf, run.Bitmap); err != nil {
		w.pdf.SetError(fmt.Errorf("encode image %s: %w", run.Src, err))
		return
	}
	w.images++
	name := fmt.Sprintf("img-%d", w.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	w.pdf.RegisterImageOptionsReader(name, opts, &buf)

	w.enter(p)
	defer w.pdf.TransformEnd()
	w.pdf.SetAlpha(p.Opacity, "Normal")
	clip := !run.Clip.Empty()
	if clip {
		w.pdf.ClipPolygon(flatten(run.Clip.Transform(vector.Scale(PointsPerUnit, PointsPerUnit))), false)
	}
	d := run.Dest
	w.pdf.ImageOptions(name, d.X*PointsPerUnit, d.Y*PointsPerUnit, d.W*PointsPerUnit, d.H*PointsPerUnit, false, opts, 0, "")
	if clip {
		w.pdf.ClipEnd()
	}
}

func writePDFFile(lists []*render.DisplayList, path string, opt PDFOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := WritePDF(lists, f, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}
