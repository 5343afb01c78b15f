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
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tripcanvas/internal/element"
	"tripcanvas/internal/generator"
	"tripcanvas/internal/render"
	"tripcanvas/internal/vector"
)

// SVGOptions controls SVG export. The viewBox is in design units; Scale
// sets the width and height attributes, 1 when zero.
type SVGOptions struct {
	Scale         float64
	IncludeGuides bool
	Pages         []int
	Loader        render.Loader
}

// SVG writes one rendered page as a standalone SVG document. Bitmaps are
// embedded as PNG data URIs.
func SVG(list *render.DisplayList, w io.Writer, opt SVGOptions) error {
	bg := list.Background()
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	sw := &svgWriter{}
	sw.wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sw.wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\">\n",
		num(bg.Width*scale), num(bg.Height*scale), num(bg.Width), num(bg.Height))
	sw.wf("  <rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" fill=\"%s\"%s/>\n",
		num(bg.Width), num(bg.Height), svgColor(bg.Color), opacityAttr("fill-opacity", bg.Color))
	for _, p := range list.Primitives() {
		if !visible(&p) {
			continue
		}
		switch {
		case p.Kind == render.KindText && p.Text != nil:
			sw.text(&p)
		case p.Kind == render.KindImage && p.Image != nil && p.Image.Bitmap != nil:
			sw.image(&p)
		default:
			sw.path(&p)
		}
	}
	if opt.IncludeGuides {
		g := bleedGuide(bg.Width, bg.Height, generator.Bleed)
		sw.wf("  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"0.5\"/>\n",
			num(g.X), num(g.Y), num(g.W), num(g.H), svgColor(GuideColor))
	}
	sw.wf("</svg>\n")
	if sw.err != nil {
		return fmt.Errorf("build svg: %w", sw.err)
	}
	if _, err := w.Write(sw.buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// ExportSVGPages renders and writes every selected page of doc as
// page-<n>.svg under outDir.
func ExportSVGPages(ctx context.Context, doc element.Document, outDir string, opt SVGOptions) ([]string, error) {
	lists, err := RenderPages(ctx, doc, opt.Pages, opt.Loader)
	if err != nil {
		return nil, err
	}
	return writeSVGPages(lists, outDir, opt)
}

func writeSVGPages(lists []*render.DisplayList, outDir string, opt SVGOptions) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var out []string
	for i, dl := range lists {
		var buf bytes.Buffer
		if err := SVG(dl, &buf, opt); err != nil {
			return out, err
		}
		name := filepath.Join(outDir, fmt.Sprintf("page-%d.svg", i+1))
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			return out, fmt.Errorf("write svg: %w", err)
		}
		out = append(out, name)
	}
	return out, nil
}

type svgWriter struct {
	buf bytes.Buffer
	err error
	ids int
}

func (sw *svgWriter) wf(format string, args ...any) {
	if sw.err != nil {
		return
	}
	_, sw.err = fmt.Fprintf(&sw.buf, format, args...)
}

func (sw *svgWriter) nextID(prefix string) string {
	sw.ids++
	return prefix + strconv.Itoa(sw.ids)
}

// open starts a group carrying the primitive's transform and opacity.
func (sw *svgWriter) open(p *render.Primitive) {
	attrs := ""
	if m := p.Transform(); !m.IsIdentity() {
		attrs += fmt.Sprintf(" transform=\"matrix(%s %s %s %s %s %s)\"", num(m.A), num(m.B), num(m.C), num(m.D), num(m.E), num(m.F))
	}
	if p.Opacity < 1 {
		attrs += fmt.Sprintf(" opacity=\"%s\"", num(p.Opacity))
	}
	sw.wf("  <g data-element=\"%s\"%s>\n", escAttr(p.ElementID), attrs)
}

func (sw *svgWriter) close() { sw.wf("  </g>\n") }

func (sw *svgWriter) path(p *render.Primitive) {
	outline := p.Path
	if outline.Empty() {
		outline = vector.RoundedRect(p.Box.Rect, 0, 0, 0, 0)
	}
	sw.open(p)
	defer sw.close()
	fill := "none"
	extra := ""
	if p.Fill.Visible() && p.Kind != render.KindLine {
		if g := p.Fill.Gradient; g != nil {
			fill = "url(#" + sw.gradient(g) + ")"
		} else {
			fill = svgColor(p.Fill.Color)
			extra += opacityAttr("fill-opacity", p.Fill.Color)
		}
		if p.FillRule == vector.EvenOdd {
			extra += " fill-rule=\"evenodd\""
		}
	}
	if st := p.Stroke; st.Enabled() {
		extra += fmt.Sprintf(" stroke=\"%s\" stroke-width=\"%s\"", svgColor(st.Color), num(st.Width))
		extra += opacityAttr("stroke-opacity", st.Color)
		if len(st.Dash) > 0 {
			parts := make([]string, len(st.Dash))
			for i, d := range st.Dash {
				parts[i] = num(d)
			}
			extra += " stroke-dasharray=\"" + strings.Join(parts, " ") + "\""
		}
		switch st.Cap {
		case vector.CapRound:
			extra += " stroke-linecap=\"round\""
		case vector.CapSquare:
			extra += " stroke-linecap=\"square\""
		}
	}
	sw.wf("    <path d=\"%s\" fill=\"%s\"%s/>\n", pathData(outline), fill, extra)
}

// gradient emits a gradient definition in the user space of the element
// and returns its id.
func (sw *svgWriter) gradient(g *vector.Gradient) string {
	id := sw.nextID("grad")
	if g.Kind == vector.RadialGradient {
		sw.wf("    <defs><radialGradient id=\"%s\" gradientUnits=\"userSpaceOnUse\" cx=\"%s\" cy=\"%s\" r=\"%s\">",
			id, num(g.Start.X), num(g.Start.Y), num(g.Radius))
	} else {
		sw.wf("    <defs><linearGradient id=\"%s\" gradientUnits=\"userSpaceOnUse\" x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\">",
			id, num(g.Start.X), num(g.Start.Y), num(g.End.X), num(g.End.Y))
	}
	for _, s := range g.Stops {
		sw.wf("<stop offset=\"%s\" stop-color=\"%s\"%s/>", num(s.Offset), svgColor(s.Color), opacityAttr("stop-opacity", s.Color))
	}
	if g.Kind == vector.RadialGradient {
		sw.wf("</radialGradient></defs>\n")
	} else {
		sw.wf("</linearGradient></defs>\n")
	}
	return id
}

func (sw *svgWriter) text(p *render.Primitive) {
	run := p.Text
	sw.open(p)
	defer sw.close()
	style := ""
	if run.Font.Weight != 0 && run.Font.Weight != 400 {
		style += fmt.Sprintf(" font-weight=\"%d\"", run.Font.Weight)
	}
	if run.Font.Italic {
		style += " font-style=\"italic\""
	}
	if run.CharSpacing != 0 {
		style += fmt.Sprintf(" letter-spacing=\"%s\"", num(run.CharSpacing/1000*run.Font.Size))
	}
	if run.Decoration != "" && run.Decoration != "none" {
		style += fmt.Sprintf(" text-decoration=\"%s\"", escAttr(run.Decoration))
	}
	box := p.Box.Rect
	for i, ln := range run.Layout.Lines {
		sw.wf("    <text x=\"%s\" y=\"%s\" font-family=\"%s\" font-size=\"%s\" fill=\"%s\"%s%s xml:space=\"preserve\">%s</text>\n",
			num(box.X+ln.X), num(box.Y+run.Layout.Baseline(i)), escAttr(run.Font.Family), num(run.Font.Size),
			svgColor(run.Color), opacityAttr("fill-opacity", run.Color), style, escText(ln.Text))
	}
}

func (sw *svgWriter) image(p *render.Primitive) {
	run := p.Image
	var buf bytes.Buffer
	if err := png.Encode(&buf, run.Bitmap); err != nil {
		sw.err = fmt.Errorf("encode image %s: %w", run.Src, err)
		return
	}
	sw.open(p)
	defer sw.close()
	clip := ""
	if !run.Clip.Empty() {
		id := sw.nextID("clip")
		sw.wf("    <defs><clipPath id=\"%s\"><path d=\"%s\"/></clipPath></defs>\n", id, pathData(run.Clip))
		clip = " clip-path=\"url(#" + id + ")\""
	}
	d := run.Dest
	sw.wf("    <image x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" preserveAspectRatio=\"none\"%s href=\"data:image/png;base64,%s\"/>\n",
		num(d.X), num(d.Y), num(d.W), num(d.H), clip, base64.StdEncoding.EncodeToString(buf.Bytes()))
}

func pathData(p vector.Path) string {
	var sb strings.Builder
	for i, c := range p.Cmds {
		if i > 0 {
			sb.WriteByte(' ')
		}
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			sb.WriteString("M" + num(d[0]) + " " + num(d[1]))
		case vector.LineTo:
			sb.WriteString("L" + num(d[0]) + " " + num(d[1]))
		case vector.QuadTo:
			sb.WriteString("Q" + num(d[0]) + " " + num(d[1]) + " " + num(d[2]) + " " + num(d[3]))
		case vector.CubicTo:
			sb.WriteString("C" + num(d[0]) + " " + num(d[1]) + " " + num(d[2]) + " " + num(d[3]) + " " + num(d[4]) + " " + num(d[5]))
		case vector.Close:
			sb.WriteString("Z")
		}
	}
	return sb.String()
}

// num formats a coordinate with at most three decimals.
func num(v float64) string {
	r := vector.FloatRound(v, 3)
	if r == 0 {
		r = 0 // no "-0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func svgColor(c vector.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// opacityAttr renders the alpha of c as attr when it is not opaque.
func opacityAttr(attr string, c vector.Color) string {
	a := float64(c.A) / 255
	if a >= 1 {
		return ""
	}
	return fmt.Sprintf(" %s=\"%s\"", attr, num(a))
}

var (
	attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", "\n", " ", "\r", "")
	textEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")
)

func escAttr(s string) string { return attrEscaper.Replace(s) }
func escText(s string) string { return textEscaper.Replace(s) }
