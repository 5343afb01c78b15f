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
	"encoding/xml"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tripcanvas/internal/element"
	"tripcanvas/internal/render"
	"tripcanvas/internal/vector"
)

func shape(id string, x, y, w, h float64, fill string) *element.Shape {
	return &element.Shape{Base: element.NewBase(element.TypeShape, id, vector.R(x, y, w, h)), Variant: element.Rectangle, Fill: fill}
}

func samplePage(id string) element.Page {
	rotated := shape("rot", 300, 400, 100, 40, "#3a3633")
	rotated.Rotation = 90
	grad := shape("grad", 20, 600, 200, 80, "")
	grad.Gradient = &element.Gradient{Type: "linear", ColorStops: []element.ColorStop{
		{Offset: 0, Color: "#c9aa7c"}, {Offset: 1, Color: "#ffffff"},
	}}
	txt := &element.Text{
		Base:    element.NewBase(element.TypeText, "title", vector.R(40, 300, 480, 40)),
		Content: "Tokyo <5 days> & more",
		Style:   element.TextStyle{FontFamily: "Noto Sans TC", FontSize: 24, FontWeight: "bold", Color: "#181511", TextAlign: "left", LineHeight: 1.2},
	}
	ln := &element.Line{
		Base:        element.NewBase(element.TypeLine, "rule", vector.R(40, 360, 200, 0)),
		X2:          200,
		Stroke:      "#c9aa7c",
		StrokeWidth: 2,
		LineStyle:   "dashed",
		EndEndpoint: "arrow",
	}
	ph := &element.Image{Base: element.NewBase(element.TypeImage, "photo", vector.R(300, 40, 200, 150)), Placeholder: true}
	return element.Page{
		ID: id, Width: 559, Height: 794, BackgroundColor: "#ffffff",
		Elements: element.List{shape("block", 50, 50, 100, 100, "#c9aa7c"), rotated, grad, txt, ln, ph},
	}
}

func sampleDoc() element.Document {
	return element.Document{ID: "doc-1", Name: "Tokyo Trip 2026", Pages: []element.Page{samplePage("p1"), samplePage("p2")}}
}

func renderOne(t *testing.T, page element.Page) *render.DisplayList {
	t.Helper()
	lists, err := RenderPages(context.Background(), element.Document{ID: "d", Pages: []element.Page{page}}, nil, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return lists[0]
}

func rgba(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func TestRenderPagesSelection(t *testing.T) {
	doc := sampleDoc()
	lists, err := RenderPages(context.Background(), doc, []int{1, 7, -1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 1 {
		t.Fatalf("expected only the valid index, got %d lists", len(lists))
	}
	if _, err := RenderPages(context.Background(), element.Document{ID: "empty"}, nil, nil); !errors.Is(err, ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
}

func TestRasterizeDrawsPrimitives(t *testing.T) {
	img, err := Rasterize(renderOne(t, samplePage("p1")), PNGOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 559 || b.Dy() != 794 {
		t.Fatalf("unexpected size %v", b)
	}
	if got := rgba(img.At(100, 100)); got != (color.NRGBA{0xc9, 0xaa, 0x7c, 0xff}) {
		t.Fatalf("block centre: %v", got)
	}
	if got := rgba(img.At(10, 10)); got != (color.NRGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Fatalf("background: %v", got)
	}
	// 100x40 rotated by 90 degrees about (350,420) covers x 330..370, y 370..470
	if got := rgba(img.At(350, 380)); got != (color.NRGBA{0x3a, 0x36, 0x33, 0xff}) {
		t.Fatalf("rotated shape not rotated: %v", got)
	}
	if got := rgba(img.At(310, 420)); got.R != 0xff || got.G != 0xff {
		t.Fatalf("unrotated footprint painted: %v", got)
	}
	// gradient runs left to right from gold to white
	left, right := rgba(img.At(22, 640)), rgba(img.At(217, 640))
	if left.B >= right.B {
		t.Fatalf("gradient not increasing towards white: %v -> %v", left, right)
	}
}

func TestRasterizeScale(t *testing.T) {
	img, err := Rasterize(renderOne(t, samplePage("p1")), PNGOptions{Scale: 2})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 1118 || b.Dy() != 1588 {
		t.Fatalf("unexpected size %v", b)
	}
	if got := rgba(img.At(200, 200)); got != (color.NRGBA{0xc9, 0xaa, 0x7c, 0xff}) {
		t.Fatalf("scaled block centre: %v", got)
	}
}

func TestRasterizeHonoursOpacityAndVisibility(t *testing.T) {
	hidden := shape("hidden", 0, 0, 50, 50, "#000000")
	hidden.Visible = false
	faded := shape("faded", 100, 0, 50, 50, "#000000")
	faded.Opacity = 0.5
	pg := element.Page{ID: "p", Width: 200, Height: 100, Elements: element.List{hidden, faded}}
	img, err := Rasterize(renderOne(t, pg), PNGOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := rgba(img.At(25, 25)); got.R != 0xff {
		t.Fatalf("hidden element drawn: %v", got)
	}
	if got := rgba(img.At(125, 25)); got.R < 0x70 || got.R > 0x90 {
		t.Fatalf("half transparent black over white should be mid grey, got %v", got)
	}
}

func TestPNGEncodes(t *testing.T) {
	var buf bytes.Buffer
	if err := PNG(renderOne(t, samplePage("p1")), &buf, PNGOptions{IncludeGuides: true}); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// bleed guide at x=32
	if got := rgba(img.At(32, 400)); got.R != 0xff || got.G == 0xff {
		t.Fatalf("guide missing: %v", got)
	}
}

func TestExportPNGPages(t *testing.T) {
	dir := t.TempDir()
	paths, err := ExportPNGPages(context.Background(), sampleDoc(), dir, PNGOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || filepath.Base(paths[1]) != "page-2.png" {
		t.Fatalf("unexpected paths %v", paths)
	}
	for _, p := range paths {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
}

func TestSVGIsWellFormed(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(renderOne(t, samplePage("p1")), &buf, SVGOptions{Scale: 2, IncludeGuides: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`width="1118" height="1588" viewBox="0 0 559 794"`,
		`data-element="block"`,
		`Tokyo &lt;5 days&gt; &amp; more`,
		`<linearGradient id="grad1"`,
		`fill="url(#grad1)"`,
		`stroke-dasharray="10 5"`,
		`transform="matrix(0 1 -1 0 770 70)"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("svg lacks %q:\n%s", want, out)
		}
	}
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("svg not well formed: %v", err)
		}
	}
}

func TestSVGEmbedsImages(t *testing.T) {
	dir := t.TempDir()
	bm := image.NewRGBA(image.Rect(0, 0, 4, 3))
	f, err := os.Create(filepath.Join(dir, "pic.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, bm); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	im := &element.Image{Base: element.NewBase(element.TypeImage, "pic", vector.R(10, 10, 40, 30)), Src: "pic.png", ObjectFit: "cover"}
	pg := element.Page{ID: "p", Width: 100, Height: 100, Elements: element.List{im}}
	lists, err := RenderPages(context.Background(), element.Document{ID: "d", Pages: []element.Page{pg}}, nil, render.FileLoader{Root: dir})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := SVG(lists[0], &buf, SVGOptions{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `href="data:image/png;base64,`) || !strings.Contains(buf.String(), "<clipPath") {
		t.Fatalf("image not embedded:\n%s", buf.String())
	}
	if _, err := Rasterize(lists[0], PNGOptions{}); err != nil {
		t.Fatalf("rasterize image: %v", err)
	}
}

func TestPDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "trip.pdf")
	if err := PDF(context.Background(), sampleDoc(), out, PDFOptions{IncludeGuides: true}); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", data[:min(len(data), 16)])
	}
	if err := WritePDF(nil, io.Discard, PDFOptions{}); !errors.Is(err, ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
}

func TestPDFMissingFont(t *testing.T) {
	lists, err := RenderPages(context.Background(), sampleDoc(), []int{0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = WritePDF(lists, io.Discard, PDFOptions{FontFile: filepath.Join(t.TempDir(), "missing.ttf")})
	if err == nil {
		t.Fatalf("expected an error for a missing font file")
	}
}

func TestSlug(t *testing.T) {
	for in, want := range map[string]string{
		"Tokyo Trip 2026": "tokyo-trip-2026",
		"  ":              "document",
		"東京 五日遊!":         "東京-五日遊",
		"a--b":            "a-b",
	} {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
