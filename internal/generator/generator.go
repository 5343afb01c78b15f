/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package generator holds the component generators: pure functions that
// lay out a pre-designed fragment (cover, flight card, timeline, ...) at a
// given anchor and width, optionally filled from a data map.
package generator

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"tripcanvas/internal/element"
	"tripcanvas/internal/vector"
)

// A5 page geometry in design units (96 dpi).
const (
	PageWidth    = 559
	PageHeight   = 794
	Bleed        = 32
	ContentWidth = PageWidth - 2*Bleed

	// MinFontSize is the smallest size a generator may emit.
	MinFontSize = 7
)

// Palette is the colour and font set a generator draws with.
type Palette struct {
	Gold       string
	Black      string
	Gray       string
	LightGray  string
	White      string
	FontFamily string
}

// DefaultPalette is the house style.
func DefaultPalette() Palette {
	return Palette{
		Gold:       "#c9aa7c",
		Black:      "#181511",
		Gray:       "#666666",
		LightGray:  "#e8e4df",
		White:      "#ffffff",
		FontFamily: "Noto Sans TC",
	}
}

// Options is the input of every generator. X and Y anchor the fragment;
// Width is the space it may fill. Data holds optional bindings looked up
// by key. An empty Seed is replaced by the next value of DefaultSeeder.
type Options struct {
	Width float64
	X     float64
	Y     float64
	Style *Palette
	Data  map[string]any
	Seed  string
}

// DefaultOptions anchors a fragment at the content box of an A5 page.
func DefaultOptions(y float64) Options {
	return Options{Width: ContentWidth, X: Bleed, Y: y}
}

// Func generates the elements of one fragment.
type Func func(Options) []element.Element

// Seeder yields distinct id seeds: Unix milliseconds plus a sequence number,
// so calls within the same millisecond never collide.
type Seeder struct {
	seq atomic.Uint64
	now func() time.Time
}

// NewSeeder returns a seeder reading the wall clock.
func NewSeeder() *Seeder { return &Seeder{now: time.Now} }

// Next returns a fresh seed.
func (s *Seeder) Next() string {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	n := s.seq.Add(1)
	return strconv.FormatInt(now().UnixMilli(), 10) + "-" + strconv.FormatUint(n, 10)
}

// DefaultSeeder serves generators called without an explicit seed.
var DefaultSeeder = NewSeeder()

// batch collects the elements of one generator call.
type batch struct {
	kind  string
	seed  string
	pal   Palette
	data  map[string]any
	elems []element.Element
}

func newBatch(kind string, o Options) *batch {
	seed := o.Seed
	if seed == "" {
		seed = DefaultSeeder.Next()
	}
	pal := DefaultPalette()
	if o.Style != nil {
		pal = mergePalette(pal, *o.Style)
	}
	return &batch{kind: kind, seed: seed, pal: pal, data: o.Data}
}

func mergePalette(base, over Palette) Palette {
	pick := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	pick(&base.Gold, over.Gold)
	pick(&base.Black, over.Black)
	pick(&base.Gray, over.Gray)
	pick(&base.LightGray, over.LightGray)
	pick(&base.White, over.White)
	pick(&base.FontFamily, over.FontFamily)
	return base
}

func (b *batch) id(suffix string) string {
	return fmt.Sprintf("block-%s-%s-%s", b.kind, b.seed, suffix)
}

func (b *batch) base(t element.Type, suffix, name string, r vector.Rect) element.Base {
	eb := element.NewBase(t, b.id(suffix), r)
	eb.Name = name
	return eb
}

type textOpts struct {
	size    float64
	weight  string
	color   string
	align   string
	line    float64
	spacing float64
}

func (b *batch) text(suffix, name string, r vector.Rect, content string, o textOpts) *element.Text {
	if o.size < MinFontSize {
		o.size = MinFontSize
	}
	if o.align == "" {
		o.align = "left"
	}
	t := &element.Text{
		Base:    b.base(element.TypeText, suffix, name, r),
		Content: content,
		Style: element.TextStyle{
			FontFamily:    b.pal.FontFamily,
			FontSize:      o.size,
			FontWeight:    element.FontWeight(o.weight),
			FontStyle:     "normal",
			Color:         o.color,
			TextAlign:     o.align,
			LineHeight:    o.line,
			LetterSpacing: o.spacing,
		},
	}
	b.elems = append(b.elems, t)
	return t
}

func (b *batch) rect(suffix, name string, r vector.Rect, fill, stroke string, strokeWidth float64) *element.Shape {
	s := &element.Shape{
		Base:        b.base(element.TypeShape, suffix, name, r),
		Variant:     element.Rectangle,
		Fill:        fill,
		Stroke:      stroke,
		StrokeWidth: strokeWidth,
	}
	b.elems = append(b.elems, s)
	return s
}

// image adds an image; an empty src marks it as a placeholder awaiting
// user media.
func (b *batch) image(suffix, name string, r vector.Rect, src string) *element.Image {
	im := &element.Image{
		Base:        b.base(element.TypeImage, suffix, name, r),
		Src:         src,
		ObjectFit:   "cover",
		Placeholder: src == "",
	}
	b.elems = append(b.elems, im)
	return im
}

func (b *batch) line(suffix, name string, r vector.Rect, x1, y1, x2, y2 float64, stroke string, width float64, style string) *element.Line {
	l := &element.Line{
		Base:        b.base(element.TypeLine, suffix, name, r),
		X1:          x1,
		Y1:          y1,
		X2:          x2,
		Y2:          y2,
		Stroke:      stroke,
		StrokeWidth: width,
		LineStyle:   style,
	}
	b.elems = append(b.elems, l)
	return l
}

func (b *batch) circle(suffix, name string, r vector.Rect, fill string) *element.Shape {
	s := &element.Shape{
		Base:    b.base(element.TypeShape, suffix, name, r),
		Variant: element.Circle,
		Fill:    fill,
	}
	b.elems = append(b.elems, s)
	return s
}

func (b *batch) icon(suffix, name string, r vector.Rect, icon, color string) *element.Icon {
	ic := &element.Icon{
		Base:  b.base(element.TypeIcon, suffix, name, r),
		Icon:  icon,
		Color: color,
	}
	b.elems = append(b.elems, ic)
	return ic
}

// str returns data[key] as text, or def when the key is missing or blank.
func (b *batch) str(key, def string) string {
	v, ok := b.data[key]
	if !ok || v == nil {
		return def
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case fmt.Stringer:
		s = x.String()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		s = fmt.Sprint(x)
	}
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// list returns data[key] as lines. Strings split on newlines; slices of
// strings or maps (rendered by fields) are accepted.
func (b *batch) list(key string, fields []string, def []string) []string {
	v, ok := b.data[key]
	if !ok || v == nil {
		return def
	}
	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	switch x := v.(type) {
	case string:
		for _, ln := range strings.Split(x, "\n") {
			add(ln)
		}
	case []string:
		for _, s := range x {
			add(s)
		}
	case []any:
		for _, it := range x {
			switch y := it.(type) {
			case map[string]any:
				var parts []string
				for _, f := range fields {
					if s, ok := y[f].(string); ok && strings.TrimSpace(s) != "" {
						parts = append(parts, strings.TrimSpace(s))
					}
				}
				add(strings.Join(parts, "  "))
			default:
				add(fmt.Sprint(y))
			}
		}
	default:
		add(fmt.Sprint(x))
	}
	if len(out) == 0 {
		return def
	}
	return out
}
