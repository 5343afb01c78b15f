/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Deterministic word wrapping and measurement of text boxes. Latin text
// breaks on spaces; CJK text may break between any two characters.

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DefaultLineHeight is the line advance as a multiple of the font size.
const DefaultLineHeight = 1.16

// Options controls a layout.
type Options struct {
	MaxWidth    float64 // wrap boundary, 0 disables wrapping
	LineHeight  float64 // multiple of the font size
	CharSpacing float64 // extra advance per character in 1/1000 em
	Align       string  // left, center, right, justify (laid out as left)
}

// Line is one laid out line. X is the alignment offset and Y the top of the
// line box, both relative to the text box origin.
type Line struct {
	Text  string
	X, Y  float64
	Width float64
}

// Box is the result of laying out text into a width.
type Box struct {
	Lines       []Line
	Width       float64
	Height      float64
	LineAdvance float64
	Metrics     Metrics
}

// Baseline returns the baseline offset of line i from the box top.
func (b Box) Baseline(i int) float64 {
	lead := (b.LineAdvance - b.Metrics.Ascent - b.Metrics.Descent) / 2
	if lead < 0 {
		lead = 0
	}
	return float64(i)*b.LineAdvance + lead + b.Metrics.Ascent
}

// Layouter performs line-breaking and measurement.
type Layouter interface {
	Layout(text string, spec FontSpec, opts Options) Box
}

// WordWrapLayouter is a greedy layouter; it does not shape or hyphenate.
type WordWrapLayouter struct{ Provider Provider }

func NewWordWrap(provider Provider) *WordWrapLayouter { return &WordWrapLayouter{Provider: provider} }

func (l *WordWrapLayouter) Layout(text string, spec FontSpec, opts Options) Box {
	if l.Provider == nil {
		l.Provider = BasicProvider{}
	}
	face, met := l.Provider.Resolve(spec)
	lh := opts.LineHeight
	if lh <= 0 {
		lh = DefaultLineHeight
	}
	advance := spec.Size * lh
	if spec.Size <= 0 {
		advance = met.Ascent + met.Descent + met.LineGap
	}
	tracking := spec.Size * opts.CharSpacing / 1000
	m := measurer{face: face, tracking: tracking}

	box := Box{LineAdvance: advance, Metrics: met}
	for _, para := range strings.Split(text, "\n") {
		for _, ln := range m.wrap(para, opts.MaxWidth) {
			box.Lines = append(box.Lines, Line{Text: ln, Width: m.width(ln)})
		}
	}
	for i := range box.Lines {
		if box.Lines[i].Width > box.Width {
			box.Width = box.Lines[i].Width
		}
		box.Lines[i].Y = float64(i) * advance
	}
	box.Height = float64(len(box.Lines)) * advance

	avail := opts.MaxWidth
	if avail <= 0 {
		avail = box.Width
	}
	for i := range box.Lines {
		switch opts.Align {
		case "center":
			box.Lines[i].X = (avail - box.Lines[i].Width) / 2
		case "right":
			box.Lines[i].X = avail - box.Lines[i].Width
		}
	}
	return box
}

type measurer struct {
	face     font.Face
	tracking float64
}

func (m measurer) width(s string) float64 {
	if s == "" {
		return 0
	}
	return fixedToFloat(font.MeasureString(m.face, s)) + m.tracking*float64(utf8.RuneCountInString(s))
}

// wrap breaks one paragraph into lines no wider than limit.
func (m measurer) wrap(para string, limit float64) []string {
	if limit <= 0 || para == "" {
		return []string{para}
	}
	var lines []string
	var cur strings.Builder
	curW := 0.0
	emit := func() {
		lines = append(lines, strings.TrimRight(cur.String(), " "))
		cur.Reset()
		curW = 0
	}
	for _, tok := range tokens(para) {
		w := m.width(tok)
		if tok == " " && cur.Len() == 0 && len(lines) > 0 {
			continue
		}
		if cur.Len() > 0 && curW+w > limit && tok != " " {
			emit()
		}
		if w > limit && tok != " " {
			// overlong word: break between characters
			for _, r := range tok {
				rw := m.width(string(r))
				if cur.Len() > 0 && curW+rw > limit {
					emit()
				}
				cur.WriteRune(r)
				curW += rw
			}
			continue
		}
		cur.WriteString(tok)
		curW += w
	}
	if cur.Len() > 0 || len(lines) == 0 {
		emit()
	}
	return lines
}

// tokens splits a paragraph into words, single spaces and single CJK runes.
func tokens(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		switch {
		case r == ' ' || isCJK(r):
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			out = append(out, string(r))
		case start < 0:
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) ||
		(r >= 0x3000 && r <= 0x303f) || (r >= 0xff00 && r <= 0xffef)
}

// Measure returns the width and line height of s on one line.
func Measure(provider Provider, spec FontSpec, s string) (w, h float64) {
	if provider == nil {
		provider = BasicProvider{}
	}
	face, met := provider.Resolve(spec)
	return measurer{face: face}.width(s), met.Ascent + met.Descent
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
