/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "testing"

func texts(b Box) []string {
	var out []string
	for _, l := range b.Lines {
		out = append(out, l.Text)
	}
	return out
}

func TestWordWrap_Naive(t *testing.T) {
	l := NewWordWrap(BasicProvider{})
	box := l.Layout("Hello world from Go", FontSpec{Size: 10}, Options{MaxWidth: 50})
	got := texts(box)
	if len(got) != 3 || got[0] != "Hello" || got[1] != "world" || got[2] != "from Go" {
		t.Fatalf("unexpected lines %q", got)
	}
	if box.Width != 49 || box.Height != 3*box.LineAdvance {
		t.Fatalf("unexpected box size: %+v", box)
	}
	if box.Lines[2].Y != 2*box.LineAdvance {
		t.Fatalf("line y not stacked: %+v", box.Lines[2])
	}
}

func TestWordWrap_NewlinesAreSignificant(t *testing.T) {
	box := NewWordWrap(BasicProvider{}).Layout("a\n\nb", FontSpec{Size: 10}, Options{MaxWidth: 100})
	if got := texts(box); len(got) != 3 || got[1] != "" {
		t.Fatalf("expected empty middle line, got %q", got)
	}
}

func TestWordWrap_CJKBreaksBetweenCharacters(t *testing.T) {
	box := NewWordWrap(BasicProvider{}).Layout("東京大阪", FontSpec{Size: 10}, Options{MaxWidth: 15})
	if got := texts(box); len(got) != 2 || got[0] != "東京" || got[1] != "大阪" {
		t.Fatalf("unexpected CJK lines %q", got)
	}
}

func TestWordWrap_OverlongWordIsSplit(t *testing.T) {
	box := NewWordWrap(BasicProvider{}).Layout("abcdefghij", FontSpec{Size: 10}, Options{MaxWidth: 35})
	if got := texts(box); len(got) != 2 || got[0] != "abcde" {
		t.Fatalf("unexpected lines %q", got)
	}
}

func TestWordWrap_AlignAndTracking(t *testing.T) {
	l := NewWordWrap(BasicProvider{})
	box := l.Layout("ABC", FontSpec{Size: 10}, Options{MaxWidth: 100, Align: "center", CharSpacing: 100})
	// 3 glyphs of 7 plus 1 unit tracking each
	if box.Lines[0].Width != 24 || box.Lines[0].X != 38 {
		t.Fatalf("unexpected aligned line %+v", box.Lines[0])
	}
	box = l.Layout("ABC", FontSpec{Size: 10}, Options{MaxWidth: 100, Align: "right"})
	if box.Lines[0].X != 79 {
		t.Fatalf("unexpected right aligned line %+v", box.Lines[0])
	}
}

func TestMeasure_Deterministic(t *testing.T) {
	w1, h1 := Measure(BasicProvider{}, FontSpec{}, "ABC")
	w2, h2 := Measure(nil, FontSpec{}, "ABC")
	if w1 != w2 || h1 != h2 || w1 != 21 {
		t.Fatalf("expected same measure, got w1=%v h1=%v vs w2=%v h2=%v", w1, h1, w2, h2)
	}
}

func TestGoFontProvider(t *testing.T) {
	p := DefaultProvider()
	_, small := p.Resolve(FontSpec{Family: "Noto Sans TC", Size: 10})
	_, large := p.Resolve(FontSpec{Family: "Noto Sans TC", Size: 20, Weight: 700})
	if small.Ascent <= 0 || large.Ascent <= small.Ascent {
		t.Fatalf("expected metrics to scale with size: %+v vs %+v", small, large)
	}
	w10, _ := Measure(p, FontSpec{Size: 10}, "Travel")
	w20, _ := Measure(p, FontSpec{Size: 20}, "Travel")
	if w20 <= w10 {
		t.Fatalf("expected wider text at larger size: %v vs %v", w10, w20)
	}
}
