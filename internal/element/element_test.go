/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package element

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"tripcanvas/internal/vector"
)

const eps = 1e-9

func TestDecodeDefaultsOpacityAndVisible(t *testing.T) {
	e, err := Decode([]byte(`{"id":"t1","type":"text","x":10,"y":80,"width":200,"height":30,"zIndex":2,"content":"Hello","style":{"fontSize":14,"fontWeight":700}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	txt, ok := e.(*Text)
	if !ok {
		t.Fatalf("expected *Text, got %T", e)
	}
	if txt.Opacity != 1 || !txt.Visible {
		t.Fatalf("defaults not applied: opacity=%v visible=%v", txt.Opacity, txt.Visible)
	}
	if txt.Content != "Hello" || txt.Style.FontSize != 14 || !txt.Style.FontWeight.Bold() {
		t.Fatalf("unexpected text: %+v", txt)
	}

	e, err = Decode([]byte(`{"id":"s1","type":"shape","variant":"circle","opacity":0,"visible":false}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := e.Common(); b.Opacity != 0 || b.Visible {
		t.Fatalf("explicit values must win: %+v", b)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"id":"x","type":"video"}`))
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestPageJSONRoundTripWithGroup(t *testing.T) {
	a := &Shape{Base: NewBase(TypeShape, "a", vector.R(10, 10, 100, 50)), Variant: Rectangle, Fill: "#c9aa7c",
		Gradient: &Gradient{Type: "linear", Direction: "vertical", ColorStops: []ColorStop{{0, "#fff"}, {1, "#000"}}}}
	b := &Line{Base: NewBase(TypeLine, "b", vector.R(0, 200, 100, 0)), X2: 100, LineStyle: "dashed", EndEndpoint: "arrow"}
	g := NewGroup("g", []Element{a, b})
	img := &Image{Base: NewBase(TypeImage, "cover-placeholder", vector.R(0, 0, 559, 300)), ObjectFit: "cover",
		Adjustments: json.RawMessage(`{"brightness":10}`)}
	p := Page{ID: "p1", Width: 559, Height: 794, BackgroundColor: "#ffffff", Elements: List{g, img}}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"type":"group"`) || !strings.Contains(string(raw), `"children":[`) {
		t.Fatalf("group not encoded: %s", raw)
	}
	var got Page
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(got.Elements))
	}
	gg, ok := got.Elements[0].(*Group)
	if !ok || len(gg.Children) != 2 {
		t.Fatalf("group lost: %#v", got.Elements[0])
	}
	sh, ok := gg.Children[0].(*Shape)
	if !ok || sh.Gradient == nil || len(sh.Gradient.ColorStops) != 2 {
		t.Fatalf("shape gradient lost: %#v", gg.Children[0])
	}
	if ln := gg.Children[1].(*Line); ln.EndEndpoint != "arrow" || ln.X2 != 100 {
		t.Fatalf("line fields lost: %+v", ln)
	}
	if im := got.Elements[1].(*Image); string(im.Adjustments) != `{"brightness":10}` || !IsPlaceholder(im) {
		t.Fatalf("image fields lost: %+v", im)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestSortByZStable(t *testing.T) {
	mk := func(id string, z int) Element {
		s := &Shape{Base: NewBase(TypeShape, id, vector.R(0, 0, 1, 1))}
		s.ZIndex = z
		return s
	}
	in := []Element{mk("a", 2), mk("b", 1), mk("c", 2), mk("d", 0), mk("e", 1)}
	got := SortByZ(in)
	var ids []string
	for _, e := range got {
		ids = append(ids, e.Common().ID)
	}
	if strings.Join(ids, "") != "dbeac" {
		t.Fatalf("unexpected order %v", ids)
	}
	if in[0].Common().ID != "a" {
		t.Fatalf("input must not be reordered")
	}
	if MaxZ(in) != 2 || MaxZ(nil) != 0 {
		t.Fatalf("MaxZ wrong")
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	p := Page{ID: "p", Width: 100, Height: 100, Elements: List{
		&Text{Base: NewBase(TypeText, "x", vector.R(0, 0, -5, 10))},
		&Text{Base: NewBase(TypeText, "x", vector.R(0, 0, 5, 10))},
	}}
	err := p.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "duplicate element id") || !strings.Contains(msg, "negative size") {
		t.Fatalf("missing problems in %q", msg)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := &Shape{Base: NewBase(TypeShape, "s", vector.R(0, 0, 10, 10)), StrokeDashArray: []float64{4, 2},
		BorderRadius: &Corners{TopLeft: 3}}
	g := NewGroup("g", []Element{s})
	c := Clone(g).(*Group)
	cs := c.Children[0].(*Shape)
	cs.StrokeDashArray[0] = 99
	cs.BorderRadius.TopLeft = 99
	cs.X = 1000
	orig := g.Children[0].(*Shape)
	if orig.StrokeDashArray[0] != 4 || orig.BorderRadius.TopLeft != 3 || orig.X == 1000 {
		t.Fatalf("clone shares state with original: %+v", orig)
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestGroupUngroupRoundTrip(t *testing.T) {
	a := &Shape{Base: NewBase(TypeShape, "a", vector.R(10, 10, 100, 50)), Variant: Rectangle}
	b := &Text{Base: NewBase(TypeText, "b", vector.R(10.5, 80.25, 200, 30)), Content: "Hello"}
	c := &Shape{Base: NewBase(TypeShape, "c", vector.R(300, 400, 40, 40)), Variant: Ellipse}
	c.Rotation = 15
	a.ZIndex, b.ZIndex, c.ZIndex = 3, 1, 2
	before := []Element{a, b, c}

	g := NewGroup("g", before)
	if g.ZIndex != 3 {
		t.Fatalf("group zIndex %d, want 3", g.ZIndex)
	}
	want, _ := vector.UnionAll([]vector.Rect{a.Bounds(), b.Bounds(), c.Bounds()})
	if !near(g.X, want.X) || !near(g.Width, want.W) || !near(g.Height, want.H) {
		t.Fatalf("group box %+v, want %+v", g.Rect(), want)
	}
	after := g.Release()
	byID := map[string]*Base{}
	for _, e := range after {
		byID[e.Common().ID] = e.Common()
	}
	for _, e := range before {
		o := e.Common()
		r := byID[o.ID]
		if r == nil {
			t.Fatalf("child %s lost", o.ID)
		}
		if !near(r.X, o.X) || !near(r.Y, o.Y) || !near(r.Width, o.Width) || !near(r.Height, o.Height) || !near(r.Rotation, o.Rotation) {
			t.Fatalf("child %s drifted: got %+v want %+v", o.ID, *r, *o)
		}
	}
}

func TestRotatedGroupReleaseFoldsRotation(t *testing.T) {
	a := &Shape{Base: NewBase(TypeShape, "a", vector.R(0, 0, 10, 10))}
	b := &Shape{Base: NewBase(TypeShape, "b", vector.R(90, 0, 10, 10))}
	g := NewGroup("g", []Element{a, b})
	g.Rotation = 90
	got := g.Release()[0].Common()
	if !near(got.X, 45) || !near(got.Y, -45) || got.Rotation != 90 {
		t.Fatalf("unexpected released child %+v", *got)
	}
}

func TestGroupResizeScalesChildren(t *testing.T) {
	a := &Shape{Base: NewBase(TypeShape, "a", vector.R(0, 0, 10, 10))}
	b := &Shape{Base: NewBase(TypeShape, "b", vector.R(90, 90, 10, 10))}
	g := NewGroup("g", []Element{a, b})
	g.Resize(vector.R(0, 0, 200, 200))
	out := g.Release()
	if r := out[1].Common().Rect(); !near(r.X, 180) || !near(r.W, 20) {
		t.Fatalf("unexpected scaled child %+v", r)
	}
}

func TestPatchApply(t *testing.T) {
	txt := &Text{Base: NewBase(TypeText, "t", vector.R(0, 0, 10, 10)), Content: "old"}
	s := "new"
	y := 80.0
	Patch{Y: &y, Content: &s}.Apply(txt)
	if txt.Y != 80 || txt.Content != "new" {
		t.Fatalf("patch not applied: %+v", txt)
	}
	if !(Patch{}).Empty() || GeometryPatch(&txt.Base).Empty() {
		t.Fatalf("Empty misreports")
	}
}

func TestPatchApplyResizesGroupChildren(t *testing.T) {
	a := &Shape{Base: NewBase(TypeShape, "a", vector.R(0, 0, 10, 10))}
	b := &Shape{Base: NewBase(TypeShape, "b", vector.R(90, 90, 10, 10))}
	g := NewGroup("g", []Element{a, b})
	w, h := 200.0, 200.0
	GeometryPatch(&g.Base).Apply(g)
	Patch{Width: &w, Height: &h}.Apply(g)
	out := g.Release()
	if r := out[1].Common().Rect(); !near(r.X, 180) || !near(r.Y, 180) || !near(r.W, 20) {
		t.Fatalf("group patch did not scale children: %+v", r)
	}
}
