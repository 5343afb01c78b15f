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

	"tripcanvas/internal/vector"
)

// Group holds its children in group-local coordinates: a child's x/y are
// measured from the centre of the group box. The group box is the union of
// the children's page bounds at the time of grouping.
type Group struct {
	Base
	Children []Element `json:"-"`
}

type groupJSON struct {
	Base
	Children List `json:"children"`
}

func (g *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(groupJSON{Base: g.Base, Children: List(g.Children)})
}

func (g *Group) UnmarshalJSON(b []byte) error {
	var aux groupJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	g.Base = aux.Base
	g.Children = []Element(aux.Children)
	return nil
}

func (g *Group) clone() Element {
	c := *g
	c.Children = CloneAll(g.Children)
	return &c
}

// NewGroup folds children (absolute page coordinates) into a group with the
// given id. Children are stored in paint order and converted with
// local = abs - origin - halfExtent. The group takes the highest child zIndex.
// It returns nil for an empty input.
func NewGroup(id string, children []Element) *Group {
	if len(children) == 0 {
		return nil
	}
	rects := make([]vector.Rect, len(children))
	for i, c := range children {
		rects[i] = c.Common().Bounds()
	}
	u, _ := vector.UnionAll(rects)
	g := &Group{Base: NewBase(TypeGroup, id, u)}
	hw, hh := u.W/2, u.H/2
	for i, c := range SortByZ(children) {
		cc := Clone(c)
		b := cc.Common()
		b.X = b.X - u.X - hw
		b.Y = b.Y - u.Y - hh
		if i == 0 || b.ZIndex > g.ZIndex {
			g.ZIndex = b.ZIndex
		}
		g.Children = append(g.Children, cc)
	}
	return g
}

// Release returns copies of the children in absolute page coordinates:
// abs = local + origin + halfExtent, with the group's rotation, mirroring and
// opacity folded into each child so the result looks as it did grouped.
func (g *Group) Release() []Element {
	out := make([]Element, 0, len(g.Children))
	plain := g.Rotation == 0 && !g.FlipX && !g.FlipY
	c := g.Rect().Center()
	rot := vector.Rotate(vector.Radians(g.Rotation))
	for _, ch := range g.Children {
		e := Clone(ch)
		b := e.Common()
		if plain {
			b.X = b.X + g.X + g.Width/2
			b.Y = b.Y + g.Y + g.Height/2
		} else {
			lc := vector.Pt{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
			if g.FlipX {
				lc.X = -lc.X
				b.FlipX = !b.FlipX
				b.Rotation = -b.Rotation
			}
			if g.FlipY {
				lc.Y = -lc.Y
				b.FlipY = !b.FlipY
				b.Rotation = -b.Rotation
			}
			p := rot.Apply(lc)
			b.X = c.X + p.X - b.Width/2
			b.Y = c.Y + p.Y - b.Height/2
			b.Rotation += g.Rotation
		}
		if g.Opacity < 1 {
			b.Opacity *= g.Opacity
		}
		out = append(out, e)
	}
	return out
}

// Resize scales the group box to r, scaling the children's local geometry
// by the same factors.
func (g *Group) Resize(r vector.Rect) {
	sx, sy := 1.0, 1.0
	if g.Width != 0 {
		sx = r.W / g.Width
	}
	if g.Height != 0 {
		sy = r.H / g.Height
	}
	for _, ch := range g.Children {
		b := ch.Common()
		b.X *= sx
		b.Y *= sy
		b.Width *= sx
		b.Height *= sy
		if sub, ok := ch.(*Group); ok {
			sub.scaleChildren(sx, sy)
		}
	}
	g.SetRect(r)
}

func (g *Group) scaleChildren(sx, sy float64) {
	for _, ch := range g.Children {
		b := ch.Common()
		b.X *= sx
		b.Y *= sy
		b.Width *= sx
		b.Height *= sy
		if sub, ok := ch.(*Group); ok {
			sub.scaleChildren(sx, sy)
		}
	}
}
