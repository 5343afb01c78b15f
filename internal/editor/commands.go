/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"
	"math"
	"slices"
	"sort"

	"tripcanvas/internal/element"
	"tripcanvas/internal/vector"
)

// Copy stores deep copies of the selected elements and returns how many
// were captured. An empty selection leaves the clipboard untouched.
func (e *Engine) Copy() int {
	sel := e.selected()
	if len(sel) == 0 {
		return 0
	}
	e.clipboard = element.CloneAll(sel)
	return len(sel)
}

// Paste adds a copy of every clipboard element with a fresh id, offset by
// the paste offset and stacked above the page. The pasted elements become
// the selection.
func (e *Engine) Paste() []string {
	if e.disposed || len(e.clipboard) == 0 {
		return nil
	}
	if e.state == TextEditing {
		e.EndTextEdit()
	}
	z := element.MaxZ(e.page.Elements)
	var ids []string
	for _, src := range e.clipboard {
		el := element.Clone(src)
		e.reassignIDs(el)
		b := el.Common()
		b.X += e.cfg.PasteOffset
		b.Y += e.cfg.PasteOffset
		z++
		b.ZIndex = z
		e.add(el)
		ids = append(ids, b.ID)
	}
	e.setSelection(ids)
	e.committed()
	return ids
}

// reassignIDs gives el and every descendant a fresh id.
func (e *Engine) reassignIDs(el element.Element) {
	element.Walk([]element.Element{el}, func(x element.Element) bool {
		b := x.Common()
		b.ID = e.newID(b.Type)
		return true
	})
}

// Cut copies the unlocked part of the selection and deletes it. Locked
// elements stay on the page and out of the clipboard.
func (e *Engine) Cut() int {
	var cut []element.Element
	for _, el := range e.selected() {
		if !el.Common().Locked {
			cut = append(cut, el)
		}
	}
	if len(cut) == 0 {
		return 0
	}
	e.clipboard = element.CloneAll(cut)
	e.Delete()
	return len(cut)
}

// Delete removes the selected unlocked elements.
func (e *Engine) Delete() int {
	if e.disposed {
		return 0
	}
	n := 0
	var keep []string
	for _, el := range e.selected() {
		id := el.Common().ID
		if el.Common().Locked {
			keep = append(keep, id)
			continue
		}
		if e.remove(id) {
			n++
		}
	}
	if n > 0 {
		e.setSelection(keep)
	}
	return n
}

// BringForward swaps each selected element with the element painted just
// above it, then persists the resulting paint order as zIndex ordinals.
func (e *Engine) BringForward() bool {
	return e.shift(+1)
}

// SendBackward is the inverse of BringForward.
func (e *Engine) SendBackward() bool {
	return e.shift(-1)
}

func (e *Engine) shift(dir int) bool {
	sel := e.selected()
	if len(sel) == 0 {
		return false
	}
	order := element.SortByZ(e.page.Elements)
	picked := func(i int) bool { return slices.Contains(e.selection, order[i].Common().ID) }
	moved := false
	// Walk against the direction of travel so a run of selected elements
	// hops over its unselected neighbour as one block.
	if dir > 0 {
		for i := len(order) - 2; i >= 0; i-- {
			if picked(i) && !picked(i+1) {
				order[i], order[i+1] = order[i+1], order[i]
				moved = true
			}
		}
	} else {
		for i := 1; i < len(order); i++ {
			if picked(i) && !picked(i-1) {
				order[i], order[i-1] = order[i-1], order[i]
				moved = true
			}
		}
	}
	if !moved {
		return false
	}
	for i, el := range order {
		if el.Common().ZIndex != i {
			z := i
			e.change(el.Common().ID, element.Patch{ZIndex: &z})
		}
	}
	e.stale = true
	return true
}

// BringToFront stacks the selection above every other element.
func (e *Engine) BringToFront() bool {
	sel := e.selected()
	if len(sel) == 0 {
		return false
	}
	z := element.MaxZ(e.page.Elements)
	for _, el := range sel {
		z++
		v := z
		e.change(el.Common().ID, element.Patch{ZIndex: &v})
	}
	e.stale = true
	return true
}

// SendToBack sets the zIndex of the selection to 0.
func (e *Engine) SendToBack() bool {
	sel := e.selected()
	if len(sel) == 0 {
		return false
	}
	for _, el := range sel {
		z := 0
		e.change(el.Common().ID, element.Patch{ZIndex: &z})
	}
	e.stale = true
	return true
}

// Alignment names a page alignment command.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenterH Alignment = "center-h"
	AlignRight   Alignment = "right"
	AlignTop     Alignment = "top"
	AlignCenterV Alignment = "center-v"
	AlignBottom  Alignment = "bottom"
)

// Align moves every selected unlocked element against the page bounds.
func (e *Engine) Align(a Alignment) bool {
	sel := e.movable()
	if len(sel) == 0 {
		return false
	}
	pw, ph := e.page.Width, e.page.Height
	changed := false
	for _, el := range sel {
		b := el.Common()
		bb := b.Bounds()
		dx, dy := 0.0, 0.0
		switch a {
		case AlignLeft:
			dx = -bb.X
		case AlignCenterH:
			dx = (pw-bb.W)/2 - bb.X
		case AlignRight:
			dx = pw - bb.W - bb.X
		case AlignTop:
			dy = -bb.Y
		case AlignCenterV:
			dy = (ph-bb.H)/2 - bb.Y
		case AlignBottom:
			dy = ph - bb.H - bb.Y
		default:
			e.log.Warn("unknown alignment", slog.String("align", string(a)))
			return false
		}
		if e.moveBy(el, dx, dy) {
			changed = true
		}
	}
	if changed {
		e.committed()
	}
	return changed
}

// movable returns the selected unlocked elements in paint order.
func (e *Engine) movable() []element.Element {
	var out []element.Element
	for _, el := range e.selected() {
		if !el.Common().Locked {
			out = append(out, el)
		}
	}
	return out
}

// moveBy translates el, patches the surface and reports the new geometry.
func (e *Engine) moveBy(el element.Element, dx, dy float64) bool {
	if dx == 0 && dy == 0 {
		return false
	}
	b := el.Common()
	x, y := b.X+dx, b.Y+dy
	e.surface.Translate(b.ID, dx, dy)
	patch := element.GeometryPatch(b)
	patch.X, patch.Y = &x, &y
	e.change(b.ID, patch)
	return true
}

// DistributeHorizontal spaces three or more selected elements with equal
// gaps between the leftmost and rightmost one.
func (e *Engine) DistributeHorizontal() bool {
	return e.distribute(func(r vector.Rect) (float64, float64) { return r.X, r.W }, true)
}

// DistributeVertical is DistributeHorizontal along y.
func (e *Engine) DistributeVertical() bool {
	return e.distribute(func(r vector.Rect) (float64, float64) { return r.Y, r.H }, false)
}

func (e *Engine) distribute(axis func(vector.Rect) (pos, size float64), horizontal bool) bool {
	sel := e.movable()
	if len(sel) < 3 {
		return false
	}
	sort.SliceStable(sel, func(i, j int) bool {
		a, _ := axis(sel[i].Common().Bounds())
		b, _ := axis(sel[j].Common().Bounds())
		return a < b
	})
	first, _ := axis(sel[0].Common().Bounds())
	lastPos, lastSize := axis(sel[len(sel)-1].Common().Bounds())
	total := 0.0
	for _, el := range sel {
		_, s := axis(el.Common().Bounds())
		total += s
	}
	gap := (lastPos + lastSize - first - total) / float64(len(sel)-1)
	cur := first
	changed := false
	for i, el := range sel {
		pos, size := axis(el.Common().Bounds())
		if i > 0 && i < len(sel)-1 {
			d := cur - pos
			if horizontal {
				changed = e.moveBy(el, d, 0) || changed
			} else {
				changed = e.moveBy(el, 0, d) || changed
			}
		}
		cur += size + gap
	}
	if changed {
		e.committed()
	}
	return changed
}

// Nudge moves the selection by the configured step, ten times that with
// large set.
func (e *Engine) Nudge(dx, dy int, large bool) bool {
	step := e.cfg.Nudge
	if large {
		step = e.cfg.NudgeLarge
	}
	changed := false
	for _, el := range e.movable() {
		changed = e.moveBy(el, float64(dx)*step, float64(dy)*step) || changed
	}
	if changed {
		e.committed()
	}
	return changed
}

// Group folds two or more selected elements into one group. It is a no-op
// returning false for smaller selections.
func (e *Engine) Group() bool {
	sel := e.selected()
	if e.disposed || len(sel) < 2 {
		return false
	}
	g := element.NewGroup(e.newID(element.TypeGroup), sel)
	for _, el := range sel {
		e.remove(el.Common().ID)
	}
	e.add(g)
	e.setSelection([]string{g.ID})
	e.log.Debug("grouped", slog.String("group", g.ID), slog.Int("children", len(g.Children)))
	return true
}

// Ungroup replaces the selected group by its children at their absolute
// page positions, keeping their ids. It is a no-op returning false unless
// exactly one group is selected.
func (e *Engine) Ungroup() bool {
	sel := e.selected()
	if e.disposed || len(sel) != 1 {
		return false
	}
	g, ok := sel[0].(*element.Group)
	if !ok {
		return false
	}
	children := g.Release()
	e.remove(g.ID)
	ids := make([]string, 0, len(children))
	for _, ch := range children {
		e.add(ch)
		ids = append(ids, ch.Common().ID)
	}
	e.setSelection(ids)
	return true
}

// ToggleLock locks the selection, or unlocks it when every selected element
// is already locked.
func (e *Engine) ToggleLock() bool {
	sel := e.selected()
	if len(sel) == 0 {
		return false
	}
	lock := slices.ContainsFunc(sel, func(el element.Element) bool { return !el.Common().Locked })
	for _, el := range sel {
		if el.Common().Locked != lock {
			v := lock
			e.change(el.Common().ID, element.Patch{Locked: &v})
		}
	}
	return true
}

// FlipHorizontal mirrors the selection about each element's vertical axis.
func (e *Engine) FlipHorizontal() bool {
	sel := e.movable()
	for _, el := range sel {
		v := !el.Common().FlipX
		e.change(el.Common().ID, element.Patch{FlipX: &v})
	}
	if len(sel) > 0 {
		e.stale = true
	}
	return len(sel) > 0
}

// FlipVertical mirrors the selection about each element's horizontal axis.
func (e *Engine) FlipVertical() bool {
	sel := e.movable()
	for _, el := range sel {
		v := !el.Common().FlipY
		e.change(el.Common().ID, element.Patch{FlipY: &v})
	}
	if len(sel) > 0 {
		e.stale = true
	}
	return len(sel) > 0
}

// committed runs after every change that moves or adds elements.
func (e *Engine) committed() {
	if e.cb.OnOverlaps == nil {
		return
	}
	if pairs := Overlaps(e.page.Elements, e.cfg.OverlapRatio); len(pairs) > 0 {
		e.cb.OnOverlaps(pairs)
	}
}

// Overlaps lists the pairs of visible top-level elements whose bounds
// intersect by more than ratio of the smaller element's area.
func Overlaps(elems []element.Element, ratio float64) []Overlap {
	var vis []element.Element
	for _, el := range element.SortByZ(elems) {
		if el.Common().Visible {
			vis = append(vis, el)
		}
	}
	var out []Overlap
	for i := 0; i < len(vis); i++ {
		a := vis[i].Common().Bounds()
		for j := i + 1; j < len(vis); j++ {
			b := vis[j].Common().Bounds()
			small := math.Min(a.Area(), b.Area())
			if small <= 0 {
				continue
			}
			share := a.Intersect(b).Area() / small
			if share > ratio {
				out = append(out, Overlap{A: vis[i].Common().ID, B: vis[j].Common().ID, Ratio: share})
			}
		}
	}
	return out
}
