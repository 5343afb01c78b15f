/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"math"
	"slices"

	"tripcanvas/internal/element"
	"tripcanvas/internal/vector"
)

// Modifiers are the keyboard modifiers held during an input event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Meta  bool
	Alt   bool
}

// Handle geometry in page units.
const (
	HandleRadius       = 6
	RotateHandleOffset = 24
	minTransformSize   = 1
	rotateStep         = 15
)

// dragMode is the pointer interaction in progress.
type dragMode int

const (
	dragNone dragMode = iota
	dragMarquee
	dragMove
	dragScaleNW
	dragScaleNE
	dragScaleSW
	dragScaleSE
	dragRotate
)

type dragState struct {
	mode  dragMode
	start vector.Pt
	// frame is the selection box at pointer down: the element box for a
	// single selection, the union of bounds otherwise.
	frame vector.Box
	// orig holds copies of the affected elements at pointer down.
	orig  []element.Element
	moved bool
	// marquee extends the selection present at pointer down.
	base    []string
	current vector.Pt
}

// selectionFrame returns the box that carries the handles.
func (e *Engine) selectionFrame() (vector.Box, bool) {
	sel := e.selected()
	switch len(sel) {
	case 0:
		return vector.Box{}, false
	case 1:
		return sel[0].Common().Box(), true
	}
	rects := make([]vector.Rect, len(sel))
	for i, el := range sel {
		rects[i] = el.Common().Bounds()
	}
	u, _ := vector.UnionAll(rects)
	return vector.Box{Rect: u}, true
}

// Handles returns the page positions of the NW, NE, SE, SW corner handles and
// the rotation handle of the current selection.
func (e *Engine) Handles() (corners [4]vector.Pt, rotate vector.Pt, ok bool) {
	b, ok := e.selectionFrame()
	if !ok {
		return corners, rotate, false
	}
	return handlePoints(b)
}

func handlePoints(b vector.Box) (corners [4]vector.Pt, rotate vector.Pt, ok bool) {
	c := b.Corners()
	corners = [4]vector.Pt{c[0], c[1], c[2], c[3]}
	r := b.Rect
	rotate = b.Transform().Apply(vector.Pt{X: r.X + r.W/2, Y: r.Y - RotateHandleOffset})
	return corners, rotate, true
}

// handleAt maps a pointer position to the handle under it.
func (e *Engine) handleAt(p vector.Pt) dragMode {
	corners, rot, ok := e.Handles()
	if !ok {
		return dragNone
	}
	near := func(q vector.Pt) bool { return math.Abs(p.X-q.X) <= HandleRadius && math.Abs(p.Y-q.Y) <= HandleRadius }
	if near(rot) {
		return dragRotate
	}
	for i, mode := range [4]dragMode{dragScaleNW, dragScaleNE, dragScaleSE, dragScaleSW} {
		if near(corners[i]) {
			return mode
		}
	}
	return dragNone
}

// hitTest returns the topmost visible, unlocked element under p.
func (e *Engine) hitTest(p vector.Pt) string {
	order := element.SortByZ(e.page.Elements)
	for i := len(order) - 1; i >= 0; i-- {
		el := order[i]
		if interactive(el) && pickBox(el).Hit(p) {
			return el.Common().ID
		}
	}
	return ""
}

// pickBox is the element's box widened to at least twice the handle radius
// on each axis, so lines and other hairline elements can still be picked.
func pickBox(el element.Element) vector.Box {
	b := el.Common().Box()
	const minPick = 2 * HandleRadius
	r := &b.Rect
	if r.W < minPick {
		r.X -= (minPick - r.W) / 2
		r.W = minPick
	}
	if r.H < minPick {
		r.Y -= (minPick - r.H) / 2
		r.H = minPick
	}
	return b
}

// PointerDown starts a selection, marquee or transform.
func (e *Engine) PointerDown(p vector.Pt, mods Modifiers) {
	if e.disposed {
		return
	}
	if e.state == TextEditing {
		if el, ok := e.page.Find(e.text.id); ok && pickBox(el).Hit(p) {
			return
		}
		e.EndTextEdit()
	}
	if e.state == Transforming {
		e.finishDrag()
	}
	if mode := e.handleAt(p); mode != dragNone && !mods.Shift {
		e.beginTransform(mode, p)
		return
	}
	hit := e.hitTest(p)
	switch {
	case hit == "":
		base := []string(nil)
		if mods.Shift {
			base = slices.Clone(e.selection)
		} else {
			e.setSelection(nil)
		}
		e.drag = dragState{mode: dragMarquee, start: p, current: p, base: base}
	case mods.Shift:
		next := slices.Clone(e.selection)
		if i := slices.Index(next, hit); i >= 0 {
			next = slices.Delete(next, i, i+1)
		} else {
			next = append(next, hit)
		}
		e.setSelection(next)
	default:
		if !slices.Contains(e.selection, hit) {
			e.setSelection([]string{hit})
		}
		e.beginTransform(dragMove, p)
	}
}

func (e *Engine) beginTransform(mode dragMode, p vector.Pt) {
	frame, ok := e.selectionFrame()
	if !ok {
		return
	}
	var orig []element.Element
	for _, el := range e.selected() {
		if el.Common().Locked {
			continue
		}
		orig = append(orig, element.Clone(el))
	}
	if len(orig) == 0 {
		return
	}
	e.drag = dragState{mode: mode, start: p, current: p, frame: frame, orig: orig}
}

// PointerMove advances the active drag.
func (e *Engine) PointerMove(p vector.Pt, mods Modifiers) {
	if e.disposed || e.drag.mode == dragNone {
		return
	}
	e.drag.current = p
	if e.drag.mode == dragMarquee {
		return
	}
	if !e.drag.moved {
		if !e.enter(Transforming) {
			e.drag = dragState{}
			return
		}
		e.drag.moved = true
	}
	switch e.drag.mode {
	case dragMove:
		e.moveTo(p)
	case dragRotate:
		e.rotateTo(p, mods.Shift)
	default:
		e.scaleTo(p, mods.Shift)
	}
}

// moveTo translates the selection by the pointer delta, snapped against the
// page centre, the other elements and the ruler guides.
func (e *Engine) moveTo(p vector.Pt) {
	d := &e.drag
	dx, dy := p.X-d.start.X, p.Y-d.start.Y
	moving := d.frame.Bounds().Offset(dx, dy)
	res := vector.Snap(moving, e.snapOptions())
	dx += res.Rect.X - moving.X
	dy += res.Rect.Y - moving.Y

	e.guides = res.Guides
	if e.cb.OnGuides != nil {
		e.cb.OnGuides(e.Guides())
	}
	for _, o := range d.orig {
		ob := o.Common()
		cur, ok := e.page.Find(ob.ID)
		if !ok {
			continue
		}
		cb := cur.Common()
		nx, ny := ob.X+dx, ob.Y+dy
		e.surface.Translate(ob.ID, nx-cb.X, ny-cb.Y)
		cb.X, cb.Y = nx, ny
	}
}

func (e *Engine) snapOptions() vector.SnapOptions {
	opts := vector.SnapOptions{
		Threshold:      e.cfg.SnapThreshold,
		RulerThreshold: e.cfg.RulerSnap,
		Page:           e.pageRect(),
	}
	for _, el := range element.SortByZ(e.page.Elements) {
		b := el.Common()
		if !interactive(el) || e.isDragged(b.ID) {
			continue
		}
		opts.Targets = append(opts.Targets, vector.SnapTarget{ID: b.ID, Rect: b.Bounds()})
	}
	for _, g := range e.rulers {
		opts.Rulers = append(opts.Rulers, vector.Ruler{Orientation: g.Orientation, Position: g.Position})
	}
	return opts
}

func (e *Engine) isDragged(id string) bool {
	for _, o := range e.drag.orig {
		if o.Common().ID == id {
			return true
		}
	}
	return false
}

// scaleTo resizes the selection frame so the dragged corner follows the
// pointer while the opposite corner stays put. Shift keeps the aspect ratio.
func (e *Engine) scaleTo(p vector.Pt, keepAspect bool) {
	d := &e.drag
	next := scaleFrame(d.frame, d.mode, p, keepAspect)
	from := d.frame.Rect
	sx, sy := ratio(next.W, from.W), ratio(next.H, from.H)
	for _, o := range d.orig {
		cur, ok := e.page.Find(o.Common().ID)
		if !ok {
			continue
		}
		target := next
		if len(d.orig) > 1 || len(e.selection) > 1 {
			ob := o.Common()
			target = vector.R(
				next.X+(ob.X-from.X)*sx,
				next.Y+(ob.Y-from.Y)*sy,
				ob.Width*sx,
				ob.Height*sy,
			)
		}
		resizeFrom(cur, o, target)
	}
}

// resizeFrom gives cur the rect r starting from its pointer-down state
// orig. Groups scale their children along with the frame.
func resizeFrom(cur, orig element.Element, r vector.Rect) {
	g, ok := cur.(*element.Group)
	og, wasGroup := orig.(*element.Group)
	if !ok || !wasGroup {
		cur.Common().SetRect(r)
		return
	}
	g.Children = element.CloneAll(og.Children)
	g.SetRect(og.Rect())
	g.Resize(r)
}

// scaleFrame computes the new unrotated rect of b in the frame's own
// rotated coordinate system.
func scaleFrame(b vector.Box, mode dragMode, p vector.Pt, keepAspect bool) vector.Rect {
	r := b.Rect
	c := r.Center()
	theta := vector.Radians(b.Rotation)
	q := vector.Rotate(-theta).Apply(vector.Pt{X: p.X - c.X, Y: p.Y - c.Y})

	sx, sy := 1.0, 1.0
	switch mode {
	case dragScaleNW:
		sx, sy = -1, -1
	case dragScaleNE:
		sy = -1
	case dragScaleSW:
		sx = -1
	}
	ax, ay := -sx*r.W/2, -sy*r.H/2
	w := math.Max(minTransformSize, sx*(q.X-ax))
	h := math.Max(minTransformSize, sy*(q.Y-ay))
	if keepAspect && r.W > 0 && r.H > 0 {
		k := math.Max(w/r.W, h/r.H)
		w, h = r.W*k, r.H*k
	}
	mid := vector.Rotate(theta).Apply(vector.Pt{X: ax + sx*w/2, Y: ay + sy*h/2})
	return vector.R(c.X+mid.X-w/2, c.Y+mid.Y-h/2, w, h)
}

// rotateTo turns the selection about the frame centre by the angle swept by
// the pointer. Shift snaps the result to 15 degree steps.
func (e *Engine) rotateTo(p vector.Pt, step bool) {
	d := &e.drag
	c := d.frame.Rect.Center()
	a0 := math.Atan2(d.start.Y-c.Y, d.start.X-c.X)
	a1 := math.Atan2(p.Y-c.Y, p.X-c.X)
	delta := vector.Degrees(a1 - a0)
	if step {
		delta = snapAngle(d.frame.Rotation+delta) - d.frame.Rotation
	}
	rot := vector.Rotate(vector.Radians(delta))
	single := len(d.orig) == 1 && len(e.selection) == 1
	for _, o := range d.orig {
		cur, ok := e.page.Find(o.Common().ID)
		if !ok {
			continue
		}
		ob, cb := o.Common(), cur.Common()
		cb.Rotation = normalizeAngle(ob.Rotation + delta)
		if single {
			continue
		}
		oc := ob.Rect().Center()
		v := rot.Apply(vector.Pt{X: oc.X - c.X, Y: oc.Y - c.Y})
		cb.X = c.X + v.X - ob.Width/2
		cb.Y = c.Y + v.Y - ob.Height/2
	}
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	return a / b
}

func snapAngle(deg float64) float64 { return math.Round(deg/rotateStep) * rotateStep }

func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return vector.FloatRound(deg, 6)
}

// PointerUp commits the drag: one change per transformed element, or the
// marquee selection.
func (e *Engine) PointerUp(p vector.Pt, mods Modifiers) {
	if e.disposed || e.drag.mode == dragNone {
		return
	}
	if e.drag.mode == dragMarquee {
		e.drag.current = p
		e.finishMarquee()
		return
	}
	if e.drag.moved || p != e.drag.start {
		e.PointerMove(p, mods)
	}
	e.finishDrag()
}

// finishDrag reports the final geometry of every transformed element and
// leaves the Transforming state.
func (e *Engine) finishDrag() {
	d := e.drag
	e.drag = dragState{}
	e.clearGuides()
	if !d.moved {
		return
	}
	e.settle()
	if d.mode != dragMove {
		e.stale = true
	}
	for _, o := range d.orig {
		cur, ok := e.page.Find(o.Common().ID)
		if !ok {
			continue
		}
		if e.cb.OnElementChange != nil {
			e.cb.OnElementChange(o.Common().ID, element.GeometryPatch(cur.Common()))
		}
	}
	e.committed()
}

func (e *Engine) finishMarquee() {
	d := e.drag
	e.drag = dragState{}
	r := rectFrom(d.start, d.current)
	if r.W == 0 && r.H == 0 {
		return
	}
	ids := slices.Clone(d.base)
	for _, el := range element.SortByZ(e.page.Elements) {
		b := el.Common()
		if interactive(el) && pickBox(el).Bounds().Overlaps(r) && !slices.Contains(ids, b.ID) {
			ids = append(ids, b.ID)
		}
	}
	e.setSelection(ids)
}

// Marquee returns the rubber-band rectangle while one is being dragged.
func (e *Engine) Marquee() (vector.Rect, bool) {
	if e.drag.mode != dragMarquee {
		return vector.Rect{}, false
	}
	return rectFrom(e.drag.start, e.drag.current), true
}

func rectFrom(a, b vector.Pt) vector.Rect {
	return vector.R(math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))
}

// DoubleClick reports placeholders to the host and enters text editing on
// text elements.
func (e *Engine) DoubleClick(p vector.Pt) {
	if e.disposed || e.state == Transforming {
		return
	}
	id := e.hitTest(p)
	if id == "" {
		return
	}
	el, _ := e.page.Find(id)
	if element.IsPlaceholder(el) {
		if e.cb.OnPlaceholderClick != nil {
			e.cb.OnPlaceholderClick(id)
		}
		return
	}
	if _, ok := el.(*element.Text); ok {
		e.BeginTextEdit(id)
	}
}
