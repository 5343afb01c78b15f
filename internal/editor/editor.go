/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the interaction engine for one page: selection, pointer
// transforms with smart guides, text editing, clipboard, layering, grouping
// and keyboard shortcuts. The host owns the page; the engine keeps a working
// copy, drives a render surface and reports every change through Callbacks.
//
// An Engine is driven from a single event loop and is not safe for
// concurrent use.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/google/uuid"

	"tripcanvas/internal/config"
	"tripcanvas/internal/element"
	"tripcanvas/internal/generator"
	applog "tripcanvas/internal/log"
	"tripcanvas/internal/render"
	"tripcanvas/internal/vector"
)

var (
	// ErrUnknownElement is returned for ids that are not on the page.
	ErrUnknownElement = errors.New("unknown element")
	// ErrDisposed is returned by calls made after Dispose.
	ErrDisposed = errors.New("editor disposed")
)

// State is the interaction state of an engine.
type State int

const (
	Idle State = iota
	SelectedSingle
	SelectedMulti
	Transforming
	TextEditing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SelectedSingle:
		return "selected-single"
	case SelectedMulti:
		return "selected-multi"
	case Transforming:
		return "transforming"
	case TextEditing:
		return "text-editing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// transitions lists the states reachable from each state.
var transitions = map[State][]State{
	Idle:           {SelectedSingle, SelectedMulti},
	SelectedSingle: {Idle, SelectedMulti, Transforming, TextEditing},
	SelectedMulti:  {Idle, SelectedSingle, Transforming},
	Transforming:   {SelectedSingle, SelectedMulti},
	TextEditing:    {Idle, SelectedSingle},
}

// Overlap is a pair of elements whose bounds share more than the configured
// share of the smaller one. Ratio is intersection area / smaller area.
type Overlap struct {
	A, B  string
	Ratio float64
}

// Callbacks is the outbound contract to the host. Nil callbacks are skipped.
type Callbacks struct {
	OnElementChange    func(id string, patch element.Patch)
	OnElementAdd       func(e element.Element)
	OnElementDelete    func(id string)
	// OnSelect receives the id when exactly one element is selected and ""
	// when the selection is cleared.
	OnSelect           func(id string)
	OnPlaceholderClick func(id string)
	OnOverlaps         func(pairs []Overlap)
	// OnGuides publishes the smart guides of the current drag frame; nil
	// clears them.
	OnGuides           func(guides []vector.GuideLine)
}

// Options configures an engine. Zero values select the defaults.
type Options struct {
	Editor   config.EditorConfig
	Renderer *render.Renderer
	Surface  *render.DisplayList
	Registry *generator.Registry
	// NewID mints ids for created elements; the default is "<type>-<uuid>".
	NewID func(t element.Type) string
}

// Engine is the editor bound to one page.
type Engine struct {
	page     element.Page
	cb       Callbacks
	cfg      config.EditorConfig
	rnd      *render.Renderer
	surface  *render.DisplayList
	registry *generator.Registry
	newID    func(element.Type) string
	log      *slog.Logger

	state     State
	selection []string
	clipboard []element.Element
	rulers    []RulerGuide
	guides    []vector.GuideLine
	drag      dragState
	text      textEdit

	// stale marks a surface that no longer matches the working page.
	stale    bool
	disposed bool
}

// New binds an engine to a copy of page. Nothing is rendered until Render
// or Sync is called.
func New(page element.Page, cb Callbacks, opts Options) *Engine {
	def := config.Defaults().Editor
	cfg := opts.Editor
	if cfg.SnapThreshold <= 0 {
		cfg.SnapThreshold = def.SnapThreshold
	}
	if cfg.PasteOffset == 0 {
		cfg.PasteOffset = def.PasteOffset
	}
	if cfg.Nudge <= 0 {
		cfg.Nudge = def.Nudge
	}
	if cfg.NudgeLarge <= 0 {
		cfg.NudgeLarge = def.NudgeLarge
	}
	if cfg.RulerSnap <= 0 {
		cfg.RulerSnap = def.RulerSnap
	}
	if cfg.OverlapRatio <= 0 {
		cfg.OverlapRatio = def.OverlapRatio
	}
	e := &Engine{
		page:     page.Clone(),
		cb:       cb,
		cfg:      cfg,
		rnd:      opts.Renderer,
		surface:  opts.Surface,
		registry: opts.Registry,
		newID:    opts.NewID,
		stale:    true,
	}
	if e.rnd == nil {
		e.rnd = render.New(nil)
	}
	if e.surface == nil {
		e.surface = render.NewDisplayList()
	}
	if e.registry == nil {
		e.registry = generator.Default()
	}
	if e.newID == nil {
		e.newID = func(t element.Type) string { return string(t) + "-" + uuid.NewString() }
	}
	e.log = applog.WithComponent("editor").With(slog.String("page", page.ID))
	return e
}

// State returns the current interaction state.
func (e *Engine) State() State { return e.state }

// Page returns a copy of the working page.
func (e *Engine) Page() element.Page { return e.page.Clone() }

// Surface is the display list the engine renders into.
func (e *Engine) Surface() *render.DisplayList { return e.surface }

// Element returns a copy of the top-level element with id.
func (e *Engine) Element(id string) (element.Element, bool) {
	el, ok := e.page.Find(id)
	if !ok {
		return nil, false
	}
	return element.Clone(el), true
}

// Selection returns the selected ids in selection order.
func (e *Engine) Selection() []string { return slices.Clone(e.selection) }

// Guides returns the smart guides of the current drag frame.
func (e *Engine) Guides() []vector.GuideLine { return slices.Clone(e.guides) }

// enter performs a guarded state transition.
func (e *Engine) enter(s State) bool {
	if s == e.state {
		return true
	}
	if !slices.Contains(transitions[e.state], s) {
		e.log.Debug("transition rejected", slog.String("from", e.state.String()), slog.String("to", s.String()))
		return false
	}
	e.state = s
	return true
}

// settle moves to the selection state matching the current selection.
func (e *Engine) settle() {
	switch len(e.selection) {
	case 0:
		e.state = Idle
	case 1:
		e.state = SelectedSingle
	default:
		e.state = SelectedMulti
	}
}

// Select replaces the selection. Unknown ids reject the whole call.
func (e *Engine) Select(ids ...string) error {
	if e.disposed {
		return ErrDisposed
	}
	for _, id := range ids {
		if e.page.IndexOf(id) < 0 {
			return fmt.Errorf("select %q: %w", id, ErrUnknownElement)
		}
	}
	if e.state == TextEditing {
		e.EndTextEdit()
	}
	e.setSelection(ids)
	return nil
}

// ClearSelection deselects everything.
func (e *Engine) ClearSelection() {
	if e.disposed {
		return
	}
	if e.state == TextEditing {
		e.EndTextEdit()
	}
	e.setSelection(nil)
}

// SelectAll selects every visible, unlocked element.
func (e *Engine) SelectAll() int {
	var ids []string
	for _, el := range element.SortByZ(e.page.Elements) {
		if interactive(el) {
			ids = append(ids, el.Common().ID)
		}
	}
	e.setSelection(ids)
	return len(ids)
}

func (e *Engine) setSelection(ids []string) {
	var next []string
	for _, id := range ids {
		if !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	prev := e.selection
	e.selection = next
	if e.state != Transforming && e.state != TextEditing {
		e.settle()
	}
	if e.cb.OnSelect == nil {
		return
	}
	switch {
	case len(next) == 1 && (len(prev) != 1 || prev[0] != next[0]):
		e.cb.OnSelect(next[0])
	case len(next) == 0 && len(prev) > 0:
		e.cb.OnSelect("")
	}
}

// selected returns the selected elements that still exist, in paint order.
func (e *Engine) selected() []element.Element {
	var out []element.Element
	for _, el := range element.SortByZ(e.page.Elements) {
		if slices.Contains(e.selection, el.Common().ID) {
			out = append(out, el)
		}
	}
	return out
}

func interactive(el element.Element) bool {
	b := el.Common()
	return b.Visible && !b.Locked
}

// Render rebuilds the surface from the working page.
func (e *Engine) Render(ctx context.Context) error {
	if e.disposed {
		return ErrDisposed
	}
	return e.rebuild(ctx)
}

func (e *Engine) rebuild(ctx context.Context) error {
	err := e.rnd.Render(ctx, e.surface, e.page, render.Options{Editable: true})
	if err != nil {
		return fmt.Errorf("render page %s: %w", e.page.ID, err)
	}
	e.stale = false
	return nil
}

// Sync adopts the host's page. The surface is rebuilt when the page id or
// element count changes, or when an element changed in more than position;
// pure moves are patched onto the existing primitives. Sync is ignored while
// a pointer transform is in progress.
func (e *Engine) Sync(ctx context.Context, page element.Page) error {
	if e.disposed {
		return ErrDisposed
	}
	if e.state == Transforming {
		e.log.Debug("sync suppressed during transform")
		return nil
	}
	ctx = applog.WithPage(ctx, page.ID)
	if e.stale || page.ID != e.page.ID || len(page.Elements) != len(e.page.Elements) {
		return e.adopt(ctx, page)
	}
	type move struct {
		id     string
		dx, dy float64
	}
	var moves []move
	for _, next := range page.Elements {
		id := next.Common().ID
		cur, ok := e.page.Find(id)
		if !ok || !sameExceptPosition(cur, next) {
			return e.adopt(ctx, page)
		}
		nb, cb := next.Common(), cur.Common()
		if nb.X != cb.X || nb.Y != cb.Y {
			moves = append(moves, move{id, nb.X - cb.X, nb.Y - cb.Y})
		}
	}
	e.page = page.Clone()
	for _, m := range moves {
		e.surface.Translate(m.id, m.dx, m.dy)
	}
	return nil
}

func (e *Engine) adopt(ctx context.Context, page element.Page) error {
	if page.ID != e.page.ID {
		e.log = applog.WithComponent("editor").With(slog.String("page", page.ID))
		e.rulers = nil
		e.clearGuides()
	}
	e.page = page.Clone()
	kept := slices.DeleteFunc(slices.Clone(e.selection), func(id string) bool { return e.page.IndexOf(id) < 0 })
	if e.state == TextEditing && e.page.IndexOf(e.text.id) < 0 {
		e.text = textEdit{}
		e.state = Idle
	}
	if e.state != TextEditing {
		e.setSelection(kept)
	}
	return e.rebuild(ctx)
}

func sameExceptPosition(a, b element.Element) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	ca, cb := element.Clone(a), element.Clone(b)
	ca.Common().X, ca.Common().Y = 0, 0
	cb.Common().X, cb.Common().Y = 0, 0
	return reflect.DeepEqual(ca, cb)
}

// Dispose releases the surface. Image loads still in flight complete as
// no-ops and every later call is ignored.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.rnd.Dispose()
	e.surface.Release()
	e.drag = dragState{}
	e.guides = nil
	e.state = Idle
}

// Disposed reports whether Dispose was called.
func (e *Engine) Disposed() bool { return e.disposed }

// change applies patch to the working element and reports it.
func (e *Engine) change(id string, patch element.Patch) {
	el, ok := e.page.Find(id)
	if !ok || patch.Empty() {
		return
	}
	patch.Apply(el)
	if e.cb.OnElementChange != nil {
		e.cb.OnElementChange(id, patch)
	}
}

func (e *Engine) add(el element.Element) {
	e.page.Elements = append(e.page.Elements, el)
	e.stale = true
	if e.cb.OnElementAdd != nil {
		e.cb.OnElementAdd(element.Clone(el))
	}
}

func (e *Engine) remove(id string) bool {
	if !e.page.Remove(id) {
		return false
	}
	e.stale = true
	if e.cb.OnElementDelete != nil {
		e.cb.OnElementDelete(id)
	}
	return true
}

func (e *Engine) clearGuides() {
	if e.guides == nil {
		return
	}
	e.guides = nil
	if e.cb.OnGuides != nil {
		e.cb.OnGuides(nil)
	}
}

func (e *Engine) pageRect() vector.Rect { return vector.R(0, 0, e.page.Width, e.page.Height) }
