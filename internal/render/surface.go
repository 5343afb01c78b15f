/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"reflect"
	"sync"

	"tripcanvas/internal/vector"
)

// Background is the page fill and the logical canvas size.
type Background struct {
	Color  vector.Color
	Width  float64
	Height float64
}

// Surface receives primitives. Render calls Clear, then Add with every
// primitive in paint order, then Flush exactly once.
type Surface interface {
	Clear(bg Background)
	Add(prims ...Primitive)
	Flush()
}

// DisplayList is an in-memory Surface. It is what the editor patches and
// what exporters draw.
type DisplayList struct {
	mu       sync.RWMutex
	bg       Background
	prims    []Primitive
	flushes  int
	released bool
}

// NewDisplayList returns an empty list.
func NewDisplayList() *DisplayList { return &DisplayList{} }

func (d *DisplayList) Clear(bg Background) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bg = bg
	d.prims = d.prims[:0]
	d.released = false
}

func (d *DisplayList) Add(prims ...Primitive) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prims = append(d.prims, prims...)
}

func (d *DisplayList) Flush() {
	d.mu.Lock()
	d.flushes++
	d.mu.Unlock()
}

// Release drops every primitive, including decoded bitmaps.
func (d *DisplayList) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prims = nil
	d.released = true
}

// Released reports whether Release was called since the last Clear.
func (d *DisplayList) Released() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.released
}

// Background returns the page background set by the last Clear.
func (d *DisplayList) Background() Background {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.bg
}

// Primitives returns a copy of the list in paint order.
func (d *DisplayList) Primitives() []Primitive {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Primitive, len(d.prims))
	copy(out, d.prims)
	return out
}

// Len returns the number of primitives.
func (d *DisplayList) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.prims)
}

// Flushes counts Flush calls.
func (d *DisplayList) Flushes() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.flushes
}

// Lookup returns the primitives drawn for id, including those of the
// children when id names a group.
func (d *DisplayList) Lookup(id string) []Primitive {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Primitive
	for i := range d.prims {
		if d.prims[i].Owns(id) {
			out = append(out, d.prims[i])
		}
	}
	return out
}

// ElementIDs lists the distinct top-level element ids in paint order.
func (d *DisplayList) ElementIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for i := range d.prims {
		id := d.prims[i].ElementID
		if len(d.prims[i].Frames) > 0 {
			id = d.prims[i].Frames[0].ID
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Translate moves every primitive drawn for id by dx, dy. It reports
// whether anything matched.
func (d *DisplayList) Translate(id string, dx, dy float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	hit := false
	for i := range d.prims {
		p := &d.prims[i]
		switch {
		case p.ElementID == id:
			p.translate("", dx, dy)
			hit = true
		case p.Owns(id):
			p.translate(id, dx, dy)
			hit = true
		}
	}
	return hit
}

// Equal reports whether both lists hold the same background and the same
// primitives in the same order.
func (d *DisplayList) Equal(o *DisplayList) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil {
		return false
	}
	a, b := d.Primitives(), o.Primitives()
	if d.Background() != o.Background() || len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Diff returns the index of the first differing primitive, or -1 when the
// lists are equal. Useful in test failures.
func (d *DisplayList) Diff(o *DisplayList) int {
	a, b := d.Primitives(), o.Primitives()
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if !reflect.DeepEqual(a[i], b[i]) {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}
