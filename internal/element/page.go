/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package element

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Page is one fixed-size canvas. Elements keep insertion order; paint order
// is zIndex order (see SortByZ).
type Page struct {
	ID              string  `json:"id"`
	Name            string  `json:"name,omitempty"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	Elements        List    `json:"elements"`
}

// Document is the snapshot a host persists: an ordered set of pages.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Pages     []Page    `json:"pages"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SortByZ returns elems in paint order. Equal zIndex values keep their
// relative order.
func SortByZ(elems []Element) []Element {
	out := slices.Clone(elems)
	slices.SortStableFunc(out, func(a, b Element) int {
		return a.Common().ZIndex - b.Common().ZIndex
	})
	return out
}

// MaxZ returns the highest zIndex, or 0 for an empty list.
func MaxZ(elems []Element) int {
	m := 0
	for i, e := range elems {
		if z := e.Common().ZIndex; i == 0 || z > m {
			m = z
		}
	}
	return m
}

// IndexOf returns the position of the top-level element with id, or -1.
func (p *Page) IndexOf(id string) int {
	for i, e := range p.Elements {
		if e.Common().ID == id {
			return i
		}
	}
	return -1
}

// Find returns the top-level element with id.
func (p *Page) Find(id string) (Element, bool) {
	if i := p.IndexOf(id); i >= 0 {
		return p.Elements[i], true
	}
	return nil, false
}

// FindDeep also searches group children.
func (p *Page) FindDeep(id string) (Element, bool) {
	var found Element
	Walk(p.Elements, func(e Element) bool {
		if e.Common().ID == id {
			found = e
			return false
		}
		return true
	})
	return found, found != nil
}

// Remove deletes the top-level element with id and reports whether it
// existed.
func (p *Page) Remove(id string) bool {
	i := p.IndexOf(id)
	if i < 0 {
		return false
	}
	p.Elements = slices.Delete(p.Elements, i, i+1)
	return true
}

// Replace swaps in e for the top-level element with the same id.
func (p *Page) Replace(e Element) bool {
	i := p.IndexOf(e.Common().ID)
	if i < 0 {
		return false
	}
	p.Elements[i] = e
	return true
}

// Clone deep-copies the page.
func (p Page) Clone() Page {
	c := p
	c.Elements = CloneAll(p.Elements)
	return c
}

// Walk visits elems depth-first, descending into groups, until fn returns
// false.
func Walk(elems []Element, fn func(Element) bool) bool {
	for _, e := range elems {
		if !fn(e) {
			return false
		}
		if g, ok := e.(*Group); ok {
			if !Walk(g.Children, fn) {
				return false
			}
		}
	}
	return true
}

// Validate checks the page invariants: unique ids (including group children),
// known types, non-negative sizes and opacity within 0..1.
func (p *Page) Validate() error {
	var errs []error
	if p.Width <= 0 || p.Height <= 0 {
		errs = append(errs, fmt.Errorf("page %q: invalid size %gx%g", p.ID, p.Width, p.Height))
	}
	seen := make(map[string]bool)
	Walk(p.Elements, func(e Element) bool {
		b := e.Common()
		switch {
		case b.ID == "":
			errs = append(errs, fmt.Errorf("page %q: element without id", p.ID))
		case seen[b.ID]:
			errs = append(errs, fmt.Errorf("page %q: duplicate element id %q", p.ID, b.ID))
		}
		seen[b.ID] = true
		if _, err := New(b.Type); err != nil {
			errs = append(errs, fmt.Errorf("element %q: %w", b.ID, err))
		}
		if b.Width < 0 || b.Height < 0 {
			errs = append(errs, fmt.Errorf("element %q: negative size %gx%g", b.ID, b.Width, b.Height))
		}
		if b.Opacity < 0 || b.Opacity > 1 {
			errs = append(errs, fmt.Errorf("element %q: opacity %g out of range", b.ID, b.Opacity))
		}
		return true
	})
	return errors.Join(errs...)
}

// Validate checks every page and that page ids are unique.
func (d *Document) Validate() error {
	var errs []error
	ids := make(map[string]bool)
	for i := range d.Pages {
		pg := &d.Pages[i]
		if ids[pg.ID] {
			errs = append(errs, fmt.Errorf("duplicate page id %q", pg.ID))
		}
		ids[pg.ID] = true
		if err := pg.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
