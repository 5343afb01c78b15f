/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package generator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"tripcanvas/internal/element"
)

// ErrUnknownBlock is returned when a definition id is not registered.
var ErrUnknownBlock = errors.New("unknown block")

// Definition describes one generator offered to the user.
type Definition struct {
	ID          string
	Name        string
	Description string
	Category    string
	Icon        string
	Generate    Func
}

// Registry holds definitions in registration order.
type Registry struct {
	mu    sync.RWMutex
	order []string
	defs  map[string]Definition
}

// NewRegistry returns a registry holding defs. Duplicate or invalid
// definitions panic, since they are fixed at build time.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{defs: make(map[string]Definition)}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry of built-in travel blocks.
func Default() *Registry {
	defaultOnce.Do(func() { defaultReg = NewRegistry(builtins()...) })
	return defaultReg
}

// Register adds d. The id must be unique and Generate set.
func (r *Registry) Register(d Definition) error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("block id is empty")
	}
	if d.Generate == nil {
		return fmt.Errorf("block %q has no generator", d.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.defs[d.ID]; dup {
		return fmt.Errorf("block %q already registered", d.ID)
	}
	r.defs[d.ID] = d
	r.order = append(r.order, d.ID)
	return nil
}

// Get returns the definition with id.
func (r *Registry) Get(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[id]
	return d, ok
}

// All lists every definition in registration order.
func (r *Registry) All() []Definition {
	return r.filter(func(Definition) bool { return true })
}

// ByCategory lists the definitions of one category.
func (r *Registry) ByCategory(cat string) []Definition {
	return r.filter(func(d Definition) bool { return d.Category == cat })
}

// Search matches q case-insensitively against name and description. An
// empty query matches everything.
func (r *Registry) Search(q string) []Definition {
	q = strings.ToLower(strings.TrimSpace(q))
	return r.filter(func(d Definition) bool {
		return q == "" ||
			strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Description), q)
	})
}

// Categories lists the categories in use, known ones first in a fixed
// order, the rest in registration order.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	for _, id := range r.order {
		seen[r.defs[id].Category] = true
	}
	var out []string
	for _, c := range []string{CategorySchedule, CategoryInfo, CategoryImage, CategoryLayout} {
		if seen[c] {
			out = append(out, c)
			delete(seen, c)
		}
	}
	for _, id := range r.order {
		if c := r.defs[id].Category; seen[c] {
			out = append(out, c)
			delete(seen, c)
		}
	}
	return out
}

// Generate runs the generator registered under id.
func (r *Registry) Generate(id string, o Options) ([]element.Element, error) {
	d, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, id)
	}
	if o.Width <= 0 {
		o.Width = ContentWidth
	}
	return d.Generate(o), nil
}

func (r *Registry) filter(keep func(Definition) bool) []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Definition
	for _, id := range r.order {
		if d := r.defs[id]; keep(d) {
			out = append(out, d)
		}
	}
	return out
}
