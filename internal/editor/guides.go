/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"tripcanvas/internal/vector"
)

// RulerGuide is a user-placed guide line. Vertical guides sit at a fixed x,
// horizontal guides at a fixed y. Moving elements snap to them.
type RulerGuide struct {
	ID          string
	Orientation string
	Position    float64
}

// AddRulerGuide places a guide and returns its id.
func (e *Engine) AddRulerGuide(orientation string, pos float64) (string, error) {
	if orientation != vector.Horizontal && orientation != vector.Vertical {
		return "", fmt.Errorf("ruler guide orientation %q", orientation)
	}
	if e.offPage(orientation, pos) {
		return "", fmt.Errorf("ruler guide at %g is outside the page", pos)
	}
	g := RulerGuide{ID: "guide-" + uuid.NewString(), Orientation: orientation, Position: pos}
	e.rulers = append(e.rulers, g)
	return g.ID, nil
}

// MoveRulerGuide repositions a guide. A guide dragged off the page is
// removed; kept reports whether it still exists.
func (e *Engine) MoveRulerGuide(id string, pos float64) (kept bool, err error) {
	i := e.rulerIndex(id)
	if i < 0 {
		return false, fmt.Errorf("ruler guide %q: %w", id, ErrUnknownElement)
	}
	if e.offPage(e.rulers[i].Orientation, pos) {
		e.rulers = slices.Delete(e.rulers, i, i+1)
		return false, nil
	}
	e.rulers[i].Position = pos
	return true, nil
}

// RemoveRulerGuide deletes a guide.
func (e *Engine) RemoveRulerGuide(id string) bool {
	i := e.rulerIndex(id)
	if i < 0 {
		return false
	}
	e.rulers = slices.Delete(e.rulers, i, i+1)
	return true
}

// RulerGuides returns the guides in creation order.
func (e *Engine) RulerGuides() []RulerGuide { return slices.Clone(e.rulers) }

func (e *Engine) rulerIndex(id string) int {
	return slices.IndexFunc(e.rulers, func(g RulerGuide) bool { return g.ID == id })
}

func (e *Engine) offPage(orientation string, pos float64) bool {
	limit := e.page.Width
	if orientation == vector.Horizontal {
		limit = e.page.Height
	}
	return pos < 0 || pos > limit
}
