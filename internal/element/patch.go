/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package element

// Patch is a partial element update reported to the host. Only non-nil
// fields changed.
type Patch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	ZIndex   *int     `json:"zIndex,omitempty"`
	Locked   *bool    `json:"locked,omitempty"`
	FlipX    *bool    `json:"flipX,omitempty"`
	FlipY    *bool    `json:"flipY,omitempty"`
	Content  *string  `json:"content,omitempty"`
}

// GeometryPatch captures x, y, width, height and rotation of b.
func GeometryPatch(b *Base) Patch {
	x, y, w, h, r := b.X, b.Y, b.Width, b.Height, b.Rotation
	return Patch{X: &x, Y: &y, Width: &w, Height: &h, Rotation: &r}
}

// Apply writes the set fields into e. A size change on a group scales its
// children. Content only applies to text.
func (p Patch) Apply(e Element) {
	b := e.Common()
	if p.X != nil {
		b.X = *p.X
	}
	if p.Y != nil {
		b.Y = *p.Y
	}
	r := b.Rect()
	if p.Width != nil {
		r.W = *p.Width
	}
	if p.Height != nil {
		r.H = *p.Height
	}
	if g, ok := e.(*Group); ok {
		g.Resize(r)
	} else {
		b.SetRect(r)
	}
	if p.Rotation != nil {
		b.Rotation = *p.Rotation
	}
	if p.ZIndex != nil {
		b.ZIndex = *p.ZIndex
	}
	if p.Locked != nil {
		b.Locked = *p.Locked
	}
	if p.FlipX != nil {
		b.FlipX = *p.FlipX
	}
	if p.FlipY != nil {
		b.FlipY = *p.FlipY
	}
	if p.Content != nil {
		if t, ok := e.(*Text); ok {
			t.Content = *p.Content
		}
	}
}

// Empty reports a patch that changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}
