/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Box is the frame of a placed object: an axis-aligned rectangle that is
// rotated (degrees) about its own centre and optionally mirrored. It is the
// unit used for hit-testing, selection handles and rotated bounds.
type Box struct {
	Rect     Rect
	Rotation float64
	FlipX    bool
	FlipY    bool
}

// Transform maps coordinates of the unrotated rect into page space.
func (b Box) Transform() Affine2D {
	c := b.Rect.Center()
	m := Translate(c.X, c.Y)
	if b.Rotation != 0 {
		m = m.Mul(Rotate(Radians(b.Rotation)))
	}
	if b.FlipX || b.FlipY {
		sx, sy := 1.0, 1.0
		if b.FlipX {
			sx = -1
		}
		if b.FlipY {
			sy = -1
		}
		m = m.Mul(Scale(sx, sy))
	}
	return m.Mul(Translate(-c.X, -c.Y))
}

// Corners returns the four page-space corners: top-left, top-right,
// bottom-right, bottom-left of the unrotated rect.
func (b Box) Corners() [4]Pt {
	m := b.Transform()
	r := b.Rect
	return [4]Pt{
		m.Apply(Pt{r.X, r.Y}),
		m.Apply(Pt{r.X + r.W, r.Y}),
		m.Apply(Pt{r.X + r.W, r.Y + r.H}),
		m.Apply(Pt{r.X, r.Y + r.H}),
	}
}

// Bounds returns the axis-aligned bounds of the rotated box.
func (b Box) Bounds() Rect {
	if b.Rotation == 0 {
		return b.Rect
	}
	return b.Transform().TransformRect(b.Rect)
}

// Hit reports whether p lies inside the rotated box.
func (b Box) Hit(p Pt) bool {
	if b.Rotation == 0 {
		return b.Rect.Contains(p)
	}
	q := b.Transform().Invert().Apply(p)
	return b.Rect.Contains(q)
}

// HitEllipse reports whether p lies in the ellipse inscribed in r.
func HitEllipse(r Rect, p Pt) bool {
	rx, ry := r.W/2, r.H/2
	if rx == 0 || ry == 0 {
		return false
	}
	c := r.Center()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}
