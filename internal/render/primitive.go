/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns a page into a flat list of drawing primitives. The
// same list feeds the interactive editor surface and every exporter, so a
// preview and an export of a page are drawn from identical data.
package render

import (
	"image"

	"tripcanvas/internal/element"
	"tripcanvas/internal/textlayout"
	"tripcanvas/internal/vector"
)

// Kind classifies a primitive.
type Kind string

const (
	KindRect        Kind = "rect"
	KindPath        Kind = "path"
	KindEllipse     Kind = "ellipse"
	KindText        Kind = "text"
	KindImage       Kind = "image"
	KindLine        Kind = "line"
	KindPlaceholder Kind = "placeholder"
)

// Role distinguishes the body of an element from decorations drawn for it.
type Role string

const (
	RoleBody     Role = ""
	RoleStartCap Role = "start-cap"
	RoleEndCap   Role = "end-cap"
)

// Frame is an enclosing group: its id and its rotated, mirrored box.
type Frame struct {
	ID  string
	Box vector.Box
}

// Primitive is one drawable item. Path and text geometry are in page
// coordinates of the unrotated Box; Transform maps them onto the page.
type Primitive struct {
	ElementID  string
	Type       element.Type
	Kind       Kind
	Role       Role
	Box        vector.Box
	Frames     []Frame // outermost first
	Path       vector.Path
	FillRule   vector.FillRule
	Fill       vector.Paint
	Stroke     vector.Stroke
	Opacity    float64
	Visible    bool
	Selectable bool
	Text       *TextRun
	Image      *ImageRun
}

// TextRun is a laid out text box anchored at the top-left of the box.
type TextRun struct {
	Content     string
	Font        textlayout.FontSpec
	Color       vector.Color
	Align       string
	LineHeight  float64
	CharSpacing float64 // thousandths of an em
	Decoration  string
	Layout      textlayout.Box
}

// ImageRun places a decoded bitmap at Dest, clipped to Clip.
type ImageRun struct {
	Src    string
	Bitmap image.Image
	Dest   vector.Rect
	Clip   vector.Path
}

// Transform maps primitive geometry into page space, composing the
// enclosing group frames with the primitive's own box.
func (p *Primitive) Transform() vector.Affine2D {
	m := vector.Identity
	for _, f := range p.Frames {
		m = m.Mul(f.Box.Transform())
	}
	return m.Mul(p.Box.Transform())
}

// Bounds returns the page-space bounds of the primitive.
func (p *Primitive) Bounds() vector.Rect {
	r := p.Box.Rect
	if !p.Path.Empty() {
		r = p.Path.Bounds()
	}
	m := p.Transform()
	if m.IsIdentity() {
		return r
	}
	return m.TransformRect(r)
}

// Owns reports whether the primitive was drawn for id, directly or as part
// of the group id.
func (p *Primitive) Owns(id string) bool {
	if p.ElementID == id {
		return true
	}
	for _, f := range p.Frames {
		if f.ID == id {
			return true
		}
	}
	return false
}

// translate shifts the primitive and every frame at or inside the frame
// named from. An empty from shifts only the primitive itself.
func (p *Primitive) translate(from string, dx, dy float64) {
	shift := vector.Translate(dx, dy)
	p.Box.Rect = p.Box.Rect.Offset(dx, dy)
	if !p.Path.Empty() {
		p.Path = p.Path.Transform(shift)
	}
	if p.Image != nil {
		im := *p.Image
		im.Dest = im.Dest.Offset(dx, dy)
		if !im.Clip.Empty() {
			im.Clip = im.Clip.Transform(shift)
		}
		p.Image = &im
	}
	if from == "" {
		return
	}
	frames := make([]Frame, len(p.Frames))
	copy(frames, p.Frames)
	inside := false
	for i := range frames {
		if frames[i].ID == from {
			inside = true
		}
		if inside {
			frames[i].Box.Rect = frames[i].Box.Rect.Offset(dx, dy)
		}
	}
	p.Frames = frames
}

func rectPath(r vector.Rect) vector.Path {
	return vector.Polygon(
		vector.Pt{X: r.X, Y: r.Y},
		vector.Pt{X: r.Right(), Y: r.Y},
		vector.Pt{X: r.Right(), Y: r.Bottom()},
		vector.Pt{X: r.X, Y: r.Bottom()},
	)
}
