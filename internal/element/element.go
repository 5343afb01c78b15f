/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package element defines the placeable objects of a page: shapes, text,
// images, icons, lines, stickers and groups, plus the page and document that
// hold them. The model is plain data; the renderer and the editor own all
// behaviour.
package element

import (
	"encoding/json"
	"strconv"
	"strings"

	"tripcanvas/internal/vector"
)

// Type discriminates the element variants in JSON.
type Type string

const (
	TypeShape   Type = "shape"
	TypeText    Type = "text"
	TypeImage   Type = "image"
	TypeIcon    Type = "icon"
	TypeLine    Type = "line"
	TypeSticker Type = "sticker"
	TypeGroup   Type = "group"
)

// Element is implemented by every variant. Common gives access to the shared
// fields; the id and type must not be changed outside the editor.
type Element interface {
	Common() *Base
	Kind() Type
	clone() Element
}

// Base carries the fields shared by all variants.
type Base struct {
	ID       string  `json:"id"`
	Type     Type    `json:"type"`
	Name     string  `json:"name,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`
	Opacity  float64 `json:"opacity"`
	ZIndex   int     `json:"zIndex"`
	Locked   bool    `json:"locked,omitempty"`
	Visible  bool    `json:"visible"`
	FlipX    bool    `json:"flipX,omitempty"`
	FlipY    bool    `json:"flipY,omitempty"`
}

// NewBase returns a visible, fully opaque base of type t.
func NewBase(t Type, id string, r vector.Rect) Base {
	return Base{ID: id, Type: t, X: r.X, Y: r.Y, Width: r.W, Height: r.H, Opacity: 1, Visible: true}
}

func (b *Base) Common() *Base { return b }
func (b *Base) Kind() Type    { return b.Type }

// Rect is the unrotated frame.
func (b *Base) Rect() vector.Rect { return vector.R(b.X, b.Y, b.Width, b.Height) }

// SetRect moves and resizes the frame.
func (b *Base) SetRect(r vector.Rect) {
	b.X, b.Y, b.Width, b.Height = r.X, r.Y, r.W, r.H
}

// Box is the frame including rotation and mirroring.
func (b *Base) Box() vector.Box {
	return vector.Box{Rect: b.Rect(), Rotation: b.Rotation, FlipX: b.FlipX, FlipY: b.FlipY}
}

// Bounds returns the axis-aligned page bounds of the rotated frame.
func (b *Base) Bounds() vector.Rect { return b.Box().Bounds() }

type ShapeVariant string

const (
	Rectangle ShapeVariant = "rectangle"
	Circle    ShapeVariant = "circle"
	Ellipse   ShapeVariant = "ellipse"
)

// ColorStop is one stop of a gradient; Offset is 0..1.
type ColorStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// Gradient fills the shape box; Type is "linear" or "radial" and Direction
// ("horizontal" or "vertical") only applies to linear gradients.
type Gradient struct {
	Type       string      `json:"type"`
	Direction  string      `json:"direction,omitempty"`
	ColorStops []ColorStop `json:"colorStops"`
}

// Corners holds per-corner radii.
type Corners struct {
	TopLeft     float64 `json:"topLeft,omitempty"`
	TopRight    float64 `json:"topRight,omitempty"`
	BottomRight float64 `json:"bottomRight,omitempty"`
	BottomLeft  float64 `json:"bottomLeft,omitempty"`
}

// Any reports whether at least one corner is rounded.
func (c *Corners) Any() bool {
	return c != nil && (c.TopLeft != 0 || c.TopRight != 0 || c.BottomRight != 0 || c.BottomLeft != 0)
}

// Align pins a shape to the page: Horizontal is left|center|right, Vertical
// is top|center|bottom. Stored x/y are ignored on a pinned axis.
type Align struct {
	Horizontal string `json:"horizontal,omitempty"`
	Vertical   string `json:"vertical,omitempty"`
}

type Shape struct {
	Base
	Variant         ShapeVariant `json:"variant"`
	Fill            string       `json:"fill,omitempty"`
	Gradient        *Gradient    `json:"gradient,omitempty"`
	Stroke          string       `json:"stroke,omitempty"`
	StrokeWidth     float64      `json:"strokeWidth,omitempty"`
	StrokeDashArray []float64    `json:"strokeDashArray,omitempty"`
	CornerRadius    float64      `json:"cornerRadius,omitempty"`
	BorderRadius    *Corners     `json:"borderRadius,omitempty"`
	Align           *Align       `json:"align,omitempty"`
}

func (s *Shape) clone() Element {
	c := *s
	if s.Gradient != nil {
		g := *s.Gradient
		g.ColorStops = append([]ColorStop(nil), s.Gradient.ColorStops...)
		c.Gradient = &g
	}
	c.StrokeDashArray = append([]float64(nil), s.StrokeDashArray...)
	if s.BorderRadius != nil {
		br := *s.BorderRadius
		c.BorderRadius = &br
	}
	if s.Align != nil {
		a := *s.Align
		c.Align = &a
	}
	return &c
}

// FontWeight accepts both CSS keywords and numeric weights in JSON.
type FontWeight string

func (w *FontWeight) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*w = FontWeight(s)
		return nil
	}
	if string(b) == "null" {
		*w = ""
		return nil
	}
	*w = FontWeight(b)
	return nil
}

// Bold reports weights of 600 and above, or the bold keywords.
func (w FontWeight) Bold() bool {
	s := strings.ToLower(string(w))
	if s == "bold" || s == "bolder" {
		return true
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 600
}

type TextStyle struct {
	FontFamily     string     `json:"fontFamily,omitempty"`
	FontSize       float64    `json:"fontSize"`
	FontWeight     FontWeight `json:"fontWeight,omitempty"`
	FontStyle      string     `json:"fontStyle,omitempty"`
	Color          string     `json:"color,omitempty"`
	TextAlign      string     `json:"textAlign,omitempty"`
	LineHeight     float64    `json:"lineHeight,omitempty"`
	LetterSpacing  float64    `json:"letterSpacing,omitempty"`
	TextDecoration string     `json:"textDecoration,omitempty"`
}

// Text is a wrapping text box; Width is the wrap boundary and Height is
// advisory.
type Text struct {
	Base
	Content string    `json:"content"`
	Style   TextStyle `json:"style"`
}

func (t *Text) clone() Element {
	c := *t
	return &c
}

// ImagePosition overrides the fitted placement: X and Y are percentages of
// the free space (50 centres), Scale multiplies the fit scale.
type ImagePosition struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale,omitempty"`
}

type Image struct {
	Base
	Src          string          `json:"src"`
	ObjectFit    string          `json:"objectFit,omitempty"`
	BorderRadius *Corners        `json:"borderRadius,omitempty"`
	Adjustments  json.RawMessage `json:"adjustments,omitempty"`
	Position     *ImagePosition  `json:"position,omitempty"`
	Placeholder  bool            `json:"placeholder,omitempty"`
}

func (im *Image) clone() Element {
	c := *im
	if im.BorderRadius != nil {
		br := *im.BorderRadius
		c.BorderRadius = &br
	}
	if im.Position != nil {
		p := *im.Position
		c.Position = &p
	}
	c.Adjustments = append(json.RawMessage(nil), im.Adjustments...)
	return &c
}

// Icon draws a named glyph from the icon library. Size defaults to the
// smaller side of the box.
type Icon struct {
	Base
	Icon  string  `json:"icon"`
	Size  float64 `json:"size,omitempty"`
	Color string  `json:"color,omitempty"`
}

// GlyphSize is the rendered edge length of the icon.
func (ic *Icon) GlyphSize() float64 {
	if ic.Size > 0 {
		return ic.Size
	}
	if ic.Width < ic.Height {
		return ic.Width
	}
	return ic.Height
}

func (ic *Icon) clone() Element {
	c := *ic
	return &c
}

// Line endpoints are relative to the element's x/y.
type Line struct {
	Base
	X1            float64 `json:"x1"`
	Y1            float64 `json:"y1"`
	X2            float64 `json:"x2"`
	Y2            float64 `json:"y2"`
	Stroke        string  `json:"stroke,omitempty"`
	StrokeWidth   float64 `json:"strokeWidth,omitempty"`
	LineStyle     string  `json:"lineStyle,omitempty"` // solid, dashed, dotted
	StartEndpoint string  `json:"startEndpoint,omitempty"`
	EndEndpoint   string  `json:"endEndpoint,omitempty"` // none, arrow, circle, diamond
}

func (l *Line) clone() Element {
	c := *l
	return &c
}

type Sticker struct {
	Base
	Category       string `json:"category,omitempty"`
	StickerID      string `json:"stickerId"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
}

func (s *Sticker) clone() Element {
	c := *s
	return &c
}

// Clone returns a deep copy of e.
func Clone(e Element) Element {
	if e == nil {
		return nil
	}
	return e.clone()
}

// CloneAll deep-copies a slice of elements.
func CloneAll(list []Element) []Element {
	out := make([]Element, len(list))
	for i, e := range list {
		out[i] = Clone(e)
	}
	return out
}

// IsPlaceholder reports an element waiting for user supplied media: its id
// ends in "-placeholder" or it is an image flagged as placeholder.
func IsPlaceholder(e Element) bool {
	if strings.HasSuffix(e.Common().ID, "-placeholder") {
		return true
	}
	im, ok := e.(*Image)
	return ok && im.Placeholder
}
