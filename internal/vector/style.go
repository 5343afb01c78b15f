/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Styles and paint definitions.

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// RGBA implements color.Color (non-premultiplied input, premultiplied output).
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Hex renders #rrggbb, or #rrggbbaa when not fully opaque.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// WithAlpha scales the alpha channel by f (0..1).
func (c Color) WithAlpha(f float64) Color {
	if f >= 1 {
		return c
	}
	if f <= 0 {
		c.A = 0
		return c
	}
	c.A = uint8(float64(c.A)*f + 0.5)
	return c
}

// IsTransparent reports a fully transparent colour.
func (c Color) IsTransparent() bool { return c.A == 0 }

var namedColors = map[string]Color{
	"transparent": Transparent,
	"none":        Transparent,
	"black":       Black,
	"white":       White,
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
}

// ParseColor accepts #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(), rgba() and a
// few CSS names.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Transparent, fmt.Errorf("empty colour")
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if strings.HasPrefix(s, "rgb") {
		return parseRGBFunc(s)
	}
	return Transparent, fmt.Errorf("unsupported colour %q", s)
}

// MustColor parses s and falls back to def when s is empty or invalid.
func MustColor(s string, def Color) Color {
	c, err := ParseColor(s)
	if err != nil {
		return def
	}
	return c
}

func parseHex(h string) (Color, error) {
	switch len(h) {
	case 3, 4:
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	}
	if len(h) != 6 && len(h) != 8 {
		return Transparent, fmt.Errorf("bad hex colour %q", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Transparent, fmt.Errorf("bad hex colour %q: %w", h, err)
	}
	if len(h) == 6 {
		return Color{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
	}
	return Color{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

func parseRGBFunc(s string) (Color, error) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return Transparent, fmt.Errorf("bad colour function %q", s)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Transparent, fmt.Errorf("bad colour function %q", s)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return Transparent, fmt.Errorf("bad colour channel %q: %w", parts[i], err)
		}
		ch[i] = clampByte(v)
	}
	c := Color{ch[0], ch[1], ch[2], 255}
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return Transparent, fmt.Errorf("bad alpha %q: %w", parts[3], err)
		}
		c.A = clampByte(a * 255)
	}
	return c, nil
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// Stroke describes an outline.
type Stroke struct {
	Color Color
	Width float64
	Cap   LineCap
	Dash  []float64
}

// Enabled reports whether the stroke paints anything.
func (s Stroke) Enabled() bool { return s.Width > 0 && !s.Color.IsTransparent() }

// GradientKind selects linear or radial interpolation.
type GradientKind uint8

const (
	LinearGradient GradientKind = iota
	RadialGradient
)

// ColorStop is one gradient stop; Offset is 0..1.
type ColorStop struct {
	Offset float64
	Color  Color
}

// Gradient is resolved to absolute page coordinates. For linear gradients
// the colour runs from Start to End; radial gradients use Start as centre and
// Radius.
type Gradient struct {
	Kind   GradientKind
	Start  Pt
	End    Pt
	Radius float64
	Stops  []ColorStop
}

// Paint is either a solid colour or a gradient (when Gradient is non-nil).
type Paint struct {
	Color    Color
	Gradient *Gradient
}

// Solid returns a solid paint.
func Solid(c Color) Paint { return Paint{Color: c} }

// Visible reports whether the paint draws anything.
func (p Paint) Visible() bool { return p.Gradient != nil || !p.Color.IsTransparent() }
