/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Path commands and shapes.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

type PathCmd struct {
	Op   PathOp
	Data [6]float64 // enough for cubic; unused slots are zero
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float64{x, y}})
}
func (p *Path) LineTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float64{x, y}})
}
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Data: [6]float64{cx, cy, x, y}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float64{cx1, cy1, cx2, cy2, x, y}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Empty reports whether the path has no drawing commands.
func (p Path) Empty() bool { return len(p.Cmds) == 0 }

// Transform returns a copy of p with every point mapped through m.
func (p Path) Transform(m Affine2D) Path {
	out := Path{Cmds: make([]PathCmd, len(p.Cmds))}
	for i, c := range p.Cmds {
		nc := PathCmd{Op: c.Op}
		n := pointsIn(c.Op)
		for j := 0; j < n; j++ {
			q := m.Apply(Pt{c.Data[2*j], c.Data[2*j+1]})
			nc.Data[2*j], nc.Data[2*j+1] = q.X, q.Y
		}
		out.Cmds[i] = nc
	}
	return out
}

func pointsIn(op PathOp) int {
	switch op {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubicTo:
		return 3
	}
	return 0
}

// Bounds returns an axis-aligned bounding box of the path using control
// points. This is sufficient for selection rectangles and clip extents.
func (p Path) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range p.Cmds {
		n := pointsIn(c.Op)
		for j := 0; j < n; j++ {
			x, y := c.Data[2*j], c.Data[2*j+1]
			minX = math.Min(minX, x)
			minY = math.Min(minY, y)
			maxX = math.Max(maxX, x)
			maxY = math.Max(maxY, y)
		}
	}
	if minX > maxX || minY > maxY {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// RoundedRect builds a rectangle path with independent corner radii using
// quadratic corners. Each radius is clamped to half the shorter side.
func RoundedRect(r Rect, tl, tr, br, bl float64) Path {
	limit := math.Min(r.W/2, r.H/2)
	clamp := func(v float64) float64 { return math.Max(0, math.Min(v, limit)) }
	tl, tr, br, bl = clamp(tl), clamp(tr), clamp(br), clamp(bl)
	x, y, w, h := r.X, r.Y, r.W, r.H

	var p Path
	p.MoveTo(x+tl, y)
	p.LineTo(x+w-tr, y)
	p.QuadTo(x+w, y, x+w, y+tr)
	p.LineTo(x+w, y+h-br)
	p.QuadTo(x+w, y+h, x+w-br, y+h)
	p.LineTo(x+bl, y+h)
	p.QuadTo(x, y+h, x, y+h-bl)
	p.LineTo(x, y+tl)
	p.QuadTo(x, y, x+tl, y)
	p.Close()
	return p
}

// Ellipse builds an ellipse path from four cubic arcs.
func Ellipse(cx, cy, rx, ry float64) Path {
	const k = 0.5522847498307936
	ox, oy := rx*k, ry*k
	var p Path
	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+oy, cx+ox, cy+ry, cx, cy+ry)
	p.CubicTo(cx-ox, cy+ry, cx-rx, cy+oy, cx-rx, cy)
	p.CubicTo(cx-rx, cy-oy, cx-ox, cy-ry, cx, cy-ry)
	p.CubicTo(cx+ox, cy-ry, cx+rx, cy-oy, cx+rx, cy)
	p.Close()
	return p
}

// Polygon builds a closed polygon through pts.
func Polygon(pts ...Pt) Path {
	var p Path
	for i, q := range pts {
		if i == 0 {
			p.MoveTo(q.X, q.Y)
			continue
		}
		p.LineTo(q.X, q.Y)
	}
	if len(pts) > 0 {
		p.Close()
	}
	return p
}

// ParsePathData parses SVG path data ("M 0 0 L 10 10 Z") into a Path.
// Supported commands: M L H V Q T C S Z in absolute and relative form.
// Arcs (A) are converted to cubic segments of at most a quarter turn.
func ParsePathData(d string) (Path, error) {
	var p Path
	var cur, start, lastCtl Pt
	var cmd, lastOp byte
	toks := tokenizePath(d)
	i := 0
	next := func() (float64, error) {
		if i >= len(toks) {
			return 0, fmt.Errorf("path data: unexpected end after %q", string(cmd))
		}
		v, err := strconv.ParseFloat(toks[i], 64)
		if err != nil {
			return 0, fmt.Errorf("path data: bad number %q: %w", toks[i], err)
		}
		i++
		return v, nil
	}
	nums := func(n int) ([]float64, error) {
		out := make([]float64, n)
		for k := range out {
			v, err := next()
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	for i < len(toks) {
		t := toks[i]
		if len(t) == 1 && isPathCommand(t[0]) {
			cmd = t[0]
			i++
		} else if cmd == 0 || cmd == 'Z' || cmd == 'z' {
			return Path{}, fmt.Errorf("path data: expected command, got %q", t)
		}
		rel := cmd >= 'a' && cmd <= 'z'
		abs := func(x, y float64) Pt {
			if rel {
				return Pt{cur.X + x, cur.Y + y}
			}
			return Pt{x, y}
		}
		switch unicode.ToUpper(rune(cmd)) {
		case 'M':
			v, err := nums(2)
			if err != nil {
				return Path{}, err
			}
			cur = abs(v[0], v[1])
			start = cur
			p.MoveTo(cur.X, cur.Y)
			// implicit lineto for following pairs
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L':
			v, err := nums(2)
			if err != nil {
				return Path{}, err
			}
			cur = abs(v[0], v[1])
			p.LineTo(cur.X, cur.Y)
		case 'H':
			v, err := next()
			if err != nil {
				return Path{}, err
			}
			if rel {
				v += cur.X
			}
			cur = Pt{v, cur.Y}
			p.LineTo(cur.X, cur.Y)
		case 'V':
			v, err := next()
			if err != nil {
				return Path{}, err
			}
			if rel {
				v += cur.Y
			}
			cur = Pt{cur.X, v}
			p.LineTo(cur.X, cur.Y)
		case 'Q':
			v, err := nums(4)
			if err != nil {
				return Path{}, err
			}
			c := abs(v[0], v[1])
			e := abs(v[2], v[3])
			p.QuadTo(c.X, c.Y, e.X, e.Y)
			lastCtl, cur = c, e
		case 'T':
			v, err := nums(2)
			if err != nil {
				return Path{}, err
			}
			c := cur
			if lastOp == 'Q' || lastOp == 'T' {
				c = Pt{2*cur.X - lastCtl.X, 2*cur.Y - lastCtl.Y}
			}
			e := abs(v[0], v[1])
			p.QuadTo(c.X, c.Y, e.X, e.Y)
			lastCtl, cur = c, e
		case 'C':
			v, err := nums(6)
			if err != nil {
				return Path{}, err
			}
			c1 := abs(v[0], v[1])
			c2 := abs(v[2], v[3])
			e := abs(v[4], v[5])
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, e.X, e.Y)
			lastCtl, cur = c2, e
		case 'S':
			v, err := nums(4)
			if err != nil {
				return Path{}, err
			}
			c1 := cur
			if lastOp == 'C' || lastOp == 'S' {
				c1 = Pt{2*cur.X - lastCtl.X, 2*cur.Y - lastCtl.Y}
			}
			c2 := abs(v[0], v[1])
			e := abs(v[2], v[3])
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, e.X, e.Y)
			lastCtl, cur = c2, e
		case 'A':
			v, err := nums(7)
			if err != nil {
				return Path{}, err
			}
			e := abs(v[5], v[6])
			p.arcTo(cur, v[0], v[1], v[2], v[3] != 0, v[4] != 0, e)
			cur = e
		case 'Z':
			p.Close()
			cur = start
		}
		lastOp = byte(unicode.ToUpper(rune(cmd)))
	}
	return p, nil
}

// arcTo appends the SVG elliptical arc from -> to (endpoint
// parameterisation, SVG 1.1 appendix F.6.5) as cubic beziers.
func (p *Path) arcTo(from Pt, rx, ry, phiDeg float64, large, sweep bool, to Pt) {
	if from == to {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		p.LineTo(to.X, to.Y)
		return
	}
	phi := Radians(phiDeg)
	cos, sin := math.Cos(phi), math.Sin(phi)
	dx, dy := (from.X-to.X)/2, (from.Y-to.Y)/2
	x1 := cos*dx + sin*dy
	y1 := -sin*dx + cos*dy
	if l := x1*x1/(rx*rx) + y1*y1/(ry*ry); l > 1 {
		s := math.Sqrt(l)
		rx, ry = rx*s, ry*s
	}
	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := 0.0
	if den != 0 {
		coef = math.Sqrt(math.Max(0, num/den))
	}
	if large == sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx
	cx := cos*cx1 - sin*cy1 + (from.X+to.X)/2
	cy := sin*cx1 + cos*cy1 + (from.Y+to.Y)/2

	ux, uy := (x1-cx1)/rx, (y1-cy1)/ry
	vx, vy := (-x1-cx1)/rx, (-y1-cy1)/ry
	theta := math.Atan2(uy, ux)
	dtheta := math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	segs := int(math.Ceil(math.Abs(dtheta) / (math.Pi / 2)))
	if segs < 1 {
		segs = 1
	}
	delta := dtheta / float64(segs)
	k := 4.0 / 3 * math.Tan(delta/4)
	mapPt := func(x, y float64) (float64, float64) {
		return cx + rx*x*cos - ry*y*sin, cy + rx*x*sin + ry*y*cos
	}
	for i := 0; i < segs; i++ {
		a1 := theta + float64(i)*delta
		a2 := a1 + delta
		c1, s1 := math.Cos(a1), math.Sin(a1)
		c2, s2 := math.Cos(a2), math.Sin(a2)
		p1x, p1y := mapPt(c1-k*s1, s1+k*c1)
		p2x, p2y := mapPt(c2+k*s2, s2-k*c2)
		ex, ey := mapPt(c2, s2)
		p.CubicTo(p1x, p1y, p2x, p2y, ex, ey)
	}
	// land exactly on the requested end point
	last := &p.Cmds[len(p.Cmds)-1]
	last.Data[4], last.Data[5] = to.X, to.Y
}

func isPathCommand(c byte) bool {
	return strings.IndexByte("MmLlHhVvQqTtCcSsAaZz", c) >= 0
}

// tokenizePath splits path data into command letters and numbers. Numbers
// may be separated by whitespace, commas, a sign or a second decimal point.
func tokenizePath(d string) []string {
	var toks []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			toks = append(toks, b.String())
			b.Reset()
		}
	}
	dot := false
	for i := 0; i < len(d); i++ {
		c := d[i]
		switch {
		case isPathCommand(c):
			flush()
			toks = append(toks, string(c))
			dot = false
		case c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r':
			flush()
			dot = false
		case c == '-' || c == '+':
			prev := byte(0)
			if b.Len() > 0 {
				s := b.String()
				prev = s[len(s)-1]
			}
			if prev != 'e' && prev != 'E' {
				flush()
				dot = false
			}
			b.WriteByte(c)
		case c == '.':
			if dot {
				flush()
			}
			dot = true
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	flush()
	return toks
}
