/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestPath_Bounds(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(0, 10)
	p.Close()

	b := p.Bounds()
	if b.X != 0 || b.Y != 0 || b.W != 10 || b.H != 10 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	moved := p.Transform(Translate(5, 5)).Bounds()
	if moved.X != 5 || moved.Y != 5 || moved.W != 10 || moved.H != 10 {
		t.Fatalf("unexpected transformed bounds: %+v", moved)
	}
}

func TestRoundedRect_ClampsRadii(t *testing.T) {
	p := RoundedRect(R(0, 0, 40, 20), 100, 0, 0, 0)
	// first point is x+tl with tl clamped to min(w/2,h/2) = 10
	if p.Cmds[0].Op != MoveTo || p.Cmds[0].Data[0] != 10 {
		t.Fatalf("radius not clamped: %+v", p.Cmds[0])
	}
	if b := p.Bounds(); b != R(0, 0, 40, 20) {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestParsePathData_AbsoluteAndRelative(t *testing.T) {
	p, err := ParsePathData("M2 2 l10 0 v10 H2 z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Cmds) != 5 {
		t.Fatalf("expected 5 commands, got %d", len(p.Cmds))
	}
	if b := p.Bounds(); b != R(2, 2, 10, 10) {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	if p.Cmds[4].Op != Close {
		t.Fatalf("expected close, got %v", p.Cmds[4].Op)
	}
}

func TestParsePathData_CompactNumbers(t *testing.T) {
	p, err := ParsePathData("M12-3.5.5.5C1,2 3,4 5,6")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Cmds[0].Data[0] != 12 || p.Cmds[0].Data[1] != -3.5 {
		t.Fatalf("unexpected move: %+v", p.Cmds[0])
	}
	// pairs after M are an implicit lineto
	if p.Cmds[1].Op != LineTo || p.Cmds[1].Data[0] != 0.5 || p.Cmds[1].Data[1] != 0.5 {
		t.Fatalf("unexpected implicit lineto: %+v", p.Cmds[1])
	}
	if p.Cmds[2].Op != CubicTo || p.Cmds[2].Data[5] != 6 {
		t.Fatalf("unexpected cubic: %+v", p.Cmds[2])
	}
}

func TestParsePathData_Errors(t *testing.T) {
	if _, err := ParsePathData("10 10"); err == nil {
		t.Fatalf("expected error for data without command")
	}
	if _, err := ParsePathData("M 1"); err == nil {
		t.Fatalf("expected error for truncated data")
	}
}

func TestParsePathData_Arc(t *testing.T) {
	p, err := ParsePathData("M0,0 A10,10 0 0,1 20,0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Cmds) != 3 || p.Cmds[1].Op != CubicTo || p.Cmds[2].Op != CubicTo {
		t.Fatalf("expected two cubic segments, got %+v", p.Cmds)
	}
	mid := p.Cmds[1].Data
	if !NearlyEqual(mid[4], 10, 1e-9) || !NearlyEqual(mid[5], -10, 1e-9) {
		t.Fatalf("arc should pass over the top, got (%v,%v)", mid[4], mid[5])
	}
	end := p.Cmds[2].Data
	if end[4] != 20 || end[5] != 0 {
		t.Fatalf("arc end = (%v,%v)", end[4], end[5])
	}

	// near full circle as used by the sticker library
	c, err := ParsePathData("M50,0 A50,50 0 1,1 49.99,0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b := c.Bounds()
	if !NearlyEqual(b.X, 0, 0.5) || !NearlyEqual(b.Y, 0, 0.5) || !NearlyEqual(b.W, 100, 0.5) || !NearlyEqual(b.H, 100, 0.5) {
		t.Fatalf("circle bounds = %+v", b)
	}
}
