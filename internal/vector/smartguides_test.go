/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

var testPage = R(0, 0, 400, 300)

func TestSnap_ToTargetLeftEdge(t *testing.T) {
	other := SnapTarget{ID: "b", Rect: R(120, 200, 50, 40)}
	moving := R(123, 20, 30, 30) // 3 units right of b's left edge
	res := Snap(moving, SnapOptions{Threshold: 5, Page: testPage, Targets: []SnapTarget{other}})
	if !res.SnappedX || res.Rect.X != 120 {
		t.Fatalf("expected X snapped to 120, got %+v", res.Rect)
	}
	if res.SnappedY {
		t.Fatalf("did not expect Y snap: %+v", res.Rect)
	}
	if len(res.Guides) != 1 || res.Guides[0].Orientation != Vertical || res.Guides[0].Position != 120 {
		t.Fatalf("unexpected guides: %+v", res.Guides)
	}
	g := res.Guides[0]
	if g.From.Y != 0 || g.To.Y != 300 || g.TargetID != "b" {
		t.Fatalf("guide must span the page and name its target: %+v", g)
	}
}

func TestSnap_ThresholdIsExclusive(t *testing.T) {
	other := SnapTarget{ID: "b", Rect: R(100, 200, 50, 40)}
	moving := R(105, 20, 30, 30)
	res := Snap(moving, SnapOptions{Threshold: 5, Page: testPage, Targets: []SnapTarget{other}})
	if res.SnappedX || res.Rect != moving {
		t.Fatalf("a distance equal to the threshold must not snap: %+v", res.Rect)
	}
}

func TestSnap_TwiceThresholdLeavesRawPosition(t *testing.T) {
	other := SnapTarget{ID: "b", Rect: R(100, 200, 50, 40)}
	moving := R(110, 20, 10, 30)
	res := Snap(moving, SnapOptions{Threshold: 5, Page: testPage, Targets: []SnapTarget{other}})
	if res.Rect != moving || len(res.Guides) != 0 {
		t.Fatalf("expected no snapping; got %+v %+v", res.Rect, res.Guides)
	}
}

func TestSnap_PageCentreWinsOverTargets(t *testing.T) {
	// moving centre x = 199 (page centre 200); target right edge at 217 also
	// within threshold of moving right edge 214.
	other := SnapTarget{ID: "b", Rect: R(117, 250, 100, 20)}
	moving := R(184, 20, 30, 30)
	res := Snap(moving, SnapOptions{Threshold: 5, Page: testPage, Targets: []SnapTarget{other}})
	if res.Rect.X != 185 {
		t.Fatalf("expected page-centre snap to x=185, got %v", res.Rect.X)
	}
	if res.Guides[0].Kind != KindCenter || res.Guides[0].TargetID != "" {
		t.Fatalf("expected page centre guide, got %+v", res.Guides[0])
	}
}

func TestSnap_FirstTargetWins(t *testing.T) {
	a := SnapTarget{ID: "a", Rect: R(40, 200, 10, 10)}
	b := SnapTarget{ID: "b", Rect: R(42, 220, 10, 10)}
	moving := R(43, 20, 30, 30)
	res := Snap(moving, SnapOptions{Threshold: 5, Page: testPage, Targets: []SnapTarget{a, b}})
	if res.Rect.X != 40 || res.Guides[0].TargetID != "a" {
		t.Fatalf("expected first target to win, got %+v %+v", res.Rect, res.Guides)
	}
}

func TestSnap_CentresAndRightEdges(t *testing.T) {
	other := SnapTarget{ID: "b", Rect: R(50, 50, 100, 100)} // centre (100,100)
	moving := R(88, 240, 20, 20)                             // centre x 98
	res := Snap(moving, SnapOptions{Threshold: 5, Page: testPage, Targets: []SnapTarget{other}})
	if res.Rect.X != 90 {
		t.Fatalf("expected centre alignment x=90, got %v", res.Rect.X)
	}
	moving = R(128, 240, 20, 20) // right edge 148 vs 150
	res = Snap(moving, SnapOptions{Threshold: 5, Page: testPage, Targets: []SnapTarget{other}})
	if res.Rect.X != 130 {
		t.Fatalf("expected right-edge alignment x=130, got %v", res.Rect.X)
	}
}

func TestSnap_Rulers(t *testing.T) {
	moving := R(10, 57, 30, 30)
	res := Snap(moving, SnapOptions{Threshold: 5, Page: testPage, Rulers: []Ruler{{Orientation: Horizontal, Position: 60}}})
	if !res.SnappedY || res.Rect.Y != 60 || res.Guides[0].Kind != KindRuler {
		t.Fatalf("expected ruler snap, got %+v %+v", res.Rect, res.Guides)
	}
}
