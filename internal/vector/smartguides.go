/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Smart guides and snapping helpers for dragging elements on a page.
// These utilities are UI-agnostic and deterministic to enable unit testing.

import "math"

// DefaultSnapThreshold is the snap distance in page units.
const DefaultSnapThreshold = 5

const (
	Vertical   = "vertical"
	Horizontal = "horizontal"

	KindEdge   = "edge"
	KindCenter = "center"
	KindRuler  = "ruler"
)

// SnapTarget is another element the moving box may align with.
type SnapTarget struct {
	ID   string
	Rect Rect
}

// Ruler is a user-placed guide at a fixed page coordinate.
type Ruler struct {
	Orientation string
	Position    float64
}

// SnapOptions controls which references are considered and the threshold.
type SnapOptions struct {
	// Threshold is the exclusive distance below which snapping occurs.
	Threshold float64
	// Page bounds; its centre lines are checked before any target.
	Page    Rect
	Targets []SnapTarget
	Rulers  []Ruler
	// RulerThreshold applies to rulers; zero means Threshold.
	RulerThreshold float64
}

// GuideLine describes a visual guide generated by a snap. Orientation is
// "vertical" (constant x) or "horizontal" (constant y). Guides span the page.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
	TargetID    string
}

// SnapResult carries the clamped rectangle and the guides to display.
type SnapResult struct {
	Rect     Rect
	Guides   []GuideLine
	SnappedX bool
	SnappedY bool
}

// axis features of a rect: start edge, centre, end edge.
type features [3]float64

func xFeatures(r Rect) features { return features{r.X, r.X + r.W/2, r.X + r.W} }
func yFeatures(r Rect) features { return features{r.Y, r.Y + r.H/2, r.Y + r.H} }

var featureKinds = [3]string{KindEdge, KindCenter, KindEdge}

// Snap aligns moving against the page centre, then each target's matching
// edges and centre (in order), then the rulers. Each axis takes the first
// candidate whose distance is strictly below the threshold; the position is
// set to the exact reference coordinate.
func Snap(moving Rect, opts SnapOptions) SnapResult {
	t := opts.Threshold
	if t <= 0 {
		t = DefaultSnapThreshold
	}
	rt := opts.RulerThreshold
	if rt <= 0 {
		rt = t
	}
	res := SnapResult{Rect: moving}

	if pos, idx, kind, id, ok := firstMatch(xFeatures(moving), xFeatures(opts.Page), opts.Targets, opts.Rulers, Vertical, t, rt, xFeatures); ok {
		res.Rect.X = placeAt(pos, idx, moving.W)
		res.SnappedX = true
		res.Guides = append(res.Guides, GuideLine{
			Orientation: Vertical, Kind: kind, Position: pos, TargetID: id,
			From: Pt{pos, opts.Page.Y}, To: Pt{pos, opts.Page.Y + opts.Page.H},
		})
	}
	if pos, idx, kind, id, ok := firstMatch(yFeatures(moving), yFeatures(opts.Page), opts.Targets, opts.Rulers, Horizontal, t, rt, yFeatures); ok {
		res.Rect.Y = placeAt(pos, idx, moving.H)
		res.SnappedY = true
		res.Guides = append(res.Guides, GuideLine{
			Orientation: Horizontal, Kind: kind, Position: pos, TargetID: id,
			From: Pt{opts.Page.X, pos}, To: Pt{opts.Page.X + opts.Page.W, pos},
		})
	}
	return res
}

// firstMatch returns the reference coordinate and which moving feature
// (0 start, 1 centre, 2 end) matched it.
func firstMatch(m, page features, targets []SnapTarget, rulers []Ruler, orientation string, t, rt float64,
	feat func(Rect) features) (pos float64, idx int, kind, id string, ok bool) {
	if within(m[1], page[1], t) {
		return page[1], 1, KindCenter, "", true
	}
	for _, tg := range targets {
		f := feat(tg.Rect)
		for i := 0; i < 3; i++ {
			if within(m[i], f[i], t) {
				return f[i], i, featureKinds[i], tg.ID, true
			}
		}
	}
	for _, r := range rulers {
		if r.Orientation != orientation {
			continue
		}
		for i := 0; i < 3; i++ {
			if within(m[i], r.Position, rt) {
				return r.Position, i, KindRuler, "", true
			}
		}
	}
	return 0, 0, "", "", false
}

func within(a, b, t float64) bool { return math.Abs(a-b) < t }

// placeAt converts a matched feature coordinate back to a start coordinate.
func placeAt(pos float64, idx int, size float64) float64 {
	switch idx {
	case 1:
		return pos - size/2
	case 2:
		return pos - size
	}
	return pos
}
