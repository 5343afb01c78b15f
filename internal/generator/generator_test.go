/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package generator

import (
	"errors"
	"strings"
	"testing"

	"tripcanvas/internal/element"
)

func TestIdsUniqueAcrossCalls(t *testing.T) {
	seen := make(map[string]string)
	for round := 0; round < 3; round++ {
		for _, d := range Default().All() {
			for _, e := range d.Generate(DefaultOptions(100)) {
				id := e.Common().ID
				if prev, dup := seen[id]; dup {
					t.Fatalf("duplicate id %q from %s (first from %s)", id, d.ID, prev)
				}
				seen[id] = d.ID
			}
		}
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	o := DefaultOptions(100)
	o.Seed = "fixed"
	a, b := DaySchedule(o), DaySchedule(o)
	if len(a) != len(b) {
		t.Fatalf("len %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Common().ID != b[i].Common().ID {
			t.Fatalf("id %d differs: %s vs %s", i, a[i].Common().ID, b[i].Common().ID)
		}
	}
	if !strings.HasPrefix(a[0].Common().ID, "block-day-fixed-") {
		t.Fatalf("unexpected id %s", a[0].Common().ID)
	}
}

func TestSeederDistinct(t *testing.T) {
	s := NewSeeder()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		v := s.Next()
		if seen[v] {
			t.Fatalf("seed %s repeated", v)
		}
		seen[v] = true
	}
}

func TestElementsWithinPage(t *testing.T) {
	const eps = 1.0
	for _, d := range Default().All() {
		for _, e := range d.Generate(DefaultOptions(100)) {
			r := e.Common().Rect()
			if r.X < -eps || r.Y < -eps || r.Right() > PageWidth+eps || r.Bottom() > PageHeight+eps {
				t.Fatalf("%s: %s out of page: %+v", d.ID, e.Common().ID, r)
			}
		}
	}
}

func TestFontSizeFloor(t *testing.T) {
	for _, d := range Default().All() {
		element.Walk(d.Generate(DefaultOptions(40)), func(e element.Element) bool {
			if tx, ok := e.(*element.Text); ok && tx.Style.FontSize < MinFontSize {
				t.Fatalf("%s: font size %v", tx.ID, tx.Style.FontSize)
			}
			return true
		})
	}
}

func coverTitle(t *testing.T, elems []element.Element) string {
	t.Helper()
	for _, e := range elems {
		if tx, ok := e.(*element.Text); ok && strings.HasSuffix(tx.ID, "-title") {
			return tx.Content
		}
	}
	t.Fatalf("cover has no title")
	return ""
}

func TestCoverBindsTourName(t *testing.T) {
	o := DefaultOptions(100)
	o.Data = map[string]any{"tourName": "Osaka 3-Day"}
	if got := coverTitle(t, Cover(o)); got != "Osaka 3-Day" {
		t.Fatalf("title = %q", got)
	}
	if got := coverTitle(t, Cover(DefaultOptions(100))); got != CoverFallbackTitle {
		t.Fatalf("fallback title = %q", got)
	}
	o.Data = map[string]any{"tourName": "   "}
	if got := coverTitle(t, Cover(o)); got != CoverFallbackTitle {
		t.Fatalf("blank title = %q", got)
	}
}

func TestCoverPlaceholder(t *testing.T) {
	elems := Cover(DefaultOptions(100))
	if !element.IsPlaceholder(elems[0]) || !strings.HasSuffix(elems[0].Common().ID, "-placeholder") {
		t.Fatalf("expected placeholder image, got %s", elems[0].Common().ID)
	}
	o := DefaultOptions(100)
	o.Data = map[string]any{"coverImage": "assets/osaka.jpg"}
	elems = Cover(o)
	if element.IsPlaceholder(elems[0]) {
		t.Fatalf("bound cover image still a placeholder")
	}
	if im := elems[0].(*element.Image); im.Src != "assets/osaka.jpg" {
		t.Fatalf("src = %q", im.Src)
	}
}

func TestGeneratorsLeaveZIndex(t *testing.T) {
	for _, d := range Default().All() {
		for _, e := range d.Generate(DefaultOptions(100)) {
			if e.Common().ZIndex != 0 {
				t.Fatalf("%s sets zIndex %d", e.Common().ID, e.Common().ZIndex)
			}
		}
	}
}

func TestDayScheduleItems(t *testing.T) {
	o := DefaultOptions(100)
	o.Data = map[string]any{
		"day": 3,
		"items": []any{
			map[string]any{"time": "09:00", "title": "伏見稻荷"},
			"清水寺",
		},
	}
	var num, content string
	for _, e := range DaySchedule(o) {
		tx, ok := e.(*element.Text)
		if !ok {
			continue
		}
		switch {
		case strings.HasSuffix(tx.ID, "-num"):
			num = tx.Content
		case strings.HasSuffix(tx.ID, "-content"):
			content = tx.Content
		}
	}
	if num != "03" {
		t.Fatalf("day number = %q", num)
	}
	if content != "● 09:00  伏見稻荷\n● 清水寺" {
		t.Fatalf("content = %q", content)
	}
}

func TestTimelineCapsRows(t *testing.T) {
	items := make([]any, 30)
	for i := range items {
		items[i] = "stop"
	}
	o := DefaultOptions(100)
	o.Data = map[string]any{"items": items}
	stops := 0
	for _, e := range Timeline(o) {
		if strings.Contains(e.Common().ID, "-stop-") {
			stops++
		}
	}
	if stops != timelineMaxRows {
		t.Fatalf("stops = %d", stops)
	}
}

func TestStyleOverride(t *testing.T) {
	o := DefaultOptions(100)
	o.Style = &Palette{Gold: "#003366"}
	for _, e := range MealInfo(o) {
		tx := e.(*element.Text)
		if strings.HasSuffix(tx.ID, "-title") && tx.Style.Color != "#003366" {
			t.Fatalf("title colour = %s", tx.Style.Color)
		}
		if tx.Style.FontFamily != "Noto Sans TC" {
			t.Fatalf("font family = %s", tx.Style.FontFamily)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	r := Default()
	if len(r.All()) != 12 {
		t.Fatalf("builtins = %d", len(r.All()))
	}
	if d, ok := r.Get("flight-info"); !ok || d.Category != CategoryInfo {
		t.Fatalf("flight-info = %+v, %v", d, ok)
	}
	if _, ok := r.Get("nope"); ok {
		t.Fatalf("unexpected hit")
	}
	if got := len(r.ByCategory(CategoryImage)); got != 4 {
		t.Fatalf("image blocks = %d", got)
	}
	cats := r.Categories()
	want := []string{CategorySchedule, CategoryInfo, CategoryImage, CategoryLayout}
	if strings.Join(cats, ",") != strings.Join(want, ",") {
		t.Fatalf("categories = %v", cats)
	}
}

func TestRegistrySearch(t *testing.T) {
	r := Default()
	hits := r.Search("FLIGHT")
	if len(hits) != 1 || hits[0].ID != "flight-info" {
		t.Fatalf("search FLIGHT = %+v", hits)
	}
	if hits := r.Search("餐食"); len(hits) != 1 || hits[0].ID != "meal-info" {
		t.Fatalf("search 餐食 = %+v", hits)
	}
	if len(r.Search("")) != len(r.All()) {
		t.Fatalf("empty query should match all")
	}
	if len(r.Search("submarine")) != 0 {
		t.Fatalf("unexpected hits")
	}
}

func TestRegistryRegisterAndGenerate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Definition{ID: "x"}); err == nil {
		t.Fatalf("missing generator accepted")
	}
	d := Definition{ID: "hotel", Category: "custom", Generate: HotelInfo}
	if err := r.Register(d); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(d); err == nil {
		t.Fatalf("duplicate accepted")
	}
	if _, err := r.Generate("missing", Options{}); !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("err = %v", err)
	}
	elems, err := r.Generate("hotel", Options{X: Bleed, Y: 50})
	if err != nil || len(elems) == 0 {
		t.Fatalf("generate: %v, %d", err, len(elems))
	}
	if w := elems[2].Common().Width; w != ContentWidth {
		t.Fatalf("default width = %v", w)
	}
	if got := r.Categories(); len(got) != 1 || got[0] != "custom" {
		t.Fatalf("categories = %v", got)
	}
}
