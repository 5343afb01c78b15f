/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes rendered pages to PDF, PNG, SVG and zip bundles.
// Every exporter draws a render.DisplayList produced by the same renderer
// the editor uses, so an export matches the preview.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"tripcanvas/internal/element"
	applog "tripcanvas/internal/log"
	"tripcanvas/internal/render"
	"tripcanvas/internal/vector"
)

// ErrNoPages is returned when a document or page selection is empty.
var ErrNoPages = errors.New("no pages to export")

// GuideColor strokes the bleed guides.
var GuideColor = vector.Color{R: 255, A: 255}

// RenderPages renders the selected pages of doc in preview mode. pages
// holds zero-based indexes; empty selects every page and out of range
// indexes are skipped.
func RenderPages(ctx context.Context, doc element.Document, pages []int, loader render.Loader) ([]*render.DisplayList, error) {
	idx := pageIndexes(len(doc.Pages), pages)
	if len(idx) == 0 {
		return nil, ErrNoPages
	}
	r := render.New(loader)
	defer r.Dispose()
	log := applog.WithComponent("export").With(slog.String("doc", doc.ID))
	lists := make([]*render.DisplayList, 0, len(idx))
	for _, i := range idx {
		dl := render.NewDisplayList()
		if err := r.Render(ctx, dl, doc.Pages[i], render.Options{}); err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}
		log.Debug("page rendered", slog.String("page", doc.Pages[i].ID), slog.Int("primitives", dl.Len()))
		lists = append(lists, dl)
	}
	return lists, nil
}

func pageIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, 0, len(specific))
	for _, i := range specific {
		if i >= 0 && i < total {
			out = append(out, i)
		}
	}
	return out
}

// visible reports whether a primitive paints anything.
func visible(p *render.Primitive) bool {
	return p.Visible && p.Opacity > 0
}

// Slug turns a document name into a file name stem.
func Slug(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(sb.String(), "-")
	if s == "" {
		return "document"
	}
	return s
}

// bleedGuide returns the content box inset by bleed on a page of w x h.
func bleedGuide(w, h, bleed float64) vector.Rect {
	return vector.R(bleed, bleed, w-2*bleed, h-2*bleed)
}
