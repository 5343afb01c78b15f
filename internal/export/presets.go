/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"tripcanvas/internal/element"
	applog "tripcanvas/internal/log"
	"tripcanvas/internal/render"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// Formats understood by BatchExport.
const (
	FormatPDF = "pdf"
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatZip = "zip"
)

// BatchOptions controls a batch export.
//
// Outputs land under OutDir/<preset> (OutDir alone when Preset is empty):
// pdf/<name>.pdf, png/page-<n>.png, svg/page-<n>.svg and zip/<name>.zip,
// where <name> is the slug of the document name.
type BatchOptions struct {
	Preset        PresetName
	Formats       []string // pdf, png, svg, zip; empty means preset defaults
	Pages         []int    // zero-based; empty means all pages
	Scale         float64  // raster scale, preset default when zero
	IncludeGuides *bool    // overrides the preset's default
	FontFile      string
	Loader        render.Loader
}

// BatchExport renders the selected pages once and writes every requested
// format concurrently. It returns the written paths.
func BatchExport(ctx context.Context, doc element.Document, dir string, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	formats = normalizeFormats(formats)
	for _, f := range formats {
		if !slices.Contains([]string{FormatPDF, FormatPNG, FormatSVG, FormatZip}, f) {
			return nil, fmt.Errorf("unknown format: %s", f)
		}
	}
	guides := presetIncludeGuides(opt.Preset)
	if opt.IncludeGuides != nil {
		guides = *opt.IncludeGuides
	}
	scale := opt.Scale
	if scale <= 0 {
		scale = presetScale(opt.Preset)
	}
	base := dir
	if opt.Preset != "" {
		base = filepath.Join(dir, string(opt.Preset))
	}

	lists, err := RenderPages(ctx, doc, opt.Pages, opt.Loader)
	if err != nil {
		return nil, err
	}
	log := applog.WithOperation(applog.WithComponent("export"), "batch").With(slog.String("doc", doc.ID))
	name := Slug(doc.Name)
	outs := make([][]string, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var paths []string
			var err error
			switch f {
			case FormatPDF:
				p := filepath.Join(base, "pdf", name+".pdf")
				err = writePDFFile(lists, p, PDFOptions{Title: doc.Name, FontFile: opt.FontFile, IncludeGuides: guides})
				paths = []string{p}
			case FormatPNG:
				paths, err = writePNGPages(lists, filepath.Join(base, "png"), PNGOptions{Scale: scale, FontFile: opt.FontFile, IncludeGuides: guides})
			case FormatSVG:
				paths, err = writeSVGPages(lists, filepath.Join(base, "svg"), SVGOptions{IncludeGuides: guides})
			case FormatZip:
				var p string
				p, err = writeBundle(doc, lists, filepath.Join(base, "zip", name+".zip"), BundleOptions{PNG: PNGOptions{Scale: scale, FontFile: opt.FontFile}})
				paths = []string{p}
			}
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			log.Info("exported", slog.String("format", f), slog.Int("files", len(paths)))
			outs[i] = paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var all []string
	for _, o := range outs {
		all = append(all, o...)
	}
	return all, nil
}

func normalizeFormats(in []string) []string {
	var out []string
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "bundle" {
			f = FormatZip
		}
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{FormatPNG, FormatSVG, FormatZip}
	case PresetPrint:
		return []string{FormatPDF, FormatPNG}
	default:
		return []string{FormatPDF}
	}
}

func presetIncludeGuides(p PresetName) bool {
	return p == PresetPrint
}

// presetScale is 1 for screen output and 300 dpi for print.
func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 300.0 / 96.0
	}
	return 1
}
