/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"tripcanvas/internal/element"
	"tripcanvas/internal/export"
	"tripcanvas/internal/generator"
	"tripcanvas/internal/render"
	"tripcanvas/internal/storage"
	"tripcanvas/internal/stylepack"
)

const (
	// thumbScale sizes the page thumbnails cached by index.
	thumbScale     = 0.25
	keepSnapshots  = 20
	commandTimeout = 5 * time.Minute
)

func (a *app) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return usagef("")
		}
		return usagef("%s: %v", fs.Name(), err)
	}
	return nil
}

func (a *app) blocks(args []string) error {
	fs := a.flags("blocks")
	cat := fs.String("category", "", "only blocks of this category")
	q := fs.String("search", "", "match name or description")
	if err := parse(fs, args); err != nil {
		return err
	}
	reg := generator.Default()
	defs := reg.Search(*q)
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, d := range defs {
		if *cat != "" && d.Category != *cat {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Category, d.Name, d.Description)
	}
	return tw.Flush()
}

func (a *app) generate(args []string) error {
	fs := a.flags("generate")
	data := fs.StringArray("data", nil, "binding key=value (repeatable)")
	page := fs.String("page", "", "write a page JSON file holding the block")
	x := fs.Float64("x", generator.Bleed, "anchor x")
	y := fs.Float64("y", generator.Bleed, "anchor y")
	width := fs.Float64("width", generator.ContentWidth, "available width")
	style := fs.String("style", "", "style name from the project styles folder, or a style file")
	project := fs.String("project", ".", "project root holding styles/")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("generate requires <block>")
	}
	bindings, err := parseData(*data)
	if err != nil {
		return err
	}
	opt := generator.Options{X: *x, Y: *y, Width: *width, Data: bindings}
	if *style != "" {
		st, err := stylepack.Find(*project, *style)
		if err != nil {
			return err
		}
		opt.Style = st.Palette()
	}
	elems, err := generator.Default().Generate(fs.Arg(0), opt)
	if err != nil {
		return err
	}
	if *page == "" {
		return writeJSON(a.stdout, element.List(elems))
	}
	pg := element.Page{
		ID:              "page-" + generator.DefaultSeeder.Next(),
		Width:           generator.PageWidth,
		Height:          generator.PageHeight,
		BackgroundColor: "#ffffff",
		Elements:        elems,
	}
	var buf bytes.Buffer
	if err := writeJSON(&buf, pg); err != nil {
		return err
	}
	if err := os.WriteFile(*page, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	a.log.Info("block generated", slog.String("block", fs.Arg(0)), slog.Int("elements", len(elems)), slog.String("page", *page))
	return nil
}

// parseData turns key=value pairs into bindings. Values that parse as
// numbers stay numbers; "a|b|c" becomes a list.
func parseData(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, usagef("--data expects key=value, got %q", p)
		}
		switch {
		case strings.Contains(v, "|"):
			out[k] = strings.Split(v, "|")
		default:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				out[k] = f
			} else {
				out[k] = v
			}
		}
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadDocument reads and validates a document file. The handle is kept for
// crash autosave.
func (a *app) loadDocument(path string) (*storage.DocumentHandle, error) {
	file := path
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		file = filepath.Join(path, storage.DocumentFileName)
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc, err := storage.ValidateDocument(raw)
	if err != nil {
		return nil, err
	}
	h := &storage.DocumentHandle{Root: filepath.Dir(file), Path: file, Doc: doc}
	a.handle = h
	return h, nil
}

func (a *app) validate(args []string) error {
	fs := a.flags("validate")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("validate requires <doc>")
	}
	h, err := a.loadDocument(fs.Arg(0))
	if err != nil {
		return err
	}
	n := 0
	for _, pg := range h.Doc.Pages {
		element.Walk(pg.Elements, func(element.Element) bool { n++; return true })
	}
	fmt.Fprintf(a.stdout, "ok: %s (%d pages, %d elements)\n", h.Doc.ID, len(h.Doc.Pages), n)
	return nil
}

type exportFlags struct {
	formats *[]string
	out     *string
	preset  *string
	pages   *[]int
}

func (a *app) exportFlagSet(name string) (*pflag.FlagSet, exportFlags) {
	fs := a.flags(name)
	return fs, exportFlags{
		formats: fs.StringSlice("format", nil, "pdf, png, svg, zip (default from config)"),
		out:     fs.String("out", "", "output directory (default from config)"),
		preset:  fs.String("preset", "", "web or print"),
		pages:   fs.IntSlice("pages", nil, "zero-based page indexes (default all)"),
	}
}

func (a *app) batchOptions(f exportFlags) export.BatchOptions {
	opt := export.BatchOptions{
		Preset:   export.PresetName(*f.preset),
		Formats:  *f.formats,
		Pages:    *f.pages,
		Scale:    a.cfg.Export.PNGScale,
		FontFile: a.cfg.Render.FontFile,
		Loader:   a.loader(),
	}
	if len(opt.Formats) == 0 && opt.Preset == "" {
		opt.Formats = a.cfg.Export.Formats
	}
	return opt
}

func (a *app) loader() render.Loader {
	l := render.Loader(render.FileLoader{Root: a.cfg.Render.ImageRoot})
	if a.cfg.Render.CacheImages {
		l = render.NewCachingLoader(l)
	}
	return l
}

func (a *app) outDir(flag string, h *storage.DocumentHandle) string {
	switch {
	case flag != "":
		return flag
	case filepath.IsAbs(a.cfg.Export.OutputDir):
		return a.cfg.Export.OutputDir
	default:
		return filepath.Join(h.Root, a.cfg.Export.OutputDir)
	}
}

func (a *app) export(args []string) error {
	fs, f := a.exportFlagSet("export")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("export requires <doc>")
	}
	h, err := a.loadDocument(fs.Arg(0))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	paths, err := export.BatchExport(ctx, h.Doc, a.outDir(*f.out, h), a.batchOptions(f))
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(a.stdout, p)
	}
	return nil
}

func (a *app) index(args []string) error {
	fs := a.flags("index")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("index requires <doc>")
	}
	h, err := a.loadDocument(fs.Arg(0))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if rebuilt, err := storage.DetectAndRebuildIndex(ctx, h.Root, h.Doc); err != nil {
		return err
	} else if rebuilt {
		a.log.Warn("index rebuilt", slog.String("root", h.Root))
	}
	ix, err := storage.OpenIndex(h.Root)
	if err != nil {
		return err
	}
	defer ix.Close()
	if err := ix.IndexDocument(ctx, h.Doc); err != nil {
		return err
	}

	lists, err := export.RenderPages(ctx, h.Doc, nil, a.loader())
	if err != nil {
		return err
	}
	now := time.Now()
	for i, pg := range h.Doc.Pages {
		if err := ix.SaveSnapshot(ctx, pg, now); err != nil {
			return err
		}
		if _, err := ix.PruneOldSnapshots(ctx, pg.ID, keepSnapshots); err != nil {
			return err
		}
		// a changed page gets a fresh thumbnail
		if err := ix.InvalidatePreviews(ctx, h.Doc.ID, pg.ID); err != nil {
			return err
		}
		bg := lists[i].Background()
		key := storage.PreviewKey{DocID: h.Doc.ID, PageID: pg.ID,
			W: int(bg.Width * thumbScale), H: int(bg.Height * thumbScale)}
		list := lists[i]
		if _, err := ix.GetOrCreatePreview(ctx, key, func(context.Context) ([]byte, error) {
			var buf bytes.Buffer
			err := export.PNG(list, &buf, export.PNGOptions{Scale: thumbScale, FontFile: a.cfg.Render.FontFile})
			return buf.Bytes(), err
		}); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.stdout, "indexed %s: %d pages\n", h.Doc.ID, len(h.Doc.Pages))
	return nil
}

func (a *app) search(args []string) error {
	fs := a.flags("search")
	types := fs.StringSlice("type", nil, "entry types to match")
	limit := fs.Int("limit", 50, "maximum results")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return usagef("search requires <root> and <query>")
	}
	ix, err := storage.OpenIndex(fs.Arg(0))
	if err != nil {
		return err
	}
	defer ix.Close()
	res, err := ix.Search(context.Background(), storage.SearchQuery{
		Text:  strings.Join(fs.Args()[1:], " "),
		Types: *types,
		Limit: *limit,
	})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, r := range res {
		text := r.Snippet
		if text == "" {
			text = r.Text
		}
		fmt.Fprintf(tw, "p%d\t%s\t%s\t%s\n", r.PageNo, r.ElementID, r.Type, text)
	}
	return tw.Flush()
}

func (a *app) styles(args []string) error {
	if len(args) == 0 {
		return usagef("styles requires list, export or install")
	}
	fs := a.flags("styles " + args[0])
	if err := parse(fs, args[1:]); err != nil {
		return err
	}
	switch args[0] {
	case "list":
		root := "."
		if fs.NArg() > 0 {
			root = fs.Arg(0)
		}
		styles, err := stylepack.List(root)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		for _, st := range styles {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", st.Name, st.Gold, st.FontFamily)
		}
		return tw.Flush()
	case "export":
		if fs.NArg() != 2 {
			return usagef("styles export requires <root> <zip>")
		}
		if err := stylepack.Export(fs.Arg(0), fs.Arg(1)); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, fs.Arg(1))
		return nil
	case "install":
		if fs.NArg() != 2 {
			return usagef("styles install requires <root> <zip>")
		}
		n, err := stylepack.Install(fs.Arg(0), fs.Arg(1))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "installed %d styles\n", n)
		return nil
	default:
		return usagef("unknown styles command %q", args[0])
	}
}
