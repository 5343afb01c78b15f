/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"tripcanvas/internal/storage"
)

func TestBundleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDoc()
	path, err := Bundle(context.Background(), doc, filepath.Join(dir, "out", "trip"), BundleOptions{})
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if filepath.Ext(path) != ".zip" {
		t.Fatalf("extension not enforced: %s", path)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	_ = zr.Close()
	for _, want := range []string{BundleDocument, BundleManifest, "pages/1.png", "pages/2.png"} {
		if !slices.Contains(names, want) {
			t.Fatalf("bundle lacks %s: %v", want, names)
		}
	}

	got, man, err := ReadBundle(path)
	if err != nil {
		t.Fatalf("read bundle: %v", err)
	}
	if got.ID != doc.ID || len(got.Pages) != 2 || len(got.Pages[0].Elements) != len(doc.Pages[0].Elements) {
		t.Fatalf("document not preserved: %+v", got)
	}
	if man.Format != BundleFormat || man.DocumentID != doc.ID || len(man.Pages) != 2 {
		t.Fatalf("unexpected manifest %+v", man)
	}
}

func TestReadBundleRejectsInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zip")
	zw, f, err := createZip(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := addZipFile(zw, BundleDocument, []byte(`{"id":"","pages":[]}`)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	if _, _, err := ReadBundle(path); !errors.Is(err, storage.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	if _, _, err := ReadBundle(filepath.Join(t.TempDir(), "missing.zip")); err == nil {
		t.Fatalf("missing bundle should fail")
	}
}

func TestBatchExportWebPreset(t *testing.T) {
	dir := t.TempDir()
	paths, err := BatchExport(context.Background(), sampleDoc(), dir, BatchOptions{Preset: PresetWeb})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	want := []string{
		filepath.Join(dir, "web", "png", "page-1.png"),
		filepath.Join(dir, "web", "png", "page-2.png"),
		filepath.Join(dir, "web", "svg", "page-1.svg"),
		filepath.Join(dir, "web", "svg", "page-2.svg"),
		filepath.Join(dir, "web", "zip", "tokyo-trip-2026.zip"),
	}
	if !slices.Equal(paths, want) {
		t.Fatalf("paths %v, want %v", paths, want)
	}
	for _, p := range want {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}
}

func TestBatchExportFormats(t *testing.T) {
	dir := t.TempDir()
	paths, err := BatchExport(context.Background(), sampleDoc(), dir, BatchOptions{Formats: []string{" PDF ", "pdf"}, Pages: []int{0}})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "pdf", "tokyo-trip-2026.pdf") {
		t.Fatalf("unexpected paths %v", paths)
	}
	if _, err := BatchExport(context.Background(), sampleDoc(), dir, BatchOptions{Formats: []string{"gif"}}); err == nil {
		t.Fatalf("unknown format accepted")
	}
}

func TestPresetDefaults(t *testing.T) {
	if !presetIncludeGuides(PresetPrint) || presetIncludeGuides(PresetWeb) {
		t.Fatalf("guides default wrong")
	}
	if got := presetDefaultFormats(PresetPrint); !slices.Equal(got, []string{FormatPDF, FormatPNG}) {
		t.Fatalf("print formats %v", got)
	}
	if got := normalizeFormats([]string{"Bundle", "zip", ""}); !slices.Equal(got, []string{FormatZip}) {
		t.Fatalf("normalize %v", got)
	}
}
