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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tripcanvas/internal/element"
	"tripcanvas/internal/stylepack"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "missing.yaml"))
	var out, errb bytes.Buffer
	return &app{stdout: &out, stderr: &errb}, &out, &errb
}

// writeDoc generates a hotel block into a one-page document under a fresh
// project directory and returns the document path.
func writeDoc(t *testing.T, a *app) string {
	t.Helper()
	dir := t.TempDir()
	pagePath := filepath.Join(dir, "page.json")
	if code := a.run([]string{"generate", "hotel-info", "--data", "hotelName=Hotel Gracery", "--page", pagePath}); code != 0 {
		t.Fatalf("generate exit %d", code)
	}
	raw, err := os.ReadFile(pagePath)
	if err != nil {
		t.Fatal(err)
	}
	var pg element.Page
	if err := json.Unmarshal(raw, &pg); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	doc := element.Document{ID: "doc-cli", Name: "Tokyo", Pages: []element.Page{pg}}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "document.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersionAndUnknownCommand(t *testing.T) {
	a, out, _ := newTestApp(t)
	if code := a.run([]string{"version"}); code != 0 || !strings.HasPrefix(out.String(), "tripcanvas ") {
		t.Fatalf("version: code %d out %q", code, out.String())
	}
	if code := a.run([]string{"frobnicate"}); code != 2 {
		t.Fatalf("unknown command exit %d", code)
	}
}

func TestBlocksFilter(t *testing.T) {
	a, out, _ := newTestApp(t)
	if code := a.run([]string{"blocks", "--category", "image"}); code != 0 {
		t.Fatalf("exit %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 image blocks, got %q", out.String())
	}
	for _, ln := range lines {
		if !strings.Contains(ln, "image") {
			t.Fatalf("line outside category: %q", ln)
		}
	}
	out.Reset()
	if code := a.run([]string{"blocks", "--search", "FLIGHT"}); code != 0 || !strings.HasPrefix(out.String(), "flight-info") {
		t.Fatalf("search: code %d out %q", code, out.String())
	}
}

func TestGenerateToStdout(t *testing.T) {
	a, out, _ := newTestApp(t)
	if code := a.run([]string{"generate", "hotel-info", "--data", "hotelName=Hotel Gracery"}); code != 0 {
		t.Fatalf("exit %d", code)
	}
	var list element.List
	if err := json.Unmarshal(out.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, e := range list {
		if tx, ok := e.(*element.Text); ok && tx.Content == "Hotel Gracery" {
			found = true
		}
	}
	if !found {
		t.Fatalf("binding not applied: %s", out.String())
	}
	if code := a.run([]string{"generate", "no-such-block"}); code != 1 {
		t.Fatalf("unknown block exit %d", code)
	}
	if code := a.run([]string{"generate", "hotel-info", "--data", "novalue"}); code != 2 {
		t.Fatalf("bad --data exit %d", code)
	}
}

func TestValidate(t *testing.T) {
	a, out, _ := newTestApp(t)
	path := writeDoc(t, a)
	out.Reset()
	if code := a.run([]string{"validate", path}); code != 0 || !strings.HasPrefix(out.String(), "ok: doc-cli (1 pages") {
		t.Fatalf("validate: code %d out %q", code, out.String())
	}
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"id":"x","pages":[{"id":"p","width":0,"height":10,"elements":[]}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if code := a.run([]string{"validate", bad}); code != 1 {
		t.Fatalf("invalid document exit %d", code)
	}
}

func TestExportWritesFiles(t *testing.T) {
	a, out, _ := newTestApp(t)
	path := writeDoc(t, a)
	dir := t.TempDir()
	out.Reset()
	if code := a.run([]string{"export", path, "--format", "svg,png", "--out", dir}); code != 0 {
		t.Fatalf("exit %d", code)
	}
	for _, want := range []string{"svg/page-1.svg", "png/page-1.png"} {
		p := filepath.Join(dir, filepath.FromSlash(want))
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing %s: %v", want, err)
		}
		if !strings.Contains(out.String(), p) {
			t.Fatalf("path %s not reported: %q", p, out.String())
		}
	}
}

func TestIndexThenSearch(t *testing.T) {
	a, out, _ := newTestApp(t)
	path := writeDoc(t, a)
	out.Reset()
	if code := a.run([]string{"index", path}); code != 0 {
		t.Fatalf("index exit %d", code)
	}
	out.Reset()
	if code := a.run([]string{"search", filepath.Dir(path), "Gracery"}); code != 0 {
		t.Fatalf("search exit %d", code)
	}
	if !strings.Contains(out.String(), "Gracery") {
		t.Fatalf("no hit: %q", out.String())
	}
}

func TestParseData(t *testing.T) {
	got, err := parseData([]string{"day=3", "title=Day 3", "spots=Asakusa|Ueno"})
	if err != nil {
		t.Fatal(err)
	}
	if got["day"] != 3.0 || got["title"] != "Day 3" {
		t.Fatalf("unexpected bindings %v", got)
	}
	if spots, ok := got["spots"].([]string); !ok || len(spots) != 2 {
		t.Fatalf("list not split: %v", got["spots"])
	}
}

func TestWatchFileFiresAfterWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "document.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fired := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() { done <- watchFile(ctx, path, func() { fired <- struct{}{} }) }()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	for range 3 {
		if err := os.WriteFile(path, []byte(`{"id":"x"}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
}

func TestGenerateWithStyle(t *testing.T) {
	a, out, _ := newTestApp(t)
	root := t.TempDir()
	if _, err := stylepack.Save(root, stylepack.Style{Name: "Sakura", Gold: "#e8a0b4"}); err != nil {
		t.Fatal(err)
	}
	if code := a.run([]string{"generate", "header", "--project", root, "--style", "sakura"}); code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out.String(), "#e8a0b4") {
		t.Fatalf("style not applied: %s", out.String())
	}
	out.Reset()
	if code := a.run([]string{"styles", "list", root}); code != 0 || !strings.HasPrefix(out.String(), "Sakura") {
		t.Fatalf("styles list: code %d out %q", code, out.String())
	}
	if code := a.run([]string{"generate", "header", "--project", root, "--style", "missing"}); code != 1 {
		t.Fatalf("missing style exit %d", code)
	}
}
