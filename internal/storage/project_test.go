/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tripcanvas/internal/element"
)

func TestInitProjectCreatesStructureAndDocument(t *testing.T) {
	root := t.TempDir()
	h, err := InitProject(root, sampleDoc())
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	if h.Path != filepath.Join(root, DocumentFileName) {
		t.Fatalf("unexpected document path %q", h.Path)
	}
	b, err := os.ReadFile(h.Path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var got element.Document
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}
	if got.Name != "Kyoto trip" || len(got.Pages) != 2 {
		t.Fatalf("document mismatch: %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("expected UpdatedAt to be stamped")
	}
	for _, d := range []string{AssetsDirName, ExportsDirName, BackupsDirName} {
		if fi, err := os.Stat(filepath.Join(root, d)); err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s to exist", d)
		}
	}
}

func TestInitProjectRequiresRoot(t *testing.T) {
	if _, err := InitProject("  ", sampleDoc()); err == nil {
		t.Fatalf("expected error for blank root")
	}
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	root := t.TempDir()
	h, err := InitProject(root, sampleDoc())
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	h.Doc.Name = "changed"
	if err := Save(h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	baks, err := Backups(h)
	if err != nil {
		t.Fatalf("Backups error: %v", err)
	}
	if len(baks) != 1 {
		t.Fatalf("expected one backup, got %d", len(baks))
	}
	b, _ := os.ReadFile(baks[0])
	if !strings.Contains(string(b), "Kyoto trip") {
		t.Fatalf("backup should hold the previous content")
	}
}

func TestOpenAcceptsDirectoryOrFile(t *testing.T) {
	root := t.TempDir()
	if _, err := InitProject(root, sampleDoc()); err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	for _, p := range []string{root, filepath.Join(root, DocumentFileName)} {
		h, err := Open(p)
		if err != nil {
			t.Fatalf("Open(%s) error: %v", p, err)
		}
		if h.Root != root {
			t.Fatalf("Open(%s) root = %q", p, h.Root)
		}
		pg := h.Doc.Pages[0]
		e, ok := pg.Find("cover-title")
		if !ok {
			t.Fatalf("cover-title missing after reload")
		}
		if txt := e.(*element.Text); txt.Content != "Autumn in Kyoto" {
			t.Fatalf("content = %q", txt.Content)
		}
	}
}

func TestOpenFallsBackToLatestBackup(t *testing.T) {
	root := t.TempDir()
	h, err := InitProject(root, sampleDoc())
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	h.Doc.Name = "second"
	if err := Save(h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	// corrupt the live file; the backup holds the first save
	if err := os.WriteFile(h.Path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if got.Doc.Name != "Kyoto trip" {
		t.Fatalf("expected backup content, got %q", got.Doc.Name)
	}
}

func TestOpenWithoutFileOrBackupFails(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSaveAsMovesHandle(t *testing.T) {
	h, err := InitProject(t.TempDir(), sampleDoc())
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	dst := filepath.Join(t.TempDir(), "copy")
	if err := SaveAs(h, dst); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}
	if h.Root != dst {
		t.Fatalf("root not updated: %q", h.Root)
	}
	if _, err := os.Stat(filepath.Join(dst, DocumentFileName)); err != nil {
		t.Fatalf("document not written: %v", err)
	}
}

func TestAutosaveCrashSnapshotLeavesDocumentAlone(t *testing.T) {
	root := t.TempDir()
	h, err := InitProject(root, sampleDoc())
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	before, _ := os.ReadFile(h.Path)
	h.Doc.Name = "unsaved edit"
	path, err := AutosaveCrashSnapshot(h)
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(root, BackupsDirName) {
		t.Fatalf("snapshot outside backups: %s", path)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "unsaved edit") {
		t.Fatalf("snapshot missing in-memory state")
	}
	after, _ := os.ReadFile(h.Path)
	if string(before) != string(after) {
		t.Fatalf("document file must not change")
	}
}

func TestBackupNamesSortChronologically(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 5e6, time.UTC)
	a := backupName(DocumentFileName, t0)
	b := backupName(DocumentFileName, t0.Add(90*time.Millisecond))
	if !(a < b) {
		t.Fatalf("%s should sort before %s", a, b)
	}
}
