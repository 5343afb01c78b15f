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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tripcanvas/internal/element"
	applog "tripcanvas/internal/log"
)

const (
	DocumentFileName = "document.json"
	BackupsDirName   = "backups"
	AssetsDirName    = "assets"
	ExportsDirName   = "exports"

	// backupStamp sorts lexicographically in time order.
	backupStamp = "20060102-150405.000"
)

var standardSubDirs = []string{
	AssetsDirName,
	ExportsDirName,
	BackupsDirName,
}

// DocumentHandle tracks a document loaded from or saved to disk.
// Root is the project directory; Path the document file inside it.
type DocumentHandle struct {
	Root string
	Path string
	Doc  element.Document
}

// InitProject creates a project directory at root with the standard
// subfolders and writes doc as its document.
func InitProject(root string, doc element.Document) (*DocumentHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := scaffold(root); err != nil {
		return nil, err
	}
	h := &DocumentHandle{
		Root: root,
		Path: filepath.Join(root, DocumentFileName),
		Doc:  doc,
	}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

func scaffold(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return nil
}

// Open loads a document. path is either a project directory or a document
// file. When the file cannot be read or decoded the latest backup is used.
func Open(path string) (*DocumentHandle, error) {
	root, file := resolve(path)
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("path", file))
	b, err := os.ReadFile(file)
	if err == nil {
		var doc element.Document
		if err = json.Unmarshal(b, &doc); err == nil {
			return &DocumentHandle{Root: root, Path: file, Doc: doc}, nil
		}
		err = fmt.Errorf("parse document: %w", err)
	} else {
		err = fmt.Errorf("open document: %w", err)
	}
	doc, berr := openFromLatestBackup(root, filepath.Base(file))
	if berr != nil {
		return nil, fmt.Errorf("%w; backup attempt: %v", err, berr)
	}
	l.Warn("document unreadable, restored latest backup", slog.Any("err", err))
	return &DocumentHandle{Root: root, Path: file, Doc: *doc}, nil
}

func resolve(path string) (root, file string) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return path, filepath.Join(path, DocumentFileName)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return filepath.Dir(path), path
	}
	return path, filepath.Join(path, DocumentFileName)
}

// Save writes h.Doc with transactional semantics, keeping a timestamped
// backup of the previous file. UpdatedAt is stamped with the save time.
func Save(h *DocumentHandle) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	if h.Root == "" || h.Path == "" {
		return errors.New("invalid DocumentHandle: missing paths")
	}
	h.Doc.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	data, err := json.MarshalIndent(h.Doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(h.Path); statErr == nil {
		bpath := filepath.Join(bdir, backupName(filepath.Base(h.Path), time.Now()))
		if cerr := copyFile(h.Path, bpath); cerr != nil {
			return fmt.Errorf("backup current document: %w", cerr)
		}
	}
	if err := replaceFile(h.Path, data); err != nil {
		return err
	}
	applog.WithOperation(applog.WithComponent("storage"), "save").Debug("document saved",
		slog.String("path", h.Path), slog.Int("pages", len(h.Doc.Pages)))
	return nil
}

func backupName(base string, ts time.Time) string {
	return fmt.Sprintf("%s.%s.bak", base, ts.Format(backupStamp))
}

// replaceFile writes data next to path and renames it over the target.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp document: %w", werr)
	}
	// Windows cannot rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", rerr)
	}
	return nil
}

// SaveAs writes the document into a new project folder and updates h.
func SaveAs(h *DocumentHandle, newRoot string) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := scaffold(newRoot); err != nil {
		return err
	}
	h.Root = newRoot
	h.Path = filepath.Join(newRoot, DocumentFileName)
	return Save(h)
}

// AutosaveCrashSnapshot writes the in-memory document into the backups
// folder without touching the document file. It returns the written path.
func AutosaveCrashSnapshot(h *DocumentHandle) (string, error) {
	if h == nil || h.Root == "" {
		return "", errors.New("invalid DocumentHandle")
	}
	data, err := json.MarshalIndent(h.Doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	base := DocumentFileName
	if h.Path != "" {
		base = filepath.Base(h.Path)
	}
	path := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", base, time.Now().Format(backupStamp)))
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// Backups lists the backup files of the document, oldest first.
func Backups(h *DocumentHandle) ([]string, error) {
	return listBackups(h.Root, filepath.Base(h.Path))
}

func listBackups(root, base string) ([]string, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

func openFromLatestBackup(root, base string) (*element.Document, error) {
	candidates, err := listBackups(root, base)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	// newest first; skip backups that are themselves broken
	var lastErr error
	for i := len(candidates) - 1; i >= 0; i-- {
		b, err := os.ReadFile(candidates[i])
		if err != nil {
			lastErr = fmt.Errorf("read backup: %w", err)
			continue
		}
		var doc element.Document
		if err := json.Unmarshal(b, &doc); err != nil {
			lastErr = fmt.Errorf("parse backup %s: %w", filepath.Base(candidates[i]), err)
			continue
		}
		return &doc, nil
	}
	return nil, lastErr
}
