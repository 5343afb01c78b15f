/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package stylepack stores named palettes for the block generators as YAML
// files under <project>/styles and moves them between projects as zip packs.
package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tripcanvas/internal/generator"
	applog "tripcanvas/internal/log"
)

const (
	// DirName is the styles folder inside a project.
	DirName = "styles"
	// ManifestName is the text manifest at the root of a pack.
	ManifestName = "stylepack.manifest.txt"
	ext          = ".yaml"
)

// ErrNotFound is returned when no style file carries the requested name.
var ErrNotFound = errors.New("style not found")

// Style is one palette as stored on disk. Empty colours fall back to the
// house palette when applied.
type Style struct {
	Name       string `yaml:"name"`
	Gold       string `yaml:"gold,omitempty"`
	Black      string `yaml:"black,omitempty"`
	Gray       string `yaml:"gray,omitempty"`
	LightGray  string `yaml:"light_gray,omitempty"`
	White      string `yaml:"white,omitempty"`
	FontFamily string `yaml:"font_family,omitempty"`
}

// Palette converts s for generator.Options.Style.
func (s Style) Palette() *generator.Palette {
	return &generator.Palette{
		Gold:       s.Gold,
		Black:      s.Black,
		Gray:       s.Gray,
		LightGray:  s.LightGray,
		White:      s.White,
		FontFamily: s.FontFamily,
	}
}

// Load reads one style file. A style without a name takes the file name.
func Load(path string) (Style, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Style{}, fmt.Errorf("read style: %w", err)
	}
	var s Style
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Style{}, fmt.Errorf("parse style %s: %w", path, err)
	}
	if strings.TrimSpace(s.Name) == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Save writes s to <projectRoot>/styles/<name>.yaml and returns the path.
func Save(projectRoot string, s Style) (string, error) {
	name := fileName(s.Name)
	if name == "" {
		return "", errors.New("style name is required")
	}
	dir := filepath.Join(projectRoot, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure styles dir: %w", err)
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal style: %w", err)
	}
	path := filepath.Join(dir, name+ext)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write style: %w", err)
	}
	return path, nil
}

// List returns the styles of a project sorted by name. A missing styles
// folder yields none. Unreadable files are logged and skipped.
func List(projectRoot string) ([]Style, error) {
	dir := filepath.Join(projectRoot, DirName)
	var out []Style
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !isStyleFile(path) {
			return nil
		}
		s, err := Load(path)
		if err != nil {
			applog.WithComponent("stylepack").Warn("skip style", slog.String("path", path), slog.Any("err", err))
			return nil
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Find returns the project style called name, or loads name as a path when
// it points at a file.
func Find(projectRoot, name string) (Style, error) {
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		return Load(name)
	}
	styles, err := List(projectRoot)
	if err != nil {
		return Style{}, err
	}
	for _, s := range styles {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return Style{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Export zips the project's styles folder into destZip with a manifest at
// the root. An empty folder still produces a pack holding the manifest.
func Export(projectRoot, destZip string) error {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" || strings.TrimSpace(destZip) == "" {
		return errors.New("project root and destination are required")
	}
	styles, err := List(projectRoot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	zf, err := os.Create(destZip)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	var names []string
	for _, s := range styles {
		names = append(names, s.Name)
	}
	manifest := fmt.Sprintf("tripcanvas style pack\nCreated: %s\nStyles: %s\n",
		time.Now().UTC().Format(time.RFC3339), strings.Join(names, ", "))
	if err := writeEntry(zw, ManifestName, []byte(manifest)); err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	for _, s := range styles {
		b, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal style: %w", err)
		}
		if err := writeEntry(zw, DirName+"/"+fileName(s.Name)+ext, b); err != nil {
			l.Error("zip build failed", slog.Any("err", err))
			return fmt.Errorf("add style: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	l.Info("style pack exported", slog.Int("styles", len(styles)), slog.String("zip", destZip))
	return zf.Close()
}

// Install extracts the styles of a pack into the project. Existing files
// are kept and entries that are not style files are ignored. It returns
// the number of styles installed.
func Install(projectRoot, packZip string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" || strings.TrimSpace(packZip) == "" {
		return 0, errors.New("project root and pack are required")
	}
	r, err := zip.OpenReader(packZip)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()
	dir := filepath.Join(projectRoot, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure styles dir: %w", err)
	}

	installed := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isStyleFile(f.Name) {
			continue
		}
		// flatten: entries never escape the styles folder
		target := filepath.Join(dir, filepath.Base(filepath.FromSlash(f.Name)))
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing style", slog.String("path", target))
			continue
		}
		b, err := readEntry(f)
		if err != nil {
			return installed, err
		}
		var s Style
		if err := yaml.Unmarshal(b, &s); err != nil {
			l.Warn("skip malformed style", slog.String("entry", f.Name), slog.Any("err", err))
			continue
		}
		if err := os.WriteFile(target, b, 0o644); err != nil {
			return installed, fmt.Errorf("write style: %w", err)
		}
		installed++
	}
	l.Info("style pack installed", slog.Int("styles", installed))
	return installed, nil
}

func isStyleFile(name string) bool {
	e := strings.ToLower(filepath.Ext(name))
	return e == ".yaml" || e == ".yml"
}

// fileName lower-cases name and keeps it to letters, digits and dashes.
func fileName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
