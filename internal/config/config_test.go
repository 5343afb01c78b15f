/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.SnapThreshold != 5 || cfg.Editor.PasteOffset != 20 || cfg.Editor.OverlapRatio != 0.1 {
		t.Fatalf("unexpected editor defaults: %+v", cfg.Editor)
	}
	if cfg.Render.FontFamily != "Noto Sans TC" || len(cfg.Export.Formats) != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("editor:\n  snap_threshold: 8\nexport:\n  formats: [PNG, ' svg ']\nlogging:\n  level: DEBUG\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.SnapThreshold != 8 || cfg.Editor.PasteOffset != 20 {
		t.Fatalf("editor not merged: %+v", cfg.Editor)
	}
	if len(cfg.Export.Formats) != 2 || cfg.Export.Formats[0] != "png" || cfg.Export.Formats[1] != "svg" {
		t.Fatalf("formats not normalized: %v", cfg.Export.Formats)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level = %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("editor: [unclosed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Editor.SnapThreshold != 5 {
		t.Fatalf("defaults must still be returned: %+v", cfg.Editor)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Defaults()
	cfg.Render.ImageRoot = "/srv/images"
	cfg.Render.CacheImages = false
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Render.ImageRoot != "/srv/images" || got.Render.CacheImages {
		t.Fatalf("render config not persisted: %+v", got.Render)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvSnapThreshold, "3.5")
	t.Setenv(EnvExportFormats, "pdf, PNG,zip")
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogSource, "yes")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.SnapThreshold != 3.5 {
		t.Fatalf("snap threshold = %v", cfg.Editor.SnapThreshold)
	}
	if len(cfg.Export.Formats) != 3 || cfg.Export.Formats[1] != "png" {
		t.Fatalf("formats = %v", cfg.Export.Formats)
	}
	if cfg.Logging.Level != "error" || !cfg.Logging.Source {
		t.Fatalf("logging overrides not applied: %+v", cfg.Logging)
	}
	if env, ok := EnvOverrideFor("editor.snap_threshold"); !ok || env != EnvSnapThreshold {
		t.Fatalf("EnvOverrideFor mismatch: %q %v", env, ok)
	}
	if _, ok := EnvOverrideFor("render.image_root"); ok {
		t.Fatalf("image_root is not overridden")
	}
}

func TestMergeIgnoresZeroValues(t *testing.T) {
	dst := Defaults()
	var src AppConfig
	src.Render.CacheImages = true
	mergeInto(&dst, &src)
	if dst.Editor.SnapThreshold != 5 || dst.Export.OutputDir != "export" {
		t.Fatalf("zero values must not override defaults: %+v", dst)
	}
}
