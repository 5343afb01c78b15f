/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type EditorConfig struct {
	SnapThreshold float64 `yaml:"snap_threshold"`
	PasteOffset   float64 `yaml:"paste_offset"`
	Nudge         float64 `yaml:"nudge"`
	NudgeLarge    float64 `yaml:"nudge_large"`
	RulerSnap     float64 `yaml:"ruler_snap"`
	// OverlapRatio is the share of the smaller element that must be covered
	// before two elements are reported as overlapping.
	OverlapRatio float64 `yaml:"overlap_ratio"`
}

type RenderConfig struct {
	ImageRoot   string `yaml:"image_root"`
	FontFamily  string `yaml:"font_family"`
	FontFile    string `yaml:"font_file"` // optional TTF used for measuring and exports
	CacheImages bool   `yaml:"cache_images"`
}

type ExportConfig struct {
	Formats   []string `yaml:"formats"`
	OutputDir string   `yaml:"output_dir"`
	PNGScale  float64  `yaml:"png_scale"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	Render        RenderConfig  `yaml:"render"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor:        EditorConfig{SnapThreshold: 5, PasteOffset: 20, Nudge: 1, NudgeLarge: 10, RulerSnap: 5, OverlapRatio: 0.1},
		Render:        RenderConfig{FontFamily: "Noto Sans TC", CacheImages: true},
		Export:        ExportConfig{Formats: []string{"pdf"}, OutputDir: "export", PNGScale: 1},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvSnapThreshold = "TRIPCANVAS_SNAP_THRESHOLD"
	EnvPasteOffset   = "TRIPCANVAS_PASTE_OFFSET"
	EnvImageRoot     = "TRIPCANVAS_IMAGE_ROOT"
	EnvFontFile      = "TRIPCANVAS_FONT_FILE"
	EnvExportDir     = "TRIPCANVAS_EXPORT_DIR"
	EnvExportFormats = "TRIPCANVAS_EXPORT_FORMATS"
	EnvLogLevel      = "TRIPCANVAS_LOG_LEVEL"
	EnvLogFormat     = "TRIPCANVAS_LOG_FORMAT"
	EnvLogSource     = "TRIPCANVAS_LOG_SOURCE"
	EnvLogFile       = "TRIPCANVAS_LOG_FILE"
)

var envKeys = map[string]string{
	"editor.snap_threshold": EnvSnapThreshold,
	"editor.paste_offset":   EnvPasteOffset,
	"render.image_root":     EnvImageRoot,
	"render.font_file":      EnvFontFile,
	"export.output_dir":     EnvExportDir,
	"export.formats":        EnvExportFormats,
	"logging.level":         EnvLogLevel,
	"logging.format":        EnvLogFormat,
	"logging.source":        EnvLogSource,
	"logging.file":          EnvLogFile,
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "TripCanvas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "TripCanvas")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "tripcanvas")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "tripcanvas")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file at path (the user config path when empty),
// merges it over the defaults and applies environment overrides. A missing
// file is not an error.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			applyEnvOverrides(&cfg)
			return cfg, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes cfg as YAML to path (the user config path when empty).
func Save(cfg AppConfig, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	mergeFloat(&dst.Editor.SnapThreshold, src.Editor.SnapThreshold)
	mergeFloat(&dst.Editor.PasteOffset, src.Editor.PasteOffset)
	mergeFloat(&dst.Editor.Nudge, src.Editor.Nudge)
	mergeFloat(&dst.Editor.NudgeLarge, src.Editor.NudgeLarge)
	mergeFloat(&dst.Editor.RulerSnap, src.Editor.RulerSnap)
	mergeFloat(&dst.Editor.OverlapRatio, src.Editor.OverlapRatio)

	mergeString(&dst.Render.ImageRoot, src.Render.ImageRoot)
	mergeString(&dst.Render.FontFamily, src.Render.FontFamily)
	mergeString(&dst.Render.FontFile, src.Render.FontFile)
	// booleans: copy directly from the file so user preferences persist
	dst.Render.CacheImages = src.Render.CacheImages

	if len(src.Export.Formats) > 0 {
		dst.Export.Formats = normalizeFormats(src.Export.Formats)
	}
	mergeString(&dst.Export.OutputDir, src.Export.OutputDir)
	mergeFloat(&dst.Export.PNGScale, src.Export.PNGScale)

	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	mergeString(&dst.Logging.File, src.Logging.File)
}

func mergeFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func mergeString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func normalizeFormats(in []string) []string {
	var out []string
	for _, f := range in {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	envFloat := func(key string, dst *float64) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				*dst = f
			}
		}
	}
	envFloat(EnvSnapThreshold, &cfg.Editor.SnapThreshold)
	envFloat(EnvPasteOffset, &cfg.Editor.PasteOffset)
	if v := strings.TrimSpace(os.Getenv(EnvImageRoot)); v != "" {
		cfg.Render.ImageRoot = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontFile)); v != "" {
		cfg.Render.FontFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.Export.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportFormats)); v != "" {
		cfg.Export.Formats = normalizeFormats(strings.Split(v, ","))
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
