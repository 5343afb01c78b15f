/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name
	Size   float64
	Weight int // 100..900, 0 means 400
	Italic bool
}

// Metrics provides font metrics in page units for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
		LineGap: fixedToFloat(m.Height - m.Ascent - m.Descent),
	}
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
// Every glyph is 7 units wide regardless of the requested size.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	return basicfont.Face7x13, metricsOf(basicfont.Face7x13)
}

// FontLibrary stores parsed OpenType fonts keyed by family, weight and
// italic flag. It is safe for concurrent use.
type FontLibrary struct {
	mu      sync.RWMutex
	fonts   map[fontKey]*opentype.Font
	fallback string
}

type fontKey struct {
	family string
	weight int
	italic bool
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[fontKey]*opentype.Font)} }

// NewGoFontLibrary returns a library preloaded with the Go fonts under the
// family "Go", which also serves as fallback for unknown families.
func NewGoFontLibrary() *FontLibrary {
	fl := NewFontLibrary()
	for _, f := range []struct {
		weight int
		italic bool
		data   []byte
	}{
		{400, false, goregular.TTF},
		{700, false, gobold.TTF},
		{400, true, goitalic.TTF},
		{700, true, gobolditalic.TTF},
	} {
		// the embedded fonts always parse
		_ = fl.LoadBytes("Go", f.weight, f.italic, f.data)
	}
	fl.fallback = "Go"
	return fl
}

// LoadTTF loads a font file into the library under the given family/weight/italic.
func (fl *FontLibrary) LoadTTF(family string, weight int, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	if err := fl.LoadBytes(family, weight, italic, data); err != nil {
		return fmt.Errorf("font %s: %w", path, err)
	}
	return nil
}

// LoadBytes parses an in-memory TTF/OTF font.
func (fl *FontLibrary) LoadBytes(family string, weight int, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	fl.fonts[fontKey{family: strings.ToLower(family), weight: weight, italic: italic}] = f
	return nil
}

// SetFallback names the family used when a requested family is missing.
func (fl *FontLibrary) SetFallback(family string) {
	fl.mu.Lock()
	fl.fallback = family
	fl.mu.Unlock()
}

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	if f := fl.closest(strings.ToLower(spec.Family), spec); f != nil {
		return f
	}
	if fl.fallback != "" {
		return fl.closest(strings.ToLower(fl.fallback), spec)
	}
	return nil
}

// closest prefers matching slant, then the nearest weight.
func (fl *FontLibrary) closest(family string, spec FontSpec) *opentype.Font {
	want := spec.Weight
	if want == 0 {
		want = 400
	}
	var best *opentype.Font
	bestScore := math.MaxInt
	for k, f := range fl.fonts {
		if k.family != family {
			continue
		}
		score := abs(k.weight - want)
		if k.italic != spec.Italic {
			score += 1000
		}
		if score < bestScore {
			best, bestScore = f, score
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another
// Provider. Faces are cached per spec.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider

	mu    sync.Mutex
	faces map[FontSpec]cachedFace
}

type cachedFace struct {
	face font.Face
	met  Metrics
}

func (p *OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.Size <= 0 {
		spec.Size = 12
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.faces[spec]; ok {
		return c.face, c.met
	}
	if f := p.Lib.find(spec); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.Size, DPI: dpi, Hinting: font.HintingNone})
		if err == nil {
			if p.faces == nil {
				p.faces = make(map[FontSpec]cachedFace)
			}
			c := cachedFace{face: face, met: metricsOf(face)}
			p.faces[spec] = c
			return c.face, c.met
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}

// DefaultProvider measures with the embedded Go fonts.
func DefaultProvider() Provider {
	return &OTProvider{Lib: NewGoFontLibrary()}
}
