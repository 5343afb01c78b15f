/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"tripcanvas/internal/element"
	"tripcanvas/internal/generator"
	"tripcanvas/internal/render"
	"tripcanvas/internal/vector"
)

// Default styles of elements created by the add commands.
const (
	DefaultText       = "雙擊編輯文字"
	defaultTextColor  = "#3a3633"
	defaultTextSize   = 24
	defaultTextWidth  = 200
	defaultShapeFill  = "#c9aa7c"
	defaultShapeLine  = "#b8996b"
	defaultLineColor  = "#3a3633"
	defaultLineLength = 100
	defaultIconSize   = 64
	defaultStickerBox = 100
)

// ErrUnknownAsset is returned when an icon or sticker name is not in the
// built-in libraries.
var ErrUnknownAsset = errors.New("unknown asset")

// AddOptions places a new element. A nil At centres the element on the
// page; zero sizes select the element's default size.
type AddOptions struct {
	At     *vector.Pt
	Width  float64
	Height float64
	Color  string
}

func (o AddOptions) size(w, h float64) (float64, float64) {
	if o.Width > 0 {
		w = o.Width
	}
	if o.Height > 0 {
		h = o.Height
	}
	return w, h
}

// frame returns the rect of size w x h centred on At or the page centre.
func (e *Engine) frame(o AddOptions, w, h float64) vector.Rect {
	c := e.pageRect().Center()
	if o.At != nil {
		c = *o.At
	}
	return vector.R(c.X-w/2, c.Y-h/2, w, h)
}

// place stacks el above the page, adds it and selects it.
func (e *Engine) place(el element.Element) string {
	if e.state == TextEditing {
		e.EndTextEdit()
	}
	b := el.Common()
	b.ZIndex = element.MaxZ(e.page.Elements) + 1
	e.add(el)
	e.setSelection([]string{b.ID})
	e.committed()
	return b.ID
}

// AddText adds a text box; an empty content uses DefaultText.
func (e *Engine) AddText(content string, o AddOptions) string {
	if e.disposed {
		return ""
	}
	if content == "" {
		content = DefaultText
	}
	w, h := o.size(defaultTextWidth, math.Ceil(defaultTextSize*1.4))
	color := o.Color
	if color == "" {
		color = defaultTextColor
	}
	t := &element.Text{
		Base:    element.NewBase(element.TypeText, e.newID(element.TypeText), e.frame(o, w, h)),
		Content: content,
		Style: element.TextStyle{
			FontFamily: generator.DefaultPalette().FontFamily,
			FontSize:   defaultTextSize,
			FontWeight: "normal",
			FontStyle:  "normal",
			Color:      color,
			TextAlign:  "left",
			LineHeight: 1.2,
		},
	}
	return e.place(t)
}

// AddShape adds a rectangle, circle or ellipse in the house colours.
func (e *Engine) AddShape(variant element.ShapeVariant, o AddOptions) (string, error) {
	if e.disposed {
		return "", ErrDisposed
	}
	var w, h float64
	switch variant {
	case element.Rectangle:
		w, h = 100, 80
	case element.Circle:
		w, h = 100, 100
	case element.Ellipse:
		w, h = 120, 80
	default:
		return "", fmt.Errorf("add shape %q: %w", variant, element.ErrUnknownType)
	}
	w, h = o.size(w, h)
	fill := o.Color
	if fill == "" {
		fill = defaultShapeFill
	}
	s := &element.Shape{
		Base:        element.NewBase(element.TypeShape, e.newID(element.TypeShape), e.frame(o, w, h)),
		Variant:     variant,
		Fill:        fill,
		Stroke:      defaultShapeLine,
		StrokeWidth: 1,
	}
	return e.place(s), nil
}

// AddImage adds an image. Without a size it takes 60% of the page width at
// 4:3. An empty src adds a placeholder awaiting media.
func (e *Engine) AddImage(src string, o AddOptions) string {
	if e.disposed {
		return ""
	}
	w := math.Round(e.page.Width * 0.6)
	w, h := o.size(w, math.Round(w*0.75))
	im := &element.Image{
		Base:        element.NewBase(element.TypeImage, e.newID(element.TypeImage), e.frame(o, w, h)),
		Src:         src,
		ObjectFit:   "cover",
		Placeholder: strings.TrimSpace(src) == "",
	}
	return e.place(im)
}

// AddLine adds a horizontal line in style solid, dashed or dotted; arrow
// puts an arrow head on its end.
func (e *Engine) AddLine(style string, arrow bool, o AddOptions) string {
	if e.disposed {
		return ""
	}
	switch style {
	case "dashed", "dotted":
	default:
		style = "solid"
	}
	w, _ := o.size(defaultLineLength, 0)
	color := o.Color
	if color == "" {
		color = defaultLineColor
	}
	r := e.frame(o, w, 0)
	l := &element.Line{
		Base:        element.NewBase(element.TypeLine, e.newID(element.TypeLine), r),
		X2:          w,
		Stroke:      color,
		StrokeWidth: 2,
		LineStyle:   style,
	}
	if arrow {
		l.EndEndpoint = "arrow"
	}
	return e.place(l)
}

// AddIcon adds a glyph from the icon library.
func (e *Engine) AddIcon(name string, o AddOptions) (string, error) {
	if e.disposed {
		return "", ErrDisposed
	}
	if _, ok := render.IconPath(name); !ok {
		return "", fmt.Errorf("add icon %q: %w", name, ErrUnknownAsset)
	}
	w, h := o.size(defaultIconSize, defaultIconSize)
	color := o.Color
	if color == "" {
		color = defaultTextColor
	}
	ic := &element.Icon{
		Base:  element.NewBase(element.TypeIcon, e.newID(element.TypeIcon), e.frame(o, w, h)),
		Icon:  name,
		Color: color,
	}
	return e.place(ic), nil
}

// AddSticker adds a decoration from the sticker library, sized to its view
// box aspect within the default 100 unit square.
func (e *Engine) AddSticker(id string, o AddOptions) (string, error) {
	if e.disposed {
		return "", ErrDisposed
	}
	def, _, ok := render.Sticker(id)
	if !ok {
		return "", fmt.Errorf("add sticker %q: %w", id, ErrUnknownAsset)
	}
	w, h := float64(defaultStickerBox), float64(defaultStickerBox)
	if def.ViewBox.W > 0 && def.ViewBox.H > 0 {
		h = math.Max(1, math.Round(w*def.ViewBox.H/def.ViewBox.W))
	}
	w, h = o.size(w, h)
	s := &element.Sticker{
		Base:         element.NewBase(element.TypeSticker, e.newID(element.TypeSticker), e.frame(o, w, h)),
		Category:     def.Category,
		StickerID:    id,
		PrimaryColor: o.Color,
	}
	return e.place(s), nil
}

// InsertBlock runs the generator block at vertical offset y across the
// content width of the page and adds its elements. Elements without a
// zIndex are stacked above the page in generation order. The inserted
// elements become the selection.
func (e *Engine) InsertBlock(block string, y float64, data map[string]any) ([]string, error) {
	if e.disposed {
		return nil, ErrDisposed
	}
	width := e.page.Width - 2*generator.Bleed
	if width <= 0 {
		width = e.page.Width
	}
	elems, err := e.registry.Generate(block, generator.Options{Width: width, X: generator.Bleed, Y: y, Data: data})
	if err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}
	if e.state == TextEditing {
		e.EndTextEdit()
	}
	z := element.MaxZ(e.page.Elements)
	ids := make([]string, 0, len(elems))
	for _, el := range elems {
		b := el.Common()
		if e.page.IndexOf(b.ID) >= 0 {
			e.reassignIDs(el)
		}
		if b.ZIndex == 0 {
			z++
			b.ZIndex = z
		}
		e.add(el)
		ids = append(ids, b.ID)
	}
	e.setSelection(ids)
	e.committed()
	return ids, nil
}
