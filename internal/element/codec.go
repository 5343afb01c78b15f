/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package element

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned when decoding an element with an unrecognised
// type discriminator.
var ErrUnknownType = errors.New("unknown element type")

// probe reads the discriminator and the fields whose absence means a
// non-zero default.
type probe struct {
	Type    Type     `json:"type"`
	Opacity *float64 `json:"opacity"`
	Visible *bool    `json:"visible"`
}

// New returns an empty element of type t.
func New(t Type) (Element, error) {
	switch t {
	case TypeShape:
		return &Shape{Base: Base{Type: t}}, nil
	case TypeText:
		return &Text{Base: Base{Type: t}}, nil
	case TypeImage:
		return &Image{Base: Base{Type: t}}, nil
	case TypeIcon:
		return &Icon{Base: Base{Type: t}}, nil
	case TypeLine:
		return &Line{Base: Base{Type: t}}, nil
	case TypeSticker:
		return &Sticker{Base: Base{Type: t}}, nil
	case TypeGroup:
		return &Group{Base: Base{Type: t}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// Decode parses one element from JSON. Absent opacity defaults to 1 and
// absent visible to true.
func Decode(raw []byte) (Element, error) {
	var p probe
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode element: %w", err)
	}
	e, err := New(p.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, fmt.Errorf("decode %s element: %w", p.Type, err)
	}
	b := e.Common()
	if p.Opacity == nil {
		b.Opacity = 1
	}
	if p.Visible == nil {
		b.Visible = true
	}
	return e, nil
}

// List is an element slice that decodes through the type discriminator.
type List []Element

func (l *List) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	out := make(List, 0, len(raws))
	for i, r := range raws {
		e, err := Decode(r)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, e)
	}
	*l = out
	return nil
}

func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Element(l))
}

// Encode renders one element as JSON.
func Encode(e Element) ([]byte, error) {
	return json.Marshal(e)
}
