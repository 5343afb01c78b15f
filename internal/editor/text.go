/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "tripcanvas/internal/element"

type textEdit struct {
	id    string
	orig  string
	draft string
}

// BeginTextEdit selects the text element id and starts editing it in place.
func (e *Engine) BeginTextEdit(id string) bool {
	if e.disposed {
		return false
	}
	el, ok := e.page.Find(id)
	if !ok || !interactive(el) {
		return false
	}
	t, ok := el.(*element.Text)
	if !ok {
		return false
	}
	if e.state == TextEditing {
		e.EndTextEdit()
	}
	e.setSelection([]string{id})
	if !e.enter(TextEditing) {
		return false
	}
	e.text = textEdit{id: id, orig: t.Content, draft: t.Content}
	return true
}

// SetEditText replaces the draft of the text being edited.
func (e *Engine) SetEditText(s string) bool {
	if e.state != TextEditing {
		return false
	}
	e.text.draft = s
	return true
}

// EditingText returns the element being edited and its current draft.
func (e *Engine) EditingText() (id, draft string, ok bool) {
	if e.state != TextEditing {
		return "", "", false
	}
	return e.text.id, e.text.draft, true
}

// EndTextEdit leaves text editing. The content is reported only when it
// differs from the text at the start of the edit.
func (e *Engine) EndTextEdit() bool {
	if e.state != TextEditing {
		return false
	}
	t := e.text
	e.text = textEdit{}
	e.enter(SelectedSingle)
	if t.draft == t.orig {
		return false
	}
	if _, ok := e.page.Find(t.id); !ok {
		return false
	}
	content := t.draft
	e.change(t.id, element.Patch{Content: &content})
	e.stale = true
	return true
}
