/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "strings"

// KeyEvent is a key press. Key uses DOM key names ("c", "Delete",
// "ArrowLeft", "]"). InTextInput is set while focus is in a host text field.
type KeyEvent struct {
	Key string
	Modifiers
	InTextInput bool
}

// KeyDown dispatches editor shortcuts and reports whether the key was
// consumed. Nothing is intercepted while focus is in a text input; while a
// text element is edited only Escape is handled.
func (e *Engine) KeyDown(ev KeyEvent) bool {
	if e.disposed || ev.InTextInput {
		return false
	}
	if e.state == TextEditing {
		if ev.Key == "Escape" {
			e.EndTextEdit()
			return true
		}
		return false
	}
	if e.state == Transforming {
		return false
	}
	mod := ev.Ctrl || ev.Meta
	key := ev.Key
	if len([]rune(key)) == 1 {
		key = strings.ToLower(key)
	}
	if mod {
		switch key {
		case "c":
			return e.Copy() > 0
		case "v":
			return len(e.Paste()) > 0
		case "x":
			return e.Cut() > 0
		case "a":
			e.SelectAll()
			return true
		case "g":
			if ev.Shift {
				return e.Ungroup()
			}
			return e.Group()
		case "l":
			return e.ToggleLock()
		case "]", "}":
			if ev.Shift {
				return e.BringToFront()
			}
			return e.BringForward()
		case "[", "{":
			if ev.Shift {
				return e.SendToBack()
			}
			return e.SendBackward()
		}
		return false
	}
	switch key {
	case "Delete", "Backspace":
		return e.Delete() > 0
	case "Escape":
		if len(e.selection) == 0 {
			return false
		}
		e.ClearSelection()
		return true
	case "ArrowLeft":
		return e.Nudge(-1, 0, ev.Shift)
	case "ArrowRight":
		return e.Nudge(1, 0, ev.Shift)
	case "ArrowUp":
		return e.Nudge(0, -1, ev.Shift)
	case "ArrowDown":
		return e.Nudge(0, 1, ev.Shift)
	}
	return false
}
