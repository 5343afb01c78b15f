/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"sort"
	"sync"

	"tripcanvas/internal/vector"
)

// IconViewBox is the edge length of the icon coordinate space.
const IconViewBox = 24

var iconPaths = map[string]string{
	"plane":        "M21 16v-2l-8-5V3.5a1.5 1.5 0 0 0-3 0V9l-8 5v2l8-2.5V19l-2 1.5V22l3.5-1 3.5 1v-1.5L13 19v-5.5z",
	"hotel":        "M2 19V6h2v8h7V8h8a3 3 0 0 1 3 3v8h-2v-3H4v3z M7.5 13a2.5 2.5 0 1 0 0-5 2.5 2.5 0 0 0 0 5z",
	"calendar":     "M19 4h-1V2h-2v2H8V2H6v2H5a2 2 0 0 0-2 2v14a2 2 0 0 0 2 2h14a2 2 0 0 0 2-2V6a2 2 0 0 0-2-2z M5 9v11h14V9z M7 11h5v5H7z",
	"clock":        "M12 2a10 10 0 1 0 0 20 10 10 0 0 0 0-20z M12 4a8 8 0 1 1 0 16 8 8 0 0 1 0-16z M11 6h2v5.4l4 2.4-1 1.7-5-3z",
	"map-pin":      "M12 2a7 7 0 0 0-7 7c0 5.25 7 13 7 13s7-7.75 7-13a7 7 0 0 0-7-7z M12 6.5a2.5 2.5 0 1 1 0 5 2.5 2.5 0 0 1 0-5z",
	"utensils":     "M8 2h1.5v7a2.5 2.5 0 0 1-1.5 2.3V22H6.5V11.3A2.5 2.5 0 0 1 5 9V2h1.5v6H7V2h1z M16 2c2.2 0 3.5 2.5 3.5 6 0 2.2-1 3.6-2 4V22H16z",
	"coffee":       "M4 8h13v6a5 5 0 0 1-5 5H9a5 5 0 0 1-5-5z M17 9h2a2 2 0 0 1 0 4h-2z M4 20h14v2H4z",
	"camera":       "M4 6h3l2-2h6l2 2h3a2 2 0 0 1 2 2v10a2 2 0 0 1-2 2H4a2 2 0 0 1-2-2V8a2 2 0 0 1 2-2z M12 9a4 4 0 1 0 0 8 4 4 0 0 0 0-8z",
	"train":        "M7 3h10a2 2 0 0 1 2 2v10a3 3 0 0 1-3 3l1.5 2H16l-1.5-2h-5L8 20H6.5L8 18a3 3 0 0 1-3-3V5a2 2 0 0 1 2-2z M7 6v5h10V6z M8 13.5a1 1 0 1 0 0 2 1 1 0 0 0 0-2z M16 13.5a1 1 0 1 0 0 2 1 1 0 0 0 0-2z",
	"bus":          "M5 4h14a1 1 0 0 1 1 1v13h-1v2h-2.5v-2h-9v2H5v-2H4V5a1 1 0 0 1 1-1z M6 6v6h12V6z M7.5 14a1 1 0 1 0 0 2 1 1 0 0 0 0-2z M16.5 14a1 1 0 1 0 0 2 1 1 0 0 0 0-2z",
	"car":          "M5 11l1.5-4.5A2 2 0 0 1 8.4 5h7.2a2 2 0 0 1 1.9 1.5L19 11v7h-2v-2H7v2H5z M7 9.5h10L16 7H8z",
	"ship":         "M3 18l2 3h14l2-3-9-3z M6 14V8h12v6l-6-2z M11 3h2v4h-2z",
	"luggage":      "M9 2h6v3h3a2 2 0 0 1 2 2v12a2 2 0 0 1-2 2H6a2 2 0 0 1-2-2V7a2 2 0 0 1 2-2h3z M11 4v1h2V4z",
	"ticket":       "M2 6h20v4a2 2 0 0 0 0 4v4H2v-4a2 2 0 0 0 0-4z",
	"star":         "M12 2l3.1 6.3 6.9 1-5 4.9 1.2 6.8L12 17.8 5.8 21l1.2-6.8-5-4.9 6.9-1z",
	"heart":        "M12 21l-1.5-1.3C5.4 15.1 2 12.1 2 8.4 2 5.4 4.4 3 7.4 3c1.7 0 3.4.8 4.6 2.1C13.2 3.8 14.9 3 16.6 3 19.6 3 22 5.4 22 8.4c0 3.7-3.4 6.7-8.5 11.3z",
	"info":         "M12 2a10 10 0 1 0 0 20 10 10 0 0 0 0-20z M11 10h2v7h-2z M11 6h2v2h-2z",
	"flag":         "M5 2h2v20H5z M7 3h12l-3 4 3 4H7z",
	"image":        "M3 4h18v16H3z M5 6v10l4-5 3 4 2-2 5 5V6z",
	"grid":         "M3 3h8v8H3z M13 3h8v8h-8z M3 13h8v8H3z M13 13h8v8h-8z",
	"phone":        "M6.6 10.8a15 15 0 0 0 6.6 6.6l2.2-2.2a1 1 0 0 1 1-.25 11.4 11.4 0 0 0 3.6.6 1 1 0 0 1 1 1V20a1 1 0 0 1-1 1A17 17 0 0 1 3 4a1 1 0 0 1 1-1h3.5a1 1 0 0 1 1 1c0 1.25.2 2.45.6 3.6a1 1 0 0 1-.25 1z",
	"mail":         "M2 5h20v14H2z M4 7v.5l8 5 8-5V7l-8 5z",
	"globe":        "M12 2a10 10 0 1 0 0 20 10 10 0 0 0 0-20z M12 4a8 8 0 1 1 0 16 8 8 0 0 1 0-16z M11 4h2v16h-2z M4 11h16v2H4z",
	"sun":          "M12 7a5 5 0 1 0 0 10 5 5 0 0 0 0-10z M11 1h2v4h-2z M11 19h2v4h-2z M1 11h4v2H1z M19 11h4v2h-4z",
	"check":        "M9 16.2L4.8 12l-1.4 1.4L9 19 21 7l-1.4-1.4z",
	"arrow-right":  "M4 11h12.2l-5.6-5.6L12 4l8 8-8 8-1.4-1.4 5.6-5.6H4z",
	"mountain":     "M2 20l7-12 4 6 3-4 6 10z",
	"shopping-bag": "M6 7h12l1 14H5z M9 7V6a3 3 0 0 1 6 0v1h-1.5V6a1.5 1.5 0 0 0-3 0v1z",
}

type parsedPath struct {
	once sync.Once
	path vector.Path
	err  error
}

var iconCache sync.Map // name -> *parsedPath

// IconPath returns the parsed glyph of a library icon in the 24-unit view
// box.
func IconPath(name string) (vector.Path, bool) {
	d, ok := iconPaths[name]
	if !ok {
		return vector.Path{}, false
	}
	v, _ := iconCache.LoadOrStore(name, &parsedPath{})
	pp := v.(*parsedPath)
	pp.once.Do(func() { pp.path, pp.err = vector.ParsePathData(d) })
	if pp.err != nil {
		return vector.Path{}, false
	}
	return pp.path, true
}

// IconNames lists the library icons alphabetically.
func IconNames() []string {
	out := make([]string, 0, len(iconPaths))
	for k := range iconPaths {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
