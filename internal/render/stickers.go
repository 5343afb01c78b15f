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
	"strings"
	"sync"

	"tripcanvas/internal/vector"
)

// Sticker colour keys. A sticker whose colour equals a key is recoloured
// with the element's primary or secondary colour.
const (
	StickerPrimaryKey   = "#c9aa7c"
	StickerSecondaryKey = "#8b8680"
)

// StickerDef is one decorative vector from the sticker library.
type StickerDef struct {
	Name     string
	Category string
	ViewBox  vector.Size
	Color    string
	Path     string
}

var stickers = map[string]StickerDef{
	"divider-simple": {Name: "簡約分隔線", Category: "divider", ViewBox: vector.Size{W: 100, H: 4}, Color: "#c9aa7c",
		Path: "M0,2 L100,2"},
	"divider-dots": {Name: "點狀分隔線", Category: "divider", ViewBox: vector.Size{W: 90, H: 10}, Color: "#c9aa7c",
		Path: "M5,5 A2,2 0 1,1 5.001,5 M25,5 A2,2 0 1,1 25.001,5 M45,5 A2,2 0 1,1 45.001,5 M65,5 A2,2 0 1,1 65.001,5 M85,5 A2,2 0 1,1 85.001,5"},
	"divider-diamond": {Name: "菱形分隔線", Category: "divider", ViewBox: vector.Size{W: 100, H: 10}, Color: "#c9aa7c",
		Path: "M0,5 L40,5 M50,0 L55,5 L50,10 L45,5 Z M60,5 L100,5"},
	"divider-wave": {Name: "波浪分隔線", Category: "divider", ViewBox: vector.Size{W: 100, H: 10}, Color: "#c9aa7c",
		Path: "M0,5 Q12.5,0 25,5 T50,5 T75,5 T100,5"},
	"divider-ornate": {Name: "華麗分隔線", Category: "divider", ViewBox: vector.Size{W: 100, H: 20}, Color: "#c9aa7c",
		Path: "M0,10 L35,10 M40,5 Q45,0 50,5 Q55,10 50,15 Q45,10 40,15 Q35,10 40,5 M65,10 L100,10"},
	"frame-simple": {Name: "簡約框", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M5,0 L95,0 L100,5 L100,95 L95,100 L5,100 L0,95 L0,5 Z M10,5 L90,5 L95,10 L95,90 L90,95 L10,95 L5,90 L5,10 Z"},
	"frame-rounded": {Name: "圓角框", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M15,0 L85,0 Q100,0 100,15 L100,85 Q100,100 85,100 L15,100 Q0,100 0,85 L0,15 Q0,0 15,0 M20,5 L80,5 Q95,5 95,20 L95,80 Q95,95 80,95 L20,95 Q5,95 5,80 L5,20 Q5,5 20,5"},
	"frame-double": {Name: "雙線框", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M0,0 L100,0 L100,100 L0,100 Z M3,3 L97,3 L97,97 L3,97 Z M8,8 L92,8 L92,92 L8,92 Z M11,11 L89,11 L89,89 L11,89 Z"},
	"deco-corner-tl": {Name: "左上角花", Category: "decoration", ViewBox: vector.Size{W: 30, H: 30}, Color: "#c9aa7c",
		Path: "M0,30 Q0,0 30,0 L25,5 Q5,5 5,25 Z M0,25 L5,20 Q5,10 15,5 L20,0 Q0,0 0,25"},
	"deco-corner-tr": {Name: "右上角花", Category: "decoration", ViewBox: vector.Size{W: 30, H: 30}, Color: "#c9aa7c",
		Path: "M30,30 Q30,0 0,0 L5,5 Q25,5 25,25 Z M30,25 L25,20 Q25,10 15,5 L10,0 Q30,0 30,25"},
	"deco-flourish": {Name: "花飾", Category: "decoration", ViewBox: vector.Size{W: 100, H: 50}, Color: "#c9aa7c",
		Path: "M50,0 Q55,20 75,25 Q55,30 50,50 Q45,30 25,25 Q45,20 50,0 M50,10 Q53,20 60,22 Q53,24 50,35 Q47,24 40,22 Q47,20 50,10"},
	"deco-star": {Name: "星星", Category: "decoration", ViewBox: vector.Size{W: 50, H: 47}, Color: "#c9aa7c",
		Path: "M25,0 L30,18 L50,18 L34,29 L40,47 L25,36 L10,47 L16,29 L0,18 L20,18 Z"},
	"deco-heart": {Name: "愛心", Category: "decoration", ViewBox: vector.Size{W: 50, H: 50}, Color: "#c9aa7c",
		Path: "M25,45 L5,25 Q0,15 10,10 Q20,5 25,15 Q30,5 40,10 Q50,15 45,25 Z"},
	"deco-leaf": {Name: "葉子", Category: "decoration", ViewBox: vector.Size{W: 50, H: 50}, Color: "#c9aa7c",
		Path: "M25,0 Q50,25 25,50 Q0,25 25,0 M25,10 L25,40 M15,20 Q25,25 35,20"},
	"badge-circle": {Name: "圓形徽章", Category: "badge", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M50,0 A50,50 0 1,1 49.99,0 M50,5 A45,45 0 1,1 49.99,5 M50,10 A40,40 0 1,1 49.99,10"},
	"badge-ribbon": {Name: "綬帶徽章", Category: "badge", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M50,0 A40,40 0 1,0 50,80 A40,40 0 1,0 50,0 M10,60 L0,100 L20,85 L40,100 L30,70 M70,70 L60,100 L80,85 L100,100 L90,60"},
	"badge-banner": {Name: "旗幟", Category: "badge", ViewBox: vector.Size{W: 100, H: 30}, Color: "#c9aa7c",
		Path: "M0,0 L100,0 L90,15 L100,30 L0,30 L10,15 Z"},
	"stamp-circle": {Name: "圓形印章", Category: "stamp", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c08374",
		Path: "M50,0 A50,50 0 1,1 49.99,0 M50,8 A42,42 0 1,1 49.99,8"},
	"stamp-rect": {Name: "方形印章", Category: "stamp", ViewBox: vector.Size{W: 100, H: 60}, Color: "#c08374",
		Path: "M0,0 L100,0 L100,60 L0,60 Z M5,5 L95,5 L95,55 L5,55 Z"},
	"stamp-approved": {Name: "認證印章", Category: "stamp", ViewBox: vector.Size{W: 100, H: 50}, Color: "#c9aa7c",
		Path: "M50,0 L58,19 L79,19 L63,31 L70,50 L50,38 L30,50 L37,31 L21,19 L42,19 Z M50,15 L54,26 L66,26 L57,33 L61,44 L50,36 L39,44 L43,33 L34,26 L46,26 Z"},
	"travel-plane": {Name: "飛機", Category: "decoration", ViewBox: vector.Size{W: 100, H: 55}, Color: "#c9aa7c",
		Path: "M48,0 L52,0 L52,20 L80,35 L80,40 L52,30 L52,45 L60,50 L60,55 L50,52 L40,55 L40,50 L48,45 L48,30 L20,40 L20,35 L48,20 Z"},
	"travel-compass": {Name: "指南針", Category: "decoration", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M50,0 A50,50 0 1,1 49.99,0 M50,5 A45,45 0 1,1 49.99,5 M50,15 L55,45 L50,55 L45,45 Z M50,15 L45,45 L50,55 L55,45 Z"},
	"travel-camera": {Name: "相機", Category: "decoration", ViewBox: vector.Size{W: 100, H: 80}, Color: "#c9aa7c",
		Path: "M30,10 L40,10 L45,0 L55,0 L60,10 L90,10 Q100,10 100,20 L100,70 Q100,80 90,80 L10,80 Q0,80 0,70 L0,20 Q0,10 10,10 L30,10 M50,25 A20,20 0 1,1 49.99,25 M50,35 A10,10 0 1,1 49.99,35"},
	"travel-suitcase": {Name: "行李箱", Category: "decoration", ViewBox: vector.Size{W: 100, H: 90}, Color: "#c9aa7c",
		Path: "M35,10 L35,5 Q35,0 40,0 L60,0 Q65,0 65,5 L65,10 M20,10 L80,10 Q90,10 90,20 L90,80 Q90,90 80,90 L20,90 Q10,90 10,80 L10,20 Q10,10 20,10 M30,25 L30,75 M70,25 L70,75 M40,50 L60,50"},
	"travel-passport": {Name: "護照", Category: "decoration", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M15,0 L85,0 Q95,0 95,10 L95,90 Q95,100 85,100 L15,100 Q5,100 5,90 L5,10 Q5,0 15,0 M50,20 A15,15 0 1,1 49.99,20 M30,55 L70,55 M30,65 L70,65 M30,75 L50,75"},
	"travel-map": {Name: "地圖", Category: "decoration", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M5,10 L35,0 L65,10 L95,0 L95,90 L65,100 L35,90 L5,100 Z M35,0 L35,90 M65,10 L65,100"},
	"travel-pin": {Name: "定位標記", Category: "decoration", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c08374",
		Path: "M50,0 A30,30 0 0,1 50,60 Q50,80 50,100 Q50,80 50,60 A30,30 0 0,1 50,0 M50,20 A10,10 0 1,1 49.99,20"},
	"travel-mountain": {Name: "山景", Category: "decoration", ViewBox: vector.Size{W: 100, H: 80}, Color: "#9fa68f",
		Path: "M0,80 L25,30 L40,50 L60,20 L100,80 Z M60,20 L70,35 L80,25"},
	"travel-sun": {Name: "太陽", Category: "decoration", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M50,30 A20,20 0 1,1 49.99,30 M50,0 L50,15 M50,85 L50,100 M0,50 L15,50 M85,50 L100,50 M15,15 L25,25 M75,75 L85,85 M85,15 L75,25 M25,75 L15,85"},
	"travel-palm": {Name: "棕櫚樹", Category: "decoration", ViewBox: vector.Size{W: 100, H: 100}, Color: "#9fa68f",
		Path: "M50,100 L50,40 M50,40 Q30,20 10,25 M50,40 Q40,15 25,10 M50,40 Q50,10 50,5 M50,40 Q60,15 75,10 M50,40 Q70,20 90,25"},
	"travel-wave": {Name: "海浪", Category: "decoration", ViewBox: vector.Size{W: 120, H: 100}, Color: "#a8c0b9",
		Path: "M0,50 Q15,30 30,50 T60,50 T90,50 T120,50 M0,70 Q15,50 30,70 T60,70 T90,70 T120,70"},
	"travel-temple": {Name: "神社鳥居", Category: "decoration", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c08374",
		Path: "M10,30 L90,30 M20,30 L20,100 M80,30 L80,100 M5,25 L95,25 Q95,15 90,10 L10,10 Q5,15 5,25 M30,60 L70,60 L70,100 L30,100 Z"},
	"food-utensils": {Name: "餐具", Category: "decoration", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M20,0 L20,40 Q20,50 30,50 L30,100 L40,100 L40,50 Q50,50 50,40 L50,0 M35,0 L35,20 M60,0 Q70,0 70,20 L70,100 L80,100 L80,20 Q80,0 90,0 L90,30 Q90,40 80,45 L80,100"},
	"food-coffee": {Name: "咖啡杯", Category: "decoration", ViewBox: vector.Size{W: 100, H: 90}, Color: "#c9aa7c",
		Path: "M10,20 L70,20 L65,80 Q65,90 55,90 L25,90 Q15,90 15,80 Z M70,30 Q90,30 90,50 Q90,70 70,70"},
	"arrow-curved": {Name: "彎曲箭頭", Category: "decoration", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M20,80 Q20,20 80,20 M60,5 L80,20 L60,35"},
	"arrow-hand": {Name: "手指箭頭", Category: "decoration", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M0,50 L70,50 M50,30 L70,50 L50,70 M80,35 Q90,35 90,45 L90,55 Q90,65 80,65 L75,65 L75,35 Z"},
	"tag-price": {Name: "價格標籤", Category: "badge", ViewBox: vector.Size{W: 100, H: 95}, Color: "#c9aa7c",
		Path: "M95,5 L95,45 L50,90 L5,45 L5,5 L95,5 M25,25 A8,8 0 1,1 24.99,25"},
	"tag-new": {Name: "NEW 標籤", Category: "badge", ViewBox: vector.Size{W: 100, H: 95}, Color: "#c08374",
		Path: "M50,0 L61,35 L98,35 L68,57 L79,92 L50,70 L21,92 L32,57 L2,35 L39,35 Z"},
	"bubble-round": {Name: "圓形對話框", Category: "frame", ViewBox: vector.Size{W: 100, H: 90}, Color: "#e8e5e0",
		Path: "M50,10 Q90,10 90,40 Q90,70 50,70 L40,70 L30,85 L35,70 Q10,70 10,40 Q10,10 50,10"},
	"bubble-cloud": {Name: "雲朵對話框", Category: "frame", ViewBox: vector.Size{W: 100, H: 80}, Color: "#e8e5e0",
		Path: "M25,60 Q5,60 5,45 Q5,30 20,30 Q20,15 40,15 Q55,10 70,20 Q90,20 90,40 Q95,55 75,60 L60,60 L50,75 L55,60 Z"},
	"note-lines-3": {Name: "3行書寫線", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#d4c4b0",
		Path: "M0,20 L100,20 M0,50 L100,50 M0,80 L100,80"},
	"note-lines-5": {Name: "5行書寫線", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#d4c4b0",
		Path: "M0,15 L100,15 M0,32 L100,32 M0,49 L100,49 M0,66 L100,66 M0,83 L100,83"},
	"note-box": {Name: "筆記框", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#d4c4b0",
		Path: "M0,0 L100,0 L100,100 L0,100 Z M5,25 L95,25 M5,45 L95,45 M5,65 L95,65 M5,85 L95,85"},
	"note-travel": {Name: "旅遊筆記", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M5,0 L95,0 L100,5 L100,95 L95,100 L5,100 L0,95 L0,5 Z M10,18 L90,18 M10,36 L90,36 M10,54 L90,54 M10,72 L90,72 M10,90 L90,90 M0,0 L15,0 L15,15 L0,15 Z"},
	"note-memo": {Name: "備忘錄", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#e8e5e0",
		Path: "M10,0 L90,0 Q100,0 100,10 L100,90 Q100,100 90,100 L10,100 Q0,100 0,90 L0,10 Q0,0 10,0 M15,25 L85,25 M15,45 L85,45 M15,65 L85,65 M15,85 L60,85"},
	"note-checklist": {Name: "清單框", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#d4c4b0",
		Path: "M0,0 L100,0 L100,100 L0,100 Z M8,18 L18,18 L18,28 L8,28 Z M25,23 L95,23 M8,43 L18,43 L18,53 L8,53 Z M25,48 L95,48 M8,68 L18,68 L18,78 L8,78 Z M25,73 L95,73"},
	"date-box": {Name: "日期框", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M10,0 L90,0 Q100,0 100,10 L100,90 Q100,100 90,100 L10,100 Q0,100 0,90 L0,10 Q0,0 10,0 M0,25 L100,25"},
	"calendar-icon": {Name: "日曆圖標", Category: "decoration", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M20,10 L20,0 M80,10 L80,0 M10,10 L90,10 Q100,10 100,20 L100,90 Q100,100 90,100 L10,100 Q0,100 0,90 L0,20 Q0,10 10,10 M0,35 L100,35 M25,55 L40,55 L40,70 L25,70 Z M60,55 L75,55 L75,70 L60,70 Z"},
	"title-banner": {Name: "標題橫幅", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M0,20 L15,0 L85,0 L100,20 L100,80 L85,100 L15,100 L0,80 Z"},
	"title-ribbon": {Name: "緞帶標題", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M0,30 L10,20 L10,30 L90,30 L90,20 L100,30 L100,70 L90,80 L90,70 L10,70 L10,80 L0,70 Z"},
	"title-underline": {Name: "標題底線", Category: "divider", ViewBox: vector.Size{W: 100, H: 15}, Color: "#c9aa7c",
		Path: "M0,5 L100,5 M0,12 L60,12"},
	"title-bracket": {Name: "括號裝飾", Category: "frame", ViewBox: vector.Size{W: 100, H: 100}, Color: "#c9aa7c",
		Path: "M15,0 Q0,0 0,20 L0,80 Q0,100 15,100 M85,0 Q100,0 100,20 L100,80 Q100,100 85,100"},
}

var stickerCache sync.Map // id -> *parsedPath

// Sticker returns the definition and parsed path of a library sticker.
func Sticker(id string) (StickerDef, vector.Path, bool) {
	def, ok := stickers[id]
	if !ok {
		return StickerDef{}, vector.Path{}, false
	}
	v, _ := stickerCache.LoadOrStore(id, &parsedPath{})
	pp := v.(*parsedPath)
	pp.once.Do(func() { pp.path, pp.err = vector.ParsePathData(def.Path) })
	if pp.err != nil {
		return StickerDef{}, vector.Path{}, false
	}
	return def, pp.path, true
}

// StickerIDs lists the sticker ids of a category, or all when category is
// empty, sorted.
func StickerIDs(category string) []string {
	var out []string
	for id, d := range stickers {
		if category == "" || d.Category == category {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// StickerColor resolves the paint colour of a sticker. A set primary colour
// wins; otherwise the library colour is recoloured through the key colours.
func StickerColor(def StickerDef, primary, secondary string) string {
	if primary != "" {
		return primary
	}
	c := def.Color
	switch {
	case strings.EqualFold(c, StickerSecondaryKey) && secondary != "":
		return secondary
	case c == "":
		return StickerPrimaryKey
	}
	return c
}
