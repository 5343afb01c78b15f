/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package generator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tripcanvas/internal/element"
	"tripcanvas/internal/vector"
)

// Block categories.
const (
	CategoryLayout   = "layout"
	CategorySchedule = "schedule"
	CategoryInfo     = "info"
	CategoryImage    = "image"
)

// CoverFallbackTitle is the cover title when no tourName is bound.
const CoverFallbackTitle = "TRAVEL GUIDE"

// timelineMaxRows keeps the timeline inside one page.
const timelineMaxRows = 12

func builtins() []Definition {
	return []Definition{
		{ID: "cover", Name: "Cover", Description: "封面 full-bleed cover image with tour title and travel dates", Category: CategoryLayout, Icon: "image", Generate: Cover},
		{ID: "back-cover", Name: "Back cover", Description: "封底 agency contact details, slogan and QR code", Category: CategoryLayout, Icon: "info", Generate: BackCover},
		{ID: "header", Name: "Page header", Description: "頁首 destination heading with gold divider", Category: CategoryLayout, Icon: "flag", Generate: Header},
		{ID: "day-schedule", Name: "Day schedule", Description: "每日行程 day number, title and sightseeing list", Category: CategorySchedule, Icon: "calendar", Generate: DaySchedule},
		{ID: "meal-info", Name: "Meals", Description: "餐食安排 breakfast, lunch and dinner", Category: CategorySchedule, Icon: "utensils", Generate: MealInfo},
		{ID: "timeline", Name: "Timeline", Description: "時間軸 timed stops of one day on a vertical line", Category: CategorySchedule, Icon: "clock", Generate: Timeline},
		{ID: "hotel-info", Name: "Hotel", Description: "住宿安排 hotel name and address", Category: CategoryInfo, Icon: "hotel", Generate: HotelInfo},
		{ID: "flight-info", Name: "Flight", Description: "航班資訊 outbound and return flights", Category: CategoryInfo, Icon: "plane", Generate: FlightInfo},
		{ID: "single-image", Name: "Single image", Description: "單張圖片 one wide photo", Category: CategoryImage, Icon: "image", Generate: SingleImage},
		{ID: "dual-image", Name: "Two images", Description: "雙圖並排 two photos side by side", Category: CategoryImage, Icon: "image", Generate: DualImage},
		{ID: "triple-image", Name: "Three images", Description: "三圖組合 one wide photo above two small ones", Category: CategoryImage, Icon: "image", Generate: TripleImage},
		{ID: "grid-image", Name: "Image grid", Description: "四格圖片 two by two photo grid", Category: CategoryImage, Icon: "grid", Generate: GridImage},
	}
}

// Cover lays out a cover image, the destination line, the tour title and
// the date range. Without coverImage the image is a placeholder.
func Cover(o Options) []element.Element {
	b := newBatch("cover", o)
	x, y, w := o.X, o.Y, o.Width
	imgH := math.Round(w * 0.62)

	src := b.str("coverImage", "")
	suffix := "image"
	if src == "" {
		suffix = "image-placeholder"
	}
	b.image(suffix, "Cover image", vector.R(x, y, w, imgH), src)

	top := y + imgH
	b.rect("rule", "Divider", vector.R(x+w/2-30, top+12, 60, 2), b.pal.Gold, "", 0)
	dest := strings.ToUpper(b.str("destination", "JAPAN"))
	b.text("subheading", "Subheading", vector.R(x, top+24, w, 16), "TRAVEL GUIDE FOR VISITING "+dest,
		textOpts{size: 9, color: b.pal.Gray, align: "center", spacing: 2})
	b.text("title", "Title", vector.R(x, top+46, w, 48), b.str("tourName", CoverFallbackTitle),
		textOpts{size: 36, weight: "900", color: b.pal.Black, align: "center", spacing: 3})
	b.text("dates", "Dates", vector.R(x, top+100, w, 18), b.str("dateRange", "2025.10.01 - 10.05"),
		textOpts{size: 11, color: b.pal.Gray, align: "right"})
	return b.elems
}

// BackCover lays out the agency block of the last page.
func BackCover(o Options) []element.Element {
	b := newBatch("back-cover", o)
	x, y, w := o.X, o.Y, o.Width

	dest := strings.ToUpper(b.str("destination", "JAPAN"))
	b.text("header", "Header", vector.R(x, y, w, 40), "TRAVEL GUIDE FOR VISITING\n"+dest,
		textOpts{size: 11, weight: "700", color: b.pal.Black, align: "center", line: 1.4, spacing: 1})
	b.rect("divider", "Divider", vector.R(x+w/2-40, y+48, 80, 1), b.pal.Gold, "", 0)
	b.text("slogan", "Slogan", vector.R(x, y+64, w, 16), b.str("slogan", "EXPLORE EVERY CORNER OF THE WORLD"),
		textOpts{size: 9, color: b.pal.Gold, align: "center", spacing: 2})
	b.rect("qr-placeholder", "QR code", vector.R(x+w/2-30, y+96, 60, 60), b.pal.LightGray, b.pal.Gray, 1)

	company := b.str("companyName", "角落旅行社股份有限公司")
	info := company + " CORNER TRAVEL AGENCY CO.\n" +
		"10350 台北市大同區重慶北路一段67號8樓之2\n" +
		"TEL +886 2 7751 6051・FAX +886 2 2552 1332"
	b.text("company", "Company", vector.R(x, y+172, w, 48), info,
		textOpts{size: 8, color: b.pal.Gray, align: "center", line: 1.6})
	return b.elems
}

// Header lays out the running heading of an itinerary page.
func Header(o Options) []element.Element {
	b := newBatch("header", o)
	x, y, w := o.X, o.Y, o.Width
	dest := strings.ToUpper(b.str("destination", "JAPAN"))
	city := strings.ToUpper(b.str("city", "TOKYO"))
	b.text("text", "Heading", vector.R(x, y, w/2, 36), "TRAVEL GUIDE FOR VISITING "+dest+"\n"+city,
		textOpts{size: 9, weight: "600", color: b.pal.Black, line: 1.5, spacing: 1.5})
	b.rect("divider", "Divider", vector.R(x, y+45, 80, 1), b.pal.Gold, "", 0)
	return b.elems
}

// DaySchedule lays out the day number, a title and a bulleted stop list.
func DaySchedule(o Options) []element.Element {
	b := newBatch("day", o)
	x, y, w := o.X, o.Y, o.Width

	day := b.str("day", "1")
	num := day
	if n, err := strconv.Atoi(strings.TrimSpace(day)); err == nil {
		num = fmt.Sprintf("%02d", n)
	}
	b.text("num", "Day number", vector.R(x, y, 60, 40), num,
		textOpts{size: 28, weight: "900", color: b.pal.Gold})
	b.text("label", "Day label", vector.R(x+65, y+8, 50, 20), "DAY "+day,
		textOpts{size: 10, color: b.pal.Gray, spacing: 1})
	b.text("title", "Day title", vector.R(x, y+45, w, 24), b.str("title", "東京市區觀光"),
		textOpts{size: 14, weight: "700", color: b.pal.Black})
	b.rect("divider", "Divider", vector.R(x, y+75, w, 2), b.pal.Gold, "", 0)

	items := b.list("items", []string{"time", "title"}, []string{"淺草寺・雷門", "東京晴空塔展望台", "仲見世通商店街"})
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "● " + it
	}
	h := math.Max(60, float64(len(items))*18)
	b.text("content", "Stops", vector.R(x, y+85, w, h), strings.Join(lines, "\n"),
		textOpts{size: 10, color: b.pal.Black, line: 1.8})
	return b.elems
}

// MealInfo lays out three meal columns.
func MealInfo(o Options) []element.Element {
	b := newBatch("meal", o)
	x, y, w := o.X, o.Y, o.Width
	b.text("title", "Meals", vector.R(x, y, 80, 16), "餐食安排",
		textOpts{size: 10, weight: "600", color: b.pal.Gold})

	meals := []struct{ key, label, def string }{
		{"breakfast", "早餐", "飯店內"},
		{"lunch", "午餐", "日式定食"},
		{"dinner", "晚餐", "敬請自理"},
	}
	mw := (w - 20) / 3
	for i, m := range meals {
		b.text(m.key, m.label, vector.R(x+float64(i)*(mw+10), y+20, mw, 30), m.label+"｜"+b.str(m.key, m.def),
			textOpts{size: 9, color: b.pal.Black})
	}
	return b.elems
}

// Timeline lays out timed stops along a vertical gold line. At most
// timelineMaxRows rows are emitted.
func Timeline(o Options) []element.Element {
	b := newBatch("timeline", o)
	x, y, w := o.X, o.Y, o.Width
	items := b.list("items", []string{"time", "title", "note"}, []string{
		"08:30  飯店出發",
		"10:00  淺草寺・雷門",
		"12:30  午餐 日式定食",
		"15:00  東京晴空塔",
		"18:00  返回飯店",
	})
	if len(items) > timelineMaxRows {
		items = items[:timelineMaxRows]
	}

	b.text("title", "Timeline", vector.R(x, y, 120, 16), "行程時間軸",
		textOpts{size: 10, weight: "600", color: b.pal.Gold})
	const row = 28.0
	top := y + 24
	length := float64(len(items)) * row
	b.line("axis", "Axis", vector.R(x+5, top, 2, length), 1, 0, 1, length, b.pal.LightGray, 2, "solid")
	for i, it := range items {
		ry := top + float64(i)*row
		b.circle(fmt.Sprintf("dot-%d", i), "Stop marker", vector.R(x+2, ry+4, 8, 8), b.pal.Gold)
		b.text(fmt.Sprintf("stop-%d", i), "Stop", vector.R(x+20, ry, w-20, 20), it,
			textOpts{size: 9, color: b.pal.Black})
	}
	return b.elems
}

// HotelInfo lays out the hotel name and address.
func HotelInfo(o Options) []element.Element {
	b := newBatch("hotel", o)
	x, y, w := o.X, o.Y, o.Width
	b.icon("icon", "Hotel icon", vector.R(x, y+1, 14, 14), "hotel", b.pal.Gold)
	b.text("title", "Hotel", vector.R(x+20, y, 80, 16), "住宿安排",
		textOpts{size: 10, weight: "600", color: b.pal.Gold})
	b.text("name", "Hotel name", vector.R(x, y+20, w, 20), b.str("hotelName", "東京新宿華盛頓飯店"),
		textOpts{size: 11, weight: "600", color: b.pal.Black})
	b.text("address", "Hotel address", vector.R(x, y+44, w, 16), b.str("hotelAddress", "東京都新宿區西新宿3-2-9"),
		textOpts{size: 9, color: b.pal.Gray})
	return b.elems
}

// FlightInfo lays out the outbound and return flights.
func FlightInfo(o Options) []element.Element {
	b := newBatch("flight", o)
	x, y, w := o.X, o.Y, o.Width
	b.icon("icon", "Flight icon", vector.R(x, y+1, 14, 14), "plane", b.pal.Gold)
	b.text("title", "Flight", vector.R(x+20, y, 120, 16), "航班資訊 FLIGHT",
		textOpts{size: 10, weight: "600", color: b.pal.Gold})
	b.text("outbound", "Outbound", vector.R(x, y+22, w, 16), "去程｜"+b.str("outbound", "CI100 桃園 08:30 → 成田 12:30"),
		textOpts{size: 9, color: b.pal.Black})
	b.text("return", "Return", vector.R(x, y+40, w, 16), "回程｜"+b.str("return", "CI101 成田 14:00 → 桃園 17:00"),
		textOpts{size: 9, color: b.pal.Black})
	return b.elems
}

// SingleImage lays out one wide placeholder photo.
func SingleImage(o Options) []element.Element {
	b := newBatch("img1", o)
	b.image("image", "Image", vector.R(o.X, o.Y, o.Width, math.Round(o.Width*0.6)), b.str("src", ""))
	return b.elems
}

// DualImage lays out two photos side by side.
func DualImage(o Options) []element.Element {
	b := newBatch("img2", o)
	const gap = 8
	iw := (o.Width - gap) / 2
	ih := iw * 0.75
	b.image("left", "Left image", vector.R(o.X, o.Y, iw, ih), b.str("src1", ""))
	b.image("right", "Right image", vector.R(o.X+iw+gap, o.Y, iw, ih), b.str("src2", ""))
	return b.elems
}

// TripleImage lays out one wide photo above two smaller ones.
func TripleImage(o Options) []element.Element {
	b := newBatch("img3", o)
	const gap = 8
	th := o.Width * 0.5
	b.image("top", "Top image", vector.R(o.X, o.Y, o.Width, th), b.str("src1", ""))
	bw := (o.Width - gap) / 2
	bh := bw * 0.75
	by := o.Y + th + gap
	b.image("left", "Bottom left image", vector.R(o.X, by, bw, bh), b.str("src2", ""))
	b.image("right", "Bottom right image", vector.R(o.X+bw+gap, by, bw, bh), b.str("src3", ""))
	return b.elems
}

// GridImage lays out a two by two photo grid.
func GridImage(o Options) []element.Element {
	b := newBatch("grid", o)
	const gap = 8
	s := (o.Width - gap) / 2
	for i := range 4 {
		col, row := float64(i%2), float64(i/2)
		r := vector.R(o.X+col*(s+gap), o.Y+row*(s+gap), s, s)
		b.image(fmt.Sprintf("cell-%d", i), fmt.Sprintf("Image %d", i+1), r, b.str(fmt.Sprintf("src%d", i+1), ""))
	}
	return b.elems
}
