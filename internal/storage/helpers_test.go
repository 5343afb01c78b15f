/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"tripcanvas/internal/element"
	"tripcanvas/internal/vector"
)

func sampleDoc() element.Document {
	title := &element.Text{
		Base:    element.NewBase(element.TypeText, "cover-title", vector.R(32, 120, 495, 40)),
		Content: "Autumn in Kyoto",
		Style:   element.TextStyle{FontSize: 28, FontWeight: "bold", Color: "#181511"},
	}
	title.Name = "Title"
	cjk := &element.Text{
		Base:    element.NewBase(element.TypeText, "cover-sub", vector.R(32, 170, 495, 20)),
		Content: "東京大阪五日遊",
		Style:   element.TextStyle{FontSize: 12},
	}
	band := &element.Shape{
		Base:    element.NewBase(element.TypeShape, "band", vector.R(0, 0, 559, 80)),
		Variant: element.Rectangle,
		Fill:    "#c9aa7c",
	}
	band.Name = "Gold band"
	photo := &element.Image{
		Base:        element.NewBase(element.TypeImage, "cover-image-placeholder", vector.R(32, 220, 495, 300)),
		Src:         "assets/kyoto.jpg",
		Placeholder: true,
	}
	plane := &element.Icon{
		Base: element.NewBase(element.TypeIcon, "flight-icon", vector.R(40, 600, 24, 24)),
		Icon: "plane",
	}
	return element.Document{
		ID:   "doc-1",
		Name: "Kyoto trip",
		Pages: []element.Page{
			{ID: "p1", Name: "Cover", Width: 559, Height: 794, BackgroundColor: "#ffffff",
				Elements: element.List{band, title, cjk, photo}},
			{ID: "p2", Name: "Flights", Width: 559, Height: 794,
				Elements: element.List{plane}},
		},
	}
}
