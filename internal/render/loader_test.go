/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	abs := writePNG(t, dir, "pic.png", 8, 4)
	l := FileLoader{Root: dir}
	ctx := context.Background()

	for _, src := range []string{"pic.png", abs, "file://" + filepath.ToSlash(abs)} {
		img, err := l.Load(ctx, src)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
			t.Fatalf("%s: bounds %v", src, img.Bounds())
		}
	}
	if _, err := l.Load(ctx, "../outside.png"); err == nil {
		t.Fatalf("path escaping the root was accepted")
	}
	if _, err := l.Load(ctx, "https://example.com/a.png"); !errors.Is(err, ErrRemoteSource) {
		t.Fatalf("remote err = %v", err)
	}
	if _, err := l.Load(ctx, ""); !errors.Is(err, ErrEmptySource) {
		t.Fatalf("empty err = %v", err)
	}
}

func TestFileLoaderDataURI(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	img, err := FileLoader{}.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Bounds().Dx() != 3 {
		t.Fatalf("bounds %v", img.Bounds())
	}
	if _, err := (FileLoader{}).Load(context.Background(), "data:image/png;base64,!!!"); err == nil {
		t.Fatalf("bad base64 accepted")
	}
}

type countingLoader struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingLoader) Load(ctx context.Context, src string) (image.Image, error) {
	c.calls.Add(1)
	if c.fail {
		return nil, errors.New("boom")
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func TestCachingLoader(t *testing.T) {
	next := &countingLoader{}
	c := NewCachingLoader(next)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Load(context.Background(), "a"); err != nil {
				t.Errorf("load: %v", err)
			}
		}()
	}
	wg.Wait()
	if _, err := c.Load(context.Background(), "a"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := next.calls.Load(); n < 1 || n > 8 {
		t.Fatalf("calls = %d", n)
	}
	before := next.calls.Load()
	_, _ = c.Load(context.Background(), "a")
	if next.calls.Load() != before {
		t.Fatalf("cached src loaded again")
	}
	c.Forget("a")
	_, _ = c.Load(context.Background(), "a")
	if next.calls.Load() != before+1 || c.Len() != 1 {
		t.Fatalf("forget did not drop the entry")
	}

	failing := NewCachingLoader(&countingLoader{fail: true})
	if _, err := failing.Load(context.Background(), "x"); err == nil || failing.Len() != 0 {
		t.Fatalf("failures must not be cached")
	}
}
