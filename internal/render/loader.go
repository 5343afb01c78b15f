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
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// ErrRemoteSource is returned for sources that would need network access.
var ErrRemoteSource = errors.New("remote image sources are not loaded")

// ErrEmptySource is returned for an empty src.
var ErrEmptySource = errors.New("empty image source")

// Loader resolves an image src to a decoded bitmap.
type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// FileLoader reads local files and data: URIs. Relative paths resolve
// against Root and may not leave it.
type FileLoader struct {
	Root string
}

func (l FileLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return nil, ErrEmptySource
	case strings.HasPrefix(src, "data:"):
		data, err := decodeDataURI(src)
		if err != nil {
			return nil, err
		}
		return decode(data, "data uri")
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"), strings.HasPrefix(src, "blob:"):
		return nil, fmt.Errorf("%w: %s", ErrRemoteSource, src)
	}
	path, err := l.resolve(src)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return decode(data, path)
}

func (l FileLoader) resolve(src string) (string, error) {
	if strings.HasPrefix(src, "file://") {
		u, err := url.Parse(src)
		if err != nil {
			return "", fmt.Errorf("parse file uri: %w", err)
		}
		return filepath.FromSlash(u.Path), nil
	}
	p := filepath.FromSlash(src)
	if filepath.IsAbs(p) || l.Root == "" {
		return p, nil
	}
	full := filepath.Join(l.Root, p)
	rel, err := filepath.Rel(l.Root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("image path %q escapes %s", src, l.Root)
	}
	return full, nil
}

func decodeDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data uri")
	}
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data uri: %w", err)
		}
		return b, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data uri: %w", err)
	}
	return []byte(s), nil
}

func decode(data []byte, name string) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}

// CachingLoader memoises successful loads per src. Concurrent loads of the
// same src share one call to Next.
type CachingLoader struct {
	Next Loader

	mu    sync.RWMutex
	cache map[string]image.Image
	group singleflight.Group
}

// NewCachingLoader wraps next.
func NewCachingLoader(next Loader) *CachingLoader {
	return &CachingLoader{Next: next, cache: make(map[string]image.Image)}
}

func (c *CachingLoader) Load(ctx context.Context, src string) (image.Image, error) {
	c.mu.RLock()
	img, ok := c.cache[src]
	c.mu.RUnlock()
	if ok {
		return img, nil
	}
	v, err, _ := c.group.Do(src, func() (any, error) {
		img, err := c.Next.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.cache == nil {
			c.cache = make(map[string]image.Image)
		}
		c.cache[src] = img
		c.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Forget drops src from the cache, or everything when src is empty.
func (c *CachingLoader) Forget(src string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if src == "" {
		c.cache = make(map[string]image.Image)
		return
	}
	delete(c.cache, src)
}

// Len returns the number of cached bitmaps.
func (c *CachingLoader) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
