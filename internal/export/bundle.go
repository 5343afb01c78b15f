/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tripcanvas/internal/element"
	"tripcanvas/internal/render"
	"tripcanvas/internal/storage"
	"tripcanvas/internal/version"
)

// Entry names inside a bundle.
const (
	BundleDocument = "document.json"
	BundleManifest = "manifest.json"
	BundlePagesDir = "pages/"
)

// BundleFormat identifies the manifest layout.
const BundleFormat = "tripcanvas-bundle/1"

// Manifest describes the content of a bundle.
type Manifest struct {
	Format     string    `json:"format"`
	DocumentID string    `json:"documentId"`
	Name       string    `json:"name"`
	Pages      []string  `json:"pages"`
	Generator  string    `json:"generator"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BundleOptions controls bundle export. PNG sets the raster options of the
// page previews.
type BundleOptions struct {
	PNG    PNGOptions
	Pages  []int
	Loader render.Loader
}

// Bundle packages doc as a zip archive: the document JSON, one PNG per
// selected page and a manifest. A missing .zip extension is appended.
func Bundle(ctx context.Context, doc element.Document, path string, opt BundleOptions) (string, error) {
	lists, err := RenderPages(ctx, doc, opt.Pages, opt.Loader)
	if err != nil {
		return "", err
	}
	return writeBundle(doc, lists, path, opt)
}

func writeBundle(doc element.Document, lists []*render.DisplayList, path string, opt BundleOptions) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".zip") {
		path += ".zip"
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	zw, f, err := createZip(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := addZipFile(zw, BundleDocument, raw); err != nil {
		return "", fmt.Errorf("zip add document: %w", err)
	}
	pad := len(fmt.Sprint(len(lists)))
	man := Manifest{
		Format:     BundleFormat,
		DocumentID: doc.ID,
		Name:       doc.Name,
		Generator:  "tripcanvas " + version.String(),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	var buf bytes.Buffer
	for i, dl := range lists {
		buf.Reset()
		if err := PNG(dl, &buf, opt.PNG); err != nil {
			return "", err
		}
		name := fmt.Sprintf("%s%0*d.png", BundlePagesDir, pad, i+1)
		if err := addZipFile(zw, name, buf.Bytes()); err != nil {
			return "", fmt.Errorf("zip add page: %w", err)
		}
		man.Pages = append(man.Pages, name)
	}
	mraw, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := addZipFile(zw, BundleManifest, mraw); err != nil {
		return "", fmt.Errorf("zip add manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("close zip: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close bundle: %w", err)
	}
	return path, nil
}

// ReadBundle opens a bundle and validates its document.
func ReadBundle(path string) (element.Document, Manifest, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return element.Document{}, Manifest{}, fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = zr.Close() }()
	var docRaw, manRaw []byte
	for _, zf := range zr.File {
		switch zf.Name {
		case BundleDocument:
			docRaw, err = readZipFile(zf)
		case BundleManifest:
			manRaw, err = readZipFile(zf)
		}
		if err != nil {
			return element.Document{}, Manifest{}, fmt.Errorf("read %s: %w", zf.Name, err)
		}
	}
	if docRaw == nil {
		return element.Document{}, Manifest{}, errors.New("bundle has no " + BundleDocument)
	}
	var man Manifest
	if manRaw != nil {
		if err := json.Unmarshal(manRaw, &man); err != nil {
			return element.Document{}, Manifest{}, fmt.Errorf("decode manifest: %w", err)
		}
	}
	doc, err := storage.ValidateDocument(docRaw)
	if err != nil {
		return element.Document{}, man, err
	}
	return doc, man, nil
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create bundle: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func readZipFile(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
