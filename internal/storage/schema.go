/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"tripcanvas/internal/element"
)

// ErrInvalidDocument wraps every schema or model violation reported by
// ValidateDocument.
var ErrInvalidDocument = errors.New("invalid document")

//go:embed document.schema.json
var documentSchema []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(documentSchema))
	})
	return schema, schemaErr
}

// Schema returns the embedded JSON schema for document files.
func Schema() []byte { return documentSchema }

// ValidateDocument checks raw document JSON against the embedded schema and
// then against the model invariants (unique ids, known types). All problems
// are joined into one error wrapping ErrInvalidDocument.
func ValidateDocument(raw []byte) (element.Document, error) {
	s, err := compiledSchema()
	if err != nil {
		return element.Document{}, fmt.Errorf("compile document schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		// not JSON at all
		return element.Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	var errs []error
	for _, e := range res.Errors() {
		errs = append(errs, fmt.Errorf("%s: %s", e.Field(), e.Description()))
	}
	if len(errs) > 0 {
		return element.Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, errors.Join(errs...))
	}
	var doc element.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return element.Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return element.Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc, nil
}
