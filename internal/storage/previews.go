/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPreviewsMaxBytes caps the thumbnail cache size.
const EnvPreviewsMaxBytes = "TRIPCANVAS_PREVIEWS_MAX_BYTES"

const defaultPreviewsMaxBytes = 64 * 1024 * 1024

// PreviewKey identifies one cached page thumbnail.
type PreviewKey struct {
	DocID  string
	PageID string
	W, H   int
}

// Preview returns the cached thumbnail for key, or nil when absent, and
// marks it as recently used.
func (ix *Index) Preview(ctx context.Context, key PreviewKey) ([]byte, error) {
	var blob []byte
	err := ix.db.QueryRowContext(ctx, `SELECT blob FROM previews WHERE doc_id=? AND page_id=? AND w=? AND h=?`,
		key.DocID, key.PageID, key.W, key.H).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	now := time.Now().UTC().Format(tsLayout)
	_, _ = ix.db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE doc_id=? AND page_id=? AND w=? AND h=?`,
		now, key.DocID, key.PageID, key.W, key.H)
	return blob, nil
}

// PutPreview upserts a thumbnail (PNG bytes) and evicts least recently used
// rows beyond the configured cap.
func (ix *Index) PutPreview(ctx context.Context, key PreviewKey, blob []byte) error {
	if len(blob) == 0 {
		return errors.New("empty preview")
	}
	now := time.Now().UTC().Format(tsLayout)
	_, err := ix.db.ExecContext(ctx, `INSERT INTO previews(doc_id,page_id,w,h,blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(doc_id,page_id,w,h) DO UPDATE SET blob=excluded.blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		key.DocID, key.PageID, key.W, key.H, blob, len(blob), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if capBytes := MaxPreviewsBytesFromEnv(); capBytes > 0 {
		return ix.EvictPreviewsToFit(ctx, capBytes)
	}
	return nil
}

// GetOrCreatePreview returns the cached thumbnail or renders and stores one
// with gen.
func (ix *Index) GetOrCreatePreview(ctx context.Context, key PreviewKey, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := ix.Preview(ctx, key); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil || data == nil {
		return nil, err
	}
	if err := ix.PutPreview(ctx, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

// InvalidatePreviews drops every cached thumbnail of a page.
func (ix *Index) InvalidatePreviews(ctx context.Context, docID, pageID string) error {
	_, err := ix.db.ExecContext(ctx, `DELETE FROM previews WHERE doc_id=? AND page_id=?`, docID, pageID)
	if err != nil {
		return fmt.Errorf("invalidate previews: %w", err)
	}
	return nil
}

// EvictPreviewsToFit deletes least recently used rows until the total size
// is at most capBytes.
func (ix *Index) EvictPreviewsToFit(ctx context.Context, capBytes int64) error {
	total, err := ix.TotalPreviewBytes(ctx)
	if err != nil {
		return err
	}
	if total <= capBytes {
		return nil
	}
	rows, err := ix.db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	var victims []any
	cur := total
	for rows.Next() && cur > capBytes {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// the single connection must be free before writing
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM previews WHERE id IN (`+placeholders(len(victims))+`)`, victims...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// TotalPreviewBytes sums the cached thumbnail sizes.
func (ix *Index) TotalPreviewBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := ix.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum previews size: %w", err)
	}
	return total, nil
}

// MaxPreviewsBytesFromEnv reads TRIPCANVAS_PREVIEWS_MAX_BYTES, defaulting
// to 64MB.
func MaxPreviewsBytesFromEnv() int64 {
	v := os.Getenv(EnvPreviewsMaxBytes)
	if v == "" {
		return defaultPreviewsMaxBytes
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return defaultPreviewsMaxBytes
	}
	return n
}
