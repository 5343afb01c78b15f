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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tripcanvas/internal/element"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(page_id, ts, page_blob) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT ts, page_blob FROM snapshots WHERE page_id = ? ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT ts, page_blob FROM snapshots WHERE page_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE page_id = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE page_id = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// Snapshot is a stored copy of a page.
type Snapshot struct {
	TS   time.Time
	Page element.Page
}

// SaveSnapshot stores a copy of pg taken at ts.
func (ix *Index) SaveSnapshot(ctx context.Context, pg element.Page, ts time.Time) error {
	blob, err := json.Marshal(pg)
	if err != nil {
		return fmt.Errorf("marshal page: %w", err)
	}
	if _, err := ix.db.ExecContext(ctx, insertSnapshotSQL, pg.ID, ts.UTC().Format(tsLayout), blob); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the newest snapshot of a page; ok is false when
// none exists.
func (ix *Index) LatestSnapshot(ctx context.Context, pageID string) (s Snapshot, ok bool, err error) {
	var tsStr string
	var blob []byte
	err = ix.db.QueryRowContext(ctx, selectLatestSnapshotSQL, pageID).Scan(&tsStr, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	s, err = decodeSnapshot(tsStr, blob)
	return s, err == nil, err
}

// ListSnapshots returns up to limit snapshots of a page, newest first.
func (ix *Index) ListSnapshots(ctx context.Context, pageID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := ix.db.QueryContext(ctx, listSnapshotsSQL, pageID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Snapshot
	for rows.Next() {
		var tsStr string
		var blob []byte
		if err := rows.Scan(&tsStr, &blob); err != nil {
			return nil, err
		}
		s, err := decodeSnapshot(tsStr, blob)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneOldSnapshots keeps the newest keepLast snapshots of a page.
func (ix *Index) PruneOldSnapshots(ctx context.Context, pageID string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := ix.db.ExecContext(ctx, pruneOldSnapshotsSQL, pageID, pageID, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func decodeSnapshot(tsStr string, blob []byte) (Snapshot, error) {
	var pg element.Page
	if err := json.Unmarshal(blob, &pg); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	ts, _ := time.Parse(tsLayout, tsStr)
	return Snapshot{TS: ts, Page: pg}, nil
}
