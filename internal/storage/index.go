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
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tripcanvas/internal/element"
	applog "tripcanvas/internal/log"
	"tripcanvas/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName holds per-project derived data under the project root.
	IndexDirName  = ".tripcanvas"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the index schema. Bump it together with a
	// migration step in runMigrations.
	schemaVersion = 2

	// tsLayout has a fixed width so stored timestamps sort as text.
	tsLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Index is an open project index database.
type Index struct {
	db   *sql.DB
	root string
}

// IndexPath returns the index database file of a project.
func IndexPath(projectRoot string) string {
	return filepath.Join(projectRoot, IndexDirName, IndexFileName)
}

// OpenIndex creates or opens the project index with WAL enabled and the
// schema brought up to date. Close it when done.
func OpenIndex(projectRoot string) (*Index, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_open").With(
		slog.String("root", projectRoot),
	)
	if strings.TrimSpace(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	if err := os.MkdirAll(filepath.Join(projectRoot, IndexDirName), 0o755); err != nil {
		l.Error("create index dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create %s dir: %w", IndexDirName, err)
	}

	path := IndexPath(projectRoot)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("index ready", slog.String("path", path))
	return &Index{db: db, root: projectRoot}, nil
}

// Close releases the database.
func (ix *Index) Close() error { return ix.db.Close() }

// SchemaVersion reports the schema version recorded in the database.
func (ix *Index) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := ix.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v)
	return v, err
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// a fresh database starts at version 1 and migrates up
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental steps up to schemaVersion. A database
// written by a newer build is left alone.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = entryLookupIndexes
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

var entryLookupIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_entries_element ON entries(element_id);`,
	`CREATE INDEX IF NOT EXISTS idx_entries_type ON entries(type);`,
}

func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// One row per searchable string: element names, text content, page names.
		`CREATE TABLE IF NOT EXISTS entries (
			entry_id    INTEGER PRIMARY KEY,
			doc_id      TEXT    NOT NULL,
			page_id     TEXT    NOT NULL,
			page_no     INTEGER NOT NULL,
			element_id  TEXT,
			type        TEXT    NOT NULL,
			path        TEXT    NOT NULL,
			text        TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_doc ON entries(doc_id);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_page ON entries(page_id);`,

		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_entries USING fts5(
			text,
			content='entries',
			content_rowid='entry_id',
			tokenize = 'unicode61'
		);`,

		`CREATE TABLE IF NOT EXISTS previews (
			id          INTEGER PRIMARY KEY,
			doc_id      TEXT    NOT NULL,
			page_id     TEXT    NOT NULL,
			w           INTEGER NOT NULL,
			h           INTEGER NOT NULL,
			blob        BLOB    NOT NULL,
			size        INTEGER NOT NULL,
			updated_at  TEXT    NOT NULL,
			last_access TEXT
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_previews_variant ON previews(doc_id, page_id, w, h);`,
		`CREATE INDEX IF NOT EXISTS idx_previews_access ON previews(last_access);`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id         INTEGER PRIMARY KEY,
			page_id    TEXT    NOT NULL,
			ts         TEXT    NOT NULL,
			page_blob  BLOB    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_page_ts ON snapshots(page_id, ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS entries_ai AFTER INSERT ON entries BEGIN
			INSERT INTO fts_entries(rowid, text) VALUES (new.entry_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS entries_ad AFTER DELETE ON entries BEGIN
			INSERT INTO fts_entries(fts_entries, rowid, text) VALUES ('delete', old.entry_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS entries_au AFTER UPDATE OF text ON entries BEGIN
			INSERT INTO fts_entries(fts_entries, rowid, text) VALUES ('delete', old.entry_id, old.text);
			INSERT INTO fts_entries(rowid, text) VALUES (new.entry_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

type entry struct {
	pageID    string
	pageNo    int
	elementID sql.NullString
	typ       string
	path      string
	text      string
}

// Entry types written by IndexDocument.
const (
	EntryPage    = "page"
	EntryName    = "name"
	EntryText    = "text"
	EntryAsset   = "asset"
	EntryIcon    = "icon"
	EntrySticker = "sticker"
)

func collectEntries(doc element.Document) []entry {
	out := make([]entry, 0, 64)
	for i := range doc.Pages {
		pg := &doc.Pages[i]
		no := i + 1
		if s := strings.TrimSpace(pg.Name); s != "" {
			out = append(out, entry{pageID: pg.ID, pageNo: no, typ: EntryPage, path: "page:" + pg.ID, text: s})
		}
		element.Walk(pg.Elements, func(e element.Element) bool {
			b := e.Common()
			add := func(typ, text string) {
				text = strings.TrimSpace(text)
				if text == "" {
					return
				}
				out = append(out, entry{
					pageID:    pg.ID,
					pageNo:    no,
					elementID: sql.NullString{String: b.ID, Valid: true},
					typ:       typ,
					path:      fmt.Sprintf("page:%s/element:%s", pg.ID, b.ID),
					text:      text,
				})
			}
			add(EntryName, b.Name)
			switch v := e.(type) {
			case *element.Text:
				add(EntryText, v.Content)
			case *element.Image:
				add(EntryAsset, v.Src)
			case *element.Icon:
				add(EntryIcon, v.Icon)
			case *element.Sticker:
				add(EntrySticker, v.StickerID)
			}
			return true
		})
	}
	return out
}

// IndexDocument replaces every entry of doc with rows derived from its
// current pages.
func (ix *Index) IndexDocument(ctx context.Context, doc element.Document) error {
	rows := collectEntries(doc)
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE doc_id=?;", doc.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear entries: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO entries(doc_id, page_id, page_no, element_id, type, path, text) VALUES(?,?,?,?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for _, r := range rows {
		if _, err := ins.ExecContext(ctx, doc.ID, r.pageID, r.pageNo, r.elementID, r.typ, r.path, r.text); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	applog.WithOperation(applog.WithComponent("storage"), "index").Debug("document indexed",
		slog.String("doc", doc.ID), slog.Int("entries", len(rows)))
	return nil
}

// Rebuild drops the derived tables, recreates them and indexes doc. The
// meta and version tables survive.
func (ix *Index) Rebuild(ctx context.Context, doc element.Document) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	drops := []string{
		"DROP TABLE IF EXISTS previews;",
		"DROP TABLE IF EXISTS snapshots;",
		"DROP TRIGGER IF EXISTS entries_ai;",
		"DROP TRIGGER IF EXISTS entries_ad;",
		"DROP TRIGGER IF EXISTS entries_au;",
		"DROP TABLE IF EXISTS fts_entries;",
		"DROP TABLE IF EXISTS entries;",
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ensureIndexSchema(ctx, ix.db); err != nil {
		return err
	}
	for _, q := range entryLookupIndexes {
		if _, err := ix.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("recreate indexes: %w", err)
		}
	}
	return ix.IndexDocument(ctx, doc)
}

// DetectAndRebuildIndex opens the index and rebuilds it from doc when it is
// corrupt or missing its core table. A file that cannot be opened at all is
// moved aside first. It reports whether a rebuild happened.
func DetectAndRebuildIndex(ctx context.Context, projectRoot string, doc element.Document) (bool, error) {
	path := IndexPath(projectRoot)
	ix, err := OpenIndex(projectRoot)
	if err != nil {
		backupIndexFile(path)
		_ = os.Remove(path)
		ix, err = OpenIndex(projectRoot)
		if err != nil {
			return false, fmt.Errorf("reopen index after reset: %w", err)
		}
		defer ix.Close()
		return true, ix.Rebuild(ctx, doc)
	}
	defer ix.Close()
	needs := false
	var chk string
	if err := ix.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	if !needs {
		if _, err := ix.db.ExecContext(ctx, `SELECT 1 FROM entries LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if !needs {
		return false, nil
	}
	return true, ix.Rebuild(ctx, doc)
}

// backupIndexFile copies the index into a timestamped file next to it.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}
