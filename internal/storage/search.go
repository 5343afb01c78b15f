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
	"fmt"
	"log/slog"
	"strings"

	applog "tripcanvas/internal/log"
)

// SearchQuery describes an index search.
// Text uses SQLite FTS5 syntax (terms, "phrases", AND/OR/NOT). When the FTS
// query is malformed or matches nothing (unsegmented CJK runs, partial
// words) a case-insensitive substring scan is used instead.
// Types restricts entry types (see the Entry* constants); DocID and PageID
// narrow the scope. Limit defaults to 100.
type SearchQuery struct {
	Text   string
	Types  []string
	DocID  string
	PageID string
	Limit  int
	Offset int
}

// SearchResult is one matching entry. Snippet marks the hit with [ ] when
// the full-text path produced it.
type SearchResult struct {
	EntryID   int64
	DocID     string
	PageID    string
	PageNo    int
	ElementID string
	Type      string
	Path      string
	Text      string
	Snippet   string
}

// Search runs q against the index.
func (ix *Index) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return ix.search(ctx, q, modeScan)
	}
	res, err := ix.search(ctx, q, modeFTS)
	if err == nil && len(res) > 0 {
		return res, nil
	}
	if err != nil {
		applog.WithOperation(applog.WithComponent("storage"), "search").Debug("fts query failed, using substring scan",
			slog.String("q", text), slog.Any("err", err))
	}
	return ix.search(ctx, q, modeLike)
}

type searchMode int

const (
	modeScan searchMode = iota
	modeFTS
	modeLike
)

func (ix *Index) search(ctx context.Context, q SearchQuery, mode searchMode) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	switch mode {
	case modeFTS:
		sb.WriteString("SELECT e.entry_id, e.doc_id, e.page_id, e.page_no, e.element_id, e.type, e.path, e.text, snippet(fts_entries, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_entries JOIN entries e ON fts_entries.rowid = e.entry_id\n")
		sb.WriteString("WHERE fts_entries MATCH ?\n")
		args = append(args, q.Text)
	case modeLike:
		sb.WriteString("SELECT e.entry_id, e.doc_id, e.page_id, e.page_no, e.element_id, e.type, e.path, e.text, ''\n")
		sb.WriteString("FROM entries e\nWHERE lower(e.text) LIKE ? ESCAPE '\\'\n")
		args = append(args, likeContains(strings.ToLower(strings.TrimSpace(q.Text))))
	default:
		sb.WriteString("SELECT e.entry_id, e.doc_id, e.page_id, e.page_no, e.element_id, e.type, e.path, e.text, ''\n")
		sb.WriteString("FROM entries e\nWHERE 1=1\n")
	}
	if len(q.Types) > 0 {
		sb.WriteString(" AND e.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	if q.DocID != "" {
		sb.WriteString(" AND e.doc_id = ?\n")
		args = append(args, q.DocID)
	}
	if q.PageID != "" {
		sb.WriteString(" AND e.page_id = ?\n")
		args = append(args, q.PageID)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := max(q.Offset, 0)
	sb.WriteString("ORDER BY e.page_no, e.entry_id\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := ix.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var el, sn sql.NullString
		if err := rows.Scan(&r.EntryID, &r.DocID, &r.PageID, &r.PageNo, &el, &r.Type, &r.Path, &r.Text, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.ElementID = el.String
		r.Snippet = sn.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// ElementsMatching returns the distinct element ids on a page whose entries
// match text, in page order.
func (ix *Index) ElementsMatching(ctx context.Context, pageID, text string) ([]string, error) {
	res, err := ix.Search(ctx, SearchQuery{Text: text, PageID: pageID, Limit: 1000})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var ids []string
	for _, r := range res {
		if r.ElementID == "" || seen[r.ElementID] {
			continue
		}
		seen[r.ElementID] = true
		ids = append(ids, r.ElementID)
	}
	return ids, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeContains(s string) string { return "%" + likeEscaper.Replace(s) + "%" }

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
