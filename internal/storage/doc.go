/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists travel documents and maintains a disposable search
// index next to them.
//
// A document lives in a project directory as document.json. Saves are
// transactional (temp file then rename) and keep timestamped copies of the
// previous file under backups/. Open falls back to the newest backup when the
// current file cannot be read or decoded.
//
// The embedded SQLite index at <project>/.tripcanvas/index.sqlite is derived
// from the document: it holds full-text entries for element names and text
// content, cached page thumbnails and page snapshots. It can be deleted and
// rebuilt at any time.
package storage
