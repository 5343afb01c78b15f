/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"tripcanvas/internal/export"
)

// settle is how long a file must stay quiet before a rebuild. Editors
// often save in several writes (truncate, write, rename).
const settle = 250 * time.Millisecond

// watchFile calls onChange after every burst of writes to path until ctx
// is done. The parent directory is watched so atomic renames are seen.
func watchFile(ctx context.Context, path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if p, _ := filepath.Abs(ev.Name); p != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher: %w", err)
		case <-timer.C:
			onChange()
		}
	}
}

func (a *app) watch(args []string) error {
	fs, f := a.exportFlagSet("watch")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("watch requires <doc>")
	}
	path := fs.Arg(0)
	if fi, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch: %w", err)
	} else if fi.IsDir() {
		return usagef("watch requires a document file, not a directory")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rebuild := func() {
		h, err := a.loadDocument(path)
		if err != nil {
			// keep watching; the next save may fix it
			a.log.Warn("document not exported", slog.Any("err", err))
			return
		}
		paths, err := export.BatchExport(ctx, h.Doc, a.outDir(*f.out, h), a.batchOptions(f))
		if err != nil {
			a.log.Error("export failed", slog.Any("err", err))
			return
		}
		a.log.Info("exported", slog.String("doc", h.Doc.ID), slog.Int("files", len(paths)))
	}
	rebuild()
	fmt.Fprintf(a.stdout, "watching %s (Ctrl+C to stop)\n", path)
	return watchFile(ctx, path, rebuild)
}
