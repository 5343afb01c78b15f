/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"tripcanvas/internal/config"
	"tripcanvas/internal/crash"
	applog "tripcanvas/internal/log"
	"tripcanvas/internal/storage"
	"tripcanvas/internal/version"
)

// EnvConfig points the CLI at a config file other than the per-user one.
const EnvConfig = "TRIPCANVAS_CONFIG"

func usage(w io.Writer) {
	fmt.Fprintln(w, "tripcanvas: travel document designer")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tripcanvas version|-v|--version                      Show version")
	fmt.Fprintln(w, "  tripcanvas blocks [--category c] [--search q]        List component blocks")
	fmt.Fprintln(w, "  tripcanvas generate <block> [--data k=v] [--style s] [--page f]")
	fmt.Fprintln(w, "  tripcanvas validate <doc>                            Check a document file")
	fmt.Fprintln(w, "  tripcanvas export <doc> [--format pdf,png,svg,zip] [--out dir]")
	fmt.Fprintln(w, "  tripcanvas watch <doc> [--format ...] [--out dir]    Re-export on change")
	fmt.Fprintln(w, "  tripcanvas index <doc>                               Build the search index")
	fmt.Fprintln(w, "  tripcanvas search <root> <query>                     Search an indexed project")
	fmt.Fprintln(w, "  tripcanvas styles list [root] | export <root> <zip> | install <root> <zip>")
}

// app carries what every command needs.
type app struct {
	cfg    config.AppConfig
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
	// handle is the document currently open, autosaved on a crash.
	handle *storage.DocumentHandle
}

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	defer func() {
		if r := recover(); r != nil {
			crash.Handle(r, a.handle)
		}
	}()
	os.Exit(a.run(os.Args[1:]))
}

func (a *app) run(args []string) int {
	cfg, err := config.Load(os.Getenv(EnvConfig))
	if err != nil {
		fmt.Fprintln(a.stderr, "Warning:", err)
	}
	a.cfg = cfg
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Output:    a.stderr,
	})
	a.log = applog.WithComponent("cli")
	a.log.Debug("start", slog.Int("args", len(args)))

	if len(args) == 0 {
		usage(a.stdout)
		return 0
	}
	cmd, rest := args[0], args[1:]
	var cerr error
	switch strings.ToLower(cmd) {
	case "version", "--version", "-v":
		fmt.Fprintln(a.stdout, "tripcanvas", version.String())
		return 0
	case "help", "--help", "-h":
		usage(a.stdout)
		return 0
	case "blocks":
		cerr = a.blocks(rest)
	case "generate":
		cerr = a.generate(rest)
	case "validate":
		cerr = a.validate(rest)
	case "export":
		cerr = a.export(rest)
	case "watch":
		cerr = a.watch(rest)
	case "index":
		cerr = a.index(rest)
	case "search":
		cerr = a.search(rest)
	case "styles":
		cerr = a.styles(rest)
	default:
		fmt.Fprintf(a.stderr, "unknown command %q\n", cmd)
		usage(a.stderr)
		return 2
	}
	if cerr != nil {
		if isUsage(cerr) {
			fmt.Fprintln(a.stderr, cerr)
			return 2
		}
		a.log.Error(cmd+" failed", slog.Any("err", cerr))
		fmt.Fprintln(a.stderr, "Error:", cerr)
		return 1
	}
	return 0
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error { return usageError{fmt.Sprintf(format, args...)} }

func isUsage(err error) bool {
	var u usageError
	return errors.As(err, &u)
}
