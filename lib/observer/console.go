// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package observer

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Console writes build output to a terminal or plain writer. Output
// events pass through verbatim; other events (status, diagnostics)
// get a dimmed "[event]" prefix so they stand apart from the build
// tool's own output. Styling is disabled automatically when the
// writer is not a terminal.
type Console struct {
	mu     sync.Mutex
	writer io.Writer
	output *termenv.Output
	tty    bool
}

// NewConsole creates a console sink writing to w. Pass os.Stdout for
// the common case.
func NewConsole(w io.Writer) *Console {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &Console{
		writer: w,
		output: termenv.NewOutput(w),
		tty:    tty,
	}
}

// Emit writes the payload. Concurrent-safe: relays for stdout and
// stderr share one console.
func (c *Console) Emit(event, payload string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := payload
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	if event != "" && event != "build-output" {
		prefix := "[" + event + "] "
		if c.tty {
			prefix = c.output.String(prefix).Faint().String()
		}
		text = prefix + text
	}

	// Write errors are unreportable here; the console is the sink of
	// last resort.
	_, _ = io.WriteString(c.writer, text)
}
