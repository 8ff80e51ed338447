// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package spin provides a terminal progress spinner that brackets
// long-running operations. It owns its own goroutine but exposes a
// synchronous Stop, per the concurrency model.
package spin

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

// Handle is a running spinner. Stop must be called exactly once.
type Handle struct {
	out     io.Writer
	done    chan struct{}
	wg      sync.WaitGroup
	message string
	tty     bool
}

// Start begins animating message to w (or, when w is not a terminal,
// prints a single static log line instead of animating).
func Start(w io.Writer, message string) *Handle {
	h := &Handle{
		out:     w,
		done:    make(chan struct{}),
		message: message,
		tty:     isTerminal(w),
	}

	if !h.tty {
		fmt.Fprintf(w, "%s...\n", message)
		return h
	}

	h.wg.Add(1)
	go h.run()
	return h
}

func (h *Handle) run() {
	defer h.wg.Done()
	frames := spinner.Dot.Frames
	ticker := time.NewTicker(spinner.Dot.FPS)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			fmt.Fprintf(h.out, "\r%s %s", style.Render(frames[i%len(frames)]), h.message)
			i++
		}
	}
}

// Stop halts the animation (if any) synchronously and prints a final
// message.
func (h *Handle) Stop(finalMessage string) {
	if h.tty {
		close(h.done)
		h.wg.Wait()
		fmt.Fprintf(h.out, "\r%s\n", finalMessage)
		return
	}
	fmt.Fprintln(h.out, finalMessage)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
