// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"sqlbench/cli/internal/config"
	"sqlbench/cli/internal/terminal"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

var spinnerFrames = []string{"-", "\\", "|", "/"}

// startInlineSpinner shows rotating frames followed by text on a single line
// of w until the returned function is called. The line is cleared on stop and
// the cursor is hidden meanwhile. Calling stop more than once is harmless.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	var once sync.Once

	cursor.Hide()
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
			select {
			case <-stop:
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cursor.Show()
		})
	}
}

// interactive reports whether both stdin and stdout are terminals.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// waitIndicator shows a spinner while a statement is running. It stays silent
// when output is not an interactive table.
type waitIndicator struct {
	enabled bool
	stop    func()
}

func newWaitIndicator() *waitIndicator {
	return &waitIndicator{enabled: cfg.Output != config.OutputJSON && interactive()}
}

func (w *waitIndicator) Start() {
	if w.enabled && w.stop == nil {
		w.stop = startInlineSpinner(os.Stdout, "executing", spinnerFrames, 100*time.Millisecond)
	}
}

func (w *waitIndicator) Stop() {
	if w.stop != nil {
		w.stop()
		w.stop = nil
	}
}

// confirmLine asks whether the current line should run. On a terminal it
// uses an interactive pterm confirm; otherwise it reads y/N from stdin.
func confirmLine(stmt string) (bool, error) {
	question := "Current line will be executed: " + stmt + "\nDo you want to execute it?"
	if interactive() {
		return pterm.DefaultInteractiveConfirm.
			WithDefaultText(question).
			WithDefaultValue(false).
			Show()
	}

	p := terminal.NewPrompter(os.Stdin, os.Stderr)
	answer, err := p.Ask(question+" [y/N]", "")
	if err != nil {
		return false, err
	}
	return answer == "y" || answer == "Y" || answer == "yes", nil
}
