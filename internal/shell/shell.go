// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package shell implements the interactive workbench: a line oriented REPL
// that owns one session for its lifetime, keeps the text typed so far as an
// editable buffer and runs it through the statement executor.
//
// Lines starting with a backslash are commands. Any other line is appended to
// the buffer, and once a line ends with ';' the text entered since the last run
// is executed as a batch.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"sqlbench/cli/internal/buffer"
	"sqlbench/cli/internal/config"
	"sqlbench/cli/internal/dsn"
	"sqlbench/cli/internal/logging"
	"sqlbench/cli/internal/render"
	"sqlbench/cli/internal/sqlexec"
	"sqlbench/cli/internal/terminal"

	"github.com/pterm/pterm"
)

const (
	promptMain = "sqlbench> "
	promptMore = "      -> "
)

// Options configures a Shell.
type Options struct {
	In       io.Reader
	Out      io.Writer
	Executor *sqlexec.Executor
	Surface  render.Surface
	// Defaults pre-fill the \connect prompts.
	Defaults config.DBConfig
	// ConfirmLine asks before \line runs a statement.
	ConfirmLine bool
	// OnConnect is called after a successful \connect, e.g. to save credentials.
	OnConnect func(info *dsn.DSNInfo)
	Logger    *pterm.Logger
}

// Shell is one interactive session.
type Shell struct {
	opts   Options
	exec   *sqlexec.Executor
	prompt *terminal.Prompter
	out    io.Writer
	logger *pterm.Logger

	text    strings.Builder // every SQL line entered since the last \clear
	pending strings.Builder // lines not yet executed
}

// New creates a shell.
func New(opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Shell{
		opts:   opts,
		exec:   opts.Executor,
		prompt: terminal.NewPrompter(opts.In, opts.Out),
		out:    opts.Out,
		logger: logger,
	}
}

// Text returns the buffer as typed.
func (s *Shell) Text() string {
	return s.text.String()
}

// Run reads commands until \q or end of input. The session is disconnected
// on return.
func (s *Shell) Run(ctx context.Context) error {
	defer func() {
		if err := s.exec.Session().Disconnect(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("disconnect on exit failed", s.logger.Args("error", err.Error()))
		}
	}()

	fmt.Fprintln(s.out, pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Local SQL Workbench")+" "+pterm.NewStyle(pterm.FgGray).Sprint(`(\help for commands)`))

	in := s.prompt.Reader()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if s.pending.Len() > 0 {
			fmt.Fprint(s.out, promptMore)
		} else {
			fmt.Fprint(s.out, promptMain)
		}

		line, err := in.ReadString('\n')
		if line == "" && err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}
		line = strings.TrimRight(line, "\r\n")

		quit, cmdErr := s.Handle(ctx, line)
		if cmdErr != nil {
			fmt.Fprintln(s.out, pterm.NewStyle(pterm.FgRed).Sprint("Error: "+logging.Mask(cmdErr.Error())))
		}
		if quit {
			return nil
		}
	}
}

// Handle processes one input line. It reports whether the shell should exit.
func (s *Shell) Handle(ctx context.Context, line string) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, `\`) {
		s.appendSQL(ctx, line)
		return false, nil
	}

	name, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case `\q`, `\quit`, `\exit`:
		return true, nil
	case `\connect`, `\c`:
		return false, s.connect(ctx, arg)
	case `\disconnect`:
		return false, s.disconnect(ctx)
	case `\run`, `\i`:
		return false, s.runFile(ctx, arg)
	case `\line`:
		return false, s.runLine(ctx, arg)
	case `\go`, `\g`:
		s.flush(ctx)
		return false, nil
	case `\save`, `\w`:
		return false, s.save(arg)
	case `\print`, `\p`:
		s.print()
		return false, nil
	case `\clear`:
		s.text.Reset()
		s.pending.Reset()
		terminal.ClearScreen(s.out)
		fmt.Fprintln(s.out, "Output cleared.")
		return false, nil
	case `\status`:
		s.status()
		return false, nil
	case `\help`, `\h`, `\?`:
		s.help()
		return false, nil
	}
	return false, fmt.Errorf("unknown command %s (try \\help)", name)
}

// appendSQL adds a line to the buffer and runs the pending text once the
// line is terminated.
func (s *Shell) appendSQL(ctx context.Context, line string) {
	if strings.TrimSpace(line) == "" && s.pending.Len() == 0 {
		return
	}
	s.text.WriteString(line)
	s.text.WriteByte('\n')
	s.pending.WriteString(line)
	s.pending.WriteByte('\n')

	if strings.HasSuffix(strings.TrimSpace(line), ";") {
		s.flush(ctx)
	}
}

// flush executes everything entered since the last run.
func (s *Shell) flush(ctx context.Context) {
	text := s.pending.String()
	s.pending.Reset()
	if strings.TrimSpace(text) == "" {
		return
	}
	for r := range s.exec.ExecuteText(ctx, text) {
		s.opts.Surface.Result(r)
	}
}

func (s *Shell) connect(ctx context.Context, arg string) error {
	info, err := s.credentials(arg)
	if err != nil {
		return err
	}

	if _, err := s.exec.Session().Connect(ctx, info); err != nil {
		fmt.Fprintln(s.out, logging.FormatConnectionError(info.Address(), errors.Unwrap(err)))
		return nil
	}

	fmt.Fprintln(s.out, pterm.NewStyle(pterm.FgGreen).Sprint("Connected to database server at "+info.Address()+"!"))
	if s.opts.OnConnect != nil {
		s.opts.OnConnect(info)
	}
	return nil
}

// credentials parses a DSN argument or prompts for the missing pieces.
func (s *Shell) credentials(arg string) (*dsn.DSNInfo, error) {
	if arg != "" {
		return dsn.ParseInfo(arg)
	}

	d := s.opts.Defaults
	host, err := s.prompt.Ask("Host", fallback(d.Host, "localhost"))
	if err != nil {
		return nil, err
	}
	user, err := s.prompt.Ask("User name", d.User)
	if err != nil {
		return nil, err
	}
	password, err := s.prompt.AskSecret("Password")
	if err != nil {
		return nil, err
	}
	return dsn.FromCredentials(dsn.ParseDBType(d.Driver), host, d.Port, user, password, d.Database)
}

func (s *Shell) disconnect(ctx context.Context) error {
	sess := s.exec.Session()
	if !sess.Connected() {
		fmt.Fprintln(s.out, "Not connected.")
		return nil
	}
	if err := sess.Disconnect(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Disconnected from database server!")
	return nil
}

func (s *Shell) runFile(ctx context.Context, path string) error {
	if path == "" {
		return errors.New(`usage: \run <file>`)
	}
	text, err := buffer.Load(path)
	if err != nil {
		return err
	}
	for r := range s.exec.ExecuteText(ctx, text) {
		s.opts.Surface.Result(r)
	}
	return nil
}

func (s *Shell) runLine(ctx context.Context, arg string) error {
	offset, err := strconv.Atoi(arg)
	if err != nil {
		return errors.New(`usage: \line <offset> (see \print for line offsets)`)
	}

	var confirm sqlexec.ConfirmFunc
	if s.opts.ConfirmLine {
		confirm = s.confirm
	}

	res, err := s.exec.ExecuteCurrentLine(ctx, s.Text(), offset, confirm)
	var warn *sqlexec.Warning
	switch {
	case errors.As(err, &warn):
		s.opts.Surface.Warning(warn.Message)
		return nil
	case errors.Is(err, sqlexec.ErrDeclined):
		fmt.Fprintln(s.out, "Skipped.")
		return nil
	case err != nil:
		return err
	}
	s.opts.Surface.Result(res)
	return nil
}

func (s *Shell) confirm(stmt string) (bool, error) {
	fmt.Fprintln(s.out, "Current line will be executed: "+stmt)
	answer, err := s.prompt.Ask("Execute it? [y/N]", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (s *Shell) save(path string) error {
	if path == "" {
		return errors.New(`usage: \save <path>`)
	}
	if err := buffer.Export(path, s.Text()); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "File saved successfully.")
	return nil
}

// print shows the buffer with each line's starting character offset, for \line.
func (s *Shell) print() {
	text := s.Text()
	if text == "" {
		fmt.Fprintln(s.out, "Buffer is empty.")
		return
	}
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		fmt.Fprintf(s.out, "%6d  %s", offset, line)
		offset += utf8.RuneCountInString(line)
	}
}

func (s *Shell) status() {
	info, ok := s.exec.Session().Info()
	if !ok {
		fmt.Fprintln(s.out, "Not connected.")
		return
	}
	fmt.Fprintf(s.out, "Connected to %s as %s (%s)\n", info.Address(), info.User, logging.Mask(info.String()))
}

func (s *Shell) help() {
	fmt.Fprint(s.out, `Commands:
  \connect [dsn]   connect (prompts for host, user and password without a DSN)
  \disconnect      close the connection
  \run <file>      execute every statement in a file
  \line <offset>   execute the buffer line containing a character offset
  \go              execute pending text without a trailing ';'
  \print           show the buffer with line offsets
  \save <path>     write the buffer to a file
  \clear           clear the output and the buffer
  \status          show the connection
  \q               quit
Any other input is SQL; a line ending in ';' executes what was typed since the last run.
`)
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
