// Package progress renders step-by-step command feedback to the terminal.
// It is the Go counterpart of a renderer abstraction that separates
// interactive terminal output from the plain line-per-step output a
// non-interactive stream or a test harness expects.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Reporter renders the progress of a command's steps and its final
// out/err streams. Out and Err are for the command's primary payload (a
// list of refs, a report); Step wraps one unit of work with a status line.
type Reporter interface {
	Out(fn func(io.Writer) error) error
	Err(fn func(io.Writer) error) error
	Step(description string, fn func() error) error
}

// TerminalReporter writes colorized status lines when stderr is a TTY and
// plain "description..." lines otherwise, matching how a spinner-based
// renderer degrades for piped output.
type TerminalReporter struct {
	Stdout io.Writer
	Stderr io.Writer
	Quiet  bool

	interactive bool
}

// NewTerminalReporter builds a reporter writing to stdout/stderr, detecting
// interactivity from whether stderr is a TTY.
func NewTerminalReporter(stdout, stderr io.Writer, quiet bool) *TerminalReporter {
	interactive := false
	if f, ok := stderr.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &TerminalReporter{Stdout: stdout, Stderr: stderr, Quiet: quiet, interactive: interactive}
}

func (r *TerminalReporter) Out(fn func(io.Writer) error) error {
	return fn(r.Stdout)
}

func (r *TerminalReporter) Err(fn func(io.Writer) error) error {
	if r.Quiet {
		return nil
	}
	return fn(r.Stderr)
}

// Step announces description, runs fn, and reports success or failure.
// Under --quiet nothing is printed at all; fn still runs.
func (r *TerminalReporter) Step(description string, fn func() error) error {
	if r.Quiet {
		return fn()
	}

	if r.interactive {
		fmt.Fprintf(r.Stderr, "%s %s...\n", color.CyanString("▸"), description)
	} else {
		fmt.Fprintf(r.Stderr, "%s...\n", description)
	}

	err := fn()
	if err != nil {
		if r.interactive {
			fmt.Fprintf(r.Stderr, "%s %s: %s\n", color.RedString("✗"), description, err)
		} else {
			fmt.Fprintf(r.Stderr, "failed: %s: %s\n", description, err)
		}
		return err
	}

	if r.interactive {
		fmt.Fprintf(r.Stderr, "%s %s\n", color.GreenString("✓"), description)
	}
	return nil
}

// Warn prints a non-fatal warning line, used for ParseFailure and
// LocalRefMutationFailed, which are collected and reported but never abort
// a command.
func (r *TerminalReporter) Warn(description string) {
	if r.Quiet {
		return
	}
	if r.interactive {
		fmt.Fprintf(r.Stderr, "%s %s\n", color.YellowString("!"), description)
	} else {
		fmt.Fprintf(r.Stderr, "warning: %s\n", description)
	}
}

// NopReporter discards everything. It backs unit tests that don't care
// about rendered output, matching a test-mode no-op renderer.
type NopReporter struct{}

func (NopReporter) Out(fn func(io.Writer) error) error { return nil }
func (NopReporter) Err(fn func(io.Writer) error) error { return nil }
func (NopReporter) Step(description string, fn func() error) error {
	return fn()
}

// MemoryReporter records every step description and out/err write into
// plain buffers, for tests that assert on rendered content without a real
// terminal.
type MemoryReporter struct {
	Steps []string
	out   []byte
	err   []byte
}

func (m *MemoryReporter) Out(fn func(io.Writer) error) error {
	w := &appendWriter{buf: &m.out}
	return fn(w)
}

func (m *MemoryReporter) Err(fn func(io.Writer) error) error {
	w := &appendWriter{buf: &m.err}
	return fn(w)
}

func (m *MemoryReporter) Step(description string, fn func() error) error {
	m.Steps = append(m.Steps, description)
	return fn()
}

// OutString returns everything written via Out.
func (m *MemoryReporter) OutString() string { return string(m.out) }

// ErrString returns everything written via Err.
func (m *MemoryReporter) ErrString() string { return string(m.err) }

type appendWriter struct {
	buf *[]byte
}

func (w *appendWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}
