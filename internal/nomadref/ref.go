// Package nomadref implements the refs/nomad/ naming hierarchy: parsing the
// lines git emits from show-ref/ls-remote, and rendering/parsing the
// local (refs/nomad/<host>/<branch>) and remote
// (refs/nomad/<user>/<host>/<branch>) ref namespaces.
package nomadref

import (
	"fmt"
	"strings"
)

// Ref is a single <commit>\t<name> or <commit> <name> pair as emitted by
// `git ls-remote` or `git show-ref`.
type Ref struct {
	CommitID string
	Name     string
}

// ParseErrorKind distinguishes the ways a ref line can fail to parse.
type ParseErrorKind int

const (
	ErrMissingCommit ParseErrorKind = iota
	ErrMissingName
	ErrTooManyParts
)

// ParseError is returned by ParseRefLine when a line doesn't match the
// expected "<commit><sep><name>" shape.
type ParseError struct {
	Kind ParseErrorKind
	Line string
}

func (e *ParseError) Error() string {
	var tag string
	switch e.Kind {
	case ErrMissingCommit:
		tag = "missing commit id"
	case ErrMissingName:
		tag = "missing ref name"
	case ErrTooManyParts:
		tag = "too many parts"
	default:
		tag = "parse error"
	}
	return fmt.Sprintf("%s: %q", tag, e.Line)
}

// ParseRefLine parses a single line using sep as the field delimiter. git
// uses a space for `show-ref` output and a tab for `ls-remote` output.
func ParseRefLine(line string, sep byte) (Ref, error) {
	parts := strings.Split(line, string(sep))

	name := parts[len(parts)-1]
	if name == "" {
		return Ref{}, &ParseError{Kind: ErrMissingName, Line: line}
	}
	parts = parts[:len(parts)-1]

	if len(parts) == 0 {
		return Ref{}, &ParseError{Kind: ErrMissingCommit, Line: line}
	}
	commit := parts[len(parts)-1]
	if commit == "" {
		return Ref{}, &ParseError{Kind: ErrMissingCommit, Line: line}
	}
	parts = parts[:len(parts)-1]

	if len(parts) != 0 {
		return Ref{}, &ParseError{Kind: ErrTooManyParts, Line: line}
	}

	return Ref{CommitID: commit, Name: name}, nil
}

// ParseShowRefLine parses a line from `git show-ref` (space delimited).
func ParseShowRefLine(line string) (Ref, error) {
	return ParseRefLine(line, ' ')
}

// ParseLsRemoteLine parses a line from `git ls-remote` (tab delimited).
func ParseLsRemoteLine(line string) (Ref, error) {
	return ParseRefLine(line, '\t')
}
