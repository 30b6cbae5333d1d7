package main

import (
	"fmt"
	"io"

	"github.com/git-nomad/git-nomad/internal/engine"
	"github.com/git-nomad/git-nomad/internal/nomadref"
)

// writeByHostReport renders a summary line followed by each host's
// published branches, grouped and sorted, shared by sync and ls output.
func writeByHostReport(w io.Writer, groups []engine.HostGroup, summary string) error {
	if _, err := fmt.Fprintln(w, summary); err != nil {
		return err
	}
	for _, group := range groups {
		if _, err := fmt.Fprintf(w, "%s:\n", group.Host); err != nil {
			return err
		}
		for _, ref := range group.Refs {
			if _, err := fmt.Fprintf(w, "  %s\t%s\n", ref.Branch, ref.Commit); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeRefLines renders one "<local mirror ref name>\t<commit>" line per
// published branch, for scripts that want a stable ref name to feed back
// into git rather than a human-oriented grouped listing.
func writeRefLines(w io.Writer, groups []engine.HostGroup) error {
	for _, group := range groups {
		for _, ref := range group.Refs {
			name := nomadref.LocalRefName(ref.Host, ref.Branch)
			if _, err := fmt.Fprintf(w, "%s\t%s\n", name, ref.Commit); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeCommitLines renders one commit id per published branch and nothing
// else, for piping straight into another git invocation.
func writeCommitLines(w io.Writer, groups []engine.HostGroup) error {
	for _, group := range groups {
		for _, ref := range group.Refs {
			if _, err := fmt.Fprintln(w, ref.Commit); err != nil {
				return err
			}
		}
	}
	return nil
}
