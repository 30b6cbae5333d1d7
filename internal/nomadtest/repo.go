// Package nomadtest provides local git repository fixtures for tests that
// need to exercise a real git binary: a bare "remote" repository plus one
// or more working clones acting as hosts, grounded on the git invoker's own
// test helpers.
package nomadtest

import (
	"os/exec"
	"path/filepath"
	"testing"
)

// Remote is a bare git repository standing in for a shared remote.
type Remote struct {
	t   *testing.T
	Dir string
}

// NewRemote initializes a bare repository in a fresh temp directory.
func NewRemote(t *testing.T) *Remote {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "remote.git")
	run(t, "", "init", "--bare", "-b", "main", dir)
	return &Remote{t: t, Dir: dir}
}

// Clone creates a working clone of the remote rooted at a fresh temp
// directory, configured with a test identity so commits succeed.
func (r *Remote) Clone(name string) *Clone {
	r.t.Helper()
	dir := filepath.Join(r.t.TempDir(), name)
	run(r.t, "", "clone", r.Dir, dir)
	run(r.t, dir, "config", "user.email", "test@example.com")
	run(r.t, dir, "config", "user.name", "Test")
	return &Clone{t: r.t, Dir: dir}
}

// Clone is a working copy of a Remote acting as one host.
type Clone struct {
	t   *testing.T
	Dir string
}

// CommitFile writes content to name and commits it on the current branch.
func (c *Clone) CommitFile(name, content, message string) string {
	c.t.Helper()
	path := filepath.Join(c.Dir, name)
	writeFile(c.t, path, content)
	run(c.t, c.Dir, "add", name)
	run(c.t, c.Dir, "commit", "-m", message)
	return c.RevParse("HEAD")
}

// AmendFile rewrites content and amends the last commit (a non-fast-forward
// rewrite of the branch tip).
func (c *Clone) AmendFile(name, content string) string {
	c.t.Helper()
	path := filepath.Join(c.Dir, name)
	writeFile(c.t, path, content)
	run(c.t, c.Dir, "add", name)
	run(c.t, c.Dir, "commit", "--amend", "--no-edit")
	return c.RevParse("HEAD")
}

// CheckoutNewBranch creates and switches to a new branch from the current HEAD.
func (c *Clone) CheckoutNewBranch(name string) {
	c.t.Helper()
	run(c.t, c.Dir, "checkout", "-b", name)
}

// Checkout switches to an existing branch or ref.
func (c *Clone) Checkout(ref string) {
	c.t.Helper()
	run(c.t, c.Dir, "checkout", ref)
}

// DeleteBranch force-deletes a local branch.
func (c *Clone) DeleteBranch(name string) {
	c.t.Helper()
	run(c.t, c.Dir, "branch", "-D", name)
}

// RevParse resolves ref to a commit id.
func (c *Clone) RevParse(ref string) string {
	c.t.Helper()
	return run(c.t, c.Dir, "rev-parse", ref)
}

// ReadFile reads a file's content from the working tree.
func (c *Clone) ReadFile(name string) string {
	c.t.Helper()
	return readFile(c.t, filepath.Join(c.Dir, name))
}

// ShowRefLines lists every ref (and its commit) visible in this clone, matching
// the output git show-ref would produce, as raw "<commit> <name>" lines.
func (c *Clone) ShowRefLines() []string {
	c.t.Helper()
	out, err := exec.Command("git", "-C", c.Dir, "show-ref").Output()
	if err != nil {
		// show-ref exits non-zero when there are no refs at all.
		return nil
	}
	return splitNonEmptyLines(string(out))
}

// ShowRefLines lists refs on the bare remote directly, bypassing
// ls-remote, useful for asserting on remote state from the test's point of
// view rather than through the invoker under test.
func (r *Remote) ShowRefLines() []string {
	r.t.Helper()
	out, err := exec.Command("git", "-C", r.Dir, "show-ref").Output()
	if err != nil {
		return nil
	}
	return splitNonEmptyLines(string(out))
}
