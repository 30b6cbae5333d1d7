// Package gitcli is the abstract boundary between the reconciliation engine
// and the actual git binary. Invoker carries no business rules of its own;
// every decision about what to push, fetch, or delete lives in
// internal/engine. ShellClient is the only implementation that touches a
// real process; tests substitute an in-memory fake.
package gitcli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/git-nomad/git-nomad/internal/nomadref"
)

// LocalBranch is one entry from refs/heads/.
type LocalBranch struct {
	Name   string
	Commit string
}

// RefUpdate is one src:dst pair submitted as part of an atomic push.
type RefUpdate struct {
	Src string
	Dst string
}

// DeleteResult records the outcome of deleting a single local ref.
// Individual failures are logged and skipped (§7 LocalRefMutationFailed);
// they never abort the batch.
type DeleteResult struct {
	Ref string
	Err error
}

// Invoker is the abstract set of git operations the reconciliation engine
// depends on. The production implementation (ShellClient) spawns git
// subprocesses and parses their stdout; tests use an in-memory fake.
type Invoker interface {
	ListLocalBranches(ctx context.Context) ([]LocalBranch, error)
	ListRemoteNomadRefs(ctx context.Context, remote, user string) ([]nomadref.Ref, error)
	ListLocalNomadRefs(ctx context.Context) ([]nomadref.Ref, error)
	Push(ctx context.Context, remote string, additions []RefUpdate, deletions []string) error
	Fetch(ctx context.Context, remote, refspec string) error
	DeleteLocalRefs(ctx context.Context, refs []string) []DeleteResult
	ReadConfig(ctx context.Context, key string) (string, bool, error)
	WriteConfig(ctx context.Context, key, value string) error
	CurrentBranch(ctx context.Context) (string, bool, error)
}

// ShellClient implements Invoker by shelling out to the git command.
type ShellClient struct {
	// GitBinary is the name or path of the git executable. Defaults to
	// "git", looked up against $PATH.
	GitBinary string
	// Dir is the working directory git commands run in: the root of the
	// clone being synchronized.
	Dir string
	// SSHKeyFile and HTTPSTokenFile configure authentication for remote
	// operations (push/fetch/ls-remote), mirroring the env-based
	// injection technique used for checkout-only git clients.
	SSHKeyFile     string
	HTTPSTokenFile string
}

// NewShellClient creates a ShellClient rooted at dir using the default git
// binary on $PATH.
func NewShellClient(dir string) *ShellClient {
	return &ShellClient{GitBinary: "git", Dir: dir}
}

func (c *ShellClient) binary() string {
	if c.GitBinary == "" {
		return "git"
	}
	return c.GitBinary
}

func (c *ShellClient) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.binary(), args...)
	cmd.Dir = c.Dir
	return cmd
}

func (c *ShellClient) run(ctx context.Context, args ...string) (string, error) {
	cmd := c.command(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if _, ok := err.(*exec.Error); ok {
			return "", fmt.Errorf("%w: %s", ErrGitUnavailable, err)
		}
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// ListLocalBranches lists refs/heads/ via for-each-ref.
func (c *ShellClient) ListLocalBranches(ctx context.Context) ([]LocalBranch, error) {
	out, err := c.run(ctx, "for-each-ref", "refs/heads/", "--format=%(objectname) %(refname:short)")
	if err != nil {
		return nil, err
	}

	var branches []LocalBranch
	for _, line := range splitLines(out) {
		ref, perr := nomadref.ParseShowRefLine(line)
		if perr != nil {
			continue
		}
		branches = append(branches, LocalBranch{Name: ref.Name, Commit: ref.CommitID})
	}
	return branches, nil
}

// ListRemoteNomadRefs lists refs/nomad/<user>/* on remote via ls-remote.
// Distinguishes a reachable-but-empty remote (nil error, empty slice) from
// an unreachable one (ErrRemoteUnavailable).
func (c *ShellClient) ListRemoteNomadRefs(ctx context.Context, remote, user string) ([]nomadref.Ref, error) {
	cmd := c.command(ctx, "ls-remote", remote, nomadref.RemoteListGlob(user))
	c.configureAuth(cmd, remote)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.Error); ok {
			return nil, fmt.Errorf("%w: %s", ErrGitUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrRemoteUnavailable, strings.TrimSpace(stderr.String()))
	}

	var refs []nomadref.Ref
	for _, line := range splitLines(stdout.String()) {
		ref, perr := nomadref.ParseLsRemoteLine(line)
		if perr != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// ListLocalNomadRefs lists refs/nomad/* in the local clone.
func (c *ShellClient) ListLocalNomadRefs(ctx context.Context) ([]nomadref.Ref, error) {
	out, err := c.run(ctx, "for-each-ref", "refs/nomad/", "--format=%(objectname) %(refname)")
	if err != nil {
		return nil, err
	}

	var refs []nomadref.Ref
	for _, line := range splitLines(out) {
		ref, perr := nomadref.ParseShowRefLine(line)
		if perr != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Push submits every addition and deletion as refspecs in a single atomic
// git push invocation. Pre-push hooks are suppressed with --no-verify so a
// nomad sync succeeds even when the working branch would fail pre-push
// validation. Every addition is pushed with a leading "+" so a rewritten
// branch tip replaces its previous publication.
func (c *ShellClient) Push(ctx context.Context, remote string, additions []RefUpdate, deletions []string) error {
	if len(additions) == 0 && len(deletions) == 0 {
		return nil
	}

	args := []string{"push", "--no-verify", remote}
	for _, a := range additions {
		args = append(args, "+"+a.Src+":"+a.Dst)
	}
	for _, d := range deletions {
		args = append(args, ":"+d)
	}

	cmd := c.command(ctx, args...)
	c.configureAuth(cmd, remote)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.Error); ok {
			return fmt.Errorf("%w: %s", ErrGitUnavailable, err)
		}
		msg := strings.TrimSpace(stderr.String())
		if isConnectionFailure(msg) {
			return fmt.Errorf("%w: %s", ErrRemoteUnavailable, msg)
		}
		return fmt.Errorf("%w: %s", ErrPushRejected, msg)
	}
	return nil
}

// Fetch runs a single refspec fetch with prune semantics so remote
// deletions propagate to the local mirror.
func (c *ShellClient) Fetch(ctx context.Context, remote, refspec string) error {
	cmd := c.command(ctx, "fetch", remote, refspec, "--prune")
	c.configureAuth(cmd, remote)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.Error); ok {
			return fmt.Errorf("%w: %s", ErrGitUnavailable, err)
		}
		return fmt.Errorf("%w: %s", ErrRemoteUnavailable, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// DeleteLocalRefs deletes each ref with update-ref -d, continuing past
// individual failures so one corrupt ref never blocks cleanup of the rest.
func (c *ShellClient) DeleteLocalRefs(ctx context.Context, refs []string) []DeleteResult {
	results := make([]DeleteResult, 0, len(refs))
	for _, ref := range refs {
		_, err := c.run(ctx, "update-ref", "-d", ref)
		results = append(results, DeleteResult{Ref: ref, Err: err})
	}
	return results
}

// ReadConfig reads a single key from the clone's own git config.
func (c *ShellClient) ReadConfig(ctx context.Context, key string) (string, bool, error) {
	out, err := c.run(ctx, "config", "--local", "--get", key)
	if err != nil {
		if exitErr, ok := errExitCode(err); ok && exitErr == 1 {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(out), true, nil
}

// WriteConfig persists a key in the clone's own git config.
func (c *ShellClient) WriteConfig(ctx context.Context, key, value string) error {
	_, err := c.run(ctx, "config", "--local", key, value)
	return err
}

// CurrentBranch returns the branch HEAD points at. ok is false when HEAD is
// detached (no error; this is a normal state, not a failure).
func (c *ShellClient) CurrentBranch(ctx context.Context) (string, bool, error) {
	out, err := c.run(ctx, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		if _, ok := errExitCode(err); ok {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(out), true, nil
}

// configureAuth injects SSH or HTTPS credentials for remote-touching
// commands, generalized from a checkout-only client's environment-variable
// injection technique.
func (c *ShellClient) configureAuth(cmd *exec.Cmd, remote string) {
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}

	if c.SSHKeyFile != "" && (strings.HasPrefix(remote, "git@") || strings.HasPrefix(remote, "ssh://")) {
		sshCmd := fmt.Sprintf("ssh -i %s -o StrictHostKeyChecking=accept-new -F /dev/null", shellQuote(c.SSHKeyFile))
		cmd.Env = append(cmd.Env, "GIT_SSH_COMMAND="+sshCmd)
		return
	}

	if c.HTTPSTokenFile != "" && strings.HasPrefix(remote, "https://") {
		token, err := os.ReadFile(c.HTTPSTokenFile)
		if err != nil {
			return
		}
		cmd.Env = append(cmd.Env, "GIT_TERMINAL_PROMPT=0")
		cmd.Env = append(cmd.Env, "GIT_NOMAD_TOKEN="+strings.TrimSpace(string(token)))
		cmd.Args = insertGitFlags(cmd.Args,
			"-c", `credential.helper=!f() { echo "username=x-access-token"; echo "password=$GIT_NOMAD_TOKEN"; }; f`,
		)
	}
}

// insertGitFlags inserts flags immediately after the "git" argv[0], before
// the subcommand (e.g. "push", "fetch").
func insertGitFlags(args []string, flags ...string) []string {
	if len(args) == 0 {
		return flags
	}
	result := make([]string, 0, len(args)+len(flags))
	result = append(result, args[0])
	result = append(result, flags...)
	result = append(result, args[1:]...)
	return result
}

// shellQuote wraps s in single quotes, escaping any embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func splitLines(s string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// errExitCode extracts the process exit code from an error produced by run,
// which wraps the underlying *exec.ExitError with %w.
func errExitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if asExitError(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

func asExitError(err error, target **exec.ExitError) bool {
	for err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			*target = ee
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// isConnectionFailure does a best-effort classification of push stderr to
// tell a network/auth failure (RemoteUnavailable) apart from a refspec
// rejection (PushRejected); git does not give a structured signal here.
func isConnectionFailure(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, marker := range []string{
		"could not resolve host",
		"could not read from remote repository",
		"connection refused",
		"connection timed out",
		"permission denied (publickey)",
		"authentication failed",
	} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
