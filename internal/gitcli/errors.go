package gitcli

import "errors"

// Sentinel errors wrapped into the errors ShellClient returns, so callers
// can tell the kinds apart with errors.Is (ConfigInvalid is handled
// entirely in internal/config). The nomad command exits with status 1 on
// any error, whatever its kind.
var (
	// ErrGitUnavailable means the git binary could not be invoked at all.
	ErrGitUnavailable = errors.New("git binary unavailable")

	// ErrRemoteUnavailable means the remote refused the connection or
	// authentication failed. Distinct from "remote reachable, no refs".
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrPushRejected means the remote rejected one or more refspecs
	// (e.g. permission denied, non-fast-forward on a protected ref).
	ErrPushRejected = errors.New("push rejected")
)
