// Package config resolves the (user, host, remote) identity every nomad
// operation needs, merging explicit flags, environment variables, and
// persisted git config in that priority order, falling back to OS defaults
// only when nothing else supplies a value.
package config

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/git-nomad/git-nomad/internal/engine"
	"github.com/git-nomad/git-nomad/internal/gitcli"
)

// Flags carries whatever the command line explicitly set. An empty string
// means "not set on the command line".
type Flags struct {
	User   string
	Host   string
	Remote string
}

// Environ is the subset of the process environment config resolution
// reads. Exposed as a struct (rather than reading os.Getenv directly) so
// tests can supply a fake environment without mutating process state.
type Environ struct {
	User   string
	Host   string
	Remote string
}

// EnvironFromOS reads GIT_NOMAD_USER, GIT_NOMAD_HOST, and GIT_NOMAD_REMOTE
// from the process environment.
func EnvironFromOS() Environ {
	return Environ{
		User:   os.Getenv("GIT_NOMAD_USER"),
		Host:   os.Getenv("GIT_NOMAD_HOST"),
		Remote: os.Getenv("GIT_NOMAD_REMOTE"),
	}
}

const (
	configKeyUser   = "nomad.user"
	configKeyHost   = "nomad.host"
	configKeyRemote = "nomad.remote"

	defaultRemote = "origin"
)

// Resolve merges flags, environment, persisted git config, and OS defaults
// into a validated engine.Identity. Resolution order per field, first
// non-empty wins: flag, then environment variable, then git config, then OS
// default. Validation runs before any further invoker call is made.
func Resolve(ctx context.Context, flags Flags, env Environ, git gitcli.Invoker) (engine.Identity, error) {
	user, err := resolveField(ctx, flags.User, env.User, configKeyUser, git, defaultUser)
	if err != nil {
		return engine.Identity{}, err
	}
	host, err := resolveField(ctx, flags.Host, env.Host, configKeyHost, git, defaultHost)
	if err != nil {
		return engine.Identity{}, err
	}
	remote, err := resolveField(ctx, flags.Remote, env.Remote, configKeyRemote, git, func() (string, error) {
		return defaultRemote, nil
	})
	if err != nil {
		return engine.Identity{}, err
	}

	id := engine.Identity{User: user, Host: host, Remote: remote}
	if err := Validate(id); err != nil {
		return engine.Identity{}, err
	}
	return id, nil
}

// resolveField applies the flag > env > git-config > default precedence for
// a single field.
func resolveField(ctx context.Context, flag, env, key string, git gitcli.Invoker, fallback func() (string, error)) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env != "" {
		return env, nil
	}
	if value, ok, err := git.ReadConfig(ctx, key); err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	} else if ok && value != "" {
		return value, nil
	}
	return fallback()
}

// defaultUser derives a username from the OS account, matching the Unix
// login name rather than any display name.
func defaultUser() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("%w: determining current OS user: %s", ErrConfigInvalid, err)
	}
	return u.Username, nil
}

// defaultHost derives a hostname from the OS, matching uname -n.
func defaultHost() (string, error) {
	h, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("%w: determining hostname: %s", ErrConfigInvalid, err)
	}
	return h, nil
}

// ErrConfigInvalid is returned when resolved identity fields are empty or
// otherwise structurally invalid. It is never logged-and-continued: an
// invalid identity aborts the command before any git operation runs.
var ErrConfigInvalid = fmt.Errorf("invalid configuration")

// Validate rejects empty user/host/remote and any '/' in user or host,
// since both values are embedded as literal ref path segments.
func Validate(id engine.Identity) error {
	if id.User == "" {
		return fmt.Errorf("%w: user is empty", ErrConfigInvalid)
	}
	if id.Host == "" {
		return fmt.Errorf("%w: host is empty", ErrConfigInvalid)
	}
	if id.Remote == "" {
		return fmt.Errorf("%w: remote is empty", ErrConfigInvalid)
	}
	if strings.Contains(id.User, "/") {
		return fmt.Errorf("%w: user %q contains '/'", ErrConfigInvalid, id.User)
	}
	if strings.Contains(id.Host, "/") {
		return fmt.Errorf("%w: host %q contains '/'", ErrConfigInvalid, id.Host)
	}
	return nil
}

// Init persists user, host, and remote into the clone's local git config so
// later invocations don't need to repeat flags. It refuses to overwrite an
// existing value unless force is set.
func Init(ctx context.Context, git gitcli.Invoker, id engine.Identity, force bool) error {
	if err := Validate(id); err != nil {
		return err
	}

	fields := []struct {
		key   string
		value string
	}{
		{configKeyUser, id.User},
		{configKeyHost, id.Host},
		{configKeyRemote, id.Remote},
	}

	for _, f := range fields {
		if !force {
			if existing, ok, err := git.ReadConfig(ctx, f.key); err != nil {
				return fmt.Errorf("reading %s: %w", f.key, err)
			} else if ok && existing != "" {
				continue
			}
		}
		if err := git.WriteConfig(ctx, f.key, f.value); err != nil {
			return fmt.Errorf("writing %s: %w", f.key, err)
		}
	}
	return nil
}
