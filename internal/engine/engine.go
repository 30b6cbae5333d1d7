// Package engine implements the three-way reconciliation operations that
// drive sync, ls, and purge: given a git invoker and a resolved identity, it
// decides what to push, fetch, and delete, and returns a report for the
// command surface to render. The engine never touches a terminal or a log
// writer directly; ParseFailure and LocalRefMutationFailed warnings are
// logged and also aggregated into the returned report's Warnings field so
// the command surface can surface them to the user.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/git-nomad/git-nomad/internal/gitcli"
	"github.com/git-nomad/git-nomad/internal/nomadref"
)

// Identity is the resolved (user, host, remote) triple every operation
// needs. It has no validation logic of its own; internal/config is
// responsible for producing a valid one.
type Identity struct {
	User   string
	Host   string
	Remote string
}

// Engine carries the git invoker and logger every operation is built from.
type Engine struct {
	Invoker gitcli.Invoker
	Logger  *slog.Logger
}

// New creates an Engine. A nil logger falls back to slog.Default().
func New(invoker gitcli.Invoker, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{Invoker: invoker, Logger: logger}
}

// SyncReport describes what a Sync call changed.
type SyncReport struct {
	Pushed   []gitcli.RefUpdate
	Deleted  []nomadref.NomadRef
	ByHost   []HostGroup
	Warnings []string
}

// Sync publishes every local branch under this host's namespace, removes
// this host's stale publications for branches that no longer exist locally,
// and mirrors the union of every host's published refs back into the
// clone's refs/nomad/* hierarchy.
func (e *Engine) Sync(ctx context.Context, id Identity) (*SyncReport, error) {
	local, err := e.Invoker.ListLocalBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing local branches: %w", err)
	}

	var additions []gitcli.RefUpdate
	for _, b := range local {
		additions = append(additions, gitcli.RefUpdate{
			Src: "refs/heads/" + b.Name,
			Dst: nomadref.RemoteRefName(id.User, id.Host, b.Name),
		})
	}

	remoteRefs, err := e.Invoker.ListRemoteNomadRefs(ctx, id.Remote, id.User)
	if err != nil {
		return nil, fmt.Errorf("listing remote nomad refs: %w", err)
	}

	all, warnings := e.parseRemoteRefs(id.User, remoteRefs)

	selfRefs := FilterByHosts(all, []string{id.Host})
	stale := PruneSelf(local, selfRefs)

	var deletions []string
	for _, ref := range stale {
		deletions = append(deletions, nomadref.RemoteRefName(ref.User, ref.Host, ref.Branch))
	}

	if err := e.Invoker.Push(ctx, id.Remote, additions, deletions); err != nil {
		return nil, fmt.Errorf("pushing nomad refs: %w", err)
	}

	if err := e.Invoker.Fetch(ctx, id.Remote, nomadref.FetchRefspec(id.User)); err != nil {
		return nil, fmt.Errorf("fetching nomad refs: %w", err)
	}

	converged, err := e.Invoker.ListRemoteNomadRefs(ctx, id.Remote, id.User)
	if err != nil {
		return nil, fmt.Errorf("re-listing remote nomad refs: %w", err)
	}
	convergedAll, convergedWarnings := e.parseRemoteRefs(id.User, converged)
	warnings = append(warnings, convergedWarnings...)

	return &SyncReport{
		Pushed:   additions,
		Deleted:  stale,
		ByHost:   GroupedByHost(convergedAll),
		Warnings: warnings,
	}, nil
}

// ListOptions filters what List reports.
type ListOptions struct {
	Fetch     bool
	Hosts     []string
	Branches  []string
	Head      bool
	PrintSelf bool
}

// ListReport is the set of published refs matching the requested filters.
type ListReport struct {
	ByHost   []HostGroup
	Warnings []string
}

// List reports every nomad-published ref visible to this clone, optionally
// refreshing the mirror first and filtering by host, branch, or the current
// HEAD branch. By default the current host's own refs are omitted;
// opts.PrintSelf keeps them.
func (e *Engine) List(ctx context.Context, id Identity, opts ListOptions) (*ListReport, error) {
	if opts.Fetch {
		if err := e.Invoker.Fetch(ctx, id.Remote, nomadref.FetchRefspec(id.User)); err != nil {
			return nil, fmt.Errorf("fetching nomad refs: %w", err)
		}
	}

	localRefs, err := e.Invoker.ListLocalNomadRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing local nomad refs: %w", err)
	}

	var refs []nomadref.NomadRef
	var warnings []string
	for _, ref := range localRefs {
		host, branch, ok := nomadref.ParseLocalRef(ref)
		if !ok {
			msg := fmt.Sprintf("skipping unparseable local nomad ref %q", ref.Name)
			e.Logger.Warn("skipping unparseable local nomad ref", "ref", ref.Name)
			warnings = append(warnings, msg)
			continue
		}
		refs = append(refs, nomadref.NomadRef{User: id.User, Host: host, Branch: branch, Commit: ref.CommitID})
	}

	if !opts.PrintSelf {
		refs = excludeHost(refs, id.Host)
	}

	refs = FilterByHosts(refs, opts.Hosts)
	refs = FilterByBranches(refs, opts.Branches)

	if opts.Head {
		current, ok, err := e.Invoker.CurrentBranch(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving current branch: %w", err)
		}
		if ok {
			refs = FilterByBranches(refs, []string{current})
		} else {
			refs = nil
		}
	}

	return &ListReport{ByHost: GroupedByHost(refs), Warnings: warnings}, nil
}

// excludeHost drops every ref published by host.
func excludeHost(refs []nomadref.NomadRef, host string) []nomadref.NomadRef {
	var kept []nomadref.NomadRef
	for _, ref := range refs {
		if ref.Host != host {
			kept = append(kept, ref)
		}
	}
	return kept
}

// PurgeOptions selects which published refs to remove. Exactly one of All
// or Hosts must be set; the command surface enforces this before calling
// Purge.
type PurgeOptions struct {
	All   bool
	Hosts []string
}

// PurgeReport is every (host, branch, priorCommit) triple that was removed.
type PurgeReport struct {
	Deleted  []nomadref.NomadRef
	Warnings []string
}

// Purge removes published refs from the remote first, then removes the
// corresponding local mirror refs, in that order so a failure part-way
// leaves the remote with fewer refs rather than more; a local mirror ref may
// then outlive its remote counterpart until the next fetch prunes it.
func (e *Engine) Purge(ctx context.Context, id Identity, opts PurgeOptions) (*PurgeReport, error) {
	if err := e.Invoker.Fetch(ctx, id.Remote, nomadref.FetchRefspec(id.User)); err != nil {
		return nil, fmt.Errorf("fetching nomad refs: %w", err)
	}

	remoteRefs, err := e.Invoker.ListRemoteNomadRefs(ctx, id.Remote, id.User)
	if err != nil {
		return nil, fmt.Errorf("listing remote nomad refs: %w", err)
	}
	all, warnings := e.parseRemoteRefs(id.User, remoteRefs)

	var target []nomadref.NomadRef
	if opts.All {
		target = all
	} else {
		target = FilterByHosts(all, opts.Hosts)
	}

	var deletions []string
	for _, ref := range target {
		deletions = append(deletions, nomadref.RemoteRefName(ref.User, ref.Host, ref.Branch))
	}

	if err := e.Invoker.Push(ctx, id.Remote, nil, deletions); err != nil {
		return nil, fmt.Errorf("pushing nomad ref deletions: %w", err)
	}

	var localDeletions []string
	if opts.All {
		localRefs, err := e.Invoker.ListLocalNomadRefs(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing local nomad refs: %w", err)
		}
		for _, ref := range localRefs {
			localDeletions = append(localDeletions, ref.Name)
		}
	} else {
		for _, ref := range target {
			localDeletions = append(localDeletions, nomadref.LocalRefName(ref.Host, ref.Branch))
		}
	}

	results := e.Invoker.DeleteLocalRefs(ctx, localDeletions)
	for _, res := range results {
		if res.Err != nil {
			msg := fmt.Sprintf("failed to delete local mirror ref %q: %s", res.Ref, res.Err)
			e.Logger.Warn("failed to delete local mirror ref", "ref", res.Ref, "error", res.Err)
			warnings = append(warnings, msg)
		}
	}

	return &PurgeReport{Deleted: target, Warnings: warnings}, nil
}

// parseRemoteRefs parses every raw ref, logging and skipping (rather than
// aborting) any that fail to parse so one corrupt ref never blocks the rest
// of an operation. Every failure is both logged and returned as a warning
// string for the caller's report.
func (e *Engine) parseRemoteRefs(user string, raw []nomadref.Ref) ([]nomadref.NomadRef, []string) {
	var refs []nomadref.NomadRef
	var warnings []string
	for _, r := range raw {
		parsed, err := nomadref.ParseRemoteRef(user, r)
		if err != nil {
			msg := fmt.Sprintf("skipping unparseable remote ref %q: %s", r.Name, err)
			e.Logger.Warn("skipping unparseable remote ref", "ref", r.Name, "error", err)
			warnings = append(warnings, msg)
			continue
		}
		refs = append(refs, parsed)
	}
	return refs, warnings
}
