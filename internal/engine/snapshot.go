package engine

import (
	"sort"

	"github.com/git-nomad/git-nomad/internal/gitcli"
	"github.com/git-nomad/git-nomad/internal/nomadref"
)

// branchSet builds a lookup set of local branch names.
func branchSet(branches []gitcli.LocalBranch) map[string]bool {
	set := make(map[string]bool, len(branches))
	for _, b := range branches {
		set[b.Name] = true
	}
	return set
}

// PruneSelf returns the remote refs (already filtered to this host) whose
// branch no longer exists among the local branches. These are the refs a
// sync deletes on the remote, in the same push that re-publishes the local
// branches: this host's own stale publications.
func PruneSelf(local []gitcli.LocalBranch, remoteSelf []nomadref.NomadRef) []nomadref.NomadRef {
	branches := branchSet(local)

	var stale []nomadref.NomadRef
	for _, ref := range remoteSelf {
		if !branches[ref.Branch] {
			stale = append(stale, ref)
		}
	}
	return stale
}

// PruneForeign returns the local mirror refs whose corresponding remote ref
// has disappeared. This is informational only: the mirror fetch's --prune
// clause already removes these, but the distinction documents why a sync or
// ls never needs to delete a foreign host's mirror ref directly.
func PruneForeign(localMirror []nomadref.NomadRef, remoteAll []nomadref.NomadRef) []nomadref.NomadRef {
	present := make(map[string]bool, len(remoteAll))
	for _, ref := range remoteAll {
		present[ref.Host+"/"+ref.Branch] = true
	}

	var orphaned []nomadref.NomadRef
	for _, ref := range localMirror {
		if !present[ref.Host+"/"+ref.Branch] {
			orphaned = append(orphaned, ref)
		}
	}
	return orphaned
}

// FilterByHosts returns the subset of refs whose Host is in hosts. An empty
// hosts list keeps every ref.
func FilterByHosts(refs []nomadref.NomadRef, hosts []string) []nomadref.NomadRef {
	if len(hosts) == 0 {
		return refs
	}
	want := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		want[h] = true
	}

	var filtered []nomadref.NomadRef
	for _, ref := range refs {
		if want[ref.Host] {
			filtered = append(filtered, ref)
		}
	}
	return filtered
}

// FilterByBranches returns the subset of refs whose Branch is in branches.
// An empty branches list keeps every ref.
func FilterByBranches(refs []nomadref.NomadRef, branches []string) []nomadref.NomadRef {
	if len(branches) == 0 {
		return refs
	}
	want := make(map[string]bool, len(branches))
	for _, b := range branches {
		want[b] = true
	}

	var filtered []nomadref.NomadRef
	for _, ref := range refs {
		if want[ref.Branch] {
			filtered = append(filtered, ref)
		}
	}
	return filtered
}

// HostGroup is every nomad ref published by one host, used to render ls and
// sync reports grouped and sorted for stable output.
type HostGroup struct {
	Host string
	Refs []nomadref.NomadRef
}

// GroupedByHost groups refs by host and sorts both the hosts and each
// host's branches lexicographically, so command output is stable across
// runs regardless of git's or the remote's own ordering.
func GroupedByHost(refs []nomadref.NomadRef) []HostGroup {
	byHost := make(map[string][]nomadref.NomadRef)
	for _, ref := range refs {
		byHost[ref.Host] = append(byHost[ref.Host], ref)
	}

	hosts := make([]string, 0, len(byHost))
	for host := range byHost {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	groups := make([]HostGroup, 0, len(hosts))
	for _, host := range hosts {
		refs := byHost[host]
		sort.Slice(refs, func(i, j int) bool { return refs[i].Branch < refs[j].Branch })
		groups = append(groups, HostGroup{Host: host, Refs: refs})
	}
	return groups
}
