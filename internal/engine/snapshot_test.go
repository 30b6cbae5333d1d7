package engine

import (
	"reflect"
	"testing"

	"github.com/git-nomad/git-nomad/internal/gitcli"
	"github.com/git-nomad/git-nomad/internal/nomadref"
)

func TestPruneSelfDropsDeletedLocalBranches(t *testing.T) {
	local := []gitcli.LocalBranch{{Name: "main", Commit: "c1"}}
	remoteSelf := []nomadref.NomadRef{
		{User: "alice", Host: "desktop", Branch: "main", Commit: "c1"},
		{User: "alice", Host: "desktop", Branch: "gone", Commit: "c2"},
	}

	got := PruneSelf(local, remoteSelf)
	if len(got) != 1 || got[0].Branch != "gone" {
		t.Fatalf("got %+v", got)
	}
}

func TestPruneSelfKeepsAllWhenBranchesStillExist(t *testing.T) {
	local := []gitcli.LocalBranch{
		{Name: "main", Commit: "c1"},
		{Name: "feature", Commit: "c2"},
	}
	remoteSelf := []nomadref.NomadRef{
		{User: "alice", Host: "desktop", Branch: "main", Commit: "c1"},
		{User: "alice", Host: "desktop", Branch: "feature", Commit: "c2"},
	}

	got := PruneSelf(local, remoteSelf)
	if len(got) != 0 {
		t.Fatalf("got %+v, want none pruned", got)
	}
}

func TestPruneForeignDropsRefsWithNoRemoteCounterpart(t *testing.T) {
	localMirror := []nomadref.NomadRef{
		{Host: "laptop", Branch: "refs/heads/main", Commit: "c1"},
		{Host: "laptop", Branch: "refs/heads/stale", Commit: "c2"},
	}
	remoteAll := []nomadref.NomadRef{
		{Host: "laptop", Branch: "refs/heads/main", Commit: "c1"},
	}

	got := PruneForeign(localMirror, remoteAll)
	if len(got) != 1 || got[0].Branch != "refs/heads/stale" {
		t.Fatalf("got %+v", got)
	}
}

func TestPruneForeignEmptyWhenFullyPresent(t *testing.T) {
	localMirror := []nomadref.NomadRef{{Host: "laptop", Branch: "refs/heads/main", Commit: "c1"}}
	remoteAll := []nomadref.NomadRef{{Host: "laptop", Branch: "refs/heads/main", Commit: "c1"}}

	got := PruneForeign(localMirror, remoteAll)
	if len(got) != 0 {
		t.Fatalf("got %+v, want none", got)
	}
}

func TestFilterByHostsEmptyMeansAll(t *testing.T) {
	refs := []nomadref.NomadRef{{Host: "a"}, {Host: "b"}}
	got := FilterByHosts(refs, nil)
	if !reflect.DeepEqual(got, refs) {
		t.Fatalf("got %+v, want %+v", got, refs)
	}
}

func TestFilterByHosts(t *testing.T) {
	refs := []nomadref.NomadRef{{Host: "a", Branch: "x"}, {Host: "b", Branch: "y"}}
	got := FilterByHosts(refs, []string{"b"})
	if len(got) != 1 || got[0].Host != "b" {
		t.Fatalf("got %+v", got)
	}
}

func TestFilterByBranches(t *testing.T) {
	refs := []nomadref.NomadRef{{Host: "a", Branch: "x"}, {Host: "a", Branch: "y"}}
	got := FilterByBranches(refs, []string{"y"})
	if len(got) != 1 || got[0].Branch != "y" {
		t.Fatalf("got %+v", got)
	}
}

func TestGroupedByHostSortsHostsAndBranches(t *testing.T) {
	refs := []nomadref.NomadRef{
		{Host: "laptop", Branch: "zeta", Commit: "c1"},
		{Host: "desktop", Branch: "beta", Commit: "c2"},
		{Host: "laptop", Branch: "alpha", Commit: "c3"},
	}

	groups := GroupedByHost(refs)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Host != "desktop" || groups[1].Host != "laptop" {
		t.Fatalf("hosts not sorted: %+v", groups)
	}
	if groups[1].Refs[0].Branch != "alpha" || groups[1].Refs[1].Branch != "zeta" {
		t.Fatalf("branches not sorted: %+v", groups[1].Refs)
	}
}

func TestGroupedByHostEmpty(t *testing.T) {
	groups := GroupedByHost(nil)
	if len(groups) != 0 {
		t.Fatalf("got %+v, want empty", groups)
	}
}
