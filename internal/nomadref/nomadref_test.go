package nomadref

import "testing"

func TestRemoteAndLocalRefNames(t *testing.T) {
	if got, want := RemoteRefName("alice", "desktop", "idea"), "refs/nomad/alice/desktop/idea"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := LocalRefName("desktop", "idea"), "refs/nomad/desktop/idea"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFetchRefspec(t *testing.T) {
	got := FetchRefspec("alice")
	want := "+refs/nomad/alice/*:refs/nomad/*"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseRemoteRef(t *testing.T) {
	ref := Ref{CommitID: "abc123", Name: "refs/nomad/alice/desktop/idea"}
	got, err := ParseRemoteRef("alice", ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := NomadRef{User: "alice", Host: "desktop", Branch: "idea", Commit: "abc123"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseRemoteRefWithSlashesInBranch(t *testing.T) {
	ref := Ref{CommitID: "abc123", Name: "refs/nomad/alice/desktop/feature/x/y"}
	got, err := ParseRemoteRef("alice", ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Host != "desktop" || got.Branch != "feature/x/y" {
		t.Fatalf("got host=%q branch=%q", got.Host, got.Branch)
	}
}

func TestParseRemoteRefWrongUser(t *testing.T) {
	ref := Ref{CommitID: "abc123", Name: "refs/nomad/bob/desktop/idea"}
	if _, err := ParseRemoteRef("alice", ref); err == nil {
		t.Fatal("expected error for mismatched user prefix")
	}
}

func TestParseRemoteRefMissingBranch(t *testing.T) {
	ref := Ref{CommitID: "abc123", Name: "refs/nomad/alice/desktop"}
	if _, err := ParseRemoteRef("alice", ref); err == nil {
		t.Fatal("expected error for missing branch segment")
	}
}

func TestParseLocalRef(t *testing.T) {
	ref := Ref{CommitID: "abc123", Name: "refs/nomad/desktop/feature/x/y"}
	host, branch, ok := ParseLocalRef(ref)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if host != "desktop" || branch != "feature/x/y" {
		t.Fatalf("got host=%q branch=%q", host, branch)
	}
}

func TestParseLocalRefNotNomad(t *testing.T) {
	ref := Ref{CommitID: "abc123", Name: "refs/heads/master"}
	if _, _, ok := ParseLocalRef(ref); ok {
		t.Fatal("expected parse to fail for non-nomad ref")
	}
}
