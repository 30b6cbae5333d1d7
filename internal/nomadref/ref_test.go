package nomadref

import "testing"

func TestParseShowRefLine(t *testing.T) {
	got, err := ParseShowRefLine("commit_id refs/heads/master")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Ref{CommitID: "commit_id", Name: "refs/heads/master"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseShowRefLineErrors(t *testing.T) {
	cases := []struct {
		name string
		line string
		kind ParseErrorKind
	}{
		{"empty", "", ErrMissingName},
		{"missing commit, no sep", "refs/heads/master", ErrMissingCommit},
		{"missing commit, leading sep", " refs/heads/master", ErrMissingCommit},
		{"too many parts", "extra commit_id refs/heads/master", ErrTooManyParts},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseShowRefLine(tc.line)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			perr, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Kind != tc.kind {
				t.Fatalf("got kind %v, want %v", perr.Kind, tc.kind)
			}
			if perr.Error() == "" {
				t.Fatal("expected non-empty error message")
			}
		})
	}
}

func TestParseLsRemoteLine(t *testing.T) {
	got, err := ParseLsRemoteLine("abc123\trefs/nomad/alice/desktop/idea")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Ref{CommitID: "abc123", Name: "refs/nomad/alice/desktop/idea"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseErrorMessageContainsLine(t *testing.T) {
	_, err := ParseShowRefLine("")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got == "" {
		t.Fatal("expected non-empty message")
	}
}
