package inspector

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rhelmot/objectively/object"
)

var installOnce sync.Once

func setup(t *testing.T) {
	t.Helper()
	installOnce.Do(func() {
		if object.RootGroup == nil {
			object.NewRootGroup(1<<30, 0)
		}
	})
}

func TestDispatchHelp(t *testing.T) {
	var buf bytes.Buffer
	if err := dispatch(&buf, "help"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "threads") {
		t.Fatalf("expected help text to mention the threads command, got %q", buf.String())
	}
}

func TestDispatchQuit(t *testing.T) {
	var buf bytes.Buffer
	if err := dispatch(&buf, "quit"); err != errQuit {
		t.Fatalf("expected errQuit, got %v", err)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	var buf bytes.Buffer
	if err := dispatch(&buf, "frobnicate"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "unknown command") {
		t.Fatalf("expected an unknown-command message, got %q", buf.String())
	}
}

func TestDispatchGroupsListsRootGroup(t *testing.T) {
	setup(t)
	var buf bytes.Buffer
	if err := dispatch(&buf, "groups"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "root") {
		t.Fatalf("expected the root group to be listed, got %q", buf.String())
	}
}

func TestDispatchThreadsWithNoneTracked(t *testing.T) {
	var buf bytes.Buffer
	if err := dispatch(&buf, "threads"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "no threads tracked") {
		t.Fatalf("expected an empty-threads message, got %q", buf.String())
	}
}

func TestHashAndVerifyPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	if !verifyPassword("correct horse battery staple", hash) {
		t.Fatal("expected the original password to verify against its own hash")
	}
	if verifyPassword("wrong password", hash) {
		t.Fatal("expected a wrong password to fail verification")
	}
}
