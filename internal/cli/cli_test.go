package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moku/internal/config"
	"moku/internal/storage"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	st, err := storage.Open(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return Options{Store: st, Config: config.Default(), Version: "test"}
}

func run(t *testing.T, opts Options, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRoot(opts)
	if args == nil {
		// SetArgs(nil) makes cobra fall back to os.Args.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func TestAddThenList(t *testing.T) {
	opts := testOptions(t)

	out, err := run(t, opts, "add", "Buy milk", "-d", "2%")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Added task 1: Buy milk") {
		t.Fatalf("add output = %q", out)
	}

	out, err = run(t, opts, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "[ ] 1 Buy milk - 2%") {
		t.Fatalf("list output = %q", out)
	}
}

func TestListKeepsInsertionOrder(t *testing.T) {
	opts := testOptions(t)
	for _, title := range []string{"first", "second", "third"} {
		if _, err := run(t, opts, "add", title); err != nil {
			t.Fatalf("add %s: %v", title, err)
		}
	}

	out, err := run(t, opts, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	first := strings.Index(out, "first")
	second := strings.Index(out, "second")
	third := strings.Index(out, "third")
	if first < 0 || second < first || third < second {
		t.Fatalf("list order wrong:\n%s", out)
	}
}

func TestListEmpty(t *testing.T) {
	opts := testOptions(t)
	out, err := run(t, opts, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No tasks.") {
		t.Fatalf("list output = %q", out)
	}
}

func TestAddRejectsEmptyTitle(t *testing.T) {
	opts := testOptions(t)
	if _, err := run(t, opts, "add", "   "); err == nil {
		t.Fatal("expected error for blank title")
	}
	out, err := run(t, opts, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No tasks.") {
		t.Fatalf("rejected add should not create a task: %q", out)
	}
}

func TestAddRecoversFromCorruptFile(t *testing.T) {
	opts := testOptions(t)
	if err := os.WriteFile(opts.Store.Path(), []byte("][ nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, opts, "add", "fresh start"); err != nil {
		t.Fatalf("add over corrupt file: %v", err)
	}
	out, err := run(t, opts, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "fresh start") {
		t.Fatalf("list output = %q", out)
	}
}

func TestRootRunsEditor(t *testing.T) {
	opts := testOptions(t)
	called := false
	opts.RunEditor = func(st *storage.Store, cfg config.Config) error {
		called = true
		return nil
	}

	if _, err := run(t, opts); err != nil {
		t.Fatalf("root: %v", err)
	}
	if !called {
		t.Fatal("default invocation should start the editor")
	}
}

func TestVersion(t *testing.T) {
	opts := testOptions(t)
	out, err := run(t, opts, "--version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "test") {
		t.Fatalf("version output = %q", out)
	}
}
