package main

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	apperrors "tally/internal/platform/errors"
)

func run(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--home", home, "--tz", "UTC"))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, home string, args ...string) string {
	t.Helper()
	out, err := run(t, home, args...)
	if err != nil {
		t.Fatalf("tally %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

var createdID = regexp.MustCompile(`\(([^)]+)\)`)

func TestSessionLifecycleAcrossInvocations(t *testing.T) {
	home := t.TempDir()

	out := mustRun(t, home, "activity", "add", "Reading", "--color", "#89b4fa")
	m := createdID.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no activity id in %q", out)
	}
	activityID := m[1]

	mustRun(t, home, "session", "start", activityID, "--location", "desk")
	if _, err := run(t, home, "session", "start", activityID); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("second start err = %v, want ErrActiveSessionExists", err)
	}

	out = mustRun(t, home, "session", "pause")
	if !strings.HasPrefix(out, "paused: Reading") {
		t.Fatalf("pause output %q", out)
	}
	mustRun(t, home, "session", "resume")
	mustRun(t, home, "session", "end")

	mustRun(t, home, "session", "draft", "notes", "chapter three")
	out = mustRun(t, home, "session", "draft")
	if !strings.Contains(out, "notes: chapter three") {
		t.Fatalf("draft output %q", out)
	}

	out = mustRun(t, home, "session", "save", "--mood", "4")
	if !strings.HasPrefix(out, "session saved: ") {
		t.Fatalf("save output %q", out)
	}
	if _, err := run(t, home, "session", "status"); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("status after save err = %v, want ErrNoActiveSession", err)
	}

	out = mustRun(t, home, "session", "list")
	if !strings.Contains(out, "Reading") {
		t.Fatalf("list output %q", out)
	}
	out = mustRun(t, home, "stats", "day")
	if !strings.Contains(out, "Reading") {
		t.Fatalf("stats day output %q", out)
	}
}

func TestInvalidTimezoneIsRejected(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"activity", "list", "--home", t.TempDir(), "--tz", "Mars/Olympus"})
	if err := root.ExecuteContext(context.Background()); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
