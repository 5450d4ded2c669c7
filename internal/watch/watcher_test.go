// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/torhovland/outguard/internal/testutil"
)

func TestNew_NoFiles(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); !errors.Is(err, ErrNoFiles) {
		t.Errorf("New() error = %v, want ErrNoFiles", err)
	}
}

func TestNew_ResolvesFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plan := filepath.Join(dir, "plan.cue")
	cfg := filepath.Join(dir, "config.cue")

	w, err := New(Config{Files: []string{plan, cfg, plan}, Logger: testutil.DiscardLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { w.fsw.Close() })

	want := []string{cfg, plan}
	if got := w.Files(); !slices.Equal(got, want) {
		t.Errorf("Files() = %v, want %v", got, want)
	}
	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope", "plan.cue")
	if _, err := New(Config{Files: []string{missing}, Logger: testutil.DiscardLogger()}); err == nil {
		t.Error("New() should fail when the parent directory does not exist")
	}
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plan := filepath.Join(dir, "plan.cue")
	w, err := New(Config{Files: []string{plan}, Logger: testutil.DiscardLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { w.fsw.Close() })

	tests := []struct {
		name string
		evt  fsnotify.Event
		want bool
	}{
		{name: "write", evt: fsnotify.Event{Name: plan, Op: fsnotify.Write}, want: true},
		{name: "create", evt: fsnotify.Event{Name: plan, Op: fsnotify.Create}, want: true},
		{name: "rename", evt: fsnotify.Event{Name: plan, Op: fsnotify.Rename}, want: true},
		{name: "remove", evt: fsnotify.Event{Name: plan, Op: fsnotify.Remove}, want: true},
		{name: "chmod only", evt: fsnotify.Event{Name: plan, Op: fsnotify.Chmod}, want: false},
		{name: "sibling file", evt: fsnotify.Event{Name: filepath.Join(dir, "other.cue"), Op: fsnotify.Write}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := w.relevant(tt.evt); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.evt, got, tt.want)
			}
		})
	}
}

func TestRun_FiresOnWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plan := filepath.Join(dir, "plan.cue")
	if err := os.WriteFile(plan, []byte("units: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changes := make(chan []string, 4)
	w, err := New(Config{
		Files:    []string{plan},
		Debounce: 20 * time.Millisecond,
		Logger:   testutil.DiscardLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			changes <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Sibling writes must not trigger the callback.
	if err := os.WriteFile(filepath.Join(dir, "other.cue"), []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(plan, []byte("units: [] // edited\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changes:
		if !slices.Equal(got, []string{plan}) {
			t.Errorf("changed = %v, want [%s]", got, plan)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestRun_Twice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Files: []string{filepath.Join(t.TempDir(), "plan.cue")}, Logger: testutil.DiscardLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if err := w.Run(ctx); err == nil {
		t.Error("second Run() should fail")
	}
}
