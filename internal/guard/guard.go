// SPDX-License-Identifier: MPL-2.0

// Package guard serializes writers of output paths that more than one
// compilation unit claims. Units whose outputs are not contended never wait.
package guard

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/torhovland/outguard/internal/collision"
	"github.com/torhovland/outguard/internal/filename"
)

// Guard is a cooperative lock keyed by normalized output path. Only paths
// passed to New are locked; Acquire ignores everything else.
type Guard struct {
	contended map[string]struct{}

	mu sync.Mutex
	// held maps a locked path to a channel that is closed on release.
	held map[string]<-chan struct{}
}

// PathsRequiringSerialization returns the cleaned, sorted set of paths the
// report found to be shared by two or more units.
func PathsRequiringSerialization(r collision.Report) []string {
	return normalize(r.Paths())
}

// New creates a guard for the given contended paths.
func New(paths []string) *Guard {
	g := &Guard{
		contended: make(map[string]struct{}, len(paths)),
		held:      make(map[string]<-chan struct{}),
	}
	for _, p := range paths {
		g.contended[filepath.Clean(p)] = struct{}{}
	}
	return g
}

// ForReport creates a guard for the paths flagged by r.
func ForReport(r collision.Report) *Guard {
	return New(PathsRequiringSerialization(r))
}

// Contended reports whether path requires serialization.
func (g *Guard) Contended(path string) bool {
	_, ok := g.contended[filepath.Clean(path)]
	return ok
}

// Paths returns the contended paths in sorted order.
func (g *Guard) Paths() []string {
	out := make([]string, 0, len(g.contended))
	for p := range g.contended {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// PathsFor returns the contended paths among a unit's candidates, sorted and
// without duplicates.
func (g *Guard) PathsFor(candidates []filename.Candidate) []string {
	var out []string
	for _, c := range candidates {
		if g.Contended(c.Path) {
			out = append(out, filepath.Clean(c.Path))
		}
	}
	return normalize(out)
}

// Acquire blocks until every contended path in paths is held by the caller,
// or ctx is done. Paths are locked in sorted order so two units claiming the
// same pair of paths cannot deadlock. The returned release function unlocks
// everything and may be called more than once.
func (g *Guard) Acquire(ctx context.Context, paths ...string) (release func(), err error) {
	var wanted []string
	for _, p := range paths {
		if g.Contended(p) {
			wanted = append(wanted, p)
		}
	}
	wanted = normalize(wanted)

	unlocks := make([]func(), 0, len(wanted))
	releaseAll := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, p := range wanted {
		unlock, err := g.lock(ctx, p)
		if err != nil {
			releaseAll()
			return nil, fmt.Errorf("acquire output path %s: %w", p, err)
		}
		unlocks = append(unlocks, unlock)
	}

	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}

// lock waits until it can either acquire the mutex for path or ctx is done.
func (g *Guard) lock(ctx context.Context, path string) (func(), error) {
	for {
		g.mu.Lock()
		done := g.held[path]
		if done == nil {
			c := make(chan struct{})
			g.held[path] = c
			g.mu.Unlock()
			return func() {
				g.mu.Lock()
				delete(g.held, path)
				close(c)
				g.mu.Unlock()
			}, nil
		}
		g.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func normalize(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filepath.Clean(p))
	}
	slices.Sort(out)
	return slices.Compact(out)
}
