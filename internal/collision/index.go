// SPDX-License-Identifier: MPL-2.0

package collision

import (
	"path/filepath"
	"slices"

	"github.com/torhovland/outguard/internal/filename"
	"github.com/torhovland/outguard/internal/unit"
)

type (
	// Index groups the candidates of one output context by final path.
	// Owners of a path keep the order in which they were added.
	Index struct {
		context filename.Context
		// paths tracks every path in first-seen order for deterministic output.
		paths  []string
		owners map[string][]filename.Candidate
	}

	// Group is a path in one context claimed by two or more distinct units.
	Group struct {
		Context filename.Context
		Path    string
		// Owners holds one candidate per distinct unit, in index order.
		Owners []filename.Candidate
	}

	// Pair is two owners of a colliding path. First sorts before Second by
	// (package name, package version, target kind, target name).
	Pair struct {
		Path   string
		First  filename.Candidate
		Second filename.Candidate
	}
)

// NewIndex builds an index over candidates, which should come from a stable
// traversal of the build plan (see unit.Sort).
func NewIndex(ctx filename.Context, candidates []filename.Candidate) *Index {
	ix := &Index{
		context: ctx,
		owners:  make(map[string][]filename.Candidate),
	}
	for _, c := range candidates {
		ix.Add(c)
	}
	return ix
}

// Add records c as an owner of its path. A unit that already owns the path,
// for example through a second crate-type that maps to the same file, is not
// added again.
func (ix *Index) Add(c filename.Candidate) {
	path := filepath.Clean(c.Path)
	existing, seen := ix.owners[path]
	if !seen {
		ix.paths = append(ix.paths, path)
	}
	key := c.Unit.Key()
	for _, o := range existing {
		if o.Unit.Key() == key {
			return
		}
	}
	ix.owners[path] = append(existing, c)
}

// Context returns the output context the index covers.
func (ix *Index) Context() filename.Context { return ix.context }

// Owners returns the owners recorded for path.
func (ix *Index) Owners(path string) []filename.Candidate {
	return slices.Clone(ix.owners[filepath.Clean(path)])
}

// Groups returns every path with at least two distinct owners, ordered by
// the first time each path was seen.
func (ix *Index) Groups() []Group {
	var groups []Group
	for _, path := range ix.paths {
		owners := ix.owners[path]
		if len(owners) < 2 {
			continue
		}
		groups = append(groups, Group{
			Context: ix.context,
			Path:    path,
			Owners:  slices.Clone(owners),
		})
	}
	return groups
}

// Pairs chains the owners of the group: owner[i] is paired with owner[i+1],
// so N owners yield N-1 pairs. Every owner shares the one path, so the chain
// surfaces the whole group without reporting every combination.
func (g Group) Pairs() []Pair {
	if len(g.Owners) < 2 {
		return nil
	}
	pairs := make([]Pair, 0, len(g.Owners)-1)
	for i := 0; i+1 < len(g.Owners); i++ {
		a, b := g.Owners[i], g.Owners[i+1]
		if unit.CompareOwners(a.Unit, b.Unit) > 0 {
			a, b = b, a
		}
		pairs = append(pairs, Pair{Path: g.Path, First: a, Second: b})
	}
	return pairs
}
