// SPDX-License-Identifier: MPL-2.0

// Package dag orders compilation units by their dependencies. Units in the
// same level have no dependencies on each other and may compile in parallel.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError is returned by Levels when some units can never become
	// ready.
	CycleError struct {
		// Cycle lists, in insertion order, every unit on a cycle plus the
		// units that depend on one.
		Cycle []string
	}

	// UnknownNodeError is returned when an edge refers to a node that was
	// never added.
	UnknownNodeError struct {
		From string
		To   string
	}

	// Graph is a directed graph of unit keys. An edge from A to B means A must
	// be built before B.
	Graph struct {
		// order is the insertion order, which every result follows.
		order []string
		// position maps a key to its index in order.
		position map[string]int
		// dependents maps a node index to the indices that wait for it.
		dependents map[int][]int
	}
)

func (e *CycleError) Error() string {
	return "dependency cycle detected: " + strings.Join(e.Cycle, " -> ")
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("dependency edge %q -> %q refers to an unknown unit", e.From, e.To)
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		position:   make(map[string]int),
		dependents: make(map[int][]int),
	}
}

// AddNode registers key. Adding a key twice keeps its first position.
func (g *Graph) AddNode(key string) {
	if _, ok := g.position[key]; ok {
		return
	}
	g.position[key] = len(g.order)
	g.order = append(g.order, key)
}

// AddEdge records that from must be built before to. Both nodes must have
// been added already; duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) error {
	src, okFrom := g.position[from]
	dst, okTo := g.position[to]
	if !okFrom || !okTo {
		return &UnknownNodeError{From: from, To: to}
	}
	if !slices.Contains(g.dependents[src], dst) {
		g.dependents[src] = append(g.dependents[src], dst)
	}
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Levels groups the nodes into waves: every node in level i depends only on
// nodes in earlier levels, and nodes within a level keep insertion order.
// Returns a *CycleError when some nodes can never be placed.
func (g *Graph) Levels() ([][]string, error) {
	if len(g.order) == 0 {
		return nil, nil
	}

	// waiting[i] counts the unplaced dependencies of node i.
	waiting := make([]int, len(g.order))
	for _, deps := range g.dependents {
		for _, d := range deps {
			waiting[d]++
		}
	}

	ready := make([]bool, len(g.order))
	for i, n := range waiting {
		ready[i] = n == 0
	}

	var levels [][]string
	placed := 0
	for {
		var level []string
		var released []int
		for i, key := range g.order {
			if !ready[i] {
				continue
			}
			ready[i] = false
			waiting[i] = -1
			level = append(level, key)
			released = append(released, i)
		}
		if len(level) == 0 {
			break
		}
		levels = append(levels, level)
		placed += len(level)

		for _, i := range released {
			for _, d := range g.dependents[i] {
				waiting[d]--
				if waiting[d] == 0 {
					ready[d] = true
				}
			}
		}
	}

	if placed != len(g.order) {
		var stuck []string
		for i, key := range g.order {
			if waiting[i] > 0 {
				stuck = append(stuck, key)
			}
		}
		return nil, &CycleError{Cycle: stuck}
	}
	return levels, nil
}

// TopologicalSort returns the nodes of Levels flattened into one order.
func (g *Graph) TopologicalSort() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	return slices.Concat(levels...), nil
}
