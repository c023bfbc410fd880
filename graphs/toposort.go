// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package graphs

import (
	"sort"

	"github.com/artigraph/artigraph/errs"
)

// toposort orders nodes so that every node appears after every node it
// depends on (deps[n] lists n's upstream nodes), breaking ties
// lexicographically for a deterministic build order. Go's standard library
// has no graph package (unlike, say, Python's graphlib.TopologicalSorter),
// so this is a from-scratch Kahn's-algorithm implementation: repeatedly
// peel off nodes with no unresolved dependency, rather than walking
// depth-first and checking a visited/on-stack set.
func toposort(nodes []string, deps map[string][]string) ([]string, error) {
	inDegree := make(map[string]int, len(nodes))
	downstream := make(map[string][]string, len(nodes))
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		inDegree[n] = 0
		known[n] = true
	}
	for _, n := range nodes {
		for _, d := range deps[n] {
			if !known[d] {
				return nil, errs.New(errs.ResolutionErr, "graphs: %q depends on unknown node %q", n, d)
			}
			inDegree[n]++
			downstream[d] = append(downstream[d], n)
		}
	}

	var ready []string
	for _, n := range nodes {
		if inDegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		var freed []string
		for _, m := range downstream[n] {
			inDegree[m]--
			if inDegree[m] == 0 {
				freed = append(freed, m)
			}
		}
		if len(freed) == 0 {
			continue
		}
		sort.Strings(freed)
		ready = mergeSorted(ready, freed)
	}

	if len(order) != len(nodes) {
		return nil, errs.New(errs.ResolutionErr, "graphs: cycle detected among %d unresolved node(s)", len(nodes)-len(order))
	}
	return order, nil
}

// mergeSorted merges two already-sorted slices into one sorted slice.
func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
