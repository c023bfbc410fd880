// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package graphs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artigraph/artigraph/errs"
)

// TestToposortRejectsCycle checks that a three-node cycle (a -> b -> c -> a)
// is rejected rather than silently dropped or hung on. The
// Builder's namespace trie and byFingerprint bookkeeping make a cycle
// unreachable through the public Put/PutOut API (an input must already
// be an assigned Artifact before a Producer referencing it can itself be
// assigned), so this exercises toposort directly.
func TestToposortRejectsCycle(t *testing.T) {
	nodes := []string{"a", "b", "c"}
	deps := map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	}
	_, err := toposort(nodes, deps)
	require.Error(t, err)
	assert.True(t, errs.IsResolution(err))
}

func TestToposortOrdersAcyclicGraphDeterministically(t *testing.T) {
	nodes := []string{"d", "c", "b", "a"}
	deps := map[string][]string{
		"b": {"a"},
		"c": {"a"},
		"d": {"b", "c"},
	}
	order1, err := toposort(nodes, deps)
	require.NoError(t, err)
	order2, err := toposort(nodes, deps)
	require.NoError(t, err)
	assert.Equal(t, order1, order2)
	assert.Equal(t, []string{"a", "b", "c", "d"}, order1)
}

func TestToposortRejectsUnknownDependency(t *testing.T) {
	nodes := []string{"a"}
	deps := map[string][]string{"a": {"ghost"}}
	_, err := toposort(nodes, deps)
	require.Error(t, err)
	assert.True(t, errs.IsResolution(err))
}
