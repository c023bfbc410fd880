// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package graphs

import (
	"sort"
	"strings"

	"github.com/artigraph/artigraph/artifacts"
	"github.com/artigraph/artigraph/errs"
)

// node is one level of the ArtifactNamespace trie a Builder assembles as
// dotted paths are assigned. A node is either a container (non-nil
// children, nil leaf) or a leaf holding one assigned Artifact; it is never
// both, mirroring the original implementation's restriction that a name
// cannot simultaneously be a namespace and a value.
type node struct {
	children map[string]*node
	leaf     *artifacts.Artifact
}

func newNode() *node {
	return &node{children: map[string]*node{}}
}

// insert assigns a at the dotted path named by parts, creating intermediate
// container nodes as needed.
func (n *node) insert(parts []string, a artifacts.Artifact) error {
	if len(parts) == 0 {
		return errs.New(errs.DefinitionErr, "graphs: empty artifact path")
	}
	cur := n
	for i, part := range parts {
		if part == "" {
			return errs.New(errs.DefinitionErr, "graphs: empty path component in %q", strings.Join(parts, "."))
		}
		child, ok := cur.children[part]
		if !ok {
			child = newNode()
			cur.children[part] = child
		}
		last := i == len(parts)-1
		if last {
			if child.leaf != nil {
				return errs.New(errs.DefinitionErr, "graphs: %q is already assigned", strings.Join(parts, "."))
			}
			if len(child.children) > 0 {
				return errs.New(errs.DefinitionErr, "graphs: %q is a namespace, not an artifact", strings.Join(parts, "."))
			}
			leaf := a
			child.leaf = &leaf
			return nil
		}
		if child.leaf != nil {
			return errs.New(errs.DefinitionErr, "graphs: %q already holds an artifact, cannot nest under it", strings.Join(parts[:i+1], "."))
		}
		cur = child
	}
	return nil
}

// walk visits every leaf in the trie in lexicographic path order, calling
// fn with the leaf's dotted path and Artifact.
func (n *node) walk(prefix []string, fn func(path string, a artifacts.Artifact)) {
	if n.leaf != nil {
		fn(strings.Join(prefix, "."), *n.leaf)
		return
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n.children[name].walk(append(prefix, name), fn)
	}
}
