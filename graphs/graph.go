// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package graphs

import (
	"sort"
	"strings"

	"github.com/artigraph/artigraph/artifacts"
	"github.com/artigraph/artigraph/backend"
	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/producers"
)

const (
	artifactPrefix = "artifact:"
	producerPrefix = "producer:"
)

// ArtifactNodeID returns the node identifier for the Artifact assigned at
// dottedPath.
func ArtifactNodeID(dottedPath string) string { return artifactPrefix + dottedPath }

// ProducerNodeID returns the node identifier for the Producer named name.
func ProducerNodeID(name string) string { return producerPrefix + name }

// ParseNodeID splits a node id back into its kind ("artifact" or
// "producer") and the dotted path/name it carries.
func ParseNodeID(id string) (kind, name string) {
	switch {
	case strings.HasPrefix(id, artifactPrefix):
		return "artifact", strings.TrimPrefix(id, artifactPrefix)
	case strings.HasPrefix(id, producerPrefix):
		return "producer", strings.TrimPrefix(id, producerPrefix)
	default:
		return "", ""
	}
}

// Graph is a sealed, immutable assembly of named Artifacts and the
// Producers that build them. Every derived query below is computed once at
// seal time; a Graph is never mutated after Build returns it.
type Graph struct {
	name     string
	backend  backend.Backend
	pathTags map[string]string

	artifactsByName map[string]artifacts.Artifact
	producers       map[string]*producers.Producer
	producerOutputs map[string][]artifacts.Artifact

	order []string
	deps  map[string][]string

	fp fingerprint.Fingerprint
}

// seal validates and freezes a Builder's accumulated assignments into a
// Graph: it derives the dependency edges (Artifact -> its Producer,
// Producer -> its declared inputs), runs toposort to rule out cycles, and
// memoizes every query a caller might run against the result.
func seal(b *Builder) (*Graph, error) {
	artifactsByName := map[string]artifacts.Artifact{}
	b.root.walk(nil, func(path string, a artifacts.Artifact) {
		artifactsByName[path] = a
	})

	var nodes []string
	deps := map[string][]string{}

	paths := make([]string, 0, len(artifactsByName))
	for path := range artifactsByName {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		a := artifactsByName[path]
		nid := ArtifactNodeID(path)
		nodes = append(nodes, nid)
		if a.ProducerOutput == nil {
			continue
		}
		p, ok := b.producers[a.ProducerOutput.ProducerName]
		if !ok {
			return nil, errs.New(errs.ResolutionErr,
				"graphs: artifact %q is produced by %q, which was never registered in this graph",
				path, a.ProducerOutput.ProducerName)
		}
		deps[nid] = append(deps[nid], ProducerNodeID(p.Name))
	}

	producerNames := make([]string, 0, len(b.producers))
	for name := range b.producers {
		producerNames = append(producerNames, name)
	}
	sort.Strings(producerNames)

	producerOutputs := map[string][]artifacts.Artifact{}
	for _, name := range producerNames {
		p := b.producers[name]
		pid := ProducerNodeID(name)
		nodes = append(nodes, pid)

		outs, ok := b.boundOutputs[p.Fingerprint()]
		if !ok {
			return nil, errs.New(errs.ResolutionErr, "graphs: producer %q has no bound outputs", name)
		}
		for i, out := range outs {
			if _, assigned := b.byFingerprint[out.Fingerprint()]; !assigned {
				return nil, errs.New(errs.ResolutionErr,
					"graphs: producer %q output %d was bound but never assigned a name in the graph", name, i)
			}
		}
		producerOutputs[name] = outs

		for _, in := range p.Inputs {
			path, ok := b.byFingerprint[in.Artifact.Fingerprint()]
			if !ok {
				return nil, errs.New(errs.ResolutionErr,
					"graphs: producer %q input %q does not reference any artifact assigned in this graph", name, in.Name)
			}
			deps[pid] = append(deps[pid], ArtifactNodeID(path))
		}
	}

	order, err := toposort(nodes, deps)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		name:            b.name,
		backend:         b.backend,
		pathTags:        b.pathTags,
		artifactsByName: artifactsByName,
		producers:       b.producers,
		producerOutputs: producerOutputs,
		order:           order,
		deps:            deps,
	}
	g.fp = g.computeFingerprint()
	return g, nil
}

func (g *Graph) computeFingerprint() fingerprint.Fingerprint {
	fps := []fingerprint.Fingerprint{fingerprint.FromString("graph:" + g.name)}
	for _, path := range g.sortedArtifactPaths() {
		a := g.artifactsByName[path]
		fps = append(fps, fingerprint.FromString("artifact-name:"+path), a.Fingerprint())
	}
	for _, name := range g.sortedProducerNames() {
		fps = append(fps, g.producers[name].Fingerprint())
	}
	return fingerprint.Combine(fps...)
}

func (g *Graph) sortedArtifactPaths() []string {
	paths := make([]string, 0, len(g.artifactsByName))
	for path := range g.artifactsByName {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (g *Graph) sortedProducerNames() []string {
	names := make([]string, 0, len(g.producers))
	for name := range g.producers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name returns the Graph's name.
func (g *Graph) Name() string { return g.name }

// Backend returns the Backend this Graph was built against.
func (g *Graph) Backend() backend.Backend { return g.backend }

// Fingerprint derives a content Fingerprint for the Graph's topology: its
// name, every assigned Artifact's name and identity, and every Producer's
// identity. This is distinct from a GraphSnapshot's id, which additionally
// folds in the actual content of raw partitions.
func (g *Graph) Fingerprint() fingerprint.Fingerprint { return g.fp }

// Order returns the Graph's nodes in a valid topological order (every node
// after everything it depends on).
func (g *Graph) Order() []string {
	return append([]string(nil), g.order...)
}

// Dependencies returns, for every node, the set of upstream node ids it
// depends on.
func (g *Graph) Dependencies() map[string][]string {
	out := make(map[string][]string, len(g.deps))
	for n, ds := range g.deps {
		out[n] = append([]string(nil), ds...)
	}
	return out
}

// Artifact returns the Artifact assigned at dottedPath.
func (g *Graph) Artifact(dottedPath string) (artifacts.Artifact, bool) {
	a, ok := g.artifactsByName[dottedPath]
	return a, ok
}

// Artifacts returns every assigned Artifact, keyed by its dotted path.
func (g *Graph) Artifacts() map[string]artifacts.Artifact {
	out := make(map[string]artifacts.Artifact, len(g.artifactsByName))
	for k, v := range g.artifactsByName {
		out[k] = v
	}
	return out
}

// Producer returns the named Producer, if registered in this graph.
func (g *Graph) Producer(name string) (*producers.Producer, bool) {
	p, ok := g.producers[name]
	return p, ok
}

// Producers returns every Producer registered in this graph, ordered by
// name.
func (g *Graph) Producers() []*producers.Producer {
	names := g.sortedProducerNames()
	out := make([]*producers.Producer, len(names))
	for i, name := range names {
		out[i] = g.producers[name]
	}
	return out
}

// ProducerOutputs returns the ordered output Artifacts bound to the named
// Producer.
func (g *Graph) ProducerOutputs(name string) ([]artifacts.Artifact, bool) {
	outs, ok := g.producerOutputs[name]
	return outs, ok
}
