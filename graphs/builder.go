// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package graphs implements Graph assembly, sealing, and snapshotting.
// The original implementation assigns Artifacts into a Graph through a
// nested-attribute DSL backed by a thread-local open-graph stack
// (`graph.artifacts.a.b.c = x`); Go has neither operator overloading on
// attribute assignment nor an idiomatic thread-local, so assembly is
// instead driven by an explicit Builder passed into a closure, with a
// simple mutex guarding the open/sealed transition in place of the
// thread-local stack.
package graphs

import (
	"strconv"
	"strings"
	"sync"

	"github.com/artigraph/artigraph/artifacts"
	"github.com/artigraph/artigraph/backend"
	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/formats"
	"github.com/artigraph/artigraph/producers"
	"github.com/artigraph/artigraph/storage"
	"github.com/artigraph/artigraph/types"
)

// Builder assembles one Graph. Only one goroutine may use a Builder at a
// time (enforced by mu, not by a global thread-local), and it becomes
// unusable once Build's closure returns — sealing is a one-way transition.
type Builder struct {
	mu       sync.Mutex
	name     string
	backend  backend.Backend
	pathTags map[string]string

	root *node

	// byFingerprint maps an assigned, fully-resolved Artifact's content
	// Fingerprint back to its dotted path, letting a Producer's declared
	// InputDecl (itself a copy of the exact resolved Artifact returned by a
	// prior Put/PutOut call) be traced back to the name it was assigned
	// under when the graph is sealed.
	byFingerprint map[fingerprint.Fingerprint]string

	// producers registers every Producer referenced by a bound output
	// that has been Put/PutOut into the graph, keyed by name.
	producers map[string]*producers.Producer
	// boundOutputs caches the result of calling Out on a Producer's
	// declared output templates, keyed by the Producer's own Fingerprint,
	// so PutOut can bind one position at a time without re-invoking Out.
	boundOutputs map[fingerprint.Fingerprint][]artifacts.Artifact

	sealed bool
}

// Option configures a Builder before its closure runs.
type Option func(*Builder)

// PathTags attaches graph-wide path tags substituted into any Storage
// path template referencing {path_tags}.
func PathTags(tags map[string]string) Option {
	return func(b *Builder) { b.pathTags = tags }
}

// Build opens a Builder named name, runs fn to assemble the graph, and
// seals the result. fn returning a non-nil error aborts the build; the
// Builder is unusable (every method returns a DefinitionError) once fn
// returns, whether it succeeded or not.
func Build(name string, be backend.Backend, fn func(b *Builder) error, opts ...Option) (*Graph, error) {
	if name == "" {
		return nil, errs.New(errs.DefinitionErr, "graphs: name is required")
	}
	if be == nil {
		return nil, errs.New(errs.DefinitionErr, "graphs: backend is required")
	}
	b := &Builder{
		name:          name,
		backend:       be,
		root:          newNode(),
		byFingerprint: map[fingerprint.Fingerprint]string{},
		producers:     map[string]*producers.Producer{},
		boundOutputs:  map[fingerprint.Fingerprint][]artifacts.Artifact{},
	}
	for _, opt := range opts {
		opt(b)
	}

	err := fn(b)
	b.mu.Lock()
	b.sealed = true
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return seal(b)
}

// Put assigns x at dottedPath: an artifacts.Artifact (copied as-is before
// path resolution), a *producers.Producer with exactly one declared output
// (multi-output Producers must use PutOut), or a scalar literal (int,
// int64, float64, string, bool), cast into a storage.Literal-backed
// Artifact the way the original implementation auto-casts Python
// int/str/float/bool into a literal Artifact. Put returns the Artifact as
// it was actually recorded in the graph, with {graph_name}/{names}/
// {path_tags} already substituted into its Storage.
func (b *Builder) Put(dottedPath string, x any) (artifacts.Artifact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sealed {
		return artifacts.Artifact{}, errs.New(errs.DefinitionErr, "graphs: builder for %q is sealed", b.name)
	}

	a, err := b.resolveValue(x)
	if err != nil {
		return artifacts.Artifact{}, err
	}
	return b.assignLocked(dottedPath, a)
}

// PutOut assigns the position'th declared output of producer p at
// dottedPath. Used to destructure a multi-output Producer, one call per
// output.
func (b *Builder) PutOut(dottedPath string, p *producers.Producer, position int) (artifacts.Artifact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sealed {
		return artifacts.Artifact{}, errs.New(errs.DefinitionErr, "graphs: builder for %q is sealed", b.name)
	}
	if p == nil {
		return artifacts.Artifact{}, errs.New(errs.DefinitionErr, "graphs: PutOut: producer is nil")
	}
	if position < 0 || position >= len(p.Outputs) {
		return artifacts.Artifact{}, errs.New(errs.DefinitionErr,
			"graphs: PutOut: producer %q has %d output(s), position %d out of range", p.Name, len(p.Outputs), position)
	}
	bound, err := b.bindProducerOutputs(p)
	if err != nil {
		return artifacts.Artifact{}, err
	}
	return b.assignLocked(dottedPath, bound[position])
}

func (b *Builder) resolveValue(x any) (artifacts.Artifact, error) {
	switch v := x.(type) {
	case artifacts.Artifact:
		return v, nil
	case *artifacts.Artifact:
		return *v, nil
	case *producers.Producer:
		if len(v.Outputs) != 1 {
			return artifacts.Artifact{}, errs.New(errs.ResolutionErr,
				"graphs: producer %q has %d outputs, use PutOut for each", v.Name, len(v.Outputs))
		}
		bound, err := b.bindProducerOutputs(v)
		if err != nil {
			return artifacts.Artifact{}, err
		}
		return bound[0], nil
	case int:
		return literalArtifact(types.NewInt64(), strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return literalArtifact(types.NewInt64(), strconv.FormatInt(v, 10)), nil
	case float64:
		return literalArtifact(types.NewFloat64(), strconv.FormatFloat(v, 'g', -1, 64)), nil
	case bool:
		return literalArtifact(types.NewBoolean(), strconv.FormatBool(v)), nil
	case string:
		return literalArtifact(types.NewString(), v), nil
	default:
		return artifacts.Artifact{}, errs.New(errs.DefinitionErr, "graphs: %T cannot be assigned into a graph", x)
	}
}

func literalArtifact(t types.Type, value string) artifacts.Artifact {
	return artifacts.Artifact{
		Type:    t,
		Format:  formats.NewJSON(),
		Storage: storage.NewLiteral(&value),
	}
}

// bindProducerOutputs binds p's declared output templates to itself (via
// Out) on first reference, caching the result so later Put/PutOut calls
// for other positions of the same Producer reuse the same bound Artifacts
// rather than re-binding (which Out rejects the second time).
func (b *Builder) bindProducerOutputs(p *producers.Producer) ([]artifacts.Artifact, error) {
	fp := p.Fingerprint()
	if bound, ok := b.boundOutputs[fp]; ok {
		return bound, nil
	}
	templates := make([]artifacts.Artifact, len(p.Outputs))
	for i, out := range p.Outputs {
		templates[i] = out.Template
	}
	bound, err := p.Out(templates...)
	if err != nil {
		return nil, err
	}
	b.producers[p.Name] = p
	b.boundOutputs[fp] = bound
	return bound, nil
}

func (b *Builder) assignLocked(dottedPath string, a artifacts.Artifact) (artifacts.Artifact, error) {
	parts := strings.Split(dottedPath, ".")

	resolved := a
	resolved.Storage = a.Storage.
		ResolveGraphName(b.name).
		ResolveNames(parts).
		ResolvePathTags(b.pathTags)

	if err := resolved.Validate(); err != nil {
		return artifacts.Artifact{}, err
	}

	fp := resolved.Fingerprint()
	if existing, ok := b.byFingerprint[fp]; ok {
		return artifacts.Artifact{}, errs.New(errs.ResolutionErr,
			"graphs: artifact is already assigned to %q, cannot also assign it to %q", existing, dottedPath)
	}

	if err := b.root.insert(parts, resolved); err != nil {
		return artifacts.Artifact{}, err
	}
	b.byFingerprint[fp] = dottedPath
	return resolved, nil
}
