// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package producers implements Producer, a task that builds one or more
// Artifacts. The original implementation derives a Producer's input/output
// signature from Python class introspection (`__init_subclass__` walking
// the build/map method signatures); Go has no equivalent runtime
// introspection, so a Producer is assembled by an explicit builder
// (producers.New plus functional options) that runs the same validations
// at construction time instead.
package producers

import (
	"context"
	"reflect"

	"github.com/artigraph/artigraph/artifacts"
	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/partitions"
	"github.com/artigraph/artigraph/storage"
	"github.com/artigraph/artigraph/types"
	"github.com/artigraph/artigraph/versions"
	"github.com/artigraph/artigraph/views"
)

// InputDecl is one named input Artifact a Producer's build/map functions
// consume.
type InputDecl struct {
	Name     string
	Artifact artifacts.Artifact
	View     views.View
}

// OutputDecl is a template describing one output Artifact's expected
// Type/Format/Storage, checked against the Artifacts later passed to
// Producer.Out.
type OutputDecl struct {
	Template artifacts.Artifact
	View     views.View
}

// BuildInputs maps each declared input name to the in-memory value
// (already read through its View) the build function should consume.
type BuildInputs map[string]any

// BuildOutputs holds one positional value per declared output, in the
// order the outputs were declared.
type BuildOutputs []any

// BuildFunc computes this Producer's outputs from its inputs.
type BuildFunc func(ctx context.Context, in BuildInputs) (BuildOutputs, error)

// InputPartitions maps each declared input name to the StoragePartitions
// currently discovered for it.
type InputPartitions map[string][]storage.StoragePartition

// Dependency pairs one output CompositeKey with the InputPartitions that
// feed it.
type Dependency struct {
	Key    partitions.CompositeKey
	Inputs InputPartitions
}

// PartitionDependencies is the full input/output partition dependency
// mapping a Producer's Map function returns: one Dependency per output
// partition.
type PartitionDependencies []Dependency

// MapFunc computes, for every output partition this Producer should
// build, which input partitions feed it. Producers whose outputs are not
// partitioned may omit Map; a default is synthesized that maps every
// input wholesale to the single NotPartitioned output.
type MapFunc func(inputs InputPartitions) (PartitionDependencies, error)

// ValidateFunc checks a Producer's build outputs before they are
// persisted, returning whether they pass and a diagnostic message.
// Producers that omit ValidateOutputs get a default that always passes.
type ValidateFunc func(outputs BuildOutputs) (bool, string)

// InputFingerprint pairs one output CompositeKey with the Fingerprint of
// everything that went into computing it.
type InputFingerprint struct {
	Key         partitions.CompositeKey
	Fingerprint fingerprint.Fingerprint
}

// InputFingerprints is the per-output-partition input fingerprint set
// Producer.ComputeDependencies returns alongside the PartitionDependencies
// they were derived from.
type InputFingerprints []InputFingerprint

// Producer is a task that builds one or more Artifacts from zero or more
// input Artifacts.
type Producer struct {
	Name        string
	Inputs      []InputDecl
	Outputs     []OutputDecl
	BuildFn     BuildFunc
	MapFn       MapFunc
	ValidateFn  ValidateFunc
	Version     versions.Version
	Annotations []artifacts.Annotation

	// BuildConsumes and MapConsumes record which declared inputs Build and
	// Map read, as declared via Consumes (or defaulted to every input).
	// The Executor reads only BuildConsumes inputs into BuildInputs.
	BuildConsumes []string
	MapConsumes   []string
}

type config struct {
	inputs      []InputDecl
	outputs     []OutputDecl
	build       BuildFunc
	mapFn       MapFunc
	validate    ValidateFunc
	version     versions.Version
	annotations []artifacts.Annotation

	buildConsumes    []string
	mapConsumes      []string
	consumesDeclared bool
}

// Option configures a Producer at construction time.
type Option func(*config)

// Input declares one named input Artifact, read through view when the
// Executor invokes Build. view defaults to a views.Scalar over the
// Artifact's own Type if omitted.
func Input(name string, a artifacts.Artifact, view ...views.View) Option {
	v := defaultView(a.Type)
	if len(view) > 0 {
		v = view[0]
	}
	return func(c *config) { c.inputs = append(c.inputs, InputDecl{Name: name, Artifact: a, View: v}) }
}

// Output declares one output Artifact template (its Type/Format/Storage),
// checked against whatever Artifacts are later passed to Out, and written
// through view when the Executor invokes Build. view defaults to a
// views.Scalar over the template's own Type if omitted.
func Output(template artifacts.Artifact, view ...views.View) Option {
	v := defaultView(template.Type)
	if len(view) > 0 {
		v = view[0]
	}
	return func(c *config) { c.outputs = append(c.outputs, OutputDecl{Template: template, View: v}) }
}

// defaultView wraps t in a read/write Scalar View using an "any" GoType,
// the View a Producer gets when it doesn't declare one explicitly.
func defaultView(t types.Type) views.View {
	return views.NewScalar(views.ReadWrite, reflect.TypeOf((*any)(nil)).Elem(), t)
}

// Build sets the Producer's build function. Required.
func Build(fn BuildFunc) Option {
	return func(c *config) { c.build = fn }
}

// Map sets the Producer's partition dependency function. Required only
// when any declared output is a partitioned Collection; otherwise a
// default that maps every input wholesale to the single unpartitioned
// output is synthesized.
func Map(fn MapFunc) Option {
	return func(c *config) { c.mapFn = fn }
}

// Consumes declares which declared inputs the Build function reads and
// which the Map function reads. The original implementation derives this
// from the build/map method signatures; a Go closure's reads are not
// introspectable, so the declaration is explicit instead, per the same
// explicit-registration strategy that replaces the rest of the
// signature-derived contract. New validates that every name is a declared
// input and that the union covers every declared input — an input neither
// Build nor Map reads is a definition error. When Consumes is omitted,
// Build is taken to read every declared input (the common case, and what
// an undecorated build signature means in the original).
func Consumes(buildInputs, mapInputs []string) Option {
	return func(c *config) {
		c.buildConsumes = buildInputs
		c.mapConsumes = mapInputs
		c.consumesDeclared = true
	}
}

// ValidateOutputs sets the Producer's output validation function.
// Defaults to always-pass if omitted.
func ValidateOutputs(fn ValidateFunc) Option {
	return func(c *config) { c.validate = fn }
}

// Version sets the Producer's version, combined into every build's input
// fingerprint. Defaults to versions.SemVer{Major: 0, Minor: 0, Patch: 1}.
func Version(v versions.Version) Option {
	return func(c *config) { c.version = v }
}

// Annotations attaches human-curated metadata to the Producer.
func Annotations(as ...artifacts.Annotation) Option {
	return func(c *config) { c.annotations = append(c.annotations, as...) }
}

// New declares a Producer, running every structural validation the
// original implementation performs at class-definition time: every input
// has a name and a concrete Artifact; Build is set; at least one output is
// declared and every declared output shares the same partitioning scheme;
// Map is supplied (or synthesized) consistently with whether the outputs
// are partitioned; every declared input is consumed by Build or Map
// (explicitly via Consumes, or by the default of Build reading every
// input); ValidateOutputs defaults to always-pass if omitted.
func New(name string, opts ...Option) (*Producer, error) {
	if name == "" {
		return nil, errs.New(errs.DefinitionErr, "producer: name is required")
	}
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	if len(c.inputs) > 0 {
		seen := map[string]bool{}
		for _, in := range c.inputs {
			if in.Name == "" {
				return nil, errs.New(errs.DefinitionErr, "producer %q: input name is required", name)
			}
			if seen[in.Name] {
				return nil, errs.New(errs.DefinitionErr, "producer %q: duplicate input %q", name, in.Name)
			}
			seen[in.Name] = true
			if in.Artifact.Type == nil {
				return nil, errs.New(errs.DefinitionErr, "producer %q: input %q has no artifact", name, in.Name)
			}
		}
	}

	if c.build == nil {
		return nil, errs.New(errs.DefinitionErr, "producer %q: Build is required", name)
	}

	if len(c.outputs) == 0 {
		return nil, errs.New(errs.DefinitionErr, "producer %q: at least one Output is required", name)
	}
	anyPartitioned := false
	var firstScheme []string
	for i, out := range c.outputs {
		scheme := partitionScheme(out.Template)
		if scheme != nil {
			anyPartitioned = true
		}
		if i == 0 {
			firstScheme = scheme
		} else if !stringsEqual(firstScheme, scheme) {
			return nil, errs.New(errs.DefinitionErr, "producer %q: all outputs must share the same partitioning scheme", name)
		}
	}

	if anyPartitioned && c.mapFn == nil {
		return nil, errs.New(errs.DefinitionErr, "producer %q: Map is required when outputs are partitioned", name)
	}
	if c.mapFn == nil {
		c.mapFn = defaultMap
	}

	declared := map[string]bool{}
	for _, in := range c.inputs {
		declared[in.Name] = true
	}
	if c.consumesDeclared {
		consumed := map[string]bool{}
		for _, consumer := range []struct {
			fn    string
			names []string
		}{{"Build", c.buildConsumes}, {"Map", c.mapConsumes}} {
			for _, n := range consumer.names {
				if !declared[n] {
					return nil, errs.New(errs.DefinitionErr,
						"producer %q: %s consumes %q, which is not a declared input", name, consumer.fn, n)
				}
				consumed[n] = true
			}
		}
		for _, in := range c.inputs {
			if !consumed[in.Name] {
				return nil, errs.New(errs.DefinitionErr,
					"producer %q: input %q is not consumed by Build or Map", name, in.Name)
			}
		}
	} else {
		// No declaration: Build reads every declared input.
		for _, in := range c.inputs {
			c.buildConsumes = append(c.buildConsumes, in.Name)
		}
	}
	if c.validate == nil {
		c.validate = func(BuildOutputs) (bool, string) { return true, "no validation performed" }
	}
	if c.version == nil {
		c.version = versions.SemVer{Major: 0, Minor: 0, Patch: 1}
	}

	return &Producer{
		Name:          name,
		Inputs:        c.inputs,
		Outputs:       c.outputs,
		BuildFn:       c.build,
		MapFn:         c.mapFn,
		ValidateFn:    c.validate,
		Version:       c.version,
		Annotations:   c.annotations,
		BuildConsumes: c.buildConsumes,
		MapConsumes:   c.mapConsumes,
	}, nil
}

func partitionScheme(a artifacts.Artifact) []string {
	collection, ok := a.Type.(types.Collection)
	if !ok || !collection.IsPartitioned() {
		return nil
	}
	return collection.PartitionBy
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func defaultMap(inputs InputPartitions) (PartitionDependencies, error) {
	return PartitionDependencies{{Key: partitions.NotPartitioned, Inputs: inputs}}, nil
}

// Fingerprint identifies this Producer's code identity: its name and
// declared Version, combined with fingerprint.Combine.
func (p *Producer) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString(p.Name).Combine(p.Version.Fingerprint())
}

// ComputeInputFingerprint fingerprints one output partition's build:
// the Producer's own identity plus the content fingerprint of every
// partition feeding it. Input file *paths* never participate — only
// their content — so a rerun whose inputs are byte-identical to a prior
// run is recognized as a no-op even if the inputs were regenerated.
func (p *Producer) ComputeInputFingerprint(ctx context.Context, dependencyInputs InputPartitions) (fingerprint.Fingerprint, error) {
	expected := map[string]bool{}
	for _, in := range p.Inputs {
		expected[in.Name] = true
	}
	for name := range dependencyInputs {
		if !expected[name] {
			return fingerprint.Fingerprint{}, errs.New(errs.ResolutionErr,
				"producer %q: unexpected dependency input %q", p.Name, name)
		}
	}

	fps := []fingerprint.Fingerprint{p.Fingerprint()}
	for _, in := range p.Inputs {
		for _, part := range dependencyInputs[in.Name] {
			fp, err := part.ComputeContentFingerprint(ctx)
			if err != nil {
				return fingerprint.Fingerprint{}, err
			}
			fps = append(fps, fp)
		}
	}
	return fingerprint.Combine(fps...), nil
}

// ComputeDependencies runs Map over inputPartitions and derives an input
// Fingerprint for every resulting output partition.
func (p *Producer) ComputeDependencies(ctx context.Context, inputPartitions InputPartitions) (PartitionDependencies, InputFingerprints, error) {
	deps, err := p.MapFn(inputPartitions)
	if err != nil {
		return nil, nil, errs.Wrap(err, errs.ResolutionErr, "producer %q: map", p.Name)
	}
	fps := make(InputFingerprints, 0, len(deps))
	for _, dep := range deps {
		fp, err := p.ComputeInputFingerprint(ctx, dep.Inputs)
		if err != nil {
			return nil, nil, err
		}
		fps = append(fps, InputFingerprint{Key: dep.Key, Fingerprint: fp})
	}
	return deps, fps, nil
}

// Out binds outputs (in declared order) to this Producer, stamping each
// with a ProducerOutput. Every Artifact must match its declared output's
// Type and must not already be produced by another Producer.
func (p *Producer) Out(outputs ...artifacts.Artifact) ([]artifacts.Artifact, error) {
	if len(outputs) != len(p.Outputs) {
		return nil, errs.New(errs.DefinitionErr,
			"producer %q: out() expected %d output(s), got %d", p.Name, len(p.Outputs), len(outputs))
	}
	fp := p.Fingerprint()
	bound := make([]artifacts.Artifact, len(outputs))
	for i, out := range outputs {
		if out.ProducerOutput != nil {
			return nil, errs.New(errs.DefinitionErr,
				"producer %q: out() argument %d is already produced by %q", p.Name, i, out.ProducerOutput.ProducerName)
		}
		declared := p.Outputs[i].Template
		if declared.Type.Fingerprint() != out.Type.Fingerprint() {
			return nil, errs.New(errs.DefinitionErr,
				"producer %q: out() argument %d has type %s, expected %s", p.Name, i, out.Type, declared.Type)
		}
		out.ProducerOutput = &artifacts.ProducerOutput{
			ProducerName:        p.Name,
			ProducerFingerprint: fp,
			Position:            i,
		}
		bound[i] = out
	}
	return bound, nil
}
