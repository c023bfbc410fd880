// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package executor drives a GraphSnapshot to completion: for every node
// in topological order, it discovers already-built output partitions and
// invokes each Producer's build function for whatever remains, exactly
// per the original implementation's four-step per-Producer algorithm
// (get_producer_inputs, compute_dependencies, discover_producer_partitions,
// build_producer_partition).
package executor

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/artigraph/artigraph/artifacts"
	"github.com/artigraph/artigraph/backend"
	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/graphs"
	"github.com/artigraph/artigraph/ioregistry"
	"github.com/artigraph/artigraph/logging"
	"github.com/artigraph/artigraph/metrics"
	"github.com/artigraph/artigraph/producers"
	"github.com/artigraph/artigraph/storage"
)

// Executor builds GraphSnapshots. One Executor may drive many Build calls
// concurrently; all configuration is immutable after New returns.
type Executor struct {
	registry    *ioregistry.Registry
	parallelism int
	logger      logging.Logger
	metrics     *metrics.Run
}

// Option configures an Executor at construction time.
type Option func(*Executor)

// WithRegistry sets the IO dispatch Registry used to read inputs and
// write outputs. Defaults to a fresh, empty Registry — callers almost
// always want to supply their own with format/storage handlers
// registered.
func WithRegistry(reg *ioregistry.Registry) Option {
	return func(e *Executor) { e.registry = reg }
}

// WithParallelism bounds how many independent nodes build concurrently.
// Defaults to runtime.GOMAXPROCS(0) (tuned once at process start by
// executor/init.go's automaxprocs import).
func WithParallelism(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithLogger sets the Logger the Executor reports build progress
// through. Defaults to a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithMetrics sets the metrics.Run counters this Executor records
// invocations, builds, and skips into. Defaults to a fresh Run registered
// into metrics.GlobalRegistry.
func WithMetrics(m *metrics.Run) Option {
	return func(e *Executor) { e.metrics = m }
}

// New returns an Executor ready to Build GraphSnapshots.
func New(opts ...Option) *Executor {
	e := &Executor{
		registry:    ioregistry.New(256),
		parallelism: runtime.GOMAXPROCS(0),
		logger:      logging.NewNoOpLogger(),
		metrics:     metrics.NewRun(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build drives snap to completion: every raw Artifact's partitions are
// already linked (GraphSnapshot.Snapshot requires this at construction
// time), so Build's job is to invoke every Producer whose output
// partitions are not yet discoverable for the snapshot's input
// fingerprints. A second Build call against an unchanged snapshot finds
// every partition already linked and invokes no Producer.
func (e *Executor) Build(ctx context.Context, snap *graphs.GraphSnapshot) error {
	return backend.With(ctx, snap.Graph().Backend(), func(conn backend.Connection) error {
		return e.build(ctx, snap, conn)
	})
}

// build walks snap's graph in topological waves: every node whose
// dependencies have already completed is eligible to run concurrently
// (bounded by e.parallelism), and the next wave is not started until the
// current one finishes, preserving the ordering guarantee that an
// Artifact is fully linked before its downstream Producer runs.
func (e *Executor) build(ctx context.Context, snap *graphs.GraphSnapshot, conn backend.Connection) error {
	g := snap.Graph()
	deps := g.Dependencies()
	pending := g.Order()
	done := make(map[string]bool, len(pending))

	for len(pending) > 0 {
		var wave, rest []string
		for _, n := range pending {
			ready := true
			for _, d := range deps[n] {
				if !done[d] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, n)
			} else {
				rest = append(rest, n)
			}
		}
		if len(wave) == 0 {
			return errs.New(errs.ResolutionErr, "executor: %d node(s) stuck behind unresolved dependencies", len(pending))
		}

		grp, gctx := errgroup.WithContext(ctx)
		grp.SetLimit(e.parallelism)
		for _, n := range wave {
			n := n
			grp.Go(func() error { return e.buildNode(gctx, snap, conn, n) })
		}
		if err := grp.Wait(); err != nil {
			return err
		}

		for _, n := range wave {
			done[n] = true
		}
		pending = rest
	}
	return nil
}

// buildNode dispatches one graph node. Raw Artifact nodes are already
// linked by GraphSnapshot.Snapshot (discovering them is required to
// compute the snapshot id itself), and produced Artifact nodes have no
// work of their own — their Producer handles writing and linking every
// output partition — so only Producer nodes do anything here.
func (e *Executor) buildNode(ctx context.Context, snap *graphs.GraphSnapshot, conn backend.Connection, nodeID string) error {
	kind, name := graphs.ParseNodeID(nodeID)
	switch kind {
	case "artifact":
		return nil
	case "producer":
		return e.buildProducer(ctx, snap, conn, name)
	default:
		return errs.New(errs.ResolutionErr, "executor: unrecognized node id %q", nodeID)
	}
}

// buildProducer implements spec.md §4.9's four-step algorithm for one
// Producer: load declared inputs, compute per-partition dependencies and
// input fingerprints, discover and link whatever is already built, then
// build everything that remains.
func (e *Executor) buildProducer(ctx context.Context, snap *graphs.GraphSnapshot, conn backend.Connection, name string) error {
	g := snap.Graph()
	p, ok := g.Producer(name)
	if !ok {
		return errs.New(errs.ResolutionErr, "executor: unknown producer %q", name)
	}
	outputs, ok := g.ProducerOutputs(name)
	if !ok {
		return errs.New(errs.ResolutionErr, "executor: producer %q has no bound outputs", name)
	}

	// Step 1: load input partitions, scoped to this snapshot.
	inputParts := producers.InputPartitions{}
	for _, in := range p.Inputs {
		parts, err := conn.ReadSnapshotArtifactPartitions(ctx, snap.Ref(), in.Artifact)
		if err != nil {
			return err
		}
		inputParts[in.Name] = parts
	}

	// Step 2: compute per-output-partition dependencies and input
	// fingerprints.
	deps, inputFPs, err := p.ComputeDependencies(ctx, inputParts)
	if err != nil {
		return err
	}
	fpByKey := make(map[string]fingerprint.Fingerprint, len(inputFPs))
	for _, f := range inputFPs {
		fpByKey[f.Key.String()] = f.Fingerprint
	}

	// Step 3: discover already-built output partitions for each key's
	// input fingerprint, linking matches into the snapshot.
	built := make(map[string]bool, len(deps))
	for _, dep := range deps {
		wantFP, ok := fpByKey[dep.Key.String()]
		if !ok {
			continue
		}
		allPresent := true
		for _, out := range outputs {
			existing, err := conn.ReadArtifactPartitions(ctx, out, wantFP)
			if err != nil {
				return err
			}
			// Two composite keys with byte-identical inputs share an input
			// fingerprint, so restrict matches to this dependency's key.
			var matching []storage.StoragePartition
			for _, ep := range existing {
				if ep.Keys().Equal(dep.Key) {
					matching = append(matching, ep)
				}
			}
			if len(matching) == 0 {
				allPresent = false
				continue
			}
			if err := conn.WriteSnapshotPartitions(ctx, snap.Ref(), dep.Key, out, matching); err != nil {
				return err
			}
		}
		if allPresent {
			built[dep.Key.String()] = true
			e.metrics.RecordSkipped(p.Name)
			e.logger.Info(logging.Fields{"producer": p.Name, "key": dep.Key.String()}, "skipping already-built partition")
		}
	}

	// Step 4: build whatever is not already built.
	for _, dep := range deps {
		keyStr := dep.Key.String()
		if built[keyStr] {
			continue
		}
		if err := e.buildPartition(ctx, snap, conn, p, outputs, dep, fpByKey[keyStr]); err != nil {
			return err
		}
	}
	return nil
}

// buildPartition reads dep's inputs through their declared Views, invokes
// the Producer's build function, validates the result, and — only if
// validation passes — writes and links every output partition. A
// validation failure aborts this partition entirely: nothing is written
// to storage or the backend for it.
func (e *Executor) buildPartition(
	ctx context.Context,
	snap *graphs.GraphSnapshot,
	conn backend.Connection,
	p *producers.Producer,
	outputs []artifacts.Artifact,
	dep producers.Dependency,
	inputFP fingerprint.Fingerprint,
) error {
	consumed := make(map[string]bool, len(p.BuildConsumes))
	for _, name := range p.BuildConsumes {
		consumed[name] = true
	}
	args := producers.BuildInputs{}
	for _, in := range p.Inputs {
		// Inputs only Map reads never reach the build function.
		if !consumed[in.Name] {
			continue
		}
		value, err := e.registry.Read(ctx, in.Artifact.Type, in.Artifact.Format, dep.Inputs[in.Name], in.View)
		if err != nil {
			return err
		}
		args[in.Name] = value
	}

	e.metrics.RecordInvocation(p.Name)
	outs, err := p.BuildFn(ctx, args)
	if err != nil {
		return errs.Wrap(err, errs.BuildValidationFailureErr, "producer %q: build failed for key %s (input fingerprint %s)", p.Name, dep.Key, inputFP)
	}
	if len(outs) != len(p.Outputs) {
		return errs.New(errs.BuildValidationFailureErr,
			"producer %q: build returned %d output(s) for key %s (input fingerprint %s), expected %d", p.Name, len(outs), dep.Key, inputFP, len(p.Outputs))
	}
	if ok, msg := p.ValidateFn(outs); !ok {
		e.metrics.RecordFailed(p.Name)
		return errs.New(errs.BuildValidationFailureErr, "producer %q: output validation failed for key %s (input fingerprint %s): %s", p.Name, dep.Key, inputFP, msg)
	}

	for i, out := range outputs {
		part, err := out.Storage.GeneratePartition(dep.Key, inputFP)
		if err != nil {
			return err
		}
		if err := e.registry.Write(ctx, outs[i], out.Type, out.Format, part, p.Outputs[i].View); err != nil {
			return err
		}
		if err := conn.WriteArtifactPartitions(ctx, out, []storage.StoragePartition{part}); err != nil {
			return err
		}
		if err := conn.WriteSnapshotPartitions(ctx, snap.Ref(), dep.Key, out, []storage.StoragePartition{part}); err != nil {
			return err
		}
		e.metrics.RecordBuilt(p.Name)
	}
	e.logger.Info(logging.Fields{"producer": p.Name, "key": dep.Key.String()}, "built partition")
	return nil
}
