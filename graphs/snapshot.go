// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package graphs

import (
	"context"

	"github.com/artigraph/artigraph/artifacts"
	"github.com/artigraph/artigraph/backend"
	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/ioregistry"
	"github.com/artigraph/artigraph/partitions"
	"github.com/artigraph/artigraph/storage"
	"github.com/artigraph/artigraph/views"
)

// GraphSnapshot is a frozen view of a sealed Graph: every raw Artifact's
// partitions, as they existed the moment the snapshot was taken, identified
// by a content-addressed id so that rerunning against byte-identical raw
// data always produces the same snapshot.
type GraphSnapshot struct {
	graph *Graph
	id    fingerprint.Fingerprint
	ref   backend.SnapshotRef
}

// Snapshot discovers partitions for every raw Artifact in g, requiring at
// least one partition per raw Artifact, computes the snapshot id, persists
// the Graph/Snapshot metadata records, and links every discovered raw
// partition into both the backend-wide artifact index and this snapshot.
func (g *Graph) Snapshot(ctx context.Context, conn backend.Connection) (*GraphSnapshot, error) {
	type discovery struct {
		path       string
		artifact   artifacts.Artifact
		partitions []storage.StoragePartition
	}

	paths := g.sortedArtifactPaths()
	var raws []discovery
	var rawContentFPs []fingerprint.Fingerprint
	fps := []fingerprint.Fingerprint{g.Fingerprint()}

	for _, path := range paths {
		a := g.artifactsByName[path]
		fps = append(fps, fingerprint.FromString("name:"+path), a.Fingerprint())
		if !a.IsRaw() {
			continue
		}
		parts, err := a.Storage.DiscoverPartitions(ctx, a.KeyTypeNames())
		if err != nil {
			return nil, errs.Wrap(err, errs.StorageErr, "graphs: discovering partitions for %q", path)
		}
		if len(parts) == 0 {
			return nil, errs.New(errs.MissingDataErr, "graphs: no data for raw artifact %q", path)
		}
		for _, part := range parts {
			cfp, err := part.ComputeContentFingerprint(ctx)
			if err != nil {
				return nil, errs.Wrap(err, errs.StorageErr, "graphs: fingerprinting %q", path)
			}
			rawContentFPs = append(rawContentFPs, cfp)
		}
		raws = append(raws, discovery{path: path, artifact: a, partitions: parts})
	}

	for _, name := range g.sortedProducerNames() {
		fps = append(fps, g.producers[name].Fingerprint())
	}

	id := fingerprint.Combine(fps...).Combine(fingerprint.CombineUnordered(rawContentFPs...))
	ref := backend.SnapshotRef{Name: g.name, ID: id}

	if err := conn.WriteGraph(ctx, backend.GraphRecord{Name: g.name, Fingerprint: g.Fingerprint()}); err != nil {
		return nil, err
	}
	if err := conn.WriteSnapshot(ctx, backend.SnapshotRecord{Name: g.name, ID: id, GraphFingerprint: g.Fingerprint()}); err != nil {
		return nil, err
	}

	for _, rd := range raws {
		if err := conn.WriteArtifactPartitions(ctx, rd.artifact, rd.partitions); err != nil {
			return nil, err
		}
		for _, part := range rd.partitions {
			if err := conn.WriteSnapshotPartitions(ctx, ref, part.Keys(), rd.artifact, []storage.StoragePartition{part}); err != nil {
				return nil, err
			}
		}
	}

	return &GraphSnapshot{graph: g, id: id, ref: ref}, nil
}

// Graph returns the sealed Graph this snapshot was taken from.
func (s *GraphSnapshot) Graph() *Graph { return s.graph }

// ID returns the snapshot's content-addressed identity.
func (s *GraphSnapshot) ID() fingerprint.Fingerprint { return s.id }

// Ref returns the SnapshotRef a Backend uses to address this snapshot.
func (s *GraphSnapshot) Ref() backend.SnapshotRef { return s.ref }

// Read loads dottedPath's linked partitions within this snapshot into
// view's in-memory shape via reg.
func (s *GraphSnapshot) Read(ctx context.Context, conn backend.Connection, reg *ioregistry.Registry, dottedPath string, view views.View) (any, error) {
	a, ok := s.graph.Artifact(dottedPath)
	if !ok {
		return nil, errs.New(errs.ResolutionErr, "graphs: snapshot has no artifact %q", dottedPath)
	}
	parts, err := conn.ReadSnapshotArtifactPartitions(ctx, s.ref, a)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, errs.New(errs.MissingDataErr, "graphs: snapshot has no partitions linked for %q", dottedPath)
	}
	return reg.Read(ctx, a.Type, a.Format, parts, view)
}

// Write encodes data (of view's GoType) through reg and persists it as the
// partition named by keys/inputFingerprint for the produced Artifact at
// dottedPath, linking it into both the backend-wide artifact index and
// this snapshot. Writing to a raw Artifact is rejected: it would change
// the snapshot's own identity.
func (s *GraphSnapshot) Write(ctx context.Context, conn backend.Connection, reg *ioregistry.Registry, dottedPath string, data any, view views.View, keys partitions.CompositeKey, inputFingerprint fingerprint.Fingerprint) (storage.StoragePartition, error) {
	a, ok := s.graph.Artifact(dottedPath)
	if !ok {
		return nil, errs.New(errs.ResolutionErr, "graphs: snapshot has no artifact %q", dottedPath)
	}
	if a.IsRaw() {
		return nil, errs.New(errs.ValidationErr, "graphs: cannot write to raw artifact %q inside a snapshot", dottedPath)
	}
	part, err := a.Storage.GeneratePartition(keys, inputFingerprint)
	if err != nil {
		return nil, err
	}
	if err := reg.Write(ctx, data, a.Type, a.Format, part, view); err != nil {
		return nil, err
	}
	if err := conn.WriteArtifactPartitions(ctx, a, []storage.StoragePartition{part}); err != nil {
		return nil, err
	}
	if err := conn.WriteSnapshotPartitions(ctx, s.ref, keys, a, []storage.StoragePartition{part}); err != nil {
		return nil, err
	}
	return part, nil
}
