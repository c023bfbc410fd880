// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package inmem implements the reference in-memory Backend: the testing
// oracle every other Backend implementation's semantics are checked
// against. It supports multi-reader/single-writer concurrency via a
// sync.RWMutex, the same shape as the teacher's storage/inmem store.
package inmem

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/artigraph/artigraph/artifacts"
	"github.com/artigraph/artigraph/backend"
	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/partitions"
	"github.com/artigraph/artigraph/storage"
)

type snapshotPartitionKey struct {
	snap     backend.SnapshotRef
	key      string
	artifact fingerprint.Fingerprint
}

type snapshotArtifactKey struct {
	snap     backend.SnapshotRef
	artifact fingerprint.Fingerprint
}

type tagKey struct {
	name string
	tag  string
}

type snapshotKey struct {
	name string
	id   fingerprint.Fingerprint
}

type graphKey struct {
	name string
	id   fingerprint.Fingerprint
}

// Store is the reference in-memory Backend.
type Store struct {
	mu sync.RWMutex

	artifactPartitions  map[fingerprint.Fingerprint][]storage.StoragePartition
	snapshotPartitions  map[snapshotPartitionKey][]storage.StoragePartition
	snapshotArtifacts   map[snapshotArtifactKey][]storage.StoragePartition
	snapshots           map[snapshotKey]backend.SnapshotRecord
	tags                map[tagKey]backend.SnapshotRef
	graphs              map[graphKey]backend.GraphRecord
}

// New returns an empty in-memory Store.
func New() *Store {
	return &Store{
		artifactPartitions: map[fingerprint.Fingerprint][]storage.StoragePartition{},
		snapshotPartitions: map[snapshotPartitionKey][]storage.StoragePartition{},
		snapshotArtifacts:  map[snapshotArtifactKey][]storage.StoragePartition{},
		snapshots:          map[snapshotKey]backend.SnapshotRecord{},
		tags:               map[tagKey]backend.SnapshotRef{},
		graphs:             map[graphKey]backend.GraphRecord{},
	}
}

// Connect returns a Connection bound to this Store. Every connection
// shares the same underlying maps; the returned id is for diagnostics
// only.
func (s *Store) Connect(ctx context.Context) (backend.Connection, error) {
	return &conn{store: s, id: uuid.New()}, nil
}

type conn struct {
	store *Store
	id    uuid.UUID
}

func (c *conn) Close() error { return nil }

func (c *conn) ReadArtifactPartitions(ctx context.Context, artifact artifacts.Artifact, inputFingerprints ...fingerprint.Fingerprint) ([]storage.StoragePartition, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	all := c.store.artifactPartitions[artifact.Fingerprint()]
	if len(inputFingerprints) == 0 {
		return append([]storage.StoragePartition(nil), all...), nil
	}
	want := map[fingerprint.Fingerprint]bool{}
	for _, fp := range inputFingerprints {
		want[fp] = true
	}
	var out []storage.StoragePartition
	for _, p := range all {
		if want[p.InputFingerprint()] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *conn) WriteArtifactPartitions(ctx context.Context, artifact artifacts.Artifact, parts []storage.StoragePartition) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	key := artifact.Fingerprint()
	existing := c.store.artifactPartitions[key]

	// Dedupe is by the full (keys, input fingerprint, content fingerprint)
	// triple: the same location legitimately holds different bytes across
	// snapshots, so a changed content fingerprint under a known identity is
	// a new partition, not a replacement. Two partitions in the SAME batch
	// sharing (keys, input fingerprint) but not content are a conflict —
	// one discovery cannot observe two states of one location.
	seen := map[string]bool{}
	for _, p := range existing {
		fp, err := p.ComputeContentFingerprint(ctx)
		if err != nil {
			return errs.Wrap(err, errs.BackendErr, "computing existing partition fingerprint")
		}
		seen[tripleID(p, fp)] = true
	}

	batch := map[string]fingerprint.Fingerprint{}
	merged := append([]storage.StoragePartition(nil), existing...)
	for _, p := range parts {
		fp, err := p.ComputeContentFingerprint(ctx)
		if err != nil {
			return errs.Wrap(err, errs.BackendErr, "computing new partition fingerprint")
		}
		id := partitionID(p)
		if prevFP, ok := batch[id]; ok && prevFP != fp {
			return errs.New(errs.BackendErr,
				"conflicting partitions for %q: content fingerprint %s vs %s in one write", id, fp, prevFP)
		}
		batch[id] = fp
		if seen[tripleID(p, fp)] {
			continue
		}
		seen[tripleID(p, fp)] = true
		merged = append(merged, p)
	}
	c.store.artifactPartitions[key] = merged
	return nil
}

func partitionID(p storage.StoragePartition) string {
	return p.Keys().String() + "@" + p.InputFingerprint().String()
}

func tripleID(p storage.StoragePartition, contentFP fingerprint.Fingerprint) string {
	return partitionID(p) + "#" + contentFP.String()
}

func (c *conn) WriteSnapshotPartitions(ctx context.Context, snap backend.SnapshotRef, key partitions.CompositeKey, artifact artifacts.Artifact, parts []storage.StoragePartition) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	k := snapshotPartitionKey{snap: snap, key: key.String(), artifact: artifact.Fingerprint()}
	c.store.snapshotPartitions[k] = mergePartitions(c.store.snapshotPartitions[k], parts)

	ak := snapshotArtifactKey{snap: snap, artifact: artifact.Fingerprint()}
	c.store.snapshotArtifacts[ak] = mergePartitions(c.store.snapshotArtifacts[ak], parts)
	return nil
}

// mergePartitions appends each new partition unless one with the same
// (keys, input fingerprint) identity is already linked, keeping snapshot
// links idempotent across repeated Executor runs.
func mergePartitions(existing, parts []storage.StoragePartition) []storage.StoragePartition {
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[partitionID(p)] = true
	}
	for _, p := range parts {
		if id := partitionID(p); !seen[id] {
			seen[id] = true
			existing = append(existing, p)
		}
	}
	return existing
}

func (c *conn) ReadSnapshotPartitions(ctx context.Context, snap backend.SnapshotRef, key partitions.CompositeKey, artifact artifacts.Artifact) ([]storage.StoragePartition, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	k := snapshotPartitionKey{snap: snap, key: key.String(), artifact: artifact.Fingerprint()}
	return append([]storage.StoragePartition(nil), c.store.snapshotPartitions[k]...), nil
}

func (c *conn) ReadSnapshotArtifactPartitions(ctx context.Context, snap backend.SnapshotRef, artifact artifacts.Artifact) ([]storage.StoragePartition, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	ak := snapshotArtifactKey{snap: snap, artifact: artifact.Fingerprint()}
	return append([]storage.StoragePartition(nil), c.store.snapshotArtifacts[ak]...), nil
}

func (c *conn) ReadSnapshot(ctx context.Context, name string, id fingerprint.Fingerprint) (backend.SnapshotRecord, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	rec, ok := c.store.snapshots[snapshotKey{name: name, id: id}]
	if !ok {
		return backend.SnapshotRecord{}, errs.New(errs.BackendErr, "no snapshot %q@%s", name, id)
	}
	return rec, nil
}

func (c *conn) WriteSnapshot(ctx context.Context, rec backend.SnapshotRecord) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.snapshots[snapshotKey{name: rec.Name, id: rec.ID}] = rec
	return nil
}

func (c *conn) ReadSnapshotTag(ctx context.Context, name, tag string) (backend.SnapshotRef, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	ref, ok := c.store.tags[tagKey{name: name, tag: tag}]
	if !ok {
		return backend.SnapshotRef{}, errs.New(errs.BackendErr, "no tag %q for graph %q", tag, name)
	}
	return ref, nil
}

func (c *conn) WriteSnapshotTag(ctx context.Context, name, tag string, snap backend.SnapshotRef) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.tags[tagKey{name: name, tag: tag}] = snap
	return nil
}

func (c *conn) ReadGraph(ctx context.Context, name string, id fingerprint.Fingerprint) (backend.GraphRecord, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	rec, ok := c.store.graphs[graphKey{name: name, id: id}]
	if !ok {
		return backend.GraphRecord{}, errs.New(errs.BackendErr, "no graph %q@%s", name, id)
	}
	return rec, nil
}

func (c *conn) WriteGraph(ctx context.Context, rec backend.GraphRecord) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.graphs[graphKey{name: rec.Name, id: rec.Fingerprint}] = rec
	return nil
}
