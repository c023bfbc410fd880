// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package backend declares the metadata store contract every Artigraph
// backend implements: artifact partition linkage, snapshot partition
// linkage, and snapshot/tag/graph records. See package backend/inmem for
// the reference implementation.
package backend

import (
	"context"

	"github.com/artigraph/artigraph/artifacts"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/partitions"
	"github.com/artigraph/artigraph/storage"
)

// SnapshotRef identifies one GraphSnapshot by the Graph name it belongs
// to and its snapshot id. Backend deliberately works against this
// identifier rather than a live graphs.Graph/GraphSnapshot value, since
// the graphs package in turn depends on Backend to acquire connections —
// threading the full graph object through here would be a import cycle.
type SnapshotRef struct {
	Name string
	ID   fingerprint.Fingerprint
}

// GraphRecord is the persisted identity of one sealed Graph.
type GraphRecord struct {
	Name        string
	Fingerprint fingerprint.Fingerprint
}

// SnapshotRecord is the persisted identity of one GraphSnapshot.
type SnapshotRecord struct {
	Name             string
	ID               fingerprint.Fingerprint
	GraphFingerprint fingerprint.Fingerprint
}

// Connection is an acquired handle to a Backend's metadata store, scoped
// to the lifetime of one With call. Implementations are not required to
// be safe for concurrent use unless documented otherwise.
type Connection interface {
	// ReadArtifactPartitions returns every known partition for artifact's
	// storage, optionally filtered to the given input fingerprints (an
	// empty filter returns every partition).
	ReadArtifactPartitions(ctx context.Context, artifact artifacts.Artifact, inputFingerprints ...fingerprint.Fingerprint) ([]storage.StoragePartition, error)
	// WriteArtifactPartitions merges parts into artifact's known
	// partitions, deduped on (Keys, input fingerprint, content
	// fingerprint). Every partition
	// must have a computable content fingerprint.
	WriteArtifactPartitions(ctx context.Context, artifact artifacts.Artifact, parts []storage.StoragePartition) error

	// WriteSnapshotPartitions links parts into snap under artifact's key.
	WriteSnapshotPartitions(ctx context.Context, snap SnapshotRef, key partitions.CompositeKey, artifact artifacts.Artifact, parts []storage.StoragePartition) error
	// ReadSnapshotPartitions is the inverse lookup of WriteSnapshotPartitions.
	ReadSnapshotPartitions(ctx context.Context, snap SnapshotRef, key partitions.CompositeKey, artifact artifacts.Artifact) ([]storage.StoragePartition, error)
	// ReadSnapshotArtifactPartitions returns every partition linked to
	// artifact within snap, across every composite key — the frozen set of
	// partitions this particular snapshot sees for artifact, independent
	// of what else may since have been written to the backend's
	// backend-wide artifact-partition index. The Executor uses this to
	// load a Producer's declared inputs.
	ReadSnapshotArtifactPartitions(ctx context.Context, snap SnapshotRef, artifact artifacts.Artifact) ([]storage.StoragePartition, error)

	// ReadSnapshot and WriteSnapshot persist snapshot metadata.
	ReadSnapshot(ctx context.Context, name string, id fingerprint.Fingerprint) (SnapshotRecord, error)
	WriteSnapshot(ctx context.Context, rec SnapshotRecord) error

	// ReadSnapshotTag and WriteSnapshotTag manage named pointers to
	// snapshots.
	ReadSnapshotTag(ctx context.Context, name, tag string) (SnapshotRef, error)
	WriteSnapshotTag(ctx context.Context, name, tag string, snap SnapshotRef) error

	// ReadGraph and WriteGraph persist graph metadata.
	ReadGraph(ctx context.Context, name string, id fingerprint.Fingerprint) (GraphRecord, error)
	WriteGraph(ctx context.Context, rec GraphRecord) error
}

// Backend is a factory producing Connections via a scoped acquisition.
type Backend interface {
	Connect(ctx context.Context) (Connection, error)
}

// Closer is implemented by Connections that hold a releasable resource.
// With calls Close on the exit path (including panics/errors) if the
// Connection satisfies it.
type Closer interface {
	Close() error
}

// With acquires a Connection from b, invokes fn, and releases the
// Connection on every exit path, mirroring the original implementation's
// @contextmanager connect() idiom.
func With(ctx context.Context, b Backend, fn func(Connection) error) error {
	conn, err := b.Connect(ctx)
	if err != nil {
		return err
	}
	if closer, ok := conn.(Closer); ok {
		defer closer.Close()
	}
	return fn(conn)
}
