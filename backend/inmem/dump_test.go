// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package inmem_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artigraph/artigraph/backend"
	"github.com/artigraph/artigraph/backend/inmem"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/formats"
	"github.com/artigraph/artigraph/partitions"
	"github.com/artigraph/artigraph/storage"
	"github.com/artigraph/artigraph/types"

	art "github.com/artigraph/artigraph/artifacts"
)

func literalArtifact(t *testing.T, value string) art.Artifact {
	t.Helper()
	a := art.Artifact{
		Type:    types.Int64{},
		Format:  formats.NewJSON(),
		Storage: storage.NewLiteral(&value),
	}
	require.NoError(t, a.Validate())
	return a
}

func TestDumpLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := inmem.New()
	conn, err := store.Connect(ctx)
	require.NoError(t, err)

	artifact := literalArtifact(t, "1")
	parts, err := artifact.Storage.DiscoverPartitions(ctx, nil)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	require.NoError(t, conn.WriteArtifactPartitions(ctx, artifact, parts))

	snap := backend.SnapshotRef{Name: "g", ID: fingerprint.FromInt64(7)}
	require.NoError(t, conn.WriteSnapshotPartitions(ctx, snap, partitions.NotPartitioned, artifact, parts))
	require.NoError(t, conn.WriteSnapshot(ctx, backend.SnapshotRecord{
		Name: "g", ID: snap.ID, GraphFingerprint: fingerprint.FromInt64(3),
	}))
	require.NoError(t, conn.WriteSnapshotTag(ctx, "g", "latest", snap))
	require.NoError(t, conn.WriteGraph(ctx, backend.GraphRecord{Name: "g", Fingerprint: fingerprint.FromInt64(3)}))

	data, err := store.Dump(ctx)
	require.NoError(t, err)

	loaded, err := inmem.Load(data)
	require.NoError(t, err)
	lconn, err := loaded.Connect(ctx)
	require.NoError(t, err)

	gotParts, err := lconn.ReadArtifactPartitions(ctx, artifact)
	require.NoError(t, err)
	require.Len(t, gotParts, 1)
	wantFP, err := parts[0].ComputeContentFingerprint(ctx)
	require.NoError(t, err)
	gotFP, err := gotParts[0].ComputeContentFingerprint(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantFP, gotFP)

	gotSnapParts, err := lconn.ReadSnapshotPartitions(ctx, snap, partitions.NotPartitioned, artifact)
	require.NoError(t, err)
	assert.Len(t, gotSnapParts, 1)

	rec, err := lconn.ReadSnapshot(ctx, "g", snap.ID)
	require.NoError(t, err)
	want := backend.SnapshotRecord{Name: "g", ID: snap.ID, GraphFingerprint: fingerprint.FromInt64(3)}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("unexpected snapshot record (-want +got):\n%s", diff)
	}

	ref, err := lconn.ReadSnapshotTag(ctx, "g", "latest")
	require.NoError(t, err)
	assert.Equal(t, snap, ref)

	grec, err := lconn.ReadGraph(ctx, "g", fingerprint.FromInt64(3))
	require.NoError(t, err)
	assert.Equal(t, backend.GraphRecord{Name: "g", Fingerprint: fingerprint.FromInt64(3)}, grec)
}

func TestDumpRecordsPartitionKeys(t *testing.T) {
	ctx := context.Background()
	store := inmem.New()
	conn, err := store.Connect(ctx)
	require.NoError(t, err)

	collection := types.Collection{
		Element: types.Struct{Fields: []types.Field{
			{Name: "i", Type: types.Int64{}},
			{Name: "n", Type: types.Int64{}},
		}},
		PartitionBy: []string{"i"},
	}
	lf, err := storage.NewLocalFile("{i.key}/part-{input_fingerprint}.json")
	require.NoError(t, err)
	artifact := art.Artifact{
		Type:    collection,
		Format:  formats.NewJSON(),
		Storage: lf,
		ProducerOutput: &art.ProducerOutput{
			ProducerName:        "p",
			ProducerFingerprint: fingerprint.FromInt64(1),
		},
	}
	require.NoError(t, artifact.Validate())

	keys := partitions.New(partitions.Field{Name: "i", Key: partitions.Int64Key{Key: 42}})
	part := fixedPartition{keys: keys, inputFP: fingerprint.FromInt64(7), fp: fingerprint.FromInt64(99)}
	require.NoError(t, conn.WriteArtifactPartitions(ctx, artifact, []storage.StoragePartition{part}))

	data, err := store.Dump(ctx)
	require.NoError(t, err)
	loaded, err := inmem.Load(data)
	require.NoError(t, err)
	lconn, err := loaded.Connect(ctx)
	require.NoError(t, err)

	got, err := lconn.ReadArtifactPartitions(ctx, artifact)
	require.NoError(t, err)
	require.Len(t, got, 1)
	key, ok := got[0].Keys().Get("i")
	require.True(t, ok)
	assert.Equal(t, partitions.Int64Key{Key: 42}, key)

	fp, err := got[0].ComputeContentFingerprint(ctx)
	require.NoError(t, err)
	assert.Equal(t, fingerprint.FromInt64(99), fp)
	assert.Equal(t, fingerprint.FromInt64(7), got[0].InputFingerprint())
}

func TestWriteArtifactPartitionsRejectsConflict(t *testing.T) {
	ctx := context.Background()
	store := inmem.New()
	conn, err := store.Connect(ctx)
	require.NoError(t, err)

	artifact := literalArtifact(t, "1")
	keys := partitions.New(partitions.Field{Name: "i", Key: partitions.Int64Key{Key: 1}})
	first := fixedPartition{keys: keys, fp: fingerprint.FromInt64(10)}
	second := fixedPartition{keys: keys, fp: fingerprint.FromInt64(20)}

	require.NoError(t, conn.WriteArtifactPartitions(ctx, artifact, []storage.StoragePartition{first}))
	// Re-writing the same partition is an idempotent no-op.
	require.NoError(t, conn.WriteArtifactPartitions(ctx, artifact, []storage.StoragePartition{first}))
	parts, err := conn.ReadArtifactPartitions(ctx, artifact)
	require.NoError(t, err)
	assert.Len(t, parts, 1)

	// Two states of one location observed in a single write are a conflict.
	err = conn.WriteArtifactPartitions(ctx, artifact, []storage.StoragePartition{first, second})
	require.Error(t, err)

	// The same identity with new content in a later write is a new
	// partition (the location's bytes changed between snapshots).
	require.NoError(t, conn.WriteArtifactPartitions(ctx, artifact, []storage.StoragePartition{second}))
	parts, err = conn.ReadArtifactPartitions(ctx, artifact)
	require.NoError(t, err)
	assert.Len(t, parts, 2)
}

// fixedPartition is a StoragePartition with a pinned content fingerprint,
// standing in for a driver partition without any backing bytes.
type fixedPartition struct {
	keys    partitions.CompositeKey
	inputFP fingerprint.Fingerprint
	fp      fingerprint.Fingerprint
}

func (p fixedPartition) Keys() partitions.CompositeKey { return p.keys }

func (p fixedPartition) InputFingerprint() fingerprint.Fingerprint { return p.inputFP }

func (p fixedPartition) ComputeContentFingerprint(context.Context) (fingerprint.Fingerprint, error) {
	return p.fp, nil
}
