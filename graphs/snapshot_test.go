// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package graphs_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artigraph/artigraph/artifacts"
	"github.com/artigraph/artigraph/backend"
	"github.com/artigraph/artigraph/backend/inmem"
	"github.com/artigraph/artigraph/formats"
	"github.com/artigraph/artigraph/graphs"
	"github.com/artigraph/artigraph/storage"
	"github.com/artigraph/artigraph/types"
)

func TestSnapshotRequiresRawData(t *testing.T) {
	be := inmem.New()
	ctx := context.Background()

	dir := t.TempDir()
	lf, err := storage.NewLocalFile(filepath.Join(dir, "raw.json"))
	require.NoError(t, err)

	g, err := graphs.Build("unfed", be, func(b *graphs.Builder) error {
		_, err := b.Put("raw", artifacts.Artifact{Type: types.NewInt64(), Format: formats.NewJSON(), Storage: lf})
		return err
	})
	require.NoError(t, err)

	conn, err := be.Connect(ctx)
	require.NoError(t, err)

	_, err = g.Snapshot(ctx, conn)
	assert.Error(t, err, "no file has been written under dir, so discovery finds nothing")
}

func TestSnapshotSucceedsOnceRawDataIsWritten(t *testing.T) {
	be := inmem.New()
	ctx := context.Background()

	var snap *graphs.GraphSnapshot
	err := backend.With(ctx, be, func(conn backend.Connection) error {
		g, err := graphs.Build("arithmetic", be, func(b *graphs.Builder) error {
			x, err := b.Put("x", 1)
			if err != nil {
				return err
			}
			y, err := b.Put("y", 2)
			if err != nil {
				return err
			}
			_, err = b.Put("z", addProducer(t, x, y))
			return err
		})
		if err != nil {
			return err
		}

		snap, err = g.Snapshot(ctx, conn)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.False(t, snap.ID().IsEmpty())
	assert.Equal(t, "arithmetic", snap.Ref().Name)
}

func TestSnapshotReadReturnsLinkedRawPartitions(t *testing.T) {
	be := inmem.New()
	ctx := context.Background()

	var snap *graphs.GraphSnapshot
	err := backend.With(ctx, be, func(conn backend.Connection) error {
		g, err := graphs.Build("arithmetic", be, func(b *graphs.Builder) error {
			x, err := b.Put("x", 1)
			if err != nil {
				return err
			}
			y, err := b.Put("y", 2)
			if err != nil {
				return err
			}
			_, err = b.Put("z", addProducer(t, x, y))
			return err
		})
		if err != nil {
			return err
		}
		snap, err = g.Snapshot(ctx, conn)
		return err
	})
	require.NoError(t, err)

	err = backend.With(ctx, be, func(conn backend.Connection) error {
		xArt, ok := snap.Graph().Artifact("x")
		require.True(t, ok)
		parts, err := conn.ReadSnapshotArtifactPartitions(ctx, snap.Ref(), xArt)
		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.True(t, parts[0].Keys().IsEmpty())
		return nil
	})
	require.NoError(t, err)
}
