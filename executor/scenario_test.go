// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package executor_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artigraph/artigraph/artifacts"
	"github.com/artigraph/artigraph/backend"
	"github.com/artigraph/artigraph/backend/inmem"
	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/executor"
	"github.com/artigraph/artigraph/formats"
	"github.com/artigraph/artigraph/graphs"
	"github.com/artigraph/artigraph/ioregistry"
	"github.com/artigraph/artigraph/producers"
	"github.com/artigraph/artigraph/storage"
	"github.com/artigraph/artigraph/types"
	"github.com/artigraph/artigraph/views"
)

// newInt64Registry builds an ioregistry.Registry able to read Int64
// scalars out of Literal and LocalFile partitions, and write Int64
// scalars into LocalFile partitions, JSON-encoded — just enough IO
// dispatch for the literal-arithmetic scenarios below.
func newInt64Registry(t *testing.T) *ioregistry.Registry {
	t.Helper()
	reg := ioregistry.New(64)

	ioregistry.RegisterRead(reg, types.Int64{}, formats.JSON{}, storage.LiteralPartition{}, views.Scalar{},
		func(ctx context.Context, parts []storage.StoragePartition, format formats.Format, view views.View) (any, error) {
			lp := parts[0].(storage.LiteralPartition)
			var v int64
			if err := json.Unmarshal([]byte(lp.Value), &v); err != nil {
				return nil, errs.Wrap(err, errs.StorageErr, "decoding literal %q", lp.Value)
			}
			return v, nil
		})

	ioregistry.RegisterRead(reg, types.Int64{}, formats.JSON{}, storage.LocalFilePartition{}, views.Scalar{},
		func(ctx context.Context, parts []storage.StoragePartition, format formats.Format, view views.View) (any, error) {
			lfp := parts[0].(storage.LocalFilePartition)
			b, err := os.ReadFile(lfp.Path)
			if err != nil {
				return nil, errs.Wrap(err, errs.StorageErr, "reading %q", lfp.Path)
			}
			var v int64
			if err := json.Unmarshal(b, &v); err != nil {
				return nil, errs.Wrap(err, errs.StorageErr, "decoding %q", lfp.Path)
			}
			return v, nil
		})

	ioregistry.RegisterWrite(reg, types.Int64{}, formats.JSON{}, storage.LocalFilePartition{}, views.Scalar{},
		func(ctx context.Context, data any, format formats.Format, part storage.StoragePartition, view views.View) error {
			lfp := part.(storage.LocalFilePartition)
			b, err := json.Marshal(data)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(lfp.Path), 0o755); err != nil {
				return errs.Wrap(err, errs.StorageErr, "creating %q", filepath.Dir(lfp.Path))
			}
			return os.WriteFile(lfp.Path, b, 0o644)
		})

	return reg
}

func int64OutputTemplate(t *testing.T, dir, name string) artifacts.Artifact {
	t.Helper()
	lf, err := storage.NewLocalFile(filepath.Join(dir, name+"-{input_fingerprint}.json"))
	require.NoError(t, err)
	return artifacts.Artifact{Type: types.NewInt64(), Format: formats.NewJSON(), Storage: lf}
}

// buildAddGraph assembles a graph with two literal inputs x=1, y=2 and an
// "add" Producer computing z = x + y, mirroring spec.md §8's canonical
// literal-add scenario.
func buildAddGraph(t *testing.T, be backend.Backend, dir string) *graphs.Graph {
	t.Helper()
	g, err := graphs.Build("arithmetic", be, func(b *graphs.Builder) error {
		x, err := b.Put("x", 1)
		if err != nil {
			return err
		}
		y, err := b.Put("y", 2)
		if err != nil {
			return err
		}
		p, err := producers.New("add",
			producers.Input("x", x),
			producers.Input("y", y),
			producers.Output(int64OutputTemplate(t, dir, "z")),
			producers.Build(func(ctx context.Context, in producers.BuildInputs) (producers.BuildOutputs, error) {
				return producers.BuildOutputs{in["x"].(int64) + in["y"].(int64)}, nil
			}),
		)
		if err != nil {
			return err
		}
		_, err = b.Put("z", p)
		return err
	})
	require.NoError(t, err)
	return g
}

func TestExecutorBuildsLiteralAddScenario(t *testing.T) {
	ctx := context.Background()
	be := inmem.New()
	dir := t.TempDir()
	g := buildAddGraph(t, be, dir)

	var snap *graphs.GraphSnapshot
	err := backend.With(ctx, be, func(conn backend.Connection) error {
		var err error
		snap, err = g.Snapshot(ctx, conn)
		return err
	})
	require.NoError(t, err)

	exec := executor.New(executor.WithRegistry(newInt64Registry(t)))
	require.NoError(t, exec.Build(ctx, snap))

	err = backend.With(ctx, be, func(conn backend.Connection) error {
		zArt, ok := snap.Graph().Artifact("z")
		require.True(t, ok)
		parts, err := conn.ReadSnapshotArtifactPartitions(ctx, snap.Ref(), zArt)
		require.NoError(t, err)
		require.Len(t, parts, 1)

		lfp := parts[0].(storage.LocalFilePartition)
		b, err := os.ReadFile(lfp.Path)
		require.NoError(t, err)
		var got int64
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, int64(3), got)
		return nil
	})
	require.NoError(t, err)
}

func TestExecutorValidationFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	be := inmem.New()
	dir := t.TempDir()

	var snap *graphs.GraphSnapshot
	err := backend.With(ctx, be, func(conn backend.Connection) error {
		g, err := graphs.Build("rejecting", be, func(b *graphs.Builder) error {
			x, err := b.Put("x", 1)
			if err != nil {
				return err
			}
			p, err := producers.New("never_valid",
				producers.Input("x", x),
				producers.Output(int64OutputTemplate(t, dir, "z")),
				producers.Build(func(ctx context.Context, in producers.BuildInputs) (producers.BuildOutputs, error) {
					return producers.BuildOutputs{in["x"]}, nil
				}),
				producers.ValidateOutputs(func(outs producers.BuildOutputs) (bool, string) {
					return false, "always rejected for this test"
				}),
			)
			if err != nil {
				return err
			}
			_, err = b.Put("z", p)
			return err
		})
		if err != nil {
			return err
		}
		snap, err = g.Snapshot(ctx, conn)
		return err
	})
	require.NoError(t, err)

	exec := executor.New(executor.WithRegistry(newInt64Registry(t)))
	err = exec.Build(ctx, snap)
	require.Error(t, err)
	assert.True(t, errs.IsBuildValidationFailure(err))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "a rejected build must not write its output file")
}

func TestExecutorRebuildsLayeredGraphWithoutError(t *testing.T) {
	ctx := context.Background()
	be := inmem.New()
	dir := t.TempDir()

	g, err := graphs.Build("layered", be, func(b *graphs.Builder) error {
		x, err := b.Put("x", 1)
		if err != nil {
			return err
		}
		y, err := b.Put("y", 2)
		if err != nil {
			return err
		}
		addP, err := producers.New("add",
			producers.Input("x", x),
			producers.Input("y", y),
			producers.Output(int64OutputTemplate(t, dir, "sum")),
			producers.Build(func(ctx context.Context, in producers.BuildInputs) (producers.BuildOutputs, error) {
				return producers.BuildOutputs{in["x"].(int64) + in["y"].(int64)}, nil
			}),
		)
		if err != nil {
			return err
		}
		sum, err := b.Put("sum", addP)
		if err != nil {
			return err
		}
		doubleP, err := producers.New("double",
			producers.Input("sum", sum),
			producers.Output(int64OutputTemplate(t, dir, "doubled")),
			producers.Build(func(ctx context.Context, in producers.BuildInputs) (producers.BuildOutputs, error) {
				return producers.BuildOutputs{in["sum"].(int64) * 2}, nil
			}),
		)
		if err != nil {
			return err
		}
		_, err = b.Put("doubled", doubleP)
		return err
	})
	require.NoError(t, err)

	var snap *graphs.GraphSnapshot
	err = backend.With(ctx, be, func(conn backend.Connection) error {
		var err error
		snap, err = g.Snapshot(ctx, conn)
		return err
	})
	require.NoError(t, err)

	reg := newInt64Registry(t)
	exec := executor.New(executor.WithRegistry(reg))
	require.NoError(t, exec.Build(ctx, snap))

	require.NoError(t, exec.Build(ctx, snap))
}
