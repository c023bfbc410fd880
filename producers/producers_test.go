// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package producers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artigraph/artigraph/artifacts"
	"github.com/artigraph/artigraph/formats"
	"github.com/artigraph/artigraph/partitions"
	"github.com/artigraph/artigraph/producers"
	"github.com/artigraph/artigraph/storage"
	"github.com/artigraph/artigraph/types"
)

func literalArtifact(value string) artifacts.Artifact {
	return artifacts.Artifact{
		Type:    types.NewString(),
		Format:  formats.NewJSON(),
		Storage: storage.NewLiteral(&value),
	}
}

func outputTemplate() artifacts.Artifact {
	lf, _ := storage.NewLocalFile("out-{input_fingerprint}.json")
	return artifacts.Artifact{Type: types.NewString(), Format: formats.NewJSON(), Storage: lf}
}

func TestNewRequiresBuild(t *testing.T) {
	_, err := producers.New("add",
		producers.Input("x", literalArtifact("1")),
		producers.Output(outputTemplate()),
	)
	assert.Error(t, err)
}

func TestNewRequiresAtLeastOneOutput(t *testing.T) {
	_, err := producers.New("add",
		producers.Input("x", literalArtifact("1")),
		producers.Build(func(ctx context.Context, in producers.BuildInputs) (producers.BuildOutputs, error) {
			return producers.BuildOutputs{"1"}, nil
		}),
	)
	assert.Error(t, err)
}

func TestNewSucceedsAndOutBindsProducerOutput(t *testing.T) {
	p, err := producers.New("add",
		producers.Input("x", literalArtifact("1")),
		producers.Output(outputTemplate()),
		producers.Build(func(ctx context.Context, in producers.BuildInputs) (producers.BuildOutputs, error) {
			return producers.BuildOutputs{"2"}, nil
		}),
	)
	require.NoError(t, err)

	bound, err := p.Out(outputTemplate())
	require.NoError(t, err)
	require.Len(t, bound, 1)
	assert.Equal(t, "add", bound[0].ProducerOutput.ProducerName)
	assert.Equal(t, 0, bound[0].ProducerOutput.Position)

	_, err = p.Out(bound[0])
	assert.Error(t, err, "cannot re-bind an already-produced artifact")
}

func TestConsumesMustCoverEveryInput(t *testing.T) {
	_, err := producers.New("add",
		producers.Input("x", literalArtifact("1")),
		producers.Input("y", literalArtifact("2")),
		producers.Output(outputTemplate()),
		producers.Build(func(ctx context.Context, in producers.BuildInputs) (producers.BuildOutputs, error) {
			return producers.BuildOutputs{"3"}, nil
		}),
		producers.Consumes([]string{"x"}, nil),
	)
	require.Error(t, err, "input y is read by neither Build nor Map")
	assert.Contains(t, err.Error(), `"y"`)
}

func TestConsumesRejectsUndeclaredInput(t *testing.T) {
	_, err := producers.New("add",
		producers.Input("x", literalArtifact("1")),
		producers.Output(outputTemplate()),
		producers.Build(func(ctx context.Context, in producers.BuildInputs) (producers.BuildOutputs, error) {
			return producers.BuildOutputs{"2"}, nil
		}),
		producers.Consumes([]string{"x", "ghost"}, nil),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ghost"`)
}

func TestConsumesSplitsInputsBetweenBuildAndMap(t *testing.T) {
	p, err := producers.New("routed",
		producers.Input("data", literalArtifact("1")),
		producers.Input("routing", literalArtifact("2")),
		producers.Output(outputTemplate()),
		producers.Build(func(ctx context.Context, in producers.BuildInputs) (producers.BuildOutputs, error) {
			return producers.BuildOutputs{"2"}, nil
		}),
		producers.Map(func(inputs producers.InputPartitions) (producers.PartitionDependencies, error) {
			return producers.PartitionDependencies{{Key: partitions.NotPartitioned, Inputs: inputs}}, nil
		}),
		producers.Consumes([]string{"data"}, []string{"routing"}),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"data"}, p.BuildConsumes)
	assert.Equal(t, []string{"routing"}, p.MapConsumes)
}

func TestOmittedConsumesDefaultsToBuildReadingEveryInput(t *testing.T) {
	p, err := producers.New("add",
		producers.Input("x", literalArtifact("1")),
		producers.Input("y", literalArtifact("2")),
		producers.Output(outputTemplate()),
		producers.Build(func(ctx context.Context, in producers.BuildInputs) (producers.BuildOutputs, error) {
			return producers.BuildOutputs{"3"}, nil
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, p.BuildConsumes)
}

func TestComputeInputFingerprintRejectsUnexpectedInput(t *testing.T) {
	p, err := producers.New("add",
		producers.Input("x", literalArtifact("1")),
		producers.Output(outputTemplate()),
		producers.Build(func(ctx context.Context, in producers.BuildInputs) (producers.BuildOutputs, error) {
			return producers.BuildOutputs{"2"}, nil
		}),
	)
	require.NoError(t, err)

	_, err = p.ComputeInputFingerprint(context.Background(), producers.InputPartitions{
		"y": {storage.LiteralPartition{Value: "1"}},
	})
	assert.Error(t, err)
}

func TestComputeDependenciesDefaultMapIsWholesale(t *testing.T) {
	p, err := producers.New("add",
		producers.Input("x", literalArtifact("1")),
		producers.Output(outputTemplate()),
		producers.Build(func(ctx context.Context, in producers.BuildInputs) (producers.BuildOutputs, error) {
			return producers.BuildOutputs{"2"}, nil
		}),
	)
	require.NoError(t, err)

	deps, fps, err := p.ComputeDependencies(context.Background(), producers.InputPartitions{
		"x": {storage.LiteralPartition{Value: "1"}},
	})
	require.NoError(t, err)
	require.Len(t, deps, 1)
	require.Len(t, fps, 1)
	assert.True(t, deps[0].Key.IsEmpty())
}
