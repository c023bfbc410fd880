// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package artifacts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artigraph/artigraph/artifacts"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/formats"
	"github.com/artigraph/artigraph/storage"
	"github.com/artigraph/artigraph/types"
)

func TestRawArtifactValidates(t *testing.T) {
	lit := "hello"
	a := artifacts.Artifact{
		Type:    types.NewString(),
		Format:  formats.NewJSON(),
		Storage: storage.NewLiteral(&lit),
	}
	require.NoError(t, a.Validate())
	assert.True(t, a.IsRaw())
}

func TestProducedArtifactRequiresInputFingerprintTemplate(t *testing.T) {
	lf, err := storage.NewLocalFile("data/out.json")
	require.NoError(t, err)
	a := artifacts.Artifact{
		Type:           types.NewString(),
		Format:         formats.NewJSON(),
		Storage:        lf,
		ProducerOutput: &artifacts.ProducerOutput{ProducerName: "add"},
	}
	assert.Error(t, a.Validate())

	lf2, err := storage.NewLocalFile("data/out-{input_fingerprint}.json")
	require.NoError(t, err)
	a.Storage = lf2
	assert.NoError(t, a.Validate())
}

func TestRawArtifactRejectsInputFingerprintTemplate(t *testing.T) {
	lf, err := storage.NewLocalFile("data/raw-{input_fingerprint}.json")
	require.NoError(t, err)
	a := artifacts.Artifact{Type: types.NewString(), Format: formats.NewJSON(), Storage: lf}
	assert.Error(t, a.Validate())
}

func TestFingerprintDiffersByProducerOutputPosition(t *testing.T) {
	lf, err := storage.NewLocalFile("data/out-{input_fingerprint}.json")
	require.NoError(t, err)
	base := artifacts.Artifact{Type: types.NewString(), Format: formats.NewJSON(), Storage: lf}

	a1 := base
	a1.ProducerOutput = &artifacts.ProducerOutput{ProducerName: "p", ProducerFingerprint: fingerprint.FromInt64(1), Position: 0}
	a2 := base
	a2.ProducerOutput = &artifacts.ProducerOutput{ProducerName: "p", ProducerFingerprint: fingerprint.FromInt64(1), Position: 1}

	assert.NotEqual(t, a1.Fingerprint(), a2.Fingerprint())
}
