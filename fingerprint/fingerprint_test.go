// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artigraph/artigraph/fingerprint"
)

func TestEmptyIsInfectious(t *testing.T) {
	a := fingerprint.FromInt64(5)
	assert.True(t, a.Combine(fingerprint.Empty()).IsEmpty())
	assert.True(t, fingerprint.Empty().Combine(a).IsEmpty())
}

func TestIdentityIsNeutral(t *testing.T) {
	a := fingerprint.FromInt64(5)
	assert.Equal(t, a, a.Combine(fingerprint.Identity()))
	assert.Equal(t, a, fingerprint.Identity().Combine(a))
}

func TestSelfCombineIsIdentity(t *testing.T) {
	a := fingerprint.FromInt64(42)
	assert.True(t, a.Combine(a).IsIdentity())
}

func TestCombineIsAssociativeAndCommutative(t *testing.T) {
	a := fingerprint.FromInt64(1)
	b := fingerprint.FromInt64(2)
	c := fingerprint.FromInt64(3)

	assert.Equal(t, a.Combine(b).Combine(c), a.Combine(b, c))
	assert.Equal(t, b.Combine(a), a.Combine(b))
}

// TestCombineOrderIndependence exercises the five-Fingerprint permutation
// property from spec.md §8 scenario 4: combining over every permutation of
// five Fingerprints yields an identical result.
func TestCombineOrderIndependence(t *testing.T) {
	fs := []fingerprint.Fingerprint{
		fingerprint.FromString("a"),
		fingerprint.FromString("b"),
		fingerprint.FromString("c"),
		fingerprint.FromString("d"),
		fingerprint.FromString("e"),
	}
	want := fingerprint.Combine(fs...)

	var permute func(prefix, rest []fingerprint.Fingerprint)
	permute = func(prefix, rest []fingerprint.Fingerprint) {
		if len(rest) == 0 {
			got := fingerprint.Combine(prefix...)
			require.True(t, got.Equal(want), "permutation %v produced %v, want %v", prefix, got, want)
			return
		}
		for i := range rest {
			nextPrefix := append(append([]fingerprint.Fingerprint{}, prefix...), rest[i])
			nextRest := append(append([]fingerprint.Fingerprint{}, rest[:i]...), rest[i+1:]...)
			permute(nextPrefix, nextRest)
		}
	}
	permute(nil, fs)
}

func TestFromStringDeterministic(t *testing.T) {
	assert.Equal(t, fingerprint.FromString("hello"), fingerprint.FromString("hello"))
	assert.NotEqual(t, fingerprint.FromString("hello"), fingerprint.FromString("world"))
}

func TestJSONRoundTrip(t *testing.T) {
	for _, f := range []fingerprint.Fingerprint{
		fingerprint.Empty(),
		fingerprint.Identity(),
		fingerprint.FromInt64(-1234),
		fingerprint.FromString("partition"),
	} {
		data, err := f.MarshalJSON()
		require.NoError(t, err)
		var got fingerprint.Fingerprint
		require.NoError(t, got.UnmarshalJSON(data))
		assert.True(t, f.Equal(got))
	}
}

func TestEmptyStringNeverRendersAnInteger(t *testing.T) {
	assert.Equal(t, "empty", fingerprint.Empty().String())
}
