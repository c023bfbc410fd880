// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artigraph/artigraph/types"
)

func fooBarStruct() types.Struct {
	return types.NewStruct([]types.Field{
		{Name: "day", Type: types.NewDate()},
		{Name: "count", Type: types.NewInt64()},
	})
}

func TestCollectionValidatesPartitionByFields(t *testing.T) {
	_, err := types.NewCollection(fooBarStruct(), []string{"missing"}, nil)
	require.Error(t, err)

	col, err := types.NewCollection(fooBarStruct(), []string{"day"}, []string{"count"})
	require.NoError(t, err)
	assert.True(t, col.IsPartitioned())
}

func TestStructFieldOrderIsPreserved(t *testing.T) {
	s := fooBarStruct()
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "day", s.Fields[0].Name)
	assert.Equal(t, "count", s.Fields[1].Name)
}

func TestFingerprintDistinguishesVariants(t *testing.T) {
	a := types.NewInt64()
	b := types.NewInt32()
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprintStableAcrossEqualValues(t *testing.T) {
	a := types.NewList(types.NewString())
	b := types.NewList(types.NewString())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprintSensitiveToNullable(t *testing.T) {
	a := types.NewString()
	b := types.NewString(types.Nullable())
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestNilTypeSprint(t *testing.T) {
	assert.Equal(t, "???", types.Sprint(nil))
}

func TestMapStringer(t *testing.T) {
	m := types.NewMap(types.NewString(), types.NewInt32())
	assert.Equal(t, "map<string, int32>", m.String())
}

type stubAdapter struct {
	name string
}

func (s stubAdapter) Name() string                      { return s.name }
func (s stubAdapter) MatchesArtigraph(t types.Type) bool { _, ok := t.(types.Int64); return ok }
func (s stubAdapter) ToSystem(t types.Type) (any, error) { return "INT64", nil }
func (s stubAdapter) MatchesSystem(sys any) bool         { return sys == "INT64" }
func (s stubAdapter) ToArtigraph(sys any) (types.Type, error) { return types.NewInt64(), nil }

func TestSystemDispatchesToMatchingAdapter(t *testing.T) {
	sys := types.NewSystem("stub")
	sys.RegisterAdapter(stubAdapter{name: "low"}, 1)
	sys.RegisterAdapter(stubAdapter{name: "high"}, 10)

	out, err := sys.ToSystem(types.NewInt64())
	require.NoError(t, err)
	assert.Equal(t, "INT64", out)

	_, err = sys.ToSystem(types.NewFloat32())
	assert.Error(t, err)
}

func TestSystemExtendInheritsBaseAdapters(t *testing.T) {
	base := types.NewSystem("base")
	base.RegisterAdapter(stubAdapter{name: "base"}, 100)

	extended := types.NewSystem("ext").Extend("ext", base)
	out, err := extended.ToSystem(types.NewInt64())
	require.NoError(t, err)
	assert.Equal(t, "INT64", out)
}
