// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/partitions"
	"github.com/artigraph/artigraph/storage"
)

func TestPathSpecFormatAndParseRoundTrip(t *testing.T) {
	spec, err := storage.Compile("data/{day.Y}/{day.m}/{day.d}/part-{input_fingerprint}.json")
	require.NoError(t, err)

	day := partitions.DateKey{Key: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}
	keys := partitions.New(partitions.Field{Name: "day", Key: day})

	path, err := spec.Format(storage.FormatArgs{Keys: keys, InputFingerprint: "123"})
	require.NoError(t, err)
	assert.Equal(t, "data/2024/03/05/part-123.json", path)

	parsed, err := spec.ParsePartitionKeys(path, map[string]string{"day": "DateKey"})
	require.NoError(t, err)
	got, ok := parsed.Get("day")
	require.True(t, ok)
	assert.Equal(t, day, got)
}

func TestPathSpecRecoversInputFingerprint(t *testing.T) {
	spec, err := storage.Compile("out/{i.key}-{input_fingerprint}.json")
	require.NoError(t, err)

	keys := partitions.New(partitions.Field{Name: "i", Key: partitions.Int64Key{Key: 7}})
	path, err := spec.Format(storage.FormatArgs{Keys: keys, InputFingerprint: "-42"})
	require.NoError(t, err)
	assert.Equal(t, "out/7--42.json", path)

	parsed, inputFP, err := spec.ParsePartition(path, map[string]string{"i": "Int64Key"})
	require.NoError(t, err)
	if diff := cmp.Diff(keys.String(), parsed.String()); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}
	assert.Equal(t, fingerprint.FromInt64(-42), inputFP)
}

func TestPathSpecWildcardMatchesFormattedPaths(t *testing.T) {
	spec, err := storage.Compile("data/{day.Y}/{day.m}/{day.d}/part.json")
	require.NoError(t, err)

	day := partitions.DateKey{Key: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}
	keys := partitions.New(partitions.Field{Name: "day", Key: day})
	path, err := spec.Format(storage.FormatArgs{Keys: keys})
	require.NoError(t, err)

	g, err := spec.Wildcard()
	require.NoError(t, err)
	assert.True(t, g.Match(path))
	assert.False(t, g.Match("data/other/file.json"))
}

func TestPathSpecHardCodedPlaceholderIsLiteral(t *testing.T) {
	spec, err := storage.Compile("data/{day.Y[2024]}/value.json")
	require.NoError(t, err)
	path, err := spec.Format(storage.FormatArgs{})
	require.NoError(t, err)
	assert.Equal(t, "data/2024/value.json", path)
}

func TestLocalFileDiscoverPartitionsRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLocalFile(filepath.Join(dir, "{day.Y}", "{day.m}", "{day.d}", "part.json"))
	require.NoError(t, err)

	day := partitions.DateKey{Key: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}
	keys := partitions.New(partitions.Field{Name: "day", Key: day})
	gen, err := s.GeneratePartition(keys, fingerprint.FromInt64(1))
	require.NoError(t, err)
	localPart := gen.(storage.LocalFilePartition)
	require.NoError(t, os.MkdirAll(filepath.Dir(localPart.Path), 0o755))
	require.NoError(t, os.WriteFile(localPart.Path, []byte(`{"n":1}`), 0o644))

	found, err := s.DiscoverPartitions(context.Background(), map[string]string{"day": "DateKey"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	key, ok := found[0].Keys().Get("day")
	require.True(t, ok)
	assert.Equal(t, day, key)

	fp, err := found[0].ComputeContentFingerprint(context.Background())
	require.NoError(t, err)
	assert.False(t, fp.IsEmpty())
}

func TestLiteralCannotBePartitioned(t *testing.T) {
	lit := storage.NewLiteral(nil)
	assert.Error(t, lit.Supports(true))
	assert.NoError(t, lit.Supports(false))

	value := "hello"
	lit2 := storage.NewLiteral(&value)
	parts, err := lit2.DiscoverPartitions(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	fp, err := parts[0].ComputeContentFingerprint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fingerprint.FromString("hello"), fp)
}
