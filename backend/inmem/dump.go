// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package inmem

import (
	"context"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/artigraph/artigraph/backend"
	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/partitions"
	"github.com/artigraph/artigraph/storage"
)

// dumpFile is the YAML layout of a serialized Store: one list per
// metadata relation, matching the persisted-metadata row shapes of the
// backend contract (snapshot records, snapshot-partition edges,
// artifact-partition edges, tag records).
type dumpFile struct {
	ArtifactPartitions []artifactPartitionsRow `yaml:"artifact_partitions"`
	SnapshotPartitions []snapshotPartitionsRow `yaml:"snapshot_partitions"`
	Snapshots          []snapshotRow           `yaml:"snapshots"`
	Tags               []tagRow                `yaml:"tags"`
	Graphs             []graphRow              `yaml:"graphs"`
}

type artifactPartitionsRow struct {
	Artifact   string         `yaml:"artifact"`
	Partitions []partitionRow `yaml:"partitions"`
}

type snapshotPartitionsRow struct {
	SnapshotName string         `yaml:"snapshot_name"`
	SnapshotID   string         `yaml:"snapshot_id"`
	Key          string         `yaml:"key"`
	Artifact     string         `yaml:"artifact"`
	Partitions   []partitionRow `yaml:"partitions"`
}

type snapshotRow struct {
	Name             string `yaml:"name"`
	ID               string `yaml:"id"`
	GraphFingerprint string `yaml:"graph_fingerprint"`
}

type tagRow struct {
	Name       string `yaml:"name"`
	Tag        string `yaml:"tag"`
	SnapshotID string `yaml:"snapshot_id"`
}

type graphRow struct {
	Name        string `yaml:"name"`
	Fingerprint string `yaml:"fingerprint"`
}

// partitionRow serializes one StoragePartition. Path and Value carry the
// driver-specific location for the two reference drivers (LocalFile,
// Literal). On Load only a row with a Value is restored as a
// LiteralPartition; every other row, LocalFile ones included, is restored
// as an opaque restoredPartition that reports its recorded keys, input
// fingerprint and content fingerprint.
type partitionRow struct {
	Keys               []keyRow `yaml:"keys,omitempty"`
	Path               string   `yaml:"path,omitempty"`
	Value              *string  `yaml:"value,omitempty"`
	InputFingerprint   string   `yaml:"input_fingerprint,omitempty"`
	ContentFingerprint string   `yaml:"content_fingerprint"`
}

type keyRow struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"`
	Key   string `yaml:"key"`
}

// Dump serializes the full Store as YAML: every artifact-partition edge,
// snapshot-partition edge, and snapshot/tag/graph record. Content
// fingerprints are computed (and thus pinned) at dump time. Intended for
// fixture-driven tests and for hosts that want to carry the reference
// backend across process runs.
func (s *Store) Dump(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var file dumpFile
	for artifact, parts := range s.artifactPartitions {
		rows, err := partitionRows(ctx, parts)
		if err != nil {
			return nil, err
		}
		file.ArtifactPartitions = append(file.ArtifactPartitions, artifactPartitionsRow{
			Artifact:   artifact.String(),
			Partitions: rows,
		})
	}
	for k, parts := range s.snapshotPartitions {
		rows, err := partitionRows(ctx, parts)
		if err != nil {
			return nil, err
		}
		file.SnapshotPartitions = append(file.SnapshotPartitions, snapshotPartitionsRow{
			SnapshotName: k.snap.Name,
			SnapshotID:   k.snap.ID.String(),
			Key:          k.key,
			Artifact:     k.artifact.String(),
			Partitions:   rows,
		})
	}
	for _, rec := range s.snapshots {
		file.Snapshots = append(file.Snapshots, snapshotRow{
			Name:             rec.Name,
			ID:               rec.ID.String(),
			GraphFingerprint: rec.GraphFingerprint.String(),
		})
	}
	for k, ref := range s.tags {
		file.Tags = append(file.Tags, tagRow{Name: k.name, Tag: k.tag, SnapshotID: ref.ID.String()})
	}
	for _, rec := range s.graphs {
		file.Graphs = append(file.Graphs, graphRow{Name: rec.Name, Fingerprint: rec.Fingerprint.String()})
	}

	out, err := yaml.Marshal(file)
	if err != nil {
		return nil, errs.Wrap(err, errs.BackendErr, "dumping store")
	}
	return out, nil
}

// Load deserializes a Dump back into a fresh Store. Literal partitions are
// restored as LiteralPartition values; every other partition, including
// LocalFile ones, becomes an opaque partition pinned to its recorded keys,
// input fingerprint and content fingerprint.
func Load(data []byte) (*Store, error) {
	var file dumpFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errs.Wrap(err, errs.BackendErr, "loading store dump")
	}

	s := New()
	for _, row := range file.ArtifactPartitions {
		artifact, err := parseFingerprint(row.Artifact)
		if err != nil {
			return nil, err
		}
		parts, err := restorePartitions(row.Partitions)
		if err != nil {
			return nil, err
		}
		s.artifactPartitions[artifact] = parts
	}
	for _, row := range file.SnapshotPartitions {
		id, err := parseFingerprint(row.SnapshotID)
		if err != nil {
			return nil, err
		}
		artifact, err := parseFingerprint(row.Artifact)
		if err != nil {
			return nil, err
		}
		parts, err := restorePartitions(row.Partitions)
		if err != nil {
			return nil, err
		}
		snap := backend.SnapshotRef{Name: row.SnapshotName, ID: id}
		k := snapshotPartitionKey{snap: snap, key: row.Key, artifact: artifact}
		s.snapshotPartitions[k] = parts
		ak := snapshotArtifactKey{snap: snap, artifact: artifact}
		s.snapshotArtifacts[ak] = append(s.snapshotArtifacts[ak], parts...)
	}
	for _, row := range file.Snapshots {
		id, err := parseFingerprint(row.ID)
		if err != nil {
			return nil, err
		}
		gfp, err := parseFingerprint(row.GraphFingerprint)
		if err != nil {
			return nil, err
		}
		s.snapshots[snapshotKey{name: row.Name, id: id}] = backend.SnapshotRecord{
			Name: row.Name, ID: id, GraphFingerprint: gfp,
		}
	}
	for _, row := range file.Tags {
		id, err := parseFingerprint(row.SnapshotID)
		if err != nil {
			return nil, err
		}
		s.tags[tagKey{name: row.Name, tag: row.Tag}] = backend.SnapshotRef{Name: row.Name, ID: id}
	}
	for _, row := range file.Graphs {
		fp, err := parseFingerprint(row.Fingerprint)
		if err != nil {
			return nil, err
		}
		s.graphs[graphKey{name: row.Name, id: fp}] = backend.GraphRecord{Name: row.Name, Fingerprint: fp}
	}
	return s, nil
}

func partitionRows(ctx context.Context, parts []storage.StoragePartition) ([]partitionRow, error) {
	rows := make([]partitionRow, 0, len(parts))
	for _, p := range parts {
		fp, err := p.ComputeContentFingerprint(ctx)
		if err != nil {
			return nil, errs.Wrap(err, errs.BackendErr, "fingerprinting partition for dump")
		}
		row := partitionRow{ContentFingerprint: fp.String()}
		if inputFP := p.InputFingerprint(); !inputFP.IsEmpty() {
			row.InputFingerprint = inputFP.String()
		}
		for _, f := range p.Keys().Fields {
			row.Keys = append(row.Keys, keyRow{
				Field: f.Name,
				Type:  reflect.TypeOf(f.Key).Name(),
				Key:   f.Key.String(),
			})
		}
		switch concrete := p.(type) {
		case storage.LocalFilePartition:
			row.Path = concrete.Path
		case storage.LiteralPartition:
			v := concrete.Value
			row.Value = &v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func restorePartitions(rows []partitionRow) ([]storage.StoragePartition, error) {
	parts := make([]storage.StoragePartition, 0, len(rows))
	for _, row := range rows {
		keys, err := restoreKeys(row.Keys)
		if err != nil {
			return nil, err
		}
		switch {
		case row.Value != nil:
			parts = append(parts, storage.LiteralPartition{Value: *row.Value})
		default:
			fp, err := parseFingerprint(row.ContentFingerprint)
			if err != nil {
				return nil, err
			}
			inputFP, err := parseFingerprint(row.InputFingerprint)
			if err != nil {
				return nil, err
			}
			parts = append(parts, restoredPartition{
				keys:               keys,
				path:               row.Path,
				inputFingerprint:   inputFP,
				contentFingerprint: fp,
			})
		}
	}
	return parts, nil
}

func restoreKeys(rows []keyRow) (partitions.CompositeKey, error) {
	fields := make([]partitions.Field, 0, len(rows))
	for _, row := range rows {
		key, err := partitions.FromKeyComponents(row.Type, map[string]string{"key": row.Key})
		if err != nil {
			return partitions.CompositeKey{}, errs.Wrap(err, errs.BackendErr, "restoring partition key %q", row.Field)
		}
		fields = append(fields, partitions.Field{Name: row.Field, Key: key})
	}
	return partitions.New(fields...), nil
}

func parseFingerprint(s string) (fingerprint.Fingerprint, error) {
	if s == "empty" || s == "" {
		return fingerprint.Empty(), nil
	}
	var fp fingerprint.Fingerprint
	if err := fp.UnmarshalJSON([]byte(s)); err != nil {
		return fingerprint.Fingerprint{}, errs.Wrap(err, errs.BackendErr, "parsing fingerprint %q", s)
	}
	return fp, nil
}

// restoredPartition is any non-Literal partition loaded from a dump
// (LocalFile partitions included): it reports the keys, input fingerprint
// and content fingerprint recorded at dump time rather than re-reading any
// bytes.
type restoredPartition struct {
	keys               partitions.CompositeKey
	path               string
	inputFingerprint   fingerprint.Fingerprint
	contentFingerprint fingerprint.Fingerprint
}

func (p restoredPartition) Keys() partitions.CompositeKey { return p.keys }

func (p restoredPartition) InputFingerprint() fingerprint.Fingerprint { return p.inputFingerprint }

func (p restoredPartition) ComputeContentFingerprint(ctx context.Context) (fingerprint.Fingerprint, error) {
	return p.contentFingerprint, nil
}
