// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package storage implements where an Artifact's partitions physically
// live: the path template language, wildcard-based discovery, and the
// two reference Storage drivers (LocalFile, Literal).
package storage

import (
	"context"

	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/partitions"
)

// StoragePartition identifies and fingerprints one physical partition of
// an Artifact: a CompositeKey naming which partition it is, plus the
// ability to compute a content Fingerprint of whatever bytes currently
// live there.
type StoragePartition interface {
	// Keys is the CompositeKey naming this partition. NotPartitioned for
	// an unpartitioned Artifact.
	Keys() partitions.CompositeKey
	// InputFingerprint is the derived input fingerprint this partition was
	// built under, recovered from the {input_fingerprint} position of its
	// path. Empty() for a raw partition — a partition is uniquely
	// identified by (storage, keys, input fingerprint), and backends dedupe
	// and filter on it.
	InputFingerprint() fingerprint.Fingerprint
	// ComputeContentFingerprint fingerprints the bytes currently stored at
	// this partition's location.
	ComputeContentFingerprint(ctx context.Context) (fingerprint.Fingerprint, error)
}

// Storage is where an Artifact's partitions are physically read from and
// written to. Concrete Storage values are immutable declarations (a path
// template, a literal value); they do not hold open file handles or
// connections.
type Storage interface {
	// PathTemplate returns the raw path template this Storage was declared
	// with, for the Graph builder to validate input_fingerprint inclusion
	// on produced Artifacts.
	PathTemplate() string
	// IncludesInputFingerprintTemplate reports whether PathTemplate
	// references {input_fingerprint}, required for every produced
	// Artifact's Storage (spec.md §4.4/§4.7).
	IncludesInputFingerprintTemplate() bool
	// DiscoverPartitions finds every partition currently present, given the
	// partition field -> Key type name map declared by the owning
	// Collection (empty for an unpartitioned Artifact).
	DiscoverPartitions(ctx context.Context, keyTypeNames map[string]string) ([]StoragePartition, error)
	// GeneratePartition returns the StoragePartition a write for the given
	// CompositeKey and input fingerprint would target, without performing
	// any I/O.
	GeneratePartition(keys partitions.CompositeKey, inputFingerprint fingerprint.Fingerprint) (StoragePartition, error)
	// Supports reports whether this Storage can hold an Artifact whose
	// Type is (canPartition) or is not a partitioned Collection, returning
	// an error describing the mismatch if not (for example, Literal
	// storage rejecting a partitioned Collection).
	Supports(canPartition bool) error

	// ResolveGraphName returns a copy of this Storage with every
	// {graph_name} placeholder in its path template substituted for name.
	// Called once by the graph builder when an Artifact is assigned into
	// a Graph (spec.md §4.6).
	ResolveGraphName(name string) Storage
	// ResolveNames returns a copy of this Storage with every {names}
	// placeholder substituted for the dot-joined path the Artifact was
	// assigned under.
	ResolveNames(names []string) Storage
	// ResolvePathTags returns a copy of this Storage with every
	// {path_tags} placeholder substituted for the owning Graph's path
	// tags.
	ResolvePathTags(tags map[string]string) Storage
}
