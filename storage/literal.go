// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package storage

import (
	"context"

	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/partitions"
)

// LiteralPartition holds a value directly, rather than a reference to
// where a value lives.
type LiteralPartition struct {
	Value string
}

// Keys always returns NotPartitioned: a Literal cannot be partitioned.
func (p LiteralPartition) Keys() partitions.CompositeKey { return partitions.NotPartitioned }

// InputFingerprint is always Empty(): a Literal is a raw value with no
// upstream computation.
func (p LiteralPartition) InputFingerprint() fingerprint.Fingerprint { return fingerprint.Empty() }

// ComputeContentFingerprint fingerprints the literal value's bytes
// directly, since there is no backing store to read from.
func (p LiteralPartition) ComputeContentFingerprint(ctx context.Context) (fingerprint.Fingerprint, error) {
	return fingerprint.FromString(p.Value), nil
}

// Literal stores its value directly in the metadata backend rather than
// referencing an external location, mirroring the original
// implementation's StringLiteral storage. It can never be partitioned.
type Literal struct {
	Value *string
}

// NewLiteral returns a Literal Storage. A nil value means "not yet
// written".
func NewLiteral(value *string) *Literal {
	return &Literal{Value: value}
}

// PathTemplate returns "" — a Literal has no path.
func (s *Literal) PathTemplate() string { return "" }

// IncludesInputFingerprintTemplate is always false for Literal: its
// dedup key is the value's own content fingerprint, not a path.
func (s *Literal) IncludesInputFingerprintTemplate() bool { return false }

// Supports rejects any partitioned Collection; Literal storage has
// exactly one partition.
func (s *Literal) Supports(canPartition bool) error {
	if canPartition {
		return errs.New(errs.DefinitionErr, "literal storage cannot be partitioned")
	}
	return nil
}

// GeneratePartition rejects any non-empty CompositeKey, then returns an
// empty LiteralPartition standing in for a not-yet-written value.
func (s *Literal) GeneratePartition(keys partitions.CompositeKey, inputFingerprint fingerprint.Fingerprint) (StoragePartition, error) {
	if !keys.IsEmpty() {
		return nil, errs.New(errs.DefinitionErr, "literal storage cannot be partitioned")
	}
	return LiteralPartition{}, nil
}

// ResolveGraphName is a no-op: a Literal has no path template.
func (s *Literal) ResolveGraphName(name string) Storage { return s }

// ResolveNames is a no-op: a Literal has no path template.
func (s *Literal) ResolveNames(names []string) Storage { return s }

// ResolvePathTags is a no-op: a Literal has no path template.
func (s *Literal) ResolvePathTags(tags map[string]string) Storage { return s }

// DiscoverPartitions returns the single literal partition if a value has
// been set, or none if not yet written.
func (s *Literal) DiscoverPartitions(ctx context.Context, keyTypeNames map[string]string) ([]StoragePartition, error) {
	if len(keyTypeNames) > 0 {
		return nil, errs.New(errs.DefinitionErr, "literal storage cannot be partitioned")
	}
	if s.Value == nil {
		return nil, nil
	}
	return []StoragePartition{LiteralPartition{Value: *s.Value}}, nil
}
