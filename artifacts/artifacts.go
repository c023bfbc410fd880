// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package artifacts declares Artifact, the structure describing an
// existing or generated dataset: a Type, a Format to encode it, and a
// Storage to hold it.
package artifacts

import (
	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/formats"
	"github.com/artigraph/artigraph/storage"
	"github.com/artigraph/artigraph/types"
)

// Annotation is an arbitrary piece of human-curated knowledge attached to
// an Artifact (an owner, a description, a data-quality note).
type Annotation struct {
	Name  string
	Value any
}

// ProducerOutput records that an Artifact is one output of a Producer,
// rather than a raw input with no upstream computation. Position
// disambiguates which of a multi-output Producer's outputs this is.
//
// ProducerOutput intentionally holds only an identifying fingerprint and
// name for the Producer, not a pointer to it: the producers package
// depends on artifacts (a Producer's Input declarations reference
// Artifacts), so a pointer back here would be a cycle. graphs ties the
// two together using these identifiers.
type ProducerOutput struct {
	ProducerName        string
	ProducerFingerprint fingerprint.Fingerprint
	Position            int
}

// Artifact is the base structure describing an existing or generated
// dataset: its Type, its Format, and its Storage, plus any Annotations
// and Statistics layered on top.
type Artifact struct {
	Type    types.Type
	Format  formats.Format
	Storage storage.Storage

	Annotations []Annotation
	Statistics  map[string]any

	// ProducerOutput is nil for a raw Artifact (one with no upstream
	// computation) and non-nil for a produced Artifact.
	ProducerOutput *ProducerOutput
}

// IsRaw reports whether this Artifact has no upstream Producer.
func (a Artifact) IsRaw() bool { return a.ProducerOutput == nil }

// Validate checks the Format/Storage compatibility and partition-ability
// invariants spec.md §4.7 describes as running "at construction time":
// the Format must support the Type, and a Collection's partitioning must
// be supported by the Storage (and a produced Artifact's Storage must
// include an {input_fingerprint} template component).
func (a Artifact) Validate() error {
	if a.Type == nil {
		return errs.New(errs.DefinitionErr, "artifact: type is required")
	}
	if a.Format == nil {
		return errs.New(errs.DefinitionErr, "artifact: format is required")
	}
	if a.Storage == nil {
		return errs.New(errs.DefinitionErr, "artifact: storage is required")
	}
	if err := a.Format.Supports(a.Type); err != nil {
		return errs.Wrap(err, errs.DefinitionErr, "artifact: format does not support type")
	}
	collection, isCollection := a.Type.(types.Collection)
	canPartition := isCollection && collection.IsPartitioned()
	if err := a.Storage.Supports(canPartition); err != nil {
		return errs.Wrap(err, errs.DefinitionErr, "artifact: storage does not support type")
	}
	if a.ProducerOutput != nil && !a.Storage.IncludesInputFingerprintTemplate() {
		return errs.New(errs.ResolutionErr,
			"artifact: produced artifact's storage path must reference {input_fingerprint}")
	}
	if a.ProducerOutput == nil && a.Storage.IncludesInputFingerprintTemplate() {
		return errs.New(errs.DefinitionErr,
			"artifact: raw artifact's storage path must not reference {input_fingerprint}")
	}
	return nil
}

// Fingerprint derives a content Fingerprint identifying this Artifact's
// declaration: its Type, Format, Storage, and — for a produced Artifact —
// which Producer output it is, each fingerprinted separately and combined
// with fingerprint.Combine. A Literal's path
// template is always empty (it has no location), so its value is folded in
// directly — otherwise two literals of the same Type/Format but different
// values (e.g. the x=1, y=2 inputs to an "add" producer) would be
// indistinguishable.
func (a Artifact) Fingerprint() fingerprint.Fingerprint {
	fps := []fingerprint.Fingerprint{
		a.Type.Fingerprint(),
		fingerprint.FromString(a.Format.Extension()),
		fingerprint.FromString(a.Storage.PathTemplate()),
	}
	if lit, ok := a.Storage.(*storage.Literal); ok && lit.Value != nil {
		fps = append(fps, fingerprint.FromString("literal-value:"+*lit.Value))
	}
	if a.ProducerOutput != nil {
		fps = append(fps,
			fingerprint.FromString(a.ProducerOutput.ProducerName),
			a.ProducerOutput.ProducerFingerprint,
			fingerprint.FromInt64(int64(a.ProducerOutput.Position)),
		)
	}
	return fingerprint.FromString("artifact").Combine(fps...)
}

// KeyTypeNames returns the partition field -> Key type name map Storage
// discovery needs for this Artifact's Type, empty if the Type is not a
// partitioned Collection.
func (a Artifact) KeyTypeNames() map[string]string {
	collection, ok := a.Type.(types.Collection)
	if !ok || !collection.IsPartitioned() {
		return nil
	}
	names := make(map[string]string, len(collection.PartitionBy))
	for _, field := range collection.PartitionBy {
		fieldType, _ := collection.Element.FieldType(field)
		names[field] = keyTypeNameFor(fieldType)
	}
	return names
}

func keyTypeNameFor(t types.Type) string {
	switch t.(type) {
	case types.Date:
		return "DateKey"
	case types.Null:
		return "NullKey"
	case types.Int8:
		return "Int8Key"
	case types.Int16:
		return "Int16Key"
	case types.Int32:
		return "Int32Key"
	default:
		return "Int64Key"
	}
}
