// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package partitions

import (
	"strings"

	"github.com/artigraph/artigraph/fingerprint"
)

// Field is one named Key within a CompositeKey.
type Field struct {
	Name string
	Key  Key
}

// CompositeKey is the ordered tuple of partition field values that names
// one partition of a Collection. Field order is fixed by the owning
// Collection's partition_by order, so equality and fingerprinting never
// need to sort.
type CompositeKey struct {
	Fields []Field
}

// NotPartitioned is the CompositeKey used for Artifacts whose Type is not
// a partitioned Collection: the zero-value, empty CompositeKey.
var NotPartitioned = CompositeKey{}

// New returns a CompositeKey over the given ordered fields.
func New(fields ...Field) CompositeKey {
	return CompositeKey{Fields: fields}
}

// IsEmpty reports whether this is the NotPartitioned sentinel (or
// equivalent).
func (k CompositeKey) IsEmpty() bool {
	return len(k.Fields) == 0
}

// Get returns the Key for the named field, if present.
func (k CompositeKey) Get(name string) (Key, bool) {
	for _, f := range k.Fields {
		if f.Name == name {
			return f.Key, true
		}
	}
	return nil, false
}

// Equal reports whether two CompositeKeys name the same partition.
func (k CompositeKey) Equal(other CompositeKey) bool {
	if len(k.Fields) != len(other.Fields) {
		return false
	}
	for i, f := range k.Fields {
		o := other.Fields[i]
		if f.Name != o.Name || f.Key.String() != o.Key.String() {
			return false
		}
	}
	return true
}

// String renders the CompositeKey as "name=value/name=value", the
// canonical form used in diagnostics and as a map key substitute.
func (k CompositeKey) String() string {
	parts := make([]string, len(k.Fields))
	for i, f := range k.Fields {
		parts[i] = f.Name + "=" + f.Key.String()
	}
	return strings.Join(parts, "/")
}

// Fingerprint derives a content Fingerprint for this CompositeKey from every
// field's name and Key fingerprint. fingerprint.Combine is an XOR, so the
// result does not depend on field order (Equal, by contrast, compares
// fields positionally).
func (k CompositeKey) Fingerprint() fingerprint.Fingerprint {
	fps := make([]fingerprint.Fingerprint, 0, len(k.Fields)*2)
	for _, f := range k.Fields {
		fps = append(fps, fingerprint.FromString(f.Name), f.Key.Fingerprint())
	}
	return fingerprint.Combine(fps...)
}
