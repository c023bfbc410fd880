// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package model provides small helpers to derive a content Fingerprint from
// a value's JSON encoding and to run a value's own Validate method. The
// types package derives every Type's Fingerprint through Fingerprint; the
// other value types (Artifact, Producer, CompositeKey, ...) combine their
// fields' fingerprints directly and do not call these helpers. Go has no
// class hierarchy to hang this on, so it is offered as plain functions
// rather than a base type.
package model

import (
	"encoding/json"
	"fmt"

	"github.com/artigraph/artigraph/fingerprint"
)

// Fingerprint derives a content Fingerprint for v by canonicalizing it to
// JSON and hashing the result. Go's encoding/json already marshals struct
// fields in declaration order (deterministic, unlike a Python dict's
// insertion-order-dependent repr), so no extra canonicalization pass is
// needed: fingerprint(v) is stable for any two values with the same field
// values, satisfying the "fingerprint(copy with no changes) == fingerprint"
// law from spec.md §8.
func Fingerprint(v any) fingerprint.Fingerprint {
	data, err := json.Marshal(v)
	if err != nil {
		// Every value type feeding this helper is built from this package's
		// own (already-validated) fields; a marshal failure means a caller
		// passed something that was never meant to reach here.
		panic(fmt.Sprintf("model: cannot fingerprint value of type %T: %v", v, err))
	}
	return fingerprint.FromBytes(data)
}

// Validatable is implemented by any value whose invariants can be checked
// after construction.
type Validatable interface {
	Validate() error
}

// Validate runs v's own Validate method, if it implements Validatable, and
// returns its error unchanged. It exists so constructors can write
// `return model.Validate(v)` uniformly regardless of whether the
// particular value type bothers to implement the interface.
func Validate(v any) error {
	if checker, ok := v.(Validatable); ok {
		return checker.Validate()
	}
	return nil
}
