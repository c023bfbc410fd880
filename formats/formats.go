// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package formats declares how an Artifact's partitions are encoded —
// CSV, Parquet, native, and so on — each bridging to its own TypeSystem.
package formats

import (
	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/types"
)

// Format represents a file or wire encoding (CSV, Parquet, native
// database storage, JSON...). Every Format is associated with a
// types.System bridging Artigraph's Type model to that encoding's own
// type representation.
type Format interface {
	// TypeSystem returns the types.System this Format bridges to.
	TypeSystem() *types.System
	// Extension is the conventional file extension for this Format
	// ("json", "csv", "parquet"), used to fill a Storage path template's
	// {extension} placeholder.
	Extension() string
	// Supports reports whether this Format can encode t, returning a
	// DefinitionError describing the mismatch if not.
	Supports(t types.Type) error
}

// JSON is the reference Format: every Artigraph Type round-trips through
// Go's encoding/json, so its TypeSystem has no registered adapters and it
// accepts every Type.
type JSON struct {
	system *types.System
}

// NewJSON returns a JSON Format.
func NewJSON() JSON {
	return JSON{system: types.NewSystem("json")}
}

// TypeSystem returns JSON's (empty) types.System.
func (f JSON) TypeSystem() *types.System { return f.system }

// Extension is "json".
func (f JSON) Extension() string { return "json" }

// Supports always succeeds: every Artigraph Type marshals through
// encoding/json.
func (f JSON) Supports(t types.Type) error {
	if t == nil {
		return errs.New(errs.DefinitionErr, "json: nil type")
	}
	return nil
}
