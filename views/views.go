// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package views declares the in-memory representation a Producer's build
// function consumes or returns for a given Artifact — the Go stand-in for
// the original implementation's pandas.DataFrame/dask.DataFrame views.
package views

import (
	"reflect"

	"github.com/artigraph/artigraph/types"
)

// Mode describes which direction(s) a View is used in.
type Mode int

const (
	// Read means the View is only ever read from (a Producer input).
	Read Mode = iota
	// Write means the View is only ever produced (a Producer output).
	Write
	// ReadWrite means the View may be both read and written.
	ReadWrite
)

func (m Mode) String() string {
	switch m {
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	default:
		return "READWRITE"
	}
}

// View is the in-memory shape a Producer's build function sees for one
// input, or returns for one output.
type View interface {
	// Mode reports whether this View is used for reading, writing, or
	// both.
	Mode() Mode
	// GoType returns the reflect.Type of the in-memory Go value this View
	// represents, used by ioregistry to dispatch Read/Write calls.
	GoType() reflect.Type
	// Type is the Artigraph Type this View's values must conform to.
	Type() types.Type
}

// Scalar is a View over a single Go value (a string, an int64, a float64)
// — the stand-in for a single-column/single-cell read.
type Scalar struct {
	mode    Mode
	goType  reflect.Type
	theType types.Type
}

// NewScalar returns a Scalar View of goType values conforming to t.
func NewScalar(mode Mode, goType reflect.Type, t types.Type) Scalar {
	return Scalar{mode: mode, goType: goType, theType: t}
}

func (v Scalar) Mode() Mode           { return v.mode }
func (v Scalar) GoType() reflect.Type { return v.goType }
func (v Scalar) Type() types.Type     { return v.theType }

// RecordList is a View over a []map[string]any, one map per record — the
// Go stand-in for the original implementation's dataframe/list-of-records
// views, used by Producers that operate on a Collection's full contents
// in memory.
type RecordList struct {
	mode    Mode
	theType types.Type
}

// NewRecordList returns a RecordList View of records conforming to t (a
// types.Collection or types.Struct).
func NewRecordList(mode Mode, t types.Type) RecordList {
	return RecordList{mode: mode, theType: t}
}

func (v RecordList) Mode() Mode           { return v.mode }
func (v RecordList) GoType() reflect.Type { return reflect.TypeOf([]map[string]any{}) }
func (v RecordList) Type() types.Type     { return v.theType }
