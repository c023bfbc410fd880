// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package types declares Artigraph's structural type model: a closed sum
// type of scalars, containers, and the one partitioned container,
// Collection.
package types

import (
	"fmt"
	"strings"

	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/model"
)

// Type is a closed sum type describing the structure of some data. Every
// concrete variant below implements it; the unexported typeMarker method
// keeps the set closed to this package, mirroring the teacher's
// types.Type/typeMarker idiom.
type Type interface {
	fmt.Stringer
	typeMarker()
	// Nullable reports whether this Type's values may be null.
	Nullable() bool
	// Description is an optional human-readable description.
	Description() string
	// Metadata is arbitrary, opaque, per-Type metadata.
	Metadata() map[string]any
	// Fingerprint derives a content Fingerprint for this Type value.
	Fingerprint() fingerprint.Fingerprint
}

// common is embedded by every concrete Type to provide the Nullable,
// Description, and Metadata fields spec.md §3 says every Type carries.
type common struct {
	IsNullable  bool           `json:"nullable,omitempty"`
	Desc        string         `json:"description,omitempty"`
	Meta        map[string]any `json:"metadata,omitempty"`
}

func (c common) Nullable() bool            { return c.IsNullable }
func (c common) Description() string       { return c.Desc }
func (c common) Metadata() map[string]any  { return c.Meta }

// Option configures the common fields shared by every Type constructor.
type Option func(*common)

// Nullable marks a Type as accepting null values.
func Nullable() Option { return func(c *common) { c.IsNullable = true } }

// WithDescription attaches a human-readable description to a Type.
func WithDescription(d string) Option { return func(c *common) { c.Desc = d } }

// WithMetadata attaches arbitrary metadata to a Type.
func WithMetadata(m map[string]any) Option { return func(c *common) { c.Meta = m } }

func apply(c *common, opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

////////////////////////
// Scalar type variants //
////////////////////////

// Int8 is a signed 8-bit integer type.
type Int8 struct{ common }

// NewInt8 returns a new Int8 Type.
func NewInt8(opts ...Option) Int8 { var c common; apply(&c, opts); return Int8{c} }
func (t Int8) String() string     { return "int8" }
func (Int8) typeMarker()          {}
func (t Int8) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("int8").Combine(model.Fingerprint(t))
}

// Int16 is a signed 16-bit integer type.
type Int16 struct{ common }

func NewInt16(opts ...Option) Int16 { var c common; apply(&c, opts); return Int16{c} }
func (t Int16) String() string      { return "int16" }
func (Int16) typeMarker()           {}
func (t Int16) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("int16").Combine(model.Fingerprint(t))
}

// Int32 is a signed 32-bit integer type.
type Int32 struct{ common }

func NewInt32(opts ...Option) Int32 { var c common; apply(&c, opts); return Int32{c} }
func (t Int32) String() string      { return "int32" }
func (Int32) typeMarker()           {}
func (t Int32) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("int32").Combine(model.Fingerprint(t))
}

// Int64 is a signed 64-bit integer type.
type Int64 struct{ common }

func NewInt64(opts ...Option) Int64 { var c common; apply(&c, opts); return Int64{c} }
func (t Int64) String() string      { return "int64" }
func (Int64) typeMarker()           {}
func (t Int64) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("int64").Combine(model.Fingerprint(t))
}

// UInt8 is an unsigned 8-bit integer type.
type UInt8 struct{ common }

func NewUInt8(opts ...Option) UInt8 { var c common; apply(&c, opts); return UInt8{c} }
func (t UInt8) String() string      { return "uint8" }
func (UInt8) typeMarker()           {}
func (t UInt8) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("uint8").Combine(model.Fingerprint(t))
}

// UInt16 is an unsigned 16-bit integer type.
type UInt16 struct{ common }

func NewUInt16(opts ...Option) UInt16 { var c common; apply(&c, opts); return UInt16{c} }
func (t UInt16) String() string       { return "uint16" }
func (UInt16) typeMarker()            {}
func (t UInt16) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("uint16").Combine(model.Fingerprint(t))
}

// UInt32 is an unsigned 32-bit integer type.
type UInt32 struct{ common }

func NewUInt32(opts ...Option) UInt32 { var c common; apply(&c, opts); return UInt32{c} }
func (t UInt32) String() string       { return "uint32" }
func (UInt32) typeMarker()            {}
func (t UInt32) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("uint32").Combine(model.Fingerprint(t))
}

// UInt64 is an unsigned 64-bit integer type.
type UInt64 struct{ common }

func NewUInt64(opts ...Option) UInt64 { var c common; apply(&c, opts); return UInt64{c} }
func (t UInt64) String() string       { return "uint64" }
func (UInt64) typeMarker()            {}
func (t UInt64) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("uint64").Combine(model.Fingerprint(t))
}

// Float16 is a half-precision floating point type.
type Float16 struct{ common }

func NewFloat16(opts ...Option) Float16 { var c common; apply(&c, opts); return Float16{c} }
func (t Float16) String() string        { return "float16" }
func (Float16) typeMarker()             {}
func (t Float16) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("float16").Combine(model.Fingerprint(t))
}

// Float32 is a single-precision floating point type.
type Float32 struct{ common }

func NewFloat32(opts ...Option) Float32 { var c common; apply(&c, opts); return Float32{c} }
func (t Float32) String() string        { return "float32" }
func (Float32) typeMarker()             {}
func (t Float32) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("float32").Combine(model.Fingerprint(t))
}

// Float64 is a double-precision floating point type.
type Float64 struct{ common }

func NewFloat64(opts ...Option) Float64 { var c common; apply(&c, opts); return Float64{c} }
func (t Float64) String() string        { return "float64" }
func (Float64) typeMarker()             {}
func (t Float64) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("float64").Combine(model.Fingerprint(t))
}

// Boolean is the boolean type.
type Boolean struct{ common }

func NewBoolean(opts ...Option) Boolean { var c common; apply(&c, opts); return Boolean{c} }
func (t Boolean) String() string        { return "boolean" }
func (Boolean) typeMarker()             {}
func (t Boolean) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("boolean").Combine(model.Fingerprint(t))
}

// Binary is an arbitrary byte-string type.
type Binary struct {
	common
	ByteSize int `json:"byte_size,omitempty"`
}

func NewBinary(opts ...Option) Binary { var c common; apply(&c, opts); return Binary{common: c} }
func (t Binary) String() string       { return "binary" }
func (Binary) typeMarker()            {}
func (t Binary) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("binary").Combine(model.Fingerprint(t))
}

// Date is a calendar date type (no time-of-day).
type Date struct{ common }

func NewDate(opts ...Option) Date { var c common; apply(&c, opts); return Date{c} }
func (t Date) String() string     { return "date" }
func (Date) typeMarker()          {}
func (t Date) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("date").Combine(model.Fingerprint(t))
}

// DateTime is a date-and-time type without an explicit timezone contract.
type DateTime struct{ common }

func NewDateTime(opts ...Option) DateTime { var c common; apply(&c, opts); return DateTime{c} }
func (t DateTime) String() string         { return "datetime" }
func (DateTime) typeMarker()              {}
func (t DateTime) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("datetime").Combine(model.Fingerprint(t))
}

// Time is a time-of-day type (no date).
type Time struct{ common }

func NewTime(opts ...Option) Time { var c common; apply(&c, opts); return Time{c} }
func (t Time) String() string     { return "time" }
func (Time) typeMarker()          {}
func (t Time) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("time").Combine(model.Fingerprint(t))
}

// TimestampPrecision is the resolution of a Timestamp type.
type TimestampPrecision string

// Supported TimestampPrecision values.
const (
	Second      TimestampPrecision = "second"
	Millisecond TimestampPrecision = "millisecond"
	Microsecond TimestampPrecision = "microsecond"
	Nanosecond  TimestampPrecision = "nanosecond"
)

// Timestamp is a UTC timestamp with a configurable precision.
type Timestamp struct {
	common
	Precision TimestampPrecision `json:"precision"`
}

// NewTimestamp returns a new Timestamp Type at the given precision.
func NewTimestamp(precision TimestampPrecision, opts ...Option) Timestamp {
	var c common
	apply(&c, opts)
	return Timestamp{common: c, Precision: precision}
}
func (t Timestamp) String() string { return fmt.Sprintf("timestamp<%s>", t.Precision) }
func (Timestamp) typeMarker()      {}
func (t Timestamp) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("timestamp").Combine(model.Fingerprint(t))
}

// String is the UTF-8 string type. Named String to match the domain
// vocabulary; it does not implement fmt.Stringer's String() string in a
// conflicting way since it still satisfies Type's String() method below.
type String struct{ common }

func NewString(opts ...Option) String { var c common; apply(&c, opts); return String{c} }
func (t String) String() string       { return "string" }
func (String) typeMarker()            {}
func (t String) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("string").Combine(model.Fingerprint(t))
}

// Null is the null type: its only value is null.
type Null struct{ common }

func NewNull(opts ...Option) Null { var c common; apply(&c, opts); return Null{c} }
func (t Null) String() string     { return "null" }
func (Null) typeMarker()          {}
func (t Null) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("null").Combine(model.Fingerprint(t))
}

// Geography is a geospatial value type (point/line/polygon, left opaque to
// a concrete representation here; see spec.md §1's scope note on
// type-system bridges).
type Geography struct{ common }

func NewGeography(opts ...Option) Geography { var c common; apply(&c, opts); return Geography{c} }
func (t Geography) String() string          { return "geography" }
func (Geography) typeMarker()               {}
func (t Geography) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("geography").Combine(model.Fingerprint(t))
}

///////////////////////////
// Container type variants //
///////////////////////////

// List is an ordered, homogeneously-typed container.
type List struct {
	common
	Element Type `json:"element"`
}

// NewList returns a new List Type over the given element Type.
func NewList(element Type, opts ...Option) List {
	var c common
	apply(&c, opts)
	return List{common: c, Element: element}
}
func (t List) String() string { return fmt.Sprintf("list<%s>", t.Element) }
func (List) typeMarker()      {}
func (t List) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("list").Combine(model.Fingerprint(t.common), t.Element.Fingerprint())
}

// Set is an unordered, unique, homogeneously-typed container.
type Set struct {
	common
	Element Type `json:"element"`
}

// NewSet returns a new Set Type over the given element Type.
func NewSet(element Type, opts ...Option) Set {
	var c common
	apply(&c, opts)
	return Set{common: c, Element: element}
}
func (t Set) String() string { return fmt.Sprintf("set<%s>", t.Element) }
func (Set) typeMarker()      {}
func (t Set) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("set").Combine(model.Fingerprint(t.common), t.Element.Fingerprint())
}

// Map is a homogeneously-typed key/value container.
type Map struct {
	common
	Key   Type `json:"key"`
	Value Type `json:"value"`
}

// NewMap returns a new Map Type over the given key/value Types.
func NewMap(key, value Type, opts ...Option) Map {
	var c common
	apply(&c, opts)
	return Map{common: c, Key: key, Value: value}
}
func (t Map) String() string { return fmt.Sprintf("map<%s, %s>", t.Key, t.Value) }
func (Map) typeMarker()      {}
func (t Map) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("map").Combine(model.Fingerprint(t.common), t.Key.Fingerprint(), t.Value.Fingerprint())
}

// Field is one named member of a Struct, kept in an ordered slice (rather
// than a Go map) so field order is stable for fingerprinting and for
// storage path layout, matching spec.md §3's "ordered map of name->Type".
type Field struct {
	Name string
	Type Type
}

// Struct is an ordered collection of named, heterogeneously-typed fields.
type Struct struct {
	common
	Fields []Field
}

// NewStruct returns a new Struct Type with the given ordered fields.
func NewStruct(fields []Field, opts ...Option) Struct {
	var c common
	apply(&c, opts)
	return Struct{common: c, Fields: fields}
}

func (t Struct) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	return fmt.Sprintf("struct<%s>", strings.Join(parts, ", "))
}
func (Struct) typeMarker() {}

func (t Struct) Fingerprint() fingerprint.Fingerprint {
	fps := []fingerprint.Fingerprint{model.Fingerprint(t.common)}
	for _, f := range t.Fields {
		fps = append(fps, fingerprint.FromString(f.Name), f.Type.Fingerprint())
	}
	return fingerprint.FromString("struct").Combine(fps...)
}

// FieldType returns the Type of the named field, if present.
func (t Struct) FieldType(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Collection is the only partitioned Type: a homogeneous collection of
// Struct-typed records, optionally partitioned and clustered by a subset
// of the Struct's fields.
type Collection struct {
	common
	Element     Struct   `json:"element"`
	PartitionBy []string `json:"partition_by,omitempty"`
	ClusterBy   []string `json:"cluster_by,omitempty"`
}

// NewCollection returns a new Collection Type, validating that every
// partition_by/cluster_by field name exists on the element Struct (spec.md
// §3's invariant).
func NewCollection(element Struct, partitionBy, clusterBy []string, opts ...Option) (Collection, error) {
	var c common
	apply(&c, opts)
	col := Collection{common: c, Element: element, PartitionBy: partitionBy, ClusterBy: clusterBy}
	if err := col.Validate(); err != nil {
		return Collection{}, err
	}
	return col, nil
}

// Validate checks the Collection invariant: partition_by (and cluster_by)
// fields must exist in the element Struct.
func (t Collection) Validate() error {
	for _, name := range t.PartitionBy {
		if _, ok := t.Element.FieldType(name); !ok {
			return errs.New(errs.ValidationErr, "collection: partition_by field %q not found in element struct", name)
		}
	}
	for _, name := range t.ClusterBy {
		if _, ok := t.Element.FieldType(name); !ok {
			return errs.New(errs.ValidationErr, "collection: cluster_by field %q not found in element struct", name)
		}
	}
	return nil
}

func (t Collection) String() string {
	return fmt.Sprintf("collection<%s, partition_by=%v>", t.Element, t.PartitionBy)
}
func (Collection) typeMarker() {}

func (t Collection) Fingerprint() fingerprint.Fingerprint {
	fps := []fingerprint.Fingerprint{model.Fingerprint(t.common), t.Element.Fingerprint()}
	for _, name := range t.PartitionBy {
		fps = append(fps, fingerprint.FromString("partition_by:"+name))
	}
	for _, name := range t.ClusterBy {
		fps = append(fps, fingerprint.FromString("cluster_by:"+name))
	}
	return fingerprint.FromString("collection").Combine(fps...)
}

// IsPartitioned reports whether this Collection declares any partition_by
// fields.
func (t Collection) IsPartitioned() bool {
	return len(t.PartitionBy) > 0
}

// Sprint renders a Type, or "???" for a nil Type, matching the teacher's
// types.Sprint helper used throughout diagnostics.
func Sprint(t Type) string {
	if t == nil {
		return "???"
	}
	return t.String()
}
