// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package partitions implements the typed partition-key values a
// Collection's partition_by fields resolve to, and CompositeKey, the
// ordered tuple of those values that names one partition.
package partitions

import (
	"fmt"
	"strconv"
	"time"

	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
)

// Key is a single partition field's value. Each concrete Key also exposes
// a set of named "key components" (e.g. a DateKey exposes Y/m/d/iso) used
// when substituting partition values into a storage path template.
type Key interface {
	fmt.Stringer
	// KeyComponents returns every named component this Key can render,
	// including the canonical "key" component.
	KeyComponents() map[string]string
	// Fingerprint derives a content Fingerprint for this Key's value.
	Fingerprint() fingerprint.Fingerprint
	keyMarker()
}

// parser is the from_key_components dispatch a concrete Key type registers
// under its type name.
type parser func(components map[string]string) (Key, error)

var parsers = map[string]parser{}

func registerParser(typeName string, p parser) {
	parsers[typeName] = p
}

// FromKeyComponents parses a Key of the named concrete type from a set of
// key components (as recovered from a storage path template match),
// mirroring the Python PartitionKey.from_key_components classmethod
// dispatch.
func FromKeyComponents(typeName string, components map[string]string) (Key, error) {
	p, ok := parsers[typeName]
	if !ok {
		return nil, errs.New(errs.ResolutionErr, "partitions: no Key type registered as %q", typeName)
	}
	return p(components)
}

// DateKey partitions by calendar date.
type DateKey struct {
	Key time.Time
}

func init() {
	registerParser("DateKey", func(c map[string]string) (Key, error) {
		switch {
		case has(c, "key"):
			return parseDateKey(c["key"])
		case has(c, "iso"):
			return parseDateKey(c["iso"])
		case has(c, "Y", "m", "d"):
			y, err := strconv.Atoi(c["Y"])
			if err != nil {
				return nil, errs.Wrap(err, errs.ResolutionErr, "DateKey: bad year %q", c["Y"])
			}
			m, err := strconv.Atoi(c["m"])
			if err != nil {
				return nil, errs.Wrap(err, errs.ResolutionErr, "DateKey: bad month %q", c["m"])
			}
			d, err := strconv.Atoi(c["d"])
			if err != nil {
				return nil, errs.Wrap(err, errs.ResolutionErr, "DateKey: bad day %q", c["d"])
			}
			return DateKey{Key: time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)}, nil
		default:
			return nil, errs.New(errs.ResolutionErr, "DateKey: cannot parse from components %v", keys(c))
		}
	})
}

func parseDateKey(iso string) (Key, error) {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return nil, errs.Wrap(err, errs.ResolutionErr, "DateKey: bad iso date %q", iso)
	}
	return DateKey{Key: t}, nil
}

func (k DateKey) String() string { return k.Key.Format("2006-01-02") }
func (DateKey) keyMarker()       {}

// KeyComponents returns key, Y, m, d, and iso components.
func (k DateKey) KeyComponents() map[string]string {
	return map[string]string{
		"key": k.String(),
		"Y":   strconv.Itoa(k.Key.Year()),
		"m":   fmt.Sprintf("%02d", int(k.Key.Month())),
		"d":   fmt.Sprintf("%02d", k.Key.Day()),
		"iso": k.String(),
	}
}

func (k DateKey) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("DateKey:" + k.String())
}

// Int8Key, Int16Key, Int32Key, and Int64Key partition by a signed integer
// value of the matching width. Each exposes key (decimal) and hex
// components and parses back from either.
type Int8Key struct {
	Key int8
}

// Int16Key partitions by an int16 value.
type Int16Key struct {
	Key int16
}

// Int32Key partitions by an int32 value.
type Int32Key struct {
	Key int32
}

// Int64Key partitions by an int64 value.
type Int64Key struct {
	Key int64
}

func init() {
	registerParser("Int8Key", intParser(8, func(v int64) Key { return Int8Key{Key: int8(v)} }))
	registerParser("Int16Key", intParser(16, func(v int64) Key { return Int16Key{Key: int16(v)} }))
	registerParser("Int32Key", intParser(32, func(v int64) Key { return Int32Key{Key: int32(v)} }))
	registerParser("Int64Key", intParser(64, func(v int64) Key { return Int64Key{Key: v} }))
}

// intParser builds the from_key_components parser shared by the four
// integer Key widths: accept {key} as decimal or {hex} as base-16, bounds
// checked against the width.
func intParser(bits int, wrap func(int64) Key) parser {
	return func(c map[string]string) (Key, error) {
		switch {
		case has(c, "key"):
			v, err := strconv.ParseInt(c["key"], 10, bits)
			if err != nil {
				return nil, errs.Wrap(err, errs.ResolutionErr, "Int%dKey: bad value %q", bits, c["key"])
			}
			return wrap(v), nil
		case has(c, "hex"):
			v, err := strconv.ParseInt(c["hex"], 16, bits)
			if err != nil {
				return nil, errs.Wrap(err, errs.ResolutionErr, "Int%dKey: bad hex value %q", bits, c["hex"])
			}
			return wrap(v), nil
		default:
			return nil, errs.New(errs.ResolutionErr, "Int%dKey: cannot parse from components %v", bits, keys(c))
		}
	}
}

func intComponents(v int64) map[string]string {
	return map[string]string{
		"key": strconv.FormatInt(v, 10),
		"hex": fmt.Sprintf("%x", v),
	}
}

func (k Int8Key) String() string { return strconv.FormatInt(int64(k.Key), 10) }
func (Int8Key) keyMarker()       {}

// KeyComponents returns key and hex components.
func (k Int8Key) KeyComponents() map[string]string { return intComponents(int64(k.Key)) }

func (k Int8Key) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("Int8Key:" + k.String())
}

func (k Int16Key) String() string { return strconv.FormatInt(int64(k.Key), 10) }
func (Int16Key) keyMarker()       {}

// KeyComponents returns key and hex components.
func (k Int16Key) KeyComponents() map[string]string { return intComponents(int64(k.Key)) }

func (k Int16Key) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("Int16Key:" + k.String())
}

func (k Int32Key) String() string { return strconv.FormatInt(int64(k.Key), 10) }
func (Int32Key) keyMarker()       {}

// KeyComponents returns key and hex components.
func (k Int32Key) KeyComponents() map[string]string { return intComponents(int64(k.Key)) }

func (k Int32Key) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("Int32Key:" + k.String())
}

func (k Int64Key) String() string { return strconv.FormatInt(k.Key, 10) }
func (Int64Key) keyMarker()       {}

// KeyComponents returns key and hex components.
func (k Int64Key) KeyComponents() map[string]string { return intComponents(k.Key) }

func (k Int64Key) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("Int64Key:" + k.String())
}

// NullKey is the single-valued Key used for a partition_by field whose
// type is Null.
type NullKey struct{}

func init() {
	registerParser("NullKey", func(c map[string]string) (Key, error) {
		if has(c, "key") && c["key"] != "None" {
			return nil, errs.New(errs.ResolutionErr, "NullKey: can only be used with 'None', got %q", c["key"])
		}
		return NullKey{}, nil
	})
}

func (NullKey) String() string                    { return "None" }
func (NullKey) keyMarker()                        {}
func (NullKey) KeyComponents() map[string]string  { return map[string]string{"key": "None"} }
func (NullKey) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("NullKey")
}

func has(c map[string]string, names ...string) bool {
	if len(c) != len(names) {
		return false
	}
	for _, n := range names {
		if _, ok := c[n]; !ok {
			return false
		}
	}
	return true
}

func keys(c map[string]string) []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	return out
}
