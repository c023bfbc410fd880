// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package fingerprint implements Artigraph's content-addressed identity
// value: a 64-bit signed integer that can be combined independent of order.
package fingerprint

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a 64-bit content-addressed identity. The zero value is not
// a valid Fingerprint on its own; use Empty, Identity, or one of the From*
// constructors.
//
// Two "special" Fingerprints exist:
//   - Empty(): combining anything with it returns Empty() again (it is
//     infectious, standing in for "no identity is available").
//   - Identity(): combining anything with it returns the other value
//     unchanged.
type Fingerprint struct {
	valid bool
	value int64
}

// Empty returns a Fingerprint that, when combined with any other
// Fingerprint, yields Empty() again.
func Empty() Fingerprint {
	return Fingerprint{valid: false}
}

// Identity returns a Fingerprint that, when combined, returns the other
// Fingerprint unchanged.
func Identity() Fingerprint {
	return Fingerprint{valid: true, value: 0}
}

// FromInt64 returns a Fingerprint wrapping the given signed integer.
func FromInt64(x int64) Fingerprint {
	return Fingerprint{valid: true, value: x}
}

// FromUint64 returns a Fingerprint, reinterpreting the given unsigned
// integer as signed via two's complement.
func FromUint64(x uint64) Fingerprint {
	return FromInt64(int64(x))
}

// FromString fingerprints an arbitrary string.
//
// The reference implementation hashes with Farmhash64; that library has no
// Go equivalent available in this project's dependency set, so xxhash64 is
// used instead, reinterpreted to a signed int64 via two's complement. Both
// are fast, well-distributed 64-bit content hashes, so the substitution
// preserves every invariant this package relies on (order independence
// comes from Combine's XOR, not from the hash).
func FromString(s string) Fingerprint {
	return FromUint64(xxhash.Sum64String(s))
}

// FromBytes fingerprints an arbitrary byte slice.
func FromBytes(b []byte) Fingerprint {
	return FromUint64(xxhash.Sum64(b))
}

// IsEmpty reports whether f is Empty().
func (f Fingerprint) IsEmpty() bool {
	return !f.valid
}

// IsIdentity reports whether f is Identity().
func (f Fingerprint) IsIdentity() bool {
	return f.valid && f.value == 0
}

// Int64 returns the underlying signed integer and whether f is non-empty.
func (f Fingerprint) Int64() (int64, bool) {
	return f.value, f.valid
}

// Combine XORs f with every other Fingerprint, in order. Combine is
// associative and commutative over non-empty operands: combining any two
// orderings of the same set yields the same result. If any operand
// (including the receiver) is Empty(), the result is Empty().
func (f Fingerprint) Combine(others ...Fingerprint) Fingerprint {
	acc := f
	for _, other := range others {
		acc = acc.combinePair(other)
	}
	return acc
}

func (f Fingerprint) combinePair(other Fingerprint) Fingerprint {
	if !f.valid || !other.valid {
		return Empty()
	}
	return Fingerprint{valid: true, value: f.value ^ other.value}
}

// Combine is a free-function convenience wrapper combining a variadic list
// of Fingerprints left to right, starting from Identity(). This is the
// usual way to fold many Fingerprints (e.g. every named Artifact in a
// Graph) into one.
func Combine(fs ...Fingerprint) Fingerprint {
	return Identity().Combine(fs...)
}

// CombineUnordered combines a set of Fingerprints whose relative order must
// not affect the result (e.g. per-partition input fingerprints, or raw
// partition content fingerprints discovered in arbitrary order). Since XOR
// combine is already order-independent, this is equivalent to Combine, but
// the distinct name documents the caller's intent at call sites like
// GraphSnapshot id computation and Producer.ComputeInputFingerprint.
func CombineUnordered(fs ...Fingerprint) Fingerprint {
	sorted := make([]Fingerprint, len(fs))
	copy(sorted, fs)
	sort.Slice(sorted, func(i, j int) bool {
		iv, iok := sorted[i].Int64()
		jv, jok := sorted[j].Int64()
		if iok != jok {
			return !iok
		}
		return iv < jv
	})
	return Combine(sorted...)
}

// String renders the Fingerprint as a signed decimal, or "empty" for
// Empty(). Per the storage path-template contract, an Empty Fingerprint
// MUST NOT be rendered into a path; callers needing that representation
// should check IsEmpty first and treat it as an error.
func (f Fingerprint) String() string {
	if !f.valid {
		return "empty"
	}
	return strconv.FormatInt(f.value, 10)
}

// MarshalJSON renders the integer value, or JSON null for Empty().
func (f Fingerprint) MarshalJSON() ([]byte, error) {
	if !f.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.value, 10)), nil
}

// UnmarshalJSON parses either a JSON null (Empty()) or a signed integer.
func (f *Fingerprint) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*f = Empty()
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("fingerprint: invalid JSON value %q: %w", s, err)
	}
	*f = FromInt64(v)
	return nil
}

// Equal reports whether f and other represent the same Fingerprint,
// including the Empty()-equals-Empty() case.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.valid == other.valid && (!f.valid || f.value == other.value)
}
