// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package types

import (
	"sort"

	"github.com/artigraph/artigraph/errs"
)

// Adapter bridges Artigraph's Type model to and from one external system's
// native type representation (a dataframe library's dtypes, a SQL
// dialect's column types, and so on). Implementations register themselves
// with a TypeSystem at a priority; the first Adapter (by descending
// priority) whose MatchesArtigraph/MatchesSystem returns true wins.
type Adapter interface {
	// Name identifies the adapter for diagnostics.
	Name() string
	// MatchesArtigraph reports whether this adapter can convert t into the
	// external system's representation.
	MatchesArtigraph(t Type) bool
	// ToSystem converts an Artigraph Type into the external system's native
	// representation.
	ToSystem(t Type) (any, error)
	// MatchesSystem reports whether this adapter can convert the external
	// system value sys into an Artigraph Type.
	MatchesSystem(sys any) bool
	// ToArtigraph converts an external system value into an Artigraph Type.
	ToArtigraph(sys any) (Type, error)
}

type registeredAdapter struct {
	adapter  Adapter
	priority int
}

// System is a priority-ordered registry of Adapters, one per external type
// system a Format/IO implementation bridges to. Higher priority wins ties;
// among adapters of equal priority, the earliest registered wins.
type System struct {
	name     string
	adapters []registeredAdapter
}

// NewSystem returns a new, empty TypeSystem identified by name (for
// example "arrow" or "sql.postgres").
func NewSystem(name string) *System {
	return &System{name: name}
}

// Name returns the TypeSystem's identifying name.
func (s *System) Name() string { return s.name }

// RegisterAdapter adds an Adapter at the given priority. Adapters are
// consulted from highest to lowest priority.
func (s *System) RegisterAdapter(adapter Adapter, priority int) {
	s.adapters = append(s.adapters, registeredAdapter{adapter: adapter, priority: priority})
	sort.SliceStable(s.adapters, func(i, j int) bool {
		return s.adapters[i].priority > s.adapters[j].priority
	})
}

// Extend returns a new TypeSystem that consults this System's adapters
// first, falling back to other's adapters at a lower priority than any of
// this System's own. This lets a dialect-specific system (e.g.
// "sql.postgres") inherit a base system's ("sql") adapters without
// duplicating registrations.
func (s *System) Extend(name string, other *System) *System {
	merged := NewSystem(name)
	merged.adapters = append(merged.adapters, s.adapters...)
	minPriority := 0
	for _, ra := range s.adapters {
		if ra.priority < minPriority {
			minPriority = ra.priority
		}
	}
	// Shift other's adapters below every adapter of s while preserving
	// their relative order.
	maxOther := 0
	for i, ra := range other.adapters {
		if i == 0 || ra.priority > maxOther {
			maxOther = ra.priority
		}
	}
	offset := minPriority - 1 - maxOther
	for _, ra := range other.adapters {
		merged.adapters = append(merged.adapters, registeredAdapter{adapter: ra.adapter, priority: ra.priority + offset})
	}
	sort.SliceStable(merged.adapters, func(i, j int) bool {
		return merged.adapters[i].priority > merged.adapters[j].priority
	})
	return merged
}

// ToSystem converts an Artigraph Type to this TypeSystem's native
// representation using the highest-priority matching Adapter.
func (s *System) ToSystem(t Type) (any, error) {
	for _, ra := range s.adapters {
		if ra.adapter.MatchesArtigraph(t) {
			return ra.adapter.ToSystem(t)
		}
	}
	return nil, errs.New(errs.DispatchErr, "type system %q: no adapter for %s", s.name, Sprint(t))
}

// ToArtigraph converts a value native to this TypeSystem into an
// Artigraph Type using the highest-priority matching Adapter.
func (s *System) ToArtigraph(sys any) (Type, error) {
	for _, ra := range s.adapters {
		if ra.adapter.MatchesSystem(sys) {
			return ra.adapter.ToArtigraph(sys)
		}
	}
	return nil, errs.New(errs.DispatchErr, "type system %q: no adapter for system value %v", s.name, sys)
}
