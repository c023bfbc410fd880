// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package versions declares how a Producer's own identity (as opposed to
// its input data's identity) participates in its input fingerprint: a
// semantic version, a free-form string, or a build timestamp.
package versions

import (
	"time"

	mastsemver "github.com/Masterminds/semver/v3"

	"github.com/artigraph/artigraph/fingerprint"
)

// Version is a Producer's self-declared version, combined into every
// partition's input fingerprint alongside its input data's fingerprints.
type Version interface {
	Fingerprint() fingerprint.Fingerprint
	versionMarker()
}

// SemVer is a semantic version. Per the original implementation, only the
// major component participates in the fingerprint once major > 0: minor
// and patch bumps are assumed backward compatible and must not trigger a
// historical backfill. A major version bump (or any change while major
// is 0, still under initial development) does trigger one.
type SemVer struct {
	Major, Minor, Patch uint64
}

// ParseSemVer parses a "vX.Y.Z"-style string into a SemVer using
// Masterminds/semver, truncating build metadata/prerelease tags (which do
// not participate in Producer identity).
func ParseSemVer(s string) (SemVer, error) {
	v, err := mastsemver.NewVersion(s)
	if err != nil {
		return SemVer{}, err
	}
	return SemVer{Major: v.Major(), Minor: v.Minor(), Patch: v.Patch()}, nil
}

func (SemVer) versionMarker() {}

// Fingerprint combines only the major component once major > 0; below
// that, every component participates since 0.x is still pre-stable.
func (v SemVer) Fingerprint() fingerprint.Fingerprint {
	if v.Major > 0 {
		return fingerprint.FromString("semver").Combine(fingerprint.FromUint64(v.Major))
	}
	return fingerprint.FromString("semver").Combine(
		fingerprint.FromUint64(v.Major),
		fingerprint.FromUint64(v.Minor),
		fingerprint.FromUint64(v.Patch),
	)
}

// String is a free-form version identifier — typically source code,
// captured via the "source descriptor" idiom in the original
// implementation — whose fingerprint changes whenever its value changes.
type String struct {
	Value string
}

func (String) versionMarker() {}

func (v String) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("string-version").Combine(fingerprint.FromString(v.Value))
}

// Timestamp versions a Producer by a fixed point in time, forcing a
// rebuild any time it's bumped regardless of code or data changes.
type Timestamp struct {
	At time.Time
}

func (Timestamp) versionMarker() {}

func (v Timestamp) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.FromString("timestamp-version").Combine(fingerprint.FromString(v.At.UTC().Format(time.RFC3339Nano)))
}
