// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package errs implements Artigraph's structured error kinds (spec.md §7).
// A single Error type generalizes the teacher's storage-layer
// Error{Code, Message} shape to the eight cross-cutting kinds this engine
// needs, from DefinitionError (a bad Producer/Artifact/Storage declaration)
// through BackendError (a metadata store failure).
package errs

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind identifies which of the eight error categories an Error belongs to.
type Kind int

const (
	// DefinitionErr: invalid Producer/Artifact/Type/Storage declaration,
	// detected at construction time or at builder sealing. Fatal.
	DefinitionErr Kind = iota
	// ValidationErr: a value violates a model invariant (e.g. raw storage
	// used for a produced artifact, partition_by field missing from the
	// struct, a storage that cannot be partitioned).
	ValidationErr
	// ResolutionErr: a topological cycle, a multi-output Producer assigned
	// to a single name, or a missing {input_fingerprint} template on a
	// produced Artifact.
	ResolutionErr
	// MissingDataErr: a raw Artifact has no partitions at snapshot time, or
	// a read found zero partitions where at least one was expected.
	MissingDataErr
	// BuildValidationFailureErr: a Producer's ValidateOutputs rejected a
	// built partition. No data is persisted for that partition.
	BuildValidationFailureErr
	// DispatchErr: no registered IO handler for a (Type, Format, Storage,
	// View) combination.
	DispatchErr
	// StorageErr: an underlying storage I/O failure.
	StorageErr
	// BackendErr: a metadata store failure.
	BackendErr
)

func (k Kind) String() string {
	switch k {
	case DefinitionErr:
		return "DefinitionError"
	case ValidationErr:
		return "ValidationError"
	case ResolutionErr:
		return "ResolutionError"
	case MissingDataErr:
		return "MissingDataError"
	case BuildValidationFailureErr:
		return "BuildValidationFailure"
	case DispatchErr:
		return "DispatchError"
	case StorageErr:
		return "StorageError"
	case BackendErr:
		return "BackendError"
	default:
		return "UnknownError"
	}
}

// Error is the error type returned by every Artigraph package for the
// kinds enumerated above.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of the given kind, formatted message, and cause.
// The cause is attached with github.com/pkg/errors so callers retain a
// stack trace from the original failure site, matching the teacher's own
// use of that library in bundle/bundle.go for wrapping I/O errors.
func Wrap(cause error, kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   pkgerrors.WithStack(cause),
	}
}

func is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsDefinition reports whether err is (or wraps) a DefinitionError.
func IsDefinition(err error) bool { return is(err, DefinitionErr) }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool { return is(err, ValidationErr) }

// IsResolution reports whether err is (or wraps) a ResolutionError.
func IsResolution(err error) bool { return is(err, ResolutionErr) }

// IsMissingData reports whether err is (or wraps) a MissingDataError.
func IsMissingData(err error) bool { return is(err, MissingDataErr) }

// IsBuildValidationFailure reports whether err is (or wraps) a
// BuildValidationFailure.
func IsBuildValidationFailure(err error) bool { return is(err, BuildValidationFailureErr) }

// IsDispatch reports whether err is (or wraps) a DispatchError.
func IsDispatch(err error) bool { return is(err, DispatchErr) }

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool { return is(err, StorageErr) }

// IsBackend reports whether err is (or wraps) a BackendError.
func IsBackend(err error) bool { return is(err, BackendErr) }
