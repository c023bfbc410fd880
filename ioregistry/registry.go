// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package ioregistry dispatches a Read or Write of one Artifact partition
// to the handler registered for its (Type, Format, Storage, View)
// 4-tuple, the Go equivalent of the original implementation's
// multimethod-based arti.io.read/write multidispatch.
package ioregistry

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/formats"
	"github.com/artigraph/artigraph/storage"
	"github.com/artigraph/artigraph/views"
)

// ReadFunc reads every given StoragePartition in the given Format into
// the shape described by view, returning a value of view's GoType.
type ReadFunc func(ctx context.Context, parts []storage.StoragePartition, format formats.Format, view views.View) (any, error)

// WriteFunc encodes data (of view's GoType) in the given Format and
// writes it to part.
type WriteFunc func(ctx context.Context, data any, format formats.Format, part storage.StoragePartition, view views.View) error

// key identifies one registration by the reflect.Type of each of the four
// dispatch axes. A registration's Type/Format/Storage/View may be an
// interface type, matched via AssignableTo/Implements against a concrete
// dispatch request — this is how a handler can cover every Storage
// implementing a shared behavior without one registration per concrete
// type.
type key struct {
	typ     reflect.Type
	format  reflect.Type
	storage reflect.Type
	view    reflect.Type
}

type readEntry struct {
	key key
	fn  ReadFunc
}

type writeEntry struct {
	key key
	fn  WriteFunc
}

// Registry is a mutex-guarded, append-only registry of Read/Write
// handlers, memoized by a golang-lru/v2 cache so repeated dispatch in a
// hot executor loop doesn't re-walk every registration.
type Registry struct {
	mu      sync.RWMutex
	reads   []readEntry
	writes  []writeEntry
	readMemo  *lru.Cache[key, *readEntry]
	writeMemo *lru.Cache[key, *writeEntry]
}

// New returns an empty Registry with a dispatch-resolution cache sized
// for cacheSize distinct (Type,Format,Storage,View) combinations.
func New(cacheSize int) *Registry {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	readMemo, _ := lru.New[key, *readEntry](cacheSize)
	writeMemo, _ := lru.New[key, *writeEntry](cacheSize)
	return &Registry{readMemo: readMemo, writeMemo: writeMemo}
}

// RegisterRead registers fn as the handler for reading typ/format/storage
// items into viewType. Each argument is a zero value (or nil pointer) of
// the type to match against; pass an interface value to match any
// implementation.
func RegisterRead(r *Registry, typ, format, storageType, viewType any, fn ReadFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads = append(r.reads, readEntry{key: newKey(typ, format, storageType, viewType), fn: fn})
	r.readMemo.Purge()
}

// RegisterWrite registers fn as the handler for writing viewType values
// as typ/format into storageType.
func RegisterWrite(r *Registry, typ, format, storageType, viewType any, fn WriteFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, writeEntry{key: newKey(typ, format, storageType, viewType), fn: fn})
	r.writeMemo.Purge()
}

func newKey(typ, format, storageType, viewType any) key {
	return key{
		typ:     typeOf(typ),
		format:  typeOf(format),
		storage: typeOf(storageType),
		view:    typeOf(viewType),
	}
}

func typeOf(v any) reflect.Type {
	if t, ok := v.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(v)
}

// Read dispatches to the registered ReadFunc matching (Type, Format,
// Storage, View), most-recently-registered match wins among ties.
func (r *Registry) Read(ctx context.Context, t any, format formats.Format, parts []storage.StoragePartition, view views.View) (any, error) {
	dispatchKey := key{
		typ:     reflect.TypeOf(t),
		format:  reflect.TypeOf(format),
		storage: storagePartitionType(parts),
		view:    reflect.TypeOf(view),
	}

	r.mu.RLock()
	if cached, ok := r.readMemo.Get(dispatchKey); ok {
		r.mu.RUnlock()
		return cached.fn(ctx, parts, format, view)
	}
	var match *readEntry
	for i := len(r.reads) - 1; i >= 0; i-- {
		e := r.reads[i]
		if matches(e.key, dispatchKey) {
			match = &e
			break
		}
	}
	r.mu.RUnlock()

	if match == nil {
		return nil, errs.New(errs.DispatchErr, "ioregistry: no read handler for %s", describeKey(dispatchKey))
	}
	r.mu.Lock()
	r.readMemo.Add(dispatchKey, match)
	r.mu.Unlock()
	return match.fn(ctx, parts, format, view)
}

// Write dispatches to the registered WriteFunc matching (Type, Format,
// Storage, View).
func (r *Registry) Write(ctx context.Context, data any, t any, format formats.Format, part storage.StoragePartition, view views.View) error {
	dispatchKey := key{
		typ:     reflect.TypeOf(t),
		format:  reflect.TypeOf(format),
		storage: reflect.TypeOf(part),
		view:    reflect.TypeOf(view),
	}

	r.mu.RLock()
	if cached, ok := r.writeMemo.Get(dispatchKey); ok {
		r.mu.RUnlock()
		return cached.fn(ctx, data, format, part, view)
	}
	var match *writeEntry
	for i := len(r.writes) - 1; i >= 0; i-- {
		e := r.writes[i]
		if matches(e.key, dispatchKey) {
			match = &e
			break
		}
	}
	r.mu.RUnlock()

	if match == nil {
		return errs.New(errs.DispatchErr, "ioregistry: no write handler for %s", describeKey(dispatchKey))
	}
	r.mu.Lock()
	r.writeMemo.Add(dispatchKey, match)
	r.mu.Unlock()
	return match.fn(ctx, data, format, part, view)
}

// matches reports whether a registration key covers a dispatch request
// key, treating a registration's type as an upper bound: either the exact
// same type, or an interface the request type implements.
func matches(registered, request key) bool {
	return typeMatches(registered.typ, request.typ) &&
		typeMatches(registered.format, request.format) &&
		typeMatches(registered.storage, request.storage) &&
		typeMatches(registered.view, request.view)
}

func typeMatches(registered, request reflect.Type) bool {
	if registered == nil || request == nil {
		return registered == request
	}
	if registered == request {
		return true
	}
	if registered.Kind() == reflect.Interface {
		return request.Implements(registered)
	}
	return request.AssignableTo(registered)
}

func storagePartitionType(parts []storage.StoragePartition) reflect.Type {
	if len(parts) == 0 {
		return nil
	}
	return reflect.TypeOf(parts[0])
}

func describeKey(k key) string {
	return fmt.Sprintf("type=%v format=%v storage=%v view=%v", k.typ, k.format, k.storage, k.view)
}
