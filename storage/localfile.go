// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/partitions"
)

// LocalFilePartition is one file on local disk.
type LocalFilePartition struct {
	keys    partitions.CompositeKey
	inputFP fingerprint.Fingerprint
	Path    string
}

// Keys returns the CompositeKey naming this partition.
func (p LocalFilePartition) Keys() partitions.CompositeKey { return p.keys }

// InputFingerprint returns the input fingerprint embedded in this
// partition's path, Empty() for a raw partition.
func (p LocalFilePartition) InputFingerprint() fingerprint.Fingerprint { return p.inputFP }

// ComputeContentFingerprint streams the file through xxhash, mirroring
// the original implementation's buffered-SHA1-then-Fingerprint.from_string
// approach but using the project's own hash (cespare/xxhash/v2) directly
// over the byte stream instead of hex-encoding a digest first.
func (p LocalFilePartition) ComputeContentFingerprint(ctx context.Context) (fingerprint.Fingerprint, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return fingerprint.Fingerprint{}, errs.Wrap(err, errs.StorageErr, "reading %q", p.Path)
	}
	defer f.Close()

	h := xxhash.New()
	buf := make([]byte, 1<<20)
	for {
		if err := ctx.Err(); err != nil {
			return fingerprint.Fingerprint{}, err
		}
		n, readErr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fingerprint.Fingerprint{}, errs.Wrap(readErr, errs.StorageErr, "reading %q", p.Path)
		}
	}
	return fingerprint.FromUint64(h.Sum64()), nil
}

// LocalFile stores each partition as a file on local disk, named by a
// path template. Discovery walks the filesystem rooted at the template's
// longest literal-only prefix and matches each candidate file against the
// template's wildcard glob.
type LocalFile struct {
	spec *PathSpec
	path string
}

// NewLocalFile compiles path as a PathSpec and returns a LocalFile
// Storage over it.
func NewLocalFile(path string) (*LocalFile, error) {
	spec, err := Compile(path)
	if err != nil {
		return nil, err
	}
	return &LocalFile{spec: spec, path: path}, nil
}

// PathTemplate returns the raw path template.
func (s *LocalFile) PathTemplate() string { return s.path }

// IncludesInputFingerprintTemplate reports whether the template references
// {input_fingerprint}.
func (s *LocalFile) IncludesInputFingerprintTemplate() bool {
	return strings.Contains(s.path, "{input_fingerprint}")
}

// Supports reports that LocalFile can store partitioned or unpartitioned
// artifacts alike.
func (s *LocalFile) Supports(canPartition bool) error { return nil }

// ResolveGraphName substitutes {graph_name} for name, recompiling the
// path template.
func (s *LocalFile) ResolveGraphName(name string) Storage {
	return s.resolveSpecial(placeholderGraphName, name)
}

// ResolveNames substitutes {names} for the dot-joined names.
func (s *LocalFile) ResolveNames(names []string) Storage {
	return s.resolveSpecial(placeholderNames, strings.Join(names, "."))
}

// ResolvePathTags substitutes {path_tags} for the formatted tags mapping.
func (s *LocalFile) ResolvePathTags(tags map[string]string) Storage {
	return s.resolveSpecial(placeholderPathTags, formatPathTags(tags))
}

// resolveSpecial rewrites s's path template, substituting the named
// special placeholder, and recompiles it. A malformed substitution can
// only arise from a value containing pathspec syntax, which callers
// (graph names, dotted artifact paths, path tag values) never produce;
// a recompile failure here indicates a caller error, not a storage
// error, so it panics rather than threading an error through every
// Resolve* call site.
func (s *LocalFile) resolveSpecial(placeholder, value string) Storage {
	raw := s.spec.ResolveSpecial(map[string]string{placeholder: value})
	spec, err := Compile(raw)
	if err != nil {
		panic(errs.Wrap(err, errs.DefinitionErr, "localfile: resolving %q", raw))
	}
	return &LocalFile{spec: spec, path: raw}
}

// GeneratePartition renders the path template for keys/inputFingerprint
// without touching the filesystem.
func (s *LocalFile) GeneratePartition(keys partitions.CompositeKey, inputFingerprint fingerprint.Fingerprint) (StoragePartition, error) {
	fp := ""
	if v, ok := inputFingerprint.Int64(); ok {
		fp = fingerprint.FromInt64(v).String()
	} else if s.IncludesInputFingerprintTemplate() {
		return nil, errs.New(errs.ValidationErr,
			"localfile: an empty input fingerprint cannot be rendered into %q", s.path)
	}
	path, err := s.spec.Format(FormatArgs{Keys: keys, InputFingerprint: fp})
	if err != nil {
		return nil, err
	}
	return LocalFilePartition{keys: keys, inputFP: inputFingerprint, Path: path}, nil
}

// DiscoverPartitions walks the filesystem under the template's root,
// matching every regular file against the compiled wildcard and parsing
// matches back into partition keys.
func (s *LocalFile) DiscoverPartitions(ctx context.Context, keyTypeNames map[string]string) ([]StoragePartition, error) {
	g, err := s.spec.Wildcard()
	if err != nil {
		return nil, err
	}
	root := literalRoot(s.path)

	var out []StoragePartition
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !g.Match(path) {
			return nil
		}
		keys, inputFP, err := s.spec.ParsePartition(path, keyTypeNames)
		if err != nil {
			return nil
		}
		out = append(out, LocalFilePartition{keys: keys, inputFP: inputFP, Path: path})
		return nil
	})
	if walkErr != nil {
		return nil, errs.Wrap(walkErr, errs.StorageErr, "discovering partitions under %q", root)
	}
	return out, nil
}

// literalRoot returns the longest directory prefix of spec that contains
// no placeholder, so discovery doesn't have to walk the whole filesystem.
func literalRoot(spec string) string {
	if i := strings.IndexByte(spec, '{'); i >= 0 {
		spec = spec[:i]
	}
	dir := filepath.Dir(spec)
	if dir == "" {
		return "."
	}
	return dir
}
