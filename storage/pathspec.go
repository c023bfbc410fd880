// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package storage

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gobwas/glob"

	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/fingerprint"
	"github.com/artigraph/artigraph/partitions"
)

// Special placeholder names recognized by PathSpec in addition to
// "field.component" partition placeholders.
const (
	placeholderInputFingerprint = "input_fingerprint"
	placeholderGraphName        = "graph_name"
	placeholderPathTags         = "path_tags"
	placeholderNames            = "names"
	placeholderExtension        = "extension"
)

// token is one compiled piece of a PathSpec: either literal text or a
// placeholder.
type token struct {
	literal string // non-empty for a literal-text token

	// placeholder fields; zero values mean "not a placeholder token".
	field        string // partition field name, e.g. "day"
	component    string // key component, e.g. "Y"; empty for special tokens
	special      string // one of the placeholderXxx constants, or "" for a field token
	hardCoded    string
	hasHardCoded bool
}

func (t token) isPlaceholder() bool { return t.field != "" || t.special != "" }

// PathSpec is a compiled storage path template, implementing the
// "{field.component}" placeholder language described by the original
// implementation's string.Formatter-based spec_to_wildcard/extract_partition_keys
// helpers. Go has no equivalent of Python's str.Formatter/parse libraries,
// so the template is tokenized once at construction instead of re-parsed
// on every format/wildcard/parse call.
type PathSpec struct {
	raw    string
	tokens []token
}

// Compile parses a path template such as "data/{day.Y}/{day.m}/{day.d}/part-{input_fingerprint}.json"
// into a PathSpec.
func Compile(spec string) (*PathSpec, error) {
	ps := &PathSpec{raw: spec}
	rest := spec
	for len(rest) > 0 {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			ps.tokens = append(ps.tokens, token{literal: rest})
			break
		}
		if open > 0 {
			ps.tokens = append(ps.tokens, token{literal: rest[:open]})
		}
		close := strings.IndexByte(rest[open:], '}')
		if close < 0 {
			return nil, errs.New(errs.DefinitionErr, "pathspec: unterminated placeholder in %q", spec)
		}
		inner := rest[open+1 : open+close]
		tok, err := parsePlaceholder(inner)
		if err != nil {
			return nil, errs.Wrap(err, errs.DefinitionErr, "pathspec: %q", spec)
		}
		ps.tokens = append(ps.tokens, tok)
		rest = rest[open+close+1:]
	}
	return ps, nil
}

func parsePlaceholder(inner string) (token, error) {
	name := inner
	hardCoded := ""
	hasHardCoded := false
	if i := strings.IndexByte(inner, '['); i >= 0 && strings.HasSuffix(inner, "]") {
		name = inner[:i]
		hardCoded = inner[i+1 : len(inner)-1]
		hasHardCoded = true
	}

	switch name {
	case placeholderInputFingerprint, placeholderGraphName, placeholderPathTags, placeholderNames, placeholderExtension:
		return token{special: name, hardCoded: hardCoded, hasHardCoded: hasHardCoded}, nil
	}

	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 {
		return token{}, errs.New(errs.DefinitionErr,
			"%q cannot be used directly in a partition path; access one of its key components (e.g. %q)", name, name+".key")
	}
	return token{field: parts[0], component: parts[1], hardCoded: hardCoded, hasHardCoded: hasHardCoded}, nil
}

// FormatArgs supplies the values PathSpec.Format substitutes into a
// template.
type FormatArgs struct {
	Keys              partitions.CompositeKey
	InputFingerprint  string
	GraphName         string
	PathTags          map[string]string
	Names             []string
	Extension         string
}

// Format renders the PathSpec to a concrete path using args.
func (ps *PathSpec) Format(args FormatArgs) (string, error) {
	var b strings.Builder
	for _, t := range ps.tokens {
		if !t.isPlaceholder() {
			b.WriteString(t.literal)
			continue
		}
		if t.hasHardCoded {
			b.WriteString(t.hardCoded)
			continue
		}
		switch {
		case t.special == placeholderInputFingerprint:
			b.WriteString(args.InputFingerprint)
		case t.special == placeholderGraphName:
			b.WriteString(args.GraphName)
		case t.special == placeholderExtension:
			b.WriteString(args.Extension)
		case t.special == placeholderNames:
			b.WriteString(strings.Join(args.Names, "."))
		case t.special == placeholderPathTags:
			b.WriteString(formatPathTags(args.PathTags))
		case t.field != "":
			key, ok := args.Keys.Get(t.field)
			if !ok {
				return "", errs.New(errs.ResolutionErr, "pathspec: no partition key value for field %q", t.field)
			}
			comp, ok := key.KeyComponents()[t.component]
			if !ok {
				return "", errs.New(errs.ResolutionErr, "pathspec: field %q has no key component %q", t.field, t.component)
			}
			b.WriteString(comp)
		}
	}
	return b.String(), nil
}

func formatPathTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	names := make([]string, 0, len(tags))
	for k := range tags {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s=%s", k, tags[k])
	}
	return strings.Join(parts, "/")
}

// ResolveSpecial rewrites ps's raw template, substituting every
// non-hard-coded special placeholder (graph_name, names, path_tags) named
// in values with its literal replacement text, and leaving every other
// placeholder (partition fields, input_fingerprint, and any special
// placeholder absent from values) untouched. It returns the new raw
// template string for the caller to recompile via Compile, mirroring the
// original implementation's Storage.resolve_graph_name/resolve_names/
// resolve_path_tags, each of which rewrites the path template in place.
func (ps *PathSpec) ResolveSpecial(values map[string]string) string {
	var b strings.Builder
	for _, t := range ps.tokens {
		switch {
		case !t.isPlaceholder():
			b.WriteString(t.literal)
		case t.hasHardCoded:
			b.WriteString(t.hardCoded)
		case t.special != "":
			if v, ok := values[t.special]; ok {
				b.WriteString(v)
				continue
			}
			fmt.Fprintf(&b, "{%s}", t.special)
		default:
			fmt.Fprintf(&b, "{%s.%s}", t.field, t.component)
		}
	}
	return b.String()
}

// Wildcard compiles a glob.Glob matching any concretely-formatted instance
// of this PathSpec, replacing every non-hard-coded placeholder with a
// single-segment wildcard, as spec.md §4.4 describes discovery doing.
func (ps *PathSpec) Wildcard() (glob.Glob, error) {
	var b strings.Builder
	for _, t := range ps.tokens {
		switch {
		case !t.isPlaceholder():
			b.WriteString(t.literal)
		case t.hasHardCoded:
			b.WriteString(t.hardCoded)
		default:
			b.WriteString("*")
		}
	}
	g, err := glob.Compile(b.String(), '/')
	if err != nil {
		return nil, errs.Wrap(err, errs.DefinitionErr, "pathspec: compiling wildcard for %q", ps.raw)
	}
	return g, nil
}

// fieldNames returns every distinct partition field referenced by this
// PathSpec's non-hard-coded placeholders, in first-occurrence order.
func (ps *PathSpec) fieldNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, t := range ps.tokens {
		if t.field == "" || t.hasHardCoded || seen[t.field] {
			continue
		}
		seen[t.field] = true
		names = append(names, t.field)
	}
	return names
}

// captureRegexp compiles a regexp with one named capture group per
// "field.component" placeholder (named "field__component", since Go
// regexp group names cannot contain '.'), used to recover partition keys
// from a matched path. {input_fingerprint} is captured under its own
// name so a produced partition's input fingerprint round-trips through
// its path; hard-coded and other special placeholders are matched
// literally/non-capturing respectively. Field groups are non-greedy, so a
// negative input fingerprint right after a field ("7--42") splits as
// field "7" and fingerprint "-42".
func (ps *PathSpec) captureRegexp() (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, t := range ps.tokens {
		switch {
		case !t.isPlaceholder():
			b.WriteString(regexp.QuoteMeta(t.literal))
		case t.hasHardCoded:
			b.WriteString(regexp.QuoteMeta(t.hardCoded))
		case t.special == placeholderInputFingerprint:
			fmt.Fprintf(&b, "(?P<%s>-?[0-9]+)", placeholderInputFingerprint)
		case t.special != "":
			b.WriteString(`[^/]*`)
		default:
			fmt.Fprintf(&b, "(?P<%s>[^/]+?)", groupName(t.field, t.component))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, errs.Wrap(err, errs.DefinitionErr, "pathspec: compiling capture regexp for %q", ps.raw)
	}
	return re, nil
}

func groupName(field, component string) string {
	return field + "__" + component
}

// ParsePartitionKeys matches path against this PathSpec and parses the
// recovered components into a partitions.CompositeKey, using keyTypeNames
// to dispatch each field to the partitions.Key concrete type registered
// under that name (via partitions.FromKeyComponents).
func (ps *PathSpec) ParsePartitionKeys(path string, keyTypeNames map[string]string) (partitions.CompositeKey, error) {
	keys, _, err := ps.ParsePartition(path, keyTypeNames)
	return keys, err
}

// ParsePartition matches path against this PathSpec and recovers both the
// CompositeKey and — when the template carries {input_fingerprint} — the
// input fingerprint the partition was built under (Empty otherwise).
func (ps *PathSpec) ParsePartition(path string, keyTypeNames map[string]string) (partitions.CompositeKey, fingerprint.Fingerprint, error) {
	re, err := ps.captureRegexp()
	if err != nil {
		return partitions.CompositeKey{}, fingerprint.Empty(), err
	}
	match := re.FindStringSubmatch(path)
	if match == nil {
		return partitions.CompositeKey{}, fingerprint.Empty(), errs.New(errs.ResolutionErr, "pathspec: %q does not match %q", path, ps.raw)
	}

	inputFP := fingerprint.Empty()
	components := map[string]map[string]string{}
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		if name == placeholderInputFingerprint {
			v, err := strconv.ParseInt(match[i], 10, 64)
			if err != nil {
				return partitions.CompositeKey{}, fingerprint.Empty(),
					errs.Wrap(err, errs.ResolutionErr, "pathspec: bad input fingerprint %q in %q", match[i], path)
			}
			inputFP = fingerprint.FromInt64(v)
			continue
		}
		field, component, ok := splitGroupName(name)
		if !ok {
			continue
		}
		if components[field] == nil {
			components[field] = map[string]string{}
		}
		components[field][component] = match[i]
	}

	fields := make([]partitions.Field, 0, len(keyTypeNames))
	for _, name := range ps.fieldNames() {
		typeName, ok := keyTypeNames[name]
		if !ok {
			return partitions.CompositeKey{}, fingerprint.Empty(), errs.New(errs.ResolutionErr, "pathspec: no key type registered for field %q", name)
		}
		key, err := partitions.FromKeyComponents(typeName, components[name])
		if err != nil {
			return partitions.CompositeKey{}, fingerprint.Empty(), errs.Wrap(err, errs.ResolutionErr, "pathspec: parsing field %q", name)
		}
		fields = append(fields, partitions.Field{Name: name, Key: key})
	}
	if len(fields) != len(keyTypeNames) {
		return partitions.CompositeKey{}, fingerprint.Empty(), errs.New(errs.ResolutionErr,
			"pathspec: expected partition keys for %d field(s), found %d in %q", len(keyTypeNames), len(fields), path)
	}
	return partitions.New(fields...), inputFP, nil
}

func splitGroupName(name string) (field, component string, ok bool) {
	i := strings.LastIndex(name, "__")
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+2:], true
}
