// Package semver resolves tag names into semantic versions and selects the
// best version under a constraint.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3. Versions
// are parsed strictly (MAJOR.MINOR.PATCH with optional pre-release and build
// metadata, no "v" prefix), so a tag prefix must be stripped before parsing.
//
// Constraints use the Masterminds grammar. Comma or space separated
// comparators are ANDed, "||" separates alternatives:
//   - ">=0.14, <1"
//   - "^1.2.0"
//   - "~1.4 || >=2.1"
//
// A comparator without an operator is a caret requirement, as in Cargo:
// "1.2" means "^1.2" (>=1.2.0, <2.0.0) and "0.14" means "^0.14"
// (>=0.14.0, <0.15.0). Wildcards such as "1.2.*" keep their meaning.
package semver

import (
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a semantic version. The zero value is "no version".
type Version struct {
	v *mm.Version
}

// Constraint is a parsed version requirement.
// A nil *Constraint matches every version.
type Constraint struct {
	c   *mm.Constraints
	raw string
}

// ParseVersion parses raw as a strict semantic version.
func ParseVersion(raw string) (Version, error) {
	v, err := mm.StrictNewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the canonical form of v, or "" for the zero Version.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// IsZero reports whether v holds no version.
func (v Version) IsZero() bool { return v.v == nil }

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ParseConstraint parses raw as a version requirement.
// Blank input is rejected; callers treat a missing requirement as nil.
func ParseConstraint(raw string) (*Constraint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("semver: parse constraint: empty requirement")
	}
	c, err := mm.NewConstraint(caretDefault(raw))
	if err != nil {
		return nil, fmt.Errorf("semver: parse constraint %q: %w", raw, err)
	}
	return &Constraint{c: c, raw: raw}, nil
}

// caretDefault prefixes every comparator that has no operator with "^".
// Hyphen ranges are left alone.
func caretDefault(raw string) string {
	if strings.Contains(raw, " - ") {
		return raw
	}
	alts := strings.Split(raw, "||")
	for i, alt := range alts {
		parts := strings.Split(alt, ",")
		for j, part := range parts {
			part = strings.TrimSpace(part)
			if isBare(part) {
				part = "^" + part
			}
			parts[j] = part
		}
		alts[i] = strings.Join(parts, ", ")
	}
	return strings.Join(alts, " || ")
}

func isBare(comparator string) bool {
	v := strings.TrimPrefix(comparator, "v")
	if v == "" || v[0] < '0' || v[0] > '9' {
		return false
	}
	return !strings.ContainsAny(v, "xX*")
}

// MustParseConstraint is like ParseConstraint but panics on error.
func MustParseConstraint(raw string) *Constraint {
	c, err := ParseConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the requirement as written, or "" for a nil constraint.
func (c *Constraint) String() string {
	if c == nil {
		return ""
	}
	return c.raw
}

// MarshalText implements encoding.TextMarshaler.
func (c *Constraint) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Satisfies reports whether v matches c. Every non-zero version satisfies a
// nil constraint; the zero Version satisfies nothing.
func Satisfies(v Version, c *Constraint) bool {
	if v.v == nil {
		return false
	}
	if c == nil {
		return true
	}
	return c.c.Check(v.v)
}

// Compare orders a and b by semantic version precedence, returning -1, 0 or 1.
//
// Versions with equal precedence that differ only in build metadata are
// ordered by comparing the metadata strings, which makes Compare a total
// order over distinct version strings. The zero Version sorts first.
func Compare(a, b Version) int {
	switch {
	case a.v == nil && b.v == nil:
		return 0
	case a.v == nil:
		return -1
	case b.v == nil:
		return 1
	}
	if c := a.v.Compare(b.v); c != 0 {
		return c
	}
	return strings.Compare(a.v.Metadata(), b.v.Metadata())
}

// ExtractVersions returns, in input order, the versions encoded by the tags
// that start with prefix. The prefix is stripped and the remainder parsed;
// tags without the prefix or with an unparseable remainder are skipped.
// Duplicates are kept. tags is not modified.
func ExtractVersions(tags []string, prefix string) []Version {
	var out []Version
	for _, tag := range tags {
		rest, ok := strings.CutPrefix(tag, prefix)
		if !ok {
			continue
		}
		v, err := ParseVersion(rest)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// SelectBest returns the highest version in versions that satisfies c.
// ok is false when versions is empty or nothing satisfies c. The result does
// not depend on the order of versions, and versions is not modified.
func SelectBest(versions []Version, c *Constraint) (best Version, ok bool) {
	for _, v := range versions {
		if !Satisfies(v, c) {
			continue
		}
		if !ok || Compare(v, best) > 0 {
			best = v
			ok = true
		}
	}
	return best, ok
}
