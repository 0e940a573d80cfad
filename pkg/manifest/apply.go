// Package manifest rewrites the pinned versions of dependency entries inside
// existing structured documents such as Cargo.toml.
//
// A document holds a section (by default "dependencies") mapping dependency
// names to either a bare version string or an attribute table:
//
//	[dependencies]
//	serde = "1"
//	hyper = { version = "0.14", features = ["full"] }
//
// Only the version attribute of table entries named in the resolved set is
// touched. Scalar entries are left as they are, and names missing from the
// section are never added.
//
// TOML documents are decoded and re-encoded with sorted keys, so repeated
// runs over unchanged input produce identical bytes. YAML documents are
// edited as a node tree and keep key order and comments; JSON documents are
// edited in place and keep their layout.
package manifest

import (
	"maps"
	"slices"
)

// DefaultSection is the section updated when none is given.
const DefaultSection = "dependencies"

// versionKey is the only attribute a mutation writes.
const versionKey = "version"

// Table maps dependency names to their entries.
type Table map[string]any

// ApplyVersions returns a copy of table in which every table-valued entry
// named in resolved has its version attribute set to the resolved value.
//
// Other attributes, scalar entries and entries without a resolved version
// are carried over unchanged. Names only present in resolved are ignored.
// The second result lists, sorted, the entries whose version changed.
// table is not modified.
func ApplyVersions(table Table, resolved map[string]string) (Table, []string) {
	out := make(Table, len(table))
	var updated []string
	for name, entry := range table {
		out[name] = entry

		version, ok := resolved[name]
		if !ok {
			continue
		}
		attrs, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		next := maps.Clone(attrs)
		if next == nil {
			next = make(map[string]any, 1)
		}
		next[versionKey] = version
		out[name] = next

		if cur, _ := attrs[versionKey].(string); cur != version {
			updated = append(updated, name)
		}
	}
	slices.Sort(updated)
	return out, updated
}
