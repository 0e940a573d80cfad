package deps

import (
	"strings"

	"github.com/bjoernmichaelsen/ghdepup/pkg/kv"
)

// CrateNames maps dependency names to crate names using the
// <NAME>_CRATE_NAME keys of s. Non-string and empty values are skipped.
func CrateNames(s kv.Store) map[string]string {
	out := make(map[string]string)
	for _, key := range s.KeysWithSuffix(crateNameSuffix) {
		name := strings.ToLower(strings.TrimSuffix(key, crateNameSuffix))
		crate := s.StringOr(key, "")
		if name == "" || crate == "" {
			continue
		}
		out[name] = crate
	}
	return out
}

// PinnedVersion returns the version pinned for name in a versions file.
// <NAME>_GH_VERSION takes precedence over the rendered <NAME>_VERSION key.
func PinnedVersion(s kv.Store, name string) (string, bool) {
	for _, key := range []string{Key(name, AttrVersion), OutputKey(name)} {
		if v := s.StringOr(key, ""); v != "" {
			return v, true
		}
	}
	return "", false
}

// PinnedVersions returns, keyed by crate name, the versions pinned in s for
// every entry of crates. Dependencies without a pinned version are skipped.
func PinnedVersions(s kv.Store, crates map[string]string) map[string]string {
	out := make(map[string]string, len(crates))
	for name, crate := range crates {
		if v, ok := PinnedVersion(s, name); ok {
			out[crate] = v
		}
	}
	return out
}

// ResolvedCrates returns, keyed by crate name, the best versions of the
// descriptors that have one. A dependency without a mapping in crates uses
// its own name.
func ResolvedCrates(descs []*Descriptor, crates map[string]string) map[string]string {
	out := make(map[string]string)
	for _, d := range descs {
		crate, ok := crates[d.Name]
		if !ok {
			crate = d.Name
		}
		if best, ok := d.Best(); ok {
			out[crate] = best.String()
		}
	}
	return out
}
