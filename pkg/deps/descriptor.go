package deps

import (
	"errors"
	"slices"
	"strings"

	"github.com/bjoernmichaelsen/ghdepup/pkg/kv"
	"github.com/bjoernmichaelsen/ghdepup/pkg/semver"
)

// Descriptor is the declared configuration plus the derived version state of
// one tracked dependency.
//
// AvailableVersions is derived from (AvailableTags, TagPrefix) and
// BestVersion from (AvailableVersions, VersionReq). A descriptor is owned by
// a single goroutine at a time.
type Descriptor struct {
	Name              string             `json:"name"`
	Project           string             `json:"project"`
	TagPrefix         string             `json:"tag_prefix"`
	VersionReq        *semver.Constraint `json:"version_req"`
	CurrentVersion    semver.Version     `json:"current_version"`
	AvailableTags     []string           `json:"available_tags"`
	AvailableVersions []semver.Version   `json:"available_versions"`
	BestVersion       semver.Version     `json:"best_version"`
}

// DiscoverNames returns the sorted, lower-cased names of all dependencies
// that declare a project key.
func DiscoverNames(s kv.Store) []string {
	suffix := AttrProject.Suffix()
	seen := make(map[string]bool)
	var names []string
	for _, key := range s.KeysWithSuffix(suffix) {
		name := strings.ToLower(strings.TrimSuffix(key, suffix))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build creates the descriptor for name from s.
// Missing or mistyped values yield empty fields; Build never fails.
func Build(s kv.Store, name string, opts Options) *Descriptor {
	opts = opts.WithDefaults()
	name = strings.ToLower(name)

	d := &Descriptor{
		Name:      name,
		Project:   lookup(s, name, AttrProject, opts),
		TagPrefix: lookup(s, name, AttrTagPrefix, opts),
	}

	if raw := lookup(s, name, AttrVersionReq, opts); strings.TrimSpace(raw) != "" {
		c, err := semver.ParseConstraint(raw)
		if err != nil {
			opts.Logger("%s: ignoring version requirement: %v", name, err)
		} else {
			d.VersionReq = c
		}
	}

	if raw := lookup(s, name, AttrVersion, opts); raw != "" {
		v, err := semver.ParseVersion(raw)
		if err != nil {
			opts.Logger("%s: ignoring current version: %v", name, err)
		} else {
			d.CurrentVersion = v
		}
	}

	return d
}

// BuildAll creates one descriptor per discovered name, in name order.
func BuildAll(s kv.Store, opts Options) []*Descriptor {
	names := DiscoverNames(s)
	out := make([]*Descriptor, len(names))
	for i, name := range names {
		out[i] = Build(s, name, opts)
	}
	return out
}

func lookup(s kv.Store, name string, a Attr, opts Options) string {
	key := Key(name, a)
	v, err := s.String(key)
	if err != nil {
		if errors.Is(err, kv.ErrWrongType) {
			opts.Logger("%s: ignoring %s: %v", name, key, err)
		}
		return ""
	}
	return v
}

// SetTags stores the tags fetched for the project. Derived versions are
// cleared until the next [Descriptor.Resolve].
func (d *Descriptor) SetTags(tags []string) {
	d.AvailableTags = slices.Clone(tags)
	d.AvailableVersions = nil
	d.BestVersion = semver.Version{}
}

// UpdateVersions derives AvailableVersions from AvailableTags and TagPrefix.
func (d *Descriptor) UpdateVersions() {
	d.AvailableVersions = semver.ExtractVersions(d.AvailableTags, d.TagPrefix)
}

// UpdateBest derives BestVersion from AvailableVersions and VersionReq.
func (d *Descriptor) UpdateBest() {
	d.BestVersion, _ = semver.SelectBest(d.AvailableVersions, d.VersionReq)
}

// Resolve derives the candidate versions and then the best version.
func (d *Descriptor) Resolve() {
	d.UpdateVersions()
	d.UpdateBest()
}

// Best returns the best version, if one was found.
func (d *Descriptor) Best() (semver.Version, bool) {
	return d.BestVersion, !d.BestVersion.IsZero()
}

// BestString returns the best version as a string, "" if there is none.
func (d *Descriptor) BestString() string { return d.BestVersion.String() }

// CurrentString returns the pinned version as a string, "" if there is none.
func (d *Descriptor) CurrentString() string { return d.CurrentVersion.String() }

// HasUpdate reports whether a best version exists and differs from the pin.
func (d *Descriptor) HasUpdate() bool {
	best, ok := d.Best()
	return ok && semver.Compare(best, d.CurrentVersion) != 0
}
