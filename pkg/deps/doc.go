// Package deps models the external dependencies tracked by ghdepup.
//
// # Overview
//
// Every tracked dependency is declared in flat configuration with four keys
// built from its upper-cased name:
//
//	<NAME>_GH_PROJECT       owner/repository handed to the tag source
//	<NAME>_GH_TAG_PREFIX    literal prefix a tag needs before its version part
//	<NAME>_GH_VERSION_REQ   optional version requirement (">=0.14, <1")
//	<NAME>_GH_VERSION       optional currently pinned version (informational)
//
// [DiscoverNames] finds the names by scanning for the project key, and
// [Build] turns one name into a [Descriptor]. Construction never fails: a
// missing or malformed value leaves the field at its empty default, and an
// unparseable requirement means "match anything".
//
// # Lifecycle
//
// A descriptor is built once, receives the tags fetched for its project
// ([Descriptor.SetTags]) and then derives its candidate and best versions
// ([Descriptor.Resolve]):
//
//	d := deps.Build(store, "hyper", deps.Options{})
//	d.SetTags(tags)
//	d.Resolve()
//	best, ok := d.Best()
//
// # Crate Mapping
//
// The self-update flow maps dependency names to crate names with
// <NAME>_CRATE_NAME keys ([CrateNames]) and reads pinned versions from a
// versions file ([PinnedVersions]).
package deps
