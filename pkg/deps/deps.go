package deps

import (
	"strings"
)

// ghPrefix marks the keys that describe a dependency hosted on GitHub.
const ghPrefix = "GH"

// Attr names one attribute of a declared dependency.
type Attr string

// Declared dependency attributes.
const (
	AttrProject    Attr = "PROJECT"
	AttrTagPrefix  Attr = "TAG_PREFIX"
	AttrVersion    Attr = "VERSION"
	AttrVersionReq Attr = "VERSION_REQ"
)

// crateNameSuffix is the key suffix mapping a dependency to its crate name.
const crateNameSuffix = "_CRATE_NAME"

// Suffix returns the key suffix for a, e.g. "_GH_PROJECT".
func (a Attr) Suffix() string {
	return "_" + ghPrefix + "_" + string(a)
}

// Key returns the configuration key of attribute a for dependency name.
func Key(name string, a Attr) string {
	return strings.ToUpper(name) + a.Suffix()
}

// OutputKey returns the key written for name in a declaration file,
// e.g. "HYPER_VERSION".
func OutputKey(name string) string {
	return strings.ToUpper(name) + "_" + string(AttrVersion)
}

// Options configures descriptor construction.
type Options struct {
	Logger func(string, ...any) // Warning callback for lenient parses (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}
