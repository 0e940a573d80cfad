// Package render produces the flat declaration file written by an update run.
//
// # Overview
//
// Every resolved dependency becomes one line that sh, make, ini and TOML
// readers all understand:
//
//	HYPER_VERSION="0.14.28"
//
// A dependency without a best version still gets its line, with an empty
// value, so consumers can tell "no update available" from "not tracked".
//
// # Verbose Output
//
// With [Options.Verbose] each line is preceded by a comment block describing
// how the value was chosen:
//
//	# hyper
//	# from hyperium/hyper
//	# previous version: 0.14.26
//	# with tags: v0.14.26, v0.14.28, v1.0.0
//	# with versions: 0.14.26, 0.14.28, 1.0.0
//	HYPER_VERSION="0.14.28"
//
// # JSON
//
// [JSON] encodes the descriptors for machine consumers such as the resolve
// command and the HTTP API.
package render
