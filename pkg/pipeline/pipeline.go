// Package pipeline orchestrates a ghdepup run.
//
// A run moves through a fixed sequence of states:
//
//	Configured → Fetching → Resolved → Written
//
// with a single failure exit, Aborted, reachable from Configured (bad input)
// and Fetching (any tag fetch failed).
//
//   - Configured: descriptors are built from the configuration, nothing has
//     touched the network yet.
//   - Fetching: one tag request per dependency, issued concurrently. The run
//     only continues when every request succeeded.
//   - Resolved: candidate versions and the best version are derived for
//     every dependency.
//   - Written: the declaration file and all target manifests are written,
//     once, after everything was prepared in memory.
//
// # Usage
//
//	runner := pipeline.NewRunner(tagClient, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Inputs: []string{"deps.env", "versions.env"},
//	})
//
// [Runner.Resolve] runs the first three states only and is what the resolve
// command and the HTTP API use.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/bjoernmichaelsen/ghdepup/pkg/deps"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultConcurrency bounds the number of tag fetches in flight.
	DefaultConcurrency = 8

	// MinInputs is the number of config files a run needs; the last one is
	// also the output.
	MinInputs = 2
)

// =============================================================================
// States
// =============================================================================

// State is the phase a run is in.
type State int

const (
	StateConfigured State = iota
	StateFetching
	StateResolved
	StateWritten
	StateAborted
)

var stateNames = [...]string{
	StateConfigured: "Configured",
	StateFetching:   "Fetching",
	StateResolved:   "Resolved",
	StateWritten:    "Written",
	StateAborted:    "Aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// =============================================================================
// Collaborators
// =============================================================================

// TagSource lists the tags of a project.
type TagSource interface {
	// FetchTags returns the tag names of project. If refresh is true,
	// cached data is bypassed.
	FetchTags(ctx context.Context, project string, refresh bool) ([]string, error)
}

// TagSourceFunc adapts a function to TagSource.
type TagSourceFunc func(ctx context.Context, project string, refresh bool) ([]string, error)

// FetchTags calls f.
func (f TagSourceFunc) FetchTags(ctx context.Context, project string, refresh bool) ([]string, error) {
	return f(ctx, project, refresh)
}

// =============================================================================
// Options and Results
// =============================================================================

// Options configures [Runner.Execute].
type Options struct {
	Inputs   []string  // Config files, concatenated; the last is also the output
	Targets  []string  // Structured manifests to update (optional)
	Section  string    // Manifest section, manifest.DefaultSection if empty
	DryRun   bool      // Resolve and prepare, but write nothing
	Debug    bool      // Print the annotated rendering to Stdout
	Annotate bool      // Write the annotated rendering to the output file
	Stdout   io.Writer // Debug destination, os.Stdout if nil
}

// Output returns the declaration file path, the last input.
func (o Options) Output() string {
	if len(o.Inputs) == 0 {
		return ""
	}
	return o.Inputs[len(o.Inputs)-1]
}

// Result describes one run.
type Result struct {
	RunID       string             `json:"run_id"`
	State       State              `json:"state"`
	Descriptors []*deps.Descriptor `json:"dependencies"`
	Started     time.Time          `json:"started"`
	Duration    time.Duration      `json:"duration"`

	// Filled by Execute.
	Rendered string              `json:"-"`
	Written  []string            `json:"written,omitempty"`
	Updated  map[string][]string `json:"updated,omitempty"`
}

// Lookup returns the descriptor named name.
func (r *Result) Lookup(name string) (*deps.Descriptor, bool) {
	for _, d := range r.Descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// SyncOptions configures [Runner.Sync].
type SyncOptions struct {
	CratesFile   string   // Declares <NAME>_CRATE_NAME keys
	VersionsFile string   // Declares <NAME>_GH_VERSION or <NAME>_VERSION keys
	Manifests    []string // Structured manifests to update
	Section      string   // manifest.DefaultSection if empty
	DryRun       bool
}

// SyncResult lists, per manifest, the entries whose version changed.
type SyncResult struct {
	Updated map[string][]string
	Written []string
}
