package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/bjoernmichaelsen/ghdepup/pkg/deps"
	apperr "github.com/bjoernmichaelsen/ghdepup/pkg/errors"
	"github.com/bjoernmichaelsen/ghdepup/pkg/kv"
	"github.com/bjoernmichaelsen/ghdepup/pkg/manifest"
	"github.com/bjoernmichaelsen/ghdepup/pkg/render"
)

// Validate checks that opts describe a runnable update.
func (o Options) Validate() error {
	if len(o.Inputs) < MinInputs {
		return apperr.New(apperr.ErrCodeTooFewInputs,
			"at least two config files needed, but only %d found.", len(o.Inputs))
	}
	if o.Section != "" {
		return apperr.ValidateSection(o.Section)
	}
	return nil
}

// Validate checks that opts describe a runnable sync.
func (o SyncOptions) Validate() error {
	if len(o.Manifests) == 0 {
		return apperr.New(apperr.ErrCodeTooFewInputs, "no manifest to update")
	}
	if o.Section != "" {
		return apperr.ValidateSection(o.Section)
	}
	return nil
}

// validateCrates rejects crate names that cannot occur in a manifest.
func validateCrates(crates map[string]string) error {
	names := make([]string, 0, len(crates))
	for name := range crates {
		names = append(names, name)
	}
	slices.Sort(names)

	var errs []error
	for _, name := range names {
		if err := apperr.ValidateCrateName(crates[name]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return apperr.Collect(apperr.ErrCodeInvalidConfig, errs...)
}

func (o Options) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

// Execute runs a complete update: it reads every input, resolves all
// dependencies and then writes the declaration file (the last input) and
// every target manifest. Nothing is written unless the whole run succeeded.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	res := r.newResult()
	if err := opts.Validate(); err != nil {
		return r.finish(ctx, res, StateAborted, err)
	}

	store, err := kv.ReadFiles(opts.Inputs...)
	if err != nil {
		return r.finish(ctx, res, StateAborted, err)
	}
	if err := r.resolve(ctx, store, res); err != nil {
		return r.finish(ctx, res, StateAborted, err)
	}

	res.Rendered = render.Declarations(res.Descriptors, render.Options{Verbose: opts.Annotate})
	if opts.Debug {
		fmt.Fprint(opts.stdout(), render.Declarations(res.Descriptors, render.Options{Verbose: true}))
	}

	resolved := deps.ResolvedCrates(res.Descriptors, deps.CrateNames(store))
	edits, err := prepareAll(opts.Targets, opts.Section, resolved)
	if err != nil {
		return r.finish(ctx, res, StateAborted, err)
	}
	res.Updated = updatedNames(edits)

	if opts.DryRun {
		r.logger().Info("dry run, nothing written", "output", opts.Output(), "targets", len(edits))
		return r.finish(ctx, res, StateResolved, nil)
	}
	if err := ctx.Err(); err != nil {
		return r.finish(ctx, res, StateAborted, err)
	}

	all := append([]*manifest.Edit{manifest.NewEdit(opts.Output(), []byte(res.Rendered))}, edits...)
	res.Written, err = manifest.WriteAll(all)
	if err != nil {
		return r.finish(ctx, res, StateAborted, err)
	}
	return r.finish(ctx, res, StateWritten, nil)
}

// Sync copies pinned versions into structured manifests. Crate names come
// from opts.CratesFile, versions from opts.VersionsFile.
func (r *Runner) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	crateStore, err := kv.ReadFiles(opts.CratesFile)
	if err != nil {
		return nil, err
	}
	versionStore, err := kv.ReadFiles(opts.VersionsFile)
	if err != nil {
		return nil, err
	}

	crates := deps.CrateNames(crateStore)
	if err := validateCrates(crates); err != nil {
		return nil, err
	}
	pinned := deps.PinnedVersions(versionStore, crates)
	r.logger().Debug("pinned versions", "crates", len(crates), "versions", len(pinned))

	edits, err := prepareAll(opts.Manifests, opts.Section, pinned)
	if err != nil {
		return nil, err
	}
	res := &SyncResult{Updated: updatedNames(edits)}
	if opts.DryRun {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.Written, err = manifest.WriteAll(edits)
	for _, path := range res.Written {
		r.logger().Info("updated manifest", "path", path, "deps", len(res.Updated[path]))
	}
	return res, err
}

// =============================================================================
// Writing
// =============================================================================

// prepareAll computes every manifest rewrite in memory. All failures are
// reported together.
func prepareAll(paths []string, section string, resolved map[string]string) ([]*manifest.Edit, error) {
	edits := make([]*manifest.Edit, 0, len(paths))
	var errs []error
	for _, path := range paths {
		e, err := manifest.Prepare(path, section, resolved)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		edits = append(edits, e)
	}
	if err := apperr.Collect(apperr.ErrCodeInvalidManifest, errs...); err != nil {
		return nil, err
	}
	return edits, nil
}

func updatedNames(edits []*manifest.Edit) map[string][]string {
	out := make(map[string][]string, len(edits))
	for _, e := range edits {
		out[e.Path] = e.Updated
	}
	return out
}
