package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bjoernmichaelsen/ghdepup/pkg/manifest"
	"github.com/bjoernmichaelsen/ghdepup/pkg/pipeline"
)

// syncCommand creates the sync command.
func (c *CLI) syncCommand() *cobra.Command {
	var (
		section string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "sync <crates-file> <versions-file> <manifest>...",
		Short: "Copy pinned versions into manifests",
		Long: `Map dependencies to crate names with the <NAME>_CRATE_NAME keys of the
crates file and set the version of each crate found in the manifests to the
version pinned in the versions file (<NAME>_GH_VERSION or <NAME>_VERSION).

No network access is needed.

Example:
  ghdepup sync crates.env versions.env Cargo.toml sub/Cargo.toml`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd.Context(), pipeline.SyncOptions{
				CratesFile:   args[0],
				VersionsFile: args[1],
				Manifests:    args[2:],
				Section:      section,
				DryRun:       dryRun,
			})
		},
	}

	cmd.Flags().StringVar(&section, "section", manifest.DefaultSection, "manifest section with the dependency entries")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")

	return cmd
}

func (c *CLI) runSync(ctx context.Context, opts pipeline.SyncOptions) error {
	runner := pipeline.NewRunner(nil, loggerFromContext(ctx))
	prog := newProgress(runner.Logger)
	res, err := runner.Sync(ctx, opts)
	if err != nil {
		return err
	}
	prog.done("Checked %d manifests", len(opts.Manifests))

	if opts.DryRun {
		c.printInfo("Dry run, no files written")
		for _, path := range opts.Manifests {
			c.printFile(path, res.Updated[path])
		}
		return nil
	}
	if len(res.Written) == 0 {
		c.printInfo("All manifests up to date")
		return nil
	}
	c.printSuccess("Updated %d manifests", len(res.Written))
	for _, path := range res.Written {
		c.printFile(path, res.Updated[path])
	}
	return nil
}
