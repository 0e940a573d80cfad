package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjoernmichaelsen/ghdepup/pkg/manifest"
	"github.com/bjoernmichaelsen/ghdepup/pkg/pipeline"
)

// updateOpts holds the flags of the update command.
type updateOpts struct {
	source   sourceOpts
	targets  []string // structured manifests to update as well
	section  string   // manifest section holding the dependency entries
	dryRun   bool     // resolve but write nothing
	debug    bool     // print the annotated rendering to stdout
	annotate bool     // write the annotated rendering to the output file
}

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	opts := updateOpts{source: defaultSourceOpts(cacheNone), section: manifest.DefaultSection}

	cmd := &cobra.Command{
		Use:   "update <config>... <output>",
		Short: "Resolve the best version of every dependency and write them",
		Long: `Read all config files as one declaration set, fetch every tracked
project's tags and write <NAME>_VERSION="x.y.z" for each dependency to the
last file, which is read as input too.

Nothing is written unless every tag request succeeded. Tags are fetched
fresh on every run; pass --cache file or --cache redis to reuse them.

Examples:
  ghdepup update deps.env versions.env
  ghdepup update deps.env versions.env --target Cargo.toml
  ghdepup update deps.env versions.env --dry-run --debug`,
		Args: cobra.MinimumNArgs(pipeline.MinInputs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUpdate(cmd.Context(), args, &opts)
		},
	}

	opts.source.register(cmd)
	cmd.Flags().StringArrayVar(&opts.targets, "target", nil, "manifest to update with the resolved versions (repeatable)")
	cmd.Flags().StringVar(&opts.section, "section", opts.section, "manifest section with the dependency entries")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "resolve without writing any file")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "print the annotated result to stdout")
	cmd.Flags().BoolVar(&opts.annotate, "annotate", false, "write comments with tags and versions to the output")

	return cmd
}

func (c *CLI) runUpdate(ctx context.Context, inputs []string, opts *updateOpts) error {
	runner, closeCache, err := c.newRunner(ctx, &opts.source)
	if err != nil {
		return err
	}
	defer closeCache()

	prog := newProgress(runner.Logger)
	spin := startSpinner(ctx, fmt.Sprintf("Fetching tags for %s", inputs[0]))
	res, err := runner.Execute(ctx, pipeline.Options{
		Inputs:   inputs,
		Targets:  opts.targets,
		Section:  opts.section,
		DryRun:   opts.dryRun,
		Debug:    opts.debug,
		Annotate: opts.annotate,
		Stdout:   c.stdout,
	})
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done("Resolved %d dependencies", len(res.Descriptors))

	if opts.dryRun {
		c.printInfo("Dry run, no files written")
		c.printStats(res.Descriptors)
		return nil
	}
	c.printSuccess("Updated %d files", len(res.Written))
	for _, path := range res.Written {
		c.printFile(path, res.Updated[path])
	}
	c.printStats(res.Descriptors)
	return nil
}
