package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjoernmichaelsen/ghdepup/pkg/kv"
	"github.com/bjoernmichaelsen/ghdepup/pkg/render"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		source  = defaultSourceOpts(cacheNone)
		asJSON  bool
		asBlock bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <config>...",
		Short: "Show the best version of every dependency without writing",
		Long: `Resolve every dependency declared in the config files and print the
result. Nothing is written.

Examples:
  ghdepup resolve deps.env versions.env
  ghdepup resolve deps.env --json | jq '.[].best_version'
  ghdepup resolve deps.env --declarations`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd.Context(), args, &source, asJSON, asBlock)
		},
	}

	source.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the dependencies as JSON")
	cmd.Flags().BoolVar(&asBlock, "declarations", false, "print the annotated declarations")
	cmd.MarkFlagsMutuallyExclusive("json", "declarations")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, inputs []string, source *sourceOpts, asJSON, asBlock bool) error {
	store, err := kv.ReadFiles(inputs...)
	if err != nil {
		return err
	}
	runner, closeCache, err := c.newRunner(ctx, source)
	if err != nil {
		return err
	}
	defer closeCache()

	prog := newProgress(runner.Logger)
	spin := startSpinner(ctx, "Fetching tags")
	res, err := runner.Resolve(ctx, store)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done("Resolved %d dependencies", len(res.Descriptors))

	switch {
	case asJSON:
		data, err := render.JSON(res.Descriptors)
		if err != nil {
			return err
		}
		_, err = c.stdout.Write(data)
		return err
	case asBlock:
		fmt.Fprint(c.stdout, render.Declarations(res.Descriptors, render.Options{Verbose: true}))
		return nil
	}

	if len(res.Descriptors) == 0 {
		c.printInfo("No dependencies declared")
		return nil
	}
	fmt.Fprintln(c.stdout, dependencyTable(res.Descriptors))
	c.printStats(res.Descriptors)
	return nil
}
