package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/srcsetlab/pkg/errors"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var refresh, noCache bool

	cmd := &cobra.Command{
		Use:   "resolve <page-url>",
		Short: "Resolve an Unsplash photo page to its full-size image URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resolver, backend, err := c.newResolver(ctx, noCache, refresh)
			if err != nil {
				return err
			}
			defer backend.Close()

			spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Resolving "+args[0]+" ("+resolver.Mode()+")")
			spinner.Start()
			imageURL, err := resolver.ResolveImageURL(ctx, args[0])
			if err != nil {
				spinner.StopWithError(apperrors.UserMessage(err))
				return err
			}
			spinner.StopWithSuccess("Resolved")

			fmt.Fprintln(cmd.OutOrStdout(), imageURL)
			printNextStep(cmd.ErrOrStderr(), "Generate markup", appName+" generate "+imageURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached lookup")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the lookup cache")
	return cmd
}
