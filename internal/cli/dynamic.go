package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDynamicCommand(a *app) *cobra.Command {
	var constraint string

	cmd := &cobra.Command{
		Use:   "dynamic MODULE PACKAGE",
		Short: "Resolve a module, then dynamically import a package into it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.catalog(ctx)
			if err != nil {
				return err
			}
			m, wm, err := a.resolveModule(ctx, c, args[0], constraint)
			if err != nil {
				return err
			}
			if err := c.Registry().Commit(wm); err != nil {
				return err
			}

			dwm, err := a.resolver.ResolveDynamic(ctx, c.Registry(), m, args[1])
			if err != nil {
				return err
			}
			if dwm == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s cannot dynamically import %s\n", m, args[1])
				return nil
			}
			if err := c.Registry().CommitDynamic(m, dwm); err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), c, dwm, m)
		},
	}
	cmd.Flags().StringVar(&constraint, "version", "", "Version constraint for MODULE (default: any)")
	return cmd
}
