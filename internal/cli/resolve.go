package cli

import (
	"github.com/spf13/cobra"
)

func newResolveCommand(a *app) *cobra.Command {
	var constraint string

	cmd := &cobra.Command{
		Use:   "resolve MODULE",
		Short: "Resolve a module and print its bindings",
		Long: `Resolve MODULE, the highest installed version accepted by --version, and
print a CapabilityBinding for every wire the resolution creates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.catalog(ctx)
			if err != nil {
				return err
			}
			_, wm, err := a.resolveModule(ctx, c, args[0], constraint)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), c, wm, nil)
		},
	}
	cmd.Flags().StringVar(&constraint, "version", "", "Version constraint for MODULE (default: any)")
	return cmd
}
