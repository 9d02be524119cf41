package cli

import (
	"github.com/spf13/cobra"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/bayleafwalker/bindery/internal/graph"
)

func newGraphCommand(a *app) *cobra.Command {
	var constraint string

	cmd := &cobra.Command{
		Use:   "graph MODULE",
		Short: "Resolve a module and print its wires as a DOT graph",
		Args:  cobra.ExactArgs(1),
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
			g, err := graph.FromWireMap(wm)
			if err != nil {
				return err
			}
			cycles, err := g.Cycles()
			if err != nil {
				return err
			}
			for _, cycle := range cycles {
				ctrllog.FromContext(ctx).Info("wire cycle", "modules", cycle)
			}
			return g.WriteDOT(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&constraint, "version", "", "Version constraint for MODULE (default: any)")
	return cmd
}
