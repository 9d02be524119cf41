// Package cli implements the bindery command line.
package cli

import (
	"context"
	goflag "flag"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/bayleafwalker/bindery/internal/config"
	"github.com/bayleafwalker/bindery/internal/graph"
	"github.com/bayleafwalker/bindery/internal/manifest"
	"github.com/bayleafwalker/bindery/internal/module"
	"github.com/bayleafwalker/bindery/internal/registry"
	"github.com/bayleafwalker/bindery/internal/resolver"
)

// version is set via build-time ldflags
var version = "dev"

type app struct {
	configPath string
	zapOpts    zap.Options

	cfg      *config.Config
	resolver resolver.Resolver
}

// NewRootCommand returns the bindery command tree.
func NewRootCommand() *cobra.Command {
	a := &app{
		zapOpts:  zap.Options{Development: true},
		resolver: resolver.NewDefault(),
	}

	root := &cobra.Command{
		Use:   "bindery",
		Short: "Resolve module manifests into capability bindings",
		Long: `bindery reads ModuleManifest documents, resolves a module's package and
module requirements against every installed module and prints the resulting
CapabilityBindings, or a DOT graph of the wires.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: ./"+config.FileName+" when present)")
	flags.StringSlice("manifests", nil, "Manifest files or directories (comma-separated)")
	flags.StringP("output", "o", "", "Output format: yaml, json or dot")

	zapFlags := goflag.NewFlagSet("zap", goflag.ContinueOnError)
	a.zapOpts.BindFlags(zapFlags)
	flags.AddGoFlagSet(zapFlags)

	root.AddCommand(
		newResolveCommand(a),
		newDynamicCommand(a),
		newGraphCommand(a),
		newWatchCommand(a),
	)
	return root
}

// Execute runs the command tree with ctx, which is canceled on shutdown.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command) error {
	a.zapOpts.DestWriter = cmd.ErrOrStderr()
	logger := zap.New(zap.UseFlagOptions(&a.zapOpts))
	ctrllog.SetLogger(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(ctrllog.IntoContext(ctx, logger))

	cfg, path, err := config.Load(config.LoadOptions{ConfigFilePath: a.configPath, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	if path != "" {
		logger.V(1).Info("loaded config", "path", path)
	}
	a.cfg = cfg
	return nil
}

// catalog loads every configured manifest into a fresh registry.
func (a *app) catalog(ctx context.Context) (*manifest.Catalog, error) {
	items, err := manifest.Load(a.cfg.Manifests...)
	if err != nil {
		return nil, fmt.Errorf("load manifests: %w", err)
	}
	c := manifest.NewCatalog(registry.New(a.cfg.Environment.Registry()))
	if err := c.Install(items...); err != nil {
		return nil, err
	}
	ctrllog.FromContext(ctx).V(1).Info("installed manifests", "modules", len(items))
	return c, nil
}

// resolveModule finds name in c and resolves it. Already resolved modules
// yield an empty wire map.
func (a *app) resolveModule(ctx context.Context, c *manifest.Catalog, name, constraint string) (*module.Module, resolver.WireMap, error) {
	m, err := c.Registry().Find(name, constraint)
	if err != nil {
		return nil, nil, err
	}
	wm, err := a.resolver.Resolve(ctx, c.Registry(), m)
	if err != nil {
		return nil, nil, err
	}
	return m, wm, nil
}

func (a *app) render(w io.Writer, c *manifest.Catalog, wm resolver.WireMap, dynamicRoot *module.Module) error {
	if a.cfg.Output == config.OutputDOT {
		return writeDOT(w, wm)
	}
	out, err := manifest.Marshal(c.Bindings(wm, dynamicRoot), a.cfg.Output)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func writeDOT(w io.Writer, wm resolver.WireMap) error {
	g, err := graph.FromWireMap(wm)
	if err != nil {
		return err
	}
	return g.WriteDOT(w)
}
