package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/bayleafwalker/bindery/internal/config"
	"github.com/bayleafwalker/bindery/internal/manifest"
)

var debounceInterval = 300 * time.Millisecond

func newWatchCommand(a *app) *cobra.Command {
	var constraint string

	cmd := &cobra.Command{
		Use:   "watch MODULE",
		Short: "Re-resolve a module whenever its manifests change",
		Long: `Resolve MODULE and print its bindings, then watch the manifest paths and
print a fresh resolution after every change. Metrics are served on
--metrics-bind-address when set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), cmd.OutOrStdout(), args[0], constraint)
		},
	}
	cmd.Flags().StringVar(&constraint, "version", "", "Version constraint for MODULE (default: any)")
	cmd.Flags().String("metrics-bind-address", "", "Address to serve Prometheus metrics on (default: disabled)")
	return cmd
}

func (a *app) watch(ctx context.Context, out io.Writer, name, constraint string) error {
	log := ctrllog.FromContext(ctx).WithValues("module", name)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	for _, path := range a.cfg.Manifests {
		if err := addWatchPaths(watcher, path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	if addr := a.cfg.MetricsBindAddress; addr != "" && addr != "0" {
		srv := &http.Server{Addr: addr, Handler: metricsHandler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(err, "metrics server stopped", "address", addr)
			}
		}()
		defer srv.Close()
		log.Info("serving metrics", "address", addr)
	}

	a.publish(ctx, out, name, constraint, false)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevantChange(event) {
				continue
			}
			log.V(1).Info("manifest changed", "path", event.Name, "op", event.Op.String())
			debounce = time.After(debounceInterval)
			if event.Has(fsnotify.Create) {
				addIfDirectory(watcher, event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(err, "watcher error")

		case <-debounce:
			debounce = nil
			a.publish(ctx, out, name, constraint, true)
		}
	}
}

// publish resolves name against a freshly loaded catalog and writes the
// result. Failures are logged so the watch keeps running.
func (a *app) publish(ctx context.Context, out io.Writer, name, constraint string, separate bool) {
	log := ctrllog.FromContext(ctx).WithValues("module", name)
	c, err := a.catalog(ctx)
	if err != nil {
		log.Error(err, "reload failed")
		return
	}
	_, wm, err := a.resolveModule(ctx, c, name, constraint)
	if err != nil {
		log.Error(err, "resolution failed")
		return
	}
	if separate && a.cfg.Output != config.OutputDOT {
		fmt.Fprintln(out, "---")
	}
	if err := a.render(out, c, wm, nil); err != nil {
		log.Error(err, "render failed")
	}
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(ctrlmetrics.Registry, promhttp.HandlerOpts{}))
	return mux
}

func isRelevantChange(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return manifest.IsManifestFile(event.Name)
}

// addWatchPaths watches every directory below path. A file is watched
// through its parent directory so editors that replace it are noticed.
func addWatchPaths(watcher *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(path))
	}
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
}

func addIfDirectory(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	_ = addWatchPaths(watcher, path)
}
