package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pthm/hxmount"
)

const refreshPrefix = "/_rr"

type serveFlags struct {
	addr    string
	key     string
	legacy  bool
	reload  bool
	metrics bool
	encrypt bool
}

func serveCmd(g *globalFlags) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve <dir>",
		Short: "Serve a directory of HTML pages with islands mounted",
		Long: `Serve static files from a directory. HTML responses are mounted on the
fly; every island carries a data-rr-src URL under /_rr/ that re-renders it
on its own (for example with hx-get on the root element).

The props in refresh URLs are signed with --key (or HXMOUNT_KEY), or
encrypted with it when --encrypt-props is set. Without a key a random one
is generated on startup, which invalidates URLs across restarts.

Examples:
  hxmount serve ./public -m components.hcl
  hxmount serve ./public -m components.yaml --addr :3000 --reload`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, g, f, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&f.addr, "addr", "a", ":8080", "Listen address")
	cmd.Flags().StringVar(&f.key, "key", os.Getenv("HXMOUNT_KEY"), "Signing key for refresh URLs")
	cmd.Flags().BoolVar(&f.legacy, "legacy", false, "Use the legacy factory (single root element per component)")
	cmd.Flags().BoolVar(&f.reload, "reload", false, "Re-read templates on every request")
	cmd.Flags().BoolVar(&f.metrics, "metrics", true, "Expose Prometheus metrics on /metrics")
	cmd.Flags().BoolVar(&f.encrypt, "encrypt-props", false, "Encrypt refresh URL props instead of signing them")

	return cmd
}

func runServe(ctx context.Context, g *globalFlags, f serveFlags, dir string, cmd *cobra.Command) error {
	var metrics *hxmount.Metrics
	promReg := prometheus.NewRegistry()
	if f.metrics {
		metrics = hxmount.NewMetrics(hxmount.WithRegisterer(promReg))
	}

	e, err := loadEnv(g, cmd.ErrOrStderr(), envOptions{legacy: f.legacy, reload: f.reload, metrics: metrics})
	if err != nil {
		return err
	}

	handler, err := newServer(e, f, dir, promReg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              f.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("serving", "addr", f.addr, "dir", dir, "components", e.registry.Count())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	e.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newServer(e *env, f serveFlags, dir string, promReg *prometheus.Registry) (http.Handler, error) {
	key := []byte(f.key)
	if len(key) == 0 {
		e.logger.Warn("no signing key configured, using a random key")
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate random key: %w", err)
		}
	}
	enc, err := hxmount.NewEncoder(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	handlerOpts := []hxmount.HandlerOption{hxmount.WithHandlerLogger(e.logger)}
	rendererOpts := []hxmount.RendererOption{
		hxmount.WithLogger(e.logger),
		hxmount.WithRefresh(enc, refreshPrefix+"/"),
	}
	if f.encrypt {
		handlerOpts = append(handlerOpts, hxmount.WithHandlerSensitiveProps())
		rendererOpts = append(rendererOpts, hxmount.WithSensitiveProps())
	}

	r.Mount(refreshPrefix, hxmount.NewHandler(e.registry, enc, handlerOpts...))
	if f.metrics {
		r.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(hxmount.Middleware(e.registry, rendererOpts...))
		r.Handle("/*", http.FileServer(http.Dir(dir)))
	})

	return r, nil
}
