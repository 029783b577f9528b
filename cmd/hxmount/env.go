package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pthm/hxmount"
	"github.com/pthm/hxmount/lib/manifest"
)

type globalFlags struct {
	manifest   string
	logLevel   string
	s3Region   string
	s3Endpoint string
}

// env is what every command builds from the global flags.
type env struct {
	logger   *slog.Logger
	manifest *manifest.Manifest
	registry *hxmount.Registry
}

type envOptions struct {
	legacy  bool
	reload  bool
	metrics *hxmount.Metrics
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

func loadEnv(g *globalFlags, stderr io.Writer, opts envOptions) (*env, error) {
	logger, err := newLogger(g.logLevel, stderr)
	if err != nil {
		return nil, err
	}

	m, err := manifest.Load(g.manifest)
	if err != nil {
		return nil, err
	}

	loaderOpts := []manifest.LoaderOption{
		manifest.WithBaseDir(m.Dir()),
		manifest.WithLoaderLogger(logger),
	}
	if g.s3Region != "" || g.s3Endpoint != "" {
		loaderOpts = append(loaderOpts, manifest.WithS3(manifest.NewS3Client(g.s3Region, g.s3Endpoint)))
	}
	if opts.reload {
		loaderOpts = append(loaderOpts, manifest.WithReload())
	}

	var factory hxmount.Factory = hxmount.NewRootFactory(hxmount.WithFactoryLogger(logger))
	if opts.legacy {
		factory = hxmount.NewLegacyFactory(hxmount.WithFactoryLogger(logger), hxmount.RejectMultipleChildren())
	}

	regOpts := []hxmount.RegistryOption{hxmount.WithRegistryLogger(logger)}
	if opts.metrics != nil {
		regOpts = append(regOpts, hxmount.WithRegistryMetrics(opts.metrics))
	}
	reg := hxmount.NewRegistry(factory, regOpts...)

	if err := manifest.Apply(reg, m, manifest.NewLoader(loaderOpts...)); err != nil {
		return nil, err
	}
	logger.Debug("manifest loaded", "path", g.manifest, "components", len(m.Components))

	return &env{logger: logger, manifest: m, registry: reg}, nil
}
