package movieflair

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"

	"github.com/movieflair/movieflair/internal/catalog"
	"github.com/movieflair/movieflair/internal/config"
	"github.com/movieflair/movieflair/internal/dev"
	mferrors "github.com/movieflair/movieflair/internal/errors"
	"github.com/movieflair/movieflair/internal/site"
	"github.com/movieflair/movieflair/pkg/assets"
	"github.com/movieflair/movieflair/pkg/classify"
	"github.com/movieflair/movieflair/pkg/dispatch"
	"github.com/movieflair/movieflair/pkg/render"
	"github.com/movieflair/movieflair/pkg/resolve"
	"github.com/movieflair/movieflair/pkg/sitemap"
)

// BuildOptions supplies collaborators that do not come from configuration.
type BuildOptions struct {
	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Modules are the render entry modules by name. If nil, the site tree
	// is registered under site.ModulePath.
	Modules map[string]dev.Factory

	// S3 reads the production shell when shell.s3.bucket is set. If nil, a
	// client is built from the default AWS configuration chain.
	S3 resolve.S3API
}

// Runtime is an assembled server.
type Runtime struct {
	App     *App
	Config  *config.Config
	Sitemap sitemap.Generator

	// Registry holds every metric the server exports.
	Registry *prometheus.Registry

	// Loader, Reload and Watcher are set in development only.
	Loader  *dev.Loader
	Reload  *dev.ReloadServer
	Watcher *dev.Watcher

	closers []func() error
}

// Start runs background work, currently the development file watcher. It
// returns when ctx is done.
func (rt *Runtime) Start(ctx context.Context) error {
	if rt.Watcher == nil {
		<-ctx.Done()
		return nil
	}
	return rt.Watcher.Start(ctx)
}

// Close releases the runtime's connections.
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range slices.Backward(rt.closers) {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Build assembles the server described by cfg. In production the shell is
// read once before Build returns, so a missing client build fails startup
// rather than every request.
func Build(ctx context.Context, cfg *config.Config, opts BuildOptions) (_ *Runtime, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rt := &Runtime{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()
	rt.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	production := cfg.IsProduction()
	resolver := assetResolver(cfg, logger)

	modules := opts.Modules
	if modules == nil {
		modules = map[string]dev.Factory{
			site.ModulePath: site.Module(site.Options{BaseURL: cfg.BaseURL, Assets: resolver}),
		}
	}
	factory, ok := modules[cfg.Entry.Module]
	if !ok {
		return nil, mferrors.New("E106").WithDetailf("entry.module is %q.", cfg.Entry.Module)
	}

	var (
		pageShell resolve.ShellSource
		resolveFn resolve.Resolver
		fixStack  func(error) error
		onError   = DefaultErrorHandler(logger, !production)
	)

	if production {
		shell, err := productionShell(ctx, cfg, opts.S3)
		if err != nil {
			return nil, err
		}
		if _, err := shell.ReadShell(ctx); err != nil {
			return nil, mferrors.New("E104").Wrap(err)
		}
		entry, err := factory()
		if err != nil {
			return nil, mferrors.New("E106").Wrap(err)
		}
		pageShell = shell
		resolveFn = &resolve.Prod{Shell: shell, Entry: entry}
	} else {
		root, err := filepath.Abs(cfg.Dir())
		if err != nil {
			return nil, err
		}
		rt.Loader = dev.NewLoader(root, logger)
		for name, f := range modules {
			rt.Loader.Register(name, f)
		}
		rt.Reload = dev.NewReloadServer(logger)
		rt.closers = append(rt.closers, func() error { rt.Reload.Close(); return nil })

		shell := fileShell(cfg.DevShellPath())
		pageShell = &devShell{src: shell, loader: rt.Loader}
		resolveFn = &resolve.Dev{Shell: shell, Loader: rt.Loader, EntryModule: cfg.Entry.Module}
		fixStack = rt.Loader.FixStacktrace
		onError = notifyingErrorHandler(rt.Reload, onError)

		rt.Watcher = dev.NewWatcher(dev.WatcherConfig{
			Paths:  dev.CollectWatchPaths(cfg),
			Ignore: append(slices.Clone(dev.DefaultIgnore), cfg.Dev.Ignore...),
			Logger: logger,
		})
		dev.LiveReload(rt.Watcher, rt.Loader, rt.Reload)
	}

	var registerer prometheus.Registerer
	if cfg.Metrics.Enabled {
		registerer = rt.Registry
	}

	dispatcher, err := dispatch.New(dispatch.Config{
		Classifier:    classify.New(cfg.ClassifyConfig()),
		Shell:         pageShell,
		Resolver:      resolveFn,
		Renderer:      render.New(render.Config{FixStacktrace: fixStack, Logger: logger}),
		ErrorHandler:  onError,
		RenderTimeout: cfg.Render.Timeout,
		Registry:      registerer,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	rt.Sitemap, err = buildSitemap(cfg, rt, registerer, logger)
	if err != nil {
		return nil, err
	}

	hidden := []string{}
	if production && cfg.Shell.S3.Bucket == "" {
		hidden = append(hidden, cfg.Shell.File)
	}

	appOpts := Options{
		Pages:   dispatcher,
		Sitemap: sitemap.Handler(rt.Sitemap, logger),
		Static: StaticOptions{
			Dir:       cfg.StaticRoot(),
			Prefix:    cfg.StaticPrefix(),
			Hidden:    hidden,
			Immutable: production,
		},
		Logger: logger,
	}
	if cfg.Metrics.Enabled {
		appOpts.Metrics = promhttp.HandlerFor(rt.Registry, promhttp.HandlerOpts{Registry: rt.Registry})
	}
	if rt.Reload != nil {
		appOpts.Reload = rt.Reload
	}
	rt.App = New(appOpts)

	logger.Info("server assembled",
		"mode", cfg.ModeValue(),
		"entry", cfg.Entry.Module,
		"static", cfg.StaticRoot(),
		"metrics", cfg.Metrics.Enabled,
	)
	return rt, nil
}

func assetResolver(cfg *config.Config, logger *slog.Logger) assets.Resolver {
	if !cfg.IsProduction() {
		return assets.NewPassthroughResolver("/")
	}
	m, err := assets.Load(cfg.ManifestPath())
	if err != nil {
		logger.Warn("asset manifest unavailable, serving source names", "path", cfg.ManifestPath(), "error", err)
		return assets.NewPassthroughResolver("/")
	}
	return assets.NewResolver(m, "/")
}

func fileShell(path string) *resolve.FileShell {
	return &resolve.FileShell{FS: os.DirFS(filepath.Dir(path)), Name: filepath.Base(path)}
}

func productionShell(ctx context.Context, cfg *config.Config, client resolve.S3API) (resolve.ShellSource, error) {
	s3cfg := cfg.Shell.S3
	if s3cfg.Bucket == "" {
		return resolve.Cached(fileShell(cfg.ShellPath())), nil
	}
	if client == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(s3cfg.Region))
		if err != nil {
			return nil, mferrors.New("E105").WithDetail("Loading the AWS configuration failed.").Wrap(err)
		}
		client = s3.NewFromConfig(awsCfg)
	}
	return resolve.Cached(&resolve.S3Shell{Client: client, Bucket: s3cfg.Bucket, Key: s3cfg.Key}), nil
}

func buildSitemap(cfg *config.Config, rt *Runtime, reg prometheus.Registerer, logger *slog.Logger) (sitemap.Generator, error) {
	builder := &sitemap.Builder{
		BaseURL:      cfg.BaseURL,
		StaticRoutes: cfg.Sitemap.StaticRoutes,
	}
	if cfg.Sitemap.Database != "" {
		store, err := catalog.Open(cfg.Sitemap.Database)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		rt.closers = append(rt.closers, store.Close)
		builder.Source = store
	}

	var gen sitemap.Generator = builder
	if reg != nil {
		gen = sitemap.NewMetrics(reg).Instrument(gen)
	}
	if cfg.Sitemap.RedisAddr != "" {
		client := backend.NewClient(&backend.Options{Addr: cfg.Sitemap.RedisAddr})
		rt.closers = append(rt.closers, client.Close)
		gen = sitemap.NewCache(client, gen,
			sitemap.WithTTL(cfg.Sitemap.CacheTTL),
			sitemap.WithLogger(logger),
		)
	}
	return gen, nil
}

// devShell serves the development shell to ClientOnly requests with the
// same live-reload transform server renders get.
type devShell struct {
	src    resolve.ShellSource
	loader *dev.Loader
}

func (d *devShell) ReadShell(ctx context.Context) (string, error) {
	html, err := d.src.ReadShell(ctx)
	if err != nil {
		return "", err
	}
	return d.loader.TransformHTML(ctx, "", html)
}
