package config

import (
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/movieflair/movieflair/internal/errors"
	"github.com/movieflair/movieflair/pkg/classify"
	"github.com/movieflair/movieflair/pkg/resolve"
)

const (
	// ConfigName is the base name of the configuration file.
	ConfigName = "movieflair"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "MOVIEFLAIR"

	// DefaultPort is the default listen port.
	DefaultPort = 5173

	// DefaultRenderTimeout bounds the resolve and render stages of a request.
	DefaultRenderTimeout = 10 * time.Second

	// DefaultSitemapTTL is how long a generated sitemap is cached.
	DefaultSitemapTTL = 24 * time.Hour
)

// Config is the complete server configuration.
type Config struct {
	// Mode is "development" or "production".
	Mode string `mapstructure:"mode"`

	// Host is the interface to listen on.
	Host string `mapstructure:"host"`

	// Port is the listen port.
	Port int `mapstructure:"port"`

	// BaseURL is the public origin used for absolute sitemap URLs.
	BaseURL string `mapstructure:"base_url"`

	Render     RenderConfig     `mapstructure:"render"`
	Shell      ShellConfig      `mapstructure:"shell"`
	Entry      EntryConfig      `mapstructure:"entry"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Static     StaticConfig     `mapstructure:"static"`
	Sitemap    SitemapConfig    `mapstructure:"sitemap"`
	Dev        DevConfig        `mapstructure:"dev"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        LogConfig        `mapstructure:"log"`

	// configPath is the file the config was loaded from, if any.
	configPath string
}

// RenderConfig contains render pipeline settings.
type RenderConfig struct {
	// Timeout bounds resolve and render for one request.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ShellConfig locates the shell template.
type ShellConfig struct {
	// DevPath is the source shell read on every request in development.
	DevPath string `mapstructure:"dev_path"`

	// DistDir is the client build output directory.
	DistDir string `mapstructure:"dist_dir"`

	// File is the shell file name inside DistDir.
	File string `mapstructure:"file"`

	// S3 reads the production shell from object storage when Bucket is set.
	S3 S3Config `mapstructure:"s3"`
}

// S3Config locates the shell in a bucket.
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Key    string `mapstructure:"key"`
	Region string `mapstructure:"region"`
}

// EntryConfig selects the render entry.
type EntryConfig struct {
	// Module is the registered name of the entry module.
	Module string `mapstructure:"module"`
}

// ClassifierConfig holds the route lists of the request classifier.
type ClassifierConfig struct {
	ForcedPaths   []string `mapstructure:"forced_paths"`
	LandingRoutes []string `mapstructure:"landing_routes"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `mapstructure:"dir"`

	// Prefix is the URL prefix for static files (default: "/").
	Prefix string `mapstructure:"prefix"`
}

// SitemapConfig configures sitemap generation.
type SitemapConfig struct {
	// Database is the SQLite catalog file. Empty disables catalog URLs.
	Database string `mapstructure:"database"`

	// RedisAddr enables the sitemap cache when set.
	RedisAddr string `mapstructure:"redis_addr"`

	// CacheTTL is how long a generated sitemap is cached.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// StaticRoutes are listed in every sitemap.
	StaticRoutes []string `mapstructure:"static_routes"`
}

// DevConfig contains development settings.
type DevConfig struct {
	// Watch contains paths to watch for changes.
	Watch []string `mapstructure:"watch"`

	// Ignore contains glob patterns to ignore during watch.
	Ignore []string `mapstructure:"ignore"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// New creates a Config with default values.
func New() *Config {
	cls := classify.DefaultConfig()
	return &Config{
		Mode: string(resolve.ModeDevelopment),
		Host: "",
		Port: DefaultPort,
		Render: RenderConfig{
			Timeout: DefaultRenderTimeout,
		},
		Shell: ShellConfig{
			DevPath: "index.html",
			DistDir: "dist/client",
			File:    "index.html",
		},
		Entry: EntryConfig{
			Module: "site",
		},
		Classifier: ClassifierConfig{
			ForcedPaths:   cls.ForcedPaths,
			LandingRoutes: cls.LandingRoutes,
		},
		Static: StaticConfig{
			Dir:    "public",
			Prefix: "/",
		},
		Sitemap: SitemapConfig{
			CacheTTL:     DefaultSitemapTTL,
			StaticRoutes: cls.LandingRoutes,
		},
		Dev: DevConfig{
			Watch:  []string{"internal/site", "index.html", "public"},
			Ignore: []string{"*_test.go", "*.tmp", "*~"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// File is an explicit config file. When empty, movieflair.yaml is
	// searched for in Dir and a missing file is not an error.
	File string

	// Dir is the directory searched for the config file. Defaults to ".".
	Dir string

	// Flags are bound over file and environment values. Only flags named
	// after a config key (such as "port" or "mode") are bound.
	Flags *pflag.FlagSet
}

// Load reads the configuration.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v, New())

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.AddConfigPath(dir)
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("port", EnvPrefix+"_PORT", "PORT")
	_ = v.BindEnv("mode", EnvPrefix+"_MODE", "APP_ENV")
	_ = v.BindEnv("log.format")

	if opts.Flags != nil {
		for _, key := range []string{"mode", "host", "port", "base_url"} {
			if f := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.New("E103").Wrap(err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case stderrors.As(err, &notFound):
			// Defaults and environment only.
		case opts.File != "" && stderrors.Is(err, os.ErrNotExist):
			return nil, errors.New("E101").
				WithDetailf("%s does not exist.", opts.File).
				Wrap(err)
		default:
			return nil, errors.New("E103").
				WithDetail("Failed to parse the configuration file.").
				Wrap(err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("E103").Wrap(err)
	}
	cfg.configPath = v.ConfigFileUsed()

	if mode, err := resolve.ParseMode(cfg.Mode); err == nil {
		cfg.Mode = string(mode)
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
		if cfg.IsProduction() {
			cfg.Log.Format = "json"
		}
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("mode", d.Mode)
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("render.timeout", d.Render.Timeout)
	v.SetDefault("shell.dev_path", d.Shell.DevPath)
	v.SetDefault("shell.dist_dir", d.Shell.DistDir)
	v.SetDefault("shell.file", d.Shell.File)
	v.SetDefault("shell.s3.bucket", d.Shell.S3.Bucket)
	v.SetDefault("shell.s3.key", d.Shell.S3.Key)
	v.SetDefault("shell.s3.region", d.Shell.S3.Region)
	v.SetDefault("entry.module", d.Entry.Module)
	v.SetDefault("classifier.forced_paths", d.Classifier.ForcedPaths)
	v.SetDefault("classifier.landing_routes", d.Classifier.LandingRoutes)
	v.SetDefault("static.dir", d.Static.Dir)
	v.SetDefault("static.prefix", d.Static.Prefix)
	v.SetDefault("sitemap.database", d.Sitemap.Database)
	v.SetDefault("sitemap.redis_addr", d.Sitemap.RedisAddr)
	v.SetDefault("sitemap.cache_ttl", d.Sitemap.CacheTTL)
	v.SetDefault("sitemap.static_routes", d.Sitemap.StaticRoutes)
	v.SetDefault("dev.watch", d.Dev.Watch)
	v.SetDefault("dev.ignore", d.Dev.Ignore)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("log.level", d.Log.Level)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := resolve.ParseMode(c.Mode); err != nil {
		return errors.New("E102").
			WithDetailf("Got mode %q; the mode must be development or production.", c.Mode)
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("E103").
			WithDetailf("Port must be between 1 and 65535, got %d.", c.Port)
	}
	if c.Render.Timeout <= 0 {
		return errors.New("E103").
			WithDetailf("render.timeout must be positive, got %s.", c.Render.Timeout)
	}
	if c.Sitemap.CacheTTL < 0 {
		return errors.New("E103").
			WithDetailf("sitemap.cache_ttl must not be negative, got %s.", c.Sitemap.CacheTTL)
	}
	if c.Shell.S3.Bucket != "" && c.Shell.S3.Key == "" {
		return errors.New("E105")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E103").
			WithDetailf("log.format must be text or json, got %q.", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E103").
			WithDetailf("log.level must be debug, info, warn, or error, got %q.", c.Log.Level)
	}
	return nil
}

// ModeValue returns the parsed build mode.
func (c *Config) ModeValue() resolve.Mode {
	m, err := resolve.ParseMode(c.Mode)
	if err != nil {
		return resolve.ModeDevelopment
	}
	return m
}

// IsProduction reports whether the server runs the prebuilt client.
func (c *Config) IsProduction() bool {
	return c.ModeValue() == resolve.ModeProduction
}

// Address returns the listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file, or "." when the
// configuration did not come from a file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

// ShellPath returns the path of the production shell file.
func (c *Config) ShellPath() string {
	return filepath.Join(c.DistPath(), c.Shell.File)
}

// DevShellPath returns the path of the development shell file.
func (c *Config) DevShellPath() string {
	return c.resolvePath(c.Shell.DevPath)
}

// PublicPath returns the path of the static file directory.
func (c *Config) PublicPath() string {
	return c.resolvePath(c.Static.Dir)
}

// DistPath returns the path of the client build output.
func (c *Config) DistPath() string {
	return c.resolvePath(c.Shell.DistDir)
}

// StaticRoot returns the directory static files are served from: the client
// build in production, the public directory in development.
func (c *Config) StaticRoot() string {
	if c.IsProduction() {
		return c.DistPath()
	}
	return c.PublicPath()
}

// ManifestPath returns the path of the client build manifest.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.DistPath(), ".vite", "manifest.json")
}

// StaticPrefix returns the URL prefix for static files.
func (c *Config) StaticPrefix() string {
	if c.Static.Prefix == "" {
		return "/"
	}
	return c.Static.Prefix
}

// ClassifyConfig converts the route lists for the classifier.
func (c *Config) ClassifyConfig() classify.Config {
	return classify.Config{
		ForcedPaths:   c.Classifier.ForcedPaths,
		LandingRoutes: c.Classifier.LandingRoutes,
	}
}

func (c *Config) resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}
