// Command movieflair runs the MovieFlair front server.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/movieflair/movieflair/internal/config"
	mferrors "github.com/movieflair/movieflair/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		mferrors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command that reads the configuration.
type globalFlags struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "movieflair",
		Short: "MovieFlair front server",
		Long: `MovieFlair serves the movie and TV discovery site.

Each page request is classified: regular visitors on ordinary pages get
the client shell, crawlers and important routes get a streamed server
render with the page's title and meta tags in the document head.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configFile, "config", "c", "", "config file (default: ./movieflair.yaml if present)")
	pf.String("mode", "", "build mode: development or production")
	pf.String("host", "", "interface to listen on")
	pf.IntP("port", "p", 0, "port to listen on")
	pf.String("base-url", "", "public origin for canonical and sitemap URLs")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		serveCmd(g),
		sitemapCmd(g),
		classifyCmd(g),
		versionCmd(),
	)
	return root
}

// loadConfig loads and validates the configuration for cmd.
func (g *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{File: g.configFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
