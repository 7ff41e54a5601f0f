package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/movieflair/movieflair"
	"github.com/movieflair/movieflair/internal/logging"
)

func sitemapCmd(g *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Write the sitemap",
		Long: `Generate the sitemap exactly as /sitemap.xml serves it and write it to
stdout or a file. Useful to check catalog changes before deploying.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			// Build checks the production shell; the sitemap does not need it.
			cfg.Mode = "development"

			rt, err := movieflair.Build(cmd.Context(), cfg, movieflair.BuildOptions{Logger: logging.Discard()})
			if err != nil {
				return err
			}
			defer rt.Close()

			body, err := rt.Sitemap.Generate(cmd.Context())
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return err
			}
			success(cmd.ErrOrStderr(), "Wrote %s (%d bytes)", out, len(body))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}
