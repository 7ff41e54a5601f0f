package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/movieflair/movieflair/pkg/classify"
)

func classifyCmd(g *globalFlags) *cobra.Command {
	var userAgent string

	cmd := &cobra.Command{
		Use:   "classify <path>",
		Short: "Show how a request would be served",
		Long: `Print the render decision for a path, with its query string and user
agent, using the configured forced paths and landing routes.

Examples:
  movieflair classify /film/603/matrix
  movieflair classify "/impressum?forceSSR=true"
  movieflair classify / --user-agent "Googlebot/2.1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}

			u, err := url.ParseRequestURI(args[0])
			if err != nil {
				return fmt.Errorf("invalid path %q: %w", args[0], err)
			}

			c := classify.New(cfg.ClassifyConfig())
			res := c.Classify(classify.Request{Path: u.Path, Query: u.Query(), UserAgent: userAgent})

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "decision:   %s\n", res.Decision)
			fmt.Fprintf(w, "automated:  %t\n", res.AutomatedClient)
			fmt.Fprintf(w, "important:  %t\n", res.ImportantRoute)
			fmt.Fprintf(w, "forced:     %t\n", res.Forced)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userAgent, "user-agent", "A", "", "User-Agent header of the request")
	return cmd
}
