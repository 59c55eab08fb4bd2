package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/trackgrid/internal/config"
	"github.com/matzehuels/trackgrid/pkg/grid"
	"github.com/matzehuels/trackgrid/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until interrupted.

The listen address and cache backend come from the config file unless
overridden with flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(server.Config{
				Runner:   runner,
				Registry: grid.NewRegistry(),
				Logger:   c.Logger,
			})

			printSuccess("Listening on %s", StyleHighlight.Render(addr))
			printDetail("Cache: %s", cfg.Cache.Backend)
			return server.ListenAndServe(ctx, addr, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+config.DefaultServerAddr+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
