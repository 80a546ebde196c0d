package cli

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/matzehuels/srcsetlab/internal/config"
	"github.com/matzehuels/srcsetlab/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the browser sandbox",
		Long: `Serve the srcset sandbox on --addr.

Open the printed URL, paste an Unsplash photo page and tune the parameters;
the preview and the generated <img> markup update on every change. The same
server exposes /api/srcset and /api/resolve for scripts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			resolver, backend, err := c.newResolver(ctx, noCache, false)
			if err != nil {
				return err
			}
			defer backend.Close()

			srv := server.New(server.Options{
				Resolver:       resolver,
				Logger:         c.Logger,
				Defaults:       cfg.Defaults,
				RequestTimeout: cfg.Server.RequestTimeout.Duration,
			})

			w := cmd.ErrOrStderr()
			return srv.ListenAndServe(ctx, addr, func(a net.Addr) {
				printInfo(w, "Sandbox running at %s", StyleLink.Render("http://"+a.String()))
				printKeyValue(w, "Lookup:", resolver.Mode())
				printKeyValue(w, "Cache: ", cacheLabel(cfg, noCache))
				printDetail(w, "Press Ctrl+C to stop")
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the lookup cache")
	return cmd
}

func cacheLabel(cfg *config.Config, noCache bool) string {
	if noCache {
		return config.BackendNone
	}
	return cfg.Cache.Backend
}
