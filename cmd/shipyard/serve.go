package main

import (
	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/baris/shipyard/internal/adapters/builder"
	"github.com/baris/shipyard/internal/adapters/docker"
	apihttp "github.com/baris/shipyard/internal/adapters/http"
)

func newServeCmd(opts *cliOptions) *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the build and deployment API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			specs, err := opts.loadSpecs(cfg)
			if err != nil {
				return err
			}

			dockerAdapter, err := docker.NewAdapter()
			if err != nil {
				return err
			}
			builderAdapter, err := builder.NewAdapter(builder.WithOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			app := fiber.New()

			// Subdomain requests (name.localhost) are proxied straight to the
			// matching container; everything else falls through to the API.
			proxy := apihttp.NewProxyHandler(dockerAdapter)
			app.Use(proxy.ProxyRequest)

			apihttp.NewHandler(dockerAdapter, builderAdapter, specs).Register(app)

			addr := cfg.ListenAddr
			if listenAddr != "" {
				addr = listenAddr
			}
			log.Info("server starting", "addr", addr, "variants", specs.VariantNames())
			return app.Listen(addr)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default: listen_addr from config)")
	return cmd
}
