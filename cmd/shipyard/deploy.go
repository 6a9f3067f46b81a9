package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baris/shipyard/internal/adapters/docker"
	"github.com/baris/shipyard/internal/core/domain"
)

func newDeployCmd() *cobra.Command {
	var (
		name    string
		port    int
		workers int
	)

	cmd := &cobra.Command{
		Use:   "deploy IMAGE",
		Short: "Launch a container from a built image",
		Long: `Deploy starts one container from a built image. The port and worker
count baked into the image act as defaults; --port and --workers override them
for this deployment only, without rebuilding the image.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image := args[0]
			if name == "" {
				name = defaultDeployName(image)
			}

			svc, err := docker.NewAdapter()
			if err != nil {
				return err
			}

			cfg := domain.ServerConfig{Port: port, Workers: workers}
			id, err := svc.LaunchContainer(cmd.Context(), image, name, cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deployed %s as %s (%s)\n", image, name, id[:12])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "container name (default: derived from the image)")
	cmd.Flags().IntVar(&port, "port", 0, "host/container port (default: port baked into the image)")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker process count (default: count baked into the image)")
	return cmd
}

// defaultDeployName derives a container name from an image reference:
// "registry/team/chat-api:v2" becomes "chat-api".
func defaultDeployName(image string) string {
	name := image
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, ":"); i >= 0 {
		name = name[:i]
	}
	return name
}
