package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baris/shipyard/internal/adapters/builder"
	"github.com/baris/shipyard/internal/core/domain"
)

func newBuildCmd(opts *cliOptions) *cobra.Command {
	var (
		repoURL string
		tag     string
	)

	cmd := &cobra.Command{
		Use:   "build [variant]",
		Short: "Build the image for a descriptor variant",
		Long: `Build runs the layered image pipeline for one variant of the build
descriptor: pinned base image, dependency install from the manifest, source
tree and environment file copy, baked entrypoint. With --repo the source
context is shallow-cloned first instead of using the descriptor's directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			specs, err := opts.loadSpecs(cfg)
			if err != nil {
				return err
			}
			spec, err := resolveVariant(specs, args)
			if err != nil {
				return err
			}
			if tag != "" {
				spec.Tag = tag
			}

			b, err := builder.NewAdapter(builder.WithOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			var build *domain.Build
			if repoURL != "" {
				build, err = b.BuildFromRepo(cmd.Context(), repoURL, spec)
			} else {
				build, err = b.BuildImage(cmd.Context(), spec)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Built %s (build %s)\n", build.Image, build.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoURL, "repo", "", "git repository to clone as the build context")
	cmd.Flags().StringVar(&tag, "tag", "", "image tag (default: tag from the descriptor)")
	return cmd
}
