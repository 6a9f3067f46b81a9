package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/baris/shipyard/internal/config"
	"github.com/baris/shipyard/internal/core/domain"
	"github.com/baris/shipyard/internal/specfile"
)

// cliOptions are the persistent flags shared by every subcommand.
type cliOptions struct {
	configPath string
	descriptor string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           "shipyard",
		Short:         "Build immutable web service images and launch them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the shipyard config file")
	cmd.PersistentFlags().StringVarP(&opts.descriptor, "file", "f", "", "path to the build descriptor (default: descriptor from config)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newBuildCmd(opts),
		newDeployCmd(),
		newPsCmd(),
		newStopCmd(),
		newLogsCmd(),
		newServeCmd(opts),
	)
	return cmd
}

// loadConfig reads the tool config and applies its log level unless --verbose
// already raised it.
func (o *cliOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if !o.verbose {
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			log.SetLevel(level)
		}
	}
	return cfg, nil
}

// loadSpecs loads the build descriptor, preferring the -f flag over the
// configured default path.
func (o *cliOptions) loadSpecs(cfg *config.Config) (*specfile.File, error) {
	path := o.descriptor
	if path == "" {
		path = cfg.Descriptor
	}
	return specfile.Load(path)
}

// resolveVariant picks the variant named by args, or the descriptor's first
// variant when none is given.
func resolveVariant(specs *specfile.File, args []string) (domain.BuildSpec, error) {
	if len(args) == 0 {
		return specs.Default(), nil
	}
	spec, ok := specs.Variant(args[0])
	if !ok {
		return domain.BuildSpec{}, fmt.Errorf("unknown variant %q (have: %v)", args[0], specs.VariantNames())
	}
	return spec, nil
}
