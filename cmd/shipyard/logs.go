package main

import (
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/spf13/cobra"

	"github.com/baris/shipyard/internal/adapters/docker"
)

func newLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs CONTAINER",
		Short: "Print a container's logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := docker.NewAdapter()
			if err != nil {
				return err
			}

			logs, err := svc.GetContainerLogs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer logs.Close()

			// The engine multiplexes stdout/stderr into one stream.
			_, err = stdcopy.StdCopy(cmd.OutOrStdout(), cmd.ErrOrStderr(), logs)
			return err
		},
	}
}
