package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baris/shipyard/internal/adapters/docker"
)

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop CONTAINER",
		Short: "Stop a running container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := docker.NewAdapter()
			if err != nil {
				return err
			}
			if err := svc.StopContainer(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped %s\n", args[0])
			return nil
		},
	}
}
