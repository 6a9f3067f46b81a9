package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/baris/shipyard/internal/adapters/docker"
)

func newPsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ps",
		Short: "List containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := docker.NewAdapter()
			if err != nil {
				return err
			}

			containers, err := svc.ListContainers(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tIMAGE\tSTATE\tPORT\tIP")
			for _, c := range containers {
				port := "-"
				if c.Port != 0 {
					port = fmt.Sprintf("%d", c.Port)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Image, c.State, port, c.IPAddress)
			}
			return w.Flush()
		},
	}
}
