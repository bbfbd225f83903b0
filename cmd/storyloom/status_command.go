package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and job counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon:    running (pid %d)\n", status.PID)
			fmt.Fprintf(out, "Runner:    %s\n", runnerState(status.RunnerRunning))
			fmt.Fprintf(out, "Database:  %s\n", status.DatabasePath)
			fmt.Fprintf(out, "Lock:      %s\n", status.LockFilePath)
			fmt.Fprintf(out, "Episodes:  %d\n", status.EpisodeCount)

			statuses := make([]string, 0, len(status.JobStats))
			for name := range status.JobStats {
				statuses = append(statuses, name)
			}
			sort.Strings(statuses)
			fmt.Fprintln(out, "Jobs:")
			for _, name := range statuses {
				fmt.Fprintf(out, "  %-10s %d\n", name, status.JobStats[name])
			}
			return nil
		},
	}
}

func runnerState(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}
