package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"storyloom/internal/api"
	"storyloom/internal/client"
	"storyloom/internal/store"
)

const watchPollInterval = 250 * time.Millisecond

func newJobCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "job <id>",
		Short: "Show the state of a generation job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}
			c, err := ctx.client()
			if err != nil {
				return err
			}
			if watch {
				return watchJob(cmd, c, id)
			}
			snapshot, err := c.Job(cmd.Context(), id)
			if err != nil {
				return err
			}
			printJob(cmd, snapshot)
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Poll the job until it finishes")
	return cmd
}

func watchJob(cmd *cobra.Command, c *client.Client, id int64) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	var lastStep string
	var lastProgress = -1

	for {
		snapshot, err := c.Job(cmd.Context(), id)
		if err != nil {
			return err
		}
		if snapshot.Step != lastStep || snapshot.ProgressPct != lastProgress {
			line := fmt.Sprintf("job %d  %-9s %3d%%  %s", snapshot.ID, snapshot.Status, snapshot.ProgressPct, snapshot.Step)
			if colorize {
				line = statusColor(snapshot.Status) + line + ansiReset
			}
			fmt.Fprintln(out, line)
			lastStep = snapshot.Step
			lastProgress = snapshot.ProgressPct
		}
		if store.Status(snapshot.Status).IsTerminal() {
			if snapshot.Status == string(store.StatusFailed) {
				return fmt.Errorf("job %d failed: %s", snapshot.ID, snapshot.ErrorMessage)
			}
			return nil
		}

		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(watchPollInterval):
		}
	}
}

func printJob(cmd *cobra.Command, snapshot *api.JobSnapshot) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job:      %d\n", snapshot.ID)
	fmt.Fprintf(out, "Episode:  %d\n", snapshot.EpisodeID)
	fmt.Fprintf(out, "Type:     %s\n", snapshot.Type)
	fmt.Fprintf(out, "Status:   %s\n", snapshot.Status)
	fmt.Fprintf(out, "Progress: %d%%\n", snapshot.ProgressPct)
	fmt.Fprintf(out, "Step:     %s\n", snapshot.Step)
	if snapshot.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:    %s\n", snapshot.ErrorMessage)
	}
	if snapshot.UpdatedAt != "" {
		fmt.Fprintf(out, "Updated:  %s\n", snapshot.UpdatedAt)
	}
}
