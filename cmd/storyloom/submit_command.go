package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storyloom/internal/api"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		prompt       string
		title        string
		themeID      int64
		seriesID     int64
		continuesID  int64
		characterIDs []int64
		duration     int
		watch        bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new episode for generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.client()
			if err != nil {
				return err
			}

			req := api.SubmitEpisodeRequest{
				UserPrompt:   prompt,
				Title:        title,
				ThemeID:      themeID,
				CharacterIDs: characterIDs,
			}
			if cmd.Flags().Changed("series") {
				req.SeriesID = &seriesID
			}
			if cmd.Flags().Changed("continues") {
				req.ContinuationFromEpisodeID = &continuesID
			}
			if cmd.Flags().Changed("duration") {
				req.TargetDurationSec = &duration
			}

			created, err := c.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Episode %d created (series %d, episode %d)\n",
				created.Episode.ID, created.Episode.SeriesID, created.Episode.EpisodeNumber)
			fmt.Fprintf(out, "Job %d queued\n", created.Job.ID)

			if !watch {
				fmt.Fprintf(out, "Poll with: storyloom job %d --watch\n", created.Job.ID)
				return nil
			}
			return watchJob(cmd, c, created.Job.ID)
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "Story prompt for the episode (required)")
	cmd.Flags().StringVar(&title, "title", "", "Episode title")
	cmd.Flags().Int64Var(&themeID, "theme", 0, "Theme id (required)")
	cmd.Flags().Int64Var(&seriesID, "series", 0, "Series id (defaults to the oldest series)")
	cmd.Flags().Int64Var(&continuesID, "continues", 0, "Episode id this episode continues")
	cmd.Flags().Int64SliceVar(&characterIDs, "character", nil, "Character id (repeatable)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Target duration in seconds")
	cmd.Flags().BoolVar(&watch, "watch", false, "Poll the job until it finishes")
	_ = cmd.MarkFlagRequired("prompt")
	_ = cmd.MarkFlagRequired("theme")

	return cmd
}
