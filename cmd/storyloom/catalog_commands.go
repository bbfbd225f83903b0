package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newThemesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List selectable themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.client()
			if err != nil {
				return err
			}
			themes, err := c.Themes(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(themes))
			for _, theme := range themes {
				rows = append(rows, []string{
					strconv.FormatInt(theme.ID, 10),
					theme.Key,
					theme.Label,
					theme.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Key", "Label", "Description"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newCharactersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "characters",
		Short: "List selectable characters",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.client()
			if err != nil {
				return err
			}
			characters, err := c.Characters(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(characters))
			for _, character := range characters {
				rows = append(rows, []string{
					strconv.FormatInt(character.ID, 10),
					character.Name,
					character.SpeechStyle,
					character.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Speech Style", "Description"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newSeriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "series",
		Short: "List story series",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.client()
			if err != nil {
				return err
			}
			series, err := c.Series(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(series))
			for _, item := range series {
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					item.Title,
					item.Language,
					item.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Language", "Description"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List recently created episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.client()
			if err != nil {
				return err
			}
			episodes, err := c.Episodes(cmd.Context(), limit)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(episodes))
			for _, episode := range episodes {
				rows = append(rows, []string{
					strconv.FormatInt(episode.ID, 10),
					strconv.FormatInt(episode.SeriesID, 10),
					strconv.Itoa(episode.EpisodeNumber),
					episode.Title,
					episode.Status,
					episode.CreatedAt,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Series", "#", "Title", "Status", "Created"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of episodes to list")
	return cmd
}
