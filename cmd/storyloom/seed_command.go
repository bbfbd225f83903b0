package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storyloom/internal/store"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate the reference catalog (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			result, err := st.Seed(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Themes added:     %d\n", result.ThemesAdded)
			fmt.Fprintf(out, "Characters added: %d\n", result.CharactersAdded)
			fmt.Fprintf(out, "Series added:     %d\n", result.SeriesAdded)
			if result.ThemesAdded+result.CharactersAdded+result.SeriesAdded == 0 {
				fmt.Fprintln(out, "Catalog already seeded.")
			}
			return nil
		},
	}
}
