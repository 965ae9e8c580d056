package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "update [title]",
		Short: "Fetch provider data for games",
		Long: `Fetch provider data for one game, or for every installed game that
has none yet. Routine updates skip providers whose data is still fresh;
--force re-queries everything and merges the results.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(false, func(svc *services) error {
				out := cmd.OutOrStdout()

				if len(args) == 0 {
					updated, err := svc.store.UpdateAll(cmd.Context(), func(id string) {
						if game, ok := svc.store.Get(id); ok {
							fmt.Fprintf(out, "updated %s\n", game.Title)
						}
					})
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%d game(s) updated\n", updated)
					return nil
				}

				id, err := resolveGame(svc.store, args[0])
				if err != nil {
					return err
				}
				changed, err := svc.store.UpdateGame(cmd.Context(), id, force)
				if err != nil {
					return err
				}
				if err := svc.store.Save(); err != nil {
					return err
				}
				if changed {
					fmt.Fprintf(out, "updated %s\n", args[0])
				} else {
					fmt.Fprintf(out, "%s is up to date\n", args[0])
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-query providers even when stored data is fresh")
	return cmd
}
