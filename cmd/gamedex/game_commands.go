package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newGameCommand(ctx *commandContext) *cobra.Command {
	gameCmd := &cobra.Command{
		Use:   "game",
		Short: "Operate on a single game",
	}

	gameCmd.AddCommand(newGameRenameCommand(ctx))
	gameCmd.AddCommand(newGameRemoveCommand(ctx))
	gameCmd.AddCommand(newGameDeleteCommand(ctx))
	gameCmd.AddCommand(newGameCompleteCommand(ctx))
	gameCmd.AddCommand(newGameSessionCommand(ctx))
	gameCmd.AddCommand(newGameSetImageCommand(ctx))

	return gameCmd
}

func newGameRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <title> <new title>",
		Short: "Rename a game and re-fetch its data",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(false, func(svc *services) error {
				id, err := resolveGame(svc.store, args[0])
				if err != nil {
					return err
				}
				refreshed := make(chan string, 1)
				newID, err := svc.store.RenameGame(cmd.Context(), id, args[1], func(newID string) {
					refreshed <- newID
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "renamed %q to %q, fetching data...\n", args[0], args[1])
				select {
				case <-refreshed:
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				}
				if game, ok := svc.store.Get(newID); ok && game.Data.BestImage() != nil {
					fmt.Fprintln(out, "data fetched")
				} else {
					fmt.Fprintln(out, "no provider recognized the new title")
				}
				return nil
			})
		},
	}
}

func newGameRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <title>",
		Short: "Delete the shortcut but keep the game's history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(false, func(svc *services) error {
				id, err := resolveGame(svc.store, args[0])
				if err != nil {
					return err
				}
				if err := svc.store.RemoveGame(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s (history kept)\n", args[0])
				return nil
			})
		},
	}
}

func newGameDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <title>",
		Short: "Erase a game and its history entirely",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(false, func(svc *services) error {
				id, err := resolveGame(svc.store, args[0])
				if err != nil {
					return err
				}
				deleted, err := svc.store.DeleteGame(id)
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("no game titled %q", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newGameCompleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "complete <title>",
		Aliases: []string{"beat"},
		Short:   "Mark a game as beaten",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(false, func(svc *services) error {
				id, err := resolveGame(svc.store, args[0])
				if err != nil {
					return err
				}
				if err := svc.store.SetCompleted(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "marked %s as beaten\n", args[0])
				return nil
			})
		},
	}
}

func newGameSessionCommand(ctx *commandContext) *cobra.Command {
	var minutes int
	var startFlag string

	cmd := &cobra.Command{
		Use:   "session <title>",
		Short: "Log a play session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if startFlag != "" {
				parsed, err := parseSessionStart(startFlag)
				if err != nil {
					return err
				}
				start = parsed
			}
			return ctx.withServices(false, func(svc *services) error {
				id, err := resolveGame(svc.store, args[0])
				if err != nil {
					return err
				}
				if err := svc.store.AddSession(id, start, minutes); err != nil {
					return err
				}
				if minutes > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "logged %s session for %s\n", formatMinutes(minutes), args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "logged session for %s\n", args[0])
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Session length in minutes")
	cmd.Flags().StringVar(&startFlag, "start", "", "Session start, e.g. 2026-03-14 or \"2026-03-14 21:30\" (default now)")
	return cmd
}

func parseSessionStart(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized session start %q", value)
}

func newGameSetImageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-image <title> <image file>",
		Short: "Use a local image as the game's cover",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(false, func(svc *services) error {
				id, err := resolveGame(svc.store, args[0])
				if err != nil {
					return err
				}
				if err := svc.store.SetUserImage(id, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cover for %s set from %s\n", args[0], args[1])
				return nil
			})
		},
	}
}
