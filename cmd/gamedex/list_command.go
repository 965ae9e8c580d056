package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gamedex/internal/library"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var filterExpr string
	var category string
	var order string
	var desc bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library games",
		Long: `List library games, optionally filtered and sorted.

The filter expression is a set of &-joined clauses. A plain clause matches
the title as a substring; clauses starting with * compare a field:

  *added > 2025        added after 2025
  *beaten = 2026/3     beaten in March 2026
  *played = 2026/1/15  played on a specific day
  *playcount > 4       played more than four times
  *rating < 70         average rating under 70`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gameFilter, err := parseCategory(category)
			if err != nil {
				return err
			}
			gameOrder, err := parseOrder(order)
			if err != nil {
				return err
			}
			return ctx.withServices(false, func(svc *services) error {
				ids := svc.store.ListGames(filterExpr, gameFilter, gameOrder, !desc)
				rows := make([][]string, 0, len(ids))
				for _, id := range ids {
					game, ok := svc.store.Get(id)
					if !ok {
						continue
					}
					rows = append(rows, []string{
						game.Title,
						yesNo(!game.Removed()),
						formatDate(game.Completed),
						formatRating(game.Data.AverageRating()),
						formatMinutes(game.TotalPlayMinutes()),
						strconv.Itoa(game.PlayCount()),
						formatDate(game.LastPlayed()),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Title", "Installed", "Beaten", "Rating", "Play Time", "Sessions", "Last Played"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				fmt.Fprintf(out, "%d game(s)\n", len(rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "Filter expression")
	cmd.Flags().StringVar(&category, "category", "all", "Category: all, installed, removed, beaten, unbeaten, controller, unidentified")
	cmd.Flags().StringVarP(&order, "order", "o", "title", "Sort key: title, playtime, playcount, rating, lastplayed, beattime, added")
	cmd.Flags().BoolVar(&desc, "desc", false, "Reverse the sort order")
	return cmd
}

func parseCategory(category string) (library.GameFilter, error) {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "", "all":
		return library.FilterAll, nil
	case "installed":
		return library.FilterInstalled, nil
	case "removed":
		return library.FilterRemoved, nil
	case "beaten":
		return library.FilterBeaten, nil
	case "unbeaten":
		return library.FilterUnbeaten, nil
	case "controller":
		return library.FilterWithControllerSupport, nil
	case "unidentified":
		return library.FilterUnidentified, nil
	}
	return library.FilterAll, fmt.Errorf("unknown category %q", category)
}

func parseOrder(order string) (library.GameOrder, error) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "title":
		return library.OrderTitle, nil
	case "playtime":
		return library.OrderPlayTime, nil
	case "playcount":
		return library.OrderPlayCount, nil
	case "rating":
		return library.OrderRating, nil
	case "lastplayed":
		return library.OrderLastPlayed, nil
	case "beattime":
		return library.OrderBeatTime, nil
	case "added":
		return library.OrderDateAdded, nil
	}
	return library.OrderTitle, fmt.Errorf("unknown sort key %q", order)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatRating(rating *int) string {
	if rating == nil {
		return ""
	}
	return strconv.Itoa(*rating)
}

func formatMinutes(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
