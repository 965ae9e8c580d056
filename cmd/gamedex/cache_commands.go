package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and fill the catalog cache",
	}

	cacheCmd.AddCommand(newCacheStatusCommand(ctx))
	cacheCmd.AddCommand(newCacheScrapeCommand(ctx))

	return cacheCmd
}

func newCacheStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog cache counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(false, func(svc *services) error {
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Metric", "Value"},
					[][]string{
						{"Cache file", svc.cfg.Catalog.File},
						{"Known entries", strconv.Itoa(svc.catalog.Count())},
					},
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newCacheScrapeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run the background catalog scraper until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(true, func(svc *services) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "scraping catalog ids into %s (%d known, %d unresolved), press Ctrl-C to stop\n",
					svc.cfg.Catalog.File, svc.catalog.Count(), svc.catalog.MissingCount())

				signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				<-signalCtx.Done()

				svc.catalog.StopScraping()
				fmt.Fprintf(out, "scraper stopped, %d unresolved id(s) remain\n", svc.catalog.MissingCount())
				return nil
			})
		},
	}
}
