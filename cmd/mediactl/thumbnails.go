package main

import (
	"github.com/spf13/cobra"
)

var (
	backfillLimit       int
	backfillConcurrency int
)

var thumbnailsCmd = &cobra.Command{
	Use:   "thumbnails",
	Short: "Manage asset thumbnails",
}

var thumbnailsBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Generate thumbnails for assets that have none",
	Long:  `Loads up to --limit assets without a thumbnail and runs one batch over them. Failed items are listed in the report; the command itself only fails when the batch cannot start.`,
	Args:  cobra.NoArgs,
	RunE:  runThumbnailsBackfill,
}

func init() {
	rootCmd.AddCommand(thumbnailsCmd)
	thumbnailsCmd.AddCommand(thumbnailsBackfillCmd)

	thumbnailsBackfillCmd.Flags().IntVar(&backfillLimit, "limit", 100, "max assets to process")
	thumbnailsBackfillCmd.Flags().IntVar(&backfillConcurrency, "concurrency", 0, "parallel encodes (default from BATCH_CONCURRENCY)")
}

func runThumbnailsBackfill(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	core, err := openCore(ctx, backfillConcurrency)
	if err != nil {
		return err
	}
	defer core.Close()

	rep, err := core.Thumbnails.Backfill(ctx, backfillLimit)
	if err != nil {
		return err
	}

	if isJSONOutput() {
		return printJSON(cmd.OutOrStdout(), rep)
	}
	printReport(cmd.OutOrStdout(), rep)
	return nil
}
