package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var renditionsCmd = &cobra.Command{
	Use:   "renditions",
	Short: "Manage asset renditions",
}

var renditionsReconcileCmd = &cobra.Command{
	Use:   "reconcile <asset-id>",
	Short: "Dispatch missing renditions of an asset",
	Long:  `Compares the asset's rendition cascade with the renditions that exist and sends the missing tiers to the rendition worker. Does not wait for encoding.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRenditionsReconcile,
}

func init() {
	rootCmd.AddCommand(renditionsCmd)
	renditionsCmd.AddCommand(renditionsReconcileCmd)
}

func runRenditionsReconcile(cmd *cobra.Command, args []string) error {
	assetID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid asset id %q: %w", args[0], err)
	}

	ctx := cmd.Context()
	core, err := openCore(ctx, 0)
	if err != nil {
		return err
	}
	defer core.Close()

	ack, err := core.Renditions.Reconcile(ctx, assetID)
	if err != nil {
		return err
	}

	if isJSONOutput() {
		return printJSON(cmd.OutOrStdout(), ack)
	}
	printAck(cmd.OutOrStdout(), ack)
	return nil
}
