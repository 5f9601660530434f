package main

import (
	"fmt"

	"github.com/mmdatafocus/requisition_inbound/middlewares"
	"github.com/mmdatafocus/requisition_inbound/models"
	"github.com/mmdatafocus/requisition_inbound/models/reports"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the header listing to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, db, closeFn, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			headers, err := models.ListHeaders(ctx, db)
			if err != nil {
				return fmt.Errorf("list headers: %w", err)
			}
			ctx = middlewares.WithLoaders(ctx, middlewares.NewLoaders(db))
			summaries, err := middlewares.LoadHeaderSummaries(ctx, headers)
			if err != nil {
				return fmt.Errorf("load counts: %w", err)
			}
			if err := reports.SaveHeadersWorkbook(out, summaries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d header(s) to %s\n", len(summaries), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "inbound_headers.xlsx", "output file")
	return cmd
}
