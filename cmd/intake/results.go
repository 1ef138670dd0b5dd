package main

import (
	"context"

	"github.com/aretw0/intake/internal/cli"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List recorded validation outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fileName, _ := cmd.Flags().GetString("file-name")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		backend, err := cli.OpenBackend(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		recs, err := backend.Store.List(ctx, domain.Filter{FileName: fileName, Limit: limit})
		if err != nil {
			return err
		}
		return cli.WriteRecords(cmd.OutOrStdout(), recs, asJSON)
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.Flags().String("file-name", "", "Only show records of this file")
	resultsCmd.Flags().IntP("limit", "n", 50, "Maximum number of records")
	resultsCmd.Flags().Bool("json", false, "Print records as JSON")
}
