package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/intake/internal/cli"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/validation"
	"github.com/spf13/cobra"
)

// errRejected makes the process exit with status 1 after the report is printed.
var errRejected = errors.New("file rejected")

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a report file locally",
	Long: `Runs every validation rule against a local file and prints the outcomes.
Outcomes are only written to the configured store with --record.
Exits with status 1 when the file is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		fileType, _ := cmd.Flags().GetString("type")
		if fileType == "" {
			fileType = validation.Extension(path)
		}
		record, _ := cmd.Flags().GetBool("record")

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var v *validation.Validator
		if record {
			backend, err := cli.OpenBackend(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer backend.Close()
			v = backend.Validator
		} else {
			v = validation.New(memory.NewStore(),
				validation.WithLogger(logger),
				validation.WithHeaders(cfg.AllowedHeaders),
				validation.WithMaxFileKB(cfg.MaxFileKB),
			)
		}

		report, err := v.Process(ctx, validation.Upload{
			FileName: filepath.Base(path),
			FileType: domain.FileType(fileType),
			Data:     data,
		})
		if err != nil {
			return err
		}
		if err := cli.WriteReport(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if !report.Accepted {
			return errRejected
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("type", "t", "", "Declared file type: csv or txt (default: the file extension)")
	validateCmd.Flags().Bool("record", false, "Write outcomes to the configured result store")
}
