package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Re-run brand analysis for every tracked brand",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "analyze")
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Analyzer.DailyAnalysis(ctx)
		if err != nil {
			return eris.Wrap(err, "daily")
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "BRAND_ID\tSTATUS\tMESSAGE")
		for _, r := range report.Results {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.BrandID, r.Status, r.Message)
		}
		_ = tw.Flush()

		zap.L().Info("daily analysis finished",
			zap.Int("brands", len(report.Results)),
			zap.Int("succeeded", report.Succeeded),
		)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("read"); err != nil {
			return err
		}
		st, err := openMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		zap.L().Info("schema up to date", zap.String("store", cfg.Store.Driver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dailyCmd, migrateCmd)
}
