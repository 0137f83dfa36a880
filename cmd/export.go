package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/brand-scope/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored run to XLSX or CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		modeID, _ := cmd.Flags().GetString("mode-id")
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		table, _ := cmd.Flags().GetString("table")

		if format != "xlsx" && format != "csv" {
			return eris.Errorf("export: unsupported format %q (want xlsx or csv)", format)
		}
		if format == "xlsx" && out == "" {
			return eris.New("export: --out is required for xlsx")
		}

		reader, st, err := initReader(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := reader.ByModeID(ctx, modeID)
		if err != nil {
			return eris.Wrap(err, "export")
		}
		if res == nil {
			return eris.Errorf("run not found: %s", modeID)
		}

		if format == "xlsx" {
			if err := export.WriteXLSX(out, res); err != nil {
				return err
			}
		} else {
			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return eris.Wrap(err, "export: create output")
				}
				defer f.Close() //nolint:errcheck
				w = f
			}
			if err := export.WriteCSV(w, res, table); err != nil {
				return err
			}
		}

		zap.L().Info("run exported",
			zap.String("mode_id", modeID),
			zap.String("format", format),
			zap.String("out", out),
		)
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.String("mode-id", "", "run to export")
	f.String("format", "xlsx", "output format: xlsx or csv")
	f.String("out", "", "output path (csv defaults to stdout)")
	f.String("table", export.TableRankings, "table to write for csv: rankings, insights, comparisons or trends")
	_ = exportCmd.MarkFlagRequired("mode-id")
	rootCmd.AddCommand(exportCmd)
}
