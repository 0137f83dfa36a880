package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/brand-scope/internal/analysis"
	"github.com/sells-group/brand-scope/internal/model"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis and store the results",
	Long:  "Runs a DeepFocus, Voyager or Explorer analysis for a query, stores the run and prints its mode_id (or the full run with --json).",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		modeName, _ := cmd.Flags().GetString("mode")
		userID, _ := cmd.Flags().GetString("user")
		query, _ := cmd.Flags().GetString("query")
		brand, _ := cmd.Flags().GetString("brand")
		competitors, _ := cmd.Flags().GetStringSlice("competitor")
		asJSON, _ := cmd.Flags().GetBool("json")

		mode, err := model.ParseMode(modeName)
		if err != nil {
			return err
		}
		req := analysis.Request{
			Mode:        mode,
			UserID:      userID,
			Query:       query,
			Brand:       brand,
			Competitors: competitors,
		}
		// Fail before touching the network or the database.
		if err := req.Validate(); err != nil {
			return err
		}

		env, err := initEnv(ctx, "analyze")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Analyzer.Run(ctx, req)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}
		saved, err := env.Persister.Save(ctx, res, userID)
		if err != nil {
			return eris.Wrap(err, "analyze: save results")
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(saved)
		}
		fmt.Println(saved.ModeID)
		return nil
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.String("mode", string(model.ModeDeepFocus), "analysis mode: DeepFocus, Voyager or Explorer")
	f.String("user", "", "user id (uuid)")
	f.String("query", "", "search query")
	f.String("brand", "", "brand to compare in Explorer mode (default: the query)")
	f.StringSlice("competitor", nil, "competitor name (repeatable, Explorer mode)")
	f.Bool("json", false, "print the stored run as JSON")
	_ = analyzeCmd.MarkFlagRequired("user")
	_ = analyzeCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(analyzeCmd)
}
