package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/brand-scope/internal/model"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored analysis runs",
	Long:  "Commands for listing a user's runs and viewing a single run.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's runs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		reader, st, err := initReader(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		userID, _ := cmd.Flags().GetString("user")
		runs, err := reader.ByUserID(ctx, userID)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <mode-id>",
	Short: "Show a stored run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reader, st, err := initReader(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := reader.ByModeID(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		if res == nil {
			return eris.Errorf("run not found: %s", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

// formatRunsList writes one row per run.
func formatRunsList(w io.Writer, runs []model.SearchResults) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE_ID\tMODE\tRANKINGS\tMODELS\tQUERY\tANALYZED_AT")
	for i := range runs {
		run := &runs[i]
		query := ""
		models := make(map[string]struct{})
		for _, r := range run.AIRankings {
			if query == "" {
				query = r.Query
			}
			models[r.LLMName] = struct{}{}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			run.ModeID,
			run.Mode,
			len(run.AIRankings),
			len(models),
			truncate(query, 40),
			run.LatestAnalyzedAt().Format(time.RFC3339),
		)
	}
	_ = tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	runsListCmd.Flags().String("user", "", "user id whose runs to list")
	_ = runsListCmd.MarkFlagRequired("user")

	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
