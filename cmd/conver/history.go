// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/conver/internal/convert"
	"github.com/pdiddy/conver/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past conversions",
	Long: `History lists recorded conversion attempts, newest first, with their
error codes. Use --prune-before to drop old entries first.`,
	Example: `  conver history --failed
  conver history --input report.docx --report json
  conver history --prune-before 720h --limit -1`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum entries to list (negative = all)")
	historyCmd.Flags().Bool("failed", false, "list failed attempts only")
	historyCmd.Flags().String("input", "", "list attempts for this input file")
	historyCmd.Flags().Duration("prune-before", 0, "delete entries older than this age before listing")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	failed, _ := cmd.Flags().GetBool("failed")
	input, _ := cmd.Flags().GetString("input")
	pruneBefore, _ := cmd.Flags().GetDuration("prune-before")
	if pruneBefore < 0 {
		return convert.Usagef("--prune-before must not be negative")
	}

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if pruneBefore > 0 {
		n, err := a.store.Prune(ctx, time.Now().Add(-pruneBefore))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Pruned %d conversions\n", n)
	}

	opts := history.QueryOptions{Limit: limit, FailedOnly: failed}
	if input != "" {
		// Attempts are recorded under normalized absolute paths.
		if opts.Input, _, err = convert.NormalizePaths(input, input); err != nil {
			return err
		}
	}

	records, err := a.store.List(ctx, opts)
	if err != nil {
		return err
	}
	return a.render.History(records)
}
