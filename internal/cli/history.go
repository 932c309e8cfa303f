/*
PURPOSE:
  `qr-bench history`: list stored runs or replay one run's tables.

ARCHITECTURE INTEGRATION:
  - Uses: internal/store, internal/output

ERROR HANDLING:
  - An unknown run id names the database it looked in.

USAGE:
  qr-bench history
  qr-bench history --show-config --markdown run.md <run-id>
*/

package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/daryltucker/qr-bench/internal/config"
	"github.com/daryltucker/qr-bench/internal/output"
	"github.com/daryltucker/qr-bench/internal/store"
)

var (
	historyDBDir    string
	historyLimit    int
	historyMarkdown string
	historyConfig   bool
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List stored runs, or print the tables of one run",
	Long: `Without arguments, lists the runs saved with 'run --save', newest first.
With a run id, prints that run's tables again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		dir := historyDBDir
		if dir == "" {
			dir = cfg.DBDir
		}
		if dir == "" {
			dir = config.DefaultDBDir()
		}

		db, err := store.Open(dir, store.Options{EnableWAL: true})
		if err != nil {
			return err
		}
		defer db.Close()

		if len(args) == 0 {
			return listRuns(cmd, db)
		}
		return showRun(cmd, db, args[0])
	},
}

func listRuns(cmd *cobra.Command, db *store.Store) error {
	runs, err := db.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs stored yet. Use 'qr-bench run --save'.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			strconv.FormatUint(r.Seed, 10),
			strconv.Itoa(r.Rows),
		})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("run id", "started", "seed", "rows")
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func showRun(cmd *cobra.Command, db *store.Store, runID string) error {
	groups, err := db.Results(cmd.Context(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return fmt.Errorf("no run %s in %s", runID, db.Path())
	}
	if err != nil {
		return err
	}

	if historyConfig {
		run, err := db.Run(cmd.Context(), runID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# run %s, seed %d\n%s\n", run.ID, run.Seed, run.Config)
	}

	tw := output.NewTableWriter(cmd.OutOrStdout())
	for _, g := range groups {
		if err := tw.WriteGroup(g); err != nil {
			return err
		}
	}

	if historyMarkdown != "" {
		md, err := output.NewMarkdownFile(filepath.Clean(historyMarkdown), "QR scan reliability, run "+runID)
		if err != nil {
			return err
		}
		for _, g := range groups {
			if err := md.WriteGroup(g); err != nil {
				return err
			}
		}
		if err := md.Close(); err != nil {
			return err
		}
		output.Logger.Info("Wrote Markdown report", "path", historyMarkdown)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyDBDir, "db-dir", "", "history database directory (default is the XDG data dir)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to list (0 = all)")
	historyCmd.Flags().StringVar(&historyMarkdown, "markdown", "", "also write the run's tables to this Markdown file")
	historyCmd.Flags().BoolVar(&historyConfig, "show-config", false, "print the configuration the run used")
}
