/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the full scan-reliability sweep.

REQUIREMENTS:
  User-specified:
  - Run the sweep and print one table per background / border color.
  - Specific flags for overrides.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config, then validate.
  - The effective seed is logged and stored so a run can be reproduced.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run()
  - Uses: internal/config, internal/output, internal/store

ERROR HANDLING:
  - Returns error if config load/validation fails, a sink cannot be opened,
    or the engine run fails.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Validate -> Sinks -> Engine.Run.

USAGE:
  qr-bench run --iterations 20 -o ./results

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/daryltucker/qr-bench/internal/config"
	"github.com/daryltucker/qr-bench/internal/engine"
	"github.com/daryltucker/qr-bench/internal/model"
	"github.com/daryltucker/qr-bench/internal/output"
	"github.com/daryltucker/qr-bench/internal/payload"
	"github.com/daryltucker/qr-bench/internal/store"
)

var (
	backgroundsOverride []string
	iterationsOverride  int
	seedOverride        uint64
	workersOverride     int
	imageDirOverride    string
	outputOverride      string
	markdownOverride    string
	saveOverride        bool
	dbDirOverride       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scan-reliability sweep",
	Long: `Runs the full sweep. For every background and border color a table is printed;
every row is one combination of box size, EC level, JPEG quality, target size and
pre-processing, tried --iterations times with fresh random payloads.

Rows are also written to CSV and JSON Lines files in the output directory, and
optionally to a Markdown report, the local history database and InfluxDB.`,
	Example: `  # Run with defaults (uses qr_bench.yaml if present)
  qr-bench run

  # Quick check against your own banner
  qr-bench run --backgrounds ./images/hacker.jpg --iterations 10

  # Reproduce a previous run and keep it in the history
  qr-bench run --seed 1234 --save

  # Parallel sweep with a Markdown report
  qr-bench run --workers 4 --markdown report.md -o ./results`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// 2. Overrides
		flags := cmd.Flags()
		if len(backgroundsOverride) > 0 {
			cfg.Backgrounds = backgroundsOverride
		}
		if flags.Changed("iterations") {
			cfg.Iterations = iterationsOverride
		}
		if flags.Changed("seed") {
			cfg.Seed = seedOverride
		}
		if flags.Changed("workers") {
			cfg.Workers = workersOverride
		}
		if flags.Changed("image-dir") {
			cfg.ImageDir = imageDirOverride
		}
		if outputOverride != "" {
			cfg.Output.Dir = outputOverride
		}
		if markdownOverride != "" {
			cfg.Output.Markdown = markdownOverride
		}
		if dbDirOverride != "" {
			cfg.DBDir = dbDirOverride
			cfg.SaveDB = true
		}
		if saveOverride {
			cfg.SaveDB = true
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		// 3. Execution
		return runSweep(cmd, cfg)
	},
}

func runSweep(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	if cfg.ImageDir != "" {
		if err := os.MkdirAll(cfg.ImageDir, 0755); err != nil {
			return fmt.Errorf("failed to create image directory %s: %w", cfg.ImageDir, err)
		}
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", cfg.Output.Dir, err)
	}

	gen := payload.NewGenerator(cfg.Seed)
	snapshot := *cfg
	snapshot.Seed = gen.Seed()
	cfgYAML, err := snapshot.Marshal()
	if err != nil {
		return fmt.Errorf("failed to snapshot config: %w", err)
	}
	run := model.Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Seed:      gen.Seed(),
		Config:    cfgYAML,
	}

	// Setup Outputs
	rows := output.NewMultiWriter()
	defer func() {
		if err := rows.Close(); err != nil {
			output.Logger.Error("Failed to close result writers", "error", err)
		}
	}()

	if cfg.Output.CSV != "" {
		csvPath := filepath.Join(cfg.Output.Dir, cfg.Output.CSV)
		csvWriter, err := output.NewCSVWriter(csvPath)
		if err != nil {
			return fmt.Errorf("failed to init CSV writer at %s: %w", csvPath, err)
		}
		rows.Add(csvWriter)
	}

	if cfg.Output.JSON != "" {
		jsonPath := filepath.Join(cfg.Output.Dir, cfg.Output.JSON)
		jsonWriter, err := output.NewJSONWriter(jsonPath)
		if err != nil {
			return fmt.Errorf("failed to init JSON writer at %s: %w", jsonPath, err)
		}
		rows.Add(jsonWriter)
	}

	if cfg.SaveDB {
		dir := cfg.DBDir
		if dir == "" {
			dir = config.DefaultDBDir()
		}
		db, err := store.Open(dir, store.DefaultOptions())
		if err != nil {
			return err
		}
		if err := db.SaveRun(ctx, run); err != nil {
			_ = db.Close()
			return err
		}
		output.Logger.Info("Saving run to history", "run_id", run.ID, "db", db.Path())
		rows.Add(db)
	}

	if cfg.Influx.Enabled() {
		iw, err := output.NewInfluxWriter(ctx, cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
		if err != nil {
			return err
		}
		rows.Add(iw)
	}

	groups := []output.GroupWriter{output.NewTableWriter(cmd.OutOrStdout())}
	if cfg.Output.Markdown != "" {
		mdPath := filepath.Join(cfg.Output.Dir, cfg.Output.Markdown)
		md, err := output.NewMarkdownFile(mdPath, "QR scan reliability, run "+run.ID)
		if err != nil {
			return fmt.Errorf("failed to init Markdown report at %s: %w", mdPath, err)
		}
		defer func() {
			if err := md.Close(); err != nil {
				output.Logger.Error("Failed to write Markdown report", "path", mdPath, "error", err)
			}
		}()
		groups = append(groups, md)
	}

	_, err = engine.New(cfg, gen).Run(ctx, run.ID, engine.Sinks{Rows: rows, Groups: groups})
	return err
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&backgroundsOverride, "backgrounds", nil, "Comma-separated list of background images or builtin:<name>")
	runCmd.Flags().IntVar(&iterationsOverride, "iterations", 0, "Trials per configuration")
	runCmd.Flags().Uint64Var(&seedOverride, "seed", 0, "Random seed (0 picks one and logs it)")
	runCmd.Flags().IntVar(&workersOverride, "workers", 1, "Configurations run in parallel per table")
	runCmd.Flags().StringVar(&imageDirOverride, "image-dir", "", "Directory for the intermediate JPEGs (empty keeps them in memory)")
	runCmd.Flags().StringVarP(&outputOverride, "output-dir", "o", "", "Output directory for results (CSV/JSON/Markdown)")
	runCmd.Flags().StringVar(&markdownOverride, "markdown", "", "Also write the tables to this Markdown file in the output directory")
	runCmd.Flags().BoolVar(&saveOverride, "save", false, "Store the run in the history database")
	runCmd.Flags().StringVar(&dbDirOverride, "db-dir", "", "History database directory (implies --save)")
}
