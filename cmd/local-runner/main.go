// Command local-runner builds the dashboard once and writes it to disk as a
// self-contained snapshot: the HTML page, static PNG charts and the pivoted
// data behind every chart.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gridmix/internal/config"
	"gridmix/internal/fetchers"
	"gridmix/internal/logger"
	"gridmix/internal/models"
	"gridmix/internal/reports"
	"gridmix/internal/storage"
)

func newRootCmd() *cobra.Command {
	var out string
	var years int

	cmd := &cobra.Command{
		Use:           "local-runner",
		Short:         "Render the electricity dashboard to a local snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			logger.Configure(cfg.LogLevel, cfg.LogFormat)

			if out != "" {
				cfg.LocalReportsDir = out
				cfg.GCSBucket = ""
			}
			if years > 0 {
				cfg.SummaryYears = years
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "directory receiving the snapshot (default LOCAL_REPORTS_DIR)")
	cmd.Flags().IntVarP(&years, "years", "y", 0, "number of years in the annual summary (default SUMMARY_YEARS)")
	cmd.AddCommand(newListCmd(), newQueryCmd())
	return cmd
}

// openStorage opens the configured snapshot storage without requiring an API
// key. A non-empty dir forces a local client rooted there.
func openStorage(ctx context.Context, dir string) (storage.StorageClient, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadStorage(ctx)
	if err != nil {
		return nil, err
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	if dir != "" {
		cfg.LocalReportsDir = dir
		cfg.GCSBucket = ""
	}
	return storage.NewStorageClient(ctx, cfg)
}

func newListCmd() *cobra.Command {
	var dir string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the index pages of stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openStorage(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer client.Close()

			indexes, err := storage.ListReports(cmd.Context(), client, limit)
			if err != nil {
				return err
			}
			for _, p := range indexes {
				fmt.Fprintln(cmd.OutOrStdout(), storage.ObjectPath(client, p))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "snapshot directory (default GCS_BUCKET or LOCAL_REPORTS_DIR)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of snapshots, 0 for all")
	return cmd
}

func newQueryCmd() *cobra.Command {
	var dir, file string
	var year, years int
	var live bool

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the annual summary of the newest snapshot",
		Long: "Print the per-year generation totals and the clean, renewable and fossil shares.\n" +
			"The summary comes from the newest stored snapshot unless --file or --live is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var summaries []models.YearSummary
			var err error
			switch {
			case live:
				summaries, err = liveSummary(cmd.Context(), years)
			case file != "":
				summaries, err = fileSummary(file)
			default:
				summaries, err = storedSummary(cmd.Context(), dir)
			}
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("year") {
				return printJSON(cmd, summaries)
			}
			entry, ok := models.FindYear(summaries, year)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "No data for year %d\n", year)
				return nil
			}
			return printJSON(cmd, entry)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "print only this year")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "snapshot directory (default GCS_BUCKET or LOCAL_REPORTS_DIR)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the summary from this JSON file")
	cmd.Flags().BoolVar(&live, "live", false, "fetch the summary from Ember instead of a snapshot")
	cmd.Flags().IntVarP(&years, "years", "y", 0, "number of years fetched with --live (default SUMMARY_YEARS)")
	cmd.MarkFlagsMutuallyExclusive("live", "file", "dir")
	return cmd
}

func storedSummary(ctx context.Context, dir string) ([]models.YearSummary, error) {
	client, err := openStorage(ctx, dir)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	data, filePath, err := storage.LatestReportFile(ctx, client, reports.SummaryFile)
	if err != nil {
		return nil, err
	}
	var summaries []models.YearSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", storage.ObjectPath(client, filePath), err)
	}
	return summaries, nil
}

func fileSummary(file string) ([]models.YearSummary, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var summaries []models.YearSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", file, err)
	}
	return summaries, nil
}

func liveSummary(ctx context.Context, years int) ([]models.YearSummary, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	builder := reports.NewBuilder(fetchers.NewSource(cfg), reports.SettingsFromConfig(cfg))
	return builder.AnnualSummary(ctx, years)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.Error("Snapshot generation failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.For(logger.ComponentApp).With(logger.Fields{"run_id": uuid.NewString()})
	start := time.Now()

	builder := reports.NewBuilder(fetchers.NewSource(cfg), reports.SettingsFromConfig(cfg))

	client, err := storage.NewStorageClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	log.Info("Building dashboard snapshot", logger.Fields{
		"entity_code": cfg.EntityCode,
		"mockup_mode": cfg.MockupMode,
		"out":         storage.Location(client),
	})

	dash := builder.Build(ctx)

	files, err := reports.NewFileGenerator().GenerateAllFiles(dash)
	if err != nil {
		return err
	}

	indexPath, err := reports.NewStorageOrchestrator(client).StoreAllFiles(ctx, files)
	if err != nil {
		return err
	}

	log.Info("Snapshot written", logger.Fields{
		"index":           storage.ObjectPath(client, indexPath),
		"sections":        len(dash.Sections),
		"failed_sections": dash.Failed(),
		"summary_years":   len(dash.Summary),
		"duration_ms":     time.Since(start).Milliseconds(),
	})
	return nil
}
