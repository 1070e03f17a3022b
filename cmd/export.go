package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/database"
	"github.com/kozaktomas/frushion/internal/report"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved skin analyses as CSV",
	Long: `Export saved skin analyses as CSV with the columns
Skin Tone, Texture, Elasticity, Hydration and Timestamp.

By default only the latest analysis is exported, like the "Download Report"
button. Requires DATABASE_URL or MARIADB_DSN.

Examples:
  frushion export
  frushion export --all --output history.csv
  frushion export --all --output - | column -s, -t`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().Bool("all", false, "Export every saved skin analysis, newest first")
	exportCmd.Flags().StringP("output", "o", report.Filename, "Output file, - for stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	all := mustGetBool(cmd, "all")
	output := mustGetString(cmd, "output")
	toStdout := output == "-"

	ctx := context.Background()
	cfg := config.Load()

	closeStorage, err := requireStorage(cfg, toStdout)
	if err != nil {
		return err
	}
	defer closeStorage()

	reader, err := database.GetAnalysisReader(ctx)
	if err != nil {
		return err
	}

	var results = []database.StoredAnalysis{}
	if all {
		count, err := reader.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count analyses: %w", err)
		}
		if count > 0 {
			if results, err = reader.List(ctx, count); err != nil {
				return fmt.Errorf("failed to list analyses: %w", err)
			}
		}
	} else {
		latest, err := latestSkinAnalysis(ctx, reader)
		if err != nil {
			return err
		}
		results = append(results, *latest)
	}

	skinResults := database.SkinResults(results)
	if len(skinResults) == 0 {
		return errors.New("no skin analysis to export")
	}

	var w io.Writer = os.Stdout
	if !toStdout {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()

		bar := progressbar.DefaultBytes(-1, "Writing "+output)
		w = io.MultiWriter(f, bar)
		defer bar.Finish()
	}

	if err := report.Write(w, skinResults); err != nil {
		return err
	}
	if !toStdout {
		fmt.Printf("\nExported %d analyses to %s\n", len(skinResults), output)
	}
	return nil
}

// latestSkinAnalysis returns the newest analysis that carries a skin result.
func latestSkinAnalysis(ctx context.Context, reader database.AnalysisReader) (*database.StoredAnalysis, error) {
	latest, err := reader.Latest(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, errors.New("no saved analyses")
		}
		return nil, fmt.Errorf("failed to get latest analysis: %w", err)
	}
	if latest.HasSkin() {
		return latest, nil
	}

	count, err := reader.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}
	analyses, err := reader.List(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	for i := range analyses {
		if analyses[i].HasSkin() {
			return &analyses[i], nil
		}
	}
	return nil, errors.New("no skin analysis to export")
}
