package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nanosimsreduce/pkg/analysis"
	"nanosimsreduce/pkg/importer"
	"nanosimsreduce/pkg/report"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		flags    processingFlags
		workbook string
	)

	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Reduce sample files to IMF-corrected delta values",
		Long: `Reduce one or more exported cube documents (.yaml, .json, optionally .lz4)
to QSA-corrected delta values standardized against the configured standard.
Several files are reduced in parallel, one file per worker.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			jobs := make([]analysis.Job, len(args))
			for i, path := range args {
				jobs[i] = analysis.Job{
					Name:   path,
					Params: analysis.ParamsFromConfig(cfg, importer.DocumentSource{Path: path}, analysis.Sample),
				}
			}

			results := analysis.RunBatch(cmd.Context(), jobs, cfg.Processing.NumCores, log)

			out := cmd.OutOrStdout()
			failed := 0
			for _, jr := range results {
				if jr.Err != nil {
					failed++
					continue
				}
				if err := report.Render(out, jr.Result); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			if len(results) > 1 {
				if err := report.RenderBatch(out, results); err != nil {
					return err
				}
			}

			if workbook != "" {
				if err := report.WriteWorkbook(workbook, results); err != nil {
					return err
				}
				log.Info().Str("path", workbook).Int("files", len(results)).Msg("workbook written")
			}

			if failed > 0 {
				for _, jr := range results {
					if jr.Err != nil {
						fmt.Fprintf(os.Stderr, "%s: %v\n", jr.Name, jr.Err)
					}
				}
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&workbook, "xlsx", "", "also write the results to this xlsx workbook")
	return cmd
}
