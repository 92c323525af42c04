package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nanosimsreduce/pkg/analysis"
	"nanosimsreduce/pkg/config"
	"nanosimsreduce/pkg/importer"
	"nanosimsreduce/pkg/report"
)

func newStandardCommand() *cobra.Command {
	var (
		flags      processingFlags
		name       string
		literature map[string]string
		savePath   string
	)

	cmd := &cobra.Command{
		Use:   "standard FILE",
		Short: "Reduce a standard to delta values",
		Long: `Reduce a standard analysis to QSA-corrected delta values without IMF
correction. With --save, the measured deltas and their 1 sigma uncertainties
become the running standard of a configuration file for later samples.`,
		Example: `  nanosims standard "im21 SC olivine.yaml" --name "San Carlos olivine" \
    --literature 17O=2.7,18O=5.3 --save nanosims.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			// Overrides apply to this run only; --save keeps the file's own
			// processing settings.
			saved := *cfg
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			lit, err := parseLiterature(literature)
			if err != nil {
				return err
			}

			params := analysis.ParamsFromConfig(cfg, importer.DocumentSource{Path: args[0]}, analysis.Standard)
			res, err := analysis.NewAnalyzer(params, log).Process(cmd.Context())
			if err != nil {
				return err
			}
			if err := report.Render(cmd.OutOrStdout(), res); err != nil {
				return err
			}

			if savePath == "" {
				return nil
			}
			saved.Calibration = res.Deltas.AsStandard(saved.Calibration, name, lit)
			if err := config.SaveConfig(&saved, savePath); err != nil {
				return err
			}
			log.Info().Str("path", savePath).Str("standard", name).Msg("calibration saved")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "name of the standard material")
	cmd.Flags().StringToStringVar(&literature, "literature", nil, "accepted delta values per isotope in permil, e.g. 17O=2.7,18O=5.3")
	cmd.Flags().StringVar(&savePath, "save", "", "write the configuration with this standard to the given path")
	return cmd
}

func parseLiterature(values map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(values))
	for label, raw := range values {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("literature value for %s: %w", label, err)
		}
		out[label] = v
	}
	return out, nil
}
