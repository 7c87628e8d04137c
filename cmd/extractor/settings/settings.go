// Package settings turns the extractor configuration into feature dynamics
// run configurations.
package settings

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/HatiCode/fdynamics/cmd/extractor/config"
	"github.com/HatiCode/fdynamics/pkg/calculators"
	"github.com/HatiCode/fdynamics/pkg/dynamics"
	"github.com/HatiCode/fdynamics/pkg/engineer"
)

// New returns one dynamics.Config per window length and calls os.Exit(1) on
// an unknown preset.
func New(cfg *config.Config, logger *slog.Logger) []dynamics.Config {
	out, err := Build(cfg)
	if err != nil {
		logger.Error("invalid feature settings", "error", err)
		os.Exit(1)
	}
	logger.Info("feature settings",
		"window_lengths", cfg.WindowLengths,
		"fts_params", cfg.FTSPreset,
		"fd_params", cfg.FDPreset,
	)
	return out
}

// Build returns one dynamics.Config per window length.
func Build(cfg *config.Config) ([]dynamics.Config, error) {
	fts, ok := calculators.Preset(cfg.FTSPreset)
	if !ok {
		return nil, fmt.Errorf("unknown fts-params preset %q", cfg.FTSPreset)
	}
	fd, ok := calculators.Preset(cfg.FDPreset)
	if !ok {
		return nil, fmt.Errorf("unknown fd-params preset %q", cfg.FDPreset)
	}
	if len(cfg.WindowLengths) == 0 {
		return nil, fmt.Errorf("no window lengths configured")
	}

	out := make([]dynamics.Config, len(cfg.WindowLengths))
	for i, n := range cfg.WindowLengths {
		out[i] = dynamics.Config{
			WindowLength:                n,
			FeatureTimeseriesParameters: fts.Clone(),
			FeatureDynamicsParameters:   fd.Clone(),
		}
	}
	return out, nil
}

// Engineering returns the input engineering options, or false when none is
// enabled.
func Engineering(cfg *config.Config) (engineer.Options, bool) {
	opts := engineer.Options{Within: cfg.EngineerWithin, Between: cfg.EngineerBetween}
	return opts, opts.Within || opts.Between
}
