package settings

import (
	"testing"

	"github.com/HatiCode/fdynamics/cmd/extractor/config"
	"github.com/HatiCode/fdynamics/pkg/calculators"
	"github.com/google/go-cmp/cmp"
)

func TestBuild(t *testing.T) {
	cfg := &config.Config{
		WindowLengths: []int{5, 10},
		FTSPreset:     "minimal",
		FDPreset:      "comprehensive",
	}

	got, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].WindowLength != 5 || got[1].WindowLength != 10 {
		t.Errorf("window lengths = %d, %d, want 5, 10", got[0].WindowLength, got[1].WindowLength)
	}
	if diff := cmp.Diff(calculators.Minimal(), got[0].FeatureTimeseriesParameters); diff != "" {
		t.Errorf("fts parameters mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(calculators.Comprehensive(), got[1].FeatureDynamicsParameters); diff != "" {
		t.Errorf("fd parameters mismatch (-want +got):\n%s", diff)
	}

	// Each config owns its parameters.
	got[0].FeatureDynamicsParameters["quantile"][0]["q"] = 0.42
	if got[1].FeatureDynamicsParameters["quantile"][0]["q"] == 0.42 {
		t.Error("configs share parameter maps")
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"unknown fts preset", config.Config{WindowLengths: []int{5}, FTSPreset: "huge", FDPreset: "minimal"}},
		{"unknown fd preset", config.Config{WindowLengths: []int{5}, FTSPreset: "minimal", FDPreset: ""}},
		{"no windows", config.Config{FTSPreset: "minimal", FDPreset: "minimal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(&tt.cfg); err == nil {
				t.Error("Build() should fail")
			}
		})
	}
}

func TestEngineering(t *testing.T) {
	if _, ok := Engineering(&config.Config{}); ok {
		t.Error("Engineering() enabled with no flags set")
	}
	opts, ok := Engineering(&config.Config{EngineerBetween: true})
	if !ok || !opts.Between || opts.Within {
		t.Errorf("Engineering() = %+v, %v", opts, ok)
	}
}
