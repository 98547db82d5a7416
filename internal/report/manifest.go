// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Manifest is the on-disk record of a harvest run: the configuration that
// produced the export, its summary statistics, and timing. It sits next to
// the CSV so a result file is never separated from how it was made.
type Manifest struct {
	Run     RunInfo        `yaml:"run"`
	Config  ManifestConfig `yaml:"config"`
	Summary Summary        `yaml:"summary"`

	// OutputCSV is the name of the export this manifest describes.
	OutputCSV string `yaml:"output_csv"`
}

// RunInfo stores run timing.
type RunInfo struct {
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`
	Duration   string    `yaml:"duration"`
}

// ManifestConfig stores the harvest configuration in a readable form.
type ManifestConfig struct {
	Delay           string `yaml:"delay"`
	CheckpointEvery int    `yaml:"checkpoint_every"`
	Resumed         bool   `yaml:"resumed"`
	Mailto          string `yaml:"mailto,omitempty"`
}

// NewManifest assembles a manifest for a completed run.
func NewManifest(cfg types.HarvestConfig, srcCfg types.SourceConfig, sum Summary, started, finished time.Time, outputCSV string) Manifest {
	return Manifest{
		Run: RunInfo{
			StartedAt:  started,
			FinishedAt: finished,
			Duration:   finished.Sub(started).Round(time.Second).String(),
		},
		Config: ManifestConfig{
			Delay:           cfg.Delay.String(),
			CheckpointEvery: cfg.CheckpointEvery,
			Resumed:         cfg.Resume,
			Mailto:          srcCfg.Mailto,
		},
		Summary:   sum,
		OutputCSV: outputCSV,
	}
}

// WriteManifest saves the manifest as YAML.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a previously written manifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
