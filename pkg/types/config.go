package types

import "time"

// HTTPConfig holds shared HTTP settings used by the source clients.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citation-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceConfig holds settings shared by the citation source clients.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// Mailto is an email address sent to CrossRef (User-Agent mailto:) and
	// OpenAlex (mailto query parameter) for polite-pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`
}

// HarvestConfig holds settings for a citation harvest run.
type HarvestConfig struct {
	// Delay is the minimum interval between consecutive external API calls
	// (default 2s). Enforced by a single shared limiter across all sources.
	Delay time.Duration `json:"delay" yaml:"delay"`

	// CheckpointEvery flushes the result table to the checkpoint file after
	// every N completed DOIs (default 100).
	CheckpointEvery int `json:"checkpoint_every" yaml:"checkpoint_every"`

	// CheckpointFile is the path of the checkpoint CSV. Overwritten on each
	// flush; consulted on startup when Resume is set.
	CheckpointFile string `json:"checkpoint_file" yaml:"checkpoint_file"`

	// Resume skips DOIs already present in CheckpointFile.
	Resume bool `json:"resume" yaml:"resume"`
}

// ReportConfig holds settings for the final export.
type ReportConfig struct {
	// OutputDir is the directory for the timestamped CSV and run manifest.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// PreviewRows is how many records the printed summary shows (default 10).
	PreviewRows int `json:"preview_rows" yaml:"preview_rows"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Sources SourceConfig  `json:"sources" yaml:"sources"`
	Harvest HarvestConfig `json:"harvest" yaml:"harvest"`
	Report  ReportConfig  `json:"report" yaml:"report"`
}
