package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citation-engine/internal/doiload"
	"github.com/pdiddy/citation-engine/internal/harvest"
	"github.com/pdiddy/citation-engine/internal/report"
	"github.com/pdiddy/citation-engine/internal/sources"
	"github.com/pdiddy/citation-engine/pkg/types"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultDelay     = 2 * time.Second
	defaultInterval  = 100
	defaultUserAgent = "citation-engine/0.1"

	// maxDOIs caps a single run; longer lists are truncated with a warning.
	maxDOIs = 6000
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest citation counts for a DOI list",
	Long: `Harvest reads DOIs from a file (text: one DOI per line; CSV: requires a
"doi" column) or from a comma-separated --dois list, queries CrossRef,
OpenAlex, and Dimensions for each, and writes a timestamped CSV.

Every external call waits for the shared delay, and progress is flushed to a
checkpoint file in the output directory. Rerunning with --resume (the
default) picks up where an interrupted run stopped.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().String("input", "", "path to a .txt or .csv DOI file")
	harvestCmd.Flags().String("dois", "", "comma-separated DOI list (alternative to --input)")
	harvestCmd.Flags().Duration("delay", defaultDelay, "delay between consecutive API calls")
	harvestCmd.Flags().Int("checkpoint-every", defaultInterval, "flush progress every N DOIs")
	harvestCmd.Flags().Bool("resume", true, "resume from an existing checkpoint")
	harvestCmd.Flags().String("output-dir", "results", "directory for the CSV, manifest, and checkpoint")
	harvestCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	harvestCmd.Flags().String("mailto", "", "contact email for polite API access (falls back to .secrets/openalex-email)")
	harvestCmd.Flags().Int("preview", 10, "rows shown in the printed summary")
	harvestCmd.Flags().BoolP("yes", "y", false, "start without confirmation")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	dois, err := loadDOIs(cmd)
	if err != nil {
		return err
	}
	if len(dois) > maxDOIs {
		fmt.Fprintf(os.Stderr, "warning: %d DOIs found, truncating to first %d\n", len(dois), maxDOIs)
		dois = dois[:maxDOIs]
	}

	srcCfg, harvestCfg, reportCfg := buildConfig(cmd)

	if err := os.MkdirAll(reportCfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	harvestCfg.CheckpointFile = filepath.Join(reportCfg.OutputDir, report.CheckpointFileName)

	fmt.Printf("Found %d DOIs to process\n", len(dois))
	estimate := time.Duration(len(dois)) * 3 * harvestCfg.Delay
	fmt.Printf("Estimated time: %s\n", estimate.Round(time.Minute))

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !confirm("Start harvest? (y/n): ") {
			fmt.Println("Harvest cancelled.")
			return nil
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: srcCfg.Timeout}
	srcs := sources.Default(client, srcCfg)

	started := time.Now()
	result, runErr := harvest.Run(ctx, dois, srcs, harvestCfg, logger, os.Stdout)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "\nHarvest interrupted; %d records saved to %s\n",
			len(result.Records), harvestCfg.CheckpointFile)
		return runErr
	}
	finished := time.Now()

	sum := report.Summarize(result.Records)

	csvName := report.CSVFileName(started)
	csvPath := filepath.Join(reportCfg.OutputDir, csvName)
	if err := report.WriteCSV(csvPath, result.Records); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	manifestPath := filepath.Join(reportCfg.OutputDir, report.ManifestFileName(started))
	m := report.NewManifest(harvestCfg, srcCfg, sum, started, finished, csvName)
	if err := report.WriteManifest(manifestPath, m); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	fmt.Println()
	report.FormatSummary(os.Stdout, result.Records, sum, reportCfg.PreviewRows)
	if result.Unavailable > 0 {
		fmt.Printf("Source lookups unavailable:  %d\n", result.Unavailable)
	}
	fmt.Printf("\nCompleted in %s\n", finished.Sub(started).Round(time.Second))
	fmt.Printf("Results saved to: %s\n", csvPath)
	return nil
}

// loadDOIs resolves the input flags into a normalized, deduplicated list.
func loadDOIs(cmd *cobra.Command) ([]string, error) {
	input, _ := cmd.Flags().GetString("input")
	manual, _ := cmd.Flags().GetString("dois")

	switch {
	case input != "" && manual != "":
		return nil, fmt.Errorf("--input and --dois are mutually exclusive")
	case input != "":
		return doiload.Load(input)
	case manual != "":
		return doiload.ParseManual(manual)
	default:
		return nil, fmt.Errorf("provide a DOI list via --input or --dois")
	}
}

// buildConfig assembles the stage configurations from flags, the viper
// config file, and loaded secrets. An explicitly set flag wins over the
// config file, which wins over the built-in default.
func buildConfig(cmd *cobra.Command) (types.SourceConfig, types.HarvestConfig, types.ReportConfig) {
	flags := cmd.Flags()

	delay, _ := flags.GetDuration("delay")
	if !flags.Changed("delay") && viper.IsSet("harvest.delay") {
		delay = viper.GetDuration("harvest.delay")
	}
	interval, _ := flags.GetInt("checkpoint-every")
	if !flags.Changed("checkpoint-every") && viper.IsSet("harvest.checkpoint_every") {
		interval = viper.GetInt("harvest.checkpoint_every")
	}
	resume, _ := flags.GetBool("resume")
	if !flags.Changed("resume") && viper.IsSet("harvest.resume") {
		resume = viper.GetBool("harvest.resume")
	}
	timeout, _ := flags.GetDuration("timeout")
	if !flags.Changed("timeout") && viper.IsSet("sources.timeout") {
		timeout = viper.GetDuration("sources.timeout")
	}
	outputDir, _ := flags.GetString("output-dir")
	if !flags.Changed("output-dir") && viper.IsSet("report.output_dir") {
		outputDir = viper.GetString("report.output_dir")
	}
	preview, _ := flags.GetInt("preview")

	mailtoFlag, _ := flags.GetString("mailto")
	mailto := loadedSecrets.Get("openalex-email", mailtoFlag)
	if mailto == "" {
		mailto = loadedSecrets.Get("crossref-mailto", "")
	}

	srcCfg := types.SourceConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Mailto: mailto,
	}
	harvestCfg := types.HarvestConfig{
		Delay:           delay,
		CheckpointEvery: interval,
		Resume:          resume,
	}
	reportCfg := types.ReportConfig{
		OutputDir:   outputDir,
		PreviewRows: preview,
	}
	return srcCfg, harvestCfg, reportCfg
}

// confirm prompts on stdout and reads a y/n answer from stdin.
func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}
