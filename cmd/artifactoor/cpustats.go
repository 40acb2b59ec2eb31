package main

import (
	"fmt"
	"time"

	"github.com/ethpandaops/artifactoor/pkg/config"
	"github.com/ethpandaops/artifactoor/pkg/cpustats"
	"github.com/spf13/cobra"
)

var (
	cpuStatsOutput   string
	cpuStatsInterval time.Duration
)

var cpuStatsCmd = &cobra.Command{
	Use:   "collect-cpu-stats",
	Short: "Sample host CPU usage into the cpu-usage CSV",
	Long: `Run in the background for the duration of the build. Appends one CSV
row per interval until interrupted; the deploy step stages the resulting
file as cpu-<job>.csv.`,
	RunE: runCollectCPUStats,
}

func init() {
	rootCmd.AddCommand(cpuStatsCmd)
	cpuStatsCmd.Flags().StringVar(&cpuStatsOutput, "output", "",
		"Output CSV path (default: <obj_dir>/cpu-usage.csv)")
	cpuStatsCmd.Flags().DurationVar(&cpuStatsInterval, "interval",
		cpustats.DefaultInterval, "Sampling interval")
}

func runCollectCPUStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	output := cpuStatsOutput
	if output == "" {
		output = cfg.Paths.CPUUsageCSV()
	}

	ctx, cancel := signalContext()
	defer cancel()

	sampler := cpustats.NewSampler(log, output, cpuStatsInterval)

	if err := sampler.Run(ctx); err != nil {
		return fmt.Errorf("sampling cpu stats: %w", err)
	}

	return nil
}
