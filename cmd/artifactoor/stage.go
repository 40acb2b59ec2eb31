package main

import (
	"fmt"

	"github.com/ethpandaops/artifactoor/pkg/config"
	"github.com/ethpandaops/artifactoor/pkg/fsutil"
	"github.com/ethpandaops/artifactoor/pkg/stage"
	"github.com/spf13/cobra"
)

var stageOutput string

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Assemble the staging directory without uploading",
	Long: `Run only the staging copy steps and keep the result on disk. Useful
for inspecting what a deploy would upload.`,
	RunE: runStage,
}

func init() {
	rootCmd.AddCommand(stageCmd)
	stageCmd.Flags().StringVar(&stageOutput, "output", "",
		"Staging directory path (default: a fresh temp directory)")
}

func runStage(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(config.ValidateOpts{SkipUploadTarget: true}); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	owner, err := fsutil.ParseOwner(cfg.Deploy.StagingOwner)
	if err != nil {
		return fmt.Errorf("parsing staging_owner: %w", err)
	}

	builder := stage.NewBuilder(log, cfg, owner)

	if stageOutput != "" {
		if err := builder.BuildAt(stageOutput); err != nil {
			return fmt.Errorf("building staging directory: %w", err)
		}

		log.WithField("dir", stageOutput).Info("Staging completed")

		return nil
	}

	dir, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building staging directory: %w", err)
	}

	log.WithField("dir", dir).Info("Staging completed")

	return nil
}
