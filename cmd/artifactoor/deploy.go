package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ethpandaops/artifactoor/pkg/config"
	"github.com/ethpandaops/artifactoor/pkg/fsutil"
	"github.com/ethpandaops/artifactoor/pkg/gitrev"
	"github.com/ethpandaops/artifactoor/pkg/retry"
	"github.com/ethpandaops/artifactoor/pkg/stage"
	"github.com/ethpandaops/artifactoor/pkg/upload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	deployCommit      string
	deployKeepStaging bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Stage build artifacts and upload them to the deploy bucket",
	Long: `Assemble a fresh staging directory from the build outputs, then upload
it recursively to the deploy path, retrying the upload on transient failure.
Copy steps are fail-fast and never retried.`,
	RunE: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)
	deployCmd.Flags().StringVar(&deployCommit, "commit", "",
		"Commit identifier (default: CI environment, then git rev-parse HEAD)")
	deployCmd.Flags().BoolVar(&deployKeepStaging, "keep-staging", false,
		"Keep the staging directory after the upload")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	commitID := deployCommit
	if commitID == "" {
		commitID, err = gitrev.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("resolving commit: %w", err)
		}
	}

	cfg.Deploy.Commit = commitID

	if err := cfg.Validate(config.ValidateOpts{}); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	owner, err := fsutil.ParseOwner(cfg.Deploy.StagingOwner)
	if err != nil {
		return fmt.Errorf("parsing staging_owner: %w", err)
	}

	builder := stage.NewBuilder(log, cfg, owner)

	stagingDir, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building staging directory: %w", err)
	}

	if deployKeepStaging {
		log.WithField("dir", stagingDir).Info("Keeping staging directory")
	} else {
		defer func() { _ = os.RemoveAll(stagingDir) }()
	}

	uploader, err := upload.New(log, &cfg.Deploy, &cfg.Upload)
	if err != nil {
		return fmt.Errorf("creating uploader: %w", err)
	}

	if err := uploader.Preflight(ctx); err != nil {
		return fmt.Errorf("upload preflight: %w", err)
	}

	log.WithFields(logrus.Fields{
		"method": cfg.Upload.Method,
		"target": upload.TargetURL(&cfg.Deploy),
	}).Info("Uploading artifacts")

	policy := retry.Policy{Attempts: cfg.Upload.RetryAttempts}

	err = retry.Do(ctx, log, policy, "artifact upload",
		func(ctx context.Context) error {
			return uploader.Upload(ctx, stagingDir)
		})
	if err != nil {
		return err
	}

	log.Info("Deploy completed successfully")

	return nil
}
