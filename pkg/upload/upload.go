package upload

import (
	"context"
	"fmt"

	"github.com/ethpandaops/artifactoor/pkg/config"
	"github.com/sirupsen/logrus"
)

// Uploader pushes a local staging directory to the deploy target.
type Uploader interface {
	// Preflight verifies that the target is reachable and writable.
	// Writes a small test object to fail fast on misconfiguration.
	Preflight(ctx context.Context) error

	// Upload uploads all files in localDir under the deploy prefix.
	Upload(ctx context.Context, localDir string) error
}

// New returns the uploader for the configured method.
func New(
	log logrus.FieldLogger,
	deploy *config.DeployConfig,
	cfg *config.UploadConfig,
) (Uploader, error) {
	switch cfg.Method {
	case config.MethodS3:
		return NewS3Uploader(log, deploy, cfg), nil
	case config.MethodLocal:
		return NewLocalUploader(log, deploy, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported upload method %q", cfg.Method)
	}
}
