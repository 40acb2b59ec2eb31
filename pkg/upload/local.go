package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethpandaops/artifactoor/pkg/config"
	"github.com/ethpandaops/artifactoor/pkg/fsutil"
	"github.com/sirupsen/logrus"
)

// localUploader copies the staging directory into a directory on the local
// filesystem under the same prefix scheme as the S3 backend. Used for
// air-gapped runs and tests.
type localUploader struct {
	log    logrus.FieldLogger
	deploy *config.DeployConfig
	dir    string
}

// Compile-time interface check.
var _ Uploader = (*localUploader)(nil)

// NewLocalUploader creates an Uploader backed by a local directory.
func NewLocalUploader(
	log logrus.FieldLogger,
	deploy *config.DeployConfig,
	cfg *config.UploadConfig,
) Uploader {
	return &localUploader{
		log:    log.WithField("component", "local-uploader"),
		deploy: deploy,
		dir:    cfg.Local.Dir,
	}
}

// Preflight verifies the target directory is writable.
func (u *localUploader) Preflight(_ context.Context) error {
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	content := fmt.Sprintf("artifactoor write test: %s", time.Now().UTC().Format(time.RFC3339))

	p := filepath.Join(u.dir, ".artifactoor-write-test")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing test file to %s: %w", u.dir, err)
	}

	return nil
}

// Upload copies all files in localDir under the deploy prefix.
func (u *localUploader) Upload(_ context.Context, localDir string) error {
	prefix := DeployPrefix(u.deploy)
	target := filepath.Join(u.dir, filepath.FromSlash(prefix))

	if err := fsutil.CopyTree(localDir, target, nil); err != nil {
		return fmt.Errorf("copying to %s: %w", target, err)
	}

	files, err := fsutil.ListFiles(target)
	if err != nil {
		return fmt.Errorf("listing %s: %w", target, err)
	}

	u.log.WithFields(logrus.Fields{
		"files":  len(files),
		"target": target,
		"prefix": prefix,
	}).Info("Upload completed")

	return nil
}
