// Package stage assembles the flat staging directory that gets uploaded to
// the deploy bucket. Every file in a staging directory was placed there by
// one of the explicit copy steps; nothing is uploaded implicitly.
package stage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethpandaops/artifactoor/pkg/config"
	"github.com/ethpandaops/artifactoor/pkg/fsutil"
	"github.com/sirupsen/logrus"
)

// docSubtree is the documentation directory pruned from dist before staging.
const docSubtree = "doc"

// CPUStatsName returns the staging filename for the CPU-usage CSV.
func CPUStatsName(jobName string) string {
	return "cpu-" + jobName + ".csv"
}

// MetricsName returns the staging filename for the build metrics JSON.
func MetricsName(jobName string) string {
	return "metrics-" + jobName + ".json"
}

// Builder assembles staging directories from the configured build outputs.
type Builder struct {
	log   logrus.FieldLogger
	cfg   *config.Config
	owner *fsutil.OwnerConfig
}

// NewBuilder creates a Builder. owner may be nil.
func NewBuilder(
	log logrus.FieldLogger,
	cfg *config.Config,
	owner *fsutil.OwnerConfig,
) *Builder {
	return &Builder{
		log:   log.WithField("component", "stage-builder"),
		cfg:   cfg,
		owner: owner,
	}
}

// Build creates a fresh staging directory and populates it. The caller owns
// the returned directory and removes it after the upload.
func (b *Builder) Build() (string, error) {
	dir, err := os.MkdirTemp("", "artifactoor-staging-")
	if err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}

	fsutil.Chown(dir, b.owner)

	if err := b.populate(dir); err != nil {
		_ = os.RemoveAll(dir)

		return "", err
	}

	return dir, nil
}

// BuildAt populates dir instead of a temp directory, creating it if needed.
// The directory must be empty so the staging invariant holds.
func (b *Builder) BuildAt(dir string) error {
	if err := fsutil.MkdirAll(dir, 0o755, b.owner); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading staging directory: %w", err)
	}

	if len(entries) > 0 {
		return fmt.Errorf("staging directory %s is not empty", dir)
	}

	return b.populate(dir)
}

// populate runs the copy steps in order. Each step is fail-fast, no step is
// retried.
func (b *Builder) populate(dir string) error {
	if b.cfg.Deploy.Active() {
		if err := b.copyDist(dir); err != nil {
			return fmt.Errorf("staging dist artifacts: %w", err)
		}
	}

	jobName := b.cfg.Deploy.JobName

	cpuDst := filepath.Join(dir, CPUStatsName(jobName))
	if err := fsutil.CopyFile(b.cfg.Paths.CPUUsageCSV(), cpuDst, b.owner); err != nil {
		return fmt.Errorf("staging cpu-usage stats: %w", err)
	}

	metricsDst := filepath.Join(dir, MetricsName(jobName))
	if err := fsutil.CopyFile(b.cfg.Paths.MetricsJSON(), metricsDst, b.owner); err != nil {
		return fmt.Errorf("staging build metrics: %w", err)
	}

	if name := b.cfg.Deploy.ToolstatesFilename; name != "" {
		dst := filepath.Join(dir, name)
		if err := fsutil.CopyFile(b.cfg.Paths.ToolstatesJSON, dst, b.owner); err != nil {
			return fmt.Errorf("staging toolstates: %w", err)
		}
	}

	return b.logContents(dir)
}

// copyDist copies the dist directory contents into staging, pruning the
// documentation subtree.
func (b *Builder) copyDist(dir string) error {
	distDir := b.cfg.Paths.DistDir()

	entries, err := os.ReadDir(distDir)
	if err != nil {
		return fmt.Errorf("reading dist directory %s: %w", distDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() && entry.Name() == docSubtree {
			continue
		}

		src := filepath.Join(distDir, entry.Name())
		dst := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if err := fsutil.CopyTree(src, dst, b.owner); err != nil {
				return fmt.Errorf("copying %s: %w", entry.Name(), err)
			}

			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}

		if err := fsutil.CopyFile(src, dst, b.owner); err != nil {
			return fmt.Errorf("copying %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// logContents lists the staging directory for operator visibility.
func (b *Builder) logContents(dir string) error {
	files, err := fsutil.ListFiles(dir)
	if err != nil {
		return fmt.Errorf("listing staging directory: %w", err)
	}

	for _, f := range files {
		b.log.WithField("file", f).Info("Staged")
	}

	b.log.WithFields(logrus.Fields{
		"dir":   dir,
		"files": len(files),
	}).Info("Staging directory ready")

	return nil
}
