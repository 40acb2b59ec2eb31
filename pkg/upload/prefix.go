package upload

import (
	"fmt"

	"github.com/ethpandaops/artifactoor/pkg/config"
)

// basePrefix is the fixed first component of every deploy path.
const basePrefix = "rustc-builds"

// DeployPrefix returns the remote key prefix for the configured deploy:
// "rustc-builds" plus the verbatim path suffix, with "-alt" appended for
// alternate builds, joined with the commit identifier.
func DeployPrefix(deploy *config.DeployConfig) string {
	prefix := basePrefix + deploy.PathSuffix

	if deploy.Alt {
		prefix += "-alt"
	}

	return prefix + "/" + deploy.Commit
}

// TargetURL returns the s3:// URL of the deploy target, for logging.
func TargetURL(deploy *config.DeployConfig) string {
	return fmt.Sprintf("s3://%s/%s", deploy.Bucket, DeployPrefix(deploy))
}
