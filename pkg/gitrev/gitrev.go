// Package gitrev resolves the commit identifier that terminates the deploy
// path.
package gitrev

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Environment variables consulted before falling back to git. CI-provided
// values win over the local checkout.
const (
	EnvGithubSHA = "GITHUB_SHA"
	EnvCICommit  = "CI_COMMIT"
)

// Resolve returns the commit identifier for the current CI run.
func Resolve(ctx context.Context) (string, error) {
	for _, key := range []string{EnvGithubSHA, EnvCICommit} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v, nil
		}
	}

	out, err := exec.CommandContext(ctx, "git", "rev-parse", "HEAD").Output()
	if err != nil {
		return "", fmt.Errorf("resolving commit via git: %w", err)
	}

	commit := strings.TrimSpace(string(out))
	if commit == "" {
		return "", fmt.Errorf("git returned an empty commit")
	}

	return commit, nil
}
