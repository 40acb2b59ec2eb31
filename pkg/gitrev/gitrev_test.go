package gitrev

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_GithubSHAWins(t *testing.T) {
	t.Setenv(EnvGithubSHA, "aaaa000000000000000000000000000000000000")
	t.Setenv(EnvCICommit, "bbbb000000000000000000000000000000000000")

	commit, err := Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "aaaa000000000000000000000000000000000000", commit)
}

func TestResolve_CICommitFallback(t *testing.T) {
	t.Setenv(EnvGithubSHA, "")
	t.Setenv(EnvCICommit, "cccc000000000000000000000000000000000000")

	commit, err := Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cccc000000000000000000000000000000000000", commit)
}

func TestResolve_TrimsWhitespace(t *testing.T) {
	t.Setenv(EnvGithubSHA, "  dddd000000000000000000000000000000000000\n")

	commit, err := Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dddd000000000000000000000000000000000000", commit)
}
