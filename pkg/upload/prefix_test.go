package upload

import (
	"testing"

	"github.com/ethpandaops/artifactoor/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestDeployPrefix(t *testing.T) {
	const commit = "0123456789abcdef0123456789abcdef01234567"

	tests := []struct {
		name   string
		suffix string
		alt    bool
		want   string
	}{
		{
			name: "no suffix, normal mode",
			want: "rustc-builds/" + commit,
		},
		{
			name:   "suffix, normal mode",
			suffix: "-try",
			want:   "rustc-builds-try/" + commit,
		},
		{
			name: "no suffix, alt mode",
			alt:  true,
			want: "rustc-builds-alt/" + commit,
		},
		{
			name:   "suffix, alt mode",
			suffix: "-try",
			alt:    true,
			want:   "rustc-builds-try-alt/" + commit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deploy := &config.DeployConfig{
				Alt:        tt.alt,
				PathSuffix: tt.suffix,
				Commit:     commit,
			}

			assert.Equal(t, tt.want, DeployPrefix(deploy))
		})
	}
}

func TestTargetURL(t *testing.T) {
	deploy := &config.DeployConfig{
		Bucket: "b",
		Commit: "abc123",
	}

	assert.Equal(t, "s3://b/rustc-builds/abc123", TargetURL(deploy))
}
