package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvVarOverrides(t *testing.T) {
	configContent := `
global:
  log_level: info
deploy:
  job_name: from-file
  bucket: file-bucket
paths:
  obj_dir: ./obj
  platform: linux
upload:
  method: s3
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "no env vars uses yaml values",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Deploy.Enabled)
				assert.False(t, cfg.Deploy.Alt)
				assert.Equal(t, "from-file", cfg.Deploy.JobName)
				assert.Equal(t, "file-bucket", cfg.Deploy.Bucket)
			},
		},
		{
			name: "deploy flag accepts 1",
			envVars: map[string]string{
				"DEPLOY": "1",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Deploy.Enabled)
				assert.True(t, cfg.Deploy.Active())
			},
		},
		{
			name: "alt mode",
			envVars: map[string]string{
				"DEPLOY_ALT": "true",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Deploy.Enabled)
				assert.True(t, cfg.Deploy.Alt)
				assert.True(t, cfg.Deploy.Active())
			},
		},
		{
			name: "job name, suffix and bucket",
			envVars: map[string]string{
				"CI_JOB_NAME":    "x86_64-linux",
				"S3_PATH_SUFFIX": "-try",
				"DEPLOY_BUCKET":  "env-bucket",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "x86_64-linux", cfg.Deploy.JobName)
				assert.Equal(t, "-try", cfg.Deploy.PathSuffix)
				assert.Equal(t, "env-bucket", cfg.Deploy.Bucket)
			},
		},
		{
			name: "toolstates filename",
			envVars: map[string]string{
				"DEPLOY_TOOLSTATES_JSON": "toolstates-linux.json",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "toolstates-linux.json", cfg.Deploy.ToolstatesFilename)
			},
		},
		{
			name: "s3 credentials",
			envVars: map[string]string{
				"ARTIFACTS_AWS_ACCESS_KEY_ID":     "AKIATEST",
				"ARTIFACTS_AWS_SECRET_ACCESS_KEY": "secret",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "AKIATEST", cfg.Upload.S3.AccessKeyID)
				assert.Equal(t, "secret", cfg.Upload.S3.SecretAccessKey)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load(configPath)
			require.NoError(t, err)

			tt.validate(t, cfg)
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, cfg.Global.LogLevel)
	assert.Equal(t, DefaultObjDir, cfg.Paths.ObjDir)
	assert.Equal(t, MethodS3, cfg.Upload.Method)
	assert.Equal(t, DefaultUploadConcurrency, cfg.Upload.Concurrency)
	assert.Equal(t, DefaultRetryAttempts, cfg.Upload.RetryAttempts)
	assert.Equal(t, DefaultStorageClass, cfg.Upload.S3.StorageClass)
	assert.Equal(t, DefaultACL, cfg.Upload.S3.ACL)
}

func TestPathsConfig_Layout(t *testing.T) {
	linux := &PathsConfig{ObjDir: "obj", Platform: PlatformLinux}
	assert.Equal(t, filepath.Join("obj", "build"), linux.BuildDir())
	assert.Equal(t, filepath.Join("obj", "build", "dist"), linux.DistDir())
	assert.Equal(t, filepath.Join("obj", "cpu-usage.csv"), linux.CPUUsageCSV())
	assert.Equal(t, filepath.Join("obj", "build", "metrics.json"), linux.MetricsJSON())

	generic := &PathsConfig{ObjDir: "obj", Platform: PlatformGeneric}
	assert.Equal(t, "obj", generic.BuildDir())
	assert.Equal(t, filepath.Join("obj", "dist"), generic.DistDir())
	assert.Equal(t, filepath.Join("obj", "metrics.json"), generic.MetricsJSON())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		cfg.Deploy.JobName = "x86_64-linux"
		cfg.Deploy.Bucket = "bucket"
		cfg.Deploy.Commit = "0123456789abcdef0123456789abcdef01234567"

		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		opts    ValidateOpts
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *Config) {},
		},
		{
			name: "both deploy modes",
			mutate: func(cfg *Config) {
				cfg.Deploy.Enabled = true
				cfg.Deploy.Alt = true
			},
			wantErr: "mutually exclusive",
		},
		{
			name: "missing job name",
			mutate: func(cfg *Config) {
				cfg.Deploy.JobName = ""
			},
			wantErr: "job_name",
		},
		{
			name: "toolstates filename with path separator",
			mutate: func(cfg *Config) {
				cfg.Deploy.ToolstatesFilename = "sub/toolstates.json"
			},
			wantErr: "bare filename",
		},
		{
			name: "unknown platform",
			mutate: func(cfg *Config) {
				cfg.Paths.Platform = "windows"
			},
			wantErr: "paths.platform",
		},
		{
			name: "missing bucket",
			mutate: func(cfg *Config) {
				cfg.Deploy.Bucket = ""
			},
			wantErr: "bucket",
		},
		{
			name: "missing bucket skipped for staging",
			mutate: func(cfg *Config) {
				cfg.Deploy.Bucket = ""
			},
			opts: ValidateOpts{SkipUploadTarget: true},
		},
		{
			name: "missing commit",
			mutate: func(cfg *Config) {
				cfg.Deploy.Commit = ""
			},
			wantErr: "commit",
		},
		{
			name: "local method requires dir",
			mutate: func(cfg *Config) {
				cfg.Upload.Method = MethodLocal
			},
			wantErr: "upload.local.dir",
		},
		{
			name: "unknown method",
			mutate: func(cfg *Config) {
				cfg.Upload.Method = "ftp"
			},
			wantErr: "unsupported upload method",
		},
		{
			name: "negative concurrency",
			mutate: func(cfg *Config) {
				cfg.Upload.Concurrency = -1
			},
			wantErr: "concurrency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate(tt.opts)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
