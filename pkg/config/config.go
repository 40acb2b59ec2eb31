package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultObjDir is the default build output root.
	DefaultObjDir = "obj"

	// DefaultToolstatesJSON is where the upstream toolstate step writes
	// its output.
	DefaultToolstatesJSON = "/tmp/toolstate/toolstates.json"

	// DefaultStorageClass is the S3 storage class applied to uploaded
	// artifacts. Artifacts are written once and read rarely.
	DefaultStorageClass = "INTELLIGENT_TIERING"

	// DefaultACL is the canned ACL applied to uploaded artifacts.
	DefaultACL = "public-read"

	// DefaultUploadConcurrency is the number of concurrent object uploads.
	DefaultUploadConcurrency = 1

	// DefaultRetryAttempts is how often the whole upload is attempted.
	DefaultRetryAttempts = 4
)

// Platform values for PathsConfig.Platform.
const (
	PlatformLinux   = "linux"
	PlatformGeneric = "generic"
)

// Upload methods.
const (
	MethodS3    = "s3"
	MethodLocal = "local"
)

// Config is the root configuration for artifactoor.
type Config struct {
	Global GlobalConfig `yaml:"global"`
	Deploy DeployConfig `yaml:"deploy"`
	Paths  PathsConfig  `yaml:"paths"`
	Upload UploadConfig `yaml:"upload"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"`
}

// DeployConfig describes which artifacts get staged and where they land.
// Every field can be driven by the CI environment, see env.go.
type DeployConfig struct {
	// Enabled stages the dist directory and uploads under the normal
	// deploy path.
	Enabled bool `yaml:"enabled"`

	// Alt stages the dist directory of an alternate build and uploads
	// under the "-alt" deploy path. Mutually exclusive with Enabled.
	Alt bool `yaml:"alt"`

	// JobName is embedded into the staged stat filenames
	// (cpu-<job>.csv, metrics-<job>.json).
	JobName string `yaml:"job_name"`

	// ToolstatesFilename, when set, is the staging filename for the
	// toolstate JSON. Empty means no toolstate file is staged.
	ToolstatesFilename string `yaml:"toolstates_filename,omitempty"`

	// PathSuffix is appended verbatim to the base deploy path.
	PathSuffix string `yaml:"path_suffix,omitempty"`

	// Bucket is the deploy target bucket.
	Bucket string `yaml:"bucket"`

	// Commit is the commit identifier terminating the deploy path.
	// Resolved at startup, never read from the config file in CI.
	Commit string `yaml:"commit,omitempty"`

	// StagingOwner is an optional "UID:GID" applied to staged files for
	// runners that stage as root but hand off to an unprivileged step.
	StagingOwner string `yaml:"staging_owner,omitempty"`
}

// Active reports whether any deploy mode is on.
func (d *DeployConfig) Active() bool {
	return d.Enabled || d.Alt
}

// PathsConfig locates the build outputs to stage.
type PathsConfig struct {
	// ObjDir is the build output root.
	ObjDir string `yaml:"obj_dir"`

	// Platform selects the build directory layout. Linux builds nest
	// their output one level deeper than the other platforms.
	Platform string `yaml:"platform"`

	// ToolstatesJSON is the source path of the toolstate JSON.
	ToolstatesJSON string `yaml:"toolstates_json"`
}

// BuildDir returns the platform-dependent build directory.
func (p *PathsConfig) BuildDir() string {
	if p.Platform == PlatformLinux {
		return filepath.Join(p.ObjDir, "build")
	}

	return p.ObjDir
}

// DistDir returns the dist output directory for the current platform.
func (p *PathsConfig) DistDir() string {
	return filepath.Join(p.BuildDir(), "dist")
}

// CPUUsageCSV returns the source path of the CPU-usage statistics file.
func (p *PathsConfig) CPUUsageCSV() string {
	return filepath.Join(p.ObjDir, "cpu-usage.csv")
}

// MetricsJSON returns the source path of the build metrics file.
func (p *PathsConfig) MetricsJSON() string {
	return filepath.Join(p.BuildDir(), "metrics.json")
}

// UploadConfig contains upload backend settings.
type UploadConfig struct {
	Method        string            `yaml:"method"`
	Concurrency   int               `yaml:"concurrency"`
	RetryAttempts int               `yaml:"retry_attempts"`
	S3            S3UploadConfig    `yaml:"s3,omitempty"`
	Local         LocalUploadConfig `yaml:"local,omitempty"`
}

// S3UploadConfig contains S3 client settings.
type S3UploadConfig struct {
	EndpointURL     string `yaml:"endpoint_url,omitempty"`
	Region          string `yaml:"region,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	StorageClass    string `yaml:"storage_class,omitempty"`
	ACL             string `yaml:"acl,omitempty"`
}

// LocalUploadConfig writes artifacts into a local directory instead of S3.
type LocalUploadConfig struct {
	Dir string `yaml:"dir"`
}

// ValidateOpts scopes validation to the parts a command actually needs.
type ValidateOpts struct {
	// SkipUploadTarget skips bucket/commit/backend checks for commands
	// that only stage.
	SkipUploadTarget bool
}

// Load reads the optional configuration file at path, applies defaults and
// then environment overrides. An empty path yields an env-only config.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	return &cfg, nil
}

// applyDefaults sets default values for unspecified configuration options.
func (c *Config) applyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.Paths.ObjDir == "" {
		c.Paths.ObjDir = DefaultObjDir
	}

	if c.Paths.Platform == "" {
		if runtime.GOOS == "linux" {
			c.Paths.Platform = PlatformLinux
		} else {
			c.Paths.Platform = PlatformGeneric
		}
	}

	if c.Paths.ToolstatesJSON == "" {
		c.Paths.ToolstatesJSON = DefaultToolstatesJSON
	}

	if c.Upload.Method == "" {
		c.Upload.Method = MethodS3
	}

	if c.Upload.Concurrency == 0 {
		c.Upload.Concurrency = DefaultUploadConcurrency
	}

	if c.Upload.RetryAttempts == 0 {
		c.Upload.RetryAttempts = DefaultRetryAttempts
	}

	if c.Upload.S3.StorageClass == "" {
		c.Upload.S3.StorageClass = DefaultStorageClass
	}

	if c.Upload.S3.ACL == "" {
		c.Upload.S3.ACL = DefaultACL
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate(opts ValidateOpts) error {
	if c.Deploy.Enabled && c.Deploy.Alt {
		return fmt.Errorf("deploy.enabled and deploy.alt are mutually exclusive")
	}

	if c.Deploy.JobName == "" {
		return fmt.Errorf("deploy.job_name is required (CI_JOB_NAME)")
	}

	if strings.ContainsAny(c.Deploy.ToolstatesFilename, `/\`) {
		return fmt.Errorf(
			"deploy.toolstates_filename %q must be a bare filename",
			c.Deploy.ToolstatesFilename,
		)
	}

	if c.Paths.Platform != PlatformLinux && c.Paths.Platform != PlatformGeneric {
		return fmt.Errorf("paths.platform must be %q or %q, got %q",
			PlatformLinux, PlatformGeneric, c.Paths.Platform)
	}

	if c.Upload.Concurrency < 1 {
		return fmt.Errorf("upload.concurrency must be at least 1")
	}

	if c.Upload.RetryAttempts < 1 {
		return fmt.Errorf("upload.retry_attempts must be at least 1")
	}

	if opts.SkipUploadTarget {
		return nil
	}

	if c.Deploy.Bucket == "" {
		return fmt.Errorf("deploy.bucket is required (DEPLOY_BUCKET)")
	}

	if c.Deploy.Commit == "" {
		return fmt.Errorf("deploy.commit is required")
	}

	switch c.Upload.Method {
	case MethodS3:
	case MethodLocal:
		if c.Upload.Local.Dir == "" {
			return fmt.Errorf("upload.local.dir is required for the local method")
		}
	default:
		return fmt.Errorf("unsupported upload method %q", c.Upload.Method)
	}

	return nil
}
