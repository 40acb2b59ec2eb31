package config

import (
	"github.com/spf13/viper"
)

// Environment variables set by the CI pipeline. They take precedence over
// values from the config file.
const (
	EnvDeploy          = "DEPLOY"
	EnvDeployAlt       = "DEPLOY_ALT"
	EnvJobName         = "CI_JOB_NAME"
	EnvToolstatesJSON  = "DEPLOY_TOOLSTATES_JSON"
	EnvPathSuffix      = "S3_PATH_SUFFIX"
	EnvBucket          = "DEPLOY_BUCKET"
	EnvAccessKeyID     = "ARTIFACTS_AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "ARTIFACTS_AWS_SECRET_ACCESS_KEY"
)

// applyEnv overlays CI environment variables onto the config. Flags such as
// DEPLOY accept the usual boolean spellings ("1", "true").
func (c *Config) applyEnv() {
	v := viper.New()

	for _, key := range []string{
		EnvDeploy,
		EnvDeployAlt,
		EnvJobName,
		EnvToolstatesJSON,
		EnvPathSuffix,
		EnvBucket,
		EnvAccessKeyID,
		EnvSecretAccessKey,
	} {
		_ = v.BindEnv(key)
	}

	if v.IsSet(EnvDeploy) {
		c.Deploy.Enabled = v.GetBool(EnvDeploy)
	}

	if v.IsSet(EnvDeployAlt) {
		c.Deploy.Alt = v.GetBool(EnvDeployAlt)
	}

	if v.IsSet(EnvJobName) {
		c.Deploy.JobName = v.GetString(EnvJobName)
	}

	if v.IsSet(EnvToolstatesJSON) {
		c.Deploy.ToolstatesFilename = v.GetString(EnvToolstatesJSON)
	}

	if v.IsSet(EnvPathSuffix) {
		c.Deploy.PathSuffix = v.GetString(EnvPathSuffix)
	}

	if v.IsSet(EnvBucket) {
		c.Deploy.Bucket = v.GetString(EnvBucket)
	}

	if v.IsSet(EnvAccessKeyID) {
		c.Upload.S3.AccessKeyID = v.GetString(EnvAccessKeyID)
	}

	if v.IsSet(EnvSecretAccessKey) {
		c.Upload.S3.SecretAccessKey = v.GetString(EnvSecretAccessKey)
	}
}
