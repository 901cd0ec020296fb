package lzacfg

import "slices"

// GlobalConfig is the installation-wide configuration document.
type GlobalConfig struct {
	HomeRegion                   string        `yaml:"homeRegion" validate:"required"`
	EnabledRegions               []string      `yaml:"enabledRegions" validate:"required,min=1,dive,required"`
	ManagementAccountAccessRole  string        `yaml:"managementAccountAccessRole" validate:"required"`
	CloudwatchLogRetentionInDays int           `yaml:"cloudwatchLogRetentionInDays" validate:"required,min=1"`
	TerminationProtection        bool          `yaml:"terminationProtection"`
	Logging                      LoggingConfig `yaml:"logging" validate:"required"`
}

// LoggingConfig locates the central logging account and bucket retention.
type LoggingConfig struct {
	Account                      string `yaml:"account" validate:"required"`
	BucketRetentionDays          int    `yaml:"bucketRetentionDays" validate:"required,min=1"`
	AccessLogBucketRetentionDays int    `yaml:"accessLogBucketRetentionDays" validate:"required,min=1"`
}

// RegionEnabled reports whether the region is part of the installation.
func (c *GlobalConfig) RegionEnabled(region string) bool {
	return slices.Contains(c.EnabledRegions, region)
}
