package lzacdkutil

import (
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// ContextPrefix namespaces every accelerator context key in cdk.json.
const ContextPrefix = "lza-"

// Config holds all install-time parameters read from CDK context and
// validated upfront. It centralizes context reading so synthesis fails with
// clear messages instead of scattered nil dereferences.
type Config struct {
	Qualifier      string   `validate:"required,max=10"`
	ResourcePrefix string   `validate:"required"`
	Partition      string   `validate:"required"`
	HomeRegion     string   `validate:"required"`
	EnabledRegions []string `validate:"required,min=1,dive,required"`

	SourceRepositoryName string `validate:"required"`
	SourceBranchName     string `validate:"required"`
	ConfigRepositoryName string `validate:"required"`
	ConfigBranchName     string `validate:"required"`

	// ConfigDirectory is the path holding the six configuration documents,
	// relative to the CDK working directory.
	ConfigDirectory string `validate:"required"`

	EnableApprovalStage  bool
	ApprovalNotifyEmails []string `validate:"dive,email"`
	NotifyEmails         []string `validate:"dive,email"`
	SingleAccountMode    bool
}

// NewConfig reads and validates all accelerator context values.
// Returns an error if any required value is missing or invalid.
func NewConfig(scope constructs.Construct) (*Config, error) {
	var readErrs []string

	cfg := &Config{}
	cfg.Qualifier, readErrs = readContextString(scope, ContextPrefix+"qualifier", readErrs)
	cfg.ResourcePrefix, readErrs = readContextString(scope, ContextPrefix+"resource-prefix", readErrs)
	cfg.Partition, readErrs = readContextString(scope, ContextPrefix+"partition", readErrs)
	cfg.HomeRegion, readErrs = readContextString(scope, ContextPrefix+"home-region", readErrs)
	cfg.EnabledRegions, readErrs = readContextStringSlice(scope, ContextPrefix+"enabled-regions", readErrs)
	cfg.SourceRepositoryName, readErrs = readContextString(scope, ContextPrefix+"source-repository-name", readErrs)
	cfg.SourceBranchName, readErrs = readContextString(scope, ContextPrefix+"source-branch-name", readErrs)
	cfg.ConfigRepositoryName, readErrs = readContextString(scope, ContextPrefix+"config-repository-name", readErrs)
	cfg.ConfigBranchName, readErrs = readContextString(scope, ContextPrefix+"config-branch-name", readErrs)
	cfg.ConfigDirectory, readErrs = readContextString(scope, ContextPrefix+"config-directory", readErrs)
	cfg.EnableApprovalStage = readOptionalContextBool(scope, ContextPrefix+"enable-approval-stage")
	cfg.ApprovalNotifyEmails = readOptionalContextStringSlice(scope, ContextPrefix+"approval-notify-emails")
	cfg.NotifyEmails = readOptionalContextStringSlice(scope, ContextPrefix+"notify-emails")
	cfg.SingleAccountMode = readOptionalContextBool(scope, ContextPrefix+"single-account-mode")

	if cfg.Partition != "" && !IsKnownPartition(cfg.Partition) {
		readErrs = append(readErrs, fmt.Sprintf(
			"unknown partition %q - must be one of %s",
			cfg.Partition, strings.Join(AllKnownPartitions(), ", ")))
	}
	if cfg.HomeRegion != "" && !IsKnownRegion(cfg.HomeRegion) {
		readErrs = append(readErrs, fmt.Sprintf(
			"unknown home region %q - add it to lzacdkutil.RegionIdents", cfg.HomeRegion))
	}
	for _, region := range cfg.EnabledRegions {
		if !IsKnownRegion(region) {
			readErrs = append(readErrs, fmt.Sprintf(
				"unknown enabled region %q - add it to lzacdkutil.RegionIdents", region))
		} else if cfg.Partition != "" && PartitionForRegion(region) != cfg.Partition {
			readErrs = append(readErrs, fmt.Sprintf(
				"region %q belongs to partition %q, not %q",
				region, PartitionForRegion(region), cfg.Partition))
		}
	}
	if cfg.HomeRegion != "" && len(cfg.EnabledRegions) > 0 && !cfg.RegionEnabled(cfg.HomeRegion) {
		readErrs = append(readErrs, fmt.Sprintf(
			"home region %q is not part of %q", cfg.HomeRegion, ContextPrefix+"enabled-regions"))
	}

	if len(readErrs) > 0 {
		return nil, errors.Errorf("CDK context read errors:\n  - %s", strings.Join(readErrs, "\n  - "))
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			msgs := make([]string, 0, len(validationErrs))
			for _, e := range validationErrs {
				msgs = append(msgs, formatValidationError(e))
			}
			return nil, errors.Errorf("CDK context validation errors:\n  - %s", strings.Join(msgs, "\n  - "))
		}
		return nil, errors.Errorf("CDK context validation failed: %w", err)
	}

	return cfg, nil
}

// RegionEnabled reports whether the region is part of the installation.
func (c *Config) RegionEnabled(region string) bool {
	for _, r := range c.EnabledRegions {
		if r == region {
			return true
		}
	}
	return false
}

// SupportsPipelineNotifications reports whether the installation's partition
// carries the pipeline notification service.
func (c *Config) SupportsPipelineNotifications() bool {
	return PartitionSupportsNotifications(c.Partition)
}

// configContextKey is the well-known key used to store validated Config in
// the construct tree.
const configContextKey = "__lzacdkutil_config"

// StoreConfig stores a validated Config in the app's context so it can be
// retrieved anywhere in the construct tree via ConfigFromScope.
func StoreConfig(app awscdk.App, cfg *Config) {
	app.Node().SetContext(jsii.String(configContextKey), cfg)
}

// ConfigFromScope retrieves the validated Config from the construct tree.
// It panics if Config was not stored.
func ConfigFromScope(scope constructs.Construct) *Config {
	val := scope.Node().TryGetContext(jsii.String(configContextKey))
	if val == nil {
		panic("lzacdkutil.Config not found in construct tree - was StoreConfig called?")
	}
	cfg, ok := val.(*Config)
	if !ok {
		panic(fmt.Sprintf("lzacdkutil.Config has unexpected type %T", val))
	}
	return cfg
}

// Scope-based convenience accessors. These provide ergonomic access deep in
// construct trees without passing *Config explicitly.

// Qualifier returns the installation qualifier.
func Qualifier(scope constructs.Construct) string {
	return ConfigFromScope(scope).Qualifier
}

// ResourcePrefix returns the resource naming prefix.
func ResourcePrefix(scope constructs.Construct) string {
	return ConfigFromScope(scope).ResourcePrefix
}

// Partition returns the installation partition.
func Partition(scope constructs.Construct) string {
	return ConfigFromScope(scope).Partition
}

// HomeRegion returns the installation home region.
func HomeRegion(scope constructs.Construct) string {
	return ConfigFromScope(scope).HomeRegion
}

// EnabledRegions returns every region the installation deploys into.
func EnabledRegions(scope constructs.Construct) []string {
	return ConfigFromScope(scope).EnabledRegions
}

// SingleAccountMode reports whether the installation runs in a single
// account without an organization.
func SingleAccountMode(scope constructs.Construct) bool {
	return ConfigFromScope(scope).SingleAccountMode
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "max":
		return fmt.Sprintf("%s exceeds maximum length of %s (got %q)", e.Field(), e.Param(), e.Value())
	case "email":
		return fmt.Sprintf("%s must be a valid email address (got %q)", e.Field(), e.Value())
	default:
		return fmt.Sprintf("%s failed validation %q", e.Field(), e.Tag())
	}
}

func readContextString(scope constructs.Construct, key string, errs []string) (string, []string) {
	val := scope.Node().TryGetContext(jsii.String(key))
	if val == nil {
		return "", append(errs, fmt.Sprintf("context key %q is not set", key))
	}
	s, ok := val.(string)
	if !ok {
		return "", append(errs, fmt.Sprintf("context key %q must be a string, got %T", key, val))
	}
	return s, errs
}

func readContextStringSlice(scope constructs.Construct, key string, errs []string) ([]string, []string) {
	val := scope.Node().TryGetContext(jsii.String(key))
	if val == nil {
		return nil, append(errs, fmt.Sprintf("context key %q is not set", key))
	}

	slice, ok := val.([]any)
	if !ok {
		return nil, append(errs, fmt.Sprintf("context key %q must be an array, got %T", key, val))
	}

	result := make([]string, 0, len(slice))
	for i, v := range slice {
		s, ok := v.(string)
		if !ok {
			return nil, append(errs, fmt.Sprintf("context key %q[%d] must be a string, got %T", key, i, v))
		}
		result = append(result, s)
	}
	return result, errs
}

func readOptionalContextStringSlice(scope constructs.Construct, key string) []string {
	if scope.Node().TryGetContext(jsii.String(key)) == nil {
		return nil
	}
	vals, _ := readContextStringSlice(scope, key, nil)
	return vals
}

func readOptionalContextBool(scope constructs.Construct, key string) bool {
	val := scope.Node().TryGetContext(jsii.String(key))
	if val == nil {
		return false
	}
	b, ok := val.(bool)
	if !ok {
		return false
	}
	return b
}
