// Package accctx reads the accelerator installation context from the CDK
// working directory, so CLI commands can name deployed resources without
// running a synthesis.
package accctx

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

// Context holds the install-time values every synthesis shares. Values come
// from the context block of cdk.json, with cdk.context.json as fallback for
// keys managed outside the repository.
type Context struct {
	Qualifier      string
	ResourcePrefix string
	Partition      string
	HomeRegion     string
	EnabledRegions []string

	SourceRepository string
	SourceBranch     string
	ConfigRepository string
	ConfigBranch     string
	ConfigDirectory  string
}

func Load(cdkDir string) (*Context, error) {
	merged, err := readContext(cdkDir)
	if err != nil {
		return nil, err
	}

	c := &Context{}

	c.Qualifier, err = getString(merged, lzacdkutil.ContextPrefix+"qualifier")
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", cdkDir)
	}
	c.ResourcePrefix, err = getString(merged, lzacdkutil.ContextPrefix+"resource-prefix")
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", cdkDir)
	}
	c.HomeRegion, err = getString(merged, lzacdkutil.ContextPrefix+"home-region")
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", cdkDir)
	}

	c.Partition = optionalString(merged, lzacdkutil.ContextPrefix+"partition")
	c.EnabledRegions = optionalStringSlice(merged, lzacdkutil.ContextPrefix+"enabled-regions")
	c.SourceRepository = optionalString(merged, lzacdkutil.ContextPrefix+"source-repository-name")
	c.SourceBranch = optionalString(merged, lzacdkutil.ContextPrefix+"source-branch-name")
	c.ConfigRepository = optionalString(merged, lzacdkutil.ContextPrefix+"config-repository-name")
	c.ConfigBranch = optionalString(merged, lzacdkutil.ContextPrefix+"config-branch-name")
	c.ConfigDirectory = optionalString(merged, lzacdkutil.ContextPrefix+"config-directory")

	return c, nil
}

// ResourceName formats "{prefix}-{label}" in kebab case, matching the
// construct library's resource naming.
func (c *Context) ResourceName(label string) string {
	return strcase.ToKebab(c.ResourcePrefix + "-" + label)
}

// PipelineName returns the deployed pipeline's name.
func (c *Context) PipelineName() string {
	return c.ResourceName("pipeline")
}

// PipelineStackName returns the CloudFormation stack name holding the
// pipeline.
func (c *Context) PipelineStackName() string {
	return lzacdkutil.PipelineStackName(c.ResourcePrefix)
}

// NotifyDeadLetterQueueName returns the pipeline notification dead letter
// queue's name.
func (c *Context) NotifyDeadLetterQueueName() string {
	return c.ResourceName("pipeline-notify-dlq")
}

// ParameterName returns the SSM parameter path a construct stored a
// namespaced installation value under.
func (c *Context) ParameterName(namespace, name string) string {
	return "/" + c.Qualifier + "/" + namespace + "/" + name
}

// readContext merges the context blocks of cdk.json and cdk.context.json,
// with cdk.json taking precedence. A missing cdk.context.json is fine; a
// fresh checkout has none.
func readContext(cdkDir string) (map[string]json.RawMessage, error) {
	cdkJSON := filepath.Join(cdkDir, "cdk.json")
	data, err := os.ReadFile(cdkJSON)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", cdkJSON)
	}

	var cfg struct {
		Context map[string]json.RawMessage `json:"context"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", cdkJSON)
	}

	merged := make(map[string]json.RawMessage)

	ctxFile := filepath.Join(cdkDir, "cdk.context.json")
	ctxData, err := os.ReadFile(ctxFile)
	if err == nil {
		if err := json.Unmarshal(ctxData, &merged); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", ctxFile)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "reading %s", ctxFile)
	}

	for key, value := range cfg.Context {
		merged[key] = value
	}
	return merged, nil
}

func getString(m map[string]json.RawMessage, key string) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", errors.Newf("context key %q is not set", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errors.Newf("context key %q must be a string", key)
	}
	return s, nil
}

func optionalString(m map[string]json.RawMessage, key string) string {
	s, err := getString(m, key)
	if err != nil {
		return ""
	}
	return s
}

func optionalStringSlice(m map[string]json.RawMessage, key string) []string {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	var ss []string
	if err := json.Unmarshal(raw, &ss); err != nil {
		return nil
	}
	return ss
}
