// Package projcfg locates and loads the accelerator project file, lza.toml,
// which anchors the repository root for every CLI command.
package projcfg

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

const configFile = "lza.toml"

type Config struct {
	Root   string     `toml:"-"`
	Cdk    CdkConfig  `toml:"cdk"`
	Docs   DocsConfig `toml:"config"`
	Source RepoConfig `toml:"source"`
}

type CdkConfig struct {
	Dir string `toml:"dir"`
}

// DocsConfig locates the organization configuration documents, their
// optional S3 mirror, and the repository the pipeline sources them from.
type DocsConfig struct {
	Dir        string `toml:"dir"`
	Bucket     string `toml:"bucket"`
	Prefix     string `toml:"prefix"`
	Repository string `toml:"repository"`
	Branch     string `toml:"branch"`
}

// RepoConfig names the repository a pipeline stage sources from, checked
// against the CDK context by doctor.
type RepoConfig struct {
	Repository string `toml:"repository"`
	Branch     string `toml:"branch"`
}

// CdkDir returns the absolute CDK working directory.
func (c *Config) CdkDir() string {
	return filepath.Join(c.Root, c.Cdk.Dir)
}

// ConfigDir returns the absolute configuration document directory.
func (c *Config) ConfigDir() string {
	return filepath.Join(c.Root, c.Docs.Dir)
}

func Load() (*Config, error) {
	root, err := findRoot()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(filepath.Join(root, configFile), &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", configFile)
	}

	cfg.Root = root

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", configFile)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Cdk.Dir == "" {
		return errors.New("cdk.dir is required")
	}
	if filepath.IsAbs(c.Cdk.Dir) {
		return errors.Newf("cdk.dir must be relative, got %q", c.Cdk.Dir)
	}
	if c.Docs.Dir == "" {
		return errors.New("config.dir is required")
	}
	if filepath.IsAbs(c.Docs.Dir) {
		return errors.Newf("config.dir must be relative, got %q", c.Docs.Dir)
	}
	return nil
}

func findRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, configFile)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Newf("could not find %s in any parent directory", configFile)
		}
		dir = parent
	}
}
