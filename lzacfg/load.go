package lzacfg

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// File names of the six configuration documents.
const (
	GlobalConfigFile       = "global-config.yaml"
	AccountsConfigFile     = "accounts-config.yaml"
	IAMConfigFile          = "iam-config.yaml"
	NetworkConfigFile      = "network-config.yaml"
	OrganizationConfigFile = "organization-config.yaml"
	SecurityConfigFile     = "security-config.yaml"
)

// Files lists all six document file names in load order.
var Files = []string{
	GlobalConfigFile,
	AccountsConfigFile,
	IAMConfigFile,
	NetworkConfigFile,
	OrganizationConfigFile,
	SecurityConfigFile,
}

// Set holds all six loaded configuration documents.
type Set struct {
	Global       *GlobalConfig
	Accounts     *AccountsConfig
	IAM          *IAMConfig
	Network      *NetworkConfig
	Organization *OrganizationConfig
	Security     *SecurityConfig

	// Dir is the directory the set was loaded from, used to resolve
	// relative artifact paths (policy documents, templates).
	Dir string
}

// Load reads all six configuration documents from dir, applying the given
// placeholder replacements to each raw document before decoding. Decoding is
// strict: unknown keys are errors. Read and decode failures across all files
// are collected into a single error; no partial set is returned.
func Load(dir string, replacements map[string]string) (*Set, error) {
	set := &Set{Dir: dir}
	var readErrs []string

	readErrs = loadDocument(dir, GlobalConfigFile, replacements, &set.Global, readErrs)
	readErrs = loadDocument(dir, AccountsConfigFile, replacements, &set.Accounts, readErrs)
	readErrs = loadDocument(dir, IAMConfigFile, replacements, &set.IAM, readErrs)
	readErrs = loadDocument(dir, NetworkConfigFile, replacements, &set.Network, readErrs)
	readErrs = loadDocument(dir, OrganizationConfigFile, replacements, &set.Organization, readErrs)
	readErrs = loadDocument(dir, SecurityConfigFile, replacements, &set.Security, readErrs)

	if len(readErrs) > 0 {
		return nil, errors.Errorf("configuration read errors:\n  - %s", strings.Join(readErrs, "\n  - "))
	}
	return set, nil
}

func loadDocument[D any](dir, file string, replacements map[string]string, out **D, errs []string) []string {
	raw, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return append(errs, fmt.Sprintf("%s: %v", file, err))
	}

	resolved, err := ApplyReplacements(raw, replacements)
	if err != nil {
		return append(errs, fmt.Sprintf("%s: %v", file, err))
	}

	doc := new(D)
	dec := yaml.NewDecoder(bytes.NewReader(resolved))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		return append(errs, fmt.Sprintf("%s: %v", file, err))
	}

	*out = doc
	return errs
}
