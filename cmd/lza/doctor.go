package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/cmd/internal/accctx"
	"github.com/landingzonehq/lza/cmd/internal/bincheck"
	"github.com/landingzonehq/lza/cmd/internal/projcfg"
	"github.com/landingzonehq/lza/lzacfg"
)

type DoctorCmd struct{}

func (c *DoctorCmd) Run(cfg *projcfg.Config) error {
	ctx := context.Background()
	var failed bool

	failed = checkBinaries(ctx) || failed
	failed = checkFiles(cfg) || failed
	failed = checkContext(cfg) || failed

	if failed {
		return errors.New("doctor found problems; see above")
	}

	fmt.Fprintln(os.Stdout, "\nAll checks passed.")
	return nil
}

func checkBinaries(ctx context.Context) bool {
	fmt.Fprintln(os.Stdout, "=== binaries ===")

	checker := bincheck.NewChecker()
	binaries := []struct {
		name        string
		versionArgs []string
	}{
		{"cdk", []string{"--version"}},
		{"aws", []string{"--version"}},
		{"go", []string{"version"}},
	}

	var failed bool
	for _, bin := range binaries {
		r := checker.Check(ctx, bin.name, bin.versionArgs...)
		switch {
		case r.InPath && r.Version != "":
			fmt.Fprintf(os.Stdout, "  ✓ %s (%s)\n", bin.name, r.Version)
		case r.InPath:
			fmt.Fprintf(os.Stdout, "  ✓ %s\n", bin.name)
		default:
			fmt.Fprintf(os.Stdout, "  ✗ %s not found in PATH\n", bin.name)
			failed = true
		}
	}
	return failed
}

func checkFiles(cfg *projcfg.Config) bool {
	fmt.Fprintln(os.Stdout, "\n=== files ===")

	files := []string{filepath.Join(cfg.Cdk.Dir, "cdk.json")}
	for _, doc := range lzacfg.Files {
		files = append(files, filepath.Join(cfg.Docs.Dir, doc))
	}

	var failed bool
	for _, rel := range files {
		if _, err := os.Stat(filepath.Join(cfg.Root, rel)); err != nil {
			fmt.Fprintf(os.Stdout, "  ✗ %s missing\n", rel)
			failed = true
			continue
		}
		fmt.Fprintf(os.Stdout, "  ✓ %s\n", rel)
	}
	return failed
}

// checkContext reports drift between the repository settings in lza.toml
// and the CDK context the pipeline sources were synthesized from.
func checkContext(cfg *projcfg.Config) bool {
	fmt.Fprintln(os.Stdout, "\n=== context ===")

	acc, err := accctx.Load(cfg.CdkDir())
	if err != nil {
		fmt.Fprintf(os.Stdout, "  ✗ %v\n", err)
		return true
	}

	checks := []struct {
		label   string
		project string
		context string
	}{
		{"source repository", cfg.Source.Repository, acc.SourceRepository},
		{"source branch", cfg.Source.Branch, acc.SourceBranch},
		{"config repository", cfg.Docs.Repository, acc.ConfigRepository},
		{"config branch", cfg.Docs.Branch, acc.ConfigBranch},
	}

	var failed bool
	fmt.Fprintf(os.Stdout, "  ✓ qualifier %q, prefix %q, home region %s\n",
		acc.Qualifier, acc.ResourcePrefix, acc.HomeRegion)
	for _, check := range checks {
		switch {
		case check.project == "":
			continue
		case check.project == check.context:
			fmt.Fprintf(os.Stdout, "  ✓ %s %q\n", check.label, check.context)
		default:
			fmt.Fprintf(os.Stdout, "  ✗ %s is %q in lza.toml but %q in the CDK context\n",
				check.label, check.project, check.context)
			failed = true
		}
	}
	return failed
}
