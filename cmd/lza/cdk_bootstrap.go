package main

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/cmd/internal/accctx"
	"github.com/landingzonehq/lza/cmd/internal/bootstraptpl"
	"github.com/landingzonehq/lza/cmd/internal/cmdexec"
	"github.com/landingzonehq/lza/cmd/internal/projcfg"
)

const defaultAssetRetentionDays = 90

type BootstrapCmd struct {
	AssetRetentionDays int `default:"90" help:"Days superseded staging bucket assets are retained before expiry."`
}

func (c *BootstrapCmd) Run(cfg *projcfg.Config) error {
	ctx := context.Background()

	if err := buildSynthApp(ctx, cfg); err != nil {
		return err
	}
	return runBootstrap(ctx, cfg, c.AssetRetentionDays)
}

// runBootstrap bootstraps with the default template patched to carry the
// accelerator's staging bucket lifecycle, under the installation qualifier.
func runBootstrap(ctx context.Context, cfg *projcfg.Config, retentionDays int) error {
	acc, err := accctx.Load(cfg.CdkDir())
	if err != nil {
		return err
	}

	tmpl, err := cmdexec.Output(ctx, cfg.CdkDir(), "cdk", "bootstrap", "--show-template")
	if err != nil {
		return err
	}

	patched, err := bootstraptpl.AddAssetExpiry([]byte(tmpl), retentionDays)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "lza-bootstrap-*.yaml")
	if err != nil {
		return errors.Wrap(err, "creating bootstrap template file")
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(patched); err != nil {
		f.Close()
		return errors.Wrap(err, "writing bootstrap template")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "writing bootstrap template")
	}

	return cmdexec.Run(ctx, cfg.CdkDir(), "cdk",
		"bootstrap", "--template", f.Name(), "--qualifier", acc.Qualifier)
}
