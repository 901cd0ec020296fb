package main

import (
	"context"

	"github.com/landingzonehq/lza/cmd/internal/cmdexec"
	"github.com/landingzonehq/lza/cmd/internal/projcfg"
)

type DiffCmd struct {
	Stage string `help:"Accelerator stage to diff; diffs the pipeline stack when omitted."`
}

func (c *DiffCmd) Run(cfg *projcfg.Config) error {
	ctx := context.Background()

	env, err := stageEnv(c.Stage)
	if err != nil {
		return err
	}
	if err := buildSynthApp(ctx, cfg); err != nil {
		return err
	}
	return runDiff(ctx, cfg, env)
}

func runDiff(ctx context.Context, cfg *projcfg.Config, env []string) error {
	return cmdexec.RunEnv(ctx, cfg.CdkDir(), env, "cdk", "diff")
}
