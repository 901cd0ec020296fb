package main

import (
	"context"

	"github.com/landingzonehq/lza/cmd/internal/cmdexec"
	"github.com/landingzonehq/lza/cmd/internal/projcfg"
)

type DeployCmd struct {
	Stage string `help:"Accelerator stage to deploy; deploys the pipeline stack when omitted."`
}

func (c *DeployCmd) Run(cfg *projcfg.Config) error {
	ctx := context.Background()

	env, err := stageEnv(c.Stage)
	if err != nil {
		return err
	}
	if err := buildSynthApp(ctx, cfg); err != nil {
		return err
	}
	return runDeploy(ctx, cfg, env)
}

func runDeploy(ctx context.Context, cfg *projcfg.Config, env []string) error {
	return cmdexec.RunEnv(ctx, cfg.CdkDir(), env, "cdk",
		"deploy", "--all", "--require-approval", "never")
}
