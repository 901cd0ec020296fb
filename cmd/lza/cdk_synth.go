package main

import (
	"context"
	"path/filepath"

	"github.com/landingzonehq/lza/cmd/internal/cmdexec"
	"github.com/landingzonehq/lza/cmd/internal/projcfg"
	cdkapp "github.com/landingzonehq/lza/infra/cdk"
	"github.com/landingzonehq/lza/lzastage"
)

type SynthCmd struct {
	Stage string `arg:"" optional:"" help:"Accelerator stage to synthesize (e.g. logging, security)."`
}

func (c *SynthCmd) Run(cfg *projcfg.Config) error {
	ctx := context.Background()

	env, err := stageEnv(c.Stage)
	if err != nil {
		return err
	}
	if err := buildSynthApp(ctx, cfg); err != nil {
		return err
	}
	return cmdexec.RunEnv(ctx, cfg.CdkDir(), env, "cdk", "synth")
}

// stageEnv returns the environment pinning a stage for the synthesis app,
// nil when stage is empty so the app covers the pipeline stack.
func stageEnv(stage string) ([]string, error) {
	if stage == "" {
		return nil, nil
	}
	parsed, err := lzastage.ParseStage(stage)
	if err != nil {
		return nil, err
	}
	return []string{cdkapp.StageEnvVar + "=" + parsed.String()}, nil
}

// buildSynthApp compiles the synthesis app the toolkit launches through
// cdk.json. Pipeline builds ship the binary in the build artifact and never
// call this.
func buildSynthApp(ctx context.Context, cfg *projcfg.Config) error {
	return cmdexec.Run(ctx, cfg.Root, "go", "build", "-trimpath",
		"-o", filepath.Join("bin", "cdkapp"), "./infra/cdk/cdk")
}
