package main

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/cmd/internal/projcfg"
)

// cdkOptionsEnvVar carries the toolkit command line a pipeline action
// requested, set on the toolkit build by the stage plan.
const cdkOptionsEnvVar = "CDK_OPTIONS"

type ExecCmd struct{}

// Run dispatches the toolkit command the pipeline requested through the
// environment. Deploy pins its stage for the synthesis app; bootstrap and
// diff run against the pipeline stack, matching the plan's intent of
// operating on the toolkit itself.
func (c *ExecCmd) Run(cfg *projcfg.Config) error {
	ctx := context.Background()

	options := strings.Fields(os.Getenv(cdkOptionsEnvVar))
	if len(options) == 0 {
		return errors.Newf("%s is not set; run this command from a toolkit build", cdkOptionsEnvVar)
	}

	switch command := options[0]; command {
	case "deploy":
		stage, err := stageOption(options[1:])
		if err != nil {
			return err
		}
		env, err := stageEnv(stage)
		if err != nil {
			return err
		}
		return runDeploy(ctx, cfg, env)
	case "bootstrap":
		return runBootstrap(ctx, cfg, defaultAssetRetentionDays)
	case "diff":
		return runDiff(ctx, cfg, nil)
	default:
		return errors.Newf("unsupported %s command %q", cdkOptionsEnvVar, command)
	}
}

// stageOption extracts the --stage value from deploy options.
func stageOption(options []string) (string, error) {
	for i, opt := range options {
		if opt == "--stage" && i+1 < len(options) {
			return options[i+1], nil
		}
	}
	return "", errors.Newf("deploy options %q carry no --stage", strings.Join(options, " "))
}
