// Command lza operates a landing zone accelerator installation: it validates
// the organization configuration, drives the CDK toolkit locally and from
// pipeline builds, and inspects the deployed pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/landingzonehq/lza/cmd/internal/projcfg"
)

type App struct {
	Config struct {
		Validate ConfigValidateCmd `cmd:"" help:"Load and validate the six configuration documents."`
		Push     ConfigPushCmd     `cmd:"" help:"Upload the configuration directory to its S3 mirror."`
		Pull     ConfigPullCmd     `cmd:"" help:"Download the S3 mirror into the configuration directory."`
	} `cmd:"" help:"Configuration commands."`
	Stages StagesCmd `cmd:"" help:"Show the pipeline stage plan."`
	Cdk    struct {
		Synth     SynthCmd     `cmd:"" help:"Synthesize stacks for a stage, or the pipeline when no stage is given."`
		Bootstrap BootstrapCmd `cmd:"" help:"Bootstrap CDK with the accelerator's staging bucket lifecycle."`
		Deploy    DeployCmd    `cmd:"" help:"Deploy stacks for a stage, or the pipeline when no stage is given."`
		Diff      DiffCmd      `cmd:"" help:"Diff stacks for a stage, or the pipeline when no stage is given."`
		Exec      ExecCmd      `cmd:"" help:"Run the toolkit command a pipeline build requests through the environment."`
	} `cmd:"" help:"CDK toolkit commands."`
	Pipeline struct {
		Status StatusCmd `cmd:"" help:"Show the deployed pipeline's stage and action states."`
	} `cmd:"" help:"Pipeline commands."`
	Notify struct {
		Dlq DlqCmd `cmd:"" name:"dlq" help:"Drain dead-lettered pipeline notification events."`
	} `cmd:"" help:"Notification commands."`
	Doctor DoctorCmd `cmd:"" help:"Check required binaries, project files, and context agreement."`
	Check  struct {
		UnitTest UnitTestCmd `cmd:"" name:"unit-test" help:"Run all Go tests."`
	} `cmd:"" help:"Check commands."`
}

func main() {
	cfg, err := projcfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var app App
	ctx := kong.Parse(&app,
		kong.Name("lza"),
		kong.Description("Landing zone accelerator operations CLI."),
		kong.Bind(cfg),
	)
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
