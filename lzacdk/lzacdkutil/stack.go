package lzacdkutil

import (
	"fmt"
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// PipelineStackName returns the CloudFormation stack name for the pipeline
// stack of an installation.
func PipelineStackName(prefix string) string {
	return prefix + "-PipelineStack"
}

// StageStackName returns the CloudFormation stack name for one stage stack:
// "{prefix}-{Stage}Stack-{account}-{region}". The shared prefix per stage
// lets the toolkit deploy a whole stage with a single wildcard.
func StageStackName(prefix, stageLabel, accountID, region string) string {
	return fmt.Sprintf("%s-%sStack-%s-%s", prefix, stageLabel, accountID, region)
}

// NewPipelineStack creates the management-account stack holding the
// deployment pipeline, in the installation's home region.
func NewPipelineStack(scope constructs.Construct, cfg *Config) awscdk.Stack {
	name := PipelineStackName(cfg.ResourcePrefix)
	return newStackInternal(scope, cfg, name, "", cfg.HomeRegion, false, fmt.Sprintf(
		"%s deployment pipeline (region: %s)", cfg.ResourcePrefix, cfg.HomeRegion))
}

// StageStackProps parameterizes one stage stack.
type StageStackProps struct {
	StageLabel            string
	AccountID             string
	Region                string
	TerminationProtection bool
}

// NewStageStack creates one stage stack for an account/region pair.
func NewStageStack(scope constructs.Construct, cfg *Config, props StageStackProps) awscdk.Stack {
	if props.StageLabel == "" {
		panic("lzacdkutil.NewStageStack: StageLabel is required")
	}
	if props.Region == "" {
		panic("lzacdkutil.NewStageStack: Region is required")
	}
	name := StageStackName(cfg.ResourcePrefix, props.StageLabel, props.AccountID, props.Region)
	return newStackInternal(scope, cfg, name, props.AccountID, props.Region,
		props.TerminationProtection, fmt.Sprintf(
			"%s %s stage (account: %s, region: %s)",
			cfg.ResourcePrefix, props.StageLabel, props.AccountID, props.Region))
}

func newStackInternal(
	scope constructs.Construct, cfg *Config,
	name, accountID, region string, terminationProtection bool, description string,
) awscdk.Stack {
	stack := awscdk.NewStack(scope, jsii.String(name), &awscdk.StackProps{
		Env: &awscdk.Environment{
			Account: stackAccount(accountID),
			Region:  jsii.String(region),
		},
		Description:           jsii.String(description),
		TerminationProtection: jsii.Bool(terminationProtection),
		Synthesizer: awscdk.NewDefaultStackSynthesizer(&awscdk.DefaultStackSynthesizerProps{
			Qualifier: jsii.String(cfg.Qualifier),
		}),
	})

	awscdk.Annotations_Of(stack).AcknowledgeWarning(
		jsii.String("@aws-cdk/aws-lambda-go-alpha:goBuildFlagsSecurityWarning"),
		jsii.String("Build flags are controlled by the handler bundling options and are safe"),
	)

	return stack
}

// stackAccount resolves the deployment account: an explicit account id wins,
// then the management account from the build environment, then whatever
// credentials the toolkit runs under.
func stackAccount(accountID string) *string {
	if accountID != "" {
		return jsii.String(accountID)
	}
	if acct := os.Getenv("MANAGEMENT_ACCOUNT_ID"); acct != "" {
		return jsii.String(acct)
	}
	if acct := os.Getenv("CDK_DEFAULT_ACCOUNT"); acct != "" {
		return jsii.String(acct)
	}
	return nil
}
