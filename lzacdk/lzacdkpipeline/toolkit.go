package lzacdkpipeline

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodebuild"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodepipeline"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodepipelineactions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awskms"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
	"github.com/landingzonehq/lza/lzastage"
)

// toolkit wraps the single CodeBuild project every plan action runs on.
// Builds receive the compiled accelerator as their primary input and the
// configuration artifact as a secondary input, which CodeBuild surfaces as
// CODEBUILD_SRC_DIR_Config.
type toolkit struct {
	project awscodebuild.PipelineProject
	build   awscodepipeline.Artifact
	config  awscodepipeline.Artifact
}

// newToolkit creates the shared toolkit project. Toolkit builds bootstrap,
// diff, and deploy whole stages across the organization, so the project gets
// an administrator role and enough time for the slowest full-fleet rollouts.
func newToolkit(scope constructs.Construct, cfg *lzacdkutil.Config, key awskms.IKey, build, config awscodepipeline.Artifact) *toolkit {
	role := awsiam.NewRole(scope, jsii.String("ToolkitRole"), &awsiam.RoleProps{
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("codebuild.amazonaws.com"), nil),
		ManagedPolicies: &[]awsiam.IManagedPolicy{
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("AdministratorAccess")),
		},
	})

	project := awscodebuild.NewPipelineProject(scope, jsii.String("ToolkitProject"),
		&awscodebuild.PipelineProjectProps{
			ProjectName:   jsii.String(lzacdkutil.ResourceName(scope, "toolkit-project", lzacdkutil.CasingKebab)),
			Description:   jsii.String("Runs accelerator toolkit commands against the organization"),
			Role:          role,
			EncryptionKey: key,
			Timeout:       awscdk.Duration_Hours(jsii.Number(5)),
			Environment: &awscodebuild.BuildEnvironment{
				BuildImage:  awscodebuild.LinuxBuildImage_STANDARD_7_0(),
				ComputeType: awscodebuild.ComputeType_MEDIUM,
				Privileged:  jsii.Bool(true),
			},
			EnvironmentVariables: &map[string]*awscodebuild.BuildEnvironmentVariable{
				"ACCELERATOR_QUALIFIER": {Value: jsii.String(cfg.Qualifier)},
				"ACCELERATOR_PREFIX":    {Value: jsii.String(cfg.ResourcePrefix)},
				"MANAGEMENT_ACCOUNT_ID": {Value: awscdk.Aws_ACCOUNT_ID()},
			},
			BuildSpec: toolkitBuildSpec(),
		})

	return &toolkit{project: project, build: build, config: config}
}

// Action builds the CodeBuild pipeline action for one plan entry. Deploy
// actions pin their stage through ACCELERATOR_STAGE; bootstrap and diff
// operate on the toolkit itself and leave it unset.
func (t *toolkit) Action(a lzastage.Action) awscodepipelineactions.CodeBuildAction {
	if a.Command == lzastage.CommandApprove {
		panic(errors.Newf("action %q is a manual approval, not a toolkit build", a.Name))
	}
	if a.RunOrder < 1 {
		panic(errors.Newf("toolkit action %q has run order %d, must be at least 1", a.Name, a.RunOrder))
	}

	env := map[string]*awscodebuild.BuildEnvironmentVariable{
		"CDK_OPTIONS": {Value: jsii.String(a.CdkOptions())},
	}
	if a.TargetsStage() {
		env["ACCELERATOR_STAGE"] = &awscodebuild.BuildEnvironmentVariable{Value: jsii.String(a.Stage.String())}
	}

	return awscodepipelineactions.NewCodeBuildAction(&awscodepipelineactions.CodeBuildActionProps{
		ActionName:           jsii.String(a.Name),
		Project:              t.project,
		Input:                t.build,
		ExtraInputs:          &[]awscodepipeline.Artifact{t.config},
		EnvironmentVariables: &env,
		RunOrder:             jsii.Number(float64(a.RunOrder)),
	})
}

func toolkitBuildSpec() awscodebuild.BuildSpec {
	return awscodebuild.BuildSpec_FromObject(&map[string]any{
		"version": "0.2",
		"phases": map[string]any{
			"install": map[string]any{
				"runtime-versions": map[string]any{
					"nodejs": "latest",
				},
				"commands": []any{
					"npm install -g aws-cdk",
				},
			},
			"build": map[string]any{
				"commands": []any{
					"./bin/lza cdk exec",
				},
			},
		},
	})
}
