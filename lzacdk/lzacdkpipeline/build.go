package lzacdkpipeline

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodebuild"
	"github.com/aws/aws-cdk-go/awscdk/v2/awskms"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

// newBuildProject creates the project compiling the accelerator from the
// source artifact. The whole tree plus the compiled binaries flow into the
// build artifact so toolkit builds can run the CLI and synthesize stacks
// without recompiling.
func newBuildProject(scope constructs.Construct, key awskms.IKey) awscodebuild.PipelineProject {
	return awscodebuild.NewPipelineProject(scope, jsii.String("BuildProject"),
		&awscodebuild.PipelineProjectProps{
			ProjectName:   jsii.String(lzacdkutil.ResourceName(scope, "build-project", lzacdkutil.CasingKebab)),
			Description:   jsii.String("Compiles the accelerator"),
			EncryptionKey: key,
			Timeout:       awscdk.Duration_Hours(jsii.Number(1)),
			Environment: &awscodebuild.BuildEnvironment{
				BuildImage:  awscodebuild.LinuxBuildImage_STANDARD_7_0(),
				ComputeType: awscodebuild.ComputeType_MEDIUM,
			},
			BuildSpec: buildBuildSpec(),
		})
}

func buildBuildSpec() awscodebuild.BuildSpec {
	return awscodebuild.BuildSpec_FromObject(&map[string]any{
		"version": "0.2",
		"phases": map[string]any{
			"install": map[string]any{
				"runtime-versions": map[string]any{
					"golang": "latest",
				},
			},
			"build": map[string]any{
				"commands": []any{
					"go build -trimpath -o bin/lza ./cmd/lza",
					"go build -trimpath -o bin/cdkapp ./infra/cdk/cdk",
				},
			},
		},
		"artifacts": map[string]any{
			"files": []any{"**/*"},
		},
	})
}
