// Package lzacdkpipeline assembles the accelerator deployment pipeline.
//
// The pipeline is the installation's control plane: a Source stage pulls the
// accelerator source and the configuration repository, a Build stage compiles
// the accelerator, and one pipeline stage per plan entry runs toolkit builds
// that bootstrap, diff, and deploy the landing zone stacks across the
// organization. Everything is wired in one pass at synthesis time; invalid
// construction aborts the synthesis rather than emitting a partial pipeline.
package lzacdkpipeline

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodecommit"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodepipeline"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscodepipelineactions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awskms"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssnssubscriptions"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkbucket"
	"github.com/landingzonehq/lza/lzacdk/lzacdkconfigrepo"
	"github.com/landingzonehq/lza/lzacdk/lzacdknotify"
	"github.com/landingzonehq/lza/lzacdk/lzacdkparams"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
	"github.com/landingzonehq/lza/lzastage"
)

const paramsNamespace = "pipeline"

// Pipeline provides access to the assembled deployment pipeline.
type Pipeline interface {
	// Pipeline returns the underlying CodePipeline.
	Pipeline() awscodepipeline.Pipeline
	// ConfigRepository returns the configuration repository the pipeline
	// created and sources from.
	ConfigRepository() awscodecommit.IRepository
}

// Props configures the Pipeline construct.
type Props struct {
	// ConfigDirectory overrides the context configuration directory used to
	// seed the configuration repository.
	ConfigDirectory *string
}

type pipeline struct {
	pipeline   awscodepipeline.Pipeline
	configRepo awscodecommit.IRepository
}

// New assembles the deployment pipeline from the fixed stage plan and the
// installation context:
//
//   - a rotation-enabled KMS key encrypting artifacts, projects, and topics
//   - a hardened artifact bucket
//   - Source stage with parallel source and configuration actions
//   - Build stage compiling the accelerator once
//   - one stage per plan entry, all builds sharing a single toolkit project
//   - the Review stage only when manual approval is enabled; its approval
//     topic only in the commercial partition
//   - pipeline state change notifications unless the installation runs in a
//     single account
//
// Exactly two CodeBuild projects exist per pipeline: the build project and
// the shared toolkit project.
func New(scope constructs.Construct, props Props) Pipeline {
	cfg := lzacdkutil.ConfigFromScope(scope)

	plan := lzastage.Plan()
	if _, err := lzastage.BuildGraph(plan); err != nil {
		panic(err)
	}

	scope = constructs.NewConstruct(scope, jsii.String("Pipeline"))
	con := &pipeline{}

	configDir := cfg.ConfigDirectory
	if props.ConfigDirectory != nil && *props.ConfigDirectory != "" {
		configDir = *props.ConfigDirectory
	}

	key := awskms.NewKey(scope, jsii.String("Key"), &awskms.KeyProps{
		Alias:             jsii.String("alias/" + lzacdkutil.ResourceName(scope, "pipeline-key", lzacdkutil.CasingKebab)),
		Description:       jsii.String("Encrypts accelerator pipeline artifacts and notifications"),
		EnableKeyRotation: jsii.Bool(true),
	})

	artifacts := lzacdkbucket.New(scope, "Artifacts", lzacdkbucket.Props{
		Label:         jsii.String("pipeline-artifacts"),
		EncryptionKey: key,
	})

	con.configRepo = lzacdkconfigrepo.New(scope, lzacdkconfigrepo.Props{
		Directory: jsii.String(configDir),
	}).Repository()

	sourceRepo := awscodecommit.Repository_FromRepositoryName(scope,
		jsii.String("SourceRepo"), jsii.String(cfg.SourceRepositoryName))

	pipelineName := lzacdkutil.ResourceName(scope, "pipeline", lzacdkutil.CasingKebab)

	pipe := awscodepipeline.NewPipeline(scope, jsii.String("Pipeline"), &awscodepipeline.PipelineProps{
		PipelineName:             jsii.String(pipelineName),
		PipelineType:             awscodepipeline.PipelineType_V2,
		ArtifactBucket:           artifacts.Bucket(),
		RestartExecutionOnUpdate: jsii.Bool(true),
	})
	con.pipeline = pipe

	sourceArtifact := awscodepipeline.NewArtifact(jsii.String("Source"), nil)
	configArtifact := awscodepipeline.NewArtifact(jsii.String("Config"), nil)
	buildArtifact := awscodepipeline.NewArtifact(jsii.String("Build"), nil)

	pipe.AddStage(&awscodepipeline.StageOptions{
		StageName: jsii.String("Source"),
		Actions: &[]awscodepipeline.IAction{
			awscodepipelineactions.NewCodeCommitSourceAction(&awscodepipelineactions.CodeCommitSourceActionProps{
				ActionName: jsii.String("Source"),
				Repository: sourceRepo,
				Branch:     jsii.String(cfg.SourceBranchName),
				Output:     sourceArtifact,
			}),
			awscodepipelineactions.NewCodeCommitSourceAction(&awscodepipelineactions.CodeCommitSourceActionProps{
				ActionName: jsii.String("Configuration"),
				Repository: con.configRepo,
				Branch:     jsii.String(cfg.ConfigBranchName),
				Output:     configArtifact,
			}),
		},
	})

	pipe.AddStage(&awscodepipeline.StageOptions{
		StageName: jsii.String("Build"),
		Actions: &[]awscodepipeline.IAction{
			awscodepipelineactions.NewCodeBuildAction(&awscodepipelineactions.CodeBuildActionProps{
				ActionName: jsii.String("Build"),
				Project:    newBuildProject(scope, key),
				Input:      sourceArtifact,
				Outputs:    &[]awscodepipeline.Artifact{buildArtifact},
			}),
		},
	})

	tk := newToolkit(scope, cfg, key, buildArtifact, configArtifact)

	var approvalTopic awssns.ITopic
	if cfg.EnableApprovalStage && cfg.SupportsPipelineNotifications() {
		approvalTopic = newApprovalTopic(scope, cfg, key)
	}

	for _, stage := range plan {
		if stage.RequiresApproval && !cfg.EnableApprovalStage {
			continue
		}
		actions := make([]awscodepipeline.IAction, 0, len(stage.Actions))
		for _, a := range stage.Actions {
			if a.Command == lzastage.CommandApprove {
				actions = append(actions, newApprovalAction(a, approvalTopic))
				continue
			}
			actions = append(actions, tk.Action(a))
		}
		pipe.AddStage(&awscodepipeline.StageOptions{
			StageName: jsii.String(stage.Name),
			Actions:   &actions,
		})
	}

	if !cfg.SingleAccountMode {
		lzacdknotify.New(scope, lzacdknotify.Props{
			PipelineName:  jsii.String(pipelineName),
			EncryptionKey: key,
			Emails:        cfg.NotifyEmails,
		})
	}

	lzacdkparams.Store(scope, "PipelineNameParam", paramsNamespace, "name", jsii.String(pipelineName))
	lzacdkparams.Store(scope, "VersionParam", paramsNamespace, "version", jsii.String(lzacdkutil.Version))

	return con
}

func (p *pipeline) Pipeline() awscodepipeline.Pipeline {
	return p.pipeline
}

func (p *pipeline) ConfigRepository() awscodecommit.IRepository {
	return p.configRepo
}

func newApprovalTopic(scope constructs.Construct, cfg *lzacdkutil.Config, key awskms.IKey) awssns.ITopic {
	topic := awssns.NewTopic(scope, jsii.String("ApprovalTopic"), &awssns.TopicProps{
		TopicName: jsii.String(lzacdkutil.ResourceName(scope, "pipeline-approval", lzacdkutil.CasingKebab)),
		MasterKey: key,
	})
	for _, email := range cfg.ApprovalNotifyEmails {
		topic.AddSubscription(awssnssubscriptions.NewEmailSubscription(jsii.String(email), nil))
	}
	return topic
}

func newApprovalAction(a lzastage.Action, topic awssns.ITopic) awscodepipelineactions.ManualApprovalAction {
	return awscodepipelineactions.NewManualApprovalAction(&awscodepipelineactions.ManualApprovalActionProps{
		ActionName:            jsii.String(a.Name),
		RunOrder:              jsii.Number(float64(a.RunOrder)),
		NotificationTopic:     topic,
		AdditionalInformation: jsii.String("Review the preceding diff output before approving the deployment."),
	})
}
