// Package lzacdknotify wires pipeline execution state changes to operator
// notifications.
//
// Two SNS topics carry the signal: a status topic receiving every pipeline
// execution state change and a failure topic receiving failed executions
// only. An EventBridge rule per topic matches the pipeline's state change
// events; undeliverable events land in an SQS dead letter queue so they can
// be replayed instead of silently dropped.
package lzacdknotify

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsevents"
	"github.com/aws/aws-cdk-go/awscdk/v2/awseventstargets"
	"github.com/aws/aws-cdk-go/awscdk/v2/awskms"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssnssubscriptions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssqs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

// Notify provides access to the pipeline notification resources.
type Notify interface {
	// StatusTopic returns the topic receiving every pipeline execution state
	// change.
	StatusTopic() awssns.ITopic
	// FailureTopic returns the topic receiving failed executions only.
	FailureTopic() awssns.ITopic
	// DeadLetterQueue returns the queue collecting undeliverable events.
	DeadLetterQueue() awssqs.IQueue
}

// Props configures the Notify construct.
type Props struct {
	// PipelineName scopes the event rules to one pipeline.
	// Required.
	PipelineName *string

	// EncryptionKey is the customer-managed KMS key encrypting both topics.
	// Required.
	EncryptionKey awskms.IKey

	// Emails receive subscriptions on both topics.
	// Required non-empty; notification wiring without recipients is a
	// configuration error.
	Emails []string
}

type notify struct {
	statusTopic  awssns.ITopic
	failureTopic awssns.ITopic
	dlq          awssqs.IQueue
}

// New creates the notification topics, subscriptions, and event rules for
// one pipeline.
func New(scope constructs.Construct, props Props) Notify {
	if props.PipelineName == nil || *props.PipelineName == "" {
		panic("lzacdknotify.New: PipelineName is required")
	}
	if props.EncryptionKey == nil {
		panic("lzacdknotify.New: EncryptionKey is required")
	}
	if len(props.Emails) == 0 {
		panic("lzacdknotify.New: at least one notification email is required")
	}

	scope = constructs.NewConstruct(scope, jsii.String("Notify"))
	con := &notify{}

	con.statusTopic = newTopic(scope, "StatusTopic", "pipeline-status", props.EncryptionKey, props.Emails)
	con.failureTopic = newTopic(scope, "FailureTopic", "pipeline-failure", props.EncryptionKey, props.Emails)

	con.dlq = awssqs.NewQueue(scope, jsii.String("DeadLetterQueue"), &awssqs.QueueProps{
		QueueName:           jsii.String(lzacdkutil.ResourceName(scope, "pipeline-notify-dlq", lzacdkutil.CasingKebab)),
		RetentionPeriod:     awscdk.Duration_Days(jsii.Number(14)),
		Encryption:          awssqs.QueueEncryption_KMS,
		EncryptionMasterKey: props.EncryptionKey,
	})

	newStateChangeRule(scope, "StatusRule", props.PipelineName, nil, con.statusTopic, con.dlq)
	newStateChangeRule(scope, "FailureRule", props.PipelineName,
		jsii.Strings("FAILED"), con.failureTopic, con.dlq)

	return con
}

func (n *notify) StatusTopic() awssns.ITopic {
	return n.statusTopic
}

func (n *notify) FailureTopic() awssns.ITopic {
	return n.failureTopic
}

func (n *notify) DeadLetterQueue() awssqs.IQueue {
	return n.dlq
}

func newTopic(scope constructs.Construct, id, label string, key awskms.IKey, emails []string) awssns.ITopic {
	topic := awssns.NewTopic(scope, jsii.String(id), &awssns.TopicProps{
		TopicName: jsii.String(lzacdkutil.ResourceName(scope, label, lzacdkutil.CasingKebab)),
		MasterKey: key,
	})
	for _, email := range emails {
		topic.AddSubscription(awssnssubscriptions.NewEmailSubscription(jsii.String(email), nil))
	}
	return topic
}

func newStateChangeRule(scope constructs.Construct, id string, pipelineName *string, states *[]*string, topic awssns.ITopic, dlq awssqs.IQueue) {
	detail := map[string]any{
		"pipeline": []any{*pipelineName},
	}
	if states != nil {
		stateList := make([]any, 0, len(*states))
		for _, s := range *states {
			stateList = append(stateList, *s)
		}
		detail["state"] = stateList
	}

	rule := awsevents.NewRule(scope, jsii.String(id), &awsevents.RuleProps{
		EventPattern: &awsevents.EventPattern{
			Source:     jsii.Strings("aws.codepipeline"),
			DetailType: jsii.Strings("CodePipeline Pipeline Execution State Change"),
			Detail:     &detail,
		},
	})
	rule.AddTarget(awseventstargets.NewSnsTopic(topic, &awseventstargets.SnsTopicProps{
		DeadLetterQueue: dlq,
	}))
}
