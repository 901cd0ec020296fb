package cdk

import (
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatchactions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsguardduty"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssnssubscriptions"
	"github.com/aws/aws-cdk-go/awscdk/v2/customresources"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
	"github.com/landingzonehq/lza/lzacfg"
)

// newSecurityAuditStage creates the alert topics in the audit account, one
// per severity level with at least one subscriber. Alarms across the fleet
// publish into these topics by ARN.
func newSecurityAuditStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	css := set.Security.CentralSecurityServices
	levels := css.SubscriptionLevels()
	if len(levels) == 0 {
		return
	}

	key := managementKey(stack)
	for _, level := range levels {
		topic := awssns.NewTopic(stack, jsii.String(level+"AlertsTopic"), &awssns.TopicProps{
			TopicName: jsii.String(alertTopicName(stack, level)),
			MasterKey: key,
		})
		for _, sub := range css.SubscriptionsForLevel(level) {
			topic.AddSubscription(awssnssubscriptions.NewEmailSubscription(jsii.String(sub.Email), nil))
		}
	}
}

// alertTopicName returns the audit account topic name for one severity
// level. Producers in other accounts rebuild the name, so it must stay a
// pure function of the level.
func alertTopicName(scope constructs.Construct, level string) string {
	return lzacdkutil.ResourceName(scope, "security-"+strings.ToLower(level)+"-alerts", lzacdkutil.CasingKebab)
}

// newSecurityStage applies the per-account security baseline: the regional
// GuardDuty detector and EBS default volume encryption where enabled.
func newSecurityStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	css := set.Security.CentralSecurityServices

	if css.Guardduty.Enable {
		props := &awsguardduty.CfnDetectorProps{
			Enable: jsii.Bool(true),
		}
		if css.Guardduty.ExportConfiguration.Enable && css.Guardduty.ExportConfiguration.ExportFrequency != "" {
			props.FindingPublishingFrequency = jsii.String(css.Guardduty.ExportConfiguration.ExportFrequency)
		}
		awsguardduty.NewCfnDetector(stack, jsii.String("Detector"), props)
	}

	if css.EbsDefaultVolumeEncryption.Enable {
		newEbsDefaultEncryption(stack)
	}
}

// newEbsDefaultEncryption turns on EBS encryption by default for the
// account and region. The setting is an account attribute with no
// CloudFormation resource, so an SDK-call custom resource flips it.
func newEbsDefaultEncryption(stack awscdk.Stack) {
	customresources.NewAwsCustomResource(stack, jsii.String("EbsDefaultEncryption"),
		&customresources.AwsCustomResourceProps{
			OnCreate: &customresources.AwsSdkCall{
				Service:            jsii.String("EC2"),
				Action:             jsii.String("enableEbsEncryptionByDefault"),
				PhysicalResourceId: customresources.PhysicalResourceId_Of(jsii.String("ebs-default-encryption")),
			},
			OnDelete: &customresources.AwsSdkCall{
				Service: jsii.String("EC2"),
				Action:  jsii.String("disableEbsEncryptionByDefault"),
			},
			Policy: customresources.AwsCustomResourcePolicy_FromSdkCalls(&customresources.SdkCallsPolicyOptions{
				Resources: customresources.AwsCustomResourcePolicy_ANY_RESOURCE(),
			}),
		})
}

// newSecurityResourcesStage deploys the monitoring baseline: metric filters
// over the account's log groups and alarms publishing into the audit
// account's alert topics.
func newSecurityResourcesStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	for _, ms := range set.Security.CloudWatch.MetricSets {
		if !regionsApply(ms.Regions, target) || !targetsApply(set, ms.DeploymentTargets, target) {
			continue
		}
		for _, metric := range ms.Metrics {
			newMetricFilter(stack, metric)
		}
	}

	// Alarms sharing a level share the imported topic construct.
	topics := make(map[string]awssns.ITopic)
	for _, as := range set.Security.CloudWatch.AlarmSets {
		if !regionsApply(as.Regions, target) || !targetsApply(set, as.DeploymentTargets, target) {
			continue
		}
		for _, alarm := range as.Alarms {
			topic, ok := topics[alarm.SnsAlertLevel]
			if !ok {
				topic = alertTopic(stack, set, target, alarm.SnsAlertLevel)
				topics[alarm.SnsAlertLevel] = topic
			}
			newBaselineAlarm(stack, alarm, topic)
		}
	}
}

func newMetricFilter(stack awscdk.Stack, metric lzacfg.MetricItem) {
	logGroup := awslogs.LogGroup_FromLogGroupName(stack,
		jsii.String(metric.FilterName+"LogGroup"), jsii.String(metric.LogGroupName))

	awslogs.NewMetricFilter(stack, jsii.String(metric.FilterName), &awslogs.MetricFilterProps{
		LogGroup:        logGroup,
		FilterName:      jsii.String(metric.FilterName),
		FilterPattern:   awslogs.FilterPattern_Literal(jsii.String(metric.FilterPattern)),
		MetricNamespace: jsii.String(metric.MetricNamespace),
		MetricName:      jsii.String(metric.MetricName),
		MetricValue:     jsii.String(metric.MetricValue),
	})
}

func newBaselineAlarm(stack awscdk.Stack, item lzacfg.AlarmItem, topic awssns.ITopic) {
	metric := awscloudwatch.NewMetric(&awscloudwatch.MetricProps{
		Namespace:  jsii.String(item.Namespace),
		MetricName: jsii.String(item.MetricName),
		Period:     awscdk.Duration_Seconds(jsii.Number(float64(item.Period))),
		Statistic:  jsii.String(item.Statistic),
	})

	alarm := awscloudwatch.NewAlarm(stack, jsii.String(item.AlarmName), &awscloudwatch.AlarmProps{
		AlarmName:          jsii.String(item.AlarmName),
		AlarmDescription:   jsii.String(item.AlarmDescription),
		Metric:             metric,
		Threshold:          jsii.Number(item.Threshold),
		EvaluationPeriods:  jsii.Number(float64(item.EvaluationPeriods)),
		ComparisonOperator: comparisonOperator(item.ComparisonOperator),
		TreatMissingData:   treatMissingData(item.TreatMissingData),
	})

	alarm.AddAlarmAction(awscloudwatchactions.NewSnsAction(topic))
}

// alertTopic references the audit account's topic for one alert level. The
// alarm runs in an arbitrary fleet account, so the reference is by ARN.
func alertTopic(stack awscdk.Stack, set *lzacfg.Set, target StageTarget, level string) awssns.ITopic {
	auditName := lzacfg.AuditAccountName
	if lzacdkutil.SingleAccountMode(stack) {
		auditName = lzacfg.ManagementAccountName
	}
	auditID, err := set.Accounts.AccountID(auditName)
	if err != nil {
		panic(errors.Wrap(err, "alarm actions need a provisioned audit account"))
	}

	arn := jsii.Sprintf("arn:%s:sns:%s:%s:%s",
		lzacdkutil.Partition(stack), target.Region, auditID, alertTopicName(stack, level))
	return awssns.Topic_FromTopicArn(stack, jsii.String(level+"AlertsTopic"), arn)
}

var comparisonOperators = map[string]awscloudwatch.ComparisonOperator{
	"GreaterThanOrEqualToThreshold": awscloudwatch.ComparisonOperator_GREATER_THAN_OR_EQUAL_TO_THRESHOLD,
	"GreaterThanThreshold":          awscloudwatch.ComparisonOperator_GREATER_THAN_THRESHOLD,
	"LessThanThreshold":             awscloudwatch.ComparisonOperator_LESS_THAN_THRESHOLD,
	"LessThanOrEqualToThreshold":    awscloudwatch.ComparisonOperator_LESS_THAN_OR_EQUAL_TO_THRESHOLD,
}

func comparisonOperator(value string) awscloudwatch.ComparisonOperator {
	op, ok := comparisonOperators[value]
	if !ok {
		panic(errors.Newf("unknown alarm comparison operator %q", value))
	}
	return op
}

var missingDataModes = map[string]awscloudwatch.TreatMissingData{
	"breaching":    awscloudwatch.TreatMissingData_BREACHING,
	"notBreaching": awscloudwatch.TreatMissingData_NOT_BREACHING,
	"ignore":       awscloudwatch.TreatMissingData_IGNORE,
	"missing":      awscloudwatch.TreatMissingData_MISSING,
}

func treatMissingData(value string) awscloudwatch.TreatMissingData {
	if value == "" {
		return awscloudwatch.TreatMissingData_MISSING
	}
	mode, ok := missingDataModes[value]
	if !ok {
		panic(errors.Newf("unknown treatMissingData value %q", value))
	}
	return mode
}
