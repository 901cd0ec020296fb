package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awskms"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkbucket"
	"github.com/landingzonehq/lza/lzacdk/lzacdkparams"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
	"github.com/landingzonehq/lza/lzacfg"
)

const keyParamsNamespace = "key"

// newKeyStage creates the account's management key for accelerator-encrypted
// resources in the region and publishes its ARN for the later stages.
func newKeyStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	key := awskms.NewKey(stack, jsii.String("ManagementKey"), &awskms.KeyProps{
		Alias:             jsii.String("alias/" + lzacdkutil.ResourceName(stack, "kms-key", lzacdkutil.CasingKebab)),
		Description:       jsii.String("Encrypts accelerator resources in this account and region"),
		EnableKeyRotation: jsii.Bool(true),
	})
	lzacdkparams.Store(stack, "KeyArnParam", keyParamsNamespace, "key-arn", key.KeyArn())
}

// managementKey references the account and region management key the key
// stage created.
func managementKey(stack awscdk.Stack) awskms.IKey {
	return awskms.Key_FromKeyArn(stack, jsii.String("ManagementKey"),
		lzacdkparams.LookupLocal(stack, keyParamsNamespace, "key-arn"))
}

// newLoggingStage creates the S3 access log bucket in every account and the
// central log bucket in the logging account, both with the retention from
// the global logging configuration.
func newLoggingStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	key := managementKey(stack)

	accessLogs := lzacdkbucket.New(stack, "AccessLogs", lzacdkbucket.Props{
		Label:         jsii.String("s3-access-logs"),
		EncryptionKey: key,
		RetentionDays: set.Global.Logging.AccessLogBucketRetentionDays,
	})

	// A single account installation has no separate logging account; the
	// central bucket lands in the management account instead.
	centralHere := target.Account.Name == set.Global.Logging.Account ||
		lzacdkutil.SingleAccountMode(stack)
	if centralHere {
		lzacdkbucket.New(stack, "CentralLogs", lzacdkbucket.Props{
			Label:           jsii.String("central-logs"),
			EncryptionKey:   key,
			RetentionDays:   set.Global.Logging.BucketRetentionDays,
			AccessLogBucket: accessLogs.Bucket(),
			AccessLogPrefix: jsii.String("central-logs/"),
		})
	}
}
