// Package lzacdkbucket provides a hardened S3 bucket construct used for
// pipeline artifacts and centralized logging.
//
// Every bucket created with this construct encrypts with a customer-managed
// KMS key, rejects plain HTTP access, blocks all public access, and keeps
// object versions. Buckets survive stack deletion; log history must not
// disappear with an accidental teardown.
package lzacdkbucket

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awskms"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

// Bucket provides access to a hardened S3 bucket.
type Bucket interface {
	// Bucket returns the underlying CDK bucket.
	Bucket() awss3.IBucket
}

// Props configures the Bucket construct.
type Props struct {
	// Label distinguishes this bucket from others in the same installation.
	// The bucket name becomes "{prefix}-{label}-{account}-{region}" in kebab
	// case, which keeps names unique across the organization.
	// Required.
	Label *string

	// EncryptionKey is the customer-managed KMS key encrypting all objects.
	// Required.
	EncryptionKey awskms.IKey

	// RetentionDays expires current and noncurrent object versions after the
	// given number of days, usually from the logging retention configuration.
	// Zero keeps objects forever.
	RetentionDays int

	// AccessLogBucket receives S3 server access logs when set.
	AccessLogBucket awss3.IBucket

	// AccessLogPrefix prefixes delivered access log objects.
	AccessLogPrefix *string
}

type bucket struct {
	bucket awss3.IBucket
}

// New creates a hardened S3 bucket.
func New(scope constructs.Construct, id string, props Props) Bucket {
	if props.Label == nil || *props.Label == "" {
		panic("lzacdkbucket.New: Label is required")
	}
	if props.EncryptionKey == nil {
		panic("lzacdkbucket.New: EncryptionKey is required")
	}

	scope = constructs.NewConstruct(scope, jsii.String(id))
	con := &bucket{}

	bucketName := jsii.Sprintf("%s-%s-%s",
		lzacdkutil.ResourceName(scope, *props.Label, lzacdkutil.CasingKebab),
		*awscdk.Aws_ACCOUNT_ID(), *awscdk.Aws_REGION())

	bucketProps := &awss3.BucketProps{
		BucketName:        bucketName,
		Encryption:        awss3.BucketEncryption_KMS,
		EncryptionKey:     props.EncryptionKey,
		EnforceSSL:        jsii.Bool(true),
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Versioned:         jsii.Bool(true),
		RemovalPolicy:     awscdk.RemovalPolicy_RETAIN,
	}

	if props.RetentionDays > 0 {
		bucketProps.LifecycleRules = &[]*awss3.LifecycleRule{
			{
				Enabled:                     jsii.Bool(true),
				Expiration:                  awscdk.Duration_Days(jsii.Number(float64(props.RetentionDays))),
				NoncurrentVersionExpiration: awscdk.Duration_Days(jsii.Number(float64(props.RetentionDays))),
			},
		}
	}

	if props.AccessLogBucket != nil {
		bucketProps.ServerAccessLogsBucket = props.AccessLogBucket
		bucketProps.ServerAccessLogsPrefix = props.AccessLogPrefix
	}

	con.bucket = awss3.NewBucket(scope, jsii.String("Bucket"), bucketProps)

	return con
}

func (b *bucket) Bucket() awss3.IBucket {
	return b.bucket
}
