// Package lzacdkparams stores and retrieves construct values through AWS
// Systems Manager Parameter Store.
//
// Accelerator stages run as separate CloudFormation stacks per account and
// region, so resource identifiers cannot flow through ordinary cross-stack
// references. Stages publish identifiers under a qualifier-scoped parameter
// path instead:
//   - producing stages (e.g. network preparation) store identifiers where
//     they create resources
//   - consuming stages (e.g. network associations) look them up: locally,
//     from the installation's home region, or from another account through
//     a read role the producing stage created
package lzacdkparams

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awsssm"
	"github.com/aws/aws-cdk-go/awscdk/v2/customresources"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

// LookupLocal retrieves a parameter from SSM Parameter Store within the same
// account and region. For cross-region lookups, use Lookup.
func LookupLocal(scope constructs.Construct, namespace string, name string) *string {
	return awsssm.StringParameter_ValueForStringParameter(scope,
		ParameterName(scope, namespace, name), nil)
}

// ParameterName generates a hierarchical SSM parameter path.
// Returns a path like /{qualifier}/{namespace}/{name}.
func ParameterName(scope constructs.Construct, namespace string, name string) *string {
	qual := lzacdkutil.Qualifier(scope)
	return jsii.Sprintf("/%s/%s/%s", qual, namespace, name)
}

// Store creates and stores a parameter in AWS SSM Parameter Store. Stages
// call this where they create a resource so later stages can resolve it.
func Store(scope constructs.Construct, id string, namespace string, name string, value *string) {
	awsssm.NewStringParameter(scope, jsii.String(id),
		&awsssm.StringParameterProps{
			ParameterName: ParameterName(scope, namespace, name),
			StringValue:   value,
		})
}

// Lookup retrieves a parameter stored in the installation's home region using
// a custom resource. Use this in other regions to access values created in
// the home region. The physicalID should be a stable identifier for the
// custom resource (e.g., "transit-gateway-id-lookup").
func Lookup(scope constructs.Construct, id string, namespace string, name string, physicalID string) *string {
	sdkCall := &customresources.AwsSdkCall{
		Service: jsii.String("SSM"),
		Action:  jsii.String("getParameter"),
		Parameters: map[string]any{
			"Name": ParameterName(scope, namespace, name),
		},
		Region:             jsii.String(lzacdkutil.HomeRegion(scope)),
		PhysicalResourceId: customresources.PhysicalResourceId_Of(jsii.String(physicalID)),
	}
	// OnUpdate is required so that changes to the parameter path trigger a
	// new SSM GetParameter call. Without it, CloudFormation skips the SDK
	// call on update and the response is empty, causing "doesn't contain
	// Parameter.Value" errors.
	lookup := customresources.NewAwsCustomResource(scope, jsii.String(id),
		&customresources.AwsCustomResourceProps{
			OnCreate: sdkCall,
			OnUpdate: sdkCall,
			Policy: customresources.AwsCustomResourcePolicy_FromSdkCalls(&customresources.SdkCallsPolicyOptions{
				Resources: customresources.AwsCustomResourcePolicy_ANY_RESOURCE(),
			}),
		})
	return lookup.GetResponseField(jsii.String("Parameter.Value"))
}

// LookupAccount retrieves a parameter stored in another account, in the same
// region, by assuming a read role the producing stage created there. The
// custom resource also gets sts:AssumeRole on roleArn, so the role's trust
// policy decides whether the lookup succeeds.
func LookupAccount(scope constructs.Construct, id string, namespace string, name string, roleArn *string, physicalID string) *string {
	sdkCall := &customresources.AwsSdkCall{
		Service: jsii.String("SSM"),
		Action:  jsii.String("getParameter"),
		Parameters: map[string]any{
			"Name": ParameterName(scope, namespace, name),
		},
		AssumedRoleArn:     roleArn,
		PhysicalResourceId: customresources.PhysicalResourceId_Of(jsii.String(physicalID)),
	}
	lookup := customresources.NewAwsCustomResource(scope, jsii.String(id),
		&customresources.AwsCustomResourceProps{
			OnCreate: sdkCall,
			OnUpdate: sdkCall,
			Policy: customresources.AwsCustomResourcePolicy_FromSdkCalls(&customresources.SdkCallsPolicyOptions{
				Resources: customresources.AwsCustomResourcePolicy_ANY_RESOURCE(),
			}),
		})
	return lookup.GetResponseField(jsii.String("Parameter.Value"))
}
