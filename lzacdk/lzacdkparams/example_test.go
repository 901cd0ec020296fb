package lzacdkparams_test

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkparams"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

func exampleContext() map[string]any {
	return map[string]any{
		"lza-qualifier":              "accel",
		"lza-resource-prefix":        "LZA",
		"lza-partition":              "aws",
		"lza-home-region":            "us-east-1",
		"lza-enabled-regions":        []any{"us-east-1", "us-west-2"},
		"lza-source-repository-name": "landing-zone-accelerator",
		"lza-source-branch-name":     "main",
		"lza-config-repository-name": "lza-config",
		"lza-config-branch-name":     "main",
		"lza-config-directory":       "config",
	}
}

// Example_networkConstruct demonstrates storing and looking up network
// identifiers. The namespace "network" groups all network-stage values.
func Example_networkConstruct() {
	defer jsii.Close()

	ctx := exampleContext()
	app := awscdk.NewApp(&awscdk.AppProps{Context: &ctx})
	cfg, err := lzacdkutil.NewConfig(app)
	if err != nil {
		panic(err)
	}
	lzacdkutil.StoreConfig(app, cfg)

	stack := awscdk.NewStack(app, jsii.String("NetworkStack"), &awscdk.StackProps{
		Env: &awscdk.Environment{Region: jsii.String("us-east-1")},
	})

	const namespace = "network"

	if cfg.HomeRegion == "us-east-1" {
		tgw := awsec2.NewCfnTransitGateway(stack, jsii.String("TransitGateway"),
			&awsec2.CfnTransitGatewayProps{
				AmazonSideAsn: jsii.Number(65521),
			})

		lzacdkparams.Store(stack, "TgwIDParam", namespace, "transit-gateway-id", tgw.AttrId())
	} else {
		tgwID := lzacdkparams.Lookup(stack, "LookupTgwID", namespace, "transit-gateway-id", "transit-gateway-id-lookup")
		_ = tgwID
	}
	// Output:
}

// Example_multipleNamespaces demonstrates using separate namespaces per
// producing stage. This keeps parameters organized and prevents naming
// collisions between stages.
func Example_multipleNamespaces() {
	defer jsii.Close()

	ctx := exampleContext()
	app := awscdk.NewApp(&awscdk.AppProps{Context: &ctx})
	cfg, err := lzacdkutil.NewConfig(app)
	if err != nil {
		panic(err)
	}
	lzacdkutil.StoreConfig(app, cfg)

	stack := awscdk.NewStack(app, jsii.String("AssociationsStack"), &awscdk.StackProps{
		Env: &awscdk.Environment{Region: jsii.String("us-west-2")},
	})

	tgwID := lzacdkparams.Lookup(stack, "LookupTgwID", "network", "transit-gateway-id", "tgw-id-lookup")

	vpcID := lzacdkparams.Lookup(stack, "LookupVpcID", "network-vpc", "Inspection/vpc-id", "inspection-vpc-lookup")

	keyArn := lzacdkparams.Lookup(stack, "LookupKeyArn", "logging", "central-key-arn", "central-key-lookup")

	_ = tgwID
	_ = vpcID
	_ = keyArn
	// Output:
}
