package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsram"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"
	"github.com/landingzonehq/lza/lzacdk/lzacdkparams"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
	"github.com/landingzonehq/lza/lzacfg"
)

const (
	networkParamsNamespace = "network"
	vpcParamsNamespace     = "network-vpc"

	networkReadRoleLabel = "network-read-role"
)

// newNetworkPrepStage deploys the transit gateways declared for the account
// and region, shares them with the accounts that attach VPCs to them, and
// publishes their ids for the association stage to look up.
func newNetworkPrepStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	for _, tgw := range set.Network.TransitGatewaysForAccount(target.Account.Name, target.Region) {
		l1 := awsec2.NewCfnTransitGateway(stack, jsii.String(tgw.Name), &awsec2.CfnTransitGatewayProps{
			AmazonSideAsn:                jsii.Number(float64(tgw.Asn)),
			DnsSupport:                   featureToggle(tgw.DnsSupport),
			VpnEcmpSupport:               featureToggle(tgw.VpnEcmpSupport),
			DefaultRouteTableAssociation: featureToggle(tgw.DefaultRouteTableAssociation),
			DefaultRouteTablePropagation: featureToggle(tgw.DefaultRouteTablePropagation),
			Tags:                         nameTags(tgw.Name),
		})
		lzacdkparams.Store(stack, tgw.Name+"IdParam",
			networkParamsNamespace, "transit-gateways/"+tgw.Name+"/id", l1.Ref())

		attaching := attachingAccounts(set, tgw)
		if len(attaching) == 0 {
			continue
		}
		tgwArn := jsii.Sprintf("arn:%s:ec2:%s:%s:transit-gateway/%s",
			lzacdkutil.Partition(stack), target.Region, target.AccountID, *l1.Ref())
		awsram.NewCfnResourceShare(stack, jsii.String(tgw.Name+"Share"), &awsram.CfnResourceShareProps{
			Name:                    jsii.String(lzacdkutil.ResourceName(stack, strcase.ToKebab(tgw.Name)+"-share", lzacdkutil.CasingKebab)),
			ResourceArns:            &[]*string{tgwArn},
			Principals:              jsii.Strings(attaching...),
			AllowExternalPrincipals: jsii.Bool(false),
		})
	}

	// The read role is IAM, so it only belongs in the home region stack.
	if target.Region == lzacdkutil.HomeRegion(stack) {
		if readers := allAttachingAccounts(set, target.Account.Name); len(readers) > 0 {
			newNetworkReadRole(stack, target, readers)
		}
	}
}

// attachingAccounts returns the provisioned account ids, other than the
// owner's, whose VPCs attach to the transit gateway. Accounts still pending
// vending are skipped; their attachment stacks only synthesize once the id
// is known.
func attachingAccounts(set *lzacfg.Set, tgw lzacfg.TransitGatewayConfig) []string {
	var ids []string
	seen := map[string]bool{}
	for _, vpc := range set.Network.Vpcs {
		if vpc.Account == tgw.Account || seen[vpc.Account] {
			continue
		}
		for _, att := range vpc.TransitGatewayAttachments {
			if att.TransitGateway.Name != tgw.Name || att.TransitGateway.Account != tgw.Account {
				continue
			}
			id, err := set.Accounts.AccountID(vpc.Account)
			if err != nil {
				break
			}
			seen[vpc.Account] = true
			ids = append(ids, id)
			break
		}
	}
	return ids
}

// allAttachingAccounts returns the provisioned account ids that attach VPCs
// to any transit gateway owned by the account.
func allAttachingAccounts(set *lzacfg.Set, owner string) []string {
	var ids []string
	seen := map[string]bool{}
	for _, tgw := range set.Network.TransitGateways {
		if tgw.Account != owner {
			continue
		}
		for _, id := range attachingAccounts(set, tgw) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// newNetworkReadRole grants attaching accounts read access to the owner's
// published network parameters, so their association stacks can resolve
// transit gateway ids across the account boundary.
func newNetworkReadRole(stack awscdk.Stack, target StageTarget, readerIDs []string) {
	principals := make([]awsiam.IPrincipal, 0, len(readerIDs))
	for _, id := range readerIDs {
		principals = append(principals, awsiam.NewAccountPrincipal(id))
	}

	role := awsiam.NewRole(stack, jsii.String("NetworkReadRole"), &awsiam.RoleProps{
		RoleName:  jsii.String(lzacdkutil.ResourceName(stack, networkReadRoleLabel, lzacdkutil.CasingKebab)),
		AssumedBy: awsiam.NewCompositePrincipal(principals...),
	})
	role.AddToPolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Actions: jsii.Strings("ssm:GetParameter"),
		Resources: &[]*string{jsii.Sprintf("arn:%s:ssm:*:%s:parameter/%s/%s/*",
			lzacdkutil.Partition(stack), target.AccountID, lzacdkutil.Qualifier(stack), networkParamsNamespace)},
	}))
}

// networkReadRoleArn rebuilds the ARN of another account's network read
// role. Role names are deterministic, so no lookup is needed.
func networkReadRoleArn(scope constructs.Construct, ownerAccountID string) *string {
	return jsii.Sprintf("arn:%s:iam::%s:role/%s",
		lzacdkutil.Partition(scope), ownerAccountID,
		lzacdkutil.ResourceName(scope, networkReadRoleLabel, lzacdkutil.CasingKebab))
}

// newNetworkVpcStage deploys the VPCs declared for the account and region
// with their secondary CIDRs, internet gateways and subnets, publishing the
// ids the association stage consumes.
func newNetworkVpcStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	for _, vpc := range set.Network.VpcsForAccount(target.Account.Name, target.Region) {
		newVpc(stack, target, vpc)
	}
}

func newVpc(stack awscdk.Stack, target StageTarget, vpc lzacfg.VpcConfig) {
	l1 := awsec2.NewCfnVPC(stack, jsii.String(vpc.Name), &awsec2.CfnVPCProps{
		CidrBlock:          jsii.String(vpc.Cidrs[0]),
		EnableDnsHostnames: jsii.Bool(vpc.EnableDnsHostnames),
		EnableDnsSupport:   jsii.Bool(vpc.EnableDnsSupport),
		Tags:               nameTags(vpc.Name),
	})
	lzacdkparams.Store(stack, vpc.Name+"IdParam", vpcParamsNamespace, vpc.Name+"/id", l1.Ref())

	for i, cidr := range vpc.Cidrs[1:] {
		awsec2.NewCfnVPCCidrBlock(stack, jsii.Sprintf("%sCidr%d", vpc.Name, i+1), &awsec2.CfnVPCCidrBlockProps{
			VpcId:     l1.Ref(),
			CidrBlock: jsii.String(cidr),
		})
	}

	if vpc.InternetGateway {
		igw := awsec2.NewCfnInternetGateway(stack, jsii.String(vpc.Name+"Igw"), &awsec2.CfnInternetGatewayProps{
			Tags: nameTags(vpc.Name),
		})
		awsec2.NewCfnVPCGatewayAttachment(stack, jsii.String(vpc.Name+"IgwAttachment"), &awsec2.CfnVPCGatewayAttachmentProps{
			VpcId:             l1.Ref(),
			InternetGatewayId: igw.Ref(),
		})
	}

	for _, subnet := range vpc.Subnets {
		id := vpc.Name + "Subnet" + strcase.ToCamel(subnet.Name)
		l1Subnet := awsec2.NewCfnSubnet(stack, jsii.String(id), &awsec2.CfnSubnetProps{
			VpcId:               l1.Ref(),
			AvailabilityZone:    jsii.String(target.Region + subnet.AvailabilityZone),
			CidrBlock:           jsii.String(subnet.Ipv4CidrBlock),
			MapPublicIpOnLaunch: jsii.Bool(subnet.MapPublicIP),
			Tags:                nameTags(vpc.Name + "-" + subnet.Name),
		})
		lzacdkparams.Store(stack, id+"IdParam",
			vpcParamsNamespace, vpc.Name+"/subnets/"+subnet.Name+"/id", l1Subnet.Ref())
	}
}

// newNetworkAssociationsStage attaches the account's VPCs to their transit
// gateways. Ids come from the parameter store: locally for resources in the
// same account, through the owner's read role otherwise.
func newNetworkAssociationsStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	for _, vpc := range set.Network.VpcsForAccount(target.Account.Name, target.Region) {
		for _, att := range vpc.TransitGatewayAttachments {
			newTgwAttachment(stack, set, target, vpc, att)
		}
	}
}

func newTgwAttachment(stack awscdk.Stack, set *lzacfg.Set, target StageTarget, vpc lzacfg.VpcConfig, att lzacfg.TgwAttachmentConfig) {
	vpcID := lzacdkparams.LookupLocal(stack, vpcParamsNamespace, vpc.Name+"/id")

	subnetIDs := make([]*string, 0, len(att.Subnets))
	for _, name := range att.Subnets {
		subnetIDs = append(subnetIDs,
			lzacdkparams.LookupLocal(stack, vpcParamsNamespace, vpc.Name+"/subnets/"+name+"/id"))
	}

	tgwParam := "transit-gateways/" + att.TransitGateway.Name + "/id"
	var tgwID *string
	if att.TransitGateway.Account == target.Account.Name {
		tgwID = lzacdkparams.LookupLocal(stack, networkParamsNamespace, tgwParam)
	} else {
		ownerID, err := set.Accounts.AccountID(att.TransitGateway.Account)
		if err != nil {
			panic(errors.Wrapf(err, "attachment %q references a transit gateway in an account that is not provisioned", att.Name))
		}
		tgwID = lzacdkparams.LookupAccount(stack, att.Name+"TgwIdLookup",
			networkParamsNamespace, tgwParam, networkReadRoleArn(stack, ownerID), att.Name+"-tgw-id")
	}

	awsec2.NewCfnTransitGatewayAttachment(stack, jsii.String(att.Name), &awsec2.CfnTransitGatewayAttachmentProps{
		TransitGatewayId: tgwID,
		VpcId:            vpcID,
		SubnetIds:        &subnetIDs,
		Tags:             nameTags(att.Name),
	})
}

// featureToggle maps an optional enable/disable setting onto its wire form,
// defaulting to enable.
func featureToggle(value string) *string {
	if value == "" {
		return jsii.String("enable")
	}
	return jsii.String(value)
}

func nameTags(name string) *[]*awscdk.CfnTag {
	return &[]*awscdk.CfnTag{{Key: jsii.String("Name"), Value: jsii.String(name)}}
}
