package cdk

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/lzacfg"
)

// newOperationsStage deploys the identity baseline into the account:
// customer-managed policies first, then the roles and groups that reference
// them.
func newOperationsStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	policies := map[string]awsiam.IManagedPolicy{}
	for _, ps := range set.IAM.PolicySets {
		if !targetsApply(set, ps.DeploymentTargets, target) {
			continue
		}
		for _, item := range ps.Policies {
			policies[item.Name] = newManagedPolicy(stack, set, item)
		}
	}

	for _, rs := range set.IAM.RoleSets {
		if !targetsApply(set, rs.DeploymentTargets, target) {
			continue
		}
		for _, item := range rs.Roles {
			newBaselineRole(stack, policies, item)
		}
	}

	for _, gs := range set.IAM.GroupSets {
		if !targetsApply(set, gs.DeploymentTargets, target) {
			continue
		}
		for _, item := range gs.Groups {
			awsiam.NewGroup(stack, jsii.String(item.Name), &awsiam.GroupProps{
				GroupName:       jsii.String(item.Name),
				ManagedPolicies: resolvePolicies(policies, item.Policies),
			})
		}
	}
}

// newManagedPolicy deploys one customer-managed policy from its JSON
// document in the configuration directory.
func newManagedPolicy(stack awscdk.Stack, set *lzacfg.Set, item lzacfg.PolicyItem) awsiam.IManagedPolicy {
	raw, err := os.ReadFile(filepath.Join(set.Dir, item.Policy))
	if err != nil {
		panic(errors.Wrapf(err, "reading policy document for %q", item.Name))
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		panic(errors.Wrapf(err, "policy document for %q is not valid JSON", item.Name))
	}

	return awsiam.NewManagedPolicy(stack, jsii.String(item.Name), &awsiam.ManagedPolicyProps{
		ManagedPolicyName: jsii.String(item.Name),
		Document:          awsiam.PolicyDocument_FromJson(doc),
	})
}

func newBaselineRole(stack awscdk.Stack, policies map[string]awsiam.IManagedPolicy, item lzacfg.RoleItem) {
	principal := awsiam.NewCompositePrincipal(trustPrincipals(item.AssumedBy)...)

	props := &awsiam.RoleProps{
		RoleName:        jsii.String(item.Name),
		AssumedBy:       principal,
		ManagedPolicies: resolvePolicies(policies, item.Policies),
	}
	if item.BoundaryPolicy != "" {
		boundary, ok := policies[item.BoundaryPolicy]
		if !ok {
			panic(errors.Newf("role %q references boundary policy %q which is not deployed here", item.Name, item.BoundaryPolicy))
		}
		props.PermissionsBoundary = boundary
	}

	role := awsiam.NewRole(stack, jsii.String(item.Name), props)

	if item.InstanceProfile {
		awsiam.NewInstanceProfile(stack, jsii.String(item.Name+"InstanceProfile"), &awsiam.InstanceProfileProps{
			InstanceProfileName: jsii.String(item.Name),
			Role:                role,
		})
	}
}

func trustPrincipals(assumedBy []lzacfg.RolePrincipal) []awsiam.IPrincipal {
	principals := make([]awsiam.IPrincipal, 0, len(assumedBy))
	for _, p := range assumedBy {
		switch p.Type {
		case "service":
			principals = append(principals, awsiam.NewServicePrincipal(jsii.String(p.Principal), nil))
		case "account":
			principals = append(principals, awsiam.NewAccountPrincipal(p.Principal))
		default:
			panic(errors.Newf("unknown principal type %q", p.Type))
		}
	}
	return principals
}

// resolvePolicies maps policy references onto managed policy handles.
// Provider-managed names resolve against the partition's policy namespace;
// customer-managed names must belong to a policy set deployed to the same
// target.
func resolvePolicies(policies map[string]awsiam.IManagedPolicy, refs lzacfg.PolicyRefs) *[]awsiam.IManagedPolicy {
	resolved := make([]awsiam.IManagedPolicy, 0, len(refs.AwsManaged)+len(refs.CustomerManaged))
	for _, name := range refs.AwsManaged {
		resolved = append(resolved, awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String(name)))
	}
	for _, name := range refs.CustomerManaged {
		policy, ok := policies[name]
		if !ok {
			panic(errors.Newf("customer-managed policy %q is not deployed to this target", name))
		}
		resolved = append(resolved, policy)
	}
	return &resolved
}
