package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"
	"github.com/landingzonehq/lza/lzacdk/lzacdkhandler"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
	"github.com/landingzonehq/lza/lzacfg"
)

// newOrganizationsStage registers the delegated administrators for the
// organization-wide security services through the crorgadmin handler. The
// registration is per region for the services that keep regional admin
// state, which is why the stage fans out across all enabled regions.
func newOrganizationsStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	if lzacdkutil.SingleAccountMode(stack) {
		// No organization to delegate in a single account installation.
		return
	}

	services := delegatedServices(set)
	if len(services) == 0 {
		return
	}

	adminID, err := set.Accounts.AccountID(set.Security.CentralSecurityServices.DelegatedAdminAccount)
	if err != nil {
		panic(errors.Wrap(err, "the delegated admin account is not provisioned"))
	}

	h := lzacdkhandler.New(stack, lzacdkhandler.Props{
		Entry:            jsii.String("handlers/cmd/crorgadmin"),
		LogRetentionDays: set.Global.CloudwatchLogRetentionInDays,
		InitialPolicy: &[]awsiam.PolicyStatement{
			awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
				Actions: jsii.Strings(
					"organizations:RegisterDelegatedAdministrator",
					"organizations:DeregisterDelegatedAdministrator",
					"guardduty:EnableOrganizationAdminAccount",
					"guardduty:DisableOrganizationAdminAccount",
					"guardduty:ListOrganizationAdminAccounts",
					"macie2:EnableOrganizationAdminAccount",
					"macie2:DisableOrganizationAdminAccount",
					"macie2:ListOrganizationAdminAccounts",
					"securityhub:EnableOrganizationAdminAccount",
					"securityhub:DisableOrganizationAdminAccount",
					"securityhub:ListOrganizationAdminAccounts",
				),
				Resources: jsii.Strings("*"),
			}),
		},
	})

	for _, service := range services {
		lzacdkhandler.NewResource(stack, "Delegate"+strcase.ToCamel(service), h,
			"Custom::DelegatedAdmin", &map[string]any{
				"Service":        service,
				"AdminAccountId": adminID,
			})
	}
}

// delegatedServices returns the service keys enabled for organization
// delegation in the security configuration, in pipeline order.
func delegatedServices(set *lzacfg.Set) []string {
	css := set.Security.CentralSecurityServices
	var services []string
	if css.Guardduty.Enable {
		services = append(services, "guardduty")
	}
	if css.Macie.Enable {
		services = append(services, "macie")
	}
	if css.SecurityHub.Enable {
		services = append(services, "securityhub")
	}
	return services
}
