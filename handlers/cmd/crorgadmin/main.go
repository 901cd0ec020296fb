// Command crorgadmin manages delegated administration for the
// organization-wide security services.
//
// The organizations stage provisions one Custom::DelegatedAdmin resource per
// enabled service. On create and update the handler registers the admin
// account as the service's delegated administrator with AWS Organizations
// and turns on the service-level organization admin; on delete it reverses
// both. Repeat pipeline runs hit already-registered conditions, which the
// handler treats as success.
package main

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/guardduty"
	"github.com/aws/aws-sdk-go-v2/service/macie2"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/securityhub"
	"github.com/landingzonehq/lza/handlers/internal/crruntime"
	"go.uber.org/fx"
)

func main() {
	crruntime.Run[crruntime.BaseEnvironment, *handler](
		fx.Provide(
			newHandler,
			func(cfg aws.Config) orgsAPI { return organizations.NewFromConfig(cfg) },
			func(cfg aws.Config) guarddutyAPI { return guardduty.NewFromConfig(cfg) },
			func(cfg aws.Config) macieAPI { return macie2.NewFromConfig(cfg) },
			func(cfg aws.Config) securityhubAPI { return securityhub.NewFromConfig(cfg) },
		),
	)
}
