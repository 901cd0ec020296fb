// Command craccounts loads pending account records into the account vending
// table.
//
// The accounts stage provisions one Custom::LoadAccounts resource carrying
// the accounts declared in the organization configuration. On create and
// update the handler writes one pending record per account; on delete the
// records stay behind as the vending audit trail until their TTL expires.
package main

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/landingzonehq/lza/handlers/internal/crruntime"
	"go.uber.org/fx"
)

type environment struct {
	crruntime.BaseEnvironment

	// VendingTable is the org accounts vending table name, injected by the
	// accounts stage construct.
	VendingTable string `env:"LZA_VENDING_TABLE,required"`
}

func main() {
	crruntime.Run[environment, *handler](
		fx.Provide(
			newHandler,
			func(cfg aws.Config) dynamoAPI { return dynamodb.NewFromConfig(cfg) },
		),
	)
}
