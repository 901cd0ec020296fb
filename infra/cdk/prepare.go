package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awskms"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkhandler"
	"github.com/landingzonehq/lza/lzacdk/lzacdkparams"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
	"github.com/landingzonehq/lza/lzacdk/lzacdkvending"
	"github.com/landingzonehq/lza/lzacfg"
)

const vendingParamsNamespace = "vending"

// newPrepareStage lays the management account groundwork: the vending
// encryption key, the vending tables, and the installed version marker.
func newPrepareStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	key := awskms.NewKey(stack, jsii.String("VendingKey"), &awskms.KeyProps{
		Alias:             jsii.String("alias/" + lzacdkutil.ResourceName(stack, "vending-key", lzacdkutil.CasingKebab)),
		Description:       jsii.String("Encrypts the account vending tables"),
		EnableKeyRotation: jsii.Bool(true),
	})
	lzacdkparams.Store(stack, "VendingKeyArnParam", vendingParamsNamespace, "key-arn", key.KeyArn())

	lzacdkvending.New(stack, lzacdkvending.Props{EncryptionKey: key})

	lzacdkparams.Store(stack, "VersionParam", "prepare", "version", jsii.String(lzacdkutil.Version))
}

// newAccountsStage loads the declared accounts into the vending table and
// publishes the ids of the accounts already provisioned.
func newAccountsStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	table := lzacdkvending.LookupOrgAccounts(stack)
	key := awskms.Key_FromKeyArn(stack, jsii.String("VendingKey"),
		lzacdkparams.LookupLocal(stack, vendingParamsNamespace, "key-arn"))

	h := lzacdkhandler.New(stack, lzacdkhandler.Props{
		Entry: jsii.String("handlers/cmd/craccounts"),
		Environment: &map[string]*string{
			"LZA_VENDING_TABLE": table.TableName(),
		},
		LogRetentionDays: set.Global.CloudwatchLogRetentionInDays,
	})
	table.GrantReadWriteData(h.Function())
	key.GrantEncryptDecrypt(h.Function())

	lzacdkhandler.NewResource(stack, "LoadAccounts", h, "Custom::LoadAccounts", &map[string]any{
		"Accounts": accountRecords(set),
	})

	for _, acct := range set.Accounts.AllAccounts() {
		id, err := set.Accounts.AccountID(acct.Name)
		if err != nil {
			continue
		}
		lzacdkparams.Store(stack, acct.Name+"IdParam", "accounts", acct.Name+"/id", jsii.String(id))
	}
}

// accountRecords flattens the account inventory into the LoadAccounts
// resource properties.
func accountRecords(set *lzacfg.Set) []map[string]any {
	accounts := set.Accounts.AllAccounts()
	records := make([]map[string]any, 0, len(accounts))
	for _, acct := range accounts {
		records = append(records, map[string]any{
			"name":               acct.Name,
			"email":              acct.Email,
			"organizationalUnit": acct.OrganizationalUnit,
		})
	}
	return records
}

// newFinalizeStage publishes the marker closing one pipeline run, recording
// the version that completed.
func newFinalizeStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	lzacdkparams.Store(stack, "CompleteParam", "finalize", "complete", jsii.String(lzacdkutil.Version))
}
