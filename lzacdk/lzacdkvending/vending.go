// Package lzacdkvending provides the DynamoDB tables backing account vending.
//
// The prepare stage creates two tables in the management account's home
// region: one for accounts created through AWS Organizations and one for
// accounts enrolled from existing CloudFormation stacks. The accounts stage
// loads pending account records into them through a custom resource, and the
// vending machinery drains them as accounts come online.
package lzacdkvending

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awskms"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkparams"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

const paramsNamespace = "vending"

// Vending provides access to the account vending tables.
type Vending interface {
	// OrgAccountsTable returns the table holding pending accounts created
	// through AWS Organizations.
	OrgAccountsTable() awsdynamodb.ITableV2

	// StackAccountsTable returns the table holding pending accounts enrolled
	// from existing CloudFormation stacks.
	StackAccountsTable() awsdynamodb.ITableV2

	// GrantReadWriteData grants read/write permissions on both tables.
	GrantReadWriteData(grantee awsiam.IGrantable)
}

// Props configures the Vending construct.
type Props struct {
	// EncryptionKey is the customer-managed KMS key encrypting both tables.
	// Required.
	EncryptionKey awskms.IKey
}

type vending struct {
	orgAccounts   awsdynamodb.ITableV2
	stackAccounts awsdynamodb.ITableV2
}

// New creates the account vending tables and stores their names in SSM
// Parameter Store so later stages can resolve them without cross-stack
// references.
func New(scope constructs.Construct, props Props) Vending {
	if props.EncryptionKey == nil {
		panic("lzacdkvending.New: EncryptionKey is required")
	}

	scope = constructs.NewConstruct(scope, jsii.String("Vending"))
	con := &vending{}

	con.orgAccounts = newVendingTable(scope, "OrgAccounts", "new-org-accounts", props.EncryptionKey)
	con.stackAccounts = newVendingTable(scope, "StackAccounts", "new-stack-accounts", props.EncryptionKey)

	return con
}

// LookupOrgAccounts returns a reference to the organization accounts table
// created by the prepare stage.
func LookupOrgAccounts(scope constructs.Construct) awsdynamodb.ITableV2 {
	tableName := lzacdkparams.LookupLocal(scope, paramsNamespace, "new-org-accounts/table-name")
	return awsdynamodb.TableV2_FromTableName(scope, jsii.String("LookupOrgAccounts"), tableName)
}

// LookupStackAccounts returns a reference to the stack accounts table created
// by the prepare stage.
func LookupStackAccounts(scope constructs.Construct) awsdynamodb.ITableV2 {
	tableName := lzacdkparams.LookupLocal(scope, paramsNamespace, "new-stack-accounts/table-name")
	return awsdynamodb.TableV2_FromTableName(scope, jsii.String("LookupStackAccounts"), tableName)
}

func (v *vending) OrgAccountsTable() awsdynamodb.ITableV2 {
	return v.orgAccounts
}

func (v *vending) StackAccountsTable() awsdynamodb.ITableV2 {
	return v.stackAccounts
}

func (v *vending) GrantReadWriteData(grantee awsiam.IGrantable) {
	v.orgAccounts.GrantReadWriteData(grantee)
	v.stackAccounts.GrantReadWriteData(grantee)
}

func newVendingTable(scope constructs.Construct, id, label string, key awskms.IKey) awsdynamodb.ITableV2 {
	tableName := lzacdkutil.ResourceName(scope, label+"-table", lzacdkutil.CasingKebab)

	table := awsdynamodb.NewTableV2(scope, jsii.String(id), &awsdynamodb.TablePropsV2{
		TableName:           jsii.String(tableName),
		PartitionKey:        &awsdynamodb.Attribute{Name: jsii.String("accountEmail"), Type: awsdynamodb.AttributeType_STRING},
		Billing:             awsdynamodb.Billing_OnDemand(nil),
		Encryption:          awsdynamodb.TableEncryptionV2_CustomerManagedKey(key, nil),
		TimeToLiveAttribute: jsii.String("ttl"),
		RemovalPolicy:       awscdk.RemovalPolicy_DESTROY,
		PointInTimeRecoverySpecification: &awsdynamodb.PointInTimeRecoverySpecification{
			PointInTimeRecoveryEnabled: jsii.Bool(true),
		},
	})

	lzacdkparams.Store(scope, id+"TableNameParam", paramsNamespace, label+"/table-name", jsii.String(tableName))

	return table
}
