package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/landingzonehq/lza/handlers/internal/crruntime"
	"go.uber.org/zap"
)

// pendingTTL bounds how long an unprocessed record lingers before DynamoDB
// expires it; the next pipeline run rewrites the ones still wanted.
const pendingTTL = 30 * 24 * time.Hour

// statePending marks records the vending machinery has not picked up yet.
const statePending = "PENDING"

// dynamoAPI is the slice of the DynamoDB client the handler calls.
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// account is one entry of the Accounts resource property.
type account struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	OrganizationalUnit string `json:"organizationalUnit"`
}

// record is the vending table item for one pending account. The table's
// partition key is the account email; the request id makes individual loads
// traceable across pipeline runs.
type record struct {
	AccountEmail       string `dynamodbav:"accountEmail"`
	RequestID          string `dynamodbav:"requestId"`
	Name               string `dynamodbav:"name"`
	OrganizationalUnit string `dynamodbav:"organizationalUnit"`
	State              string `dynamodbav:"state"`
	TTL                int64  `dynamodbav:"ttl"`
}

type handler struct {
	env    environment
	dynamo dynamoAPI
	now    func() time.Time
}

func newHandler(env environment, dynamo dynamoAPI) *handler {
	return &handler{env: env, dynamo: dynamo, now: time.Now}
}

func (h *handler) Handle(ctx context.Context, event cfn.Event) (string, map[string]any, error) {
	physicalID := event.PhysicalResourceID
	if physicalID == "" {
		physicalID = event.LogicalResourceID
	}

	if event.RequestType == cfn.RequestDelete {
		crruntime.Log(ctx).Info("retaining vending records")
		return physicalID, nil, nil
	}

	accounts, err := parseAccounts(event.ResourceProperties)
	if err != nil {
		return physicalID, nil, err
	}

	expiry := h.now().Add(pendingTTL).Unix()
	for _, acct := range accounts {
		if err := h.put(ctx, acct, expiry); err != nil {
			return physicalID, nil, errors.Wrapf(err, "account %q", acct.Name)
		}
	}
	crruntime.Log(ctx).Info("loaded pending accounts", zap.Int("count", len(accounts)))

	return physicalID, map[string]any{"Count": len(accounts)}, nil
}

// parseAccounts decodes the Accounts property through a JSON round trip,
// which tolerates the loose typing of custom resource properties.
func parseAccounts(props map[string]any) ([]account, error) {
	raw, err := json.Marshal(props["Accounts"])
	if err != nil {
		return nil, errors.Wrap(err, "encode Accounts property")
	}
	var accounts []account
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, errors.Wrap(err, "decode Accounts property")
	}
	if len(accounts) == 0 {
		return nil, errors.New("resource properties declare no accounts")
	}
	for _, acct := range accounts {
		if acct.Name == "" || acct.Email == "" {
			return nil, errors.Newf("account %q needs both name and email", acct.Name)
		}
	}
	return accounts, nil
}

func (h *handler) put(ctx context.Context, acct account, expiry int64) error {
	item, err := attributevalue.MarshalMap(record{
		AccountEmail:       acct.Email,
		RequestID:          uuid.NewString(),
		Name:               acct.Name,
		OrganizationalUnit: acct.OrganizationalUnit,
		State:              statePending,
		TTL:                expiry,
	})
	if err != nil {
		return errors.Wrap(err, "marshal record")
	}
	_, err = h.dynamo.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(h.env.VendingTable),
		Item:      item,
	})
	return errors.Wrap(err, "put record")
}
