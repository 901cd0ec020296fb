package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/guardduty"
	"github.com/aws/aws-sdk-go-v2/service/macie2"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/aws/aws-sdk-go-v2/service/securityhub"
	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/handlers/internal/crruntime"
)

// servicePrincipals maps the configuration's service keys to the principals
// AWS Organizations delegates to.
var servicePrincipals = map[string]string{
	"guardduty":   "guardduty.amazonaws.com",
	"macie":       "macie.amazonaws.com",
	"securityhub": "securityhub.amazonaws.com",
}

type orgsAPI interface {
	RegisterDelegatedAdministrator(ctx context.Context, params *organizations.RegisterDelegatedAdministratorInput, optFns ...func(*organizations.Options)) (*organizations.RegisterDelegatedAdministratorOutput, error)
	DeregisterDelegatedAdministrator(ctx context.Context, params *organizations.DeregisterDelegatedAdministratorInput, optFns ...func(*organizations.Options)) (*organizations.DeregisterDelegatedAdministratorOutput, error)
}

type guarddutyAPI interface {
	ListOrganizationAdminAccounts(ctx context.Context, params *guardduty.ListOrganizationAdminAccountsInput, optFns ...func(*guardduty.Options)) (*guardduty.ListOrganizationAdminAccountsOutput, error)
	EnableOrganizationAdminAccount(ctx context.Context, params *guardduty.EnableOrganizationAdminAccountInput, optFns ...func(*guardduty.Options)) (*guardduty.EnableOrganizationAdminAccountOutput, error)
	DisableOrganizationAdminAccount(ctx context.Context, params *guardduty.DisableOrganizationAdminAccountInput, optFns ...func(*guardduty.Options)) (*guardduty.DisableOrganizationAdminAccountOutput, error)
}

type macieAPI interface {
	ListOrganizationAdminAccounts(ctx context.Context, params *macie2.ListOrganizationAdminAccountsInput, optFns ...func(*macie2.Options)) (*macie2.ListOrganizationAdminAccountsOutput, error)
	EnableOrganizationAdminAccount(ctx context.Context, params *macie2.EnableOrganizationAdminAccountInput, optFns ...func(*macie2.Options)) (*macie2.EnableOrganizationAdminAccountOutput, error)
	DisableOrganizationAdminAccount(ctx context.Context, params *macie2.DisableOrganizationAdminAccountInput, optFns ...func(*macie2.Options)) (*macie2.DisableOrganizationAdminAccountOutput, error)
}

type securityhubAPI interface {
	ListOrganizationAdminAccounts(ctx context.Context, params *securityhub.ListOrganizationAdminAccountsInput, optFns ...func(*securityhub.Options)) (*securityhub.ListOrganizationAdminAccountsOutput, error)
	EnableOrganizationAdminAccount(ctx context.Context, params *securityhub.EnableOrganizationAdminAccountInput, optFns ...func(*securityhub.Options)) (*securityhub.EnableOrganizationAdminAccountOutput, error)
	DisableOrganizationAdminAccount(ctx context.Context, params *securityhub.DisableOrganizationAdminAccountInput, optFns ...func(*securityhub.Options)) (*securityhub.DisableOrganizationAdminAccountOutput, error)
}

// properties are the Custom::DelegatedAdmin resource properties.
type properties struct {
	Service        string `json:"Service"`
	AdminAccountID string `json:"AdminAccountId"`
}

type handler struct {
	orgs      orgsAPI
	guardduty guarddutyAPI
	macie     macieAPI
	hub       securityhubAPI
}

func newHandler(orgs orgsAPI, gd guarddutyAPI, macie macieAPI, hub securityhubAPI) *handler {
	return &handler{orgs: orgs, guardduty: gd, macie: macie, hub: hub}
}

func (h *handler) Handle(ctx context.Context, event cfn.Event) (string, map[string]any, error) {
	props, err := parseProperties(event.ResourceProperties)
	if err != nil {
		return event.PhysicalResourceID, nil, err
	}
	// One stable id per service. Changing the service replaces the
	// resource, so CloudFormation deletes the old delegation afterwards.
	physicalID := props.Service + "-delegated-admin"

	switch event.RequestType {
	case cfn.RequestDelete:
		err = h.deregister(ctx, props)
	default:
		err = h.register(ctx, props)
	}
	if err != nil {
		return physicalID, nil, err
	}
	return physicalID, map[string]any{"AdminAccountId": props.AdminAccountID}, nil
}

func parseProperties(raw map[string]any) (properties, error) {
	var props properties
	encoded, err := json.Marshal(raw)
	if err != nil {
		return props, errors.Wrap(err, "encode resource properties")
	}
	if err := json.Unmarshal(encoded, &props); err != nil {
		return props, errors.Wrap(err, "decode resource properties")
	}
	if props.AdminAccountID == "" {
		return props, errors.New("resource properties miss AdminAccountId")
	}
	if _, ok := servicePrincipals[props.Service]; !ok {
		return props, errors.Newf("unsupported service %q", props.Service)
	}
	return props, nil
}

// register makes the admin account the service's delegated administrator:
// first with AWS Organizations, then with the service itself.
func (h *handler) register(ctx context.Context, props properties) error {
	_, err := h.orgs.RegisterDelegatedAdministrator(ctx, &organizations.RegisterDelegatedAdministratorInput{
		AccountId:        aws.String(props.AdminAccountID),
		ServicePrincipal: aws.String(servicePrincipals[props.Service]),
	})
	var registered *orgtypes.AccountAlreadyRegisteredException
	if err != nil && !errors.As(err, &registered) {
		return errors.Wrap(err, "register delegated administrator")
	}
	if registered != nil {
		crruntime.Log(ctx).Info("delegated administrator already registered")
	}
	return h.enableAdmin(ctx, props)
}

// enableAdmin turns on the service's organization admin unless the account
// already holds it, which every run after the first finds.
func (h *handler) enableAdmin(ctx context.Context, props properties) error {
	admin := props.AdminAccountID
	switch props.Service {
	case "guardduty":
		current, err := h.guardduty.ListOrganizationAdminAccounts(ctx, &guardduty.ListOrganizationAdminAccountsInput{})
		if err != nil {
			return errors.Wrap(err, "list guardduty admin accounts")
		}
		for _, acct := range current.AdminAccounts {
			if aws.ToString(acct.AdminAccountId) == admin {
				return nil
			}
		}
		_, err = h.guardduty.EnableOrganizationAdminAccount(ctx, &guardduty.EnableOrganizationAdminAccountInput{
			AdminAccountId: aws.String(admin),
		})
		return errors.Wrap(err, "enable guardduty organization admin")

	case "macie":
		current, err := h.macie.ListOrganizationAdminAccounts(ctx, &macie2.ListOrganizationAdminAccountsInput{})
		if err != nil {
			return errors.Wrap(err, "list macie admin accounts")
		}
		for _, acct := range current.AdminAccounts {
			if aws.ToString(acct.AccountId) == admin {
				return nil
			}
		}
		_, err = h.macie.EnableOrganizationAdminAccount(ctx, &macie2.EnableOrganizationAdminAccountInput{
			AdminAccountId: aws.String(admin),
		})
		return errors.Wrap(err, "enable macie organization admin")

	case "securityhub":
		current, err := h.hub.ListOrganizationAdminAccounts(ctx, &securityhub.ListOrganizationAdminAccountsInput{})
		if err != nil {
			return errors.Wrap(err, "list security hub admin accounts")
		}
		for _, acct := range current.AdminAccounts {
			if aws.ToString(acct.AccountId) == admin {
				return nil
			}
		}
		_, err = h.hub.EnableOrganizationAdminAccount(ctx, &securityhub.EnableOrganizationAdminAccountInput{
			AdminAccountId: aws.String(admin),
		})
		return errors.Wrap(err, "enable security hub organization admin")
	}
	return nil
}

// deregister reverses register. The service-level disable runs first so the
// Organizations deregistration is the final word.
func (h *handler) deregister(ctx context.Context, props properties) error {
	if err := h.disableAdmin(ctx, props); err != nil {
		return err
	}

	_, err := h.orgs.DeregisterDelegatedAdministrator(ctx, &organizations.DeregisterDelegatedAdministratorInput{
		AccountId:        aws.String(props.AdminAccountID),
		ServicePrincipal: aws.String(servicePrincipals[props.Service]),
	})
	var missing *orgtypes.AccountNotRegisteredException
	if err != nil && !errors.As(err, &missing) {
		return errors.Wrap(err, "deregister delegated administrator")
	}
	if missing != nil {
		crruntime.Log(ctx).Info("delegated administrator already deregistered")
	}
	return nil
}

func (h *handler) disableAdmin(ctx context.Context, props properties) error {
	admin := aws.String(props.AdminAccountID)
	var err error
	switch props.Service {
	case "guardduty":
		_, err = h.guardduty.DisableOrganizationAdminAccount(ctx, &guardduty.DisableOrganizationAdminAccountInput{AdminAccountId: admin})
	case "macie":
		_, err = h.macie.DisableOrganizationAdminAccount(ctx, &macie2.DisableOrganizationAdminAccountInput{AdminAccountId: admin})
	case "securityhub":
		_, err = h.hub.DisableOrganizationAdminAccount(ctx, &securityhub.DisableOrganizationAdminAccountInput{AdminAccountId: admin})
	}
	return errors.Wrapf(err, "disable %s organization admin", props.Service)
}
