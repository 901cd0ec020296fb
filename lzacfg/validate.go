package lzacfg

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Validate checks struct rules on every document plus the cross-document
// references. All findings are collected and reported in one error.
func (s *Set) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	var findings []string
	findings = validateDocument(validate, GlobalConfigFile, s.Global, findings)
	findings = validateDocument(validate, AccountsConfigFile, s.Accounts, findings)
	findings = validateDocument(validate, IAMConfigFile, s.IAM, findings)
	findings = validateDocument(validate, NetworkConfigFile, s.Network, findings)
	findings = validateDocument(validate, OrganizationConfigFile, s.Organization, findings)
	findings = validateDocument(validate, SecurityConfigFile, s.Security, findings)

	// Cross-document rules only make sense once the individual documents
	// hold together.
	if len(findings) == 0 {
		findings = s.crossValidate(findings)
	}

	if len(findings) > 0 {
		return errors.Errorf("configuration validation errors:\n  - %s", strings.Join(findings, "\n  - "))
	}
	return nil
}

func validateDocument(validate *validator.Validate, file string, doc any, findings []string) []string {
	err := validate.Struct(doc)
	if err == nil {
		return findings
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			findings = append(findings, fmt.Sprintf("%s: %s", file, formatValidationError(e)))
		}
		return findings
	}
	return append(findings, fmt.Sprintf("%s: %v", file, err))
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Namespace())
	case "email":
		return fmt.Sprintf("%s must be a valid email address (got %q)", e.Namespace(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %q)", e.Namespace(), e.Param(), e.Value())
	case "len":
		return fmt.Sprintf("%s must have length %s (got %q)", e.Namespace(), e.Param(), e.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Namespace(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Namespace(), e.Param())
	case "cidrv4":
		return fmt.Sprintf("%s must be a valid IPv4 CIDR (got %q)", e.Namespace(), e.Value())
	default:
		return fmt.Sprintf("%s failed validation %q", e.Namespace(), e.Tag())
	}
}

func (s *Set) crossValidate(findings []string) []string {
	findings = s.checkGlobal(findings)
	findings = s.checkMandatoryAccounts(findings)
	findings = s.checkOrganizationalUnits(findings)
	findings = s.checkDelegatedAdmins(findings)
	findings = s.checkNetworkReferences(findings)
	findings = s.checkDeploymentTargets(findings)
	findings = s.checkAlarmLevels(findings)
	return findings
}

func (s *Set) checkGlobal(findings []string) []string {
	if !s.Global.RegionEnabled(s.Global.HomeRegion) {
		findings = append(findings, fmt.Sprintf(
			"home region %q is not part of enabledRegions", s.Global.HomeRegion))
	}
	if !s.Accounts.ContainsAccount(s.Global.Logging.Account) {
		findings = append(findings, fmt.Sprintf(
			"logging account %q is not declared in accounts configuration", s.Global.Logging.Account))
	}
	return findings
}

func (s *Set) checkMandatoryAccounts(findings []string) []string {
	for _, name := range []string{ManagementAccountName, LogArchiveAccountName, AuditAccountName} {
		found := false
		for _, acct := range s.Accounts.MandatoryAccounts {
			if acct.Name == name {
				found = true
				break
			}
		}
		if !found {
			findings = append(findings, fmt.Sprintf("mandatory account %q is missing", name))
		}
	}
	return findings
}

func (s *Set) checkOrganizationalUnits(findings []string) []string {
	if !s.Organization.Enable {
		return findings
	}
	for _, acct := range s.Accounts.AllAccounts() {
		if !s.Organization.ContainsOrganizationalUnit(acct.OrganizationalUnit) {
			findings = append(findings, fmt.Sprintf(
				"account %q references undeclared organizational unit %q",
				acct.Name, acct.OrganizationalUnit))
		}
	}
	return findings
}

func (s *Set) checkDelegatedAdmins(findings []string) []string {
	admin := s.Security.CentralSecurityServices.DelegatedAdminAccount
	if !s.Accounts.ContainsAccount(admin) {
		findings = append(findings, fmt.Sprintf(
			"security delegated admin account %q is not declared in accounts configuration", admin))
	}
	if cns := s.Network.CentralNetworkServices; cns != nil {
		if !s.Accounts.ContainsAccount(cns.DelegatedAdminAccount) {
			findings = append(findings, fmt.Sprintf(
				"network delegated admin account %q is not declared in accounts configuration",
				cns.DelegatedAdminAccount))
		}
	}
	return findings
}

func (s *Set) checkNetworkReferences(findings []string) []string {
	for _, tgw := range s.Network.TransitGateways {
		if !s.Accounts.ContainsAccount(tgw.Account) {
			findings = append(findings, fmt.Sprintf(
				"transit gateway %q references undeclared account %q", tgw.Name, tgw.Account))
		}
		if !s.Global.RegionEnabled(tgw.Region) {
			findings = append(findings, fmt.Sprintf(
				"transit gateway %q region %q is not enabled", tgw.Name, tgw.Region))
		}
	}
	for _, vpc := range s.Network.Vpcs {
		if !s.Accounts.ContainsAccount(vpc.Account) {
			findings = append(findings, fmt.Sprintf(
				"vpc %q references undeclared account %q", vpc.Name, vpc.Account))
		}
		if !s.Global.RegionEnabled(vpc.Region) {
			findings = append(findings, fmt.Sprintf(
				"vpc %q region %q is not enabled", vpc.Name, vpc.Region))
		}
		subnetNames := make([]string, 0, len(vpc.Subnets))
		for _, subnet := range vpc.Subnets {
			subnetNames = append(subnetNames, subnet.Name)
		}
		for _, att := range vpc.TransitGatewayAttachments {
			if _, ok := s.Network.TransitGateway(att.TransitGateway.Name); !ok {
				findings = append(findings, fmt.Sprintf(
					"vpc %q attachment %q references undeclared transit gateway %q",
					vpc.Name, att.Name, att.TransitGateway.Name))
			}
			for _, subnet := range att.Subnets {
				if !slices.Contains(subnetNames, subnet) {
					findings = append(findings, fmt.Sprintf(
						"vpc %q attachment %q references undeclared subnet %q",
						vpc.Name, att.Name, subnet))
				}
			}
		}
	}
	return findings
}

func (s *Set) checkDeploymentTargets(findings []string) []string {
	check := func(owner string, targets DeploymentTargets) {
		for _, name := range targets.Accounts {
			if !s.Accounts.ContainsAccount(name) {
				findings = append(findings, fmt.Sprintf(
					"%s targets undeclared account %q", owner, name))
			}
		}
		if !s.Organization.Enable {
			return
		}
		for _, ou := range targets.OrganizationalUnits {
			if !s.Organization.ContainsOrganizationalUnit(ou) {
				findings = append(findings, fmt.Sprintf(
					"%s targets undeclared organizational unit %q", owner, ou))
			}
		}
	}

	for idx, set := range s.IAM.PolicySets {
		check(fmt.Sprintf("iam policy set %d", idx), set.DeploymentTargets)
	}
	for idx, set := range s.IAM.RoleSets {
		check(fmt.Sprintf("iam role set %d", idx), set.DeploymentTargets)
	}
	for idx, set := range s.IAM.GroupSets {
		check(fmt.Sprintf("iam group set %d", idx), set.DeploymentTargets)
	}
	for idx, set := range s.Security.CloudWatch.MetricSets {
		check(fmt.Sprintf("cloudwatch metric set %d", idx), set.DeploymentTargets)
	}
	for idx, set := range s.Security.CloudWatch.AlarmSets {
		check(fmt.Sprintf("cloudwatch alarm set %d", idx), set.DeploymentTargets)
	}
	for _, scp := range s.Organization.ServiceControlPolicies {
		check(fmt.Sprintf("service control policy %q", scp.Name), scp.DeploymentTargets)
	}
	return findings
}

func (s *Set) checkAlarmLevels(findings []string) []string {
	levels := s.Security.CentralSecurityServices.SubscriptionLevels()
	for _, set := range s.Security.CloudWatch.AlarmSets {
		for _, alarm := range set.Alarms {
			if !slices.Contains(levels, alarm.SnsAlertLevel) {
				findings = append(findings, fmt.Sprintf(
					"alarm %q alert level %q has no sns subscription",
					alarm.AlarmName, alarm.SnsAlertLevel))
			}
		}
	}
	return findings
}
