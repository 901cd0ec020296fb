package lzacfg

// OrganizationConfig is the organization structure document.
type OrganizationConfig struct {
	Enable                 bool                   `yaml:"enable"`
	OrganizationalUnits    []OrganizationalUnit   `yaml:"organizationalUnits" validate:"dive"`
	ServiceControlPolicies []ServiceControlPolicy `yaml:"serviceControlPolicies" validate:"dive"`
	QuarantineNewAccounts  *QuarantineNewAccounts `yaml:"quarantineNewAccounts,omitempty"`
}

// OrganizationalUnit declares one organizational unit by name.
type OrganizationalUnit struct {
	Name string `yaml:"name" validate:"required"`
}

// ServiceControlPolicy declares one SCP and its deployment targets.
type ServiceControlPolicy struct {
	Name              string            `yaml:"name" validate:"required"`
	Description       string            `yaml:"description"`
	Policy            string            `yaml:"policy" validate:"required"`
	Type              string            `yaml:"type" validate:"required,oneof=awsManaged customerManaged"`
	DeploymentTargets DeploymentTargets `yaml:"deploymentTargets"`
}

// QuarantineNewAccounts attaches a quarantine SCP to newly created accounts
// until the accelerator has finished provisioning them.
type QuarantineNewAccounts struct {
	Enable        bool   `yaml:"enable"`
	ScpPolicyName string `yaml:"scpPolicyName"`
}

// ContainsOrganizationalUnit reports whether the unit is declared. The Root
// unit always exists.
func (c *OrganizationConfig) ContainsOrganizationalUnit(name string) bool {
	if name == "Root" {
		return true
	}
	for _, ou := range c.OrganizationalUnits {
		if ou.Name == name {
			return true
		}
	}
	return false
}
