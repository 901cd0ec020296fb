package lzacfg

import "slices"

// DeploymentTargets selects the accounts a configuration item deploys to,
// either directly by account name or indirectly by organizational unit.
type DeploymentTargets struct {
	OrganizationalUnits []string `yaml:"organizationalUnits,omitempty" validate:"dive,required"`
	Accounts            []string `yaml:"accounts,omitempty" validate:"dive,required"`
	ExcludedRegions     []string `yaml:"excludedRegions,omitempty" validate:"dive,required"`
}

// TargetAccounts expands deployment targets into concrete account names,
// deduplicated in accounts-document order. Targeting the Root organizational
// unit selects every account.
func (s *Set) TargetAccounts(targets DeploymentTargets) []string {
	var names []string
	for _, acct := range s.Accounts.AllAccounts() {
		if !s.accountTargeted(acct, targets) {
			continue
		}
		if !slices.Contains(names, acct.Name) {
			names = append(names, acct.Name)
		}
	}
	return names
}

func (s *Set) accountTargeted(acct Account, targets DeploymentTargets) bool {
	if slices.Contains(targets.Accounts, acct.Name) {
		return true
	}
	if slices.Contains(targets.OrganizationalUnits, "Root") {
		return true
	}
	return slices.Contains(targets.OrganizationalUnits, acct.OrganizationalUnit)
}

// RegionExcluded reports whether the targets exclude the given region.
func (t DeploymentTargets) RegionExcluded(region string) bool {
	return slices.Contains(t.ExcludedRegions, region)
}
