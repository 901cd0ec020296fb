package lzastage

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Stage identifies one accelerator deployment stage. The zero value is
// StagePrepare; stages are statically defined and ordered.
type Stage int

const (
	StagePrepare Stage = iota
	StageAccounts
	StageBootstrap
	StageKey
	StageLogging
	StageOrganizations
	StageSecurityAudit
	StageNetworkPrep
	StageSecurity
	StageOperations
	StageNetworkVpc
	StageSecurityResources
	StageNetworkAssociations
	StageCustomizations
	StageFinalize
)

var stageNames = [...]string{
	StagePrepare:             "prepare",
	StageAccounts:            "accounts",
	StageBootstrap:           "bootstrap",
	StageKey:                 "key",
	StageLogging:             "logging",
	StageOrganizations:       "organizations",
	StageSecurityAudit:       "security-audit",
	StageNetworkPrep:         "network-prep",
	StageSecurity:            "security",
	StageOperations:          "operations",
	StageNetworkVpc:          "network-vpc",
	StageSecurityResources:   "security-resources",
	StageNetworkAssociations: "network-associations",
	StageCustomizations:      "customizations",
	StageFinalize:            "finalize",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ParseStage resolves a kebab-case stage name to its Stage.
func ParseStage(name string) (Stage, error) {
	for idx, candidate := range stageNames {
		if candidate == name {
			return Stage(idx), nil
		}
	}
	return 0, errors.Newf("unknown accelerator stage: %q", name)
}

// AccountScope describes which organization accounts a stage deploys into.
type AccountScope int

const (
	ManagementAccount AccountScope = iota
	AuditAccount
	AllAccounts
)

// RegionScope describes which regions a stage deploys into.
type RegionScope int

const (
	HomeRegion RegionScope = iota
	AllRegions
)

var stageScopes = [...]struct {
	accounts AccountScope
	regions  RegionScope
}{
	StagePrepare:             {ManagementAccount, HomeRegion},
	StageAccounts:            {ManagementAccount, HomeRegion},
	StageBootstrap:           {AllAccounts, AllRegions},
	StageKey:                 {AllAccounts, AllRegions},
	StageLogging:             {AllAccounts, AllRegions},
	StageOrganizations:       {ManagementAccount, AllRegions},
	StageSecurityAudit:       {AuditAccount, AllRegions},
	StageNetworkPrep:         {AllAccounts, AllRegions},
	StageSecurity:            {AllAccounts, AllRegions},
	StageOperations:          {AllAccounts, HomeRegion},
	StageNetworkVpc:          {AllAccounts, AllRegions},
	StageSecurityResources:   {AllAccounts, AllRegions},
	StageNetworkAssociations: {AllAccounts, AllRegions},
	StageCustomizations:      {AllAccounts, AllRegions},
	StageFinalize:            {ManagementAccount, HomeRegion},
}

// Accounts reports which accounts this stage's stacks target.
func (s Stage) Accounts() AccountScope {
	return stageScopes[s].accounts
}

// Regions reports which regions this stage's stacks target.
func (s Stage) Regions() RegionScope {
	return stageScopes[s].regions
}

// Deployable reports whether the stage synthesizes stacks of its own.
// Bootstrapping runs through the toolkit's bootstrap subcommand instead.
func (s Stage) Deployable() bool {
	return s != StageBootstrap
}

// StackLabel returns the PascalCase stack name component for the stage,
// e.g. "NetworkPrep" for network-prep.
func (s Stage) StackLabel() string {
	return stackLabels[s]
}

var stackLabels = [...]string{
	StagePrepare:             "Prepare",
	StageAccounts:            "Accounts",
	StageBootstrap:           "Bootstrap",
	StageKey:                 "Key",
	StageLogging:             "Logging",
	StageOrganizations:       "Organizations",
	StageSecurityAudit:       "SecurityAudit",
	StageNetworkPrep:         "NetworkPrep",
	StageSecurity:            "Security",
	StageOperations:          "Operations",
	StageNetworkVpc:          "NetworkVpc",
	StageSecurityResources:   "SecurityResources",
	StageNetworkAssociations: "NetworkAssociations",
	StageCustomizations:      "Customizations",
	StageFinalize:            "Finalize",
}

// AllStages lists every stage in canonical deployment order.
var AllStages = []Stage{
	StagePrepare, StageAccounts, StageBootstrap, StageKey, StageLogging,
	StageOrganizations, StageSecurityAudit, StageNetworkPrep, StageSecurity,
	StageOperations, StageNetworkVpc, StageSecurityResources,
	StageNetworkAssociations, StageCustomizations, StageFinalize,
}

// DeployableStages lists the stages that synthesize stacks, in order.
func DeployableStages() []Stage {
	out := make([]Stage, 0, len(AllStages)-1)
	for _, s := range AllStages {
		if s.Deployable() {
			out = append(out, s)
		}
	}
	return out
}
