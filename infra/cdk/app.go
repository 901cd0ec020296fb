// Package cdk synthesizes the accelerator's stacks.
//
// One synthesis covers either the deployment pipeline or a single
// accelerator stage, selected through the ACCELERATOR_STAGE environment
// variable the toolkit project sets on its builds:
//
//   - unset: the pipeline stack, in the management account's home region
//   - a deployable stage name: that stage's stacks, one per account and
//     region pair in the stage's declared scope
//   - bootstrap or an unknown name: a construction-time error
//
// Stage stacks are driven by the six configuration documents. Inside
// toolkit builds the documents come from the extracted configuration
// artifact (CODEBUILD_SRC_DIR_Config); elsewhere the lza-config-directory
// context value points at them.
package cdk

import (
	"os"
	"slices"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/lzacdk/lzacdkpipeline"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
	"github.com/landingzonehq/lza/lzacfg"
	"github.com/landingzonehq/lza/lzastage"
)

// Environment variables the toolkit builds dispatch on.
const (
	// StageEnvVar selects the accelerator stage a synthesis covers.
	StageEnvVar = "ACCELERATOR_STAGE"
	// ConfigDirEnvVar points at the extracted configuration artifact inside
	// toolkit builds, overriding the context's configuration directory.
	ConfigDirEnvVar = "CODEBUILD_SRC_DIR_Config"
	// ManagementAccountEnvVar carries the management account id into builds
	// that run before the accounts document lists it.
	ManagementAccountEnvVar = "MANAGEMENT_ACCOUNT_ID"
)

// Setup synthesizes the accelerator into the app. Operator and programmer
// errors surface as panics, failing the synthesis with the cause.
func Setup(app awscdk.App) {
	cfg, err := lzacdkutil.NewConfig(app)
	if err != nil {
		panic(err)
	}
	lzacdkutil.StoreConfig(app, cfg)

	stageName := os.Getenv(StageEnvVar)
	if stageName == "" {
		stack := lzacdkutil.NewPipelineStack(app, cfg)
		lzacdkpipeline.New(stack, lzacdkpipeline.Props{})
		return
	}

	stage, err := lzastage.ParseStage(stageName)
	if err != nil {
		panic(err)
	}
	if !stage.Deployable() {
		panic(errors.Newf("stage %q does not synthesize stacks", stageName))
	}

	set := loadConfiguration(cfg)
	newStageStacks(app, cfg, set, stage)
}

// loadConfiguration reads and validates the six documents, then checks them
// against the install-time context so a stale configuration cannot deploy
// into regions the installation does not cover.
func loadConfiguration(cfg *lzacdkutil.Config) *lzacfg.Set {
	dir := cfg.ConfigDirectory
	if fromBuild := os.Getenv(ConfigDirEnvVar); fromBuild != "" {
		dir = fromBuild
	}

	set, err := lzacfg.Load(dir, map[string]string{
		"home-region": cfg.HomeRegion,
		"qualifier":   cfg.Qualifier,
		"partition":   cfg.Partition,
	})
	if err != nil {
		panic(err)
	}
	if err := set.Validate(); err != nil {
		panic(err)
	}

	if set.Global.HomeRegion != cfg.HomeRegion {
		panic(errors.Newf("configured home region %q does not match the installation's %q",
			set.Global.HomeRegion, cfg.HomeRegion))
	}
	for _, region := range set.Global.EnabledRegions {
		if !cfg.RegionEnabled(region) {
			panic(errors.Newf("configured region %q is not enabled for the installation", region))
		}
	}
	return set
}

// StageTarget is one account and region pair a stage stack deploys into.
type StageTarget struct {
	Account   lzacfg.Account
	AccountID string
	Region    string
}

// stageBuilder populates one stage stack for its target.
type stageBuilder func(stack awscdk.Stack, set *lzacfg.Set, target StageTarget)

var stageBuilders = map[lzastage.Stage]stageBuilder{
	lzastage.StagePrepare:             newPrepareStage,
	lzastage.StageAccounts:            newAccountsStage,
	lzastage.StageKey:                 newKeyStage,
	lzastage.StageLogging:             newLoggingStage,
	lzastage.StageOrganizations:       newOrganizationsStage,
	lzastage.StageSecurityAudit:       newSecurityAuditStage,
	lzastage.StageNetworkPrep:         newNetworkPrepStage,
	lzastage.StageSecurity:            newSecurityStage,
	lzastage.StageOperations:          newOperationsStage,
	lzastage.StageNetworkVpc:          newNetworkVpcStage,
	lzastage.StageSecurityResources:   newSecurityResourcesStage,
	lzastage.StageNetworkAssociations: newNetworkAssociationsStage,
	lzastage.StageCustomizations:      newCustomizationsStage,
	lzastage.StageFinalize:            newFinalizeStage,
}

func newStageStacks(app awscdk.App, cfg *lzacdkutil.Config, set *lzacfg.Set, stage lzastage.Stage) {
	build, ok := stageBuilders[stage]
	if !ok {
		panic(errors.Newf("stage %q has no stack builder", stage))
	}

	targets := stageTargets(cfg, set, stage)
	if len(targets) == 0 {
		panic(errors.Newf("stage %q resolves to no provisioned account and region pair", stage))
	}

	for _, target := range targets {
		stack := lzacdkutil.NewStageStack(app, cfg, lzacdkutil.StageStackProps{
			StageLabel:            stage.StackLabel(),
			AccountID:             target.AccountID,
			Region:                target.Region,
			TerminationProtection: set.Global.TerminationProtection,
		})
		build(stack, set, target)
	}
}

// stageTargets expands a stage's declared scope against the account
// inventory. Accounts without a provisioned id are skipped in the fleet
// scope: they join once vending completes and the accounts document lists
// their id.
func stageTargets(cfg *lzacdkutil.Config, set *lzacfg.Set, stage lzastage.Stage) []StageTarget {
	regions := []string{cfg.HomeRegion}
	if stage.Regions() == lzastage.AllRegions {
		regions = set.Global.EnabledRegions
	}

	var targets []StageTarget
	for _, acct := range scopeAccounts(cfg, set, stage) {
		id, err := resolveAccountID(set, acct.Name)
		if err != nil {
			if stage.Accounts() == lzastage.AllAccounts && !cfg.SingleAccountMode {
				continue
			}
			panic(errors.Wrapf(err, "stage %q cannot resolve its target account", stage))
		}
		for _, region := range regions {
			targets = append(targets, StageTarget{Account: acct, AccountID: id, Region: region})
		}
	}
	return targets
}

// scopeAccounts lists the accounts in a stage's scope. Single account mode
// collapses every scope onto the management account.
func scopeAccounts(cfg *lzacdkutil.Config, set *lzacfg.Set, stage lzastage.Stage) []lzacfg.Account {
	if cfg.SingleAccountMode {
		return []lzacfg.Account{set.Accounts.ManagementAccount()}
	}
	switch stage.Accounts() {
	case lzastage.ManagementAccount:
		return []lzacfg.Account{set.Accounts.ManagementAccount()}
	case lzastage.AuditAccount:
		return []lzacfg.Account{set.Accounts.AuditAccount()}
	default:
		return set.Accounts.AllAccounts()
	}
}

// resolveAccountID returns the provisioned id for an account. The
// management account may fall back to the build environment before the
// accounts document lists its id.
func resolveAccountID(set *lzacfg.Set, name string) (string, error) {
	id, err := set.Accounts.AccountID(name)
	if err == nil {
		return id, nil
	}
	if name == lzacfg.ManagementAccountName {
		if envID := os.Getenv(ManagementAccountEnvVar); envID != "" {
			return envID, nil
		}
	}
	return "", err
}

// targetsApply reports whether a configuration set with deployment targets
// covers the stage target's account and region.
func targetsApply(set *lzacfg.Set, targets lzacfg.DeploymentTargets, target StageTarget) bool {
	if targets.RegionExcluded(target.Region) {
		return false
	}
	return slices.Contains(set.TargetAccounts(targets), target.Account.Name)
}

// regionsApply reports whether an explicit region list covers the target's
// region. An empty list covers every region.
func regionsApply(regions []string, target StageTarget) bool {
	return len(regions) == 0 || slices.Contains(regions, target.Region)
}
