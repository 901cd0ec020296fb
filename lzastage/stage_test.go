package lzastage_test

import (
	"strings"
	"testing"

	"github.com/landingzonehq/lza/lzastage"
)

func TestParseStage_RoundTrip(t *testing.T) {
	t.Parallel()
	for _, stage := range lzastage.AllStages {
		got, err := lzastage.ParseStage(stage.String())
		if err != nil {
			t.Fatalf("%s: %v", stage, err)
		}
		if got != stage {
			t.Errorf("got %v, want %v", got, stage)
		}
	}
}

func TestParseStage_Unknown(t *testing.T) {
	t.Parallel()
	_, err := lzastage.ParseStage("not-a-stage")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "not-a-stage") {
		t.Errorf("error should mention the name, got: %v", err)
	}
}

func TestStage_Order(t *testing.T) {
	t.Parallel()
	want := []string{
		"prepare", "accounts", "bootstrap", "key", "logging",
		"organizations", "security-audit", "network-prep", "security",
		"operations", "network-vpc", "security-resources",
		"network-associations", "customizations", "finalize",
	}
	if len(lzastage.AllStages) != len(want) {
		t.Fatalf("got %d stages, want %d", len(lzastage.AllStages), len(want))
	}
	for idx, stage := range lzastage.AllStages {
		if stage.String() != want[idx] {
			t.Errorf("stage %d: got %q, want %q", idx, stage, want[idx])
		}
	}
}

func TestStage_Deployable(t *testing.T) {
	t.Parallel()
	if lzastage.StageBootstrap.Deployable() {
		t.Error("bootstrap must not be deployable")
	}
	for _, stage := range lzastage.DeployableStages() {
		if stage == lzastage.StageBootstrap {
			t.Error("DeployableStages includes bootstrap")
		}
	}
	if got := len(lzastage.DeployableStages()); got != len(lzastage.AllStages)-1 {
		t.Errorf("got %d deployable stages, want %d", got, len(lzastage.AllStages)-1)
	}
}

func TestStage_Scopes(t *testing.T) {
	t.Parallel()
	for _, tt := range []struct {
		stage    lzastage.Stage
		accounts lzastage.AccountScope
		regions  lzastage.RegionScope
	}{
		{lzastage.StagePrepare, lzastage.ManagementAccount, lzastage.HomeRegion},
		{lzastage.StageAccounts, lzastage.ManagementAccount, lzastage.HomeRegion},
		{lzastage.StageOrganizations, lzastage.ManagementAccount, lzastage.AllRegions},
		{lzastage.StageSecurityAudit, lzastage.AuditAccount, lzastage.AllRegions},
		{lzastage.StageOperations, lzastage.AllAccounts, lzastage.HomeRegion},
		{lzastage.StageLogging, lzastage.AllAccounts, lzastage.AllRegions},
		{lzastage.StageNetworkVpc, lzastage.AllAccounts, lzastage.AllRegions},
		{lzastage.StageFinalize, lzastage.ManagementAccount, lzastage.HomeRegion},
	} {
		if got := tt.stage.Accounts(); got != tt.accounts {
			t.Errorf("%s accounts: got %v, want %v", tt.stage, got, tt.accounts)
		}
		if got := tt.stage.Regions(); got != tt.regions {
			t.Errorf("%s regions: got %v, want %v", tt.stage, got, tt.regions)
		}
	}
}

func TestStage_StackLabel(t *testing.T) {
	t.Parallel()
	for _, tt := range []struct {
		stage lzastage.Stage
		want  string
	}{
		{lzastage.StageNetworkPrep, "NetworkPrep"},
		{lzastage.StageSecurityAudit, "SecurityAudit"},
		{lzastage.StageNetworkAssociations, "NetworkAssociations"},
		{lzastage.StagePrepare, "Prepare"},
	} {
		if got := tt.stage.StackLabel(); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.stage, got, tt.want)
		}
	}
}
