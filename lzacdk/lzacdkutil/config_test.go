//nolint:paralleltest // jsii runtime doesn't support parallel tests
package lzacdkutil_test

import (
	"strings"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

// validContext returns a complete accelerator context for tests. Callers
// mutate or delete keys to provoke failures.
func validContext() map[string]any {
	return map[string]any{
		"lza-qualifier":              "accel",
		"lza-resource-prefix":        "LZA",
		"lza-partition":              "aws",
		"lza-home-region":            "us-east-1",
		"lza-enabled-regions":        []any{"us-east-1", "us-west-2"},
		"lza-source-repository-name": "landing-zone-accelerator",
		"lza-source-branch-name":     "main",
		"lza-config-repository-name": "lza-config",
		"lza-config-branch-name":     "main",
		"lza-config-directory":       "config",
		"lza-enable-approval-stage":  true,
		"lza-approval-notify-emails": []any{"approvers@example.com"},
		"lza-notify-emails":          []any{"pipeline@example.com"},
	}
}

func newTestConfig(t *testing.T, context map[string]any) (awscdk.App, *lzacdkutil.Config) {
	t.Helper()
	app := awscdk.NewApp(&awscdk.AppProps{Context: &context})
	cfg, err := lzacdkutil.NewConfig(app)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lzacdkutil.StoreConfig(app, cfg)
	return app, cfg
}

func TestNewConfig(t *testing.T) {
	defer jsii.Close()

	tests := []struct {
		name        string
		mutate      func(ctx map[string]any)
		wantErr     bool
		errContains []string
	}{
		{
			name:   "valid config",
			mutate: func(ctx map[string]any) {},
		},
		{
			name: "missing qualifier",
			mutate: func(ctx map[string]any) {
				delete(ctx, "lza-qualifier")
			},
			wantErr:     true,
			errContains: []string{"lza-qualifier", "is not set"},
		},
		{
			name: "qualifier too long",
			mutate: func(ctx map[string]any) {
				ctx["lza-qualifier"] = "thisqualifieristoolong"
			},
			wantErr:     true,
			errContains: []string{"Qualifier", "exceeds maximum length"},
		},
		{
			name: "unknown partition",
			mutate: func(ctx map[string]any) {
				ctx["lza-partition"] = "aws-moon"
			},
			wantErr:     true,
			errContains: []string{"unknown partition"},
		},
		{
			name: "unknown home region",
			mutate: func(ctx map[string]any) {
				ctx["lza-home-region"] = "unknown-region-1"
			},
			wantErr:     true,
			errContains: []string{"unknown home region"},
		},
		{
			name: "home region not enabled",
			mutate: func(ctx map[string]any) {
				ctx["lza-home-region"] = "eu-west-1"
			},
			wantErr:     true,
			errContains: []string{"eu-west-1", "lza-enabled-regions"},
		},
		{
			name: "region outside partition",
			mutate: func(ctx map[string]any) {
				ctx["lza-enabled-regions"] = []any{"us-east-1", "us-gov-west-1"}
			},
			wantErr:     true,
			errContains: []string{"us-gov-west-1", "aws-us-gov"},
		},
		{
			name: "invalid approval email",
			mutate: func(ctx map[string]any) {
				ctx["lza-approval-notify-emails"] = []any{"nope"}
			},
			wantErr:     true,
			errContains: []string{"ApprovalNotifyEmails", "email"},
		},
		{
			name: "wrong type for enabled regions",
			mutate: func(ctx map[string]any) {
				ctx["lza-enabled-regions"] = "us-east-1"
			},
			wantErr:     true,
			errContains: []string{"lza-enabled-regions", "must be an array"},
		},
		{
			name: "multiple errors collected",
			mutate: func(ctx map[string]any) {
				delete(ctx, "lza-qualifier")
				delete(ctx, "lza-source-repository-name")
			},
			wantErr:     true,
			errContains: []string{"lza-qualifier", "lza-source-repository-name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			context := validContext()
			tt.mutate(context)
			app := awscdk.NewApp(&awscdk.AppProps{Context: &context})

			cfg, err := lzacdkutil.NewConfig(app)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error but got nil")
				}
				for _, contains := range tt.errContains {
					if !strings.Contains(err.Error(), contains) {
						t.Errorf("error %q should contain %q", err.Error(), contains)
					}
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Qualifier != "accel" {
				t.Errorf("Qualifier = %q, want %q", cfg.Qualifier, "accel")
			}
			if !cfg.EnableApprovalStage {
				t.Error("EnableApprovalStage should be true")
			}
			if cfg.SingleAccountMode {
				t.Error("SingleAccountMode should default to false")
			}
		})
	}
}

func TestConfig_RegionEnabled(t *testing.T) {
	defer jsii.Close()

	_, cfg := newTestConfig(t, validContext())
	if !cfg.RegionEnabled("us-west-2") {
		t.Error("us-west-2 should be enabled")
	}
	if cfg.RegionEnabled("eu-west-1") {
		t.Error("eu-west-1 should not be enabled")
	}
}

func TestConfig_SupportsPipelineNotifications(t *testing.T) {
	defer jsii.Close()

	_, cfg := newTestConfig(t, validContext())
	if !cfg.SupportsPipelineNotifications() {
		t.Error("commercial partition should support pipeline notifications")
	}

	govContext := validContext()
	govContext["lza-partition"] = "aws-us-gov"
	govContext["lza-home-region"] = "us-gov-west-1"
	govContext["lza-enabled-regions"] = []any{"us-gov-west-1"}
	_, govCfg := newTestConfig(t, govContext)
	if govCfg.SupportsPipelineNotifications() {
		t.Error("govcloud partition should not support pipeline notifications")
	}
}

func TestConfigFromScope(t *testing.T) {
	defer jsii.Close()

	app, cfg := newTestConfig(t, validContext())
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	got := lzacdkutil.ConfigFromScope(stack)
	if got != cfg {
		t.Error("ConfigFromScope should return the stored config")
	}
	if lzacdkutil.Qualifier(stack) != "accel" {
		t.Errorf("Qualifier = %q, want %q", lzacdkutil.Qualifier(stack), "accel")
	}
	if lzacdkutil.ResourcePrefix(stack) != "LZA" {
		t.Errorf("ResourcePrefix = %q", lzacdkutil.ResourcePrefix(stack))
	}
	if lzacdkutil.Partition(stack) != "aws" {
		t.Errorf("Partition = %q", lzacdkutil.Partition(stack))
	}
	if lzacdkutil.HomeRegion(stack) != "us-east-1" {
		t.Errorf("HomeRegion = %q", lzacdkutil.HomeRegion(stack))
	}
	if len(lzacdkutil.EnabledRegions(stack)) != 2 {
		t.Errorf("EnabledRegions = %v", lzacdkutil.EnabledRegions(stack))
	}
	if lzacdkutil.SingleAccountMode(stack) {
		t.Error("SingleAccountMode should be false")
	}
}

func TestConfigFromScope_PanicsWhenMissing(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	defer func() {
		if recover() == nil {
			t.Error("expected panic when Config was never stored")
		}
	}()
	lzacdkutil.ConfigFromScope(stack)
}
