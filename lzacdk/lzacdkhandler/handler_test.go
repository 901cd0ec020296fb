//nolint:paralleltest // jsii runtime doesn't support parallel tests
package lzacdkhandler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkhandler"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

// testEntry is a valid entry path pointing to an actual handler in the repo.
// Tests requiring CDK runtime must run from the module root.
var testEntry = "handlers/cmd/craccounts"

func init() {
	// Change to module root so CDK can find the entry path.
	// Find go.mod to locate module root.
	dir, _ := os.Getwd()
	for dir != "/" {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			_ = os.Chdir(dir)
			break
		}
		dir = filepath.Dir(dir)
	}
}

func handlerTestStack(app awscdk.App) awscdk.Stack {
	lzacdkutil.StoreConfig(app, &lzacdkutil.Config{
		Qualifier:            "accel",
		ResourcePrefix:       "LZA",
		Partition:            "aws",
		HomeRegion:           "us-east-1",
		EnabledRegions:       []string{"us-east-1"},
		SourceRepositoryName: "landing-zone-accelerator",
		SourceBranchName:     "main",
		ConfigRepositoryName: "lza-config",
		ConfigBranchName:     "main",
		ConfigDirectory:      "config",
	})
	return awscdk.NewStack(app, jsii.String("TestStack"), &awscdk.StackProps{
		Env: &awscdk.Environment{
			Region: jsii.String("us-east-1"),
		},
	})
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    string
		wantName string
		wantErr  bool
	}{
		{
			name:     "valid handler path",
			entry:    "handlers/cmd/craccounts",
			wantName: "craccounts",
		},
		{
			name:     "valid org admin handler",
			entry:    "handlers/cmd/crorgadmin",
			wantName: "crorgadmin",
		},
		{
			name:     "valid with leading path",
			entry:    "some/checkout/handlers/cmd/craccounts",
			wantName: "craccounts",
		},
		{
			name:    "missing cmd segment",
			entry:   "handlers/craccounts",
			wantErr: true,
		},
		{
			name:    "wrong component",
			entry:   "backend/cmd/craccounts",
			wantErr: true,
		},
		{
			name:    "empty entry",
			entry:   "",
			wantErr: true,
		},
		{
			name:    "empty handler name",
			entry:   "handlers/cmd/",
			wantErr: true,
		},
		{
			name:    "only cmd",
			entry:   "cmd/craccounts",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := lzacdkhandler.ParseEntry(tt.entry)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
		})
	}
}

func TestNew(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := handlerTestStack(app)

	h := lzacdkhandler.New(stack, lzacdkhandler.Props{
		Entry: jsii.String(testEntry),
	})

	if h.Name() != "Craccounts" {
		t.Errorf("Name() = %q, want %q", h.Name(), "Craccounts")
	}
	if h.Function() == nil {
		t.Error("Function() should not be nil")
	}
	if h.LogGroup() == nil {
		t.Error("LogGroup() should not be nil")
	}
	if h.ServiceToken() == nil {
		t.Error("ServiceToken() should not be nil")
	}
}

func TestNew_WithEnvironmentAndPolicy(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := handlerTestStack(app)

	h := lzacdkhandler.New(stack, lzacdkhandler.Props{
		Entry: jsii.String(testEntry),
		Environment: &map[string]*string{
			"TABLE_NAME": jsii.String("lza-new-org-accounts-table"),
		},
		InitialPolicy: &[]awsiam.PolicyStatement{
			awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
				Actions:   jsii.Strings("dynamodb:PutItem"),
				Resources: jsii.Strings("*"),
			}),
		},
	})

	if h.Function() == nil {
		t.Error("Function() should not be nil")
	}
}

func TestNew_InvalidEntry(t *testing.T) {
	defer jsii.Close()

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for invalid entry")
		}
	}()

	app := awscdk.NewApp(nil)
	stack := handlerTestStack(app)

	lzacdkhandler.New(stack, lzacdkhandler.Props{
		Entry: jsii.String("invalid/path"),
	})
}

func TestNewResource(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := handlerTestStack(app)

	h := lzacdkhandler.New(stack, lzacdkhandler.Props{
		Entry: jsii.String(testEntry),
	})

	resource := lzacdkhandler.NewResource(stack, "LoadAccounts", h, "Custom::LoadAccounts", &map[string]any{
		"tableName": "lza-new-org-accounts-table",
	})
	if resource == nil {
		t.Error("NewResource() should not be nil")
	}
}
