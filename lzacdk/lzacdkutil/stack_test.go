package lzacdkutil_test

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

func TestPipelineStackName(t *testing.T) {
	got := lzacdkutil.PipelineStackName("LZA")
	if got != "LZA-PipelineStack" {
		t.Errorf("PipelineStackName() = %q, want %q", got, "LZA-PipelineStack")
	}
}

func TestStageStackName(t *testing.T) {
	got := lzacdkutil.StageStackName("LZA", "NetworkPrep", "111111111111", "us-east-1")
	want := "LZA-NetworkPrepStack-111111111111-us-east-1"
	if got != want {
		t.Errorf("StageStackName() = %q, want %q", got, want)
	}
}

func TestNewPipelineStack(t *testing.T) {
	defer jsii.Close()
	t.Setenv("MANAGEMENT_ACCOUNT_ID", "111111111111")

	app := awscdk.NewApp(nil)
	cfg := namingTestConfig()
	lzacdkutil.StoreConfig(app, cfg)

	stack := lzacdkutil.NewPipelineStack(app, cfg)

	if got := *stack.StackName(); got != "LZA-PipelineStack" {
		t.Errorf("StackName() = %q, want %q", got, "LZA-PipelineStack")
	}

	artifact := app.Synth(nil).GetStackByName(jsii.String("LZA-PipelineStack"))
	if got := *artifact.Environment().Account; got != "111111111111" {
		t.Errorf("environment account = %q, want %q", got, "111111111111")
	}
	if got := *artifact.Environment().Region; got != "us-east-1" {
		t.Errorf("environment region = %q, want %q", got, "us-east-1")
	}

	tmpl := templateOf(t, artifact.Template())
	desc, _ := tmpl["Description"].(string)
	if desc != "LZA deployment pipeline (region: us-east-1)" {
		t.Errorf("Description = %q", desc)
	}
	assertBootstrapQualifier(t, tmpl, "accel")
}

func TestNewStageStack(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	cfg := namingTestConfig()
	lzacdkutil.StoreConfig(app, cfg)

	stack := lzacdkutil.NewStageStack(app, cfg, lzacdkutil.StageStackProps{
		StageLabel:            "Logging",
		AccountID:             "222222222222",
		Region:                "us-east-1",
		TerminationProtection: true,
	})

	want := "LZA-LoggingStack-222222222222-us-east-1"
	if got := *stack.StackName(); got != want {
		t.Errorf("StackName() = %q, want %q", got, want)
	}

	artifact := app.Synth(nil).GetStackByName(jsii.String(want))
	if got := *artifact.Environment().Account; got != "222222222222" {
		t.Errorf("environment account = %q, want %q", got, "222222222222")
	}
	if tp := artifact.TerminationProtection(); tp == nil || !*tp {
		t.Error("stage stack should have termination protection enabled")
	}

	tmpl := templateOf(t, artifact.Template())
	desc, _ := tmpl["Description"].(string)
	if desc != "LZA Logging stage (account: 222222222222, region: us-east-1)" {
		t.Errorf("Description = %q", desc)
	}
	assertBootstrapQualifier(t, tmpl, "accel")
}

func TestNewStageStack_RequiresStageLabel(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	cfg := namingTestConfig()

	defer func() {
		if recover() == nil {
			t.Error("expected panic without a stage label")
		}
	}()
	lzacdkutil.NewStageStack(app, cfg, lzacdkutil.StageStackProps{
		AccountID: "222222222222",
		Region:    "us-east-1",
	})
}

func TestNewStageStack_RequiresRegion(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	cfg := namingTestConfig()

	defer func() {
		if recover() == nil {
			t.Error("expected panic without a region")
		}
	}()
	lzacdkutil.NewStageStack(app, cfg, lzacdkutil.StageStackProps{
		StageLabel: "Logging",
		AccountID:  "222222222222",
	})
}

func templateOf(t *testing.T, template any) map[string]any {
	t.Helper()

	templateJSON, err := json.Marshal(template)
	if err != nil {
		t.Fatalf("failed to marshal template: %v", err)
	}

	var tmpl map[string]any
	if err := json.Unmarshal(templateJSON, &tmpl); err != nil {
		t.Fatalf("failed to unmarshal template: %v", err)
	}
	return tmpl
}

func assertBootstrapQualifier(t *testing.T, tmpl map[string]any, qualifier string) {
	t.Helper()

	params, ok := tmpl["Parameters"].(map[string]any)
	if !ok {
		t.Fatal("template should have Parameters")
	}
	bootstrap, ok := params["BootstrapVersion"].(map[string]any)
	if !ok {
		t.Fatal("template should have a BootstrapVersion parameter")
	}
	want := "/cdk-bootstrap/" + qualifier + "/version"
	if got, _ := bootstrap["Default"].(string); got != want {
		t.Errorf("BootstrapVersion default = %q, want %q", got, want)
	}
}
