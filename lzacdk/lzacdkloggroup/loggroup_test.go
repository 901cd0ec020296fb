package lzacdkloggroup_test

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkloggroup"
)

func TestNew_CreatesLogGroup(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	lg := lzacdkloggroup.New(stack, "TestLogs", lzacdkloggroup.Props{
		Purpose: jsii.String("test logs"),
	})

	if lg.LogGroup() == nil {
		t.Error("LogGroup() should not be nil")
	}
}

func TestNew_CreatesOutput(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	lzacdkloggroup.New(stack, "HandlerLogs", lzacdkloggroup.Props{
		Purpose: jsii.String("account vending handler logs"),
	})

	tmpl := synthTemplate(t, app, "TestStack")

	outputs, ok := tmpl["Outputs"].(map[string]any)
	if !ok {
		t.Fatal("template should have Outputs")
	}

	found := false
	for _, val := range outputs {
		if extractDescription(val) == "CloudWatch Log Group for account vending handler logs" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("template should have output with expected description, got outputs: %v", outputs)
	}
}

func TestNew_RetentionFromConfiguration(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	lzacdkloggroup.New(stack, "AccelLogs", lzacdkloggroup.Props{
		Purpose:       jsii.String("accelerator logs"),
		RetentionDays: 3653,
	})

	tmpl := synthTemplate(t, app, "TestStack")

	resources, ok := tmpl["Resources"].(map[string]any)
	if !ok {
		t.Fatal("template should have Resources")
	}

	var logGroup map[string]any
	for _, val := range resources {
		if m, ok := val.(map[string]any); ok && m["Type"] == "AWS::Logs::LogGroup" {
			logGroup = m
			break
		}
	}
	if logGroup == nil {
		t.Fatal("template should have a log group resource")
	}

	props, _ := logGroup["Properties"].(map[string]any)
	if got, _ := props["RetentionInDays"].(float64); got != 3653 {
		t.Errorf("RetentionInDays = %v, want 3653", props["RetentionInDays"])
	}
	if got, _ := logGroup["DeletionPolicy"].(string); got != "Retain" {
		t.Errorf("DeletionPolicy = %q, want %q", got, "Retain")
	}
}

func TestNew_RejectsUnsupportedRetention(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unsupported retention period")
		}
	}()
	lzacdkloggroup.New(stack, "BadLogs", lzacdkloggroup.Props{
		Purpose:       jsii.String("bad logs"),
		RetentionDays: 42,
	})
}

func TestNew_MultipleLogGroups(t *testing.T) {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("TestStack"), nil)

	lg1 := lzacdkloggroup.New(stack, "FirstLogs", lzacdkloggroup.Props{
		Purpose: jsii.String("first purpose"),
	})
	lg2 := lzacdkloggroup.New(stack, "SecondLogs", lzacdkloggroup.Props{
		Purpose: jsii.String("second purpose"),
	})

	if lg1.LogGroup() == nil {
		t.Error("first LogGroup() should not be nil")
	}
	if lg2.LogGroup() == nil {
		t.Error("second LogGroup() should not be nil")
	}

	tmpl := synthTemplate(t, app, "TestStack")

	outputs, ok := tmpl["Outputs"].(map[string]any)
	if !ok {
		t.Fatal("template should have Outputs")
	}

	foundFirst := false
	foundSecond := false
	for _, val := range outputs {
		desc := extractDescription(val)
		if desc == "CloudWatch Log Group for first purpose" {
			foundFirst = true
		}
		if desc == "CloudWatch Log Group for second purpose" {
			foundSecond = true
		}
	}
	if !foundFirst {
		t.Error("template should have output for first purpose")
	}
	if !foundSecond {
		t.Error("template should have output for second purpose")
	}
}

func synthTemplate(t *testing.T, app awscdk.App, stackName string) map[string]any {
	t.Helper()

	template := app.Synth(nil).GetStackByName(jsii.String(stackName)).Template()

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

func extractDescription(val any) string {
	m, ok := val.(map[string]any)
	if !ok {
		return ""
	}
	desc, ok := m["Description"].(string)
	if !ok {
		return ""
	}
	return desc
}
