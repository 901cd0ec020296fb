//nolint:paralleltest // jsii runtime doesn't support parallel tests
package lzacdkpipeline_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/landingzonehq/lza/lzacdk/lzacdkpipeline"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

func pipelineContext(t *testing.T, overrides map[string]any) map[string]any {
	t.Helper()

	dir := t.TempDir()
	seed := []byte("homeRegion: us-east-1\n")
	if err := os.WriteFile(filepath.Join(dir, "global-config.yaml"), seed, 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := map[string]any{
		"lza-qualifier":              "accel",
		"lza-resource-prefix":        "LZA",
		"lza-partition":              "aws",
		"lza-home-region":            "us-east-1",
		"lza-enabled-regions":        []any{"us-east-1"},
		"lza-source-repository-name": "lza-source",
		"lza-source-branch-name":     "main",
		"lza-config-repository-name": "lza-config",
		"lza-config-branch-name":     "main",
		"lza-config-directory":       dir,
		"lza-notify-emails":          []any{"ops@example.com"},
	}
	for k, v := range overrides {
		ctx[k] = v
	}
	return ctx
}

func synthPipeline(t *testing.T, ctx map[string]any) map[string]any {
	t.Helper()

	app := awscdk.NewApp(&awscdk.AppProps{Context: &ctx})
	cfg, err := lzacdkutil.NewConfig(app)
	if err != nil {
		t.Fatal(err)
	}
	lzacdkutil.StoreConfig(app, cfg)
	stack := lzacdkutil.NewPipelineStack(app, cfg)
	lzacdkpipeline.New(stack, lzacdkpipeline.Props{})

	template := app.Synth(nil).GetStackByName(jsii.String("LZA-PipelineStack")).Template()
	raw, err := json.Marshal(template)
	if err != nil {
		t.Fatal(err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatal(err)
	}
	return parsed
}

func resourcesOfType(template map[string]any, resourceType string) []map[string]any {
	resources, _ := template["Resources"].(map[string]any)
	var found []map[string]any
	for _, res := range resources {
		resource, ok := res.(map[string]any)
		if !ok {
			continue
		}
		if resource["Type"] == resourceType {
			found = append(found, resource)
		}
	}
	return found
}

func pipelineStages(t *testing.T, template map[string]any) []map[string]any {
	t.Helper()

	pipelines := resourcesOfType(template, "AWS::CodePipeline::Pipeline")
	if len(pipelines) != 1 {
		t.Fatalf("expected exactly one pipeline, got %d", len(pipelines))
	}
	properties, _ := pipelines[0]["Properties"].(map[string]any)
	rawStages, _ := properties["Stages"].([]any)

	stages := make([]map[string]any, 0, len(rawStages))
	for _, s := range rawStages {
		stage, ok := s.(map[string]any)
		if !ok {
			t.Fatalf("unexpected stage shape %T", s)
		}
		stages = append(stages, stage)
	}
	return stages
}

func findAction(t *testing.T, stages []map[string]any, stageName, actionName string) map[string]any {
	t.Helper()

	for _, stage := range stages {
		if stage["Name"] != stageName {
			continue
		}
		actions, _ := stage["Actions"].([]any)
		for _, a := range actions {
			action, ok := a.(map[string]any)
			if !ok {
				continue
			}
			if action["Name"] == actionName {
				return action
			}
		}
		t.Fatalf("stage %q has no action %q", stageName, actionName)
	}
	t.Fatalf("pipeline has no stage %q", stageName)
	return nil
}

func actionEnvironment(t *testing.T, action map[string]any) string {
	t.Helper()

	configuration, _ := action["Configuration"].(map[string]any)
	env, ok := configuration["EnvironmentVariables"].(string)
	if !ok {
		t.Fatalf("action %v has no environment variables", action["Name"])
	}
	return env
}

func TestNew_StageOrder(t *testing.T) {
	defer jsii.Close()
	template := synthPipeline(t, pipelineContext(t, map[string]any{
		"lza-enable-approval-stage":  true,
		"lza-approval-notify-emails": []any{"release@example.com"},
	}))

	stages := pipelineStages(t, template)
	want := []string{
		"Source", "Build",
		"Prepare", "Accounts", "Bootstrap", "Review",
		"Logging", "Organization", "SecurityAudit", "Deploy",
	}
	if len(stages) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(stages))
	}
	for i, name := range want {
		if stages[i]["Name"] != name {
			t.Errorf("stage %d = %v, want %q", i, stages[i]["Name"], name)
		}
	}
}

func TestNew_ExactlyTwoBuildProjects(t *testing.T) {
	defer jsii.Close()
	template := synthPipeline(t, pipelineContext(t, nil))

	projects := resourcesOfType(template, "AWS::CodeBuild::Project")
	if len(projects) != 2 {
		t.Fatalf("expected exactly two CodeBuild projects, got %d", len(projects))
	}

	names := make([]string, 0, 2)
	for _, project := range projects {
		properties, _ := project["Properties"].(map[string]any)
		name, _ := properties["Name"].(string)
		names = append(names, name)
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"lza-build-project", "lza-toolkit-project"} {
		if !strings.Contains(joined, want) {
			t.Errorf("project names %q do not include %q", joined, want)
		}
	}
}

func TestNew_ToolkitActionEnvironment(t *testing.T) {
	defer jsii.Close()
	template := synthPipeline(t, pipelineContext(t, map[string]any{
		"lza-enable-approval-stage":  true,
		"lza-approval-notify-emails": []any{"release@example.com"},
	}))
	stages := pipelineStages(t, template)

	tests := []struct {
		stage      string
		action     string
		cdkOptions string
		stageVar   string
		runOrder   float64
	}{
		{"Prepare", "Prepare", "deploy --stage prepare", "prepare", 1},
		{"Accounts", "Accounts", "deploy --stage accounts", "accounts", 1},
		{"Bootstrap", "Bootstrap", "bootstrap", "", 1},
		{"Review", "Diff", "diff", "", 1},
		{"Logging", "Key", "deploy --stage key", "key", 1},
		{"Logging", "Logging", "deploy --stage logging", "logging", 2},
		{"Organization", "Organizations", "deploy --stage organizations", "organizations", 1},
		{"SecurityAudit", "SecurityAudit", "deploy --stage security-audit", "security-audit", 1},
		{"Deploy", "Network_Prepare", "deploy --stage network-prep", "network-prep", 1},
		{"Deploy", "Security", "deploy --stage security", "security", 2},
		{"Deploy", "Operations", "deploy --stage operations", "operations", 2},
		{"Deploy", "Network_VPCs", "deploy --stage network-vpc", "network-vpc", 3},
		{"Deploy", "Security_Resources", "deploy --stage security-resources", "security-resources", 4},
		{"Deploy", "Network_Associations", "deploy --stage network-associations", "network-associations", 5},
		{"Deploy", "Customizations", "deploy --stage customizations", "customizations", 6},
		{"Deploy", "Finalize", "deploy --stage finalize", "finalize", 7},
	}

	for _, tc := range tests {
		action := findAction(t, stages, tc.stage, tc.action)
		env := actionEnvironment(t, action)

		if !strings.Contains(env, `"name":"CDK_OPTIONS"`) {
			t.Errorf("%s/%s environment %q lacks CDK_OPTIONS", tc.stage, tc.action, env)
		}
		if !strings.Contains(env, `"value":"`+tc.cdkOptions+`"`) {
			t.Errorf("%s/%s environment %q lacks options %q", tc.stage, tc.action, env, tc.cdkOptions)
		}
		if tc.stageVar == "" {
			if strings.Contains(env, "ACCELERATOR_STAGE") {
				t.Errorf("%s/%s environment %q must not pin a stage", tc.stage, tc.action, env)
			}
		} else {
			if !strings.Contains(env, `"name":"ACCELERATOR_STAGE"`) {
				t.Errorf("%s/%s environment %q lacks ACCELERATOR_STAGE", tc.stage, tc.action, env)
			}
			if !strings.Contains(env, `"value":"`+tc.stageVar+`"`) {
				t.Errorf("%s/%s environment %q lacks stage %q", tc.stage, tc.action, env, tc.stageVar)
			}
		}
		if order, _ := action["RunOrder"].(float64); order != tc.runOrder {
			t.Errorf("%s/%s run order = %v, want %v", tc.stage, tc.action, order, tc.runOrder)
		}
	}
}

func TestNew_ApprovalStageDisabledByDefault(t *testing.T) {
	defer jsii.Close()
	template := synthPipeline(t, pipelineContext(t, nil))

	for _, stage := range pipelineStages(t, template) {
		if stage["Name"] == "Review" {
			t.Fatal("Review stage present without approval enabled")
		}
	}
}

func TestNew_ApprovalNotification(t *testing.T) {
	defer jsii.Close()
	template := synthPipeline(t, pipelineContext(t, map[string]any{
		"lza-enable-approval-stage":  true,
		"lza-approval-notify-emails": []any{"release@example.com"},
	}))

	approve := findAction(t, pipelineStages(t, template), "Review", "Approve")
	configuration, _ := approve["Configuration"].(map[string]any)
	if configuration["NotificationArn"] == nil {
		t.Error("approval action has no notification topic in the commercial partition")
	}
	custom, _ := configuration["CustomData"].(string)
	if !strings.Contains(custom, "diff output") {
		t.Errorf("approval instructions = %q", custom)
	}
	if order, _ := approve["RunOrder"].(float64); order != 2 {
		t.Errorf("approval run order = %v, want 2", order)
	}
}

func TestNew_ApprovalWithoutNotificationOutsideCommercial(t *testing.T) {
	defer jsii.Close()
	template := synthPipeline(t, pipelineContext(t, map[string]any{
		"lza-partition":              "aws-us-gov",
		"lza-home-region":            "us-gov-west-1",
		"lza-enabled-regions":        []any{"us-gov-west-1"},
		"lza-enable-approval-stage":  true,
		"lza-approval-notify-emails": []any{"release@example.com"},
	}))

	approve := findAction(t, pipelineStages(t, template), "Review", "Approve")
	configuration, _ := approve["Configuration"].(map[string]any)
	if configuration["NotificationArn"] != nil {
		t.Error("approval action must not carry a notification topic outside the commercial partition")
	}
}

// stateChangeRules returns the rules matching pipeline execution state
// changes. The source actions create their own commit trigger rules, which
// exist in every configuration and are not counted here.
func stateChangeRules(t *testing.T, template map[string]any) []map[string]any {
	t.Helper()

	var found []map[string]any
	for _, rule := range resourcesOfType(template, "AWS::Events::Rule") {
		raw, err := json.Marshal(rule)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(raw), "aws.codepipeline") {
			found = append(found, rule)
		}
	}
	return found
}

func TestNew_SingleAccountModeSkipsNotifications(t *testing.T) {
	defer jsii.Close()
	template := synthPipeline(t, pipelineContext(t, map[string]any{
		"lza-single-account-mode": true,
	}))

	if rules := stateChangeRules(t, template); len(rules) != 0 {
		t.Errorf("expected no pipeline notification rules, got %d", len(rules))
	}
	if topics := resourcesOfType(template, "AWS::SNS::Topic"); len(topics) != 0 {
		t.Errorf("expected no notification topics, got %d", len(topics))
	}
}

func TestNew_NotificationsWiredByDefault(t *testing.T) {
	defer jsii.Close()
	template := synthPipeline(t, pipelineContext(t, nil))

	topics := resourcesOfType(template, "AWS::SNS::Topic")
	if len(topics) != 2 {
		t.Fatalf("expected status and failure topics, got %d", len(topics))
	}
	if rules := stateChangeRules(t, template); len(rules) != 2 {
		t.Fatalf("expected status and failure rules, got %d", len(rules))
	}
}

func TestNew_StoresPipelineParameters(t *testing.T) {
	defer jsii.Close()
	template := synthPipeline(t, pipelineContext(t, nil))

	params := resourcesOfType(template, "AWS::SSM::Parameter")
	values := map[string]string{}
	for _, param := range params {
		properties, _ := param["Properties"].(map[string]any)
		name, _ := properties["Name"].(string)
		value, _ := properties["Value"].(string)
		values[name] = value
	}

	if got := values["/accel/pipeline/name"]; got != "lza-pipeline" {
		t.Errorf("pipeline name parameter = %q, want %q", got, "lza-pipeline")
	}
	if got := values["/accel/pipeline/version"]; got != lzacdkutil.Version {
		t.Errorf("pipeline version parameter = %q, want %q", got, lzacdkutil.Version)
	}
}

func TestNew_SourceStageActions(t *testing.T) {
	defer jsii.Close()
	template := synthPipeline(t, pipelineContext(t, nil))
	stages := pipelineStages(t, template)

	source := findAction(t, stages, "Source", "Source")
	sourceCfg, _ := source["Configuration"].(map[string]any)
	if got := sourceCfg["BranchName"]; got != "main" {
		t.Errorf("source branch = %v, want main", got)
	}

	config := findAction(t, stages, "Source", "Configuration")
	configCfg, _ := config["Configuration"].(map[string]any)
	if got := configCfg["BranchName"]; got != "main" {
		t.Errorf("configuration branch = %v, want main", got)
	}

	repos := resourcesOfType(template, "AWS::CodeCommit::Repository")
	if len(repos) != 1 {
		t.Fatalf("expected the configuration repository, got %d repositories", len(repos))
	}
}
