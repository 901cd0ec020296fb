package lzastage

import "fmt"

// Command is the toolkit operation a pipeline action performs.
type Command int

const (
	CommandDeploy Command = iota
	CommandBootstrap
	CommandDiff
	CommandApprove
)

var commandNames = [...]string{
	CommandDeploy:    "deploy",
	CommandBootstrap: "bootstrap",
	CommandDiff:      "diff",
	CommandApprove:   "approve",
}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Action is one pipeline action: a toolkit invocation or a manual approval.
// Actions sharing a RunOrder within a pipeline stage execute in parallel;
// increasing run orders serialize.
type Action struct {
	Name     string
	Command  Command
	Stage    Stage
	RunOrder int
}

// CdkOptions returns the toolkit command line the action's build passes to
// the CDK, empty for approval actions.
func (a Action) CdkOptions() string {
	switch a.Command {
	case CommandDeploy:
		return "deploy --stage " + a.Stage.String()
	case CommandBootstrap, CommandDiff:
		return a.Command.String()
	}
	return ""
}

// TargetsStage reports whether the action's build pins a stage through the
// stage environment variable. Bootstrap and diff operate on the toolkit
// itself and deliberately leave it unset.
func (a Action) TargetsStage() bool {
	cmd := a.Command.String()
	return cmd != "bootstrap" && cmd != "diff" && a.Command != CommandApprove
}

// PipelineStage groups actions under one named pipeline stage. Stages run
// strictly in plan order.
type PipelineStage struct {
	Name string

	// RequiresApproval marks the review stage, which the assembler only
	// includes when manual approval is enabled for the installation.
	RequiresApproval bool

	Actions []Action
}

// Plan returns the fixed pipeline plan covering every post-build stage. The
// assembler prepends its own source and build stages; everything here runs
// through the shared toolkit project except manual approvals.
func Plan() []PipelineStage {
	return []PipelineStage{
		{Name: "Prepare", Actions: []Action{
			{Name: "Prepare", Command: CommandDeploy, Stage: StagePrepare, RunOrder: 1},
		}},
		{Name: "Accounts", Actions: []Action{
			{Name: "Accounts", Command: CommandDeploy, Stage: StageAccounts, RunOrder: 1},
		}},
		{Name: "Bootstrap", Actions: []Action{
			{Name: "Bootstrap", Command: CommandBootstrap, RunOrder: 1},
		}},
		{Name: "Review", RequiresApproval: true, Actions: []Action{
			{Name: "Diff", Command: CommandDiff, RunOrder: 1},
			{Name: "Approve", Command: CommandApprove, RunOrder: 2},
		}},
		{Name: "Logging", Actions: []Action{
			{Name: "Key", Command: CommandDeploy, Stage: StageKey, RunOrder: 1},
			{Name: "Logging", Command: CommandDeploy, Stage: StageLogging, RunOrder: 2},
		}},
		{Name: "Organization", Actions: []Action{
			{Name: "Organizations", Command: CommandDeploy, Stage: StageOrganizations, RunOrder: 1},
		}},
		{Name: "SecurityAudit", Actions: []Action{
			{Name: "SecurityAudit", Command: CommandDeploy, Stage: StageSecurityAudit, RunOrder: 1},
		}},
		{Name: "Deploy", Actions: []Action{
			{Name: "Network_Prepare", Command: CommandDeploy, Stage: StageNetworkPrep, RunOrder: 1},
			{Name: "Security", Command: CommandDeploy, Stage: StageSecurity, RunOrder: 2},
			{Name: "Operations", Command: CommandDeploy, Stage: StageOperations, RunOrder: 2},
			{Name: "Network_VPCs", Command: CommandDeploy, Stage: StageNetworkVpc, RunOrder: 3},
			{Name: "Security_Resources", Command: CommandDeploy, Stage: StageSecurityResources, RunOrder: 4},
			{Name: "Network_Associations", Command: CommandDeploy, Stage: StageNetworkAssociations, RunOrder: 5},
			{Name: "Customizations", Command: CommandDeploy, Stage: StageCustomizations, RunOrder: 6},
			{Name: "Finalize", Command: CommandDeploy, Stage: StageFinalize, RunOrder: 7},
		}},
	}
}
