// Package lzacdkhandler provides a reusable Lambda construct for the Go
// custom resource handlers under handlers/cmd.
//
// Handlers speak the raw CloudFormation custom resource protocol, so the
// function itself serves as the resource provider: custom resources use the
// function ARN as their service token. The construct handles Go bundling
// with reproducible builds, wires a dedicated log group, and names the
// function after its command directory.
package lzacdkhandler

import (
	"maps"
	"path/filepath"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdklambdagoalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"
	"github.com/landingzonehq/lza/lzacdk/lzacdkloggroup"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

// Handler provides access to a Go Lambda function serving CloudFormation
// custom resources.
type Handler interface {
	// Function returns the underlying Lambda function.
	Function() awscdklambdagoalpha.GoFunction
	// LogGroup returns the CloudWatch Log Group for the function.
	LogGroup() awslogs.ILogGroup
	// Name returns the construct name derived from the entry path.
	Name() string
	// ServiceToken returns the value custom resources use to reach the
	// handler.
	ServiceToken() *string
}

// Props configures the Handler construct.
type Props struct {
	// Entry is the path to the Go command directory.
	// Must match pattern "handlers/cmd/<name>" (e.g., "handlers/cmd/craccounts").
	// The name is used to name the construct for AWS Console visibility.
	// Required.
	Entry *string
	// Environment variables to pass to the function.
	Environment *map[string]*string
	// InitialPolicy grants the handler the API permissions it calls with.
	InitialPolicy *[]awsiam.PolicyStatement
	// LogRetentionDays sets log retention, usually from the
	// cloudwatchLogRetentionInDays global configuration value.
	LogRetentionDays int
	// Timeout overrides the five minute default. Custom resource calls that
	// exceed it surface to CloudFormation as provider failures.
	Timeout awscdk.Duration
}

// ParseEntry extracts the handler name from an entry path.
// Validates pattern "handlers/cmd/<name>".
func ParseEntry(entry string) (name string, err error) {
	parts := strings.Split(filepath.ToSlash(entry), "/")
	if len(parts) < 3 {
		return "", errors.Newf("entry must match pattern handlers/cmd/<name>, got %q", entry)
	}
	name = parts[len(parts)-1]
	if parts[len(parts)-3] != "handlers" || parts[len(parts)-2] != "cmd" || name == "" {
		return "", errors.Newf("entry must match pattern handlers/cmd/<name>, got %q", entry)
	}
	return name, nil
}

type handler struct {
	function awscdklambdagoalpha.GoFunction
	logGroup awslogs.ILogGroup
	name     string
}

// New creates a Handler construct for one custom resource handler.
//
// The function uses arm64 architecture for better price/performance and
// configures reproducible Go builds so unchanged handler source never
// triggers a redeploy. Logs are written in JSON to a dedicated log group.
func New(scope constructs.Construct, props Props) Handler {
	name, err := ParseEntry(*props.Entry)
	if err != nil {
		panic(err)
	}
	scopeName := strcase.ToCamel(name)
	scope = constructs.NewConstruct(scope, jsii.String(scopeName))
	con := &handler{name: scopeName}

	functionName := lzacdkutil.ResourceName(scope, name, lzacdkutil.CasingKebab)

	env := make(map[string]*string)
	if props.Environment != nil {
		maps.Copy(env, *props.Environment)
	}
	env["LZA_HANDLER_NAME"] = jsii.String(functionName)
	env["LZA_HOME_REGION"] = jsii.String(lzacdkutil.HomeRegion(scope))

	con.logGroup = lzacdkloggroup.New(scope, scopeName+"Logs", lzacdkloggroup.Props{
		Purpose:       jsii.String("custom resource handler " + scopeName),
		RetentionDays: props.LogRetentionDays,
	}).LogGroup()

	timeout := props.Timeout
	if timeout == nil {
		timeout = awscdk.Duration_Minutes(jsii.Number(5))
	}

	con.function = awscdklambdagoalpha.NewGoFunction(scope, jsii.String("Function"),
		&awscdklambdagoalpha.GoFunctionProps{
			FunctionName:  jsii.String(functionName),
			Entry:         props.Entry,
			Architecture:  awslambda.Architecture_ARM_64(),
			Runtime:       awslambda.Runtime_PROVIDED_AL2023(),
			MemorySize:    jsii.Number(256),
			Timeout:       timeout,
			Environment:   &env,
			Bundling:      reproducibleGoBundling(),
			InitialPolicy: props.InitialPolicy,
			LogGroup:      con.logGroup,
			LoggingFormat: awslambda.LoggingFormat_JSON,
		})

	return con
}

// NewResource creates a CloudFormation custom resource served by the handler.
// The resourceType must follow the "Custom::Name" convention and shows up as
// the resource's type in the stack.
func NewResource(scope constructs.Construct, id string, h Handler, resourceType string, properties *map[string]any) awscdk.CustomResource {
	return awscdk.NewCustomResource(scope, jsii.String(id), &awscdk.CustomResourceProps{
		ServiceToken: h.ServiceToken(),
		ResourceType: jsii.String(resourceType),
		Properties:   properties,
	})
}

func (h *handler) Function() awscdklambdagoalpha.GoFunction {
	return h.function
}

func (h *handler) LogGroup() awslogs.ILogGroup {
	return h.logGroup
}

func (h *handler) Name() string {
	return h.name
}

func (h *handler) ServiceToken() *string {
	return h.function.FunctionArn()
}

// reproducibleGoBundling returns BundlingOptions configured for 100%
// reproducible builds. Same handler source will always produce identical
// binaries, preventing unnecessary redeploys.
func reproducibleGoBundling() *awscdklambdagoalpha.BundlingOptions {
	return &awscdklambdagoalpha.BundlingOptions{
		GoBuildFlags: jsii.Strings(
			"-trimpath",          // removes filesystem paths from binary
			"-ldflags=-buildid=", // clears timestamp-based build ID
			"-buildvcs=false",    // excludes git commit hash, allowing identical builds across commits
		),
		Environment: &map[string]*string{
			"CGO_ENABLED": jsii.String("0"), // pure Go, no C toolchain variance
		},
	}
}
