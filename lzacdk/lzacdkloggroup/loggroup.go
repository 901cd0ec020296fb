// Package lzacdkloggroup provides a reusable CloudWatch Log Group construct
// with retention taken from the installation's global configuration and a
// CloudFormation output for discovery.
//
// All log groups created with this construct automatically export their names
// as stack outputs, enabling easy discovery via AWS CLI queries.
package lzacdkloggroup

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// LogGroup provides access to a CloudWatch Log Group with standardized configuration.
type LogGroup interface {
	// LogGroup returns the underlying CDK log group.
	LogGroup() awslogs.ILogGroup
}

// Props configures the LogGroup construct.
type Props struct {
	// Purpose describes what this log group is for (e.g., "account vending handler logs").
	// Used in the CfnOutput description.
	// Required.
	Purpose *string

	// RetentionDays sets the log retention, usually from the
	// cloudwatchLogRetentionInDays global configuration value. Must be one
	// of the retention periods CloudWatch Logs supports. Zero means one week.
	RetentionDays int
}

type logGroup struct {
	lg awslogs.ILogGroup
}

// New creates a LogGroup construct with standardized configuration.
//
// The log group is created with:
//   - Retention: from Props.RetentionDays
//   - RemovalPolicy: RETAIN (log history outlives stack updates)
//
// A CfnOutput is created with:
//   - Key: "{id}LogGroup" where id is derived from the construct path
//   - Value: The log group name (for CLI queries)
//   - Description: "CloudWatch Log Group for {Purpose}"
func New(scope constructs.Construct, id string, props Props) LogGroup {
	scope = constructs.NewConstruct(scope, jsii.String(id))
	con := &logGroup{}

	con.lg = awslogs.NewLogGroup(scope, jsii.String("LogGroup"), &awslogs.LogGroupProps{
		Retention:     retentionFromDays(props.RetentionDays),
		RemovalPolicy: awscdk.RemovalPolicy_RETAIN,
	})

	awscdk.NewCfnOutput(scope, jsii.String("LogGroupOutput"), &awscdk.CfnOutputProps{
		Key:         jsii.String(id + "LogGroup"),
		Description: jsii.String("CloudWatch Log Group for " + *props.Purpose),
		Value:       con.lg.LogGroupName(),
	})

	return con
}

func (l *logGroup) LogGroup() awslogs.ILogGroup {
	return l.lg
}

// retentionDays maps the day counts CloudWatch Logs accepts to their enum
// values. Configuration validation happens earlier; an unmapped value here is
// a programming error and aborts synthesis.
var retentionDays = map[int]awslogs.RetentionDays{
	1:    awslogs.RetentionDays_ONE_DAY,
	3:    awslogs.RetentionDays_THREE_DAYS,
	5:    awslogs.RetentionDays_FIVE_DAYS,
	7:    awslogs.RetentionDays_ONE_WEEK,
	14:   awslogs.RetentionDays_TWO_WEEKS,
	30:   awslogs.RetentionDays_ONE_MONTH,
	60:   awslogs.RetentionDays_TWO_MONTHS,
	90:   awslogs.RetentionDays_THREE_MONTHS,
	120:  awslogs.RetentionDays_FOUR_MONTHS,
	150:  awslogs.RetentionDays_FIVE_MONTHS,
	180:  awslogs.RetentionDays_SIX_MONTHS,
	365:  awslogs.RetentionDays_ONE_YEAR,
	400:  awslogs.RetentionDays_THIRTEEN_MONTHS,
	545:  awslogs.RetentionDays_EIGHTEEN_MONTHS,
	731:  awslogs.RetentionDays_TWO_YEARS,
	1096: awslogs.RetentionDays_THREE_YEARS,
	1827: awslogs.RetentionDays_FIVE_YEARS,
	2192: awslogs.RetentionDays_SIX_YEARS,
	2557: awslogs.RetentionDays_SEVEN_YEARS,
	2922: awslogs.RetentionDays_EIGHT_YEARS,
	3288: awslogs.RetentionDays_NINE_YEARS,
	3653: awslogs.RetentionDays_TEN_YEARS,
}

func retentionFromDays(days int) awslogs.RetentionDays {
	if days == 0 {
		return awslogs.RetentionDays_ONE_WEEK
	}
	retention, ok := retentionDays[days]
	if !ok {
		panic(fmt.Sprintf("lzacdkloggroup: %d days is not a supported log retention period", days))
	}
	return retention
}
