// Package crruntime runs the accelerator's CloudFormation custom resource
// handlers.
//
// Stage stacks fall back to Lambda-backed custom resources for the
// imperative API calls the declarative model cannot express. Every handler
// under handlers/cmd is one such function, and crruntime carries their
// shared plumbing:
//
//   - environment parsing via caarlos0/env, with [BaseEnvironment] covering
//     the variables the handler construct injects
//   - a JSON zap logger annotated with the handler name and, per
//     invocation, the CloudFormation request
//   - AWS SDK v2 configuration loading
//   - dependency wiring through go.uber.org/fx
//   - the Lambda entrypoint via aws-lambda-go's cfn.LambdaWrap
//
// A handler implements [Handler] and starts itself from main:
//
//	type handler struct{ env environment }
//
//	func main() {
//	    crruntime.Run[environment, *handler](fx.Provide(newHandler))
//	}
package crruntime

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Handler processes one custom resource lifecycle event. The returned
// physical resource id must be stable across updates of the same resource;
// returning a new one makes CloudFormation issue a Delete for the old.
type Handler interface {
	Handle(ctx context.Context, event cfn.Event) (physicalResourceID string, data map[string]any, err error)
}

// Run parses the environment, wires the handler through fx, and hands
// control to the Lambda runtime. The options carry the handler's own
// constructors; ParseEnv, the logger, and the AWS configuration are
// provided by the runtime.
func Run[E Environment, H Handler](opts ...fx.Option) {
	var (
		h      H
		logger *zap.Logger
	)
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			ParseEnv[E](),
			func(env E) Environment { return env },
			NewLogger,
			NewAWSConfig,
		),
		fx.Options(opts...),
		fx.Populate(&h, &logger),
	)
	if err := app.Err(); err != nil {
		// The logger may not have been built; the runtime log reaches
		// CloudWatch either way.
		log.Fatalf("handler wiring failed: %v", err)
	}

	lambda.Start(cfn.LambdaWrap(HandlerFunc(logger, h)))
}

// HandlerFunc adapts a Handler to the custom resource protocol, logging
// every invocation and its outcome. Errors pass straight through to
// cfn.LambdaWrap, which reports them to CloudFormation.
func HandlerFunc(logger *zap.Logger, h Handler) cfn.CustomResourceFunction {
	return func(ctx context.Context, event cfn.Event) (string, map[string]interface{}, error) {
		invLog := logger.With(
			zap.String("request_id", event.RequestID),
			zap.String("request_type", string(event.RequestType)),
			zap.String("resource_type", event.ResourceType),
			zap.String("logical_id", event.LogicalResourceID),
		)
		if trace := traceID(); trace != "" {
			invLog = invLog.With(zap.String("trace_id", trace))
		}
		invLog.Info("handling request")

		physicalID, data, err := h.Handle(WithLog(ctx, invLog), event)
		if err != nil {
			invLog.Error("request failed", zap.Error(err))
			return physicalID, data, err
		}
		invLog.Info("request complete", zap.String("physical_resource_id", physicalID))
		return physicalID, data, nil
	}
}
