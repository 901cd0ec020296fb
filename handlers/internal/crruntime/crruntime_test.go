package crruntime_test

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/handlers/internal/crruntime"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseEnv_Base(t *testing.T) {
	t.Setenv("LZA_HANDLER_NAME", "lza-craccounts")
	t.Setenv("LZA_HOME_REGION", "us-east-1")
	t.Setenv("LZA_LOG_LEVEL", "debug")

	env, err := crruntime.ParseEnv[crruntime.BaseEnvironment]()()
	if err != nil {
		t.Fatalf("ParseEnv error: %v", err)
	}
	if env.HandlerName != "lza-craccounts" {
		t.Errorf("HandlerName = %q", env.HandlerName)
	}
	if env.HomeRegion != "us-east-1" {
		t.Errorf("HomeRegion = %q", env.HomeRegion)
	}
	if env.LogLevel != zapcore.DebugLevel {
		t.Errorf("LogLevel = %v", env.LogLevel)
	}
}

func TestParseEnv_LogLevelDefaultsToInfo(t *testing.T) {
	t.Setenv("LZA_HANDLER_NAME", "lza-crorgadmin")
	t.Setenv("LZA_HOME_REGION", "eu-west-1")

	env, err := crruntime.ParseEnv[crruntime.BaseEnvironment]()()
	if err != nil {
		t.Fatalf("ParseEnv error: %v", err)
	}
	if env.LogLevel != zapcore.InfoLevel {
		t.Errorf("LogLevel = %v, want info", env.LogLevel)
	}
}

func TestParseEnv_MissingRequired(t *testing.T) {
	// Setenv registers the restore; the variables must be absent, not empty.
	t.Setenv("LZA_HANDLER_NAME", "")
	t.Setenv("LZA_HOME_REGION", "")
	os.Unsetenv("LZA_HANDLER_NAME")
	os.Unsetenv("LZA_HOME_REGION")

	_, err := crruntime.ParseEnv[crruntime.BaseEnvironment]()()
	if err == nil {
		t.Fatal("expected error for missing required variables")
	}
}

func TestLog_ReturnsContextLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx := crruntime.WithLog(context.Background(), logger)
	crruntime.Log(ctx).Info("from handler")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}
	if logs.All()[0].Message != "from handler" {
		t.Errorf("message = %q", logs.All()[0].Message)
	}
}

func TestLog_FallsBackToNop(t *testing.T) {
	t.Parallel()

	// Must not panic without an invocation logger in the context.
	crruntime.Log(context.Background()).Info("dropped")
}

type countingHandler struct {
	calls int
	err   error
}

func (h *countingHandler) Handle(ctx context.Context, event cfn.Event) (string, map[string]any, error) {
	h.calls++
	crruntime.Log(ctx).Info("handler ran")
	return "physical-id", map[string]any{"Count": h.calls}, h.err
}

func TestHandlerFunc_LogsInvocation(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	h := &countingHandler{}

	fn := crruntime.HandlerFunc(zap.New(core), h)
	physicalID, data, err := fn(context.Background(), cfn.Event{
		RequestType:       cfn.RequestCreate,
		RequestID:         "req-1",
		ResourceType:      "Custom::LoadAccounts",
		LogicalResourceID: "LoadAccounts",
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if physicalID != "physical-id" {
		t.Errorf("physicalID = %q", physicalID)
	}
	if data["Count"] != 1 {
		t.Errorf("data = %v", data)
	}
	if h.calls != 1 {
		t.Errorf("calls = %d", h.calls)
	}

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}
	if entries[0].Message != "handling request" {
		t.Errorf("first message = %q", entries[0].Message)
	}
	if entries[2].Message != "request complete" {
		t.Errorf("last message = %q", entries[2].Message)
	}

	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" {
		t.Errorf("request_id = %v", fields["request_id"])
	}
	if fields["resource_type"] != "Custom::LoadAccounts" {
		t.Errorf("resource_type = %v", fields["resource_type"])
	}
}

func TestHandlerFunc_LogsFailure(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	h := &countingHandler{err: errors.New("api rejected the call")}

	fn := crruntime.HandlerFunc(zap.New(core), h)
	_, _, err := fn(context.Background(), cfn.Event{RequestType: cfn.RequestUpdate})
	if err == nil {
		t.Fatal("expected the handler error to pass through")
	}

	var failed bool
	for _, entry := range logs.All() {
		if entry.Level == zapcore.ErrorLevel && entry.Message == "request failed" {
			failed = true
		}
	}
	if !failed {
		t.Error("expected a request failed log entry")
	}
}
