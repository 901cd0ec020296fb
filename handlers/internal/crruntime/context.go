package crruntime

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// ctxKey is the key type for context values.
type ctxKey int

const ctxKeyLog ctxKey = iota

// WithLog returns a context carrying the invocation logger.
func WithLog(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLog, logger)
}

// Log returns the invocation logger from the context. Outside an invocation
// it falls back to a no-op logger so handler code can log unconditionally.
func Log(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(ctxKeyLog).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// traceID returns the X-Ray trace header the Lambda runtime sets per
// invocation, for log correlation with traced callers.
func traceID() string {
	return os.Getenv("_X_AMZN_TRACE_ID")
}
