package crruntime

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all handler environments must
// implement. Embed BaseEnvironment in your struct to satisfy it.
type Environment interface {
	handlerName() string
	homeRegion() string
	logLevel() zapcore.Level
}

// BaseEnvironment contains the variables the handler construct injects into
// every function. Embed this in a handler-specific environment struct and
// add the handler's own variables alongside.
//
//	| Variable         | Required | Default | Description                          |
//	|------------------|----------|---------|--------------------------------------|
//	| LZA_HANDLER_NAME | Yes      | -       | Function name, used as logger name   |
//	| LZA_HOME_REGION  | Yes      | -       | The installation's home region       |
//	| LZA_LOG_LEVEL    | No       | info    | Log level (debug, info, warn, error) |
type BaseEnvironment struct {
	HandlerName string        `env:"LZA_HANDLER_NAME,required"`
	HomeRegion  string        `env:"LZA_HOME_REGION,required"`
	LogLevel    zapcore.Level `env:"LZA_LOG_LEVEL" envDefault:"info"`
}

func (e BaseEnvironment) handlerName() string {
	return e.HandlerName
}
func (e BaseEnvironment) homeRegion() string {
	return e.HomeRegion
}
func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "parse environment")
		}
		return e, nil
	}
}
