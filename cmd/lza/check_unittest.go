package main

import (
	"context"

	"github.com/landingzonehq/lza/cmd/internal/cmdexec"
	"github.com/landingzonehq/lza/cmd/internal/projcfg"
)

type UnitTestCmd struct{}

func (c *UnitTestCmd) Run(cfg *projcfg.Config) error {
	return cmdexec.Run(context.Background(), cfg.Root, "go", "test", "./...")
}
