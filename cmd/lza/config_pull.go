package main

import (
	"context"
	"fmt"
	"os"

	"github.com/landingzonehq/lza/cmd/internal/projcfg"
)

type ConfigPullCmd struct{}

func (c *ConfigPullCmd) Run(cfg *projcfg.Config) error {
	ctx := context.Background()

	store, err := newConfigStore(ctx, cfg)
	if err != nil {
		return err
	}

	written, err := store.Pull(ctx, cfg.ConfigDir())
	if err != nil {
		return err
	}

	for _, rel := range written {
		fmt.Fprintf(os.Stdout, "pulled %s\n", rel)
	}
	fmt.Fprintf(os.Stdout, "%d objects pulled\n", len(written))
	return nil
}
