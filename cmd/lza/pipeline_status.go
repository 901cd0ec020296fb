package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/landingzonehq/lza/cmd/internal/accctx"
	"github.com/landingzonehq/lza/cmd/internal/pipelineread"
	"github.com/landingzonehq/lza/cmd/internal/projcfg"
)

type StatusCmd struct {
	Name string `help:"Pipeline name override."`
}

func (c *StatusCmd) Run(cfg *projcfg.Config) error {
	ctx := context.Background()

	acc, err := accctx.Load(cfg.CdkDir())
	if err != nil {
		return err
	}

	name := c.Name
	if name == "" {
		name = acc.PipelineName()
	}

	state, err := pipelineread.PipelineState(ctx, acc.HomeRegion, name)
	if err != nil {
		return err
	}

	// The version parameter only exists once the pipeline stack deployed;
	// its absence is not an error worth failing status for.
	version, err := pipelineread.Parameter(ctx, acc.HomeRegion,
		acc.ParameterName("pipeline", "version"))
	if err == nil && version != "" {
		fmt.Fprintf(os.Stdout, "%s (%s) version %s\n\n", state.Name, acc.HomeRegion, version)
	} else {
		fmt.Fprintf(os.Stdout, "%s (%s)\n\n", state.Name, acc.HomeRegion)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tACTION\tSTATUS\tCHANGED\tDETAIL")
	for _, stage := range state.Stages {
		for _, action := range stage.Actions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				stage.Name, action.Name, orDash(action.Status), orDash(action.Changed), action.Detail)
		}
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
