package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/landingzonehq/lza/lzastage"
)

type StagesCmd struct {
	Waves bool `help:"Group actions into parallel execution waves instead of plan order."`
}

func (c *StagesCmd) Run() error {
	plan := lzastage.Plan()

	if c.Waves {
		graph, err := lzastage.BuildGraph(plan)
		if err != nil {
			return err
		}
		for i, wave := range graph.Waves() {
			names := make([]string, 0, len(wave))
			for _, node := range wave {
				names = append(names, node.Name())
			}
			fmt.Fprintf(os.Stdout, "wave %d: %s\n", i+1, strings.Join(names, ", "))
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tORDER\tACTION\tCOMMAND")
	for _, stage := range plan {
		for _, action := range stage.Actions {
			command := action.CdkOptions()
			if action.Command == lzastage.CommandApprove {
				command = "manual approval"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", stage.Name, action.RunOrder, action.Name, command)
		}
	}
	return w.Flush()
}
