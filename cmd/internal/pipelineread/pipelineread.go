// Package pipelineread reads deployed pipeline state through the AWS CLI,
// so it picks up whatever credentials and profile the operator already uses
// on the command line.
package pipelineread

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/cmd/internal/cmdexec"
)

// ActionState is the latest execution of one pipeline action.
type ActionState struct {
	Name    string
	Status  string
	Changed string
	Detail  string
}

// StageState groups the action states under one pipeline stage.
type StageState struct {
	Name    string
	Status  string
	Actions []ActionState
}

// State is a point-in-time view of the whole pipeline.
type State struct {
	Name   string
	Stages []StageState
}

type pipelineStateResponse struct {
	PipelineName string `json:"pipelineName"`
	StageStates  []struct {
		StageName       string `json:"stageName"`
		LatestExecution *struct {
			Status string `json:"status"`
		} `json:"latestExecution"`
		ActionStates []struct {
			ActionName      string `json:"actionName"`
			LatestExecution *struct {
				Status           string `json:"status"`
				LastStatusChange string `json:"lastStatusChange"`
				ErrorDetails     *struct {
					Message string `json:"message"`
				} `json:"errorDetails"`
			} `json:"latestExecution"`
		} `json:"actionStates"`
	} `json:"stageStates"`
}

func PipelineState(ctx context.Context, region, name string) (*State, error) {
	out, err := cmdexec.Output(ctx, "/", "aws", "codepipeline", "get-pipeline-state",
		"--no-cli-pager",
		"--region", region,
		"--name", name,
		"--output", "json",
	)
	if err != nil {
		return nil, errors.Wrapf(err, "reading state of pipeline %s in %s", name, region)
	}

	var resp pipelineStateResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return nil, errors.Wrapf(err, "parsing pipeline state for %s", name)
	}

	state := &State{Name: resp.PipelineName}
	for _, stage := range resp.StageStates {
		ss := StageState{Name: stage.StageName}
		if stage.LatestExecution != nil {
			ss.Status = stage.LatestExecution.Status
		}
		for _, action := range stage.ActionStates {
			as := ActionState{Name: action.ActionName}
			if action.LatestExecution != nil {
				as.Status = action.LatestExecution.Status
				as.Changed = action.LatestExecution.LastStatusChange
				if action.LatestExecution.ErrorDetails != nil {
					as.Detail = action.LatestExecution.ErrorDetails.Message
				}
			}
			ss.Actions = append(ss.Actions, as)
		}
		state.Stages = append(state.Stages, ss)
	}
	return state, nil
}

// Parameter reads one SSM string parameter, the channel constructs publish
// installation facts through.
func Parameter(ctx context.Context, region, name string) (string, error) {
	out, err := cmdexec.Output(ctx, "/", "aws", "ssm", "get-parameter",
		"--no-cli-pager",
		"--region", region,
		"--name", name,
		"--query", "Parameter.Value",
		"--output", "text",
	)
	if err != nil {
		return "", errors.Wrapf(err, "reading parameter %s in %s", name, region)
	}
	return strings.TrimSpace(out), nil
}
