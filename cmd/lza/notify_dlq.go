package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/cmd/internal/accctx"
	"github.com/landingzonehq/lza/cmd/internal/projcfg"
)

type DlqCmd struct {
	Keep bool `help:"Leave drained events on the queue."`
}

func (c *DlqCmd) Run(cfg *projcfg.Config) error {
	ctx := context.Background()

	acc, err := accctx.Load(cfg.CdkDir())
	if err != nil {
		return err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(acc.HomeRegion))
	if err != nil {
		return errors.Wrap(err, "loading AWS configuration")
	}
	client := sqs.NewFromConfig(awsCfg)

	queueName := acc.NotifyDeadLetterQueueName()
	urlOut, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(queueName),
	})
	if err != nil {
		return errors.Wrapf(err, "resolving queue %s", queueName)
	}

	seen := 0
	for {
		out, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            urlOut.QueueUrl,
			MaxNumberOfMessages: 10,
			VisibilityTimeout:   30,
		})
		if err != nil {
			return errors.Wrapf(err, "receiving from %s", queueName)
		}
		if len(out.Messages) == 0 {
			break
		}

		for _, msg := range out.Messages {
			printEvent(msg)
			seen++
			if c.Keep {
				continue
			}
			if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      urlOut.QueueUrl,
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				return errors.Wrapf(err, "deleting message %s", aws.ToString(msg.MessageId))
			}
		}
	}

	if c.Keep {
		fmt.Fprintf(os.Stdout, "%d dead-lettered events (kept on queue)\n", seen)
	} else {
		fmt.Fprintf(os.Stdout, "%d dead-lettered events drained\n", seen)
	}
	return nil
}

// printEvent renders one dead-lettered pipeline state change, falling back
// to the raw body for anything else.
func printEvent(msg sqstypes.Message) {
	var event struct {
		DetailType string `json:"detail-type"`
		Time       string `json:"time"`
		Detail     struct {
			Pipeline string `json:"pipeline"`
			State    string `json:"state"`
		} `json:"detail"`
	}

	body := aws.ToString(msg.Body)
	if err := json.Unmarshal([]byte(body), &event); err != nil || event.DetailType == "" {
		fmt.Fprintln(os.Stdout, body)
		return
	}
	fmt.Fprintf(os.Stdout, "%s  %s  %s %s\n",
		event.Time, event.DetailType, event.Detail.Pipeline, event.Detail.State)
}
