package main

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/cmd/internal/accctx"
	"github.com/landingzonehq/lza/cmd/internal/configstore"
	"github.com/landingzonehq/lza/cmd/internal/projcfg"
)

type ConfigPushCmd struct{}

func (c *ConfigPushCmd) Run(cfg *projcfg.Config) error {
	ctx := context.Background()

	store, err := newConfigStore(ctx, cfg)
	if err != nil {
		return err
	}

	keys, err := store.Push(ctx, cfg.ConfigDir())
	if err != nil {
		return err
	}

	for _, key := range keys {
		fmt.Fprintf(os.Stdout, "pushed s3://%s/%s\n", cfg.Docs.Bucket, key)
	}
	fmt.Fprintf(os.Stdout, "%d objects pushed\n", len(keys))
	return nil
}

func newConfigStore(ctx context.Context, cfg *projcfg.Config) (*configstore.Store, error) {
	if cfg.Docs.Bucket == "" {
		return nil, errors.New("config.bucket is not set in lza.toml")
	}

	acc, err := accctx.Load(cfg.CdkDir())
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(acc.HomeRegion))
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS configuration")
	}

	return configstore.New(s3.NewFromConfig(awsCfg), cfg.Docs.Bucket, cfg.Docs.Prefix), nil
}
