package main

import (
	"fmt"
	"os"

	"github.com/landingzonehq/lza/cmd/internal/accctx"
	"github.com/landingzonehq/lza/cmd/internal/projcfg"
	"github.com/landingzonehq/lza/lzacfg"
)

type ConfigValidateCmd struct {
	Dir string `help:"Configuration directory to validate instead of the project's." type:"path"`
}

func (c *ConfigValidateCmd) Run(cfg *projcfg.Config) error {
	acc, err := accctx.Load(cfg.CdkDir())
	if err != nil {
		return err
	}

	dir := cfg.ConfigDir()
	if c.Dir != "" {
		dir = c.Dir
	}

	set, err := lzacfg.Load(dir, map[string]string{
		"home-region": acc.HomeRegion,
		"qualifier":   acc.Qualifier,
	})
	if err != nil {
		return err
	}
	if err := set.Validate(); err != nil {
		return err
	}

	accounts := set.Accounts.AllAccounts()
	provisioned := 0
	for _, account := range accounts {
		if _, err := set.Accounts.AccountID(account.Name); err == nil {
			provisioned++
		}
	}

	fmt.Fprintf(os.Stdout, "%s: %d documents OK\n", dir, len(lzacfg.Files))
	fmt.Fprintf(os.Stdout, "  accounts: %d (%d provisioned)\n", len(accounts), provisioned)
	fmt.Fprintf(os.Stdout, "  organizational units: %d\n", len(set.Organization.OrganizationalUnits))
	fmt.Fprintf(os.Stdout, "  enabled regions: %d\n", len(set.Global.EnabledRegions))
	fmt.Fprintf(os.Stdout, "  vpcs: %d\n", len(set.Network.Vpcs))
	return nil
}
