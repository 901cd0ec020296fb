package lzacfg

import "github.com/cockroachdb/errors"

// Mandatory account names every installation must declare.
const (
	ManagementAccountName = "Management"
	LogArchiveAccountName = "LogArchive"
	AuditAccountName      = "Audit"
)

// AccountsConfig is the organization account inventory document.
type AccountsConfig struct {
	MandatoryAccounts []Account   `yaml:"mandatoryAccounts" validate:"required,len=3,dive"`
	WorkloadAccounts  []Account   `yaml:"workloadAccounts" validate:"dive"`
	AccountIDs        []AccountID `yaml:"accountIds" validate:"dive"`
}

// Account declares one organization member account.
type Account struct {
	Name               string `yaml:"name" validate:"required"`
	Description        string `yaml:"description"`
	Email              string `yaml:"email" validate:"required,email"`
	OrganizationalUnit string `yaml:"organizationalUnit" validate:"required"`
}

// AccountID maps an account email to its provisioned account id.
type AccountID struct {
	Email     string `yaml:"email" validate:"required,email"`
	AccountID string `yaml:"accountId" validate:"required,len=12,numeric"`
}

// AllAccounts returns mandatory accounts followed by workload accounts.
func (c *AccountsConfig) AllAccounts() []Account {
	out := make([]Account, 0, len(c.MandatoryAccounts)+len(c.WorkloadAccounts))
	out = append(out, c.MandatoryAccounts...)
	out = append(out, c.WorkloadAccounts...)
	return out
}

// AccountNames returns every declared account name in document order.
func (c *AccountsConfig) AccountNames() []string {
	accounts := c.AllAccounts()
	names := make([]string, 0, len(accounts))
	for _, acct := range accounts {
		names = append(names, acct.Name)
	}
	return names
}

// ContainsAccount reports whether an account with the given name is declared.
func (c *AccountsConfig) ContainsAccount(name string) bool {
	for _, acct := range c.AllAccounts() {
		if acct.Name == name {
			return true
		}
	}
	return false
}

// Account returns the declared account with the given name.
func (c *AccountsConfig) Account(name string) (Account, error) {
	for _, acct := range c.AllAccounts() {
		if acct.Name == name {
			return acct, nil
		}
	}
	return Account{}, errors.Newf("account %q is not declared in accounts configuration", name)
}

// ManagementAccount returns the mandatory management account.
func (c *AccountsConfig) ManagementAccount() Account {
	return c.mustMandatory(ManagementAccountName)
}

// AuditAccount returns the mandatory audit account.
func (c *AccountsConfig) AuditAccount() Account {
	return c.mustMandatory(AuditAccountName)
}

// LogArchiveAccount returns the mandatory log archive account.
func (c *AccountsConfig) LogArchiveAccount() Account {
	return c.mustMandatory(LogArchiveAccountName)
}

func (c *AccountsConfig) mustMandatory(name string) Account {
	for _, acct := range c.MandatoryAccounts {
		if acct.Name == name {
			return acct
		}
	}
	// Validate rejects configurations missing a mandatory account, so this
	// is unreachable on a validated set.
	panic("mandatory account missing: " + name)
}

// AccountID resolves an account name to its provisioned account id via the
// account's email.
func (c *AccountsConfig) AccountID(name string) (string, error) {
	acct, err := c.Account(name)
	if err != nil {
		return "", err
	}
	for _, id := range c.AccountIDs {
		if id.Email == acct.Email {
			return id.AccountID, nil
		}
	}
	return "", errors.Newf("account %q has no provisioned account id", name)
}
