// Package lzacdkconfigrepo provides the CodeCommit repository holding the
// six landing zone configuration documents.
//
// The repository is created by the pipeline stack and seeded from the local
// configuration directory, so a fresh installation starts from the
// configuration it was synthesized with. After the first deploy the
// repository is the source of truth; pipeline runs read configuration from
// its configured branch.
package lzacdkconfigrepo

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2/awscodecommit"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"github.com/landingzonehq/lza/lzacdk/lzacdkutil"
)

// ConfigRepo provides access to the configuration repository.
type ConfigRepo interface {
	// Repository returns the underlying CodeCommit repository.
	Repository() awscodecommit.IRepository
}

// Props configures the ConfigRepo construct.
type Props struct {
	// Directory seeds the repository's initial commit with the configuration
	// documents. Must exist at synthesis time.
	// Required.
	Directory *string
}

type configRepo struct {
	repository awscodecommit.IRepository
}

// New creates the configuration repository, named and branched per the
// installation context, seeded from Props.Directory.
func New(scope constructs.Construct, props Props) ConfigRepo {
	if props.Directory == nil || *props.Directory == "" {
		panic("lzacdkconfigrepo.New: Directory is required")
	}
	if info, err := os.Stat(*props.Directory); err != nil || !info.IsDir() {
		panic(errors.Newf("lzacdkconfigrepo: configuration directory %q does not exist", *props.Directory))
	}

	cfg := lzacdkutil.ConfigFromScope(scope)
	scope = constructs.NewConstruct(scope, jsii.String("ConfigRepo"))
	con := &configRepo{}

	con.repository = awscodecommit.NewRepository(scope, jsii.String("Repository"),
		&awscodecommit.RepositoryProps{
			RepositoryName: jsii.String(cfg.ConfigRepositoryName),
			Description:    jsii.String("Landing zone configuration documents"),
			Code: awscodecommit.Code_FromDirectory(
				props.Directory, jsii.String(cfg.ConfigBranchName)),
		})

	return con
}

func (c *configRepo) Repository() awscodecommit.IRepository {
	return c.repository
}
