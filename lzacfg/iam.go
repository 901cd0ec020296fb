package lzacfg

// IAMConfig is the identity baseline document: policy, role and group sets
// deployed into targeted accounts.
type IAMConfig struct {
	PolicySets []PolicySet `yaml:"policySets" validate:"dive"`
	RoleSets   []RoleSet   `yaml:"roleSets" validate:"dive"`
	GroupSets  []GroupSet  `yaml:"groupSets" validate:"dive"`
}

// PolicySet deploys customer-managed policies to its targets.
type PolicySet struct {
	DeploymentTargets DeploymentTargets `yaml:"deploymentTargets"`
	Policies          []PolicyItem      `yaml:"policies" validate:"required,min=1,dive"`
}

// PolicyItem names a customer-managed policy and its JSON document path,
// relative to the configuration directory.
type PolicyItem struct {
	Name   string `yaml:"name" validate:"required"`
	Policy string `yaml:"policy" validate:"required"`
}

// RoleSet deploys IAM roles to its targets.
type RoleSet struct {
	DeploymentTargets DeploymentTargets `yaml:"deploymentTargets"`
	Roles             []RoleItem        `yaml:"roles" validate:"required,min=1,dive"`
}

// RoleItem declares one IAM role.
type RoleItem struct {
	Name            string          `yaml:"name" validate:"required"`
	InstanceProfile bool            `yaml:"instanceProfile"`
	AssumedBy       []RolePrincipal `yaml:"assumedBy" validate:"required,min=1,dive"`
	Policies        PolicyRefs      `yaml:"policies"`
	BoundaryPolicy  string          `yaml:"boundaryPolicy"`
}

// RolePrincipal is a trust declaration for a role: a service principal or an
// account.
type RolePrincipal struct {
	Type      string `yaml:"type" validate:"required,oneof=service account"`
	Principal string `yaml:"principal" validate:"required"`
}

// PolicyRefs attaches provider-managed and customer-managed policies by name.
type PolicyRefs struct {
	AwsManaged      []string `yaml:"awsManaged,omitempty" validate:"dive,required"`
	CustomerManaged []string `yaml:"customerManaged,omitempty" validate:"dive,required"`
}

// GroupSet deploys IAM groups to its targets.
type GroupSet struct {
	DeploymentTargets DeploymentTargets `yaml:"deploymentTargets"`
	Groups            []GroupItem       `yaml:"groups" validate:"required,min=1,dive"`
}

// GroupItem declares one IAM group.
type GroupItem struct {
	Name     string     `yaml:"name" validate:"required"`
	Policies PolicyRefs `yaml:"policies"`
}
