package lzacfg

// SecurityConfig is the security baseline document: central security service
// delegation and the CloudWatch monitoring baseline.
type SecurityConfig struct {
	CentralSecurityServices CentralSecurityServices `yaml:"centralSecurityServices" validate:"required"`
	CloudWatch              CloudWatchConfig        `yaml:"cloudWatch"`
}

// CentralSecurityServices configures the delegated security administrator
// account and the organization-wide security services.
type CentralSecurityServices struct {
	DelegatedAdminAccount      string            `yaml:"delegatedAdminAccount" validate:"required"`
	EbsDefaultVolumeEncryption EnableableService `yaml:"ebsDefaultVolumeEncryption"`
	Macie                      MacieConfig       `yaml:"macie"`
	Guardduty                  GuarddutyConfig   `yaml:"guardduty"`
	SecurityHub                SecurityHubConfig `yaml:"securityHub"`
	SnsSubscriptions           []SnsSubscription `yaml:"snsSubscriptions" validate:"dive"`
}

// EnableableService is a service with nothing to configure beyond a flag.
type EnableableService struct {
	Enable bool `yaml:"enable"`
}

// MacieConfig configures the organization-wide Macie deployment.
type MacieConfig struct {
	Enable                            bool   `yaml:"enable"`
	PolicyFindingsPublishingFrequency string `yaml:"policyFindingsPublishingFrequency" validate:"omitempty,oneof=FIFTEEN_MINUTES ONE_HOUR SIX_HOURS"`
	PublishSensitiveDataFindings      bool   `yaml:"publishSensitiveDataFindings"`
}

// GuarddutyConfig configures the organization-wide GuardDuty deployment.
type GuarddutyConfig struct {
	Enable              bool                  `yaml:"enable"`
	ExportConfiguration GuarddutyExportConfig `yaml:"exportConfiguration"`
}

// GuarddutyExportConfig configures GuardDuty findings export.
type GuarddutyExportConfig struct {
	Enable          bool   `yaml:"enable"`
	DestinationType string `yaml:"destinationType" validate:"omitempty,oneof=S3"`
	ExportFrequency string `yaml:"exportFrequency" validate:"omitempty,oneof=FIFTEEN_MINUTES ONE_HOUR SIX_HOURS"`
}

// SecurityHubConfig configures the organization-wide Security Hub deployment.
type SecurityHubConfig struct {
	Enable            bool `yaml:"enable"`
	RegionAggregation bool `yaml:"regionAggregation"`
}

// SnsSubscription subscribes an email address to one alert severity level.
type SnsSubscription struct {
	Level string `yaml:"level" validate:"required,oneof=High Medium Low"`
	Email string `yaml:"email" validate:"required,email"`
}

// CloudWatchConfig is the monitoring baseline: metric filters and alarms
// deployed per target.
type CloudWatchConfig struct {
	MetricSets []MetricSet `yaml:"metricSets" validate:"dive"`
	AlarmSets  []AlarmSet  `yaml:"alarmSets" validate:"dive"`
}

// MetricSet deploys log metric filters to its targets.
type MetricSet struct {
	Regions           []string          `yaml:"regions" validate:"dive,required"`
	DeploymentTargets DeploymentTargets `yaml:"deploymentTargets"`
	Metrics           []MetricItem      `yaml:"metrics" validate:"required,min=1,dive"`
}

// MetricItem declares one log metric filter.
type MetricItem struct {
	FilterName      string `yaml:"filterName" validate:"required"`
	LogGroupName    string `yaml:"logGroupName" validate:"required"`
	FilterPattern   string `yaml:"filterPattern" validate:"required"`
	MetricNamespace string `yaml:"metricNamespace" validate:"required"`
	MetricName      string `yaml:"metricName" validate:"required"`
	MetricValue     string `yaml:"metricValue" validate:"required"`
}

// AlarmSet deploys CloudWatch alarms to its targets.
type AlarmSet struct {
	Regions           []string          `yaml:"regions" validate:"dive,required"`
	DeploymentTargets DeploymentTargets `yaml:"deploymentTargets"`
	Alarms            []AlarmItem       `yaml:"alarms" validate:"required,min=1,dive"`
}

// AlarmItem declares one CloudWatch alarm over a baseline metric.
type AlarmItem struct {
	AlarmName          string  `yaml:"alarmName" validate:"required"`
	AlarmDescription   string  `yaml:"alarmDescription"`
	SnsAlertLevel      string  `yaml:"snsAlertLevel" validate:"required,oneof=High Medium Low"`
	MetricName         string  `yaml:"metricName" validate:"required"`
	Namespace          string  `yaml:"namespace" validate:"required"`
	ComparisonOperator string  `yaml:"comparisonOperator" validate:"required"`
	EvaluationPeriods  int     `yaml:"evaluationPeriods" validate:"required,min=1"`
	Period             int     `yaml:"period" validate:"required,min=10"`
	Statistic          string  `yaml:"statistic" validate:"required"`
	Threshold          float64 `yaml:"threshold"`
	TreatMissingData   string  `yaml:"treatMissingData" validate:"omitempty,oneof=breaching notBreaching ignore missing"`
}

// SubscriptionLevels returns the alert levels with at least one subscriber,
// in subscription order.
func (c *CentralSecurityServices) SubscriptionLevels() []string {
	var levels []string
	for _, sub := range c.SnsSubscriptions {
		found := false
		for _, lvl := range levels {
			if lvl == sub.Level {
				found = true
				break
			}
		}
		if !found {
			levels = append(levels, sub.Level)
		}
	}
	return levels
}

// SubscriptionsForLevel returns the email subscriptions at one alert level.
func (c *CentralSecurityServices) SubscriptionsForLevel(level string) []SnsSubscription {
	var out []SnsSubscription
	for _, sub := range c.SnsSubscriptions {
		if sub.Level == level {
			out = append(out, sub)
		}
	}
	return out
}
