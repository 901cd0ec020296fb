package bootstraptpl_test

import (
	"strings"
	"testing"

	"github.com/landingzonehq/lza/cmd/internal/bootstraptpl"
	"gopkg.in/yaml.v3"
)

const templateWithRules = `AWSTemplateFormatVersion: "2010-09-09"
Resources:
  StagingBucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: !Sub "cdk-${Qualifier}-assets-${AWS::AccountId}-${AWS::Region}"
      VersioningConfiguration:
        Status: Enabled
      LifecycleConfiguration:
        Rules:
          - Id: CleanupOldVersions
            Status: Enabled
            NoncurrentVersionExpiration:
              NoncurrentDays: 365
`

const templateBareBucket = `AWSTemplateFormatVersion: "2010-09-09"
Resources:
  StagingBucket:
    Type: AWS::S3::Bucket
    Properties:
      VersioningConfiguration:
        Status: Enabled
`

const templateNoStagingBucket = `AWSTemplateFormatVersion: "2010-09-09"
Resources:
  OtherBucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: other
`

func TestAddAssetExpiry(t *testing.T) {
	t.Parallel()
	out, err := bootstraptpl.AddAssetExpiry([]byte(templateWithRules), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := string(out)

	if !strings.Contains(result, "ExpireStagedAssets") {
		t.Error("output should contain the ExpireStagedAssets rule")
	}
	if !strings.Contains(result, "AbortIncompleteMultipartUpload") {
		t.Error("output should abort incomplete multipart uploads")
	}
	if !strings.Contains(result, "CleanupOldVersions") {
		t.Error("existing rule should be preserved")
	}
	if !strings.Contains(result, "!Sub") {
		t.Error("CloudFormation !Sub tag should be preserved")
	}
}

func TestAddAssetExpiry_Idempotent(t *testing.T) {
	t.Parallel()
	out1, err := bootstraptpl.AddAssetExpiry([]byte(templateWithRules), 90)
	if err != nil {
		t.Fatalf("first call: unexpected error: %v", err)
	}

	out2, err := bootstraptpl.AddAssetExpiry(out1, 30)
	if err != nil {
		t.Fatalf("second call: unexpected error: %v", err)
	}

	result := string(out2)
	count := strings.Count(result, "ExpireStagedAssets")
	if count != 1 {
		t.Errorf("expected exactly 1 ExpireStagedAssets rule, got %d", count)
	}

	if !strings.Contains(result, "30") {
		t.Error("retention days should be updated to 30")
	}
}

func TestAddAssetExpiry_GrowsLifecycleConfiguration(t *testing.T) {
	t.Parallel()
	out, err := bootstraptpl.AddAssetExpiry([]byte(templateBareBucket), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc struct {
		Resources struct {
			StagingBucket struct {
				Properties struct {
					LifecycleConfiguration struct {
						Rules []struct {
							ID     string `yaml:"Id"`
							Status string `yaml:"Status"`
						} `yaml:"Rules"`
					} `yaml:"LifecycleConfiguration"`
				} `yaml:"Properties"`
			} `yaml:"StagingBucket"`
		} `yaml:"Resources"`
	}
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("parsing patched template: %v", err)
	}

	rules := doc.Resources.StagingBucket.Properties.LifecycleConfiguration.Rules
	if len(rules) != 1 {
		t.Fatalf("expected 1 lifecycle rule, got %d", len(rules))
	}
	if rules[0].ID != "ExpireStagedAssets" || rules[0].Status != "Enabled" {
		t.Errorf("unexpected rule %+v", rules[0])
	}
}

func TestAddAssetExpiry_NoStagingBucket(t *testing.T) {
	t.Parallel()
	_, err := bootstraptpl.AddAssetExpiry([]byte(templateNoStagingBucket), 90)
	if err == nil {
		t.Fatal("expected error for template without StagingBucket")
	}
	if !strings.Contains(err.Error(), "StagingBucket") {
		t.Errorf("error should mention StagingBucket, got: %v", err)
	}
}

func TestAddAssetExpiry_RejectsZeroRetention(t *testing.T) {
	t.Parallel()
	_, err := bootstraptpl.AddAssetExpiry([]byte(templateWithRules), 0)
	if err == nil {
		t.Fatal("expected error for zero retention")
	}
}
