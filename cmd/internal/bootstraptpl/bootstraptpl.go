// Package bootstraptpl rewrites the CDK bootstrap template before it is
// applied, so every bootstrap stack carries the accelerator's staging bucket
// retention policy.
package bootstraptpl

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const assetExpiryRuleID = "ExpireStagedAssets"

// abortMultipartDays closes failed asset uploads well before the asset
// retention window can expire them.
const abortMultipartDays = 7

// AddAssetExpiry inserts a lifecycle rule on the bootstrap staging bucket
// that expires superseded asset versions after retentionDays and aborts
// stale multipart uploads. An existing rule with the same id is replaced, so
// re-bootstrapping with a new retention updates it in place. Everything else
// in the template passes through untouched, custom tags included.
func AddAssetExpiry(templateYAML []byte, retentionDays int) ([]byte, error) {
	if retentionDays < 1 {
		return nil, errors.Newf("asset retention must be at least one day, got %d", retentionDays)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(templateYAML, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing bootstrap template")
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("invalid YAML document")
	}

	resources, err := mappingValue(doc.Content[0], "Resources")
	if err != nil {
		return nil, err
	}

	bucket, err := mappingValue(resources, "StagingBucket")
	if err != nil {
		return nil, errors.Wrap(err, "in Resources")
	}

	props, err := mappingValue(bucket, "Properties")
	if err != nil {
		return nil, errors.Wrap(err, "in StagingBucket")
	}

	// Older bootstrap templates ship the staging bucket without a lifecycle
	// configuration; grow one instead of failing.
	lifecycleCfg := ensureMapping(props, "LifecycleConfiguration")
	rules := ensureSequence(lifecycleCfg, "Rules")

	newRule := assetExpiryRule(retentionDays)

	if idx := findRuleByID(rules, assetExpiryRuleID); idx >= 0 {
		rules.Content[idx] = newRule
	} else {
		rules.Content = append(rules.Content, newRule)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling patched template")
	}
	return out, nil
}

func mappingValue(node *yaml.Node, key string) (*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errors.Newf("expected mapping node for key %q", key)
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1], nil
		}
	}
	return nil, errors.Newf("key %q not found", key)
}

// ensureMapping returns the mapping under key, appending an empty one when
// the key is absent.
func ensureMapping(node *yaml.Node, key string) *yaml.Node {
	if value, err := mappingValue(node, key); err == nil && value.Kind == yaml.MappingNode {
		return value
	}
	value := &yaml.Node{Kind: yaml.MappingNode}
	node.Content = append(node.Content, scalar(key), value)
	return value
}

// ensureSequence returns the sequence under key, appending an empty one when
// the key is absent.
func ensureSequence(node *yaml.Node, key string) *yaml.Node {
	if value, err := mappingValue(node, key); err == nil && value.Kind == yaml.SequenceNode {
		return value
	}
	value := &yaml.Node{Kind: yaml.SequenceNode}
	node.Content = append(node.Content, scalar(key), value)
	return value
}

func findRuleByID(rules *yaml.Node, id string) int {
	for i, rule := range rules.Content {
		if rule.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j < len(rule.Content)-1; j += 2 {
			if rule.Content[j].Value == "Id" && rule.Content[j+1].Value == id {
				return i
			}
		}
	}
	return -1
}

func assetExpiryRule(retentionDays int) *yaml.Node {
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			scalar("Id"), scalar(assetExpiryRuleID),
			scalar("Status"), scalar("Enabled"),
			scalar("NoncurrentVersionExpiration"), {
				Kind: yaml.MappingNode,
				Content: []*yaml.Node{
					scalar("NoncurrentDays"), intScalar(retentionDays),
				},
			},
			scalar("AbortIncompleteMultipartUpload"), {
				Kind: yaml.MappingNode,
				Content: []*yaml.Node{
					scalar("DaysAfterInitiation"), intScalar(abortMultipartDays),
				},
			},
		},
	}
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}

func intScalar(value int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.Itoa(value), Tag: "!!int"}
}
