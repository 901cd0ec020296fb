// Package lzacfg loads and validates the six accelerator configuration
// documents.
//
// A configuration directory holds one YAML file per document:
//
//	global-config.yaml
//	accounts-config.yaml
//	iam-config.yaml
//	network-config.yaml
//	organization-config.yaml
//	security-config.yaml
//
// [Load] reads all six strictly (unknown keys are errors), resolving
// {{placeholder}} values first, and [Set.Validate] checks struct rules plus
// the cross-document references (delegated administrators, logging account,
// organizational units). Validation failures abort synthesis; no partial
// configuration is ever returned.
package lzacfg
