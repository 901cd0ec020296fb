package lzacdkutil

import (
	"fmt"

	"github.com/aws/constructs-go/constructs/v10"
	"github.com/iancoleman/strcase"
)

// Casing specifies how to format the identifier string.
type Casing int

const (
	// CasingCamel formats as CamelCase (e.g., "LzaPipelineKey").
	CasingCamel Casing = iota
	// CasingLowerCamel formats as lowerCamelCase (e.g., "lzaPipelineKey").
	CasingLowerCamel
	// CasingSnake formats as snake_case (e.g., "lza_pipeline_key").
	CasingSnake
	// CasingScreamingSnake formats as SCREAMING_SNAKE_CASE (e.g., "LZA_PIPELINE_KEY").
	CasingScreamingSnake
	// CasingKebab formats as kebab-case (e.g., "lza-pipeline-key").
	CasingKebab
	// CasingScreamingKebab formats as SCREAMING-KEBAB-CASE (e.g., "LZA-PIPELINE-KEY").
	CasingScreamingKebab
)

// ResourceName generates a resource identifier prefixed with the
// installation's resource prefix. The label is a free-form string that the
// caller provides.
//
// The format is: "{prefix}-{label}" converted to the specified casing.
//
// Examples with prefix "Lza" and label "PipelineKey":
//   - CasingCamel:          "LzaPipelineKey"
//   - CasingLowerCamel:     "lzaPipelineKey"
//   - CasingSnake:          "lza_pipeline_key"
//   - CasingScreamingSnake: "LZA_PIPELINE_KEY"
//   - CasingKebab:          "lza-pipeline-key"
//   - CasingScreamingKebab: "LZA-PIPELINE-KEY"
func ResourceName(scope constructs.Construct, label string, casing Casing) string {
	base := fmt.Sprintf("%s-%s", ResourcePrefix(scope), label)
	return applyCasing(base, casing)
}

// QualifiedName is ResourceName with the qualifier instead of the resource
// prefix, for names that must stay unique across parallel installations.
func QualifiedName(scope constructs.Construct, label string, casing Casing) string {
	base := fmt.Sprintf("%s-%s", Qualifier(scope), label)
	return applyCasing(base, casing)
}

func applyCasing(s string, casing Casing) string {
	switch casing {
	case CasingCamel:
		return strcase.ToCamel(s)
	case CasingLowerCamel:
		return strcase.ToLowerCamel(s)
	case CasingSnake:
		return strcase.ToSnake(s)
	case CasingScreamingSnake:
		return strcase.ToScreamingSnake(s)
	case CasingKebab:
		return strcase.ToKebab(s)
	case CasingScreamingKebab:
		return strcase.ToScreamingKebab(s)
	default:
		return strcase.ToCamel(s)
	}
}
