package cdk

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/cloudformationinclude"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"
	"github.com/landingzonehq/lza/lzacfg"
)

// customizationsDir is the configuration subdirectory holding raw
// CloudFormation templates to deploy after the baseline.
const customizationsDir = "cloudformation"

// newCustomizationsStage includes every CloudFormation template from the
// configuration's cloudformation directory into the stack. Template
// resources keep their logical ids, so existing stacks can be adopted
// without replacement.
func newCustomizationsStage(stack awscdk.Stack, set *lzacfg.Set, target StageTarget) {
	dir := filepath.Join(set.Dir, customizationsDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		panic(errors.Wrap(err, "reading customization templates"))
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		id := strcase.ToCamel(strings.TrimSuffix(entry.Name(), ext))
		cloudformationinclude.NewCfnInclude(stack, jsii.String(id), &cloudformationinclude.CfnIncludeProps{
			TemplateFile: jsii.String(filepath.Join(dir, entry.Name())),
		})
	}
}
