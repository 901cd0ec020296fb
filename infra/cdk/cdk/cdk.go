package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"

	"github.com/landingzonehq/lza/infra/cdk"
)

func main() {
	defer jsii.Close()
	app := awscdk.NewApp(nil)

	cdk.Setup(app)

	app.Synth(nil)
}
