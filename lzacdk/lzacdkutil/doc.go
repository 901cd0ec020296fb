// Package lzacdkutil provides shared utilities for the accelerator's CDK
// applications.
//
// # Quick Start
//
// Read and validate install-time parameters once, then store them in the
// construct tree for the rest of the synthesis:
//
//	func main() {
//	    defer jsii.Close()
//	    app := awscdk.NewApp(nil)
//
//	    cfg, err := lzacdkutil.NewConfig(app)
//	    if err != nil {
//	        panic(err)
//	    }
//	    lzacdkutil.StoreConfig(app, cfg)
//
//	    // build stacks; constructs deep in the tree use the scope-based
//	    // accessors (lzacdkutil.Qualifier, lzacdkutil.Partition, ...)
//
//	    app.Synth(nil)
//	}
//
// # CDK Context Configuration
//
// All install-time parameters live in CDK context (cdk.json) under the
// "lza-" prefix:
//
//	{
//	  "lza-qualifier": "accel",
//	  "lza-resource-prefix": "AWSAccelerator",
//	  "lza-partition": "aws",
//	  "lza-home-region": "us-east-1",
//	  "lza-enabled-regions": ["us-east-1", "us-west-2"],
//	  "lza-source-repository-name": "landing-zone-accelerator",
//	  "lza-source-branch-name": "main",
//	  "lza-config-repository-name": "lza-config",
//	  "lza-config-branch-name": "main",
//	  "lza-config-directory": "config",
//	  "lza-enable-approval-stage": true,
//	  "lza-approval-notify-emails": ["approvers@example.com"],
//	  "lza-notify-emails": ["pipeline@example.com"],
//	  "lza-single-account-mode": false
//	}
//
// # Stack Naming
//
// Stage stacks are named "{prefix}-{Stage}Stack-{account}-{region}" so the
// toolkit can target one stage's stacks with a prefix match. The pipeline
// stack is "{prefix}-PipelineStack".
package lzacdkutil
