package handlers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/envforge/envforge/internal/compose"
	"github.com/envforge/envforge/internal/config"
	"github.com/envforge/envforge/internal/monitor"
	"github.com/envforge/envforge/internal/pipeline"
	"github.com/envforge/envforge/internal/platform/awsconf"
	"github.com/envforge/envforge/internal/platform/cloudformation"
	"github.com/envforge/envforge/internal/platform/notify"
	"github.com/envforge/envforge/internal/platform/s3"
)

// Factory function variables for deploy - can be replaced in tests.
var (
	loadAWSConfig = awsconf.Load

	newPublisher = func(awsCfg aws.Config, cfg *config.Config) compose.Publisher {
		client := s3.NewClient(awsCfg)
		return s3.NewPublisher(client, cfg.Environment.Bucket, cfg.Environment.TemplatePrefix)
	}

	newTransport = func(awsCfg aws.Config) monitor.Transport {
		return notify.NewTransport(awsCfg)
	}

	newSubmitter = func(awsCfg aws.Config) pipeline.Submitter {
		return cloudformation.NewSubmitter(awsCfg)
	}
)

// Deploy handles the deploy command. It publishes the composed template
// tree to the configured bucket, submits the root stack with a run-scoped
// notification channel attached, and watches status events until the stack
// reaches a terminal state.
func Deploy(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	awsCfg, err := loadAWSConfig(ctx, awsconf.Options{
		Region:          cfg.AWS.Region,
		Profile:         cfg.AWS.Profile,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
	})
	if err != nil {
		return err
	}

	pctx := pipeline.NewContext(ctx, cfg, newPublisher(awsCfg, cfg), nil)
	pctx.Submitter = newSubmitter(awsCfg)
	pctx.Transport = newTransport(awsCfg)

	if err := pipeline.RunPhases(pctx, pipeline.DeployPhases()); err != nil {
		return err
	}

	fmt.Printf("\nDeployment complete.\n")
	fmt.Printf("  stack:    %s\n", pctx.State.StackID)
	fmt.Printf("  template: %s\n", pctx.State.RootLocation)
	return nil
}
