package main

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/spf13/cobra"
	"github.com/turbot/tailpipe-s3-log-forwarder/artifact_source"
	"github.com/turbot/tailpipe-s3-log-forwarder/config"
	"github.com/turbot/tailpipe-s3-log-forwarder/constants"
	"github.com/turbot/tailpipe-s3-log-forwarder/log_destination"
	"github.com/turbot/tailpipe-s3-log-forwarder/log_publisher"
	"github.com/turbot/tailpipe-s3-log-forwarder/pipeline"
	"github.com/turbot/tailpipe-s3-log-forwarder/rate_limiter"
)

var exitCode int

// Build the cobra command that handles our command line tool.
// With no subcommand the binary runs as the Lambda handler, which is how the runtime starts it
func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          constants.FunctionName + " [command]",
		Short:        "Forward gzip access logs from object storage to CloudWatch Logs",
		SilenceUsage: true,
		RunE:         runLambdaCmd,
	}

	rootCmd.AddCommand(
		lambdaCmd(),
		replayCmd(),
	)

	return rootCmd
}

func Execute() int {
	rootCmd := rootCommand()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		exitCode = 1
	}
	return exitCode
}

// newPipeline builds the CloudWatch Logs side of the pipeline around the given object source
func newPipeline(cfg *config.Config, awsCfg aws.Config, conn *artifact_source.AwsConnection, source artifact_source.ObjectSource) *pipeline.Pipeline {
	logsClient := cloudwatchlogs.NewFromConfig(awsCfg)

	publisherOpts := []log_publisher.PublisherOption{
		log_publisher.WithBatchPolicy(log_publisher.BatchPolicy{
			MaxEvents: cfg.BatchSize,
			MaxBytes:  cfg.BatchBytes,
		}),
	}
	if def := rate_limiter.NewPublishDefinition(cfg.PublishRateLimit); def != nil {
		slog.Debug("publish rate limit enabled", "limiter", def.String())
		publisherOpts = append(publisherOpts, log_publisher.WithLimiter(rate_limiter.NewAPILimiter(def)))
	}

	slog.Debug("pipeline configured",
		"source", source.Identifier(),
		"log_group", cfg.LogGroupName,
		"path_style", conn.UsePathStyle(),
		"batch_size", cfg.BatchSize)

	return pipeline.New(
		source,
		log_destination.NewResolver(logsClient),
		log_publisher.NewPublisher(logsClient, publisherOpts...),
		cfg.LogGroupName,
	)
}

// loadAws loads the config and the aws client configuration shared by every command
func loadAws(ctx context.Context) (*config.Config, *artifact_source.AwsConnection, aws.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, aws.Config{}, err
	}
	conn := artifact_source.NewAwsConnection(cfg)
	awsCfg, err := conn.GetClientConfiguration(ctx)
	if err != nil {
		return nil, nil, aws.Config{}, err
	}
	return cfg, conn, awsCfg, nil
}
