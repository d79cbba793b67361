package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
	"github.com/turbot/tailpipe-s3-log-forwarder/artifact_source"
)

func lambdaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as the Lambda handler for S3 object created notifications",
		Args:  cobra.NoArgs,
		RunE:  runLambdaCmd,
	}
}

// runLambdaCmd creates the clients once per process; they are reused by every invocation
func runLambdaCmd(cmd *cobra.Command, _ []string) error {
	cfg, conn, awsCfg, err := loadAws(cmd.Context())
	if err != nil {
		return err
	}

	source := artifact_source.NewAwsS3BucketSourceFromConfig(awsCfg, conn)
	p := newPipeline(cfg, awsCfg, conn, source)

	// does not return
	lambda.Start(p.Handle)
	return nil
}
