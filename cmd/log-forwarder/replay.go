package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/turbot/tailpipe-s3-log-forwarder/artifact_source"
)

type replayOptions struct {
	logGroup        string
	gcpCredentials  string
	gcpQuotaProject string
}

func replayCmd() *cobra.Command {
	opts := &replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay <s3://bucket/key | gs://bucket/key>",
		Short: "Forward a single object now, as if a notification had been received for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplayCmd(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.logGroup, "log-group", "", "Log group to publish to (overrides log_group_name)")
	cmd.Flags().StringVar(&opts.gcpCredentials, "gcp-credentials", "", "Path to, or contents of, GCP service account credentials")
	cmd.Flags().StringVar(&opts.gcpQuotaProject, "gcp-quota-project", "", "GCP quota project")

	return cmd
}

func runReplayCmd(cmd *cobra.Command, objectUrl string, opts *replayOptions) error {
	ctx := cmd.Context()

	scheme, ref, err := artifact_source.ParseObjectURL(objectUrl)
	if err != nil {
		return err
	}

	cfg, conn, awsCfg, err := loadAws(ctx)
	if err != nil {
		return err
	}
	if opts.logGroup != "" {
		cfg.LogGroupName = opts.logGroup
	}

	var source artifact_source.ObjectSource
	switch scheme {
	case artifact_source.SchemeGCS:
		gcs, err := artifact_source.NewGcpStorageBucketSource(ctx, opts.gcpConnection())
		if err != nil {
			return err
		}
		defer gcs.Close()
		source = gcs
	default:
		source = artifact_source.NewAwsS3BucketSourceFromConfig(awsCfg, conn)
	}

	summary, err := newPipeline(cfg, awsCfg, conn, source).Process(ctx, ref)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "published %d lines from %s://%s to %s in %d calls\n",
		summary.Result.Delivered, scheme, summary.Object, summary.Destination, summary.Result.Calls)
	return nil
}

func (o *replayOptions) gcpConnection() *artifact_source.GcpConnection {
	conn := &artifact_source.GcpConnection{}
	if o.gcpCredentials != "" {
		conn.Credentials = &o.gcpCredentials
	}
	if o.gcpQuotaProject != "" {
		conn.QuotaProject = &o.gcpQuotaProject
	}
	return conn
}
