package artifact_source

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbot/tailpipe-s3-log-forwarder/config"
)

func TestAwsConnection_Validate(t *testing.T) {
	zero := 0
	tests := []struct {
		name    string
		conn    AwsConnection
		wantErr bool
	}{
		{
			name: "empty",
			conn: AwsConnection{},
		},
		{
			name: "static credentials",
			conn: AwsConnection{AccessKey: aws.String("AKIA"), SecretKey: aws.String("secret")},
		},
		{
			name:    "access key only",
			conn:    AwsConnection{AccessKey: aws.String("AKIA")},
			wantErr: true,
		},
		{
			name:    "secret key only",
			conn:    AwsConnection{SecretKey: aws.String("secret")},
			wantErr: true,
		},
		{
			name:    "session token without access key",
			conn:    AwsConnection{SessionToken: aws.String("token")},
			wantErr: true,
		},
		{
			name: "session credentials",
			conn: AwsConnection{AccessKey: aws.String("ASIA"), SecretKey: aws.String("secret"), SessionToken: aws.String("token")},
		},
		{
			name:    "zero retry attempts",
			conn:    AwsConnection{MaxErrorRetryAttempts: &zero},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conn.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAwsConnection_GetClientConfiguration(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_ENDPOINT_URL", "")
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent/credentials")
	t.Setenv("AWS_PROFILE", "")

	attempts := 5
	conn := NewAwsConnection(&config.Config{
		Region:                aws.String("ap-northeast-1"),
		AccessKey:             aws.String("AKIAEXAMPLE"),
		SecretKey:             aws.String("secret"),
		EndpointUrl:           aws.String("http://localhost:4566"),
		MaxErrorRetryAttempts: &attempts,
	})

	cfg, err := conn.GetClientConfiguration(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ap-northeast-1", cfg.Region)
	require.NotNil(t, cfg.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *cfg.BaseEndpoint)
	assert.True(t, conn.UsePathStyle())

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIAEXAMPLE", creds.AccessKeyID)

	require.NotNil(t, cfg.Retryer)
	assert.Equal(t, 5, cfg.Retryer().MaxAttempts())
}

func TestAwsConnection_DefaultRegion(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_ENDPOINT_URL", "")
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent/credentials")
	t.Setenv("AWS_PROFILE", "")

	conn := &AwsConnection{}
	cfg, err := conn.GetClientConfiguration(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Nil(t, cfg.BaseEndpoint)
	assert.False(t, conn.UsePathStyle())
}
