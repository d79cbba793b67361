package artifact_source

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/dnscache"
	typehelpers "github.com/turbot/go-kit/types"
	"github.com/turbot/tailpipe-s3-log-forwarder/config"
	"github.com/turbot/tailpipe-s3-log-forwarder/constants"
	"golang.org/x/sync/semaphore"
)

const defaultRegion = "us-east-1"

// AwsConnection holds the settings used to build the aws.Config shared by the S3 and CloudWatch Logs clients
type AwsConnection struct {
	Region                *string
	Profile               *string
	AccessKey             *string
	SecretKey             *string
	SessionToken          *string
	EndpointUrl           *string
	MaxErrorRetryAttempts *int
}

func NewAwsConnection(cfg *config.Config) *AwsConnection {
	return &AwsConnection{
		Region:                cfg.Region,
		Profile:               cfg.Profile,
		AccessKey:             cfg.AccessKey,
		SecretKey:             cfg.SecretKey,
		SessionToken:          cfg.SessionToken,
		EndpointUrl:           cfg.EndpointUrl,
		MaxErrorRetryAttempts: cfg.MaxErrorRetryAttempts,
	}
}

func (c *AwsConnection) Validate() error {
	if c.AccessKey != nil && c.SecretKey == nil {
		return fmt.Errorf("access_key set without secret_key")
	}

	if c.AccessKey == nil && c.SecretKey != nil {
		return fmt.Errorf("secret_key set without access_key")
	}

	if c.AccessKey == nil && c.SessionToken != nil {
		return fmt.Errorf("session_token set without access_key")
	}

	if c.MaxErrorRetryAttempts != nil && *c.MaxErrorRetryAttempts < 1 {
		return fmt.Errorf("max_error_retry_attempts must be greater than or equal to 1")
	}

	return nil
}

// UsePathStyle is true when a custom endpoint is configured (S3 emulators do not support virtual hosted buckets)
func (c *AwsConnection) UsePathStyle() bool {
	return c.endpointUrl() != ""
}

func (c *AwsConnection) GetClientConfiguration(ctx context.Context) (aws.Config, error) {
	if err := c.Validate(); err != nil {
		return aws.Config{}, err
	}

	configOptions := c.loadOptions()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("error loading AWS config: %w", err)
	}

	// region from config wins, then the default chain (AWS_REGION in Lambda), then the fallback
	if c.Region != nil {
		cfg.Region = *c.Region
	} else if cfg.Region == "" {
		slog.Info("No region set, using default", "region", defaultRegion)
		cfg.Region = defaultRegion
	}

	maxAttempts := retry.DefaultMaxAttempts
	if c.MaxErrorRetryAttempts != nil {
		maxAttempts = *c.MaxErrorRetryAttempts
	}
	cfg.Retryer = func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxAttempts
			o.RateLimiter = NoOpRateLimit{}
		})
	}

	if endpointUrl := c.endpointUrl(); endpointUrl != "" {
		cfg.BaseEndpoint = aws.String(endpointUrl)
	}

	return cfg, nil
}

func (c *AwsConnection) loadOptions() []func(*awsconfig.LoadOptions) error {
	var configOptions []func(*awsconfig.LoadOptions) error

	if c.Profile != nil {
		configOptions = append(configOptions, awsconfig.WithSharedConfigProfile(aws.ToString(c.Profile)))
	}

	if c.AccessKey != nil && c.SecretKey != nil {
		provider := credentials.NewStaticCredentialsProvider(
			aws.ToString(c.AccessKey),
			aws.ToString(c.SecretKey),
			typehelpers.SafeString(c.SessionToken),
		)
		configOptions = append(configOptions, awsconfig.WithCredentialsProvider(provider))
	}

	configOptions = append(configOptions, awsconfig.WithHTTPClient(getSharedHTTPClient()))
	return configOptions
}

func (c *AwsConnection) endpointUrl() string {
	if c.EndpointUrl != nil {
		return strings.TrimSpace(*c.EndpointUrl)
	}
	return os.Getenv("AWS_ENDPOINT_URL")
}

var (
	sharedHTTPClient     aws.HTTPClient
	sharedHTTPClientOnce sync.Once
)

// a single HTTP client shared by every AWS client in the process, so warm
// Lambda invocations reuse connections and cached DNS lookups
func getSharedHTTPClient() aws.HTTPClient {
	sharedHTTPClientOnce.Do(func() {
		sharedHTTPClient = initializeHTTPClient()
	})
	return sharedHTTPClient
}

func initializeHTTPClient() aws.HTTPClient {
	// limit on concurrent DNS lookups
	dnsLookupMaxParallel := readEnvVarToInt(constants.EnvDNSLookupMaxParallel, 25)
	// 0 disables refresh, -1 disables the cache
	dnsCacheRefreshIntervalSecs := readEnvVarToInt(constants.EnvDNSCacheRefreshIntervalSecs, 300)
	// 0 means no limit (the AWS SDK default)
	httpTransportMaxConnsPerHost := readEnvVarToInt(constants.EnvHTTPTransportMaxConnsPerHost, 100)

	client := awshttp.NewBuildableClient()

	if httpTransportMaxConnsPerHost > 0 {
		client = client.WithTransportOptions(func(tr *http.Transport) {
			tr.MaxConnsPerHost = httpTransportMaxConnsPerHost
		})
	}

	if dnsCacheRefreshIntervalSecs < 0 {
		return client
	}

	resolver := &dnscache.Resolver{}
	if dnsCacheRefreshIntervalSecs > 0 {
		go func() {
			t := time.NewTicker(time.Duration(dnsCacheRefreshIntervalSecs) * time.Second)
			defer t.Stop()
			for range t.C {
				resolver.Refresh(true)
			}
		}()
	}

	sem := semaphore.NewWeighted(int64(dnsLookupMaxParallel))
	dialer := client.GetDialer()

	return client.WithTransportOptions(func(tr *http.Transport) {
		tr.DialContext = func(ctx context.Context, network string, addr string) (conn net.Conn, err error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}

			if err := sem.Acquire(ctx, 1); err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			sem.Release(1)
			if err != nil {
				return nil, err
			}
			if len(ips) == 0 {
				return nil, fmt.Errorf("no addresses found for host %s", host)
			}

			// try each address until one connects
			for _, ip := range ips {
				conn, err = dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
				if err == nil {
					break
				}
			}
			return
		}
	})
}

func readEnvVarToInt(name string, defaultVal int) int {
	val := defaultVal
	envValue := os.Getenv(name)
	if envValue != "" {
		i, err := strconv.Atoi(envValue)
		if err == nil {
			val = i
		}
	}
	return val
}

// NoOpRateLimit disables the client side retry token bucket https://github.com/aws/aws-sdk-go-v2/issues/543
type NoOpRateLimit struct{}

func (NoOpRateLimit) AddTokens(uint) error { return nil }
func (NoOpRateLimit) GetToken(context.Context, uint) (func() error, error) {
	return noOpToken, nil
}
func noOpToken() error { return nil }
