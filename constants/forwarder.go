package constants

const (
	// DefaultLogGroupName is used when no log group is configured
	DefaultLogGroupName = "ALB-access-log"
	// LogStreamDateFormat is the layout of the daily log stream name (YYYY-MM-DD)
	LogStreamDateFormat = "2006-01-02"

	FunctionName = "s3-log-forwarder"
)

// environment variables
const (
	// EnvPrefix is prepended to the environment variable of every config attribute except log_group_name
	EnvPrefix = "FORWARDER_"
	// EnvLogGroupName is the unprefixed setting the forwarder has always read
	EnvLogGroupName = "LOG_GROUP_NAME"

	EnvConfigFile = "FORWARDER_CONFIG_FILE"
	EnvLogLevel   = "FORWARDER_LOG_LEVEL"

	EnvDNSLookupMaxParallel         = "FORWARDER_AWS_DNS_LOOKUP_MAX_PARALLEL"
	EnvDNSCacheRefreshIntervalSecs  = "FORWARDER_AWS_DNS_CACHE_REFRESH_INTERVAL_SECS"
	EnvHTTPTransportMaxConnsPerHost = "FORWARDER_AWS_HTTP_TRANSPORT_MAX_CONNS_PER_HOST"
)

// CloudWatch Logs PutLogEvents limits
const (
	MaxEventsPerCall = 10000
	MaxBytesPerCall  = 1048576
)
