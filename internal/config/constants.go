package config

// Default configuration values
const (
	DefaultPort        = 8080
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultEnvironment = "dev"
	DefaultVersion     = "dev"

	DefaultDBUser     = "postgres"
	DefaultDBPassword = "postgres"
	DefaultDBHost     = "localhost"
	DefaultDBPort     = "5432"
	DefaultDBName     = "pkbattle"
	DefaultDBMaxConns = 10
	DefaultDBMinConns = 2

	DefaultRedisAddr              = "localhost:6379"
	DefaultBroadcastChannelPrefix = "stream"

	DefaultSweepIntervalSeconds = 60
)
