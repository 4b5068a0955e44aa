package config

import (
	"flag"
	"os"
	"sync"
)

const (
	defaultServerAddr     = ":8080"
	defaultDatabaseDSN    = ""
	defaultGatewayBaseURL = "https://dev-vanilla.edviron.com/erp"
	defaultAppBaseURL     = "http://localhost:8080/"
	defaultFrontendURL    = "http://localhost:3000"
	defaultLogLevel       = "debug"
)

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	GatewayBaseURL string
	GatewaySignKey string
	GatewayAPIKey  string
	SchoolID       string
	AppBaseURL     string
	FrontendURL    string
	AuthTokenKey   string
	LogLevel       string
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddr, "server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "database DSN")
		flag.StringVar(&cfg.GatewayBaseURL, "g", defaultGatewayBaseURL, "payment gateway base URL")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

		flag.Parse()

		// if environment variable is set, then using it
		if addrEnv := os.Getenv("RUN_ADDRESS"); addrEnv != "" {
			cfg.ServerAddr = addrEnv
		}
		if dsnEnv := os.Getenv("DATABASE_URI"); dsnEnv != "" {
			cfg.DatabaseDSN = dsnEnv
		}
		if gwEnv := os.Getenv("EDVIRON_API_BASE"); gwEnv != "" {
			cfg.GatewayBaseURL = gwEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}

		cfg.GatewaySignKey = os.Getenv("PG_KEY")
		cfg.GatewayAPIKey = os.Getenv("PG_API_KEY")
		cfg.SchoolID = os.Getenv("SCHOOL_ID")
		cfg.AuthTokenKey = os.Getenv("AUTH_TOKEN_KEY")

		cfg.AppBaseURL = defaultAppBaseURL
		if appURLEnv := os.Getenv("APP_URL"); appURLEnv != "" {
			cfg.AppBaseURL = appURLEnv
		}
		cfg.FrontendURL = defaultFrontendURL
		if frontURLEnv := os.Getenv("FRONTEND_URL"); frontURLEnv != "" {
			cfg.FrontendURL = frontURLEnv
		}

		singleton = &cfg
	})

	return singleton, nil
}
