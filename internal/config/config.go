package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/stackflow-labs/eligibility-engine/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// EthereumConfig holds chain access configuration
type EthereumConfig struct {
	RPCURL               string        `mapstructure:"rpc_url"`
	LockerFactoryAddress string        `mapstructure:"locker_factory_address"`
	CallTimeout          time.Duration `mapstructure:"call_timeout"`
	TotalUnitsCacheTTL   time.Duration `mapstructure:"total_units_cache_ttl"`
	LockerCacheTTL       time.Duration `mapstructure:"locker_cache_ttl"`
}

// StackConfig holds the allocation ledger (Stack) API configuration.
// ReadAPIKey and WriteAPIKey are the two shared service-wide credentials;
// allocation reads never use the write key and grants never use the read key.
type StackConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	ReadAPIKey     string        `mapstructure:"read_api_key"`
	WriteAPIKey    string        `mapstructure:"write_api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// IndexerConfig holds the bulk locker-discovery indexing service configuration
type IndexerConfig struct {
	URL            string        `mapstructure:"url"`
	PageSize       int           `mapstructure:"page_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// PointSystemConfig describes one configured point system. FlowRate is a
// decimal string because values exceed the 63-bit range.
type PointSystemConfig struct {
	ID          int    `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	PoolAddress string `mapstructure:"pool_address"`
	FlowRate    string `mapstructure:"flow_rate"`
}

// AutoAssignConfig holds the auto-assignment (bonus grant) policy parameters
type AutoAssignConfig struct {
	PrimaryPointSystemID int           `mapstructure:"primary_point_system_id"`
	PointThreshold       int64         `mapstructure:"point_threshold"`
	PointsToAssign       int64         `mapstructure:"points_to_assign"`
	MaxUsersPerWindow    int           `mapstructure:"max_users_per_window"`
	WindowPeriod         time.Duration `mapstructure:"window_period"`
	EventLabel           string        `mapstructure:"event_label"`
	Concurrency          int           `mapstructure:"concurrency"`
}

// LedgerConfig holds the recipient ledger persistence configuration
type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

// APIConfig holds configuration for the eligibility API service
type APIConfig struct {
	BaseConfig   `mapstructure:",squash"`
	Server       ServerConfig        `mapstructure:"server"`
	Auth         AuthConfig          `mapstructure:"auth"`
	Ethereum     EthereumConfig      `mapstructure:"ethereum"`
	Stack        StackConfig         `mapstructure:"stack"`
	Indexer      IndexerConfig       `mapstructure:"indexer"`
	AutoAssign   AutoAssignConfig    `mapstructure:"auto_assign"`
	Ledger       LedgerConfig        `mapstructure:"ledger"`
	PointSystems []PointSystemConfig `mapstructure:"point_systems"`
}

// LoadAPIConfig loads configuration for the eligibility API service
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("ethereum.call_timeout", "15s")
	v.SetDefault("ethereum.total_units_cache_ttl", "1h")
	v.SetDefault("ethereum.locker_cache_ttl", "12h")
	v.SetDefault("stack.request_timeout", "30s")
	v.SetDefault("indexer.page_size", 100)
	v.SetDefault("indexer.request_timeout", "30s")
	v.SetDefault("auto_assign.point_threshold", 99)
	v.SetDefault("auto_assign.points_to_assign", 50)
	v.SetDefault("auto_assign.max_users_per_window", 50)
	v.SetDefault("auto_assign.window_period", "1h")
	v.SetDefault("auto_assign.event_label", "new_user_bonus")
	v.SetDefault("auto_assign.concurrency", 10)
	v.SetDefault("ledger.path", "data/recipients.json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that all required credentials and addresses are present.
// A service refusing to start beats one running with a missing credential.
func (c *APIConfig) Validate() error {
	if c.Ethereum.RPCURL == "" {
		return errors.New("ethereum.rpc_url is required")
	}
	if c.Ethereum.LockerFactoryAddress == "" {
		return errors.New("ethereum.locker_factory_address is required")
	}
	if c.Stack.BaseURL == "" {
		return errors.New("stack.base_url is required")
	}
	if c.Stack.ReadAPIKey == "" {
		return errors.New("stack.read_api_key is required")
	}
	if c.Stack.WriteAPIKey == "" {
		return errors.New("stack.write_api_key is required")
	}
	if len(c.PointSystems) == 0 {
		return errors.New("at least one point system must be configured")
	}

	seen := make(map[int]bool, len(c.PointSystems))
	primaryFound := false
	for _, ps := range c.PointSystems {
		if ps.PoolAddress == "" {
			return fmt.Errorf("point system %d is missing pool_address", ps.ID)
		}
		if _, ok := new(big.Int).SetString(ps.FlowRate, 10); ps.FlowRate != "" && !ok {
			return fmt.Errorf("point system %d has invalid flow_rate %q", ps.ID, ps.FlowRate)
		}
		if seen[ps.ID] {
			return fmt.Errorf("duplicate point system id %d", ps.ID)
		}
		seen[ps.ID] = true
		if ps.ID == c.AutoAssign.PrimaryPointSystemID {
			primaryFound = true
		}
	}
	if c.AutoAssign.PrimaryPointSystemID != 0 && !primaryFound {
		return fmt.Errorf("primary point system %d is not among the configured point systems", c.AutoAssign.PrimaryPointSystemID)
	}

	return nil
}

// DomainPointSystems converts the configured point systems into domain
// records, parsing flow rates into arbitrary-precision integers
func (c *APIConfig) DomainPointSystems() []domain.PointSystem {
	systems := make([]domain.PointSystem, 0, len(c.PointSystems))
	for _, ps := range c.PointSystems {
		flowRate := new(big.Int)
		if ps.FlowRate != "" {
			flowRate.SetString(ps.FlowRate, 10)
		}
		systems = append(systems, domain.PointSystem{
			ID:          ps.ID,
			Name:        ps.Name,
			PoolAddress: ps.PoolAddress,
			FlowRate:    domain.NewBigInt(flowRate),
			TotalUnits:  big.NewInt(0),
		})
	}
	return systems
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("ELIGIBILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.locker_factory_address",
		"ethereum.call_timeout",
		"ethereum.total_units_cache_ttl",
		"ethereum.locker_cache_ttl",
		// Stack
		"stack.base_url",
		"stack.read_api_key",
		"stack.write_api_key",
		"stack.request_timeout",
		// Indexer
		"indexer.url",
		"indexer.page_size",
		"indexer.request_timeout",
		// Auto-assignment policy
		"auto_assign.primary_point_system_id",
		"auto_assign.point_threshold",
		"auto_assign.points_to_assign",
		"auto_assign.max_users_per_window",
		"auto_assign.window_period",
		"auto_assign.event_label",
		"auto_assign.concurrency",
		// Ledger
		"ledger.path",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}
