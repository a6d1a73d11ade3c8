// Package config provides configuration management for the Silens indexer.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Chain    ChainConfig
	IPFS     IPFSConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// ClickHouseConfig holds ClickHouse configuration for the event archive
type ClickHouseConfig struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// ChainConfig holds the EVM chain connection and contract configuration.
// Contract addresses and the start block are deployment facts, not logic.
type ChainConfig struct {
	RPCPrimary       string
	RPCSecondary     string
	PollInterval     time.Duration
	StartBlock       uint64
	Confirmations    uint64 // blocks behind head considered final
	MaxBlocksPerPoll int

	Contracts ContractAddresses
}

// ContractAddresses holds the five event-source contract addresses.
// Silens is the legacy combined contract (first deployment generation); the
// other four are the split registries that replaced it.
type ContractAddresses struct {
	Silens           string
	ModelRegistry    string
	ProposalVoting   string
	ReputationSystem string
	IdentityRegistry string
}

// All returns the configured, non-empty contract addresses.
func (c ContractAddresses) All() []string {
	var out []string
	for _, addr := range []string{c.Silens, c.ModelRegistry, c.ProposalVoting, c.ReputationSystem, c.IdentityRegistry} {
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// IPFSConfig holds the metadata gateway configuration
type IPFSConfig struct {
	GatewayURL        string
	FetchTimeout      time.Duration
	RequestsPerSecond float64
	MaxConcurrent     int
}

// CacheConfig holds read-API cache configuration
type CacheConfig struct {
	TTL time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "silens"),
				User:           getEnv("POSTGRES_USER", "silens"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 50),
			},
			ClickHouse: ClickHouseConfig{
				Host:     getEnv("CLICKHOUSE_HOST", "localhost"),
				Port:     getEnv("CLICKHOUSE_PORT", "9000"),
				Database: getEnv("CLICKHOUSE_DB", "silens"),
				User:     getEnv("CLICKHOUSE_USER", "default"),
				Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
			},
		},
		Chain: ChainConfig{
			RPCPrimary:       getEnv("CHAIN_RPC_PRIMARY", "https://bsc-testnet-rpc.publicnode.com"),
			RPCSecondary:     getEnv("CHAIN_RPC_SECONDARY", ""),
			PollInterval:     getEnvAsDuration("CHAIN_POLL_INTERVAL", 15*time.Second),
			StartBlock:       getEnvAsUint64("CHAIN_START_BLOCK", 58760240),
			Confirmations:    getEnvAsUint64("CHAIN_CONFIRMATIONS", 5),
			MaxBlocksPerPoll: getEnvAsInt("CHAIN_MAX_BLOCKS_PER_POLL", 200),
			Contracts: ContractAddresses{
				Silens:           getEnv("CONTRACT_SILENS", ""),
				ModelRegistry:    getEnv("CONTRACT_MODEL_REGISTRY", ""),
				ProposalVoting:   getEnv("CONTRACT_PROPOSAL_VOTING", ""),
				ReputationSystem: getEnv("CONTRACT_REPUTATION_SYSTEM", ""),
				IdentityRegistry: getEnv("CONTRACT_IDENTITY_REGISTRY", ""),
			},
		},
		IPFS: IPFSConfig{
			GatewayURL:        getEnv("IPFS_GATEWAY_URL", "https://gateway.pinata.cloud"),
			FetchTimeout:      getEnvAsDuration("IPFS_FETCH_TIMEOUT", 10*time.Second),
			RequestsPerSecond: getEnvAsFloat("IPFS_REQUESTS_PER_SECOND", 10),
			MaxConcurrent:     getEnvAsInt("IPFS_MAX_CONCURRENT", 8),
		},
		Cache: CacheConfig{
			TTL: getEnvAsDuration("CACHE_TTL", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsUint64 gets an environment variable as a uint64 with a default value
func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float64 with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
