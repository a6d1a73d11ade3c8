package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONTRACT_MODEL_REGISTRY", "0x1111111111111111111111111111111111111111")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "5432", cfg.Database.Postgres.Port)
	assert.Equal(t, 50, cfg.Database.Postgres.MaxConnections)
	assert.Equal(t, uint64(58760240), cfg.Chain.StartBlock)
	assert.Equal(t, uint64(5), cfg.Chain.Confirmations)
	assert.Equal(t, 15*time.Second, cfg.Chain.PollInterval)
	assert.Equal(t, "https://gateway.pinata.cloud", cfg.IPFS.GatewayURL)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CONTRACT_SILENS", "0x2222222222222222222222222222222222222222")
	t.Setenv("CHAIN_START_BLOCK", "123456")
	t.Setenv("CHAIN_POLL_INTERVAL", "3s")
	t.Setenv("IPFS_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("POSTGRES_MAX_CONNECTIONS", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, uint64(123456), cfg.Chain.StartBlock)
	assert.Equal(t, 3*time.Second, cfg.Chain.PollInterval)
	assert.Equal(t, 2.5, cfg.IPFS.RequestsPerSecond)
	assert.Equal(t, 10, cfg.Database.Postgres.MaxConnections)
}

// LoadConfig accepts an empty contract set so tools that never touch the
// chain (such as the migrator) can run; chain.NewClient enforces addresses.
func TestLoadConfigAllowsEmptyContracts(t *testing.T) {
	for _, key := range []string{
		"CONTRACT_SILENS", "CONTRACT_MODEL_REGISTRY", "CONTRACT_PROPOSAL_VOTING",
		"CONTRACT_REPUTATION_SYSTEM", "CONTRACT_IDENTITY_REGISTRY",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Chain.Contracts.All())
}

func TestContractAddressesAll(t *testing.T) {
	c := ContractAddresses{
		Silens:        "0xaa",
		ModelRegistry: "0xbb",
	}
	assert.Equal(t, []string{"0xaa", "0xbb"}, c.All())

	assert.Empty(t, ContractAddresses{}.All())
}

func TestGetEnvAsIntInvalid(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}
