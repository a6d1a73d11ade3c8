package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silens-indexer/internal/config"
)

// Address validation lives here rather than in config loading so chain-free
// tools can start without contract env vars.
func TestNewClientRequiresContracts(t *testing.T) {
	_, err := NewClient(&config.ChainConfig{RPCPrimary: "http://localhost:8545"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no contract addresses configured")
}
