package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/silens-indexer/internal/circuitbreaker"
	"github.com/silens-indexer/internal/config"
	"github.com/silens-indexer/internal/logging"
)

// Client wraps ethclient with an optional fallback endpoint. Every call
// tries the primary first and falls through to the secondary on error. A
// circuit breaker on the primary routes calls straight to the fallback while
// the primary is down, instead of paying a failed call every poll.
type Client struct {
	primary        *ethclient.Client
	secondary      *ethclient.Client
	primaryBreaker *circuitbreaker.Breaker
	addresses      []common.Address
	log            *logging.Logger
}

// NewClient dials the configured RPC endpoints
func NewClient(cfg *config.ChainConfig) (*Client, error) {
	if len(cfg.Contracts.All()) == 0 {
		return nil, fmt.Errorf("no contract addresses configured")
	}

	primary, err := ethclient.Dial(cfg.RPCPrimary)
	if err != nil {
		return nil, fmt.Errorf("failed to dial primary RPC: %w", err)
	}

	var secondary *ethclient.Client
	var breaker *circuitbreaker.Breaker
	if cfg.RPCSecondary != "" {
		secondary, err = ethclient.Dial(cfg.RPCSecondary)
		if err != nil {
			return nil, fmt.Errorf("failed to dial secondary RPC: %w", err)
		}
		breaker = circuitbreaker.New("primary-rpc", 5, 2*time.Minute)
	}

	addresses := make([]common.Address, 0, 5)
	for _, addr := range cfg.Contracts.All() {
		addresses = append(addresses, common.HexToAddress(addr))
	}

	return &Client{
		primary:        primary,
		secondary:      secondary,
		primaryBreaker: breaker,
		addresses:      addresses,
		log:            logging.WithComponent("chain-client"),
	}, nil
}

// tryPrimary reports whether the next call should go to the primary. Without
// a fallback the primary is always tried; the breaker never blocks the only
// endpoint.
func (c *Client) tryPrimary() bool {
	return c.primaryBreaker == nil || c.primaryBreaker.Allow()
}

func (c *Client) recordPrimary(err error) {
	if c.primaryBreaker != nil {
		c.primaryBreaker.Record(err)
	}
}

// Close releases both RPC connections
func (c *Client) Close() {
	c.primary.Close()
	if c.secondary != nil {
		c.secondary.Close()
	}
}

// LatestBlock returns the current head block number
func (c *Client) LatestBlock(ctx context.Context) (uint64, error) {
	if c.tryPrimary() {
		n, err := c.primary.BlockNumber(ctx)
		c.recordPrimary(err)
		if err == nil {
			return n, nil
		}
		if c.secondary == nil {
			return 0, fmt.Errorf("failed to get latest block: %w", err)
		}
		c.log.WithError(err).Warn("primary RPC failed, falling back")
	}

	n, err := c.secondary.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block from fallback: %w", err)
	}
	return n, nil
}

// FilterLogs fetches logs from the configured contracts for a block range,
// inclusive on both ends
func (c *Client) FilterLogs(ctx context.Context, from, to uint64) ([]ethtypes.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: c.addresses,
	}

	if c.tryPrimary() {
		logs, err := c.primary.FilterLogs(ctx, query)
		c.recordPrimary(err)
		if err == nil {
			return logs, nil
		}
		if c.secondary == nil {
			return nil, fmt.Errorf("failed to filter logs: %w", err)
		}
		c.log.WithError(err).Warn("primary RPC failed, falling back")
	}

	logs, err := c.secondary.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs from fallback: %w", err)
	}
	return logs, nil
}

// BlockTime returns the timestamp of a block
func (c *Client) BlockTime(ctx context.Context, number uint64) (uint64, error) {
	if c.tryPrimary() {
		header, err := c.primary.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
		c.recordPrimary(err)
		if err == nil {
			return header.Time, nil
		}
		if c.secondary == nil {
			return 0, fmt.Errorf("failed to get block header: %w", err)
		}
		c.log.WithError(err).Warn("primary RPC failed, falling back")
	}

	header, err := c.secondary.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, fmt.Errorf("failed to get block header from fallback: %w", err)
	}
	return header.Time, nil
}
