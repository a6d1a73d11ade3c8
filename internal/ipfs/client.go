// Package ipfs fetches metadata documents from an IPFS HTTP gateway.
// Fetches are best effort: the chain is the source of truth and a gateway
// outage must never block serving indexed state.
package ipfs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/silens-indexer/internal/config"
	"github.com/silens-indexer/internal/logging"
)

// maxDocumentSize bounds a single metadata document read
const maxDocumentSize = 1 << 20

// Client fetches JSON documents by IPFS hash through a public gateway,
// throttled with a token bucket and a concurrency cap.
type Client struct {
	gatewayURL string
	httpClient *http.Client
	limiter    *rate.Limiter
	sem        chan struct{}
	log        *logging.Logger
}

// NewClient creates a gateway client from configuration
func NewClient(cfg *config.IPFSConfig) *Client {
	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		gatewayURL: strings.TrimRight(cfg.GatewayURL, "/"),
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		sem:        make(chan struct{}, cfg.MaxConcurrent),
		log:        logging.WithComponent("ipfs"),
	}
}

// GatewayURL renders the public gateway URL for a hash
func (c *Client) GatewayURL(hash string) string {
	return c.gatewayURL + "/ipfs/" + hash
}

// FetchDocument fetches and parses the JSON document behind an IPFS hash.
// Returns nil with no error when the hash is empty or the document is not
// valid JSON; callers treat a missing document as absent metadata.
func (c *Client) FetchDocument(ctx context.Context, hash string) (json.RawMessage, error) {
	if hash == "" {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to acquire rate limit token: %w", err)
	}

	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.GatewayURL(hash), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", hash, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d for %s", resp.StatusCode, hash)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", hash, err)
	}

	if !json.Valid(body) {
		c.log.WithField("hash", hash).Warn("Gateway document is not valid JSON, treating as absent")
		return nil, nil
	}
	return json.RawMessage(body), nil
}

// FetchMany fetches several documents concurrently, bounded by the client's
// concurrency cap. Failed fetches come back as nil entries; per-hash errors
// are logged, not returned.
func (c *Client) FetchMany(ctx context.Context, hashes []string) map[string]json.RawMessage {
	type result struct {
		hash string
		doc  json.RawMessage
	}

	seen := make(map[string]struct{}, len(hashes))
	unique := make([]string, 0, len(hashes))
	for _, h := range hashes {
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		unique = append(unique, h)
	}

	results := make(chan result, len(unique))
	for _, h := range unique {
		go func(hash string) {
			doc, err := c.FetchDocument(ctx, hash)
			if err != nil {
				c.log.WithError(err).WithField("hash", hash).Warn("Metadata fetch failed")
			}
			results <- result{hash: hash, doc: doc}
		}(h)
	}

	docs := make(map[string]json.RawMessage, len(unique))
	for range unique {
		r := <-results
		if r.doc != nil {
			docs[r.hash] = r.doc
		}
	}
	return docs
}
