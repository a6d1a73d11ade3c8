package ipfs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silens-indexer/internal/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(&config.IPFSConfig{
		GatewayURL:        serverURL,
		FetchTimeout:      5 * time.Second,
		RequestsPerSecond: 1000,
		MaxConcurrent:     4,
	})
}

func TestGatewayURL(t *testing.T) {
	c := NewClient(&config.IPFSConfig{
		GatewayURL:        "https://gateway.pinata.cloud/",
		FetchTimeout:      time.Second,
		RequestsPerSecond: 1,
		MaxConcurrent:     1,
	})
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/QmDoc", c.GatewayURL("QmDoc"))
}

func TestFetchDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ipfs/QmDoc", r.URL.Path)
		w.Write([]byte(`{"name":"GPT Detector","description":"classifier"}`))
	}))
	defer server.Close()

	doc, err := newTestClient(server.URL).FetchDocument(context.Background(), "QmDoc")
	require.NoError(t, err)

	var parsed struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(doc, &parsed))
	assert.Equal(t, "GPT Detector", parsed.Name)
}

func TestFetchDocumentEmptyHash(t *testing.T) {
	doc, err := newTestClient("http://unused").FetchDocument(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestFetchDocumentInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	doc, err := newTestClient(server.URL).FetchDocument(context.Background(), "QmDoc")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestFetchDocumentGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchDocument(context.Background(), "QmMissing")
	assert.Error(t, err)
}

func TestFetchManyBoundedAndDeduped(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	hashes := []string{"Qm1", "Qm2", "Qm3", "Qm4", "Qm5", "Qm6", "Qm1", ""}
	docs := c.FetchMany(context.Background(), hashes)

	assert.Len(t, docs, 6)
	assert.Equal(t, int32(6), calls.Load())
	assert.LessOrEqual(t, maxInFlight.Load(), int32(4))
}

func TestFetchManyToleratesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ipfs/QmBad" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	docs := newTestClient(server.URL).FetchMany(context.Background(), []string{"QmGood", "QmBad"})
	assert.Len(t, docs, 1)
	assert.Contains(t, docs, "QmGood")
}
