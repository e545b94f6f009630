package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// ElasticsearchServer is an httptest stand-in for a cluster that answers
// GET /_cluster/health with a configurable status.
type ElasticsearchServer struct {
	*httptest.Server

	mu         sync.Mutex
	status     string
	statusCode int
	requests   atomic.Int32
}

// NewElasticsearchServer starts a server reporting a green cluster. It is closed
// when the test ends.
func NewElasticsearchServer(t testing.TB) *ElasticsearchServer {
	t.Helper()

	s := &ElasticsearchServer{status: "green", statusCode: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetClusterStatus changes the reported cluster status ("green", "yellow", "red").
func (s *ElasticsearchServer) SetClusterStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// SetStatusCode makes the health endpoint answer with code.
func (s *ElasticsearchServer) SetStatusCode(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCode = code
}

// Requests returns how many requests the server received.
func (s *ElasticsearchServer) Requests() int {
	return int(s.requests.Load())
}

func (s *ElasticsearchServer) handle(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	s.mu.Lock()
	status, code := s.status, s.statusCode
	s.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path != "/_cluster/health" {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "no handler for " + r.URL.Path, "status": 404})
		return
	}

	w.WriteHeader(code)
	if code != http.StatusOK {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "unavailable", "status": code})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"cluster_name":          "test-cluster",
		"status":                status,
		"timed_out":             false,
		"number_of_nodes":       1,
		"number_of_data_nodes":  1,
		"active_primary_shards": 5,
		"active_shards":         5,
		"relocating_shards":     0,
		"initializing_shards":   0,
		"unassigned_shards":     0,
	})
}
