package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"

	es8 "github.com/elastic/go-elasticsearch/v8"
)

// ClusterHealthPath is the endpoint both client shapes use to check the cluster.
const ClusterHealthPath = "/_cluster/health"

// Response is a fully read HTTP response from the cluster.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// RestClient is the low-level client: it sends raw requests to the cluster nodes
// and leaves response interpretation to the caller.
type RestClient struct {
	client    *es8.Client
	addresses []string
}

// NewRestClient creates a low-level client from a go-elasticsearch configuration.
func NewRestClient(cfg es8.Config) (*RestClient, error) {
	client, err := es8.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClientCreation, err)
	}
	return &RestClient{client: client, addresses: slices.Clone(cfg.Addresses)}, nil
}

// Addresses returns the node addresses the client was created with.
func (c *RestClient) Addresses() []string {
	return slices.Clone(c.addresses)
}

// Perform sends a bodiless request to path and reads the whole response.
// Non-2xx responses are returned, not treated as errors.
func (c *RestClient) Perform(ctx context.Context, method, path string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	res, err := c.client.Perform(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %w", ErrRequestFailed, method, path, err)
	}

	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: body}, nil
}

// HighLevelClient is the legacy client shape: typed API calls on top of a low-level
// RestClient, which stays reachable through LowLevelClient.
type HighLevelClient struct {
	lowLevel *RestClient
}

// NewHighLevelClient wraps lowLevel. Both clients share the same connections.
func NewHighLevelClient(lowLevel *RestClient) *HighLevelClient {
	return &HighLevelClient{lowLevel: lowLevel}
}

// LowLevelClient returns the RestClient this client sends requests through.
func (c *HighLevelClient) LowLevelClient() *RestClient {
	return c.lowLevel
}

// ClusterHealth calls the cluster health API. Any HTTP response, including errors
// reported by the cluster, yields a ClusterHealth carrying the status code; only
// transport and decoding failures return an error.
func (c *HighLevelClient) ClusterHealth(ctx context.Context) (*ClusterHealth, error) {
	api := c.lowLevel.client
	res, err := api.Cluster.Health(api.Cluster.Health.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: cluster health: %w", ErrRequestFailed, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading cluster health: %w", ErrRequestFailed, err)
	}
	return DecodeClusterHealth(res.StatusCode, body)
}

// ClusterHealth is the decoded body of GET /_cluster/health.
type ClusterHealth struct {
	StatusCode int `json:"-"`

	ClusterName         string `json:"cluster_name"`
	Status              string `json:"status"`
	TimedOut            bool   `json:"timed_out"`
	NumberOfNodes       int    `json:"number_of_nodes"`
	NumberOfDataNodes   int    `json:"number_of_data_nodes"`
	ActivePrimaryShards int    `json:"active_primary_shards"`
	ActiveShards        int    `json:"active_shards"`
	RelocatingShards    int    `json:"relocating_shards"`
	InitializingShards  int    `json:"initializing_shards"`
	UnassignedShards    int    `json:"unassigned_shards"`

	// Details holds every field of the response body as returned by the cluster.
	Details map[string]any `json:"-"`
}

// IsSuccess reports whether the cluster answered with a 2xx status.
func (h *ClusterHealth) IsSuccess() bool {
	return h.StatusCode >= 200 && h.StatusCode < 300
}

// DecodeClusterHealth decodes a cluster health response. Bodies of non-2xx responses
// are not decoded.
func DecodeClusterHealth(statusCode int, body []byte) (*ClusterHealth, error) {
	health := &ClusterHealth{StatusCode: statusCode}
	if !health.IsSuccess() {
		return health, nil
	}

	if err := json.Unmarshal(body, health); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponseDecode, err)
	}
	if err := json.Unmarshal(body, &health.Details); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponseDecode, err)
	}
	return health, nil
}
