package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	log "github.com/sirupsen/logrus"
)

// PartnerQueryURL is the partner GraphQL endpoint all persisted queries
// go through.
const PartnerQueryURL = "https://api-partner.spotify.com/pathfinder/v1/query"

// HashResolver maps a GraphQL operation name to its persisted-query
// sha256. The upstream owns these hashes and rotates them without notice,
// so they arrive via configuration rather than constants.
type HashResolver interface {
	Hash(operationName string) (string, error)
}

// StaticHashes resolves persisted-query hashes from a fixed map.
type StaticHashes map[string]string

func (h StaticHashes) Hash(operationName string) (string, error) {
	hash, ok := h[operationName]
	if !ok || hash == "" {
		return "", fmt.Errorf("%w: %s", ErrHashUnavailable, operationName)
	}
	return hash, nil
}

type persistedQuery struct {
	Version    int    `json:"version"`
	SHA256Hash string `json:"sha256Hash"`
}

type queryExtensions struct {
	PersistedQuery persistedQuery `json:"persistedQuery"`
}

// QueryClient builds and executes one automatic-persisted-query request
// per call. It performs no retries of its own.
type QueryClient struct {
	Transport Transport
	Hashes    HashResolver
	Endpoint  string
}

func NewQueryClient(transport Transport, hashes HashResolver) *QueryClient {
	return &QueryClient{Transport: transport, Hashes: hashes, Endpoint: PartnerQueryURL}
}

// Execute runs one persisted query and returns the raw response document.
// The document is guaranteed to be a JSON object; any other payload shape
// is rejected with ErrInvalidJSON.
func (c *QueryClient) Execute(ctx context.Context, operationName string, variables any) (json.RawMessage, error) {
	hash, err := c.Hashes.Hash(operationName)
	if err != nil {
		return nil, err
	}

	vars, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("failed to encode variables: %w", err)
	}
	ext, err := json.Marshal(queryExtensions{PersistedQuery: persistedQuery{Version: 1, SHA256Hash: hash}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode extensions: %w", err)
	}

	params := url.Values{}
	params.Set("operationName", operationName)
	params.Set("variables", string(vars))
	params.Set("extensions", string(ext))

	log.Tracef("Executing persisted query %s with variables %s", operationName, vars)

	body, err := c.Transport.Post(ctx, c.Endpoint, params, true)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: response is not an object", ErrInvalidJSON)
	}
	var document map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	return json.RawMessage(trimmed), nil
}
