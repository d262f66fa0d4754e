package indexer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/stackflow-labs/eligibility-engine/internal/adapter"
	"github.com/stackflow-labs/eligibility-engine/internal/domain"
)

// LockerResponse represents the GraphQL response from the locker indexing service
type LockerResponse struct {
	Data struct {
		Lockers []Locker `json:"lockers"`
	} `json:"data"`
}

// Locker represents one owner/locker tuple from the indexing service,
// ordered by recency
type Locker struct {
	OwnerAddress   string `json:"ownerAddress"`
	LockerAddress  string `json:"lockerAddress"`
	BlockTimestamp uint64 `json:"blockTimestamp"`
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string      `json:"query"`
	Variables interface{} `json:"variables"`
}

// Client defines the bulk locker-discovery operations. Unlike the factory
// contract path, this resolves lockers in bulk through the indexing service
// and is meant for background reconciliation, not latency-sensitive requests.
//
//go:generate mockgen -source=client.go -destination=../../mocks/indexer_client.go -package=mocks -mock_names=Client=MockIndexerClient
type Client interface {
	// GetLockers resolves locker addresses for the given owners, paginating
	// until every requested owner is resolved or the dataset is exhausted
	GetLockers(ctx context.Context, addresses []string) (map[string]string, error)
}

// IndexerClient implements Client against the indexing service
type IndexerClient struct {
	httpClient adapter.HTTPClient
	json       adapter.JSON
	apiURL     string
	pageSize   int
}

// NewClient creates a new indexing service client
func NewClient(httpClient adapter.HTTPClient, json adapter.JSON, apiURL string, pageSize int) Client {
	return &IndexerClient{
		httpClient: httpClient,
		json:       json,
		apiURL:     apiURL,
		pageSize:   pageSize,
	}
}

const lockersQuery = `query GetLockers($owners: [String!], $first: Int!, $skip: Int!) {
  lockers(
    where: {ownerAddress_in: $owners}
    orderBy: blockTimestamp
    orderDirection: desc
    first: $first
    skip: $skip
  ) {
    ownerAddress
    lockerAddress
    blockTimestamp
  }
}`

// GetLockers resolves locker addresses for the given owners
func (c *IndexerClient) GetLockers(ctx context.Context, addresses []string) (map[string]string, error) {
	wanted := make(map[string]bool, len(addresses))
	for _, addr := range addresses {
		wanted[domain.NormalizeAddress(addr)] = true
	}

	lockers := make(map[string]string, len(addresses))
	skip := 0

	// Page until all requested owners are resolved. A short page means the
	// dataset is exhausted; this is the stop condition that guards against
	// iterating forever over an inconsistent dataset.
	for len(lockers) < len(wanted) {
		page, err := c.fetchPage(ctx, domain.NormalizeAddresses(addresses), skip)
		if err != nil {
			return nil, err
		}

		for _, locker := range page {
			owner := domain.NormalizeAddress(locker.OwnerAddress)
			if !wanted[owner] {
				continue
			}
			// Results are ordered by recency; keep the first (latest) locker
			if _, ok := lockers[owner]; !ok {
				lockers[owner] = locker.LockerAddress
			}
		}

		if len(page) < c.pageSize {
			break
		}
		skip += c.pageSize
	}

	return lockers, nil
}

// fetchPage fetches one page of locker tuples
func (c *IndexerClient) fetchPage(ctx context.Context, owners []string, skip int) ([]Locker, error) {
	request := GraphQLRequest{
		Query: lockersQuery,
		Variables: map[string]interface{}{
			"owners": owners,
			"first":  c.pageSize,
			"skip":   skip,
		},
	}

	payload, err := c.json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode locker query: %w", err)
	}

	body, err := c.httpClient.Post(ctx, c.apiURL, nil, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to query indexing service: %w", err)
	}

	var response LockerResponse
	if err := c.json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode locker response: %w", err)
	}

	return response.Data.Lockers, nil
}
