package stack

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stackflow-labs/eligibility-engine/internal/adapter"
	"github.com/stackflow-labs/eligibility-engine/internal/domain"
	"github.com/stackflow-labs/eligibility-engine/internal/logger"
	"github.com/stackflow-labs/eligibility-engine/internal/registry"
)

// grantNamespace seeds the deterministic grant identifiers. Grants with the
// same (eventLabel, address) must map to the same uniqueId so the ledger can
// deduplicate repeated submissions.
var grantNamespace = uuid.MustParse("97dd0f9d-6fbc-4a31-9e5b-32d3371f2ab6")

// Client defines the allocation ledger (Stack) operations
//
//go:generate mockgen -source=client.go -destination=../../mocks/stack_client.go -package=mocks -mock_names=Client=MockStackClient
type Client interface {
	// FetchAllocations fetches allocation records for the given addresses in
	// one point system
	FetchAllocations(ctx context.Context, pointSystemID int, addresses []string) ([]domain.Allocation, error)

	// FetchAllAllocations fetches allocations for every configured point
	// system concurrently. A single system's failure yields an empty list for
	// that system; the returned error is non-nil only when every system failed.
	FetchAllAllocations(ctx context.Context, addresses []string) (map[int][]domain.Allocation, error)

	// GrantPoints awards points to an address under an event label. It
	// reports success and performs its own bookkeeping and alerting; it never
	// panics past its boundary.
	GrantPoints(ctx context.Context, address string, points int64, eventLabel string) bool
}

// allocationResponse is the wire shape of the allocation query response
type allocationResponse struct {
	Allocations []allocationRecord `json:"allocations"`
}

type allocationRecord struct {
	AccountAddress string    `json:"accountAddress"`
	Points         int64     `json:"points"`
	MaxCreatedAt   time.Time `json:"maxCreatedAt"`
}

// grantRequest is the wire shape of the point-grant write
type grantRequest struct {
	AccountName   string `json:"accountName"`
	Account       string `json:"account"`
	PointSystemID int    `json:"pointSystemId"`
	UniqueID      string `json:"uniqueId"`
	Points        int64  `json:"points"`
}

// StackClient implements Client against the Stack HTTP API
type StackClient struct {
	httpClient           adapter.HTTPClient
	json                 adapter.JSON
	baseURL              string
	readAPIKey           string
	writeAPIKey          string
	pointSystems         []domain.PointSystem
	primaryPointSystemID int
	baselineEventLabel   string
	grantWindow          time.Duration
	recipients           registry.RecipientRegistry
	clock                adapter.Clock
}

// Config holds the Stack client construction parameters
type Config struct {
	BaseURL              string
	ReadAPIKey           string
	WriteAPIKey          string
	PointSystems         []domain.PointSystem
	PrimaryPointSystemID int
	BaselineEventLabel   string
	GrantWindow          time.Duration
}

// NewClient creates a new Stack client
func NewClient(cfg Config, httpClient adapter.HTTPClient, json adapter.JSON, recipients registry.RecipientRegistry, clock adapter.Clock) Client {
	return &StackClient{
		httpClient:           httpClient,
		json:                 json,
		baseURL:              strings.TrimSuffix(cfg.BaseURL, "/"),
		readAPIKey:           cfg.ReadAPIKey,
		writeAPIKey:          cfg.WriteAPIKey,
		pointSystems:         cfg.PointSystems,
		primaryPointSystemID: cfg.PrimaryPointSystemID,
		baselineEventLabel:   cfg.BaselineEventLabel,
		grantWindow:          cfg.GrantWindow,
		recipients:           recipients,
		clock:                clock,
	}
}

// GrantUniqueID derives the deterministic idempotency key for a grant
func GrantUniqueID(eventLabel, address string) string {
	return uuid.NewSHA1(grantNamespace, []byte(eventLabel+":"+domain.NormalizeAddress(address))).String()
}

// FetchAllocations fetches allocation records for the given addresses in one point system
func (c *StackClient) FetchAllocations(ctx context.Context, pointSystemID int, addresses []string) ([]domain.Allocation, error) {
	payload, err := c.json.Marshal(map[string]interface{}{
		"pointSystemId": pointSystemID,
		"addresses":     addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode allocation query: %w", err)
	}

	url := fmt.Sprintf("%s/point-systems/%d/allocations/query", c.baseURL, pointSystemID)
	body, err := c.httpClient.Post(ctx, url, map[string]string{"x-api-key": c.readAPIKey}, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch allocations for point system %d: %w", pointSystemID, err)
	}

	var response allocationResponse
	if err := c.json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode allocations for point system %d: %w", pointSystemID, err)
	}

	// At most one entitlement per address: the first match (case-insensitive) wins
	seen := make(map[string]bool, len(response.Allocations))
	allocations := make([]domain.Allocation, 0, len(response.Allocations))
	for _, record := range response.Allocations {
		key := domain.NormalizeAddress(record.AccountAddress)
		if seen[key] {
			continue
		}
		seen[key] = true
		allocations = append(allocations, domain.Allocation{
			PointSystemID:  pointSystemID,
			AccountAddress: record.AccountAddress,
			Points:         record.Points,
			MaxCreatedAt:   record.MaxCreatedAt,
		})
	}

	return allocations, nil
}

// FetchAllAllocations fans out one fetch per configured point system
func (c *StackClient) FetchAllAllocations(ctx context.Context, addresses []string) (map[int][]domain.Allocation, error) {
	results := make(map[int][]domain.Allocation, len(c.pointSystems))
	failures := 0

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ps := range c.pointSystems {
		wg.Add(1)
		go func(pointSystemID int) {
			defer wg.Done()

			allocations, err := c.FetchAllocations(ctx, pointSystemID, addresses)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Degrade this system to an empty list; the others are unaffected
				logger.ErrorCtx(ctx, err,
					zap.Int("point_system_id", pointSystemID),
					zap.Strings("addresses", addresses),
					zap.String("alert", "allocation_fetch_failed"))
				results[pointSystemID] = []domain.Allocation{}
				failures++
				return
			}
			results[pointSystemID] = allocations
		}(ps.ID)
	}

	wg.Wait()

	if len(c.pointSystems) > 0 && failures == len(c.pointSystems) {
		return results, fmt.Errorf("allocation source unavailable: all %d point system fetches failed", failures)
	}
	return results, nil
}

// GrantPoints awards points to an address under an event label
func (c *StackClient) GrantPoints(ctx context.Context, address string, points int64, eventLabel string) bool {
	request := grantRequest{
		AccountName:   eventLabel,
		Account:       address,
		PointSystemID: c.primaryPointSystemID,
		UniqueID:      GrantUniqueID(eventLabel, address),
		Points:        points,
	}

	payload, err := c.json.Marshal(request)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to encode grant request: %w", err),
			zap.String("address", address))
		return false
	}

	url := fmt.Sprintf("%s/events", c.baseURL)
	if _, err := c.httpClient.Post(ctx, url, map[string]string{"x-api-key": c.writeAPIKey}, bytes.NewReader(payload)); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to grant points: %w", err),
			zap.String("address", address),
			zap.Int64("points", points),
			zap.String("event_label", eventLabel),
			zap.String("alert", "point_grant_failed"))
		return false
	}

	if eventLabel == c.baselineEventLabel {
		c.recordRecipient(ctx, address)
	}

	return true
}

// recordRecipient books a successful baseline grant into the recipient ledger
func (c *StackClient) recordRecipient(ctx context.Context, address string) {
	if err := c.recipients.Add(domain.RecipientRecord{
		Address:   address,
		TopUpDate: c.clock.Now(),
	}); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to record grant recipient: %w", err),
			zap.String("address", address))
		return
	}

	size, err := c.recipients.Size()
	if err != nil {
		logger.WarnCtx(ctx, "failed to read recipient ledger size", zap.Error(err))
		return
	}
	recent, err := c.recipients.WithinWindow(c.grantWindow)
	if err != nil {
		logger.WarnCtx(ctx, "failed to read recent grant count", zap.Error(err))
		return
	}

	logger.InfoCtx(ctx, "Recorded point grant recipient",
		zap.String("address", address),
		zap.Int("ledger_size", size),
		zap.Int("grants_in_window", len(recent)),
		zap.Duration("window", c.grantWindow))
}
