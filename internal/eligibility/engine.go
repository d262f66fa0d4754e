package eligibility

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/stackflow-labs/eligibility-engine/internal/adapter"
	"github.com/stackflow-labs/eligibility-engine/internal/domain"
	"github.com/stackflow-labs/eligibility-engine/internal/logger"
	"github.com/stackflow-labs/eligibility-engine/internal/providers/ethereum"
	"github.com/stackflow-labs/eligibility-engine/internal/providers/indexer"
	"github.com/stackflow-labs/eligibility-engine/internal/providers/stack"
	"github.com/stackflow-labs/eligibility-engine/internal/registry"
)

// Engine reconciles off-chain point allocations with on-chain claim state and
// produces consolidated eligibility records
type Engine interface {
	// CheckEligibility computes eligibility for a batch of addresses across
	// every configured point system, preserving the caller-supplied address
	// order. An empty address list yields an empty result and no error.
	CheckEligibility(ctx context.Context, addresses []string, callerLabel string) ([]domain.AddressEligibility, error)

	// RefreshLockers resolves locker addresses for ledger records that are
	// missing one, via the bulk indexing service. Returns the number of
	// records updated.
	RefreshLockers(ctx context.Context) (int, error)
}

// Config holds engine construction parameters
type Config struct {
	PointSystems         []domain.PointSystem
	PrimaryPointSystemID int
	PointThreshold       int64
	PointsToAssign       int64
	MaxUsersPerWindow    int
	WindowPeriod         time.Duration
	EventLabel           string
	Concurrency          int
}

type engine struct {
	cfg        Config
	stack      stack.Client
	chain      ethereum.ChainClient
	indexer    indexer.Client
	recipients registry.RecipientRegistry
	clock      adapter.Clock
}

// NewEngine creates a new reconciliation engine
func NewEngine(cfg Config, stackClient stack.Client, chainClient ethereum.ChainClient, indexerClient indexer.Client, recipients registry.RecipientRegistry, clock adapter.Clock) Engine {
	return &engine{
		cfg:        cfg,
		stack:      stackClient,
		chain:      chainClient,
		indexer:    indexerClient,
		recipients: recipients,
		clock:      clock,
	}
}

// CheckEligibility computes eligibility for a batch of addresses
func (e *engine) CheckEligibility(ctx context.Context, addresses []string, callerLabel string) ([]domain.AddressEligibility, error) {
	if len(addresses) == 0 {
		return []domain.AddressEligibility{}, nil
	}

	// Index entitlements per (point system, normalized address). A failed
	// allocation fetch leaves every system empty; the batch still proceeds so
	// the caller gets claim-state data.
	allocations, allocErr := e.stack.FetchAllAllocations(ctx, addresses)
	points := indexPoints(allocations)

	e.runAutoAssignment(ctx, addresses, points[e.cfg.PrimaryPointSystemID])

	lockers, lockerErr := e.chain.GetLockerAddresses(ctx, addresses)
	if lockerErr != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("proceeding with zero claim state: %w", lockerErr),
			zap.Strings("addresses", addresses),
			zap.String("caller", callerLabel),
			zap.String("alert", "locker_resolution_failed"))
		lockers = map[string]string{}
	}

	if allocErr != nil && lockerErr != nil {
		return nil, fmt.Errorf("eligibility check for %d addresses: %w", len(addresses), domain.ErrEligibilityUnavailable)
	}

	statuses := e.chain.CheckAllClaimStatuses(ctx, lockers)

	// totalUnits is a pool property; refresh once per batch per point system
	totalUnits := make(map[int]*big.Int, len(e.cfg.PointSystems))
	for _, ps := range e.cfg.PointSystems {
		units, err := e.chain.GetTotalUnits(ctx, ps.PoolAddress)
		if err != nil {
			logger.WarnCtx(ctx, "failed to refresh total units, flow estimates default to zero",
				zap.Int("point_system_id", ps.ID),
				zap.String("pool_address", ps.PoolAddress),
				zap.Error(err))
			units = big.NewInt(0)
		}
		totalUnits[ps.ID] = units
	}

	results := make([]domain.AddressEligibility, 0, len(addresses))
	for _, address := range addresses {
		result := domain.AddressEligibility{
			Address:     address,
			Eligibility: make([]domain.PointSystemEligibility, 0, len(e.cfg.PointSystems)),
		}
		totalFlowRate := big.NewInt(0)
		normalized := domain.NormalizeAddress(address)

		for _, ps := range e.cfg.PointSystems {
			entitledPoints := points[ps.ID][normalized]
			entitled := big.NewInt(entitledPoints)
			claimed := claimedUnits(statuses, address, ps.ID)
			toClaim := new(big.Int).Sub(entitled, claimed)
			flowRate := estimateFlowRate(entitled, claimed, totalUnits[ps.ID], &ps.FlowRate.Int)
			totalFlowRate.Add(totalFlowRate, flowRate)

			if entitled.Sign() > 0 {
				result.HasAllocations = true
			}
			if toClaim.Sign() > 0 {
				result.ClaimNeeded = true
			}

			result.Eligibility = append(result.Eligibility, domain.PointSystemEligibility{
				PointSystemID:     ps.ID,
				PointSystemName:   ps.Name,
				Eligible:          entitledPoints > 0,
				Points:            entitledPoints,
				ClaimedAmount:     domain.NewBigInt(claimed),
				NeedToClaim:       toClaim.Sign() > 0,
				PoolAddress:       ps.PoolAddress,
				EstimatedFlowRate: domain.NewBigInt(flowRate),
			})
		}

		result.TotalFlowRate = domain.NewBigInt(totalFlowRate)
		results = append(results, result)

		logger.InfoCtx(ctx, "Refreshed eligibility",
			zap.String("address", address),
			zap.String("caller", callerLabel),
			zap.Bool("claim_needed", result.ClaimNeeded),
			zap.String("total_flow_rate", totalFlowRate.String()))
	}

	return results, nil
}

// runAutoAssignment applies the bonus policy to the primary point system's
// entitlements, bumping the in-memory map for addresses that receive a grant.
// The external grant write is fire-and-forget; the response reflects the grant
// before the write settles.
func (e *engine) runAutoAssignment(ctx context.Context, addresses []string, primaryPoints map[string]int64) {
	if primaryPoints == nil {
		return
	}

	var mu sync.Mutex
	granted := 0

	pool := pond.NewPool(e.cfg.Concurrency, pond.WithContext(ctx))
	for _, address := range addresses {
		addr := address
		pool.Submit(func() {
			normalized := domain.NormalizeAddress(addr)

			mu.Lock()
			current := primaryPoints[normalized]
			mu.Unlock()
			if current >= e.cfg.PointThreshold {
				return
			}

			nonce, err := e.chain.GetUserNonce(ctx, addr)
			if err != nil {
				// Skip this address only; the rest of the batch proceeds
				logger.ErrorCtx(ctx, fmt.Errorf("skipping bonus grant, nonce lookup failed: %w", err),
					zap.String("address", addr),
					zap.String("alert", "nonce_lookup_failed"))
				return
			}
			if nonce <= domain.ACTIVITY_FLOOR_NONCE {
				return
			}

			recent, err := e.recipients.WithinWindow(e.cfg.WindowPeriod)
			if err != nil {
				logger.ErrorCtx(ctx, fmt.Errorf("skipping bonus grant, quota read failed: %w", err),
					zap.String("address", addr),
					zap.String("alert", "quota_read_failed"))
				return
			}

			// Grants fired earlier in this batch may not have reached the
			// ledger yet; count them here so a sequential batch enforces the
			// quota exactly. Cross-batch races at the boundary are accepted.
			mu.Lock()
			inWindow := len(recent) + granted
			if inWindow >= e.cfg.MaxUsersPerWindow {
				mu.Unlock()
				logger.WarnCtx(ctx, "bonus grant quota exceeded",
					zap.String("address", addr),
					zap.Int("grants_in_window", inWindow),
					zap.Int("max_users", e.cfg.MaxUsersPerWindow),
					zap.Duration("window", e.cfg.WindowPeriod))
				return
			}
			granted++
			primaryPoints[normalized] = current + e.cfg.PointsToAssign
			mu.Unlock()

			grantCtx := context.WithoutCancel(ctx)
			go e.stack.GrantPoints(grantCtx, addr, e.cfg.PointsToAssign, e.cfg.EventLabel)
		})
	}
	pool.StopAndWait()
}

// RefreshLockers resolves lockers for ledger records missing one
func (e *engine) RefreshLockers(ctx context.Context) (int, error) {
	records, err := e.recipients.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read recipient ledger: %w", err)
	}

	missing := make([]string, 0, len(records))
	for _, record := range records {
		if record.LockerAddress == nil || domain.IsZeroAddress(*record.LockerAddress) {
			missing = append(missing, record.Address)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	lockers, err := e.indexer.GetLockers(ctx, missing)
	if err != nil {
		return 0, fmt.Errorf("failed to discover lockers: %w", err)
	}

	updated := 0
	now := e.clock.Now()
	for _, address := range missing {
		locker, ok := lockers[domain.NormalizeAddress(address)]
		if !ok || domain.IsZeroAddress(locker) {
			continue
		}
		if err := e.recipients.Update(address, domain.RecipientUpdate{
			LockerAddress:     &locker,
			LockerCheckedDate: &now,
			LastChecked:       &now,
		}); err != nil {
			logger.WarnCtx(ctx, "failed to record discovered locker",
				zap.String("address", address),
				zap.Error(err))
			continue
		}
		updated++
	}

	logger.InfoCtx(ctx, "Refreshed recipient lockers",
		zap.Int("candidates", len(missing)),
		zap.Int("updated", updated))
	return updated, nil
}

// indexPoints indexes entitlements per (point system, normalized address),
// keeping the first case-insensitive match per address
func indexPoints(allocations map[int][]domain.Allocation) map[int]map[string]int64 {
	points := make(map[int]map[string]int64, len(allocations))
	for pointSystemID, list := range allocations {
		byAddress := make(map[string]int64, len(list))
		for _, allocation := range list {
			key := domain.NormalizeAddress(allocation.AccountAddress)
			if _, ok := byAddress[key]; ok {
				continue
			}
			byAddress[key] = allocation.Points
		}
		points[pointSystemID] = byAddress
	}
	return points
}

// claimedUnits reads the claim status for one (address, point system) pair,
// defaulting to zero when the pair is absent
func claimedUnits(statuses map[string]map[int]*big.Int, address string, pointSystemID int) *big.Int {
	if bySystem, ok := statuses[address]; ok {
		if units, ok := bySystem[pointSystemID]; ok && units != nil {
			return units
		}
	}
	return big.NewInt(0)
}

// estimateFlowRate computes the address's estimated share of a pool's flow
// rate. The denominator adds the address's own unclaimed delta to totalUnits,
// modelling the pool state after this address's pending claim lands.
func estimateFlowRate(points, claimed, totalUnits, flowRate *big.Int) *big.Int {
	if totalUnits == nil || totalUnits.Sign() <= 0 {
		return big.NewInt(0)
	}

	scale := big.NewInt(domain.FLOW_RATE_SCALE)
	denominator := new(big.Int).Add(totalUnits, new(big.Int).Sub(points, claimed))
	if denominator.Sign() <= 0 {
		return big.NewInt(0)
	}

	estimate := new(big.Int).Mul(points, scale)
	estimate.Quo(estimate, denominator)
	estimate.Mul(estimate, flowRate)
	estimate.Quo(estimate, scale)
	return estimate
}
