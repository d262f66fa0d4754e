package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/stackflow-labs/eligibility-engine/internal/adapter"
	"github.com/stackflow-labs/eligibility-engine/internal/cache"
	"github.com/stackflow-labs/eligibility-engine/internal/domain"
	"github.com/stackflow-labs/eligibility-engine/internal/logger"
)

// claimStatusConcurrency bounds the per-pair claim status fan-out
const claimStatusConcurrency = 20

// ChainClient defines the on-chain reads the reconciliation engine depends on
//
//go:generate mockgen -source=client.go -destination=../../mocks/chain_client.go -package=mocks -mock_names=ChainClient=MockChainClient
type ChainClient interface {
	// GetUserNonce returns an account's transaction count, used as an
	// activity proxy by the auto-assignment policy
	GetUserNonce(ctx context.Context, address string) (uint64, error)

	// GetTotalUnits returns the total ownership units registered in a
	// distribution pool. Memoized; pool totals change slowly.
	GetTotalUnits(ctx context.Context, poolAddress string) (*big.Int, error)

	// GetLockerAddress resolves an address's locker via the factory contract.
	// "Not found" resolves to the zero-address sentinel, not an error.
	GetLockerAddress(ctx context.Context, address string) (string, error)

	// GetLockerAddresses resolves lockers for a batch of addresses. The
	// returned error is non-nil only when every resolution failed.
	GetLockerAddresses(ctx context.Context, addresses []string) (map[string]string, error)

	// CheckClaimStatus reads the units a locker has claimed from a pool
	CheckClaimStatus(ctx context.Context, lockerAddress, poolAddress string) (*big.Int, error)

	// CheckAllClaimStatuses reads claim status for every (address, point
	// system) pair. Pair failures default to zero without aborting siblings;
	// zero-sentinel lockers skip the network entirely.
	CheckAllClaimStatuses(ctx context.Context, lockers map[string]string) map[string]map[int]*big.Int

	// Close closes the underlying connection
	Close()
}

type chainClient struct {
	client         adapter.EthClient
	clock          adapter.Clock
	factoryAddress common.Address
	pointSystems   []domain.PointSystem
	callTimeout    time.Duration

	totalUnitsCache *cache.TTL[*big.Int]
	lockerCache     *cache.TTL[string]
}

// Config holds chain client construction parameters
type Config struct {
	LockerFactoryAddress string
	PointSystems         []domain.PointSystem
	CallTimeout          time.Duration
	TotalUnitsCacheTTL   time.Duration
	LockerCacheTTL       time.Duration
}

// NewClient creates a new chain state client
func NewClient(cfg Config, client adapter.EthClient, clock adapter.Clock) ChainClient {
	return &chainClient{
		client:          client,
		clock:           clock,
		factoryAddress:  common.HexToAddress(cfg.LockerFactoryAddress),
		pointSystems:    cfg.PointSystems,
		callTimeout:     cfg.CallTimeout,
		totalUnitsCache: cache.NewTTL[*big.Int](cfg.TotalUnitsCacheTTL, clock),
		lockerCache:     cache.NewTTL[string](cfg.LockerCacheTTL, clock),
	}
}

// GetUserNonce returns an account's transaction count
func (c *chainClient) GetUserNonce(ctx context.Context, address string) (uint64, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	nonce, err := c.client.NonceAt(timeoutCtx, common.HexToAddress(address), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get nonce for %s: %w", address, err)
	}
	return nonce, nil
}

// GetTotalUnits returns the total units registered in a pool, memoized by pool address
func (c *chainClient) GetTotalUnits(ctx context.Context, poolAddress string) (*big.Int, error) {
	key := domain.NormalizeAddress(poolAddress)
	if cached, ok := c.totalUnitsCache.Get(key); ok {
		return new(big.Int).Set(cached), nil
	}

	// getTotalUnits() returns (uint128)
	totalUnitsABI, err := abi.JSON(strings.NewReader(`[{"constant":true,"inputs":[],"name":"getTotalUnits","outputs":[{"name":"","type":"uint128"}],"payable":false,"stateMutability":"view","type":"function"}]`))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}

	data, err := totalUnitsABI.Pack("getTotalUnits")
	if err != nil {
		return nil, fmt.Errorf("failed to pack data: %w", err)
	}

	result, err := c.callContract(ctx, poolAddress, data)
	if err != nil {
		return nil, fmt.Errorf("failed to call getTotalUnits on %s: %w", poolAddress, err)
	}

	var totalUnits *big.Int
	if err := totalUnitsABI.UnpackIntoInterface(&totalUnits, "getTotalUnits", result); err != nil {
		return nil, fmt.Errorf("failed to unpack result: %w", err)
	}

	c.totalUnitsCache.Set(key, new(big.Int).Set(totalUnits))
	return totalUnits, nil
}

// GetLockerAddress resolves an address's locker via the factory contract, memoized by address
func (c *chainClient) GetLockerAddress(ctx context.Context, address string) (string, error) {
	key := domain.NormalizeAddress(address)
	if cached, ok := c.lockerCache.Get(key); ok {
		return cached, nil
	}

	// getUserLocker(address) returns (bool isCreated, address lockerAddress)
	lockerABI, err := abi.JSON(strings.NewReader(`[{"constant":true,"inputs":[{"name":"user","type":"address"}],"name":"getUserLocker","outputs":[{"name":"isCreated","type":"bool"},{"name":"lockerAddress","type":"address"}],"payable":false,"stateMutability":"view","type":"function"}]`))
	if err != nil {
		return "", fmt.Errorf("failed to parse ABI: %w", err)
	}

	data, err := lockerABI.Pack("getUserLocker", common.HexToAddress(address))
	if err != nil {
		return "", fmt.Errorf("failed to pack data: %w", err)
	}

	result, err := c.callContract(ctx, c.factoryAddress.Hex(), data)
	if err != nil {
		return "", fmt.Errorf("failed to call getUserLocker for %s: %w", address, err)
	}

	out := struct {
		IsCreated     bool
		LockerAddress common.Address
	}{}
	if err := lockerABI.UnpackIntoInterface(&out, "getUserLocker", result); err != nil {
		return "", fmt.Errorf("failed to unpack result: %w", err)
	}

	// No locker is a sentinel, not an error: the caller treats it as
	// "zero claims everywhere" and must not retry
	locker := domain.ETHEREUM_ZERO_ADDRESS
	if out.IsCreated {
		locker = out.LockerAddress.Hex()
	}

	c.lockerCache.Set(key, locker)
	return locker, nil
}

// GetLockerAddresses resolves lockers for a batch of addresses concurrently
func (c *chainClient) GetLockerAddresses(ctx context.Context, addresses []string) (map[string]string, error) {
	lockers := make(map[string]string, len(addresses))
	failures := 0

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, address := range addresses {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()

			locker, err := c.GetLockerAddress(ctx, addr)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.WarnCtx(ctx, "failed to resolve locker, defaulting to no locker",
					zap.String("address", addr),
					zap.Error(err))
				lockers[addr] = domain.ETHEREUM_ZERO_ADDRESS
				failures++
				return
			}
			lockers[addr] = locker
		}(address)
	}

	wg.Wait()

	if len(addresses) > 0 && failures == len(addresses) {
		return lockers, fmt.Errorf("locker resolution unavailable: all %d lookups failed", failures)
	}
	return lockers, nil
}

// CheckClaimStatus reads the units a locker has claimed from a pool
func (c *chainClient) CheckClaimStatus(ctx context.Context, lockerAddress, poolAddress string) (*big.Int, error) {
	// getUnits(address) returns (uint128)
	getUnitsABI, err := abi.JSON(strings.NewReader(`[{"constant":true,"inputs":[{"name":"memberAddr","type":"address"}],"name":"getUnits","outputs":[{"name":"","type":"uint128"}],"payable":false,"stateMutability":"view","type":"function"}]`))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}

	data, err := getUnitsABI.Pack("getUnits", common.HexToAddress(lockerAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to pack data: %w", err)
	}

	result, err := c.callContract(ctx, poolAddress, data)
	if err != nil {
		return nil, fmt.Errorf("failed to call getUnits on %s: %w", poolAddress, err)
	}

	var units *big.Int
	if err := getUnitsABI.UnpackIntoInterface(&units, "getUnits", result); err != nil {
		return nil, fmt.Errorf("failed to unpack result: %w", err)
	}

	return units, nil
}

// CheckAllClaimStatuses reads claim status for every (address, point system) pair
func (c *chainClient) CheckAllClaimStatuses(ctx context.Context, lockers map[string]string) map[string]map[int]*big.Int {
	statuses := make(map[string]map[int]*big.Int, len(lockers))
	var mu sync.Mutex

	// Pre-fill zeros; addresses without a locker never hit the network
	for address := range lockers {
		systemStatuses := make(map[int]*big.Int, len(c.pointSystems))
		for _, ps := range c.pointSystems {
			systemStatuses[ps.ID] = big.NewInt(0)
		}
		statuses[address] = systemStatuses
	}

	pool := pond.NewPool(claimStatusConcurrency, pond.WithContext(ctx))
	for address, locker := range lockers {
		if domain.IsZeroAddress(locker) {
			continue
		}
		for _, ps := range c.pointSystems {
			addr, lockerAddr, pointSystem := address, locker, ps
			pool.Submit(func() {
				units, err := c.CheckClaimStatus(ctx, lockerAddr, pointSystem.PoolAddress)
				if err != nil {
					// Default this pair to zero; sibling pairs are unaffected
					logger.WarnCtx(ctx, "failed to check claim status, defaulting to zero",
						zap.String("address", addr),
						zap.Int("point_system_id", pointSystem.ID),
						zap.Error(err))
					return
				}
				mu.Lock()
				statuses[addr][pointSystem.ID] = units
				mu.Unlock()
			})
		}
	}
	pool.StopAndWait()

	return statuses
}

// callContract performs a bounded-timeout eth_call against the given contract
func (c *chainClient) callContract(ctx context.Context, contractAddress string, data []byte) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	contractAddr := common.HexToAddress(contractAddress)
	return c.client.CallContract(timeoutCtx, ethereum.CallMsg{
		To:   &contractAddr,
		Data: data,
	}, nil)
}

// Close closes the connection
func (c *chainClient) Close() {
	c.client.Close()
}
