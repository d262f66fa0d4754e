package eligibility_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackflow-labs/eligibility-engine/internal/domain"
	"github.com/stackflow-labs/eligibility-engine/internal/eligibility"
	"github.com/stackflow-labs/eligibility-engine/internal/logger"
	"github.com/stackflow-labs/eligibility-engine/internal/mocks"
)

const (
	poolAddressA = "0x1111111111111111111111111111111111111111"
	poolAddressB = "0x2222222222222222222222222222222222222222"

	// Exceeds 2^63; exercises the arbitrary-precision path end to end
	largeFlowRate = "1607510288065843368"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

type engineFixture struct {
	stack      *mocks.MockStackClient
	chain      *mocks.MockChainClient
	indexer    *mocks.MockIndexerClient
	recipients *mocks.MockRecipientRegistry
	clock      *mocks.MockClock
	engine     eligibility.Engine
}

func newFixture(t *testing.T, concurrency int) *engineFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	flowRateA := new(big.Int)
	flowRateA.SetString(largeFlowRate, 10)

	f := &engineFixture{
		stack:      mocks.NewMockStackClient(ctrl),
		chain:      mocks.NewMockChainClient(ctrl),
		indexer:    mocks.NewMockIndexerClient(ctrl),
		recipients: mocks.NewMockRecipientRegistry(ctrl),
		clock:      mocks.NewMockClock(ctrl),
	}
	f.clock.EXPECT().Now().Return(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)).AnyTimes()

	f.engine = eligibility.NewEngine(eligibility.Config{
		PointSystems: []domain.PointSystem{
			{ID: 7370, Name: "Community", PoolAddress: poolAddressA, FlowRate: domain.NewBigInt(flowRateA)},
			{ID: 7371, Name: "Builders", PoolAddress: poolAddressB, FlowRate: domain.NewBigIntFromInt64(1_000_000_000)},
		},
		PrimaryPointSystemID: 7370,
		PointThreshold:       99,
		PointsToAssign:       50,
		MaxUsersPerWindow:    2,
		WindowPeriod:         time.Hour,
		EventLabel:           "new_user_bonus",
		Concurrency:          concurrency,
	}, f.stack, f.chain, f.indexer, f.recipients, f.clock)

	return f
}

// expectTotalUnits wires the once-per-batch pool refresh
func (f *engineFixture) expectTotalUnits(unitsA, unitsB int64) {
	f.chain.EXPECT().GetTotalUnits(gomock.Any(), poolAddressA).Return(big.NewInt(unitsA), nil)
	f.chain.EXPECT().GetTotalUnits(gomock.Any(), poolAddressB).Return(big.NewInt(unitsB), nil)
}

func allocation(pointSystemID int, address string, points int64) domain.Allocation {
	return domain.Allocation{
		PointSystemID:  pointSystemID,
		AccountAddress: address,
		Points:         points,
		MaxCreatedAt:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

// expectedFlowRate replicates the documented estimate:
// (points * SCALE / (totalUnits + points - claimed)) * flowRate / SCALE
func expectedFlowRate(points, claimed, totalUnits int64, flowRate *big.Int) *big.Int {
	scale := big.NewInt(1_000_000_000)
	out := new(big.Int).Mul(big.NewInt(points), scale)
	out.Quo(out, big.NewInt(totalUnits+points-claimed))
	out.Mul(out, flowRate)
	out.Quo(out, scale)
	return out
}

func TestEngine_CheckEligibility_EmptyAddressList(t *testing.T) {
	f := newFixture(t, 4)

	results, err := f.engine.CheckEligibility(context.Background(), nil, "test")

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_CheckEligibility_PrecisionAndOrder(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	addresses := []string{"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"}
	lockerA := "0x3333333333333333333333333333333333333333"

	f.stack.EXPECT().FetchAllAllocations(ctx, addresses).Return(map[int][]domain.Allocation{
		7370: {allocation(7370, addresses[0], 500)},
		7371: {allocation(7371, addresses[1], 10)},
	}, nil)

	// Address B holds no primary allocation and sits below the threshold, but
	// its nonce is at the activity floor (strict >, so no grant)
	f.chain.EXPECT().GetUserNonce(gomock.Any(), addresses[1]).Return(uint64(5), nil)

	f.chain.EXPECT().GetLockerAddresses(ctx, addresses).Return(map[string]string{
		addresses[0]: lockerA,
		addresses[1]: domain.ETHEREUM_ZERO_ADDRESS,
	}, nil)
	f.chain.EXPECT().CheckAllClaimStatuses(ctx, gomock.Any()).Return(map[string]map[int]*big.Int{
		addresses[0]: {7370: big.NewInt(0), 7371: big.NewInt(0)},
		addresses[1]: {7370: big.NewInt(0), 7371: big.NewInt(0)},
	})
	f.expectTotalUnits(10000, 500)

	results, err := f.engine.CheckEligibility(ctx, addresses, "test")

	require.NoError(t, err)
	require.Len(t, results, 2)

	// Caller-supplied address order is preserved
	assert.Equal(t, addresses[0], results[0].Address)
	assert.Equal(t, addresses[1], results[1].Address)

	// Configured point-system order is preserved per address
	first := results[0]
	require.Len(t, first.Eligibility, 2)
	assert.Equal(t, 7370, first.Eligibility[0].PointSystemID)
	assert.Equal(t, 7371, first.Eligibility[1].PointSystemID)

	flowRateA := new(big.Int)
	flowRateA.SetString(largeFlowRate, 10)
	wantA := expectedFlowRate(500, 0, 10000, flowRateA)

	assert.True(t, first.HasAllocations)
	assert.True(t, first.ClaimNeeded)
	assert.True(t, first.Eligibility[0].Eligible)
	assert.Equal(t, int64(500), first.Eligibility[0].Points)
	assert.True(t, first.Eligibility[0].NeedToClaim)
	assert.Equal(t, wantA.String(), first.Eligibility[0].EstimatedFlowRate.String())
	assert.Equal(t, wantA.String(), first.TotalFlowRate.String())

	second := results[1]
	wantB := expectedFlowRate(10, 0, 500, big.NewInt(1_000_000_000))
	assert.Equal(t, int64(10), second.Eligibility[1].Points)
	assert.Equal(t, wantB.String(), second.Eligibility[1].EstimatedFlowRate.String())
	// No primary allocation: eligible=false, zero flow there
	assert.False(t, second.Eligibility[0].Eligible)
	assert.Equal(t, "0", second.Eligibility[0].EstimatedFlowRate.String())
	assert.Equal(t, wantB.String(), second.TotalFlowRate.String())
}

func TestEngine_CheckEligibility_ZeroTotalUnits(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	addresses := []string{"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}

	f.stack.EXPECT().FetchAllAllocations(ctx, addresses).Return(map[int][]domain.Allocation{
		7370: {allocation(7370, addresses[0], 500)},
		7371: {},
	}, nil)
	f.chain.EXPECT().GetLockerAddresses(ctx, addresses).Return(map[string]string{
		addresses[0]: domain.ETHEREUM_ZERO_ADDRESS,
	}, nil)
	f.chain.EXPECT().CheckAllClaimStatuses(ctx, gomock.Any()).Return(map[string]map[int]*big.Int{
		addresses[0]: {7370: big.NewInt(0), 7371: big.NewInt(0)},
	})
	f.expectTotalUnits(0, 0)

	results, err := f.engine.CheckEligibility(ctx, addresses, "test")

	require.NoError(t, err)
	require.Len(t, results, 1)
	// An empty pool yields a zero estimate, never a division error
	assert.Equal(t, "0", results[0].Eligibility[0].EstimatedFlowRate.String())
	assert.Equal(t, "0", results[0].TotalFlowRate.String())
}

func TestEngine_CheckEligibility_ClaimStatusFallback(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	addresses := []string{"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}

	f.stack.EXPECT().FetchAllAllocations(ctx, addresses).Return(map[int][]domain.Allocation{
		7370: {allocation(7370, addresses[0], 120)},
		7371: {},
	}, nil)

	// Locker resolution is completely unavailable; the batch proceeds with
	// zero claim state instead of failing
	f.chain.EXPECT().GetLockerAddresses(ctx, addresses).Return(map[string]string{}, errors.New("rpc down"))
	f.chain.EXPECT().CheckAllClaimStatuses(ctx, map[string]string{}).Return(map[string]map[int]*big.Int{})
	f.expectTotalUnits(10000, 500)

	results, err := f.engine.CheckEligibility(ctx, addresses, "test")

	require.NoError(t, err)
	require.Len(t, results, 1)
	record := results[0].Eligibility[0]
	assert.Equal(t, "0", record.ClaimedAmount.String())
	// With zero claimed, needToClaim reduces to points > 0
	assert.True(t, record.NeedToClaim)
	assert.True(t, results[0].ClaimNeeded)
}

func TestEngine_CheckEligibility_AllocationFailureDegrades(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	addresses := []string{"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}
	lockerA := "0x3333333333333333333333333333333333333333"

	f.stack.EXPECT().FetchAllAllocations(ctx, addresses).
		Return(map[int][]domain.Allocation{7370: {}, 7371: {}}, errors.New("allocation source down"))
	// No allocation data means nobody crosses into the policy's nonce lookup
	f.chain.EXPECT().GetUserNonce(gomock.Any(), addresses[0]).Return(uint64(0), nil)
	f.chain.EXPECT().GetLockerAddresses(ctx, addresses).Return(map[string]string{addresses[0]: lockerA}, nil)
	f.chain.EXPECT().CheckAllClaimStatuses(ctx, gomock.Any()).Return(map[string]map[int]*big.Int{
		addresses[0]: {7370: big.NewInt(7), 7371: big.NewInt(0)},
	})
	f.expectTotalUnits(10000, 500)

	results, err := f.engine.CheckEligibility(ctx, addresses, "test")

	// Chain state alone still produces a (degraded) answer
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].HasAllocations)
	assert.Equal(t, "7", results[0].Eligibility[0].ClaimedAmount.String())
}

func TestEngine_CheckEligibility_TotalFailure(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	addresses := []string{"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}

	f.stack.EXPECT().FetchAllAllocations(ctx, addresses).
		Return(map[int][]domain.Allocation{7370: {}, 7371: {}}, errors.New("allocation source down"))
	f.chain.EXPECT().GetUserNonce(gomock.Any(), addresses[0]).Return(uint64(0), errors.New("rpc down"))
	f.chain.EXPECT().GetLockerAddresses(ctx, addresses).Return(nil, errors.New("rpc down"))

	_, err := f.engine.CheckEligibility(ctx, addresses, "test")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEligibilityUnavailable)
}

func TestEngine_AutoAssign_GrantsAndBumpsInMemory(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	addresses := []string{"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}
	lockerA := "0x3333333333333333333333333333333333333333"

	f.stack.EXPECT().FetchAllAllocations(ctx, addresses).Return(map[int][]domain.Allocation{
		7370: {allocation(7370, addresses[0], 10)},
		7371: {},
	}, nil)
	f.chain.EXPECT().GetUserNonce(gomock.Any(), addresses[0]).Return(uint64(8), nil)
	f.recipients.EXPECT().WithinWindow(time.Hour).Return([]domain.RecipientRecord{}, nil)

	var granted sync.WaitGroup
	granted.Add(1)
	f.stack.EXPECT().
		GrantPoints(gomock.Any(), addresses[0], int64(50), "new_user_bonus").
		DoAndReturn(func(context.Context, string, int64, string) bool {
			granted.Done()
			return true
		})

	f.chain.EXPECT().GetLockerAddresses(ctx, addresses).Return(map[string]string{addresses[0]: lockerA}, nil)
	f.chain.EXPECT().CheckAllClaimStatuses(ctx, gomock.Any()).Return(map[string]map[int]*big.Int{
		addresses[0]: {7370: big.NewInt(0), 7371: big.NewInt(0)},
	})
	f.expectTotalUnits(10000, 500)

	results, err := f.engine.CheckEligibility(ctx, addresses, "test")

	require.NoError(t, err)
	require.Len(t, results, 1)
	// The response reflects the optimistic bump even though the external
	// write is fire-and-forget
	assert.Equal(t, int64(60), results[0].Eligibility[0].Points)

	granted.Wait()
}

func TestEngine_AutoAssign_QuotaEnforcedSequentially(t *testing.T) {
	// Concurrency 1 processes the batch in order: with a quota of 2, three
	// qualifying addresses yield exactly two grants and one skip
	f := newFixture(t, 1)
	ctx := context.Background()

	addresses := []string{
		"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB",
		"0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC",
	}

	f.stack.EXPECT().FetchAllAllocations(ctx, addresses).
		Return(map[int][]domain.Allocation{7370: {}, 7371: {}}, nil)
	for _, addr := range addresses {
		f.chain.EXPECT().GetUserNonce(gomock.Any(), addr).Return(uint64(10), nil)
	}
	// The fire-and-forget grants have not reached the ledger yet
	f.recipients.EXPECT().WithinWindow(time.Hour).Return([]domain.RecipientRecord{}, nil).Times(3)

	var granted sync.WaitGroup
	granted.Add(2)
	f.stack.EXPECT().
		GrantPoints(gomock.Any(), gomock.Any(), int64(50), "new_user_bonus").
		DoAndReturn(func(context.Context, string, int64, string) bool {
			granted.Done()
			return true
		}).
		Times(2)

	f.chain.EXPECT().GetLockerAddresses(ctx, addresses).Return(map[string]string{}, nil)
	f.chain.EXPECT().CheckAllClaimStatuses(ctx, gomock.Any()).Return(map[string]map[int]*big.Int{})
	f.expectTotalUnits(10000, 500)

	results, err := f.engine.CheckEligibility(ctx, addresses, "test")

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int64(50), results[0].Eligibility[0].Points)
	assert.Equal(t, int64(50), results[1].Eligibility[0].Points)
	// The third address hit the quota and was skipped
	assert.Equal(t, int64(0), results[2].Eligibility[0].Points)

	granted.Wait()
}

func TestEngine_AutoAssign_ThresholdBoundaryIsStrict(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	addresses := []string{"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}
	lockerA := "0x3333333333333333333333333333333333333333"

	// Exactly at the threshold: no nonce lookup, no grant
	f.stack.EXPECT().FetchAllAllocations(ctx, addresses).Return(map[int][]domain.Allocation{
		7370: {allocation(7370, addresses[0], 99)},
		7371: {},
	}, nil)
	f.chain.EXPECT().GetLockerAddresses(ctx, addresses).Return(map[string]string{addresses[0]: lockerA}, nil)
	f.chain.EXPECT().CheckAllClaimStatuses(ctx, gomock.Any()).Return(map[string]map[int]*big.Int{
		addresses[0]: {7370: big.NewInt(0), 7371: big.NewInt(0)},
	})
	f.expectTotalUnits(10000, 500)

	results, err := f.engine.CheckEligibility(ctx, addresses, "test")

	require.NoError(t, err)
	assert.Equal(t, int64(99), results[0].Eligibility[0].Points)
}

func TestEngine_AutoAssign_NonceFailureSkipsAddressOnly(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	addresses := []string{
		"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB",
	}

	f.stack.EXPECT().FetchAllAllocations(ctx, addresses).
		Return(map[int][]domain.Allocation{7370: {}, 7371: {}}, nil)
	f.chain.EXPECT().GetUserNonce(gomock.Any(), addresses[0]).Return(uint64(0), errors.New("rpc timeout"))
	f.chain.EXPECT().GetUserNonce(gomock.Any(), addresses[1]).Return(uint64(10), nil)
	f.recipients.EXPECT().WithinWindow(time.Hour).Return([]domain.RecipientRecord{}, nil)

	var granted sync.WaitGroup
	granted.Add(1)
	f.stack.EXPECT().
		GrantPoints(gomock.Any(), addresses[1], int64(50), "new_user_bonus").
		DoAndReturn(func(context.Context, string, int64, string) bool {
			granted.Done()
			return true
		})

	f.chain.EXPECT().GetLockerAddresses(ctx, addresses).Return(map[string]string{}, nil)
	f.chain.EXPECT().CheckAllClaimStatuses(ctx, gomock.Any()).Return(map[string]map[int]*big.Int{})
	f.expectTotalUnits(10000, 500)

	results, err := f.engine.CheckEligibility(ctx, addresses, "test")

	require.NoError(t, err)
	// The failed nonce lookup skipped only its own address
	assert.Equal(t, int64(0), results[0].Eligibility[0].Points)
	assert.Equal(t, int64(50), results[1].Eligibility[0].Points)

	granted.Wait()
}

func TestEngine_RefreshLockers(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	existing := "0x3333333333333333333333333333333333333333"
	discovered := "0x4444444444444444444444444444444444444444"

	f.recipients.EXPECT().GetAll().Return([]domain.RecipientRecord{
		{Address: "0xAAA", LockerAddress: &existing},
		{Address: "0xBBB"},
		{Address: "0xCCC"},
	}, nil)
	f.indexer.EXPECT().GetLockers(ctx, []string{"0xBBB", "0xCCC"}).Return(map[string]string{
		"0xbbb": discovered,
	}, nil)
	f.recipients.EXPECT().
		Update("0xBBB", gomock.Any()).
		DoAndReturn(func(_ string, update domain.RecipientUpdate) error {
			require.NotNil(t, update.LockerAddress)
			assert.Equal(t, discovered, *update.LockerAddress)
			require.NotNil(t, update.LastChecked)
			return nil
		})

	updated, err := f.engine.RefreshLockers(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
}

func TestEngine_RefreshLockers_NoCandidates(t *testing.T) {
	f := newFixture(t, 4)

	locker := "0x3333333333333333333333333333333333333333"
	f.recipients.EXPECT().GetAll().Return([]domain.RecipientRecord{
		{Address: "0xAAA", LockerAddress: &locker},
	}, nil)

	updated, err := f.engine.RefreshLockers(context.Background())

	require.NoError(t, err)
	assert.Zero(t, updated)
}
