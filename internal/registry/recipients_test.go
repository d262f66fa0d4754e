package registry_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackflow-labs/eligibility-engine/internal/adapter"
	"github.com/stackflow-labs/eligibility-engine/internal/domain"
	"github.com/stackflow-labs/eligibility-engine/internal/mocks"
	"github.com/stackflow-labs/eligibility-engine/internal/registry"
)

func newTestRegistry(t *testing.T, now *time.Time) registry.RecipientRegistry {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return *now }).AnyTimes()

	path := filepath.Join(t.TempDir(), "recipients.json")
	return registry.NewRecipientRegistry(path, adapter.NewFileSystem(), adapter.NewJSON(), clock)
}

func TestRecipientRegistry_EmptyLedger(t *testing.T) {
	now := time.Now()
	reg := newTestRegistry(t, &now)

	records, err := reg.GetAll()
	require.NoError(t, err)
	assert.Empty(t, records)

	size, err := reg.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	record, err := reg.GetByAddress("0xabc")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestRecipientRegistry_AddAndGet(t *testing.T) {
	now := time.Now()
	reg := newTestRegistry(t, &now)

	require.NoError(t, reg.Add(domain.RecipientRecord{
		Address:   "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1",
		TopUpDate: now,
	}))

	// Lookup is case-insensitive
	record, err := reg.GetByAddress("0x742D35CC6634C0532925A3B844BC9E7595F0BEB1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1", record.Address)
}

func TestRecipientRegistry_AddMergesDuplicates(t *testing.T) {
	now := time.Now()
	reg := newTestRegistry(t, &now)

	first := now.Add(-2 * time.Hour)
	require.NoError(t, reg.Add(domain.RecipientRecord{Address: "0xAAA", TopUpDate: first}))

	// A second grant for the same address (different case) must not duplicate;
	// it refreshes TopUpDate on the existing record
	require.NoError(t, reg.Add(domain.RecipientRecord{Address: "0xaaa", TopUpDate: now}))

	size, err := reg.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	record, err := reg.GetByAddress("0xAAA")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.TopUpDate.Equal(now))
}

func TestRecipientRegistry_UpdateMissingFails(t *testing.T) {
	now := time.Now()
	reg := newTestRegistry(t, &now)

	locker := "0xlocker"
	err := reg.Update("0xnotthere", domain.RecipientUpdate{LockerAddress: &locker})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRecipientNotFound)

	// The failed update must not have created a record
	size, err := reg.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestRecipientRegistry_UpdateMergesPartialFields(t *testing.T) {
	now := time.Now()
	reg := newTestRegistry(t, &now)

	topUp := now.Add(-time.Hour)
	require.NoError(t, reg.Add(domain.RecipientRecord{Address: "0xBBB", TopUpDate: topUp}))

	locker := "0x1111111111111111111111111111111111111111"
	checked := now
	require.NoError(t, reg.Update("0xbbb", domain.RecipientUpdate{
		LockerAddress: &locker,
		LastChecked:   &checked,
	}))

	record, err := reg.GetByAddress("0xBBB")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.NotNil(t, record.LockerAddress)
	assert.Equal(t, locker, *record.LockerAddress)
	// Fields not named by the update are untouched
	assert.True(t, record.TopUpDate.Equal(topUp))
	assert.False(t, record.Claimed)
}

func TestRecipientRegistry_WithinWindow(t *testing.T) {
	now := time.Now()
	reg := newTestRegistry(t, &now)

	require.NoError(t, reg.Add(domain.RecipientRecord{Address: "0xrecent", TopUpDate: now.Add(-10 * time.Minute)}))
	require.NoError(t, reg.Add(domain.RecipientRecord{Address: "0xedge", TopUpDate: now.Add(-time.Hour)}))
	require.NoError(t, reg.Add(domain.RecipientRecord{Address: "0xold", TopUpDate: now.Add(-2 * time.Hour)}))

	recent, err := reg.WithinWindow(time.Hour)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "0xrecent", recent[0].Address)
}

func TestRecipientRegistry_WithinWindowObservesConcurrentGrants(t *testing.T) {
	// The quota read must be a fresh time-filter over persisted state, so a
	// grant recorded between two calls is visible to the second call
	now := time.Now()
	reg := newTestRegistry(t, &now)

	recent, err := reg.WithinWindow(time.Hour)
	require.NoError(t, err)
	assert.Empty(t, recent)

	require.NoError(t, reg.Add(domain.RecipientRecord{Address: "0xnew", TopUpDate: now}))

	recent, err = reg.WithinWindow(time.Hour)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestRecipientRegistry_PersistsAcrossInstances(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Now()
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()

	path := filepath.Join(t.TempDir(), "recipients.json")
	fs := adapter.NewFileSystem()
	js := adapter.NewJSON()

	first := registry.NewRecipientRegistry(path, fs, js, clock)
	require.NoError(t, first.Add(domain.RecipientRecord{Address: "0xCCC", TopUpDate: now}))

	second := registry.NewRecipientRegistry(path, fs, js, clock)
	record, err := second.GetByAddress("0xccc")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "0xCCC", record.Address)
}
