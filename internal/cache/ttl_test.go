package cache_test

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/stackflow-labs/eligibility-engine/internal/cache"
	"github.com/stackflow-labs/eligibility-engine/internal/mocks"
)

func TestTTL_SetGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Now()
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()
	clock.EXPECT().Since(gomock.Any()).DoAndReturn(func(t time.Time) time.Duration {
		return now.Sub(t)
	}).AnyTimes()

	c := cache.NewTTL[string](time.Hour, clock)

	_, ok := c.Get("pool-a")
	assert.False(t, ok)

	c.Set("pool-a", "12345")
	got, ok := c.Get("pool-a")
	assert.True(t, ok)
	assert.Equal(t, "12345", got)
	assert.Equal(t, 1, c.Len())
}

func TestTTL_ExpiryByAbsoluteAge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storedAt := time.Now()
	current := storedAt

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return current }).AnyTimes()
	clock.EXPECT().Since(gomock.Any()).DoAndReturn(func(t time.Time) time.Duration {
		return current.Sub(t)
	}).AnyTimes()

	c := cache.NewTTL[int](time.Hour, clock)
	c.Set("locker:0xabc", 42)

	// Just before the TTL the entry is still served
	current = storedAt.Add(time.Hour - time.Second)
	got, ok := c.Get("locker:0xabc")
	assert.True(t, ok)
	assert.Equal(t, 42, got)

	// At the TTL boundary the entry expires and is evicted
	current = storedAt.Add(time.Hour)
	_, ok = c.Get("locker:0xabc")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTL_SetRefreshesAge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	start := time.Now()
	current := start

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return current }).AnyTimes()
	clock.EXPECT().Since(gomock.Any()).DoAndReturn(func(t time.Time) time.Duration {
		return current.Sub(t)
	}).AnyTimes()

	c := cache.NewTTL[int](time.Minute, clock)
	c.Set("k", 1)

	current = start.Add(50 * time.Second)
	c.Set("k", 2)

	// 70s after the first Set but only 20s after the refresh
	current = start.Add(70 * time.Second)
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 2, got)
}
