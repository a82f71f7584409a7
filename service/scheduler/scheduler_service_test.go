package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"country-exchange-service/client"
	"country-exchange-service/service/country"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) (*country.RefreshResult, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &country.RefreshResult{TotalCountries: 1, LastRefreshedAt: time.Now()}, nil
}

// MockLock 模拟分布式锁
type MockLock struct {
	mock.Mock
}

func (m *MockLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLock) Unlock(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewSchedulerService(&countingRefresher{}, "not a cron", nil, time.Minute)
	assert.Error(t, s.Start())
}

func TestStart_RunsOnSchedule(t *testing.T) {
	refresher := &countingRefresher{}
	s := NewSchedulerService(refresher, "* * * * * *", nil, time.Minute)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return refresher.calls.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestRunOnce_WithLock(t *testing.T) {
	refresher := &countingRefresher{}
	lock := new(MockLock)
	lock.On("TryLock", mock.Anything, refreshLockKey, time.Minute).Return(true, nil).Once()
	lock.On("TryLock", mock.Anything, refreshLockKey, time.Minute).Return(false, nil).Once()
	lock.On("Unlock", mock.Anything, refreshLockKey).Return(nil)

	s := NewSchedulerService(refresher, "@every 1h", lock, time.Minute)

	s.runOnce()
	s.runOnce()

	assert.Equal(t, int32(1), refresher.calls.Load())
	lock.AssertNumberOfCalls(t, "Unlock", 1)
}

func TestRunOnce_RefreshErrorsAreSwallowed(t *testing.T) {
	for _, err := range []error{
		&client.SourceUnavailableError{Source: client.SourceCountries, Err: errors.New("timeout")},
		&country.StorageError{Op: "insert", Err: errors.New("disk full")},
	} {
		refresher := &countingRefresher{err: err}
		s := NewSchedulerService(refresher, "@every 1h", nil, time.Minute)

		assert.NotPanics(t, s.runOnce)
		assert.Equal(t, int32(1), refresher.calls.Load())
	}
}
