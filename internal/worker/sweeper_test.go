package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockExpirer struct{ mock.Mock }

func (m *mockExpirer) ExpirePendingBookings(ctx context.Context, olderThan time.Duration) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

type mockCleaner struct{ mock.Mock }

func (m *mockCleaner) CleanExpiredSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestSweepExpiresPendingAndSessions(t *testing.T) {
	expirer := new(mockExpirer)
	cleaner := new(mockCleaner)
	expirer.On("ExpirePendingBookings", mock.Anything, 30*time.Minute).Return(2, nil).Once()
	cleaner.On("CleanExpiredSessions", mock.Anything).Return(int64(1), nil).Once()

	NewSweeper(expirer, cleaner, 30*time.Minute, time.Minute, zap.NewNop()).Sweep(context.Background())

	expirer.AssertExpectations(t)
	cleaner.AssertExpectations(t)
}

func TestSweepZeroTTLSkipsBookings(t *testing.T) {
	expirer := new(mockExpirer)
	cleaner := new(mockCleaner)
	cleaner.On("CleanExpiredSessions", mock.Anything).Return(int64(0), errors.New("db down")).Once()

	NewSweeper(expirer, cleaner, 0, time.Minute, zap.NewNop()).Sweep(context.Background())

	expirer.AssertNotCalled(t, "ExpirePendingBookings", mock.Anything, mock.Anything)
	cleaner.AssertExpectations(t)
}

func TestRunStopsOnCancel(t *testing.T) {
	expirer := new(mockExpirer)
	expirer.On("ExpirePendingBookings", mock.Anything, time.Hour).Return(0, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewSweeper(expirer, nil, time.Hour, 5*time.Millisecond, zap.NewNop()).Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
