package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/construdata/precobase/internal/ingest"
)

// MockRescanner is a mock implementation of Rescanner
type MockRescanner struct {
	mock.Mock
}

func (m *MockRescanner) Rescan(ctx context.Context) (*ingest.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.Summary), args.Error(1)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockRescanner := new(MockRescanner)
	mockRescanner.On("Rescan", mock.Anything).Return(&ingest.Summary{}, nil)

	worker := NewWorker(mockRescanner, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(250 * time.Millisecond)

	// Stop worker
	worker.Stop()
	wg.Wait()

	// Verify Rescan was called at least once
	mockRescanner.AssertCalled(t, "Rescan", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockRescanner := new(MockRescanner)
	mockRescanner.On("Rescan", mock.Anything).Return(&ingest.Summary{Processed: 1}, nil)

	worker := NewWorker(mockRescanner, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	// Start worker in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(150 * time.Millisecond)

	// Cancel context
	cancel()
	wg.Wait()

	// Verify Rescan was called
	mockRescanner.AssertCalled(t, "Rescan", mock.Anything)
}
