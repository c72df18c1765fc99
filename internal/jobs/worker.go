package jobs

import (
	"context"
	"log"
	"time"

	"github.com/construdata/precobase/internal/ingest"
)

// Rescanner re-walks the watch directory. The orchestrator implements it.
type Rescanner interface {
	Rescan(ctx context.Context) (*ingest.Summary, error)
}

// Worker periodically rescans the watch directory so files that arrived
// while the watcher was down, or that overflowed its queue, still get
// ingested.
type Worker struct {
	rescanner    Rescanner
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(rescanner Rescanner, pollInterval time.Duration) *Worker {
	return &Worker{
		rescanner:    rescanner,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the worker's polling loop
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("Rescan worker started with poll interval: %v", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Rescan worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("Rescan worker stopped: stop signal received")
			return
		case <-ticker.C:
			summary, err := w.rescanner.Rescan(ctx)
			if err != nil {
				log.Printf("Error rescanning watch directory: %v", err)
				continue
			}
			if summary.Processed > 0 || summary.Discarded > 0 || summary.Failed > 0 {
				log.Printf("Rescan: %d processed, %d discarded, %d failed, %d services",
					summary.Processed, summary.Discarded, summary.Failed, summary.Services)
			}
		}
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("Rescan worker shutdown complete")
}
