package pipeline

import (
	"context"
	"sync"

	"github.com/Wherlan/Emotisense/pkg/analysis"
	"github.com/Wherlan/Emotisense/pkg/models"
)

// WorkerPool fans per-frame signal interpretation out across a fixed
// number of goroutines. Each result lands at its source index, so the
// output order matches the input order regardless of scheduling and
// the downstream aggregation sees identical data either way.
type WorkerPool struct {
	workers int
}

func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{workers: workers}
}

func (wp *WorkerPool) BuildFrameSignals(ctx context.Context, detections []models.FrameDetection) []models.FrameSignal {
	signals := make([]models.FrameSignal, len(detections))
	tasks := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < wp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case idx, ok := <-tasks:
					if !ok {
						return
					}
					signals[idx] = analysis.BuildFrameSignal(detections[idx])
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for i := range detections {
		select {
		case tasks <- i:
		case <-ctx.Done():
			close(tasks)
			wg.Wait()
			return signals
		}
	}
	close(tasks)
	wg.Wait()

	return signals
}
