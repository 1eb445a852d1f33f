// Package pipeline orchestrates the analysis of one uploaded session:
// extraction, facial and audio aggregation, scoring, and report
// persistence, with the session state machine enforced through the
// store.
package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Wherlan/Emotisense/pkg/analysis"
	"github.com/Wherlan/Emotisense/pkg/config"
	"github.com/Wherlan/Emotisense/pkg/extract"
	"github.com/Wherlan/Emotisense/pkg/models"
	"github.com/Wherlan/Emotisense/pkg/storage"
)

// ErrAlreadyRunning is returned when a pipeline run is requested for a
// session that already has one in flight.
var ErrAlreadyRunning = errors.New("pipeline already running for session")

// Stage progress checkpoints written to the store as the run advances,
// so a crash mid-pipeline leaves inspectable partial state.
const (
	progressStarted    = 10
	progressExtracted  = 25
	progressFacialDone = 45
	progressAudioDone  = 65
	progressScored     = 80
	progressComplete   = 100
)

// Runner executes session pipelines. Stages within one session run
// strictly sequentially; different sessions run concurrently. At most
// one run per session id is active at a time.
type Runner struct {
	cfg       config.PipelineConfig
	store     storage.SessionStore
	extractor extract.Extractor
	pool      *WorkerPool
	log       *logrus.Logger

	mu     sync.Mutex
	active map[string]struct{}
	wg     sync.WaitGroup
}

func NewRunner(cfg config.PipelineConfig, store storage.SessionStore, extractor extract.Extractor, log *logrus.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
		pool:      NewWorkerPool(cfg.FrameWorkers),
		log:       log,
		active:    make(map[string]struct{}),
	}
}

// Start launches the session's pipeline in the background. It is
// fire-and-forget: the caller observes completion only through
// store-visible state transitions.
func (r *Runner) Start(sessionID, videoPath string) error {
	r.mu.Lock()
	if _, running := r.active[sessionID]; running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.active[sessionID] = struct{}{}
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.active, sessionID)
			r.mu.Unlock()
		}()
		r.run(sessionID, videoPath)
	}()

	return nil
}

// Wait blocks until all in-flight pipeline runs have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(sessionID, videoPath string) {
	log := r.log.WithField("session_id", sessionID)

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()

	if err := r.store.UpdateStatus(sessionID, models.StatusProcessing, progressStarted); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			log.Debug("session deleted before pipeline start")
			return
		}
		log.WithError(err).Error("failed to mark session processing")
		return
	}

	log.Info("pipeline started")

	if err := r.runStages(ctx, sessionID, videoPath); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			// Deleted mid-run; further writes are pointless, not fatal.
			log.Debug("session deleted during pipeline run")
			return
		}

		category, message := classifyError(ctx, err)
		log.WithError(err).WithField("category", category).Warn("pipeline failed")

		if serr := r.store.SetError(sessionID, category, message); serr != nil {
			if errors.Is(serr, storage.ErrSessionNotFound) {
				return
			}
			log.WithError(serr).Error("failed to record pipeline error")
		}
		if serr := r.store.UpdateStatus(sessionID, models.StatusFailed, -1); serr != nil && !errors.Is(serr, storage.ErrSessionNotFound) {
			log.WithError(serr).Error("failed to mark session failed")
		}
		return
	}

	log.Info("pipeline completed")
}

func (r *Runner) runStages(ctx context.Context, sessionID, videoPath string) error {
	extraction, err := r.extractor.Extract(ctx, videoPath)
	if err != nil {
		return err
	}
	if err := r.store.SetMetadata(sessionID, extraction.Metadata); err != nil {
		return err
	}
	if err := r.store.UpdateStatus(sessionID, models.StatusProcessing, progressExtracted); err != nil {
		return err
	}

	// Frame interpretation is order-independent, so the fanout is a
	// pure optimization; aggregation sees frames in timeline order.
	signals := r.pool.BuildFrameSignals(ctx, extraction.Detections)
	if err := ctx.Err(); err != nil {
		return err
	}
	facial := analysis.AggregateFacial(signals)
	if err := r.store.UpdateStatus(sessionID, models.StatusProcessing, progressFacialDone); err != nil {
		return err
	}

	audio := analysis.AggregateAudio(extraction.Audio)
	if err := r.store.UpdateStatus(sessionID, models.StatusProcessing, progressAudioDone); err != nil {
		return err
	}

	report := analysis.BuildReport(facial, audio, extraction.Metadata, signals)
	if err := r.store.UpdateStatus(sessionID, models.StatusProcessing, progressScored); err != nil {
		return err
	}

	if err := r.store.SaveReport(sessionID, &report); err != nil {
		return err
	}
	return r.store.UpdateStatus(sessionID, models.StatusCompleted, progressComplete)
}

// classifyError maps a pipeline failure onto the error taxonomy so
// callers can distinguish bad input from unavailable infrastructure.
func classifyError(ctx context.Context, err error) (string, string) {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return models.ErrorCategoryTimeout, "pipeline exceeded its processing time budget"
	case errors.Is(err, extract.ErrExtractorUnavailable):
		return models.ErrorCategoryDependency, err.Error()
	case errors.Is(err, extract.ErrUnsupportedFormat),
		errors.Is(err, extract.ErrCorruptVideo),
		errors.Is(err, extract.ErrVideoTooShort),
		errors.Is(err, extract.ErrVideoTooLong):
		return models.ErrorCategoryInput, err.Error()
	default:
		return models.ErrorCategoryInternal, err.Error()
	}
}
