package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wherlan/Emotisense/pkg/config"
	"github.com/Wherlan/Emotisense/pkg/extract"
	"github.com/Wherlan/Emotisense/pkg/models"
	"github.com/Wherlan/Emotisense/pkg/storage"
)

type fakeExtractor struct {
	mu      sync.Mutex
	err     error
	delay   time.Duration
	result  *extract.Extraction
	calls   int
	onStart func()
}

func (f *fakeExtractor) Extract(ctx context.Context, videoPath string) (*extract.Extraction, error) {
	f.mu.Lock()
	f.calls++
	onStart := f.onStart
	f.mu.Unlock()

	if onStart != nil {
		onStart()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &extract.Extraction{
		Detections: []models.FrameDetection{
			{FrameIndex: 0, Timestamp: 0, FaceDetected: true, EyesDetected: 2, SmileDetections: 1, FaceCenterX: 320, FaceCenterY: 240, FrameWidth: 640, FrameHeight: 480},
			{FrameIndex: 1, Timestamp: 0.5, FaceDetected: true, EyesDetected: 2, FaceCenterX: 320, FaceCenterY: 240, FrameWidth: 640, FrameHeight: 480},
		},
		Audio: models.AudioMeasurements{
			DurationSeconds: 10,
			PitchHz:         []float64{120, 150, 135},
			RMSEnergy:       []float64{0.4, 0.5, 0.45},
			Onsets:          []float64{1, 2, 3},
			SpeechIntervals: []models.SpeechInterval{{Start: 0, End: 4}, {Start: 4.5, End: 9}},
		},
		Metadata: models.VideoMetadata{DurationSeconds: 10, Width: 640, Height: 480, FPS: 30},
	}, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testConfig() config.PipelineConfig {
	return config.PipelineConfig{Timeout: 5 * time.Second, FrameWorkers: 2}
}

func newTestSession(t *testing.T, store storage.SessionStore) *models.Session {
	t.Helper()
	session := models.NewSession("clip.mp4", "/tmp/clip.mp4", "")
	require.NoError(t, store.Create(session))
	return session
}

func TestRunnerSuccessPath(t *testing.T) {
	store := storage.NewMemoryStore()
	runner := NewRunner(testConfig(), store, &fakeExtractor{}, testLogger())
	session := newTestSession(t, store)

	require.NoError(t, runner.Start(session.ID, session.FilePath))
	runner.Wait()

	got, err := store.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	require.NotNil(t, got.Report)
	assert.NotEmpty(t, got.Report.Rating)
	require.NotNil(t, got.Metadata)
	assert.Equal(t, 10.0, got.Metadata.DurationSeconds)
}

func TestRunnerInputErrorCategory(t *testing.T) {
	store := storage.NewMemoryStore()
	extractor := &fakeExtractor{err: extract.ErrCorruptVideo}
	runner := NewRunner(testConfig(), store, extractor, testLogger())
	session := newTestSession(t, store)

	require.NoError(t, runner.Start(session.ID, session.FilePath))
	runner.Wait()

	got, err := store.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, models.ErrorCategoryInput, got.ErrorCategory)
	assert.NotEmpty(t, got.Error)
	assert.Nil(t, got.Report)
}

func TestRunnerDependencyErrorCategory(t *testing.T) {
	store := storage.NewMemoryStore()
	extractor := &fakeExtractor{err: extract.ErrExtractorUnavailable}
	runner := NewRunner(testConfig(), store, extractor, testLogger())
	session := newTestSession(t, store)

	require.NoError(t, runner.Start(session.ID, session.FilePath))
	runner.Wait()

	got, _ := store.Get(session.ID)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, models.ErrorCategoryDependency, got.ErrorCategory)
}

func TestRunnerTimeout(t *testing.T) {
	store := storage.NewMemoryStore()
	extractor := &fakeExtractor{delay: time.Second}
	cfg := config.PipelineConfig{Timeout: 50 * time.Millisecond, FrameWorkers: 2}
	runner := NewRunner(cfg, store, extractor, testLogger())
	session := newTestSession(t, store)

	require.NoError(t, runner.Start(session.ID, session.FilePath))
	runner.Wait()

	got, _ := store.Get(session.ID)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, models.ErrorCategoryTimeout, got.ErrorCategory)
}

func TestRunnerInternalErrorCategory(t *testing.T) {
	store := storage.NewMemoryStore()
	extractor := &fakeExtractor{err: errors.New("unexpected panic-adjacent condition")}
	runner := NewRunner(testConfig(), store, extractor, testLogger())
	session := newTestSession(t, store)

	require.NoError(t, runner.Start(session.ID, session.FilePath))
	runner.Wait()

	got, _ := store.Get(session.ID)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, models.ErrorCategoryInternal, got.ErrorCategory)
}

func TestRunnerRejectsConcurrentRunForSameSession(t *testing.T) {
	store := storage.NewMemoryStore()
	started := make(chan struct{})
	release := make(chan struct{})
	extractor := &fakeExtractor{onStart: func() {
		close(started)
		<-release
	}}
	runner := NewRunner(testConfig(), store, extractor, testLogger())
	session := newTestSession(t, store)

	require.NoError(t, runner.Start(session.ID, session.FilePath))
	<-started

	assert.ErrorIs(t, runner.Start(session.ID, session.FilePath), ErrAlreadyRunning)

	close(release)
	runner.Wait()

	// After the first run finishes the guard clears, but the session is
	// terminal so a rerun fails at the status transition.
	require.NoError(t, runner.Start(session.ID, session.FilePath))
	runner.Wait()
	got, _ := store.Get(session.ID)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestRunnerDeletedSessionIsQuietNoOp(t *testing.T) {
	store := storage.NewMemoryStore()
	session := newTestSession(t, store)
	started := make(chan struct{})
	release := make(chan struct{})
	extractor := &fakeExtractor{onStart: func() {
		close(started)
		<-release
	}}
	runner := NewRunner(testConfig(), store, extractor, testLogger())

	require.NoError(t, runner.Start(session.ID, session.FilePath))
	<-started
	require.NoError(t, store.Delete(session.ID))
	close(release)
	runner.Wait()

	_, err := store.Get(session.ID)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestRunnerConcurrentSessions(t *testing.T) {
	store := storage.NewMemoryStore()
	runner := NewRunner(testConfig(), store, &fakeExtractor{}, testLogger())

	var ids []string
	for i := 0; i < 5; i++ {
		session := newTestSession(t, store)
		ids = append(ids, session.ID)
		require.NoError(t, runner.Start(session.ID, session.FilePath))
	}
	runner.Wait()

	for _, id := range ids {
		got, err := store.Get(id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, got.Status)
	}
}
