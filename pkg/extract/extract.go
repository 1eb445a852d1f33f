// Package extract defines the extraction boundary: probing an uploaded
// video, splitting out its audio track, and collecting raw frame and
// waveform signals from the detector collaborators. Everything past
// this boundary works on plain value types.
package extract

import (
	"context"
	"errors"

	"github.com/Wherlan/Emotisense/pkg/models"
)

var (
	// ErrUnsupportedFormat and ErrCorruptVideo are input errors: the
	// session fails with a descriptive message.
	ErrUnsupportedFormat = errors.New("unsupported video format")
	ErrCorruptVideo      = errors.New("corrupt or unreadable video")
	ErrVideoTooShort     = errors.New("video is too short (minimum 1 second)")
	ErrVideoTooLong      = errors.New("video exceeds maximum duration")

	// ErrExtractorUnavailable is a dependency error: the extraction
	// toolchain or a detector service is unreachable.
	ErrExtractorUnavailable = errors.New("extraction service unavailable")
)

// Extraction is everything the pipeline needs from one video.
type Extraction struct {
	Detections []models.FrameDetection
	Audio      models.AudioMeasurements
	Metadata   models.VideoMetadata
}

// Extractor turns a stored video file into raw analysis signals.
type Extractor interface {
	Extract(ctx context.Context, videoPath string) (*Extraction, error)
}

// SignalSource provides the face-detection and waveform-measurement
// capabilities the extractor delegates to.
type SignalSource interface {
	DetectFrames(ctx context.Context, videoPath string, md models.VideoMetadata) ([]models.FrameDetection, error)
	MeasureAudio(ctx context.Context, wavPath string) (models.AudioMeasurements, error)
}
