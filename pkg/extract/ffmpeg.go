package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Wherlan/Emotisense/pkg/models"
)

var supportedFormats = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

// IsSupportedFormat reports whether a file extension (with leading dot,
// any case) is an accepted video container.
func IsSupportedFormat(ext string) bool {
	return supportedFormats[strings.ToLower(ext)]
}

// FFmpegExtractor probes videos with ffprobe and extracts a mono 16kHz
// wav track with ffmpeg, then hands both to the signal source for
// frame detection and waveform measurement.
type FFmpegExtractor struct {
	source      SignalSource
	log         *logrus.Logger
	minDuration float64
	maxDuration float64
}

func NewFFmpegExtractor(source SignalSource, maxDurationSeconds float64, log *logrus.Logger) *FFmpegExtractor {
	return &FFmpegExtractor{
		source:      source,
		log:         log,
		minDuration: 1,
		maxDuration: maxDurationSeconds,
	}
}

func (e *FFmpegExtractor) Extract(ctx context.Context, videoPath string) (*Extraction, error) {
	ext := strings.ToLower(filepath.Ext(videoPath))
	if !supportedFormats[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptVideo, err)
	}

	md, err := e.probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	if md.DurationSeconds < e.minDuration {
		return nil, ErrVideoTooShort
	}
	if e.maxDuration > 0 && md.DurationSeconds > e.maxDuration {
		return nil, fmt.Errorf("%w of %.0fs", ErrVideoTooLong, e.maxDuration)
	}

	wavPath, err := e.extractAudio(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	defer os.Remove(wavPath)

	detections, err := e.source.DetectFrames(ctx, videoPath, *md)
	if err != nil {
		return nil, fmt.Errorf("%w: frame detection: %v", ErrExtractorUnavailable, err)
	}

	audio, err := e.source.MeasureAudio(ctx, wavPath)
	if err != nil {
		return nil, fmt.Errorf("%w: audio measurement: %v", ErrExtractorUnavailable, err)
	}

	e.log.WithFields(logrus.Fields{
		"video":    filepath.Base(videoPath),
		"frames":   len(detections),
		"duration": md.DurationSeconds,
	}).Info("extraction complete")

	return &Extraction{
		Detections: detections,
		Audio:      audio,
		Metadata:   *md,
	}, nil
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (e *FFmpegExtractor) probe(ctx context.Context, videoPath string) (*models.VideoMetadata, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)

	out, err := cmd.Output()
	if err != nil {
		if _, lookErr := exec.LookPath("ffprobe"); lookErr != nil {
			return nil, fmt.Errorf("%w: ffprobe not installed", ErrExtractorUnavailable)
		}
		return nil, fmt.Errorf("%w: ffprobe failed: %v", ErrCorruptVideo, err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("%w: unreadable probe output: %v", ErrCorruptVideo, err)
	}

	md := &models.VideoMetadata{}
	md.DurationSeconds, _ = strconv.ParseFloat(probe.Format.Duration, 64)

	for _, s := range probe.Streams {
		if s.CodecType != "video" {
			continue
		}
		md.Width = s.Width
		md.Height = s.Height
		md.FPS = parseFrameRate(s.RFrameRate)
		md.FrameCount, _ = strconv.Atoi(s.NbFrames)
		break
	}
	if md.Width == 0 || md.Height == 0 {
		return nil, fmt.Errorf("%w: no video stream", ErrCorruptVideo)
	}
	if md.FrameCount == 0 && md.FPS > 0 {
		md.FrameCount = int(md.DurationSeconds * md.FPS)
	}

	return md, nil
}

// parseFrameRate handles ffprobe's rational "30000/1001" form.
func parseFrameRate(rate string) float64 {
	parts := strings.SplitN(rate, "/", 2)
	if len(parts) == 2 {
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 == nil && err2 == nil && den != 0 {
			return num / den
		}
		return 0
	}
	fps, _ := strconv.ParseFloat(rate, 64)
	return fps
}

func (e *FFmpegExtractor) extractAudio(ctx context.Context, videoPath string) (string, error) {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	wavPath := base + "_audio.wav"

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		wavPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if _, lookErr := exec.LookPath("ffmpeg"); lookErr != nil {
			return "", fmt.Errorf("%w: ffmpeg not installed", ErrExtractorUnavailable)
		}
		e.log.WithField("output", string(out)).Debug("ffmpeg audio extraction failed")
		return "", fmt.Errorf("%w: audio extraction failed: %v", ErrCorruptVideo, err)
	}

	return wavPath, nil
}
