package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Wherlan/Emotisense/pkg/models"
)

// HTTPSignalSource talks to the external detector services over HTTP:
// a face-detection service consuming video files and an audio
// measurement service consuming wav files.
type HTTPSignalSource struct {
	detectorURL string
	measurerURL string
	client      *http.Client
}

func NewHTTPSignalSource(detectorURL, measurerURL string) *HTTPSignalSource {
	return &HTTPSignalSource{
		detectorURL: detectorURL,
		measurerURL: measurerURL,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

type detectFramesResp struct {
	Detections []models.FrameDetection `json:"detections"`
}

func (s *HTTPSignalSource) DetectFrames(ctx context.Context, videoPath string, md models.VideoMetadata) ([]models.FrameDetection, error) {
	var out detectFramesResp
	if err := s.postFile(ctx, s.detectorURL+"/detect", videoPath, &out); err != nil {
		return nil, err
	}
	return out.Detections, nil
}

func (s *HTTPSignalSource) MeasureAudio(ctx context.Context, wavPath string) (models.AudioMeasurements, error) {
	var out models.AudioMeasurements
	if err := s.postFile(ctx, s.measurerURL+"/measure", wavPath, &out); err != nil {
		return models.AudioMeasurements{}, err
	}
	return out, nil
}

func (s *HTTPSignalSource) postFile(ctx context.Context, url, path string, out interface{}) error {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	fd, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &b)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
