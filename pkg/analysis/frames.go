package analysis

import (
	"math"

	"github.com/Wherlan/Emotisense/pkg/models"
)

// BuildFrameSignal interprets one raw face detection as a frame signal.
// The heuristics map coarse detector output (eye and smile cascade
// hits, face position) onto the emotion vocabulary; they are the
// session's source of per-frame emotion, smile, and engagement values.
func BuildFrameSignal(d models.FrameDetection) models.FrameSignal {
	signal := models.FrameSignal{
		FrameIndex: d.FrameIndex,
		Timestamp:  d.Timestamp,
	}
	if !d.FaceDetected {
		return signal
	}
	signal.FaceDetected = true

	hasEyes := d.EyesDetected >= 2
	hasSmile := d.SmileDetections > 0

	signal.EyeContact = estimateEyeContact(d)
	signal.Emotion, signal.EmotionConfidence = estimateEmotion(hasEyes, hasSmile)
	signal.SmileScore = smileScore(hasSmile, hasEyes, d.SmileDetections)
	signal.EngagementLevel = engagementLevel(hasEyes, signal.EyeContact, hasSmile)

	return signal
}

// estimateEyeContact treats a face centered in the frame as looking at
// the camera.
func estimateEyeContact(d models.FrameDetection) bool {
	if d.FrameWidth == 0 || d.FrameHeight == 0 {
		return false
	}

	w := float64(d.FrameWidth)
	h := float64(d.FrameHeight)
	dx := d.FaceCenterX - w/2
	dy := d.FaceCenterY - h/2
	distance := math.Sqrt(dx*dx + dy*dy)

	maxDistance := math.Sqrt(w*w+h*h) / 4
	return distance < maxDistance*0.5
}

func estimateEmotion(hasEyes, hasSmile bool) (string, float64) {
	switch {
	case hasSmile && hasEyes:
		return models.EmotionHappy, 0.8
	case hasSmile:
		// Smile without visible eyes reads as possibly forced.
		return models.EmotionHappy, 0.5
	case hasEyes:
		return models.EmotionNeutral, 0.6
	default:
		return models.EmotionThoughtful, 0.5
	}
}

func smileScore(hasSmile, hasEyes bool, smileCount int) float64 {
	if !hasSmile {
		return 0.0
	}

	score := 0.5
	if hasEyes {
		score += 0.3
	}
	if smileCount > 1 {
		score += 0.2
	}
	return math.Min(1.0, score)
}

func engagementLevel(hasEyes, eyeContact, hasSmile bool) float64 {
	engagement := 0.0
	if hasEyes {
		engagement += 0.3
	}
	if eyeContact {
		engagement += 0.4
	}
	if hasSmile {
		engagement += 0.3
	}
	return math.Min(1.0, engagement)
}
