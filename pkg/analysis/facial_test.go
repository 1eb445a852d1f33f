package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Wherlan/Emotisense/pkg/models"
)

func facedFrame(ts float64, emotion string, eyeContact bool, smile, engagement float64) models.FrameSignal {
	return models.FrameSignal{
		Timestamp:       ts,
		FaceDetected:    true,
		Emotion:         emotion,
		EyeContact:      eyeContact,
		SmileScore:      smile,
		EngagementLevel: engagement,
	}
}

func TestAggregateFacialEmptyTimeline(t *testing.T) {
	summary := AggregateFacial(nil)

	assert.Equal(t, 0, summary.TotalFrames)
	assert.Equal(t, 0, summary.FramesWithFace)
	assert.Zero(t, summary.FaceDetectionRate)
	assert.Empty(t, summary.DominantEmotion)
	assert.Nil(t, summary.EmotionDistribution)
}

func TestAggregateFacialNoFaceFrames(t *testing.T) {
	timeline := []models.FrameSignal{
		{Timestamp: 0.0},
		{Timestamp: 0.5},
		{Timestamp: 1.0},
	}
	summary := AggregateFacial(timeline)

	assert.Equal(t, 3, summary.TotalFrames)
	assert.Equal(t, 0, summary.FramesWithFace)
	assert.Zero(t, summary.EyeContactPercentage)
	assert.Zero(t, summary.AverageSmileAuthenticity)
	assert.Empty(t, summary.DominantEmotion)
}

func TestAggregateFacialAverages(t *testing.T) {
	timeline := []models.FrameSignal{
		facedFrame(0.0, models.EmotionHappy, true, 0.8, 1.0),
		facedFrame(0.5, models.EmotionHappy, true, 0.6, 0.6),
		facedFrame(1.0, models.EmotionNeutral, false, 0.0, 0.2),
		{Timestamp: 1.5}, // no face
	}
	summary := AggregateFacial(timeline)

	assert.Equal(t, 4, summary.TotalFrames)
	assert.Equal(t, 3, summary.FramesWithFace)
	assert.InDelta(t, 0.75, summary.FaceDetectionRate, 1e-9)
	assert.InDelta(t, 66.666, summary.EyeContactPercentage, 0.001)
	assert.InDelta(t, (0.8+0.6+0.0)/3, summary.AverageSmileAuthenticity, 1e-9)
	assert.InDelta(t, (1.0+0.6+0.2)/3, summary.AverageEngagementLevel, 1e-9)
	assert.Equal(t, models.EmotionHappy, summary.DominantEmotion)
	assert.InDelta(t, 66.666, summary.EmotionDistribution[models.EmotionHappy], 0.001)
	assert.InDelta(t, 33.333, summary.EmotionDistribution[models.EmotionNeutral], 0.001)
}

func TestAggregateFacialDominantTieBreaksFirstSeen(t *testing.T) {
	// neutral and happy tie at two frames each; neutral appears first.
	timeline := []models.FrameSignal{
		facedFrame(0.0, models.EmotionNeutral, false, 0, 0),
		facedFrame(0.5, models.EmotionHappy, false, 0, 0),
		facedFrame(1.0, models.EmotionNeutral, false, 0, 0),
		facedFrame(1.5, models.EmotionHappy, false, 0, 0),
	}
	summary := AggregateFacial(timeline)
	assert.Equal(t, models.EmotionNeutral, summary.DominantEmotion)
}

func TestAggregateFacialVariability(t *testing.T) {
	timeline := []models.FrameSignal{
		facedFrame(0.0, models.EmotionHappy, false, 0, 0),
		facedFrame(0.5, models.EmotionNeutral, false, 0, 0),
		facedFrame(1.0, models.EmotionThoughtful, false, 0, 0),
	}
	summary := AggregateFacial(timeline)
	assert.InDelta(t, 3.0/float64(models.EmotionVocabularySize), summary.EmotionalVariability, 1e-9)
}

func TestAggregateFacialDeterministic(t *testing.T) {
	timeline := []models.FrameSignal{
		facedFrame(0.0, models.EmotionHappy, true, 0.7, 0.9),
		facedFrame(0.5, models.EmotionNervous, false, 0.1, 0.3),
		facedFrame(1.0, models.EmotionHappy, true, 0.5, 0.6),
	}
	first := AggregateFacial(timeline)
	second := AggregateFacial(timeline)
	assert.Equal(t, first, second)
}
