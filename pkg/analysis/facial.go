// Package analysis converts per-frame facial signals and per-clip audio
// measurements into session-level summaries, a weighted performance
// score, and a rule-driven report. Every entry point is a pure function
// over value types: identical inputs produce identical outputs.
package analysis

import (
	"github.com/Wherlan/Emotisense/pkg/models"
)

// AggregateFacial reduces an ordered frame timeline into a facial
// summary. With no face-detected frames it returns an explicit no-face
// summary instead of dividing by zero: rates and averages are zero and
// the dominant emotion is absent.
func AggregateFacial(timeline []models.FrameSignal) models.FacialSummary {
	summary := models.FacialSummary{
		TotalFrames: len(timeline),
	}

	var faced []models.FrameSignal
	for _, f := range timeline {
		if f.FaceDetected {
			faced = append(faced, f)
		}
	}
	summary.FramesWithFace = len(faced)
	if len(faced) == 0 {
		return summary
	}

	summary.FaceDetectionRate = float64(len(faced)) / float64(len(timeline))

	eyeContact := 0
	var smileSum, engagementSum float64
	counts := make(map[string]int)
	var seen []string // emotion labels in first-seen order

	for _, f := range faced {
		if f.EyeContact {
			eyeContact++
		}
		smileSum += f.SmileScore
		engagementSum += f.EngagementLevel

		if _, ok := counts[f.Emotion]; !ok {
			seen = append(seen, f.Emotion)
		}
		counts[f.Emotion]++
	}

	n := float64(len(faced))
	summary.EyeContactPercentage = float64(eyeContact) / n * 100
	summary.AverageSmileAuthenticity = smileSum / n
	summary.AverageEngagementLevel = engagementSum / n

	summary.EmotionDistribution = make(map[string]float64, len(counts))
	for label, count := range counts {
		summary.EmotionDistribution[label] = float64(count) / n * 100
	}

	// Dominant emotion: histogram argmax, ties broken by first-seen
	// label in detection order.
	best := -1
	for _, label := range seen {
		if counts[label] > best {
			best = counts[label]
			summary.DominantEmotion = label
		}
	}

	summary.EmotionalVariability = float64(len(counts)) / float64(models.EmotionVocabularySize)

	return summary
}
