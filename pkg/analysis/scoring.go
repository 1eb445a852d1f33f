package analysis

import (
	"math"

	"github.com/Wherlan/Emotisense/pkg/models"
)

// Facial sub-score weights; must sum to 1.0.
const (
	weightEyeContact = 0.375
	weightSmile      = 0.25
	weightEngagement = 0.25
	weightEmotion    = 0.125
)

// Voice sub-score weights; must sum to 1.0.
const (
	weightClarity         = 0.3
	weightVoiceConfidence = 0.4
	weightVoiceEngagement = 0.3
)

// Facial vs voice contribution to the overall score.
const (
	weightFacial = 0.4
	weightVoice  = 0.6
)

// Emotions counted as positive for the appropriateness sub-score.
var positiveEmotions = []string{
	models.EmotionHappy,
	models.EmotionConfident,
	models.EmotionNeutral,
}

func init() {
	// Weight drift is a programming error, not a runtime condition.
	if math.Abs(weightEyeContact+weightSmile+weightEngagement+weightEmotion-1.0) > 1e-9 {
		panic("facial score weights must sum to 1.0")
	}
	if math.Abs(weightClarity+weightVoiceConfidence+weightVoiceEngagement-1.0) > 1e-9 {
		panic("voice score weights must sum to 1.0")
	}
}

// Score combines facial and voice summaries into the weighted
// performance score. A summary with no signal (no face ever detected,
// or zero-valued quality scores) contributes zero rather than failing,
// so the pipeline always produces a usable score.
//
// FacialScore, VoiceScore, and breakdown entries are rounded to three
// decimals; Overall is computed from the rounded components so the
// 0.4/0.6 combination holds exactly on the serialized values.
func Score(facial models.FacialSummary, audio models.AudioSummary) models.PerformanceScore {
	var eyeContact, smile, engagement, emotion float64
	if facial.FramesWithFace > 0 {
		eyeContact = math.Min(1.0, facial.EyeContactPercentage/80.0)
		smile = facial.AverageSmileAuthenticity
		engagement = facial.AverageEngagementLevel

		positive := 0.0
		for _, label := range positiveEmotions {
			positive += facial.EmotionDistribution[label]
		}
		emotion = math.Min(1.0, positive/70.0)
	}

	facialScore := eyeContact*weightEyeContact +
		smile*weightSmile +
		engagement*weightEngagement +
		emotion*weightEmotion

	q := audio.QualityScores
	voiceScore := q.Clarity*weightClarity +
		q.Confidence*weightVoiceConfidence +
		q.Engagement*weightVoiceEngagement

	facialScore = round3(facialScore)
	voiceScore = round3(voiceScore)

	return models.PerformanceScore{
		Overall:     facialScore*weightFacial + voiceScore*weightVoice,
		FacialScore: facialScore,
		VoiceScore:  voiceScore,
		Breakdown: map[string]float64{
			models.MetricEyeContact:      round3(eyeContact),
			models.MetricSmile:           round3(smile),
			models.MetricEngagement:      round3(engagement),
			models.MetricVoiceClarity:    round3(q.Clarity),
			models.MetricVoiceConfidence: round3(q.Confidence),
			models.MetricVoiceEngagement: round3(q.Engagement),
		},
	}
}
