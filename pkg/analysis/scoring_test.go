package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Wherlan/Emotisense/pkg/models"
)

func TestScoreOverallInvariant(t *testing.T) {
	facial := models.FacialSummary{
		FramesWithFace:           10,
		EyeContactPercentage:     65,
		AverageSmileAuthenticity: 0.55,
		AverageEngagementLevel:   0.62,
		EmotionDistribution: map[string]float64{
			models.EmotionHappy:   40,
			models.EmotionNeutral: 35,
			models.EmotionNervous: 25,
		},
	}
	audio := models.AudioSummary{
		QualityScores: models.QualityScores{Clarity: 0.71, Confidence: 0.58, Engagement: 0.63},
	}

	score := Score(facial, audio)

	assert.InDelta(t, score.FacialScore*0.4+score.VoiceScore*0.6, score.Overall, 1e-9)
	assert.GreaterOrEqual(t, score.Overall, 0.0)
	assert.LessOrEqual(t, score.Overall, 1.0)
}

func TestScoreNoFaceContributesZeroFacial(t *testing.T) {
	audio := models.AudioSummary{
		QualityScores: models.QualityScores{Clarity: 0.8, Confidence: 0.8, Engagement: 0.8},
	}
	score := Score(models.FacialSummary{}, audio)

	assert.Zero(t, score.FacialScore)
	assert.InDelta(t, 0.8, score.VoiceScore, 1e-9)
	assert.InDelta(t, 0.8*0.6, score.Overall, 1e-9)
	assert.Zero(t, score.Breakdown[models.MetricEyeContact])
	assert.Zero(t, score.Breakdown[models.MetricSmile])
}

func TestScoreEyeContactCapsAt80Percent(t *testing.T) {
	base := models.FacialSummary{FramesWithFace: 5}

	at80 := base
	at80.EyeContactPercentage = 80
	at100 := base
	at100.EyeContactPercentage = 100

	s80 := Score(at80, models.AudioSummary{})
	s100 := Score(at100, models.AudioSummary{})

	assert.Equal(t, 1.0, s80.Breakdown[models.MetricEyeContact])
	assert.Equal(t, s80.Breakdown[models.MetricEyeContact], s100.Breakdown[models.MetricEyeContact])
}

func TestScoreEyeContactMonotoneBelowCap(t *testing.T) {
	prev := -1.0
	for pct := 0.0; pct <= 80; pct += 10 {
		facial := models.FacialSummary{FramesWithFace: 5, EyeContactPercentage: pct}
		score := Score(facial, models.AudioSummary{})
		sub := score.Breakdown[models.MetricEyeContact]
		assert.Greater(t, sub, prev, "eye contact sub-score must increase with percentage")
		prev = sub
	}
}

func TestScoreEmotionAppropriateness(t *testing.T) {
	// All-positive distribution saturates the emotion sub-score at the
	// 70% cap; an all-negative one contributes nothing.
	positive := models.FacialSummary{
		FramesWithFace:      4,
		EmotionDistribution: map[string]float64{models.EmotionHappy: 100},
	}
	negative := models.FacialSummary{
		FramesWithFace:      4,
		EmotionDistribution: map[string]float64{models.EmotionNervous: 100},
	}

	sp := Score(positive, models.AudioSummary{})
	sn := Score(negative, models.AudioSummary{})

	assert.InDelta(t, 1.0*weightEmotion, sp.FacialScore, 1e-9)
	assert.Zero(t, sn.FacialScore)
}

func TestScoreBreakdownRounding(t *testing.T) {
	facial := models.FacialSummary{
		FramesWithFace:           3,
		AverageSmileAuthenticity: 1.0 / 3.0,
	}
	score := Score(facial, models.AudioSummary{})

	sub := score.Breakdown[models.MetricSmile]
	assert.Equal(t, sub, math.Round(sub*1000)/1000)
	assert.InDelta(t, 0.333, sub, 1e-9)
}

func TestScoreIdempotent(t *testing.T) {
	facial := models.FacialSummary{
		FramesWithFace:           7,
		EyeContactPercentage:     55,
		AverageSmileAuthenticity: 0.41,
		AverageEngagementLevel:   0.66,
		EmotionDistribution:      map[string]float64{models.EmotionNeutral: 100},
	}
	audio := models.AudioSummary{
		QualityScores: models.QualityScores{Clarity: 0.52, Confidence: 0.49, Engagement: 0.61},
	}

	first := Score(facial, audio)
	second := Score(facial, audio)
	assert.Equal(t, first, second)
}
