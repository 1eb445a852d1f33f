package analysis

import (
	"math"

	"github.com/Wherlan/Emotisense/pkg/models"
)

// Fixed empirical ratio of words per detected onset.
const wordsPerOnset = 0.7

// fillerNote ships with every filler estimate; the duration heuristic
// is a placeholder until transcription exists.
const fillerNote = "Filler detection requires speech transcription for accuracy"

// AggregateAudio reduces raw waveform measurements into the session's
// voice summary. The five sub-analyses are independent; degenerate
// input (empty pitch contour, zero duration, no speech intervals)
// yields well-defined defaults instead of an error.
func AggregateAudio(m models.AudioMeasurements) models.AudioSummary {
	summary := models.AudioSummary{
		DurationSeconds: m.DurationSeconds,
		Prosody:         analyzeProsody(m.PitchHz),
		SpeakingRate:    analyzeSpeakingRate(m.Onsets, m.DurationSeconds),
		Energy:          analyzeEnergy(m.RMSEnergy),
		Pauses:          analyzePauses(m.SpeechIntervals, m.DurationSeconds),
		Pitch:           analyzePitch(m.PitchHz),
		Fillers:         analyzeFillers(m.SpeechIntervals),
	}
	summary.QualityScores = qualityScores(summary)
	summary.Recommendations = voiceRecommendations(summary.QualityScores)
	return summary
}

func analyzeProsody(pitch []float64) models.Prosody {
	if len(pitch) == 0 {
		return models.Prosody{MonotoneScore: 1.0}
	}

	mean := meanOf(pitch)
	std := stdOf(pitch, mean)
	min, max := minMax(pitch)

	return models.Prosody{
		MeanPitchHz:    mean,
		PitchStd:       std,
		RangeHz:        max - min,
		VariationScore: math.Min(1.0, std/100.0),
		MonotoneScore:  1.0 / (1.0 + std/50.0),
	}
}

func analyzeSpeakingRate(onsets []float64, duration float64) models.SpeakingRate {
	if duration == 0 {
		return models.SpeakingRate{Pace: "unknown"}
	}

	estimatedWords := float64(len(onsets)) * wordsPerOnset
	wpm := estimatedWords / duration * 60

	var pace string
	var paceScore float64
	switch {
	case wpm < 120:
		pace, paceScore = "slow", 0.6
	case wpm <= 160:
		pace, paceScore = "optimal", 1.0
	case wpm <= 200:
		pace, paceScore = "fast", 0.7
	default:
		pace, paceScore = "very_fast", 0.4
	}

	rate := models.SpeakingRate{
		WordsPerMinute:      wpm,
		Pace:                pace,
		PaceScore:           paceScore,
		TotalSpeechSegments: len(onsets),
	}
	if len(onsets) > 0 {
		rate.AvgSegmentDuration = duration / float64(len(onsets))
	}
	return rate
}

func analyzeEnergy(rms []float64) models.EnergyAnalysis {
	if len(rms) == 0 {
		return models.EnergyAnalysis{}
	}

	mean := meanOf(rms)
	std := stdOf(rms, mean)
	min, max := minMax(rms)

	lowFrames := 0
	for _, v := range rms {
		if v < mean*0.5 {
			lowFrames++
		}
	}
	lowRatio := float64(lowFrames) / float64(len(rms))

	consistency := 0.0
	if mean > 0 {
		consistency = 1.0 - math.Min(1.0, std/mean)
	}

	return models.EnergyAnalysis{
		MeanEnergy:          mean,
		EnergyVariation:     std,
		DynamicRange:        max - min,
		ConsistencyScore:    consistency,
		LowEnergyRatio:      lowRatio,
		ConfidenceIndicator: 1.0 - lowRatio,
	}
}

func analyzePauses(intervals []models.SpeechInterval, duration float64) models.PauseAnalysis {
	if len(intervals) == 0 {
		return models.PauseAnalysis{
			PauseQuality:     "continuous",
			NaturalnessScore: 0.5,
		}
	}

	var pauses []float64
	for i := 0; i < len(intervals)-1; i++ {
		pauses = append(pauses, intervals[i+1].Start-intervals[i].End)
	}

	speaking := 0.0
	for _, iv := range intervals {
		speaking += iv.End - iv.Start
	}
	analysis := models.PauseAnalysis{
		TotalPauses: len(pauses),
	}
	if duration > 0 {
		analysis.SpeakingTimeRatio = speaking / duration
	}

	if len(pauses) == 0 {
		analysis.PauseQuality = "continuous"
		analysis.NaturalnessScore = 0.5
		return analysis
	}

	avg := meanOf(pauses)
	_, max := minMax(pauses)
	analysis.AvgPauseDuration = avg
	analysis.MaxPauseDuration = max

	switch {
	case avg < 0.3:
		analysis.PauseQuality = "minimal_pauses"
	case avg <= 0.8:
		analysis.PauseQuality = "natural_pauses"
	default:
		analysis.PauseQuality = "long_pauses"
	}

	natural := 0
	for _, p := range pauses {
		if p >= 0.3 && p <= 0.8 {
			natural++
		}
	}
	analysis.NaturalnessScore = float64(natural) / float64(len(pauses))

	return analysis
}

func analyzePitch(pitch []float64) models.PitchAnalysis {
	if len(pitch) == 0 {
		return models.PitchAnalysis{}
	}

	mean := meanOf(pitch)
	std := stdOf(pitch, mean)
	min, max := minMax(pitch)
	variance := std * std

	// Expressiveness rewards variation around ~50Hz std without being
	// erratic, floored at zero.
	expressiveness := math.Min(1.0, std/80.0) * (1.0 - math.Abs(std-50.0)/100.0)

	return models.PitchAnalysis{
		AveragePitchHz: mean,
		PitchStability: 1.0 / (1.0 + variance/1000.0),
		PitchRangeHz:   max - min,
		Expressiveness: math.Max(0, expressiveness),
	}
}

func analyzeFillers(intervals []models.SpeechInterval) models.FillerAnalysis {
	short := 0
	for _, iv := range intervals {
		d := iv.End - iv.Start
		if d >= 0.1 && d <= 0.5 {
			short++
		}
	}

	rate := 0.0
	if len(intervals) > 0 {
		rate = float64(short) / float64(len(intervals))
	}

	return models.FillerAnalysis{
		EstimatedFillerCount: short,
		FillerRate:           round1(rate * 100),
		Note:                 fillerNote,
	}
}

func qualityScores(s models.AudioSummary) models.QualityScores {
	clarity := s.SpeakingRate.PaceScore*0.6 + s.Energy.ConsistencyScore*0.4

	confidence := s.Energy.ConfidenceIndicator*0.5 +
		(1.0-s.Prosody.MonotoneScore)*0.3 +
		s.Pauses.NaturalnessScore*0.2

	engagement := s.Prosody.VariationScore*0.4 +
		s.Pitch.Expressiveness*0.4 +
		(1.0-s.Prosody.MonotoneScore)*0.2

	return models.QualityScores{
		Clarity:    clamp01(clarity),
		Confidence: clamp01(confidence),
		Engagement: clamp01(engagement),
		Overall:    clamp01(clarity*0.3 + confidence*0.4 + engagement*0.3),
	}
}

func voiceRecommendations(q models.QualityScores) []string {
	var recs []string

	if q.Clarity < 0.6 {
		recs = append(recs, "Improve clarity by speaking at a moderate pace (120-160 words/minute) and maintaining consistent volume.")
	}
	if q.Confidence < 0.6 {
		recs = append(recs, "Boost confidence by increasing voice energy and reducing long pauses. Practice breathing techniques to maintain steady delivery.")
	}
	if q.Engagement < 0.6 {
		recs = append(recs, "Enhance engagement by varying your pitch and tone. Avoid monotone delivery by emphasizing key points and showing enthusiasm.")
	}
	if q.Overall >= 0.8 {
		recs = append(recs, "Excellent speaking quality! Your voice clarity, confidence, and engagement are all strong.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Good speaking quality overall. Continue practicing to maintain consistency.")
	}

	return recs
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdOf is the population standard deviation around a precomputed mean.
func stdOf(values []float64, mean float64) float64 {
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func minMax(values []float64) (float64, float64) {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
