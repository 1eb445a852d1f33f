package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/Wherlan/Emotisense/pkg/models"
)

const (
	maxStrengths        = 5
	maxWeaknesses       = 5
	maxImprovementItems = 5
)

// Rating buckets an overall score into its display rating.
func Rating(overall float64) string {
	switch {
	case overall >= 0.8:
		return "Excellent"
	case overall >= 0.6:
		return "Good"
	case overall >= 0.4:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

// BuildReport assembles the final report from the two summaries, the
// video metadata, and the frame timeline. Apart from GeneratedAt the
// output is fully determined by its inputs.
func BuildReport(facial models.FacialSummary, audio models.AudioSummary, md models.VideoMetadata, timeline []models.FrameSignal) models.Report {
	score := Score(facial, audio)

	return models.Report{
		PerformanceScore: score,
		Rating:           Rating(score.Overall),
		Summary:          buildSummary(facial, audio, md),
		Insights:         buildInsights(facial, audio),
		Strengths:        identifyStrengths(score.Breakdown),
		Weaknesses:       identifyWeaknesses(score.Breakdown, audio),
		ImprovementPlan:  buildImprovementPlan(score.Breakdown),
		KeyMoments:       KeyMoments(timeline),
		DetailedMetrics: models.DetailedMetrics{
			FacialAnalysis: formatFacialMetrics(facial),
			VoiceAnalysis:  formatVoiceMetrics(audio),
		},
		GeneratedAt: time.Now().UTC(),
	}
}

func buildSummary(facial models.FacialSummary, audio models.AudioSummary, md models.VideoMetadata) string {
	duration := md.DurationSeconds
	durationStr := fmt.Sprintf("%dm %ds", int(duration)/60, int(duration)%60)

	dominant := facial.DominantEmotion
	if dominant == "" {
		dominant = models.EmotionNeutral
	}

	summary := fmt.Sprintf("Analyzed %s of video content. ", durationStr)
	summary += fmt.Sprintf("Your dominant emotion was %s with %.0f%% eye contact maintained. ",
		dominant, facial.EyeContactPercentage)

	switch overall := audio.QualityScores.Overall; {
	case overall >= 0.7:
		summary += "Your voice delivery was strong with good clarity and confidence. "
	case overall >= 0.5:
		summary += "Your voice delivery was adequate but has room for improvement. "
	default:
		summary += "Your voice delivery needs significant improvement in clarity and confidence. "
	}

	return summary
}

// buildInsights evaluates every insight rule independently; there is no
// early exit, so one metric cannot mask another.
func buildInsights(facial models.FacialSummary, audio models.AudioSummary) []string {
	var insights []string

	eyeContact := facial.EyeContactPercentage
	if eyeContact >= 70 {
		insights = append(insights, fmt.Sprintf("Strong eye contact maintained at %.0f%%. This conveys confidence and engagement.", eyeContact))
	} else if eyeContact < 50 {
		insights = append(insights, fmt.Sprintf("Eye contact at %.0f%% is below optimal. Aim for 60-80%% to appear more confident.", eyeContact))
	}

	smile := facial.AverageSmileAuthenticity
	if smile >= 0.7 {
		insights = append(insights, "Your smiles appear genuine and authentic, which builds rapport.")
	} else if smile < 0.4 && smile > 0 {
		insights = append(insights, "Smiles detected but may appear forced. Practice natural, relaxed expressions.")
	}

	wpm := audio.SpeakingRate.WordsPerMinute
	if wpm > 0 {
		switch {
		case wpm >= 120 && wpm <= 160:
			insights = append(insights, fmt.Sprintf("Speaking pace at %.0f WPM is optimal for clarity and engagement.", wpm))
		case wpm > 180:
			insights = append(insights, fmt.Sprintf("Speaking pace at %.0f WPM is too fast. Slow down for better comprehension.", wpm))
		case wpm < 100:
			insights = append(insights, fmt.Sprintf("Speaking pace at %.0f WPM is too slow. Increase tempo to maintain engagement.", wpm))
		}
	}

	confidence := audio.Energy.ConfidenceIndicator
	if confidence >= 0.7 {
		insights = append(insights, "Voice energy conveys strong confidence and authority.")
	} else if confidence < 0.5 {
		insights = append(insights, "Voice energy is low. Project more to convey confidence and enthusiasm.")
	}

	return insights
}

// strengthRules are checked in a fixed order so truncation to the top
// five is deterministic.
var strengthRules = []struct {
	metric  string
	message string
}{
	{models.MetricEyeContact, "Excellent eye contact - maintains connection with audience"},
	{models.MetricSmile, "Authentic, warm facial expressions"},
	{models.MetricVoiceClarity, "Clear and well-paced speech delivery"},
	{models.MetricVoiceConfidence, "Confident vocal presence with good energy"},
	{models.MetricVoiceEngagement, "Engaging voice with good pitch variation"},
	{models.MetricEngagement, "High overall engagement and presence"},
}

func identifyStrengths(breakdown map[string]float64) []string {
	var strengths []string
	for _, rule := range strengthRules {
		if breakdown[rule.metric] >= 0.7 {
			strengths = append(strengths, rule.message)
		}
	}

	if len(strengths) == 0 {
		strengths = append(strengths, "Baseline performance established - focus on improvement areas below")
	}
	if len(strengths) > maxStrengths {
		strengths = strengths[:maxStrengths]
	}
	return strengths
}

var weaknessRules = []struct {
	metric    string
	threshold float64
	message   string
}{
	{models.MetricEyeContact, 0.5, "Eye contact needs improvement - look at camera more often"},
	{models.MetricSmile, 0.4, "Work on natural, authentic facial expressions"},
	{models.MetricVoiceClarity, 0.5, "Speech clarity - adjust pace and enunciation"},
	{models.MetricVoiceConfidence, 0.5, "Vocal confidence - increase volume and reduce pauses"},
	{models.MetricVoiceEngagement, 0.5, "Voice monotony - add more pitch variation and enthusiasm"},
}

func identifyWeaknesses(breakdown map[string]float64, audio models.AudioSummary) []string {
	var weaknesses []string
	for _, rule := range weaknessRules {
		if breakdown[rule.metric] < rule.threshold {
			weaknesses = append(weaknesses, rule.message)
		}
	}

	if audio.Prosody.MonotoneScore > 0.7 {
		weaknesses = append(weaknesses, "Voice is too monotone - vary your pitch more")
	}
	if audio.SpeakingRate.WordsPerMinute > 200 {
		weaknesses = append(weaknesses, "Speaking too fast - slow down for better clarity")
	}

	if len(weaknesses) > maxWeaknesses {
		weaknesses = weaknesses[:maxWeaknesses]
	}
	return weaknesses
}

var improvementAreas = []struct {
	metric string
	title  string
	action string
}{
	{models.MetricEyeContact, "Eye Contact", "Practice looking directly at the camera lens. Imagine you're talking to a friend."},
	{models.MetricSmile, "Facial Expressions", "Practice genuine smiles in the mirror. Think of something pleasant before speaking."},
	{models.MetricVoiceClarity, "Speech Clarity", "Slow down by 10-20%. Enunciate clearly. Practice tongue twisters."},
	{models.MetricVoiceConfidence, "Vocal Confidence", "Breathe deeply. Project from your diaphragm. Record yourself daily."},
	{models.MetricVoiceEngagement, "Voice Variation", "Practice emphasizing key words. Vary your pitch when telling stories."},
}

// buildImprovementPlan includes every metric scoring below 0.6, ranked
// high-priority first and, within a priority, lowest score first. The
// sort is stable so equal entries keep their rule-table order.
func buildImprovementPlan(breakdown map[string]float64) []models.ImprovementItem {
	var plan []models.ImprovementItem
	for _, area := range improvementAreas {
		score := breakdown[area.metric]
		if score >= 0.6 {
			continue
		}
		priority := "medium"
		if score < 0.4 {
			priority = "high"
		}
		plan = append(plan, models.ImprovementItem{
			Area:         area.title,
			CurrentScore: round2(score),
			Priority:     priority,
			Action:       area.action,
			TargetScore:  0.7,
		})
	}

	sort.SliceStable(plan, func(i, j int) bool {
		if plan[i].Priority != plan[j].Priority {
			return plan[i].Priority == "high"
		}
		return plan[i].CurrentScore < plan[j].CurrentScore
	})

	if len(plan) > maxImprovementItems {
		plan = plan[:maxImprovementItems]
	}
	return plan
}

func formatFacialMetrics(facial models.FacialSummary) models.FacialMetrics {
	dominant := facial.DominantEmotion
	if dominant == "" {
		dominant = "unknown"
	}

	distribution := make(map[string]float64, len(facial.EmotionDistribution))
	for label, pct := range facial.EmotionDistribution {
		distribution[label] = round1(pct)
	}

	return models.FacialMetrics{
		FaceDetectionRate:    fmt.Sprintf("%.1f%%", facial.FaceDetectionRate*100),
		EyeContactPercentage: fmt.Sprintf("%.1f%%", facial.EyeContactPercentage),
		SmileAuthenticity:    fmt.Sprintf("%.0f/100", facial.AverageSmileAuthenticity*100),
		EngagementLevel:      fmt.Sprintf("%.0f/100", facial.AverageEngagementLevel*100),
		DominantEmotion:      dominant,
		EmotionDistribution:  distribution,
		EmotionalRange:       fmt.Sprintf("%.0f/100", facial.EmotionalVariability*100),
	}
}

func formatVoiceMetrics(audio models.AudioSummary) models.VoiceMetrics {
	pace := audio.SpeakingRate.Pace
	if pace == "" {
		pace = "unknown"
	}
	pauseQuality := audio.Pauses.PauseQuality
	if pauseQuality == "" {
		pauseQuality = "unknown"
	}

	return models.VoiceMetrics{
		Duration:        fmt.Sprintf("%.1fs", audio.DurationSeconds),
		SpeakingRate:    pace,
		WordsPerMinute:  round1(audio.SpeakingRate.WordsPerMinute),
		VoiceClarity:    fmt.Sprintf("%.0f/100", audio.QualityScores.Clarity*100),
		VoiceConfidence: fmt.Sprintf("%.0f/100", audio.QualityScores.Confidence*100),
		VoiceEngagement: fmt.Sprintf("%.0f/100", audio.QualityScores.Engagement*100),
		PauseQuality:    pauseQuality,
		PitchVariation:  fmt.Sprintf("%.0f/100", audio.Prosody.VariationScore*100),
	}
}
