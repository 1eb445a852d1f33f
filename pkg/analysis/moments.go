package analysis

import (
	"fmt"
	"sort"

	"github.com/Wherlan/Emotisense/pkg/models"
)

const (
	MomentPeakEngagement         = "peak_engagement"
	MomentImprovementOpportunity = "improvement_opportunity"

	maxKeyMoments        = 10
	peakMomentCount      = 3
	eyeContactSampleSize = 3
	eyeContactBreakFloor = 5
)

// KeyMoments selects notable points from the frame timeline: the three
// highest-engagement face-detected frames (ties broken by earliest
// timestamp), plus three evenly spaced eye-contact breaks when more
// than five exist. The merged list is sorted by timestamp and capped
// at ten.
func KeyMoments(timeline []models.FrameSignal) []models.KeyMoment {
	var faced []models.FrameSignal
	for _, f := range timeline {
		if f.FaceDetected {
			faced = append(faced, f)
		}
	}

	var moments []models.KeyMoment

	ranked := make([]models.FrameSignal, len(faced))
	copy(ranked, faced)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].EngagementLevel != ranked[j].EngagementLevel {
			return ranked[i].EngagementLevel > ranked[j].EngagementLevel
		}
		return ranked[i].Timestamp < ranked[j].Timestamp
	})
	if len(ranked) > peakMomentCount {
		ranked = ranked[:peakMomentCount]
	}
	for _, f := range ranked {
		moments = append(moments, models.KeyMoment{
			Timestamp:          f.Timestamp,
			Type:               MomentPeakEngagement,
			Description:        fmt.Sprintf("High engagement (score: %.2f)", f.EngagementLevel),
			TimestampFormatted: formatTimestamp(f.Timestamp),
		})
	}

	var breaks []models.FrameSignal
	for _, f := range faced {
		if !f.EyeContact {
			breaks = append(breaks, f)
		}
	}
	if len(breaks) > eyeContactBreakFloor {
		step := len(breaks) / eyeContactSampleSize
		for i := 0; i < eyeContactSampleSize && i*step < len(breaks); i++ {
			f := breaks[i*step]
			moments = append(moments, models.KeyMoment{
				Timestamp:          f.Timestamp,
				Type:               MomentImprovementOpportunity,
				Description:        "Eye contact break - practice maintaining camera focus",
				TimestampFormatted: formatTimestamp(f.Timestamp),
			})
		}
	}

	sort.SliceStable(moments, func(i, j int) bool {
		return moments[i].Timestamp < moments[j].Timestamp
	})
	if len(moments) > maxKeyMoments {
		moments = moments[:maxKeyMoments]
	}
	return moments
}

func formatTimestamp(seconds float64) string {
	return fmt.Sprintf("%d:%02d", int(seconds)/60, int(seconds)%60)
}
