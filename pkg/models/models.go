package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of an analysis session.
type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusProcessing SessionStatus = "processing"
	StatusCompleted  SessionStatus = "completed"
	StatusFailed     SessionStatus = "failed"
)

// CanTransition reports whether a session may move from one status to
// another. Completed and failed are terminal; pending may only start
// processing.
func CanTransition(from, to SessionStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Error categories recorded on failed sessions so callers can tell bad
// input apart from unavailable infrastructure.
const (
	ErrorCategoryInput      = "input_error"
	ErrorCategoryDependency = "dependency_error"
	ErrorCategoryTimeout    = "timeout_error"
	ErrorCategoryInternal   = "internal_error"
)

// Emotion labels the frame detector can produce.
const (
	EmotionHappy      = "happy"
	EmotionNeutral    = "neutral"
	EmotionConfident  = "confident"
	EmotionNervous    = "nervous"
	EmotionThoughtful = "thoughtful"
)

// EmotionVocabularySize is the total number of emotion categories the
// detector vocabulary covers, used when computing emotional variability.
const EmotionVocabularySize = 7

// Session is one uploaded video and its processing lifecycle.
type Session struct {
	ID            string         `json:"session_id"`
	UserID        string         `json:"user_id,omitempty"`
	Filename      string         `json:"filename"`
	FilePath      string         `json:"file_path"`
	Status        SessionStatus  `json:"status"`
	Progress      int            `json:"progress"`
	Metadata      *VideoMetadata `json:"metadata,omitempty"`
	Error         string         `json:"error,omitempty"`
	ErrorCategory string         `json:"error_category,omitempty"`
	Report        *Report        `json:"report,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func NewSession(filename, filePath, userID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Filename:  filename,
		FilePath:  filePath,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// VideoMetadata describes the source video as probed by the extractor.
type VideoMetadata struct {
	FPS             float64 `json:"fps"`
	FrameCount      int     `json:"frame_count"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// FrameDetection is the raw per-frame output of the face detector
// collaborator, before any interpretation.
type FrameDetection struct {
	FrameIndex      int     `json:"frame_index"`
	Timestamp       float64 `json:"timestamp"`
	FaceDetected    bool    `json:"face_detected"`
	EyesDetected    int     `json:"eyes_detected"`
	SmileDetections int     `json:"smile_detections"`
	FaceCenterX     float64 `json:"face_center_x"`
	FaceCenterY     float64 `json:"face_center_y"`
	FrameWidth      int     `json:"frame_width"`
	FrameHeight     int     `json:"frame_height"`
}

// FrameSignal is the interpreted facial signal for one analyzed frame.
type FrameSignal struct {
	FrameIndex        int     `json:"frame_index"`
	Timestamp         float64 `json:"timestamp"`
	FaceDetected      bool    `json:"face_detected"`
	Emotion           string  `json:"emotion,omitempty"`
	EmotionConfidence float64 `json:"emotion_confidence,omitempty"`
	EyeContact        bool    `json:"eye_contact"`
	SmileScore        float64 `json:"smile_score"`
	EngagementLevel   float64 `json:"engagement_level"`
}

// FacialSummary aggregates a session's frame signals. Values are kept
// at full precision; display rounding happens in the report formatter.
type FacialSummary struct {
	TotalFrames              int                `json:"total_frames_analyzed"`
	FramesWithFace           int                `json:"frames_with_face"`
	FaceDetectionRate        float64            `json:"face_detection_rate"`
	EyeContactPercentage     float64            `json:"eye_contact_percentage"`
	AverageSmileAuthenticity float64            `json:"average_smile_authenticity"`
	AverageEngagementLevel   float64            `json:"average_engagement_level"`
	EmotionDistribution      map[string]float64 `json:"emotion_distribution,omitempty"`
	DominantEmotion          string             `json:"dominant_emotion,omitempty"`
	EmotionalVariability     float64            `json:"emotional_variability"`
}

// SpeechInterval is one detected span of speech in seconds.
type SpeechInterval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// AudioMeasurements is the raw waveform-derived bundle handed over by
// the audio measurement collaborator.
type AudioMeasurements struct {
	DurationSeconds float64          `json:"duration_seconds"`
	PitchHz         []float64        `json:"pitch_hz"`
	RMSEnergy       []float64        `json:"rms_energy"`
	SpeechIntervals []SpeechInterval `json:"speech_intervals"`
	Onsets          []float64        `json:"onsets"`
}

type Prosody struct {
	MeanPitchHz    float64 `json:"mean_pitch_hz"`
	PitchStd       float64 `json:"pitch_std"`
	RangeHz        float64 `json:"range_hz"`
	VariationScore float64 `json:"variation_score"`
	MonotoneScore  float64 `json:"monotone_score"`
}

type SpeakingRate struct {
	WordsPerMinute      float64 `json:"words_per_minute"`
	Pace                string  `json:"pace"`
	PaceScore           float64 `json:"pace_score"`
	TotalSpeechSegments int     `json:"total_speech_segments"`
	AvgSegmentDuration  float64 `json:"avg_segment_duration"`
}

type EnergyAnalysis struct {
	MeanEnergy          float64 `json:"mean_energy"`
	EnergyVariation     float64 `json:"energy_variation"`
	DynamicRange        float64 `json:"dynamic_range"`
	ConsistencyScore    float64 `json:"consistency_score"`
	LowEnergyRatio      float64 `json:"low_energy_ratio"`
	ConfidenceIndicator float64 `json:"confidence_indicator"`
}

type PauseAnalysis struct {
	TotalPauses       int     `json:"total_pauses"`
	AvgPauseDuration  float64 `json:"avg_pause_duration"`
	MaxPauseDuration  float64 `json:"max_pause_duration"`
	SpeakingTimeRatio float64 `json:"speaking_time_ratio"`
	PauseQuality      string  `json:"pause_quality"`
	NaturalnessScore  float64 `json:"naturalness_score"`
}

type PitchAnalysis struct {
	AveragePitchHz float64 `json:"average_pitch_hz"`
	PitchStability float64 `json:"pitch_stability"`
	PitchRangeHz   float64 `json:"pitch_range_hz"`
	Expressiveness float64 `json:"expressiveness"`
}

// FillerAnalysis is a duration-based estimate; accurate filler counts
// need transcription, which this service does not do.
type FillerAnalysis struct {
	EstimatedFillerCount int     `json:"estimated_filler_count"`
	FillerRate           float64 `json:"filler_rate"`
	Note                 string  `json:"note"`
}

type QualityScores struct {
	Clarity    float64 `json:"clarity"`
	Confidence float64 `json:"confidence"`
	Engagement float64 `json:"engagement"`
	Overall    float64 `json:"overall"`
}

// AudioSummary is the session-level voice analysis.
type AudioSummary struct {
	DurationSeconds float64        `json:"duration_seconds"`
	Prosody         Prosody        `json:"prosody"`
	SpeakingRate    SpeakingRate   `json:"speaking_rate"`
	Energy          EnergyAnalysis `json:"energy_analysis"`
	Pauses          PauseAnalysis  `json:"pause_analysis"`
	Pitch           PitchAnalysis  `json:"pitch_analysis"`
	Fillers         FillerAnalysis `json:"filler_words"`
	QualityScores   QualityScores  `json:"quality_scores"`
	Recommendations []string       `json:"recommendations"`
}

// Breakdown keys of PerformanceScore.
const (
	MetricEyeContact      = "eye_contact"
	MetricSmile           = "smile_authenticity"
	MetricEngagement      = "engagement"
	MetricVoiceClarity    = "voice_clarity"
	MetricVoiceConfidence = "voice_confidence"
	MetricVoiceEngagement = "voice_engagement"
)

type PerformanceScore struct {
	Overall     float64            `json:"overall"`
	FacialScore float64            `json:"facial_score"`
	VoiceScore  float64            `json:"voice_score"`
	Breakdown   map[string]float64 `json:"breakdown"`
}

type ImprovementItem struct {
	Area         string  `json:"area"`
	CurrentScore float64 `json:"current_score"`
	Priority     string  `json:"priority"`
	Action       string  `json:"action"`
	TargetScore  float64 `json:"target_score"`
}

type KeyMoment struct {
	Timestamp          float64 `json:"timestamp"`
	Type               string  `json:"type"`
	Description        string  `json:"description"`
	TimestampFormatted string  `json:"timestamp_formatted"`
}

// FacialMetrics holds display-formatted facial figures for the report.
type FacialMetrics struct {
	FaceDetectionRate    string             `json:"face_detection_rate"`
	EyeContactPercentage string             `json:"eye_contact_percentage"`
	SmileAuthenticity    string             `json:"smile_authenticity"`
	EngagementLevel      string             `json:"engagement_level"`
	DominantEmotion      string             `json:"dominant_emotion"`
	EmotionDistribution  map[string]float64 `json:"emotion_distribution"`
	EmotionalRange       string             `json:"emotional_range"`
}

// VoiceMetrics holds display-formatted voice figures for the report.
type VoiceMetrics struct {
	Duration        string  `json:"duration"`
	SpeakingRate    string  `json:"speaking_rate"`
	WordsPerMinute  float64 `json:"words_per_minute"`
	VoiceClarity    string  `json:"voice_clarity"`
	VoiceConfidence string  `json:"voice_confidence"`
	VoiceEngagement string  `json:"voice_engagement"`
	PauseQuality    string  `json:"pause_quality"`
	PitchVariation  string  `json:"pitch_variation"`
}

type DetailedMetrics struct {
	FacialAnalysis FacialMetrics `json:"facial_analysis"`
	VoiceAnalysis  VoiceMetrics  `json:"voice_analysis"`
}

// Report is the final analysis artifact, created once per completed
// session and immutable afterwards.
type Report struct {
	PerformanceScore PerformanceScore  `json:"performance_score"`
	Rating           string            `json:"rating"`
	Summary          string            `json:"summary"`
	Insights         []string          `json:"insights"`
	Strengths        []string          `json:"strengths"`
	Weaknesses       []string          `json:"weaknesses"`
	ImprovementPlan  []ImprovementItem `json:"improvement_plan"`
	KeyMoments       []KeyMoment       `json:"key_moments"`
	DetailedMetrics  DetailedMetrics   `json:"detailed_metrics"`
	GeneratedAt      time.Time         `json:"generated_at"`
}
