package analysis

import (
	"strings"
	"time"

	"vidscope/internal/language"
	"vidscope/internal/services/whisper"
	"vidscope/internal/services/youtube"
)

// Report is the comprehensive analysis result persisted on job completion.
type Report struct {
	Summary               ReportSummary         `json:"summary"`
	TranscriptAnalysis    TranscriptAnalysis    `json:"transcript_analysis"`
	ContentInsights       *ContentInsights      `json:"content_insights"`
	AudienceFeedback      *CommentInsights      `json:"audience_feedback"`
	CrossAnalysisInsights CrossAnalysisInsights `json:"cross_analysis_insights"`
	Recommendations       Recommendations       `json:"recommendations"`
	Metadata              ReportMetadata        `json:"metadata"`
}

// ReportSummary is the headline block of the report.
type ReportSummary struct {
	VideoTitle        string  `json:"video_title"`
	Channel           string  `json:"channel"`
	DurationMinutes   float64 `json:"duration_minutes"`
	ViewCount         int64   `json:"view_count"`
	LikeCount         int64   `json:"like_count"`
	CommentCount      int     `json:"comment_count"`
	OverallScore      float64 `json:"overall_score"`
	AnalysisTimestamp string  `json:"analysis_timestamp"`
}

// TranscriptAnalysis summarizes the transcription for the report.
type TranscriptAnalysis struct {
	Language        string  `json:"language"`
	LanguageName    string  `json:"language_name"`
	WordCount       int     `json:"word_count"`
	DurationSeconds float64 `json:"duration_seconds"`
	SpeakingRateWpm float64 `json:"speaking_rate_wpm"`
}

// ContentAudienceAlignment relates the content tone to audience response.
type ContentAudienceAlignment struct {
	ContentTone                   string  `json:"content_tone"`
	AudienceResponsePositiveRatio float64 `json:"audience_response_positive_ratio"`
	AlignmentScore                float64 `json:"alignment_score"`
}

// EngagementPatterns relates views to likes and comments.
type EngagementPatterns struct {
	LikeToViewRatio       float64 `json:"like_to_view_ratio"`
	CommentToViewRatio    float64 `json:"comment_to_view_ratio"`
	OverallEngagementRate float64 `json:"overall_engagement_rate"`
	EngagementQuality     string  `json:"engagement_quality"`
}

// TopicResonance relates content topics to audience themes.
type TopicResonance struct {
	ContentTopics     []string `json:"content_topics"`
	AudienceThemes    []string `json:"audience_themes"`
	TopicOverlapScore float64  `json:"topic_overlap_score"`
	ResonanceLevel    string   `json:"resonance_level"`
}

// CrossAnalysisInsights correlates content and comment analysis.
type CrossAnalysisInsights struct {
	ContentAudienceAlignment *ContentAudienceAlignment `json:"content_audience_alignment,omitempty"`
	EngagementPatterns       *EngagementPatterns       `json:"engagement_patterns,omitempty"`
	TopicResonance           *TopicResonance           `json:"topic_resonance,omitempty"`
}

// Recommendations groups improvement suggestions by concern.
type Recommendations struct {
	ContentOptimization   []string `json:"content_optimization"`
	AudienceEngagement    []string `json:"audience_engagement"`
	TechnicalImprovements []string `json:"technical_improvements"`
	StrategicInsights     []string `json:"strategic_insights"`
}

// ReportMetadata records how the report was produced.
type ReportMetadata struct {
	AnalysisOptions     Options  `json:"analysis_options"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
	DataSources         []string `json:"data_sources"`
	DegradedSteps       []string `json:"degraded_steps,omitempty"`
}

// BuildReport synthesizes the comprehensive report from the step outputs.
// contentInsights and commentInsights may be nil when their step failed; the
// report degrades instead of erroring, and degradedSteps names the gaps.
func BuildReport(video *youtube.VideoInfo, commentCount int, transcript *whisper.Transcript, contentInsights *ContentInsights, commentInsights *CommentInsights, opts Options, degradedSteps []string) *Report {
	if video == nil {
		video = &youtube.VideoInfo{}
	}
	now := time.Now().UTC().Format(time.RFC3339)

	report := &Report{
		Summary: ReportSummary{
			VideoTitle:        video.Title,
			Channel:           video.ChannelTitle,
			DurationMinutes:   roundN(float64(video.Duration)/60, 1),
			ViewCount:         video.ViewCount,
			LikeCount:         video.LikeCount,
			CommentCount:      commentCount,
			OverallScore:      overallScore(contentInsights, commentInsights),
			AnalysisTimestamp: now,
		},
		ContentInsights:       contentInsights,
		AudienceFeedback:      commentInsights,
		CrossAnalysisInsights: crossAnalysisInsights(contentInsights, commentInsights, video),
		Recommendations:       buildRecommendations(contentInsights, commentInsights, video, transcript),
		Metadata: ReportMetadata{
			AnalysisOptions:     opts,
			ProcessingTimestamp: now,
			DataSources:         dataSources(),
			DegradedSteps:       degradedSteps,
		},
	}

	if transcript != nil {
		report.TranscriptAnalysis = TranscriptAnalysis{
			Language:        transcript.Language,
			LanguageName:    language.DisplayName(transcript.Language),
			WordCount:       transcript.WordCount,
			DurationSeconds: transcript.Duration,
			SpeakingRateWpm: speakingRateWpm(transcript.WordCount, transcript.Duration),
		}
	}
	return report
}

func dataSources() []string {
	return []string{"youtube_api", "whisper_transcription", "llm_analysis"}
}

// speakingRateWpm returns words per minute rounded to one decimal, 0 when the
// duration is 0.
func speakingRateWpm(wordCount int, durationSeconds float64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	return roundN(float64(wordCount)/(durationSeconds/60), 1)
}

// overallScore averages content quality, positive comment ratio, and
// structure score, defaulting missing content signals to 0.5 and omitting
// the comment ratio when there is no sentiment data.
func overallScore(contentInsights *ContentInsights, commentInsights *CommentInsights) float64 {
	contentQuality := 0.5
	structureScore := 0.5
	if contentInsights != nil {
		contentQuality = contentInsights.QualityScore
		structureScore = contentInsights.ContentStructure.StructureScore
	}

	scores := []float64{contentQuality}
	if commentInsights != nil && commentInsights.SentimentDistribution.Total() > 0 {
		scores = append(scores, commentInsights.SentimentDistribution.PositiveRatio())
	}
	scores = append(scores, structureScore)

	var sum float64
	for _, score := range scores {
		sum += score
	}
	return round2(sum / float64(len(scores)))
}

func crossAnalysisInsights(contentInsights *ContentInsights, commentInsights *CommentInsights, video *youtube.VideoInfo) CrossAnalysisInsights {
	var insights CrossAnalysisInsights

	if contentInsights != nil && commentInsights != nil && commentInsights.SentimentDistribution.Total() > 0 {
		tone := contentInsights.SentimentAnalysis.OverallSentiment
		positiveRatio := commentInsights.SentimentDistribution.PositiveRatio()
		insights.ContentAudienceAlignment = &ContentAudienceAlignment{
			ContentTone:                   tone,
			AudienceResponsePositiveRatio: positiveRatio,
			AlignmentScore:                alignmentScore(tone, positiveRatio),
		}
	}

	if video.ViewCount > 0 {
		commentCount := 0
		if commentInsights != nil {
			commentCount = commentInsights.TotalComments
		}
		views := float64(video.ViewCount)
		engagementRate := (float64(video.LikeCount) + float64(commentCount)) / views
		insights.EngagementPatterns = &EngagementPatterns{
			LikeToViewRatio:       float64(video.LikeCount) / views,
			CommentToViewRatio:    float64(commentCount) / views,
			OverallEngagementRate: engagementRate,
			EngagementQuality:     engagementBucket(engagementRate),
		}
	}

	contentTopics := contentInsights.Topics()
	audienceThemes := commentInsights.ThemeNames()
	if len(contentTopics) > 0 && len(audienceThemes) > 0 {
		overlap := TopicOverlap(contentTopics, audienceThemes)
		insights.TopicResonance = &TopicResonance{
			ContentTopics:     head(contentTopics, 5),
			AudienceThemes:    head(audienceThemes, 5),
			TopicOverlapScore: overlap,
			ResonanceLevel:    resonanceBucket(overlap),
		}
	}

	return insights
}

// alignmentScore relates the content tone to the share of positive comments.
func alignmentScore(contentTone string, positiveRatio float64) float64 {
	switch {
	case contentTone == "positive" && positiveRatio > 0.6:
		return 0.9
	case contentTone == "neutral" && positiveRatio >= 0.3 && positiveRatio <= 0.7:
		return 0.8
	case contentTone == "negative" && positiveRatio < 0.4:
		return 0.7
	default:
		return 0.5
	}
}

func engagementBucket(rate float64) string {
	switch {
	case rate > 0.05:
		return "high"
	case rate > 0.01:
		return "medium"
	default:
		return "low"
	}
}

func resonanceBucket(overlap float64) string {
	switch {
	case overlap > 0.6:
		return "high"
	case overlap > 0.3:
		return "medium"
	default:
		return "low"
	}
}

// TopicOverlap computes the case-insensitive Jaccard similarity between the
// content topics and audience themes. Either list empty yields 0.
func TopicOverlap(contentTopics, audienceThemes []string) float64 {
	if len(contentTopics) == 0 || len(audienceThemes) == 0 {
		return 0
	}
	contentSet := lowerSet(contentTopics)
	themeSet := lowerSet(audienceThemes)

	intersection := 0
	for topic := range contentSet {
		if _, ok := themeSet[topic]; ok {
			intersection++
		}
	}
	union := len(contentSet) + len(themeSet) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[strings.ToLower(value)] = struct{}{}
	}
	return set
}

func buildRecommendations(contentInsights *ContentInsights, commentInsights *CommentInsights, video *youtube.VideoInfo, transcript *whisper.Transcript) Recommendations {
	var recs Recommendations

	if contentInsights != nil {
		structure := contentInsights.ContentStructure
		if structure.IntroductionQuality < 0.7 {
			recs.ContentOptimization = append(recs.ContentOptimization, "Consider strengthening the video introduction to improve viewer retention")
		}
		if structure.ConclusionQuality < 0.7 {
			recs.ContentOptimization = append(recs.ContentOptimization, "Strengthen the conclusion with a clear call to action")
		}
	}

	if commentInsights != nil {
		if commentInsights.SentimentDistribution.NegativeRatio() > 0.3 {
			recs.AudienceEngagement = append(recs.AudienceEngagement, "Address negative feedback in follow-up content to respond to audience concerns")
		}
		if commentInsights.AuthorEngagement.ReplyRate < 0.1 {
			recs.AudienceEngagement = append(recs.AudienceEngagement, "Reply to more comments to raise audience participation")
		}
	}

	if transcript != nil {
		wpm := speakingRateWpm(transcript.WordCount, transcript.Duration)
		if wpm > 180 {
			recs.TechnicalImprovements = append(recs.TechnicalImprovements, "Consider slowing the speaking pace to improve comprehension")
		} else if wpm > 0 && wpm < 120 {
			recs.TechnicalImprovements = append(recs.TechnicalImprovements, "A slightly faster speaking pace could hold viewer attention better")
		}
	}

	if video.ViewCount > 0 && float64(video.LikeCount)/float64(video.ViewCount) < 0.02 {
		recs.StrategicInsights = append(recs.StrategicInsights, "Refining content quality or title and thumbnail could improve the like rate")
	}

	return recs
}

func head(values []string, limit int) []string {
	if len(values) <= limit {
		return values
	}
	return values[:limit]
}
