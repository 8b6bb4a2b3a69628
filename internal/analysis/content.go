package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"vidscope/internal/logging"
	"vidscope/internal/services"
	"vidscope/internal/services/llm"
	"vidscope/internal/services/whisper"
	"vidscope/internal/services/youtube"
)

// Completer is the JSON-only completion surface shared by the LLM providers.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// KeyPoint is an important idea extracted from the transcript, with the
// timestamp range of the segment it was matched to.
type KeyPoint struct {
	Text           string   `json:"text"`
	Importance     float64  `json:"importance"`
	TimestampStart *float64 `json:"timestamp_start,omitempty"`
	TimestampEnd   *float64 `json:"timestamp_end,omitempty"`
	Category       string   `json:"category,omitempty"`
}

// TopicAnalysis classifies the video content.
type TopicAnalysis struct {
	MainTopic   string   `json:"main_topic"`
	SubTopics   []string `json:"sub_topics"`
	Keywords    []string `json:"keywords"`
	ContentType string   `json:"content_type"`
	Confidence  float64  `json:"confidence"`
}

// SentimentAnalysis captures the emotional tone of the content.
type SentimentAnalysis struct {
	OverallSentiment string           `json:"overall_sentiment"`
	SentimentScore   float64          `json:"sentiment_score"`
	EmotionalTone    []string         `json:"emotional_tone"`
	Progression      []SentimentPoint `json:"sentiment_progression"`
}

// SentimentPoint is one sample of the sentiment over time.
type SentimentPoint struct {
	Timestamp float64 `json:"timestamp"`
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// ContentSegment is one span of the main content.
type ContentSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Topic string  `json:"topic"`
}

// ContentStructure describes how the video is organized.
type ContentStructure struct {
	IntroductionEnd     *float64         `json:"introduction_end,omitempty"`
	MainContentSegments []ContentSegment `json:"main_content_segments"`
	ConclusionStart     *float64         `json:"conclusion_start,omitempty"`
	CallToAction        string           `json:"call_to_action,omitempty"`
	IntroductionQuality float64          `json:"introduction_quality"`
	ConclusionQuality   float64          `json:"conclusion_quality"`
	StructureScore      float64          `json:"overall_structure_score"`
}

// ContentInsights is the full content analysis result.
type ContentInsights struct {
	KeyPoints         []KeyPoint        `json:"key_points"`
	TopicAnalysis     TopicAnalysis     `json:"topic_analysis"`
	SentimentAnalysis SentimentAnalysis `json:"sentiment_analysis"`
	ContentStructure  ContentStructure  `json:"content_structure"`
	Summary           string            `json:"summary"`
	Recommendations   []string          `json:"recommendations"`
	QualityScore      float64           `json:"quality_score"`
}

// Topics returns the main topic and sub topics as one list for cross-analysis.
func (in *ContentInsights) Topics() []string {
	if in == nil {
		return nil
	}
	topics := make([]string, 0, 1+len(in.TopicAnalysis.SubTopics))
	if in.TopicAnalysis.MainTopic != "" {
		topics = append(topics, in.TopicAnalysis.MainTopic)
	}
	topics = append(topics, in.TopicAnalysis.SubTopics...)
	return topics
}

const contentSystemPrompt = "You are a video content analyst. Respond with JSON only, matching the requested schema exactly."

// ContentAnalyzer produces LLM-backed insights over a transcript.
type ContentAnalyzer struct {
	completer Completer
	logger    *slog.Logger
}

// NewContentAnalyzer constructs a content analyzer.
func NewContentAnalyzer(completer Completer, logger *slog.Logger) *ContentAnalyzer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ContentAnalyzer{
		completer: completer,
		logger:    logger.With(logging.String(logging.FieldComponent, "content-analyzer")),
	}
}

// Analyze runs the full content analysis over a transcript. An empty
// transcript is an error; individual sub-analyses degrade to defaults when
// the model fails so one bad response does not lose the whole step.
func (a *ContentAnalyzer) Analyze(ctx context.Context, transcript *whisper.Transcript, video *youtube.VideoInfo) (*ContentInsights, error) {
	if transcript == nil || strings.TrimSpace(transcript.FullText) == "" {
		return nil, services.Wrap(services.ErrValidation, "content analysis", "analyze", "transcript text is empty", nil)
	}
	if video == nil {
		video = &youtube.VideoInfo{}
	}

	insights := &ContentInsights{
		KeyPoints:       a.extractKeyPoints(ctx, transcript),
		TopicAnalysis:   a.analyzeTopics(ctx, transcript, video),
		Summary:         a.generateSummary(ctx, transcript, video),
		Recommendations: a.generateRecommendations(ctx, transcript, video),
	}
	insights.SentimentAnalysis = a.analyzeSentiment(ctx, transcript)
	insights.ContentStructure = a.analyzeStructure(ctx, transcript)
	insights.QualityScore = contentQualityScore(
		insights.KeyPoints,
		insights.TopicAnalysis.Confidence,
		insights.SentimentAnalysis.SentimentScore,
		transcript.WordCount,
	)

	a.logger.InfoContext(ctx, "content analysis completed",
		logging.Int("key_points", len(insights.KeyPoints)),
		logging.Float64("quality_score", insights.QualityScore))
	return insights, nil
}

func (a *ContentAnalyzer) extractKeyPoints(ctx context.Context, transcript *whisper.Transcript) []KeyPoint {
	prompt := fmt.Sprintf(`Extract the most important key points from this video transcript.
For each key point give the main idea, an importance score between 0.0 and 1.0,
and a category when one applies.

Transcript: %s

Return JSON: {"key_points": [{"text": "...", "importance": 0.8, "category": "main_concept"}]}`,
		truncate(transcript.FullText, 4000))

	var parsed struct {
		KeyPoints []struct {
			Text       string  `json:"text"`
			Importance float64 `json:"importance"`
			Category   string  `json:"category"`
		} `json:"key_points"`
	}
	if err := a.complete(ctx, "extract key points", prompt, &parsed); err != nil {
		return nil
	}

	keyPoints := make([]KeyPoint, 0, len(parsed.KeyPoints))
	for _, kp := range parsed.KeyPoints {
		start, end := findTimestampForText(kp.Text, transcript.Segments)
		keyPoints = append(keyPoints, KeyPoint{
			Text:           kp.Text,
			Importance:     kp.Importance,
			TimestampStart: start,
			TimestampEnd:   end,
			Category:       kp.Category,
		})
	}
	return keyPoints
}

func (a *ContentAnalyzer) analyzeTopics(ctx context.Context, transcript *whisper.Transcript, video *youtube.VideoInfo) TopicAnalysis {
	fallback := TopicAnalysis{MainTopic: "Unknown", ContentType: "other"}
	prompt := fmt.Sprintf(`Classify this video content.

Title: %s
Description: %s
Transcript: %s

Return JSON: {"main_topic": "...", "sub_topics": ["..."], "keywords": ["..."],
"content_type": "educational|entertainment|news|review|tutorial|discussion|other",
"confidence": 0.85}`,
		video.Title, truncate(video.Description, 500), truncate(transcript.FullText, 3000))

	var parsed TopicAnalysis
	if err := a.complete(ctx, "analyze topics", prompt, &parsed); err != nil {
		return fallback
	}
	if parsed.MainTopic == "" {
		parsed.MainTopic = "Unknown"
	}
	if parsed.ContentType == "" {
		parsed.ContentType = "other"
	}
	return parsed
}

func (a *ContentAnalyzer) analyzeSentiment(ctx context.Context, transcript *whisper.Transcript) SentimentAnalysis {
	fallback := SentimentAnalysis{OverallSentiment: "neutral"}
	prompt := fmt.Sprintf(`Analyze the sentiment and emotional tone of this video transcript.

Transcript: %s

Return JSON: {"overall_sentiment": "positive|negative|neutral|mixed",
"sentiment_score": 0.2, "emotional_tone": ["enthusiastic"],
"sentiment_progression": [{"timestamp": 0, "sentiment": "neutral", "score": 0.0}]}
The sentiment score is between -1.0 (very negative) and 1.0 (very positive).`,
		truncate(transcript.FullText, 3000))

	var parsed SentimentAnalysis
	if err := a.complete(ctx, "analyze sentiment", prompt, &parsed); err != nil {
		return fallback
	}
	if parsed.OverallSentiment == "" {
		parsed.OverallSentiment = "neutral"
	}
	return parsed
}

func (a *ContentAnalyzer) analyzeStructure(ctx context.Context, transcript *whisper.Transcript) ContentStructure {
	prompt := fmt.Sprintf(`Analyze the structure of this video transcript.

Transcript: %s

Return JSON: {"introduction_end": 45.0,
"main_content_segments": [{"start": 45.0, "end": 180.0, "topic": "..."}],
"conclusion_start": 300.0, "call_to_action": "...",
"introduction_quality": 0.8, "conclusion_quality": 0.7,
"overall_structure_score": 0.75}
Times are in seconds; use null for sections that are not clearly identifiable.
Quality scores are between 0.0 and 1.0.`,
		truncate(transcript.FullText, 3000))

	var parsed ContentStructure
	if err := a.complete(ctx, "analyze structure", prompt, &parsed); err != nil {
		return ContentStructure{IntroductionQuality: 0.5, ConclusionQuality: 0.5, StructureScore: 0.5}
	}
	return parsed
}

func (a *ContentAnalyzer) generateSummary(ctx context.Context, transcript *whisper.Transcript, video *youtube.VideoInfo) string {
	prompt := fmt.Sprintf(`Create a concise, informative summary of this video content.

Title: %s
Transcript: %s

Return JSON: {"summary": "A 2-3 sentence summary capturing the main points and value."}`,
		video.Title, truncate(transcript.FullText, 3000))

	var parsed struct {
		Summary string `json:"summary"`
	}
	if err := a.complete(ctx, "generate summary", prompt, &parsed); err != nil {
		return ""
	}
	return strings.TrimSpace(parsed.Summary)
}

func (a *ContentAnalyzer) generateRecommendations(ctx context.Context, transcript *whisper.Transcript, video *youtube.VideoInfo) []string {
	prompt := fmt.Sprintf(`Based on this video content, provide 3-5 actionable recommendations for viewers.

Title: %s
Transcript: %s

Return JSON: {"recommendations": ["..."]}`,
		video.Title, truncate(transcript.FullText, 2000))

	var parsed struct {
		Recommendations []string `json:"recommendations"`
	}
	if err := a.complete(ctx, "generate recommendations", prompt, &parsed); err != nil {
		return nil
	}
	return parsed.Recommendations
}

func (a *ContentAnalyzer) complete(ctx context.Context, operation, prompt string, target any) error {
	payload, err := a.completer.CompleteJSON(ctx, contentSystemPrompt, prompt)
	if err == nil {
		err = llm.DecodeLLMJSON(payload, target)
	}
	if err != nil {
		a.logger.WarnContext(ctx, "content sub-analysis degraded",
			logging.String("operation", operation),
			logging.Error(err))
		return err
	}
	return nil
}

// findTimestampForText locates the first segment sharing a word with the
// leading three words of the key point text.
func findTimestampForText(text string, segments []whisper.Segment) (*float64, *float64) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) > 3 {
		words = words[:3]
	}
	for _, segment := range segments {
		segmentText := strings.ToLower(segment.Text)
		for _, word := range words {
			if strings.Contains(segmentText, word) {
				start, end := segment.Start, segment.End
				return &start, &end
			}
		}
	}
	return nil, nil
}

// contentQualityScore combines key point importance, classification
// confidence, transcript length, and sentiment strength into a 0-1 score.
func contentQualityScore(keyPoints []KeyPoint, topicConfidence, sentimentScore float64, wordCount int) float64 {
	score := 0.0
	if len(keyPoints) > 0 {
		var sum float64
		for _, kp := range keyPoints {
			sum += kp.Importance
		}
		score += (sum / float64(len(keyPoints))) * 0.3
	}
	score += topicConfidence * 0.2
	switch {
	case wordCount >= 500 && wordCount <= 3000:
		score += 0.2
	case wordCount > 100:
		score += 0.1
	}
	if math.Abs(sentimentScore) > 0.1 {
		score += 0.15
	}
	score += 0.15
	return math.Min(score, 1.0)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
