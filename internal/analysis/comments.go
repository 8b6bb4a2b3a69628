package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"vidscope/internal/logging"
	"vidscope/internal/services/llm"
	"vidscope/internal/services/youtube"
)

const (
	sentimentSampleSize = 50
	themeSampleSize     = 100
	maxThemes           = 5
	maxTopComments      = 10
	topCommentTextLimit = 200
	maxRecommendations  = 5
	replySampleSize     = 20
	minCommentLength    = 3
)

// SentimentDistribution counts comments per sentiment class.
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Total returns the number of classified comments.
func (d SentimentDistribution) Total() int {
	return d.Positive + d.Negative + d.Neutral
}

// PositiveRatio returns the share of positive comments, 0 when empty.
func (d SentimentDistribution) PositiveRatio() float64 {
	if total := d.Total(); total > 0 {
		return float64(d.Positive) / float64(total)
	}
	return 0
}

// NegativeRatio returns the share of negative comments, 0 when empty.
func (d SentimentDistribution) NegativeRatio() float64 {
	if total := d.Total(); total > 0 {
		return float64(d.Negative) / float64(total)
	}
	return 0
}

// CommentTheme is one recurring discussion topic in the comments.
type CommentTheme struct {
	Theme        string   `json:"theme"`
	Keywords     []string `json:"keywords"`
	CommentCount int      `json:"comment_count"`
}

// AuthorEngagement describes how the creator interacts with commenters.
type AuthorEngagement struct {
	TotalReplies       int                   `json:"total_replies"`
	ReplyRate          float64               `json:"reply_rate"`
	SentimentInReplies SentimentDistribution `json:"sentiment_in_replies"`
	EngagementQuality  float64               `json:"engagement_quality"`
}

// TopComment is a high-engagement comment included in the report.
type TopComment struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	Author         string `json:"author"`
	LikeCount      int64  `json:"like_count"`
	IsCreatorReply bool   `json:"is_creator_reply"`
}

// SpamIndicators summarizes spam signals in the comment set.
type SpamIndicators struct {
	DuplicateComments  int     `json:"duplicate_comments"`
	SuspiciousPatterns int     `json:"suspicious_patterns"`
	SpamRatio          float64 `json:"spam_ratio"`
}

// EngagementMetrics are the aggregate interaction numbers.
type EngagementMetrics struct {
	TotalComments       int     `json:"total_comments"`
	TotalLikes          int64   `json:"total_likes"`
	AvgLikesPerComment  float64 `json:"avg_likes_per_comment"`
	ReplyEngagementRate float64 `json:"reply_engagement_rate"`
	CommentToViewRatio  float64 `json:"comment_to_view_ratio"`
	EngagementScore     float64 `json:"engagement_score"`
}

// CommentInsights is the full comment analysis result.
type CommentInsights struct {
	TotalComments         int                   `json:"total_comments"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
	MainThemes            []CommentTheme        `json:"main_themes"`
	AuthorEngagement      AuthorEngagement      `json:"author_engagement"`
	TopComments           []TopComment          `json:"top_comments"`
	SpamDetection         SpamIndicators        `json:"spam_detection"`
	EngagementMetrics     EngagementMetrics     `json:"engagement_metrics"`
	Recommendations       []string              `json:"recommendations"`
}

// ThemeNames lists the theme labels for cross-analysis.
func (in *CommentInsights) ThemeNames() []string {
	if in == nil {
		return nil
	}
	names := make([]string, 0, len(in.MainThemes))
	for _, theme := range in.MainThemes {
		names = append(names, theme.Theme)
	}
	return names
}

const commentSystemPrompt = "You are a comment analyst for online videos. Respond with JSON only, matching the requested schema exactly."

var (
	urlPattern        = regexp.MustCompile(`http[s]?://[^\s]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	spamPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(check out|visit|click).*(link|channel)`),
		regexp.MustCompile(`(subscribe|follow).*(back|me)`),
		regexp.MustCompile(`(free|win|prize|gift).*(click|link)`),
		regexp.MustCompile(`(bot|spam|fake)`),
	}
)

// CommentAnalyzer produces audience insights over extracted comments.
type CommentAnalyzer struct {
	completer Completer
	logger    *slog.Logger
}

// NewCommentAnalyzer constructs a comment analyzer.
func NewCommentAnalyzer(completer Completer, logger *slog.Logger) *CommentAnalyzer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CommentAnalyzer{
		completer: completer,
		logger:    logger.With(logging.String(logging.FieldComponent, "comment-analyzer")),
	}
}

// Analyze runs the full comment analysis. An empty comment set yields a
// well-defined empty result, never an error.
func (a *CommentAnalyzer) Analyze(ctx context.Context, comments []youtube.Comment, video *youtube.VideoInfo) (*CommentInsights, error) {
	if video == nil {
		video = &youtube.VideoInfo{}
	}
	processed := preprocessComments(comments)
	if len(processed) == 0 {
		return emptyCommentInsights(), nil
	}

	insights := &CommentInsights{
		TotalComments:         len(processed),
		SentimentDistribution: a.analyzeSentimentDistribution(ctx, processed),
		MainThemes:            a.extractThemes(ctx, processed),
		TopComments:           identifyTopComments(processed),
		SpamDetection:         detectSpam(processed),
		EngagementMetrics:     calculateEngagementMetrics(processed, video),
	}
	insights.AuthorEngagement = a.analyzeAuthorEngagement(ctx, processed)
	insights.Recommendations = commentRecommendations(
		insights.SentimentDistribution,
		insights.MainThemes,
		insights.AuthorEngagement,
		insights.EngagementMetrics,
	)

	a.logger.InfoContext(ctx, "comment analysis completed",
		logging.Int("comments", insights.TotalComments),
		logging.Int("themes", len(insights.MainThemes)))
	return insights, nil
}

// preprocessComments cleans comment text and drops entries too short to
// carry signal.
func preprocessComments(comments []youtube.Comment) []youtube.Comment {
	processed := make([]youtube.Comment, 0, len(comments))
	for _, comment := range comments {
		comment.Text = cleanCommentText(comment.Text)
		if len([]rune(comment.Text)) < minCommentLength {
			continue
		}
		processed = append(processed, comment)
	}
	return processed
}

func cleanCommentText(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = collapseRepeats(text, 3)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// collapseRepeats caps runs of the same character at limit occurrences
// ("soooooo" with limit 3 becomes "sooo").
func collapseRepeats(text string, limit int) string {
	var sb strings.Builder
	sb.Grow(len(text))
	var prev rune
	run := 0
	for i, r := range text {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run <= limit {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (a *CommentAnalyzer) analyzeSentimentDistribution(ctx context.Context, comments []youtube.Comment) SentimentDistribution {
	fallback := SentimentDistribution{Neutral: len(comments)}
	sample := comments[:min(sentimentSampleSize, len(comments))]

	var sb strings.Builder
	for i, comment := range sample {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, comment.Text)
	}
	prompt := fmt.Sprintf(`Classify the sentiment of each comment below.

Return JSON: {"positive": <count>, "negative": <count>, "neutral": <count>}

Comments:
%s`, sb.String())

	var parsed SentimentDistribution
	if err := a.complete(ctx, "sentiment distribution", prompt, &parsed); err != nil {
		return fallback
	}
	analyzed := parsed.Total()
	if analyzed == 0 {
		return fallback
	}

	// Scale the sampled counts up to the full comment set.
	scale := float64(len(comments)) / float64(analyzed)
	return SentimentDistribution{
		Positive: int(float64(parsed.Positive) * scale),
		Negative: int(float64(parsed.Negative) * scale),
		Neutral:  int(float64(parsed.Neutral) * scale),
	}
}

func (a *CommentAnalyzer) extractThemes(ctx context.Context, comments []youtube.Comment) []CommentTheme {
	sample := comments[:min(themeSampleSize, len(comments))]

	var sb strings.Builder
	for i, comment := range sample {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, comment.Text)
	}
	prompt := fmt.Sprintf(`Identify the main discussion themes in the comments below.

Return JSON: {"themes": [{"theme": "...", "keywords": ["..."], "comment_count": <count>}]}

Comments:
%s`, sb.String())

	var parsed struct {
		Themes []CommentTheme `json:"themes"`
	}
	if err := a.complete(ctx, "extract themes", prompt, &parsed); err != nil {
		return nil
	}
	themes := parsed.Themes
	if len(themes) > maxThemes {
		themes = themes[:maxThemes]
	}
	return themes
}

func (a *CommentAnalyzer) analyzeAuthorEngagement(ctx context.Context, comments []youtube.Comment) AuthorEngagement {
	var replies []youtube.Comment
	audienceComments := 0
	for _, comment := range comments {
		if comment.IsCreatorReply {
			replies = append(replies, comment)
		} else {
			audienceComments++
		}
	}
	replyRate := float64(len(replies)) / float64(max(audienceComments, 1))

	var replySentiment SentimentDistribution
	if len(replies) > 0 {
		sample := replies[:min(replySampleSize, len(replies))]
		var sb strings.Builder
		for i, reply := range sample {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, reply.Text)
		}
		prompt := fmt.Sprintf(`Classify the sentiment of each creator reply below.

Return JSON: {"positive": <count>, "negative": <count>, "neutral": <count>}

Replies:
%s`, sb.String())
		// Reply sentiment is a bonus signal; degrade to zeroes on failure.
		_ = a.complete(ctx, "reply sentiment", prompt, &replySentiment)
	}

	return AuthorEngagement{
		TotalReplies:       len(replies),
		ReplyRate:          replyRate,
		SentimentInReplies: replySentiment,
		EngagementQuality:  engagementQuality(replyRate, len(replies), replySentiment),
	}
}

// engagementQuality scores creator interaction on a 0-100 scale: reply rate
// contributes up to 50, reply volume up to 30, reply positivity up to 20.
func engagementQuality(replyRate float64, totalReplies int, replySentiment SentimentDistribution) float64 {
	base := math.Min(replyRate*100, 50)
	replyBonus := math.Min(float64(totalReplies)*2, 30)
	sentimentBonus := replySentiment.PositiveRatio() * 20
	return math.Min(base+replyBonus+sentimentBonus, 100)
}

func identifyTopComments(comments []youtube.Comment) []TopComment {
	sorted := make([]youtube.Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LikeCount > sorted[j].LikeCount
	})

	top := make([]TopComment, 0, min(maxTopComments, len(sorted)))
	for _, comment := range sorted[:min(maxTopComments, len(sorted))] {
		text := comment.Text
		if len([]rune(text)) > topCommentTextLimit {
			text = string([]rune(text)[:topCommentTextLimit]) + "..."
		}
		top = append(top, TopComment{
			ID:             comment.ID,
			Text:           text,
			Author:         comment.Author,
			LikeCount:      comment.LikeCount,
			IsCreatorReply: comment.IsCreatorReply,
		})
	}
	return top
}

func detectSpam(comments []youtube.Comment) SpamIndicators {
	textCounts := make(map[string]int, len(comments))
	for _, comment := range comments {
		textCounts[comment.Text]++
	}
	duplicates := 0
	for _, count := range textCounts {
		if count > 1 {
			duplicates++
		}
	}

	suspicious := 0
	for _, comment := range comments {
		text := strings.ToLower(comment.Text)
		for _, pattern := range spamPatterns {
			if pattern.MatchString(text) {
				suspicious++
				break
			}
		}
	}

	return SpamIndicators{
		DuplicateComments:  duplicates,
		SuspiciousPatterns: suspicious,
		SpamRatio:          float64(suspicious) / float64(max(len(comments), 1)),
	}
}

func calculateEngagementMetrics(comments []youtube.Comment, video *youtube.VideoInfo) EngagementMetrics {
	totalComments := len(comments)
	var totalLikes int64
	commentsWithReplies := 0
	for _, comment := range comments {
		totalLikes += comment.LikeCount
		if comment.ReplyCount > 0 {
			commentsWithReplies++
		}
	}

	avgLikes := float64(totalLikes) / float64(max(totalComments, 1))
	replyRate := float64(commentsWithReplies) / float64(max(totalComments, 1))
	commentToView := 0.0
	if video.ViewCount > 0 {
		commentToView = float64(totalComments) / float64(video.ViewCount)
	}

	return EngagementMetrics{
		TotalComments:       totalComments,
		TotalLikes:          totalLikes,
		AvgLikesPerComment:  round2(avgLikes),
		ReplyEngagementRate: roundN(replyRate, 3),
		CommentToViewRatio:  roundN(commentToView, 6),
		EngagementScore:     overallEngagementScore(commentToView, replyRate, avgLikes),
	}
}

func overallEngagementScore(commentRatio, replyRate, avgLikes float64) float64 {
	commentScore := math.Min(commentRatio*10000, 50)
	replyScore := replyRate * 30
	likesScore := math.Min(avgLikes*2, 20)
	return round2(commentScore + replyScore + likesScore)
}

func commentRecommendations(sentiment SentimentDistribution, themes []CommentTheme, engagement AuthorEngagement, metrics EngagementMetrics) []string {
	var recommendations []string

	if sentiment.Total() > 0 {
		negativeRatio := sentiment.NegativeRatio()
		if negativeRatio > 0.3 {
			recommendations = append(recommendations, "Negative comments are frequent; review audience feedback and address concerns in future content")
		} else if negativeRatio < 0.1 {
			recommendations = append(recommendations, "Audience feedback is very positive; the current content style is working well")
		}
	}

	switch {
	case engagement.ReplyRate < 0.1:
		recommendations = append(recommendations, "Creator reply rate is low; engaging with more comments would strengthen the community")
	case engagement.ReplyRate > 0.3:
		recommendations = append(recommendations, "Creator interaction is strong and helps sustain a healthy community")
	}

	if metrics.CommentToViewRatio < 0.001 {
		recommendations = append(recommendations, "Comment participation is low; prompting viewers to comment could lift engagement")
	}

	switch {
	case len(themes) > 3:
		recommendations = append(recommendations, "Comments span many themes; the content is sparking broad discussion")
	case len(themes) < 2:
		recommendations = append(recommendations, "Comment themes are narrow; adding more discussion points could diversify responses")
	}

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}

func (a *CommentAnalyzer) complete(ctx context.Context, operation, prompt string, target any) error {
	payload, err := a.completer.CompleteJSON(ctx, commentSystemPrompt, prompt)
	if err == nil {
		err = llm.DecodeLLMJSON(payload, target)
	}
	if err != nil {
		a.logger.WarnContext(ctx, "comment sub-analysis degraded",
			logging.String("operation", operation),
			logging.Error(err))
		return err
	}
	return nil
}

func emptyCommentInsights() *CommentInsights {
	return &CommentInsights{
		MainThemes:      []CommentTheme{},
		TopComments:     []TopComment{},
		Recommendations: []string{"No comment data available for analysis"},
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func roundN(value float64, digits int) float64 {
	factor := math.Pow(10, float64(digits))
	return math.Round(value*factor) / factor
}
