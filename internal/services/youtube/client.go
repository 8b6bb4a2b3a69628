package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"vidscope/internal/logging"
	"vidscope/internal/services"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"
	pageSize       = 100

	quotaRetryAfter     = 3600 * time.Second
	throttleRetryAfter  = 300 * time.Second
	defaultCommentLimit = 1000
)

// Config captures the runtime settings for the Data API client.
type Config struct {
	APIKey         string
	BaseURL        string
	CommentLimit   int
	RequestTimeout time.Duration
}

// Client talks to the YouTube Data API v3.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a Data API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "extraction", "new client", "youtube api key required", nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.CommentLimit <= 0 {
		cfg.CommentLimit = defaultCommentLimit
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(logging.String(logging.FieldComponent, "youtube")),
	}, nil
}

// WithHTTPClient overrides the HTTP client (for tests).
func (c *Client) WithHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([^&\n?#/]+)`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([^&\n?#]+)`),
}

var bareVideoID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID resolves a video reference (URL or bare 11-character ID)
// to the canonical video ID.
func ExtractVideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", services.Wrap(services.ErrValidation, "extraction", "extract video id", "empty video reference", nil)
	}
	if bareVideoID.MatchString(ref) {
		return ref, nil
	}
	for _, pattern := range videoIDPatterns {
		if match := pattern.FindStringSubmatch(ref); match != nil {
			return match[1], nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "extraction", "extract video id", fmt.Sprintf("unrecognized video reference %q", ref), nil)
}

// GetVideoInfo fetches snippet, statistics, and contentDetails for a video.
func (c *Client) GetVideoInfo(ctx context.Context, videoID string) (*VideoInfo, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", videoID)

	var payload videosListResponse
	if err := c.get(ctx, "/videos", params, &payload); err != nil {
		return nil, classifyAPIError("get video info", videoID, err)
	}
	if len(payload.Items) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "extraction", "get video info", fmt.Sprintf("video %s not found or inaccessible", videoID), nil)
	}

	item := payload.Items[0]
	info := &VideoInfo{
		ID:           videoID,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		Duration:     ParseISODuration(item.ContentDetails.Duration),
		ViewCount:    parseCount(item.Statistics.ViewCount),
		LikeCount:    parseCount(item.Statistics.LikeCount),
		CommentCount: parseCount(item.Statistics.CommentCount),
		ChannelID:    item.Snippet.ChannelID,
		ChannelTitle: item.Snippet.ChannelTitle,
		Language:     item.Snippet.DefaultLanguage,
	}
	if item.Snippet.DefaultLanguage == "" {
		info.Language = item.Snippet.DefaultAudioLanguage
	}
	if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		info.UploadDate = ts
	}
	if thumb := item.Snippet.Thumbnails.High.URL; thumb != "" {
		info.ThumbnailURL = thumb
	} else {
		info.ThumbnailURL = item.Snippet.Thumbnails.Default.URL
	}

	c.logger.InfoContext(ctx, "video metadata extracted",
		logging.String("video_id", videoID),
		logging.Int("duration_sec", info.Duration),
		logging.Int64("views", info.ViewCount))
	return info, nil
}

// GetComments fetches top-level comments and their replies ordered by
// relevance, up to the configured comment limit. Disabled comments or a
// missing comments resource yield an empty list, not an error.
func (c *Client) GetComments(ctx context.Context, videoID, channelID string) ([]Comment, error) {
	limit := c.cfg.CommentLimit
	comments := make([]Comment, 0, min(limit, pageSize))
	pageToken := ""

	for len(comments) < limit {
		params := url.Values{}
		params.Set("part", "snippet,replies")
		params.Set("videoId", videoID)
		params.Set("order", "relevance")
		params.Set("maxResults", strconv.Itoa(min(pageSize, limit-len(comments))))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var payload commentThreadsResponse
		if err := c.get(ctx, "/commentThreads", params, &payload); err != nil {
			var apiErr *apiError
			if errors.As(err, &apiErr) {
				if apiErr.hasReason("commentsDisabled") {
					c.logger.WarnContext(ctx, "comments disabled", logging.String("video_id", videoID))
					return nil, nil
				}
				if apiErr.StatusCode == http.StatusNotFound {
					c.logger.WarnContext(ctx, "comments resource missing", logging.String("video_id", videoID))
					return nil, nil
				}
			}
			return nil, classifyAPIError("get comments", videoID, err)
		}

		for _, item := range payload.Items {
			top := item.Snippet.TopLevelComment
			comments = append(comments, Comment{
				ID:              top.ID,
				Text:            top.Snippet.TextDisplay,
				Author:          top.Snippet.AuthorDisplayName,
				AuthorChannelID: top.Snippet.AuthorChannelID.Value,
				LikeCount:       top.Snippet.LikeCount,
				ReplyCount:      item.Snippet.TotalReplyCount,
				PublishedAt:     parseTimestamp(top.Snippet.PublishedAt),
				IsCreatorReply:  channelID != "" && top.Snippet.AuthorChannelID.Value == channelID,
			})
			for _, reply := range item.Replies.Comments {
				comments = append(comments, Comment{
					ID:              reply.ID,
					Text:            reply.Snippet.TextDisplay,
					Author:          reply.Snippet.AuthorDisplayName,
					AuthorChannelID: reply.Snippet.AuthorChannelID.Value,
					LikeCount:       reply.Snippet.LikeCount,
					PublishedAt:     parseTimestamp(reply.Snippet.PublishedAt),
					IsCreatorReply:  channelID != "" && reply.Snippet.AuthorChannelID.Value == channelID,
					ParentID:        top.ID,
				})
			}
		}

		pageToken = payload.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if len(comments) > limit {
		comments = comments[:limit]
	}
	c.logger.InfoContext(ctx, "comments extracted",
		logging.String("video_id", videoID),
		logging.Int("count", len(comments)))
	return comments, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	params.Set("key", c.cfg.APIKey)
	endpoint := c.cfg.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError carries the structured error detail returned by the Data API.
type apiError struct {
	StatusCode int
	Message    string
	Reasons    []string
}

func newAPIError(statusCode int, body []byte) *apiError {
	apiErr := &apiError{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
	var payload struct {
		Error struct {
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		apiErr.Message = payload.Error.Message
		for _, detail := range payload.Error.Errors {
			apiErr.Reasons = append(apiErr.Reasons, detail.Reason)
		}
	}
	return apiErr
}

func (e *apiError) Error() string {
	return fmt.Sprintf("youtube api: http %d: %s", e.StatusCode, e.Message)
}

func (e *apiError) hasReason(reason string) bool {
	for _, r := range e.Reasons {
		if r == reason {
			return true
		}
	}
	return strings.Contains(e.Message, reason)
}

func classifyAPIError(operation, videoID string, err error) error {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return services.Wrap(services.ErrExternalTool, "extraction", operation, videoID, err)
	}
	switch {
	case apiErr.StatusCode == http.StatusForbidden && apiErr.hasReason("quotaExceeded"):
		return &services.RateLimitError{RetryAfter: quotaRetryAfter, Err: apiErr}
	case apiErr.StatusCode == http.StatusForbidden:
		return services.Wrap(services.ErrAccessDenied, "extraction", operation,
			fmt.Sprintf("access forbidden for video %s (it may be private or restricted)", videoID), apiErr)
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return &services.RateLimitError{RetryAfter: throttleRetryAfter, Err: apiErr}
	case apiErr.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "extraction", operation, videoID, apiErr)
	default:
		return services.Wrap(services.ErrExternalTool, "extraction", operation, videoID, apiErr)
	}
}

func parseCount(value string) int64 {
	if value == "" {
		return 0
	}
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return count
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

type videosListResponse struct {
	Items []struct {
		Snippet struct {
			Title                string `json:"title"`
			Description          string `json:"description"`
			ChannelID            string `json:"channelId"`
			ChannelTitle         string `json:"channelTitle"`
			PublishedAt          string `json:"publishedAt"`
			DefaultLanguage      string `json:"defaultLanguage"`
			DefaultAudioLanguage string `json:"defaultAudioLanguage"`
			Thumbnails           struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type commentSnippet struct {
	TextDisplay       string `json:"textDisplay"`
	AuthorDisplayName string `json:"authorDisplayName"`
	AuthorChannelID   struct {
		Value string `json:"value"`
	} `json:"authorChannelId"`
	LikeCount   int64  `json:"likeCount"`
	PublishedAt string `json:"publishedAt"`
}

type commentResource struct {
	ID      string         `json:"id"`
	Snippet commentSnippet `json:"snippet"`
}

type commentThreadsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			TopLevelComment commentResource `json:"topLevelComment"`
			TotalReplyCount int64           `json:"totalReplyCount"`
		} `json:"snippet"`
		Replies struct {
			Comments []commentResource `json:"comments"`
		} `json:"replies"`
	} `json:"items"`
}
