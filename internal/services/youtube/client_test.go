package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidscope/internal/services"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{APIKey: "test-key", BaseURL: baseURL, CommentLimit: 1000}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		ref  string
		want string
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?list=PLx&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tc := range cases {
		got, err := ExtractVideoID(tc.ref)
		if err != nil {
			t.Fatalf("ExtractVideoID(%q): %v", tc.ref, err)
		}
		if got != tc.want {
			t.Fatalf("ExtractVideoID(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}

	if _, err := ExtractVideoID("not a video"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseISODuration(t *testing.T) {
	cases := map[string]int{
		"PT1H2M3S": 3723,
		"PT15M33S": 933,
		"PT45S":    45,
		"PT2H":     7200,
		"garbage":  0,
	}
	for value, want := range cases {
		if got := ParseISODuration(value); got != want {
			t.Fatalf("ParseISODuration(%q) = %d, want %d", value, got, want)
		}
	}
}

func TestGetVideoInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Error("missing api key")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [{
				"snippet": {
					"title": "Test Video",
					"description": "desc",
					"channelId": "UC123",
					"channelTitle": "Test Channel",
					"publishedAt": "2024-01-15T10:00:00Z",
					"defaultLanguage": "en",
					"thumbnails": {"high": {"url": "https://example.com/high.jpg"}}
				},
				"statistics": {"viewCount": "10000", "likeCount": "500", "commentCount": "120"},
				"contentDetails": {"duration": "PT15M33S"}
			}]
		}`))
	}))
	defer server.Close()

	info, err := newTestClient(t, server.URL).GetVideoInfo(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("GetVideoInfo: %v", err)
	}
	if info.Title != "Test Video" || info.ChannelID != "UC123" {
		t.Fatalf("unexpected metadata: %+v", info)
	}
	if info.Duration != 933 {
		t.Fatalf("expected duration 933, got %d", info.Duration)
	}
	if info.ViewCount != 10000 || info.LikeCount != 500 || info.CommentCount != 120 {
		t.Fatalf("unexpected statistics: %+v", info)
	}
	if info.Language != "en" {
		t.Fatalf("expected language en, got %q", info.Language)
	}
}

func TestGetVideoInfoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetVideoInfo(context.Background(), "missing12345")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGetVideoInfoAccessForbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "The request is not properly authorized", "errors": [{"reason": "forbidden"}]}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetVideoInfo(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, services.ErrAccessDenied) {
		t.Fatalf("expected access denied error, got %v", err)
	}
	if errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("forbidden without quota reason must not be rate limited: %v", err)
	}
}

func TestGetVideoInfoQuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "quota", "errors": [{"reason": "quotaExceeded"}]}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetVideoInfo(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("expected rate limited error, got %v", err)
	}
	retryAfter, ok := services.RetryAfter(err)
	if !ok || retryAfter != time.Hour {
		t.Fatalf("expected retry after 1h, got %s (ok=%v)", retryAfter, ok)
	}
}

func TestGetVideoInfoThrottled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "too many requests"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetVideoInfo(context.Background(), "dQw4w9WgXcQ")
	retryAfter, ok := services.RetryAfter(err)
	if !ok || retryAfter != 5*time.Minute {
		t.Fatalf("expected retry after 5m, got %s (ok=%v)", retryAfter, ok)
	}
}

func TestGetCommentsPaginatesAndFlagsCreator(t *testing.T) {
	var pages int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/commentThreads" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("order") != "relevance" {
			t.Error("expected relevance ordering")
		}
		pages++
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{
				"nextPageToken": "page2",
				"items": [{
					"snippet": {
						"totalReplyCount": 1,
						"topLevelComment": {
							"id": "c1",
							"snippet": {
								"textDisplay": "Great video!",
								"authorDisplayName": "viewer",
								"authorChannelId": {"value": "UCviewer"},
								"likeCount": 12,
								"publishedAt": "2024-01-16T08:00:00Z"
							}
						}
					},
					"replies": {"comments": [{
						"id": "c1r1",
						"snippet": {
							"textDisplay": "Thanks!",
							"authorDisplayName": "creator",
							"authorChannelId": {"value": "UC123"},
							"likeCount": 3,
							"publishedAt": "2024-01-16T09:00:00Z"
						}
					}]}
				}]
			}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"items": [{
				"snippet": {
					"totalReplyCount": 0,
					"topLevelComment": {
						"id": "c2",
						"snippet": {
							"textDisplay": "Second page comment",
							"authorDisplayName": "other",
							"authorChannelId": {"value": "UCother"},
							"likeCount": 1,
							"publishedAt": "2024-01-17T08:00:00Z"
						}
					}
				}
			}]
		}`))
	}))
	defer server.Close()

	comments, err := newTestClient(t, server.URL).GetComments(context.Background(), "dQw4w9WgXcQ", "UC123")
	if err != nil {
		t.Fatalf("GetComments: %v", err)
	}
	if pages != 2 {
		t.Fatalf("expected 2 pages, got %d", pages)
	}
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}
	if comments[0].ID != "c1" || comments[0].IsCreatorReply {
		t.Fatalf("unexpected first comment: %+v", comments[0])
	}
	if !comments[1].IsCreatorReply || comments[1].ParentID != "c1" {
		t.Fatalf("expected creator reply flagged: %+v", comments[1])
	}
}

func TestGetCommentsDisabledReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "disabled", "errors": [{"reason": "commentsDisabled"}]}}`))
	}))
	defer server.Close()

	comments, err := newTestClient(t, server.URL).GetComments(context.Background(), "dQw4w9WgXcQ", "UC123")
	if err != nil {
		t.Fatalf("expected no error for disabled comments, got %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("expected empty comment list, got %d", len(comments))
	}
}

func TestGetCommentsMissingReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"message": "not found"}}`))
	}))
	defer server.Close()

	comments, err := newTestClient(t, server.URL).GetComments(context.Background(), "gone", "UC123")
	if err != nil {
		t.Fatalf("expected no error for missing comments, got %v", err)
	}
	if comments != nil {
		t.Fatalf("expected nil comment list, got %v", comments)
	}
}

func TestGetCommentsRespectsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"nextPageToken": "more",
			"items": [{
				"snippet": {
					"totalReplyCount": 0,
					"topLevelComment": {
						"id": "c",
						"snippet": {"textDisplay": "hi", "authorDisplayName": "a", "likeCount": 0, "publishedAt": "2024-01-16T08:00:00Z"}
					}
				}
			}]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, CommentLimit: 3}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	comments, err := client.GetComments(context.Background(), "dQw4w9WgXcQ", "")
	if err != nil {
		t.Fatalf("GetComments: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected limit of 3 comments, got %d", len(comments))
	}
}
