package youtube

import "time"

// VideoInfo holds the metadata extracted for a single video.
type VideoInfo struct {
	ID           string
	Title        string
	Description  string
	Duration     int // seconds
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
	ChannelID    string
	ChannelTitle string
	UploadDate   time.Time
	ThumbnailURL string
	Language     string
}

// Comment is a single top-level comment or reply.
type Comment struct {
	ID              string
	Text            string
	Author          string
	AuthorChannelID string
	LikeCount       int64
	ReplyCount      int64
	PublishedAt     time.Time
	IsCreatorReply  bool
	ParentID        string
}
