package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an analysis job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// DaemonStopReason is the error message set when jobs are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AnalysisType selects how deep the pipeline digs into a video.
type AnalysisType string

const (
	AnalysisBasic         AnalysisType = "basic"
	AnalysisDetailed      AnalysisType = "detailed"
	AnalysisComprehensive AnalysisType = "comprehensive"
)

// ParseAnalysisType converts a string into a known AnalysisType.
func ParseAnalysisType(value string) (AnalysisType, bool) {
	normalized := AnalysisType(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case AnalysisBasic, AnalysisDetailed, AnalysisComprehensive:
		return normalized, true
	}
	return "", false
}

// HealthSummary describes aggregated job counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
	Cancelled  int
}

// Job represents an analysis job persisted in SQLite.
type Job struct {
	ID              string
	VideoRef        string
	AnalysisType    AnalysisType
	Status          Status
	CurrentStep     string
	Progress        float64
	ProgressMessage string
	ResultJSON      string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
	LastHeartbeat   *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status permits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}
