package analysis

import "vidscope/internal/jobs"

// Options carries the per-job analysis settings echoed in report metadata.
type Options struct {
	AnalysisType jobs.AnalysisType `json:"analysis_type"`
	Language     string            `json:"language,omitempty"`
	MaxComments  int               `json:"max_comments,omitempty"`
}

// DefaultOptions returns the settings used when a job carries none.
func DefaultOptions() Options {
	return Options{AnalysisType: jobs.AnalysisDetailed}
}
