package analysis

// Step identifies a stage of the analysis pipeline.
type Step string

const (
	StepExtraction      Step = "EXTRACTION"
	StepTranscription   Step = "TRANSCRIPTION"
	StepContentAnalysis Step = "CONTENT_ANALYSIS"
	StepCommentAnalysis Step = "COMMENT_ANALYSIS"
	StepFinalization    Step = "FINALIZATION"
)

// stepWeights apportions overall progress across steps. The weights sum to 100.
var stepWeights = map[Step]float64{
	StepExtraction:      25,
	StepTranscription:   30,
	StepContentAnalysis: 25,
	StepCommentAnalysis: 15,
	StepFinalization:    5,
}

// StepWeight returns the progress weight assigned to a step.
func StepWeight(step Step) float64 {
	return stepWeights[step]
}
