// Package analysis drives the video analysis pipeline: extraction,
// transcription, parallel content and comment analysis, and report synthesis.
//
// Progress is weighted per step (extraction 25, transcription 30, content 25,
// comments 15, finalization 5) and reported monotonically in [0,100]. Content
// or comment analysis failures degrade the report; extraction, transcription,
// and finalization failures fail the job.
package analysis
