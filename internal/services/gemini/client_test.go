package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{
						genai.Text(`{"sentiment": "positive"}`),
					},
				},
			},
		},
	}
	text, err := extractText(resp)
	require.NoError(t, err)
	require.Equal(t, `{"sentiment": "positive"}`, text)
}

func TestExtractTextNoCandidates(t *testing.T) {
	_, err := extractText(&genai.GenerateContentResponse{})
	require.Error(t, err)
}

func TestCleanJSONBlock(t *testing.T) {
	require.Equal(t, `{"a":1}`, cleanJSONBlock("```json\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, cleanJSONBlock("```\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, cleanJSONBlock(`{"a":1}`))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Model: "gemini-1.5-flash"})
	require.Error(t, err)
}
