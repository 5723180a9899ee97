package script

import (
	"context"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-homereel/types"
)

type stubCompleter struct {
	content string
	gotReq  openai.ChatCompletionRequest
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.gotReq = req
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func TestGenerateReturnsOrderedSegments(t *testing.T) {
	stub := &stubCompleter{content: "1. Welcome to 1 Infinite Loop.\n2. Five bedrooms with garden views.\n3. Call today."}
	g := NewGenerator(stub)

	segments, err := g.Generate(context.Background(), types.PropertyFacts{Address: "1 Infinite Loop"}, nil, "English", "warm")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Welcome to 1 Infinite Loop.",
		"Five bedrooms with garden views.",
		"Call today.",
	}, segments)
}

func TestGeneratePromptMentionsNearbyPlaces(t *testing.T) {
	stub := &stubCompleter{content: "1. Something."}
	g := NewGenerator(stub)

	nearby := []types.NearbyPlace{
		{Name: "Main St Elementary", Type: "school", DistanceMeters: 400},
	}
	_, err := g.Generate(context.Background(), types.PropertyFacts{Address: "x"}, nearby, "English", "warm")
	require.NoError(t, err)

	prompt := stub.gotReq.Messages[1].Content
	assert.Contains(t, prompt, "Main St Elementary")
	assert.Contains(t, prompt, "400 meters")
}

func TestParseSegmentsToleratesFormats(t *testing.T) {
	raw := "1. First line.\n\n- Second line.\n3) Third line.\nFourth line.\n  \n"
	assert.Equal(t, []string{"First line.", "Second line.", "Third line.", "Fourth line."}, ParseSegments(raw))
}

func TestParseSegmentsOnlyStripsLeadingNumbering(t *testing.T) {
	// Only a short leading integer followed by . or ) counts as numbering;
	// decimals later in the sentence are untouched.
	got := ParseSegments("Priced at 1.2 million.")
	require.Len(t, got, 1)
	assert.Equal(t, "Priced at 1.2 million.", got[0])
}
