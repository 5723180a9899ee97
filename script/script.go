package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"go-homereel/types"
)

const maxNearbyInPrompt = 7

// completer is the one method of the OpenAI client we use. Tests stub it.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator produces the narration script for a listing. The model output
// is treated as an opaque, ordered list of text segments.
type Generator struct {
	client completer
	model  string
}

// NewGenerator wraps an OpenAI client.
func NewGenerator(client completer) *Generator {
	return &Generator{client: client, model: openai.GPT4oMini}
}

// Generate asks the model for a narration script and returns its ordered
// segments. Language and tone pass straight into the prompt.
func (g *Generator) Generate(ctx context.Context, facts types.PropertyFacts, nearby []types.NearbyPlace, language, tone string) ([]string, error) {
	prompt := buildPrompt(facts, nearby, language, tone)

	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a real estate copywriter. You write short, vivid narration scripts for property promo videos.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   400,
			N:           1,
			Temperature: 0.7,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openai returned empty response or choices")
	}

	segments := ParseSegments(resp.Choices[0].Message.Content)
	if len(segments) == 0 {
		return nil, fmt.Errorf("script response contained no usable segments")
	}
	return segments, nil
}

func buildPrompt(facts types.PropertyFacts, nearby []types.NearbyPlace, language, tone string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a %s narration script in %s for a real estate promo video.\n", tone, language)
	b.WriteString("Read aloud it should run 45-60 seconds. Return ONLY the script, one sentence per line, numbered like \"1. ...\". No headings, no notes.\n\n")

	fmt.Fprintf(&b, "Address: %s\n", facts.Address)
	if facts.PropertyType != "" {
		fmt.Fprintf(&b, "Property type: %s\n", facts.PropertyType)
	}
	if facts.Rooms > 0 {
		fmt.Fprintf(&b, "Rooms: %d\n", facts.Rooms)
	}
	if facts.Bathrooms > 0 {
		fmt.Fprintf(&b, "Bathrooms: %d\n", facts.Bathrooms)
	}
	if facts.AreaSqMeters > 0 {
		fmt.Fprintf(&b, "Area: %.0f m2\n", facts.AreaSqMeters)
	}
	if facts.Price > 0 {
		fmt.Fprintf(&b, "Price: %d %s\n", facts.Price, facts.Currency)
	}
	if facts.YearBuilt > 0 {
		fmt.Fprintf(&b, "Year built: %d\n", facts.YearBuilt)
	}
	if facts.SpecialFeatures != "" {
		fmt.Fprintf(&b, "Special features: %s\n", facts.SpecialFeatures)
	}
	if facts.Description != "" {
		fmt.Fprintf(&b, "Existing description: %s\n", facts.Description)
	}

	if len(nearby) > 0 {
		b.WriteString("\nNearby points of interest (closest first):\n")
		for i, p := range nearby {
			if i >= maxNearbyInPrompt {
				break
			}
			fmt.Fprintf(&b, "- %s (%s) - %d meters\n", p.Name, strings.ReplaceAll(p.Type, "_", " "), p.DistanceMeters)
		}
		b.WriteString("Mention the neighborhood and location advantages.\n")
	}

	return b.String()
}

// ParseSegments splits the model output into ordered script segments,
// tolerating numbering, bullets and blank lines.
func ParseSegments(raw string) []string {
	var segments []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "-")
		line = strings.TrimPrefix(line, "*")
		// Strip a leading "12." or "3)" numbering.
		if i := strings.IndexAny(line, ".)"); i > 0 && i <= 3 {
			if _, isNum := parseInt(line[:i]); isNum {
				line = line[i+1:]
			}
		}
		line = strings.TrimSpace(line)
		if line != "" {
			segments = append(segments, line)
		}
	}
	return segments
}

func parseInt(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, s != ""
}
