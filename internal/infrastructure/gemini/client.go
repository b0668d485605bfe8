package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/letsconnect/connect-backend/internal/domain"
	"google.golang.org/api/option"
)

const maxIcebreakers = 3

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.ResponseMIMEType = "application/json"

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// GenerateIcebreakers asks the model for short openers that sender could send
// to recipient, grounded in their interests and the events both attended.
func (c *GeminiClient) GenerateIcebreakers(ctx context.Context, sender, recipient *domain.Profile, sharedEvents []string) ([]string, error) {
	prompt := buildIcebreakerPrompt(sender, recipient, sharedEvents)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return parseIcebreakers(sb.String())
}

func buildIcebreakerPrompt(sender, recipient *domain.Profile, sharedEvents []string) string {
	return fmt.Sprintf(`
		Generate %d short conversation openers for two people who just matched
		at a professional networking event.
		Sender: role %q, city %q, interests %v
		Recipient: name %q, role %q, city %q, interests %v
		Events both attended: %v

		Task: openers the sender could send to the recipient. Prefer shared
		events and shared interests. Keep each under 140 characters.
		Output: JSON array of strings.
	`, maxIcebreakers,
		sender.Role, sender.City, sender.Interests,
		recipient.Name, recipient.Role, recipient.City, recipient.Interests,
		sharedEvents,
	)
}

func parseIcebreakers(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	// Clean up markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var icebreakers []string
	if err := json.Unmarshal([]byte(text), &icebreakers); err != nil {
		for _, line := range strings.Split(text, "\n") {
			line = strings.Trim(strings.TrimSpace(line), `",`)
			if line != "" && line != "[" && line != "]" {
				icebreakers = append(icebreakers, line)
			}
		}
		if len(icebreakers) == 0 {
			return nil, fmt.Errorf("failed to parse icebreakers: %w", err)
		}
	}

	out := icebreakers[:0]
	for _, s := range icebreakers {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no icebreakers generated")
	}
	if len(out) > maxIcebreakers {
		out = out[:maxIcebreakers]
	}
	return out, nil
}
