package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements IntentParser using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

func (p *GeminiProvider) ParseBookingIntent(ctx context.Context, message string, hints Hints) (*BookingIntent, error) {
	fullPrompt := fmt.Sprintf("%s\n\nUser Message: %s", buildSystemPrompt(hints), message)

	resp, err := p.model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}
	return decodeIntent(responseText.String())
}

func decodeIntent(raw string) (*BookingIntent, error) {
	cleanJSON := cleanJSONString(raw)
	var result BookingIntent
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}
	result.Normalize()
	return &result, nil
}

func buildSystemPrompt(h Hints) string {
	currentTime := h.CurrentTime
	if currentTime == "" {
		currentTime = "UNKNOWN_TIME"
	}
	places := "NONE"
	if len(h.Locations) > 0 {
		places = strings.Join(h.Locations, ", ")
	}

	return fmt.Sprintf(`Role: You fill in a children's ride booking form for a Korean parent.
Context:
- Current System Time: %s
- Saved Places: %s

RULES:
1. PLACES: "pickup_name" and "dropoff_name" MUST be one of the Saved Places when the user
   refers to one (e.g. "집에서 학교" -> pickup "집", dropoff "학교").
2. TIME: "pickup_time" uses the form "오전 H:MM" or "오후 H:MM" (e.g. "오전 7:30").
   A time without 오전/오후 (or AM/PM) is AMBIGUOUS: leave it empty and ask.
3. RIDE TYPE: "매주", "매일", weekday lists ("월수금") -> "recurring" with "days" as single
   Korean letters from 월 화 수 목 금 토 일. Otherwise "one-time" with "date" as YYYY-MM-DD
   resolved against the Current System Time.
4. GATE: set "intent": "booking" only when pickup, dropoff and pickup_time are all known.
   Otherwise set "intent": "clarification" and ask for what is missing in "reply".
   Small talk -> "intent": "chat".
5. "reply" is short, polite Korean. No markdown.

Output JSON Schema:
{
  "intent": "booking" | "clarification" | "chat",
  "ride_type": "one-time" | "recurring",
  "pickup_name": "string or empty",
  "dropoff_name": "string or empty",
  "pickup_time": "오전 H:MM | 오후 H:MM | empty",
  "date": "YYYY-MM-DD or empty",
  "days": ["월"],
  "reply": "string"
}
`, currentTime, places)
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
