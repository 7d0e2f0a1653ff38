package brain

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"neighborly/internal/core/domain"
	"neighborly/internal/core/ports"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	textModel  = "gemini-2.5-flash"
	imageModel = "imagen-3.0-generate-002"

	// RefineUnavailableNotice is returned by RefineText when no API key is set.
	RefineUnavailableNotice = "AI assist is unavailable: add a Gemini API key to enable suggestions."
	// TrendsEmptyNotice is returned without a backend call when the corpus is empty.
	TrendsEmptyNotice = "There's nothing to analyze yet. The neighborhood feed is empty."
	// TrendsUnavailableNotice is returned by AnalyzeTrends when no API key is set.
	TrendsUnavailableNotice = "Trend analysis is unavailable: add a Gemini API key to enable it."
	// TrendsFailedNotice is returned when the backend call fails.
	TrendsFailedNotice = "Could not analyze neighborhood trends right now."
	// PlacesFailedText is the narrative returned when a place search fails.
	PlacesFailedText = "Sorry, I couldn't look up places right now. Please try again in a moment."
)

// DefaultCoordinate is used for place searches when the caller has no
// location (denied or failed geolocation).
var DefaultCoordinate = domain.LatLng{Lat: 37.7749, Lng: -122.4194}

// GeminiAssist implements ports.Assist on the Gemini API. A missing API key
// is a normal runtime condition: the gateway constructs fine and every
// capability answers with its fixed unavailable result. Backend failures are
// absorbed here and converted to per-capability fallbacks.
type GeminiAssist struct {
	client *genai.Client
	logger *zap.Logger

	// call seams, overridable in tests
	genText  func(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, []domain.Place, error)
	genImage func(ctx context.Context, prompt string) ([]byte, error)
}

var _ ports.Assist = (*GeminiAssist)(nil)

// NewGeminiAssist builds the gateway. An empty apiKey yields an unconfigured
// gateway and no error; only a failure to construct the client with a present
// key is reported.
func NewGeminiAssist(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiAssist, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &GeminiAssist{logger: logger}
	a.genText = a.generateText
	a.genImage = a.generateImage

	if apiKey == "" {
		logger.Warn("no Gemini API key configured, AI assist runs in degraded mode")
		return a, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	a.client = client
	return a, nil
}

// Configured reports whether a backend client is available.
func (a *GeminiAssist) Configured() bool {
	return a.client != nil
}

// RefineText rewrites a post draft to be concise and polite. Any backend
// failure returns the original draft unchanged, so refinement can never
// destroy the user's content.
func (a *GeminiAssist) RefineText(ctx context.Context, draft string, categoryHint domain.Category) string {
	if !a.Configured() {
		return RefineUnavailableNotice
	}

	prompt := fmt.Sprintf(`Rewrite the following neighborhood post so it is concise, friendly and polite.
Keep it under 100 words. Do not use hashtags. Preserve the author's intent.
Category: %s

Post:
%s

Output only the rewritten post text.`, categoryHint, draft)

	text, _, err := a.genText(ctx, textModel, prompt, nil)
	if err != nil || strings.TrimSpace(text) == "" {
		a.logger.Warn("refine failed, keeping original draft", zap.Error(err))
		return draft
	}
	return strings.TrimSpace(text)
}

// GenerateImage returns image bytes for the prompt, or nil when unconfigured
// or on any failure. Callers treat nil as "no image".
func (a *GeminiAssist) GenerateImage(ctx context.Context, prompt string) []byte {
	if !a.Configured() {
		return nil
	}
	img, err := a.genImage(ctx, prompt)
	if err != nil || len(img) == 0 {
		a.logger.Warn("image generation failed", zap.Error(err))
		return nil
	}
	return img
}

// AnalyzeTrends synthesizes a short summary of the given post bodies.
func (a *GeminiAssist) AnalyzeTrends(ctx context.Context, snippets []string) string {
	if len(snippets) == 0 {
		return TrendsEmptyNotice
	}
	if !a.Configured() {
		return TrendsUnavailableNotice
	}

	prompt := fmt.Sprintf(`These are recent posts from a neighborhood community feed:

%s

Summarize the current neighborhood trends in 2-3 short sentences for an admin dashboard.`,
		"- "+strings.Join(snippets, "\n- "))

	text, _, err := a.genText(ctx, textModel, prompt, nil)
	if err != nil || strings.TrimSpace(text) == "" {
		a.logger.Warn("trend analysis failed", zap.Error(err))
		return TrendsFailedNotice
	}
	return strings.TrimSpace(text)
}

// SearchPlaces answers a free-text query about nearby places, grounding the
// answer with Google Search and returning the grounding sources as location
// references.
func (a *GeminiAssist) SearchPlaces(ctx context.Context, query string, at *domain.LatLng) domain.PlaceAnswer {
	if at == nil {
		at = &DefaultCoordinate
	}
	if !a.Configured() {
		return domain.PlaceAnswer{Text: PlacesFailedText}
	}

	prompt := fmt.Sprintf(`A neighbor near latitude %.4f, longitude %.4f asks: %q
Answer briefly with concrete nearby suggestions.`, at.Lat, at.Lng, query)

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	text, places, err := a.genText(ctx, textModel, prompt, config)
	if err != nil || strings.TrimSpace(text) == "" {
		a.logger.Warn("place search failed", zap.Error(err))
		return domain.PlaceAnswer{Text: PlacesFailedText}
	}
	return domain.PlaceAnswer{Text: strings.TrimSpace(text), Places: places}
}

// StartChat opens a streaming conversation primed with the system framing.
// Returns false when the backend is unconfigured.
func (a *GeminiAssist) StartChat(ctx context.Context, system string) (ports.ChatHandle, bool) {
	if !a.Configured() {
		return nil, false
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	}
	chat, err := a.client.Chats.Create(ctx, textModel, config, nil)
	if err != nil {
		a.logger.Warn("chat creation failed", zap.Error(err))
		return nil, false
	}
	return &geminiChat{chat: chat}, true
}

// generateText is the real backend call. It returns the first candidate's
// text plus any grounding references.
func (a *GeminiAssist) generateText(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, []domain.Place, error) {
	result, err := a.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", nil, err
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil, fmt.Errorf("empty response from %s", model)
	}

	cand := result.Candidates[0]
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		sb.WriteString(part.Text)
	}

	var places []domain.Place
	if cand.GroundingMetadata != nil {
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			places = append(places, domain.Place{Title: chunk.Web.Title, Link: chunk.Web.URI})
		}
	}
	return sb.String(), places, nil
}

func (a *GeminiAssist) generateImage(ctx context.Context, prompt string) ([]byte, error) {
	result, err := a.client.Models.GenerateImages(ctx, imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.GeneratedImages) == 0 || result.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("no image in response")
	}
	return result.GeneratedImages[0].Image.ImageBytes, nil
}

// geminiChat adapts *genai.Chat to ports.ChatHandle, flattening the response
// stream into plain text increments.
type geminiChat struct {
	chat *genai.Chat
}

var _ ports.ChatHandle = (*geminiChat)(nil)

func (g *geminiChat) Send(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range g.chat.SendMessageStream(ctx, genai.Part{Text: text}) {
			if err != nil {
				yield("", err)
				return
			}
			if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			var sb strings.Builder
			for _, part := range resp.Candidates[0].Content.Parts {
				sb.WriteString(part.Text)
			}
			if sb.Len() == 0 {
				continue
			}
			if !yield(sb.String(), nil) {
				return
			}
		}
	}
}
