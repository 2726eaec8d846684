package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Analyzer turns a weapon screenshot into the model's free-form answer.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mime string) (string, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, image []byte, mime string) (string, error)

func (f AnalyzerFunc) Analyze(ctx context.Context, image []byte, mime string) (string, error) {
	return f(ctx, image, mime)
}

// WeaponAnalysisPrompt is sent with every image.
const WeaponAnalysisPrompt = `You are looking at a screenshot of a weapon from Minecraft or a Minecraft mod.
Identify the weapon and read every statistic visible in its tooltip or inventory panel.
Answer with a single JSON object and nothing else, using these keys when the value is visible:
"name", "weapon_type", "rarity", "damage", "attack_speed", "fire_rate", "magazine_size",
"durability", "range", "enchantments" (array of strings such as "Sharpness V"), "description".
Numeric stats must be numbers. Omit keys you cannot read. Put any other stat you see under its own key.`

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// ErrEmptyModelResponse is returned when the model answered without text.
var ErrEmptyModelResponse = errors.New("empty response from model")

// GeminiAnalyzer calls the Gemini API with the image inline.
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

// NewGeminiAnalyzer creates a Gemini-backed Analyzer.
func NewGeminiAnalyzer(ctx context.Context, apiKey, model string) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	return newGeminiAnalyzer(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

func newGeminiAnalyzer(ctx context.Context, cc *genai.ClientConfig, model string) (*GeminiAnalyzer, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiAnalyzer{client: client, model: model}, nil
}

// Analyze sends the fixed prompt plus the image bytes; the SDK base64-encodes
// the inline part on the wire.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, image []byte, mime string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("image is empty")
	}
	if mime == "" {
		mime = "image/jpeg"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(WeaponAnalysisPrompt),
			genai.NewPartFromBytes(image, mime),
		}, genai.RoleUser),
	}

	temperature := float32(0)
	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyModelResponse
	}
	return text, nil
}
