package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type geminiRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MimeType string `json:"mimeType"`
				Data     []byte `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseMIMEType string `json:"responseMimeType"`
	} `json:"generationConfig"`
}

// fakeGemini serves generateContent with a canned status and body and keeps
// the last request it saw.
type fakeGemini struct {
	mu      sync.Mutex
	path    string
	apiKey  string
	request geminiRequest
	status  int
	body    string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.path = r.URL.Path
	f.apiKey = r.Header.Get("x-goog-api-key")
	_ = json.NewDecoder(r.Body).Decode(&f.request)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(f.body))
}

func newTestGemini(t *testing.T, status int, body string) (*GeminiAnalyzer, *fakeGemini) {
	t.Helper()
	fake := &fakeGemini{status: status, body: body}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	a, err := newGeminiAnalyzer(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	}, "")
	require.NoError(t, err)
	return a, fake
}

func TestGeminiAnalyzer_SendsPromptAndImage(t *testing.T) {
	a, fake := newTestGemini(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"  {\"name\": \"Mace\"}\n"}]}}]}`)
	image := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}

	text, err := a.Analyze(context.Background(), image, "image/png")
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Mace"}`, text)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.True(t, strings.HasSuffix(fake.path, "/models/"+DefaultGeminiModel+":generateContent"), fake.path)
	assert.Equal(t, "test-key", fake.apiKey)
	assert.Equal(t, "application/json", fake.request.GenerationConfig.ResponseMIMEType)

	require.Len(t, fake.request.Contents, 1)
	parts := fake.request.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, WeaponAnalysisPrompt, parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MimeType)
	assert.Equal(t, image, parts[1].InlineData.Data)
}

func TestGeminiAnalyzer_DefaultsMimeToJPEG(t *testing.T) {
	a, fake := newTestGemini(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"{}"}]}}]}`)

	_, err := a.Analyze(context.Background(), []byte{1, 2, 3}, "")
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	parts := fake.request.Contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/jpeg", parts[1].InlineData.MimeType)
}

func TestGeminiAnalyzer_EmptyReply(t *testing.T) {
	for name, body := range map[string]string{
		"no candidates": `{"candidates":[]}`,
		"blank text":    `{"candidates":[{"content":{"role":"model","parts":[{"text":"   "}]}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			a, _ := newTestGemini(t, http.StatusOK, body)
			_, err := a.Analyze(context.Background(), []byte{1}, "image/png")
			assert.ErrorIs(t, err, ErrEmptyModelResponse)
		})
	}
}

func TestGeminiAnalyzer_UpstreamError(t *testing.T) {
	a, _ := newTestGemini(t, http.StatusInternalServerError,
		`{"error":{"code":500,"message":"backend exploded","status":"INTERNAL"}}`)

	_, err := a.Analyze(context.Background(), []byte{1}, "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini generate failed")
	assert.NotErrorIs(t, err, ErrEmptyModelResponse)

	var apiErr genai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Code)
}

func TestGeminiAnalyzer_RejectsBadInput(t *testing.T) {
	_, err := NewGeminiAnalyzer(context.Background(), "", "")
	assert.Error(t, err)

	a, fake := newTestGemini(t, http.StatusOK, `{}`)
	_, err = a.Analyze(context.Background(), nil, "image/png")
	assert.Error(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Empty(t, fake.path)
}
