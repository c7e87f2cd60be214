package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tppkitchen/backoffice/internal/adapter/llm/gemini"
	llmhttp "github.com/tppkitchen/backoffice/internal/adapter/llm/http"
	"github.com/tppkitchen/backoffice/internal/config"
)

const nutrientJSON = `{"calories": 398, "protein": 11.8, "fat": 17.2, "saturated_fat": 2.1, "carbs": 44.0, "sugars": 10.5, "fiber": 4.2, "sodium": 365}`

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func fastProviderConfig() config.ProviderConfig {
	return config.ProviderConfig{
		Enabled:        true,
		MaxRetries:     intPtr(1),
		InitialBackoff: strPtr("1ms"),
		MaxBackoff:     strPtr("2ms"),
	}
}

func generateResponse(text, finishReason string) gemini.GenerateContentResponse {
	return gemini.GenerateContentResponse{
		Candidates: []gemini.Candidate{
			{
				Content: gemini.Content{
					Parts: []gemini.Part{{Text: text}},
					Role:  "model",
				},
				FinishReason: finishReason,
			},
		},
		UsageMetadata: gemini.UsageMetadata{PromptTokenCount: 300, CandidatesTokenCount: 55},
	}
}

func TestHTTPClient_Call_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotReq gemini.GenerateContentRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse(nutrientJSON, "STOP"))
	}))
	defer server.Close()

	client := gemini.NewHTTPClient("test-key", "gemini-2.0-flash", fastProviderConfig(), config.HTTPConfig{})
	client.SetBaseURL(server.URL)

	completion, err := client.Call(context.Background(), "estimate this recipe", gemini.CallOptions{
		Temperature: 0.2,
		MaxTokens:   512,
	})

	require.NoError(t, err)
	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	assert.Equal(t, "estimate this recipe", gotReq.Contents[0].Parts[0].Text)
	require.NotNil(t, gotReq.GenerationConfig)
	assert.Equal(t, 512, gotReq.GenerationConfig.MaxOutputTokens)
	assert.Equal(t, 1, gotReq.GenerationConfig.CandidateCount)
	assert.NotEmpty(t, gotReq.SafetySettings)

	assert.Equal(t, nutrientJSON, completion.Text)
	assert.Equal(t, "STOP", completion.FinishReason)
	assert.Equal(t, 300, completion.Usage.TokensIn)
	assert.Equal(t, 55, completion.Usage.TokensOut)
}

func TestHTTPClient_Call_NoAPIKey(t *testing.T) {
	client := gemini.NewHTTPClient("", "gemini-2.0-flash", fastProviderConfig(), config.HTTPConfig{})

	_, err := client.Call(context.Background(), "prompt", gemini.CallOptions{})

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeAuthentication, httpErr.Type)
	assert.Equal(t, "gemini", httpErr.Provider)
}

func TestHTTPClient_Call_ServiceUnavailable_Retried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"The model is overloaded","status":"UNAVAILABLE"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse(nutrientJSON, "STOP"))
	}))
	defer server.Close()

	client := gemini.NewHTTPClient("test-key", "gemini-2.0-flash", fastProviderConfig(), config.HTTPConfig{})
	client.SetBaseURL(server.URL)

	completion, err := client.Call(context.Background(), "prompt", gemini.CallOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, nutrientJSON, completion.Text)
}

func TestHTTPClient_Call_InvalidRequest_NotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Invalid model name","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	client := gemini.NewHTTPClient("test-key", "no-such-model", fastProviderConfig(), config.HTTPConfig{})
	client.SetBaseURL(server.URL)

	_, err := client.Call(context.Background(), "prompt", gemini.CallOptions{})

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeInvalidRequest, httpErr.Type)
	assert.Equal(t, 1, calls)
}

func TestHTTPClient_Call_SafetyBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse("", "SAFETY"))
	}))
	defer server.Close()

	client := gemini.NewHTTPClient("test-key", "gemini-2.0-flash", fastProviderConfig(), config.HTTPConfig{})
	client.SetBaseURL(server.URL)

	_, err := client.Call(context.Background(), "prompt", gemini.CallOptions{})

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeContentFiltered, httpErr.Type)
}

func TestHTTPClient_Call_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gemini.GenerateContentResponse{})
	}))
	defer server.Close()

	client := gemini.NewHTTPClient("test-key", "gemini-2.0-flash", fastProviderConfig(), config.HTTPConfig{})
	client.SetBaseURL(server.URL)

	_, err := client.Call(context.Background(), "prompt", gemini.CallOptions{})

	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeEmptyResponse, httpErr.Type)
}
