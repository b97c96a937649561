package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mwisniewski/tale-engine/pkg/session"
)

const (
	DefaultImageModel = "dall-e-3"
)

// OpenAIImageService generates illustration URLs via the OpenAI images API
type OpenAIImageService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Ensure OpenAIImageService can back the reducer's image generation
var _ session.ImageGenerator = (*OpenAIImageService)(nil)

// OpenAIImageRequest represents the request structure for the images API
type OpenAIImageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
}

// OpenAIImageResponse represents the response structure for the images API
type OpenAIImageResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenAIImageService creates a new image generation service
func NewOpenAIImageService(apiKey string, modelName string, logger *slog.Logger) *OpenAIImageService {
	if modelName == "" {
		modelName = DefaultImageModel
	}
	return &OpenAIImageService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   openAIBaseURL,
		httpClient: &http.Client{
			// Image generation is slow compared to chat completions.
			Timeout: 180 * time.Second,
		},
		logger: logger,
	}
}

// Generate renders the prompt and returns a URL to the generated image
func (s *OpenAIImageService) Generate(ctx context.Context, prompt string, size session.ImageSize) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("no prompt provided")
	}

	request := OpenAIImageRequest{
		Model:  s.modelName,
		Prompt: prompt,
		N:      1,
		Size:   string(size),
	}

	reqBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/images/generations", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var imageResp OpenAIImageResponse
	if err := json.Unmarshal(body, &imageResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if imageResp.Error != nil {
		return "", fmt.Errorf("API error: %s", imageResp.Error.Message)
	}

	if len(imageResp.Data) == 0 {
		return "", fmt.Errorf("no images returned from API")
	}

	s.logger.Debug("Image generated", "model", s.modelName, "size", size)
	return imageResp.Data[0].URL, nil
}
