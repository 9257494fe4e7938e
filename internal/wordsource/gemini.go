package wordsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-1.5-flash"

	maxErrorBody = 512
)

// GeminiClient generates words and facts with the Gemini generateContent API.
type GeminiClient struct {
	httpClient     *http.Client
	apiKey         string
	baseURL        string
	model          string
	fallbackModels []string
	log            *slog.Logger
}

func NewGeminiClient(httpClient *http.Client, apiKey, baseURL, model string, fallbackModels []string, log *slog.Logger) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		httpClient:     httpClient,
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		model:          model,
		fallbackModels: fallbackModels,
		log:            log,
	}
}

type (
	geminiPart struct {
		Text string `json:"text"`
	}

	geminiContent struct {
		Parts []geminiPart `json:"parts"`
	}

	generateRequest struct {
		Contents []geminiContent `json:"contents"`
	}

	generateResponse struct {
		Candidates []struct {
			Content geminiContent `json:"content"`
		} `json:"candidates"`
	}
)

func (c *GeminiClient) Generate(ctx context.Context, req Request) (Word, error) {
	var res Word
	err := c.withModels(ctx, func(model string) error {
		w, err := c.generateWithModel(ctx, model, req)
		if err != nil {
			return err
		}
		res = w
		return nil
	})
	if err != nil {
		return Word{}, err
	}
	res.Topic = req.Topic
	return res, nil
}

func (c *GeminiClient) Fact(ctx context.Context, word string) (string, error) {
	var res string
	err := c.withModels(ctx, func(model string) error {
		text, err := c.generateContent(ctx, model, FactPrompt(word))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		if text == "" {
			return ErrNoFact
		}
		res = text
		return nil
	})
	return res, err
}

func (c *GeminiClient) withModels(ctx context.Context, fn func(model string) error) error {
	models := make([]string, 0, 1+len(c.fallbackModels))
	models = append(models, c.model)
	models = append(models, c.fallbackModels...)

	var lastErr error
	for _, model := range models {
		err := fn(model)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		lastErr = err
		if len(models) > 1 {
			c.log.WarnContext(ctx, "model failed, trying next", "model", model, "error", err)
		}
	}
	return lastErr
}

func (c *GeminiClient) generateWithModel(ctx context.Context, model string, req Request) (Word, error) {
	content, err := c.generateContent(ctx, model, wordPrompt(req))
	if err != nil {
		return Word{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	w, err := parseWord(content)
	if err == nil {
		return w, nil
	}

	c.log.WarnContext(ctx, "model returned invalid word payload, retrying", "model", model, "error", err)
	content, err = c.generateContent(ctx, model, retryPrompt(content))
	if err != nil {
		return Word{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return parseWord(content)
}

func (c *GeminiClient) generateContent(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return "", fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err = json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no candidates in response")
	}

	return strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text), nil
}
