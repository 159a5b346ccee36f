package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nutri-go/internal/model"
	"nutri-go/internal/nutri"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.5-flash"

	systemInstruction = "You are an expert nutritionist AI. Your goal is to provide accurate calorie and macro estimations based on food descriptions or images. Be conservative but realistic in your estimates."
)

// GeminiOptions controls how the Gemini client is configured.
type GeminiOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     nutri.Logger
}

// GeminiClient estimates nutrition through the Gemini generateContent API.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     nutri.Logger
}

var _ nutri.Analyzer = (*GeminiClient)(nil)

// NewGeminiClient constructs a client with defaults for anything left empty.
func NewGeminiClient(opts GeminiOptions) *GeminiClient {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}

	var logger nutri.Logger = nutri.NewNopLogger()
	if opts.Logger != nil {
		logger = opts.Logger
	}

	return &GeminiClient{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiSchema struct {
	Type        string                  `json:"type"`
	Description string                  `json:"description,omitempty"`
	Properties  map[string]geminiSchema `json:"properties,omitempty"`
	Required    []string                `json:"required,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *geminiSchema `json:"responseSchema,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

var nutritionSchema = &geminiSchema{
	Type: "OBJECT",
	Properties: map[string]geminiSchema{
		"foodName": {Type: "STRING", Description: "A short, descriptive name of the identified food or meal."},
		"calories": {Type: "NUMBER", Description: "Estimated total calories."},
		"protein":  {Type: "NUMBER", Description: "Estimated protein in grams."},
		"carbs":    {Type: "NUMBER", Description: "Estimated carbohydrates in grams."},
		"fat":      {Type: "NUMBER", Description: "Estimated fat in grams."},
		"notes":    {Type: "STRING", Description: "Brief nutritional advice or health notes about this meal."},
	},
	Required: []string{"foodName", "calories", "protein", "carbs", "fat", "notes"},
}

// Analyze asks the model for a nutrition estimate of the described and/or
// pictured meal.
func (c *GeminiClient) Analyze(ctx context.Context, text, image string) (model.NutritionalData, error) {
	if c.apiKey == "" {
		return model.NutritionalData{}, fmt.Errorf("gemini api key not configured")
	}

	var parts []geminiPart
	if image != "" {
		mimeType, data := splitDataURL(image)
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: mimeType, Data: data}})
	}
	parts = append(parts, geminiPart{Text: buildPrompt(text)})

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemInstruction}},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   nutritionSchema,
		},
	}

	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return model.NutritionalData{}, err
	}

	out := responseText(response)
	if out == "" {
		return model.NutritionalData{}, fmt.Errorf("no data returned from gemini")
	}

	var data model.NutritionalData
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		return model.NutritionalData{}, fmt.Errorf("decode nutrition estimate: %w", err)
	}

	c.logger.Debug("gemini estimate received", "model", c.model, "food", data.FoodName)
	return data, nil
}

func buildPrompt(text string) string {
	if strings.TrimSpace(text) != "" {
		return fmt.Sprintf("Analyze this meal described as: %q. Provide nutritional estimates.", text)
	}
	return "Analyze the food in this image. Provide nutritional estimates."
}

// splitDataURL separates "data:image/png;base64,<data>" into its mime type and
// payload. Bare base64 is assumed to be JPEG.
func splitDataURL(image string) (mimeType, data string) {
	mimeType = "image/jpeg"
	header, payload, found := strings.Cut(image, ",")
	if !found {
		return mimeType, image
	}
	if rest, ok := strings.CutPrefix(header, "data:"); ok {
		if mt, _, _ := strings.Cut(rest, ";"); mt != "" {
			mimeType = mt
		}
	}
	return mimeType, payload
}

func responseText(resp geminiGenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

func (c *GeminiClient) invoke(ctx context.Context, path string, payload any, out any) error {
	endpoint := c.baseURL + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}
