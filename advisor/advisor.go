// Package advisor talks to the generative model that powers the consultation.
// Its contract with the rest of the app is deliberately one-sided: Analyze and
// Speak never fail. Transport or decode problems degrade to an apology reply
// or to silence, so the chat pipeline has no error path to handle.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"agrichat/catalog"
	"agrichat/types"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultEndpoint    = "https://generativelanguage.googleapis.com/v1beta"
	defaultChatModel   = "gemini-2.5-flash"
	defaultSpeechModel = "gemini-2.5-flash-preview-tts"
	defaultHistory     = 10
)

const fallbackText = "Xin lỗi, hiện tại tôi không thể kết nối tới máy chủ."

type Config struct {
	Endpoint     string
	ChatModel    string
	SpeechModel  string
	APIKey       string
	HistoryLimit int
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = defaultChatModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = defaultSpeechModel
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistory
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = nil

	client := &Client{cfg: cfg, httpClient: retryClient.StandardClient()}
	client.httpClient.Timeout = time.Second * 300
	return client
}

// Configured reports whether an API key is present. Without one every call
// runs against the built-in mock responses.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Parts []part `json:"parts"`
}

type speechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type generationConfig struct {
	ResponseMimeType   string          `json:"responseMimeType,omitempty"`
	ResponseSchema     json.RawMessage `json:"responseSchema,omitempty"`
	ResponseModalities []string        `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig   `json:"speechConfig,omitempty"`
}

type generatePayload struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) createRequest(ctx context.Context, model string, payload generatePayload) (*http.Request, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.Endpoint, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) generate(ctx context.Context, model string, payload generatePayload) (*generateResponse, error) {
	req, err := c.createRequest(ctx, model, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("API request failed (%s): %s", resp.Status, string(body))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, nil
}

func (r *generateResponse) firstPart() (part, bool) {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return part{}, false
	}
	return r.Candidates[0].Content.Parts[0], true
}

// Analyze runs one consultation turn. It never returns an error: the caller
// always gets text to append to the transcript.
func (c *Client) Analyze(ctx context.Context, input string, bot types.BotConfig, history []types.Message) types.AdvisorResponse {
	if !c.Configured() {
		return mockAnalyze(history)
	}

	payload := generatePayload{
		Contents: []content{{Parts: []part{{Text: buildPrompt(input, bot, history, c.cfg.HistoryLimit)}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   analysisSchema,
		},
	}

	resp, err := c.generate(ctx, c.cfg.ChatModel, payload)
	if err != nil {
		log.Printf("advisor: %v", err)
		return types.AdvisorResponse{Text: fallbackText}
	}

	p, ok := resp.firstPart()
	if !ok {
		log.Printf("advisor: empty response")
		return types.AdvisorResponse{Text: fallbackText}
	}

	var result types.AdvisorResponse
	if err := json.Unmarshal([]byte(p.Text), &result); err != nil {
		log.Printf("advisor: failed to parse structured reply: %v", err)
		return types.AdvisorResponse{Text: fallbackText}
	}
	if result.Text == "" {
		result.Text = "Xin lỗi, tôi chưa rõ câu hỏi."
	}
	if !result.AnalysisComplete {
		result.Result = nil
	}
	return result
}

// mockAnalyze mirrors the hosted behavior without credentials: keep asking for
// the growth stage until the conversation has more than the welcome exchange,
// then produce the canned rice blast assessment.
func mockAnalyze(history []types.Message) types.AdvisorResponse {
	if len(history) <= 2 {
		return types.AdvisorResponse{
			Text: "Để tư vấn chính xác, bác cho tôi biết bệnh này xuất hiện ở giai đoạn nào của cây lúa? (Mạ, đẻ nhánh, hay trổ chín?)",
		}
	}

	return types.AdvisorResponse{
		Text:             "Đã có đủ thông tin. Dưới đây là kết quả phân tích:",
		AnalysisComplete: true,
		Result: &types.AnalysisResult{
			Summary: types.AnalysisSummary{
				Crop:     "Lúa",
				Disease:  "Đạo ôn lá",
				Stage:    "Đẻ nhánh",
				Severity: "Vừa phải",
			},
			Decision: types.Decision{
				Action: types.ActionSpray,
				Label:  "Có thể cân nhắc phun",
				Reason: "Bệnh chớm xuất hiện nhưng điều kiện thời tiết âm u, ẩm độ cao thuận lợi cho nấm phát triển. Nên phun phòng ngừa lây lan.",
			},
			Ingredients: catalog.Ingredients(),
			Products:    catalog.Products(),
			Warnings: []string{
				"Lưu ý thời tiết: Không phun khi trời sắp mưa.",
				"Nguy cơ kháng thuốc: Nên luân phiên các gốc thuốc khác nhau nếu phải phun lại lần 2.",
				"Tuân thủ nguyên tắc 4 đúng.",
			},
		},
	}
}
