package advisor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agrichat/types"
)

func TestMockAsksForStageEarly(t *testing.T) {
	c := NewClient(Config{})
	history := []types.Message{types.WelcomeMessage(), types.TextMessage("m1", types.RoleUser, "Lúa bị đạo ôn")}

	resp := c.Analyze(context.Background(), "Lúa bị đạo ôn", types.DefaultBotConfig(), history)
	if resp.AnalysisComplete {
		t.Fatal("mock completed analysis with too little history")
	}
	if resp.Result != nil {
		t.Fatal("incomplete response carries a result")
	}
	if !strings.Contains(resp.Text, "giai đoạn") {
		t.Errorf("expected stage question, got %q", resp.Text)
	}
}

func TestMockCompletesWithEnoughHistory(t *testing.T) {
	c := NewClient(Config{})
	history := []types.Message{
		types.WelcomeMessage(),
		types.TextMessage("m1", types.RoleUser, "Lúa bị đạo ôn"),
		types.TextMessage("m2", types.RoleBot, "Giai đoạn nào?"),
		types.TextMessage("m3", types.RoleUser, "Đẻ nhánh"),
	}

	resp := c.Analyze(context.Background(), "Đẻ nhánh", types.DefaultBotConfig(), history)
	if !resp.AnalysisComplete || resp.Result == nil {
		t.Fatalf("mock did not complete: %+v", resp)
	}
	if resp.Result.Summary.Disease != "Đạo ôn lá" {
		t.Errorf("disease = %q", resp.Result.Summary.Disease)
	}
	if len(resp.Result.Ingredients) == 0 || len(resp.Result.Products) == 0 {
		t.Error("mock result missing catalog recommendations")
	}
}

func TestAnalyzeParsesStructuredReply(t *testing.T) {
	inner, _ := json.Marshal(types.AdvisorResponse{
		Text:             "Tôi đã nắm được tình hình.",
		AnalysisComplete: true,
		Result: &types.AnalysisResult{
			Summary:  types.AnalysisSummary{Crop: "Lúa", Disease: "Đạo ôn lá", Stage: "Đẻ nhánh", Severity: "Nặng"},
			Decision: types.Decision{Action: types.ActionSpray, Label: "Nên phun", Reason: "Bệnh lan nhanh"},
		},
	})

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]interface{}{{"text": string(inner)}}}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test-key"})
	resp := c.Analyze(context.Background(), "lúa bị nặng lắm", types.DefaultBotConfig(), nil)

	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("request path = %q", gotPath)
	}
	if !resp.AnalysisComplete || resp.Result == nil || resp.Result.Decision.Action != types.ActionSpray {
		t.Fatalf("parsed response = %+v", resp)
	}
}

func TestAnalyzeFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test-key"})
	resp := c.Analyze(context.Background(), "hello", types.DefaultBotConfig(), nil)

	if resp.AnalysisComplete || resp.Result != nil {
		t.Fatalf("failure produced a result: %+v", resp)
	}
	if resp.Text != fallbackText {
		t.Errorf("text = %q, want apology fallback", resp.Text)
	}
}

func TestSpeakUnconfiguredIsSilent(t *testing.T) {
	c := NewClient(Config{})
	if pcm := c.Speak(context.Background(), "xin chào", "Puck"); pcm != nil {
		t.Fatalf("unconfigured Speak returned %d bytes", len(pcm))
	}
}

func TestSpeakDecodesInlineAudio(t *testing.T) {
	raw := []byte{0x01, 0x00, 0xff, 0x7f}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload generatePayload
		json.NewDecoder(r.Body).Decode(&payload)
		if payload.GenerationConfig == nil || payload.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Kore" {
			t.Errorf("voice config not forwarded: %+v", payload.GenerationConfig)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]interface{}{
					{"inlineData": map[string]string{"mimeType": "audio/pcm", "data": base64.StdEncoding.EncodeToString(raw)}},
				}}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test-key"})
	pcm := c.Speak(context.Background(), "xin chào", "Kore")
	if string(pcm) != string(raw) {
		t.Fatalf("pcm = %v, want %v", pcm, raw)
	}
}

func TestFormatHistory(t *testing.T) {
	history := []types.Message{
		types.WelcomeMessage(),
		types.TextMessage("m1", types.RoleUser, "câu hỏi"),
		{ID: "m2", Role: types.RoleBot, Kind: types.KindStores},
	}
	got := formatHistory(history, 10)
	if strings.Contains(got, "stores") {
		t.Errorf("structured message leaked into prompt: %q", got)
	}
	if !strings.Contains(got, "Farmer: câu hỏi") || !strings.Contains(got, "Officer: ") {
		t.Errorf("history = %q", got)
	}

	long := make([]types.Message, 0, 20)
	for i := 0; i < 20; i++ {
		long = append(long, types.TextMessage(types.MessageID(string(rune('a'+i))), types.RoleUser, "x"))
	}
	if lines := strings.Count(formatHistory(long, 10), "\n") + 1; lines != 10 {
		t.Errorf("history limit not applied, got %d lines", lines)
	}
}
