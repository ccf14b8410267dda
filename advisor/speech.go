package advisor

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
)

// Speak synthesizes text with the configured prebuilt voice and returns raw
// PCM samples (16-bit little-endian, 24 kHz, mono). A nil return means audio
// is unavailable, not that something went wrong the caller should act on.
func (c *Client) Speak(ctx context.Context, text, voice string) []byte {
	if !c.Configured() {
		return nil
	}

	cfg := &generationConfig{ResponseModalities: []string{"AUDIO"}}
	cfg.SpeechConfig = &speechConfig{}
	cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = voice

	payload := generatePayload{
		Contents:         []content{{Parts: []part{{Text: fmt.Sprintf("Say the following text in Vietnamese: %s", text)}}}},
		GenerationConfig: cfg,
	}

	resp, err := c.generate(ctx, c.cfg.SpeechModel, payload)
	if err != nil {
		log.Printf("tts: %v", err)
		return nil
	}

	p, ok := resp.firstPart()
	if !ok || p.InlineData == nil || p.InlineData.Data == "" {
		return nil
	}

	pcm, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
	if err != nil {
		log.Printf("tts: failed to decode audio payload: %v", err)
		return nil
	}
	return pcm
}
