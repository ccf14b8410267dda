// Package audio plays synthesized speech. The synthesis endpoint returns raw
// 16-bit little-endian PCM at 24 kHz mono; playback goes through oto so the
// same code runs on the three desktop platforms.
package audio

import (
	"bytes"
	"context"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate   = 24000
	channelCount = 1
)

// Speaker turns text into PCM samples. A nil slice means nothing to play.
type Speaker interface {
	Speak(ctx context.Context, text, voice string) []byte
}

// Playback is one running utterance.
type Playback interface {
	Play()
	IsPlaying() bool
	Close() error
}

// Device owns the audio output and hands out playbacks.
type Device interface {
	NewPlayback(pcm []byte) Playback
}

type otoDevice struct {
	ctx *oto.Context
}

func (d *otoDevice) NewPlayback(pcm []byte) Playback {
	return d.ctx.NewPlayer(bytes.NewReader(pcm))
}

// openDevice initializes the platform audio output once per process.
func openDevice() (Device, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready
	return &otoDevice{ctx: ctx}, nil
}

// Controller serializes speech playback: at most one utterance plays at a
// time, and starting a new one stops whatever is still sounding.
type Controller struct {
	speaker Speaker
	voice   string

	mu      sync.Mutex
	device  Device
	openErr error
	opened  bool
	current Playback
}

func NewController(speaker Speaker, voice string) *Controller {
	return &Controller{speaker: speaker, voice: voice}
}

// NewControllerWithDevice wires a prepared output. Used by tests and by
// callers that manage the device lifecycle themselves.
func NewControllerWithDevice(speaker Speaker, voice string, device Device) *Controller {
	return &Controller{speaker: speaker, voice: voice, device: device, opened: true}
}

func (c *Controller) SetVoice(voice string) {
	c.mu.Lock()
	c.voice = voice
	c.mu.Unlock()
}

// lazily opens the device so headless runs without a sound card only pay
// for it when the user actually asks to hear something.
func (c *Controller) ensureDevice() (Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.opened {
		c.device, c.openErr = openDevice()
		c.opened = true
	}
	return c.device, c.openErr
}

// Say synthesizes and plays text, blocking until the utterance ends or the
// context is cancelled. The in-flight clip is cut off before synthesis
// starts, so a slow or failed request never leaves stale audio sounding.
// Playing is best-effort: synthesis or device failures log and return
// without sound.
func (c *Controller) Say(ctx context.Context, text string) {
	c.Stop()

	pcm := c.speaker.Speak(ctx, text, c.currentVoice())
	if len(pcm) == 0 {
		return
	}

	device, err := c.ensureDevice()
	if err != nil {
		log.Printf("audio: output unavailable: %v", err)
		return
	}

	c.mu.Lock()
	p := device.NewPlayback(pcm)
	c.current = p
	c.mu.Unlock()

	p.Play()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			c.Stop()
			return
		case <-ticker.C:
		}
	}

	c.mu.Lock()
	if c.current == p {
		c.current = nil
	}
	c.mu.Unlock()
	p.Close()
}

// Stop cuts off the active utterance, if any.
func (c *Controller) Stop() {
	c.mu.Lock()
	p := c.current
	c.current = nil
	c.mu.Unlock()
	if p != nil {
		p.Close()
	}
}

func (c *Controller) currentVoice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice
}
