package audio

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeSpeaker struct {
	mu    sync.Mutex
	pcm   []byte
	calls int
	voice string
}

func (f *fakeSpeaker) Speak(_ context.Context, _ string, voice string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.voice = voice
	return f.pcm
}

func (f *fakeSpeaker) setPCM(pcm []byte) {
	f.mu.Lock()
	f.pcm = pcm
	f.mu.Unlock()
}

func (f *fakeSpeaker) lastVoice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.voice
}

type fakePlayback struct {
	mu      sync.Mutex
	playing bool
	closed  bool
}

func (p *fakePlayback) Play() {
	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
}

func (p *fakePlayback) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && !p.closed
}

func (p *fakePlayback) Close() error {
	p.mu.Lock()
	p.playing = false
	p.closed = true
	p.mu.Unlock()
	return nil
}

type fakeDevice struct {
	mu        sync.Mutex
	playbacks []*fakePlayback
}

func (d *fakeDevice) NewPlayback(pcm []byte) Playback {
	p := &fakePlayback{}
	d.mu.Lock()
	d.playbacks = append(d.playbacks, p)
	d.mu.Unlock()
	return p
}

func (d *fakeDevice) first() *fakePlayback {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.playbacks) == 0 {
		return nil
	}
	return d.playbacks[0]
}

func (d *fakeDevice) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.playbacks)
}

func TestSayWithNoAudioIsSilent(t *testing.T) {
	device := &fakeDevice{}
	c := NewControllerWithDevice(&fakeSpeaker{}, "Puck", device)

	c.Say(context.Background(), "xin chào")
	if device.count() != 0 {
		t.Error("empty synthesis still opened a playback")
	}
}

func TestSayPlaysAndStopsOnCancel(t *testing.T) {
	device := &fakeDevice{}
	speaker := &fakeSpeaker{pcm: []byte{1, 2, 3, 4}}
	c := NewControllerWithDevice(speaker, "Kore", device)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Say(ctx, "xin chào")
		close(done)
	}()

	// wait until the playback exists, then cancel mid-utterance
	for device.first() == nil || !device.first().IsPlaying() {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if speaker.lastVoice() != "Kore" {
		t.Errorf("voice = %q", speaker.lastVoice())
	}
	p := device.first()
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if !closed {
		t.Error("cancelled playback left open")
	}
}

func TestSecondSayStopsFirst(t *testing.T) {
	device := &fakeDevice{}
	speaker := &fakeSpeaker{pcm: []byte{1, 2}}
	c := NewControllerWithDevice(speaker, "Puck", device)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Say(ctx, "một")
	for device.first() == nil || !device.first().IsPlaying() {
		time.Sleep(time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		c.Say(ctx, "hai")
		close(done)
	}()
	for device.count() < 2 {
		time.Sleep(time.Millisecond)
	}

	if device.first().IsPlaying() {
		t.Error("first playback still active after second Say")
	}
	cancel()
	<-done
}

func TestSayStopsPreviousEvenWhenSynthesisFails(t *testing.T) {
	device := &fakeDevice{}
	speaker := &fakeSpeaker{pcm: []byte{1, 2}}
	c := NewControllerWithDevice(speaker, "Puck", device)

	done := make(chan struct{})
	go func() {
		c.Say(context.Background(), "một")
		close(done)
	}()
	for device.first() == nil || !device.first().IsPlaying() {
		time.Sleep(time.Millisecond)
	}

	// synthesis yields nothing, the old clip must still be cut off
	speaker.setPCM(nil)
	c.Say(context.Background(), "hai")

	if device.first().IsPlaying() {
		t.Error("failed synthesis left previous clip playing")
	}
	if device.count() != 1 {
		t.Errorf("%d playbacks opened, want 1", device.count())
	}
	<-done
}

func TestStopIsSafeWhenIdle(t *testing.T) {
	c := NewControllerWithDevice(&fakeSpeaker{}, "Puck", &fakeDevice{})
	c.Stop()
	c.Stop()
}

func TestSetVoiceAppliesToNextUtterance(t *testing.T) {
	device := &fakeDevice{}
	speaker := &fakeSpeaker{}
	c := NewControllerWithDevice(speaker, "Puck", device)

	c.SetVoice("Aoede")
	c.Say(context.Background(), "thử giọng")
	if speaker.lastVoice() != "Aoede" {
		t.Errorf("voice = %q, want Aoede", speaker.lastVoice())
	}
}
