package session

import (
	"sync"
	"time"

	"agrichat/types"
)

// RatingDelay is how long a conversation must sit idle after a bot reply
// before the rating prompt appears.
const RatingDelay = 30 * time.Second

// ShouldArm decides whether the rating countdown may run: only for a settled
// conversation whose last word was the bot's, and only once per session.
func ShouldArm(loading bool, msgs []types.Message, alreadyRated bool) bool {
	if loading || alreadyRated {
		return false
	}
	if len(msgs) <= 1 {
		return false
	}
	return msgs[len(msgs)-1].Role == types.RoleBot
}

// RatingTimer owns the single pending rating countdown. Sync is called after
// every state change; it cancels any running countdown first, so the prompt
// only fires after a full quiet period.
type RatingTimer struct {
	mu     sync.Mutex
	delay  time.Duration
	onFire func()
	timer  *time.Timer
	rated  bool
}

func NewRatingTimer(delay time.Duration, onFire func()) *RatingTimer {
	return &RatingTimer{delay: delay, onFire: onFire}
}

func (t *RatingTimer) Sync(loading bool, msgs []types.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if !ShouldArm(loading, msgs, t.rated) {
		return
	}
	t.timer = time.AfterFunc(t.delay, t.onFire)
}

// MarkRated stops the countdown for good. Switching or clearing sessions
// resets the flag via Reset.
func (t *RatingTimer) MarkRated() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rated = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *RatingTimer) Rated() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rated
}

// Reset re-arms the timer for a new session.
func (t *RatingTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rated = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *RatingTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
