// Package session owns the conversation state of the app: the persisted
// session list, the working transcript, the active view and the input mode.
// Every mutation is written through to storage before it returns; persistence
// is best-effort and never blocks a user action.
package session

import (
	"log"
	"sort"
	"time"

	"agrichat/types"
	"agrichat/util"

	"github.com/google/uuid"
)

// Storage is the slice of the db layer the app state needs.
type Storage interface {
	LoadOnboarded() bool
	SaveOnboarded(bool) error
	LoadSessions() []types.ChatSession
	SaveSessions([]types.ChatSession) error
	ClearSessions() error
	LoadProfile() types.UserProfile
	SaveProfile(types.UserProfile) error
}

type InputMode int

const (
	InputDefault InputMode = iota
	InputActions
)

const (
	defaultTitle   = "Hội thoại mới"
	freshPreview   = "Bắt đầu cuộc trò chuyện"
	titleMaxRunes  = 30
	previewMaxRunes = 50
)

type App struct {
	storage Storage
	advisor Advisor

	view    View
	profile types.UserProfile
	bot     types.BotConfig

	sessions  []types.ChatSession
	currentID types.SessionID
	messages  []types.Message
	result    *types.AnalysisResult

	inputMode   InputMode
	loading     bool
	historyOpen bool
}

// New restores persisted state and seeds a fresh current session, so exactly
// one session is always current once the app is initialized.
func New(storage Storage, adv Advisor) *App {
	a := &App{
		storage: storage,
		advisor: adv,
		bot:     types.DefaultBotConfig(),
		view:    ViewOnboarding,
	}
	if storage.LoadOnboarded() {
		a.view = ViewHome
	}
	a.profile = storage.LoadProfile()
	a.sessions = storage.LoadSessions()
	a.sortSessions()
	a.NewSession(false)
	return a
}

func (a *App) Sessions() []types.ChatSession { return a.sessions }
func (a *App) CurrentID() types.SessionID   { return a.currentID }
func (a *App) Messages() []types.Message    { return a.messages }
func (a *App) Result() *types.AnalysisResult { return a.result }
func (a *App) InputMode() InputMode         { return a.inputMode }
func (a *App) Loading() bool                { return a.loading }
func (a *App) HistoryOpen() bool            { return a.historyOpen }
func (a *App) Profile() types.UserProfile   { return a.profile }
func (a *App) BotConfig() types.BotConfig   { return a.bot }

func (a *App) OpenHistory()  { a.historyOpen = true }
func (a *App) CloseHistory() { a.historyOpen = false }

func (a *App) SetBotConfig(cfg types.BotConfig) { a.bot = cfg }

// CompleteOnboarding stores the collected profile, marks onboarding done and
// moves to the home screen.
func (a *App) CompleteOnboarding(profile types.UserProfile) {
	if profile.Name == "" {
		profile.Name = "Nhà nông"
	}
	a.UpdateProfile(profile)
	if err := a.storage.SaveOnboarded(true); err != nil {
		log.Printf("failed to persist onboarding marker: %v", err)
	}
	a.view = ViewHome
}

func (a *App) UpdateProfile(profile types.UserProfile) {
	a.profile = profile
	if err := a.storage.SaveProfile(profile); err != nil {
		log.Printf("failed to persist profile: %v", err)
	}
}

// NewSession creates a welcome-seeded session, makes it current and
// optionally opens the chat view. It always succeeds.
func (a *App) NewSession(switchView bool) types.SessionID {
	id := types.SessionID(uuid.New().String())
	s := types.ChatSession{
		ID:        id,
		Title:     defaultTitle,
		Timestamp: time.Now().UnixMilli(),
		Messages:  []types.Message{types.WelcomeMessage()},
		Preview:   freshPreview,
	}
	a.sessions = append([]types.ChatSession{s}, a.sessions...)
	a.currentID = id
	a.messages = []types.Message{types.WelcomeMessage()}
	a.inputMode = InputDefault
	a.result = nil
	a.persist()

	if switchView {
		a.view = ViewChat
	}
	return id
}

// LoadSession makes the given session current. Sessions that already hold an
// analysis result reopen directly on the result screen with that result
// restored; everything else reopens in the chat transcript.
func (a *App) LoadSession(id types.SessionID) {
	s, ok := a.findSession(id)
	if !ok {
		return
	}

	a.currentID = id
	a.messages = append([]types.Message(nil), s.Messages...)

	a.result = lastAnalysisResult(s.Messages)
	if a.result != nil {
		a.view = ViewResult
	} else {
		a.view = ViewChat
	}

	a.inputMode = InputDefault
	if hasTerminalStructured(s.Messages) {
		a.inputMode = InputActions
	}
	a.historyOpen = false
}

// DeleteSession removes a session and persists immediately. Deleting the
// current session promotes the most recent remaining one, with result and
// input mode re-derived from its transcript, or creates a fresh session when
// none remain. The active view is left alone.
func (a *App) DeleteSession(id types.SessionID) {
	kept := a.sessions[:0:0]
	removed := false
	for _, s := range a.sessions {
		if s.ID == id {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	if !removed {
		return
	}
	a.sessions = kept
	a.saveSessions()

	if id != a.currentID {
		return
	}
	if len(a.sessions) > 0 {
		next := a.sessions[0] // sorted most recent first
		a.currentID = next.ID
		a.messages = append([]types.Message(nil), next.Messages...)
		a.result = lastAnalysisResult(next.Messages)
		a.inputMode = InputDefault
		if hasTerminalStructured(next.Messages) {
			a.inputMode = InputActions
		}
		return
	}
	a.NewSession(false)
}

// ClearAll wipes the whole history and starts over with one fresh session.
// Callers must have confirmed the action with the user already.
func (a *App) ClearAll() {
	a.sessions = nil
	if err := a.storage.ClearSessions(); err != nil {
		log.Printf("failed to clear history: %v", err)
	}
	a.NewSession(false)
	a.historyOpen = false
}

// RateSession records conversation feedback. There is no feedback backend;
// the rating is only logged.
func (a *App) RateSession(stars int, feedback string) {
	log.Printf("session %s rated %d stars: %s", a.currentID, stars, feedback)
}

func (a *App) findSession(id types.SessionID) (types.ChatSession, bool) {
	for _, s := range a.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return types.ChatSession{}, false
}

func (a *App) setTitle(title string) {
	for i := range a.sessions {
		if a.sessions[i].ID == a.currentID {
			a.sessions[i].Title = title
			return
		}
	}
}

// appendMessage adds to the working transcript, bumps the session timestamp
// and writes the full session list out.
func (a *App) appendMessage(m types.Message) {
	a.messages = append(a.messages, m)
	a.touch()
	a.persist()
}

func (a *App) touch() {
	for i := range a.sessions {
		if a.sessions[i].ID == a.currentID {
			a.sessions[i].Timestamp = time.Now().UnixMilli()
			return
		}
	}
}

// Persist syncs the current session record with the working transcript,
// recomputes previews and writes the list. Persisting twice in a row without
// a mutation in between stores identical bytes.
func (a *App) Persist() { a.persist() }

func (a *App) persist() {
	for i := range a.sessions {
		if a.sessions[i].ID == a.currentID {
			a.sessions[i].Messages = append([]types.Message(nil), a.messages...)
		}
		a.sessions[i].Preview = previewFor(a.sessions[i].Messages)
	}
	a.sortSessions()
	a.saveSessions()
}

func (a *App) saveSessions() {
	if err := a.storage.SaveSessions(a.sessions); err != nil {
		log.Printf("failed to persist chat history: %v", err)
	}
}

func (a *App) sortSessions() {
	sort.SliceStable(a.sessions, func(i, j int) bool {
		return a.sessions[i].Timestamp > a.sessions[j].Timestamp
	})
}

func previewFor(msgs []types.Message) string {
	if len(msgs) == 0 {
		return "Đang chat..."
	}
	switch last := msgs[len(msgs)-1]; last.Kind {
	case types.KindText:
		if last.ID == types.WelcomeID {
			return freshPreview
		}
		return util.Truncate(last.Content, previewMaxRunes)
	case types.KindAnalysis:
		return "Kết quả phân tích"
	case types.KindStores:
		return "Danh sách cửa hàng"
	case types.KindIngredients:
		return "Danh sách hoạt chất"
	case types.KindProducts:
		return "Danh sách thuốc tham khảo"
	}
	return "Đang chat..."
}

func lastAnalysisResult(msgs []types.Message) *types.AnalysisResult {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Kind == types.KindAnalysis && msgs[i].Result != nil {
			return msgs[i].Result
		}
	}
	return nil
}

// hasTerminalStructured reports whether the transcript reached a structured
// outcome. Store listings alone do not count: they appear from plain lookups
// before any disease is identified.
func hasTerminalStructured(msgs []types.Message) bool {
	for _, m := range msgs {
		switch m.Kind {
		case types.KindAnalysis, types.KindIngredients, types.KindProducts:
			return true
		}
	}
	return false
}

func newMessageID() types.MessageID {
	return types.MessageID(uuid.New().String())
}
