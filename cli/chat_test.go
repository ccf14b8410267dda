package cli

import (
	"context"
	"testing"

	"agrichat/session"
	"agrichat/types"

	tea "github.com/charmbracelet/bubbletea"
)

type stubStorage struct{}

func (stubStorage) LoadOnboarded() bool                     { return true }
func (stubStorage) SaveOnboarded(bool) error                { return nil }
func (stubStorage) LoadSessions() []types.ChatSession       { return nil }
func (stubStorage) SaveSessions([]types.ChatSession) error  { return nil }
func (stubStorage) ClearSessions() error                    { return nil }
func (stubStorage) LoadProfile() types.UserProfile          { return types.UserProfile{} }
func (stubStorage) SaveProfile(types.UserProfile) error     { return nil }

type stubAdvisor struct{}

func (stubAdvisor) Analyze(_ context.Context, _ string, _ types.BotConfig, _ []types.Message) types.AdvisorResponse {
	return types.AdvisorResponse{Text: "ok"}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestActionKeysIgnoredWhileTurnInFlight(t *testing.T) {
	app := session.New(stubStorage{}, stubAdvisor{})
	app.HandleAction(session.ActionIngredients)
	app.LoadSession(app.CurrentID()) // reopen to derive actions mode
	if app.InputMode() != session.InputActions {
		t.Fatalf("input mode = %v, want actions", app.InputMode())
	}

	app.BeginTurn("còn thuốc nào nữa không")
	m := model{app: app}

	before := len(app.Messages())
	m.updateChat(keyRune('1'))
	if got := len(app.Messages()); got != before {
		t.Fatalf("action handled while a turn is in flight: %d -> %d messages", before, got)
	}

	app.CompleteTurn(types.AdvisorResponse{Text: "dạ"})
	app.LoadSession(app.CurrentID())
	before = len(app.Messages())
	m.updateChat(keyRune('2'))
	if got := len(app.Messages()); got != before+2 {
		t.Fatalf("idle action not handled: %d -> %d messages", before, got)
	}
}
