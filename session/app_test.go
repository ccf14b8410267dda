package session

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"agrichat/types"
)

type fakeStorage struct {
	onboarded bool
	sessions  []types.ChatSession
	profile   types.UserProfile
	saves     int
}

func (f *fakeStorage) LoadOnboarded() bool { return f.onboarded }
func (f *fakeStorage) SaveOnboarded(v bool) error {
	f.onboarded = v
	return nil
}
func (f *fakeStorage) LoadSessions() []types.ChatSession { return f.sessions }
func (f *fakeStorage) SaveSessions(sessions []types.ChatSession) error {
	f.sessions = append([]types.ChatSession(nil), sessions...)
	f.saves++
	return nil
}
func (f *fakeStorage) ClearSessions() error {
	f.sessions = nil
	return nil
}
func (f *fakeStorage) LoadProfile() types.UserProfile { return f.profile }
func (f *fakeStorage) SaveProfile(p types.UserProfile) error {
	f.profile = p
	return nil
}

type fakeAdvisor struct {
	responses []types.AdvisorResponse
	calls     int
}

func (f *fakeAdvisor) Analyze(_ context.Context, _ string, _ types.BotConfig, _ []types.Message) types.AdvisorResponse {
	resp := f.responses[f.calls%len(f.responses)]
	f.calls++
	return resp
}

func textReply(s string) types.AdvisorResponse {
	return types.AdvisorResponse{Text: s}
}

func analysisReply() types.AdvisorResponse {
	return types.AdvisorResponse{
		Text:             "Đã có đủ thông tin.",
		AnalysisComplete: true,
		Result: &types.AnalysisResult{
			Summary:  types.AnalysisSummary{Crop: "Lúa", Disease: "Đạo ôn lá", Stage: "Đẻ nhánh", Severity: "Vừa phải"},
			Decision: types.Decision{Action: types.ActionSpray, Label: "Nên phun", Reason: "Ẩm độ cao"},
		},
	}
}

func newTestApp(t *testing.T, storage *fakeStorage, adv Advisor) *App {
	t.Helper()
	if storage == nil {
		storage = &fakeStorage{onboarded: true}
	}
	if adv == nil {
		adv = &fakeAdvisor{responses: []types.AdvisorResponse{textReply("ok")}}
	}
	return New(storage, adv)
}

func TestNewStartsOnboardingForFreshInstall(t *testing.T) {
	a := New(&fakeStorage{}, &fakeAdvisor{responses: []types.AdvisorResponse{textReply("ok")}})
	if a.View() != ViewOnboarding {
		t.Errorf("view = %q, want onboarding", a.View())
	}
	if len(a.Sessions()) != 1 {
		t.Fatalf("fresh install has %d sessions, want 1", len(a.Sessions()))
	}
	s := a.Sessions()[0]
	if s.Title != "Hội thoại mới" || s.Preview != "Bắt đầu cuộc trò chuyện" {
		t.Errorf("fresh session = %q / %q", s.Title, s.Preview)
	}
	if len(a.Messages()) != 1 || a.Messages()[0].ID != types.WelcomeID {
		t.Errorf("fresh transcript = %+v", a.Messages())
	}
}

func TestNewSkipsOnboardingWhenMarked(t *testing.T) {
	a := newTestApp(t, &fakeStorage{onboarded: true}, nil)
	if a.View() != ViewHome {
		t.Errorf("view = %q, want home", a.View())
	}
}

func TestCompleteOnboardingDefaultsName(t *testing.T) {
	storage := &fakeStorage{}
	a := New(storage, &fakeAdvisor{responses: []types.AdvisorResponse{textReply("ok")}})

	a.CompleteOnboarding(types.UserProfile{Crops: []string{"Lúa"}})
	if a.Profile().Name != "Nhà nông" {
		t.Errorf("name = %q, want default", a.Profile().Name)
	}
	if !storage.onboarded {
		t.Error("onboarding marker not persisted")
	}
	if a.View() != ViewHome {
		t.Errorf("view = %q, want home", a.View())
	}
}

func TestBeginTurnTitlesSessionFromFirstMessage(t *testing.T) {
	a := newTestApp(t, nil, nil)
	long := "Lúa nhà tôi bị đạo ôn nặng lắm, phải làm sao đây"

	a.BeginTurn(long)
	if !a.Loading() {
		t.Error("loading flag not set")
	}
	title := a.Sessions()[0].Title
	if !strings.HasSuffix(title, "...") {
		t.Errorf("long title not truncated: %q", title)
	}
	if len([]rune(title)) > 33 {
		t.Errorf("title too long: %q", title)
	}

	// a second turn must not retitle
	a.CompleteTurn(textReply("dạ"))
	a.BeginTurn("còn sâu cuốn lá thì sao")
	if got := a.Sessions()[0].Title; got != title {
		t.Errorf("title rewritten on later turn: %q", got)
	}
}

func TestCompleteTurnTextOnly(t *testing.T) {
	a := newTestApp(t, nil, nil)
	a.Go(ViewChat)

	a.BeginTurn("lúa bị bệnh")
	a.CompleteTurn(textReply("bệnh gì vậy bác?"))

	if a.Loading() {
		t.Error("loading flag still set")
	}
	msgs := a.Messages()
	if len(msgs) != 3 {
		t.Fatalf("transcript has %d messages, want 3", len(msgs))
	}
	last := msgs[len(msgs)-1]
	if last.Role != types.RoleBot || last.Kind != types.KindText {
		t.Errorf("last message = %+v", last)
	}
	if a.View() != ViewChat || a.Result() != nil || a.InputMode() != InputDefault {
		t.Errorf("text-only turn changed terminal state: view=%q result=%v mode=%v", a.View(), a.Result(), a.InputMode())
	}
}

func TestCompleteTurnWithAnalysisOpensResult(t *testing.T) {
	a := newTestApp(t, nil, nil)
	a.Go(ViewChat)

	a.SendMessage(context.Background(), "đủ thông tin rồi")
	a.CompleteTurn(analysisReply())

	if a.View() != ViewResult {
		t.Fatalf("view = %q, want result", a.View())
	}
	if a.Result() == nil || a.Result().Summary.Disease != "Đạo ôn lá" {
		t.Errorf("result = %+v", a.Result())
	}
	if a.InputMode() != InputDefault {
		t.Errorf("input mode = %v after completed analysis, want default", a.InputMode())
	}
	// actions mode is only derived when the session is reopened
	a.LoadSession(a.CurrentID())
	if a.InputMode() != InputActions {
		t.Error("reopened analysis session not in actions mode")
	}
	msgs := a.Messages()
	if msgs[len(msgs)-1].Kind != types.KindAnalysis {
		t.Errorf("structured message not appended, last = %+v", msgs[len(msgs)-1])
	}
	if a.Sessions()[0].Preview != "Kết quả phân tích" {
		t.Errorf("preview = %q", a.Sessions()[0].Preview)
	}
}

func TestCompleteTurnIgnoresCompleteFlagWithoutResult(t *testing.T) {
	a := newTestApp(t, nil, nil)
	a.Go(ViewChat)

	a.BeginTurn("hm")
	a.CompleteTurn(types.AdvisorResponse{Text: "xong", AnalysisComplete: true})
	if a.View() != ViewChat || a.Result() != nil {
		t.Errorf("inconsistent reply treated as complete: view=%q", a.View())
	}
}

func TestPersistIsIdempotent(t *testing.T) {
	storage := &fakeStorage{onboarded: true}
	a := New(storage, &fakeAdvisor{responses: []types.AdvisorResponse{textReply("ok")}})
	a.SendMessage(context.Background(), "xin chào")

	a.Persist()
	first, err := json.Marshal(storage.sessions)
	if err != nil {
		t.Fatal(err)
	}
	a.Persist()
	second, _ := json.Marshal(storage.sessions)
	if string(first) != string(second) {
		t.Error("back-to-back persists stored different bytes")
	}
}

func TestHandleActionAppendsStructuredPair(t *testing.T) {
	a := newTestApp(t, nil, nil)

	a.HandleAction(ActionStores)
	msgs := a.Messages()
	if len(msgs) != 3 {
		t.Fatalf("transcript has %d messages, want 3", len(msgs))
	}
	if msgs[1].Content != "Tìm cửa hàng gần đây" || msgs[1].Role != types.RoleUser {
		t.Errorf("scripted user message = %+v", msgs[1])
	}
	if msgs[2].Kind != types.KindStores || len(msgs[2].Stores) == 0 {
		t.Errorf("store reply = %+v", msgs[2])
	}
	if a.Sessions()[0].Preview != "Danh sách cửa hàng" {
		t.Errorf("preview = %q", a.Sessions()[0].Preview)
	}
}

func TestFindStoreForProductReturnsToChat(t *testing.T) {
	a := newTestApp(t, nil, nil)
	a.Go(ViewChat)
	a.CompleteTurn(analysisReply())

	a.FindStoreForProduct("Beam 75WP")
	if a.View() != ViewChat {
		t.Errorf("view = %q, want chat", a.View())
	}
	msgs := a.Messages()
	want := "Tìm nơi bán thuốc Beam 75WP gần đây"
	if msgs[len(msgs)-2].Content != want {
		t.Errorf("lookup message = %q", msgs[len(msgs)-2].Content)
	}
	if msgs[len(msgs)-1].Kind != types.KindStores {
		t.Error("store listing not appended")
	}
}

func TestLoadSessionRestoresResultScreen(t *testing.T) {
	a := newTestApp(t, nil, nil)
	a.Go(ViewChat)
	a.CompleteTurn(analysisReply())
	resultID := a.CurrentID()

	plainID := a.NewSession(true)
	a.SendMessage(context.Background(), "chuyện khác")

	a.LoadSession(resultID)
	if a.CurrentID() != resultID {
		t.Fatal("session not switched")
	}
	if a.View() != ViewResult || a.Result() == nil {
		t.Errorf("analysis session reopened on %q with result %v", a.View(), a.Result())
	}
	if a.InputMode() != InputActions {
		t.Error("input mode not restored to actions")
	}

	a.LoadSession(plainID)
	if a.View() != ViewChat || a.Result() != nil || a.InputMode() != InputDefault {
		t.Errorf("plain session reopened on %q", a.View())
	}
}

func TestLoadSessionUnknownIDIsNoop(t *testing.T) {
	a := newTestApp(t, nil, nil)
	before := a.CurrentID()
	a.LoadSession("missing")
	if a.CurrentID() != before {
		t.Error("unknown id switched sessions")
	}
}

func TestDeleteCurrentSessionPromotesMostRecent(t *testing.T) {
	a := newTestApp(t, nil, nil)
	first := a.CurrentID()
	a.SendMessage(context.Background(), "phiên một")

	second := a.NewSession(false)
	a.SendMessage(context.Background(), "phiên hai")

	a.DeleteSession(second)
	if a.CurrentID() != first {
		t.Errorf("current = %v, want promoted %v", a.CurrentID(), first)
	}
	if len(a.Sessions()) != 1 {
		t.Errorf("%d sessions remain, want 1", len(a.Sessions()))
	}
	if a.Messages()[len(a.Messages())-1].Content == "phiên hai" {
		t.Error("transcript still shows deleted session")
	}
}

func TestDeleteCurrentSessionRederivesState(t *testing.T) {
	a := newTestApp(t, nil, nil)
	plain := a.CurrentID()
	a.SendMessage(context.Background(), "phiên thường")

	withResult := a.NewSession(false)
	a.CompleteTurn(analysisReply())
	if a.Result() == nil {
		t.Fatal("analysis session has no result")
	}

	a.DeleteSession(withResult)
	if a.CurrentID() != plain {
		t.Fatalf("current = %v, want %v", a.CurrentID(), plain)
	}
	if a.Result() != nil {
		t.Error("stale result kept after promoting a plain session")
	}
	if a.InputMode() != InputDefault {
		t.Errorf("input mode = %v, want default", a.InputMode())
	}

	// promoting a session with a structured outcome re-derives actions mode
	structured := a.NewSession(false)
	a.HandleAction(ActionIngredients)
	a.LoadSession(plain)
	a.DeleteSession(plain)
	if a.CurrentID() != structured {
		t.Fatalf("current = %v, want %v", a.CurrentID(), structured)
	}
	if a.InputMode() != InputActions {
		t.Error("structured transcript did not re-derive actions mode")
	}
}

func TestDeleteLastSessionCreatesFresh(t *testing.T) {
	a := newTestApp(t, nil, nil)
	only := a.CurrentID()

	a.DeleteSession(only)
	if len(a.Sessions()) != 1 {
		t.Fatalf("%d sessions, want fresh replacement", len(a.Sessions()))
	}
	if a.CurrentID() == only {
		t.Error("deleted session still current")
	}
	if len(a.Messages()) != 1 || a.Messages()[0].ID != types.WelcomeID {
		t.Error("replacement session not welcome-seeded")
	}
}

func TestDeleteOtherSessionKeepsCurrent(t *testing.T) {
	a := newTestApp(t, nil, nil)
	old := a.CurrentID()
	current := a.NewSession(false)

	a.DeleteSession(old)
	if a.CurrentID() != current {
		t.Error("deleting another session moved the current one")
	}
}

func TestClearAllStartsOver(t *testing.T) {
	storage := &fakeStorage{onboarded: true}
	a := New(storage, &fakeAdvisor{responses: []types.AdvisorResponse{textReply("ok")}})
	a.SendMessage(context.Background(), "một")
	a.NewSession(false)
	a.SendMessage(context.Background(), "hai")

	a.ClearAll()
	if len(a.Sessions()) != 1 {
		t.Fatalf("%d sessions after clear, want 1", len(a.Sessions()))
	}
	if len(a.Messages()) != 1 || a.Messages()[0].ID != types.WelcomeID {
		t.Error("post-clear session not fresh")
	}
}

func TestPreviewForKinds(t *testing.T) {
	cases := []struct {
		msgs []types.Message
		want string
	}{
		{nil, "Đang chat..."},
		{[]types.Message{types.WelcomeMessage()}, "Bắt đầu cuộc trò chuyện"},
		{[]types.Message{types.TextMessage("m", types.RoleUser, "ngắn")}, "ngắn"},
		{[]types.Message{{ID: "m", Kind: types.KindAnalysis}}, "Kết quả phân tích"},
		{[]types.Message{{ID: "m", Kind: types.KindStores}}, "Danh sách cửa hàng"},
		{[]types.Message{{ID: "m", Kind: types.KindIngredients}}, "Danh sách hoạt chất"},
		{[]types.Message{{ID: "m", Kind: types.KindProducts}}, "Danh sách thuốc tham khảo"},
	}
	for _, tc := range cases {
		if got := previewFor(tc.msgs); got != tc.want {
			t.Errorf("previewFor(%v) = %q, want %q", tc.msgs, got, tc.want)
		}
	}

	long := strings.Repeat("a", 80)
	got := previewFor([]types.Message{types.TextMessage("m", types.RoleUser, long)})
	if len([]rune(got)) > 53 {
		t.Errorf("long preview not truncated: %d runes", len([]rune(got)))
	}
}
