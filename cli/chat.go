package cli

import (
	"fmt"
	"strings"

	"agrichat/session"
	"agrichat/types"

	tea "github.com/charmbracelet/bubbletea"
)

// chatWindow bounds how much of the transcript the chat screen redraws.
const chatWindow = 8

func (m model) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	if m.ratingOpen {
		return m.updateRating(km)
	}

	switch km.Type {
	case tea.KeyEsc:
		m.speech.Stop()
		m.app.Persist()
		m.app.Go(session.ViewHome)
		m.cursor = 0
		return m, nil
	case tea.KeyCtrlS:
		if text := lastBotText(m.app.Messages()); text != "" {
			return m, speakCmd(m.speech, text)
		}
		return m, nil
	case tea.KeyEnter:
		return m.handleChatEnter()
	}

	if !m.app.Loading() && m.app.InputMode() == session.InputActions && m.textInput.Value() == "" {
		switch km.String() {
		case "1":
			m.app.HandleAction(session.ActionIngredients)
			return m, nil
		case "2":
			m.app.HandleAction(session.ActionProducts)
			return m, nil
		case "3":
			m.app.HandleAction(session.ActionStores)
			return m, nil
		}
	}

	if !m.app.Loading() {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleChatEnter() (tea.Model, tea.Cmd) {
	if m.app.Loading() {
		return m, nil
	}
	text := strings.TrimSpace(m.textInput.Value())
	if text == "" {
		return m, nil
	}
	m.textInput.SetValue("")
	m.app.BeginTurn(text)
	m.rating.Sync(m.app.Loading(), m.app.Messages())
	return m, tea.Batch(m.spinner.Tick, analyzeCmd(m.app, text))
}

func (m model) updateRating(km tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch km.String() {
	case "1", "2", "3", "4", "5":
		stars := int(km.String()[0] - '0')
		m.app.RateSession(stars, "")
		m.rating.MarkRated()
		m.ratingOpen = false
		m.note = ""
	case "esc":
		m.rating.MarkRated()
		m.ratingOpen = false
	}
	return m, nil
}

func lastBotText(msgs []types.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == types.RoleBot && msgs[i].Kind == types.KindText {
			return msgs[i].Content
		}
	}
	return ""
}

func (m model) viewChat() string {
	var b strings.Builder
	b.WriteString("\n")

	msgs := m.app.Messages()
	start := 0
	if len(msgs) > chatWindow {
		start = len(msgs) - chatWindow
		b.WriteString("  " + faintStyle.Render(fmt.Sprintf("(… %d tin nhắn trước)", start)) + "\n")
	}
	for _, msg := range msgs[start:] {
		b.WriteString(m.renderChatMessage(msg))
	}

	if m.ratingOpen {
		b.WriteString("\n  " + warnStyle.Render("Cuộc tư vấn có hữu ích không? Chấm từ 1-5 sao (ESC để bỏ qua)") + "\n")
		return b.String()
	}

	if m.app.Loading() {
		b.WriteString("\n  " + m.spinner.View() + faintStyle.Render(" Cán bộ đang xem...") + "\n")
		return b.String()
	}

	if m.app.InputMode() == session.InputActions && m.textInput.Value() == "" {
		b.WriteString("\n  " + faintStyle.Render("1: Xem các hoạt chất trị bệnh · 2: Tham khảo một số thuốc · 3: Tìm cửa hàng gần đây") + "\n")
	}
	b.WriteString("\n  " + m.textInput.View() + "\n")
	b.WriteString("  " + faintStyle.Render("ENTER gửi · Ctrl+S đọc to · ESC về trang chủ") + "\n")
	return b.String()
}

func (m model) renderChatMessage(msg types.Message) string {
	switch msg.Kind {
	case types.KindText:
		if msg.Role == types.RoleUser {
			return "  " + userStyle.Render("Bác: "+msg.Content) + "\n"
		}
		return m.renderMarkdown(msg.Content) + "\n"
	case types.KindAnalysis:
		if msg.Result == nil {
			return ""
		}
		s := msg.Result.Summary
		card := fmt.Sprintf("Kết quả phân tích\n%s · %s\nGiai đoạn: %s · Mức độ: %s",
			s.Crop, s.Disease, s.Stage, s.Severity)
		return "  " + cardStyle.Render(card) + "\n"
	case types.KindStores:
		var lines []string
		lines = append(lines, "Cửa hàng gần đây")
		for _, st := range msg.Stores {
			lines = append(lines, fmt.Sprintf("• %s (%s) · %s · %s", st.Name, st.Distance, st.Phone, st.Address))
		}
		return "  " + cardStyle.Render(strings.Join(lines, "\n")) + "\n"
	case types.KindIngredients:
		var lines []string
		lines = append(lines, "Hoạt chất trị bệnh")
		for _, in := range msg.Ingredients {
			lines = append(lines, fmt.Sprintf("• %s — %s", in.Name, in.Mechanism))
		}
		return "  " + cardStyle.Render(strings.Join(lines, "\n")) + "\n"
	case types.KindProducts:
		var lines []string
		lines = append(lines, "Thuốc tham khảo")
		for _, p := range msg.Products {
			lines = append(lines, fmt.Sprintf("• %s (%s %s)", p.Name, p.ActiveIngredient, p.Formulation))
		}
		return "  " + cardStyle.Render(strings.Join(lines, "\n")) + "\n"
	}
	return ""
}
