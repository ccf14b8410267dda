package cli

import (
	"fmt"
	"strings"
	"time"

	"agrichat/session"

	tea "github.com/charmbracelet/bubbletea"
)

const recentSessionCount = 3

func (m model) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.app.HistoryOpen() {
		return m.updateHistory(km)
	}

	sessions := m.app.Sessions()
	visible := len(sessions)
	if visible > recentSessionCount {
		visible = recentSessionCount
	}

	switch km.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < visible-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < visible {
			m.app.LoadSession(sessions[m.cursor].ID)
			m.rating.Reset()
			m.note = ""
			return m, nil
		}
	case "n":
		m.app.NewSession(true)
		m.rating.Reset()
		m.note = ""
		m.textInput.SetValue("")
		return m, nil
	case "h":
		m.app.OpenHistory()
		m.cursor = 0
		m.confirmClear = false
		m.confirmDelete = false
	case "t":
		m.app.Go(session.ViewCalculator)
		m.calc = m.calc.reload(m.store)
	case "p":
		m.profile = newProfileState(m.app.Profile())
		m.app.Go(session.ViewProfile)
	case "q", "esc":
		m.quitting = true
		m.app.Persist()
		return m, tea.Quit
	}
	return m, nil
}

func (m model) viewHome() string {
	if m.app.HistoryOpen() {
		return m.viewHistory()
	}

	var b strings.Builder
	name := m.app.Profile().Name
	if name == "" {
		name = "Nhà nông"
	}
	b.WriteString("\n  " + titleStyle.Render(fmt.Sprintf("Chào %s!", name)) + "\n")
	b.WriteString("  " + faintStyle.Render("Hôm nay vườn nhà mình thế nào?") + "\n\n")
	if m.note != "" {
		b.WriteString("  " + okStyle.Render(m.note) + "\n\n")
	}

	b.WriteString("  " + titleStyle.Render("Cuộc trò chuyện gần đây") + "\n")
	sessions := m.app.Sessions()
	shown := len(sessions)
	if shown > recentSessionCount {
		shown = recentSessionCount
	}
	for i := 0; i < shown; i++ {
		s := sessions[i]
		line := fmt.Sprintf("%s %s", s.Title, faintStyle.Render("· "+s.Preview))
		if i == m.cursor {
			line = selectStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString("  " + line + "\n")
	}
	if shown == 0 {
		b.WriteString("  " + faintStyle.Render("(chưa có)") + "\n")
	}

	b.WriteString("\n  " + faintStyle.Render("n: chat mới · h: lịch sử · t: máy tính khoai · p: hồ sơ · q: thoát") + "\n")
	return b.String()
}

func (m model) updateHistory(km tea.KeyMsg) (tea.Model, tea.Cmd) {
	sessions := m.app.Sessions()

	if m.confirmClear {
		switch km.String() {
		case "y":
			m.app.ClearAll()
			m.rating.Reset()
			m.confirmClear = false
			m.cursor = 0
		default:
			m.confirmClear = false
		}
		return m, nil
	}
	if m.confirmDelete {
		switch km.String() {
		case "y":
			if m.cursor < len(sessions) {
				m.app.DeleteSession(sessions[m.cursor].ID)
			}
			if m.cursor > 0 {
				m.cursor--
			}
		}
		m.confirmDelete = false
		return m, nil
	}

	switch km.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(sessions)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(sessions) {
			m.app.LoadSession(sessions[m.cursor].ID)
			m.rating.Reset()
			m.note = ""
		}
	case "d":
		if len(sessions) > 0 {
			m.confirmDelete = true
		}
	case "x":
		if len(sessions) > 0 {
			m.confirmClear = true
		}
	case "esc", "h":
		m.app.CloseHistory()
		m.cursor = 0
	}
	return m, nil
}

func (m model) viewHistory() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Lịch sử hội thoại") + "\n\n")

	sessions := m.app.Sessions()
	for i, s := range sessions {
		when := time.UnixMilli(s.Timestamp).Format("02/01 15:04")
		line := fmt.Sprintf("%s %s %s", s.Title, faintStyle.Render(when), faintStyle.Render("· "+s.Preview))
		if i == m.cursor {
			line = selectStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString("  " + line + "\n")
	}
	if len(sessions) == 0 {
		b.WriteString("  " + faintStyle.Render("(trống)") + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.confirmDelete:
		b.WriteString("  " + dangerStyle.Render("Xóa cuộc trò chuyện này? (y/N)") + "\n")
	case m.confirmClear:
		b.WriteString("  " + dangerStyle.Render("Xóa TẤT CẢ lịch sử? (y/N)") + "\n")
	default:
		b.WriteString("  " + faintStyle.Render("ENTER mở · d: xóa · x: xóa hết · ESC quay lại") + "\n")
	}
	return b.String()
}
