package cli

import (
	"fmt"
	"strings"

	"agrichat/session"
	"agrichat/types"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m model) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.ratingOpen {
		return m.updateRating(km)
	}

	result := m.app.Result()
	if result == nil {
		m.app.Go(session.ViewChat)
		return m, nil
	}

	switch km.String() {
	case "esc", "s":
		m.speech.Stop()
		m.app.Persist()
		m.note = "Đã lưu trường hợp vào lịch sử!"
		m.app.Go(session.ViewHome)
		m.cursor = 0
		return m, nil
	case "c":
		m.app.Go(session.ViewChat)
		return m, textinput.Blink
	case "n":
		m.app.NewSession(true)
		m.rating.Reset()
		m.textInput.SetValue("")
		return m, textinput.Blink
	case "enter":
		if err := clipboard.WriteAll(resultSummaryText(result)); err == nil {
			m.note = "Đã sao chép kết quả."
		}
		return m, nil
	default:
		if s := km.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if n := int(s[0] - '0'); n <= len(result.Products) {
				m.app.FindStoreForProduct(result.Products[n-1].Name)
				return m, textinput.Blink
			}
		}
	}
	return m, nil
}

func decisionStyleFor(action types.DecisionAction) (string, func(...string) string) {
	switch action {
	case types.ActionSpray:
		return "PHUN", warnStyle.Render
	case types.ActionNoSpray:
		return "KHÔNG PHUN", okStyle.Render
	default:
		return "THEO DÕI", faintStyle.Render
	}
}

func resultSummaryText(r *types.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cây trồng: %s\nBệnh: %s\nGiai đoạn: %s\nMức độ: %s\n",
		r.Summary.Crop, r.Summary.Disease, r.Summary.Stage, r.Summary.Severity)
	fmt.Fprintf(&b, "Khuyến nghị: %s - %s\n", r.Decision.Label, r.Decision.Reason)
	for _, p := range r.Products {
		fmt.Fprintf(&b, "- %s (%s %s): %s\n", p.Name, p.ActiveIngredient, p.Formulation, p.Usage)
	}
	return b.String()
}

func (m model) viewResult() string {
	r := m.app.Result()
	if r == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Kết quả phân tích") + "\n\n")

	summary := fmt.Sprintf("%s · %s\nGiai đoạn: %s · Mức độ: %s",
		r.Summary.Crop, r.Summary.Disease, r.Summary.Stage, r.Summary.Severity)
	b.WriteString("  " + cardStyle.Render(summary) + "\n\n")

	badge, render := decisionStyleFor(r.Decision.Action)
	b.WriteString("  " + render(fmt.Sprintf("[%s] %s", badge, r.Decision.Label)) + "\n")
	b.WriteString("  " + faintStyle.Render(r.Decision.Reason) + "\n\n")

	if len(r.Ingredients) > 0 {
		b.WriteString("  " + titleStyle.Render("Hoạt chất") + "\n")
		for _, in := range r.Ingredients {
			prio := ""
			if in.Priority != "" {
				prio = faintStyle.Render(" [" + in.Priority + "]")
			}
			b.WriteString(fmt.Sprintf("  • %s%s — %s\n", in.Name, prio, in.Mechanism))
		}
		b.WriteString("\n")
	}

	if len(r.Products) > 0 {
		b.WriteString("  " + titleStyle.Render("Thuốc tham khảo") + "\n")
		for i, p := range r.Products {
			b.WriteString(fmt.Sprintf("  %d. %s (%s %s)\n", i+1, p.Name, p.ActiveIngredient, p.Formulation))
			if p.Usage != "" {
				b.WriteString("     " + faintStyle.Render(p.Usage) + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		for _, w := range r.Warnings {
			b.WriteString("  " + warnStyle.Render("⚠ "+w) + "\n")
		}
		b.WriteString("\n")
	}

	if m.ratingOpen {
		b.WriteString("  " + warnStyle.Render("Cuộc tư vấn có hữu ích không? Chấm từ 1-5 sao (ESC để bỏ qua)") + "\n")
		return b.String()
	}
	if m.note != "" {
		b.WriteString("  " + okStyle.Render(m.note) + "\n")
	}
	b.WriteString("  " + faintStyle.Render("1-9: tìm nơi bán thuốc · c: hỏi tiếp · n: ca mới · ENTER sao chép · ESC lưu và thoát") + "\n")
	return b.String()
}
