package cli

import (
	"fmt"
	"strings"

	"agrichat/types"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// cropOptions are the crops offered during onboarding. Free-text crops can be
// added later from the profile screen.
var cropOptions = []string{"Lúa", "Khoai lang", "Sầu riêng", "Rau màu", "Cây ăn trái"}

type onboardingStep int

const (
	stepName onboardingStep = iota
	stepCrops
)

type onboardingState struct {
	step     onboardingStep
	name     textinput.Model
	cursor   int
	selected map[int]bool
}

func newOnboardingState() onboardingState {
	ti := textinput.New()
	ti.Placeholder = "Tên của bác (bỏ trống nếu muốn)"
	ti.Focus()
	ti.Width = 40
	return onboardingState{name: ti, selected: map[int]bool{}}
}

func (m model) updateOnboarding(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.onboarding.name, cmd = m.onboarding.name.Update(msg)
		return m, cmd
	}

	switch m.onboarding.step {
	case stepName:
		if km.Type == tea.KeyEnter {
			m.onboarding.step = stepCrops
			return m, nil
		}
		var cmd tea.Cmd
		m.onboarding.name, cmd = m.onboarding.name.Update(msg)
		return m, cmd

	case stepCrops:
		switch km.String() {
		case "up", "k":
			if m.onboarding.cursor > 0 {
				m.onboarding.cursor--
			}
		case "down", "j":
			if m.onboarding.cursor < len(cropOptions)-1 {
				m.onboarding.cursor++
			}
		case " ":
			m.onboarding.selected[m.onboarding.cursor] = !m.onboarding.selected[m.onboarding.cursor]
		case "enter":
			var crops []string
			for i, opt := range cropOptions {
				if m.onboarding.selected[i] {
					crops = append(crops, opt)
				}
			}
			m.app.CompleteOnboarding(types.UserProfile{
				Name:  strings.TrimSpace(m.onboarding.name.Value()),
				Crops: crops,
			})
			m.textInput.Focus()
			return m, textinput.Blink
		case "esc":
			m.onboarding.step = stepName
		}
		return m, nil
	}
	return m, nil
}

func (m model) viewOnboarding() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Chào mừng đến với AgriChat!") + "\n")
	b.WriteString("  " + faintStyle.Render("Trợ lý bảo vệ thực vật cho nhà nông") + "\n\n")

	switch m.onboarding.step {
	case stepName:
		b.WriteString("  Bác tên gì?\n\n")
		b.WriteString("  " + m.onboarding.name.View() + "\n\n")
		b.WriteString("  " + faintStyle.Render("ENTER để tiếp tục") + "\n")
	case stepCrops:
		b.WriteString("  Bác đang trồng cây gì? (chọn được nhiều)\n\n")
		for i, opt := range cropOptions {
			mark := "[ ]"
			if m.onboarding.selected[i] {
				mark = "[x]"
			}
			line := fmt.Sprintf("%s %s", mark, opt)
			if i == m.onboarding.cursor {
				line = selectStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n  " + faintStyle.Render("SPACE chọn · ENTER hoàn tất · ESC quay lại") + "\n")
	}
	return b.String()
}
