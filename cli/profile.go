package cli

import (
	"fmt"
	"strings"

	"agrichat/session"
	"agrichat/types"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type profileField int

const (
	fieldName profileField = iota
	fieldPhone
	fieldCrops
)

type profileState struct {
	field    profileField
	name     textinput.Model
	phone    textinput.Model
	cursor   int
	selected map[int]bool
}

func newProfileState(p types.UserProfile) profileState {
	name := textinput.New()
	name.SetValue(p.Name)
	name.Width = 40
	name.Focus()

	phone := textinput.New()
	phone.SetValue(p.PhoneNumber)
	phone.Width = 40

	selected := map[int]bool{}
	for _, crop := range p.Crops {
		for i, opt := range cropOptions {
			if opt == crop {
				selected[i] = true
			}
		}
	}
	return profileState{name: name, phone: phone, selected: selected}
}

func (s profileState) profile() types.UserProfile {
	var crops []string
	for i, opt := range cropOptions {
		if s.selected[i] {
			crops = append(crops, opt)
		}
	}
	return types.UserProfile{
		Name:        strings.TrimSpace(s.name.Value()),
		PhoneNumber: strings.TrimSpace(s.phone.Value()),
		Crops:       crops,
	}
}

func (m model) updateProfile(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateProfileInputs(msg)
	}

	switch km.Type {
	case tea.KeyEsc:
		m.app.UpdateProfile(m.profile.profile())
		m.note = "Đã lưu hồ sơ."
		m.app.Go(session.ViewHome)
		return m, nil
	case tea.KeyTab, tea.KeyEnter:
		m.profile.field = (m.profile.field + 1) % 3
		m.profile.name.Blur()
		m.profile.phone.Blur()
		switch m.profile.field {
		case fieldName:
			m.profile.name.Focus()
		case fieldPhone:
			m.profile.phone.Focus()
		}
		return m, textinput.Blink
	}

	if m.profile.field == fieldCrops {
		switch km.String() {
		case "up", "k":
			if m.profile.cursor > 0 {
				m.profile.cursor--
			}
		case "down", "j":
			if m.profile.cursor < len(cropOptions)-1 {
				m.profile.cursor++
			}
		case " ":
			m.profile.selected[m.profile.cursor] = !m.profile.selected[m.profile.cursor]
		}
		return m, nil
	}
	return m.updateProfileInputs(msg)
}

func (m model) updateProfileInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.profile.field {
	case fieldName:
		m.profile.name, cmd = m.profile.name.Update(msg)
	case fieldPhone:
		m.profile.phone, cmd = m.profile.phone.Update(msg)
	}
	return m, cmd
}

func (m model) viewProfile() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Hồ sơ của bác") + "\n\n")

	label := func(f profileField, text string) string {
		if m.profile.field == f {
			return selectStyle.Render("> " + text)
		}
		return "  " + text
	}

	b.WriteString("  " + label(fieldName, "Tên:") + "   " + m.profile.name.View() + "\n")
	b.WriteString("  " + label(fieldPhone, "SĐT:") + "   " + m.profile.phone.View() + "\n")
	b.WriteString("  " + label(fieldCrops, "Cây trồng:") + "\n")
	for i, opt := range cropOptions {
		mark := "[ ]"
		if m.profile.selected[i] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, opt)
		if m.profile.field == fieldCrops && i == m.profile.cursor {
			line = selectStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString("     " + line + "\n")
	}

	b.WriteString("\n  " + faintStyle.Render("TAB đổi mục · SPACE chọn cây · ESC lưu và quay về") + "\n")
	return b.String()
}
