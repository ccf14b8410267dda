// Package cli is the terminal front end: one bubbletea program that hosts the
// onboarding wizard, the home screen, the consultation chat, the result
// screen, the profile editor and the harvest calculator.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"agrichat/advisor"
	"agrichat/audio"
	"agrichat/config"
	"agrichat/db"
	"agrichat/session"
	"agrichat/types"
	"agrichat/util"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("70"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	selectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
)

type advisorReplyMsg struct {
	resp types.AdvisorResponse
}

type ratingDueMsg struct{}

type speechDoneMsg struct{}

type model struct {
	app    *session.App
	store  *db.DB
	cfg    config.AppConfig
	speech *audio.Controller
	rating *session.RatingTimer

	renderer  *glamour.TermRenderer
	textInput textinput.Model
	spinner   spinner.Model
	maxWidth  int

	onboarding onboardingState
	profile    profileState
	calc       calcState

	cursor        int
	confirmClear  bool
	confirmDelete bool
	ratingOpen    bool
	note          string

	demoMode bool
	quitting bool
	err      error
}

func initialModel(app *session.App, store *db.DB, cfg config.AppConfig, speech *audio.Controller, rating *session.RatingTimer) model {
	maxWidth := util.GetTermSafeMaxWidth()

	ti := textinput.New()
	ti.Placeholder = "Nhập câu hỏi..."
	ti.Focus()
	ti.Width = maxWidth

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(maxWidth),
	)

	m := model{
		app:       app,
		store:     store,
		cfg:       cfg,
		speech:    speech,
		rating:    rating,
		renderer:  r,
		textInput: ti,
		spinner:   s,
		maxWidth:  maxWidth,
	}
	m.onboarding = newOnboardingState()
	m.calc = newCalcState(store)
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func analyzeCmd(app *session.App, text string) tea.Cmd {
	return func() tea.Msg {
		return advisorReplyMsg{resp: app.Analyze(context.Background(), text)}
	}
}

func speakCmd(speech *audio.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		speech.Say(context.Background(), text)
		return speechDoneMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case advisorReplyMsg:
		return m.handleAdvisorReply(msg)
	case ratingDueMsg:
		if m.app.View() == session.ViewChat || m.app.View() == session.ViewResult {
			m.ratingOpen = true
		}
		return m, nil
	case speechDoneMsg:
		return m, nil
	case spinner.TickMsg:
		if m.app.Loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case error:
		m.err = msg
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		if km.Type == tea.KeyCtrlC || km.Type == tea.KeyCtrlD {
			m.quitting = true
			m.speech.Stop()
			m.rating.Stop()
			m.app.Persist()
			return m, tea.Quit
		}
	}

	switch m.app.View() {
	case session.ViewOnboarding:
		return m.updateOnboarding(msg)
	case session.ViewHome:
		return m.updateHome(msg)
	case session.ViewChat:
		return m.updateChat(msg)
	case session.ViewResult:
		return m.updateResult(msg)
	case session.ViewProfile:
		return m.updateProfile(msg)
	case session.ViewCalculator:
		return m.updateCalculator(msg)
	}
	return m, nil
}

func (m model) handleAdvisorReply(msg advisorReplyMsg) (tea.Model, tea.Cmd) {
	m.app.CompleteTurn(msg.resp)
	m.rating.Sync(m.app.Loading(), m.app.Messages())

	var cmds []tea.Cmd
	cmds = append(cmds, textinput.Blink)
	if m.cfg.Preferences.SpeakReplies && msg.resp.Text != "" {
		cmds = append(cmds, speakCmd(m.speech, msg.resp.Text))
	}
	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.app.View() {
	case session.ViewOnboarding:
		body = m.viewOnboarding()
	case session.ViewHome:
		body = m.viewHome()
	case session.ViewChat:
		body = m.viewChat()
	case session.ViewResult:
		body = m.viewResult()
	case session.ViewProfile:
		body = m.viewProfile()
	case session.ViewCalculator:
		body = m.viewCalculator()
	}

	if m.app.ChromeVisible() {
		return m.statusBar() + "\n" + body
	}
	return body
}

func (m model) statusBar() string {
	mode := "AI"
	if m.demoMode {
		mode = "demo"
	}
	return statusStyle.Render("AgriChat") + " " + faintStyle.Render(mode)
}

func (m model) renderMarkdown(s string) string {
	out, err := m.renderer.Render(s)
	if err != nil {
		return s
	}
	out = strings.TrimPrefix(out, "\n")
	return strings.TrimSuffix(out, "\n")
}

func runProgram() {
	appConfig, err := config.LoadAppConfig()
	if err != nil {
		config.PrintConfigErrorMessage(err)
		os.Exit(1)
	}

	store, err := db.Open()
	if err != nil {
		fmt.Printf("Error opening data store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	client := advisor.NewClient(advisor.Config{
		Endpoint:     appConfig.Advisor.Endpoint,
		ChatModel:    appConfig.Advisor.ChatModel,
		SpeechModel:  appConfig.Advisor.SpeechModel,
		APIKey:       appConfig.APIKey(),
		HistoryLimit: appConfig.Advisor.HistoryLimit,
	})

	app := session.New(store, client)
	app.SetBotConfig(appConfig.BotConfig())
	speech := audio.NewController(client, appConfig.BotConfig().Voice)

	var p *tea.Program
	rating := session.NewRatingTimer(session.RatingDelay, func() {
		if p != nil {
			p.Send(ratingDueMsg{})
		}
	})

	m := initialModel(app, store, appConfig, speech, rating)
	m.demoMode = !client.Configured()

	p = tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

var RootCmd = &cobra.Command{
	Use:   "agrichat",
	Short: "Crop advisory assistant for farmers",
	Long:  `AgriChat: chat with a plant-protection officer, get spray/no-spray assessments, find products and stores, and estimate harvest revenue.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 && args[0] == "config" {
			config.RunConfigProgram(args)
			return
		}
		runProgram()
	},
}
