package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"agrichat/db"
	"agrichat/types"
	"agrichat/util"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const listHeight = 14

var (
	styleRed          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	greyStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Foreground(lipgloss.Color("240"))
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
)

var toneOptions = []struct {
	Value types.BotTone
	Label string
}{
	{types.ToneFriendly, "Thân thiện"},
	{types.ToneExpert, "Chuyên gia"},
	{types.ToneHumorous, "Hài hước"},
	{types.ToneWestern, "Miền Tây"},
}

var lengthOptions = []struct {
	Value types.BotLength
	Label string
}{
	{types.LengthConcise, "Ngắn gọn"},
	{types.LengthDetailed, "Chi tiết, đầy đủ"},
}

func toneLabel(v string) string {
	for _, o := range toneOptions {
		if string(o.Value) == v {
			return o.Label
		}
	}
	return v
}

func lengthLabel(v string) string {
	for _, o := range lengthOptions {
		if string(o.Value) == v {
			return o.Label
		}
	}
	return v
}

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(menuItem)
	if !ok {
		return
	}

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string { return selectedItemStyle.Render("> " + strings.Join(s, " ")) }
	}
	text := fn(i.title)
	if i.data != "" {
		text = fmt.Sprintf("%s %s", text, greyStyle.Render("("+i.data+")"))
	}

	fmt.Fprint(w, text)
}

type menuItem struct {
	title     string
	selectCmd tea.Cmd
	data      string
}

func (i menuItem) FilterValue() string { return i.title }

type menuFunc func(config AppConfig) list.Model

type inputMode int

const (
	inputNone inputMode = iota
	inputText
)

type setMenuMsg struct{ menu menuFunc }
type backMsg struct{}
type quitMsg struct{}
type configSavedMsg struct{}
type editorFinishedMsg struct{ err error }
type setToneMsg struct{ tone types.BotTone }
type setLengthMsg struct{ length types.BotLength }
type setVoiceMsg struct{ voice string }
type togglePrefMsg struct{ field string }
type setInputModeMsg struct {
	prompt   string
	initial  string
	onSubmit func(string) tea.Cmd
}

type state struct {
	menu      menuFunc
	listIndex int
}

type model struct {
	state         state
	list          list.Model
	backstack     []state
	appConfig     AppConfig
	quitting      bool
	inputMode     inputMode
	textInput     textinput.Model
	onInputSubmit func(string) tea.Cmd
	inputPrompt   string
}

func cmdSetMenu(menu menuFunc) tea.Cmd { return func() tea.Msg { return setMenuMsg{menu} } }
func cmdBack() tea.Cmd                 { return func() tea.Msg { return backMsg{} } }
func cmdQuit() tea.Cmd                 { return func() tea.Msg { return quitMsg{} } }
func cmdSetTone(t types.BotTone) tea.Cmd {
	return func() tea.Msg { return setToneMsg{t} }
}
func cmdSetLength(l types.BotLength) tea.Cmd {
	return func() tea.Msg { return setLengthMsg{l} }
}
func cmdSetVoice(v string) tea.Cmd       { return func() tea.Msg { return setVoiceMsg{v} } }
func cmdTogglePref(field string) tea.Cmd { return func() tea.Msg { return togglePrefMsg{field} } }
func cmdSaveConfig(cfg AppConfig) tea.Cmd {
	return func() tea.Msg { SaveAppConfig(cfg); return configSavedMsg{} }
}
func cmdSetInput(prompt, initial string, onSubmit func(string) tea.Cmd) tea.Cmd {
	return func() tea.Msg { return setInputModeMsg{prompt: prompt, initial: initial, onSubmit: onSubmit} }
}

func openEditor() tea.Cmd {
	return func() tea.Msg {
		fullPath, err := FullFilePath(configFilePath)
		if err != nil {
			return editorFinishedMsg{err: err}
		}
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vim"
		}
		cmd := exec.Command(editor, fullPath) //nolint:gosec
		if err := cmd.Run(); err != nil {
			return editorFinishedMsg{err: err}
		}
		return editorFinishedMsg{err: nil}
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.inputMode == inputText {
		return m.updateInput(msg)
	}

	switch msg := msg.(type) {
	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	case backMsg:
		if len(m.backstack) > 0 {
			m.state = m.backstack[len(m.backstack)-1]
			m.backstack = m.backstack[:len(m.backstack)-1]
			m.list = m.state.menu(m.appConfig)
			m.list.Select(m.state.listIndex)
		}
		return m, nil
	case setMenuMsg:
		m.backstack = append(m.backstack, m.state)
		m.list = msg.menu(m.appConfig)
		m.state = state{menu: msg.menu}
		return m, nil
	case setToneMsg:
		m.appConfig.Bot.Tone = string(msg.tone)
		return m, tea.Sequence(cmdSaveConfig(m.appConfig), cmdBack())
	case setLengthMsg:
		m.appConfig.Bot.Length = string(msg.length)
		return m, tea.Sequence(cmdSaveConfig(m.appConfig), cmdBack())
	case setVoiceMsg:
		m.appConfig.Bot.Voice = msg.voice
		return m, tea.Sequence(cmdSaveConfig(m.appConfig), cmdBack())
	case togglePrefMsg:
		switch msg.field {
		case "speak_replies":
			m.appConfig.Preferences.SpeakReplies = !m.appConfig.Preferences.SpeakReplies
		case "save_history":
			m.appConfig.Preferences.SaveHistory = !m.appConfig.Preferences.SaveHistory
		}
		SaveAppConfig(m.appConfig)
		m.list = m.state.menu(m.appConfig)
		return m, nil
	case advisorFieldMsg:
		switch msg.field {
		case "chat_model":
			m.appConfig.Advisor.ChatModel = msg.value
		case "speech_model":
			m.appConfig.Advisor.SpeechModel = msg.value
		case "endpoint":
			m.appConfig.Advisor.Endpoint = msg.value
		case "auth_env_var":
			m.appConfig.Advisor.AuthEnvVar = msg.value
		}
		SaveAppConfig(m.appConfig)
		m.list = m.state.menu(m.appConfig)
		return m, nil
	case setInputModeMsg:
		m.inputMode = inputText
		m.inputPrompt = msg.prompt
		m.onInputSubmit = msg.onSubmit
		ti := textinput.New()
		ti.Placeholder = msg.prompt
		ti.SetValue(msg.initial)
		ti.Focus()
		ti.Width = 64
		m.textInput = ti
		return m, textinput.Blink
	case editorFinishedMsg:
		if msg.err == nil {
			if cfg, err := LoadAppConfig(); err == nil {
				m.appConfig = cfg
				m.list = m.state.menu(m.appConfig)
			}
		}
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, cmdQuit()
		case tea.KeyEsc:
			if len(m.backstack) > 0 {
				return m, cmdBack()
			}
			return m, cmdQuit()
		case tea.KeyEnter:
			i, _ := m.list.SelectedItem().(menuItem)
			if i.selectCmd != nil {
				return m, i.selectCmd
			}
		}
	}

	var cmd tea.Cmd
	if !m.quitting {
		m.list, cmd = m.list.Update(msg)
	}
	m.state.listIndex = m.list.Index()
	return m, cmd
}

func (m model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch km := msg.(type) {
	case tea.KeyMsg:
		switch km.Type {
		case tea.KeyEnter:
			value := strings.TrimSpace(m.textInput.Value())
			m.inputMode = inputNone
			if m.onInputSubmit != nil {
				return m, m.onInputSubmit(value)
			}
			return m, nil
		case tea.KeyEsc:
			m.inputMode = inputNone
			return m, nil
		case tea.KeyCtrlC:
			return m, cmdQuit()
		}
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if m.inputMode == inputText {
		return fmt.Sprintf("\n  %s\n\n  %s\n", m.inputPrompt, m.textInput.View())
	}
	return "\n" + m.list.View()
}

func defaultList(title string, items []menuItem) list.Model {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}
	l := list.New(listItems, itemDelegate{}, 20, listHeight)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.SetWidth(100)
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle
	l.SetShowHelp(false)
	return l
}

func boolStatus(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func mainMenu(appConfig AppConfig) list.Model {
	items := []menuItem{
		{title: "Giọng điệu trợ lý", data: toneLabel(appConfig.Bot.Tone), selectCmd: cmdSetMenu(toneMenu)},
		{title: "Độ dài câu trả lời", data: lengthLabel(appConfig.Bot.Length), selectCmd: cmdSetMenu(lengthMenu)},
		{title: "Giọng đọc", data: appConfig.Bot.Voice, selectCmd: cmdSetMenu(voiceMenu)},
		{title: "Tùy chọn", selectCmd: cmdSetMenu(settingsMenu)},
		{title: "Mô hình AI", data: appConfig.Advisor.ChatModel, selectCmd: cmdSetMenu(advisorMenu)},
		{title: "Edit Config File", data: "~/.agrichat/config.yaml", selectCmd: openEditor()},
		{title: "Reset to Defaults", selectCmd: cmdSetMenu(resetConfirmMenu)},
		{title: "Quit", data: "esc", selectCmd: cmdQuit()},
	}
	return defaultList("AgriChat Settings", items)
}

func toneMenu(appConfig AppConfig) list.Model {
	var items []menuItem
	for _, o := range toneOptions {
		marker := ""
		if string(o.Value) == appConfig.Bot.Tone {
			marker = "✓"
		}
		items = append(items, menuItem{title: o.Label, data: marker, selectCmd: cmdSetTone(o.Value)})
	}
	items = append(items, menuItem{title: "← Back", selectCmd: cmdBack()})
	return defaultList("Giọng điệu trợ lý", items)
}

func lengthMenu(appConfig AppConfig) list.Model {
	var items []menuItem
	for _, o := range lengthOptions {
		marker := ""
		if string(o.Value) == appConfig.Bot.Length {
			marker = "✓"
		}
		items = append(items, menuItem{title: o.Label, data: marker, selectCmd: cmdSetLength(o.Value)})
	}
	items = append(items, menuItem{title: "← Back", selectCmd: cmdBack()})
	return defaultList("Độ dài câu trả lời", items)
}

func voiceMenu(appConfig AppConfig) list.Model {
	var items []menuItem
	for _, v := range types.BotVoices {
		marker := ""
		if v == appConfig.Bot.Voice {
			marker = "✓"
		}
		items = append(items, menuItem{title: v, data: marker, selectCmd: cmdSetVoice(v)})
	}
	items = append(items, menuItem{title: "← Back", selectCmd: cmdBack()})
	return defaultList("Giọng đọc", items)
}

func settingsMenu(appConfig AppConfig) list.Model {
	items := []menuItem{
		{title: "Đọc to câu trả lời", data: boolStatus(appConfig.Preferences.SpeakReplies), selectCmd: cmdTogglePref("speak_replies")},
		{title: "Lưu lịch sử hội thoại", data: boolStatus(appConfig.Preferences.SaveHistory), selectCmd: cmdTogglePref("save_history")},
		{title: "Data & Privacy", selectCmd: cmdSetMenu(dataPrivacyMenu)},
		{title: "← Back", selectCmd: cmdBack()},
	}
	return defaultList("Tùy chọn", items)
}

func advisorMenu(appConfig AppConfig) list.Model {
	keyStatus := appConfig.Advisor.AuthEnvVar
	if keyStatus == "" {
		keyStatus = "not set"
	} else if os.Getenv(appConfig.Advisor.AuthEnvVar) != "" {
		keyStatus += " ✓"
	} else {
		keyStatus += " (missing)"
	}
	items := []menuItem{
		{title: "Chat Model", data: appConfig.Advisor.ChatModel, selectCmd: editAdvisorField("Chat model ID", "chat_model")},
		{title: "Speech Model", data: appConfig.Advisor.SpeechModel, selectCmd: editAdvisorField("Speech model ID", "speech_model")},
		{title: "Endpoint", data: appConfig.Advisor.Endpoint, selectCmd: editAdvisorField("Endpoint URL", "endpoint")},
		{title: "Auth Env Var", data: keyStatus, selectCmd: editAdvisorField("Auth env var", "auth_env_var")},
		{title: "← Back", selectCmd: cmdBack()},
	}
	return defaultList("Mô hình AI", items)
}

func editAdvisorField(prompt, field string) tea.Cmd {
	return cmdSetInput(prompt, "", func(value string) tea.Cmd {
		return func() tea.Msg { return advisorFieldMsg{field: field, value: value} }
	})
}

type advisorFieldMsg struct{ field, value string }

func dataPrivacyMenu(appConfig AppConfig) list.Model {
	dataDir, _ := FullFilePath(".agrichat")
	items := []menuItem{
		{title: "Data Directory", data: dataDir},
		{title: "Xóa lịch sử hội thoại", selectCmd: cmdSetMenu(clearHistoryConfirmMenu)},
		{title: "Xóa toàn bộ dữ liệu", data: "cannot undo", selectCmd: cmdSetMenu(clearAllDataConfirmMenu)},
		{title: "← Back", selectCmd: cmdBack()},
	}
	return defaultList("Data & Privacy", items)
}

func clearHistoryConfirmMenu(appConfig AppConfig) list.Model {
	items := []menuItem{
		{title: "Có, xóa lịch sử", selectCmd: clearDataAction("history")},
		{title: "Không, quay lại", selectCmd: cmdBack()},
	}
	return defaultList("Xóa toàn bộ lịch sử hội thoại?", items)
}

func clearAllDataConfirmMenu(appConfig AppConfig) list.Model {
	items := []menuItem{
		{title: "Có, XÓA TẤT CẢ", data: "cannot undo", selectCmd: clearDataAction("all")},
		{title: "Không, quay lại", selectCmd: cmdBack()},
	}
	return defaultList("Xóa toàn bộ dữ liệu của ứng dụng?", items)
}

func clearDataAction(dataType string) tea.Cmd {
	return func() tea.Msg {
		store, err := db.Open()
		if err != nil {
			return backMsg{}
		}
		defer store.Close()
		switch dataType {
		case "all":
			store.ClearAllData()
		case "history":
			store.ClearSessions()
		}
		return backMsg{}
	}
}

func resetConfirmMenu(appConfig AppConfig) list.Model {
	items := []menuItem{
		{title: "Yes, reset config to defaults", selectCmd: resetConfigAction()},
		{title: "No, cancel", selectCmd: cmdBack()},
	}
	return defaultList("Reset configuration to defaults?", items)
}

func resetConfigAction() tea.Cmd {
	return func() tea.Msg {
		ResetAppConfigToDefault()
		return quitMsg{}
	}
}

func PrintConfigErrorMessage(err error) {
	maxWidth := util.GetTermSafeMaxWidth()
	styleRed := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).PaddingLeft(2)
	styleDim := lipgloss.NewStyle().Faint(true).Width(maxWidth).PaddingLeft(2)

	r, _ := glamour.NewTermRenderer(glamour.WithAutoStyle())

	msg1 := styleRed.Render("Failed to load config file.")
	filePath, _ := FullFilePath(configFilePath)
	msg2 := styleDim.Render(err.Error())

	messageString := fmt.Sprintf(
		"---\n"+
			"# Options:\n\n"+
			"1. Run `agrichat config revert` to load the automatic backup.\n"+
			"2. Run `agrichat config reset` to reset to defaults.\n"+
			"3. Fix manually at: `%s`\n\n",
		filePath)

	msg3, _ := r.Render(messageString)
	fmt.Printf("\n%s\n\n%s%s", msg1, msg2, msg3)
}

func handleConfigResets(args []string) {
	if len(args) < 2 {
		return
	}
	greyStylePadded := greyStyle.PaddingLeft(2)
	reader := bufio.NewReader(os.Stdin)
	warningMessage, confirmationMessage := getMessages(args[1], greyStylePadded)
	fmt.Print("\n" + styleRed.PaddingLeft(2).Render(warningMessage) + "\n\n" + confirmationMessage + " ")
	response, _ := reader.ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	if response == "yes" || response == "y" {
		handleResetOrRevert(args[1])
	} else {
		fmt.Println("\n" + styleRed.PaddingLeft(2).Render("Operation cancelled.\n"))
	}
	os.Exit(0)
}

func getMessages(arg string, greyStylePadded lipgloss.Style) (string, string) {
	warningMessage := "WARNING: You are about to "
	confirmationMessage := greyStylePadded.Render("Do you want to continue? (y/N):")
	switch arg {
	case "reset":
		warningMessage += "reset the config file to the default."
	case "revert":
		warningMessage += "revert the config file to the last working automatic backup."
	}
	return warningMessage, confirmationMessage
}

func handleResetOrRevert(arg string) {
	var err error
	var message string
	switch arg {
	case "reset":
		err = ResetAppConfigToDefault()
		message = "Config reset to default.\n"
	case "revert":
		err = RevertAppConfigToBackup()
		message = "Config reverted to backup.\n"
	}
	if err == nil {
		fmt.Println("\n" + greyStyle.PaddingLeft(2).Render(message))
	} else {
		fmt.Println("\n" + styleRed.PaddingLeft(2).Render("Operation failed.\n"))
		fmt.Println("\n" + styleRed.PaddingLeft(2).Render(fmt.Sprintf("Error: %s\n", err)))
	}
}

func RunConfigProgram(args []string) {
	handleConfigResets(args)
	appConfig, err := LoadAppConfig()
	if err != nil {
		PrintConfigErrorMessage(err)
		os.Exit(1)
	}
	m := model{
		appConfig: appConfig,
		list:      mainMenu(appConfig),
		state:     state{menu: mainMenu},
	}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
}
