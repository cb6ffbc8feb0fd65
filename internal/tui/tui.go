package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/text-adventure/internal/engine"
	"github.com/tatianab/text-adventure/internal/models"
	"go.uber.org/zap"
)

type sessionState int

const (
	stateSetup sessionState = iota
	statePlaying
)

// Setup form fields, in focus order.
const (
	fieldName = iota
	fieldGenre
	fieldAPIKey
	fieldStrength
	fieldIntelligence
	fieldDexterity
	fieldCount
)

// Options wires the UI to the rest of the application.
type Options struct {
	Completer     engine.Completer
	Logger        *zap.Logger
	APIKey        string
	StatBudget    int
	EnforceBudget bool
}

type model struct {
	state  sessionState
	opts   Options
	genres []models.Genre

	// setup
	inputs   [fieldCount]textinput.Model
	genreIdx int
	focus    int
	formErr  string

	// playing
	engine    *engine.Engine
	textInput textinput.Model
	viewport  viewport.Model
	gameLog   string
	awaiting  bool

	width  int
	height int
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Width(14).
			Foreground(lipgloss.Color("#AAAAAA"))

	focusedLabelStyle = labelStyle.
				Foreground(lipgloss.Color("#FFA500")).
				Bold(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

var fieldLabels = [fieldCount]string{
	fieldName:         "Name",
	fieldGenre:        "Genre",
	fieldAPIKey:       "API key",
	fieldStrength:     "Strength",
	fieldIntelligence: "Intelligence",
	fieldDexterity:    "Dexterity",
}

func NewModel(opts Options) (model, error) {
	genres, err := models.Genres()
	if err != nil {
		return model{}, err
	}
	if len(genres) == 0 {
		return model{}, errors.New("genre catalog is empty")
	}

	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		switch i {
		case fieldName:
			ti.Placeholder = "Your hero's name"
			ti.CharLimit = 40
			ti.Width = 30
		case fieldAPIKey:
			ti.Placeholder = "Gemini API key"
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
			ti.Width = 30
			ti.SetValue(opts.APIKey)
		case fieldStrength, fieldIntelligence, fieldDexterity:
			ti.Placeholder = "0"
			ti.CharLimit = 3
			ti.Width = 4
		}
		inputs[i] = ti
	}
	inputs[fieldName].Focus()

	chat := textinput.New()
	chat.Placeholder = "What do you do?"
	chat.CharLimit = 500
	chat.Width = 60

	return model{
		state:     stateSetup,
		opts:      opts,
		genres:    genres,
		inputs:    inputs,
		textInput: chat,
	}, nil
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type replyMsg struct {
	engine *engine.Engine
	reply  string
	err    error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		if m.state == stateSetup {
			return m.updateSetup(msg)
		}
		return m.updatePlaying(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = msg.Height - 6
		if m.state == statePlaying {
			m.viewport.SetContent(m.renderLog())
		}
		return m, nil

	case replyMsg:
		// Replies for a game abandoned with /restart are dropped.
		if msg.engine != m.engine {
			return m, nil
		}
		m.awaiting = false
		if msg.err != nil {
			m.appendLog(errorStyle.Width(m.logWidth()).Render("Error: " + msg.err.Error()))
		} else {
			m.appendLog(gameStyle.Width(m.logWidth()).Render(msg.reply))
		}
		return m, textinput.Blink
	}

	return m, nil
}

func (m model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyTab, tea.KeyDown:
		return m.setFocus((m.focus + 1) % fieldCount)
	case tea.KeyShiftTab, tea.KeyUp:
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case tea.KeyLeft, tea.KeyRight:
		if m.focus == fieldGenre {
			step := 1
			if msg.Type == tea.KeyLeft {
				step = len(m.genres) - 1
			}
			m.genreIdx = (m.genreIdx + step) % len(m.genres)
			return m, nil
		}
	}

	if m.focus == fieldGenre {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m model) setFocus(field int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = field
	if field == fieldGenre {
		return m, nil
	}
	return m, m.inputs[field].Focus()
}

// submit validates the form and starts the game.
func (m model) submit() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	if name == "" {
		m.formErr = "Please enter a name."
		return m, nil
	}
	apiKey := strings.TrimSpace(m.inputs[fieldAPIKey].Value())
	if apiKey == "" {
		m.formErr = "Please enter an API key."
		return m, nil
	}
	stats, err := parseStats(
		m.inputs[fieldStrength].Value(),
		m.inputs[fieldIntelligence].Value(),
		m.inputs[fieldDexterity].Value(),
	)
	if err != nil {
		m.formErr = "Invalid stats: " + err.Error()
		return m, nil
	}
	if m.opts.EnforceBudget {
		if err := stats.Validate(m.opts.StatBudget); err != nil {
			m.formErr = fmt.Sprintf("Distribute exactly %d points (you spent %d).", m.opts.StatBudget, stats.Sum())
			return m, nil
		}
	}

	session := models.NewSession(name, m.genres[m.genreIdx].Name, stats)
	m.engine = engine.NewEngine(m.opts.Completer, session, apiKey, m.opts.Logger)
	m.formErr = ""
	m.state = statePlaying
	m.awaiting = true
	m.gameLog = ""
	m.viewport = viewport.New(m.logWidth(), m.viewportHeight())
	m.appendLog(helpStyle.Render(fmt.Sprintf("A %s adventure for %s begins...", session.Genre, session.PlayerName)))
	m.textInput.Reset()
	m.textInput.Focus()
	return m, m.begin()
}

func (m model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		if m.awaiting {
			return m, nil
		}
		action := strings.TrimSpace(m.textInput.Value())
		if action == "" {
			return m, nil
		}
		m.textInput.Reset()

		if action == "/quit" {
			return m, tea.Quit
		}
		if action == "/restart" {
			m.state = stateSetup
			m.engine = nil
			m.awaiting = false
			m.gameLog = ""
			return m.setFocus(fieldName)
		}

		m.appendLog(userStyle.Width(m.logWidth()).Render("> " + action))
		m.awaiting = true
		return m, m.send(action)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.awaiting {
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) appendLog(entry string) {
	if m.gameLog != "" {
		m.gameLog += "\n\n"
	}
	m.gameLog += entry
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateSetup:
		s = m.renderSetup()

	case statePlaying:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderState(),
		)

		input := m.textInput.View()
		if m.awaiting {
			input = helpStyle.Render("The Game Master is thinking...")
		}
		help := helpStyle.Render("Commands: /restart, /quit, or just type what you want to do.")

		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			"\n"+input,
			"\n"+help,
		)
	}

	return "\n" + s + "\n"
}

func (m model) renderSetup() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Text Adventure") + "\n\n")

	for i := 0; i < fieldCount; i++ {
		label := labelStyle.Render(fieldLabels[i])
		if i == m.focus {
			label = focusedLabelStyle.Render(fieldLabels[i])
		}
		value := m.inputs[i].View()
		if i == fieldGenre {
			g := m.genres[m.genreIdx]
			value = fmt.Sprintf("< %s >  %s", g.Name, helpStyle.Render(g.Description))
		}
		b.WriteString(label + value + "\n")
	}

	if m.opts.EnforceBudget {
		b.WriteString("\n" + helpStyle.Render(fmt.Sprintf("Distribute %d points across your attributes.", m.opts.StatBudget)) + "\n")
	}
	if m.formErr != "" {
		b.WriteString("\n" + errorStyle.Render(m.formErr) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("Tab to move, ←/→ to pick a genre, Enter to start, Esc to quit."))
	return b.String()
}

func (m model) renderState() string {
	if m.engine == nil {
		return ""
	}
	session := m.engine.Session()

	player := titleStyle.Render("PLAYER") + "\n" + session.PlayerName + "\n\n"
	genre := titleStyle.Render("GENRE") + "\n" + session.Genre + "\n\n"
	stats := titleStyle.Render("STATS") + "\n" + fmt.Sprintf(
		"Strength: %d\nIntelligence: %d\nDexterity: %d\n",
		session.Stats.Strength, session.Stats.Intelligence, session.Stats.Dexterity,
	)

	stateWidth := int(float64(m.width) * 0.23)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(player + genre + stats)
}

func (m model) renderLog() string {
	return m.gameLog
}

func (m model) logWidth() int {
	if m.width == 0 {
		return 60
	}
	return int(float64(m.width) * 0.75)
}

func (m model) viewportHeight() int {
	if m.height == 0 {
		return 20
	}
	return m.height - 6
}

func (m model) begin() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		reply, err := eng.Begin(context.Background())
		return replyMsg{engine: eng, reply: reply, err: err}
	}
}

func (m model) send(action string) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		reply, err := eng.Send(context.Background(), action)
		return replyMsg{engine: eng, reply: reply, err: err}
	}
}

// parseStats reads the three attribute fields. Empty fields count as zero.
func parseStats(strength, intelligence, dexterity string) (models.Stats, error) {
	var values [3]int
	for i, raw := range []string{strength, intelligence, dexterity} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return models.Stats{}, fmt.Errorf("%s must be a whole number", strings.ToLower(fieldLabels[fieldStrength+i]))
		}
		if n < 0 {
			return models.Stats{}, fmt.Errorf("%s must not be negative", strings.ToLower(fieldLabels[fieldStrength+i]))
		}
		values[i] = n
	}
	return models.Stats{Strength: values[0], Intelligence: values[1], Dexterity: values[2]}, nil
}

func Run(opts Options) error {
	m, err := NewModel(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
