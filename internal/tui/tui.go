package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/pips-pilgrimage/internal/command"
	"github.com/tatianab/pips-pilgrimage/internal/engine"
	"github.com/tatianab/pips-pilgrimage/internal/models"
)

type model struct {
	session      *engine.Session
	chronicleDir string
	textInput    textinput.Model
	viewport     viewport.Model
	gameLog      string
	width        int
	height       int
	pending      bool
	saved        bool
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87AFD7")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	lowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

func NewModel(sess *engine.Session, chronicleDir string) model {
	ti := textinput.New()
	ti.Placeholder = "travel, rest or forage"
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 40

	m := model{
		session:      sess,
		chronicleDir: chronicleDir,
		textInput:    ti,
		viewport:     viewport.New(0, 0),
	}
	m.startLog()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type turnResolvedMsg struct {
	state models.GameState
	err   error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			input := m.textInput.Value()
			if strings.TrimSpace(input) == "" {
				return m, nil
			}
			m.textInput.Reset()
			return m.handle(command.Parse(input))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = msg.Height - 6
		m.refresh()

	case turnResolvedMsg:
		m.pending = false
		if errors.Is(msg.err, engine.ErrBusy) || errors.Is(msg.err, engine.ErrRejected) {
			return m, nil
		}
		if msg.err != nil {
			log.Printf("Error resolving turn: %v", msg.err)
			return m, nil
		}
		m.showState(msg.state)
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m model) handle(c command.Command) (tea.Model, tea.Cmd) {
	switch c.Kind {
	case command.Quit:
		return m, tea.Quit

	case command.Restart:
		if m.pending {
			return m, nil
		}
		if err := m.session.Restart(); err != nil {
			return m, nil
		}
		m.saved = false
		m.startLog()
		m.refresh()
		return m, nil

	case command.Help:
		m.note(command.HelpText)
		return m, nil

	case command.Mark:
		mk := m.session.AddMarker(c.Label, models.MarkerWaypoint, "")
		m.note(fmt.Sprintf("Marked %q at mile %d.", mk.Label, mk.Distance))
		return m, nil

	case command.Act:
		if m.pending {
			return m, nil
		}
		m.echo(string(c.Action))
		m.pending = true
		return m, m.performAction(c.Action)

	case command.Choose:
		if m.pending {
			return m, nil
		}
		m.echo(fmt.Sprintf("%d", c.Choice+1))
		m.pending = true
		return m, m.performChoice(c.Choice)
	}

	m.note("Pips tilts their head. Try " + command.HelpText)
	return m, nil
}

func (m *model) startLog() {
	j := m.session.Journey()
	s := m.session.State()
	header := gameStyle.Bold(true).Render(j.Title)
	m.gameLog = header + "\n" + helpStyle.Render(j.Flavor) + "\n\n" + m.wrap(s.LastMessage) + "\n\n"
}

func (m *model) echo(input string) {
	m.gameLog += userStyle.Width(m.logWidth()).Render("> "+input) + "\n\n"
	m.refresh()
}

func (m *model) note(text string) {
	m.gameLog += noteStyle.Width(m.logWidth()).Render(text) + "\n\n"
	m.refresh()
}

func (m *model) showState(s models.GameState) {
	m.gameLog += m.wrap(s.LastMessage) + "\n\n"
	switch {
	case s.Status == models.StatusEvent && s.ActiveEvent != nil:
		m.gameLog += m.renderEvent(s.ActiveEvent) + "\n"
	case s.Status == models.StatusGameOver:
		m.gameLog += lowStyle.Bold(true).Render(fmt.Sprintf("Pips has perished on day %d, %d miles from the colony.", s.Day, s.Distance)) + "\n\n"
		m.saveChronicle(s)
	case s.Status == models.StatusWin:
		m.gameLog += titleStyle.Render(fmt.Sprintf("Pips stands upon the summit on day %d.", s.Day)) + "\n\n"
		m.saveChronicle(s)
	}
	m.refresh()
}

func (m *model) saveChronicle(s models.GameState) {
	if m.saved || m.chronicleDir == "" {
		return
	}
	m.saved = true
	chron := m.session.Chronicle()
	path, err := chron.Save(m.chronicleDir, s)
	if err != nil {
		log.Printf("Warning: failed to save chronicle: %v", err)
		return
	}
	m.gameLog += helpStyle.Render("Chronicle saved to "+path) + "\n\n"
}

func (m model) renderEvent(ev *models.Event) string {
	md := eventMarkdown(ev)
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(max(m.logWidth()-4, 20)))
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return rendered
}

func eventMarkdown(ev *models.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", ev.Title)
	if ev.EventType != "" {
		fmt.Fprintf(&b, "*%s*\n\n", ev.EventType)
	}
	fmt.Fprintf(&b, "%s\n\n", ev.Description)
	for i, opt := range ev.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, opt.Text)
	}
	return b.String()
}

func (m *model) refresh() {
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
}

func (m model) wrap(text string) string {
	return gameStyle.Width(m.logWidth()).Render(text)
}

func (m model) logWidth() int {
	return int(float64(m.width) * 0.75)
}

func (m model) View() string {
	stateView := m.renderState()
	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		m.viewport.View(),
		stateView,
	)

	help := "Commands: travel, rest, forage, 1-3 for encounters, /mark <label>, /restart, /quit."
	if m.pending {
		help = "The wind carries your decision..."
	}

	return "\n" + lipgloss.JoinVertical(lipgloss.Left,
		mainView,
		"\n"+m.textInput.View(),
		"\n"+helpStyle.Render(help),
	) + "\n"
}

func (m model) renderState() string {
	s := m.session.State()
	j := m.session.Journey()

	var b strings.Builder
	b.WriteString(titleStyle.Render("JOURNEY") + "\n")
	fmt.Fprintf(&b, "Day %d\n%d / %d miles\n", s.Day, s.Distance, models.TargetDistance)
	if next, ok := engine.NextMilestone(s, j); ok {
		fmt.Fprintf(&b, "Next landmark: mile %d\n", next)
	}
	weather := "Clear"
	if s.IsBlizzard {
		weather = lowStyle.Render("Blizzard")
	}
	fmt.Fprintf(&b, "Weather: %s\n\n", weather)

	b.WriteString(titleStyle.Render("STATS") + "\n")
	for _, st := range []struct {
		name  string
		value int
	}{
		{"Health", s.Health},
		{"Hunger", s.Hunger},
		{"Warmth", s.Warmth},
		{"Morale", s.Morale},
	} {
		fmt.Fprintf(&b, "%-7s %s\n", st.name, statBar(st.value))
	}
	b.WriteString("\n" + titleStyle.Render("PACK") + "\n")
	fmt.Fprintf(&b, "Fish: %d\n", s.Inventory.Fish)

	if len(s.Markers) > 0 {
		b.WriteString("\n" + titleStyle.Render("MARKERS") + "\n")
		for _, mk := range s.Markers {
			fmt.Fprintf(&b, "- %s (mile %d)\n", mk.Label, mk.Distance)
		}
	}

	stateWidth := int(float64(m.width) * 0.23)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(b.String())
}

// statBar draws a ten-cell gauge for a 0-100 resource.
func statBar(v int) string {
	filled := (v + 5) / 10
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	text := fmt.Sprintf("%s %3d", bar, v)
	if v < 30 {
		return lowStyle.Render(text)
	}
	return text
}

func (m model) performAction(a models.Action) tea.Cmd {
	return func() tea.Msg {
		s, err := m.session.PerformAction(context.Background(), a)
		return turnResolvedMsg{s, err}
	}
}

func (m model) performChoice(i int) tea.Cmd {
	return func() tea.Msg {
		s, err := m.session.PerformChoice(context.Background(), i)
		return turnResolvedMsg{s, err}
	}
}

func Run(sess *engine.Session, chronicleDir string) error {
	p := tea.NewProgram(NewModel(sess, chronicleDir), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
