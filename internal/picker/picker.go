// Package picker is the interactive region chooser shown by `argus scan`
// when no region code is given and stdin is a terminal.
package picker

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/argus/internal/directory"
)

// ErrCancelled is returned by Run when the user quits without choosing
var ErrCancelled = errors.New("region selection cancelled")

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	appStyle = lipgloss.NewStyle().Padding(1, 2)
)

// regionItem wraps a Region for use with bubbles/list
type regionItem struct {
	region directory.Region
}

func (r regionItem) FilterValue() string {
	return r.region.Code + " " + r.region.Name
}

func (r regionItem) Title() string {
	return fmt.Sprintf("%s  %s", r.region.Code, r.region.Name)
}

func (r regionItem) Description() string {
	return fmt.Sprintf("%d cameras listed", r.region.Count)
}

// keyMap defines key bindings for the picker
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Filter key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Filter, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Filter, k.Quit},
	}
}

func defaultKeys() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "scan region"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the bubbletea model of the picker
type Model struct {
	list      list.Model
	help      help.Model
	keys      keyMap
	selected  string
	cancelled bool
}

// New creates a picker over regions, listed in the order given
func New(regions []directory.Region) Model {
	items := make([]list.Item, len(regions))
	for i, r := range regions {
		items[i] = regionItem{region: r}
	}

	l := list.New(items, list.NewDefaultDelegate(), 80, 20)
	l.Title = "Select a region to scan"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return Model{
		list: l,
		help: help.New(),
		keys: defaultKeys(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := appStyle.GetFrameSize()
		m.help.Width = msg.Width - h
		m.list.SetSize(msg.Width-h, msg.Height-v-1)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}

		// While typing a filter every key belongs to the list
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Select):
			if item, ok := m.list.SelectedItem().(regionItem); ok {
				m.selected = item.region.Code
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.Quit):
			// esc first clears an applied filter
			if msg.String() == "esc" && m.list.FilterState() == list.FilterApplied {
				break
			}
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m Model) View() string {
	return appStyle.Render(m.list.View() + "\n" + m.help.View(m.keys))
}

// Selected returns the chosen region code, if any
func (m Model) Selected() (string, bool) {
	if m.cancelled || m.selected == "" {
		return "", false
	}
	return m.selected, true
}

// Run shows the picker and blocks until the user chooses or quits
func Run(regions []directory.Region, opts ...tea.ProgramOption) (string, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(New(regions), opts...).Run()
	if err != nil {
		return "", fmt.Errorf("region picker failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return "", ErrCancelled
	}
	code, ok := m.Selected()
	if !ok {
		return "", ErrCancelled
	}
	return code, nil
}
