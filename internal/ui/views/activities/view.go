package activities

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogdto "tally/internal/modules/catalog/dto"
	"tally/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type CatalogPort interface {
	ListActivities(ctx context.Context) ([]catalogdto.ActivityOutput, error)
	ListGoals(ctx context.Context) ([]catalogdto.GoalOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Activities []catalogdto.ActivityOutput
	Goals      []catalogdto.GoalOutput
	Err        error
}

// ─── list item ───────────────────────────────────────────────────────────────

type activityItem struct {
	activity catalogdto.ActivityOutput
	goal     string
}

func (i activityItem) Title() string {
	if i.activity.Icon != "" {
		return i.activity.Icon + " " + i.activity.Name
	}
	return i.activity.Name
}

func (i activityItem) Description() string {
	if i.goal == "" {
		return "no goal"
	}
	return "goal: " + i.goal
}

func (i activityItem) FilterValue() string { return i.activity.Name }

// ─── model ───────────────────────────────────────────────────────────────────

// Model lists the catalog's activities and previews the selected one.
type Model struct {
	port    CatalogPort
	list    list.Model
	goals   map[string]catalogdto.GoalOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

func New(port CatalogPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Activities"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		goals:   map[string]catalogdto.GoalOutput{},
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.list.Title = "Activities: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Activities"
		m.goals = make(map[string]catalogdto.GoalOutput, len(msg.Goals))
		for _, g := range msg.Goals {
			m.goals[g.ID] = g
		}
		items := make([]list.Item, len(msg.Activities))
		for i, a := range msg.Activities {
			items[i] = activityItem{activity: a, goal: m.goals[a.GoalID].Title}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.preview.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.preview.SetContent(m.renderDetail())
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading activities…")
	}
	if m.err == nil && len(m.list.Items()) == 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("No activities yet. Add one with `tally activity add <name>`."))
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Reload fetches activities and goals again.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		acts, err := m.port.ListActivities(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		goals, err := m.port.ListGoals(ctx)
		return LoadedMsg{Activities: acts, Goals: goals, Err: err}
	}
}

// Selected returns the highlighted activity, if any.
func (m Model) Selected() (catalogdto.ActivityOutput, bool) {
	if item, ok := m.list.SelectedItem().(activityItem); ok {
		return item.activity, true
	}
	return catalogdto.ActivityOutput{}, false
}

// Filtering reports whether the list's search filter is currently active.
// The app model checks this to avoid consuming global keys during a search.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	a, ok := m.Selected()
	if !ok {
		return theme.Muted.Render("Select an activity to see details")
	}
	var sb strings.Builder
	name := a.Name
	if a.Color != "" {
		name = lipgloss.NewStyle().Foreground(lipgloss.Color(a.Color)).Bold(true).Render(name)
	} else {
		name = theme.Title.Render(name)
	}
	sb.WriteString(name + "\n\n")
	sb.WriteString(theme.Muted.Render("id:    ") + a.ID + "\n")
	if a.Icon != "" {
		sb.WriteString(theme.Muted.Render("icon:  ") + a.Icon + "\n")
	}
	if g, ok := m.goals[a.GoalID]; ok {
		sb.WriteString(theme.Muted.Render("goal:  ") + g.Title + " (" + g.Status + ")\n")
		sb.WriteString(fmt.Sprintf("%s%.1fh weekday, %.1fh weekend\n",
			theme.Muted.Render("daily: "), g.WeekdayTargetHours, g.WeekendTargetHours))
	} else if a.GoalID != "" {
		sb.WriteString(theme.Muted.Render("goal:  ") + a.GoalID + " (missing)\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("s: start session"))
	return sb.String()
}
