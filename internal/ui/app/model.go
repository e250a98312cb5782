package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	sessiondto "tally/internal/modules/session/dto"
	statsdto "tally/internal/modules/stats/dto"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/durationfmt"
	"tally/internal/platform/logging"
	"tally/internal/platform/notify"
	"tally/internal/ui/components"
	"tally/internal/ui/theme"
	activitiesview "tally/internal/ui/views/activities"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.

type sessionPort interface {
	Start(ctx context.Context, activityID, location string) (sessiondto.ActiveSessionOutput, error)
	Pause(ctx context.Context) (sessiondto.ActiveSessionOutput, error)
	Resume(ctx context.Context) (sessiondto.ActiveSessionOutput, error)
	End(ctx context.Context) (sessiondto.ActiveSessionOutput, error)
	Discard(ctx context.Context) error
	GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error)
	Save(ctx context.Context, mood *int, notes, achievements, challenges string, photoPaths []string) (sessiondto.SaveOutput, error)
	SetDraftField(ctx context.Context, field, value string) error
	GetDraft(ctx context.Context) (sessiondto.ReflectionDraftOutput, error)
}

type statsPort interface {
	Today(ctx context.Context) (statsdto.TodayOutput, error)
}

// Lifecycle states as reported by the session module.
const (
	statusActive = "active"
	statusPaused = "paused"
	statusEnded  = "ended"
)

// ─── async messages ───────────────────────────────────────────────────────────

type activeLoadedMsg struct {
	active sessiondto.ActiveSessionOutput
	err    error
}

type transitionMsg struct {
	op     string
	active sessiondto.ActiveSessionOutput
	err    error
}

type discardedMsg struct{ err error }

type draftLoadedMsg struct {
	draft sessiondto.ReflectionDraftOutput
	err   error
}

type draftSavedMsg struct{ err error }

type savedMsg struct {
	out sessiondto.SaveOutput
	err error
}

type todayLoadedMsg struct {
	today statsdto.TodayOutput
	err   error
}

type tickMsg struct {
	gen int
	at  time.Time
}

type notifiedMsg struct{ err error }

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Start   key.Binding
	Pause   key.Binding
	End     key.Binding
	Save    key.Binding
	Discard key.Binding
	Refresh key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start:   key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s", "start session")),
		Pause:   key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause/resume")),
		End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end")),
		Save:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save")),
		Discard: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "discard")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.End, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Pause, k.End},
		{k.Save, k.Discard, k.Refresh},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. With no session it shows the activity
// picker; otherwise the live session screen. Business logic stays behind the
// ports.
type Model struct {
	session  sessionPort
	stats    statsPort
	notifier notify.Notifier
	now      func() time.Time

	picker activitiesview.Model
	form   *reflectionForm

	active    sessiondto.ActiveSessionOutput
	hasActive bool
	fetchedAt time.Time
	clock     time.Time
	ticking   bool
	tickGen   int

	location       string
	photos         []string
	notifiedKey    string
	confirmDiscard bool
	saving         bool

	today    statsdto.TodayOutput
	hasToday bool

	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	banner   string
	bannerOK bool
	width    int
	height   int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(
	catalog activitiesview.CatalogPort,
	session sessionPort,
	stats statsPort,
	notifier notify.Notifier,
) Model {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return Model{
		session:  session,
		stats:    stats,
		notifier: notifier,
		now:      time.Now,
		picker:   activitiesview.New(catalog),
		keys:     defaultKeys(),
		help:     help.New(),
		palette:  components.NewPalette(paletteHints...),
		status:   "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.picker.Init(),
		m.loadActiveCmd(),
		m.loadTodayCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette takes all key input while open. Other messages still flow
	// so the timer keeps ticking underneath.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.picker, _ = m.picker.Update(tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()})
		return m, nil

	case tickMsg:
		if msg.gen != m.tickGen || !m.ticking {
			return m, tea.Batch(cmds...)
		}
		m.clock = msg.at
		if !m.running() {
			m.ticking = false
			return m, tea.Batch(cmds...)
		}
		cmds = append(cmds, tick(m.tickGen))
		if cmd := m.maybeNotify(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.clock.Second() == 0 {
			cmds = append(cmds, m.loadTodayCmd())
		}
		return m, tea.Batch(cmds...)

	case activeLoadedMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, apperrors.ErrNoActiveSession) {
				m.status = "active session check: " + msg.err.Error()
			}
			m.clearActive()
			return m, nil
		}
		m.setActive(msg.active)
		if m.reachedTarget() {
			m.notifiedKey = msg.active.DraftKey
		}
		m.status = "session recovered: " + msg.active.ActivityName
		return m, m.ensureTick()

	case transitionMsg:
		if msg.err != nil {
			m.status = msg.op + " failed: " + msg.err.Error()
			return m, nil
		}
		m.setActive(msg.active)
		m.confirmDiscard = false
		m.status = msg.op + ": " + msg.active.ActivityName
		return m, m.ensureTick()

	case discardedMsg:
		if msg.err != nil {
			m.status = "discard failed: " + msg.err.Error()
			return m, nil
		}
		m.clearActive()
		m.status = "session discarded"
		return m, m.picker.Reload()

	case draftLoadedMsg:
		if msg.err != nil {
			m.status = "reflection draft: " + msg.err.Error()
		}
		m.form = newReflectionForm(msg.draft, min(m.width-4, 80))
		return m, m.form.form.Init()

	case draftSavedMsg:
		if msg.err != nil {
			m.status = "draft autosave: " + msg.err.Error()
		}
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.banner = "save failed: " + msg.err.Error() + " (w to retry)"
			m.bannerOK = false
			return m, m.loadActiveCmd()
		}
		m.clearActive()
		m.photos = nil
		if len(msg.out.Warnings) > 0 {
			m.banner = "saved with warnings: " + strings.Join(msg.out.Warnings, "; ")
			m.bannerOK = false
		} else {
			m.banner = ""
		}
		m.status = "session saved"
		return m, tea.Batch(m.loadTodayCmd(), m.picker.Reload())

	case todayLoadedMsg:
		if msg.err == nil {
			m.today = msg.today
			m.hasToday = true
		}
		return m, nil

	case notifiedMsg:
		if msg.err != nil {
			m.status = "notification failed: " + msg.err.Error()
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if !(m.pickerVisible() && m.picker.Filtering()) {
			if model, cmd, handled := m.handleKey(msg); handled {
				return model, cmd
			}
		}
	}

	if m.pickerVisible() {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if !key.Matches(msg, m.keys.Discard) {
		m.confirmDiscard = false
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil, true
	case key.Matches(msg, m.keys.Palette):
		return m, m.palette.Open(), true
	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.loadActiveCmd(), m.loadTodayCmd(), m.picker.Reload()), true

	case key.Matches(msg, m.keys.Start):
		if m.hasActive {
			m.status = "finish or discard the current session before starting another"
			return m, nil, true
		}
		activity, ok := m.picker.Selected()
		if !ok {
			m.status = "no activity selected"
			return m, nil, true
		}
		m.banner = ""
		return m, m.startCmd(activity.ID), true

	case key.Matches(msg, m.keys.Pause):
		switch m.active.Status {
		case statusActive:
			return m, m.transitionCmd("paused", m.session.Pause), true
		case statusPaused:
			return m, m.transitionCmd("resumed", m.session.Resume), true
		}
		return m, nil, m.hasActive

	case key.Matches(msg, m.keys.End):
		if m.active.Status == statusActive || m.active.Status == statusPaused {
			return m, m.transitionCmd("ended", m.session.End), true
		}
		return m, nil, m.hasActive

	case key.Matches(msg, m.keys.Save):
		if m.active.Status != statusEnded {
			if m.hasActive {
				m.status = "end the session before saving"
			}
			return m, nil, m.hasActive
		}
		if m.saving {
			m.status = "save already in progress"
			return m, nil, true
		}
		return m, m.loadDraftCmd(), true

	case key.Matches(msg, m.keys.Discard):
		if m.active.Status != statusEnded {
			return m, nil, m.hasActive
		}
		if !m.confirmDiscard {
			m.confirmDiscard = true
			m.status = "press x again to discard this session"
			return m, nil, true
		}
		m.confirmDiscard = false
		return m, m.discardCmd(), true
	}
	return m, nil, false
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		cmd := m.autosaveCmd()
		m.form = nil
		m.status = "reflection kept as draft"
		return m, cmd
	}

	form, cmd := m.form.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form.form = f
	}

	switch m.form.form.State {
	case huh.StateCompleted:
		// The save input carries every field. No draft write may follow it.
		mood, notes, achievements, challenges := m.form.input()
		m.form = nil
		m.saving = true
		m.status = "saving…"
		return m, tea.Batch(cmd, m.saveCmd(mood, notes, achievements, challenges, m.photos))
	case huh.StateAborted:
		autosave := m.autosaveCmd()
		m.form = nil
		m.status = "reflection kept as draft"
		return m, tea.Batch(cmd, autosave)
	}
	return m, tea.Batch(cmd, m.autosaveCmd())
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := m.contentHeight()

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.form != nil:
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center,
			theme.PaneActive.Render(theme.Title.Render("Reflection")+"\n\n"+m.form.form.View()))
	case m.hasActive:
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.renderSession())
	default:
		content = m.picker.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderHeader() string {
	state := theme.Muted.Render("no session")
	switch m.active.Status {
	case statusActive:
		state = theme.Good.Render("● running")
	case statusPaused:
		state = theme.Hot.Render("❚❚ paused")
	case statusEnded:
		state = theme.Hot.Render("■ ended, not saved")
	}
	bar := "tally  " + state
	if m.banner != "" {
		style := theme.Warn
		if m.bannerOK {
			style = theme.Good
		}
		bar += "  " + style.Render(m.banner)
	}
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderSession() string {
	a := m.active
	var sb strings.Builder

	name := a.ActivityName
	if a.ActivityIcon != "" {
		name = a.ActivityIcon + " " + name
	}
	nameStyle := theme.Title
	if a.ActivityColor != "" {
		nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(a.ActivityColor)).Bold(true)
	}
	sb.WriteString(nameStyle.Render(name) + "\n")
	if a.Location != "" {
		sb.WriteString(theme.Muted.Render("at "+a.Location) + "\n")
	}
	sb.WriteString("\n" + theme.Clock.Render(durationfmt.FormatClock(m.elapsed())) + "\n\n")
	sb.WriteString(m.renderTarget() + "\n")

	if a.PausedSeconds > 0 {
		sb.WriteString(theme.Muted.Render("paused "+durationfmt.Format(a.PausedSeconds)) + "\n")
	}
	if len(m.photos) > 0 {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("%d photo(s) queued", len(m.photos))) + "\n")
	}

	sb.WriteString("\n")
	switch a.Status {
	case statusActive:
		sb.WriteString(theme.Muted.Render("p: pause  e: end"))
	case statusPaused:
		sb.WriteString(theme.Muted.Render("p: resume  e: end"))
	case statusEnded:
		if m.saving {
			sb.WriteString(theme.Hot.Render("saving…"))
		} else {
			sb.WriteString(theme.Muted.Render("w: save  x: discard"))
		}
	}
	return theme.Pane.Render(sb.String())
}

func (m Model) renderTarget() string {
	target := m.active.TargetMinutes
	if target == nil {
		return theme.Muted.Render("no target")
	}
	label := "target " + durationfmt.Format(int64(*target)*60)
	ratio, achieved := m.progress()
	percent := min(ratio*100, 100)
	line := fmt.Sprintf("%s  %s %3.0f%%", label, components.ProgressBar(30, ratio), percent)
	if achieved {
		line += "  " + theme.Good.Render("target reached")
	}
	return line
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.location != "" && !m.hasActive {
		left = theme.Muted.Render("@"+m.location) + "  " + left
	}
	right := theme.Muted.Render("?:help  q:quit")
	if m.hasToday {
		right = theme.Muted.Render(fmt.Sprintf("today %s  streak %dd  ", m.today.Total, m.today.Streak)) + right
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

// paletteHints must stay in sync with the switch in executePalette.
var paletteHints = []string{
	"location <place>",
	"photo <path>",
	"photos:clear",
	"discard",
	"refresh",
}

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch parts[0] {
	case "location":
		m.location = rest
		if rest == "" {
			m.status = "location cleared"
		} else {
			m.status = "next session location: " + rest
		}

	case "photo":
		if rest == "" {
			m.status = "usage: photo <path>"
			return m, nil
		}
		m.photos = append(m.photos, rest)
		m.status = fmt.Sprintf("%d photo(s) queued for save", len(m.photos))

	case "photos:clear":
		m.photos = nil
		m.status = "photo queue cleared"

	case "discard":
		if m.active.Status != statusEnded {
			m.status = "only an ended session can be discarded"
			return m, nil
		}
		return m, m.discardCmd()

	case "refresh":
		return m, tea.Batch(m.loadActiveCmd(), m.loadTodayCmd(), m.picker.Reload())

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) pickerVisible() bool {
	return !m.hasActive && m.form == nil
}

func (m Model) contentHeight() int {
	// one line header, two line status bar
	return max(m.height-3, 1)
}

func (m *Model) setActive(active sessiondto.ActiveSessionOutput) {
	m.active = active
	m.hasActive = true
	m.fetchedAt = m.now()
	m.clock = m.fetchedAt
}

// running reports whether the clock should advance on screen.
func (m Model) running() bool {
	return m.hasActive && (m.active.Status == statusActive || m.active.Status == statusPaused)
}

// ensureTick starts a tick chain unless one is live. Ticks from an older
// chain carry a stale generation and are dropped.
func (m *Model) ensureTick() tea.Cmd {
	if m.ticking || !m.running() {
		return nil
	}
	m.ticking = true
	m.tickGen++
	return tick(m.tickGen)
}

func (m *Model) clearActive() {
	m.active = sessiondto.ActiveSessionOutput{}
	m.hasActive = false
	m.confirmDiscard = false
	m.form = nil
}

// elapsed extrapolates the last fetched value while the session runs, so the
// clock ticks without reading the store every second.
func (m Model) elapsed() int64 {
	if !m.hasActive {
		return 0
	}
	e := m.active.ElapsedSeconds
	if m.active.Status == statusActive && m.clock.After(m.fetchedAt) {
		e += int64(m.clock.Sub(m.fetchedAt) / time.Second)
	}
	return e
}

// progress returns the raw ratio of elapsed time to target. A zero target
// counts as reached.
func (m Model) progress() (float64, bool) {
	target := m.active.TargetMinutes
	if target == nil {
		return 0, false
	}
	if *target <= 0 {
		return 1, true
	}
	ratio := float64(m.elapsed()) / float64(*target*60)
	return ratio, ratio >= 1
}

func (m Model) reachedTarget() bool {
	if m.active.TargetMinutes == nil || *m.active.TargetMinutes <= 0 {
		return false
	}
	_, achieved := m.progress()
	return achieved
}

// maybeNotify fires the target notification once per session.
func (m *Model) maybeNotify() tea.Cmd {
	if m.active.Status != statusActive || m.notifiedKey == m.active.DraftKey || !m.reachedTarget() {
		return nil
	}
	m.notifiedKey = m.active.DraftKey
	title := "Target reached"
	body := fmt.Sprintf("%s: %s done", m.active.ActivityName, durationfmt.Format(int64(*m.active.TargetMinutes)*60))
	notifier := m.notifier
	return func() tea.Msg {
		return notifiedMsg{err: notifier.Notify(title, body)}
	}
}

// ─── async commands ───────────────────────────────────────────────────────────

func tick(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg{gen: gen, at: t} })
}

func (m Model) loadActiveCmd() tea.Cmd {
	return func() tea.Msg {
		active, err := m.session.GetActive(context.Background())
		return activeLoadedMsg{active: active, err: err}
	}
}

func (m Model) loadTodayCmd() tea.Cmd {
	if m.stats == nil {
		return nil
	}
	return func() tea.Msg {
		today, err := m.stats.Today(context.Background())
		return todayLoadedMsg{today: today, err: err}
	}
}

func (m Model) startCmd(activityID string) tea.Cmd {
	location := m.location
	return func() tea.Msg {
		active, err := m.session.Start(context.Background(), activityID, location)
		return transitionMsg{op: "started", active: active, err: err}
	}
}

func (m Model) transitionCmd(op string, fn func(context.Context) (sessiondto.ActiveSessionOutput, error)) tea.Cmd {
	return func() tea.Msg {
		active, err := fn(context.Background())
		return transitionMsg{op: op, active: active, err: err}
	}
}

func (m Model) discardCmd() tea.Cmd {
	return func() tea.Msg {
		return discardedMsg{err: m.session.Discard(context.Background())}
	}
}

func (m Model) loadDraftCmd() tea.Cmd {
	return func() tea.Msg {
		draft, err := m.session.GetDraft(context.Background())
		return draftLoadedMsg{draft: draft, err: err}
	}
}

func (m Model) autosaveCmd() tea.Cmd {
	if m.form == nil {
		return nil
	}
	changes := m.form.pendingChanges()
	if len(changes) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		var errs []error
		for _, c := range changes {
			if err := m.session.SetDraftField(ctx, c.field, c.value); err != nil {
				logging.Logger.Warn("draft autosave failed", "field", c.field, "error", err)
				errs = append(errs, err)
			}
		}
		return draftSavedMsg{err: errors.Join(errs...)}
	}
}

func (m Model) saveCmd(mood *int, notes, achievements, challenges string, photos []string) tea.Cmd {
	photos = append([]string(nil), photos...)
	return func() tea.Msg {
		out, err := m.session.Save(context.Background(), mood, notes, achievements, challenges, photos)
		return savedMsg{out: out, err: err}
	}
}
