// Package tui is the interactive list screen: one tab per resource, space
// flips the selected field, d deletes, / searches locally.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/menuadmin/internal/catalog"
	"github.com/Makepad-fr/menuadmin/internal/ui"
)

// statusFadeDelay is how long a status message stays before the bar
// clears.
const statusFadeDelay = 4 * time.Second

type loadedMsg struct {
	view int
	err  error
}

type mutationResultMsg struct {
	view int
	op   string
	id   string
	err  error
}

type statusFadeMsg struct{ seq int }

// Options tune the screen.
type Options struct {
	// Timeout bounds each backend call. Zero means no limit.
	Timeout time.Duration
	// Log receives view model records for the status bar.
	Log *LogHandler
}

// rowItem adapts a catalog row to bubbles/list.
type rowItem struct{ catalog.Row }

func (i rowItem) FilterValue() string { return i.Title }

type delegate struct{ flag int }

func (d delegate) Height() int                         { return 1 }
func (d delegate) Spacing() int                        { return 0 }
func (d delegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(rowItem)
	if !ok {
		return
	}
	t := ui.Current()
	boxes := make([]string, 0, len(it.Flags))
	for i, f := range it.Flags {
		b := ui.Box(f.Value)
		if i == d.flag {
			b = t.Accent.Render("‹") + b + t.Accent.Render("›")
		} else {
			b = " " + b + " "
		}
		boxes = append(boxes, b)
	}
	line := strings.Join(boxes, "") + " " + it.Title
	if it.Subtitle != "" {
		line += "  " + t.Muted.Render(it.Subtitle)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

type Model struct {
	ctx     context.Context
	timeout time.Duration
	views   []catalog.View
	loaded  []bool
	active  int
	flag    int

	list      list.Model
	spinner   spinner.Model
	search    textinput.Model
	searching bool
	keys      keyMap

	status    string
	statusErr bool
	statusSeq int

	width, height int
}

// New builds the screen over views. The first view is shown first.
func New(ctx context.Context, views []catalog.View, opt Options) Model {
	keys := defaultKeys()

	l := list.New(nil, delegate{}, 80, 20)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.full
	l.KeyMap.Quit.SetEnabled(false)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search..."
	ti.CharLimit = 120

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		ctx:     ctx,
		timeout: opt.Timeout,
		views:   views,
		loaded:  make([]bool, len(views)),
		list:    l,
		spinner: sp,
		search:  ti,
		keys:    keys,
		width:   84,
		height:  26,
	}
}

func (m Model) Init() tea.Cmd {
	if len(m.views) == 0 {
		return tea.Quit
	}
	m.loaded[0] = true
	return tea.Batch(m.spinner.Tick, m.load(0))
}

func (m Model) view() catalog.View { return m.views[m.active] }

func (m Model) callCtx() (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(m.ctx, m.timeout)
	}
	return context.WithCancel(m.ctx)
}

func (m Model) load(i int) tea.Cmd {
	v := m.views[i]
	return func() tea.Msg {
		ctx, cancel := m.callCtx()
		defer cancel()
		return loadedMsg{view: i, err: v.Load(ctx)}
	}
}

func (m Model) toggle(i int, id, field string) tea.Cmd {
	v := m.views[i]
	return func() tea.Msg {
		ctx, cancel := m.callCtx()
		defer cancel()
		return mutationResultMsg{view: i, op: "toggled " + field + " on", id: id, err: v.Toggle(ctx, id, field)}
	}
}

func (m Model) remove(i int, id string) tea.Cmd {
	v := m.views[i]
	return func() tea.Msg {
		ctx, cancel := m.callCtx()
		defer cancel()
		return mutationResultMsg{view: i, op: "deleted", id: id, err: v.Remove(ctx, id)}
	}
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status, m.statusErr = msg, isErr
	seq := m.statusSeq
	return tea.Tick(statusFadeDelay, func(time.Time) tea.Msg { return statusFadeMsg{seq: seq} })
}

// refresh rebuilds the list rows from the active view, keeping the cursor
// in range.
func (m *Model) refresh() {
	rows := m.view().Rows()
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = rowItem{r}
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if n := len(items); n > 0 && idx >= n {
		m.list.Select(n - 1)
	}
	m.list.SetDelegate(delegate{flag: m.flag})
}

func (m Model) selected() (catalog.Row, bool) {
	it, ok := m.list.SelectedItem().(rowItem)
	return it.Row, ok
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(max(20, msg.Width-4), max(3, msg.Height-8))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.view().Loading() {
			m.refresh()
		}
		return m, cmd

	case loadedMsg:
		if msg.view == m.active {
			m.refresh()
		}
		if msg.err != nil {
			m.views[msg.view].ClearErr()
			return m, m.setStatus(msg.err.Error(), true)
		}
		return m, nil

	case mutationResultMsg:
		if msg.view == m.active {
			m.refresh()
		}
		if msg.err != nil {
			m.views[msg.view].ClearErr()
			return m, m.setStatus(msg.err.Error(), true)
		}
		return m, m.setStatus(msg.op+" "+msg.id, false)

	case statusFadeMsg:
		if msg.seq == m.statusSeq {
			m.status, m.statusErr = "", false
		}
		return m, nil

	case logRecordMsg:
		if m.statusErr && msg.level < slog.LevelWarn {
			return m, nil
		}
		return m, m.setStatus(msg.summary, msg.level >= slog.LevelWarn)

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	v := m.view()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(v.SearchTerm())
		m.search.CursorEnd()
		return m, m.search.Focus(), true

	case key.Matches(msg, m.keys.Clear):
		if v.SearchTerm() != "" {
			v.SetSearchTerm("")
			m.refresh()
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Reload):
		return m, m.load(m.active), true

	case key.Matches(msg, m.keys.NextView):
		return m.switchTo((m.active + 1) % len(m.views))

	case key.Matches(msg, m.keys.PrevView):
		return m.switchTo((m.active - 1 + len(m.views)) % len(m.views))

	case key.Matches(msg, m.keys.NextFlag), key.Matches(msg, m.keys.PrevFlag):
		n := len(v.FlagNames())
		if n == 0 {
			return m, nil, true
		}
		step := 1
		if key.Matches(msg, m.keys.PrevFlag) {
			step = n - 1
		}
		m.flag = (m.flag + step) % n
		m.list.SetDelegate(delegate{flag: m.flag})
		return m, nil, true

	case key.Matches(msg, m.keys.Toggle):
		row, ok := m.selected()
		flags := v.FlagNames()
		if !ok || len(flags) == 0 {
			return m, nil, true
		}
		if !v.CanToggle() {
			return m, m.setStatus(v.Name()+" cannot be toggled", true), true
		}
		return m, m.toggle(m.active, row.ID, flags[m.flag]), true

	case key.Matches(msg, m.keys.Remove):
		row, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		if !v.CanDelete() {
			return m, m.setStatus(v.Name()+" cannot be deleted", true), true
		}
		return m, m.remove(m.active, row.ID), true
	}
	return m, nil, false
}

func (m Model) switchTo(i int) (tea.Model, tea.Cmd, bool) {
	m.active, m.flag = i, 0
	m.list.ResetSelected()
	m.refresh()
	if !m.loaded[i] {
		m.loaded[i] = true
		return m, m.load(i), true
	}
	return m, nil, true
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.view().SetSearchTerm("")
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.view().SetSearchTerm(m.search.Value())
	m.list.ResetSelected()
	m.refresh()
	return m, cmd
}

func (m Model) View() string {
	if len(m.views) == 0 {
		return ""
	}
	t := ui.Current()
	v := m.view()

	tabs := make([]string, len(m.views))
	for i, x := range m.views {
		if i == m.active {
			tabs[i] = t.Title.Render("[" + x.Title() + "]")
		} else {
			tabs[i] = t.Muted.Render(" " + x.Title() + " ")
		}
	}

	header := fmt.Sprintf("%s  %d %s", t.Title.Render(v.Title()), v.Len(), plural(v.Len(), "record", "records"))
	if v.Loading() {
		header += "  " + t.Pending.Render(m.spinner.View())
	}
	if term := v.SearchTerm(); term != "" && !m.searching {
		header += "  " + t.Accent.Render("/ "+term) + t.Muted.Render(fmt.Sprintf(" (%d shown)", len(m.list.Items())))
	}

	var fields []string
	for i, f := range v.FlagNames() {
		label := f
		if i == m.flag {
			set, total := v.Count(f)
			label = t.Accent.Render("‹"+f+"›") + " " + ui.ProgressBar(set, total, 16)
		} else {
			label = t.Muted.Render(label)
		}
		fields = append(fields, label)
	}

	var bar string
	switch {
	case m.searching:
		bar = m.search.View()
	case m.status != "" && m.statusErr:
		bar = t.Error.Render(t.SymFail + " " + m.status)
	case m.status != "":
		bar = t.Success.Render(t.SymOK + " " + m.status)
	}

	parts := []string{
		strings.Join(tabs, " "),
		header,
		strings.Join(fields, "  "),
		"",
		m.list.View(),
	}
	if bar != "" {
		parts = append(parts, bar)
	}
	return ui.PanelString(parts...)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Run shows the screen until the user quits. Views are closed on return.
func Run(ctx context.Context, views []catalog.View, opt Options) error {
	defer func() {
		for _, v := range views {
			v.Close()
		}
	}()
	p := tea.NewProgram(New(ctx, views, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	if opt.Log != nil {
		opt.Log.SetProgram(p)
	}
	_, err := p.Run()
	return err
}
