package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/geoset/pkg/dashboard"
	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/selection"
	"github.com/matzehuels/geoset/pkg/tier"
)

// Board styles
var (
	boardHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGray)
	boardItemStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	boardCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	boardArmedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(colorYellow)
	boardColumnStyle = lipgloss.NewStyle().Width(22).MarginRight(2)
	boardBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	boardFocusStyle  = boardBoxStyle.BorderForeground(colorCyan)
)

// =============================================================================
// Command
// =============================================================================

type tuiOpts struct {
	inputs   [tier.Count]string
	state    string
	snapshot string
	export   exportFlags
}

// tuiCommand creates the interactive dashboard command.
func (c *CLI) tuiCommand() *cobra.Command {
	opts := tuiOpts{snapshot: "snapshot.json"}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit labels and connections interactively",
		Long: `Open the dashboard. Type comma-separated labels into the three tier
inputs, then move to the board and press enter on two labels in adjacent
tiers to connect them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.inputs[tier.Countries], "countries", "", "initial country labels")
	cmd.Flags().StringVar(&opts.inputs[tier.Regions], "regions", "", "initial region labels")
	cmd.Flags().StringVar(&opts.inputs[tier.Areas], "areas", "", "initial area labels")
	cmd.Flags().StringVar(&opts.state, "state", "", "restore inputs and connections from a state file")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", opts.snapshot, "file written by ctrl+y")
	cmd.Flags().StringVarP(&opts.export.output, "output", "o", "", "export directory or mongodb:// URI (default from config)")
	cmd.Flags().StringVar(&opts.export.backend, "backend", "", "export backend: local, http (default from config)")
	cmd.Flags().StringVar(&opts.export.endpoint, "endpoint", "", "server URL for the http backend")
	cmd.Flags().BoolVar(&opts.export.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runTUI(ctx context.Context, opts tuiOpts) error {
	dopts, err := c.editorOptions()
	if err != nil {
		return err
	}
	b, cleanup, err := c.newBackend(ctx, opts.export)
	if err != nil {
		return err
	}
	defer cleanup()
	dopts.Backend = b

	d := dashboard.New(dopts)
	if opts.state != "" {
		st, err := readState(opts.state)
		if err != nil {
			return err
		}
		if err := d.Restore(st); err != nil {
			return err
		}
	} else if err := d.SetInputs(opts.inputs); err != nil {
		return err
	}

	// Log lines would tear the alternate screen.
	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(c.logOut)

	m := newDashboardModel(ctx, d, opts.snapshot)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(dashboardModel); ok && opts.state != "" {
		if err := writeState(opts.state, fm.d.State()); err != nil {
			return err
		}
		printSuccess("Saved state to %s", opts.state)
	}
	return nil
}

func readState(path string) (dashboard.State, error) {
	var st dashboard.State
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode state %s", path)
	}
	return st, nil
}

func writeState(path string, st dashboard.State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// =============================================================================
// Key Bindings
// =============================================================================

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Click  key.Binding
	Remove key.Binding
	Reset  key.Binding
	Export key.Binding
	Copy   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev field"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "prev tier"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next tier"),
	),
	Click: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "select"),
	),
	Remove: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "remove connection"),
	),
	Reset: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reset"),
	),
	Export: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("ctrl+e", "export"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "write snapshot"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Click, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Click},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Remove, k.Reset, k.Export, k.Copy},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// Model
// =============================================================================

// focusBoard follows the three tier inputs in the focus order.
const focusBoard = tier.Count

// exportDoneMsg carries a finished export back into Update.
type exportDoneMsg dashboard.ExportResult

// dashboardModel is the bubbletea model around a dashboard. The dashboard is
// only touched from Update.
type dashboardModel struct {
	ctx context.Context
	d   *dashboard.Dashboard

	inputs [tier.Count]textinput.Model
	focus  int
	col    tier.Tier
	rows   [tier.Count]int

	keys      keyMap
	help      help.Model
	spin      spinner.Model
	exporting bool

	snapshotPath string
	width        int
}

func newDashboardModel(ctx context.Context, d *dashboard.Dashboard, snapshotPath string) dashboardModel {
	m := dashboardModel{
		ctx:          ctx,
		d:            d,
		keys:         keys,
		help:         help.New(),
		spin:         spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleIconSpinner)),
		snapshotPath: snapshotPath,
	}
	current := d.Inputs()
	for _, t := range tier.All {
		ti := textinput.New()
		ti.Prompt = fmt.Sprintf("%-10s ", t.String()+":")
		ti.Placeholder = placeholders[t]
		ti.CharLimit = 1000
		ti.Width = 60
		ti.SetValue(current[t])
		m.inputs[t] = ti
	}
	m.inputs[tier.Countries].Focus()
	return m
}

var placeholders = [tier.Count]string{
	"DK, DE, NO",
	"DK1, DK2, DE",
	"DK1_A, DK2_A",
}

func (m dashboardModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case exportDoneMsg:
		m.exporting = false
		m.d.ApplyExport(dashboard.ExportResult(msg))
		return m, nil

	case spinner.TickMsg:
		if !m.exporting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInput(msg)
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		return m.setFocus((m.focus + 1) % (tier.Count + 1))
	case key.Matches(msg, m.keys.Prev):
		return m.setFocus((m.focus + tier.Count) % (tier.Count + 1))
	case key.Matches(msg, m.keys.Export):
		return m.export()
	case key.Matches(msg, m.keys.Copy):
		m.writeSnapshot()
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		m.d.Reset()
		return m, nil
	}

	if m.focus != focusBoard {
		if msg.Type == tea.KeyEnter {
			return m.setFocus(m.focus + 1)
		}
		return m.updateInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
	case key.Matches(msg, m.keys.Left):
		if prev, ok := m.col.Prev(); ok {
			m.col = prev
		}
	case key.Matches(msg, m.keys.Right):
		if next, ok := m.col.Next(); ok {
			m.col = next
		}
	case key.Matches(msg, m.keys.Click):
		if l, ok := m.cursorLabel(); ok {
			m.d.Click(l, m.col)
		}
	case key.Matches(msg, m.keys.Remove):
		m.removeEdge()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// updateInput forwards msg to the focused text input and reparses when its
// value changed.
func (m dashboardModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus == focusBoard {
		return m, nil
	}
	t := tier.Tier(m.focus)
	before := m.inputs[t].Value()
	var cmd tea.Cmd
	m.inputs[t], cmd = m.inputs[t].Update(msg)
	if v := m.inputs[t].Value(); v != before {
		_ = m.d.SetInput(t, v)
		m.clampRows()
	}
	return m, cmd
}

func (m dashboardModel) setFocus(f int) (tea.Model, tea.Cmd) {
	if f > focusBoard {
		f = focusBoard
	}
	m.focus = f
	var cmd tea.Cmd
	for _, t := range tier.All {
		if int(t) == f {
			cmd = m.inputs[t].Focus()
		} else {
			m.inputs[t].Blur()
		}
	}
	m.clampRows()
	return m, cmd
}

func (m dashboardModel) export() (tea.Model, tea.Cmd) {
	if m.exporting {
		return m, nil
	}
	m.exporting = true
	m.d.Notify(selection.SeverityInfo, "Exporting...")
	ch := m.d.ExportAsync(m.ctx)
	wait := func() tea.Msg { return exportDoneMsg(<-ch) }
	return m, tea.Batch(wait, m.spin.Tick)
}

func (m *dashboardModel) writeSnapshot() {
	text, err := m.d.Text()
	if err == nil {
		err = os.WriteFile(m.snapshotPath, []byte(text+"\n"), 0o644)
	}
	if err != nil {
		m.d.Notify(selection.SeverityError, "Write snapshot: "+errors.UserMessage(err))
		return
	}
	m.d.Notify(selection.SeveritySuccess, "Wrote snapshot to "+m.snapshotPath)
}

// removeEdge deletes the connection between the armed label and the label
// under the cursor.
func (m *dashboardModel) removeEdge() {
	p, armed := m.d.Selection()
	l, ok := m.cursorLabel()
	if !armed || !ok {
		m.d.Notify(selection.SeverityInfo, "Select one end, move to the other and press d")
		return
	}
	removed, err := m.d.RemoveEdge(p.Label, p.Tier, l, m.col)
	if err == nil && !removed {
		m.d.Notify(selection.SeverityInfo, fmt.Sprintf("No connection between %s and %s", p.Label, l))
	}
}

func (m *dashboardModel) moveRow(delta int) {
	n := len(m.d.Sets().Labels(m.col))
	if n == 0 {
		return
	}
	m.rows[m.col] = (m.rows[m.col] + delta + n) % n
}

func (m *dashboardModel) clampRows() {
	for _, t := range tier.All {
		n := len(m.d.Sets().Labels(t))
		m.rows[t] = max(0, min(m.rows[t], n-1))
	}
}

func (m dashboardModel) cursorLabel() (string, bool) {
	labels := m.d.Sets().Labels(m.col)
	if len(labels) == 0 {
		return "", false
	}
	return labels[m.rows[m.col]], true
}

// =============================================================================
// View
// =============================================================================

func (m dashboardModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(appName))
	b.WriteString("\n\n")
	for _, t := range tier.All {
		b.WriteString(m.inputs[t].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	box := boardBoxStyle
	if m.focus == focusBoard {
		box = boardFocusStyle
	}
	b.WriteString(box.Render(m.boardView()))
	b.WriteString("\n")
	b.WriteString(m.edgesView())
	b.WriteString("\n")

	st := m.d.Status()
	line := severityStyle(st.Severity).Render(st.Message)
	if m.exporting {
		line = m.spin.View() + " " + line
	}
	b.WriteString(line)
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m dashboardModel) boardView() string {
	cols := make([]string, 0, tier.Count)
	for _, t := range tier.All {
		var col strings.Builder
		col.WriteString(boardHeaderStyle.Render(strings.ToUpper(t.String())))
		col.WriteString("\n")
		labels := m.d.Sets().Labels(t)
		if len(labels) == 0 {
			col.WriteString(StyleDim.Render("(empty)"))
		}
		for i, l := range labels {
			cursor := m.focus == focusBoard && t == m.col && i == m.rows[t]
			col.WriteString(renderLabel(l, cursor, m.d.IsArmed(l, t)))
			col.WriteString("\n")
		}
		cols = append(cols, boardColumnStyle.Render(col.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func renderLabel(l string, cursor, armed bool) string {
	prefix := "  "
	if cursor {
		prefix = "▸ "
	}
	switch {
	case armed:
		return prefix + boardArmedStyle.Render(l)
	case cursor:
		return prefix + boardCursorStyle.Render(l)
	}
	return prefix + boardItemStyle.Render(l)
}

func (m dashboardModel) edgesView() string {
	drawn := m.d.Drawn()
	if len(drawn) == 0 {
		return StyleDim.Render("No connections")
	}
	lines := make([]string, 0, len(drawn))
	for _, e := range drawn {
		lines = append(lines, fmt.Sprintf("  %s %s %s", e.From.Label, StyleDim.Render(iconArrow), e.To.Label))
	}
	return StyleDim.Render(fmt.Sprintf("%d connections", len(drawn))) + "\n" + strings.Join(lines, "\n")
}
