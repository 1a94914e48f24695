package sim

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"radar-fusion-sim/internal/config"
	"radar-fusion-sim/internal/fusion"
	"radar-fusion-sim/internal/network"
	"radar-fusion-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// snapshotMsg carries the latest published snapshot.
type snapshotMsg struct{ snap *Snapshot }

// eventMsg carries a formatted event line for the log viewport.
type eventMsg struct{ line string }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

// sourceMsg attaches the snapshot source once the simulator exists.
type sourceMsg struct{ fn func() *Snapshot }

const (
	maxScopeLogs   = 1000
	minEventLines  = 3
	eventHeightPct = 0.25
)

// ScopeUI renders the radar picture with a bubbletea program. It pulls
// snapshots at the render interval and never blocks the tick goroutine.
type ScopeUI struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewScopeUI starts the scope. It shows nothing until SetSource is called.
// Quitting the scope interrupts the process so the simulator shuts down
// with it.
func NewScopeUI(cfg *config.SimulationConfig) *ScopeUI {
	u := &ScopeUI{done: make(chan struct{})}
	u.sendSignal.Store(true)
	p := tea.NewProgram(newScopeModel(cfg, nil), tea.WithAltScreen())
	u.program = p
	go func() {
		_, _ = p.Run()
		close(u.done)
		if u.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return u
}

// WriteEvent implements EventWriter.
func (u *ScopeUI) WriteEvent(ev telemetry.EventRow) error {
	u.program.Send(eventMsg{line: eventLine(ev)})
	return nil
}

// WriteEvents outputs multiple events.
func (u *ScopeUI) WriteEvents(rows []telemetry.EventRow) error {
	for _, ev := range rows {
		_ = u.WriteEvent(ev)
	}
	return nil
}

// Writers returns the streams the scope consumes.
func (u *ScopeUI) Writers() Writers { return Writers{Events: u} }

// SetSource registers the snapshot source, usually Simulator.Snapshot.
func (u *ScopeUI) SetSource(fn func() *Snapshot) {
	u.program.Send(sourceMsg{fn: fn})
}

// SetAdminStatus updates the admin UI indicator.
func (u *ScopeUI) SetAdminStatus(active bool) {
	u.program.Send(adminMsg{active: active})
}

// Close shuts down the program and waits for the terminal to be restored.
func (u *ScopeUI) Close() error {
	u.sendSignal.Store(false)
	if u.program != nil {
		u.program.Send(tea.Quit())
	}
	if u.done != nil {
		<-u.done
	}
	return nil
}

func eventLine(ev telemetry.EventRow) string {
	color := colorBlue
	switch ev.EventType {
	case telemetry.EventNodeTransition:
		color = colorYellow
		if ev.To == string(network.StatusOffline) {
			color = colorRed
		}
	case telemetry.EventContactSpawned:
		color = colorCyan
	case telemetry.EventContactNeutralized:
		color = colorMagenta
	}
	line := fmt.Sprintf("%s[%s]%s %s%s%s", colorGray, ev.Timestamp.Format("15:04:05"), colorReset, color, strings.ToUpper(ev.EventType), colorReset)
	if ev.NodeID != "" {
		line += fmt.Sprintf(" node=%s %s->%s", ev.NodeID, ev.From, ev.To)
	}
	if ev.ContactID != "" {
		line += " contact=" + ev.ContactID
	}
	if ev.Detail != "" {
		line += " " + ev.Detail
	}
	return line
}

type scopeModel struct {
	cfg      *config.SimulationConfig
	source   func() *Snapshot
	interval time.Duration
	snap     *Snapshot
	table    table.Model
	vp       viewport.Model
	logs     []string
	wrap     bool
	help     bool
	admin    bool
	width    int
	height   int
}

func newScopeModel(cfg *config.SimulationConfig, source func() *Snapshot) scopeModel {
	if cfg == nil {
		cfg = config.Default()
	}
	cols := []table.Column{
		{Title: "Track", Width: 10},
		{Title: "Class", Width: 20},
		{Title: "IFF", Width: 9},
		{Title: "Brg", Width: 6},
		{Title: "Dist km", Width: 8},
		{Title: "Alt m", Width: 7},
		{Title: "Spd", Width: 6},
		{Title: "Src", Width: 4},
		{Title: "Quality", Width: 7},
	}
	interval := cfg.Intervals.Render
	if interval <= 0 {
		interval = config.Default().Intervals.Render
	}
	return scopeModel{
		cfg:      cfg,
		source:   source,
		interval: interval,
		table:    table.New(table.WithColumns(cols), table.WithHeight(10), table.WithFocused(true)),
		vp:       viewport.New(0, minEventLines),
	}
}

// poll schedules the next snapshot pull.
func (m scopeModel) poll() tea.Cmd {
	if m.source == nil {
		return nil
	}
	src := m.source
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return snapshotMsg{snap: src()} })
}

func (m scopeModel) Init() tea.Cmd { return m.poll() }

func (m scopeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.layout()
		m.refreshEvents()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshEvents()
			return m, nil
		case "h", "?":
			m.help = true
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	case snapshotMsg:
		if msg.snap != nil {
			m.snap = msg.snap
			m.table.SetRows(trackRows(msg.snap.Fused))
			m.layout()
		}
		return m, m.poll()
	case eventMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxScopeLogs {
			m.logs = m.logs[len(m.logs)-maxScopeLogs:]
		}
		m.refreshEvents()
	case adminMsg:
		m.admin = msg.active
	case sourceMsg:
		polling := m.source != nil
		m.source = msg.fn
		if !polling {
			return m, m.poll()
		}
	}
	return m, nil
}

// trackRows lists fused contacts closest first.
func trackRows(fused []fusion.FusedContact) []table.Row {
	idx := make([]int, len(fused))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return fused[idx[a]].Distance < fused[idx[b]].Distance })
	rows := make([]table.Row, 0, len(fused))
	for _, i := range idx {
		f := fused[i]
		rows = append(rows, table.Row{
			f.ID,
			string(f.Classification),
			string(f.IFF),
			fmt.Sprintf("%.1f", f.Bearing),
			fmt.Sprintf("%.1f", f.Distance),
			fmt.Sprintf("%.0f", f.Altitude),
			fmt.Sprintf("%.0f", f.Speed),
			fmt.Sprintf("%d", f.Metadata.NumSources),
			fmt.Sprintf("%.2f", f.Metadata.FusionQuality),
		})
	}
	return rows
}

func (m *scopeModel) layout() {
	if m.height == 0 {
		return
	}
	events := int(float64(m.height) * eventHeightPct)
	if events < minEventLines {
		events = minEventLines
	}
	m.vp.Height = events
	fixed := lipgloss.Height(m.renderStatus()) + lipgloss.Height(m.renderNodes()) + lipgloss.Height(m.renderBottom())
	// four dividers and the events label
	h := m.height - fixed - events - 5
	if h < 2 {
		h = 2
	}
	m.table.SetHeight(h)
}

func (m scopeModel) eventContent() string {
	if len(m.logs) == 0 {
		return "none"
	}
	if !m.wrap || m.vp.Width <= 0 {
		return strings.Join(m.logs, "\n")
	}
	lines := make([]string, len(m.logs))
	for i, l := range m.logs {
		lines[i] = wordwrap.String(l, m.vp.Width)
	}
	return strings.Join(lines, "\n")
}

func (m *scopeModel) refreshEvents() {
	m.vp.SetContent(m.eventContent())
	m.vp.GotoBottom()
}

func (m scopeModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.width)
	return strings.Join([]string{
		m.renderStatus(),
		divider,
		m.table.View(),
		divider,
		m.renderNodes(),
		divider,
		"Events:",
		m.vp.View(),
		divider,
		m.renderBottom(),
	}, "\n")
}

func (m scopeModel) renderStatus() string {
	if m.snap == nil {
		return fmt.Sprintf("%sSCOPE%s waiting for first tick", colorBlue, colorReset)
	}
	s := m.snap
	return fmt.Sprintf("%sSCOPE%s %stick=%d%s %smode=%s%s %scontacts=%d%s %shostile=%d%s %sfused=%d%s %squality=%.2f%s %scoverage=%.0f%%%s %slatency=%dms%s",
		colorBlue, colorReset,
		colorGray, s.Tick, colorReset,
		colorWhite, s.RadarMode, colorReset,
		colorCyan, s.ContactStats.Total, colorReset,
		colorRed, s.ContactStats.Hostile, colorReset,
		colorGreen, s.Fusion.FusedContacts, colorReset,
		colorMagenta, s.Fusion.AvgFusionQuality, colorReset,
		colorYellow, s.Network.CoveragePct, colorReset,
		colorGray, s.Network.NetworkLatencyMS, colorReset)
}

var nodeStatusColor = map[network.Status]lipgloss.Color{
	network.StatusOnline:   lipgloss.Color("10"),
	network.StatusDegraded: lipgloss.Color("11"),
	network.StatusOffline:  lipgloss.Color("9"),
}

// renderNodes draws one indicator per node; the master is marked with '*'.
func (m scopeModel) renderNodes() string {
	if m.snap == nil || len(m.snap.Nodes) == 0 {
		return "Nodes: none"
	}
	parts := make([]string, 0, len(m.snap.Nodes))
	for _, n := range m.snap.Nodes {
		id := n.ID
		if n.IsMaster {
			id += "*"
		}
		dot := lipgloss.NewStyle().Foreground(nodeStatusColor[n.Status]).Render("●")
		parts = append(parts, dot+id)
	}
	line := "Nodes: " + strings.Join(parts, " ")
	if m.width > 0 {
		line = wordwrap.String(line, m.width)
	}
	return line
}

func indicator(on bool) string {
	c := lipgloss.Color("9")
	if on {
		c = lipgloss.Color("10")
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func (m scopeModel) renderBottom() string {
	return fmt.Sprintf("Site %s | Admin UI %s | Wrap %s | h help | q quit", m.cfg.SiteID, indicator(m.admin), indicator(m.wrap))
}

func (m scopeModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q        quit",
		" w        toggle wrap for the event log",
		" up/down  move through fused tracks",
		" h/?      toggle this help view",
	}
	return strings.Join(lines, "\n")
}
