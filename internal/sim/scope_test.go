package sim

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"radar-fusion-sim/internal/config"
	"radar-fusion-sim/internal/contact"
	"radar-fusion-sim/internal/fusion"
	"radar-fusion-sim/internal/network"
	"radar-fusion-sim/internal/telemetry"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestScopeUIMessages(t *testing.T) {
	p := &fakeProgram{}
	u := &ScopeUI{program: p}
	ev := telemetry.EventRow{
		EventType: telemetry.EventNodeTransition,
		NodeID:    "SR-20",
		From:      "online",
		To:        "offline",
		Timestamp: time.Unix(0, 0).UTC(),
	}
	if err := u.WriteEvents([]telemetry.EventRow{ev}); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	msg, ok := p.msgs[0].(eventMsg)
	if !ok {
		t.Fatalf("expected eventMsg, got %T", p.msgs[0])
	}
	if !strings.Contains(msg.line, "node=SR-20 online->offline") || !strings.Contains(msg.line, colorRed) {
		t.Fatalf("unexpected event line %q", msg.line)
	}
	u.SetAdminStatus(true)
	if _, ok := p.msgs[1].(adminMsg); !ok {
		t.Fatalf("expected adminMsg, got %T", p.msgs[1])
	}
	u.SetSource(scopeSnapshot)
	if _, ok := p.msgs[2].(sourceMsg); !ok {
		t.Fatalf("expected sourceMsg, got %T", p.msgs[2])
	}
	if w := u.Writers(); w.Events == nil || w.Tracks != nil {
		t.Fatalf("scope should only consume events: %+v", w)
	}
}

func scopeSnapshot() *Snapshot {
	return &Snapshot{
		Tick:      3,
		RadarMode: contact.ModeSurveillance,
		Fused: []fusion.FusedContact{
			{Contact: contact.Contact{ID: "HST-01", IFF: contact.IFFHostile, Distance: 80}, Metadata: fusion.Metadata{NumSources: 3, FusionQuality: 0.9}},
			{Contact: contact.Contact{ID: "CIV-02", Distance: 12}, Metadata: fusion.Metadata{NumSources: 1, FusionQuality: 0.5}},
		},
		Nodes: []network.NodeState{
			{ID: "LR-01", IsMaster: true, Status: network.StatusOnline},
			{ID: "SR-15", Status: network.StatusOffline},
		},
	}
}

func TestScopeSnapshotUpdatesTable(t *testing.T) {
	m := newScopeModel(config.Default(), scopeSnapshot)
	if m.Init() == nil {
		t.Fatalf("Init should schedule a snapshot pull")
	}

	mi, cmd := m.Update(snapshotMsg{snap: scopeSnapshot()})
	m = mi.(scopeModel)
	if cmd == nil {
		t.Fatalf("snapshot should schedule the next pull")
	}
	rows := m.table.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0] != "CIV-02" || rows[1][0] != "HST-01" {
		t.Fatalf("rows not sorted by distance: %v", rows)
	}
	if rows[1][7] != "3" {
		t.Fatalf("source count column = %q", rows[1][7])
	}
	if !strings.Contains(m.renderStatus(), "tick=3") {
		t.Fatalf("status missing tick: %q", m.renderStatus())
	}
	nodes := m.renderNodes()
	if !strings.Contains(nodes, "LR-01*") || !strings.Contains(nodes, "SR-15") {
		t.Fatalf("node strip = %q", nodes)
	}

	// a nil snapshot keeps the previous picture
	mi, _ = m.Update(snapshotMsg{})
	m = mi.(scopeModel)
	if m.snap == nil || len(m.table.Rows()) != 2 {
		t.Fatalf("nil snapshot cleared the scope")
	}
}

func TestScopeWaitsForFirstSnapshot(t *testing.T) {
	m := newScopeModel(nil, nil)
	if m.Init() != nil {
		t.Fatalf("no source, no polling")
	}
	if !strings.Contains(m.View(), "waiting for first tick") {
		t.Fatalf("unexpected view: %q", m.View())
	}
	mi, cmd := m.Update(sourceMsg{fn: scopeSnapshot})
	m = mi.(scopeModel)
	if cmd == nil || m.source == nil {
		t.Fatalf("attaching a source should start polling")
	}
	// a second source must not start a second poll loop
	if _, cmd := m.Update(sourceMsg{fn: scopeSnapshot}); cmd != nil {
		t.Fatalf("source replaced with an extra poll")
	}
}

func TestScopeWrapToggle(t *testing.T) {
	m := newScopeModel(config.Default(), nil)
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 40})
	m = mi.(scopeModel)
	mi, _ = m.Update(eventMsg{line: "one two three four five six seven"})
	m = mi.(scopeModel)
	if strings.Contains(m.eventContent(), "\n") {
		t.Fatalf("expected a single line before wrap")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	m = mi.(scopeModel)
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	if !strings.Contains(m.eventContent(), "\n") {
		t.Fatalf("expected wrapped event content")
	}
}

func TestScopeKeys(t *testing.T) {
	m := newScopeModel(config.Default(), nil)
	mi, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	m = mi.(scopeModel)
	if !m.help || !strings.Contains(m.View(), "Key Bindings") {
		t.Fatalf("help view not shown")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = mi.(scopeModel)
	if m.help {
		t.Fatalf("help not closed")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}

func TestScopeLogLimit(t *testing.T) {
	m := newScopeModel(config.Default(), nil)
	for i := 0; i < maxScopeLogs+10; i++ {
		mi, _ := m.Update(eventMsg{line: "x"})
		m = mi.(scopeModel)
	}
	if len(m.logs) != maxScopeLogs {
		t.Fatalf("logs = %d, want %d", len(m.logs), maxScopeLogs)
	}
}
