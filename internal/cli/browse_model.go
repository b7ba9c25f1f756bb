package cli

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/bsolutions/shes/internal/cli/formatter"
	"github.com/bsolutions/shes/internal/domain"
	"github.com/bsolutions/shes/internal/events"
	"github.com/bsolutions/shes/internal/service"
	"github.com/bsolutions/shes/internal/tree"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type browseMode int

const (
	modeNavigate browseMode = iota
	modePickType
	modeName
	modeRename
	modeConfirmDelete
)

// opDoneMsg reports the outcome of an engine mutation started from the
// browser.
type opDoneMsg struct {
	status string
	err    error
}

type browseKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Parent key.Binding
	Add    key.Binding
	Rename key.Binding
	Delete key.Binding
	Quit   key.Binding
}

func defaultBrowseKeys() browseKeyMap {
	return browseKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "root")),
		Parent: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "parent")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add child")),
		Rename: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Delete: key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Parent, k.Add, k.Rename, k.Delete, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Top}}
}

// browseModel is an interactive view of one loaded project. The cursor is
// the engine's selection: key presses call Select and the model follows
// the SelectionChanged notifications it receives.
type browseModel struct {
	ctx    context.Context
	engine service.HierarchyService
	title  string

	// Filled by the subscription, drained on every Update.
	inbox       chan events.Event
	overflow    atomic.Bool
	unsubscribe func()

	rows     []*tree.Node
	cursor   int
	selected string

	mode       browseMode
	types      []domain.ItemType
	typeCursor int
	input      textinput.Model

	keys   browseKeyMap
	help   help.Model
	status string
	err    error
	height int

	quitting bool
}

func newBrowseModel(ctx context.Context, engine service.HierarchyService, title string) *browseModel {
	ti := textinput.New()
	ti.CharLimit = 120
	ti.Prompt = "› "

	m := &browseModel{
		ctx:    ctx,
		engine: engine,
		title:  title,
		inbox:  make(chan events.Event, 64),
		input:  ti,
		keys:   defaultBrowseKeys(),
		help:   help.New(),
	}
	m.unsubscribe = engine.Subscribe(events.SubscriberFunc(func(e events.Event) {
		select {
		case m.inbox <- e:
		default:
			m.overflow.Store(true)
		}
	}))
	m.rebuild()
	if sel := engine.Selection(); sel != nil {
		m.selected = sel.ID()
	}
	m.syncCursor()
	return m
}

func (m *browseModel) Init() tea.Cmd { return nil }

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.drainEvents()
	return m, cmd
}

func (m *browseModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.help.Width = msg.Width
		return nil

	case opDoneMsg:
		m.mode = modeNavigate
		m.err = msg.err
		m.status = msg.status
		return nil

	case tea.QuitMsg:
		m.quit()
		return nil

	case tea.KeyMsg:
		switch m.mode {
		case modePickType:
			return m.updatePickType(msg)
		case modeName, modeRename:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
		return m.updateNavigate(msg)
	}
	return nil
}

func (m *browseModel) updateNavigate(msg tea.KeyMsg) tea.Cmd {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quit()
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveTo(m.cursor - 1)
	case key.Matches(msg, m.keys.Down):
		m.moveTo(m.cursor + 1)
	case key.Matches(msg, m.keys.Top):
		m.moveTo(0)
	case key.Matches(msg, m.keys.Parent):
		if n := m.current(); n != nil && n.Parent() != nil {
			m.engine.Select(n.Parent())
		}
	case key.Matches(msg, m.keys.Add):
		n := m.current()
		if n == nil {
			return nil
		}
		m.types = m.engine.AllowedChildTypesFor(n)
		if len(m.types) == 0 {
			m.status = fmt.Sprintf("%s accepts no children", n.Type())
			return nil
		}
		m.typeCursor = 0
		m.mode = modePickType
	case key.Matches(msg, m.keys.Rename):
		n := m.current()
		if n == nil {
			return nil
		}
		m.input.SetValue(n.Name())
		m.input.CursorEnd()
		m.mode = modeRename
		return m.input.Focus()
	case key.Matches(msg, m.keys.Delete):
		n := m.current()
		if n == nil {
			return nil
		}
		if n.IsRoot() {
			m.status = "the root item cannot be deleted"
			return nil
		}
		m.mode = modeConfirmDelete
	}
	return nil
}

func (m *browseModel) updatePickType(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNavigate
	case tea.KeyUp:
		if m.typeCursor > 0 {
			m.typeCursor--
		}
	case tea.KeyDown:
		if m.typeCursor < len(m.types)-1 {
			m.typeCursor++
		}
	case tea.KeyEnter:
		m.input.SetValue("")
		m.mode = modeName
		return m.input.Focus()
	}
	return nil
}

func (m *browseModel) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = modeNavigate
		return nil
	case tea.KeyEnter:
		m.input.Blur()
		name := m.input.Value()
		target := m.current()
		if target == nil {
			m.mode = modeNavigate
			return nil
		}
		if m.mode == modeRename {
			return m.rename(target, name)
		}
		return m.add(target, m.types[m.typeCursor], name)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *browseModel) updateConfirmDelete(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		if n := m.current(); n != nil {
			return m.delete(n)
		}
	}
	m.mode = modeNavigate
	return nil
}

func (m *browseModel) add(parent *tree.Node, t domain.ItemType, name string) tea.Cmd {
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		node, err := engine.AddChild(ctx, parent, t, name)
		if err != nil {
			return opDoneMsg{err: err}
		}
		engine.Select(node)
		return opDoneMsg{status: "added " + nodeLabel(node)}
	}
}

func (m *browseModel) rename(node *tree.Node, name string) tea.Cmd {
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		renamed, err := engine.Rename(ctx, node, name)
		if err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: "renamed to " + nodeLabel(renamed)}
	}
}

func (m *browseModel) delete(node *tree.Node) tea.Cmd {
	engine, ctx := m.engine, m.ctx
	size := node.Size()
	return func() tea.Msg {
		if err := engine.DeleteSubtree(ctx, node); err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: fmt.Sprintf("deleted %s (%d %s)", nodeLabel(node), size, plural(size, "item"))}
	}
}

func (m *browseModel) quit() {
	if m.quitting {
		return
	}
	m.quitting = true
	m.unsubscribe()
}

// moveTo selects the row at i, clamped to the visible rows.
func (m *browseModel) moveTo(i int) {
	if len(m.rows) == 0 {
		return
	}
	i = max(0, min(i, len(m.rows)-1))
	m.engine.Select(m.rows[i])
}

func (m *browseModel) current() *tree.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func (m *browseModel) drainEvents() {
	for {
		select {
		case e := <-m.inbox:
			switch e.Type {
			case events.TreeChanged:
				m.rebuild()
			case events.SelectionChanged:
				m.selected = e.NodeID()
			}
			m.syncCursor()
		default:
			// Dropped events force a full resync.
			if m.overflow.Swap(false) {
				m.rebuild()
				m.selected = ""
				if sel := m.engine.Selection(); sel != nil {
					m.selected = sel.ID()
				}
				m.syncCursor()
			}
			return
		}
	}
}

func (m *browseModel) rebuild() {
	m.rows = m.rows[:0]
	if root := m.engine.Root(); root != nil {
		root.Walk(func(n *tree.Node) bool {
			m.rows = append(m.rows, n)
			return true
		})
	}
}

func (m *browseModel) syncCursor() {
	for i, n := range m.rows {
		if n.ID() == m.selected {
			m.cursor = i
			return
		}
	}
	m.cursor = 0
}

func (m *browseModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(formatter.Header(m.title) + "\n\n")

	lines := strings.Split(strings.TrimRight(
		formatter.FormatHierarchy(m.engine.Root(), m.selected), "\n"), "\n")
	b.WriteString(strings.Join(m.window(lines), "\n") + "\n\n")

	switch m.mode {
	case modePickType:
		b.WriteString(formatter.Bold("Add under "+m.current().Name()) + "\n")
		for i, t := range m.types {
			marker := "  "
			if i == m.typeCursor {
				marker = formatter.StyleYellowBold.Render("▶ ")
			}
			b.WriteString(marker + formatter.TypeBadge(t) + "\n")
		}
	case modeName:
		b.WriteString(formatter.Bold("New "+string(m.types[m.typeCursor])+" name") + "\n" + m.input.View() + "\n")
	case modeRename:
		b.WriteString(formatter.Bold("Rename") + "\n" + m.input.View() + "\n")
	case modeConfirmDelete:
		n := m.current()
		b.WriteString(formatter.StyleRed.Render(fmt.Sprintf("Delete %s and %d %s below it? [y/N]",
			nodeLabel(n), n.Size()-1, plural(n.Size()-1, "item"))) + "\n")
	default:
		switch {
		case m.err != nil:
			b.WriteString(formatter.StyleRed.Render(m.err.Error()) + "\n")
		case m.status != "":
			b.WriteString(formatter.StyleGreen.Render(m.status) + "\n")
		}
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

// window keeps the cursor row visible when the tree is taller than the
// terminal.
func (m *browseModel) window(lines []string) []string {
	room := m.height - 8
	if m.height == 0 || room <= 0 || len(lines) <= room {
		return lines
	}
	start := max(0, m.cursor-room/2)
	end := min(len(lines), start+room)
	start = max(0, end-room)
	return lines[start:end]
}
