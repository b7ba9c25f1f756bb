// Package teatest drives bubbletea models synchronously in tests.
//
// The Driver stands in for tea.Program: every message goes straight through
// Update and the returned Cmds are executed and fed back until the queue is
// empty. Models that start work in a Cmd (store writes, engine mutations)
// therefore see the resulting message before a Press call returns, so
// assertions can follow a key press directly.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainSteps bounds how many messages one Send may produce.
const MaxDrainSteps = 256

// cmdTimeout separates quick Cmds from timer-driven ones such as cursor
// blinks, which are dropped.
const cmdTimeout = 10 * time.Millisecond

// Driver is a synchronous harness for a tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a tea.QuitMsg is produced. The runtime normally
	// swallows it, so the model never sees one.
	Quitting bool

	// Drained records every message produced by a Cmd, in delivery order.
	Drained []tea.Msg
}

// Option configures a Driver.
type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		updated, _ := d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
		d.Model = updated
	}
}

// New wraps model. Call DrainInit to run the model's Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DrainInit runs Init and everything it produces.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drain(d.Model.Init())
}

// Send dispatches msg and drains the resulting Cmds. Messages sent after
// the model quit are ignored.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	updated, cmd := d.Model.Update(msg)
	d.Model = updated
	d.drain(cmd)
}

var namedKeys = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEsc,
	"backspace": tea.KeyBackspace,
	"tab":       tea.KeyTab,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"ctrl+c":    tea.KeyCtrlC,
}

// Press sends each key in turn. Names from the key table ("enter", "down",
// "ctrl+c") map to their key type; anything else is sent as runes.
func (d *Driver) Press(keys ...string) {
	d.T.Helper()
	for _, k := range keys {
		if kt, ok := namedKeys[k]; ok {
			d.Send(tea.KeyMsg{Type: kt})
			continue
		}
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

// PressKey sends a single rune.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Press(string(r))
}

func (d *Driver) PressEnter() { d.T.Helper(); d.Press("enter") }
func (d *Driver) PressEsc()   { d.T.Helper(); d.Press("esc") }
func (d *Driver) PressUp()    { d.T.Helper(); d.Press("up") }
func (d *Driver) PressDown()  { d.T.Helper(); d.Press("down") }

// PressBackspace sends Backspace n times.
func (d *Driver) PressBackspace(n int) {
	d.T.Helper()
	for range n {
		d.Press("backspace")
	}
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

// View returns the model's current rendering.
func (d *Driver) View() string {
	return d.Model.View()
}

// drain runs queued Cmds breadth first, feeding each message back through
// Update and queueing whatever that returns.
func (d *Driver) drain(first tea.Cmd) {
	d.T.Helper()
	queue := []tea.Cmd{first}
	for steps := 0; len(queue) > 0; steps++ {
		if steps >= MaxDrainSteps {
			d.T.Logf("teatest: stopped draining after %d steps", MaxDrainSteps)
			return
		}
		cmd := queue[0]
		queue = queue[1:]
		if cmd == nil {
			continue
		}
		msg, ok := runCmd(cmd)
		if !ok || msg == nil || isBlink(msg) {
			continue
		}
		if batch, isBatch := msg.(tea.BatchMsg); isBatch {
			queue = append(queue, batch...)
			continue
		}
		d.Drained = append(d.Drained, msg)
		updated, next := d.Model.Update(msg)
		d.Model = updated
		if _, quit := msg.(tea.QuitMsg); quit {
			d.Quitting = true
			return
		}
		queue = append(queue, next)
	}
}

// runCmd executes cmd, giving up after cmdTimeout.
func runCmd(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(cmdTimeout):
		return nil, false
	}
}

// isBlink matches the unexported blink messages of bubbles/cursor, which
// would otherwise chain into timer Cmds.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
