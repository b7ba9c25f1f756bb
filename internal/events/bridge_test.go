package events

import (
	"bytes"
	"sync"
	"testing"

	"github.com/bsolutions/shes/internal/testutil"
	"github.com/bsolutions/shes/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	name   string
	log    *[]string
	events []Event
}

func (r *recorder) Handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if r.log != nil {
		*r.log = append(*r.log, r.name+":"+string(e.Type))
	}
}

func scenarioRoot(t *testing.T) *tree.Node {
	t.Helper()
	tr, err := tree.Build(testutil.ScenarioItems("p"))
	require.NoError(t, err)
	return tr.Root()
}

func TestBridge_DeliversInRegistrationOrder(t *testing.T) {
	b := NewBridge()
	var order []string
	first := &recorder{name: "first", log: &order}
	second := &recorder{name: "second", log: &order}
	b.Subscribe(first)
	b.Subscribe(second)

	root := scenarioRoot(t)
	b.Publish(TreeChanged, "p", root)
	b.Publish(SelectionChanged, "p", root)

	assert.Equal(t, []string{
		"first:tree_changed", "second:tree_changed",
		"first:selection_changed", "second:selection_changed",
	}, order)
	require.Len(t, first.events, 2)
	assert.Equal(t, "1", first.events[0].NodeID())
	assert.Equal(t, "p", first.events[0].ProjectID)
	assert.False(t, first.events[0].Timestamp.IsZero())
}

func TestBridge_NoReplayForLateSubscribers(t *testing.T) {
	b := NewBridge()
	b.Publish(SelectionChanged, "p", nil)

	late := &recorder{}
	b.Subscribe(late)
	assert.Empty(t, late.events)

	b.Publish(SelectionChanged, "p", nil)
	require.Len(t, late.events, 1)
	assert.Empty(t, late.events[0].NodeID())
}

func TestBridge_Unsubscribe(t *testing.T) {
	b := NewBridge()
	a := &recorder{}
	c := &recorder{}
	unsubA := b.Subscribe(a)
	b.Subscribe(c)
	assert.Equal(t, 2, b.SubscriberCount())

	unsubA()
	unsubA()
	assert.Equal(t, 1, b.SubscriberCount())

	b.Publish(TreeChanged, "p", nil)
	assert.Empty(t, a.events)
	assert.Len(t, c.events, 1)
}

func TestBridge_HandlerMayUnsubscribeDuringDispatch(t *testing.T) {
	b := NewBridge()
	var unsub func()
	calls := 0
	unsub = b.Subscribe(SubscriberFunc(func(Event) {
		calls++
		unsub()
	}))
	tail := &recorder{}
	b.Subscribe(tail)

	b.Publish(TreeChanged, "p", nil)
	b.Publish(TreeChanged, "p", nil)

	assert.Equal(t, 1, calls)
	assert.Len(t, tail.events, 2)
}

func TestLogSubscriber(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextLogSubscriber(&buf)

	s.Handle(Event{Type: SelectionChanged, ProjectID: "p", Node: scenarioRoot(t)})

	out := buf.String()
	assert.Contains(t, out, "msg=selection_changed")
	assert.Contains(t, out, "project_id=p")
	assert.Contains(t, out, "node_id=1")
	assert.Contains(t, out, "node_type=Building")
}
