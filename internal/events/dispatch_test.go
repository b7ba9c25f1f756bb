package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_FlushDeliversInQueueOrder(t *testing.T) {
	b := NewBridge()
	rec := &recorder{}
	b.Subscribe(rec)
	d := NewDispatcher(b)

	d.Enqueue(TreeChanged, "p", nil)
	d.Enqueue(SelectionChanged, "p", nil)
	assert.Empty(t, rec.events, "nothing is delivered before Flush")
	assert.Equal(t, 2, d.Pending())

	d.Flush()
	assert.Zero(t, d.Pending())
	if assert.Len(t, rec.events, 2) {
		assert.Equal(t, TreeChanged, rec.events[0].Type)
		assert.Equal(t, SelectionChanged, rec.events[1].Type)
	}
}

func TestDispatcher_HandlerMayEnqueueAndFlush(t *testing.T) {
	b := NewBridge()
	d := NewDispatcher(b)
	var got []string
	b.Subscribe(SubscriberFunc(func(e Event) {
		got = append(got, e.ProjectID)
		if e.ProjectID == "first" {
			d.Enqueue(SelectionChanged, "nested", nil)
			d.Flush()
			got = append(got, "handler returned")
		}
	}))

	d.Enqueue(TreeChanged, "first", nil)
	d.Enqueue(TreeChanged, "second", nil)
	d.Flush()

	assert.Equal(t, []string{"first", "handler returned", "second", "nested"}, got)
}

func TestDispatcher_RecoversAfterHandlerPanic(t *testing.T) {
	b := NewBridge()
	d := NewDispatcher(b)
	calls := 0
	b.Subscribe(SubscriberFunc(func(Event) {
		calls++
		if calls == 1 {
			panic("boom")
		}
	}))

	d.Enqueue(TreeChanged, "p", nil)
	assert.Panics(t, d.Flush)

	d.Enqueue(TreeChanged, "p", nil)
	d.Flush()
	assert.Equal(t, 2, calls)
}
