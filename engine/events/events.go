// Package events implements single-pass dispatch of runtime events to
// subscribed handlers. Handlers observe; they cannot emit further events
// into the pass they are called from.
package events

import "github.com/nathoo/storyloom/types"

// Event types emitted by the engine and player.
const (
	PassageEntered   = "passage_entered"
	ChoiceSelected   = "choice_selected"
	StoryEnded       = "story_ended"
	GraphChanged     = "graph_changed"
	ExpressionFailed = "expression_failed"
)

// Handler receives one event.
type Handler func(types.Event)

type subscription struct {
	eventType string
	handler   Handler
}

// Bus fans events out to handlers in subscription order.
type Bus struct {
	subs []subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for events of the given type. An empty type
// matches every event.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.subs = append(b.subs, subscription{eventType: eventType, handler: h})
}

// Dispatch delivers each event, in order, to every matching handler.
// A nil bus drops events.
func (b *Bus) Dispatch(events ...types.Event) {
	if b == nil {
		return
	}
	subs := b.subs
	for _, event := range events {
		for _, s := range subs {
			if s.eventType != "" && s.eventType != event.Type {
				continue
			}
			s.handler(event)
		}
	}
}

// Recorder collects every event it sees. Useful for trace output.
type Recorder struct {
	Events []types.Event
}

// Record is a Handler.
func (r *Recorder) Record(e types.Event) {
	r.Events = append(r.Events, e)
}

// Drain returns and clears the collected events.
func (r *Recorder) Drain() []types.Event {
	out := r.Events
	r.Events = nil
	return out
}
