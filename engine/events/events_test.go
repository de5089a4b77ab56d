package events

import (
	"testing"

	"github.com/nathoo/storyloom/types"
)

func TestDispatch_MatchesEventType(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(PassageEntered, func(e types.Event) {
		got = append(got, "entered:"+e.Data["passage"].(string))
	})
	bus.Subscribe(StoryEnded, func(e types.Event) {
		got = append(got, "ended")
	})

	bus.Dispatch(types.Event{Type: PassageEntered, Data: map[string]any{"passage": "hall"}})

	if len(got) != 1 || got[0] != "entered:hall" {
		t.Errorf("got %v, want [entered:hall]", got)
	}
}

func TestDispatch_WildcardAndOrder(t *testing.T) {
	bus := NewBus()
	var order []string
	bus.Subscribe("", func(e types.Event) { order = append(order, "all:"+e.Type) })
	bus.Subscribe(ChoiceSelected, func(e types.Event) { order = append(order, "choice") })

	bus.Dispatch(
		types.Event{Type: ChoiceSelected},
		types.Event{Type: StoryEnded},
	)

	want := []string{"all:choice_selected", "choice", "all:story_ended"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestDispatch_NoMatch(t *testing.T) {
	bus := NewBus()
	called := false
	bus.Subscribe(GraphChanged, func(types.Event) { called = true })
	bus.Dispatch(types.Event{Type: PassageEntered})
	if called {
		t.Error("handler called for non-matching event")
	}
}

func TestDispatch_NilBus(t *testing.T) {
	var bus *Bus
	bus.Dispatch(types.Event{Type: StoryEnded}) // must not panic
}

func TestDispatch_SubscribeDuringDispatch(t *testing.T) {
	bus := NewBus()
	late := 0
	bus.Subscribe("", func(types.Event) {
		bus.Subscribe("", func(types.Event) { late++ })
	})
	bus.Dispatch(types.Event{Type: StoryEnded})
	if late != 0 {
		t.Errorf("handler added mid-dispatch ran %d times, want 0", late)
	}
}

func TestRecorder(t *testing.T) {
	bus := NewBus()
	rec := &Recorder{}
	bus.Subscribe("", rec.Record)
	bus.Dispatch(types.Event{Type: PassageEntered}, types.Event{Type: StoryEnded})

	got := rec.Drain()
	if len(got) != 2 || got[1].Type != StoryEnded {
		t.Errorf("recorded %+v", got)
	}
	if len(rec.Events) != 0 {
		t.Error("Drain did not clear")
	}
}
