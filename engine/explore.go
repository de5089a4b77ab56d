package engine

import (
	"sort"

	"github.com/nathoo/storyloom/engine/events"
	"github.com/nathoo/storyloom/types"
)

// unvisitedWeight biases random walks toward passages not seen yet.
const unvisitedWeight = 4

// ExpressionFailure is a condition or effect that failed during a walk.
type ExpressionFailure struct {
	Kind    string
	Expr    string
	Passage string
	Choice  int
	Error   string
}

// ExploreReport summarizes a batch of random walks.
type ExploreReport struct {
	Seed      int64
	Runs      int
	Draws     int64
	Visits    map[string]int // passage id -> times entered
	Endings   map[string]int // terminal id -> walks that ended there
	Truncated int            // walks stopped at the step limit
	Failures  []ExpressionFailure
}

// Unvisited returns graph passages no walk entered, sorted.
func (r ExploreReport) Unvisited(all []string) []string {
	var out []string
	for _, id := range all {
		if r.Visits[id] == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Explore plays the story runs times from the entry passage, picking
// choices at random with the given seed. Each walk stops at a terminal
// passage, a passage with no enabled choices, or after maxSteps choices.
// The walks use a private bus; the engine's subscribers see nothing.
func (e *Engine) Explore(seed int64, runs, maxSteps int) ExploreReport {
	rng := NewRNG(seed)
	report := ExploreReport{
		Seed:    seed,
		Runs:    runs,
		Visits:  map[string]int{},
		Endings: map[string]int{},
	}

	bus := events.NewBus()
	seen := map[ExpressionFailure]bool{}
	bus.Subscribe(events.PassageEntered, func(ev types.Event) {
		report.Visits[ev.Data["passage"].(string)]++
	})
	bus.Subscribe(events.ExpressionFailed, func(ev types.Event) {
		f := ExpressionFailure{
			Kind:    ev.Data["kind"].(string),
			Expr:    ev.Data["expr"].(string),
			Passage: ev.Data["passage"].(string),
			Choice:  ev.Data["choice"].(int),
			Error:   ev.Data["error"].(string),
		}
		if !seen[f] {
			seen[f] = true
			report.Failures = append(report.Failures, f)
		}
	})

	walker := &Engine{graph: e.graph, history: e.history, log: e.log, bus: bus, entry: e.entry}
	for run := 0; run < runs; run++ {
		p := walker.NewPlayer()
		for step := 0; ; step++ {
			v := p.View()
			if v.Terminal {
				report.Endings[v.PassageID]++
				break
			}
			if len(v.Choices) == 0 {
				report.Endings[v.PassageID]++
				break
			}
			if step >= maxSteps {
				report.Truncated++
				break
			}
			weights := make([]int, len(v.Choices))
			for i, c := range v.Choices {
				weights[i] = 1
				if report.Visits[c.Target] == 0 {
					weights[i] = unvisitedWeight
				}
			}
			if _, err := p.Choose(rng.Pick(weights)); err != nil {
				break
			}
		}
	}

	report.Draws = rng.Draws()
	sort.Slice(report.Failures, func(i, j int) bool {
		a, b := report.Failures[i], report.Failures[j]
		if a.Passage != b.Passage {
			return a.Passage < b.Passage
		}
		return a.Choice < b.Choice
	})
	return report
}
