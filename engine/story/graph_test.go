package story

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nathoo/storyloom/types"
)

// testGraph: start -> hall, start -> cellar (dangling), hall -> start, hall -> tower.
func testGraph() *Graph {
	g := New()
	g.Put("start", types.Passage{
		Text: "You wake.",
		Choices: []types.Choice{
			{Text: "Walk", Target: "hall"},
			{Text: "Descend", Target: "cellar"},
		},
		Position: &types.Position{X: 10, Y: 20},
	})
	g.Put("hall", types.Passage{
		Text: "A long hall.",
		Choices: []types.Choice{
			{Text: "Back", Target: "start"},
			{Text: "Climb", Target: "tower", Condition: "flags.hasKey"},
		},
	})
	g.Put("tower", types.Passage{Text: "Wind."})
	return g
}

func targets(g *Graph) map[string][]string {
	out := map[string][]string{}
	for _, id := range g.IDs() {
		p, _ := g.Get(id)
		for _, c := range p.Choices {
			out[id] = append(out[id], c.Target)
		}
	}
	return out
}

func TestPutAndGet(t *testing.T) {
	g := testGraph()
	p, ok := g.Get("hall")
	if !ok {
		t.Fatal("hall not found")
	}
	if p.ID != "hall" || p.Text != "A long hall." || len(p.Choices) != 2 {
		t.Errorf("unexpected passage %+v", p)
	}
	if _, ok := g.Get("nowhere"); ok {
		t.Error("expected nowhere to be absent")
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	g := testGraph()
	p, _ := g.Get("start")
	p.Choices[0].Target = "mutated"
	p.Position.X = 999

	again, _ := g.Get("start")
	if again.Choices[0].Target != "hall" {
		t.Error("mutating a returned passage changed the graph")
	}
	if again.Position.X != 10 {
		t.Error("mutating a returned position changed the graph")
	}
}

func TestPut_OverridesID(t *testing.T) {
	g := New()
	g.Put("a", types.Passage{ID: "wrong", Text: "x"})
	p, _ := g.Get("a")
	if p.ID != "a" {
		t.Errorf("ID = %q, want a", p.ID)
	}
	if err := g.Put("", types.Passage{}); !errors.Is(err, ErrEmptyID) {
		t.Errorf("Put empty id err = %v", err)
	}
}

func TestAdd_RejectsDuplicate(t *testing.T) {
	g := testGraph()
	if err := g.Add("hall", "again"); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
	if err := g.Add("garden", "Green."); err != nil {
		t.Fatal(err)
	}
	if !g.Has("garden") {
		t.Error("garden not added")
	}
}

func TestRename_LeavesChoicesDangling(t *testing.T) {
	g := testGraph()
	if err := g.Rename("hall", "corridor"); err != nil {
		t.Fatal(err)
	}
	if g.Has("hall") || !g.Has("corridor") {
		t.Fatalf("ids = %v", g.IDs())
	}
	p, _ := g.Get("corridor")
	if p.ID != "corridor" || p.Text != "A long hall." {
		t.Errorf("renamed passage = %+v", p)
	}
	start, _ := g.Get("start")
	if start.Choices[0].Target != "hall" {
		t.Errorf("choice target = %q, want hall (unchanged)", start.Choices[0].Target)
	}
}

func TestRename_Duplicate(t *testing.T) {
	g := testGraph()
	before := targets(g)
	err := g.Rename("hall", "tower")
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
	if !reflect.DeepEqual(before, targets(g)) || !g.Has("hall") || !g.Has("tower") {
		t.Error("failed rename changed the graph")
	}
}

func TestRename_SameIDAndMissing(t *testing.T) {
	g := testGraph()
	if err := g.Rename("hall", "hall"); err != nil {
		t.Errorf("rename to self: %v", err)
	}
	if err := g.Rename("nowhere", "x"); !errors.Is(err, ErrPassageNotFound) {
		t.Errorf("err = %v, want ErrPassageNotFound", err)
	}
	if err := g.Rename("hall", ""); !errors.Is(err, ErrEmptyID) {
		t.Errorf("err = %v, want ErrEmptyID", err)
	}
}

func TestRename_RoundTrip(t *testing.T) {
	g := testGraph()
	beforeIDs := g.IDs()
	beforeTargets := targets(g)

	if err := g.Rename("hall", "corridor"); err != nil {
		t.Fatal(err)
	}
	if err := g.Rename("corridor", "hall"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(beforeIDs, g.IDs()) {
		t.Errorf("ids = %v, want %v", g.IDs(), beforeIDs)
	}
	if !reflect.DeepEqual(beforeTargets, targets(g)) {
		t.Errorf("targets = %v, want %v", targets(g), beforeTargets)
	}
}

func TestRenameAndRetarget(t *testing.T) {
	g := testGraph()
	if err := g.RenameAndRetarget("hall", "corridor"); err != nil {
		t.Fatal(err)
	}
	if refs := g.Referrers("hall"); len(refs) != 0 {
		t.Errorf("still referenced: %+v", refs)
	}
	if refs := g.Referrers("corridor"); len(refs) != 1 || refs[0].Passage != "start" {
		t.Errorf("referrers = %+v", refs)
	}
}

func TestDelete_StripsIncomingChoices(t *testing.T) {
	g := testGraph()
	removed, err := g.Delete("start")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	for _, id := range g.IDs() {
		p, _ := g.Get(id)
		for _, c := range p.Choices {
			if c.Target == "start" {
				t.Errorf("%s still targets start", id)
			}
		}
	}
	hall, _ := g.Get("hall")
	if len(hall.Choices) != 1 || hall.Choices[0].Target != "tower" {
		t.Errorf("hall choices = %+v", hall.Choices)
	}
}

func TestDelete_EveryPassage(t *testing.T) {
	for _, victim := range testGraph().IDs() {
		g := testGraph()
		if _, err := g.Delete(victim); err != nil {
			t.Fatal(err)
		}
		if refs := g.Referrers(victim); len(refs) != 0 {
			t.Errorf("after deleting %s: referrers %+v", victim, refs)
		}
	}
	if _, err := testGraph().Delete("nowhere"); !errors.Is(err, ErrPassageNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestDelete_MissingPassageStripsDanglingChoices(t *testing.T) {
	g := testGraph()
	removed, err := g.Delete("cellar")
	if err != nil {
		t.Fatalf("Delete(cellar) err = %v, want nil", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if refs := g.Referrers("cellar"); len(refs) != 0 {
		t.Errorf("referrers after delete = %+v, want none", refs)
	}
	start, _ := g.Get("start")
	if len(start.Choices) != 1 || start.Choices[0].Target != "hall" {
		t.Errorf("start choices = %+v", start.Choices)
	}
}

func TestChoiceCRUD(t *testing.T) {
	g := testGraph()
	if err := g.AddChoice("tower", types.Choice{Target: "start"}); err != nil {
		t.Fatal(err)
	}
	tower, _ := g.Get("tower")
	if tower.Choices[0].Text != "Go to start" {
		t.Errorf("default label = %q", tower.Choices[0].Text)
	}

	if err := g.UpdateChoice("tower", 0, types.Choice{Text: "Jump", Target: "hall", Effect: "health -= 1"}); err != nil {
		t.Fatal(err)
	}
	tower, _ = g.Get("tower")
	if tower.Choices[0].Text != "Jump" || tower.Choices[0].Effect != "health -= 1" {
		t.Errorf("updated = %+v", tower.Choices[0])
	}

	if err := g.UpdateChoice("tower", 5, types.Choice{}); !errors.Is(err, ErrChoiceIndex) {
		t.Errorf("err = %v, want ErrChoiceIndex", err)
	}
	if err := g.RemoveChoice("tower", 0); err != nil {
		t.Fatal(err)
	}
	tower, _ = g.Get("tower")
	if len(tower.Choices) != 0 {
		t.Errorf("choices = %+v", tower.Choices)
	}
	if err := g.RemoveChoice("tower", 0); !errors.Is(err, ErrChoiceIndex) {
		t.Errorf("err = %v, want ErrChoiceIndex", err)
	}
	if err := g.AddChoice("nowhere", types.Choice{}); !errors.Is(err, ErrPassageNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestDangling(t *testing.T) {
	refs := testGraph().Dangling()
	if len(refs) != 1 {
		t.Fatalf("dangling = %+v", refs)
	}
	if refs[0].Passage != "start" || refs[0].Choice.Target != "cellar" || refs[0].Index != 1 {
		t.Errorf("dangling = %+v", refs[0])
	}
}

func TestReachable(t *testing.T) {
	g := testGraph()
	g.Put("island", types.Passage{Text: "Alone.", Choices: []types.Choice{{Target: "start"}}})
	got := g.Reachable("start")
	want := map[string]bool{"start": true, "hall": true, "tower": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reachable = %v, want %v", got, want)
	}
	if len(g.Reachable("missing")) != 0 {
		t.Error("missing entry should reach nothing")
	}
}

func TestSnapshotRestore(t *testing.T) {
	g := testGraph()
	snap := g.Snapshot()
	if snap["start"].Position != nil {
		t.Error("snapshot must not carry positions")
	}

	g.SetText("start", "Changed.")
	g.Delete("tower")
	g.Restore(snap)

	p, _ := g.Get("start")
	if p.Text != "You wake." {
		t.Errorf("text = %q", p.Text)
	}
	if p.Position == nil || p.Position.X != 10 {
		t.Errorf("position lost on restore: %+v", p.Position)
	}
	hall, _ := g.Get("hall")
	if len(hall.Choices) != 2 || hall.Choices[1].Target != "tower" {
		t.Errorf("hall choices = %+v", hall.Choices)
	}
	if !g.Has("tower") {
		t.Error("tower not restored")
	}

	// Later edits must not leak into the snapshot.
	g.SetText("hall", "Edited.")
	if snap["hall"].Text != "A long hall." {
		t.Error("snapshot aliased graph storage")
	}
}

func TestClone(t *testing.T) {
	g := testGraph()
	g.Variables.Flags["hasKey"] = true
	c := g.Clone()
	c.SetText("start", "Other.")
	c.Variables.Flags["hasKey"] = false

	p, _ := g.Get("start")
	if p.Text != "You wake." || !g.Variables.Flags["hasKey"] {
		t.Error("clone shares state with original")
	}
}
