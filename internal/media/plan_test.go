package media

import (
	"fmt"
	"testing"
)

func itemsOf(kinds ...Kind) []*Item {
	items := make([]*Item, len(kinds))
	for i, k := range kinds {
		items[i] = &Item{
			Kind:     k,
			Path:     fmt.Sprintf("/tmp/file%d", i),
			FileName: fmt.Sprintf("file%d", i),
			Slot:     fmt.Sprintf("file%d", i),
		}
	}
	return items
}

func kindsOf(step Step) []Kind {
	kinds := make([]Kind, len(step.Items))
	for i, item := range step.Items {
		kinds[i] = item.Kind
	}
	return kinds
}

func TestPlan_EmptyInput(t *testing.T) {
	t.Parallel()
	if steps := Plan(nil, false); len(steps) != 0 {
		t.Fatalf("expected empty plan, got %d steps", len(steps))
	}
}

func TestPlan_MixedAlbumKindsGroupTogether(t *testing.T) {
	t.Parallel()
	steps := Plan(itemsOf(KindPhoto, KindPhoto, KindVideo), false)
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if !steps[0].IsGroup() || len(steps[0].Items) != 3 {
		t.Errorf("expected one group of 3, got %v", steps[0])
	}
}

func TestPlan_DocumentRunThenSingle(t *testing.T) {
	t.Parallel()
	steps := Plan(itemsOf(KindDocument, KindDocument, KindPhoto), false)
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if !steps[0].IsGroup() || len(steps[0].Items) != 2 {
		t.Errorf("step 0: expected group of 2 documents, got %v", steps[0])
	}
	for _, item := range steps[0].Items {
		if item.Kind != KindDocument {
			t.Errorf("step 0: unexpected kind %s", item.Kind)
		}
	}
	if steps[1].IsGroup() || steps[1].Items[0].Kind != KindPhoto {
		t.Errorf("step 1: expected single photo, got %v", steps[1])
	}
}

func TestPlan_GroupCapAtTen(t *testing.T) {
	t.Parallel()
	kinds := make([]Kind, 11)
	for i := range kinds {
		kinds[i] = KindPhoto
	}
	steps := Plan(itemsOf(kinds...), false)
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if len(steps[0].Items) != 10 {
		t.Errorf("step 0: expected 10 items, got %d", len(steps[0].Items))
	}
	if steps[1].IsGroup() {
		t.Errorf("step 1: expected single send for the 11th item")
	}
}

func TestPlan_NoGroupSendsIndividually(t *testing.T) {
	t.Parallel()
	items := itemsOf(KindVideo, KindVideo)
	steps := Plan(items, true)
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	for i, step := range steps {
		if step.IsGroup() {
			t.Errorf("step %d: expected single send", i)
		}
		if step.Items[0] != items[i] {
			t.Errorf("step %d: order not preserved", i)
		}
	}
}

func TestPlan_SingleItemNeverGroups(t *testing.T) {
	t.Parallel()
	for _, noGroup := range []bool{false, true} {
		steps := Plan(itemsOf(KindPhoto), noGroup)
		if len(steps) != 1 || steps[0].IsGroup() {
			t.Errorf("noGroup=%v: expected one single send, got %v", noGroup, steps)
		}
	}
}

func TestPlan_AlternatingKinds(t *testing.T) {
	t.Parallel()
	steps := Plan(itemsOf(KindPhoto, KindDocument, KindVideo, KindDocument), false)
	if len(steps) != 4 {
		t.Fatalf("expected 4 single steps, got %d", len(steps))
	}
	for i, step := range steps {
		if step.IsGroup() {
			t.Errorf("step %d: expected single send, got %v", i, kindsOf(step))
		}
	}
}

// TestPlan_Properties checks the structural invariants over a set of
// representative inputs: kind homogeneity per group, the 2..10 group bound,
// and exact order preservation.
func TestPlan_Properties(t *testing.T) {
	t.Parallel()

	inputs := [][]Kind{
		{},
		{KindPhoto},
		{KindDocument},
		{KindPhoto, KindAudio, KindVideo, KindPhoto},
		{KindDocument, KindPhoto, KindDocument, KindDocument},
		{KindAudio, KindAudio, KindDocument, KindDocument, KindDocument, KindVideo},
		make([]Kind, 25),
	}
	long := inputs[len(inputs)-1]
	for i := range long {
		if i%7 == 0 {
			long[i] = KindDocument
		} else {
			long[i] = KindPhoto
		}
	}

	for n, kinds := range inputs {
		for _, noGroup := range []bool{false, true} {
			items := itemsOf(kinds...)
			steps := Plan(items, noGroup)

			var flattened []*Item
			for i, step := range steps {
				if got := len(step.Items); got < 1 || got > 10 {
					t.Errorf("input %d: step %d has %d items", n, i, got)
				}
				if step.IsGroup() {
					if noGroup {
						t.Errorf("input %d: group emitted despite noGroup", n)
					}
					docs := 0
					for _, item := range step.Items {
						if item.Kind == KindDocument {
							docs++
						}
					}
					if docs != 0 && docs != len(step.Items) {
						t.Errorf("input %d: step %d mixes documents with media", n, i)
					}
				}
				flattened = append(flattened, step.Items...)
			}

			if len(flattened) != len(items) {
				t.Fatalf("input %d: %d items in, %d items planned", n, len(items), len(flattened))
			}
			for i := range items {
				if flattened[i] != items[i] {
					t.Errorf("input %d: order broken at %d", n, i)
				}
			}
		}
	}
}
