package media

// maxGroupSize is the Bot API's hard cap on items per sendMediaGroup call.
const maxGroupSize = 10

// Plan partitions items into an ordered sequence of send steps.
//
// Documents and displayable media (photo/video/audio) never share an album:
// the album primitive does not support mixing them. A maximal run of
// same-class consecutive items, capped at maxGroupSize, becomes one group
// step; a run of exactly one item falls back to a single send because the
// group endpoint rejects degenerate one-item albums. With noGroup set, every
// item is its own step.
//
// Plan never fails: every input item lands in exactly one step, and order is
// preserved both across steps and within each group.
func Plan(items []*Item, noGroup bool) []Step {
	if len(items) == 0 {
		return nil
	}

	var steps []Step
	for i := 0; i < len(items); {
		isDoc := items[i].Kind == KindDocument
		j := i + 1
		for j < len(items) && j-i < maxGroupSize && (items[j].Kind == KindDocument) == isDoc {
			j++
		}
		run := items[i:j]

		if noGroup || len(run) == 1 {
			for _, item := range run {
				steps = append(steps, Step{Items: []*Item{item}})
			}
		} else {
			steps = append(steps, Step{Items: run})
		}
		i = j
	}
	return steps
}
