// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "testing"

func FuzzTransitionWalk(f *testing.F) {
	f.Add([]byte{0, 1, 2, 3})
	f.Add([]byte{0, 9, 10, 4, 11})

	events := AllEvents()
	f.Fuzz(func(t *testing.T, seq []byte) {
		state := StateIdle
		for _, b := range seq {
			ev := events[int(b)%len(events)]
			tr, ok := TransitionFor(state, ev)
			if !ok {
				continue
			}
			if tr.From != state {
				t.Fatalf("transition from %s used in %s", tr.From, state)
			}
			if ev == EvStart && !state.AcceptsStart() {
				t.Fatalf("START accepted in %s", state)
			}
			state = tr.To
			if state == StateCompleted {
				next, ok := TransitionFor(state, EvAutoIdle)
				if !ok || next.To != StateIdle {
					t.Fatalf("completed must auto-return to idle")
				}
			}
		}
	})
}
