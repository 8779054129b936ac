package shared

import (
	"fmt"
	"slices"
)

// TransitionTable is a static (state, action) -> next state map.
// Workflows declare one table each and route every status change through Next.
type TransitionTable[S ~string, A ~string] map[S]map[A]S

// Next returns the state reached by applying action in from, or an
// INVALID_STATE error when the table has no such edge.
func (t TransitionTable[S, A]) Next(from S, action A) (S, error) {
	if edges, ok := t[from]; ok {
		if to, ok := edges[action]; ok {
			return to, nil
		}
	}
	var zero S
	return zero, NewDomainError(CodeInvalidState,
		fmt.Sprintf("cannot %s while in status %s", action, from))
}

// Can reports whether action is allowed in state from
func (t TransitionTable[S, A]) Can(from S, action A) bool {
	_, err := t.Next(from, action)
	return err == nil
}

// Actions lists the actions available from a state
func (t TransitionTable[S, A]) Actions(from S) []A {
	edges := t[from]
	actions := make([]A, 0, len(edges))
	for a := range edges {
		actions = append(actions, a)
	}
	slices.Sort(actions)
	return actions
}

// IsTerminal reports whether no action leads out of the state
func (t TransitionTable[S, A]) IsTerminal(s S) bool {
	return len(t[s]) == 0
}
