// Package order generates the full turn sequence for a draft.
package order

import (
	"fmt"
	"sort"

	"github.com/courtsideapp/courtside/go/internal/models"
)

// Build produces the complete TurnSlot sequence for the given members,
// round count, and draft style. Members are ordered by their DraftOrder
// field; the input slice is not mutated.
//
// The sequence is rounds*len(members) slots long, with Overall numbered
// 1..N and PickInRound 1-indexed within each round. STRAIGHT repeats the
// same member order every round; SNAKE reverses it on even rounds.
func Build(members []models.Member, rounds int, style models.DraftStyle) ([]models.TurnSlot, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("draft order: at least one member required")
	}
	if rounds < 1 {
		return nil, fmt.Errorf("draft order: rounds must be >= 1, got %d", rounds)
	}
	switch style {
	case models.DraftStyleStraight, models.DraftStyleSnake:
	default:
		return nil, fmt.Errorf("draft order: unknown draft style %q", style)
	}

	ordered := make([]models.Member, len(members))
	copy(ordered, members)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].DraftOrder < ordered[j].DraftOrder
	})
	for i, m := range ordered {
		if m.DraftOrder != i+1 {
			return nil, fmt.Errorf("draft order: member positions must be dense 1..%d, got %d at position %d",
				len(ordered), m.DraftOrder, i+1)
		}
	}

	numMembers := len(ordered)
	slots := make([]models.TurnSlot, 0, rounds*numMembers)
	overall := 1

	for round := 1; round <= rounds; round++ {
		reversed := style == models.DraftStyleSnake && round%2 == 0

		roundOrder := ordered
		if reversed {
			roundOrder = make([]models.Member, numMembers)
			for i, m := range ordered {
				roundOrder[numMembers-1-i] = m
			}
		}

		for pick, m := range roundOrder {
			slots = append(slots, models.TurnSlot{
				Overall:     overall,
				Round:       round,
				PickInRound: pick + 1,
				MemberID:    m.ID,
			})
			overall++
		}
	}

	return slots, nil
}
