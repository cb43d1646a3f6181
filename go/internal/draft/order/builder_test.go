package order

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/courtsideapp/courtside/go/internal/models"
)

func makeMembers(n int) []models.Member {
	members := make([]models.Member, n)
	for i := range members {
		members[i] = models.Member{
			ID:          uuid.New(),
			DisplayName: string(rune('A' + i)),
			DraftOrder:  i + 1,
		}
	}
	return members
}

func TestBuildStraight(t *testing.T) {
	members := makeMembers(3)
	slots, err := Build(members, 2, models.DraftStyleStraight)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(slots))
	}
	for i, slot := range slots {
		if slot.Overall != i+1 {
			t.Errorf("slot %d: overall = %d, want %d", i, slot.Overall, i+1)
		}
		wantMember := members[i%3].ID
		if slot.MemberID != wantMember {
			t.Errorf("slot %d: member = %s, want %s", i, slot.MemberID, wantMember)
		}
	}
}

func TestBuildSnakeReversesEvenRounds(t *testing.T) {
	members := makeMembers(4)
	slots, err := Build(members, 2, models.DraftStyleSnake)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []uuid.UUID{
		members[0].ID, members[1].ID, members[2].ID, members[3].ID, // round 1: A B C D
		members[3].ID, members[2].ID, members[1].ID, members[0].ID, // round 2: D C B A
	}
	got := make([]uuid.UUID, len(slots))
	for i, slot := range slots {
		got[i] = slot.MemberID
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snake member sequence mismatch (-want +got):\n%s", diff)
	}

	// PickInRound is 1-indexed within each round regardless of direction.
	for i, slot := range slots {
		wantPick := i%4 + 1
		wantRound := i/4 + 1
		if slot.PickInRound != wantPick || slot.Round != wantRound {
			t.Errorf("slot %d: (round, pick) = (%d, %d), want (%d, %d)",
				i, slot.Round, slot.PickInRound, wantRound, wantPick)
		}
	}
}

func TestBuildSortsByDraftOrder(t *testing.T) {
	members := makeMembers(3)
	shuffled := []models.Member{members[2], members[0], members[1]}

	slots, err := Build(shuffled, 1, models.DraftStyleStraight)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, slot := range slots {
		if slot.MemberID != members[i].ID {
			t.Errorf("slot %d: member = %s, want %s", i, slot.MemberID, members[i].ID)
		}
	}
}

func TestBuildSlotCountProperty(t *testing.T) {
	for _, numMembers := range []int{1, 2, 5, 12} {
		for _, rounds := range []int{1, 3, 10} {
			members := makeMembers(numMembers)
			slots, err := Build(members, rounds, models.DraftStyleSnake)
			if err != nil {
				t.Fatalf("Build(%d members, %d rounds): %v", numMembers, rounds, err)
			}
			if len(slots) != numMembers*rounds {
				t.Fatalf("Build(%d members, %d rounds): %d slots", numMembers, rounds, len(slots))
			}
			for i, slot := range slots {
				if slot.Overall != i+1 {
					t.Fatalf("overall numbers not strictly increasing from 1: slot %d has %d", i, slot.Overall)
				}
				if slot.PickInRound != i%numMembers+1 {
					t.Fatalf("pick_in_round does not cycle 1..%d: slot %d has %d", numMembers, i, slot.PickInRound)
				}
			}
		}
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	members := makeMembers(2)

	if _, err := Build(nil, 3, models.DraftStyleSnake); err == nil {
		t.Error("expected error for zero members")
	}
	if _, err := Build(members, 0, models.DraftStyleSnake); err == nil {
		t.Error("expected error for zero rounds")
	}
	if _, err := Build(members, 3, models.DraftStyle("AUCTION")); err == nil {
		t.Error("expected error for unknown style")
	}

	gapped := makeMembers(3)
	gapped[2].DraftOrder = 5
	if _, err := Build(gapped, 1, models.DraftStyleStraight); err == nil {
		t.Error("expected error for non-dense draft order")
	}
}
