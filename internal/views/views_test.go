package views

import (
	"testing"
	"time"

	"github.com/Phantom-VK/icrs/internal/model"
)

func at(unix int64) model.Time {
	return model.Time{Time: time.Unix(unix, 0)}
}

func TestActiveSortsNewestFirst(t *testing.T) {
	list := []model.Grievance{
		{ID: 1, Status: model.StatusSubmitted, CreatedAt: at(10)},
		{ID: 2, Status: model.StatusSubmitted, CreatedAt: at(30)},
		{ID: 3, Status: model.StatusSubmitted, CreatedAt: at(20)},
	}

	active := Active(list)
	if len(active) != 3 {
		t.Fatalf("expected 3 active grievances, got %d", len(active))
	}
	for i, want := range []int64{2, 3, 1} {
		if active[i].ID != want {
			t.Fatalf("expected id %d at position %d, got %d", want, i, active[i].ID)
		}
	}
}

func TestActiveAndHistoryPartitionList(t *testing.T) {
	list := []model.Grievance{
		{ID: 1, Status: model.StatusSubmitted},
		{ID: 2, Status: model.StatusInProgress},
		{ID: 3, Status: model.StatusResolved},
		{ID: 4, Status: model.StatusRejected},
		{ID: 5, Status: model.StatusSubmitted},
	}

	active := Active(list)
	history := History(list)
	if len(active)+len(history) != len(list) {
		t.Fatalf("expected partition of %d items, got %d + %d", len(list), len(active), len(history))
	}

	seen := map[int64]int{}
	for _, g := range active {
		if !g.Status.Active() {
			t.Fatalf("grievance %d with status %s in active view", g.ID, g.Status)
		}
		seen[g.ID]++
	}
	for _, g := range history {
		if !g.Status.Terminal() {
			t.Fatalf("grievance %d with status %s in history view", g.ID, g.Status)
		}
		seen[g.ID]++
	}
	for _, g := range list {
		if seen[g.ID] != 1 {
			t.Fatalf("grievance %d appeared %d times across views", g.ID, seen[g.ID])
		}
	}
}

func TestActiveAndHistoryOnEmptyList(t *testing.T) {
	if got := Active(nil); len(got) != 0 {
		t.Fatalf("expected empty active view, got %d items", len(got))
	}
	if got := History([]model.Grievance{}); len(got) != 0 {
		t.Fatalf("expected empty history view, got %d items", len(got))
	}
}

func TestHistoryFallsBackToCreationTime(t *testing.T) {
	list := []model.Grievance{
		{ID: 1, Status: model.StatusResolved, CreatedAt: at(5)},
		{ID: 2, Status: model.StatusRejected, CreatedAt: at(1), UpdatedAt: at(9)},
		{ID: 3, Status: model.StatusResolved, CreatedAt: at(2), UpdatedAt: at(3)},
	}

	history := History(list)
	for i, want := range []int64{2, 1, 3} {
		if history[i].ID != want {
			t.Fatalf("expected id %d at position %d, got %d", want, i, history[i].ID)
		}
	}
}

func TestMissingCreationTimeSinksToEnd(t *testing.T) {
	list := []model.Grievance{
		{ID: 1, Status: model.StatusSubmitted},
		{ID: 2, Status: model.StatusSubmitted, CreatedAt: at(7)},
	}

	active := Active(list)
	if active[0].ID != 2 || active[1].ID != 1 {
		t.Fatalf("expected dated grievance first, got order [%d %d]", active[0].ID, active[1].ID)
	}
}

func TestDerivationsDoNotMutateInput(t *testing.T) {
	list := []model.Grievance{
		{ID: 1, Status: model.StatusSubmitted, CreatedAt: at(1)},
		{ID: 2, Status: model.StatusSubmitted, CreatedAt: at(2)},
		{ID: 3, Status: model.StatusResolved, CreatedAt: at(3)},
	}

	Active(list)
	History(list)
	for i, want := range []int64{1, 2, 3} {
		if list[i].ID != want {
			t.Fatalf("input list mutated: expected id %d at %d, got %d", want, i, list[i].ID)
		}
	}
}

func TestSortStatusHistoryNewestFirst(t *testing.T) {
	entries := []model.StatusChange{
		{ID: 1, ChangedAt: at(10)},
		{ID: 2},
		{ID: 3, ChangedAt: at(20)},
	}

	sorted := SortStatusHistory(entries)
	for i, want := range []int64{3, 1, 2} {
		if sorted[i].ID != want {
			t.Fatalf("expected id %d at position %d, got %d", want, i, sorted[i].ID)
		}
	}
	if entries[0].ID != 1 {
		t.Fatalf("input slice mutated")
	}
}

func TestCounts(t *testing.T) {
	list := []model.Grievance{
		{Status: model.StatusSubmitted},
		{Status: model.StatusSubmitted},
		{Status: model.StatusRejected},
	}

	counts := Counts(list)
	if counts[model.StatusSubmitted] != 2 {
		t.Fatalf("expected 2 submitted, got %d", counts[model.StatusSubmitted])
	}
	if counts[model.StatusRejected] != 1 {
		t.Fatalf("expected 1 rejected, got %d", counts[model.StatusRejected])
	}
	if counts[model.StatusResolved] != 0 {
		t.Fatalf("expected 0 resolved, got %d", counts[model.StatusResolved])
	}
}
