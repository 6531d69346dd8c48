// Package views derives display orderings from raw grievance lists. All
// functions are pure: they never mutate their input and are total over any
// list, including an empty or nil one.
package views

import (
	"sort"
	"time"

	"github.com/Phantom-VK/icrs/internal/model"
)

// Active keeps grievances still awaiting resolution and orders them newest
// first by creation time. Items without a creation time sink to the end.
// Ties keep their original relative order.
func Active(grievances []model.Grievance) []model.Grievance {
	result := make([]model.Grievance, 0, len(grievances))
	for _, g := range grievances {
		if g.Status.Active() {
			result = append(result, g)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Time.After(result[j].CreatedAt.Time)
	})
	return result
}

// History keeps grievances in a terminal state and orders them newest first
// by last update, falling back to creation time when the update time is
// missing. Ties keep their original relative order.
func History(grievances []model.Grievance) []model.Grievance {
	result := make([]model.Grievance, 0, len(grievances))
	for _, g := range grievances {
		if !g.Status.Active() {
			result = append(result, g)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return historyKey(result[i]).After(historyKey(result[j]))
	})
	return result
}

func historyKey(g model.Grievance) time.Time {
	if !g.UpdatedAt.IsZero() {
		return g.UpdatedAt.Time
	}
	return g.CreatedAt.Time
}

// SortStatusHistory orders one grievance's status transitions newest first.
// Entries without a change time are treated as earliest.
func SortStatusHistory(entries []model.StatusChange) []model.StatusChange {
	result := make([]model.StatusChange, len(entries))
	copy(result, entries)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ChangedAt.Time.After(result[j].ChangedAt.Time)
	})
	return result
}

// Counts tallies grievances per status for the dashboard summary.
func Counts(grievances []model.Grievance) map[model.Status]int {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, g := range grievances {
		counts[g.Status]++
	}
	return counts
}
