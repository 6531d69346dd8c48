package tui

import (
	"fmt"
	"strings"

	"github.com/Phantom-VK/icrs/internal/model"
)

func formatGrievanceSummary(g model.Grievance) string {
	created := "n/a"
	if !g.CreatedAt.IsZero() {
		created = g.CreatedAt.Format("2006-01-02")
	}
	return fmt.Sprintf("#%d %s | %s | %s", g.ID, g.Title, g.Status.Label(), created)
}

func formatComment(c model.Comment) string {
	author := c.AuthorName
	if author == "" {
		author = "User"
	}
	when := ""
	if !c.CreatedAt.IsZero() {
		when = " | " + c.CreatedAt.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%s%s: %s", author, when, c.Body)
}

func formatStatusChange(sc model.StatusChange) string {
	when := "n/a"
	if !sc.ChangedAt.IsZero() {
		when = sc.ChangedAt.Format("2006-01-02 15:04")
	}
	line := fmt.Sprintf("%s | %s -> %s", when, sc.FromStatus.Label(), sc.ToStatus.Label())
	if sc.ActorName != "" {
		line += " by " + sc.ActorName
	}
	if sc.Reason != "" {
		line += " (" + sc.Reason + ")"
	}
	return line
}

// matchesSearch mirrors the dashboard search boxes: case-insensitive match
// over title, description, category, and registration number.
func matchesSearch(g model.Grievance, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{g.Title, g.Description, g.Category, g.RegistrationNumber} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func filterBySearch(grievances []model.Grievance, term string) []model.Grievance {
	if strings.TrimSpace(term) == "" {
		return grievances
	}
	result := make([]model.Grievance, 0, len(grievances))
	for _, g := range grievances {
		if matchesSearch(g, term) {
			result = append(result, g)
		}
	}
	return result
}

func formatCounts(counts map[model.Status]int, total int) string {
	parts := make([]string, 0, len(model.Statuses)+1)
	parts = append(parts, fmt.Sprintf("Total %d", total))
	for _, status := range model.Statuses {
		parts = append(parts, fmt.Sprintf("%s %d", status.Label(), counts[status]))
	}
	return strings.Join(parts, " | ")
}
