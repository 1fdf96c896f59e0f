package services

import "github.com/clubarena/championship-system/models"

// ResolveCategory maps a ranking position onto the category catalog.
// Candidates are the categories whose inclusive range contains the position;
// among several the narrowest range wins, then the administrator's priority
// order, then the lowest id. No containing range means unassigned (nil).
func ResolveCategory(position int, categories []*models.Category) *models.Category {
	var best *models.Category
	for _, c := range categories {
		if !c.Contains(position) {
			continue
		}
		if best == nil {
			best = c
			continue
		}
		switch {
		case c.Span() < best.Span():
			best = c
		case c.Span() == best.Span() && c.Priority < best.Priority:
			best = c
		case c.Span() == best.Span() && c.Priority == best.Priority && c.ID < best.ID:
			best = c
		}
	}
	return best
}
