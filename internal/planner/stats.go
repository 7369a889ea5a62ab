package planner

import "github.com/nfrund/voyage/internal/domain"

// Stats is the derived view rendered as the dashboard's stat cards. It is a
// pure projection of the collection, recomputed on every read and never
// mutated independently.
type Stats struct {
	Total       int     `json:"total"`
	Visited     int     `json:"visited"`
	Planned     int     `json:"planned"`
	TotalBudget float64 `json:"totalBudget"`
}

// Stats recomputes the projection from the current collection.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return statsOf(c.items)
}

func statsOf(items []domain.Destination) Stats {
	s := Stats{Total: len(items)}
	for _, d := range items {
		if d.Visited {
			s.Visited++
		}
		s.TotalBudget += d.TotalBudget
	}
	s.Planned = s.Total - s.Visited
	return s
}
