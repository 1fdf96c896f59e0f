package models

// Category is a competitive band over ranking positions. Ranges may overlap;
// resolution picks the narrowest containing range, then the administrator's
// priority order.
type Category struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	MinPosition int    `json:"min_position" db:"min_position"`
	MaxPosition int    `json:"max_position" db:"max_position"`
	Priority    int    `json:"priority" db:"priority"`
}

// Contains reports whether the ranking position falls inside the range.
func (c *Category) Contains(position int) bool {
	return position >= c.MinPosition && position <= c.MaxPosition
}

// Span is the width of the range, used as the primary resolution criterion.
func (c *Category) Span() int {
	return c.MaxPosition - c.MinPosition
}
