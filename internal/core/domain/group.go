package domain

// Group is a named collection of users. A user belongs to at most one group.
type Group struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
