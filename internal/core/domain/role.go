package domain

// Role is a named function a user performs. A user holds at most one role.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
