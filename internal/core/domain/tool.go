package domain

// Tool is an external destination (usually a URL) published to users.
type Tool struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Target      string `json:"target"`
}
