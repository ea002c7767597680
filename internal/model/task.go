package model

// Task status labels shown to the user.
const (
	StatusCompleted  = "Completed"
	StatusInProgress = "In Progress"
)

// Task is a unit of work owned by the signed-in user. The remote API is the
// source of truth; local copies are always replaced with the server's
// representation after a round trip.
type Task struct {
	// ID is the server-assigned identifier.
	ID string `json:"id"`

	// Title is the display string.
	Title string `json:"title"`

	// Description is optional free text.
	Description string `json:"description,omitempty"`

	// Completed marks the task as done.
	Completed bool `json:"completed"`

	// TimeSpent is the accumulated tracked time in seconds.
	TimeSpent Seconds `json:"timeSpent"`

	// CreatedAt and UpdatedAt are server-assigned ISO-8601 timestamps.
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// StatusLabel returns the human-readable completion state.
func (t Task) StatusLabel() string {
	if t.Completed {
		return StatusCompleted
	}
	return StatusInProgress
}

// TaskPatch is a partial update sent to the server. Nil fields are omitted
// from the request body.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	TimeSpent   *int    `json:"timeSpent,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil && p.TimeSpent == nil
}
