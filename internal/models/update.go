package models

import "time"

// UpdateType is the closed set of student update categories.
type UpdateType string

const (
	UpdateTypeProgress        UpdateType = "progress"
	UpdateTypeAssignment      UpdateType = "assignment"
	UpdateTypeNote            UpdateType = "note"
	UpdateTypeSessionFeedback UpdateType = "session_feedback"
	UpdateTypeGoals           UpdateType = "goals"
)

// ValidUpdateType reports whether t is one of the known update types.
func ValidUpdateType(t UpdateType) bool {
	switch t {
	case UpdateTypeProgress, UpdateTypeAssignment, UpdateTypeNote,
		UpdateTypeSessionFeedback, UpdateTypeGoals:
		return true
	}
	return false
}

// StudentUpdate is a tutor-authored message to a student. Updates are
// append-only; the only mutation after creation is the read flag.
type StudentUpdate struct {
	ID            string     `db:"id" json:"id"`
	StudentEmail  string     `db:"student_email" json:"student_email"`
	TutorUsername string     `db:"tutor_username" json:"tutor_username"`
	UpdateType    UpdateType `db:"update_type" json:"update_type"`
	Title         string     `db:"title" json:"title"`
	Content       string     `db:"content" json:"content"`
	IsRead        bool       `db:"is_read" json:"is_read"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// PostUpdatePayload is the body for POST /students/:email/updates.
type PostUpdatePayload struct {
	UpdateType UpdateType `json:"update_type" validate:"required,oneof=progress assignment note session_feedback goals"`
	Title      string     `json:"title" validate:"required,min=1,max=200"`
	Content    string     `json:"content" validate:"required,min=1"`
}
