package models

import (
	"time"

	"github.com/lib/pq"
)

// TutoringRequest is a pending request submitted by a student. Requests live
// in a single global queue until a tutor accepts or rejects them.
type TutoringRequest struct {
	ID                   string         `db:"id" json:"id"`
	FullName             string         `db:"full_name" json:"full_name"`
	Email                string         `db:"email" json:"email"`
	GradeLevel           string         `db:"grade_level" json:"grade_level"`
	School               string         `db:"school" json:"school"`
	Subjects             pq.StringArray `db:"subjects" json:"subjects"`
	LearningStyle        string         `db:"learning_style" json:"learning_style"`
	LearningDisabilities *string        `db:"learning_disabilities" json:"learning_disabilities,omitempty"`
	Frequency            string         `db:"frequency" json:"frequency"`
	Motivation           string         `db:"motivation" json:"motivation"`
	RequestedTutor       string         `db:"requested_tutor" json:"requested_tutor"`
	TutorName            string         `db:"tutor_name" json:"tutor_name"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
}

// SubmitRequestPayload is the body for POST /requests.
type SubmitRequestPayload struct {
	FullName             string   `json:"full_name" validate:"required,min=2,max=120"`
	Email                string   `json:"email" validate:"required,email"`
	GradeLevel           string   `json:"grade_level" validate:"required"`
	School               string   `json:"school" validate:"required"`
	Subjects             []string `json:"subjects" validate:"required,min=1,dive,required"`
	LearningStyle        string   `json:"learning_style" validate:"required"`
	LearningDisabilities *string  `json:"learning_disabilities,omitempty"`
	Frequency            string   `json:"frequency" validate:"required"`
	Motivation           string   `json:"motivation" validate:"required"`
	RequestedTutor       string   `json:"requested_tutor" validate:"required"`
	TutorName            string   `json:"tutor_name" validate:"required"`
}
