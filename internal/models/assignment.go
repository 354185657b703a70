package models

import (
	"time"

	"github.com/lib/pq"
)

// AcceptedStudent is a student a tutor has accepted. It carries the fields of
// the originating request plus acceptance metadata, and is owned by exactly
// one tutor.
type AcceptedStudent struct {
	ID                   string         `db:"id" json:"id"`
	RequestID            string         `db:"request_id" json:"request_id"`
	TutorUsername        string         `db:"tutor_username" json:"tutor_username"`
	TutorName            string         `db:"tutor_name" json:"tutor_name"`
	FullName             string         `db:"full_name" json:"full_name"`
	Email                string         `db:"email" json:"email"`
	GradeLevel           string         `db:"grade_level" json:"grade_level"`
	School               string         `db:"school" json:"school"`
	Subjects             pq.StringArray `db:"subjects" json:"subjects"`
	LearningStyle        string         `db:"learning_style" json:"learning_style"`
	LearningDisabilities *string        `db:"learning_disabilities" json:"learning_disabilities,omitempty"`
	Frequency            string         `db:"frequency" json:"frequency"`
	Motivation           string         `db:"motivation" json:"motivation"`
	AcceptedAt           time.Time      `db:"accepted_at" json:"accepted_at"`
}
