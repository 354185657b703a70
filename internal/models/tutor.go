package models

import (
	"time"

	"github.com/lib/pq"
)

// TutorProfile is the public directory entry for an approved tutor.
type TutorProfile struct {
	ID             string         `db:"id" json:"id"`
	UserID         string         `db:"user_id" json:"user_id"`
	Username       string         `db:"username" json:"username"`
	FullName       string         `db:"full_name" json:"full_name"`
	Bio            string         `db:"bio" json:"bio"`
	Education      string         `db:"education" json:"education"`
	Subjects       pq.StringArray `db:"subjects" json:"subjects"`
	GradeBand      string         `db:"grade_band" json:"grade_band"`
	Rating         float64        `db:"rating" json:"rating"`
	StudentsHelped int            `db:"students_helped" json:"students_helped"`
	Active         bool           `db:"active" json:"active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
