package models

import (
	"time"

	"github.com/lib/pq"
)

// ApplicationStatus is the review state of a volunteer tutor application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// TutorApplication is a volunteer application awaiting admin review.
// Approval creates a TutorProfile and upgrades the applicant's role.
type TutorApplication struct {
	ID                string            `db:"id" json:"id"`
	FullName          string            `db:"full_name" json:"full_name"`
	Email             string            `db:"email" json:"email"`
	Phone             string            `db:"phone" json:"phone"`
	EducationLevel    string            `db:"education_level" json:"education_level"`
	Subjects          pq.StringArray    `db:"subjects" json:"subjects"`
	GradeBand         string            `db:"grade_band" json:"grade_band"`
	Experience        string            `db:"experience" json:"experience"`
	AvailabilityHours string            `db:"availability_hours" json:"availability_hours"`
	Motivation        string            `db:"motivation" json:"motivation"`
	Status            ApplicationStatus `db:"status" json:"status"`
	ReviewedBy        *string           `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNote        *string           `db:"review_note" json:"review_note,omitempty"`
	SubmittedAt       time.Time         `db:"submitted_at" json:"submitted_at"`
	ReviewedAt        *time.Time        `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// SubmitApplicationPayload is the body for POST /applications.
type SubmitApplicationPayload struct {
	FullName          string   `json:"full_name" validate:"required,min=2,max=120"`
	Email             string   `json:"email" validate:"required,email"`
	Phone             string   `json:"phone" validate:"required"`
	EducationLevel    string   `json:"education_level" validate:"required"`
	Subjects          []string `json:"subjects" validate:"required,min=1,dive,required"`
	GradeBand         string   `json:"grade_band" validate:"required"`
	Experience        string   `json:"experience" validate:"required"`
	AvailabilityHours string   `json:"availability_hours" validate:"required"`
	Motivation        string   `json:"motivation" validate:"required"`
}

// ReviewApplicationPayload is the body for PATCH /admin/applications/:id.
type ReviewApplicationPayload struct {
	Status     ApplicationStatus `json:"status" validate:"required,oneof=approved rejected"`
	ReviewNote *string           `json:"review_note,omitempty"`
	Username   string            `json:"username" validate:"required_if=Status approved"`
}
