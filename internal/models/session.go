package models

import "time"

// SessionLog is an immutable record of a completed tutoring session.
type SessionLog struct {
	ID                      string    `db:"id" json:"id"`
	StudentEmail            string    `db:"student_email" json:"student_email"`
	TutorUsername           string    `db:"tutor_username" json:"tutor_username"`
	Title                   string    `db:"title" json:"title"`
	Subject                 string    `db:"subject" json:"subject"`
	SessionDate             time.Time `db:"session_date" json:"session_date"`
	DurationMinutes         int       `db:"duration_minutes" json:"duration_minutes"`
	TopicsCovered           string    `db:"topics_covered" json:"topics_covered"`
	Comments                string    `db:"comments" json:"comments"`
	HomeworkAssigned        string    `db:"homework_assigned" json:"homework_assigned"`
	NextTopics              string    `db:"next_topics" json:"next_topics"`
	StudentEngagementRating *int      `db:"student_engagement_rating" json:"student_engagement_rating,omitempty"`
	LoggedAt                time.Time `db:"logged_at" json:"logged_at"`
}

// LogSessionPayload is the body for POST /students/:email/sessions. Duration
// arrives as a string so that form-shaped clients can post it directly; the
// service coerces it to a positive integer.
type LogSessionPayload struct {
	Title                   string `json:"title" validate:"required,min=1,max=200"`
	Subject                 string `json:"subject" validate:"required"`
	SessionDate             string `json:"session_date" validate:"required"`
	Duration                string `json:"duration" validate:"required"`
	TopicsCovered           string `json:"topics_covered"`
	Comments                string `json:"comments"`
	HomeworkAssigned        string `json:"homework_assigned"`
	NextTopics              string `json:"next_topics"`
	StudentEngagementRating *int   `json:"student_engagement_rating,omitempty" validate:"omitempty,min=1,max=5"`
}

// SessionStatus is the lifecycle of a scheduled session.
type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "scheduled"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
)

// statusRank orders the forward transitions of the session state machine.
// Cancelled is terminal and reachable from scheduled or in_progress.
var statusRank = map[SessionStatus]int{
	SessionStatusScheduled:  0,
	SessionStatusInProgress: 1,
	SessionStatusCompleted:  2,
}

// CanTransition reports whether a scheduled session may move from -> to.
func CanTransition(from, to SessionStatus) bool {
	if from == to {
		return false
	}
	if from == SessionStatusCompleted || from == SessionStatusCancelled {
		return false
	}
	if to == SessionStatusCancelled {
		return true
	}
	fr, ok1 := statusRank[from]
	tr, ok2 := statusRank[to]
	return ok1 && ok2 && tr > fr
}

// ScheduledSession is a future booking between a tutor and a student,
// distinct from the SessionLog written after a session concludes.
type ScheduledSession struct {
	ID              string        `db:"id" json:"id"`
	StudentEmail    string        `db:"student_email" json:"student_email"`
	TutorUsername   string        `db:"tutor_username" json:"tutor_username"`
	Title           string        `db:"title" json:"title"`
	Subject         string        `db:"subject" json:"subject"`
	ScheduledAt     time.Time     `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int           `db:"duration_minutes" json:"duration_minutes"`
	Status          SessionStatus `db:"status" json:"status"`
	GoogleMeetLink  *string       `db:"google_meet_link" json:"google_meet_link,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// ScheduleSessionPayload is the body for POST /students/:email/schedule.
type ScheduleSessionPayload struct {
	Title           string  `json:"title" validate:"required,min=1,max=200"`
	Subject         string  `json:"subject" validate:"required"`
	ScheduledAt     string  `json:"scheduled_at" validate:"required"`
	DurationMinutes int     `json:"duration_minutes" validate:"omitempty,min=15,max=240"`
	GoogleMeetLink  *string `json:"google_meet_link,omitempty" validate:"omitempty,url"`
}
