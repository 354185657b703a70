package models

// TutorDashboardStats summarizes a tutor's workload for the dashboard header.
type TutorDashboardStats struct {
	PendingRequests  int `json:"pending_requests"`
	AcceptedStudents int `json:"accepted_students"`
	SessionsLogged   int `json:"sessions_logged"`
	UpcomingSessions int `json:"upcoming_sessions"`
	UpdatesPosted    int `json:"updates_posted"`
}

// StudentDashboardStats summarizes a student's activity.
type StudentDashboardStats struct {
	UnreadUpdates    int `json:"unread_updates"`
	TotalUpdates     int `json:"total_updates"`
	SessionsAttended int `json:"sessions_attended"`
	TotalMinutes     int `json:"total_minutes"`
	UpcomingSessions int `json:"upcoming_sessions"`
}

// AdminDashboardStats summarizes portal-wide totals for admins.
type AdminDashboardStats struct {
	TotalStudents       int `json:"total_students"`
	TotalTutors         int `json:"total_tutors"`
	PendingRequests     int `json:"pending_requests"`
	PendingApplications int `json:"pending_applications"`
	SessionsThisMonth   int `json:"sessions_this_month"`
}
