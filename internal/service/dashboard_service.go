package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tutoringco/portal-api/internal/models"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
)

type dashboardRequestCounts interface {
	CountPending(ctx context.Context) (int, error)
	CountByTutor(ctx context.Context, tutorUsername string) (int, error)
}

type dashboardAssignmentCounts interface {
	CountByTutor(ctx context.Context, tutorUsername string) (int, error)
}

type dashboardUpdateCounts interface {
	CountUnread(ctx context.Context, studentEmail string) (int, error)
	CountByStudent(ctx context.Context, studentEmail string) (int, error)
	CountByTutor(ctx context.Context, tutorUsername string) (int, error)
}

type dashboardSessionCounts interface {
	CountLogsByTutor(ctx context.Context, tutorUsername string) (int, error)
	CountLogsByStudent(ctx context.Context, studentEmail string) (int, error)
	CountLogsSince(ctx context.Context, since time.Time) (int, error)
	SumMinutesByStudent(ctx context.Context, studentEmail string) (int, error)
	CountUpcomingByStudent(ctx context.Context, studentEmail string) (int, error)
	CountUpcomingByTutor(ctx context.Context, tutorUsername string) (int, error)
}

type dashboardUserCounts interface {
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

type dashboardApplicationCounts interface {
	CountPending(ctx context.Context) (int, error)
}

// DashboardService aggregates headline stats, cached briefly since they are
// recomputed from several count queries.
type DashboardService struct {
	requests     dashboardRequestCounts
	assignments  dashboardAssignmentCounts
	updates      dashboardUpdateCounts
	sessions     dashboardSessionCounts
	users        dashboardUserCounts
	applications dashboardApplicationCounts
	cache        cacheStore
	cacheTTL     time.Duration
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(
	requests dashboardRequestCounts,
	assignments dashboardAssignmentCounts,
	updates dashboardUpdateCounts,
	sessions dashboardSessionCounts,
	users dashboardUserCounts,
	applications dashboardApplicationCounts,
	cache cacheStore,
	cacheTTL time.Duration,
	metrics *MetricsService,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		requests:     requests,
		assignments:  assignments,
		updates:      updates,
		sessions:     sessions,
		users:        users,
		applications: applications,
		cache:        cache,
		cacheTTL:     cacheTTL,
		metrics:      metrics,
		logger:       logger,
	}
}

// TutorStats summarizes a tutor's workload.
func (s *DashboardService) TutorStats(ctx context.Context, tutorUsername string) (*models.TutorDashboardStats, error) {
	cacheKey := fmt.Sprintf("dashboard:tutor:%s", tutorUsername)
	var stats models.TutorDashboardStats
	if s.cachedGet(ctx, cacheKey, &stats) {
		return &stats, nil
	}

	var err error
	if stats.PendingRequests, err = s.requests.CountByTutor(ctx, tutorUsername); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending requests")
	}
	if stats.AcceptedStudents, err = s.assignments.CountByTutor(ctx, tutorUsername); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count accepted students")
	}
	if stats.SessionsLogged, err = s.sessions.CountLogsByTutor(ctx, tutorUsername); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count logged sessions")
	}
	if stats.UpcomingSessions, err = s.sessions.CountUpcomingByTutor(ctx, tutorUsername); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count upcoming sessions")
	}
	if stats.UpdatesPosted, err = s.updates.CountByTutor(ctx, tutorUsername); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count posted updates")
	}

	s.cachedSet(ctx, cacheKey, stats)
	return &stats, nil
}

// StudentStats summarizes a student's activity.
func (s *DashboardService) StudentStats(ctx context.Context, studentEmail string) (*models.StudentDashboardStats, error) {
	cacheKey := fmt.Sprintf("dashboard:student:%s", studentEmail)
	var stats models.StudentDashboardStats
	if s.cachedGet(ctx, cacheKey, &stats) {
		return &stats, nil
	}

	var err error
	if stats.UnreadUpdates, err = s.updates.CountUnread(ctx, studentEmail); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread updates")
	}
	if stats.TotalUpdates, err = s.updates.CountByStudent(ctx, studentEmail); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count updates")
	}
	if stats.SessionsAttended, err = s.sessions.CountLogsByStudent(ctx, studentEmail); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sessions")
	}
	if stats.TotalMinutes, err = s.sessions.SumMinutesByStudent(ctx, studentEmail); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum session minutes")
	}
	if stats.UpcomingSessions, err = s.sessions.CountUpcomingByStudent(ctx, studentEmail); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count upcoming sessions")
	}

	s.cachedSet(ctx, cacheKey, stats)
	return &stats, nil
}

// AdminStats summarizes portal-wide totals.
func (s *DashboardService) AdminStats(ctx context.Context) (*models.AdminDashboardStats, error) {
	const cacheKey = "dashboard:admin"
	var stats models.AdminDashboardStats
	if s.cachedGet(ctx, cacheKey, &stats) {
		return &stats, nil
	}

	var err error
	if stats.TotalStudents, err = s.users.CountByRole(ctx, models.RoleStudent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if stats.TotalTutors, err = s.users.CountByRole(ctx, models.RoleTutor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count tutors")
	}
	if stats.PendingRequests, err = s.requests.CountPending(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending requests")
	}
	if stats.PendingApplications, err = s.applications.CountPending(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending applications")
	}
	monthStart := time.Now().UTC().AddDate(0, 0, -30)
	if stats.SessionsThisMonth, err = s.sessions.CountLogsSince(ctx, monthStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count recent sessions")
	}

	s.cachedSet(ctx, cacheKey, stats)
	return &stats, nil
}

func (s *DashboardService) cachedGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		s.metrics.RecordCacheLookup(true)
		return true
	}
	s.metrics.RecordCacheLookup(false)
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *DashboardService) cachedSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
