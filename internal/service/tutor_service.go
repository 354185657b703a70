package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tutoringco/portal-api/internal/models"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
)

const directoryCacheKey = "directory:tutors"

type tutorProfileRepository interface {
	ListActive(ctx context.Context) ([]models.TutorProfile, error)
	GetByUsername(ctx context.Context, username string) (*models.TutorProfile, error)
	GetByUserID(ctx context.Context, userID string) (*models.TutorProfile, error)
	Update(ctx context.Context, profile *models.TutorProfile) error
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// TutorService serves the public tutor directory with a read-through cache.
type TutorService struct {
	tutors   tutorProfileRepository
	cache    cacheStore
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewTutorService constructs the service.
func NewTutorService(tutors tutorProfileRepository, cache cacheStore, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *TutorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &TutorService{tutors: tutors, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// Directory returns every active tutor, cached for the configured TTL.
func (s *TutorService) Directory(ctx context.Context) ([]models.TutorProfile, error) {
	if s.cache != nil {
		var cached []models.TutorProfile
		err := s.cache.Get(ctx, directoryCacheKey, &cached)
		if err == nil {
			s.metrics.RecordCacheLookup(true)
			return cached, nil
		}
		s.metrics.RecordCacheLookup(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("directory cache read failed", zap.Error(err))
		}
	}

	profiles, err := s.tutors.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tutors")
	}
	if profiles == nil {
		profiles = []models.TutorProfile{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, directoryCacheKey, profiles, s.cacheTTL); err != nil {
			s.logger.Warn("directory cache write failed", zap.Error(err))
		}
	}

	return profiles, nil
}

// Get returns a single active tutor's public profile.
func (s *TutorService) Get(ctx context.Context, username string) (*models.TutorProfile, error) {
	profile, err := s.tutors.GetByUsername(ctx, username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
	}
	if profile == nil || !profile.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
	}
	return profile, nil
}

// ProfileForUser resolves the directory profile owned by a user account.
func (s *TutorService) ProfileForUser(ctx context.Context, userID string) (*models.TutorProfile, error) {
	profile, err := s.tutors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor profile")
	}
	if profile == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no tutor profile for this account")
	}
	return profile, nil
}

// UpdateProfile rewrites a tutor's own directory entry and invalidates the
// cached directory.
func (s *TutorService) UpdateProfile(ctx context.Context, userID string, bio string, subjects []string, gradeBand string) (*models.TutorProfile, error) {
	profile, err := s.ProfileForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Bio = bio
	profile.Subjects = subjects
	profile.GradeBand = gradeBand
	if err := s.tutors.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update tutor profile")
	}

	s.InvalidateDirectory(ctx)
	return profile, nil
}

// InvalidateDirectory drops the cached directory listing.
func (s *TutorService) InvalidateDirectory(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, directoryCacheKey); err != nil {
		s.logger.Warn("directory cache invalidation failed", zap.Error(err))
	}
}
