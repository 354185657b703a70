package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutoringco/portal-api/internal/models"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
)

type tutorProfileRepoStub struct {
	profiles  []models.TutorProfile
	listCalls int
}

func (s *tutorProfileRepoStub) ListActive(ctx context.Context) ([]models.TutorProfile, error) {
	s.listCalls++
	var out []models.TutorProfile
	for _, profile := range s.profiles {
		if profile.Active {
			out = append(out, profile)
		}
	}
	return out, nil
}

func (s *tutorProfileRepoStub) GetByUsername(ctx context.Context, username string) (*models.TutorProfile, error) {
	for i := range s.profiles {
		if s.profiles[i].Username == username {
			cp := s.profiles[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *tutorProfileRepoStub) GetByUserID(ctx context.Context, userID string) (*models.TutorProfile, error) {
	for i := range s.profiles {
		if s.profiles[i].UserID == userID {
			cp := s.profiles[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *tutorProfileRepoStub) Update(ctx context.Context, profile *models.TutorProfile) error {
	for i := range s.profiles {
		if s.profiles[i].ID == profile.ID {
			s.profiles[i] = *profile
			return nil
		}
	}
	return nil
}

// memoryCache is an in-process cacheStore used to observe cache interactions.
type memoryCache struct {
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	delete(c.values, pattern)
	return nil
}

func TestTutorServiceDirectoryServesFromCache(t *testing.T) {
	repo := &tutorProfileRepoStub{profiles: []models.TutorProfile{
		{ID: "p-1", Username: "t1", FullName: "Tutor One", Active: true},
		{ID: "p-2", Username: "t2", FullName: "Tutor Two", Active: false},
	}}
	cache := newMemoryCache()
	service := NewTutorService(repo, cache, time.Minute, nil, zap.NewNop())

	first, err := service.Directory(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "t1", first[0].Username)

	second, err := service.Directory(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 1)
	assert.Equal(t, 1, repo.listCalls, "second read comes from cache")
}

func TestTutorServiceDirectoryCountsCacheLookups(t *testing.T) {
	repo := &tutorProfileRepoStub{profiles: []models.TutorProfile{
		{ID: "p-1", Username: "t1", FullName: "Tutor One", Active: true},
	}}
	metrics := NewMetricsService()
	service := NewTutorService(repo, newMemoryCache(), time.Minute, metrics, zap.NewNop())

	_, err := service.Directory(context.Background())
	require.NoError(t, err)
	_, err = service.Directory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses), "first read misses")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits), "second read hits")
}

func TestTutorServiceUpdateProfileInvalidatesDirectory(t *testing.T) {
	repo := &tutorProfileRepoStub{profiles: []models.TutorProfile{
		{ID: "p-1", UserID: "user-1", Username: "t1", FullName: "Tutor One", Active: true},
	}}
	cache := newMemoryCache()
	service := NewTutorService(repo, cache, time.Minute, nil, zap.NewNop())

	_, err := service.Directory(context.Background())
	require.NoError(t, err)
	require.Contains(t, cache.values, directoryCacheKey)

	updated, err := service.UpdateProfile(context.Background(), "user-1", "new bio", []string{"math"}, "9-12")
	require.NoError(t, err)
	assert.Equal(t, "new bio", updated.Bio)
	assert.NotContains(t, cache.values, directoryCacheKey, "directory cache dropped on profile change")
}

func TestTutorServiceGetInactiveHidden(t *testing.T) {
	repo := &tutorProfileRepoStub{profiles: []models.TutorProfile{
		{ID: "p-1", Username: "t1", Active: false},
	}}
	service := NewTutorService(repo, nil, time.Minute, nil, zap.NewNop())

	_, err := service.Get(context.Background(), "t1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
