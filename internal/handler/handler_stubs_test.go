package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/tutoringco/portal-api/internal/models"
	"github.com/tutoringco/portal-api/internal/service"
)

// Shared in-memory stubs used by the handler tests. The services accept
// small consumer-side interfaces, so the tests run against real service
// logic with fake persistence underneath.

type tutorRepoStub struct {
	profiles []models.TutorProfile
}

func (s *tutorRepoStub) ListActive(context.Context) ([]models.TutorProfile, error) {
	var active []models.TutorProfile
	for _, p := range s.profiles {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

func (s *tutorRepoStub) GetByUsername(_ context.Context, username string) (*models.TutorProfile, error) {
	for i := range s.profiles {
		if s.profiles[i].Username == username {
			return &s.profiles[i], nil
		}
	}
	return nil, nil
}

func (s *tutorRepoStub) GetByUserID(_ context.Context, userID string) (*models.TutorProfile, error) {
	for i := range s.profiles {
		if s.profiles[i].UserID == userID {
			return &s.profiles[i], nil
		}
	}
	return nil, nil
}

func (s *tutorRepoStub) Update(_ context.Context, profile *models.TutorProfile) error {
	for i := range s.profiles {
		if s.profiles[i].ID == profile.ID {
			s.profiles[i] = *profile
			return nil
		}
	}
	return nil
}

type requestRepoStub struct {
	requests []models.TutoringRequest
}

func (s *requestRepoStub) Create(_ context.Context, request *models.TutoringRequest) error {
	s.requests = append(s.requests, *request)
	return nil
}

func (s *requestRepoStub) List(context.Context) ([]models.TutoringRequest, error) {
	return append([]models.TutoringRequest(nil), s.requests...), nil
}

func (s *requestRepoStub) ListByTutor(_ context.Context, tutorUsername string) ([]models.TutoringRequest, error) {
	var out []models.TutoringRequest
	for _, r := range s.requests {
		if r.RequestedTutor == tutorUsername {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *requestRepoStub) GetByID(_ context.Context, id string) (*models.TutoringRequest, error) {
	for i := range s.requests {
		if s.requests[i].ID == id {
			return &s.requests[i], nil
		}
	}
	return nil, nil
}

func (s *requestRepoStub) Delete(_ context.Context, id string) error {
	for i := range s.requests {
		if s.requests[i].ID == id {
			s.requests = append(s.requests[:i], s.requests[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *requestRepoStub) CountByTutor(_ context.Context, tutorUsername string) (int, error) {
	count := 0
	for _, r := range s.requests {
		if r.RequestedTutor == tutorUsername {
			count++
		}
	}
	return count, nil
}

type assignmentRepoStub struct {
	requests *requestRepoStub
	accepted []models.AcceptedStudent
	updates  []models.StudentUpdate
}

func (s *assignmentRepoStub) Accept(ctx context.Context, requestID string, update *models.StudentUpdate) (*models.AcceptedStudent, error) {
	request, _ := s.requests.GetByID(ctx, requestID)
	if request == nil {
		return nil, sql.ErrNoRows
	}
	accepted := models.AcceptedStudent{
		ID:            "accepted-" + requestID,
		RequestID:     request.ID,
		TutorUsername: request.RequestedTutor,
		TutorName:     request.TutorName,
		FullName:      request.FullName,
		Email:         request.Email,
		AcceptedAt:    time.Now().UTC(),
	}
	_ = s.requests.Delete(ctx, requestID)
	update.StudentEmail = request.Email
	update.TutorUsername = request.RequestedTutor
	s.accepted = append(s.accepted, accepted)
	s.updates = append(s.updates, *update)
	return &accepted, nil
}

func (s *assignmentRepoStub) ListByTutor(_ context.Context, tutorUsername string) ([]models.AcceptedStudent, error) {
	var out []models.AcceptedStudent
	for _, a := range s.accepted {
		if a.TutorUsername == tutorUsername {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *assignmentRepoStub) GetByEmailAndTutor(_ context.Context, studentEmail, tutorUsername string) (*models.AcceptedStudent, error) {
	for i := range s.accepted {
		if s.accepted[i].Email == studentEmail && s.accepted[i].TutorUsername == tutorUsername {
			return &s.accepted[i], nil
		}
	}
	return nil, nil
}

type auditStub struct{}

func (auditStub) Create(context.Context, *models.AuditLog) error { return nil }

type syncStub struct{}

func (syncStub) NotifyChange(context.Context, string, string) {}

func newTestTutorService(profiles ...models.TutorProfile) *service.TutorService {
	return service.NewTutorService(&tutorRepoStub{profiles: profiles}, nil, time.Minute, nil, nil)
}
