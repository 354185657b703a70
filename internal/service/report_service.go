package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutoringco/portal-api/internal/models"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
	"github.com/tutoringco/portal-api/pkg/export"
	"github.com/tutoringco/portal-api/pkg/jobs"
	"github.com/tutoringco/portal-api/pkg/storage"
)

type reportJobRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	ListByUser(ctx context.Context, userID string) ([]models.ReportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkFinished(ctx context.Context, id, filePath string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type reportSessionSource interface {
	ListLogsByStudent(ctx context.Context, studentEmail string) ([]models.SessionLog, error)
	ListLogsByTutor(ctx context.Context, tutorUsername string) ([]models.SessionLog, error)
}

type reportUpdateSource interface {
	ListByStudent(ctx context.Context, studentEmail string) ([]models.StudentUpdate, error)
}

// ReportService generates progress reports asynchronously. Jobs are queued in
// memory, rendered to CSV or PDF, written to local storage, and handed back
// through HMAC-signed download tokens.
type ReportService struct {
	reports   reportJobRepository
	sessions  reportSessionSource
	updates   reportUpdateSource
	queue     *jobs.Queue
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	store     *storage.ArtifactStore
	signer    *storage.DownloadSigner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs the service. Call Start before enqueueing.
func NewReportService(
	reports reportJobRepository,
	sessions reportSessionSource,
	updates reportUpdateSource,
	store *storage.ArtifactStore,
	signer *storage.DownloadSigner,
	queueCfg jobs.QueueConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReportService{
		reports:   reports,
		sessions:  sessions,
		updates:   updates,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		store:     store,
		signer:    signer,
		validator: validate,
		logger:    logger,
	}
	s.queue = jobs.NewQueue("reports", s.process, queueCfg)
	return s
}

// Start launches the report workers.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the report workers.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Create enqueues a report job for the requesting user.
func (s *ReportService) Create(ctx context.Context, userID string, payload models.CreateReportJobPayload) (*models.ReportJob, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	job := &models.ReportJob{
		RequestedBy: userID,
		ReportType:  payload.ReportType,
		Format:      payload.Format,
		Params:      payload.Params,
		Status:      models.ReportStatusQueued,
	}
	if err := s.reports.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.ReportType), Payload: job.ID}); err != nil {
		if markErr := s.reports.MarkFailed(ctx, job.ID, "queue unavailable"); markErr != nil {
			s.logger.Warn("failed to mark unqueued report job", zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}

	return job, nil
}

// Get returns a job owned by the user, attaching a signed download URL when
// the artifact is ready.
func (s *ReportService) Get(ctx context.Context, userID, jobID string) (*models.ReportJob, error) {
	job, err := s.reports.GetByID(ctx, jobID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job == nil || job.RequestedBy != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	s.attachDownloadURL(job)
	return job, nil
}

// List returns the user's jobs, newest first.
func (s *ReportService) List(ctx context.Context, userID string) ([]models.ReportJob, error) {
	list, err := s.reports.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list report jobs")
	}
	for i := range list {
		s.attachDownloadURL(&list[i])
	}
	if list == nil {
		list = []models.ReportJob{}
	}
	return list, nil
}

// ResolveDownload validates a signed token and returns the stored file path.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (string, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	job, err := s.reports.GetByID(ctx, jobID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job == nil || job.Status != models.ReportStatusFinished || job.FilePath == nil || *job.FilePath != relPath {
		return "", appErrors.Clone(appErrors.ErrNotFound, "report artifact not found")
	}
	return relPath, nil
}

func (s *ReportService) attachDownloadURL(job *models.ReportJob) {
	if job.Status != models.ReportStatusFinished || job.FilePath == nil || s.signer == nil {
		return
	}
	token, _, err := s.signer.Generate(job.ID, *job.FilePath)
	if err != nil {
		s.logger.Warn("failed to sign report download", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	url := "/reports/download/" + token
	job.DownloadURL = &url
}

func (s *ReportService) process(ctx context.Context, qj jobs.Job) error {
	jobID, _ := qj.Payload.(string)
	if jobID == "" {
		jobID = qj.ID
	}

	job, err := s.reports.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load report job: %w", err)
	}
	if job == nil {
		s.logger.Warn("report job disappeared", zap.String("job_id", jobID))
		return nil
	}

	if err := s.reports.MarkProcessing(ctx, job.ID); err != nil {
		return fmt.Errorf("mark report processing: %w", err)
	}

	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		if markErr := s.reports.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			s.logger.Warn("failed to mark report failure", zap.Error(markErr))
		}
		return nil
	}

	var content []byte
	switch job.Format {
	case models.ReportFormatPDF:
		content, err = s.pdf.Render(dataset, title)
	default:
		content, err = s.csv.Render(dataset)
	}
	if err != nil {
		if markErr := s.reports.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			s.logger.Warn("failed to mark report failure", zap.Error(markErr))
		}
		return nil
	}

	filename := fmt.Sprintf("%s/%s.%s", time.Now().UTC().Format("2006-01"), job.ID, job.Format)
	relPath, err := s.store.Save(filename, content)
	if err != nil {
		return fmt.Errorf("store report artifact: %w", err)
	}

	if err := s.reports.MarkFinished(ctx, job.ID, relPath); err != nil {
		return fmt.Errorf("mark report finished: %w", err)
	}

	s.logger.Info("report generated",
		zap.String("job_id", job.ID),
		zap.String("format", string(job.Format)),
		zap.String("path", relPath))
	return nil
}

func (s *ReportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.ReportType {
	case models.ReportTypeStudentProgress:
		return s.studentProgressDataset(ctx, job.Params)
	case models.ReportTypeTutorActivity:
		return s.tutorActivityDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unknown report type %q", job.ReportType)
	}
}

func (s *ReportService) studentProgressDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	if params.StudentEmail == "" {
		return export.Dataset{}, "", fmt.Errorf("student_email parameter is required")
	}

	logs, err := s.sessions.ListLogsByStudent(ctx, params.StudentEmail)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load session history: %w", err)
	}
	updates, err := s.updates.ListByStudent(ctx, params.StudentEmail)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load update log: %w", err)
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Kind", "Title", "Subject", "Minutes", "Detail"},
	}
	for _, log := range logs {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    log.SessionDate.Format("2006-01-02"),
			"Kind":    "session",
			"Title":   log.Title,
			"Subject": log.Subject,
			"Minutes": strconv.Itoa(log.DurationMinutes),
			"Detail":  log.TopicsCovered,
		})
	}
	for _, update := range updates {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":   update.CreatedAt.Format("2006-01-02"),
			"Kind":   string(update.UpdateType),
			"Title":  update.Title,
			"Detail": update.Content,
		})
	}

	return dataset, fmt.Sprintf("Progress Report - %s", params.StudentEmail), nil
}

func (s *ReportService) tutorActivityDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	if params.TutorUsername == "" {
		return export.Dataset{}, "", fmt.Errorf("tutor_username parameter is required")
	}

	logs, err := s.sessions.ListLogsByTutor(ctx, params.TutorUsername)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load tutor sessions: %w", err)
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Student", "Title", "Subject", "Minutes"},
	}
	for _, log := range logs {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    log.SessionDate.Format("2006-01-02"),
			"Student": log.StudentEmail,
			"Title":   log.Title,
			"Subject": log.Subject,
			"Minutes": strconv.Itoa(log.DurationMinutes),
		})
	}

	return dataset, fmt.Sprintf("Tutor Activity - %s", params.TutorUsername), nil
}
