package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportType identifies what a progress report covers.
type ReportType string

const (
	ReportTypeStudentProgress ReportType = "STUDENT_PROGRESS"
	ReportTypeTutorActivity   ReportType = "TUTOR_ACTIVITY"
)

// ReportFormat is the output format of a generated report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportStatus is the lifecycle state of an async report job.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJobParams holds the scoping parameters of a report, stored as JSONB.
type ReportJobParams struct {
	StudentEmail  string `json:"student_email,omitempty"`
	TutorUsername string `json:"tutor_username,omitempty"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
}

func (p ReportJobParams) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *ReportJobParams) Scan(src interface{}) error {
	if src == nil {
		*p = ReportJobParams{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("scan report job params: unexpected type %T", src)
	}
	return json.Unmarshal(b, p)
}

// ReportJob tracks an asynchronous report generation request.
type ReportJob struct {
	ID          string          `db:"id" json:"id"`
	RequestedBy string          `db:"requested_by" json:"requested_by"`
	ReportType  ReportType      `db:"report_type" json:"report_type"`
	Format      ReportFormat    `db:"format" json:"format"`
	Params      ReportJobParams `db:"params" json:"params"`
	Status      ReportStatus    `db:"status" json:"status"`
	FilePath    *string         `db:"file_path" json:"-"`
	DownloadURL *string         `db:"-" json:"download_url,omitempty"`
	ErrorMsg    *string         `db:"error_msg" json:"error_msg,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	StartedAt   *time.Time      `db:"started_at" json:"started_at,omitempty"`
	FinishedAt  *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
}

// CreateReportJobPayload is the body for POST /reports.
type CreateReportJobPayload struct {
	ReportType ReportType      `json:"report_type" validate:"required,oneof=STUDENT_PROGRESS TUTOR_ACTIVITY"`
	Format     ReportFormat    `json:"format" validate:"required,oneof=csv pdf"`
	Params     ReportJobParams `json:"params"`
}
