package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librarydesk/internal/signin"
)

const TypeExportSignInReport = "export_signin_report"

// ReportExporter writes a snapshot of the sign-in report.
type ReportExporter interface {
	Export() (signin.ExportResult, error)
}

// ExportSignInReportTask snapshots the sign-in log into the reports directory.
type ExportSignInReportTask struct {
	Trigger string `json:"trigger,omitempty"`
}

func (t ExportSignInReportTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        TypeExportSignInReport,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExportSignInReportProcessor creates a processor function for ExportSignInReportTask.
func ExportSignInReportProcessor(exporter ReportExporter) backlite.QueueProcessor[ExportSignInReportTask] {
	return func(ctx context.Context, task ExportSignInReportTask) error {
		if exporter == nil {
			return fmt.Errorf("report exporter not configured")
		}

		result, err := exporter.Export()
		if err != nil {
			return fmt.Errorf("export sign-in report: %w", err)
		}

		log.Info().
			Str("trigger", task.Trigger).
			Str("path", result.Path).
			Int("lines", result.Lines).
			Msg("sign-in report task finished")
		return nil
	}
}

// NewExportSignInReportQueue creates a backlite queue for report exports.
func NewExportSignInReportQueue(exporter ReportExporter) backlite.Queue {
	return backlite.NewQueue(ExportSignInReportProcessor(exporter))
}
