package tasks

import (
	"fmt"

	"github.com/mikestefanello/backlite"
)

// TypeInfo describes a task that can be triggered by hand.
type TypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// Types lists the manually runnable tasks.
func Types() []TypeInfo {
	return []TypeInfo{
		{
			Type:        TypeExportSignInReport,
			Description: "Write a snapshot of the sign-in report to the reports directory",
			Queue:       TypeExportSignInReport,
		},
		{
			Type:        TypeCleanupAuditEvents,
			Description: "Remove audit events older than the retention period",
			Queue:       TypeCleanupAuditEvents,
		},
	}
}

// RunRequest carries the optional parameters of a manual run.
type RunRequest struct {
	RetentionDays int `json:"retention_days,omitempty" form:"retention_days"`
}

// NewTask builds the task for a type name.
func NewTask(taskType string, req RunRequest) (backlite.Task, error) {
	switch taskType {
	case TypeExportSignInReport:
		return ExportSignInReportTask{Trigger: "manual"}, nil
	case TypeCleanupAuditEvents:
		if req.RetentionDays < 0 {
			return nil, fmt.Errorf("retention_days must not be negative")
		}
		return CleanupAuditEventsTask{RetentionDays: req.RetentionDays}, nil
	default:
		return nil, fmt.Errorf("unknown task type: %s", taskType)
	}
}
