package scheduler

import (
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/tasks"
)

func ReportExportJob(schedule string) Job {
	return Job{
		Name:     tasks.TypeExportSignInReport,
		Schedule: schedule,
		Task: func() backlite.Task {
			return tasks.ExportSignInReportTask{Trigger: "schedule"}
		},
	}
}

func AuditCleanupJob(schedule string, retentionDays int) Job {
	return Job{
		Name:     tasks.TypeCleanupAuditEvents,
		Schedule: schedule,
		Task: func() backlite.Task {
			return tasks.CleanupAuditEventsTask{RetentionDays: retentionDays}
		},
	}
}

// JobsFromConfig returns the jobs enabled by configuration. Report export
// runs only when reports are enabled; audit cleanup runs whenever it has
// a schedule.
func JobsFromConfig(cfg *config.Config) []Job {
	var jobs []Job
	if cfg.Reports.Enabled && cfg.Reports.Schedule != "" {
		jobs = append(jobs, ReportExportJob(cfg.Reports.Schedule))
	}
	if cfg.Audit.CleanupSchedule != "" {
		jobs = append(jobs, AuditCleanupJob(cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays))
	}
	return jobs
}
