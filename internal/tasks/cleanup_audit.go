package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
)

const (
	TypeCleanupAuditEvents = "cleanup_audit_events"

	defaultRetentionDays = 90
)

// AuditEventCleaner prunes the audit trail and records that it did.
type AuditEventCleaner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
	LogMaintenance(action, description string, metadata map[string]any, err error)
}

// CleanupAuditEventsTask prunes audit events older than RetentionDays.
// Zero or negative means defaultRetentionDays.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditEventsTask) days() int {
	if t.RetentionDays <= 0 {
		return defaultRetentionDays
	}
	return t.RetentionDays
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        TypeCleanupAuditEvents,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditEventsProcessor runs CleanupAuditEventsTask against cleaner.
// Every run, failed or not, lands in the trail as a maintenance event.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return errors.New("audit event cleaner not configured")
		}

		days := task.days()
		deleted, err := cleaner.Prune(ctx, time.Duration(days)*24*time.Hour)
		cleaner.LogMaintenance(TypeCleanupAuditEvents,
			fmt.Sprintf("Pruned audit events older than %d days", days),
			map[string]any{"deleted": deleted, "retention_days": days}, err)
		if err != nil {
			return fmt.Errorf("prune audit events: %w", err)
		}

		log.Info().
			Str("component", "tasks").
			Int64("deleted", deleted).
			Int("retention_days", days).
			Msg("audit trail pruned")
		return nil
	}
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}
