// Package audit records what the library desk did and lets operators read
// the trail back.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrlokans/librarydesk/internal/database/audit"
	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/logging"
)

const (
	maxTextLen   = 500
	writeTimeout = 5 * time.Second
)

// Filter selects events for Events. See audit.Filter in the database layer.
type Filter = audit.Filter

// Service writes audit events off the request path.
type Service struct {
	repo    *audit.Repository
	log     zerolog.Logger
	pending sync.WaitGroup
}

func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo, log: logging.Component("audit")}
}

// Log stores an event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.Append(ctx, event)
}

// record stores an event in the background. Failures are logged and dropped.
func (s *Service) record(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := s.repo.Append(ctx, event); err != nil {
			s.log.Error().Err(err).
				Str("event_type", string(event.EventType)).
				Str("action", event.Action).
				Msg("failed to record audit event")
		}
	}()
}

// Wait blocks until background writes have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) LogCatalog(action, description string, bookID uint, err error) {
	s.record(newEvent(entities.AuditEventCatalog, action, description, "book", bookID, err))
}

func (s *Service) LogMembership(action, description string, memberID uint, err error) {
	s.record(newEvent(entities.AuditEventMembership, action, description, "member", memberID, err))
}

func (s *Service) LogStaff(action, description string, staffID uint, err error) {
	s.record(newEvent(entities.AuditEventStaff, action, description, "staff", staffID, err))
}

func (s *Service) LogSignIn(description string, err error) {
	s.record(newEvent(entities.AuditEventSignIn, "signin_record", description, "", 0, err))
}

func (s *Service) LogReport(action, description string, err error) {
	s.record(newEvent(entities.AuditEventReport, action, description, "", 0, err))
}

// LogMaintenance records a background task run. Metadata is stored as JSON.
func (s *Service) LogMaintenance(action, description string, metadata map[string]any, err error) {
	event := newEvent(entities.AuditEventMaintenance, action, description, "", 0, err)
	if len(metadata) > 0 {
		if raw, mErr := json.Marshal(metadata); mErr == nil {
			event.Metadata = string(raw)
		}
	}
	s.record(event)
}

// Events returns one page of the trail, newest first, and the total match count.
func (s *Service) Events(ctx context.Context, f Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.Find(ctx, f, limit, offset)
}

// Prune deletes events older than retention.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.Prune(ctx, time.Now().Add(-retention))
}

func newEvent(eventType entities.AuditEventType, action, description, entityType string, entityID uint, err error) *entities.AuditEvent {
	event := &entities.AuditEvent{
		EventType:   eventType,
		Action:      action,
		Description: clip(description),
		EntityType:  entityType,
		Status:      entities.AuditStatusSuccess,
	}
	if entityID != 0 {
		event.EntityID = &entityID
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = clip(err.Error())
	}
	return event
}

func clip(s string) string {
	if len(s) <= maxTextLen {
		return s
	}
	return s[:maxTextLen-3] + "..."
}
