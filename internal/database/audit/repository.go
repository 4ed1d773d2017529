// Package audit stores the library's audit trail: one row per catalog,
// membership, staff, sign-in, report or maintenance action.
package audit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/librarydesk/internal/entities"
)

const defaultPageSize = 50

// Filter narrows a trail query. Zero fields match everything.
type Filter struct {
	Type       entities.AuditEventType
	Status     entities.AuditStatus
	EntityType string
	EntityID   uint
	Since      time.Time
}

func (f Filter) apply(q *gorm.DB) *gorm.DB {
	if f.Type != "" {
		q = q.Where("event_type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	return q
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append stores one event, stamping CreatedAt when the caller left it empty.
func (r *Repository) Append(ctx context.Context, event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// Find returns one page of matching events, newest first, together with
// the number of matches across all pages.
func (r *Repository) Find(ctx context.Context, f Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset = max(offset, 0)

	q := f.apply(r.db.WithContext(ctx).Model(&entities.AuditEvent{}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, nil
	}

	var events []entities.AuditEvent
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&events).Error
	return events, total, err
}

// Prune deletes events created before cutoff.
func (r *Repository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&entities.AuditEvent{})
	return res.RowsAffected, res.Error
}
