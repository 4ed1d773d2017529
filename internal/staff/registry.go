// Package staff keeps the registry of library employees.
package staff

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mrlokans/librarydesk/internal/apperr"
	"github.com/mrlokans/librarydesk/internal/database"
	staffdb "github.com/mrlokans/librarydesk/internal/database/staff"
	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/logging"
	"github.com/mrlokans/librarydesk/internal/validation"
)

type AuditLogger interface {
	LogStaff(action, description string, staffID uint, err error)
}

type Registry struct {
	db    *database.Database
	audit AuditLogger
	log   zerolog.Logger
}

type Option func(*Registry)

func WithAuditLogger(a AuditLogger) Option {
	return func(r *Registry) { r.audit = a }
}

func NewRegistry(db *database.Database, opts ...Option) *Registry {
	r := &Registry{db: db, log: logging.Component("staff")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type StaffInput struct {
	StaffID  uint              `json:"staff_id" validate:"gt=0"`
	Name     string            `json:"name" validate:"notblank"`
	Age      int               `json:"age" validate:"gt=0"`
	Email    string            `json:"email" validate:"notblank"`
	Position entities.Position `json:"position" validate:"oneof=Librarian Manager Assistant Technician"`
}

// AddStaff registers an employee. A taken staff id is reported as a
// duplicate by the store's primary key.
func (r *Registry) AddStaff(ctx context.Context, in StaffInput) (*entities.Staff, error) {
	const op = "AddStaff"
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}

	s := &entities.Staff{
		StaffID:  in.StaffID,
		Name:     in.Name,
		Age:      in.Age,
		Email:    in.Email,
		Position: in.Position,
	}
	err := r.db.WithTransaction(ctx, op, func(tx *gorm.DB) error {
		return staffdb.NewRepository(tx).Create(s)
	})
	if apperr.KindOf(err) == apperr.KindDuplicate {
		err = &apperr.Error{Kind: apperr.KindDuplicate, Op: op, Message: fmt.Sprintf("staff id %d is already registered", in.StaffID), Err: err}
	}
	if r.audit != nil {
		r.audit.LogStaff("staff_add", fmt.Sprintf("Register %s as %s", in.Name, in.Position), in.StaffID, err)
	}
	if err != nil {
		return nil, err
	}

	r.log.Info().Uint("staff_id", s.StaffID).Str("position", string(s.Position)).Msg("staff registered")
	return s, nil
}

// ListStaff returns every employee ordered by staff id.
func (r *Registry) ListStaff(ctx context.Context) iter.Seq2[entities.Staff, error] {
	return database.Query[entities.Staff](ctx, r.db, "ListStaff", staffdb.ListStatement)
}
