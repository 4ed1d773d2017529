// Package membership owns library members and their membership windows.
//
// A member holds at most one Active membership at a time. The member's
// current membership is the one created last; cancel and renew act on it.
package membership

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mrlokans/librarydesk/internal/apperr"
	"github.com/mrlokans/librarydesk/internal/database"
	"github.com/mrlokans/librarydesk/internal/database/members"
	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/logging"
	"github.com/mrlokans/librarydesk/internal/validation"
)

// RenewalMonths is the length of a renewed membership.
const RenewalMonths = 12

type AuditLogger interface {
	LogMembership(action, description string, memberID uint, err error)
}

type Manager struct {
	db    *database.Database
	clock Clock
	audit AuditLogger
	log   zerolog.Logger
}

type Option func(*Manager)

func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithAuditLogger(a AuditLogger) Option {
	return func(m *Manager) { m.audit = a }
}

func NewManager(db *database.Database, opts ...Option) *Manager {
	m := &Manager{db: db, clock: time.Now, log: logging.Component("membership")}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MemberInput describes a member to register.
type MemberInput struct {
	MemberID uint   `json:"member_id" validate:"gt=0"`
	Name     string `json:"name" validate:"notblank"`
	Age      int    `json:"age" validate:"gt=0"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func (in MemberInput) normalized() MemberInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	return in
}

func (in MemberInput) entity() *entities.Member {
	return &entities.Member{MemberID: in.MemberID, Name: in.Name, Age: in.Age, Email: in.Email}
}

type addMemberRequest struct {
	MemberInput
	DurationMonths int `json:"duration_months" validate:"oneof=3 6 12"`
}

// MembershipInput describes a membership to open for an existing member.
type MembershipInput struct {
	MemberID       uint                    `json:"member_id" validate:"gt=0"`
	DurationMonths int                     `json:"duration_months" validate:"oneof=3 6 12"`
	StartDate      string                  `json:"start_date" validate:"required,datetime=2006-01-02"`
	Type           entities.MembershipType `json:"type" validate:"oneof=Regular VIP Premium"`
}

// AddMember registers a member together with a Regular membership starting
// today. Both rows are written in one transaction.
func (m *Manager) AddMember(ctx context.Context, in MemberInput, durationMonths int) (*entities.Member, *entities.Membership, error) {
	const op = "AddMember"
	in = in.normalized()
	if err := validation.Struct(op, addMemberRequest{MemberInput: in, DurationMonths: durationMonths}); err != nil {
		return nil, nil, err
	}
	fee, _ := entities.DurationFee(durationMonths)

	member := in.entity()
	start := Today(m.clock())
	ms := &entities.Membership{
		MemberID:       in.MemberID,
		DurationMonths: durationMonths,
		StartDate:      start,
		EndDate:        AddMonths(start, durationMonths),
		Type:           entities.MembershipRegular,
		Fee:            fee,
		Status:         entities.MembershipActive,
	}

	err := m.db.WithTransaction(ctx, op, func(tx *gorm.DB) error {
		repo := members.NewRepository(tx)
		exists, err := repo.MemberExists(in.MemberID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Duplicate(op, "member %d already exists", in.MemberID)
		}
		if err := repo.CreateMember(member); err != nil {
			return err
		}
		return repo.CreateMembership(ms)
	})
	m.record("member_add", fmt.Sprintf("Register %s with a %d month membership", in.Name, durationMonths), in.MemberID, err)
	if err != nil {
		return nil, nil, err
	}

	m.log.Info().Uint("member_id", member.MemberID).Int("months", durationMonths).Int("fee", fee).Msg("member registered")
	return member, ms, nil
}

// EnsureMember returns the registered member with the input's id, creating
// it from the input when absent. created reports whether a row was written.
func (m *Manager) EnsureMember(ctx context.Context, in MemberInput) (member *entities.Member, created bool, err error) {
	const op = "EnsureMember"
	in = in.normalized()
	if in.MemberID == 0 {
		return nil, false, apperr.Validation(op, "member_id must be greater than 0")
	}

	err = m.db.WithTransaction(ctx, op, func(tx *gorm.DB) error {
		repo := members.NewRepository(tx)
		existing, err := repo.GetMember(in.MemberID)
		if err == nil {
			member = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := validation.Struct(op, in); err != nil {
			return err
		}
		member = in.entity()
		created = true
		return repo.CreateMember(member)
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		m.log.Info().Uint("member_id", member.MemberID).Msg("member created")
		m.record("member_ensure", fmt.Sprintf("Created member %s", member.Name), member.MemberID, nil)
	}
	return member, created, nil
}

// CreateMembership opens a membership for an existing member. The member
// must not already hold an Active membership.
func (m *Manager) CreateMembership(ctx context.Context, in MembershipInput) (*entities.Membership, error) {
	const op = "CreateMembership"
	in.StartDate = strings.TrimSpace(in.StartDate)
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}
	start, err := ParseDate(in.StartDate)
	if err != nil {
		return nil, apperr.Validation(op, "start_date %q is not a valid calendar date", in.StartDate)
	}
	fee, _ := in.Type.Fee()

	ms := &entities.Membership{
		MemberID:       in.MemberID,
		DurationMonths: in.DurationMonths,
		StartDate:      start,
		EndDate:        AddMonths(start, in.DurationMonths),
		Type:           in.Type,
		Fee:            fee,
		Status:         entities.MembershipActive,
	}

	err = m.db.WithTransaction(ctx, op, func(tx *gorm.DB) error {
		repo := members.NewRepository(tx)
		exists, err := repo.MemberExists(in.MemberID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.Validation(op, "member %d does not exist", in.MemberID)
		}
		active, err := repo.HasActiveMembership(in.MemberID)
		if err != nil {
			return err
		}
		if active {
			return apperr.Duplicate(op, "member %d already has an active membership", in.MemberID)
		}
		return repo.CreateMembership(ms)
	})
	m.record("membership_create", fmt.Sprintf("Open %s membership for %d months", in.Type, in.DurationMonths), in.MemberID, err)
	if err != nil {
		return nil, err
	}

	m.log.Info().
		Uint("member_id", ms.MemberID).
		Str("type", string(ms.Type)).
		Time("end_date", ms.EndDate).
		Msg("membership created")
	return ms, nil
}

// CancelMembership marks the member's current membership Cancelled.
// Cancelling an already cancelled membership changes nothing.
func (m *Manager) CancelMembership(ctx context.Context, memberID uint) (*entities.Membership, error) {
	const op = "CancelMembership"
	var current *entities.Membership
	var changed bool
	err := m.db.WithTransaction(ctx, op, func(tx *gorm.DB) error {
		repo := members.NewRepository(tx)
		var err error
		current, err = m.current(op, repo, memberID)
		if err != nil {
			return err
		}
		if current.Status == entities.MembershipCancelled {
			return nil
		}
		current.Status = entities.MembershipCancelled
		changed = true
		return repo.UpdateStatus(current.ID, entities.MembershipCancelled)
	})
	if err != nil {
		m.record("membership_cancel", fmt.Sprintf("Cancel membership of member %d", memberID), memberID, err)
		return nil, err
	}
	if changed {
		m.log.Info().Uint("member_id", memberID).Uint("membership_id", current.ID).Msg("membership cancelled")
		m.record("membership_cancel", fmt.Sprintf("Cancelled membership %d", current.ID), memberID, nil)
	}
	return current, nil
}

// RenewMembership restarts the member's current membership today for
// RenewalMonths months and makes it Active, whatever its prior state.
func (m *Manager) RenewMembership(ctx context.Context, memberID uint) (*entities.Membership, error) {
	const op = "RenewMembership"
	start := Today(m.clock())
	var current *entities.Membership
	err := m.db.WithTransaction(ctx, op, func(tx *gorm.DB) error {
		repo := members.NewRepository(tx)
		var err error
		current, err = m.current(op, repo, memberID)
		if err != nil {
			return err
		}
		current.StartDate = start
		current.EndDate = AddMonths(start, RenewalMonths)
		current.DurationMonths = RenewalMonths
		current.Status = entities.MembershipActive
		return repo.UpdateWindow(current)
	})
	m.record("membership_renew", fmt.Sprintf("Renew membership of member %d", memberID), memberID, err)
	if err != nil {
		return nil, err
	}
	m.log.Info().Uint("member_id", memberID).Time("end_date", current.EndDate).Msg("membership renewed")
	return current, nil
}

// GetMembershipDetails returns the member's current membership.
func (m *Manager) GetMembershipDetails(ctx context.Context, memberID uint) (*entities.Membership, error) {
	const op = "GetMembershipDetails"
	var current *entities.Membership
	err := m.db.WithTransaction(ctx, op, func(tx *gorm.DB) error {
		var err error
		current, err = m.current(op, members.NewRepository(tx), memberID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}

// ListMembers returns all members ordered by member id.
func (m *Manager) ListMembers(ctx context.Context) iter.Seq2[entities.Member, error] {
	return database.Query[entities.Member](ctx, m.db, "ListMembers", members.ListStatement)
}

func (m *Manager) current(op string, repo *members.Repository, memberID uint) (*entities.Membership, error) {
	current, err := repo.CurrentMembership(memberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(op, "member %d has no membership", memberID)
	}
	return current, err
}

func (m *Manager) record(action, description string, memberID uint, err error) {
	if m.audit != nil {
		m.audit.LogMembership(action, description, memberID, err)
	}
}
