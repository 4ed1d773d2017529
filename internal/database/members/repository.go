// Package members provides database operations for library members and
// their membership windows.
//
// # Usage
//
//	repo := members.NewRepository(tx)
//	current, err := repo.CurrentMembership(memberID)
package members

import (
	"gorm.io/gorm"

	"github.com/mrlokans/librarydesk/internal/entities"
)

const ListStatement = `SELECT member_id, name, age, email, created_at
	FROM members ORDER BY member_id`

// Repository handles member and membership database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new members repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateMember inserts a member. A taken member id fails with
// gorm.ErrDuplicatedKey when error translation is enabled.
func (r *Repository) CreateMember(member *entities.Member) error {
	return r.db.Create(member).Error
}

// GetMember returns gorm.ErrRecordNotFound when the member is unknown.
func (r *Repository) GetMember(memberID uint) (*entities.Member, error) {
	var member entities.Member
	err := r.db.Where("member_id = ?", memberID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// MemberExists reports whether the member id is registered.
func (r *Repository) MemberExists(memberID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Member{}).Where("member_id = ?", memberID).Count(&count).Error
	return count > 0, err
}

// CreateMembership inserts a membership window.
func (r *Repository) CreateMembership(m *entities.Membership) error {
	return r.db.Create(m).Error
}

// CurrentMembership returns the member's most recently created membership,
// or gorm.ErrRecordNotFound.
func (r *Repository) CurrentMembership(memberID uint) (*entities.Membership, error) {
	var m entities.Membership
	err := r.db.Where("member_id = ?", memberID).Order("id DESC").First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// HasActiveMembership reports whether any of the member's memberships is Active.
func (r *Repository) HasActiveMembership(memberID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Membership{}).
		Where("member_id = ? AND status = ?", memberID, entities.MembershipActive).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatus sets the status of one membership row.
func (r *Repository) UpdateStatus(id uint, status entities.MembershipStatus) error {
	return r.db.Model(&entities.Membership{}).Where("id = ?", id).Update("status", status).Error
}

// UpdateWindow rewrites the dates, duration and status of one membership row.
func (r *Repository) UpdateWindow(m *entities.Membership) error {
	return r.db.Model(&entities.Membership{}).Where("id = ?", m.ID).Updates(map[string]any{
		"start_date":      m.StartDate,
		"end_date":        m.EndDate,
		"duration_months": m.DurationMonths,
		"status":          m.Status,
	}).Error
}
