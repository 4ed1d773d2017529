// Package staff provides database operations for the staff registry.
package staff

import (
	"gorm.io/gorm"

	"github.com/mrlokans/librarydesk/internal/entities"
)

const ListStatement = `SELECT staff_id, name, age, email, position, created_at
	FROM staff ORDER BY staff_id`

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a staff member. Uniqueness of StaffID is enforced by the
// primary key.
func (r *Repository) Create(s *entities.Staff) error {
	return r.db.Create(s).Error
}

// Get returns gorm.ErrRecordNotFound when the staff id is unknown.
func (r *Repository) Get(staffID uint) (*entities.Staff, error) {
	var s entities.Staff
	if err := r.db.Where("staff_id = ?", staffID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
