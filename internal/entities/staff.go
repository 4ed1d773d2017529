package entities

import "time"

type Position string

const (
	PositionLibrarian  Position = "Librarian"
	PositionManager    Position = "Manager"
	PositionAssistant  Position = "Assistant"
	PositionTechnician Position = "Technician"
)

var Positions = []Position{PositionLibrarian, PositionManager, PositionAssistant, PositionTechnician}

func (p Position) Valid() bool {
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

type Staff struct {
	StaffID   uint      `gorm:"primaryKey;autoIncrement:false" json:"staff_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Age       int       `gorm:"not null" json:"age"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Position  Position  `gorm:"size:20;not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func (Staff) TableName() string {
	return "staff"
}
