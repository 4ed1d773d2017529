package entities

import "time"

type MembershipType string

const (
	MembershipRegular MembershipType = "Regular"
	MembershipVIP     MembershipType = "VIP"
	MembershipPremium MembershipType = "Premium"
)

// MembershipTypes lists accepted types in display order.
var MembershipTypes = []MembershipType{MembershipRegular, MembershipVIP, MembershipPremium}

// Fee returns the fee charged for a membership of this type.
func (t MembershipType) Fee() (int, bool) {
	switch t {
	case MembershipRegular:
		return 50, true
	case MembershipVIP:
		return 100, true
	case MembershipPremium:
		return 150, true
	}
	return 0, false
}

type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "Active"
	MembershipCancelled MembershipStatus = "Cancelled"
)

// MembershipDurations lists the accepted durations in months.
var MembershipDurations = []int{3, 6, 12}

// DurationFee is the fee for a Regular membership opened at member
// registration, keyed by duration in months.
func DurationFee(months int) (int, bool) {
	switch months {
	case 3:
		return 30, true
	case 6:
		return 100, true
	case 12:
		return 150, true
	}
	return 0, false
}

type Member struct {
	MemberID  uint      `gorm:"primaryKey;autoIncrement:false" json:"member_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Age       int       `gorm:"not null" json:"age"`
	Email     string    `gorm:"size:255" json:"email"`
	CreatedAt time.Time `json:"created_at"`

	Memberships []Membership `gorm:"foreignKey:MemberID;references:MemberID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

// Membership is one subscription window for a member. The member's current
// membership is the most recently created row.
type Membership struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	MemberID       uint             `gorm:"not null;index" json:"member_id"`
	DurationMonths int              `gorm:"not null" json:"duration_months"`
	StartDate      time.Time        `gorm:"not null" json:"start_date"`
	EndDate        time.Time        `gorm:"not null" json:"end_date"`
	Type           MembershipType   `gorm:"size:20;not null" json:"type"`
	Fee            int              `gorm:"not null" json:"fee"`
	Status         MembershipStatus `gorm:"size:20;not null;index" json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (Membership) TableName() string {
	return "memberships"
}
