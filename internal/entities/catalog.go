package entities

import "time"

// Book is a catalog title. IDs are issued by the catalog from the book
// sequence and never reused.
type Book struct {
	ID        uint       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title     string     `gorm:"size:255;not null;index" json:"title"`
	Author    string     `gorm:"size:255;not null" json:"author"`
	Inventory *Inventory `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"inventory,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Book) TableName() string {
	return "books"
}

// Inventory holds copy counts for exactly one Book.
type Inventory struct {
	BookID          uint `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	TotalCopies     int  `gorm:"not null;check:chk_inventory_total,total_copies >= 0" json:"total_copies"`
	AvailableCopies int  `gorm:"not null;check:chk_inventory_available,available_copies >= 0 AND available_copies <= total_copies" json:"available_copies"`
}

func (Inventory) TableName() string {
	return "inventories"
}

// Sequence is a named high-water mark for application-issued identifiers.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:50"`
	Value uint   `gorm:"not null"`
}

func (Sequence) TableName() string {
	return "sequences"
}

const BookSequence = "books"

// BookListing is one row of the catalog listing.
type BookListing struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// InventoryStatus aggregates copy counts across the catalog.
type InventoryStatus struct {
	Books           int64 `json:"books"`
	TotalCopies     int64 `json:"total_copies"`
	AvailableCopies int64 `json:"available_copies"`
}

// BorrowedCopies is the number of copies currently out on loan.
func (s InventoryStatus) BorrowedCopies() int64 {
	return s.TotalCopies - s.AvailableCopies
}
