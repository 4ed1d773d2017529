// Package books provides database operations for catalog books and their
// inventory rows.
//
// Every mutating method expects to run inside a transaction opened by the
// gateway; the statements themselves are single-row and conditional so
// copy counts stay within [0, total] even when callers race.
//
// # Usage
//
//	err := db.WithTransaction(ctx, "AddBook", func(tx *gorm.DB) error {
//		repo := books.NewRepository(tx)
//		id, err := repo.NextBookID()
//		...
//	})
package books

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/librarydesk/internal/entities"
)

// Statements run directly through the gateway.
const (
	ListStatement = `SELECT b.id AS id, b.title AS title, b.author AS author,
		i.total_copies AS total_copies, i.available_copies AS available_copies
		FROM books b JOIN inventories i ON i.book_id = b.id
		ORDER BY b.id`

	GetStatement = `SELECT b.id AS id, b.title AS title, b.author AS author,
		i.total_copies AS total_copies, i.available_copies AS available_copies
		FROM books b JOIN inventories i ON i.book_id = b.id
		WHERE b.id = ?`

	StatusStatement = `SELECT COUNT(*) AS books,
		COALESCE(SUM(i.total_copies), 0) AS total_copies,
		COALESCE(SUM(i.available_copies), 0) AS available_copies
		FROM books b JOIN inventories i ON i.book_id = b.id`

	DecrementStatement = `UPDATE inventories SET available_copies = available_copies - 1
		WHERE book_id = ? AND available_copies > 0`

	IncrementStatement = `UPDATE inventories SET available_copies = available_copies + 1
		WHERE book_id = ? AND available_copies < total_copies`
)

// Repository handles book and inventory database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NextBookID issues the next book id: one past the larger of the stored
// high-water mark and the current maximum id. The mark is advanced in the
// same transaction, so ids of deleted books are never handed out again.
func (r *Repository) NextBookID() (uint, error) {
	var seq entities.Sequence
	if err := r.db.Where("name = ?", entities.BookSequence).Limit(1).Find(&seq).Error; err != nil {
		return 0, err
	}

	var maxID uint
	if err := r.db.Model(&entities.Book{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
		return 0, err
	}

	next := max(seq.Value, maxID) + 1
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&entities.Sequence{Name: entities.BookSequence, Value: next}).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Create inserts the book and its inventory row with every copy available.
func (r *Repository) Create(book *entities.Book, copies int) error {
	if err := r.db.Omit(clause.Associations).Create(book).Error; err != nil {
		return err
	}
	inv := &entities.Inventory{
		BookID:          book.ID,
		TotalCopies:     copies,
		AvailableCopies: copies,
	}
	if err := r.db.Create(inv).Error; err != nil {
		return err
	}
	book.Inventory = inv
	return nil
}

// GetListing returns the listing row for one book.
func (r *Repository) GetListing(id uint) (*entities.BookListing, error) {
	var row entities.BookListing
	result := r.db.Raw(GetStatement, id).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

// FirstIDByTitle returns the lowest book id with the given title, or 0.
func (r *Repository) FirstIDByTitle(title string) (uint, error) {
	return r.firstID(r.db.Table("books b").Where("b.title = ?", title))
}

// FirstBorrowableID returns the lowest id of a book with the given title
// that has a copy on the shelf, or 0.
func (r *Repository) FirstBorrowableID(title string) (uint, error) {
	return r.firstID(r.db.Table("books b").
		Joins("JOIN inventories i ON i.book_id = b.id").
		Where("b.title = ? AND i.available_copies > 0", title))
}

// FirstReturnableID returns the lowest id of a book with the given title
// that has a copy out on loan, or 0.
func (r *Repository) FirstReturnableID(title string) (uint, error) {
	return r.firstID(r.db.Table("books b").
		Joins("JOIN inventories i ON i.book_id = b.id").
		Where("b.title = ? AND i.available_copies < i.total_copies", title))
}

func (r *Repository) firstID(q *gorm.DB) (uint, error) {
	var ids []uint
	if err := q.Order("b.id").Limit(1).Pluck("b.id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

// Decrement takes one copy off the shelf if any is available.
// Returns the number of rows changed (0 or 1).
func (r *Repository) Decrement(id uint) (int64, error) {
	result := r.db.Exec(DecrementStatement, id)
	return result.RowsAffected, result.Error
}

// Increment puts one copy back on the shelf if any is out on loan.
// Returns the number of rows changed (0 or 1).
func (r *Repository) Increment(id uint) (int64, error) {
	result := r.db.Exec(IncrementStatement, id)
	return result.RowsAffected, result.Error
}

// Delete removes the inventory row and then the book.
// Returns the number of book rows removed.
func (r *Repository) Delete(id uint) (int64, error) {
	if err := r.db.Where("book_id = ?", id).Delete(&entities.Inventory{}).Error; err != nil {
		return 0, err
	}
	result := r.db.Delete(&entities.Book{}, id)
	return result.RowsAffected, result.Error
}
