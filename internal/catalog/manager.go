// Package catalog owns books and their inventory. It keeps every book's
// available copies between zero and its total copies.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mrlokans/librarydesk/internal/apperr"
	"github.com/mrlokans/librarydesk/internal/database"
	"github.com/mrlokans/librarydesk/internal/database/books"
	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/logging"
	"github.com/mrlokans/librarydesk/internal/validation"
)

// maxAttempts bounds how often a title operation re-picks a book after a
// concurrent caller changed the copy it selected.
const maxAttempts = 3

// AuditLogger receives a record of every catalog mutation.
type AuditLogger interface {
	LogCatalog(action, description string, bookID uint, err error)
}

type Manager struct {
	db    *database.Database
	audit AuditLogger
	log   zerolog.Logger
}

type Option func(*Manager)

func WithAuditLogger(a AuditLogger) Option {
	return func(m *Manager) { m.audit = a }
}

func NewManager(db *database.Database, opts ...Option) *Manager {
	m := &Manager{db: db, log: logging.Component("catalog")}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddBookInput is the validated form of an add-book request.
type AddBookInput struct {
	Title  string `json:"title" validate:"notblank"`
	Author string `json:"author" validate:"notblank"`
	Copies int    `json:"copies" validate:"gt=0"`
}

// AddBook catalogs a new book with copies available copies. The book and
// its inventory row are written in one transaction.
func (m *Manager) AddBook(ctx context.Context, title, author string, copies int) (*entities.Book, error) {
	const op = "AddBook"
	in := AddBookInput{Title: strings.TrimSpace(title), Author: strings.TrimSpace(author), Copies: copies}
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}

	var book *entities.Book
	var err error
	// On server databases two adders can read the same high-water mark;
	// the loser hits the primary key and takes the next id.
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = m.db.WithTransaction(ctx, op, func(tx *gorm.DB) error {
			repo := books.NewRepository(tx)
			id, err := repo.NextBookID()
			if err != nil {
				return err
			}
			book = &entities.Book{ID: id, Title: in.Title, Author: in.Author}
			return repo.Create(book, in.Copies)
		})
		if !errors.Is(err, apperr.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		m.record("book_add", fmt.Sprintf("Add %q by %s", in.Title, in.Author), 0, err)
		return nil, err
	}

	m.log.Info().Uint("book_id", book.ID).Str("title", book.Title).Int("copies", in.Copies).Msg("book added")
	m.record("book_add", fmt.Sprintf("Added %q by %s with %d copies", book.Title, book.Author, in.Copies), book.ID, nil)
	return book, nil
}

// BorrowBook takes one copy of the first book (lowest id) titled title that
// has a copy on the shelf. It fails with a not-available error when no such
// book exists or every matching book is fully on loan.
func (m *Manager) BorrowBook(ctx context.Context, title string) (*entities.BookListing, error) {
	const op = "BorrowBook"
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation(op, "title is required")
	}

	var listing *entities.BookListing
	err := m.db.WithTransaction(ctx, op, func(tx *gorm.DB) error {
		repo := books.NewRepository(tx)
		for attempt := 0; attempt < maxAttempts; attempt++ {
			id, err := repo.FirstBorrowableID(title)
			if err != nil {
				return err
			}
			if id == 0 {
				break
			}
			n, err := repo.Decrement(id)
			if err != nil {
				return err
			}
			if n == 1 {
				listing, err = repo.GetListing(id)
				return err
			}
		}
		return apperr.NotAvailable(op, "no copies of %q are available", title)
	})
	return m.finishLoan(op, "book_borrow", title, listing, err)
}

// BorrowBookByID takes one copy of the book with the given id.
func (m *Manager) BorrowBookByID(ctx context.Context, id uint) (*entities.BookListing, error) {
	const op = "BorrowBookByID"
	n, err := m.db.Execute(ctx, op, books.DecrementStatement, id)
	if err == nil && n == 0 {
		err = m.classifyMiss(ctx, op, id, apperr.NotAvailable(op, "no copies of book %d are available", id))
	}
	var listing *entities.BookListing
	if err == nil {
		listing, err = m.GetBook(ctx, id)
	}
	return m.finishLoan(op, "book_borrow", fmt.Sprintf("book %d", id), listing, err)
}

// ReturnBook puts back one copy of the first book (lowest id) titled title
// that has a copy out on loan. Returns a not-found error when no book has
// the title and an over-return error when every copy is already shelved.
func (m *Manager) ReturnBook(ctx context.Context, title string) (*entities.BookListing, error) {
	const op = "ReturnBook"
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation(op, "title is required")
	}

	var listing *entities.BookListing
	err := m.db.WithTransaction(ctx, op, func(tx *gorm.DB) error {
		repo := books.NewRepository(tx)
		anyID, err := repo.FirstIDByTitle(title)
		if err != nil {
			return err
		}
		if anyID == 0 {
			return apperr.NotFound(op, "no book titled %q", title)
		}
		for attempt := 0; attempt < maxAttempts; attempt++ {
			id, err := repo.FirstReturnableID(title)
			if err != nil {
				return err
			}
			if id == 0 {
				break
			}
			n, err := repo.Increment(id)
			if err != nil {
				return err
			}
			if n == 1 {
				listing, err = repo.GetListing(id)
				return err
			}
		}
		return apperr.OverReturn(op, "every copy of %q is already returned", title)
	})
	return m.finishLoan(op, "book_return", title, listing, err)
}

// ReturnBookByID puts back one copy of the book with the given id.
func (m *Manager) ReturnBookByID(ctx context.Context, id uint) (*entities.BookListing, error) {
	const op = "ReturnBookByID"
	n, err := m.db.Execute(ctx, op, books.IncrementStatement, id)
	if err == nil && n == 0 {
		err = m.classifyMiss(ctx, op, id, apperr.OverReturn(op, "every copy of book %d is already returned", id))
	}
	var listing *entities.BookListing
	if err == nil {
		listing, err = m.GetBook(ctx, id)
	}
	return m.finishLoan(op, "book_return", fmt.Sprintf("book %d", id), listing, err)
}

// DeleteBook removes the first book (lowest id) titled title together with
// its inventory row. Returns the id of the removed book.
func (m *Manager) DeleteBook(ctx context.Context, title string) (uint, error) {
	const op = "DeleteBook"
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, apperr.Validation(op, "title is required")
	}

	var deleted uint
	err := m.db.WithTransaction(ctx, op, func(tx *gorm.DB) error {
		repo := books.NewRepository(tx)
		id, err := repo.FirstIDByTitle(title)
		if err != nil {
			return err
		}
		if id == 0 {
			return apperr.NotFound(op, "no book titled %q", title)
		}
		n, err := repo.Delete(id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound(op, "no book titled %q", title)
		}
		deleted = id
		return nil
	})
	if err != nil {
		m.record("book_delete", fmt.Sprintf("Delete %q", title), 0, err)
		return 0, err
	}
	m.log.Info().Uint("book_id", deleted).Str("title", title).Msg("book deleted")
	m.record("book_delete", fmt.Sprintf("Deleted %q", title), deleted, nil)
	return deleted, nil
}

// DeleteBookByID removes the book with the given id and its inventory row.
func (m *Manager) DeleteBookByID(ctx context.Context, id uint) error {
	const op = "DeleteBookByID"
	err := m.db.WithTransaction(ctx, op, func(tx *gorm.DB) error {
		n, err := books.NewRepository(tx).Delete(id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound(op, "no book with id %d", id)
		}
		return nil
	})
	if err != nil {
		m.record("book_delete", fmt.Sprintf("Delete book %d", id), id, err)
		return err
	}
	m.log.Info().Uint("book_id", id).Msg("book deleted")
	m.record("book_delete", fmt.Sprintf("Deleted book %d", id), id, nil)
	return nil
}

// GetBook returns the listing row of one book.
func (m *Manager) GetBook(ctx context.Context, id uint) (*entities.BookListing, error) {
	const op = "GetBook"
	for row, err := range database.Query[entities.BookListing](ctx, m.db, op, books.GetStatement, id) {
		if err != nil {
			return nil, err
		}
		return &row, nil
	}
	return nil, apperr.NotFound(op, "no book with id %d", id)
}

// ListBooks returns every book with its copy counts, ordered by id. The
// sequence reads the store each time it is ranged over.
func (m *Manager) ListBooks(ctx context.Context) iter.Seq2[entities.BookListing, error] {
	return database.Query[entities.BookListing](ctx, m.db, "ListBooks", books.ListStatement)
}

// InventoryStatus aggregates book and copy counts across the catalog.
func (m *Manager) InventoryStatus(ctx context.Context) (entities.InventoryStatus, error) {
	for status, err := range database.Query[entities.InventoryStatus](ctx, m.db, "InventoryStatus", books.StatusStatement) {
		return status, err
	}
	return entities.InventoryStatus{}, nil
}

// classifyMiss turns a conditional update that changed nothing into a
// not-found error when the book is absent, or miss otherwise.
func (m *Manager) classifyMiss(ctx context.Context, op string, id uint, miss error) error {
	if _, err := m.GetBook(ctx, id); err != nil {
		return apperr.WithOp(op, err)
	}
	return miss
}

func (m *Manager) finishLoan(op, action, subject string, listing *entities.BookListing, err error) (*entities.BookListing, error) {
	if err != nil {
		m.log.Debug().Err(err).Str("op", op).Str("subject", subject).Msg("loan rejected")
		m.record(action, fmt.Sprintf("%s %s", op, subject), 0, err)
		return nil, err
	}
	m.log.Info().
		Str("op", op).
		Uint("book_id", listing.ID).
		Int("available", listing.AvailableCopies).
		Int("total", listing.TotalCopies).
		Msg("inventory updated")
	m.record(action, fmt.Sprintf("%s %q: %d of %d available", op, listing.Title, listing.AvailableCopies, listing.TotalCopies), listing.ID, nil)
	return listing, nil
}

func (m *Manager) record(action, description string, bookID uint, err error) {
	if m.audit != nil {
		m.audit.LogCatalog(action, description, bookID, err)
	}
}
