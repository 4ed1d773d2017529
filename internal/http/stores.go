package http

import (
	"context"
	"iter"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/librarydesk/internal/audit"
	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/membership"
	"github.com/mrlokans/librarydesk/internal/scheduler"
	"github.com/mrlokans/librarydesk/internal/staff"
)

// This file consolidates the manager interfaces used by HTTP controllers.
// Each controller depends only on the operations it calls.

// BookStore is the catalog as seen by BooksController.
type BookStore interface {
	AddBook(ctx context.Context, title, author string, copies int) (*entities.Book, error)
	GetBook(ctx context.Context, id uint) (*entities.BookListing, error)
	BorrowBook(ctx context.Context, title string) (*entities.BookListing, error)
	BorrowBookByID(ctx context.Context, id uint) (*entities.BookListing, error)
	ReturnBook(ctx context.Context, title string) (*entities.BookListing, error)
	ReturnBookByID(ctx context.Context, id uint) (*entities.BookListing, error)
	DeleteBook(ctx context.Context, title string) (uint, error)
	DeleteBookByID(ctx context.Context, id uint) error
	ListBooks(ctx context.Context) iter.Seq2[entities.BookListing, error]
	InventoryStatus(ctx context.Context) (entities.InventoryStatus, error)
}

// MemberStore covers members and their memberships.
type MemberStore interface {
	AddMember(ctx context.Context, in membership.MemberInput, durationMonths int) (*entities.Member, *entities.Membership, error)
	EnsureMember(ctx context.Context, in membership.MemberInput) (*entities.Member, bool, error)
	ListMembers(ctx context.Context) iter.Seq2[entities.Member, error]
	CreateMembership(ctx context.Context, in membership.MembershipInput) (*entities.Membership, error)
	CancelMembership(ctx context.Context, memberID uint) (*entities.Membership, error)
	RenewMembership(ctx context.Context, memberID uint) (*entities.Membership, error)
	GetMembershipDetails(ctx context.Context, memberID uint) (*entities.Membership, error)
}

type StaffStore interface {
	AddStaff(ctx context.Context, in staff.StaffInput) (*entities.Staff, error)
	ListStaff(ctx context.Context) iter.Seq2[entities.Staff, error]
}

type SignInStore interface {
	RecordSignIn(id, name string, role entities.SignInRole) (entities.SignInRecord, error)
	Records() iter.Seq2[entities.SignInRecord, error]
	GenerateReport() iter.Seq2[string, error]
}

type AuditReader interface {
	Events(ctx context.Context, f audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// Schedule is the cron side of maintenance: what runs when, and a way to
// fire a configured job early.
type Schedule interface {
	Jobs() []scheduler.ScheduledJob
	IsRunning() bool
	RunNow(name string) (string, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// Pinger reports whether the relational store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}
