// Package desk is the presentation contract shared by the command line and
// any other front end: a command enum, string forms as a user typed them,
// a per-user session and one dispatcher that calls the managers.
//
// The desk holds no business rules. It parses form strings into typed
// inputs, calls one manager operation and returns its payload or typed error.
package desk

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/mrlokans/librarydesk/internal/apperr"
	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/membership"
	"github.com/mrlokans/librarydesk/internal/signin"
	"github.com/mrlokans/librarydesk/internal/staff"
	"github.com/mrlokans/librarydesk/internal/validation"
)

type Catalog interface {
	AddBook(ctx context.Context, title, author string, copies int) (*entities.Book, error)
	BorrowBook(ctx context.Context, title string) (*entities.BookListing, error)
	BorrowBookByID(ctx context.Context, id uint) (*entities.BookListing, error)
	ReturnBook(ctx context.Context, title string) (*entities.BookListing, error)
	ReturnBookByID(ctx context.Context, id uint) (*entities.BookListing, error)
	DeleteBook(ctx context.Context, title string) (uint, error)
	DeleteBookByID(ctx context.Context, id uint) error
	ListBooks(ctx context.Context) iter.Seq2[entities.BookListing, error]
	InventoryStatus(ctx context.Context) (entities.InventoryStatus, error)
}

type Memberships interface {
	AddMember(ctx context.Context, in membership.MemberInput, durationMonths int) (*entities.Member, *entities.Membership, error)
	EnsureMember(ctx context.Context, in membership.MemberInput) (*entities.Member, bool, error)
	CreateMembership(ctx context.Context, in membership.MembershipInput) (*entities.Membership, error)
	CancelMembership(ctx context.Context, memberID uint) (*entities.Membership, error)
	RenewMembership(ctx context.Context, memberID uint) (*entities.Membership, error)
	GetMembershipDetails(ctx context.Context, memberID uint) (*entities.Membership, error)
	ListMembers(ctx context.Context) iter.Seq2[entities.Member, error]
}

type StaffRegistry interface {
	AddStaff(ctx context.Context, in staff.StaffInput) (*entities.Staff, error)
	ListStaff(ctx context.Context) iter.Seq2[entities.Staff, error]
}

type SignInLedger interface {
	RecordSignIn(id, name string, role entities.SignInRole) (entities.SignInRecord, error)
	GenerateReport() iter.Seq2[string, error]
}

type ReportExporter interface {
	Export() (signin.ExportResult, error)
}

// Services are the managers a desk dispatches to.
type Services struct {
	Catalog     Catalog
	Memberships Memberships
	Staff       StaffRegistry
	Ledger      SignInLedger
	Exporter    ReportExporter
}

// Session carries what the previous commands of one user produced, so a
// form can leave an id blank to mean "the one I just used".
type Session struct {
	LastMemberID uint
	LastBookID   uint
}

// Form holds raw field values keyed by Field.Name.
type Form map[string]string

func (f Form) value(name string) string {
	return strings.TrimSpace(f[name])
}

// Result is the payload of a successful command.
type Result struct {
	Command Command
	Message string
	Data    any
}

type Desk struct {
	svc Services
}

func New(svc Services) *Desk {
	return &Desk{svc: svc}
}

// Dispatch runs cmd with the values in form. The session is updated with
// ids the command touched.
func (d *Desk) Dispatch(ctx context.Context, s *Session, cmd Command, form Form) (Result, error) {
	if s == nil {
		s = &Session{}
	}
	if form == nil {
		form = Form{}
	}
	op := cmd.String()
	res := Result{Command: cmd}

	switch cmd {
	case CommandAddBook:
		copies, err := validation.PositiveInt(op, "copies", form.value("copies"))
		if err != nil {
			return res, err
		}
		book, err := d.svc.Catalog.AddBook(ctx, form.value("title"), form.value("author"), int(copies))
		if err != nil {
			return res, err
		}
		s.LastBookID = book.ID
		res.Message = fmt.Sprintf("Added %q by %s as book %d with %d copies", book.Title, book.Author, book.ID, copies)
		res.Data = book

	case CommandBorrowBook, CommandReturnBook:
		listing, err := d.loan(ctx, s, cmd, form)
		if err != nil {
			return res, err
		}
		s.LastBookID = listing.ID
		verb := "Borrowed"
		if cmd == CommandReturnBook {
			verb = "Returned"
		}
		res.Message = fmt.Sprintf("%s a copy of %q: %d of %d available", verb, listing.Title, listing.AvailableCopies, listing.TotalCopies)
		res.Data = listing

	case CommandDeleteBook:
		var id uint
		if title := form.value("title"); title != "" {
			deleted, err := d.svc.Catalog.DeleteBook(ctx, title)
			if err != nil {
				return res, err
			}
			id = deleted
		} else {
			bookID, err := idField(op, form, "book_id", s.LastBookID)
			if err != nil {
				return res, err
			}
			if err := d.svc.Catalog.DeleteBookByID(ctx, bookID); err != nil {
				return res, err
			}
			id = bookID
		}
		if s.LastBookID == id {
			s.LastBookID = 0
		}
		res.Message = fmt.Sprintf("Deleted book %d", id)
		res.Data = id

	case CommandListBooks:
		rows, err := collect(d.svc.Catalog.ListBooks(ctx))
		if err != nil {
			return res, err
		}
		res.Message = fmt.Sprintf("%d books", len(rows))
		res.Data = rows

	case CommandInventoryStatus:
		status, err := d.svc.Catalog.InventoryStatus(ctx)
		if err != nil {
			return res, err
		}
		res.Message = fmt.Sprintf("%d books, %d of %d copies on the shelf", status.Books, status.AvailableCopies, status.TotalCopies)
		res.Data = status

	case CommandAddMember:
		in, err := memberInput(op, form)
		if err != nil {
			return res, err
		}
		months, err := validation.PositiveInt(op, "duration", form.value("duration"))
		if err != nil {
			return res, err
		}
		member, ms, err := d.svc.Memberships.AddMember(ctx, in, int(months))
		if err != nil {
			return res, err
		}
		s.LastMemberID = member.MemberID
		res.Message = fmt.Sprintf("Registered %s (member %d) until %s, fee %d",
			member.Name, member.MemberID, ms.EndDate.Format(membership.DateLayout), ms.Fee)
		res.Data = ms

	case CommandEnsureMember:
		in, err := memberInput(op, form)
		if err != nil {
			return res, err
		}
		member, created, err := d.svc.Memberships.EnsureMember(ctx, in)
		if err != nil {
			return res, err
		}
		s.LastMemberID = member.MemberID
		res.Message = fmt.Sprintf("Found member %d (%s)", member.MemberID, member.Name)
		if created {
			res.Message = fmt.Sprintf("Created member %d (%s)", member.MemberID, member.Name)
		}
		res.Data = member

	case CommandListMembers:
		rows, err := collect(d.svc.Memberships.ListMembers(ctx))
		if err != nil {
			return res, err
		}
		res.Message = fmt.Sprintf("%d members", len(rows))
		res.Data = rows

	case CommandCreateMembership:
		memberID, err := idField(op, form, "member_id", s.LastMemberID)
		if err != nil {
			return res, err
		}
		months, err := validation.PositiveInt(op, "duration", form.value("duration"))
		if err != nil {
			return res, err
		}
		ms, err := d.svc.Memberships.CreateMembership(ctx, membership.MembershipInput{
			MemberID:       memberID,
			DurationMonths: int(months),
			StartDate:      form.value("start_date"),
			Type:           entities.MembershipType(form.value("type")),
		})
		if err != nil {
			return res, err
		}
		s.LastMemberID = memberID
		res.Message = describeMembership("Opened", ms)
		res.Data = ms

	case CommandCancelMembership, CommandRenewMembership, CommandMembershipDetails:
		memberID, err := idField(op, form, "member_id", s.LastMemberID)
		if err != nil {
			return res, err
		}
		var ms *entities.Membership
		verb := "Current"
		switch cmd {
		case CommandCancelMembership:
			ms, err = d.svc.Memberships.CancelMembership(ctx, memberID)
			verb = "Cancelled"
		case CommandRenewMembership:
			ms, err = d.svc.Memberships.RenewMembership(ctx, memberID)
			verb = "Renewed"
		default:
			ms, err = d.svc.Memberships.GetMembershipDetails(ctx, memberID)
		}
		if err != nil {
			return res, err
		}
		s.LastMemberID = memberID
		res.Message = describeMembership(verb, ms)
		res.Data = ms

	case CommandAddStaff:
		staffID, err := validation.PositiveInt(op, "staff_id", form.value("staff_id"))
		if err != nil {
			return res, err
		}
		age, err := validation.PositiveInt(op, "age", form.value("age"))
		if err != nil {
			return res, err
		}
		st, err := d.svc.Staff.AddStaff(ctx, staff.StaffInput{
			StaffID:  uint(staffID),
			Name:     form.value("name"),
			Age:      int(age),
			Email:    form.value("email"),
			Position: entities.Position(form.value("position")),
		})
		if err != nil {
			return res, err
		}
		res.Message = fmt.Sprintf("Registered %s as %s (staff %d)", st.Name, st.Position, st.StaffID)
		res.Data = st

	case CommandListStaff:
		rows, err := collect(d.svc.Staff.ListStaff(ctx))
		if err != nil {
			return res, err
		}
		res.Message = fmt.Sprintf("%d staff", len(rows))
		res.Data = rows

	case CommandSignIn:
		rec, err := d.svc.Ledger.RecordSignIn(form.value("id"), form.value("name"), entities.SignInRole(form.value("role")))
		if err != nil {
			return res, err
		}
		res.Message = fmt.Sprintf("%s %s signed in at %s", rec.Role, rec.Name, rec.Timestamp.Format(signin.TimestampLayout))
		res.Data = rec

	case CommandSignInReport:
		lines, err := collect(d.svc.Ledger.GenerateReport())
		if err != nil {
			return res, err
		}
		res.Message = fmt.Sprintf("%d sign-ins", len(lines))
		res.Data = lines

	case CommandExportReport:
		if d.svc.Exporter == nil {
			return res, apperr.Validation(op, "report export is not configured")
		}
		out, err := d.svc.Exporter.Export()
		if err != nil {
			return res, err
		}
		res.Message = fmt.Sprintf("Wrote %d sign-ins to %s", out.Lines, out.Path)
		res.Data = out

	default:
		return res, apperr.Validation("Dispatch", "unknown command")
	}
	return res, nil
}

func (d *Desk) loan(ctx context.Context, s *Session, cmd Command, form Form) (*entities.BookListing, error) {
	borrow := cmd == CommandBorrowBook
	if title := form.value("title"); title != "" {
		if borrow {
			return d.svc.Catalog.BorrowBook(ctx, title)
		}
		return d.svc.Catalog.ReturnBook(ctx, title)
	}
	id, err := idField(cmd.String(), form, "book_id", s.LastBookID)
	if err != nil {
		return nil, err
	}
	if borrow {
		return d.svc.Catalog.BorrowBookByID(ctx, id)
	}
	return d.svc.Catalog.ReturnBookByID(ctx, id)
}

// idField parses a positive id, falling back to the session value when
// the field is blank.
func idField(op string, form Form, name string, fallback uint) (uint, error) {
	raw := form.value(name)
	if raw == "" {
		if fallback == 0 {
			return 0, apperr.Validation(op, "%s is required", name)
		}
		return fallback, nil
	}
	id, err := validation.PositiveInt(op, name, raw)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func memberInput(op string, form Form) (membership.MemberInput, error) {
	id, err := validation.PositiveInt(op, "member_id", form.value("member_id"))
	if err != nil {
		return membership.MemberInput{}, err
	}
	age, err := validation.PositiveInt(op, "age", form.value("age"))
	if err != nil {
		return membership.MemberInput{}, err
	}
	return membership.MemberInput{
		MemberID: uint(id),
		Name:     form.value("name"),
		Age:      int(age),
		Email:    form.value("email"),
	}, nil
}

func describeMembership(verb string, ms *entities.Membership) string {
	return fmt.Sprintf("%s %s membership for member %d: %s to %s, fee %d, %s",
		verb, ms.Type, ms.MemberID,
		ms.StartDate.Format(membership.DateLayout), ms.EndDate.Format(membership.DateLayout),
		ms.Fee, ms.Status)
}

func collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	out := []T{}
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
