package desk

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarydesk/internal/apperr"
	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/membership"
	"github.com/mrlokans/librarydesk/internal/signin"
	"github.com/mrlokans/librarydesk/internal/staff"
)

type fakeCatalog struct {
	calls []string
	books []entities.BookListing
	err   error
}

func (f *fakeCatalog) listing(id uint, title string) *entities.BookListing {
	return &entities.BookListing{ID: id, Title: title, Author: "A", TotalCopies: 2, AvailableCopies: 1}
}

func (f *fakeCatalog) AddBook(ctx context.Context, title, author string, copies int) (*entities.Book, error) {
	f.calls = append(f.calls, "AddBook")
	if f.err != nil {
		return nil, f.err
	}
	return &entities.Book{ID: 11, Title: title, Author: author}, nil
}

func (f *fakeCatalog) BorrowBook(ctx context.Context, title string) (*entities.BookListing, error) {
	f.calls = append(f.calls, "BorrowBook:"+title)
	return f.listing(4, title), f.err
}

func (f *fakeCatalog) BorrowBookByID(ctx context.Context, id uint) (*entities.BookListing, error) {
	f.calls = append(f.calls, "BorrowBookByID")
	return f.listing(id, "By ID"), f.err
}

func (f *fakeCatalog) ReturnBook(ctx context.Context, title string) (*entities.BookListing, error) {
	f.calls = append(f.calls, "ReturnBook:"+title)
	return f.listing(4, title), f.err
}

func (f *fakeCatalog) ReturnBookByID(ctx context.Context, id uint) (*entities.BookListing, error) {
	f.calls = append(f.calls, "ReturnBookByID")
	return f.listing(id, "By ID"), f.err
}

func (f *fakeCatalog) DeleteBook(ctx context.Context, title string) (uint, error) {
	f.calls = append(f.calls, "DeleteBook:"+title)
	return 4, f.err
}

func (f *fakeCatalog) DeleteBookByID(ctx context.Context, id uint) error {
	f.calls = append(f.calls, "DeleteBookByID")
	return f.err
}

func (f *fakeCatalog) ListBooks(ctx context.Context) iter.Seq2[entities.BookListing, error] {
	return func(yield func(entities.BookListing, error) bool) {
		for _, b := range f.books {
			if !yield(b, nil) {
				return
			}
		}
	}
}

func (f *fakeCatalog) InventoryStatus(ctx context.Context) (entities.InventoryStatus, error) {
	return entities.InventoryStatus{Books: 2, TotalCopies: 5, AvailableCopies: 3}, nil
}

type fakeMemberships struct {
	lastInput  membership.MemberInput
	lastCreate membership.MembershipInput
	lastID     uint
}

func (f *fakeMemberships) membership(id uint) *entities.Membership {
	return &entities.Membership{
		MemberID:  id,
		Type:      entities.MembershipRegular,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Fee:       100,
		Status:    entities.MembershipActive,
	}
}

func (f *fakeMemberships) AddMember(ctx context.Context, in membership.MemberInput, months int) (*entities.Member, *entities.Membership, error) {
	f.lastInput = in
	return &entities.Member{MemberID: in.MemberID, Name: in.Name}, f.membership(in.MemberID), nil
}

func (f *fakeMemberships) EnsureMember(ctx context.Context, in membership.MemberInput) (*entities.Member, bool, error) {
	f.lastInput = in
	return &entities.Member{MemberID: in.MemberID, Name: in.Name}, true, nil
}

func (f *fakeMemberships) CreateMembership(ctx context.Context, in membership.MembershipInput) (*entities.Membership, error) {
	f.lastCreate = in
	return f.membership(in.MemberID), nil
}

func (f *fakeMemberships) CancelMembership(ctx context.Context, id uint) (*entities.Membership, error) {
	f.lastID = id
	ms := f.membership(id)
	ms.Status = entities.MembershipCancelled
	return ms, nil
}

func (f *fakeMemberships) RenewMembership(ctx context.Context, id uint) (*entities.Membership, error) {
	f.lastID = id
	return f.membership(id), nil
}

func (f *fakeMemberships) GetMembershipDetails(ctx context.Context, id uint) (*entities.Membership, error) {
	f.lastID = id
	return nil, apperr.NotFound("GetMembershipDetails", "member %d has no membership", id)
}

func (f *fakeMemberships) ListMembers(ctx context.Context) iter.Seq2[entities.Member, error] {
	return func(yield func(entities.Member, error) bool) {
		yield(entities.Member{}, apperr.Persistence("ListMembers", errors.New("database is locked")))
	}
}

type fakeStaff struct {
	last staff.StaffInput
}

func (f *fakeStaff) AddStaff(ctx context.Context, in staff.StaffInput) (*entities.Staff, error) {
	f.last = in
	return &entities.Staff{StaffID: in.StaffID, Name: in.Name, Position: in.Position}, nil
}

func (f *fakeStaff) ListStaff(ctx context.Context) iter.Seq2[entities.Staff, error] {
	return func(yield func(entities.Staff, error) bool) {}
}

type fakeLedger struct{}

func (fakeLedger) RecordSignIn(id, name string, role entities.SignInRole) (entities.SignInRecord, error) {
	return entities.SignInRecord{ID: id, Name: name, Role: role, Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}, nil
}

func (fakeLedger) GenerateReport() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield("ID: 1", nil)
	}
}

type fakeExporter struct{}

func (fakeExporter) Export() (signin.ExportResult, error) {
	return signin.ExportResult{Path: "reports/r.txt", Lines: 1}, nil
}

type fixture struct {
	desk    *Desk
	catalog *fakeCatalog
	members *fakeMemberships
	staff   *fakeStaff
}

func newFixture() fixture {
	f := fixture{catalog: &fakeCatalog{}, members: &fakeMemberships{}, staff: &fakeStaff{}}
	f.desk = New(Services{
		Catalog:     f.catalog,
		Memberships: f.members,
		Staff:       f.staff,
		Ledger:      fakeLedger{},
		Exporter:    fakeExporter{},
	})
	return f
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		raw  string
		want Command
	}{
		{"add book", CommandAddBook},
		{"  Add   Book ", CommandAddBook},
		{"borrow-book", CommandBorrowBook},
		{"cancel_membership", CommandCancelMembership},
		{"report", CommandSignInReport},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseCommand("launch rocket")
	assert.Error(t, err)

	for _, c := range Commands() {
		parsed, err := ParseCommand(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
		assert.NotEmpty(t, c.Help())
	}
}

func TestDispatch_Books(t *testing.T) {
	ctx := context.Background()

	t.Run("add remembers the book", func(t *testing.T) {
		f := newFixture()
		s := &Session{}
		res, err := f.desk.Dispatch(ctx, s, CommandAddBook, Form{"title": "Dune", "author": "Herbert", "copies": "3"})
		require.NoError(t, err)
		assert.Equal(t, uint(11), s.LastBookID)
		assert.Contains(t, res.Message, "book 11")
	})

	t.Run("copies must be a number", func(t *testing.T) {
		f := newFixture()
		_, err := f.desk.Dispatch(ctx, &Session{}, CommandAddBook, Form{"title": "Dune", "author": "Herbert", "copies": "three"})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
		assert.Empty(t, f.catalog.calls)
	})

	t.Run("title takes precedence over id", func(t *testing.T) {
		f := newFixture()
		_, err := f.desk.Dispatch(ctx, &Session{}, CommandBorrowBook, Form{"title": "Dune", "book_id": "9"})
		require.NoError(t, err)
		assert.Equal(t, []string{"BorrowBook:Dune"}, f.catalog.calls)
	})

	t.Run("blank id falls back to the session", func(t *testing.T) {
		f := newFixture()
		s := &Session{LastBookID: 5}
		res, err := f.desk.Dispatch(ctx, s, CommandReturnBook, Form{})
		require.NoError(t, err)
		assert.Equal(t, []string{"ReturnBookByID"}, f.catalog.calls)
		assert.Equal(t, uint(5), res.Data.(*entities.BookListing).ID)
	})

	t.Run("no title and no id", func(t *testing.T) {
		f := newFixture()
		_, err := f.desk.Dispatch(ctx, &Session{}, CommandBorrowBook, Form{})
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("delete clears the session book", func(t *testing.T) {
		f := newFixture()
		s := &Session{LastBookID: 4}
		_, err := f.desk.Dispatch(ctx, s, CommandDeleteBook, Form{"title": "Dune"})
		require.NoError(t, err)
		assert.Zero(t, s.LastBookID)
	})

	t.Run("manager errors pass through", func(t *testing.T) {
		f := newFixture()
		f.catalog.err = apperr.NotAvailable("BorrowBook", "no copies of %q are available", "Dune")
		_, err := f.desk.Dispatch(ctx, &Session{}, CommandBorrowBook, Form{"title": "Dune"})
		assert.True(t, errors.Is(err, apperr.ErrNotAvailable))
	})

	t.Run("list returns an empty slice", func(t *testing.T) {
		f := newFixture()
		res, err := f.desk.Dispatch(ctx, nil, CommandListBooks, nil)
		require.NoError(t, err)
		assert.Equal(t, []entities.BookListing{}, res.Data)
	})
}

func TestDispatch_Members(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := &Session{}

	_, err := f.desk.Dispatch(ctx, s, CommandAddMember, Form{
		"member_id": "7", "name": "Alice", "age": "30", "email": "a@example.com", "duration": "6",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), s.LastMemberID)
	assert.Equal(t, membership.MemberInput{MemberID: 7, Name: "Alice", Age: 30, Email: "a@example.com"}, f.members.lastInput)

	res, err := f.desk.Dispatch(ctx, s, CommandCancelMembership, Form{})
	require.NoError(t, err)
	assert.Equal(t, uint(7), f.members.lastID)
	assert.Contains(t, res.Message, "Cancelled")

	_, err = f.desk.Dispatch(ctx, s, CommandCreateMembership, Form{
		"member_id": "8", "duration": "12", "start_date": "2024-02-01", "type": "VIP",
	})
	require.NoError(t, err)
	assert.Equal(t, membership.MembershipInput{MemberID: 8, DurationMonths: 12, StartDate: "2024-02-01", Type: entities.MembershipVIP}, f.members.lastCreate)
	assert.Equal(t, uint(8), s.LastMemberID)

	_, err = f.desk.Dispatch(ctx, s, CommandAddMember, Form{"member_id": "x", "name": "Bob", "age": "20", "duration": "3"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = f.desk.Dispatch(ctx, s, CommandMembershipDetails, Form{"member_id": "9"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, uint(8), s.LastMemberID, "failed commands leave the session alone")

	_, err = f.desk.Dispatch(ctx, s, CommandListMembers, nil)
	assert.True(t, errors.Is(err, apperr.ErrPersistence))
}

func TestDispatch_StaffAndSignIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.desk.Dispatch(ctx, nil, CommandAddStaff, Form{
		"staff_id": "3", "name": "Bob", "age": "41", "email": "bob@library.org", "position": "Manager",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.PositionManager, f.staff.last.Position)

	res, err := f.desk.Dispatch(ctx, nil, CommandSignIn, Form{"id": "1", "name": "Alice", "role": "Reader"})
	require.NoError(t, err)
	assert.Equal(t, "Reader Alice signed in at 2024-01-01T09:00:00.000", res.Message)

	res, err = f.desk.Dispatch(ctx, nil, CommandSignInReport, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID: 1"}, res.Data)

	res, err = f.desk.Dispatch(ctx, nil, CommandExportReport, nil)
	require.NoError(t, err)
	assert.Contains(t, res.Message, "reports/r.txt")

	_, err = f.desk.Dispatch(ctx, nil, CommandUnknown, nil)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{apperr.Validation("AddBook", "copies must be greater than 0"), "Please check the form: copies must be greater than 0"},
		{apperr.NotFound("DeleteBook", "no book titled %q", "X"), `Not found: no book titled "X"`},
		{apperr.Duplicate("AddStaff", "staff id 3 is already registered"), "Already exists: staff id 3 is already registered"},
		{apperr.OverReturn("ReturnBook", "every copy is already returned"), "Nothing to return: every copy is already returned"},
		{apperr.Persistence("ListBooks", errors.New("connection refused")), "The library database is unavailable. Please try again later."},
		{apperr.Timeout("ListBooks", context.DeadlineExceeded), "The library database did not answer in time. Please try again."},
		{errors.New("boom"), "Something went wrong: boom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(tt.err))
	}
}
