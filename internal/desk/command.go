package desk

import (
	"fmt"
	"strings"
)

// Command names one desk action. Presentation adapters dispatch on it
// instead of on widget identity.
type Command int

const (
	CommandUnknown Command = iota
	CommandAddBook
	CommandBorrowBook
	CommandReturnBook
	CommandDeleteBook
	CommandListBooks
	CommandInventoryStatus
	CommandAddMember
	CommandEnsureMember
	CommandListMembers
	CommandCreateMembership
	CommandCancelMembership
	CommandRenewMembership
	CommandMembershipDetails
	CommandAddStaff
	CommandListStaff
	CommandSignIn
	CommandSignInReport
	CommandExportReport
)

// Field is one input a command reads from its form.
type Field struct {
	Name     string
	Prompt   string
	Optional bool
}

type commandInfo struct {
	name   string
	help   string
	fields []Field
}

var commandTable = map[Command]commandInfo{
	CommandAddBook: {"add book", "Catalogue a new book", []Field{
		{Name: "title", Prompt: "Title"},
		{Name: "author", Prompt: "Author"},
		{Name: "copies", Prompt: "Copies"},
	}},
	CommandBorrowBook: {"borrow book", "Lend one copy", []Field{
		{Name: "title", Prompt: "Title (blank to use book id)", Optional: true},
		{Name: "book_id", Prompt: "Book ID (blank for last book)", Optional: true},
	}},
	CommandReturnBook: {"return book", "Take back one copy", []Field{
		{Name: "title", Prompt: "Title (blank to use book id)", Optional: true},
		{Name: "book_id", Prompt: "Book ID (blank for last book)", Optional: true},
	}},
	CommandDeleteBook: {"delete book", "Remove a book and its inventory", []Field{
		{Name: "title", Prompt: "Title (blank to use book id)", Optional: true},
		{Name: "book_id", Prompt: "Book ID (blank for last book)", Optional: true},
	}},
	CommandListBooks:       {"list books", "Show the catalogue", nil},
	CommandInventoryStatus: {"inventory", "Show copy totals", nil},
	CommandAddMember: {"add member", "Register a member with a Regular membership", []Field{
		{Name: "member_id", Prompt: "Member ID"},
		{Name: "name", Prompt: "Name"},
		{Name: "age", Prompt: "Age"},
		{Name: "email", Prompt: "Email", Optional: true},
		{Name: "duration", Prompt: "Duration in months (3, 6, 12)"},
	}},
	CommandEnsureMember: {"ensure member", "Find a member or create it", []Field{
		{Name: "member_id", Prompt: "Member ID"},
		{Name: "name", Prompt: "Name"},
		{Name: "age", Prompt: "Age"},
		{Name: "email", Prompt: "Email", Optional: true},
	}},
	CommandListMembers: {"list members", "Show registered members", nil},
	CommandCreateMembership: {"create membership", "Open a membership for a member", []Field{
		{Name: "member_id", Prompt: "Member ID (blank for last member)", Optional: true},
		{Name: "duration", Prompt: "Duration in months (3, 6, 12)"},
		{Name: "start_date", Prompt: "Start date (yyyy-MM-dd)"},
		{Name: "type", Prompt: "Type (Regular, VIP, Premium)"},
	}},
	CommandCancelMembership: {"cancel membership", "Cancel the current membership", []Field{
		{Name: "member_id", Prompt: "Member ID (blank for last member)", Optional: true},
	}},
	CommandRenewMembership: {"renew membership", "Renew the current membership for a year", []Field{
		{Name: "member_id", Prompt: "Member ID (blank for last member)", Optional: true},
	}},
	CommandMembershipDetails: {"membership details", "Show the current membership", []Field{
		{Name: "member_id", Prompt: "Member ID (blank for last member)", Optional: true},
	}},
	CommandAddStaff: {"add staff", "Register an employee", []Field{
		{Name: "staff_id", Prompt: "Staff ID"},
		{Name: "name", Prompt: "Name"},
		{Name: "age", Prompt: "Age"},
		{Name: "email", Prompt: "Email"},
		{Name: "position", Prompt: "Position (Librarian, Manager, Assistant, Technician)"},
	}},
	CommandListStaff: {"list staff", "Show employees", nil},
	CommandSignIn: {"sign in", "Record an attendance", []Field{
		{Name: "id", Prompt: "ID"},
		{Name: "name", Prompt: "Name"},
		{Name: "role", Prompt: "Role (Staff, Reader)"},
	}},
	CommandSignInReport: {"report", "Show the sign-in report", nil},
	CommandExportReport: {"export report", "Save a snapshot of the sign-in report", nil},
}

// Commands lists every dispatchable command in menu order.
func Commands() []Command {
	out := make([]Command, 0, len(commandTable))
	for c := CommandAddBook; c <= CommandExportReport; c++ {
		out = append(out, c)
	}
	return out
}

func (c Command) String() string {
	if s, ok := commandTable[c]; ok {
		return s.name
	}
	return "unknown"
}

// Help is a one-line description of the command.
func (c Command) Help() string {
	return commandTable[c].help
}

// Fields lists the form inputs the command reads, in prompt order.
func (c Command) Fields() []Field {
	return commandTable[c].fields
}

// ParseCommand resolves a typed command name. Case, surrounding space and
// dashes or underscores in place of spaces are ignored.
func ParseCommand(raw string) (Command, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	for c, s := range commandTable {
		if s.name == name {
			return c, nil
		}
	}
	return CommandUnknown, fmt.Errorf("unknown command %q", raw)
}
