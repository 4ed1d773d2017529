package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mrlokans/librarydesk/internal/desk"
	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/membership"
)

// render prints a command result. Listings become tables; everything else
// prints the result message.
func render(w io.Writer, res desk.Result) {
	switch data := res.Data.(type) {
	case []entities.BookListing:
		if len(data) == 0 {
			fmt.Fprintln(w, "No books in library.")
			return
		}
		fmt.Fprintf(w, "%-6s %-30s %-25s %-10s %s\n", "ID", "Title", "Author", "Available", "Total")
		fmt.Fprintln(w, strings.Repeat("-", 82))
		for _, b := range data {
			fmt.Fprintf(w, "%-6d %-30s %-25s %-10d %d\n",
				b.ID, truncateString(b.Title, 30), truncateString(b.Author, 25), b.AvailableCopies, b.TotalCopies)
		}

	case entities.InventoryStatus:
		fmt.Fprintf(w, "Books:            %s\n", humanize.Comma(data.Books))
		fmt.Fprintf(w, "Total copies:     %s\n", humanize.Comma(data.TotalCopies))
		fmt.Fprintf(w, "On the shelf:     %s\n", humanize.Comma(data.AvailableCopies))
		fmt.Fprintf(w, "On loan:          %s\n", humanize.Comma(data.BorrowedCopies()))

	case []entities.Member:
		if len(data) == 0 {
			fmt.Fprintln(w, "No members registered.")
			return
		}
		fmt.Fprintf(w, "%-8s %-30s %-5s %s\n", "ID", "Name", "Age", "Email")
		fmt.Fprintln(w, strings.Repeat("-", 70))
		for _, m := range data {
			fmt.Fprintf(w, "%-8d %-30s %-5d %s\n", m.MemberID, truncateString(m.Name, 30), m.Age, m.Email)
		}

	case []entities.Staff:
		if len(data) == 0 {
			fmt.Fprintln(w, "No staff registered.")
			return
		}
		fmt.Fprintf(w, "%-8s %-25s %-12s %s\n", "ID", "Name", "Position", "Email")
		fmt.Fprintln(w, strings.Repeat("-", 70))
		for _, s := range data {
			fmt.Fprintf(w, "%-8d %-25s %-12s %s\n", s.StaffID, truncateString(s.Name, 25), s.Position, s.Email)
		}

	case []string:
		if len(data) == 0 {
			fmt.Fprintln(w, "No sign-ins recorded.")
			return
		}
		for _, line := range data {
			fmt.Fprintln(w, line)
		}
		fmt.Fprintf(w, "%s sign-ins\n", humanize.Comma(int64(len(data))))

	case *entities.Membership:
		fmt.Fprintln(w, res.Message)
		if data.Status == entities.MembershipActive {
			fmt.Fprintf(w, "Ends %s (%s)\n", data.EndDate.Format(membership.DateLayout), humanize.Time(data.EndDate))
		}

	default:
		fmt.Fprintln(w, res.Message)
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
