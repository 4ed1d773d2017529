package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrlokans/librarydesk/internal/app"
	"github.com/mrlokans/librarydesk/internal/desk"
)

func (r *runner) deskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "desk",
		Short: "Run the interactive library desk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(func(a *app.App) error {
				ctx := cmd.Context()
				if ctx == nil {
					ctx = context.Background()
				}
				return runDesk(ctx, a.Desk, cmd.InOrStdin(), cmd.OutOrStdout(), isTerminal(cmd.InOrStdin()))
			})
		},
	}
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// runDesk reads commands and their fields line by line until "exit" or
// end of input. One session spans the whole run.
func runDesk(ctx context.Context, d *desk.Desk, in io.Reader, out io.Writer, interactive bool) error {
	scanner := bufio.NewScanner(in)
	session := &desk.Session{}

	if interactive {
		fmt.Fprintln(out, "Welcome to the library desk.")
		printMenu(out)
	}

	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "help", "?":
			printMenu(out)
			continue
		}

		c, err := desk.ParseCommand(line)
		if err != nil {
			fmt.Fprintln(out, "Unknown command. Type 'help' to see the available commands.")
			continue
		}

		form := desk.Form{}
		complete := true
		for _, f := range c.Fields() {
			fmt.Fprintf(out, "%s: ", f.Prompt)
			if !scanner.Scan() {
				complete = false
				break
			}
			form[f.Name] = scanner.Text()
		}
		if !complete {
			break
		}

		res, err := d.Dispatch(ctx, session, c, form)
		if err != nil {
			fmt.Fprintln(out, desk.Describe(err))
			continue
		}
		render(out, res)
	}
	return scanner.Err()
}

func printMenu(out io.Writer) {
	fmt.Fprintln(out, "Available commands:")
	for _, c := range desk.Commands() {
		fmt.Fprintf(out, "  %-20s %s\n", c.String(), c.Help())
	}
	fmt.Fprintf(out, "  %-20s %s\n", "help", "Show this list")
	fmt.Fprintf(out, "  %-20s %s\n", "exit", "Leave the desk")
}
