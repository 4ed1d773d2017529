package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarydesk/internal/desk"
)

// flagName turns a form field name into its flag spelling.
func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

// formCommand builds a subcommand whose flags are the desk command's fields.
func (r *runner) formCommand(use string, c desk.Command) *cobra.Command {
	values := make(map[string]*string, len(c.Fields()))
	cmd := &cobra.Command{
		Use:   use,
		Short: c.Help(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := desk.Form{}
			for name, v := range values {
				form[name] = *v
			}
			return r.dispatch(cmd, c, form)
		},
	}
	for _, f := range c.Fields() {
		v := new(string)
		values[f.Name] = v
		cmd.Flags().StringVar(v, flagName(f.Name), "", f.Prompt)
		if !f.Optional {
			_ = cmd.MarkFlagRequired(flagName(f.Name))
		}
	}
	return cmd
}

func group(use, short string, children ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}
	cmd.AddCommand(children...)
	return cmd
}

func (r *runner) bookCommand() *cobra.Command {
	return group("book", "Manage the catalogue",
		r.formCommand("add", desk.CommandAddBook),
		r.formCommand("borrow", desk.CommandBorrowBook),
		r.formCommand("return", desk.CommandReturnBook),
		r.formCommand("delete", desk.CommandDeleteBook),
		r.formCommand("list", desk.CommandListBooks),
		r.formCommand("status", desk.CommandInventoryStatus),
	)
}

func (r *runner) memberCommand() *cobra.Command {
	return group("member", "Manage members",
		r.formCommand("add", desk.CommandAddMember),
		r.formCommand("ensure", desk.CommandEnsureMember),
		r.formCommand("list", desk.CommandListMembers),
	)
}

func (r *runner) membershipCommand() *cobra.Command {
	return group("membership", "Manage memberships",
		r.formCommand("create", desk.CommandCreateMembership),
		r.formCommand("cancel", desk.CommandCancelMembership),
		r.formCommand("renew", desk.CommandRenewMembership),
		r.formCommand("show", desk.CommandMembershipDetails),
	)
}

func (r *runner) staffCommand() *cobra.Command {
	return group("staff", "Manage the staff registry",
		r.formCommand("add", desk.CommandAddStaff),
		r.formCommand("list", desk.CommandListStaff),
	)
}

func (r *runner) signInCommand() *cobra.Command {
	return group("signin", "Record and report attendance",
		r.formCommand("record", desk.CommandSignIn),
		r.formCommand("report", desk.CommandSignInReport),
		r.formCommand("export", desk.CommandExportReport),
	)
}
