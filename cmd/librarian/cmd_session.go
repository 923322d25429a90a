package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func loginCmd(app func() *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			in := cmd.InOrStdin()
			lines := bufio.NewReader(in)
			if username == "" {
				name, err := prompt(cmd.ErrOrStderr(), lines, "Username: ")
				if err != nil {
					return err
				}
				username = name
			}
			password, err := readPassword(cmd.ErrOrStderr(), in, lines, "Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			data, err := a.session.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := a.state.Load(cmd.Context()); err != nil {
				return err
			}
			success(a.out, "logged in as %s (%s)", data.Username, data.Scope)
			if lib := a.state.Library(); lib.ID >= 0 {
				fmt.Fprintln(a.out, styles.Muted.Render("library: "+lib.Title))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name (prompted when empty)")
	return cmd
}

func logoutCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the token and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.dropSession(cmd.Context()); err != nil {
				return err
			}
			success(a.out, "logged out")
			return nil
		},
	}
}

func whoamiCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user and library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if !a.session.LoggedIn() {
				return errLoggedOut
			}
			user, err := a.session.Me(cmd.Context())
			if err != nil {
				return err
			}
			data := a.session.State()
			renderFields(a.out, user.Title, [][2]string{
				{"Username", user.Username},
				{"Name", user.Name},
				{"Scope", user.Scope},
				{"Expires", data.Expires.Local().Format("2006-01-02 15:04:05")},
				{"Library", libraryTitle(a)},
			})
			return nil
		},
	}
}

func libraryTitle(a *app) string {
	lib := a.state.Library()
	if lib.ID < 0 {
		return ""
	}
	return lib.Title
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func readPassword(w io.Writer, in io.Reader, lines *bufio.Reader, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(w, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return prompt(w, lines, label)
}

func prompt(w io.Writer, lines *bufio.Reader, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := lines.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
