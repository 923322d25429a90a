package main

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"library-client/internal/domains/user"
	"library-client/internal/hooks"
	"library-client/internal/models"
)

func usersCmd(app func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage login accounts (superuser)",
	}

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if !a.state.LoggedIn() {
				return errLoggedOut
			}
			users, err := user.Fetch(cmd.Context(), a.client, hooks.ScopeOf(a.state, user.Params{
				Active:      lf.active,
				Username:    lf.name,
				CurrentPage: lf.page,
				PageSize:    lf.size(a),
			}))
			if err != nil {
				return err
			}
			var rows [][]string
			for _, u := range users {
				rows = append(rows, []string{id(u.ID), u.Username, u.Name, u.Scope, yesNo(u.Active)})
			}
			renderTable(a.out, []string{"ID", "Username", "Name", "Scope", "Active"}, rows)
			return nil
		},
	}
	lf.register(list, "username")
	cmd.AddCommand(list)

	var name, scope string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account; the password is prompted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			in := cmd.InOrStdin()
			password, err := readPassword(cmd.ErrOrStderr(), in, bufio.NewReader(in), "Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			u := models.NewUser()
			u.Username, u.Name, u.Scope = args[0], name, scope
			u.Password = &password
			u = models.ToNullValues(u)

			if ok, err := user.Unique(cmd.Context(), a.client, u); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("username %q is taken", u.Username)
			}
			created, err := user.NewMutator(a.client).Insert(cmd.Context(), u)
			if err != nil {
				return err
			}
			success(a.out, "added user %s (id %d)", created.Username, created.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "display name")
	add.Flags().StringVar(&scope, "scope", "", "space separated permissions")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("scope")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			u := models.NewUser()
			u.ID = n
			removed, err := user.NewMutator(a.client).Remove(cmd.Context(), u)
			if err != nil {
				return err
			}
			success(a.out, "removed user %s", removed.Username)
			return nil
		},
	})
	return cmd
}
