package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"library-client/internal/domains/library"
	"library-client/internal/models"
)

func librariesCmd(app func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "libraries",
		Aliases: []string{"library"},
		Short:   "List, select and manage libraries",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the libraries visible to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if !a.state.LoggedIn() {
				return errLoggedOut
			}
			current := a.state.Library().ID
			var rows [][]string
			for _, l := range a.state.Libraries() {
				mark := ""
				if l.ID == current {
					mark = "*"
				}
				rows = append(rows, []string{mark, id(l.ID), l.Name, l.Scope, yesNo(l.Active), text(l.Notes)})
			}
			renderTable(a.out, []string{"", "ID", "Name", "Scope", "Active", "Notes"}, rows)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "select <id>",
		Short: "Make a library current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid library id %q", args[0])
			}
			lib, err := a.state.SelectLibrary(cmd.Context(), n)
			if err != nil {
				return err
			}
			success(a.out, "current library is %s", lib.Title)
			return nil
		},
	})

	var scope, notes string
	var inactive bool
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a library (superuser)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			l := models.NewLibrary()
			l.Name, l.Scope, l.Active = args[0], scope, !inactive
			l.Notes = &notes
			l = models.ToNullValues(l)

			if ok, err := library.Unique(cmd.Context(), a.client, l); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("a library named %q already exists", l.Name)
			}
			created, err := library.NewMutator(a.client).Insert(cmd.Context(), l)
			if err != nil {
				return err
			}
			if err := a.state.Load(cmd.Context()); err != nil {
				return err
			}
			success(a.out, "added library %s (id %d)", created.Title, created.ID)
			return nil
		},
	}
	add.Flags().StringVar(&scope, "scope", "", "permission prefix, e.g. home")
	add.Flags().StringVar(&notes, "notes", "", "free text")
	add.Flags().BoolVar(&inactive, "inactive", false, "create the library inactive")
	_ = add.MarkFlagRequired("scope")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a library and everything it owns (superuser)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid library id %q", args[0])
			}
			var lib models.Library
			for _, l := range a.state.Libraries() {
				if l.ID == n {
					lib = l
				}
			}
			if lib.Model == "" {
				return fmt.Errorf("unknown library %d", n)
			}
			removed, err := library.NewMutator(a.client).Remove(cmd.Context(), lib)
			if err != nil {
				return err
			}
			if a.state.Library().ID == removed.ID {
				if err := a.state.Reset(cmd.Context()); err != nil {
					return err
				}
			}
			if err := a.state.Load(cmd.Context()); err != nil {
				return err
			}
			success(a.out, "removed library %s", removed.Title)
			return nil
		},
	})
	return cmd
}
