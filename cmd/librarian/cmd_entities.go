package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"library-client/internal/association"
	"library-client/internal/focus"
	"library-client/internal/hooks"
	"library-client/internal/models"
)

// listFlags are the filters shared by every list command.
type listFlags struct {
	active   bool
	name     string
	page     int
	pageSize int
	parent   string
	memberOf string
}

func (lf *listFlags) register(cmd *cobra.Command, nameFlag string) {
	cmd.Flags().BoolVar(&lf.active, "active", false, "only active rows")
	cmd.Flags().StringVar(&lf.name, nameFlag, "", "search text, covers the whole library")
	cmd.Flags().IntVar(&lf.page, "page", 1, "page number, from 1")
	cmd.Flags().IntVar(&lf.pageSize, "page-size", 0, "rows per page (PAGE_SIZE when 0)")
}

func (lf *listFlags) size(a *app) int {
	if lf.pageSize > 0 {
		return lf.pageSize
	}
	return a.cfg.API.PageSize
}

// editFlags carry every editable field; each model reads the ones it has.
type editFlags struct {
	name, firstName, lastName string
	notes, copyright          string
	isbn, googleID            string
	location, volumeType      string
	ordinal                   int
	read, active              bool
}

// resource is the command set of one library scoped model.
type resource[P comparable, T hooks.Mutable] struct {
	use     string
	aliases []string
	model   models.Model
	headers []string
	row     func(T) []string
	params  func(lf listFlags, size int, parent models.Ref) P
	fetch   func(context.Context, hooks.Requester, hooks.Scoped[P]) ([]T, error)
	mutator func(hooks.Requester, hooks.Publisher) *hooks.Mutator[T]
	blank   func(libraryID int64) T
	flags   func(cmd *cobra.Command, f *editFlags)
	edit    func(cmd *cobra.Command, f *editFlags, e T) T
	unique  func(context.Context, hooks.Requester, T) (bool, error)
}

func (r resource[P, T]) command(app func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     r.use,
		Aliases: r.aliases,
		Short:   fmt.Sprintf("Browse and edit %s of the current library", r.use),
	}
	cmd.AddCommand(r.list(app), r.show(app), r.add(app), r.update(app), r.remove(app),
		r.associate(app, true), r.associate(app, false))
	return cmd
}

func (r resource[P, T]) list(app func() *app) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page, optionally under a parent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			lib, err := a.library()
			if err != nil {
				return err
			}
			var parent models.Ref
			if lf.parent != "" {
				if parent, err = models.ParseRef(lf.parent, lib.ID); err != nil {
					return err
				}
				if !models.Related(parent.Model, r.model) {
					return fmt.Errorf("%s is not related to %s", parent.Model, r.model)
				}
			}

			var members *association.Membership
			if lf.memberOf != "" {
				if members, err = r.membership(cmd.Context(), a, lf.memberOf, lib.ID); err != nil {
					return err
				}
				stop := members.Track(a.bus)
				defer stop()
			}

			rows, err := r.fetch(cmd.Context(), a.client, hooks.ScopeOf(a.state, r.params(lf, lf.size(a), parent)))
			if err != nil {
				return err
			}
			headers := r.headers
			if members != nil {
				headers = append(headers[:len(headers):len(headers)], "Included")
			}
			out := make([][]string, 0, len(rows))
			for _, e := range rows {
				row := r.row(e)
				if members != nil {
					row = append(row, yesNo(members.Included(e)))
				}
				out = append(out, row)
			}
			renderTable(a.out, headers, out)
			return nil
		},
	}
	lf.register(cmd, "name")
	cmd.Flags().StringVar(&lf.parent, "parent", "", "scope to a parent, e.g. series:12")
	cmd.Flags().StringVar(&lf.memberOf, "member-of", "", "mark rows linked to a parent, e.g. series:12")
	return cmd
}

// membership focuses the parent named by arg and derives its child set.
func (r resource[P, T]) membership(ctx context.Context, a *app, arg string, libraryID int64) (*association.Membership, error) {
	ref, err := models.ParseRef(arg, libraryID)
	if err != nil {
		return nil, err
	}
	if !models.Associable(ref.Model, r.model) {
		return nil, fmt.Errorf("%s cannot be linked to %s", r.model, ref.Model)
	}
	parent, err := loadRef(ctx, a, ref)
	if err != nil {
		return nil, err
	}
	return association.NewMembership(parent), nil
}

func (r resource[P, T]) show(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one row with its relations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			e, err := r.load(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			title, fields := describe(e)
			renderFields(a.out, title, fields)
			return nil
		},
	}
}

func (r resource[P, T]) add(app func() *app) *cobra.Command {
	var f editFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			lib, err := a.library()
			if err != nil {
				return err
			}
			e := r.edit(cmd, &f, r.blank(lib.ID))
			if err := r.checkUnique(cmd.Context(), a, e); err != nil {
				return err
			}
			created, err := r.mutator(a.client, a.bus).Insert(cmd.Context(), e)
			if err != nil {
				return err
			}
			success(a.out, "added %s %s (id %d)", r.model, created.EntityTitle(), created.EntityID())
			return nil
		},
	}
	r.flags(cmd, &f)
	return cmd
}

func (r resource[P, T]) update(app func() *app) *cobra.Command {
	var f editFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			current, err := r.load(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			e := r.edit(cmd, &f, current)
			if err := r.checkUnique(cmd.Context(), a, e); err != nil {
				return err
			}
			updated, err := r.mutator(a.client, a.bus).Update(cmd.Context(), e)
			if err != nil {
				return err
			}
			success(a.out, "updated %s %s", r.model, updated.EntityTitle())
			return nil
		},
	}
	r.flags(cmd, &f)
	return cmd
}

func (r resource[P, T]) remove(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			e, err := r.load(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			removed, err := r.mutator(a.client, a.bus).Remove(cmd.Context(), e)
			if err != nil {
				return err
			}
			success(a.out, "removed %s %s", r.model, removed.EntityTitle())
			return nil
		},
	}
}

func (r resource[P, T]) associate(app func() *app, include bool) *cobra.Command {
	use, short := "exclude <id> <parent>", "Unlink a row from a parent such as series:12"
	if include {
		use, short = "include <id> <parent>", "Link a row to a parent such as series:12"
	}
	var principal bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			child, err := r.load(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			ref, err := models.ParseRef(args[1], child.EntityLibraryID())
			if err != nil {
				return err
			}
			if !models.Associable(ref.Model, r.model) {
				return fmt.Errorf("%s cannot be linked to %s", r.model, ref.Model)
			}
			parent, err := loadRef(cmd.Context(), a, ref)
			if err != nil {
				return err
			}
			members := association.NewMembership(parent)
			stop := members.Track(a.bus)
			defer stop()

			m := r.mutator(a.client, a.bus)
			switch {
			case include && principal:
				_, err = m.IncludePrincipal(cmd.Context(), child, parent)
			case include:
				_, err = m.Include(cmd.Context(), child, parent)
			default:
				_, err = m.Exclude(cmd.Context(), child, parent)
			}
			if err != nil {
				return err
			}
			verb := "excluded"
			if members.Included(child) {
				verb = "included"
			}
			success(a.out, "%s %s in %s", verb, child.EntityTitle(), parent.EntityTitle())
			return nil
		},
	}
	if include {
		cmd.Flags().BoolVar(&principal, "principal", false, "mark the author of the link as principal")
	}
	return cmd
}

// load fetches the row with its relations. arg is the bare id.
func (r resource[P, T]) load(ctx context.Context, a *app, arg string) (T, error) {
	var zero T
	lib, err := a.library()
	if err != nil {
		return zero, err
	}
	ref, err := models.ParseRef(string(r.model)+":"+arg, lib.ID)
	if err != nil {
		return zero, err
	}
	e, err := loadRef(ctx, a, ref)
	if err != nil {
		return zero, err
	}
	t, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("expected %s, got %s", r.model, e.EntityModel())
	}
	return t, nil
}

func (r resource[P, T]) checkUnique(ctx context.Context, a *app, e T) error {
	ok, err := r.unique(ctx, a.client, e)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %q already exists in this library", r.model, e.EntityTitle())
	}
	return nil
}

// loadRef fetches any entity through the focus loader.
func loadRef(ctx context.Context, a *app, ref models.Ref) (models.Entity, error) {
	stub, err := stubOf(ref)
	if err != nil {
		return nil, err
	}
	return focus.Fetch(ctx, a.client, a.state, stub, a.state.LoggedIn())
}

// stubOf returns an empty entity carrying only ref's ids.
func stubOf(ref models.Ref) (models.Entity, error) {
	switch ref.Model {
	case models.ModelAuthor:
		e := models.NewAuthor(ref.LibraryID)
		e.ID = ref.ID
		return e, nil
	case models.ModelSeries:
		e := models.NewSeries(ref.LibraryID)
		e.ID = ref.ID
		return e, nil
	case models.ModelStory:
		e := models.NewStory(ref.LibraryID)
		e.ID = ref.ID
		return e, nil
	case models.ModelVolume:
		e := models.NewVolume(ref.LibraryID)
		e.ID = ref.ID
		return e, nil
	case models.ModelLibrary:
		e := models.NewLibrary()
		e.ID = ref.ID
		return e, nil
	case models.ModelUser:
		e := models.NewUser()
		e.ID = ref.ID
		return e, nil
	}
	return nil, fmt.Errorf("unknown model %q", ref.Model)
}

// optional sets *dst when the flag was given. An empty value clears it.
func optional(cmd *cobra.Command, flag, value string, dst **string) {
	if cmd.Flags().Changed(flag) {
		v := value
		*dst = &v
	}
}

func changed(cmd *cobra.Command, flag string) bool {
	return cmd.Flags().Changed(flag)
}
