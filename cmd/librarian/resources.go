package main

import (
	"github.com/spf13/cobra"

	"library-client/internal/domains/author"
	"library-client/internal/domains/series"
	"library-client/internal/domains/story"
	"library-client/internal/domains/volume"
	"library-client/internal/models"
)

func authorsCmd(app func() *app) *cobra.Command {
	return resource[author.Params, models.Author]{
		use:     "authors",
		aliases: []string{"author"},
		model:   models.ModelAuthor,
		headers: []string{"ID", "Last Name", "First Name", "Principal", "Active", "Notes"},
		row: func(a models.Author) []string {
			principal := ""
			if a.Principal != nil {
				principal = yesNo(*a.Principal)
			}
			return []string{id(a.ID), a.LastName, a.FirstName, principal, yesNo(a.Active), text(a.Notes)}
		},
		params: func(lf listFlags, size int, parent models.Ref) author.Params {
			return author.Params{Active: lf.active, Name: lf.name, CurrentPage: lf.page, PageSize: size, Parent: parent}
		},
		fetch:   author.Fetch,
		mutator: author.NewMutator,
		blank:   models.NewAuthor,
		flags: func(cmd *cobra.Command, f *editFlags) {
			cmd.Flags().StringVar(&f.firstName, "first-name", "", "first name")
			cmd.Flags().StringVar(&f.lastName, "last-name", "", "last name")
			commonFlags(cmd, f)
		},
		edit: func(cmd *cobra.Command, f *editFlags, a models.Author) models.Author {
			if changed(cmd, "first-name") {
				a.FirstName = f.firstName
			}
			if changed(cmd, "last-name") {
				a.LastName = f.lastName
			}
			optional(cmd, "notes", f.notes, &a.Notes)
			if changed(cmd, "active") {
				a.Active = f.active
			}
			return a
		},
		unique: author.Unique,
	}.command(app)
}

func seriesCmd(app func() *app) *cobra.Command {
	return resource[series.Params, models.Series]{
		use:     "series",
		model:   models.ModelSeries,
		headers: []string{"ID", "Name", "Copyright", "Active", "Notes"},
		row: func(s models.Series) []string {
			return []string{id(s.ID), s.Name, text(s.Copyright), yesNo(s.Active), text(s.Notes)}
		},
		params: func(lf listFlags, size int, parent models.Ref) series.Params {
			return series.Params{Active: lf.active, Name: lf.name, CurrentPage: lf.page, PageSize: size, Parent: parent}
		},
		fetch:   series.Fetch,
		mutator: series.NewMutator,
		blank:   models.NewSeries,
		flags: func(cmd *cobra.Command, f *editFlags) {
			cmd.Flags().StringVar(&f.name, "name", "", "series name")
			cmd.Flags().StringVar(&f.copyright, "copyright", "", "copyright year or notice")
			commonFlags(cmd, f)
		},
		edit: func(cmd *cobra.Command, f *editFlags, s models.Series) models.Series {
			if changed(cmd, "name") {
				s.Name = f.name
			}
			optional(cmd, "copyright", f.copyright, &s.Copyright)
			optional(cmd, "notes", f.notes, &s.Notes)
			if changed(cmd, "active") {
				s.Active = f.active
			}
			return s
		},
		unique: series.Unique,
	}.command(app)
}

func storiesCmd(app func() *app) *cobra.Command {
	return resource[story.Params, models.Story]{
		use:     "stories",
		aliases: []string{"story"},
		model:   models.ModelStory,
		headers: []string{"ID", "Name", "Ordinal", "Copyright", "Active", "Notes"},
		row: func(s models.Story) []string {
			return []string{id(s.ID), s.Name, ordinal(s.Ordinal), text(s.Copyright), yesNo(s.Active), text(s.Notes)}
		},
		params: func(lf listFlags, size int, parent models.Ref) story.Params {
			return story.Params{Active: lf.active, Name: lf.name, CurrentPage: lf.page, PageSize: size, Parent: parent}
		},
		fetch:   story.Fetch,
		mutator: story.NewMutator,
		blank:   models.NewStory,
		flags: func(cmd *cobra.Command, f *editFlags) {
			cmd.Flags().StringVar(&f.name, "name", "", "story name")
			cmd.Flags().StringVar(&f.copyright, "copyright", "", "copyright year or notice")
			cmd.Flags().IntVar(&f.ordinal, "ordinal", 0, "position within its series")
			commonFlags(cmd, f)
		},
		edit: func(cmd *cobra.Command, f *editFlags, s models.Story) models.Story {
			if changed(cmd, "name") {
				s.Name = f.name
			}
			if changed(cmd, "ordinal") {
				n := f.ordinal
				s.Ordinal = &n
			}
			optional(cmd, "copyright", f.copyright, &s.Copyright)
			optional(cmd, "notes", f.notes, &s.Notes)
			if changed(cmd, "active") {
				s.Active = f.active
			}
			return s
		},
		unique: story.Unique,
	}.command(app)
}

func volumesCmd(app func() *app) *cobra.Command {
	return resource[volume.Params, models.Volume]{
		use:     "volumes",
		aliases: []string{"volume"},
		model:   models.ModelVolume,
		headers: []string{"ID", "Name", "ISBN", "Type", "Location", "Read", "Active"},
		row: func(v models.Volume) []string {
			return []string{id(v.ID), v.Name, text(v.ISBN), text(v.Type), text(v.Location), yesNo(v.Read), yesNo(v.Active)}
		},
		params: func(lf listFlags, size int, parent models.Ref) volume.Params {
			return volume.Params{Active: lf.active, Name: lf.name, CurrentPage: lf.page, PageSize: size, Parent: parent}
		},
		fetch:   volume.Fetch,
		mutator: volume.NewMutator,
		blank:   models.NewVolume,
		flags: func(cmd *cobra.Command, f *editFlags) {
			cmd.Flags().StringVar(&f.name, "name", "", "title on the cover")
			cmd.Flags().StringVar(&f.isbn, "isbn", "", "ISBN")
			cmd.Flags().StringVar(&f.googleID, "google-id", "", "Google Books id")
			cmd.Flags().StringVar(&f.location, "location", "", "shelf or device")
			cmd.Flags().StringVar(&f.volumeType, "type", "", "Anthology, Collection or Single")
			cmd.Flags().BoolVar(&f.read, "read", false, "mark as read")
			commonFlags(cmd, f)
		},
		edit: func(cmd *cobra.Command, f *editFlags, v models.Volume) models.Volume {
			if changed(cmd, "name") {
				v.Name = f.name
			}
			optional(cmd, "isbn", f.isbn, &v.ISBN)
			optional(cmd, "google-id", f.googleID, &v.GoogleID)
			optional(cmd, "location", f.location, &v.Location)
			optional(cmd, "type", f.volumeType, &v.Type)
			optional(cmd, "notes", f.notes, &v.Notes)
			if changed(cmd, "read") {
				v.Read = f.read
			}
			if changed(cmd, "active") {
				v.Active = f.active
			}
			return v
		},
		unique: volume.Unique,
	}.command(app)
}

func commonFlags(cmd *cobra.Command, f *editFlags) {
	cmd.Flags().StringVar(&f.notes, "notes", "", "free text; empty clears")
	cmd.Flags().BoolVar(&f.active, "active", true, "set --active=false to retire")
}

// describe renders any entity as a title and label/value pairs.
func describe(e models.Entity) (string, [][2]string) {
	switch v := e.(type) {
	case models.Author:
		return v.Title, [][2]string{
			{"ID", id(v.ID)},
			{"First name", v.FirstName},
			{"Last name", v.LastName},
			{"Active", yesNo(v.Active)},
			{"Notes", text(v.Notes)},
			{"Series", titles(v.Series)},
			{"Stories", titles(v.Stories)},
			{"Volumes", titles(v.Volumes)},
		}
	case models.Series:
		return v.Title, [][2]string{
			{"ID", id(v.ID)},
			{"Copyright", text(v.Copyright)},
			{"Active", yesNo(v.Active)},
			{"Notes", text(v.Notes)},
			{"Authors", titles(v.Authors)},
			{"Stories", titles(v.Stories)},
		}
	case models.Story:
		return v.Title, [][2]string{
			{"ID", id(v.ID)},
			{"Ordinal", ordinal(v.Ordinal)},
			{"Copyright", text(v.Copyright)},
			{"Active", yesNo(v.Active)},
			{"Notes", text(v.Notes)},
			{"Authors", titles(v.Authors)},
			{"Series", titles(v.Series)},
			{"Volumes", titles(v.Volumes)},
		}
	case models.Volume:
		return v.Title, [][2]string{
			{"ID", id(v.ID)},
			{"ISBN", text(v.ISBN)},
			{"Google ID", text(v.GoogleID)},
			{"Type", text(v.Type)},
			{"Location", text(v.Location)},
			{"Read", yesNo(v.Read)},
			{"Active", yesNo(v.Active)},
			{"Notes", text(v.Notes)},
			{"Authors", titles(v.Authors)},
			{"Stories", titles(v.Stories)},
		}
	case models.Library:
		return v.Title, [][2]string{
			{"ID", id(v.ID)},
			{"Scope", v.Scope},
			{"Active", yesNo(v.Active)},
			{"Notes", text(v.Notes)},
		}
	case models.User:
		return v.Title, [][2]string{
			{"ID", id(v.ID)},
			{"Username", v.Username},
			{"Name", v.Name},
			{"Scope", v.Scope},
			{"Active", yesNo(v.Active)},
		}
	}
	return e.EntityTitle(), nil
}
