package main

import (
	"github.com/spf13/cobra"

	"library-client/internal/export"
)

func exportCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write the current library to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			lib, err := a.library()
			if err != nil {
				return err
			}
			catalog, err := export.Load(cmd.Context(), a.client, lib)
			if err != nil {
				return err
			}
			f, err := export.Workbook(catalog)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.SaveAs(args[0]); err != nil {
				return err
			}
			success(a.out, "exported %d authors, %d series, %d stories and %d volumes to %s",
				len(catalog.Authors), len(catalog.Series), len(catalog.Stories), len(catalog.Volumes), args[0])
			return nil
		},
	}
}
