package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"library-client/internal/focus"
	"library-client/internal/models"
)

func focusCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "focus <model>:<id>",
		Short: "Show any entity with every relation expanded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			lib, err := a.library()
			if err != nil {
				return err
			}
			ref, err := models.ParseRef(args[0], lib.ID)
			if err != nil {
				return err
			}
			stub, err := stubOf(ref)
			if err != nil {
				return err
			}

			h := focus.New(a.client, a.state, a.bus)
			defer h.Close()
			s, err := h.Fetch(cmd.Context(), stub)
			if err != nil {
				return err
			}
			if s.Err != nil {
				return fmt.Errorf("%s: %w", ref, s.Err)
			}
			title, fields := describe(s.Data)
			renderFields(a.out, title, fields)
			return nil
		},
	}
}
