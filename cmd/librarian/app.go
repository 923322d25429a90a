package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"library-client/internal/api"
	"library-client/internal/association"
	"library-client/internal/auth"
	"library-client/internal/config"
	"library-client/internal/infrastructure/storage"
	"library-client/internal/models"
	"library-client/internal/state"
	"library-client/pkg/logger"
)

// app is the wired client stack shared by every command.
type app struct {
	cfg     *config.Config
	store   storage.Store
	session *auth.Manager
	client  *api.Client
	state   *state.Store
	bus     *association.Bus
	out     io.Writer
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	session := auth.NewManager(cfg.API.OAuthURL, store, auth.WithTimeout(cfg.API.Timeout))
	if err := session.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("discarding saved session")
	}

	client := api.NewClient(cfg.API.BaseURL, session, api.WithTimeout(cfg.API.Timeout))
	a := &app{
		cfg:     cfg,
		store:   store,
		session: session,
		client:  client,
		state:   state.New(client, session, store),
		bus:     association.NewBus(),
		out:     out,
	}
	if err := a.state.Load(ctx); err != nil {
		if !errors.Is(err, api.ErrUnauthorized) {
			store.Close()
			return nil, err
		}
		log.Warn().Err(err).Msg("saved session was rejected, logging out")
		if err := a.dropSession(ctx); err != nil {
			store.Close()
			return nil, err
		}
	}
	return a, nil
}

// dropSession clears the login and the selected Library.
func (a *app) dropSession(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return a.state.Reset(ctx)
}

func (a *app) Close() error {
	return a.store.Close()
}

// library returns the current Library or an error telling the user how to pick one.
func (a *app) library() (models.Library, error) {
	if !a.state.LoggedIn() {
		return models.Library{}, errLoggedOut
	}
	lib := a.state.Library()
	if !models.Persisted(lib) {
		return lib, fmt.Errorf("no library selected, run: librarian libraries select <id>")
	}
	return lib, nil
}

var errLoggedOut = errors.New("not logged in, run: librarian login")

// newRootCmd builds the command tree. The app is opened lazily before any
// subcommand runs and closed afterwards.
func newRootCmd() *cobra.Command {
	var a *app

	root := &cobra.Command{
		Use:           "librarian",
		Short:         "Browse and edit a library catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Init(cfg.App.Environment, cfg.App.LogLevel)

			a, err = newApp(cmd.Context(), cfg, cmd.OutOrStdout())
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a == nil {
				return nil
			}
			return a.Close()
		},
	}

	get := func() *app { return a }
	root.AddCommand(
		loginCmd(get),
		logoutCmd(get),
		whoamiCmd(get),
		librariesCmd(get),
		authorsCmd(get),
		seriesCmd(get),
		storiesCmd(get),
		volumesCmd(get),
		usersCmd(get),
		focusCmd(get),
		exportCmd(get),
	)
	return root
}
