package main

import (
	"context"
	"errors"
	"fmt"

	"ferretcontrol/internal/config"
	"ferretcontrol/internal/database"
	"ferretcontrol/internal/telemetry"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// openDB loads the same environment as the server and connects.
func openDB(ctx context.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	telemetry.SetupLogger(cfg.LogFormat, cfg.LogLevel)

	db, err := database.Connect(ctx, cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func newSeedControlsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-controls",
		Short: "Insert the built-in ISO 27001 control catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			created, err := database.SeedControls(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d controls\n", created, len(database.DefaultControls))
			return nil
		},
	}
}

type createAdminOptions struct {
	username string
	password string
	email    string
}

func (o createAdminOptions) validate() error {
	if o.username == "" {
		return errors.New("--username is required")
	}
	if len(o.password) < 8 {
		return errors.New("--password must be at least 8 characters")
	}
	return nil
}

func newCreateAdminCmd() *cobra.Command {
	var opts createAdminOptions
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a staff account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			_, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			err = database.CreateAdmin(cmd.Context(), db, database.AdminSeed{
				Username: opts.username,
				Password: opts.password,
				Email:    opts.email,
			})
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("user %q already exists", opts.username)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created staff user %s\n", opts.username)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.username, "username", "", "login name")
	cmd.Flags().StringVar(&opts.password, "password", "", "initial password")
	cmd.Flags().StringVar(&opts.email, "email", "", "contact email")
	return cmd
}
