package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	appMigrations "github.com/yigit/parishscheduler/internal/app/migrations"
	appRepos "github.com/yigit/parishscheduler/internal/app/repositories"
	"github.com/yigit/parishscheduler/internal/bootstrap"
	"github.com/yigit/parishscheduler/internal/config"
	"github.com/yigit/parishscheduler/internal/db"
	"github.com/yigit/parishscheduler/internal/seed"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
			if err != nil {
				return err
			}
			return appMigrations.NewMigrator(cfg.GetPostgresConnectionString(), lgr).MigrateUp()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, one step by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}

			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
			if err != nil {
				return err
			}
			return appMigrations.NewMigrator(cfg.GetPostgresConnectionString(), lgr).MigrateDown(steps)
		},
	})

	return cmd
}

func createDirectorCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-director",
		Short: "Create the director account if its email is not taken",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
			if err != nil {
				return err
			}

			director := seed.Director{Name: name, Email: email, Password: password}
			if director.Name == "" {
				director.Name = cfg.Seed.DirectorName
			}
			if director.Email == "" {
				director.Email = cfg.Seed.DirectorEmail
			}
			if director.Password == "" {
				director.Password = config.GetEnv("DIRECTOR_PASSWORD", cfg.Seed.DirectorPassword)
			}

			database, err := db.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			created, err := seed.EnsureDirector(ctx, appRepos.NewUserRepository(database), director, lgr)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Director %s created\n", director.Email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Director %s already exists\n", director.Email)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Director display name")
	cmd.Flags().StringVar(&email, "email", "", "Director email (defaults to DIRECTOR_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Director password (defaults to DIRECTOR_PASSWORD)")

	return cmd
}
