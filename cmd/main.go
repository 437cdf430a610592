package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-clinic-scheduler/cmd/bootstrap"
	"go-clinic-scheduler/internal/domain/entity"
	"go-clinic-scheduler/internal/infrastructure/database"
	"go-clinic-scheduler/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-scheduler",
		Short: "Doctor schedule slot service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and the monthly generation scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}

			// Initialize application with all dependencies
			app, err := bootstrap.New(cfg)
			if err != nil {
				logrus.Fatalf("Failed to initialize application: %v", err)
			}

			app.Run()
			return nil
		},
	}
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate schedule slots for all doctors now",
		RunE: func(cmd *cobra.Command, args []string) error {
			skipProcessed, _ := cmd.Flags().GetBool("skip-processed")
			batchSize, _ := cmd.Flags().GetInt("batch-size")
			startDate, _ := cmd.Flags().GetString("start-date")
			endDate, _ := cmd.Flags().GetString("end-date")

			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}

			window, err := windowFromFlags(startDate, endDate, cfg.App.Location(), cfg.Scheduler.WindowMonths)
			if err != nil {
				return err
			}
			if batchSize == 0 {
				batchSize = cfg.Scheduler.BatchSize
			}

			app, err := bootstrap.New(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return app.Generate(ctx, usecase.GenerateParams{
				Window:        window,
				SkipProcessed: skipProcessed,
				BatchSize:     batchSize,
				Actor:         entity.ActorCLI,
			})
		},
	}

	cmd.Flags().Bool("skip-processed", false, "Skip doctors whose last generated window starts at the window start")
	cmd.Flags().Int("batch-size", 0, "Doctors per progress log line")
	cmd.Flags().String("start-date", "", "Window start (YYYY-MM-DD); defaults to the rolling window")
	cmd.Flags().String("end-date", "", "Window end (YYYY-MM-DD); required with --start-date")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}
			return database.MigrateUp(database.URL(cfg.DB))
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 1 {
				return errors.New("--steps must be at least 1")
			}
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}
			return database.MigrateDown(database.URL(cfg.DB), steps)
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(downCmd)

	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a staff member or integration",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			role, _ := cmd.Flags().GetString("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			if subject == "" {
				return errors.New("--subject is required")
			}
			if !entity.IsValidRole(role) {
				return fmt.Errorf("--role must be %q or %q", entity.RoleAdmin, entity.RoleReceptionist)
			}
			if ttl < 0 {
				return errors.New("--ttl must not be negative")
			}

			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			token, err := app.IssueToken(cmd.Context(), subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().String("subject", "", "Token subject, e.g. an email address")
	cmd.Flags().String("role", entity.RoleReceptionist, "admin or receptionist")
	cmd.Flags().Duration("ttl", 0, "Token lifetime; defaults to JWT_ACCESS_EXPIRY")
	return cmd
}

func windowFromFlags(startDate, endDate string, location *time.Location, months int) (entity.GenerationWindow, error) {
	if startDate == "" {
		if endDate != "" {
			return entity.GenerationWindow{}, errors.New("--start-date is required with --end-date")
		}
		if months <= 0 {
			months = entity.DefaultWindowMonths
		}
		return entity.WindowFor(time.Now().In(location), months), nil
	}
	if endDate == "" {
		return entity.GenerationWindow{}, errors.New("--end-date is required with --start-date")
	}

	start, err := entity.ParseDate(startDate)
	if err != nil {
		return entity.GenerationWindow{}, fmt.Errorf("invalid --start-date: %w", err)
	}
	end, err := entity.ParseDate(endDate)
	if err != nil {
		return entity.GenerationWindow{}, fmt.Errorf("invalid --end-date: %w", err)
	}
	return entity.NewWindow(start, end)
}
