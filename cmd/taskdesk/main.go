// @title			TaskDesk API
// @version		1.0
// @description	Departmental task routing with a role-aware lifecycle state machine.
// @BasePath		/api/v1

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mtlprog/taskdesk/internal/config"
	"github.com/mtlprog/taskdesk/internal/database"
	"github.com/mtlprog/taskdesk/internal/handler"
	"github.com/mtlprog/taskdesk/internal/logger"
	"github.com/mtlprog/taskdesk/internal/repository"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "taskdesk",
		Usage: "Departmental task routing dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
					&cli.StringFlag{
						Name:     "jwt-secret",
						Value:    config.DefaultJWTSecret,
						Usage:    "HMAC secret for verifying bearer tokens",
						EnvVars:  []string{"JWT_SECRET"},
						Required: true,
					},
				},
				Action: runServe,
			},
			{
				Name:   "report-overdue",
				Usage:  "Log tasks past their due date, per department",
				Action: runReportOverdue,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}
	databaseURL := c.String("database-url")
	jwtSecret := c.String("jwt-secret")

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	h := handler.New(db.Pool(), jwtSecret)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runReportOverdue(c *cli.Context) error {
	ctx := c.Context
	databaseURL := c.String("database-url")

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	taskRepo := repository.NewTaskRepository(db.Pool())
	stats, err := taskRepo.GetDepartmentStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to query department stats: %w", err)
	}

	total := 0
	for _, s := range stats {
		if s.OverdueTasks == 0 {
			continue
		}
		total += s.OverdueTasks
		slog.Warn("department has overdue tasks",
			"department_id", s.DepartmentID,
			"department_name", s.DepartmentName,
			"overdue", s.OverdueTasks,
			"open", s.OpenTasks,
		)
	}

	slog.Info("overdue report completed", "departments", len(stats), "overdue_total", total)
	return nil
}
