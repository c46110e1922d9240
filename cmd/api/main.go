package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/legalsense/internal/application"
	appanalysis "github.com/bryanwahyu/legalsense/internal/application/analysis"
	appchat "github.com/bryanwahyu/legalsense/internal/application/chat"
	apphistory "github.com/bryanwahyu/legalsense/internal/application/history"
	"github.com/bryanwahyu/legalsense/internal/config"
	"github.com/bryanwahyu/legalsense/internal/domain/history"
	aiclient "github.com/bryanwahyu/legalsense/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/legalsense/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/legalsense/internal/infra/db/postgres"
	sqlitep "github.com/bryanwahyu/legalsense/internal/infra/db/sqlite"
	"github.com/bryanwahyu/legalsense/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/legalsense/internal/infra/storage"
	"github.com/bryanwahyu/legalsense/internal/middleware"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "legalsense-api",
		Short: "Document analysis API: AI legal summaries, fraud scoring and history",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default config.yaml, env CONFIG_PATH)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	path := configPath
	if path == "" {
		path = "config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	return config.Load(path)
}

// historyRepo is what main needs from the driver-specific repositories.
type historyRepo interface {
	history.Repository
	Migrate(ctx context.Context) error
}

// openRepo picks the persistence driver from config. The returned *sql.DB is
// only used for health checks; closing goes through the cleanup func.
func openRepo(ctx context.Context, cfg *config.Config) (historyRepo, *sql.DB, func(), error) {
	switch cfg.Database.Driver {
	case "mysql", "":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		return mysqlp.NewHistoryRepository(db), db, func() { db.Close() }, nil

	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		return postgresp.NewHistoryRepository(db), db, func() { db.Close() }, nil

	case "sqlite":
		repo, err := sqlitep.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sqlite open: %w", err)
		}
		return repo, repo.DB(), func() { repo.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config load: %w", err)
			}
			repo, _, cleanup, err := openRepo(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := repo.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Println("schema up to date")
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config load: %w", err)
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	ctx := context.Background()

	repo, db, cleanup, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	documents, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		return fmt.Errorf("minio init: %w", err)
	}

	ai := aiclient.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.ChatModel)

	historySvc := &apphistory.Service{Repo: repo, Clock: application.SystemClock{}}
	analyzeSvc := &appanalysis.Service{Client: ai, Documents: documents, History: historySvc}
	chatSvc := appchat.NewService(ai)

	health := middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	})

	mux := httpserver.NewRouter(analyzeSvc, historySvc, chatSvc, httpserver.Options{
		JWTSecret: []byte(cfg.Auth.JWTSecret),
		Health:    health,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
