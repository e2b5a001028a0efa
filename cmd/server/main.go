package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	api "github.com/mind-engage/mindengage-learn/internal/api/http"
	"github.com/mind-engage/mindengage-learn/internal/assessment"
	auth "github.com/mind-engage/mindengage-learn/internal/auth/middleware"
	"github.com/mind-engage/mindengage-learn/internal/config"
	"github.com/mind-engage/mindengage-learn/internal/course"
	"github.com/mind-engage/mindengage-learn/internal/db"
	"github.com/mind-engage/mindengage-learn/internal/logging"
	"github.com/mind-engage/mindengage-learn/internal/progress"
	"github.com/mind-engage/mindengage-learn/internal/quiz"
	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.Mode == config.ModeOnline, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		log.Fatal("bad DB_DRIVER", zap.Error(err))
	}
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	defer dbh.Close()

	if created, err := auth.EnsureAdmin(ctx, dbh, cfg.AdminUser, cfg.AdminEmail, cfg.AdminPassHash); err != nil {
		log.Fatal("admin bootstrap failed", zap.Error(err))
	} else if created {
		log.Info("admin user created", zap.String("username", cfg.AdminUser))
	}

	// --- Services ---
	policy := rbac.NewPolicy(nil)
	courses := course.NewService(course.NewSQLStore(dbh), policy, log.Named("course"))
	quizzes := quiz.NewService(quiz.NewSQLStore(dbh), policy, log.Named("quiz"))
	ledger := progress.NewLedger(progress.NewSQLStore(dbh), policy, log.Named("progress"))
	orchestrator := assessment.New(quizzes, ledger, log.Named("assessment"), assessment.WithPolicy(policy))

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.Requests(log.Named("http")), middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.Mount(r, api.Deps{
		DB:              dbh,
		Auth:            auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL),
		Log:             log.Named("api"),
		EnableLocalAuth: cfg.EnableLocalAuth,
		RoleFromDB:      cfg.RoleFromDB,
		ClaimFallback:   cfg.Mode == config.ModeOffline,
		Policy:          policy,
		Courses:         courses,
		Quizzes:         quizzes,
		Ledger:          ledger,
		Assessment:      orchestrator,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("mode", string(cfg.Mode)), zap.String("db", string(driver)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, done := context.WithTimeout(context.Background(), 15*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}
