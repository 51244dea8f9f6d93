package main

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	domcredsys "github.com/dom-retail/domcredsys"
	"github.com/dom-retail/domcredsys/internal/config"
	"github.com/dom-retail/domcredsys/internal/handler"
	"github.com/dom-retail/domcredsys/internal/middleware"
	"github.com/dom-retail/domcredsys/internal/repository"
	"github.com/dom-retail/domcredsys/internal/service"
	"github.com/dom-retail/domcredsys/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrations, err := fs.Sub(domcredsys.MigrationsFS, "migrations")
	if err != nil {
		return err
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrations); err != nil {
		return err
	}

	creditRepo := repository.NewCreditRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	storeRepo := repository.NewStoreRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)

	authSvc := service.NewAuthService(userRepo, storeRepo)
	creditSvc := service.NewCreditService(creditRepo)
	adminSvc := service.NewAdminService(userRepo, storeRepo, assignmentRepo)

	if err := adminSvc.EnsureAdmin(ctx, cfg.AdminCode, cfg.AdminDisplayName, cfg.AdminPassword); err != nil {
		return err
	}

	notifier, err := telegram.NewNotifier(cfg)
	if err != nil {
		return err
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   config.SessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !cfg.Debug,
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recover(), middleware.Logging())

	tmpl, err := template.ParseFS(domcredsys.WebFS, "web/templates/*.html")
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(domcredsys.WebFS, "web/static")
	if err != nil {
		return err
	}
	r.StaticFS("/static", http.FS(static))

	guard := middleware.NewGuard(sessionStore, authSvc)
	h := handler.New(handler.Deps{
		Cfg:      cfg,
		Store:    sessionStore,
		Auth:     authSvc,
		Credits:  creditSvc,
		Admin:    adminSvc,
		Notifier: notifier,
	})
	h.Routes(r, guard)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
