package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/andrsk/staff-portal/internal/config"
	"github.com/andrsk/staff-portal/internal/events"
	"github.com/andrsk/staff-portal/internal/httpserver"
	"github.com/andrsk/staff-portal/internal/models"
	"github.com/andrsk/staff-portal/internal/repo"
	"github.com/andrsk/staff-portal/internal/search"
	"github.com/andrsk/staff-portal/internal/service"
	"github.com/andrsk/staff-portal/pkg/db"
	"github.com/andrsk/staff-portal/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)

	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		log.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := database.AutoMigrate(&models.User{}, &models.Employee{}); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	index, err := search.NewIndex(cfg.ESURL, cfg.ESUser, cfg.ESPassword, cfg.ESIndex)
	if err != nil {
		log.Fatalf("search init error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: database}

	authSvc := &service.AuthService{
		Repo:          gormRepo,
		Producer:      producer,
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}

	empSvc := &service.EmployeeService{
		Repo:  gormRepo,
		Index: index,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(echomw.Recover())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), logger)))
			return next(c)
		}
	})

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{
			Svc:          authSvc,
			RefreshTTL:   cfg.RefreshTTL,
			CookieSecure: cfg.CookieSecure,
		},
		EmployeeHandler: &httpserver.EmployeeHTTP{Svc: empSvc},
		AccessSecret:    cfg.AccessSecret,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
