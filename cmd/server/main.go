package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"robolab-portal/config"
	"robolab-portal/internal/api/handler"
	"robolab-portal/internal/api/router"
	"robolab-portal/internal/model"
	"robolab-portal/internal/repository"
	"robolab-portal/internal/service"
	"robolab-portal/internal/store"
	"robolab-portal/pkg/database"
	pkgerrors "robolab-portal/pkg/errors"
	"robolab-portal/pkg/jwt"
	applogger "robolab-portal/pkg/logger"
	"robolab-portal/pkg/mailer"
	"robolab-portal/pkg/mirror"
	"robolab-portal/pkg/redis"
	"robolab-portal/pkg/validate"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	// 1. configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log, "server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	if err := validate.Init(); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}

	// 3. database; an unreachable server leaves the API in degraded mode
	// with submissions going to the local mirror.
	db, err := database.NewDB(&cfg.Database, logger, cfg.Log.Level)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	if err := prepareDatabase(bgCtx, db, &cfg.Database, logger); err != nil {
		if !pkgerrors.IsConnectivity(err) {
			logger.Fatal("prepare database", zap.Error(err))
		}
		logger.Warn("database unreachable, starting in degraded mode", zap.Error(err))
		go awaitDatabase(bgCtx, db, &cfg.Database, logger)
	}

	// 4. Redis is optional; without it tokens cannot be revoked and the
	// public form is not rate limited.
	var (
		rdb       *redis.Client
		blacklist service.TokenBlacklist
		pinger    service.Pinger
	)
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running without token revocation and rate limiting", zap.Error(err))
		rdb = nil
	} else {
		blacklist = rdb
		pinger = rdb
	}

	// 5. collaborators
	jwtMgr := jwt.NewManager(&cfg.Auth)

	sender, err := mailer.New(&cfg.Mail, cfg.Program.Name, logger)
	if err != nil {
		logger.Fatal("init mailer", zap.Error(err))
	}

	repo := repository.NewRepository(db)
	regMirror := mirror.NewFile[model.Registration](cfg.Mirror.Path)
	regStore := store.New(repo.Registration, regMirror, logger)
	if n, err := regMirror.PendingCount(); err == nil && n > 0 {
		logger.Warn("registrations waiting in the local mirror", zap.Int("pending", n), zap.String("path", regMirror.Path()))
	}

	// 6. repository → service → handler
	svc := service.NewService(cfg, repo, service.Deps{
		DB:        db,
		Store:     regStore,
		Notifier:  service.NewNotifier(sender, cfg, logger),
		JWT:       jwtMgr,
		Blacklist: blacklist,
		Redis:     pinger,
	}, logger)
	h := handler.NewHandler(svc)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 7. scheduled payment generation
	var scheduler *cron.Cron
	if spec := cfg.Payments.GenerateSchedule; spec != "" {
		scheduler = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
		_, err := scheduler.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			res, err := svc.Payment.Generate(ctx)
			if err != nil {
				logger.Error("scheduled payment generation failed", zap.Error(err))
				return
			}
			logger.Info("scheduled payment generation finished", zap.Int64("created", res.Created))
		})
		if err != nil {
			logger.Fatal("invalid payments.generate_schedule", zap.String("spec", spec), zap.Error(err))
		}
		scheduler.Start()
		logger.Info("payment generation scheduled", zap.String("spec", spec))
	}

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}

	stopBackground()
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	if sqlDB, _ := db.DB(); sqlDB != nil {
		sqlDB.Close()
	}

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
