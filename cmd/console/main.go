package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"affiliate-admin/internal/core/cache"
	"affiliate-admin/internal/core/config"
	"affiliate-admin/internal/core/database"
	"affiliate-admin/internal/core/logger"
	"affiliate-admin/internal/core/server"
	"affiliate-admin/internal/feature"
	"affiliate-admin/internal/feature/account"
	"affiliate-admin/internal/feature/affiliates"
	"affiliate-admin/internal/feature/planrequests"
	"affiliate-admin/internal/feature/support"
	"affiliate-admin/internal/feature/users"
	"affiliate-admin/internal/feature/withdrawals"
	"affiliate-admin/internal/poll"
	"affiliate-admin/internal/remote"
	"affiliate-admin/internal/repo"
	"affiliate-admin/internal/session"
	"affiliate-admin/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log, cfg.App)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 本地存储（token / 邮箱），失败直接 Fatal
	store, closeStore := mustOpenStore(cfg, log)
	defer closeStore()
	log.Info("session store ready", zap.String("driver", cfg.Store.Driver))

	client, err := remote.New(remote.Options{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: time.Duration(cfg.Backend.TimeoutSec) * time.Second,
		RPS:     cfg.Backend.RPS,
		Burst:   cfg.Backend.Burst,
		Logger:  log.Named("backend"),
	})
	if err != nil {
		log.Fatal("backend client", zap.Error(err))
	}

	sched := poll.NewCron(log)
	sched.Start()
	defer sched.Stop()

	deps := feature.Deps{
		Client:     client,
		AdminToken: session.New(store, session.KeyAdminToken),
		Token:      session.New(store, session.KeyToken),
		Email:      session.New(store, session.KeyAdminEmail),
		Config:     cfg,
		Scheduler:  sched,
		Logger:     log,
	}

	// 页面
	ws := feature.NewWorkspace()
	usersScreen, err := users.New(deps)
	fatalIf(log, "users screen", err)
	ws.Add(usersScreen)
	affScreen, err := affiliates.New(deps)
	fatalIf(log, "affiliates screen", err)
	ws.Add(affScreen)
	custW, err := withdrawals.NewCustomer(deps)
	fatalIf(log, "customer withdrawals screen", err)
	ws.Add(custW)
	affW, err := withdrawals.NewAffiliate(deps)
	fatalIf(log, "affiliate withdrawals screen", err)
	ws.Add(affW)
	plans, err := planrequests.New(deps)
	fatalIf(log, "plan requests screen", err)
	ws.Add(plans)
	feed, err := support.New(deps)
	fatalIf(log, "support screen", err)
	ws.Add(feed)

	reg := router.NewRegistry()
	reg.Register(account.New(deps, ws))
	for _, m := range ws.Modules() {
		reg.Register(m)
	}

	mode := gin.DebugMode
	if cfg.App.Env == "prod" {
		mode = gin.ReleaseMode
	}
	r := router.NewConsoleEngine(log, reg, deps.AdminToken, router.Options{
		Mode:           mode,
		RequestTimeout: time.Duration(cfg.Backend.TimeoutSec+10) * time.Second,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动前打印可点击地址
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("console starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("console_v1", baseURL+router.Prefix),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	// 异步启动；失败立即标红退出
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("console start FAILED", zap.Error(err))
		}
	}()

	// 关闭：先停轮询、丢弃集合，再关 HTTP
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ws.UnmountAll()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("console stopped gracefully")
}

func fatalIf(l *zap.Logger, what string, err error) {
	if err != nil {
		l.Fatal(what, zap.Error(err))
	}
}

func mustOpenStore(cfg *config.Config, l *zap.Logger) (session.Store, func()) {
	if cfg.Store.Driver == "redis" {
		rdb := cache.New(cache.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := cache.Ping(context.Background(), rdb); err != nil {
			l.Fatal("redis open", zap.Error(err))
		}
		return repo.NewRedisKV(rdb, cfg.Store.KeyPrefix), func() { _ = rdb.Close() }
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.Store.Driver,
		DSN:                cfg.Store.DSN,
		Username:           cfg.Store.Username,
		Password:           cfg.Store.Password,
		MaxOpenConns:       cfg.Store.MaxOpenConns,
		MaxIdleConns:       cfg.Store.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.Store.ConnMaxLifetimeMin,
		LogLevel:           cfg.Store.LogLevel,
	}, l.Named("store"))
	if err != nil {
		l.Fatal("store open", zap.Error(err)) // 失败日志
	}
	kv := repo.NewKVRepo(db)
	if err := kv.Migrate(); err != nil {
		l.Fatal("store migrate", zap.Error(err))
	}
	return kv, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
