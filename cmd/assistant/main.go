package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wechat-assistant/internal/assistant"
	"wechat-assistant/internal/auth"
	"wechat-assistant/internal/config"
	"wechat-assistant/internal/health"
	"wechat-assistant/internal/history"
	"wechat-assistant/internal/llm"
	"wechat-assistant/internal/logx"
	"wechat-assistant/internal/ratelimit"
	"wechat-assistant/internal/scheduler"
	"wechat-assistant/internal/storage"
	"wechat-assistant/internal/wechat"
)

func main() {
	logx.Init("info", "console")
	if err := godotenv.Load(".env"); err != nil {
		logx.Infof(".env not loaded: %v", err)
	}

	cfg := config.New()
	logx.Init(cfg.LogLevel, cfg.LogFormat)
	defer logx.Sync()

	var allowRepo auth.Repository
	if cfg.AllowlistFilePath != "" {
		repo, err := auth.NewFileRepository(cfg.AllowlistFilePath)
		if err != nil {
			logx.Errorf("allowlist repo init failed, using env list only: %v", err)
		} else {
			allowRepo = repo
		}
	}
	authSvc, err := auth.NewWithRepo(allowRepo, cfg.AllowedUsers)
	if err != nil {
		logx.Fatalf("init allowlist: %v", err)
	}

	var store storage.Store
	if cfg.EnableMessageLog {
		st, err := storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			logx.Errorf("activity log unavailable, continuing without it: %v", err)
		} else {
			store = st
		}
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		logx.Fatalf("init llm client: %v", err)
	}

	asst := assistant.New(
		cfg,
		ratelimit.New(cfg.RateLimit, cfg.RateWindow()),
		history.NewManager(cfg.HistoryMaxItems, cfg.HistoryTTL()),
		store,
		llm.NewResponder(client, cfg.MaxResponseLength),
		authSvc,
	)

	healthSrv := health.NewServer(cfg.HealthAddr)
	go healthSrv.Start()

	var sched *scheduler.Scheduler
	if store != nil {
		sched = scheduler.New(cfg.DailyReportCron)
		sched.SetReportFunction(func(ctx context.Context) error {
			stats, err := store.GetDailyStats(1)
			if err != nil {
				return err
			}
			if len(stats) == 0 {
				logx.Infof("daily activity: no messages")
				return nil
			}
			for _, st := range stats {
				logx.Infow("daily activity", "day", st.Day, "messages", st.Messages)
			}
			return nil
		})
		if err := sched.Start(); err != nil {
			logx.Errorf("scheduler init failed: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot := wechat.New(asst, cfg.HotReloadStorage)
	if err := bot.Start(ctx); err != nil {
		// The transport is best-effort: the health endpoint (and the core,
		// for any other caller) stays up until shutdown.
		logx.Errorf("wechat transport unavailable: %v", err)
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if sched != nil {
		sched.Stop()
	}
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logx.Errorf("health server shutdown: %v", err)
	}
	logx.Infof("assistant stopped")
}
