package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/pharmassist/internal/config"
	"github.com/xxxsen/pharmassist/internal/handler"
	"github.com/xxxsen/pharmassist/internal/job"
	"github.com/xxxsen/pharmassist/internal/middleware"
	"github.com/xxxsen/pharmassist/internal/model"
	"github.com/xxxsen/pharmassist/internal/pkg/jwt"
	"github.com/xxxsen/pharmassist/internal/schedule"
	"github.com/xxxsen/pharmassist/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "pharmassist",
		Short:         "pharmacy document retrieval and question answering",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json or config.yaml (env only when empty)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the http server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return runServer(a)
		},
	}

	var tenantID, folder string
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "index a folder for a pharmacy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := a.rag.Index(cmd.Context(), tenantID, folder)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	indexCmd.Flags().StringVar(&tenantID, "pharma-id", "", "pharmacy identifier")
	indexCmd.Flags().StringVar(&folder, "path", "", "folder to index")

	var question, start, end string
	askCmd := &cobra.Command{
		Use:   "ask",
		Short: "ask a question against indexed documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := parseDateRange(start, end)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			ans, err := a.rag.Ask(cmd.Context(), tenantID, question, dates)
			if err != nil {
				return err
			}
			return printJSON(ans)
		},
	}
	askCmd.Flags().StringVar(&tenantID, "pharma-id", "", "pharmacy identifier")
	askCmd.Flags().StringVar(&question, "question", "", "question to answer")
	askCmd.Flags().StringVar(&start, "start", "", "KPI start date (YYYY-MM-DD)")
	askCmd.Flags().StringVar(&end, "end", "", "KPI end date (YYYY-MM-DD)")

	var ttl time.Duration
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "issue an API token bound to a pharmacy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("jwt_secret is not configured")
			}
			token, err := jwt.GenerateToken(tenantID, []byte(cfg.JWTSecret), ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&tenantID, "pharma-id", "", "pharmacy identifier")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(runCmd, indexCmd, askCmd, tokenCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logutil.GetLogger(context.Background()).Fatal("command failed", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", path))
	return cfg, nil
}

func parseDateRange(start, end string) (model.DateRange, error) {
	var dates model.DateRange
	if start != "" {
		t, err := time.Parse(time.DateOnly, start)
		if err != nil {
			return dates, fmt.Errorf("invalid --start: %w", err)
		}
		dates.Start = &t
	}
	if end != "" {
		t, err := time.Parse(time.DateOnly, end)
		if err != nil {
			return dates, fmt.Errorf("invalid --end: %w", err)
		}
		dates.End = &t
	}
	return dates, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runServer(a *app) error {
	cfg := a.cfg
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("store", cfg.Store.Type),
		zap.String("upload_dir", cfg.UploadDir),
	)

	deps := handler.RouterDeps{
		RAG:           handler.NewRAGHandler(a.rag, int64(cfg.UploadLimitMB)*1024*1024),
		KPI:           handler.NewKPIHandler(service.NewKPIService(a.kpi)),
		Tables:        handler.NewTableHandler(service.NewTableService(a.tables)),
		Health:        handler.NewHealthHandler(a.store),
		JWTSecret:     []byte(cfg.JWTSecret),
		IndexCooldown: time.Duration(cfg.IndexCooldownSeconds) * time.Second,
	}
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	for _, jc := range cfg.InboxJobs {
		inbox := job.NewInboxIngestJob(a.rag, jc.TenantID, jc.Inbox, jc.Archive)
		if err := scheduler.AddJob(inbox, jc.Spec); err != nil {
			return fmt.Errorf("schedule inbox job for %s: %w", jc.TenantID, err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
