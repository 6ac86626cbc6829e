package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/code-100-precent/LingQfight/internal/verifier"
	"github.com/code-100-precent/LingQfight/pkg/config"
	"github.com/code-100-precent/LingQfight/pkg/logger"
	"github.com/code-100-precent/LingQfight/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Global Configuration, flags override env
	if err := config.Load(); err != nil {
		panic("config load failed: " + err.Error())
	}
	cfg := config.GlobalConfig

	baseURL := flag.String("base-url", cfg.Verifier.BaseURL, "API base URL, e.g. http://127.0.0.1:8009/api")
	adminUser := flag.String("admin-username", cfg.Admin.Username, "pre-provisioned admin username")
	adminPass := flag.String("admin-password", cfg.Admin.Password, "pre-provisioned admin password")
	schedule := flag.String("schedule", cfg.Verifier.Schedule, "cron expression; empty runs the scenario once")
	metricsAddr := flag.String("metrics-addr", cfg.Verifier.MetricsAddr, "serve /metrics on this address (schedule mode)")
	reportPath := flag.String("report", cfg.Verifier.ReportPath, "write each run's report here (.json, .yaml or .yml)")
	flag.Parse()

	// 2. Load Log Configuration
	if err := logger.Init(&cfg.Log, cfg.Mode); err != nil {
		panic(err)
	}
	defer logger.Lg.Sync()

	scenarioCfg := verifier.Config{
		BaseURL:        *baseURL,
		AdminUsername:  *adminUser,
		AdminPassword:  *adminPass,
		PlayerPassword: cfg.Verifier.PlayerPassword,
		PlayerName:     cfg.Verifier.PlayerName,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := verifier.NewMetrics(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner{cfg: scenarioCfg, metrics: metrics, reportPath: *reportPath}
	if *schedule == "" {
		if !r.runOnce(ctx) {
			logger.Lg.Sync()
			os.Exit(1)
		}
		return
	}

	if err := r.runScheduled(ctx, *schedule, *metricsAddr, reg); err != nil {
		logger.Error("schedule mode failed", zap.Error(err))
		logger.Lg.Sync()
		os.Exit(1)
	}
}

type runner struct {
	cfg        verifier.Config
	metrics    *verifier.Metrics
	reportPath string
}

// runOnce executes one fresh scenario and logs its report
func (r runner) runOnce(ctx context.Context) bool {
	scenario := verifier.NewScenario(r.cfg, verifier.WithMetrics(r.metrics))
	report, err := scenario.Run(ctx)
	if r.reportPath != "" {
		if werr := verifier.WriteReport(r.reportPath, report); werr != nil {
			logger.Warn("write report failed", zap.String("path", r.reportPath), zap.Error(werr))
		}
	}
	if err != nil {
		fields := []zap.Field{zap.Any("report", report), zap.Error(err)}
		if failed := report.FailedStep(); failed != nil {
			fields = append(fields, zap.String("step", failed.Name))
		}
		logger.Error("verification failed", fields...)
		return false
	}
	logger.Info("verification passed", zap.Any("report", report))
	return true
}

// runScheduled re-runs the scenario on schedule until ctx ends, serving metrics alongside when metricsAddr is set
func (r runner) runScheduled(ctx context.Context, schedule, metricsAddr string, reg *prometheus.Registry) error {
	s := scheduler.NewScheduler()
	err := s.AddTask(&scheduler.Task{
		ID:       "qfight-verify",
		Name:     "QFight API verification",
		Schedule: schedule,
		Handler: func(taskCtx context.Context) error {
			if !r.runOnce(taskCtx) {
				return errors.New("verification failed")
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if metricsAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		engine := gin.New()
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
		s.RegisterRoutes(engine)
		srv := &http.Server{Addr: metricsAddr, Handler: engine, ReadHeaderTimeout: 10 * time.Second}

		g.Go(func() error {
			logger.Info("serving metrics", zap.String("addr", metricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		s.Start()
		logger.Info("verifier scheduled", zap.String("schedule", schedule))
		<-gctx.Done()
		logger.Info("stopping verifier")
		s.Stop()
		return nil
	})

	return g.Wait()
}
