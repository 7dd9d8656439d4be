package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ashwinyue/datamimic/internal/handler"
	"github.com/ashwinyue/datamimic/internal/router"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStack()
			if err != nil {
				return err
			}
			defer st.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(runCtx, st)
		},
	}
}

func serve(ctx context.Context, st *stack) error {
	log := st.logger
	cfg := st.cfg

	if st.redis != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := st.redis.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unavailable, generation cache degraded", zap.Error(err))
		}
		cancel()
	}

	// 上次运行遗留的 processing 任务
	if n, err := st.services.Generation.Reconcile(ctx); err != nil {
		return fmt.Errorf("reconcile generations: %w", err)
	} else if n > 0 {
		log.Warn("reconciled interrupted generations", zap.Int("count", n))
	}

	gin.SetMode(cfg.Server.Mode)
	handlers := handler.NewHandlers(st.services, st.db.DB, log.Named("http"))
	r := router.SetupRouter(handlers, cfg.Server.AllowedOrigins, log.Named("http"))

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("database", cfg.Database.Driver),
			zap.Bool("cache", st.redis != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	// 优雅关闭，进行中的生成请求在超时内完成
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)

	// 已脱离请求的生成任务需在关闭数据库前写入终态
	if n := st.services.Generation.InFlight(); n > 0 {
		log.Info("waiting for in-flight generations", zap.Int("count", n))
		drainCtx, cancelDrain := context.WithTimeout(context.Background(), drainTimeout(cfg.Synthesis.Timeout))
		defer cancelDrain()
		if err := st.services.Generation.Wait(drainCtx); err != nil {
			log.Warn("in-flight generations left processing, next start will reconcile",
				zap.Int("count", st.services.Generation.InFlight()),
				zap.Error(err))
		}
	}

	if shutdownErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
	}
	log.Info("server exited")
	return nil
}

// drainTimeout 等待进行中生成任务的上限，合成无超时时使用 shutdownTimeout
func drainTimeout(synthesisTimeout time.Duration) time.Duration {
	if synthesisTimeout <= 0 {
		return shutdownTimeout
	}
	return synthesisTimeout + shutdownTimeout
}
