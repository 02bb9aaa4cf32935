// @title        POS front desk API
// @version      1.0
// @description  Point-of-sale sessions in front of the restaurant order backend.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	_ "github.com/MikeMC777/ordenes-pos/docs"
	"github.com/MikeMC777/ordenes-pos/internal/backend"
	"github.com/MikeMC777/ordenes-pos/internal/config"
	"github.com/MikeMC777/ordenes-pos/internal/journal"
	"github.com/MikeMC777/ordenes-pos/internal/logger"
	"github.com/MikeMC777/ordenes-pos/internal/orderlist"
	"github.com/MikeMC777/ordenes-pos/internal/pos"
)

func main() {
	cfg := config.Load()
	log := logger.New("pos-service", os.Stdout, slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sales, closeJournal, err := openJournal(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error(ctx, "startup", "journal unavailable", err)
		os.Exit(1)
	}
	defer closeJournal()

	api := backend.NewClient(cfg.OrderAPIBaseURL, cfg.HTTPClientTimeout)
	store := pos.NewStore(api, sales, cfg.TaxRate, log)

	board := orderlist.NewBoard(api, backend.OrderQuery{Restaurant: cfg.RestaurantID}, log)
	go board.Run(ctx, cfg.OrderBoardRefresh)
	go expireSessions(ctx, store, cfg.SessionTTL, log)

	gin.SetMode(gin.ReleaseMode)
	r := newRouter(store, board, sales, cfg.RestaurantID, log)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{Addr: cfg.POSAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	gs, hs := newHealthServer()
	lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
	if err != nil {
		log.Error(ctx, "startup", "health listener", err)
		os.Exit(1)
	}
	go func() {
		if err := serveHealth(gs, lis); err != nil {
			log.Error(ctx, "startup", "grpc health server stopped", err)
		}
	}()

	go func() {
		log.Info(ctx, "startup", "pos-service listening", slog.String("addr", cfg.POSAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "startup", "http server failed", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutdown", "shutting down")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(healthService, healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "shutdown", "http shutdown", err)
	}
	hs.Shutdown()
	gs.GracefulStop()
}

// openJournal uses Postgres when a DSN is configured and memory otherwise.
func openJournal(ctx context.Context, dsn string) (journal.Journal, func(), error) {
	if dsn == "" {
		return journal.NewMemory(), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	j := journal.NewPGJournal(pool)
	if err := j.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return j, pool.Close, nil
}

func expireSessions(ctx context.Context, st *pos.Store, ttl time.Duration, log *logger.Logger) {
	every := ttl / 4
	if every < time.Second {
		every = time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.Expire(ttl); n > 0 {
				log.Info(ctx, "expire_sessions", "idle sessions closed", slog.Int("closed", n))
			}
		}
	}
}
