package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rocketscienceinc/snake-arena-backend/internal/config"
	"github.com/rocketscienceinc/snake-arena-backend/internal/monitor"
	"github.com/rocketscienceinc/snake-arena-backend/internal/repository"
	"github.com/rocketscienceinc/snake-arena-backend/internal/repository/storage"
	"github.com/rocketscienceinc/snake-arena-backend/internal/service"
	"github.com/rocketscienceinc/snake-arena-backend/transport/rest"
	"github.com/rocketscienceinc/snake-arena-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

const (
	metricsNamespace  = "snake_arena"
	roomSweepInterval = 30 * time.Second
)

// RunApp - builds every dependency and runs the servers until a signal or a
// fatal server error.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisClient, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	statsRepo := repository.NewStatsRepository(logger, redisClient)

	metrics := monitor.New(metricsNamespace, prometheus.DefaultRegisterer)

	roomService := service.NewRoomService(logger, conf.Game.Simulation(), statsRepo, metrics)
	roomService.StartSweep(roomSweepInterval)
	defer roomService.Close()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, statsRepo); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, roomService, metrics)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
