package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gerunddev/markbridge/internal/cache"
	"github.com/gerunddev/markbridge/internal/convert"
	"github.com/gerunddev/markbridge/internal/logger"
	"github.com/gerunddev/markbridge/internal/server"
	"github.com/gerunddev/markbridge/internal/styles"
)

const (
	redisPingTimeout = 2 * time.Second
	shutdownTimeout  = 10 * time.Second
)

// Serve runs the HTTP conversion service until interrupted
func Serve(raw []string) {
	a, err := parseArgs(raw, []string{"--addr"}, nil)
	if err != nil {
		fail(err.Error())
	}

	cfg := loadConfig()
	log, cleanup := setupLogger(cfg)
	defer cleanup()

	addr := cfg.ServerAddress
	if v, ok := a.flags["--addr"]; ok {
		addr = v
	}

	c, closeCache := openCache(cfg.RedisAddress, log)
	defer closeCache()

	conv := convert.NewConverter(cfg.ConverterOptions(), log)
	service, err := server.NewService(server.Config{
		Address:  addr,
		CacheTTL: cfg.CacheTTL,
	}, conv, c, log)
	if err != nil {
		fail("Failed to create service: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- service.Start()
	}()

	log.Info("server started", "address", addr)
	fmt.Println(styles.SuccessStyle.Render("✓ Listening on " + addr))
	if cfg.RedisAddress != "" {
		fmt.Println(styles.InfoStyle.Render("  cache: redis at " + cfg.RedisAddress))
	}

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			fail("Server failed: " + err.Error())
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := service.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
		fail("Shutdown failed: " + err.Error())
	}
	log.Info("server stopped")
	fmt.Println(styles.DimStyle.Render("Server stopped"))
}

// openCache connects to Redis when an address is configured. An
// unreachable Redis falls back to no caching.
func openCache(addr string, log *logger.Logger) (cache.Cache, func()) {
	if addr == "" {
		return cache.Nop{}, func() {}
	}

	rc := cache.NewRedisCache(addr)
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		log.Warn("redis unavailable, caching disabled", "address", addr, "error", err)
		rc.Close()
		return cache.Nop{}, func() {}
	}

	log.Info("redis cache connected", "address", addr)
	return rc, func() { rc.Close() }
}
