package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/junpakpark/productmanage/internal/db"
	"github.com/junpakpark/productmanage/internal/handlers"
	"github.com/junpakpark/productmanage/internal/handlers/middleware"
	"github.com/junpakpark/productmanage/internal/logger"
	"github.com/junpakpark/productmanage/internal/metrics"
	"github.com/junpakpark/productmanage/internal/repository"
	"github.com/junpakpark/productmanage/internal/repository/memory"
	"github.com/junpakpark/productmanage/internal/repository/postgres"
	"github.com/junpakpark/productmanage/internal/repository/redisstore"
	"github.com/junpakpark/productmanage/internal/service/auth"
	"github.com/junpakpark/productmanage/internal/service/auth/tokenmanager"
	"github.com/junpakpark/productmanage/internal/service/member"
	"github.com/junpakpark/productmanage/internal/service/product"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger

	// Release db and redis connections
	Close func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}
	closers = append(closers, pool.Close)

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	store, closeStore, err := newRevocationStore(ctx, c, logger)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("error while creating revocation store. Err: %w", err)
	}
	closers = append(closers, closeStore)

	// Initialize services
	m := metrics.New()

	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  c.SecretKey,
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	}, logger.WithGroup("tokens"))
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	memberService := member.NewService(auth.DefaultHasher, storage.Member())
	productService := product.NewService(storage)
	authService, err := auth.NewService(tokenManager, store, memberService, m)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	pipeline := middleware.NewPipeline(tokenManager, logger, m, middleware.PublicProductReads)

	mux := handlers.NewRouter(
		handlers.NewAuth(authService, tokenManager.RefreshTTL(), logger),
		handlers.NewMember(memberService, logger),
		handlers.NewProduct(productService, logger),
		pipeline,
		m.Handler(),
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		Logger:     logger,
		Close:      closeAll,
	}, nil
}

// Redis store when RedisURL is set, in-memory one otherwise
// Store choice is logged only once the store is ready
func newRevocationStore(ctx context.Context, c *Config, l logger.Logger) (repository.RevocationStore, func(), error) {
	if c.RedisURL == "" {
		store, err := memory.NewRevocationStore(c.RevocationMaxSize, c.RevocationTTL)
		if err != nil {
			return nil, nil, err
		}
		l.Info("using in-memory revocation store", "maxSize", c.RevocationMaxSize, "retention", c.RevocationTTL)
		return store, func() {}, nil
	}

	client, err := redisstore.Connect(ctx, c.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	store, err := redisstore.NewRevocationStore(client, c.RevocationTTL)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	l.Info("using redis revocation store", "retention", c.RevocationTTL)
	return store, func() { _ = client.Close() }, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
