package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"shop_service/internal/auth"
	"shop_service/internal/delivery"
	grpcHandler "shop_service/internal/delivery/grpc"
	"shop_service/internal/domain"
	"shop_service/internal/metrics"
	"shop_service/internal/repository"
	"shop_service/internal/storage"
	"shop_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return a.serve(cmd.Context())
	},
}

func (a *app) assetStorage() (domain.AssetStorage, string, error) {
	if a.cfg.CloudinaryEnabled() {
		s, err := storage.NewCloudinaryStorage(a.cfg.CloudinaryCloudName, a.cfg.CloudinaryAPIKey, a.cfg.CloudinaryAPISecret, a.cfg.CloudinaryFolder, a.log)
		return s, "", err
	}
	s, err := storage.NewLocalStorage(a.cfg.UploadDir, a.cfg.PublicBaseURL, a.log)
	if err != nil {
		return nil, "", err
	}
	return s, s.Dir(), nil
}

func (a *app) serve(ctx context.Context) error {
	a.log.Infof("Starting shop_service (%s)...", a.cfg.AppEnv)
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	assets, uploadDir, err := a.assetStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize asset storage: %w", err)
	}

	// --- Dependency Injection ---
	userRepo := repository.NewUserRepository(a.db, a.log)
	categoryRepo := repository.NewCategoryRepository(a.db, a.log)
	productRepo := repository.NewProductRepository(a.db, a.log)
	cartRepo := repository.NewCartRepository(a.db, a.log)
	orderRepo := repository.NewOrderRepository(a.db, a.log)
	a.log.Info("Repositories initialized.")

	tokens := auth.NewTokenManager(a.cfg.JWTSecret, a.cfg.JWTExpiresIn)
	router := delivery.NewRouter(delivery.RouterConfig{
		Auth:        usecase.NewUserUseCase(userRepo, auth.NewPasswordHasher(a.cfg.BcryptCost), tokens, a.log),
		Categories:  usecase.NewCategoryUseCase(categoryRepo, a.log),
		Products:    usecase.NewProductUseCase(productRepo, categoryRepo, assets, a.log),
		Carts:       usecase.NewCartUseCase(cartRepo, productRepo, a.log),
		Orders:      usecase.NewOrderUseCase(orderRepo, m, a.log),
		Tokens:      tokens,
		Observer:    m,
		Gatherer:    reg,
		UploadDir:   uploadDir,
		CORSOrigins: a.cfg.CORSAllowedOrigins,
		Log:         a.log,
	})
	a.log.Info("Routes registered.")

	srv := &http.Server{
		Addr:              a.cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 2)

	go func() {
		a.log.Infof("HTTP server listening on %s", a.cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var health *grpcHandler.HealthServer
	if a.cfg.GrpcPort != "" {
		lis, err := net.Listen("tcp", a.cfg.GrpcPort)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port %s: %w", a.cfg.GrpcPort, err)
		}
		health = grpcHandler.NewHealthServer(a.db, a.log)
		go health.Watch(ctx, 15*time.Second)
		go func() {
			if err := health.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.log.Warn("Shutdown signal received...")
	case err := <-errCh:
		a.log.Errorf("Server failed: %v", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if health != nil {
		health.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.log.Info("shop_service shut down gracefully.")
	return nil
}
