package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"favorites-catalog/internal/circuitbreaker"
	"favorites-catalog/internal/config"
	"favorites-catalog/internal/db"
	"favorites-catalog/internal/httpserver"
	"favorites-catalog/internal/productsapi"
	customerrepo "favorites-catalog/internal/repository/customer"
	favoriterepo "favorites-catalog/internal/repository/favorite"
	productrepo "favorites-catalog/internal/repository/product"
	customersvc "favorites-catalog/internal/service/customer"
	favoritesvc "favorites-catalog/internal/service/favorite"
	productsvc "favorites-catalog/internal/service/product"
	"favorites-catalog/internal/telemetry"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	tel, err := telemetry.New(ctx, telemetry.Config{Endpoint: cfg.OTLPEndpoint, ServiceName: cfg.ServiceName}, logger)
	if err != nil {
		logger.Fatalf("init telemetry: %v", err)
	}

	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	favoriteRepo := favoriterepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)

	breaker := circuitbreaker.New[int64, *productsapi.ExternalProduct](circuitbreaker.Settings{
		Name:                     productsapi.ServiceName,
		Timeout:                  cfg.APIRequestTimeout,
		ErrorThresholdPercentage: cfg.Breaker.ErrorThresholdPercentage,
		ResetTimeout:             cfg.Breaker.ResetTimeout,
		RollingWindow:            cfg.Breaker.RollingWindow,
		VolumeThreshold:          uint32(cfg.Breaker.VolumeThreshold),
		HalfOpenMaxRequests:      uint32(cfg.Breaker.HalfOpenMaxRequests),
	}, logger)
	productsClient, err := productsapi.New(cfg.ProductsAPIURL, breaker, nil, logger)
	if err != nil {
		logger.Fatalf("init products api client: %v", err)
	}

	productService := productsvc.New(productRepo, productsClient, productsvc.Options{
		TTL:               cfg.ProductCacheTTL,
		SingleFlight:      cfg.SingleFlight,
		ServeStaleOnError: cfg.ServeStaleOnError,
		Logger:            logger,
	})
	customerService := customersvc.New(customerRepo, cfg.DefaultPageSize)
	favoriteService := favoritesvc.New(favoriteRepo, customerService, productService, cfg.DefaultPageSize)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Customers: customerService,
		Favorites: favoriteService,
		Products:  productService,
	}, httpserver.Options{CORSAllowedOrigins: cfg.CORSAllowedOrigins})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Printf("telemetry shutdown: %v", err)
	}
}
