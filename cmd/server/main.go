// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rbacforge/rbac/internal/config"
	"github.com/rbacforge/rbac/internal/observability/logger"
	"github.com/rbacforge/rbac/internal/observability/metrics"
	"github.com/rbacforge/rbac/internal/observability/tracing"
	"github.com/rbacforge/rbac/internal/rbac"
	transportHTTP "github.com/rbacforge/rbac/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting rbac authorization service")

	ctx := context.Background()

	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   cfg.Observability.SamplingRate,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	if _, err := metrics.New(ctx, metrics.Config{Enabled: cfg.Observability.OTELEnabled}, cfg.Observability.ServiceName); err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	dynamoClient, err := newDynamoClient(ctx, cfg.Table)
	if err != nil {
		slog.Error("failed to initialize dynamodb client", logger.Error(err))
		os.Exit(1)
	}

	gw := rbac.NewDynamoGateway(dynamoClient, cfg.Table.Name)
	auditLogger := rbac.NewAuditLogger(slog.Default())
	repo := rbac.NewRepository(gw, rbac.WithAuditLogger(auditLogger))

	jwtSecret := []byte(os.Getenv("RBAC_JWT_SECRET"))
	if len(jwtSecret) == 0 {
		slog.Error("RBAC_JWT_SECRET must be set")
		os.Exit(1)
	}

	handler := transportHTTP.NewHandler(repo, jwtSecret)
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	router := transportHTTP.NewRouter(handler, rateLimiter)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func newDynamoClient(ctx context.Context, tableCfg config.TableConfig) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(tableCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if tableCfg.Endpoint != "" {
			o.BaseEndpoint = &tableCfg.Endpoint
		}
	}), nil
}
