package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"security-core/engine/internal/alert"
	"security-core/engine/internal/audit"
	"security-core/engine/internal/config"
	"security-core/engine/internal/correlation"
	"security-core/engine/internal/event"
	"security-core/engine/internal/notify"
	"security-core/engine/internal/server"
	"security-core/engine/internal/telemetry"
	otelsetup "security-core/engine/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, server.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	auditLog, err := audit.Open(cfg.AuditLogPath)
	if err != nil {
		log.Fatalf("audit: %v", err)
	}
	defer auditLog.Close()

	metrics := telemetry.NewMetrics()

	var sinks []notify.Sink
	if cfg.AlertWebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.AlertWebhookURL, nil))
	}
	kafkaSink := notify.NewKafkaSink(cfg.AlertKafkaBrokersList(), cfg.AlertKafkaTopic)
	if kafkaSink != nil {
		sinks = append(sinks, kafkaSink)
		defer kafkaSink.Close()
	}
	if cfg.OTLPEndpoint != "" {
		if otelSink := notify.NewOtelSink(providers.LoggerProvider); otelSink != nil {
			sinks = append(sinks, otelSink)
		}
	}
	router := notify.NewRouter(sinks, cfg.NotifyTimeoutDuration(), cfg.NotifyMaxRetries, func(sink string) {
		metrics.NotificationFailures.WithLabelValues(sink).Inc()
	})

	svc := correlation.NewService(
		cfg.TenantID,
		cfg.StoreID,
		event.NewStore(cfg.EventHistoryDepth),
		alert.NewEngine(),
		auditLog,
		router,
		metrics,
	)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.New(svc, metrics.Handler()).Router(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Give detached notification deliveries time to finish before the OTel
	// providers go away.
	time.Sleep(otelsetup.ShutdownDrainDuration)
	if err := providers.Shutdown(ctx); err != nil {
		log.Printf("telemetry: shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
