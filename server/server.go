package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/kenji-jpg/bread-myship-worker/api"
	"github.com/kenji-jpg/bread-myship-worker/config"
	"github.com/kenji-jpg/bread-myship-worker/internal/logger"
	"github.com/kenji-jpg/bread-myship-worker/internal/metrics"
	"github.com/kenji-jpg/bread-myship-worker/internal/tracing"
	"github.com/kenji-jpg/bread-myship-worker/services"
)

type Server struct {
	config       *config.Config
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	logger       logger.Logger
	tracerCloser io.Closer
}

func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	// Initialize tracing
	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		log.Fatalf("Could not initialize jaeger tracer: %s", err.Error())
	}
	opentracing.SetGlobalTracer(tracer)

	// Initialize services
	workerMetrics := metrics.NewWorkerMetrics()
	svcs, err := services.InitServices(cfg, appLogger, workerMetrics)
	if err != nil {
		return nil, err
	}

	// Initialize Gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	return &Server{
		config:       cfg,
		router:       router,
		services:     svcs,
		logger:       appLogger,
		tracerCloser: closer,
		httpServer: &http.Server{
			Addr:    ":" + cfg.AppConfig.APIPort,
			Handler: router,
		},
	}, nil
}

func (s *Server) recoverWithJaeger(name string) {
	if r := recover(); r != nil {
		// Create a new span for the panic
		span := opentracing.GlobalTracer().StartSpan(
			fmt.Sprintf("panic.%s", name),
		)
		defer span.Finish()

		// Mark span as failed
		ext.Error.Set(span, true)

		// Log panic details
		span.LogKV(
			"event", "panic",
			"process", name,
			"error", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)

		s.logger.Errorf("Panic in %s: %v\n%s", name, r, debug.Stack())
	}
}

func (s *Server) wrapGoroutine(name string, fn func()) {
	defer s.recoverWithJaeger(name)
	fn()
}

func (s *Server) Run() error {
	// Create root context for the application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup API routes
	api.RegisterRoutes(s.router, s.services, s.logger, s.config.AppConfig.APIKey)

	// Start the IMAP ingestion with panic recovery
	s.logger.Info("Starting IMAP ingestion...")
	s.wrapGoroutine("imap_ingest", func() {
		if err := s.services.IngestService.Start(ctx); err != nil {
			s.logger.Errorf("IMAP ingestion error: %v", err)
		}
	})

	// Start HTTP server in a goroutine with panic recovery
	go s.wrapGoroutine("http_server", func() {
		s.logger.Infof("Starting HTTP server on port %s", s.config.AppConfig.APIPort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP server error: %v", err)
		}
	})
	s.logger.Info("Myship email worker is now running. Press Ctrl+C to exit.")

	return s.waitForShutdown()
}

func (s *Server) waitForShutdown() error {
	defer s.recoverWithJaeger("shutdown")

	// Set up signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for termination signal
	<-stop
	s.logger.Info("Shutting down...")

	// Create a context with timeout for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	// Shut down HTTP server
	if s.tracerCloser != nil {
		s.tracerCloser.Close()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorf("HTTP server shutdown error: %v", err)
	} else {
		s.logger.Info("HTTP server shut down successfully")
	}

	// Stop IMAP ingestion with timeout and panic recovery
	stopDone := make(chan struct{})
	go s.wrapGoroutine("imap_ingest_shutdown", func() {
		defer close(stopDone)
		if err := s.services.IngestService.Stop(); err != nil {
			s.logger.Errorf("IMAP ingestion shutdown error: %v", err)
		}
	})

	// Wait for ingestion to stop with timeout
	select {
	case <-stopDone:
		s.logger.Info("IMAP ingestion stopped gracefully")
	case <-time.After(10 * time.Second):
		s.logger.Warn("IMAP ingestion stop timed out, forcing exit")
	}

	// Close the events publisher last
	if s.services.EventsPublisher != nil {
		if err := s.services.EventsPublisher.Close(); err != nil {
			s.logger.Errorf("Events publisher close error: %v", err)
		}
	}

	return nil
}
