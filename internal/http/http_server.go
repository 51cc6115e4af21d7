package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/services/catalog"
	"gitlab.com/mcpricing.net/internal/core/services/pricing"
	"gitlab.com/mcpricing.net/internal/core/services/worker"
	"gitlab.com/mcpricing.net/internal/handlers"
	"gitlab.com/mcpricing.net/internal/handlers/options"
	pricinghdl "gitlab.com/mcpricing.net/internal/handlers/pricing"
	"gitlab.com/mcpricing.net/internal/handlers/workers"
)

type ServiceProvider struct {
	pricingService pricing.IPricingService
	catalogService catalog.ICatalogService
	workerService  worker.IWorkerRegistrationService
}

func NewServiceProvider(
	pricingService pricing.IPricingService,
	catalogService catalog.ICatalogService,
	workerService worker.IWorkerRegistrationService,
) *ServiceProvider {
	return &ServiceProvider{
		pricingService: pricingService,
		catalogService: catalogService,
		workerService:  workerService,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	logger          primary.Logger
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	if s.ServiceProvider.pricingService == nil {
		return errors.New("pricing service is required")
	}

	r := mux.NewRouter()
	r.Use(handlers.New(s.logger).LoggingMiddleware)
	pricinghdl.NewPricingHandler(s.ServiceProvider.pricingService, s.logger).RegisterRoutes(r)
	if s.ServiceProvider.catalogService != nil {
		options.NewOptionHandler(s.ServiceProvider.catalogService, s.logger).RegisterRoutes(r)
	}
	if s.ServiceProvider.workerService != nil {
		workers.NewHandler(s.ServiceProvider.workerService).Register(r)
	}
	s.router = r
	return nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background. Pricing requests block until convergence,
// so there is no write timeout.
func (s *Server) Start(ctx context.Context) {
	s.srv = &http.Server{
		Addr:        fmt.Sprintf(":%d", s.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "service", s.ServiceName, "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
