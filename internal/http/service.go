package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/tuanvumaihuynh/product-api/api-contract"
	"github.com/tuanvumaihuynh/product-api/internal/apperr"
	"github.com/tuanvumaihuynh/product-api/internal/config"
	"github.com/tuanvumaihuynh/product-api/internal/eventstream"
	"github.com/tuanvumaihuynh/product-api/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-api/internal/http/metric"
	"github.com/tuanvumaihuynh/product-api/internal/http/middleware"
	"github.com/tuanvumaihuynh/product-api/internal/http/swagger"
	"github.com/tuanvumaihuynh/product-api/internal/service"
)

var tracer = otel.Tracer("internal/http")

const HealthPath = "/healthz"

// HealthChecker reports whether the product store is reachable.
type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	productSvc    service.ProductService
	events        *eventstream.Producer
	healthChecker HealthChecker
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	productSvc service.ProductService,
	healthChecker HealthChecker,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        log.With(slog.String("service", "http")),
		metrics:       metric.New(),
		productSvc:    productSvc,
		events:        eventstream.NewProducer(cfg.ProductEventsInterval),
		healthChecker: healthChecker,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handler, err := s.Handler()
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, handler)
}

// Handler builds the router with every middleware and route registered.
func (s *Service) Handler() (http.Handler, error) {
	r := chi.NewRouter()
	if err := s.RegisterMiddlewares(r); err != nil {
		return nil, err
	}

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return r, nil
}

// RunWithServer serves handler until the returned cleanup is called.
// Shutdown cancels the context of in-flight requests so open event streams end.
func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	baseCtx, cancelBase := context.WithCancel(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return baseCtx
		},
	}
	srv.RegisterOnShutdown(cancelBase)

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		cancelBase()
		return nil, fmt.Errorf("listen %s: %w", srv.Addr, err)
	}

	s.logger.InfoContext(ctx, "http server listening", slog.String("addr", ln.Addr().String()))

	go func() {
		defer cancelBase()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) error {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.CorsAllowedOrigins),
		middleware.Logging(s.logger),
	)

	if s.cfg.ValidateRequests {
		doc, err := apicontract.Load()
		if err != nil {
			return err
		}

		validator, err := middleware.OpenAPIValidator(doc, s.handleRequestError)
		if err != nil {
			return fmt.Errorf("create openapi validator: %w", err)
		}
		r.Use(validator)
	}

	return nil
}

func (s *Service) RegisterHandlers(r chi.Router) {
	h := newProductHandler(s.productSvc, s.events, s.metrics, s.logger)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.handle(h.ListProducts))
		r.Post("/", s.handle(h.CreateProduct))
		r.Delete("/", s.handle(h.DeleteAllProducts))
		r.Get("/events", s.handle(h.StreamProductEvents))
		r.Get("/{id}", s.handle(h.GetProduct))
		r.Put("/{id}", s.handle(h.UpdateProduct))
		r.Patch("/{id}", s.handle(h.PatchProduct))
		r.Delete("/{id}", s.handle(h.DeleteProduct))
	})

	r.Get(HealthPath, s.handleHealth)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

// handlerFunc writes a successful response or returns the error to render instead.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	ok, err := s.healthChecker.IsHealthy(r.Context())
	if !ok || err != nil {
		s.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"status": "unavailable"})
		return
	}

	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Service) handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	s.handleResponseError(w, r, apperr.ValidationErr.WrapParent(err))
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if !res.HasBody() {
		w.WriteHeader(res.StatusCode)
		return
	}

	render.Status(r, res.StatusCode)
	render.JSON(w, r, res)
}
