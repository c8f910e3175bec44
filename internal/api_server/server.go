package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"
	"go.uber.org/zap"

	api "github.com/kubev2v/pcap-query/api/v1alpha1"
	"github.com/kubev2v/pcap-query/internal/auth"
	"github.com/kubev2v/pcap-query/internal/config"
	handlers "github.com/kubev2v/pcap-query/internal/handlers/v1alpha1"
	"github.com/kubev2v/pcap-query/internal/service"
	"github.com/kubev2v/pcap-query/pkg/metrics"
	"github.com/kubev2v/pcap-query/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	pcapSrv  *service.PcapService
	listener net.Listener
}

// New returns a new instance of a pcap query api server.
func New(
	cfg *config.Config,
	pcapSrv *service.PcapService,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:      cfg,
		pcapSrv:  pcapSrv,
		listener: listener,
	}
}

// oapiErrorHandler renders a request rejected by the openapi validator in the api error format.
func oapiErrorHandler(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.Error{Message: fmt.Sprintf("API Error: %s", message)})
}

// Router builds the handler of the api. The caller owns metric registration of the middleware.
func (s *Server) Router(authenticator auth.Authenticator, metricMiddleware *metrics.Middleware) (http.Handler, error) {
	swagger, err := api.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("failed to load swagger spec: %w", err)
	}
	// Skip server name validation
	swagger.Servers = nil

	oapiOpts := oapimiddleware.Options{
		ErrorHandler: oapiErrorHandler,
	}

	router := chi.NewRouter()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Service.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
		authenticator.Authenticator,
		oapimiddleware.OapiRequestValidatorWithOptions(swagger, &oapiOpts),
	)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handlers.NewServiceHandler(s.pcapSrv).RegisterApi(router)

	return router, nil
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	authenticator, err := auth.NewAuthenticator(s.cfg.Service.Auth)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegister(nil)

	router, err := s.Router(authenticator, metricMiddleware)
	if err != nil {
		return err
	}

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
