package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Jamolkhon5/lifesense/internal/config"
	api "github.com/Jamolkhon5/lifesense/internal/handler"
	"github.com/Jamolkhon5/lifesense/internal/logger"
	"github.com/Jamolkhon5/lifesense/internal/ratelimit"
)

const serviceName = "lifesense"

// Routes mounts a group of handlers.
type Routes interface {
	RegisterRoutes(r chi.Router)
}

type Server struct {
	cfg    config.ServerConfig
	router chi.Router
	http   *http.Server
	grpc   *grpc.Server
	health *health.Server
	log    zerolog.Logger
}

// New builds the HTTP router. The limiter, when set, only guards chat.
func New(cfg config.ServerConfig, chat, vitals Routes, limiter ratelimit.Limiter, log zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		log:    log,
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(log))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(ratelimit.Middleware(limiter, log))
		}
		chat.RegisterRoutes(r)
	})
	if vitals != nil {
		vitals.RegisterRoutes(r)
	}
	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	s.http = &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	if cfg.GRPCAddr != "" {
		s.grpc = grpc.NewServer()
		s.health = health.NewServer()
		s.health.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
		grpc_health_v1.RegisterHealthServer(s.grpc, s.health)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts both listeners down.
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", s.cfg.Addr, err)
	}
	var grpcLis net.Listener
	if s.grpc != nil {
		if grpcLis, err = net.Listen("tcp", s.cfg.GRPCAddr); err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen grpc %s: %w", s.cfg.GRPCAddr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().Str("addr", httpLis.Addr().String()).Msg("http server listening")
		if err := s.http.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	if grpcLis != nil {
		g.Go(func() error {
			s.log.Info().Str("addr", grpcLis.Addr().String()).Msg("grpc health server listening")
			if err := s.grpc.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve grpc: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if s.grpc != nil {
			s.health.Shutdown()
			s.grpc.GracefulStop()
		}
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	})

	return g.Wait()
}
