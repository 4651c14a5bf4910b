package server

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/handler"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
)

type server struct {
	httpServer *httpServer
	gRPCServer *grpcServer
	logger     *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	servers := new(server)

	if cfg.HTTPAddress != "" && handlers.HTTP != nil {
		servers.httpServer = newHTTPServer(handlers.HTTP.Init(), cfg, logger)
	}
	if cfg.GRPCAddress != "" && handlers.GRPC != nil {
		servers.gRPCServer = newGRPCServer(handlers.GRPC, cfg, logger)
	}

	if servers.httpServer == nil && servers.gRPCServer == nil {
		return nil, errNoServersAreCreated
	}

	servers.logger = logger

	return servers, nil
}

// RunServer blocks until SIGTERM, SIGINT or SIGQUIT is received and all
// started servers have stopped.
func (s *server) RunServer() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	if err := s.run(ctx); err != nil {
		s.logger.Err(err).Str("func", "*server.RunServer").Msg("error running server")
	}
}

func (s *server) Shutdown() {
	var wg sync.WaitGroup

	// finish HTTP server
	if s.httpServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.httpServer.Shutdown()
		}()
	}

	// finish gRPC server
	if s.gRPCServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.gRPCServer.Shutdown()
		}()
	}

	wg.Wait()
}

// run starts the servers and shuts them down once ctx is done. It returns
// after every server goroutine has exited.
func (s *server) run(ctx context.Context) error {
	// check if any server was created
	if s.httpServer == nil && s.gRPCServer == nil {
		return errors.New("no servers to run")
	}

	var running sync.WaitGroup

	// launch all created servers
	if s.httpServer != nil {
		s.logger.Info().Msg("Launching HTTP server")
		running.Add(1)
		go func() {
			defer running.Done()
			s.httpServer.RunServer()
		}()
	}
	if s.gRPCServer != nil {
		s.logger.Info().Msg("Launching GRPC server")
		running.Add(1)
		go func() {
			defer running.Done()
			s.gRPCServer.RunServer()
		}()
	}

	<-ctx.Done()

	// finish started servers
	s.Shutdown()
	running.Wait()

	s.logger.Info().Msg("server Shutdown gracefully")

	return nil
}
