package connector

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/pachadotdev/bello/internal/config"
	"github.com/pachadotdev/bello/internal/importers"
	"github.com/pachadotdev/bello/internal/logging"
)

// Server accepts browser-connector connections on the configured loopback
// address.
type Server struct {
	cfg      *config.Config
	service  *importers.Service
	logger   *slog.Logger
	listener net.Listener

	idleTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer binds the connector listener. The bind address must already have
// passed config validation, so it is loopback-only.
func NewServer(ctx context.Context, cfg *config.Config, service *importers.Service, logger *slog.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", cfg.ConnectorBind)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.ConnectorBind, err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		cfg:         cfg,
		service:     service,
		logger:      logging.NewComponentLogger(logger, "connector"),
		listener:    listener,
		idleTimeout: time.Duration(cfg.ConnectorIdleTimeout) * time.Second,
		ctx:         serverCtx,
		cancel:      cancel,
	}, nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve starts accepting connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Info("connector listening", logging.String("addr", s.Addr()))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "connector_accept_failed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.handleConn(c)
			}(conn)
		}
	}()
}

// Close stops accepting and waits for in-flight connections.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	request, err := readRequest(conn, s.idleTimeout)
	if err != nil {
		s.logger.Debug("dropping connection", logging.Error(err))
		return
	}

	s.dispatch(conn, request)
}
