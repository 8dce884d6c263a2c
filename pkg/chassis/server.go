// Package chassis runs the HTTP surface of pacm.
//
// With TLS material (or a generated development certificate) it serves
// HTTP/1.1 and HTTP/2 on TCP. When HTTP/3 is enabled it also listens for
// QUIC on the same port and demultiplexes connections by ALPN:
//
//	"h3"          -> HTTP/3, same handler as TCP
//	"pacm-mcp-v1" -> MCP JSON-RPC over a QUIC stream
//
// TCP responses then carry an Alt-Svc header advertising HTTP/3. Without TLS
// and HTTP/3 the chassis serves plain HTTP.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hazyhaar/pacm-search/pkg/mcpquic"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

// Config holds configuration for the chassis server.
type Config struct {
	Addr     string      // listen address, TCP and UDP share the port
	TLS      *tls.Config // takes precedence over CertFile/KeyFile
	CertFile string
	KeyFile  string
	// DevTLS generates a self-signed certificate when no TLS material is set.
	DevTLS bool
	// HTTP3 enables the QUIC listener. It implies TLS.
	HTTP3   bool
	Handler http.Handler
	// MCPServer is served over QUIC when HTTP3 is on. nil disables it.
	MCPServer *server.MCPServer
	Logger    *slog.Logger
}

// Server is the chassis.
type Server struct {
	cfg    Config
	logger *slog.Logger
	tlsCfg *tls.Config
	mcp    *mcpquic.Handler

	mu     sync.Mutex
	tcpLn  net.Listener
	quicLn *quic.Listener
	http   *http.Server
	h3     *http3.Server
}

func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Handler == nil {
		return nil, errors.New("chassis: nil handler")
	}
	s := &Server{cfg: cfg, logger: cfg.Logger}

	switch {
	case cfg.TLS != nil:
		s.tlsCfg = cfg.TLS.Clone()
	case cfg.CertFile != "" && cfg.KeyFile != "":
		c, err := ProductionTLSConfig(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load TLS cert: %w", err)
		}
		s.tlsCfg = c
		s.logger.Info("TLS: certificate loaded", "cert", cfg.CertFile)
	case cfg.DevTLS || cfg.HTTP3:
		c, err := DevelopmentTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("generate dev TLS: %w", err)
		}
		s.tlsCfg = c
		s.logger.Warn("TLS: using a self-signed development certificate")
	}

	if cfg.HTTP3 && cfg.MCPServer != nil {
		s.mcp = mcpquic.NewHandler(cfg.MCPServer, cfg.Logger)
	}
	return s, nil
}

// Secure reports whether the TCP listener speaks TLS.
func (s *Server) Secure() bool { return s.tlsCfg != nil }

// Listen binds the TCP listener and, with HTTP3, the UDP listener on the
// same port. It is called by Start; call it directly to learn the bound
// address before serving.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tcpLn != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("TCP listen: %w", err)
	}
	handler := securityHeaders(s.cfg.Handler)

	if s.tlsCfg != nil {
		tcpTLS := s.tlsCfg.Clone()
		tcpTLS.NextProtos = []string{"h2", "http/1.1"}
		ln = tls.NewListener(ln, tcpTLS)
	}

	if s.cfg.HTTP3 {
		quicTLS := s.tlsCfg.Clone()
		quicTLS.NextProtos = []string{http3.NextProtoH3, mcpquic.ALPN}
		qln, err := quic.ListenAddr(ln.Addr().String(), quicTLS, mcpquic.Config())
		if err != nil {
			ln.Close()
			return fmt.Errorf("QUIC listen: %w", err)
		}
		s.quicLn = qln
		s.h3 = &http3.Server{Handler: handler}
		handler = altSvc(ln.Addr(), handler)
	}

	s.tcpLn = ln
	s.http = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Addr returns the bound TCP address, or "" before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tcpLn == nil {
		return ""
	}
	return s.tcpLn.Addr().String()
}

// Start listens and serves until ctx is done or a listener fails.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	tcpLn, quicLn, httpSrv := s.tcpLn, s.quicLn, s.http
	s.mu.Unlock()

	proto := "HTTP/1.1"
	if s.Secure() {
		proto = "HTTP/1.1+HTTP/2 (TLS)"
	}
	s.logger.Info("chassis started", "addr", tcpLn.Addr().String(), "tcp", proto, "http3", quicLn != nil, "mcp_quic", s.mcp != nil)

	errCh := make(chan error, 2)
	go func() {
		if err := httpSrv.Serve(tcpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("TCP: %w", err)
		}
	}()
	if quicLn != nil {
		go s.acceptQUIC(ctx, quicLn, errCh)
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) acceptQUIC(ctx context.Context, ln *quic.Listener, errCh chan<- error) {
	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, quic.ErrServerClosed) {
				return
			}
			errCh <- fmt.Errorf("QUIC accept: %w", err)
			return
		}

		switch alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn {
		case http3.NextProtoH3:
			go func() {
				if err := s.h3.ServeQUICConn(conn); err != nil {
					s.logger.Debug("HTTP/3 conn done", "remote", conn.RemoteAddr(), "error", err)
				}
			}()
		case mcpquic.ALPN:
			if s.mcp == nil {
				conn.CloseWithError(quic.ApplicationErrorCode(0x10), "MCP not enabled")
				continue
			}
			go s.mcp.ServeConn(ctx, conn)
		default:
			s.logger.Warn("unknown ALPN, closing", "alpn", alpn, "remote", conn.RemoteAddr())
			conn.CloseWithError(quic.ApplicationErrorCode(0x11), "unsupported ALPN")
		}
	}
}

// Stop gracefully shuts down every listener.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.http != nil {
		errs = append(errs, s.http.Shutdown(ctx))
	}
	if s.h3 != nil {
		errs = append(errs, s.h3.Close())
	}
	if s.quicLn != nil {
		errs = append(errs, s.quicLn.Close())
	}
	s.logger.Info("chassis stopped")
	return errors.Join(errs...)
}

// securityHeaders adds the headers every API response carries.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// altSvc advertises HTTP/3 on the port of addr.
func altSvc(addr net.Addr, next http.Handler) http.Handler {
	_, port, _ := net.SplitHostPort(addr.String())
	value := fmt.Sprintf(`h3=":%s"; ma=86400`, port)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", value)
		next.ServeHTTP(w, r)
	})
}
