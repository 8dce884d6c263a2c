package mcpquic

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hazyhaar/pacm-search/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
)

// Handler serves MCP sessions on QUIC connections accepted elsewhere (the
// chassis demultiplexes by ALPN and hands MCP connections here).
type Handler struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

func NewHandler(srv *server.MCPServer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{mcp: srv, logger: logger}
}

// ServeConn runs one MCP session over the first stream the client opens.
// Messages are newline-delimited JSON-RPC in both directions.
func (h *Handler) ServeConn(ctx context.Context, conn *quic.Conn) {
	remote := conn.RemoteAddr().String()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		h.logger.Warn("mcp quic: accept stream", "remote", remote, "error", err)
		conn.CloseWithError(connErrProtocol, "no stream")
		return
	}
	if err := readPreamble(stream); err != nil {
		h.logger.Warn("mcp quic: rejected", "remote", remote, "error", err)
		stream.CancelRead(streamErrProtocol)
		stream.CancelWrite(streamErrProtocol)
		conn.CloseWithError(connErrProtocol, "bad preamble")
		return
	}

	sess := &session{id: "quic-" + kit.NewRequestID(), out: stream, notifications: make(chan mcp.JSONRPCNotification, 64)}
	if err := h.mcp.RegisterSession(ctx, sess); err != nil {
		h.logger.Error("mcp quic: register session", "session", sess.id, "error", err)
		stream.Close()
		return
	}
	defer h.mcp.UnregisterSession(ctx, sess.id)
	h.logger.Info("mcp quic session", "session", sess.id, "remote", remote)

	ctx, cancel := context.WithCancel(h.mcp.WithContext(kit.WithTransport(ctx, "mcp_quic"), sess))
	defer cancel()
	go sess.forwardNotifications(ctx)

	reader := bufio.NewReaderSize(stream, 64<<10)
	for {
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				h.logger.Warn("mcp quic: read", "session", sess.id, "error", err)
			}
			break
		}
		if len(line) == 0 {
			continue
		}
		resp := h.mcp.HandleMessage(kit.WithRequestID(ctx, kit.NewRequestID()), json.RawMessage(line))
		if resp == nil {
			continue
		}
		if err := sess.send(resp); err != nil {
			h.logger.Warn("mcp quic: write", "session", sess.id, "error", err)
			break
		}
	}
	h.logger.Info("mcp quic session closed", "session", sess.id)
}

func readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > MaxLineSize {
			return nil, errors.New("message too large")
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			return nil, err
		}
		return line[:len(line)-1], nil
	}
}

// session implements server.ClientSession for one QUIC stream.
type session struct {
	id            string
	out           io.Writer
	mu            sync.Mutex
	initialized   atomic.Bool
	notifications chan mcp.JSONRPCNotification
}

func (s *session) SessionID() string                                   { return s.id }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

func (s *session) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.out.Write(append(data, '\n'))
	return err
}

func (s *session) forwardNotifications(ctx context.Context) {
	for {
		select {
		case n := <-s.notifications:
			_ = s.send(n)
		case <-ctx.Done():
			return
		}
	}
}
