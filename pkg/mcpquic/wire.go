// CLAUDE:SUMMARY Wire constants for MCP over QUIC: ALPN, stream preamble, error codes and transport tuning.
package mcpquic

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/quic-go/quic-go"
)

const (
	// ALPN selects the MCP session on a shared QUIC socket.
	ALPN = "pacm-mcp-v1"
	// Preamble is written by the client as the first bytes of the stream.
	Preamble = "PCM1"

	IdleTimeout = 5 * time.Minute
	KeepAlive   = 30 * time.Second
	// MaxLineSize bounds one JSON-RPC message.
	MaxLineSize = 4 << 20
)

const (
	streamErrProtocol quic.StreamErrorCode = 0x02

	connErrNone            quic.ApplicationErrorCode = 0x00
	connErrUnsupportedALPN quic.ApplicationErrorCode = 0x01
	connErrProtocol        quic.ApplicationErrorCode = 0x03
)

var (
	ErrBadPreamble     = errors.New("mcpquic: bad stream preamble")
	ErrUnsupportedALPN = errors.New("mcpquic: peer did not select " + ALPN)
	ErrNotConnected    = errors.New("mcpquic: client not connected")
)

// Config returns the QUIC transport settings shared by client and server.
func Config() *quic.Config {
	return &quic.Config{
		MaxStreamReceiveWindow:     10 << 20,
		MaxConnectionReceiveWindow: 50 << 20,
		MaxIdleTimeout:             IdleTimeout,
		KeepAlivePeriod:            KeepAlive,
	}
}

// ClientTLSConfig offers only the MCP ALPN. insecure skips certificate
// verification, for self-signed development servers.
func ClientTLSConfig(insecure bool) *tls.Config {
	return &tls.Config{
		NextProtos:         []string{ALPN},
		MinVersion:         tls.VersionTLS13,
		InsecureSkipVerify: insecure,
	}
}

func readPreamble(r io.Reader) error {
	got := make([]byte, len(Preamble))
	if _, err := io.ReadFull(r, got); err != nil {
		return fmt.Errorf("read preamble: %w", err)
	}
	if !bytes.Equal(got, []byte(Preamble)) {
		return fmt.Errorf("%w: %q", ErrBadPreamble, got)
	}
	return nil
}

func writePreamble(w io.Writer) error {
	if _, err := io.WriteString(w, Preamble); err != nil {
		return fmt.Errorf("write preamble: %w", err)
	}
	return nil
}
