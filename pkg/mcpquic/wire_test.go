package mcpquic

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPreamble(t *testing.T) {
	var buf bytes.Buffer
	if err := writePreamble(&buf); err != nil {
		t.Fatal(err)
	}
	buf.WriteString(`{"jsonrpc":"2.0"}`)
	if err := readPreamble(&buf); err != nil {
		t.Fatalf("readPreamble: %v", err)
	}
	if buf.String() != `{"jsonrpc":"2.0"}` {
		t.Errorf("preamble consumed too much: %q left", buf.String())
	}
}

func TestPreamble_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"wrong magic", "MCP1{}"},
		{"short", "PC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := readPreamble(strings.NewReader(tt.in)); err == nil {
				t.Errorf("readPreamble(%q) succeeded", tt.in)
			}
		})
	}
	if err := readPreamble(strings.NewReader("HTTP")); !errors.Is(err, ErrBadPreamble) {
		t.Errorf("err = %v, want ErrBadPreamble", err)
	}
}

func TestReadLine(t *testing.T) {
	long := strings.Repeat("x", 100<<10)
	r := bufio.NewReaderSize(strings.NewReader("a\n\n"+long+"\n"), 16)

	for _, want := range []string{"a", "", long} {
		got, err := readLine(r)
		if err != nil {
			t.Fatalf("readLine: %v", err)
		}
		if string(got) != want {
			t.Errorf("readLine = %d bytes, want %d", len(got), len(want))
		}
	}
}

func TestReadLine_TooLarge(t *testing.T) {
	r := bufio.NewReaderSize(strings.NewReader(strings.Repeat("y", MaxLineSize+10)+"\n"), 4096)
	if _, err := readLine(r); err == nil {
		t.Error("oversized message accepted")
	}
}

func TestClientTLSConfig(t *testing.T) {
	cfg := ClientTLSConfig(true)
	if len(cfg.NextProtos) != 1 || cfg.NextProtos[0] != ALPN {
		t.Errorf("NextProtos = %v, want [%s]", cfg.NextProtos, ALPN)
	}
	if !cfg.InsecureSkipVerify {
		t.Error("insecure flag not applied")
	}
}
