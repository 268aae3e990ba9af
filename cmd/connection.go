// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 New Earth Lab

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/New-Earth-Lab/interbus/pkg/interbus"
	"github.com/gorilla/websocket"
	"golang.org/x/term"
)

// wsTransport adapts a WebSocket serial bridge to the interbus Transport
// contract. Binary messages are buffered and handed out byte by byte.
type wsTransport struct {
	conn    *websocket.Conn
	timeout time.Duration
	buf     []byte
	off     int
	closed  bool
}

func (w *wsTransport) ReadByte() (byte, error) {
	if w.closed {
		return 0, fmt.Errorf("%w: websocket connection closed", interbus.ErrTransportLost)
	}

	for w.off >= len(w.buf) {
		if err := w.conn.SetReadDeadline(time.Now().Add(w.timeout)); err != nil {
			w.closed = true
			return 0, fmt.Errorf("%w: %w", interbus.ErrTransportLost, err)
		}

		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				// gorilla treats a missed deadline as fatal for the
				// connection, matching the session's view of a lost
				// transport after a bridge stall.
				w.closed = true
				return 0, fmt.Errorf("%w: bridge read deadline: %w", interbus.ErrReadTimeout, err)
			}
			w.closed = true
			return 0, fmt.Errorf("%w: %w", interbus.ErrTransportLost, err)
		}

		// Only binary messages carry Interbus bytes
		if messageType != websocket.BinaryMessage {
			continue
		}
		w.buf = data
		w.off = 0
	}

	b := w.buf[w.off]
	w.off++
	return b, nil
}

func (w *wsTransport) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		w.closed = true
		return 0, fmt.Errorf("%w: %w", interbus.ErrTransportLost, err)
	}
	return len(p), nil
}

func (w *wsTransport) FlushInput() error {
	// Only the locally buffered bytes can be dropped; anything still in
	// flight on the bridge shows up as pre-SOT noise and is discarded by
	// the receiver's hunting state.
	w.buf = nil
	w.off = 0
	return nil
}

func (w *wsTransport) IsOpen() bool {
	return !w.closed
}

func (w *wsTransport) Close() error {
	w.closed = true
	return w.conn.Close()
}

// openWebSocketTransport connects to a WebSocket serial bridge with HTTP
// Basic auth.
func openWebSocketTransport(rawURL, username, password string, skipSSLVerify bool, timeout time.Duration) (interbus.Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, rawURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return &wsTransport{conn: conn, timeout: timeout}, nil
}

// getPassword retrieves the bridge password from the environment or prompts
// for it without echo.
func getPassword() (string, error) {
	if pw := os.Getenv("INTERBUS_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// openTransport opens the transport selected by the connection flags.
func openTransport() (interbus.Transport, string, error) {
	timeout := time.Duration(timeoutMs) * time.Millisecond

	if wsURL != "" {
		password := ""
		if wsUsername != "" {
			var err error
			password, err = getPassword()
			if err != nil {
				return nil, "", err
			}
		}

		t, err := openWebSocketTransport(wsURL, wsUsername, password, wsNoSSLVerify, timeout)
		if err != nil {
			return nil, "", err
		}
		return t, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if portName != "" {
		t, err := interbus.OpenSerial(portName, baudRate, timeout)
		if err != nil {
			return nil, "", err
		}
		return t, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}

// openBus opens the selected transport and wraps it in a Bus session.
func openBus() (*interbus.Bus, string, error) {
	t, info, err := openTransport()
	if err != nil {
		return nil, "", err
	}
	bus := interbus.NewBus(t, masterID, interbus.WithLogger(logger))
	return bus, info, nil
}
