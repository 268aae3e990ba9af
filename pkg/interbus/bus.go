// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 New Earth Lab

package interbus

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Bus is one master-side Interbus session over a Transport.
//
// A Bus runs strictly one transaction at a time: each Request is a blocking
// write followed by blocking per-byte reads until the receiver reaches a
// terminal state. The transmit and receive buffers are reused across
// transactions, so a Bus must not be shared between goroutines without the
// internal mutex doing its job, and must never have two outstanding
// transactions.
type Bus struct {
	masterID byte
	timeout  time.Duration
	maxFrame int
	logger   *slog.Logger

	mu        sync.Mutex
	transport Transport
	rx        *Receiver
	txBuf     []byte
}

// Option configures a Bus.
type Option func(*Bus)

// WithTimeout sets the per-byte read timeout applied to the transport.
// An unresponsive peer that never sends EOT is bounded by the composition
// of these per-byte timeouts up to the frame byte budget.
func WithTimeout(d time.Duration) Option {
	return func(b *Bus) { b.timeout = d }
}

// WithMaxFrameBytes bounds the raw bytes one receive attempt may consume.
func WithMaxFrameBytes(n int) Option {
	return func(b *Bus) { b.maxFrame = n }
}

// WithLogger attaches a logger for transaction-level debug output.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// NewBus creates a session over an already-open transport. The transport's
// read timeout must already be configured; WithTimeout has no effect here.
func NewBus(t Transport, masterID byte, opts ...Option) *Bus {
	b := newBus(masterID, opts...)
	b.transport = t
	return b
}

// Open opens the named serial device at the given baud rate and returns a
// Bus sending from masterID. The default per-byte read timeout is 10ms.
func Open(device string, baud int, masterID byte, opts ...Option) (*Bus, error) {
	b := newBus(masterID, opts...)

	t, err := OpenSerial(device, baud, b.timeout)
	if err != nil {
		return nil, err
	}
	b.transport = t

	return b, nil
}

// WithBus opens a bus, invokes fn with it, and closes the bus on every exit
// path, including a panic inside fn.
func WithBus(device string, baud int, masterID byte, fn func(*Bus) error, opts ...Option) error {
	b, err := Open(device, baud, masterID, opts...)
	if err != nil {
		return err
	}
	defer b.Close()

	return fn(b)
}

func newBus(masterID byte, opts ...Option) *Bus {
	b := &Bus{
		masterID: masterID,
		timeout:  DefaultTimeout,
		maxFrame: DefaultMaxFrameBytes,
		logger:   slog.New(slog.DiscardHandler),
		rx:       NewReceiver(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// MasterID returns the source address this bus stamps on requests.
func (b *Bus) MasterID() byte {
	return b.masterID
}

// Request runs one request/response transaction: stale input is discarded,
// the request telegram is encoded and sent, and the receiver is driven to a
// terminal state. The reply must come from dest, carry expectReply as its
// message type, and name the same register; its payload is returned.
//
// Every terminal failure surfaces verbatim as an error from the taxonomy in
// errors.go. The session never retries; a failed transaction leaves the bus
// open and usable, except for ErrTransportLost.
func (b *Bus) Request(dest, register byte, msgType MessageType, payload []byte, expectReply MessageType) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.transport == nil || !b.transport.IsOpen() {
		return nil, ErrBusClosed
	}

	frame, err := AppendFrame(b.txBuf[:0], dest, b.masterID, msgType, register, payload)
	if err != nil {
		return nil, err
	}
	b.txBuf = frame

	if err := b.transport.FlushInput(); err != nil {
		return nil, err
	}
	if _, err := b.transport.Write(frame); err != nil {
		return nil, err
	}
	b.logger.Debug("telegram sent",
		"dest", dest, "type", msgType.String(), "register", register, "payload_len", len(payload))

	b.rx.Reset(&Expect{Address: dest, Type: expectReply, Register: register})

	// The receiver itself has no upper bound on frame length. Bounding the
	// loop here keeps a misconfigured upstream timeout from blocking forever.
	for n := 0; n < b.maxFrame && !b.rx.State().Terminal(); n++ {
		c, err := b.transport.ReadByte()
		if err != nil {
			b.rx.Fail(err)
			break
		}
		b.rx.Feed(c)
	}

	state := b.rx.State()
	if !state.Terminal() {
		return nil, fmt.Errorf("%w: no EOT within %d bytes", ErrFrameOverrun, b.maxFrame)
	}
	if state != RxReady {
		b.logger.Debug("receive failed", "state", state.String())
		return nil, b.rx.Err()
	}

	b.logger.Debug("telegram received",
		"dest", dest, "type", expectReply.String(), "register", register, "payload_len", len(b.rx.Payload()))

	// Copy out: the receiver's buffer is reused by the next transaction.
	return append([]byte(nil), b.rx.Payload()...), nil
}

// ReadRegister reads a module register: RDCMD out, DATAGRAM back.
func (b *Bus) ReadRegister(dest, register byte) ([]byte, error) {
	return b.Request(dest, register, MsgRead, nil, MsgDatagram)
}

// WriteRegister writes a module register: WRCMD out, ACK back. The ACK's
// payload, if any, is discarded.
func (b *Bus) WriteRegister(dest, register byte, value []byte) error {
	_, err := b.Request(dest, register, MsgWrite, value, MsgAck)
	return err
}

// Close releases the underlying transport. Closing an already-closed bus
// is a no-op.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.transport == nil {
		return nil
	}
	return b.transport.Close()
}
